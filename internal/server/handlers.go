package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/models"
)

type personJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Paid   bool   `json:"paid"`
}

type activityJSON struct {
	Position     int          `json:"position"`
	ID           int          `json:"id"`
	Description  string       `json:"description"`
	Payer        personJSON   `json:"payer"`
	Participants []personJSON `json:"participants"`
}

type balanceJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type transactionJSON struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func toPersonJSON(p models.Person) personJSON {
	return personJSON{Name: p.Name, Amount: models.FormatAmount(p.Amount), Paid: p.Paid}
}

func toActivityJSON(pos int, a *models.Activity) activityJSON {
	out := activityJSON{
		Position:     pos + 1,
		ID:           a.ID,
		Description:  a.Description,
		Payer:        toPersonJSON(a.Payer),
		Participants: make([]personJSON, len(a.Participants)),
	}
	for i, p := range a.Participants {
		out.Participants[i] = toPersonJSON(p)
	}
	return out
}

type shareRequest struct {
	Name   string          `json:"name" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type addRequest struct {
	Description string         `json:"description" validate:"required"`
	Payer       string         `json:"payer" validate:"required"`
	Shares      []shareRequest `json:"shares" validate:"required,min=1,dive"`
}

type addEqualRequest struct {
	Description string          `json:"description" validate:"required"`
	Payer       string          `json:"payer" validate:"required"`
	Friends     []string        `json:"friends" validate:"required,min=1,dive,required"`
	Total       decimal.Decimal `json:"total"`
}

type editRequest struct {
	Field  string          `json:"field" validate:"required,oneof=description payer friend amount"`
	Value  string          `json:"value"`
	Old    string          `json:"old" validate:"required_if=Field friend,required_if=Field amount"`
	Amount decimal.Decimal `json:"amount"`
}

func (e editRequest) edit() ledger.Edit {
	switch e.Field {
	case "description":
		return ledger.EditDescription{Description: e.Value}
	case "payer":
		return ledger.RenamePayer{Name: e.Value}
	case "friend":
		return ledger.RenameFriend{Old: e.Old, New: e.Value}
	default:
		return ledger.SetFriendAmount{Name: e.Old, Amount: e.Amount}
	}
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	acts := s.session.Activities()
	out := make([]activityJSON, len(acts))
	for i, a := range acts {
		out[i] = toActivityJSON(i, a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addActivity(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	shares := make([]models.Share, len(req.Shares))
	for i, sh := range req.Shares {
		shares[i] = models.Share{Name: sh.Name, Amount: sh.Amount}
	}

	a, pos, err := s.session.AddActivity(r.Context(), req.Description, req.Payer, shares)
	s.record("add", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityJSON(pos, a))
}

func (s *Server) addEqualSplit(w http.ResponseWriter, r *http.Request) {
	var req addEqualRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, pos, err := s.session.AddEqualSplit(r.Context(), req.Description, req.Payer, req.Friends, req.Total)
	s.record("addequal", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityJSON(pos, a))
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	i, err := position(r)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := s.session.Activity(i)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityJSON(i, a))
}

func (s *Server) deleteActivity(w http.ResponseWriter, r *http.Request) {
	i, err := position(r)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := s.session.RemoveActivity(r.Context(), i)
	s.record("delete", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityJSON(i, a))
}

func (s *Server) editActivity(w http.ResponseWriter, r *http.Request) {
	i, err := position(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req editRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, err := s.session.EditActivity(r.Context(), i, req.edit())
	s.record("edit", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityJSON(i, a))
}

func (s *Server) markPaid(w http.ResponseWriter, r *http.Request) {
	s.setPaid(w, r, true)
}

func (s *Server) markUnpaid(w http.ResponseWriter, r *http.Request) {
	s.setPaid(w, r, false)
}

func (s *Server) setPaid(w http.ResponseWriter, r *http.Request, paid bool) {
	i, err := position(r)
	if err != nil {
		writeError(w, err)
		return
	}
	name := chi.URLParam(r, "name")

	op := "paid"
	if paid {
		err = s.session.MarkPaid(r.Context(), i, name)
	} else {
		op = "unpaid"
		err = s.session.MarkUnpaid(r.Context(), i, name)
	}
	s.record(op, err)
	if err != nil {
		writeError(w, err)
		return
	}

	a, err := s.session.Activity(i)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityJSON(i, a))
}

func (s *Server) personActivities(w http.ResponseWriter, r *http.Request) {
	acts, err := s.session.PersonActivities(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	pos := make(map[int]int)
	for i, a := range s.session.Activities() {
		pos[a.ID] = i
	}
	out := make([]activityJSON, len(acts))
	for i, a := range acts {
		out[i] = toActivityJSON(pos[a.ID], a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) outstanding(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	amount, err := s.session.OutstandingBalance(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceJSON{Name: name, Amount: models.FormatAmount(amount)})
}

func (s *Server) balances(w http.ResponseWriter, r *http.Request) {
	bals := s.session.NetBalances()
	out := make([]balanceJSON, len(bals))
	for i, b := range bals {
		out[i] = balanceJSON{Name: b.Name, Amount: models.FormatAmount(b.Amount)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) settlement(w http.ResponseWriter, r *http.Request) {
	plan := s.session.Settlement()
	out := make([]transactionJSON, len(plan))
	for i, tx := range plan {
		out[i] = transactionJSON{From: tx.From, To: tx.To, Amount: models.FormatAmount(tx.Amount)}
	}
	writeJSON(w, http.StatusOK, out)
}
