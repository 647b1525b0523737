// Package server exposes a session over a JSON HTTP API.
//
// Activity IDs in paths are 1-based positions in the activity list, the same
// numbers the REPL prints.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"

	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/middleware"
	"github.com/mmynk/paypals/internal/session"
)

// writeLimit caps mutating requests per client IP per minute.
const writeLimit = 120

// Server serves the API for one session.
type Server struct {
	session  *session.Session
	metrics  *middleware.Metrics
	validate *validator.Validate
}

// New builds the HTTP handler. Metrics are registered with reg and served on /metrics.
func New(s *session.Session, reg *prometheus.Registry) http.Handler {
	srv := &Server{
		session:  s,
		metrics:  middleware.NewMetrics(reg),
		validate: validator.New(),
	}
	srv.metrics.Activities.Set(float64(s.Len()))

	headers := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
	})
	limiter := httprate.Limit(writeLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
		}),
	)

	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(srv.metrics.Instrument)
	r.Use(headers.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/activities", srv.listActivities)
		r.Get("/activities/{id}", srv.getActivity)

		r.Group(func(r chi.Router) {
			r.Use(limiter)
			r.Post("/activities", srv.addActivity)
			r.Post("/activities/equal", srv.addEqualSplit)
			r.Delete("/activities/{id}", srv.deleteActivity)
			r.Patch("/activities/{id}", srv.editActivity)
			r.Put("/activities/{id}/paid/{name}", srv.markPaid)
			r.Delete("/activities/{id}/paid/{name}", srv.markUnpaid)
		})

		r.Get("/people/{name}/activities", srv.personActivities)
		r.Get("/people/{name}/outstanding", srv.outstanding)

		r.Get("/balances", srv.balances)
		r.Get("/settlement", srv.settlement)
	})

	return r
}

// record counts a ledger operation and refreshes the activity gauge.
func (s *Server) record(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if k := ledger.KindOf(err); k != 0 {
			outcome = k.String()
		}
	}
	s.metrics.Operations.WithLabelValues(op, outcome).Inc()
	s.metrics.Activities.Set(float64(s.session.Len()))
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps ledger error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := ledger.KindOf(err)
	switch kind {
	case ledger.KindValidation:
		status = http.StatusBadRequest
	case ledger.KindBounds:
		status = http.StatusNotFound
	case ledger.KindConflict:
		status = http.StatusConflict
	}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		status = http.StatusBadRequest
	}

	resp := errorResponse{Error: err.Error()}
	if kind != 0 {
		resp.Kind = kind.String()
	}
	writeJSON(w, status, resp)
}

// requestError is a malformed request body or path parameter.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

// decode reads a JSON body into v and validates it.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &requestError{msg: "invalid JSON body: " + err.Error()}
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &requestError{msg: "invalid field " + verrs[0].Namespace() + ": failed " + verrs[0].Tag()}
		}
		return &requestError{msg: err.Error()}
	}
	return nil
}

// position converts the 1-based {id} path parameter into a ledger position.
func position(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &requestError{msg: "activity id must be an integer: " + raw}
	}
	return n - 1, nil
}
