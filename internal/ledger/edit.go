package ledger

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/models"
)

// Edit is a change to one field of an activity. Every Edit validates
// completely before it touches the ledger.
type Edit interface {
	apply(l *Ledger, a *models.Activity) error
}

// EditDescription replaces the activity description.
type EditDescription struct {
	Description string
}

// RenamePayer renames the payer. The new name must not belong to a friend in the activity.
type RenamePayer struct {
	Name string
}

// RenameFriend renames a participant. The new name must not belong to the payer or another friend.
type RenameFriend struct {
	Old string
	New string
}

// SetFriendAmount changes what a participant owes. The payer's amount follows.
type SetFriendAmount struct {
	Name   string
	Amount decimal.Decimal
}

// EditActivity applies e to the activity at position i and returns the updated activity.
func (l *Ledger) EditActivity(i int, e Edit) (*models.Activity, error) {
	a, err := l.at(i)
	if err != nil {
		return nil, err
	}
	if err := e.apply(l, a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

func (e EditDescription) apply(_ *Ledger, a *models.Activity) error {
	if strings.TrimSpace(e.Description) == "" {
		return newError(ReasonEmptyDescription, "")
	}
	a.Description = e.Description
	slog.Debug("Description edited", "id", a.ID)
	return nil
}

func (e RenamePayer) apply(l *Ledger, a *models.Activity) error {
	if err := validateName(e.Name); err != nil {
		return err
	}
	if _, _, ok := a.Participant(e.Name); ok {
		return newError(ReasonPayerSameAsFriend, "%s", e.Name)
	}
	old := a.Payer.Name
	if old == e.Name {
		return nil
	}

	l.credit(old, a.Payer.Amount)
	l.credit(e.Name, a.Payer.Amount.Neg())
	a.Payer.Name = e.Name
	l.reindex(old)
	l.reindex(e.Name)

	slog.Debug("Payer renamed", "id", a.ID, "old", old, "new", e.Name)
	return nil
}

func (e RenameFriend) apply(l *Ledger, a *models.Activity) error {
	p, pos, ok := a.Participant(e.Old)
	if !ok {
		return newError(ReasonPersonNotFound, "%s is not a friend in this activity", e.Old)
	}
	if err := validateName(e.New); err != nil {
		return err
	}
	if e.New == a.Payer.Name {
		return newError(ReasonFriendSameAsPayer, "%s", e.New)
	}
	if e.New == e.Old {
		return nil
	}
	if _, _, taken := a.Participant(e.New); taken {
		return newError(ReasonFriendSameAsFriend, "%s", e.New)
	}

	l.credit(e.Old, p.Amount)
	l.credit(e.New, p.Amount.Neg())
	a.Participants[pos].Name = e.New
	l.reindex(e.Old)
	l.reindex(e.New)

	slog.Debug("Friend renamed", "id", a.ID, "old", e.Old, "new", e.New)
	return nil
}

func (e SetFriendAmount) apply(l *Ledger, a *models.Activity) error {
	p, pos, ok := a.Participant(e.Name)
	if !ok {
		return newError(ReasonPersonNotFound, "%s is not a friend in this activity", e.Name)
	}
	if p.Paid {
		return newError(ReasonEditAmountWhenPaid, "%s", e.Name)
	}
	if err := l.validateShare(e.Amount); err != nil {
		return err
	}

	delta := e.Amount.Sub(p.Amount)
	a.Participants[pos].Amount = e.Amount
	a.Payer.Amount = a.Payer.Amount.Sub(delta)
	l.credit(e.Name, delta.Neg())
	l.credit(a.Payer.Name, delta)

	slog.Debug("Friend amount edited", "id", a.ID, "name", e.Name, "amount", e.Amount.String())
	return nil
}
