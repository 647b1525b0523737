package command

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/models"
	"github.com/mmynk/paypals/internal/session"
)

// Command is one parsed line of input.
type Command interface {
	Execute(ctx context.Context, s *session.Session, w io.Writer) error
}

// Add records an activity with explicit amounts per friend.
type Add struct {
	Description string
	Payer       string
	Shares      []models.Share
}

func (c *Add) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	a, _, err := s.AddActivity(ctx, c.Description, c.Payer, c.Shares)
	if err != nil {
		return err
	}
	renderAdded(w, a)
	return nil
}

// AddEqual records an activity whose total is split evenly.
type AddEqual struct {
	Description string
	Payer       string
	Friends     []string
	Total       decimal.Decimal
}

func (c *AddEqual) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	a, _, err := s.AddEqualSplit(ctx, c.Description, c.Payer, c.Friends, c.Total)
	if err != nil {
		return err
	}
	renderAdded(w, a)
	return nil
}

// Delete removes an activity by its 0-based position.
type Delete struct {
	Index int
}

func (c *Delete) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	a, err := s.RemoveActivity(ctx, c.Index)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Activity deleted: %s\n", a.Description)
	return nil
}

// EditField selects which part of an activity Edit changes.
type EditField int

const (
	EditFieldDescription EditField = iota + 1
	EditFieldPayer
	EditFieldFriend
	EditFieldAmount
)

// Edit changes one field of an activity.
type Edit struct {
	Index  int
	Field  EditField
	Value  string
	Old    string
	Amount decimal.Decimal
}

func (c *Edit) edit() ledger.Edit {
	switch c.Field {
	case EditFieldDescription:
		return ledger.EditDescription{Description: c.Value}
	case EditFieldPayer:
		return ledger.RenamePayer{Name: c.Value}
	case EditFieldFriend:
		return ledger.RenameFriend{Old: c.Old, New: c.Value}
	default:
		return ledger.SetFriendAmount{Name: c.Old, Amount: c.Amount}
	}
}

func (c *Edit) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	a, err := s.EditActivity(ctx, c.Index, c.edit())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Activity edited:")
	renderActivity(w, c.Index, a)
	return nil
}

// MarkPaid sets or clears a friend's paid flag.
type MarkPaid struct {
	Index int
	Name  string
	Paid  bool
}

func (c *MarkPaid) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	if c.Paid {
		if err := s.MarkPaid(ctx, c.Index, c.Name); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s has been marked as paid\n", c.Name)
		return nil
	}
	if err := s.MarkUnpaid(ctx, c.Index, c.Name); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s has been marked as unpaid\n", c.Name)
	return nil
}

// List prints activities, optionally for one person, or that person's outstanding balance.
type List struct {
	Name    string
	Balance bool
}

func (c *List) Execute(_ context.Context, s *session.Session, w io.Writer) error {
	switch {
	case c.Balance:
		amount, err := s.OutstandingBalance(c.Name)
		if err != nil {
			return err
		}
		renderOutstanding(w, c.Name, amount)
	case c.Name != "":
		acts, err := s.PersonActivities(c.Name)
		if err != nil {
			return err
		}
		renderPersonActivities(w, c.Name, s.Activities(), acts)
	default:
		renderActivities(w, s.Activities())
	}
	return nil
}

// Split prints the settlement plan for the current balances.
type Split struct{}

func (c *Split) Execute(_ context.Context, s *session.Session, w io.Writer) error {
	renderSettlement(w, s.Settlement())
	return nil
}

// Change saves the open group and switches to another.
type Change struct {
	Group string
}

func (c *Change) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	if err := s.SwitchGroup(ctx, c.Group); err != nil {
		return err
	}
	fmt.Fprintf(w, "Now using group %s (%d activities)\n", s.Group(), s.Len())
	return nil
}

// Groups lists saved groups.
type Groups struct{}

func (c *Groups) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	names, err := s.Groups(ctx)
	if err != nil {
		return err
	}
	current := s.Group()
	for i, n := range names {
		marker := ""
		if n == current {
			marker = " (current)"
		}
		fmt.Fprintf(w, "%d. %s%s\n", i+1, n, marker)
	}
	return nil
}

// Help prints the command reference.
type Help struct{}

func (c *Help) Execute(_ context.Context, _ *session.Session, w io.Writer) error {
	for _, u := range []string{
		usageAdd, usageAddEqual, usageDelete, usageEdit, usagePaid, usageUnpaid, usageList,
		"split", usageChange, "groups", "exit",
	} {
		fmt.Fprintln(w, u)
	}
	return nil
}

// Exit ends the REPL.
type Exit struct{}

func (c *Exit) Execute(ctx context.Context, s *session.Session, w io.Writer) error {
	if err := s.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "Goodbye!")
	return nil
}

func parseMoney(raw, usage string) (decimal.Decimal, error) {
	d, err := models.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, &FormatError{Reason: "Amount is not a number: " + raw, Usage: usage}
	}
	return d, nil
}

func shareOf(name string, amount decimal.Decimal) models.Share {
	return models.Share{Name: name, Amount: amount}
}
