package models

import "github.com/shopspring/decimal"

// Share is a requested amount owed by one participant.
// Shares are passed in order so that participants display the way they were entered.
type Share struct {
	Name   string
	Amount decimal.Decimal
}

// Activity represents one expense event.
type Activity struct {
	// ID is assigned by the ledger at creation and never reused.
	ID int

	// Description is the free text entered by the user (e.g., "lunch").
	Description string

	// Payer is the person who fronted the money.
	Payer Person

	// Participants are the friends who owe the payer, in insertion order.
	Participants []Person
}

// Participant returns the participant with the given name and its position.
func (a *Activity) Participant(name string) (Person, int, bool) {
	for i, p := range a.Participants {
		if p.Name == name {
			return p, i, true
		}
	}
	return Person{}, -1, false
}

// HasPerson reports whether name is the payer or one of the participants.
func (a *Activity) HasPerson(name string) bool {
	if a.Payer.Name == name {
		return true
	}
	_, _, ok := a.Participant(name)
	return ok
}

// Owed is the sum of all participant amounts.
func (a *Activity) Owed() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.Participants {
		total = total.Add(p.Amount)
	}
	return total
}

// Clone returns a deep copy that shares no memory with a.
func (a *Activity) Clone() *Activity {
	c := *a
	c.Participants = make([]Person, len(a.Participants))
	copy(c.Participants, a.Participants)
	return &c
}
