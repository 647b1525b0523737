package models

import "github.com/shopspring/decimal"

// Person represents one side of an activity.
type Person struct {
	// Name identifies the person within a group.
	Name string

	// Amount is signed. A participant's amount is what they owe the payer
	// for this activity. The payer's amount is the negated sum of what the
	// participants owe.
	Amount decimal.Decimal

	// Paid marks a participant as having settled their share outside the app.
	Paid bool
}

// NewPerson creates an unpaid person with the given amount.
func NewPerson(name string, amount decimal.Decimal) Person {
	return Person{Name: name, Amount: amount}
}
