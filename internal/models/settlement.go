package models

import "github.com/shopspring/decimal"

// Balance is one person's net position across all activities in a group.
type Balance struct {
	// Name is the person the balance belongs to.
	Name string

	// Amount is positive when the group owes this person,
	// negative when this person owes the group.
	Amount decimal.Decimal
}

// Transaction represents one payment of a settlement plan.
type Transaction struct {
	// From is the debtor who pays.
	From string

	// To is the creditor who receives the payment.
	To string

	// Amount is the payment amount, rounded to cents.
	Amount decimal.Decimal
}
