// Package models defines the core domain models for PayPals.
//
// # Models
//
//   - Person: one side of an activity, with a signed amount and a paid flag
//   - Activity: a single recorded expense with a payer and the friends who owe them
//   - Balance: one person's aggregate position across every activity in a group
//   - Transaction: one "A pays B" step of a settlement plan
//   - Group: a named ledger persisted by the storage layer
//
// People are identified by name strings. Names are unique within an activity.
//
// # Money
//
// All amounts are decimal.Decimal values restricted to two decimal places.
// Floating point is never used for money so that balances sum to exactly zero.
package models
