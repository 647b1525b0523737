package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/models"
)

// Epsilon is half a cent. Balances within Epsilon of zero are treated as settled.
var Epsilon = decimal.New(5, -3)

// position tracks the outstanding magnitude of one debtor or creditor.
type position struct {
	name   string
	amount decimal.Decimal
}

// Settle computes the payments that clear the given net balances.
//
// Algorithm:
// - Split people into creditors (balance > 0) and debtors (balance < 0),
//   ignoring anyone within Epsilon of zero
// - Repeatedly match the largest debtor with the largest creditor; the payment
//   is the smaller of the two magnitudes, rounded to cents
// - Whoever reaches zero (within Epsilon) drops out
// - Stop when either side is empty
//
// Ties are broken by the order of balances, so the same input always yields the
// same plan.
func Settle(balances []models.Balance) []models.Transaction {
	var creditors, debtors []*position
	for _, b := range balances {
		switch {
		case b.Amount.GreaterThan(Epsilon):
			creditors = append(creditors, &position{name: b.Name, amount: b.Amount})
		case b.Amount.LessThan(Epsilon.Neg()):
			debtors = append(debtors, &position{name: b.Name, amount: b.Amount.Neg()})
		}
	}

	var plan []models.Transaction
	for len(debtors) > 0 && len(creditors) > 0 {
		di := largest(debtors)
		ci := largest(creditors)
		debtor, creditor := debtors[di], creditors[ci]

		amount := models.RoundCents(decimal.Min(debtor.amount, creditor.amount))
		if amount.GreaterThan(Epsilon) {
			plan = append(plan, models.Transaction{
				From:   debtor.name,
				To:     creditor.name,
				Amount: amount,
			})
		}

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.LessThanOrEqual(Epsilon) {
			debtors = remove(debtors, di)
		}
		if creditor.amount.LessThanOrEqual(Epsilon) {
			creditors = remove(creditors, ci)
		}
	}

	return plan
}

// ApplyTransactions returns the balances left after every payment in plan is made.
// People named only in plan are appended in order of first appearance.
func ApplyTransactions(balances []models.Balance, plan []models.Transaction) []models.Balance {
	out := make([]models.Balance, len(balances))
	copy(out, balances)

	pos := make(map[string]int, len(out))
	for i, b := range out {
		pos[b.Name] = i
	}
	adjust := func(name string, delta decimal.Decimal) {
		i, ok := pos[name]
		if !ok {
			i = len(out)
			pos[name] = i
			out = append(out, models.Balance{Name: name})
		}
		out[i].Amount = out[i].Amount.Add(delta)
	}

	for _, tx := range plan {
		adjust(tx.From, tx.Amount)
		adjust(tx.To, tx.Amount.Neg())
	}
	return out
}

// largest returns the index of the biggest outstanding amount. The first one wins ties.
func largest(ps []*position) int {
	best := 0
	for i := 1; i < len(ps); i++ {
		if ps[i].amount.GreaterThan(ps[best].amount) {
			best = i
		}
	}
	return best
}

func remove(ps []*position, i int) []*position {
	return append(ps[:i], ps[i+1:]...)
}
