package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/models"
)

func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + models.FormatAmount(d.Neg())
	}
	return "$" + models.FormatAmount(d)
}

func renderAdded(w io.Writer, a *models.Activity) {
	fmt.Fprintf(w, "Desc: %s\n", a.Description)
	fmt.Fprintf(w, "Name of payer: %s\n", a.Payer.Name)
	fmt.Fprintf(w, "Number of friends who owe %s: %d\n", a.Payer.Name, len(a.Participants))
}

func renderActivity(w io.Writer, i int, a *models.Activity) {
	friends := make([]string, len(a.Participants))
	for j, p := range a.Participants {
		friends[j] = fmt.Sprintf("%s %s", p.Name, money(p.Amount))
		if p.Paid {
			friends[j] += " [PAID]"
		}
	}
	fmt.Fprintf(w, "%d. Desc: %s\n", i+1, a.Description)
	fmt.Fprintf(w, "    Payer: %s\n", a.Payer.Name)
	fmt.Fprintf(w, "    Owed by: %s\n", strings.Join(friends, ", "))
}

func renderActivities(w io.Writer, acts []*models.Activity) {
	if len(acts) == 0 {
		fmt.Fprintln(w, "No activities recorded.")
		return
	}
	for i, a := range acts {
		renderActivity(w, i, a)
	}
}

// renderPersonActivities lists name's activities numbered by their position in
// the full list so the numbers can be used with edit, delete and paid.
func renderPersonActivities(w io.Writer, name string, all, mine []*models.Activity) {
	pos := make(map[int]int, len(all))
	for i, a := range all {
		pos[a.ID] = i
	}
	fmt.Fprintf(w, "Activities involving %s:\n", name)
	for _, a := range mine {
		renderActivity(w, pos[a.ID], a)
	}
}

func renderOutstanding(w io.Writer, name string, amount decimal.Decimal) {
	switch {
	case amount.IsPositive():
		fmt.Fprintf(w, "%s is owed %s\n", name, money(amount))
	case amount.IsNegative():
		fmt.Fprintf(w, "%s owes %s\n", name, money(amount.Neg()))
	default:
		fmt.Fprintf(w, "%s is all settled up\n", name)
	}
}

func renderSettlement(w io.Writer, plan []models.Transaction) {
	if len(plan) == 0 {
		fmt.Fprintln(w, "All debts are settled.")
		return
	}
	fmt.Fprintln(w, "Best way to settle debts:")
	for _, tx := range plan {
		fmt.Fprintf(w, "%s pays %s %s\n", tx.From, tx.To, money(tx.Amount))
	}
}
