// Package export writes activities and settlement plans as CSV.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/mmynk/paypals/internal/models"
)

// ActivityRow is one participant line of an activity. Activities with several
// friends produce several rows sharing the same ID.
type ActivityRow struct {
	ID          int    `csv:"id"`
	Description string `csv:"description"`
	Payer       string `csv:"payer"`
	Friend      string `csv:"friend"`
	Amount      string `csv:"amount"`
	Paid        bool   `csv:"paid"`
}

// TransactionRow is one payment of a settlement plan.
type TransactionRow struct {
	From   string `csv:"from"`
	To     string `csv:"to"`
	Amount string `csv:"amount"`
}

// WriteActivities writes one row per participant of every activity.
func WriteActivities(w io.Writer, acts []*models.Activity) error {
	rows := make([]*ActivityRow, 0, len(acts))
	for _, a := range acts {
		for _, p := range a.Participants {
			rows = append(rows, &ActivityRow{
				ID:          a.ID,
				Description: a.Description,
				Payer:       a.Payer.Name,
				Friend:      p.Name,
				Amount:      models.FormatAmount(p.Amount),
				Paid:        p.Paid,
			})
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write activities: %w", err)
	}
	return nil
}

// WriteSettlement writes the settlement plan in payment order.
func WriteSettlement(w io.Writer, plan []models.Transaction) error {
	rows := make([]*TransactionRow, len(plan))
	for i, tx := range plan {
		rows[i] = &TransactionRow{From: tx.From, To: tx.To, Amount: models.FormatAmount(tx.Amount)}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write settlement: %w", err)
	}
	return nil
}
