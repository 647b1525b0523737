package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/models"
)

// EqualShare divides total evenly between the payer and friends people.
//
// Algorithm: share = round_half_even(total / (friends + 1), 2). Every friend owes
// share and the payer keeps total - friends × share, so the shares of all
// heads add up to exactly total.
func EqualShare(total decimal.Decimal, friends int) (share, payerShare decimal.Decimal, err error) {
	if friends < 1 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("must have at least one friend")
	}
	if !total.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("total must be positive")
	}

	heads := decimal.NewFromInt(int64(friends + 1))
	share = models.RoundCents(total.Div(heads))
	payerShare = total.Sub(share.Mul(decimal.NewFromInt(int64(friends))))
	return share, payerShare, nil
}
