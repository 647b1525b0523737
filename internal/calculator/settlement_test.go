package calculator

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/models"
)

func bal(name, amount string) models.Balance {
	return models.Balance{Name: name, Amount: decimal.RequireFromString(amount)}
}

func planString(plan []models.Transaction) []string {
	out := make([]string, len(plan))
	for i, tx := range plan {
		out[i] = fmt.Sprintf("%s pays %s %s", tx.From, tx.To, models.FormatAmount(tx.Amount))
	}
	return out
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name     string
		balances []models.Balance
		want     []string
	}{
		{
			name:     "single debtor",
			balances: []models.Balance{bal("John", "28"), bal("Jane", "-28")},
			want:     []string{"Jane pays John 28.00"},
		},
		{
			name:     "ordered by descending amount",
			balances: []models.Balance{bal("John", "38"), bal("Jeremy", "-10"), bal("Jane", "-28")},
			want:     []string{"Jane pays John 28.00", "Jeremy pays John 10.00"},
		},
		{
			name: "debtor split across two creditors",
			balances: []models.Balance{
				bal("Alice", "30"), bal("Bob", "20"), bal("Carol", "-50"),
			},
			want: []string{"Carol pays Alice 30.00", "Carol pays Bob 20.00"},
		},
		{
			name: "ties broken by balance order",
			balances: []models.Balance{
				bal("Zed", "-10"), bal("Amy", "-10"), bal("Bob", "10"), bal("Al", "10"),
			},
			want: []string{"Zed pays Bob 10.00", "Amy pays Al 10.00"},
		},
		{
			name:     "balances within epsilon are ignored",
			balances: []models.Balance{bal("A", "0.004"), bal("B", "-0.004")},
			want:     nil,
		},
		{
			name:     "empty input",
			balances: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planString(Settle(tt.balances))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Settle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettle_ZeroesBalances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"Ann", "Ben", "Cat", "Dan", "Eve", "Fay", "Gus"}

	for run := 0; run < 200; run++ {
		balances := make([]models.Balance, len(names))
		sum := decimal.Zero
		for i, n := range names[:len(names)-1] {
			amt := decimal.New(rng.Int63n(20001)-10000, -2)
			balances[i] = models.Balance{Name: n, Amount: amt}
			sum = sum.Add(amt)
		}
		balances[len(names)-1] = models.Balance{Name: names[len(names)-1], Amount: sum.Neg()}

		plan := Settle(balances)
		if len(plan) > len(names)-1 {
			t.Errorf("run %d: %d transactions for %d people", run, len(plan), len(names))
		}
		for _, b := range ApplyTransactions(balances, plan) {
			if b.Amount.Abs().GreaterThan(Epsilon) {
				t.Fatalf("run %d: %s left with %s after %v", run, b.Name, b.Amount, planString(plan))
			}
		}
	}
}

func TestSettle_Idempotent(t *testing.T) {
	balances := []models.Balance{
		bal("A", "12.50"), bal("B", "-7.25"), bal("C", "-5.25"), bal("D", "7"), bal("E", "-7"),
	}
	first := Settle(balances)
	second := Settle(balances)
	if !reflect.DeepEqual(planString(first), planString(second)) {
		t.Errorf("Settle() not deterministic: %v vs %v", planString(first), planString(second))
	}
	if !balances[1].Amount.Equal(decimal.RequireFromString("-7.25")) {
		t.Errorf("Settle() mutated its input: %v", balances[1])
	}
}

func TestApplyTransactions(t *testing.T) {
	balances := []models.Balance{bal("John", "28"), bal("Jane", "-28")}
	plan := []models.Transaction{{From: "Jane", To: "John", Amount: decimal.NewFromInt(28)}}

	out := ApplyTransactions(balances, plan)
	for _, b := range out {
		if !b.Amount.IsZero() {
			t.Errorf("%s = %s, want 0", b.Name, b.Amount)
		}
	}
	if !balances[0].Amount.Equal(decimal.NewFromInt(28)) {
		t.Errorf("ApplyTransactions() mutated its input")
	}
}
