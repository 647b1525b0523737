package command

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/models"
)

func TestSplitArgs(t *testing.T) {
	args, rest := splitArgs("balance n/John  D/dinner with friends a/12.50")
	if rest != "balance" {
		t.Errorf("rest = %q, want balance", rest)
	}
	want := []arg{{'n', "John"}, {'d', "dinner with friends"}, {'a', "12.50"}}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestParse(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name     string
		line     string
		wantErr  bool
		validate func(t *testing.T, cmd Command)
	}{
		{
			name: "add with two friends",
			line: "add d/lunch n/John f/Jane a/28 f/Jeremy a/10.5",
			validate: func(t *testing.T, cmd Command) {
				add, ok := cmd.(*Add)
				if !ok {
					t.Fatalf("got %T, want *Add", cmd)
				}
				if add.Description != "lunch" || add.Payer != "John" {
					t.Errorf("got %q/%q", add.Description, add.Payer)
				}
				want := []models.Share{{Name: "Jane", Amount: d("28")}, {Name: "Jeremy", Amount: d("10.5")}}
				if len(add.Shares) != len(want) {
					t.Fatalf("got %d shares, want %d", len(add.Shares), len(want))
				}
				for i := range want {
					if add.Shares[i].Name != want[i].Name || !add.Shares[i].Amount.Equal(want[i].Amount) {
						t.Errorf("share %d = %+v, want %+v", i, add.Shares[i], want[i])
					}
				}
			},
		},
		{name: "add missing amount", line: "add d/lunch n/John f/Jane f/Jeremy a/10", wantErr: true},
		{name: "add last friend missing amount", line: "add d/lunch n/John f/Jane a/3 f/Jeremy", wantErr: true},
		{name: "add two amounts", line: "add d/lunch n/John f/Jane a/3 a/4", wantErr: true},
		{name: "add amount not a number", line: "add d/lunch n/John f/Jane a/abc", wantErr: true},
		{name: "add no description", line: "add n/John f/Jane a/3", wantErr: true},
		{name: "add no friends", line: "add d/lunch n/John", wantErr: true},
		{
			name: "addequal",
			line: "addequal d/trip n/Eve f/Frank f/Gina a/90.00",
			validate: func(t *testing.T, cmd Command) {
				ae, ok := cmd.(*AddEqual)
				if !ok {
					t.Fatalf("got %T, want *AddEqual", cmd)
				}
				if !reflect.DeepEqual(ae.Friends, []string{"Frank", "Gina"}) {
					t.Errorf("friends = %v", ae.Friends)
				}
				if !ae.Total.Equal(d("90")) {
					t.Errorf("total = %s", ae.Total)
				}
			},
		},
		{name: "addequal two totals", line: "addequal d/trip n/Eve f/Frank a/9 a/10", wantErr: true},
		{name: "addequal no friends", line: "addequal d/trip n/Eve a/9", wantErr: true},
		{name: "addequal empty friend", line: "addequal d/trip n/Eve f/ a/9", wantErr: true},
		{
			name: "delete is 1-based",
			line: "delete i/3",
			validate: func(t *testing.T, cmd Command) {
				if del := cmd.(*Delete); del.Index != 2 {
					t.Errorf("index = %d, want 2", del.Index)
				}
			},
		},
		{name: "delete bad identifier", line: "delete i/two", wantErr: true},
		{name: "delete extra params", line: "delete i/1 n/John", wantErr: true},
		{
			name: "edit friend amount",
			line: "edit i/1 a/20 o/Jane",
			validate: func(t *testing.T, cmd Command) {
				e := cmd.(*Edit)
				if e.Field != EditFieldAmount || e.Old != "Jane" || !e.Amount.Equal(d("20")) {
					t.Errorf("got %+v", e)
				}
			},
		},
		{
			name: "edit friend name",
			line: "edit i/2 f/Janet o/Jane",
			validate: func(t *testing.T, cmd Command) {
				e := cmd.(*Edit)
				if e.Field != EditFieldFriend || e.Old != "Jane" || e.Value != "Janet" || e.Index != 1 {
					t.Errorf("got %+v", e)
				}
			},
		},
		{
			name: "edit payer",
			line: "edit i/1 n/Johnny",
			validate: func(t *testing.T, cmd Command) {
				if e := cmd.(*Edit); e.Field != EditFieldPayer || e.Value != "Johnny" {
					t.Errorf("got %+v", e)
				}
			},
		},
		{name: "edit two fields", line: "edit i/1 d/x n/y", wantErr: true},
		{name: "edit friend without old", line: "edit i/1 f/Janet", wantErr: true},
		{
			name: "unpaid",
			line: "unpaid i/1 n/Jane",
			validate: func(t *testing.T, cmd Command) {
				mp := cmd.(*MarkPaid)
				if mp.Paid || mp.Name != "Jane" || mp.Index != 0 {
					t.Errorf("got %+v", mp)
				}
			},
		},
		{
			name: "list balance",
			line: "list balance n/Jane",
			validate: func(t *testing.T, cmd Command) {
				if l := cmd.(*List); !l.Balance || l.Name != "Jane" {
					t.Errorf("got %+v", l)
				}
			},
		},
		{name: "list junk", line: "list everything", wantErr: true},
		{
			name: "change group",
			line: "change g/trip",
			validate: func(t *testing.T, cmd Command) {
				if c := cmd.(*Change); c.Group != "trip" {
					t.Errorf("got %+v", c)
				}
			},
		},
		{name: "unknown command", line: "pay John", wantErr: true},
		{name: "empty line", line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if tt.wantErr {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Errorf("expected *FormatError, got %T", err)
				}
				return
			}
			if tt.validate != nil {
				tt.validate(t, cmd)
			}
		})
	}
}
