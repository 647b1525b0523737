package command

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/session"
	"github.com/mmynk/paypals/internal/storage/sqlite"
)

func setupSession(t *testing.T) *session.Session {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s, err := session.Open(context.Background(), store, "default", ledger.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	return s
}

func runLines(t *testing.T, s *session.Session, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := Run(context.Background(), s, in, &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

func TestRun_Split(t *testing.T) {
	s := setupSession(t)
	out := runLines(t, s,
		"add d/lunch n/John f/Jane a/28 f/Jeremy a/10",
		"add d/dinner n/John f/Jane a/18",
		"split",
		"exit",
	)

	want := "Best way to settle debts:\nJane pays John $46.00\nJeremy pays John $10.00\n"
	if !strings.Contains(out, want) {
		t.Errorf("output missing settlement:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("expected exit message, got:\n%s", out)
	}
}

func TestRun_ErrorsDoNotStopTheLoop(t *testing.T) {
	s := setupSession(t)
	out := runLines(t, s,
		"add d/lunch n/John f/John a/5",
		"delete i/4",
		"fly away",
		"addequal d/trip n/Eve f/Frank f/Gina a/90",
		"paid i/1 n/Frank",
		"paid i/1 n/Frank",
		"edit i/1 a/10 o/Frank",
		"list balance n/Eve",
		"exit",
	)

	for _, want := range []string{
		"INPUT ERROR: payer owes himself or herself: John",
		"INPUT ERROR: activity index is out of bounds: 4",
		"INPUT ERROR: Invalid command entered",
		"Number of friends who owe Eve: 2",
		"Frank has been marked as paid",
		"LOGIC ERROR: friend has already paid for this activity: Frank",
		"LOGIC ERROR: unable to edit amount owed if it has been paid: Frank",
		"Eve is owed $30.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestRun_ListAndEdit(t *testing.T) {
	s := setupSession(t)
	out := runLines(t, s,
		"add d/lunch n/John f/Jane a/28",
		"add d/taxi n/Jeremy f/John a/6",
		"edit i/1 f/Janet o/Jane",
		"list n/John",
		"delete i/1",
		"list",
	)

	for _, want := range []string{
		"Activities involving John:\n1. Desc: lunch\n    Payer: John\n    Owed by: Janet $28.00\n2. Desc: taxi",
		"Activity deleted: lunch",
		"1. Desc: taxi\n    Payer: Jeremy\n    Owed by: John $6.00\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_ChangeGroup(t *testing.T) {
	s := setupSession(t)
	out := runLines(t, s,
		"add d/lunch n/John f/Jane a/28",
		"change g/trip",
		"split",
		"change g/default",
		"groups",
	)

	for _, want := range []string{
		"Now using group trip (0 activities)",
		"All debts are settled.",
		"Now using group default (1 activities)",
		"1. default (current)\n2. trip\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
