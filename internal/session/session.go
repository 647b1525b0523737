// Package session binds one group's ledger to its store. A Session is the single
// object every front end (REPL, HTTP) goes through; it serialises all access
// behind one mutex and saves the group after every successful mutation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/calculator"
	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/models"
	"github.com/mmynk/paypals/internal/storage"
)

// Session is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	store   storage.Store
	opts    ledger.Options
	group   string
	ledger  *ledger.Ledger
	skipped int
}

// Open loads group from store. A group that was never saved starts empty.
func Open(ctx context.Context, store storage.Store, group string, opts ledger.Options) (*Session, error) {
	s := &Session{store: store, opts: opts}
	if err := s.load(ctx, group); err != nil {
		return nil, err
	}
	return s, nil
}

// load replaces the current ledger with the stored contents of group. Caller holds mu
// or has exclusive access.
func (s *Session) load(ctx context.Context, group string) error {
	l := ledger.New(s.opts)
	skipped := 0

	g, err := s.store.LoadGroup(ctx, group)
	switch {
	case errors.Is(err, storage.ErrGroupNotFound):
		slog.Info("Starting new group", "group", group)
	case err != nil:
		return fmt.Errorf("failed to load group %s: %w", group, err)
	default:
		skipped = g.Skipped
		for _, a := range g.Activities {
			err := l.Restore(a)
			if ledger.KindOf(err) == ledger.KindIntegrity {
				slog.Warn("Skipping corrupted activity", "group", group, "error", err)
				skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to restore group %s: %w", group, err)
			}
		}
		l.SetNextID(g.NextID)
		slog.Info("Group loaded", "group", group, "activities", l.Len(), "skipped", skipped)
	}

	s.group = group
	s.ledger = l
	s.skipped = skipped
	return nil
}

// save writes the current group. Caller holds mu.
func (s *Session) save(ctx context.Context) error {
	g := &models.Group{Name: s.group, Activities: s.ledger.Activities(), NextID: s.ledger.NextID()}
	if err := s.store.SaveGroup(ctx, g); err != nil {
		return fmt.Errorf("failed to save group %s: %w", s.group, err)
	}
	return nil
}

// mutate runs fn under the lock and saves the group if fn succeeded. If the
// save fails the ledger goes back to how it was before fn ran.
func (s *Session) mutate(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.ledger.Clone()
	if err := fn(s.ledger); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		s.ledger = before
		return err
	}
	return nil
}

// Group returns the name of the open group.
func (s *Session) Group() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group
}

// Skipped returns how many stored records were dropped when the group was loaded.
func (s *Session) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Save writes the open group to the store.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// SwitchGroup saves the open group and loads another one.
func (s *Session) SwitchGroup(ctx context.Context, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group == s.group {
		return nil
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	return s.load(ctx, group)
}

// Groups lists every stored group.
func (s *Session) Groups(ctx context.Context) ([]string, error) {
	return s.store.ListGroups(ctx)
}

// AddActivity records an activity with explicit shares. It also returns the
// 0-based position the activity was appended at.
func (s *Session) AddActivity(ctx context.Context, description, payer string, shares []models.Share) (*models.Activity, int, error) {
	var (
		a   *models.Activity
		pos int
	)
	err := s.mutate(ctx, func(l *ledger.Ledger) error {
		var err error
		a, err = l.AddActivity(description, payer, shares)
		pos = l.Len() - 1
		return err
	})
	return a, pos, err
}

// AddEqualSplit records an activity split evenly between payer and friends,
// returning it with its 0-based position.
func (s *Session) AddEqualSplit(ctx context.Context, description, payer string, friends []string, total decimal.Decimal) (*models.Activity, int, error) {
	var (
		a   *models.Activity
		pos int
	)
	err := s.mutate(ctx, func(l *ledger.Ledger) error {
		var err error
		a, err = l.AddEqualSplit(description, payer, friends, total)
		pos = l.Len() - 1
		return err
	})
	return a, pos, err
}

// RemoveActivity deletes the activity at position i.
func (s *Session) RemoveActivity(ctx context.Context, i int) (*models.Activity, error) {
	var a *models.Activity
	err := s.mutate(ctx, func(l *ledger.Ledger) error {
		var err error
		a, err = l.RemoveActivity(i)
		return err
	})
	return a, err
}

// EditActivity applies e to the activity at position i.
func (s *Session) EditActivity(ctx context.Context, i int, e ledger.Edit) (*models.Activity, error) {
	var a *models.Activity
	err := s.mutate(ctx, func(l *ledger.Ledger) error {
		var err error
		a, err = l.EditActivity(i, e)
		return err
	})
	return a, err
}

// MarkPaid flags name's share of activity i as paid.
func (s *Session) MarkPaid(ctx context.Context, i int, name string) error {
	return s.mutate(ctx, func(l *ledger.Ledger) error {
		return l.MarkPaid(i, name)
	})
}

// MarkUnpaid clears name's paid flag on activity i.
func (s *Session) MarkUnpaid(ctx context.Context, i int, name string) error {
	return s.mutate(ctx, func(l *ledger.Ledger) error {
		return l.MarkUnpaid(i, name)
	})
}

// Activities returns every activity in ledger order.
func (s *Session) Activities() []*models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Activities()
}

// Activity returns the activity at position i.
func (s *Session) Activity(i int) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Activity(i)
}

// Len returns the number of live activities.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len()
}

// PersonActivities returns the activities name takes part in.
func (s *Session) PersonActivities(name string) ([]*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.PersonActivities(name)
}

// OutstandingBalance returns name's balance net of paid shares.
func (s *Session) OutstandingBalance(name string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.OutstandingBalance(name)
}

// NetBalances returns every person's net balance.
func (s *Session) NetBalances() []models.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.NetBalances()
}

// Settlement computes the payments that clear the current balances.
func (s *Session) Settlement() []models.Transaction {
	return calculator.Settle(s.NetBalances())
}
