// Package ledger keeps a group's activities, net balances and per-person
// activity index consistent with each other.
package ledger

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paypals/internal/calculator"
	"github.com/mmynk/paypals/internal/models"
)

const (
	// DefaultMaxActivities is the number of live activities a group may hold.
	DefaultMaxActivities = 1000
)

// DefaultAmountLimit is the largest amount a single share or total may have.
var DefaultAmountLimit = decimal.NewFromInt(10000)

// Options tunes the limits enforced by a Ledger.
type Options struct {
	MaxActivities int
	AmountLimit   decimal.Decimal
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxActivities: DefaultMaxActivities,
		AmountLimit:   DefaultAmountLimit,
	}
}

// Ledger owns the activities of one group.
//
// A Ledger is not safe for concurrent use. Callers that share one between
// goroutines must serialise every call (see session.Session).
type Ledger struct {
	opts Options

	activities []*models.Activity

	// balances and order form an insertion-ordered map.
	balances map[string]decimal.Decimal
	order    []string

	index  map[string][]*models.Activity
	nextID int
}

// New creates an empty ledger. Zero fields in opts fall back to the defaults.
func New(opts Options) *Ledger {
	def := DefaultOptions()
	if opts.MaxActivities <= 0 {
		opts.MaxActivities = def.MaxActivities
	}
	if !opts.AmountLimit.IsPositive() {
		opts.AmountLimit = def.AmountLimit
	}
	return &Ledger{
		opts:     opts,
		balances: make(map[string]decimal.Decimal),
		index:    make(map[string][]*models.Activity),
		nextID:   1,
	}
}

// Len returns the number of live activities.
func (l *Ledger) Len() int {
	return len(l.activities)
}

// AddActivity records an activity where each friend owes an explicit amount.
// The payer's amount is the negated sum of the shares. Amounts are not re-rounded.
func (l *Ledger) AddActivity(description, payer string, shares []models.Share) (*models.Activity, error) {
	if err := l.checkCapacity(); err != nil {
		return nil, err
	}
	if err := l.validateHeader(description, payer, len(shares)); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(shares))
	a := &models.Activity{Description: description}
	total := decimal.Zero
	for _, s := range shares {
		if err := l.validateFriend(payer, s.Name, seen); err != nil {
			return nil, err
		}
		if err := l.validateShare(s.Amount); err != nil {
			return nil, err
		}
		seen[s.Name] = true
		a.Participants = append(a.Participants, models.NewPerson(s.Name, s.Amount))
		total = total.Add(s.Amount)
	}
	a.Payer = models.NewPerson(payer, total.Neg())

	l.insert(a, 0)
	slog.Debug("Activity added", "id", a.ID, "payer", payer, "friends", len(shares), "owed", total.String())
	return a.Clone(), nil
}

// AddEqualSplit records an activity where total is shared evenly by the payer
// and every friend. Each share is rounded half to even at cents and the payer
// absorbs the residual.
func (l *Ledger) AddEqualSplit(description, payer string, friends []string, total decimal.Decimal) (*models.Activity, error) {
	if err := l.checkCapacity(); err != nil {
		return nil, err
	}
	if err := l.validateHeader(description, payer, len(friends)); err != nil {
		return nil, err
	}
	if !total.IsPositive() {
		return nil, newError(ReasonNonPositiveAmount, "%s", total)
	}
	if !models.IsCents(total) {
		return nil, newError(ReasonNotMoneyFormat, "%s", total)
	}
	if total.GreaterThan(l.opts.AmountLimit) {
		return nil, newError(ReasonLargeAmount, "%s > %s", total, l.opts.AmountLimit)
	}

	seen := make(map[string]bool, len(friends))
	for _, f := range friends {
		if err := l.validateFriend(payer, f, seen); err != nil {
			return nil, err
		}
		seen[f] = true
	}

	share, _, err := calculator.EqualShare(total, len(friends))
	if err != nil {
		return nil, newError(ReasonNonPositiveAmount, "%v", err)
	}

	a := &models.Activity{Description: description}
	for _, f := range friends {
		a.Participants = append(a.Participants, models.NewPerson(f, share))
	}
	a.Payer = models.NewPerson(payer, a.Owed().Neg())

	l.insert(a, 0)
	slog.Debug("Equal split added", "id", a.ID, "payer", payer, "total", total.String(), "share", share.String())
	return a.Clone(), nil
}

// Activity returns a copy of the activity at position i.
func (l *Ledger) Activity(i int) (*models.Activity, error) {
	a, err := l.at(i)
	if err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// Activities returns copies of every live activity in ledger order.
func (l *Ledger) Activities() []*models.Activity {
	out := make([]*models.Activity, len(l.activities))
	for i, a := range l.activities {
		out[i] = a.Clone()
	}
	return out
}

// RemoveActivity deletes the activity at position i and returns it.
func (l *Ledger) RemoveActivity(i int) (*models.Activity, error) {
	a, err := l.at(i)
	if err != nil {
		return nil, err
	}

	l.credit(a.Payer.Name, a.Payer.Amount)
	for _, p := range a.Participants {
		l.credit(p.Name, p.Amount)
	}
	l.activities = append(l.activities[:i], l.activities[i+1:]...)
	l.unlink(a.Payer.Name, a)
	for _, p := range a.Participants {
		l.unlink(p.Name, a)
	}

	slog.Debug("Activity removed", "id", a.ID, "description", a.Description)
	return a.Clone(), nil
}

// MarkPaid flags a friend's share in the activity at position i as paid.
// Balances used for settlement are not affected.
func (l *Ledger) MarkPaid(i int, name string) error {
	return l.setPaid(i, name, true)
}

// MarkUnpaid clears the paid flag set by MarkPaid.
func (l *Ledger) MarkUnpaid(i int, name string) error {
	return l.setPaid(i, name, false)
}

func (l *Ledger) setPaid(i int, name string, paid bool) error {
	a, err := l.at(i)
	if err != nil {
		return err
	}
	p, pos, ok := a.Participant(name)
	if !ok {
		return newError(ReasonPersonNotFound, "%s is not a friend in activity %d", name, i+1)
	}
	if p.Paid == paid {
		if paid {
			return newError(ReasonAlreadyPaid, "%s", name)
		}
		return newError(ReasonAlreadyUnpaid, "%s", name)
	}
	a.Participants[pos].Paid = paid
	slog.Debug("Paid flag changed", "id", a.ID, "name", name, "paid", paid)
	return nil
}

// NetBalances returns every person's net balance in first-seen order.
func (l *Ledger) NetBalances() []models.Balance {
	out := make([]models.Balance, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, models.Balance{Name: name, Amount: l.balances[name]})
	}
	return out
}

// Balance returns the net balance of one person.
func (l *Ledger) Balance(name string) (decimal.Decimal, bool) {
	b, ok := l.balances[name]
	return b, ok
}

// PersonActivities returns copies of every activity name takes part in, in ledger order.
func (l *Ledger) PersonActivities(name string) ([]*models.Activity, error) {
	list, ok := l.index[name]
	if !ok {
		return nil, newError(ReasonPersonNotFound, "%s", name)
	}
	out := make([]*models.Activity, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out, nil
}

// OutstandingBalance is what name is still owed (positive) or still owes
// (negative) once paid shares are taken out.
func (l *Ledger) OutstandingBalance(name string) (decimal.Decimal, error) {
	list, ok := l.index[name]
	if !ok {
		return decimal.Zero, newError(ReasonPersonNotFound, "%s", name)
	}
	total := decimal.Zero
	for _, a := range list {
		for _, p := range a.Participants {
			if p.Paid {
				continue
			}
			switch name {
			case a.Payer.Name:
				total = total.Add(p.Amount)
			case p.Name:
				total = total.Sub(p.Amount)
			}
		}
	}
	return total, nil
}

// Restore inserts an activity read back from storage, keeping its ID and paid
// flags. Records that break the activity invariants are rejected with an
// integrity error.
func (l *Ledger) Restore(a *models.Activity) error {
	if err := l.checkCapacity(); err != nil {
		return err
	}
	if err := l.checkIntegrity(a); err != nil {
		return err
	}
	l.insert(a.Clone(), a.ID)
	return nil
}

// NextID is the ID the next added activity will get. IDs of deleted
// activities are never handed out again.
func (l *Ledger) NextID() int {
	return l.nextID
}

// SetNextID raises the ID counter to n. It never lowers it, so a stale
// stored value cannot make an ID in use come round again.
func (l *Ledger) SetNextID(n int) {
	if n > l.nextID {
		l.nextID = n
	}
}

// Clone returns a deep copy that shares no state with l.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		opts:       l.opts,
		activities: make([]*models.Activity, len(l.activities)),
		balances:   make(map[string]decimal.Decimal, len(l.balances)),
		order:      append([]string(nil), l.order...),
		index:      make(map[string][]*models.Activity, len(l.index)),
		nextID:     l.nextID,
	}
	copies := make(map[*models.Activity]*models.Activity, len(l.activities))
	for i, a := range l.activities {
		c.activities[i] = a.Clone()
		copies[a] = c.activities[i]
	}
	for name, b := range l.balances {
		c.balances[name] = b
	}
	for name, list := range l.index {
		mapped := make([]*models.Activity, len(list))
		for i, a := range list {
			mapped[i] = copies[a]
		}
		c.index[name] = mapped
	}
	return c
}

func (l *Ledger) checkIntegrity(a *models.Activity) error {
	corrupt := func(format string, args ...any) error {
		return newError(ReasonCorruptedRecord, "activity %d: "+format, append([]any{a.ID}, args...)...)
	}
	if a.ID <= 0 {
		return corrupt("invalid id")
	}
	for _, other := range l.activities {
		if other.ID == a.ID {
			return corrupt("duplicate id")
		}
	}
	if err := l.validateHeader(a.Description, a.Payer.Name, len(a.Participants)); err != nil {
		return corrupt("%v", err)
	}
	seen := make(map[string]bool, len(a.Participants))
	for _, p := range a.Participants {
		if err := l.validateFriend(a.Payer.Name, p.Name, seen); err != nil {
			return corrupt("%v", err)
		}
		if p.Amount.IsNegative() || !models.IsCents(p.Amount) {
			return corrupt("bad amount %s for %s", p.Amount, p.Name)
		}
		seen[p.Name] = true
	}
	if !a.Payer.Amount.Equal(a.Owed().Neg()) {
		return corrupt("payer amount %s does not match owed %s", a.Payer.Amount, a.Owed())
	}
	return nil
}

// insert appends a and books it into balances and the index.
// An id of 0 assigns the next free ID.
func (l *Ledger) insert(a *models.Activity, id int) {
	if id == 0 {
		id = l.nextID
	}
	a.ID = id
	if id >= l.nextID {
		l.nextID = id + 1
	}

	l.activities = append(l.activities, a)
	l.credit(a.Payer.Name, a.Payer.Amount.Neg())
	l.link(a.Payer.Name, a)
	for _, p := range a.Participants {
		l.credit(p.Name, p.Amount.Neg())
		l.link(p.Name, a)
	}
}

func (l *Ledger) at(i int) (*models.Activity, error) {
	if i < 0 || i >= len(l.activities) {
		return nil, newError(ReasonIndexOutOfBounds, "%d (have %d)", i+1, len(l.activities))
	}
	return l.activities[i], nil
}

// credit moves name's net balance by delta.
func (l *Ledger) credit(name string, delta decimal.Decimal) {
	cur, ok := l.balances[name]
	if !ok {
		l.order = append(l.order, name)
	}
	l.balances[name] = cur.Add(delta)
}

func (l *Ledger) link(name string, a *models.Activity) {
	l.index[name] = append(l.index[name], a)
}

func (l *Ledger) unlink(name string, a *models.Activity) {
	list := l.index[name]
	for i, x := range list {
		if x == a {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) > 0 {
		l.index[name] = list
		return
	}
	l.forget(name)
}

// reindex rebuilds name's index entry from the activity list.
func (l *Ledger) reindex(name string) {
	var list []*models.Activity
	for _, a := range l.activities {
		if a.HasPerson(name) {
			list = append(list, a)
		}
	}
	if len(list) > 0 {
		l.index[name] = list
		return
	}
	l.forget(name)
}

// forget drops a person that no longer appears in any activity.
func (l *Ledger) forget(name string) {
	delete(l.index, name)
	if b, ok := l.balances[name]; ok && !b.IsZero() {
		slog.Warn("Dropping person with nonzero balance", "name", name, "balance", b.String())
	}
	delete(l.balances, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *Ledger) checkCapacity() error {
	if len(l.activities) >= l.opts.MaxActivities {
		return newError(ReasonCapacity, "group already has %d activities", len(l.activities))
	}
	return nil
}

func (l *Ledger) validateHeader(description, payer string, friends int) error {
	if strings.TrimSpace(description) == "" {
		return newError(ReasonEmptyDescription, "")
	}
	if err := validateName(payer); err != nil {
		return err
	}
	if friends == 0 {
		return newError(ReasonNoFriends, "")
	}
	return nil
}

func (l *Ledger) validateFriend(payer, name string, seen map[string]bool) error {
	if err := validateName(name); err != nil {
		return err
	}
	if name == payer {
		return newError(ReasonPayerOwes, "%s", name)
	}
	if seen[name] {
		return newError(ReasonDuplicateFriend, "%s", name)
	}
	return nil
}

func (l *Ledger) validateShare(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return newError(ReasonNegativeAmount, "%s", amount)
	}
	if !models.IsCents(amount) {
		return newError(ReasonNotMoneyFormat, "%s", amount)
	}
	if amount.GreaterThan(l.opts.AmountLimit) {
		return newError(ReasonLargeAmount, "%s > %s", amount, l.opts.AmountLimit)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return newError(ReasonEmptyName, "")
	}
	if strings.ContainsAny(name, "0123456789") {
		return newError(ReasonDigitsInName, "%s", name)
	}
	if strings.Contains(name, "/") {
		return newError(ReasonSlashInName, "%s", name)
	}
	return nil
}
