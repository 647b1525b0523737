package ledger

import (
	"errors"
	"fmt"
)

// Kind groups failure reasons by how the caller should react to them.
type Kind int

const (
	// KindValidation means the input was rejected before any state changed.
	KindValidation Kind = iota + 1
	// KindBounds means an activity index or a person does not exist.
	KindBounds
	// KindConflict means the request clashes with the current ledger state.
	KindConflict
	// KindIntegrity means a stored record is corrupted.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBounds:
		return "bounds"
	case KindConflict:
		return "conflict"
	case KindIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// Reason is the closed set of failures the ledger reports.
type Reason int

const (
	ReasonEmptyDescription Reason = iota + 1
	ReasonEmptyName
	ReasonDigitsInName
	ReasonSlashInName
	ReasonNoFriends
	ReasonPayerOwes
	ReasonDuplicateFriend
	ReasonNegativeAmount
	ReasonNonPositiveAmount
	ReasonLargeAmount
	ReasonNotMoneyFormat
	ReasonFriendSameAsPayer
	ReasonFriendSameAsFriend
	ReasonPayerSameAsFriend
	ReasonIndexOutOfBounds
	ReasonPersonNotFound
	ReasonAlreadyPaid
	ReasonAlreadyUnpaid
	ReasonEditAmountWhenPaid
	ReasonCapacity
	ReasonCorruptedRecord
)

var reasons = map[Reason]struct {
	kind    Kind
	message string
}{
	ReasonEmptyDescription:   {KindValidation, "activity description is empty"},
	ReasonEmptyName:          {KindValidation, "name is empty"},
	ReasonDigitsInName:       {KindValidation, "names cannot contain numbers"},
	ReasonSlashInName:        {KindValidation, "names cannot contain slash character, /"},
	ReasonNoFriends:          {KindValidation, "no friends were entered"},
	ReasonPayerOwes:          {KindValidation, "payer owes himself or herself"},
	ReasonDuplicateFriend:    {KindValidation, "friend is mentioned more than once in an activity"},
	ReasonNegativeAmount:     {KindValidation, "negative amount entered"},
	ReasonNonPositiveAmount:  {KindValidation, "amount entered should be more than $0"},
	ReasonLargeAmount:        {KindValidation, "amount exceeds the limit"},
	ReasonNotMoneyFormat:     {KindValidation, "amounts can have at most 2 decimal places"},
	ReasonFriendSameAsPayer:  {KindValidation, "new friend name cannot be the same as the payer"},
	ReasonFriendSameAsFriend: {KindValidation, "new friend name cannot be the same as another friend"},
	ReasonPayerSameAsFriend:  {KindValidation, "new payer name cannot be the same as a friend in the activity"},
	ReasonIndexOutOfBounds:   {KindBounds, "activity index is out of bounds"},
	ReasonPersonNotFound:     {KindBounds, "person does not exist"},
	ReasonAlreadyPaid:        {KindConflict, "friend has already paid for this activity"},
	ReasonAlreadyUnpaid:      {KindConflict, "friend has not paid for this activity"},
	ReasonEditAmountWhenPaid: {KindConflict, "unable to edit amount owed if it has been paid"},
	ReasonCapacity:           {KindConflict, "activity limit reached"},
	ReasonCorruptedRecord:    {KindIntegrity, "activity record is corrupted"},
}

// Error is returned by every failing ledger operation.
type Error struct {
	Reason Reason
	Detail string
}

func newError(r Reason, format string, args ...any) *Error {
	return &Error{Reason: r, Detail: fmt.Sprintf(format, args...)}
}

// Kind returns the category of the failure.
func (e *Error) Kind() Kind {
	return reasons[e.Reason].kind
}

func (e *Error) Error() string {
	msg := reasons[e.Reason].message
	if msg == "" {
		msg = fmt.Sprintf("ledger error %d", int(e.Reason))
	}
	if e.Detail == "" {
		return msg
	}
	return msg + ": " + e.Detail
}

// Is matches any *Error with the same Reason, so callers can write
// errors.Is(err, &ledger.Error{Reason: ledger.ReasonAlreadyPaid}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind()
	}
	return 0
}

// ReasonOf returns the reason of the first *Error in err's chain, or 0.
func ReasonOf(err error) Reason {
	var le *Error
	if errors.As(err, &le) {
		return le.Reason
	}
	return 0
}
