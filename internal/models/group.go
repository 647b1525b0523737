package models

// Group is a named ledger. Each group keeps its own activities and balances.
type Group struct {
	// Name is the display name of the group (e.g., "Roommates", "Japan trip").
	Name string

	// Activities are the group's live activities in ledger order.
	Activities []*Activity

	// NextID is the ID the group's next activity will get. Zero means unknown.
	NextID int

	// UpdatedAt is the Unix timestamp of the last save.
	UpdatedAt int64

	// Skipped counts corrupted records dropped while loading.
	Skipped int
}
