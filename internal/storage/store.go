// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/paypals/internal/models"
)

// ErrGroupNotFound is returned when a group has never been saved.
var ErrGroupNotFound = errors.New("group not found")

// Store defines the interface for group storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the session layer.
type Store interface {
	// SaveGroup replaces everything stored for group.Name with group.Activities.
	// UpdatedAt is set by the store.
	SaveGroup(ctx context.Context, group *models.Group) error

	// LoadGroup reads a group back. Corrupted activity records are skipped
	// and counted in Group.Skipped rather than failing the whole load.
	// Returns ErrGroupNotFound if the group was never saved.
	LoadGroup(ctx context.Context, name string) (*models.Group, error)

	// ListGroups returns the names of all saved groups, sorted.
	ListGroups(ctx context.Context) ([]string, error)

	// DeleteGroup removes a group and all its activities.
	// Returns ErrGroupNotFound if the group does not exist.
	DeleteGroup(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close() error
}
