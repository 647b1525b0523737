// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/paypals/internal/models"
	"github.com/mmynk/paypals/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps PRAGMA settings and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveGroup writes the group's activities, replacing whatever was stored before.
func (s *SQLiteStore) SaveGroup(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (name, next_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET next_id = excluded.next_id, updated_at = excluded.updated_at`,
		group.Name, group.NextID, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert group: %w", err)
	}

	// Participants go with their activities via ON DELETE CASCADE
	if _, err := tx.ExecContext(ctx, "DELETE FROM activities WHERE group_name = ?", group.Name); err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}

	for pos, a := range group.Activities {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO activities (group_name, id, position, description, payer, payer_amount)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			group.Name, a.ID, pos, a.Description, a.Payer.Name, a.Payer.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert activity %d: %w", a.ID, err)
		}

		for ppos, p := range a.Participants {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO participants (group_name, activity_id, position, name, amount, paid)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				group.Name, a.ID, ppos, p.Name, p.Amount.String(), p.Paid,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadGroup reads a group and its activities in ledger order.
func (s *SQLiteStore) LoadGroup(ctx context.Context, name string) (*models.Group, error) {
	group := &models.Group{Name: name}
	err := s.db.QueryRowContext(ctx,
		"SELECT next_id, updated_at FROM groups WHERE name = ?", name,
	).Scan(&group.NextID, &group.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, payer, payer_amount FROM activities
		 WHERE group_name = ? ORDER BY position`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*models.Activity)
	for rows.Next() {
		var (
			a      models.Activity
			amount string
		)
		if err := rows.Scan(&a.ID, &a.Description, &a.Payer.Name, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if a.Payer.Amount, err = models.ParseAmount(amount); err != nil {
			slog.Warn("Skipping corrupted activity", "group", name, "id", a.ID, "error", err)
			group.Skipped++
			continue
		}
		group.Activities = append(group.Activities, &a)
		byID[a.ID] = &a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	corrupt, err := s.loadParticipants(ctx, name, byID)
	if err != nil {
		return nil, err
	}
	if len(corrupt) > 0 {
		kept := group.Activities[:0]
		for _, a := range group.Activities {
			if corrupt[a.ID] {
				slog.Warn("Skipping activity with corrupted participant", "group", name, "id", a.ID)
				group.Skipped++
				continue
			}
			kept = append(kept, a)
		}
		group.Activities = kept
	}

	return group, nil
}

// loadParticipants attaches participants to their activities and returns the
// IDs of activities holding an unreadable participant row.
func (s *SQLiteStore) loadParticipants(ctx context.Context, group string, byID map[int]*models.Activity) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT activity_id, name, amount, paid FROM participants
		 WHERE group_name = ? ORDER BY activity_id, position`,
		group,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	corrupt := make(map[int]bool)
	for rows.Next() {
		var (
			id     int
			p      models.Person
			amount string
		)
		if err := rows.Scan(&id, &p.Name, &amount, &p.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		a, ok := byID[id]
		if !ok {
			continue
		}
		if p.Amount, err = models.ParseAmount(amount); err != nil {
			corrupt[id] = true
			continue
		}
		a.Participants = append(a.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return corrupt, nil
}

// ListGroups returns the names of every saved group.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM groups ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return names, nil
}

// DeleteGroup removes a group and, through cascading deletes, its activities.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrGroupNotFound, name)
	}
	return nil
}
