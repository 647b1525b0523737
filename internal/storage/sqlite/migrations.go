package sqlite

import (
	"database/sql"
	"fmt"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as decimal strings so that no precision is lost.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    name TEXT PRIMARY KEY,
    next_id INTEGER NOT NULL DEFAULT 1,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
    group_name TEXT NOT NULL,
    id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    description TEXT NOT NULL,
    payer TEXT NOT NULL,
    payer_amount TEXT NOT NULL,
    PRIMARY KEY (group_name, id),
    FOREIGN KEY (group_name) REFERENCES groups(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS participants (
    group_name TEXT NOT NULL,
    activity_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    paid INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (group_name, activity_id, name),
    FOREIGN KEY (group_name, activity_id) REFERENCES activities(group_name, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_activities_group ON activities(group_name, position);
CREATE INDEX IF NOT EXISTS idx_participants_activity ON participants(group_name, activity_id, position);
`

// columns added after a table was first created. Databases written by an
// older build get them through ALTER TABLE.
var columns = []struct {
	table, name, ddl string
}{
	{"groups", "next_id", "INTEGER NOT NULL DEFAULT 1"},
}

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	for _, c := range columns {
		has, err := hasColumn(db, c.table, c.name)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.ddl)); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", c.table, c.name, err)
		}
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	return n > 0, nil
}
