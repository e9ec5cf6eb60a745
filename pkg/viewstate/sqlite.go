package viewstate

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/relmap/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS view_state (
	root_id             TEXT PRIMARY KEY,
	hide_passive_nodes  INTEGER NOT NULL DEFAULT 0,
	show_external_nodes INTEGER NOT NULL DEFAULT 0,
	show_hierarchy      INTEGER NOT NULL DEFAULT 0,
	min_interactions    INTEGER NOT NULL DEFAULT 0,
	updated_at          TIMESTAMP NOT NULL
);
`

// SQLiteStore persists toggle state in a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) a toggle-state database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open view state database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating view_state table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(rootID string) (model.ToggleState, bool, error) {
	var ts model.ToggleState
	err := s.db.QueryRow(`
		SELECT hide_passive_nodes, show_external_nodes, show_hierarchy, min_interactions
		FROM view_state WHERE root_id = ?`, rootID,
	).Scan(&ts.HidePassiveNodes, &ts.ShowExternalNodes, &ts.ShowHierarchy, &ts.MinInteractions)
	if err == sql.ErrNoRows {
		return model.ToggleState{}, false, nil
	}
	if err != nil {
		return model.ToggleState{}, false, fmt.Errorf("reading view state: %w", err)
	}
	return ts, true, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(rootID string, ts model.ToggleState) error {
	_, err := s.db.Exec(`
		INSERT INTO view_state
			(root_id, hide_passive_nodes, show_external_nodes, show_hierarchy, min_interactions, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(root_id) DO UPDATE SET
			hide_passive_nodes  = excluded.hide_passive_nodes,
			show_external_nodes = excluded.show_external_nodes,
			show_hierarchy      = excluded.show_hierarchy,
			min_interactions    = excluded.min_interactions,
			updated_at          = excluded.updated_at`,
		rootID, ts.HidePassiveNodes, ts.ShowExternalNodes, ts.ShowHierarchy, ts.MinInteractions, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing view state: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
