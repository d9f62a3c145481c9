package storage

import "fmt"

// migrate runs all pending schema migrations.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	if err := s.db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	migrations := []func() error{
		s.migrateV1,
	}

	for i, m := range migrations {
		ver := i + 1
		if ver <= current {
			continue
		}
		if err := m(); err != nil {
			return fmt.Errorf("migration v%d: %w", ver, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", ver); err != nil {
			return fmt.Errorf("record version v%d: %w", ver, err)
		}
	}
	return nil
}

// migrateV1 creates all initial tables and indices.
func (s *SQLiteStore) migrateV1() error {
	stmts := []string{
		// Proposal filters (single row)
		`CREATE TABLE IF NOT EXISTS proposal_filters (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			price_per_hour REAL,
			price_per_gib REAL,
			quality_level INTEGER NOT NULL DEFAULT 0,
			include_failed INTEGER NOT NULL DEFAULT 0,
			no_access_policy INTEGER NOT NULL DEFAULT 0,
			ip_type TEXT NOT NULL DEFAULT ''
		)`,

		// User events
		`CREATE TABLE IF NOT EXISTS user_events (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_user_events_created ON user_events(created_at)`,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	return tx.Commit()
}
