package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db      *sqlx.DB
	dataDir string
}

// NewSQLiteStore opens (or creates) a SQLite database in dataDir/data.db and runs migrations.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "data.db")
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Serializes SetPartial's read-merge-write with every other writer.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, dataDir: dataDir}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	if err := s.ensureDefaults(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure defaults: %w", err)
	}

	return s, nil
}

// ensureDefaults inserts the filters row if it doesn't exist.
func (s *SQLiteStore) ensureDefaults() error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO proposal_filters (id) VALUES (1)`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetDataDir returns the data directory.
func (s *SQLiteStore) GetDataDir() string {
	return s.dataDir
}
