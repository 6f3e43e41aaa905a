package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"notevault/internal/infrastructure/migration"
)

// Storage wraps the sqlite database handle shared by all repositories.
type Storage struct {
	db *sql.DB
}

// New opens (creating if needed) the database file and applies pending
// migrations. WAL keeps concurrent request handlers from serializing on
// reads; foreign keys back the note content and session cascades.
func New(dbPath, migrationsPath string) (*Storage, error) {
	mg := migration.NewMigration(migrationsPath, dbPath, migration.DefaultEngine)
	if err := mg.Up(); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY under concurrent write load.
	db.SetMaxOpenConns(1)

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) DB() *sql.DB {
	return s.db
}
