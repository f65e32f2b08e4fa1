package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const dbDriver = "sqlite3"

// Store owns the durable state of the bot: the moderation set of pending
// submissions, the publication queue with its last-published timestamp, and
// the submission id counter. Everything lives in one sqlite database file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, runs the table migration
// and repairs the id counter from the stored records.
func Open(path string) (*Store, error) {
	conn, err := sql.Open(dbDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := s.repairCounter(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// rowScanner is an interface that can be satisfied by *sql.Row or *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
