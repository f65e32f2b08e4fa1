package db

import "fmt"

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// SQL statement to create the 'pending_submissions' table. The payload
	// and the vote map are stored as JSON; author_id stays empty for
	// anonymous submissions.
	createPendingTableSQL := `
	CREATE TABLE IF NOT EXISTS pending_submissions (
		id INTEGER PRIMARY KEY,
		author_id TEXT NOT NULL DEFAULT '',
		visibility TEXT NOT NULL,
		payload TEXT NOT NULL,
		votes TEXT NOT NULL DEFAULT '{}',
		decided INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);`

	if _, err := s.db.Exec(createPendingTableSQL); err != nil {
		return fmt.Errorf("create pending_submissions table: %w", err)
	}

	// SQL statement to create the 'publication_queue' table. scheduled_at
	// is unix nanoseconds and drives the queue order.
	createQueueTableSQL := `
	CREATE TABLE IF NOT EXISTS publication_queue (
		submission_id INTEGER PRIMARY KEY,
		scheduled_at INTEGER NOT NULL,
		submission TEXT NOT NULL
	);`

	if _, err := s.db.Exec(createQueueTableSQL); err != nil {
		return fmt.Errorf("create publication_queue table: %w", err)
	}

	// SQL statement to create the 'id_counter' table for sequential ID
	// generation.
	createIdCounterTableSQL := `
	CREATE TABLE IF NOT EXISTS id_counter (
		counter_name TEXT PRIMARY KEY,
		current_value INTEGER NOT NULL DEFAULT 0
	);`

	if _, err := s.db.Exec(createIdCounterTableSQL); err != nil {
		return fmt.Errorf("create id_counter table: %w", err)
	}

	if _, err := s.db.Exec("INSERT OR IGNORE INTO id_counter(counter_name, current_value) VALUES('submission_id', 0)"); err != nil {
		return fmt.Errorf("initialize submission counter: %w", err)
	}

	// SQL statement to create the 'bot_state' table holding the
	// last-published timestamp.
	createStateTableSQL := `
	CREATE TABLE IF NOT EXISTS bot_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	if _, err := s.db.Exec(createStateTableSQL); err != nil {
		return fmt.Errorf("create bot_state table: %w", err)
	}

	return nil
}
