package db

import (
	"database/sql"
	"fmt"
)

// nextSubmissionID retrieves the current submission id and increments it
// within the given transaction.
func nextSubmissionID(tx *sql.Tx) (int64, error) {
	var currentID int64
	err := tx.QueryRow("SELECT current_value FROM id_counter WHERE counter_name = 'submission_id'").Scan(&currentID)
	if err != nil {
		return 0, err
	}

	newID := currentID + 1
	_, err = tx.Exec("UPDATE id_counter SET current_value = ? WHERE counter_name = 'submission_id'", newID)
	if err != nil {
		return 0, err
	}

	return newID, nil
}

// NextSubmissionID issues the next submission id from the durable counter.
func (s *Store) NextSubmissionID() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := nextSubmissionID(tx)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// repairCounter runs at startup: if the counter row is missing or lags
// behind the ids already present in the moderation set or the publication
// queue, it is pushed forward to max(id) over both records so a restart
// never reuses an id. The counter remains the primary source of truth
// afterwards.
func (s *Store) repairCounter() error {
	var maxPending, maxQueued, current int64

	if err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM pending_submissions").Scan(&maxPending); err != nil {
		return fmt.Errorf("scan max pending id: %w", err)
	}
	if err := s.db.QueryRow("SELECT COALESCE(MAX(submission_id), 0) FROM publication_queue").Scan(&maxQueued); err != nil {
		return fmt.Errorf("scan max queued id: %w", err)
	}

	err := s.db.QueryRow("SELECT current_value FROM id_counter WHERE counter_name = 'submission_id'").Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("scan counter: %w", err)
	}

	highest := maxPending
	if maxQueued > highest {
		highest = maxQueued
	}
	if highest <= current {
		return nil
	}

	_, err = s.db.Exec(
		"INSERT INTO id_counter(counter_name, current_value) VALUES('submission_id', ?) "+
			"ON CONFLICT(counter_name) DO UPDATE SET current_value = ?",
		highest, highest,
	)
	return err
}
