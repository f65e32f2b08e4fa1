package db

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/kryuchenko/kartoshka-bot/model"
)

const lastPublishedKey = "last_published_at"

// scanEntry decodes one publication queue row. A corrupt row yields a nil
// entry together with its submission id so the caller can skip or drop it;
// the load itself never fails on bad JSON.
func scanEntry(scanner rowScanner) (*model.QueueEntry, int64, error) {
	var (
		submissionID   int64
		scheduledAt    int64
		submissionJSON string
	)
	if err := scanner.Scan(&submissionID, &scheduledAt, &submissionJSON); err != nil {
		return nil, 0, err
	}

	var entry model.QueueEntry
	if err := json.Unmarshal([]byte(submissionJSON), &entry.Submission); err != nil {
		log.Printf("Warning: corrupt queue entry for submission %d, skipping: %v", submissionID, err)
		return nil, submissionID, nil
	}
	entry.ScheduledAt = time.Unix(0, scheduledAt).UTC()
	return &entry, submissionID, nil
}

// Enqueue appends an entry to the publication queue.
func (s *Store) Enqueue(entry model.QueueEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := enqueueTx(tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func enqueueTx(tx *sql.Tx, entry model.QueueEntry) error {
	submissionJSON, err := json.Marshal(entry.Submission)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO publication_queue(submission_id, scheduled_at, submission)
		VALUES(?, ?, ?)`,
		entry.Submission.ID, entry.ScheduledAt.UnixNano(), string(submissionJSON),
	)
	return err
}

// MoveToQueue removes a submission from the moderation set and inserts its
// queue entry in a single transaction, so the item is never owned by both
// durable records and never lost between them.
func (s *Store) MoveToQueue(submissionID int64, entry model.QueueEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pending_submissions WHERE id = ?", submissionID); err != nil {
		return err
	}
	if err := enqueueTx(tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// NextEntry returns the earliest decodable entry by scheduled time, or nil
// when the queue is empty. Corrupt rows ahead of it are deleted so they can
// never block the drain loop.
func (s *Store) NextEntry() (*model.QueueEntry, error) {
	rows, err := s.db.Query(`SELECT submission_id, scheduled_at, submission
		FROM publication_queue ORDER BY scheduled_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var next *model.QueueEntry
	var corrupt []int64
	for rows.Next() {
		entry, id, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			corrupt = append(corrupt, id)
			continue
		}
		next = entry
		break
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, id := range corrupt {
		if err := s.RemoveEntry(id); err != nil {
			log.Printf("Failed to drop corrupt queue entry %d: %v", id, err)
		}
	}
	return next, nil
}

// Entries returns the whole queue ordered by scheduled time ascending.
func (s *Store) Entries() ([]model.QueueEntry, error) {
	rows, err := s.db.Query(`SELECT submission_id, scheduled_at, submission
		FROM publication_queue ORDER BY scheduled_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.QueueEntry
	for rows.Next() {
		entry, _, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, rows.Err()
}

// LastScheduledAt returns the latest scheduled time in the queue. The
// second return value is false when the queue is empty.
func (s *Store) LastScheduledAt() (time.Time, bool, error) {
	var scheduledAt sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(scheduled_at) FROM publication_queue").Scan(&scheduledAt)
	if err != nil {
		return time.Time{}, false, err
	}
	if !scheduledAt.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(0, scheduledAt.Int64).UTC(), true, nil
}

// RemoveEntry deletes a queue entry by submission id.
func (s *Store) RemoveEntry(submissionID int64) error {
	_, err := s.db.Exec("DELETE FROM publication_queue WHERE submission_id = ?", submissionID)
	return err
}

// RescheduleEntry rewrites the scheduled time of a queue entry.
func (s *Store) RescheduleEntry(submissionID int64, at time.Time) error {
	_, err := s.db.Exec("UPDATE publication_queue SET scheduled_at = ? WHERE submission_id = ?",
		at.UnixNano(), submissionID)
	return err
}

// LastPublishedAt returns the timestamp of the most recent successful
// publication. The second return value is false when nothing has been
// published yet.
func (s *Store) LastPublishedAt() (time.Time, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM bot_state WHERE key = ?", lastPublishedKey).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		log.Printf("Warning: corrupt last-published timestamp %q, ignoring: %v", value, err)
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// SetLastPublishedAt persists the timestamp of the most recent publish.
func (s *Store) SetLastPublishedAt(t time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO bot_state(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		lastPublishedKey, t.UTC().Format(time.RFC3339Nano),
	)
	return err
}
