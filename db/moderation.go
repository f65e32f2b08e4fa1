package db

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/kryuchenko/kartoshka-bot/model"
	"github.com/kryuchenko/kartoshka-bot/vote"
)

// scanPending scans a row into a Submission. A row whose payload or vote
// JSON does not parse is treated as corrupt: a warning is logged and the
// row is skipped rather than failing the whole load.
func scanPending(scanner rowScanner) (*model.Submission, error) {
	var (
		sub         model.Submission
		payloadJSON string
		votesJSON   string
		decided     int
		createdAt   int64
	)
	err := scanner.Scan(&sub.ID, &sub.AuthorID, &sub.Visibility, &payloadJSON, &votesJSON, &decided, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(payloadJSON), &sub.Payload); err != nil {
		log.Printf("Warning: corrupt payload for pending submission %d, skipping: %v", sub.ID, err)
		return nil, nil
	}
	if err := json.Unmarshal([]byte(votesJSON), &sub.Votes); err != nil {
		log.Printf("Warning: corrupt vote map for pending submission %d, resetting: %v", sub.ID, err)
		sub.Votes = vote.Tally{}
	}
	if sub.Votes == nil {
		sub.Votes = vote.Tally{}
	}
	sub.Decided = decided == 1
	sub.CreatedAt = time.Unix(0, createdAt).UTC()
	return &sub, nil
}

// SavePending inserts or replaces a submission in the moderation set. The
// author reference is written only for attributed submissions; anonymous
// ones are persisted without it.
func (s *Store) SavePending(sub *model.Submission) error {
	payloadJSON, err := json.Marshal(sub.Payload)
	if err != nil {
		return err
	}
	votesJSON, err := json.Marshal(sub.Votes)
	if err != nil {
		return err
	}

	authorID := sub.AuthorID
	if sub.Visibility == model.Anonymous {
		authorID = ""
	}

	decided := 0
	if sub.Decided {
		decided = 1
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO pending_submissions(
		id, author_id, visibility, payload, votes, decided, created_at
	) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, authorID, string(sub.Visibility), string(payloadJSON), string(votesJSON), decided, sub.CreatedAt.UnixNano(),
	)
	return err
}

// GetPending retrieves a pending submission by id. Returns (nil, nil) when
// no such submission exists.
func (s *Store) GetPending(id int64) (*model.Submission, error) {
	row := s.db.QueryRow(`SELECT id, author_id, visibility, payload, votes, decided, created_at
		FROM pending_submissions WHERE id = ?`, id)
	return scanPending(row)
}

// DeletePending removes a submission from the moderation set.
func (s *Store) DeletePending(id int64) error {
	_, err := s.db.Exec("DELETE FROM pending_submissions WHERE id = ?", id)
	return err
}

// AllPending returns every submission still awaiting a decision.
func (s *Store) AllPending() ([]*model.Submission, error) {
	rows, err := s.db.Query(`SELECT id, author_id, visibility, payload, votes, decided, created_at
		FROM pending_submissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		sub, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	return subs, rows.Err()
}

// ExpirePending deletes every pending submission created before the cutoff
// and returns the number of rows removed. Expired submissions get no
// decision and no notification.
func (s *Store) ExpirePending(before time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM pending_submissions WHERE created_at < ?", before.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
