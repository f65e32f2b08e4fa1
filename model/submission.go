package model

import (
	"encoding/json"
	"time"

	"github.com/kryuchenko/kartoshka-bot/vote"
)

// Visibility controls how an approved submission is attributed when it is
// published. It is fixed at creation and never changes.
type Visibility string

const (
	// Attributed submissions are published under the author's name.
	Attributed Visibility = "user"
	// Anonymous submissions are published from «Картошка». The author
	// reference is never persisted for them.
	Anonymous Visibility = "potato"
)

// Submission is one content item going through moderation.
type Submission struct {
	ID         int64      `json:"id"`
	AuthorID   string     `json:"author_id,omitempty"`
	Visibility Visibility `json:"visibility"`
	Payload    Payload    `json:"payload"`
	Votes      vote.Tally `json:"votes"`
	Decided    bool       `json:"decided"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewSubmission creates a pending submission with an empty tally.
func NewSubmission(id int64, visibility Visibility, payload Payload, authorID string) *Submission {
	return &Submission{
		ID:         id,
		AuthorID:   authorID,
		Visibility: visibility,
		Payload:    payload,
		Votes:      vote.Tally{},
		CreatedAt:  time.Now().UTC(),
	}
}

// MarshalJSON never emits the author reference for anonymous submissions.
// Anonymity is an invariant of the stored form, not a display choice.
func (s Submission) MarshalJSON() ([]byte, error) {
	type plain Submission
	p := plain(s)
	if p.Visibility == Anonymous {
		p.AuthorID = ""
	}
	return json.Marshal(p)
}

// Project returns the reduced form that goes onto the publication queue:
// content and attribution only, no vote history.
func (s *Submission) Project() Projection {
	p := Projection{
		ID:         s.ID,
		Visibility: s.Visibility,
		Payload:    s.Payload,
	}
	if s.Visibility == Attributed {
		p.AuthorID = s.AuthorID
	}
	return p
}

// Projection is the publication-side view of a submission.
type Projection struct {
	ID         int64      `json:"id"`
	AuthorID   string     `json:"author_id,omitempty"`
	Visibility Visibility `json:"visibility"`
	Payload    Payload    `json:"payload"`
}

// MarshalJSON applies the same anonymity guard as Submission.MarshalJSON.
func (p Projection) MarshalJSON() ([]byte, error) {
	type plain Projection
	v := plain(p)
	if v.Visibility == Anonymous {
		v.AuthorID = ""
	}
	return json.Marshal(v)
}
