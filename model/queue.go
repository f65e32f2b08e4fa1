package model

import "time"

// QueueEntry is one decided-and-scheduled submission waiting for publication.
// ScheduledAt is the single source of truth for queue ordering.
type QueueEntry struct {
	ScheduledAt time.Time  `json:"scheduled_at"`
	Submission  Projection `json:"submission"`
}
