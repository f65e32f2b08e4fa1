package vote

import "fmt"

// Value represents a single reviewer's vote on a submission.
type Value string

const (
	// Approve is a vote to publish the submission through the queue.
	Approve Value = "approve"
	// Urgent is a vote to publish immediately. It also counts as approval.
	Urgent Value = "urgent"
	// Reject is a vote to discard the submission.
	Reject Value = "reject"
)

// Valid reports whether v is one of the known vote values.
func (v Value) Valid() bool {
	switch v {
	case Approve, Urgent, Reject:
		return true
	}
	return false
}

// Tally records the current vote of each reviewer, keyed by reviewer id.
// A reviewer overwrites their own vote; last write wins. Keys are never
// removed, only replaced.
type Tally map[string]Value

// Record stores a reviewer's vote and returns the previous one, if any.
// Callers use the previous value to suppress duplicate notifications.
func (t Tally) Record(reviewerID string, v Value) (Value, bool) {
	prev, ok := t[reviewerID]
	t[reviewerID] = v
	return prev, ok
}

// Count returns the number of reviewers whose current vote matches v.
// An urgent vote is a strict superset endorsement of approval, so counting
// Approve includes Urgent votes as well.
func (t Tally) Count(v Value) int {
	n := 0
	for _, cur := range t {
		if cur == v || (v == Approve && cur == Urgent) {
			n++
		}
	}
	return n
}

// Summary renders the running totals shown to reviewers and submitters.
func (t Tally) Summary() string {
	approve := 0
	urgent := 0
	reject := 0
	for _, v := range t {
		switch v {
		case Approve:
			approve++
		case Urgent:
			urgent++
		case Reject:
			reject++
		}
	}
	return fmt.Sprintf("(✅ %d | ⚡ %d | ❌ %d)", approve, urgent, reject)
}
