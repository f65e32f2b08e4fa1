package vote

import "math"

// Decision is the terminal outcome of evaluating a tally, or Pending when
// no threshold has been met yet.
type Decision int

const (
	Pending Decision = iota
	Approved
	ApprovedUrgent
	Rejected
)

// String returns a short name for the decision, used in logs.
func (d Decision) String() string {
	switch d {
	case Approved:
		return "approved"
	case ApprovedUrgent:
		return "urgent"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Terminal reports whether d ends the moderation of a submission.
func (d Decision) Terminal() bool {
	return d != Pending
}

// Policy converts a tally into a decision. With Quorum set, the configured
// thresholds apply and the tally is re-evaluated after every vote; without
// it the very first vote is terminal regardless of thresholds.
type Policy struct {
	Quorum         bool
	VotesToApprove int
	VotesToReject  int
}

// IsApproved reports whether the approval threshold has been met.
func (p Policy) IsApproved(t Tally) bool {
	return t.Count(Approve) >= p.VotesToApprove
}

// IsUrgent reports whether enough urgent votes alone have accumulated to
// bypass the publication queue. Urgency requires an absolute majority of
// the approval threshold, so a single urgent vote cannot skip the queue
// under quorum mode.
func (p Policy) IsUrgent(t Tally) bool {
	threshold := int(math.Ceil(float64(p.VotesToApprove) * 0.51))
	if threshold < 1 {
		threshold = 1
	}
	return t.Count(Urgent) >= threshold
}

// IsRejected reports whether the rejection threshold has been met.
func (p Policy) IsRejected(t Tally) bool {
	return t.Count(Reject) >= p.VotesToReject
}

// Evaluate returns the decision for the tally after the given vote was
// recorded. Approval is checked before rejection, so a misconfigured
// zero threshold resolves in favour of approval.
func (p Policy) Evaluate(t Tally, last Value) Decision {
	if !p.Quorum {
		// Single-reviewer mode: the first vote decides.
		switch last {
		case Urgent:
			return ApprovedUrgent
		case Approve:
			return Approved
		default:
			return Rejected
		}
	}
	if p.IsApproved(t) {
		if p.IsUrgent(t) {
			return ApprovedUrgent
		}
		return Approved
	}
	if p.IsRejected(t) {
		return Rejected
	}
	return Pending
}
