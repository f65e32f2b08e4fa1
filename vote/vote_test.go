package vote

import "testing"

func TestRecordReturnsPrevious(t *testing.T) {
	tally := Tally{}
	if _, ok := tally.Record("1", Approve); ok {
		t.Fatalf("expected no previous vote")
	}
	prev, ok := tally.Record("1", Reject)
	if !ok || prev != Approve {
		t.Fatalf("expected previous approve, got %q %v", prev, ok)
	}
}

func TestCountOverwriteNeverDoubleCounts(t *testing.T) {
	tally := Tally{}
	tally.Record("1", Approve)
	tally.Record("2", Approve)
	tally.Record("1", Reject)
	if got := tally.Count(Approve); got != 1 {
		t.Fatalf("approve count = %d, want 1", got)
	}
	if got := tally.Count(Reject); got != 1 {
		t.Fatalf("reject count = %d, want 1", got)
	}
}

func TestCountApproveIncludesUrgent(t *testing.T) {
	tally := Tally{}
	tally.Record("1", Approve)
	tally.Record("2", Urgent)
	if got := tally.Count(Approve); got != 2 {
		t.Fatalf("approve count = %d, want 2", got)
	}
	if got := tally.Count(Urgent); got != 1 {
		t.Fatalf("urgent count = %d, want 1", got)
	}
	if got := tally.Count(Reject); got != 0 {
		t.Fatalf("reject count = %d, want 0", got)
	}
}

func TestApprovalThreshold(t *testing.T) {
	p := Policy{Quorum: true, VotesToApprove: 3, VotesToReject: 3}
	tally := Tally{}
	tally.Record("1", Approve)
	tally.Record("2", Approve)
	if p.IsApproved(tally) {
		t.Fatalf("approved with 2 of 3 votes")
	}
	// The same reviewer voting again must not push the tally over.
	tally.Record("2", Approve)
	if p.IsApproved(tally) {
		t.Fatalf("approved after duplicate vote")
	}
	tally.Record("3", Approve)
	if !p.IsApproved(tally) {
		t.Fatalf("not approved with 3 distinct votes")
	}
}

func TestUrgencyNeedsMajorityOfApprovalThreshold(t *testing.T) {
	p := Policy{Quorum: true, VotesToApprove: 3, VotesToReject: 3}
	tally := Tally{}
	tally.Record("1", Urgent)
	if p.IsUrgent(tally) {
		t.Fatalf("urgent with a single vote, want 2 for threshold 3")
	}
	tally.Record("2", Urgent)
	if !p.IsUrgent(tally) {
		t.Fatalf("not urgent with 2 votes, ceil(3*0.51)=2")
	}
}

func TestUrgencyThresholdNeverBelowOne(t *testing.T) {
	p := Policy{Quorum: true, VotesToApprove: 1, VotesToReject: 1}
	tally := Tally{}
	if p.IsUrgent(tally) {
		t.Fatalf("urgent with no votes")
	}
	tally.Record("1", Urgent)
	if !p.IsUrgent(tally) {
		t.Fatalf("not urgent with one vote at threshold 1")
	}
}

func TestSummary(t *testing.T) {
	tally := Tally{}
	tally.Record("1", Approve)
	tally.Record("2", Urgent)
	tally.Record("3", Reject)
	if got := tally.Summary(); got != "(✅ 1 | ⚡ 1 | ❌ 1)" {
		t.Fatalf("summary = %q", got)
	}
}
