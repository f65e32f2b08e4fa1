package moderation

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kryuchenko/kartoshka-bot/db"
	"github.com/kryuchenko/kartoshka-bot/model"
	"github.com/kryuchenko/kartoshka-bot/scheduler"
	"github.com/kryuchenko/kartoshka-bot/vote"
)

type fakePublisher struct {
	captions []string
}

func (f *fakePublisher) Publish(caption string, payload model.Payload) error {
	f.captions = append(f.captions, caption)
	return nil
}

type fakeNotifier struct {
	messages map[string][]string
}

func (f *fakeNotifier) Notify(userID, text string) error {
	if f.messages == nil {
		f.messages = make(map[string][]string)
	}
	f.messages[userID] = append(f.messages[userID], text)
	return nil
}

func newTestService(t *testing.T, policy vote.Policy) (*Service, *db.Store, *fakePublisher, *fakeNotifier) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "kartoshka.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pub := &fakePublisher{}
	notify := &fakeNotifier{}
	cfg := model.Schedule{PostFrequencyMinutes: 60, DayStartHour: 7, PendingTTLHours: 72, PollIntervalSeconds: 10}
	sched, err := scheduler.New(store, pub, notify, cfg)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	svc, err := NewService(store, sched, policy, pub, notify)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store, pub, notify
}

func textPayload(text string) model.Payload {
	return model.Payload{Kind: model.KindText, Text: text}
}

func TestSingleReviewerApproveEndToEnd(t *testing.T) {
	svc, store, _, _ := newTestService(t, vote.Policy{Quorum: false, VotesToApprove: 3, VotesToReject: 3})

	sub, err := svc.Submit(model.Attributed, textPayload("мем"), "author-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := svc.Vote(sub.ID, "reviewer-1", vote.Approve)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if res.Decision != vote.Approved {
		t.Fatalf("decision = %v, want approved", res.Decision)
	}

	if _, ok := svc.Pending(sub.ID); ok {
		t.Fatalf("submission still pending after decision")
	}
	if got, _ := store.GetPending(sub.ID); got != nil {
		t.Fatalf("moderation set still contains the submission")
	}
	entry, err := store.NextEntry()
	if err != nil {
		t.Fatalf("next entry: %v", err)
	}
	if entry == nil || entry.Submission.ID != sub.ID {
		t.Fatalf("approved submission not scheduled")
	}
}

func TestQuorumRejectEndToEnd(t *testing.T) {
	svc, _, pub, _ := newTestService(t, vote.Policy{Quorum: true, VotesToApprove: 3, VotesToReject: 3})

	sub, err := svc.Submit(model.Attributed, textPayload("мем"), "author-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	votes := []struct {
		reviewer string
		value    vote.Value
		want     vote.Decision
	}{
		{"r1", vote.Reject, vote.Pending},
		{"r2", vote.Reject, vote.Pending},
		{"r3", vote.Approve, vote.Pending},
		{"r4", vote.Reject, vote.Rejected},
	}
	for _, v := range votes {
		res, err := svc.Vote(sub.ID, v.reviewer, v.value)
		if err != nil {
			t.Fatalf("vote %s: %v", v.reviewer, err)
		}
		if res.Decision != v.want {
			t.Fatalf("after %s decision = %v, want %v", v.reviewer, res.Decision, v.want)
		}
	}

	// Rejected means gone: no later vote can resurrect it.
	if _, err := svc.Vote(sub.ID, "r5", vote.Approve); err != ErrNotFound {
		t.Fatalf("vote after rejection: err = %v, want ErrNotFound", err)
	}
	if len(pub.captions) != 0 {
		t.Fatalf("rejected submission was published")
	}
}

func TestQuorumUrgentBypassesQueue(t *testing.T) {
	svc, store, pub, _ := newTestService(t, vote.Policy{Quorum: true, VotesToApprove: 2, VotesToReject: 2})

	sub, err := svc.Submit(model.Anonymous, textPayload("срочный мем"), "author-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if res, _ := svc.Vote(sub.ID, "r1", vote.Urgent); res.Decision != vote.Pending {
		t.Fatalf("one urgent vote already terminal: %v", res.Decision)
	}
	res, err := svc.Vote(sub.ID, "r2", vote.Urgent)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if res.Decision != vote.ApprovedUrgent {
		t.Fatalf("decision = %v, want urgent", res.Decision)
	}

	if len(pub.captions) != 1 {
		t.Fatalf("urgent submission not published synchronously")
	}
	if entry, _ := store.NextEntry(); entry != nil {
		t.Fatalf("urgent submission went through the queue")
	}
}

func TestVoteUnknownSubmission(t *testing.T) {
	svc, _, _, _ := newTestService(t, vote.Policy{Quorum: true, VotesToApprove: 3, VotesToReject: 3})
	if _, err := svc.Vote(404, "r1", vote.Approve); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepeatedVoteReported(t *testing.T) {
	svc, _, _, notify := newTestService(t, vote.Policy{Quorum: true, VotesToApprove: 3, VotesToReject: 3})
	sub, err := svc.Submit(model.Attributed, textPayload("мем"), "author-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if res, _ := svc.Vote(sub.ID, "r1", vote.Approve); res.Repeated {
		t.Fatalf("first vote flagged as repeated")
	}
	res, err := svc.Vote(sub.ID, "r1", vote.Approve)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !res.Repeated {
		t.Fatalf("re-cast vote not flagged as repeated")
	}

	// Only the first, counted vote produces a submitter status update.
	if got := len(notify.messages["author-1"]); got != 1 {
		t.Fatalf("status updates = %d, want 1", got)
	}
}

func TestVoteOverwriteChangesOutcome(t *testing.T) {
	svc, _, _, _ := newTestService(t, vote.Policy{Quorum: true, VotesToApprove: 2, VotesToReject: 2})
	sub, err := svc.Submit(model.Attributed, textPayload("мем"), "author-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	svc.Vote(sub.ID, "r1", vote.Reject)
	res, err := svc.Vote(sub.ID, "r1", vote.Approve)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if res.Previous != vote.Reject {
		t.Fatalf("previous = %v, want reject", res.Previous)
	}
	// The old reject must not linger: one more reject stays below quorum.
	res, err = svc.Vote(sub.ID, "r2", vote.Reject)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if res.Decision != vote.Pending {
		t.Fatalf("decision = %v, want pending after overwrite", res.Decision)
	}
}

func TestPendingReloadedAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kartoshka.db")
	policy := vote.Policy{Quorum: true, VotesToApprove: 3, VotesToReject: 3}
	cfg := model.Schedule{PostFrequencyMinutes: 60, DayStartHour: 7, PendingTTLHours: 72, PollIntervalSeconds: 10}

	store, err := db.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sched, err := scheduler.New(store, &fakePublisher{}, &fakeNotifier{}, cfg)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	svc, err := NewService(store, sched, policy, &fakePublisher{}, &fakeNotifier{})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	sub, err := svc.Submit(model.Anonymous, textPayload("мем"), "secret")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	svc.Vote(sub.ID, "r1", vote.Approve)
	store.Close()

	store, err = db.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	sched, err = scheduler.New(store, &fakePublisher{}, &fakeNotifier{}, cfg)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	svc, err = NewService(store, sched, policy, &fakePublisher{}, &fakeNotifier{})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	got, ok := svc.Pending(sub.ID)
	if !ok {
		t.Fatalf("pending submission lost across restart")
	}
	if got.AuthorID != "" {
		t.Fatalf("anonymous author restored across restart: %q", got.AuthorID)
	}
	if got.Votes["r1"] != vote.Approve {
		t.Fatalf("vote map lost across restart: %v", got.Votes)
	}
}

func TestExpirePendingSweepsMemoryAndStore(t *testing.T) {
	svc, store, _, _ := newTestService(t, vote.Policy{Quorum: true, VotesToApprove: 3, VotesToReject: 3})
	sub, err := svc.Submit(model.Attributed, textPayload("мем"), "author-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	removed, err := svc.ExpirePending(time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := svc.Pending(sub.ID); ok {
		t.Fatalf("expired submission still in memory")
	}
	if got, _ := store.GetPending(sub.ID); got != nil {
		t.Fatalf("expired submission still in store")
	}
}
