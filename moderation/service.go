// Package moderation owns the submission lifecycle: intake, vote tallying,
// the terminal decision, and the hand-off to the publication scheduler.
package moderation

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kryuchenko/kartoshka-bot/db"
	"github.com/kryuchenko/kartoshka-bot/model"
	"github.com/kryuchenko/kartoshka-bot/scheduler"
	"github.com/kryuchenko/kartoshka-bot/utils"
	"github.com/kryuchenko/kartoshka-bot/vote"
)

// ErrNotFound is returned for votes on unknown or already decided
// submissions. No mutation happens in that case.
var ErrNotFound = errors.New("submission not found or already processed")

const (
	resolutionApproved = "✅ Одобрен"
	resolutionUrgent   = "⚡ Одобрен срочно"
	resolutionRejected = "❌ Отклонён"
)

// Service is the moderation orchestrator. The pending map is the
// authoritative moderation set for the process lifetime; the store is its
// durable mirror, so a failed write degrades durability but never aborts
// the voting path.
type Service struct {
	mu      sync.Mutex
	pending map[int64]*model.Submission

	store  *db.Store
	sched  *scheduler.Scheduler
	policy vote.Policy
	pub    scheduler.Publisher
	notify scheduler.Notifier
}

// NewService loads the pending set from the store and wires itself in as
// the scheduler's expiry sweeper.
func NewService(store *db.Store, sched *scheduler.Scheduler, policy vote.Policy, pub scheduler.Publisher, notify scheduler.Notifier) (*Service, error) {
	subs, err := store.AllPending()
	if err != nil {
		return nil, err
	}
	pending := make(map[int64]*model.Submission, len(subs))
	for _, sub := range subs {
		pending[sub.ID] = sub
	}

	s := &Service{
		pending: pending,
		store:   store,
		sched:   sched,
		policy:  policy,
		pub:     pub,
		notify:  notify,
	}
	sched.SetSweeper(s)
	return s, nil
}

// Submit registers new content for moderation and returns the pending
// submission with its freshly issued id.
func (s *Service) Submit(visibility model.Visibility, payload model.Payload, authorID string) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.NextSubmissionID()
	if err != nil {
		return nil, fmt.Errorf("issue submission id: %w", err)
	}

	sub := model.NewSubmission(id, visibility, payload, authorID)
	s.pending[id] = sub
	if err := s.store.SavePending(sub); err != nil {
		log.Printf("Failed to persist submission %d, keeping it in memory: %v", id, err)
	}
	return sub, nil
}

// Result describes what a recorded vote produced.
type Result struct {
	Submission *model.Submission
	Previous   vote.Value
	Repeated   bool // the reviewer re-cast the vote they already had
	Decision   vote.Decision
	Summary    string
}

// Vote records a reviewer's vote and evaluates the decision policy. The
// decided flag is checked and set under the service lock, so two votes
// racing past a threshold can never finalize the same submission twice.
func (s *Service) Vote(submissionID int64, reviewerID string, v vote.Value) (*Result, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("unknown vote value %q", v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.pending[submissionID]
	if !ok || sub.Decided {
		return nil, ErrNotFound
	}

	prev, had := sub.Votes.Record(reviewerID, v)
	if err := s.store.SavePending(sub); err != nil {
		log.Printf("Failed to persist vote on submission %d: %v", submissionID, err)
	}

	res := &Result{
		Submission: sub,
		Previous:   prev,
		Repeated:   had && prev == v,
		Decision:   s.policy.Evaluate(sub.Votes, v),
		Summary:    sub.Votes.Summary(),
	}

	if !res.Repeated && !res.Decision.Terminal() {
		s.notifySubmitter(sub, "Голосование: "+res.Summary)
	}

	if res.Decision.Terminal() {
		sub.Decided = true
		s.finalize(sub, res.Decision)
	}
	return res, nil
}

// finalize carries out the consequences of a terminal decision. Called
// with the lock held and the decided flag already set.
func (s *Service) finalize(sub *model.Submission, decision vote.Decision) {
	delete(s.pending, sub.ID)

	switch decision {
	case vote.ApprovedUrgent:
		// Urgency overrides the throttling policy entirely: no queue, no
		// quiet hours, published at decision time.
		projection := sub.Project()
		if err := s.pub.Publish(utils.RenderCaption(projection), projection.Payload); err != nil {
			log.Printf("Failed to publish urgent submission %d: %v", sub.ID, err)
		}
		if err := s.store.DeletePending(sub.ID); err != nil {
			log.Printf("Failed to remove submission %d from the moderation set: %v", sub.ID, err)
		}
		s.notifySubmitter(sub, resolutionUrgent+" "+sub.Votes.Summary())

	case vote.Approved:
		if _, err := s.sched.Schedule(sub); err != nil {
			log.Printf("Failed to schedule submission %d: %v", sub.ID, err)
		}
		s.notifySubmitter(sub, resolutionApproved+" "+sub.Votes.Summary())

	case vote.Rejected:
		if err := s.store.DeletePending(sub.ID); err != nil {
			log.Printf("Failed to remove submission %d from the moderation set: %v", sub.ID, err)
		}
		s.notifySubmitter(sub, resolutionRejected+" "+sub.Votes.Summary())
	}

	log.Printf("Submission %d decided: %s", sub.ID, decision)
}

// notifySubmitter sends a best-effort status update to the author of an
// attributed submission. Errors never propagate to the voting path.
func (s *Service) notifySubmitter(sub *model.Submission, text string) {
	if sub.Visibility != model.Attributed || sub.AuthorID == "" {
		return
	}
	if err := s.notify.Notify(sub.AuthorID, text); err != nil {
		log.Printf("Failed to notify user %s: %v", sub.AuthorID, err)
	}
}

// Pending returns the submission with the given id if it still awaits a
// decision.
func (s *Service) Pending(id int64) (*model.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.pending[id]
	return sub, ok
}

// ExpirePending drops every pending submission created before the cutoff
// from both the in-memory set and the durable mirror. It implements the
// scheduler's Sweeper.
func (s *Service) ExpirePending(before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, sub := range s.pending {
		if sub.CreatedAt.Before(before) {
			delete(s.pending, id)
			removed++
		}
	}
	if _, err := s.store.ExpirePending(before); err != nil {
		return removed, err
	}
	return removed, nil
}
