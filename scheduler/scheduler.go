// Package scheduler turns approval decisions into publication times and
// drains the durable publication queue at a throttled cadence, honouring
// the quiet-hours window.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kryuchenko/kartoshka-bot/db"
	"github.com/kryuchenko/kartoshka-bot/model"
	"github.com/kryuchenko/kartoshka-bot/utils"
)

// Publisher posts an approved submission to the output channel.
type Publisher interface {
	Publish(caption string, payload model.Payload) error
}

// Notifier delivers a status message to a submitter. Implementations are
// best-effort; the core logs failures and moves on.
type Notifier interface {
	Notify(userID, text string) error
}

// Sweeper removes pending submissions older than the cutoff. The moderation
// service implements it so the drain loop's expiry sweep also clears the
// in-memory moderation set, not just the durable mirror.
type Sweeper interface {
	ExpirePending(before time.Time) (int64, error)
}

// Scheduler owns the publication queue. All queue mutations and the
// last-published timestamp go through its mutex, which is held across the
// full read-modify-persist sequence of a single operation.
type Scheduler struct {
	mu     sync.Mutex
	store  *db.Store
	pub    Publisher
	notify Notifier

	minInterval  time.Duration
	dayStartHour int
	pendingTTL   time.Duration
	pollInterval time.Duration

	lastPublished time.Time

	sweeper Sweeper
	now     func() time.Time
}

// SetSweeper replaces the default store-backed expiry sweep. Call before
// Run; the drain loop reads it without locking.
func (s *Scheduler) SetSweeper(sw Sweeper) {
	s.sweeper = sw
}

// New builds a scheduler over the given store, reloads the last-published
// timestamp and revalidates queue entries that went stale while the
// process was down.
func New(store *db.Store, pub Publisher, notify Notifier, cfg model.Schedule) (*Scheduler, error) {
	s := &Scheduler{
		store:        store,
		pub:          pub,
		notify:       notify,
		minInterval:  time.Duration(cfg.PostFrequencyMinutes) * time.Minute,
		dayStartHour: cfg.DayStartHour,
		pendingTTL:   time.Duration(cfg.PendingTTLHours) * time.Hour,
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		now:          func() time.Time { return time.Now().UTC() },
	}
	s.sweeper = store

	last, ok, err := store.LastPublishedAt()
	if err != nil {
		return nil, err
	}
	if !ok {
		last = s.now()
	}
	s.lastPublished = last

	if err := s.revalidateQueue(); err != nil {
		return nil, err
	}
	return s, nil
}

// revalidateQueue pushes forward every entry whose scheduled time already
// lies before the last publish. Entries are respaced in queue order by the
// minimum interval so a restart cannot burst the backlog out at once.
func (s *Scheduler) revalidateQueue() error {
	entries, err := s.store.Entries()
	if err != nil {
		return err
	}
	for i, entry := range entries {
		if entry.ScheduledAt.Before(s.lastPublished) {
			at := s.lastPublished.Add(s.minInterval * time.Duration(i+1))
			if err := s.store.RescheduleEntry(entry.Submission.ID, at); err != nil {
				return err
			}
			log.Printf("Rescheduled stale queue entry %d to %v", entry.Submission.ID, at)
		}
	}
	return nil
}

// nextAllowedTime applies the quiet-hours rule: times before the day-start
// hour are shifted to that hour on the same calendar day.
func (s *Scheduler) nextAllowedTime(t time.Time) time.Time {
	if t.Hour() < s.dayStartHour {
		return time.Date(t.Year(), t.Month(), t.Day(), s.dayStartHour, 0, 0, 0, t.Location())
	}
	return t
}

// Schedule places an approved submission onto the publication queue, or
// publishes it on the spot when the computed slot is already due. The
// moderation-set removal and the queue insert are one durable transition.
// The submitter notification is best-effort and never fails the operation.
func (s *Scheduler) Schedule(sub *model.Submission) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	last, queued, err := s.store.LastScheduledAt()
	if err != nil {
		return time.Time{}, err
	}
	var base time.Time
	if queued {
		base = last.Add(s.minInterval)
	} else {
		base = s.lastPublished.Add(s.minInterval)
		if now.After(base) {
			base = now
		}
	}
	scheduledAt := s.nextAllowedTime(base)

	projection := sub.Project()

	// Immediate publication applies only to an empty queue; with entries
	// waiting, even an overdue slot goes to the back of the queue so the
	// drain loop preserves approval order.
	if !queued && !scheduledAt.After(now) {
		if err := s.store.DeletePending(sub.ID); err != nil {
			return time.Time{}, err
		}
		if err := s.pub.Publish(utils.RenderCaption(projection), projection.Payload); err != nil {
			log.Printf("Failed to publish submission %d: %v", sub.ID, err)
		}
		s.lastPublished = s.now()
		if err := s.store.SetLastPublishedAt(s.lastPublished); err != nil {
			log.Printf("Failed to persist last-published time: %v", err)
		}
		return now, nil
	}

	entry := model.QueueEntry{ScheduledAt: scheduledAt, Submission: projection}
	if err := s.store.MoveToQueue(sub.ID, entry); err != nil {
		return time.Time{}, err
	}

	s.notifyScheduled(sub, scheduledAt, now)
	return scheduledAt, nil
}

// notifyScheduled tells the submitter when to expect publication. Only
// attributed submissions can be notified; anonymous ones carry no author
// reference after a reload.
func (s *Scheduler) notifyScheduled(sub *model.Submission, scheduledAt, now time.Time) {
	if sub.Visibility != model.Attributed || sub.AuthorID == "" {
		return
	}

	wait := scheduledAt.Sub(now)
	if wait < 0 {
		wait = 0
	}
	hours := int(wait / time.Hour)
	minutes := int(wait%time.Hour) / int(time.Minute)

	text := "Ваш мем одобрен и теперь ждёт публикации.\n\n" +
		"Ориентировочное время публикации: " + scheduledAt.Format("15:04") + " по UTC\n" +
		"(через " + utils.FormatWait(hours, minutes) + ")."
	if err := s.notify.Notify(sub.AuthorID, text); err != nil {
		log.Printf("Failed to notify user %s about scheduling: %v", sub.AuthorID, err)
	}
}

// Run drives the drain loop until the context is cancelled. The sleep is
// bounded by the poll interval so entries inserted by concurrent callers
// are picked up promptly and shutdown never blocks longer than one poll.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := s.tick()
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// tick performs one iteration of the drain loop: sweep expired pending
// submissions, then publish the earliest queue entry if it is due. The
// returned duration is how long the loop should sleep before the next
// iteration.
func (s *Scheduler) tick() time.Duration {
	now := s.now()

	if removed, err := s.sweeper.ExpirePending(now.Add(-s.pendingTTL)); err != nil {
		log.Printf("Failed to sweep expired submissions: %v", err)
	} else if removed > 0 {
		log.Printf("Swept %d expired pending submissions", removed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.store.NextEntry()
	if err != nil {
		log.Printf("Failed to read publication queue: %v", err)
		return s.pollInterval
	}
	if entry == nil {
		return s.pollInterval
	}

	if entry.ScheduledAt.After(now) {
		wait := entry.ScheduledAt.Sub(now)
		if wait > s.pollInterval {
			wait = s.pollInterval
		}
		return wait
	}

	// The entry is removed and persisted before the publish attempt so a
	// crash mid-publish cannot redeliver it. At-most-once over redelivery.
	if err := s.store.RemoveEntry(entry.Submission.ID); err != nil {
		log.Printf("Failed to dequeue submission %d: %v", entry.Submission.ID, err)
		return s.pollInterval
	}

	if err := s.pub.Publish(utils.RenderCaption(entry.Submission), entry.Submission.Payload); err != nil {
		log.Printf("Failed to publish submission %d: %v", entry.Submission.ID, err)
	}

	s.lastPublished = s.now()
	if err := s.store.SetLastPublishedAt(s.lastPublished); err != nil {
		log.Printf("Failed to persist last-published time: %v", err)
	}

	// Re-check immediately in case more entries are already due.
	return 0
}
