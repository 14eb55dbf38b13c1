// Package reminder maintains the single wake-up timer that fires at the
// next pending reminder across all occurrences.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dates-lab/dates-manager/internal/core/chrono"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
	"github.com/dates-lab/dates-manager/internal/core/storage"
)

// MaxTimerChunk bounds a single timer arm. Delays beyond it are chained:
// the timer fires, recompute runs, and a fresh chunk is armed. Recompute
// is idempotent, so chaining costs one extra pass per ~24.8 days.
const MaxTimerChunk = 2147483647 * time.Millisecond

// Notifier presents a due occurrence to the user. Implementations must
// not block; delivery is fire-and-forget from the scheduler's view.
type Notifier interface {
	Notify(occ *milestone.Occurrence)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(occ *milestone.Occurrence)

func (f NotifierFunc) Notify(occ *milestone.Occurrence) { f(occ) }

// Scheduler owns one pending timer and the current due occurrence. All
// state lives behind a mutex: timers fire on their own goroutines, and
// the at-most-one-timer invariant requires cancel-then-recompute-then-
// rearm to run atomically at every mutation site.
type Scheduler struct {
	store    storage.Store
	reminder chrono.Interval
	notifier Notifier
	clock    func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	due     *milestone.Occurrence
	stopped bool
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock substitutes the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// New creates a stopped-timer scheduler. Call Recompute to start it.
func New(store storage.Store, reminder chrono.Interval, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		reminder: reminder,
		notifier: notifier,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recompute cancels any pending timer, re-evaluates the full occurrence
// set, and either surfaces the earliest due occurrence or re-arms the
// timer for the next wake time. It must be called after every catalog or
// milestone mutation and runs again on each timer expiry.
func (s *Scheduler) Recompute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimerLocked()
	if s.stopped {
		return nil
	}

	defRecs, err := s.store.ListDefinitions(ctx)
	if err != nil {
		return err
	}
	msRecs, err := s.store.ListMilestones(ctx)
	if err != nil {
		return err
	}
	defs, stored, err := storage.Materialize(defRecs, msRecs)
	if err != nil {
		return err
	}

	now := s.clock().UTC()
	merged := milestone.Merge(defs, stored, now, s.reminder)
	if len(merged) == 0 {
		s.due = nil
		return nil
	}

	first := merged[0]
	wake := first.Dispo.(milestone.Remind).NextReminderAt
	if !wake.After(now) {
		// Unrelated mutations recompute while an occurrence waits on the
		// user; re-notifying the same key every time would spam them.
		alreadyDue := s.due != nil && s.due.Key() == first.Key()
		s.due = first
		if alreadyDue {
			return nil
		}
		slog.Info("[Reminder] Occurrence due",
			"key", first.Key().String(),
			"title", first.Event.Title)
		// Deliver without holding the lock: the notifier may call back
		// into the scheduler.
		go s.notifier.Notify(first)
		return nil
	}

	s.due = nil
	delay := wake.Sub(now)
	if delay > MaxTimerChunk {
		delay = MaxTimerChunk
	}
	s.timer = time.AfterFunc(delay, s.onTimer)
	slog.Debug("[Reminder] Timer armed",
		"key", first.Key().String(),
		"wake_at", wake,
		"delay", delay)
	return nil
}

// onTimer runs on timer expiry and feeds back into a full recompute.
func (s *Scheduler) onTimer() {
	if err := s.Recompute(context.Background()); err != nil {
		slog.Error("[Reminder] Recompute after timer expiry failed", "error", err)
	}
}

// Due returns the occurrence currently awaiting a user disposition, or
// nil when the scheduler is idle.
func (s *Scheduler) Due() *milestone.Occurrence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due
}

// Pending reports whether a timer is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop cancels the pending timer and prevents further arming.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
	s.stopped = true
	s.due = nil
}

func (s *Scheduler) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
