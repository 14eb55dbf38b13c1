// Package agenda is the read-and-act surface over derived occurrences:
// day and timeline views, the reminder queue, and the disposition
// actions a user takes on a due occurrence.
package agenda

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	"github.com/dates-lab/dates-manager/internal/core/chrono"
	"github.com/dates-lab/dates-manager/internal/core/config"
	"github.com/dates-lab/dates-manager/internal/core/event"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
	"github.com/dates-lab/dates-manager/internal/core/storage"
)

// Scheduler is the reminder surface the agenda drives and reads.
type Scheduler interface {
	Recompute(ctx context.Context) error
	Due() *milestone.Occurrence
}

// Service computes views and applies dispositions.
type Service struct {
	store     storage.Store
	sched     Scheduler
	intervals config.IntervalPolicies
	clock     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock substitutes the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService creates the agenda service.
func NewService(store storage.Store, sched Scheduler, intervals config.IntervalPolicies, opts ...Option) *Service {
	s := &Service{
		store:     store,
		sched:     sched,
		intervals: intervals,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View is the response shape of the windowed views: the definitions
// whose date falls in the window, plus any stored milestones there.
type View struct {
	Eventbases []*v1.EventRecord     `json:"eventbase_list"`
	Milestones []*v1.MilestoneRecord `json:"milestone_list"`
}

// load materializes the full catalog and stored occurrence set.
func (s *Service) load(ctx context.Context) ([]*event.Definition, []*milestone.Occurrence, error) {
	defRecs, err := s.store.ListDefinitions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list definitions: %w", err)
	}
	msRecs, err := s.store.ListMilestones(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list milestones: %w", err)
	}
	return storage.Materialize(defRecs, msRecs)
}

// WindowView returns everything visible in iv anchored per entry and
// probed at date. Day cells, the timeline, and any future view are this
// one computation under a different interval.
func (s *Service) WindowView(ctx context.Context, iv chrono.Interval, date time.Time) (*View, error) {
	defs, stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	view := &View{
		Eventbases: []*v1.EventRecord{},
		Milestones: []*v1.MilestoneRecord{},
	}
	for _, def := range defs {
		if milestone.EventInWindow(def, iv, date) {
			view.Eventbases = append(view.Eventbases, v1.DefinitionRecord(def))
		}
	}
	for _, occ := range stored {
		if occ.InWindow(iv, date) {
			view.Milestones = append(view.Milestones, v1.OccurrenceRecord(occ))
		}
	}
	return view, nil
}

// ReminderQueue returns the merged reminder-eligible set, earliest wake
// first.
func (s *Service) ReminderQueue(ctx context.Context, date time.Time) ([]*v1.MilestoneRecord, error) {
	defs, stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	merged := milestone.Merge(defs, stored, date, s.intervals.Reminder)
	recs := make([]*v1.MilestoneRecord, 0, len(merged))
	for _, occ := range merged {
		recs = append(recs, v1.OccurrenceRecord(occ))
	}
	return recs, nil
}

// occurrenceFor resolves the stored occurrence for (year, uid), or
// synthesizes a Base one when only the definition exists.
func (s *Service) occurrenceFor(ctx context.Context, year int, uid int64) (*milestone.Occurrence, error) {
	defs, stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	key := milestone.Key{Year: year, EventUID: uid}
	for _, occ := range stored {
		if occ.Key() == key {
			return occ, nil
		}
	}
	for _, def := range defs {
		if def.UID == uid {
			return milestone.Derive(def, year), nil
		}
	}
	return nil, storage.ErrNotFound
}

// apply persists a transitioned occurrence with replace semantics and
// re-arms the scheduler.
func (s *Service) apply(ctx context.Context, occ *milestone.Occurrence) error {
	if err := s.store.ReplaceMilestone(ctx, v1.OccurrenceRecord(occ)); err != nil {
		return err
	}
	s.recompute()
	return nil
}

// transitionTarget resolves the occurrence for a disposition change,
// refusing settled ones: Done and Ignore only leave through Forget.
func (s *Service) transitionTarget(ctx context.Context, year int, uid int64) (*milestone.Occurrence, error) {
	occ, err := s.occurrenceFor(ctx, year, uid)
	if err != nil {
		return nil, err
	}
	if occ.IsSettled() {
		return nil, fmt.Errorf("milestone %s: %w", occ.Key(), milestone.ErrSettled)
	}
	return occ, nil
}

// MarkDone settles this year's occurrence.
func (s *Service) MarkDone(ctx context.Context, year int, uid int64) (*milestone.Occurrence, error) {
	occ, err := s.transitionTarget(ctx, year, uid)
	if err != nil {
		return nil, err
	}
	next := occ.MarkedDone()
	return next, s.apply(ctx, next)
}

// MarkIgnored suppresses this year's occurrence without completing it.
func (s *Service) MarkIgnored(ctx context.Context, year int, uid int64) (*milestone.Occurrence, error) {
	occ, err := s.transitionTarget(ctx, year, uid)
	if err != nil {
		return nil, err
	}
	next := occ.MarkedIgnored()
	return next, s.apply(ctx, next)
}

// Snooze pushes the occurrence's wake time to now+delay.
func (s *Service) Snooze(ctx context.Context, year int, uid int64, delay time.Duration) (*milestone.Occurrence, error) {
	occ, err := s.transitionTarget(ctx, year, uid)
	if err != nil {
		return nil, err
	}
	next := occ.Snoozed(s.clock().UTC(), delay)
	return next, s.apply(ctx, next)
}

// SetStory attaches a note to the occurrence without changing its
// disposition.
func (s *Service) SetStory(ctx context.Context, year int, uid int64, story string) (*milestone.Occurrence, error) {
	occ, err := s.occurrenceFor(ctx, year, uid)
	if err != nil {
		return nil, err
	}
	next := occ.WithNote(story)
	return next, s.apply(ctx, next)
}

// Forget deletes the stored occurrence outright. This is the explicit
// re-open path: the next merge synthesizes a fresh Base occurrence.
func (s *Service) Forget(ctx context.Context, year int, uid int64) error {
	if err := s.store.DeleteMilestone(ctx, year, uid); err != nil {
		return err
	}
	s.recompute()
	return nil
}

func (s *Service) recompute() {
	if err := s.sched.Recompute(context.Background()); err != nil {
		slog.Error("[Agenda] Scheduler recompute failed", "error", err)
	}
}
