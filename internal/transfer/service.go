// Package transfer moves the whole dataset across process boundaries:
// JSON snapshot export/import and an iCalendar feed of upcoming
// occurrences with reminder alarms.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	"github.com/dates-lab/dates-manager/internal/core/config"
	"github.com/dates-lab/dates-manager/internal/core/storage"
)

// Recomputer re-arms the reminder timer after an import lands new data.
type Recomputer interface {
	Recompute(ctx context.Context) error
}

// Service implements snapshot and calendar export.
type Service struct {
	store        storage.Store
	sched        Recomputer
	intervals    config.IntervalPolicies
	calendarName string
	clock        func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock substitutes the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService creates the transfer service.
func NewService(store storage.Store, sched Recomputer, intervals config.IntervalPolicies, calendarName string, opts ...Option) *Service {
	s := &Service{
		store:        store,
		sched:        sched,
		intervals:    intervals,
		calendarName: calendarName,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export assembles the full dataset as a versioned snapshot.
func (s *Service) Export(ctx context.Context) (*v1.Snapshot, error) {
	defs, err := s.store.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("export definitions: %w", err)
	}
	ms, err := s.store.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("export milestones: %w", err)
	}

	if defs == nil {
		defs = []*v1.EventRecord{}
	}
	if ms == nil {
		ms = []*v1.MilestoneRecord{}
	}
	return &v1.Snapshot{
		DBVersion:     v1.SnapshotVersion,
		EventbaseList: defs,
		MilestoneList: ms,
	}, nil
}

// ImportResult reports what an import actually landed.
type ImportResult struct {
	EventbasesAdded int `json:"eventbases_added"`
	EventbasesKept  int `json:"eventbases_kept"`
	MilestonesAdded int `json:"milestones_added"`
	MilestonesKept  int `json:"milestones_kept"`
}

// Import merges a snapshot additively: records whose key already exists
// are kept as-is, new ones are inserted. Existing data always wins, so
// re-importing the same file is harmless.
func (s *Service) Import(ctx context.Context, snap *v1.Snapshot) (*ImportResult, error) {
	if snap.DBVersion != v1.SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot dbVersion %d (want %d)", snap.DBVersion, v1.SnapshotVersion)
	}

	for i, rec := range snap.EventbaseList {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("eventbase %d: %w", i, err)
		}
	}
	for i, rec := range snap.MilestoneList {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("milestone %d: %w", i, err)
		}
	}

	result := &ImportResult{}
	for _, rec := range snap.EventbaseList {
		err := s.store.SaveDefinition(ctx, rec)
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			result.EventbasesKept++
		case err != nil:
			return nil, fmt.Errorf("import eventbase %d: %w", rec.UID, err)
		default:
			result.EventbasesAdded++
		}
	}

	existing, err := s.store.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("import: list milestones: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, rec := range existing {
		present[rec.ExternalKey()] = true
	}

	for _, rec := range snap.MilestoneList {
		if present[rec.ExternalKey()] {
			result.MilestonesKept++
			continue
		}
		if err := s.store.ReplaceMilestone(ctx, rec); err != nil {
			return nil, fmt.Errorf("import milestone %s: %w", rec.ExternalKey(), err)
		}
		result.MilestonesAdded++
	}

	slog.Info("[Transfer] Import complete",
		"eventbases_added", result.EventbasesAdded,
		"eventbases_kept", result.EventbasesKept,
		"milestones_added", result.MilestonesAdded,
		"milestones_kept", result.MilestonesKept)

	if err := s.sched.Recompute(context.Background()); err != nil {
		slog.Error("[Transfer] Scheduler recompute failed", "error", err)
	}
	return result, nil
}
