// Package catalog is the edit surface for event definitions. Every
// mutation revalidates input, persists, and kicks the reminder
// scheduler so the pending timer always reflects the latest catalog.
package catalog

import (
	"context"
	"log/slog"

	"github.com/dates-lab/dates-manager/internal/core/storage"
)

// Recomputer is the scheduler surface the catalog drives: any change to
// the occurrence set must trigger a full recompute.
type Recomputer interface {
	Recompute(ctx context.Context) error
}

// Service handles event definition CRUD.
type Service struct {
	store storage.Store
	sched Recomputer
}

// NewService creates the catalog service.
func NewService(store storage.Store, sched Recomputer) *Service {
	return &Service{store: store, sched: sched}
}

// recompute re-arms the reminder timer after a mutation. A failure is
// logged, never propagated: persistence already succeeded and the
// reminder loop must keep functioning.
func (s *Service) recompute() {
	if err := s.sched.Recompute(context.Background()); err != nil {
		slog.Error("[Catalog] Scheduler recompute failed", "error", err)
	}
}
