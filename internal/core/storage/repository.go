package storage

import (
	"context"
	"errors"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
)

var (
	// ErrDuplicate is returned when inserting a record whose key exists.
	ErrDuplicate = errors.New("record already exists")

	// ErrNotFound is returned when a keyed lookup or update misses.
	ErrNotFound = errors.New("record not found")
)

// CatalogStore persists event definitions.
type CatalogStore interface {
	// SaveDefinition inserts a new definition. Returns ErrDuplicate if
	// the UID is already taken.
	SaveDefinition(ctx context.Context, rec *v1.EventRecord) error

	// UpdateDefinition rewrites an existing definition in place. The UID
	// is immutable. Returns ErrNotFound for an unknown UID.
	UpdateDefinition(ctx context.Context, rec *v1.EventRecord) error

	// DeleteDefinition removes a definition and, by cascade, every
	// milestone derived from it. Returns ErrNotFound for an unknown UID.
	DeleteDefinition(ctx context.Context, uid int64) error

	// ListDefinitions returns the whole catalog ordered by UID.
	ListDefinitions(ctx context.Context) ([]*v1.EventRecord, error)
}

// MilestoneStore persists per-year occurrences keyed by
// (date_year, eventbase_uid).
type MilestoneStore interface {
	// ReplaceMilestone applies a disposition transition with
	// delete-old/put-new semantics in one transaction: the row for the
	// record's key is removed if present, then the record is inserted.
	ReplaceMilestone(ctx context.Context, rec *v1.MilestoneRecord) error

	// DeleteMilestone removes one stored occurrence. Returns ErrNotFound
	// when no row matches.
	DeleteMilestone(ctx context.Context, year int, uid int64) error

	// ListMilestones returns all stored occurrences.
	ListMilestones(ctx context.Context) ([]*v1.MilestoneRecord, error)
}

// Store is the combined persistence surface the services wire against.
type Store interface {
	CatalogStore
	MilestoneStore
}
