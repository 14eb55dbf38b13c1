package storage

import (
	"fmt"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	"github.com/dates-lab/dates-manager/internal/core/event"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
)

// Materialize converts stored records into domain values, binding every
// occurrence to the live definition it belongs to so definition edits
// show through. Milestones whose definition no longer exists are skipped:
// deletion cascades in storage, so an orphan can only appear mid-flight
// between a delete and the next reload.
func Materialize(defRecs []*v1.EventRecord, msRecs []*v1.MilestoneRecord) ([]*event.Definition, []*milestone.Occurrence, error) {
	defs := make([]*event.Definition, 0, len(defRecs))
	byUID := make(map[int64]*event.Definition, len(defRecs))
	for _, rec := range defRecs {
		def := rec.Definition()
		defs = append(defs, def)
		byUID[def.UID] = def
	}

	var occs []*milestone.Occurrence
	for _, rec := range msRecs {
		def, ok := byUID[rec.EventbaseUID]
		if !ok {
			continue
		}
		occ, err := rec.Occurrence(def)
		if err != nil {
			return nil, nil, fmt.Errorf("materialize milestone %s: %w", rec.ExternalKey(), err)
		}
		occs = append(occs, occ)
	}

	return defs, occs, nil
}
