package milestone

import (
	"sort"
	"time"

	"github.com/dates-lab/dates-manager/internal/core/chrono"
	"github.com/dates-lab/dates-manager/internal/core/event"
)

// DeriveNext synthesizes the next relevant occurrence of def as of ref:
// ref's year, unless that occurrence's reminder window has already fully
// elapsed, in which case the following year. The returned occurrence's
// window is guaranteed not to have closed relative to ref.
func DeriveNext(def *event.Definition, ref time.Time, reminder chrono.Interval) *Occurrence {
	occ := Derive(def, ref.Year())
	if !ref.Before(occ.ReminderStop(reminder)) {
		occ = Derive(def, ref.Year()+1)
	}
	return occ
}

// Merge combines synthesized next occurrences with previously stored
// ones and returns the reminder-eligible set, earliest wake time first.
//
// Stored occurrences win over synthesized ones sharing a key. An entry
// survives the filter when it is already in process (Remind) or still a
// Base entry whose reminder window has not closed; elapsed Done/Ignore
// entries drop out. Surviving Base entries are promoted to Remind at the
// window's opening instant, which may lie in the past.
func Merge(defs []*event.Definition, stored []*Occurrence, ref time.Time, reminder chrono.Interval) []*Occurrence {
	byKey := make(map[Key]*Occurrence, len(defs)+len(stored))
	order := make([]Key, 0, len(defs)+len(stored))

	insert := func(o *Occurrence) {
		if _, seen := byKey[o.Key()]; !seen {
			order = append(order, o.Key())
		}
		byKey[o.Key()] = o
	}

	// Synthesized first, stored second: later insertions overwrite.
	for _, def := range defs {
		insert(DeriveNext(def, ref, reminder))
	}
	for _, o := range stored {
		insert(o)
	}

	var kept []*Occurrence
	for _, key := range order {
		o := byKey[key]
		switch {
		case o.InProcess():
			kept = append(kept, o)
		case o.IsBase() && !ref.After(o.ReminderStop(reminder)):
			kept = append(kept, o.WithReminder(o.ReminderStart(reminder)))
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return reminderAt(kept[i]).Before(reminderAt(kept[j]))
	})

	return kept
}

// reminderAt reads the wake time of an in-process occurrence. Merge only
// sorts entries it has already promoted to Remind, so the fallback to
// the occurrence date is never hit in practice.
func reminderAt(o *Occurrence) time.Time {
	if r, ok := o.Dispo.(Remind); ok {
		return r.NextReminderAt
	}
	return o.Date()
}

// ComputeDue returns the earliest merged occurrence whose wake time has
// arrived as of now, or nil when nothing is due.
func ComputeDue(defs []*event.Definition, stored []*Occurrence, now time.Time, reminder chrono.Interval) *Occurrence {
	merged := Merge(defs, stored, now, reminder)
	if len(merged) == 0 {
		return nil
	}
	first := merged[0]
	if reminderAt(first).After(now) {
		return nil
	}
	return first
}
