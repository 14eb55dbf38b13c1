package event

import (
	"fmt"
	"time"
)

// Definition is a recurring annual source record: a birthday, an
// anniversary, any date that comes back every year. The UID is assigned
// once at creation and never changes; every other field is editable.
type Definition struct {
	// UID is the stable identity. New definitions get max(existing)+1.
	UID int64

	// OriginYear is the year the event first happened (birth year for a
	// birthday). Nil when unknown; only used for display arithmetic.
	OriginYear *int

	// Month and Day place the event inside any given year.
	Month time.Month
	Day   int

	Title string

	// Actor is who the event is about, when distinct from the title.
	Actor string
}

// daysIn reports the longest length the month reaches in any year, so a
// Feb 29 definition is accepted and resolved per-year at derivation time.
func daysIn(m time.Month) int {
	switch m {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Validate checks the date components and title. This is the edit
// boundary: derivation downstream assumes a validated definition.
func (d *Definition) Validate() error {
	if d.Month < time.January || d.Month > time.December {
		return fmt.Errorf("month must be 1-12, got %d", int(d.Month))
	}
	if d.Day < 1 || d.Day > daysIn(d.Month) {
		return fmt.Errorf("day %d is out of range for %s", d.Day, d.Month)
	}
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	if d.OriginYear != nil && *d.OriginYear <= 0 {
		return fmt.Errorf("origin year must be positive, got %d", *d.OriginYear)
	}
	return nil
}

// NextUID returns the UID for a new definition: max(existing)+1, or 0
// for an empty catalog.
func NextUID(defs []*Definition) int64 {
	var max int64 = -1
	for _, d := range defs {
		if d.UID > max {
			max = d.UID
		}
	}
	return max + 1
}

// Compare orders definitions by calendar position (month, day), then
// title, then actor; a definition without an actor sorts first.
func Compare(a, b *Definition) int {
	if a.Month != b.Month {
		return int(a.Month) - int(b.Month)
	}
	if a.Day != b.Day {
		return a.Day - b.Day
	}
	if a.Title != b.Title {
		if a.Title < b.Title {
			return -1
		}
		return 1
	}
	if a.Actor == b.Actor {
		return 0
	}
	if a.Actor == "" {
		return -1
	}
	if b.Actor == "" {
		return 1
	}
	if a.Actor < b.Actor {
		return -1
	}
	return 1
}
