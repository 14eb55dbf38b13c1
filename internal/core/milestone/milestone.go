package milestone

import (
	"errors"
	"fmt"
	"time"

	"github.com/dates-lab/dates-manager/internal/core/chrono"
	"github.com/dates-lab/dates-manager/internal/core/event"
)

// Disposition is the closed set of states an occurrence moves through:
// Base → Remind → {Done, Ignore}, plus Remind → Remind for a snooze.
// Consumers switch exhaustively over the four concrete types.
type Disposition interface {
	disposition()
}

// Base means nothing has been recorded yet. Every synthesized occurrence
// starts here; no transition leads back.
type Base struct{}

// Remind means the occurrence is actively awaiting its next reminder.
type Remind struct {
	NextReminderAt time.Time
}

// Done means the user marked this year's occurrence complete.
type Done struct{}

// Ignore means the user suppressed reminders without marking complete.
type Ignore struct{}

func (Base) disposition()   {}
func (Remind) disposition() {}
func (Done) disposition()   {}
func (Ignore) disposition() {}

// ErrSettled is returned when a transition targets a Done or Ignore
// occurrence. Those states only leave the store through an explicit
// delete, which re-opens the year at Base.
var ErrSettled = errors.New("occurrence is settled")

// Key is the composite identity of an occurrence. Two occurrences with
// the same key are the same entity; never compare by reference.
type Key struct {
	Year     int
	EventUID int64
}

// String renders the external composite key, "<year> <uid>".
func (k Key) String() string {
	return fmt.Sprintf("%d %d", k.Year, k.EventUID)
}

// Occurrence is one year's concrete instance of an event definition.
// The definition is held by reference: edits to it show through. The
// calendar date is always derived, never stored.
type Occurrence struct {
	Year  int
	Event *event.Definition
	Dispo Disposition

	// Note is a free-form story the user attaches to this occurrence.
	Note string
}

// Derive synthesizes the Base occurrence of def in year.
func Derive(def *event.Definition, year int) *Occurrence {
	return &Occurrence{
		Year:  year,
		Event: def,
		Dispo: Base{},
	}
}

// Key returns the occurrence's composite identity.
func (o *Occurrence) Key() Key {
	return Key{Year: o.Year, EventUID: o.Event.UID}
}

// Date is the occurrence's calendar date, midnight UTC.
func (o *Occurrence) Date() time.Time {
	return chrono.MakeDate(o.Year, o.Event.Month, o.Event.Day)
}

// ReminderStart is the instant the reminder window opens.
func (o *Occurrence) ReminderStart(iv chrono.Interval) time.Time {
	return o.Date().Add(-iv.Before)
}

// ReminderStop is the instant the reminder window closes.
func (o *Occurrence) ReminderStop(iv chrono.Interval) time.Time {
	return o.Date().Add(iv.After)
}

// InProcess reports whether the occurrence is awaiting a reminder.
func (o *Occurrence) InProcess() bool {
	_, ok := o.Dispo.(Remind)
	return ok
}

// IsBase reports whether nothing has been recorded for the occurrence.
func (o *Occurrence) IsBase() bool {
	_, ok := o.Dispo.(Base)
	return ok
}

// IsSettled reports whether the occurrence reached a terminal state.
func (o *Occurrence) IsSettled() bool {
	switch o.Dispo.(type) {
	case Done, Ignore:
		return true
	}
	return false
}

// InWindow reports whether probe falls inside iv anchored at the
// occurrence's own date.
func (o *Occurrence) InWindow(iv chrono.Interval, probe time.Time) bool {
	return chrono.InWindow(o.Date(), iv, probe)
}

// EventInWindow anchors the definition's date in probe's year and checks
// probe against iv. This is the calendar-cell visibility predicate.
func EventInWindow(def *event.Definition, iv chrono.Interval, probe time.Time) bool {
	anchor := chrono.MakeDate(probe.Year(), def.Month, def.Day)
	return chrono.InWindow(anchor, iv, probe)
}

// The transition constructors below return a replacement occurrence
// rather than mutating in place: persistence applies them with
// delete-old/put-new semantics, keeping stored and in-memory state in
// step.

// WithReminder returns a copy in Remind state with the given wake time.
func (o *Occurrence) WithReminder(at time.Time) *Occurrence {
	next := *o
	next.Dispo = Remind{NextReminderAt: at}
	return &next
}

// Snoozed returns a copy re-armed to now+delay.
func (o *Occurrence) Snoozed(now time.Time, delay time.Duration) *Occurrence {
	return o.WithReminder(now.Add(delay))
}

// MarkedDone returns a copy in the terminal Done state.
func (o *Occurrence) MarkedDone() *Occurrence {
	next := *o
	next.Dispo = Done{}
	return &next
}

// MarkedIgnored returns a copy in the terminal Ignore state.
func (o *Occurrence) MarkedIgnored() *Occurrence {
	next := *o
	next.Dispo = Ignore{}
	return &next
}

// WithNote returns a copy carrying the given story text.
func (o *Occurrence) WithNote(note string) *Occurrence {
	next := *o
	next.Note = note
	return &next
}
