// Package v1 defines the persisted and wire-level record shapes. These
// are the stable external contract: JSON field names follow the snapshot
// file format and must not drift with internal refactors.
package v1

import (
	"fmt"
	"time"

	"github.com/dates-lab/dates-manager/internal/core/event"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
)

// SnapshotVersion is the current dbVersion stamped into exported files.
const SnapshotVersion = 1

// Disposition state tags, the closed "type" vocabulary of MilestoneState.
const (
	StateBase   = "base"
	StateRemind = "remind"
	StateDone   = "done"
	StateIgnore = "ignore"
)

// EventRecord is the persisted shape of an event definition.
type EventRecord struct {
	UID       int64  `json:"uid"`
	DateYear  *int   `json:"date_year,omitempty"`
	DateMonth int    `json:"date_month"`
	DateDay   int    `json:"date_day"`
	Title     string `json:"title"`
	Actor     string `json:"actor,omitempty"`
}

// MilestoneState is the tagged disposition on the wire. The reminder
// timestamp is present exactly when Type is "remind".
type MilestoneState struct {
	Type                 string     `json:"type"`
	NextReminderDatetime *time.Time `json:"next_reminder_datetime,omitempty"`
}

// MilestoneRecord is the persisted shape of one year's occurrence.
type MilestoneRecord struct {
	DateYear     int            `json:"date_year"`
	EventbaseUID int64          `json:"eventbase_uid"`
	State        MilestoneState `json:"state"`
	Story        string         `json:"story,omitempty"`
}

// Snapshot is the file export/import format.
type Snapshot struct {
	DBVersion     int                `json:"dbVersion"`
	EventbaseList []*EventRecord     `json:"eventbase_list"`
	MilestoneList []*MilestoneRecord `json:"milestone_list"`
}

// Validate checks an incoming event record's date components and title
// via the domain rules.
func (r *EventRecord) Validate() error {
	return r.Definition().Validate()
}

// Validate checks the state tag and its reminder-timestamp pairing.
func (r *MilestoneRecord) Validate() error {
	switch r.State.Type {
	case StateRemind:
		if r.State.NextReminderDatetime == nil {
			return fmt.Errorf("state %q requires next_reminder_datetime", StateRemind)
		}
	case StateBase, StateDone, StateIgnore:
		if r.State.NextReminderDatetime != nil {
			return fmt.Errorf("state %q must not carry next_reminder_datetime", r.State.Type)
		}
	default:
		return fmt.Errorf("unknown milestone state %q", r.State.Type)
	}
	return nil
}

// ExternalKey renders the composite key used by external stores,
// "<date_year> <eventbase_uid>".
func (r *MilestoneRecord) ExternalKey() string {
	return milestone.Key{Year: r.DateYear, EventUID: r.EventbaseUID}.String()
}

// Definition converts the record into the domain type.
func (r *EventRecord) Definition() *event.Definition {
	return &event.Definition{
		UID:        r.UID,
		OriginYear: r.DateYear,
		Month:      time.Month(r.DateMonth),
		Day:        r.DateDay,
		Title:      r.Title,
		Actor:      r.Actor,
	}
}

// DefinitionRecord converts a domain definition into its wire shape.
func DefinitionRecord(d *event.Definition) *EventRecord {
	return &EventRecord{
		UID:       d.UID,
		DateYear:  d.OriginYear,
		DateMonth: int(d.Month),
		DateDay:   d.Day,
		Title:     d.Title,
		Actor:     d.Actor,
	}
}

// Occurrence converts the record into a domain occurrence bound to def.
// The caller supplies the definition so the occurrence references the
// live catalog entry rather than a copy.
func (r *MilestoneRecord) Occurrence(def *event.Definition) (*milestone.Occurrence, error) {
	if def == nil || def.UID != r.EventbaseUID {
		return nil, fmt.Errorf("milestone %s does not belong to the given definition", r.ExternalKey())
	}

	var dispo milestone.Disposition
	switch r.State.Type {
	case StateBase:
		dispo = milestone.Base{}
	case StateRemind:
		if r.State.NextReminderDatetime == nil {
			return nil, fmt.Errorf("milestone %s: remind state without timestamp", r.ExternalKey())
		}
		dispo = milestone.Remind{NextReminderAt: r.State.NextReminderDatetime.UTC()}
	case StateDone:
		dispo = milestone.Done{}
	case StateIgnore:
		dispo = milestone.Ignore{}
	default:
		return nil, fmt.Errorf("milestone %s: unknown state %q", r.ExternalKey(), r.State.Type)
	}

	return &milestone.Occurrence{
		Year:  r.DateYear,
		Event: def,
		Dispo: dispo,
		Note:  r.Story,
	}, nil
}

// OccurrenceRecord converts a domain occurrence into its wire shape.
func OccurrenceRecord(o *milestone.Occurrence) *MilestoneRecord {
	rec := &MilestoneRecord{
		DateYear:     o.Year,
		EventbaseUID: o.Event.UID,
		Story:        o.Note,
	}
	switch d := o.Dispo.(type) {
	case milestone.Base:
		rec.State = MilestoneState{Type: StateBase}
	case milestone.Remind:
		at := d.NextReminderAt.UTC()
		rec.State = MilestoneState{Type: StateRemind, NextReminderDatetime: &at}
	case milestone.Done:
		rec.State = MilestoneState{Type: StateDone}
	case milestone.Ignore:
		rec.State = MilestoneState{Type: StateIgnore}
	}
	return rec
}
