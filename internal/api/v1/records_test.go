package v1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dates-lab/dates-manager/internal/core/event"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
)

func TestMilestoneRecord_Validate(t *testing.T) {
	at := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		state     MilestoneState
		wantError bool
	}{
		{name: "base", state: MilestoneState{Type: StateBase}},
		{name: "done", state: MilestoneState{Type: StateDone}},
		{name: "ignore", state: MilestoneState{Type: StateIgnore}},
		{name: "remind with timestamp", state: MilestoneState{Type: StateRemind, NextReminderDatetime: &at}},
		{name: "remind without timestamp", state: MilestoneState{Type: StateRemind}, wantError: true},
		{name: "base with stray timestamp", state: MilestoneState{Type: StateBase, NextReminderDatetime: &at}, wantError: true},
		{name: "unknown tag", state: MilestoneState{Type: "snoozed"}, wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := MilestoneRecord{DateYear: 2024, EventbaseUID: 1, State: tc.state}
			err := rec.Validate()
			if tc.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMilestoneRecord_ExternalKey(t *testing.T) {
	rec := MilestoneRecord{DateYear: 2024, EventbaseUID: 7}
	require.Equal(t, "2024 7", rec.ExternalKey())
}

func TestOccurrenceRoundTrip(t *testing.T) {
	def := &event.Definition{UID: 3, Month: time.June, Day: 15, Title: "anniversary"}
	at := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	occ := milestone.Derive(def, 2024).WithReminder(at).WithNote("call ahead")
	rec := OccurrenceRecord(occ)

	require.Equal(t, StateRemind, rec.State.Type)
	require.NotNil(t, rec.State.NextReminderDatetime)

	back, err := rec.Occurrence(def)
	require.NoError(t, err)
	require.Equal(t, occ, back)
}

func TestMilestoneRecord_Occurrence_WrongDefinition(t *testing.T) {
	rec := MilestoneRecord{DateYear: 2024, EventbaseUID: 3, State: MilestoneState{Type: StateBase}}

	_, err := rec.Occurrence(&event.Definition{UID: 9})
	require.Error(t, err)

	_, err = rec.Occurrence(nil)
	require.Error(t, err)
}

func TestSnapshot_JSONFieldNames(t *testing.T) {
	year := 1987
	snap := Snapshot{
		DBVersion:     SnapshotVersion,
		EventbaseList: []*EventRecord{{UID: 0, DateYear: &year, DateMonth: 6, DateDay: 15, Title: "birthday", Actor: "alice"}},
		MilestoneList: []*MilestoneRecord{{DateYear: 2024, EventbaseUID: 0, State: MilestoneState{Type: StateDone}, Story: "cake"}},
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	// The file format is an external contract; assert the exact keys.
	require.JSONEq(t, `{
		"dbVersion": 1,
		"eventbase_list": [{"uid": 0, "date_year": 1987, "date_month": 6, "date_day": 15, "title": "birthday", "actor": "alice"}],
		"milestone_list": [{"date_year": 2024, "eventbase_uid": 0, "state": {"type": "done"}, "story": "cake"}]
	}`, string(raw))
}
