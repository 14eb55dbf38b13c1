package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name      string
		def       Definition
		wantError bool
	}{
		{name: "valid", def: Definition{Month: time.June, Day: 15, Title: "anniversary"}},
		{name: "valid with origin year", def: Definition{OriginYear: intPtr(1987), Month: time.March, Day: 1, Title: "birthday", Actor: "alice"}},
		{name: "feb 29 allowed", def: Definition{Month: time.February, Day: 29, Title: "leapling"}},
		{name: "month zero", def: Definition{Month: 0, Day: 1, Title: "x"}, wantError: true},
		{name: "month thirteen", def: Definition{Month: 13, Day: 1, Title: "x"}, wantError: true},
		{name: "day zero", def: Definition{Month: time.June, Day: 0, Title: "x"}, wantError: true},
		{name: "day overflow for month", def: Definition{Month: time.April, Day: 31, Title: "x"}, wantError: true},
		{name: "feb 30 rejected", def: Definition{Month: time.February, Day: 30, Title: "x"}, wantError: true},
		{name: "empty title", def: Definition{Month: time.June, Day: 15}, wantError: true},
		{name: "non-positive origin year", def: Definition{OriginYear: intPtr(0), Month: time.June, Day: 15, Title: "x"}, wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.def.Validate()
			if tc.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNextUID(t *testing.T) {
	require.Equal(t, int64(0), NextUID(nil))
	require.Equal(t, int64(8), NextUID([]*Definition{{UID: 3}, {UID: 7}, {UID: 1}}))
}

func TestCompare(t *testing.T) {
	jan := &Definition{Month: time.January, Day: 5, Title: "b"}
	feb := &Definition{Month: time.February, Day: 1, Title: "a"}
	require.Negative(t, Compare(jan, feb))
	require.Positive(t, Compare(feb, jan))

	sameDayA := &Definition{Month: time.June, Day: 15, Title: "a"}
	sameDayB := &Definition{Month: time.June, Day: 15, Title: "b"}
	require.Negative(t, Compare(sameDayA, sameDayB))

	noActor := &Definition{Month: time.June, Day: 15, Title: "t"}
	withActor := &Definition{Month: time.June, Day: 15, Title: "t", Actor: "alice"}
	require.Negative(t, Compare(noActor, withActor))
	require.Positive(t, Compare(withActor, noActor))
	require.Zero(t, Compare(withActor, withActor))
}
