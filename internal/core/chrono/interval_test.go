package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInWindow_HalfOpen(t *testing.T) {
	anchor := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	day := Interval{Before: 0, After: 24 * time.Hour}

	require.True(t, InWindow(anchor, day, anchor), "anchor itself is inside")
	require.True(t, InWindow(anchor, day, anchor.Add(24*time.Hour-time.Millisecond)))
	require.False(t, InWindow(anchor, day, anchor.Add(24*time.Hour)), "stop boundary is exclusive")
	require.False(t, InWindow(anchor, day, anchor.Add(-time.Millisecond)), "nothing before anchor when before=0")
}

func TestInWindow_Asymmetric(t *testing.T) {
	anchor := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	require.True(t, InWindow(anchor, TimelineView, anchor.AddDate(0, 0, -7)))
	require.False(t, InWindow(anchor, TimelineView, anchor.AddDate(0, 0, -7).Add(-time.Second)))
	require.True(t, InWindow(anchor, TimelineView, anchor.AddDate(0, 0, 8).Add(-time.Second)))
	require.False(t, InWindow(anchor, TimelineView, anchor.AddDate(0, 0, 8)))
}

func TestInterval_Validate(t *testing.T) {
	require.NoError(t, Interval{}.Validate())
	require.NoError(t, ReminderWindow.Validate())
	require.Error(t, Interval{Before: -time.Second}.Validate())
	require.Error(t, Interval{After: -time.Second}.Validate())
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      time.Duration
		wantError bool
	}{
		{name: "hours", input: "2h", want: 2 * time.Hour},
		{name: "days suffix", input: "4d", want: 96 * time.Hour},
		{name: "zero days", input: "0d", want: 0},
		{name: "zero duration", input: "0s", want: 0},
		{name: "empty invalid", input: "", wantError: true},
		{name: "negative invalid", input: "-1h", wantError: true},
		{name: "bad day format invalid", input: "xd", wantError: true},
		{name: "unknown unit invalid", input: "10x", wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSpan(tc.input)
			if tc.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMakeDate(t *testing.T) {
	require.Equal(t,
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		MakeDate(2024, time.June, 15),
	)

	// Feb 29 exists in leap years.
	require.Equal(t,
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		MakeDate(2024, time.February, 29),
	)

	// Outside leap years it clamps to Feb 28 instead of rolling to Mar 1.
	require.Equal(t,
		time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		MakeDate(2023, time.February, 29),
	)
}
