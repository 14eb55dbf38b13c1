package chrono

import (
	"fmt"
	"time"
)

// Interval is a half-open observation window around an anchor instant:
// [anchor-Before, anchor+After). Both offsets are non-negative; an
// asymmetric window (e.g. 7 days back, 8 days forward) is expressed by
// giving the two sides different values.
type Interval struct {
	Before time.Duration
	After  time.Duration
}

// Default window policies. Every view in the system is the same range
// check parameterized with one of these.
var (
	// DayView covers a single calendar day: [midnight, next midnight).
	DayView = Interval{Before: 0, After: 24 * time.Hour}

	// ReminderWindow is how long past its date an occurrence keeps
	// prompting the user before it silently expires.
	ReminderWindow = Interval{Before: 0, After: 4 * 24 * time.Hour}

	// TimelineView spans roughly a week either side of the focus date.
	TimelineView = Interval{Before: 7 * 24 * time.Hour, After: 8 * 24 * time.Hour}
)

// Validate rejects negative offsets. A zero interval is legal (it matches
// nothing, since the range is half-open).
func (iv Interval) Validate() error {
	if iv.Before < 0 {
		return fmt.Errorf("interval before-offset must be >= 0, got %s", iv.Before)
	}
	if iv.After < 0 {
		return fmt.Errorf("interval after-offset must be >= 0, got %s", iv.After)
	}
	return nil
}

// InWindow reports whether probe falls inside iv anchored at anchor:
// anchor-Before <= probe < anchor+After.
func InWindow(anchor time.Time, iv Interval, probe time.Time) bool {
	start := anchor.Add(-iv.Before)
	stop := anchor.Add(iv.After)
	return !probe.Before(start) && probe.Before(stop)
}

// ParseSpan parses a duration string into a time.Duration.
// Supports Go duration syntax (e.g. "30m", "1h") plus "Xd" for days.
func ParseSpan(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("span must not be empty")
	}

	// Handle "d" suffix (days) — not supported by time.ParseDuration.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("invalid span %q: %w", s, err)
		}
		if days < 0 {
			return 0, fmt.Errorf("span must not be negative, got %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid span %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("span must not be negative, got %q", s)
	}
	return d, nil
}

// MakeDate constructs the calendar date year/month/day at midnight UTC.
// A day that does not exist in the target month (Feb 29 outside a leap
// year) clamps to the month's last day rather than rolling over.
func MakeDate(year int, month time.Month, day int) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		// Day 0 of the next month is the last day of this one.
		t = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return t
}
