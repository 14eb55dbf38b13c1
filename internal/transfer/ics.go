package transfer

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/dates-lab/dates-manager/internal/core/milestone"
	"github.com/dates-lab/dates-manager/internal/core/storage"
)

// ExportCalendar renders the next occurrence of every definition as an
// iCalendar feed. Each VEVENT is an all-day entry on the occurrence
// date and carries a DISPLAY alarm firing at the reminder window start.
func (s *Service) ExportCalendar(ctx context.Context) (string, error) {
	defRecs, err := s.store.ListDefinitions(ctx)
	if err != nil {
		return "", fmt.Errorf("export calendar: %w", err)
	}
	defs, _, err := storage.Materialize(defRecs, nil)
	if err != nil {
		return "", fmt.Errorf("export calendar: %w", err)
	}

	now := s.clock()
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//dates-lab//dates-manager//EN")
	cal.SetXWRCalName(s.calendarName)

	for _, def := range defs {
		occ := milestone.DeriveNext(def, now, s.intervals.Reminder)
		date := occ.Date()

		ev := cal.AddEvent(uuid.New().String() + "@dates-manager")
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(date)
		ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		ev.SetSummary(summaryFor(occ))
		if def.OriginYear != nil {
			ev.SetDescription(fmt.Sprintf("Year %d (origin %d)", occ.Year, *def.OriginYear))
		}

		alarm := ev.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(triggerFor(s.intervals.Reminder.Before))
	}

	return cal.Serialize(), nil
}

// summaryFor builds the event line, e.g. "Birthday (Alice)" or just the
// title when no actor is set.
func summaryFor(occ *milestone.Occurrence) string {
	if occ.Event.Actor != "" {
		return fmt.Sprintf("%s (%s)", occ.Event.Title, occ.Event.Actor)
	}
	return occ.Event.Title
}

// triggerFor formats a lead time as a negative ISO 8601 duration, the
// shape VALARM TRIGGER expects. Zero lead means "at event start".
func triggerFor(before time.Duration) string {
	if before <= 0 {
		return "PT0S"
	}
	if before%(24*time.Hour) == 0 {
		return fmt.Sprintf("-P%dD", int(before/(24*time.Hour)))
	}
	return fmt.Sprintf("-PT%dM", int(before/time.Minute))
}
