package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	"github.com/dates-lab/dates-manager/internal/core/chrono"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
	"github.com/dates-lab/dates-manager/internal/core/storage"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedDefinition(t *testing.T, store *storage.MemoryStore, uid int64, month, day int, title string) {
	t.Helper()
	require.NoError(t, store.SaveDefinition(context.Background(), &v1.EventRecord{
		UID: uid, DateMonth: month, DateDay: day, Title: title,
	}))
}

func TestScheduler_EmptyCatalogStaysIdle(t *testing.T) {
	store := storage.NewMemoryStore()
	s := New(store, chrono.ReminderWindow, NotifierFunc(func(*milestone.Occurrence) {}),
		WithClock(fixedClock(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))))
	defer s.Stop()

	require.NoError(t, s.Recompute(context.Background()))
	require.Nil(t, s.Due())
	require.False(t, s.Pending())
}

func TestScheduler_DueOccurrenceIsNotified(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 15, "anniversary")

	notified := make(chan *milestone.Occurrence, 1)
	s := New(store, chrono.ReminderWindow,
		NotifierFunc(func(o *milestone.Occurrence) { notified <- o }),
		WithClock(fixedClock(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))))
	defer s.Stop()

	require.NoError(t, s.Recompute(context.Background()))

	select {
	case occ := <-notified:
		require.Equal(t, milestone.Key{Year: 2024, EventUID: 1}, occ.Key())
	case <-time.After(time.Second):
		t.Fatal("notifier was not called for a due occurrence")
	}

	require.NotNil(t, s.Due())
	require.False(t, s.Pending(), "a due occurrence waits on the user, not a timer")
}

func TestScheduler_FutureOccurrenceArmsTimer(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 20, "upcoming")

	s := New(store, chrono.ReminderWindow, NotifierFunc(func(*milestone.Occurrence) {
		t.Error("nothing should be due yet")
	}), WithClock(fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))))
	defer s.Stop()

	require.NoError(t, s.Recompute(context.Background()))
	require.Nil(t, s.Due())
	require.True(t, s.Pending())
}

func TestScheduler_AtMostOneTimer(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 20, "upcoming")

	s := New(store, chrono.ReminderWindow, NotifierFunc(func(*milestone.Occurrence) {}),
		WithClock(fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))))
	defer s.Stop()

	require.NoError(t, s.Recompute(context.Background()))
	s.mu.Lock()
	first := s.timer
	s.mu.Unlock()
	require.NotNil(t, first)

	require.NoError(t, s.Recompute(context.Background()))
	s.mu.Lock()
	second := s.timer
	s.mu.Unlock()
	require.NotNil(t, second)

	// The first timer must have been stopped before the second was
	// armed; Stop on an already-cancelled timer reports false.
	require.False(t, first.Stop(), "stale timer left live after recompute")
	require.True(t, s.Pending())
}

func TestScheduler_TerminalDispositionsNeverReopen(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 15, "anniversary")
	require.NoError(t, store.ReplaceMilestone(context.Background(), &v1.MilestoneRecord{
		DateYear: 2024, EventbaseUID: 1, State: v1.MilestoneState{Type: v1.StateDone},
	}))

	s := New(store, chrono.ReminderWindow, NotifierFunc(func(*milestone.Occurrence) {
		t.Error("done occurrence must not come due again")
	}), WithClock(fixedClock(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))))
	defer s.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Recompute(context.Background()))
		require.Nil(t, s.Due())
	}
}

func TestScheduler_FarFutureDelayIsChunked(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 15, "anniversary")

	// Late June: this year is spent, next year's date is nearly a year
	// out, far beyond MaxTimerChunk.
	s := New(store, chrono.ReminderWindow, NotifierFunc(func(*milestone.Occurrence) {}),
		WithClock(fixedClock(time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC))))
	defer s.Stop()

	require.NoError(t, s.Recompute(context.Background()))
	require.Nil(t, s.Due())
	require.True(t, s.Pending(), "timer chains in bounded chunks instead of failing")
}

func TestScheduler_SnoozeUpdatesWakeTime(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 15, "anniversary")

	now := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	require.NoError(t, store.ReplaceMilestone(context.Background(), &v1.MilestoneRecord{
		DateYear: 2024, EventbaseUID: 1,
		State: v1.MilestoneState{Type: v1.StateRemind, NextReminderDatetime: &later},
	}))

	s := New(store, chrono.ReminderWindow, NotifierFunc(func(*milestone.Occurrence) {
		t.Error("snoozed occurrence is not due yet")
	}), WithClock(fixedClock(now)))
	defer s.Stop()

	require.NoError(t, s.Recompute(context.Background()))
	require.Nil(t, s.Due())
	require.True(t, s.Pending())
}

func TestScheduler_StopPreventsRearming(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 20, "upcoming")

	s := New(store, chrono.ReminderWindow, NotifierFunc(func(*milestone.Occurrence) {}),
		WithClock(fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))))

	require.NoError(t, s.Recompute(context.Background()))
	require.True(t, s.Pending())

	s.Stop()
	require.False(t, s.Pending())

	require.NoError(t, s.Recompute(context.Background()))
	require.False(t, s.Pending(), "a stopped scheduler never re-arms")
}

func TestScheduler_RecomputeWhileDueNotifiesOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	seedDefinition(t, store, 1, 6, 15, "anniversary")

	notified := make(chan *milestone.Occurrence, 4)
	s := New(store, chrono.ReminderWindow,
		NotifierFunc(func(o *milestone.Occurrence) { notified <- o }),
		WithClock(fixedClock(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))))
	defer s.Stop()

	require.NoError(t, s.Recompute(context.Background()))
	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("notifier was not called for a due occurrence")
	}

	// Unrelated catalog writes recompute while the user sits on the due
	// occurrence; the same key must not be delivered again.
	require.NoError(t, s.Recompute(context.Background()))
	require.NoError(t, s.Recompute(context.Background()))
	select {
	case occ := <-notified:
		t.Fatalf("re-notified %s while it was already due", occ.Key())
	case <-time.After(100 * time.Millisecond):
	}
	require.NotNil(t, s.Due())

	// A different key taking over the due slot still notifies.
	seedDefinition(t, store, 2, 6, 14, "earlier")
	require.NoError(t, s.Recompute(context.Background()))
	select {
	case occ := <-notified:
		require.Equal(t, milestone.Key{Year: 2024, EventUID: 2}, occ.Key())
	case <-time.After(time.Second):
		t.Fatal("newly due occurrence was not notified")
	}
}
