package metrics

import (
	"time"

	"github.com/zenfocus/zenfocus/internal/model"
)

// DateLayout is the calendar-day key format used by all metric buckets.
const DateLayout = "2006-01-02"

// Tracker derives the denormalized daily counters from the bucket
// history and applies increments. The clock is injectable so tests can
// cross day boundaries deterministically.
type Tracker struct {
	now func() time.Time
}

// NewTracker returns a tracker on the local wall clock.
func NewTracker() *Tracker {
	return NewTrackerAt(time.Now)
}

// NewTrackerAt returns a tracker using the given clock.
func NewTrackerAt(now func() time.Time) *Tracker {
	return &Tracker{now: now}
}

// Today returns the current local calendar day string.
func (t *Tracker) Today() string {
	return t.now().Format(DateLayout)
}

// SyncStats recomputes the denormalized current counters from today's
// buckets. An absent bucket means a new day with no activity yet, so
// the counter shows zero while history is untouched. This is the read
// path run on every load and on the polling interval; it corrects any
// drift between the cached counter and the authoritative bucket.
func (t *Tracker) SyncStats(s *model.Stats) {
	today := t.Today()

	hydration := NewHistory(s.HydrationHistory)
	if count, ok := hydration.Get(today); ok {
		s.HydrationCount = count
	} else {
		s.HydrationCount = 0
	}

	pomodoro := NewHistory(s.PomodoroHistory)
	if count, ok := pomodoro.Get(today); ok {
		s.Pomodoros = count
	} else {
		s.Pomodoros = 0
	}
}

// RecordHydration increments today's hydration bucket and the cached
// counter in one step. Once the per-day target is reached further
// increments are rejected and the state is returned unchanged; the cap
// is per-day, not lifetime. Reports whether a count was recorded.
func (t *Tracker) RecordHydration(s *model.Stats) bool {
	today := t.Today()
	h := NewHistory(s.HydrationHistory)

	count, _ := h.Get(today)
	if s.HydrationTarget > 0 && count >= s.HydrationTarget {
		return false
	}

	s.HydrationCount = h.Increment(today)
	s.HydrationHistory = h.Buckets()
	return true
}

// RecordPomodoro increments today's pomodoro bucket and the cached
// counter, returning the new daily count.
func (t *Tracker) RecordPomodoro(s *model.Stats) int {
	today := t.Today()
	h := NewHistory(s.PomodoroHistory)

	s.Pomodoros = h.Increment(today)
	s.PomodoroHistory = h.Buckets()
	return s.Pomodoros
}

// RolloverIfNeeded compares the snapshot's last-seen-date marker to
// today. On a new day the in-memory daily counters reset to zero and
// the marker advances; bucket history is never touched, it remains the
// source of truth. Reports whether a day boundary was crossed.
func (t *Tracker) RolloverIfNeeded(snap *model.Snapshot) bool {
	today := t.Today()
	if snap.LastSeenDate == today {
		return false
	}

	snap.LastSeenDate = today
	t.SyncStats(&snap.Stats)
	return true
}
