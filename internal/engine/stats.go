package engine

import (
	"context"

	"github.com/zenfocus/zenfocus/internal/model"
)

// DrinkWater increments today's hydration count optimistically, capped
// at the per-day target. At the cap the call is a no-op and reports
// false. Metric increments are not queued: the bucket history already
// survives offline in the snapshot, and the server recounts from its
// own buckets on the next stats fetch. Unlock feedback comes from
// CheckAchievements, which stays the single evaluation entry point so
// a changed-list is reported exactly once.
func (e *Engine) DrinkWater(ctx context.Context) (model.Stats, bool) {
	e.mu.Lock()
	e.tracker.RolloverIfNeeded(e.snap)
	recorded := e.tracker.RecordHydration(&e.snap.Stats)
	if !recorded {
		stats := e.snap.Stats
		e.mu.Unlock()
		return stats, false
	}
	e.scheduleSave()
	e.mu.Unlock()

	_, err := e.remote.RecordHydration(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(err == nil)
	return e.snap.Stats, true
}

// CompletePomodoro increments today's pomodoro count optimistically and
// notifies the server best-effort.
func (e *Engine) CompletePomodoro(ctx context.Context) model.Stats {
	e.mu.Lock()
	e.tracker.RolloverIfNeeded(e.snap)
	e.tracker.RecordPomodoro(&e.snap.Stats)
	e.scheduleSave()
	e.mu.Unlock()

	_, err := e.remote.RecordPomodoro(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(err == nil)
	return e.snap.Stats
}

// UpdateHydrationTarget changes the per-day goal optimistically. A
// lower target never truncates today's count; it only stops further
// increments.
func (e *Engine) UpdateHydrationTarget(ctx context.Context, target int) {
	if target < 1 {
		target = 1
	}

	e.mu.Lock()
	e.snap.Stats.HydrationTarget = target
	e.scheduleSave()
	e.mu.Unlock()

	err := e.remote.UpdateHydrationTarget(ctx, target)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(err == nil)
}

// Stats returns a copy of the current metric counters.
func (e *Engine) Stats() model.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.snap.Stats
	s.HydrationHistory = append([]model.Bucket(nil), s.HydrationHistory...)
	s.PomodoroHistory = append([]model.Bucket(nil), s.PomodoroHistory...)
	return s
}
