// Package achievements recomputes achievement progress from metric
// snapshots and advances unlock state idempotently.
package achievements

import (
	"time"

	"github.com/zenfocus/zenfocus/internal/metrics"
	"github.com/zenfocus/zenfocus/internal/model"
)

// Evaluator derives achievement progress from the snapshot. Unlock
// state is monotonic: once unlocked, an achievement is never reset, and
// its unlock timestamp is written exactly once.
type Evaluator struct {
	now func() time.Time
}

// NewEvaluator returns an evaluator on the local wall clock.
func NewEvaluator() *Evaluator {
	return NewEvaluatorAt(time.Now)
}

// NewEvaluatorAt returns an evaluator using the given clock.
func NewEvaluatorAt(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

// Evaluate recomputes progress for every locked achievement in the
// snapshot, mutating entries whose value moved or that just crossed
// their target. It returns copies of the changed entries so the caller
// can surface "just unlocked" feedback without re-deriving it; running
// again with no intervening metric change returns an empty list.
func (e *Evaluator) Evaluate(snap *model.Snapshot) []model.Achievement {
	var changed []model.Achievement

	for i := range snap.Achievements {
		a := &snap.Achievements[i]
		if a.IsUnlocked {
			continue
		}

		current, ok := e.progress(snap, a.Type)
		if !ok {
			continue
		}

		dirty := false
		if current != a.CurrentValue {
			a.CurrentValue = current
			dirty = true
		}
		if a.TargetValue > 0 && a.CurrentValue >= a.TargetValue {
			a.IsUnlocked = true
			now := e.now()
			a.UnlockedAt = &now
			dirty = true
		}
		if dirty {
			changed = append(changed, *a)
		}
	}

	return changed
}

// progress computes the current value for an achievement type from the
// relevant metric snapshot.
func (e *Evaluator) progress(snap *model.Snapshot, achievementType string) (int, bool) {
	switch achievementType {
	case model.AchievementPomodoros:
		return metrics.NewHistory(snap.Stats.PomodoroHistory).Total(), true
	case model.AchievementHydrationDays:
		h := metrics.NewHistory(snap.Stats.HydrationHistory)
		return h.DaysAtOrAbove(snap.Stats.HydrationTarget), true
	case model.AchievementTasksCompleted:
		done := 0
		for _, t := range snap.Tasks {
			if t.Status == model.TaskStatusDone {
				done++
			}
		}
		return done, true
	case model.AchievementHoursLogged:
		minutes := 0
		for _, l := range snap.Logs {
			minutes += l.Duration
		}
		return minutes / 60, true
	case model.AchievementNotes:
		return len(snap.Dumps), true
	default:
		// Custom achievements without a tracked metric advance only
		// through explicit user edits.
		return 0, false
	}
}
