package engine

import (
	"context"
	"fmt"

	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
)

// ProcessQueue replays queued mutations against the server in enqueue
// order. Replayed creates reconcile their temporary identifiers exactly
// as a live create would. Failed mutations stay queued in place for the
// next pass; mutations that exhaust their retry cap are dropped and
// returned as terminal failures so the caller can surface them. After a
// pass that applied anything, callers should Refresh to re-adopt the
// authoritative server state.
func (e *Engine) ProcessQueue(ctx context.Context) (queue.DrainResult, error) {
	e.mu.Lock()
	e.syncing = true
	e.mu.Unlock()

	res, err := e.queue.Drain(ctx, e.replayHandlers())

	e.mu.Lock()
	e.syncing = false
	if err == nil {
		e.markOnline(res.Retained == 0)
	}
	e.mu.Unlock()

	if err != nil {
		return res, fmt.Errorf("draining mutation queue: %w", err)
	}
	return res, nil
}

// replayHandlers binds each mutation kind to its remote call. Creates
// reconcile the server identity on success, mirroring the live path.
func (e *Engine) replayHandlers() queue.Handlers {
	return queue.Handlers{
		CreateTask: func(ctx context.Context, m queue.Mutation) error {
			created, err := e.remote.CreateTask(ctx, *m.Task)
			if err != nil {
				return err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			e.reconcileTaskLocked(ctx, m.TempID, created)
			return nil
		},
		UpdateTask: func(ctx context.Context, m queue.Mutation) error {
			updated, err := e.remote.UpdateTask(ctx, m.TaskUpdate.ID, m.TaskUpdate.Updates)
			if err != nil {
				return err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			for i := range e.snap.Tasks {
				if e.snap.Tasks[i].ID == updated.ID {
					e.snap.Tasks[i] = updated
					break
				}
			}
			e.scheduleSave()
			return nil
		},
		DeleteTask: func(ctx context.Context, m queue.Mutation) error {
			return e.remote.DeleteTask(ctx, m.TaskDelete.ID)
		},
		CreateLog: func(ctx context.Context, m queue.Mutation) error {
			created, err := e.remote.CreateLog(ctx, *m.Log)
			if err != nil {
				return err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			e.reconcileLogLocked(ctx, m.TempID, created)
			return nil
		},
		CreateDump: func(ctx context.Context, m queue.Mutation) error {
			created, err := e.remote.CreateDump(ctx, *m.Dump)
			if err != nil {
				return err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			e.reconcileDumpLocked(ctx, m.TempID, created)
			return nil
		},
		CreateIdea: func(ctx context.Context, m queue.Mutation) error {
			created, err := e.remote.CreateIdea(ctx, *m.Idea)
			if err != nil {
				return err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			e.reconcileIdeaLocked(ctx, m.TempID, created)
			return nil
		},
		CreateChecklistItem: func(ctx context.Context, m queue.Mutation) error {
			created, err := e.remote.CreateChecklistItem(ctx, *m.ChecklistItem)
			if err != nil {
				return err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			e.reconcileChecklistLocked(ctx, m.TempID, created)
			return nil
		},
		UpdateProfile: func(ctx context.Context, m queue.Mutation) error {
			_, err := e.remote.UpdateProfile(ctx, *m.Profile)
			return err
		},
		UpdateSettings: func(ctx context.Context, m queue.Mutation) error {
			_, err := e.remote.UpdateSettings(ctx, *m.Settings)
			return err
		},
	}
}

// Refresh fetches the authoritative server state and adopts it. Local
// unlock state is merged monotonically: an achievement unlocked locally
// stays unlocked even if the server copy lags. A refresh while
// mutations are still queued would clobber optimistic entries the
// server has never seen, so it is skipped.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.queue.Len() > 0 {
		return nil
	}

	state, err := e.remote.FetchState(ctx)
	if err != nil {
		e.mu.Lock()
		e.markOnline(false)
		e.mu.Unlock()
		return fmt.Errorf("fetching server state: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(true)

	e.snap.Tasks = state.Tasks
	e.snap.Logs = state.Logs
	e.snap.Dumps = state.Dumps
	e.snap.Ideas = state.Ideas
	e.snap.Checklist = state.Checklist
	e.snap.Profile = state.Profile
	e.snap.Achievements = mergeAchievements(e.snap.Achievements, state.Achievements)

	e.snap.Stats = state.Stats
	if e.snap.Stats.HydrationTarget == 0 {
		e.snap.Stats.HydrationTarget = model.DefaultHydrationTarget
	}
	e.tracker.SyncStats(&e.snap.Stats)

	e.scheduleSave()
	return nil
}

// RefreshStats fetches only the metric counters, the lightweight call
// used on the polling interval.
func (e *Engine) RefreshStats(ctx context.Context) error {
	stats, err := e.remote.FetchStats(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		return fmt.Errorf("fetching stats: %w", err)
	}
	e.markOnline(true)

	if stats.HydrationTarget == 0 {
		stats.HydrationTarget = e.snap.Stats.HydrationTarget
	}
	e.snap.Stats = stats
	e.tracker.SyncStats(&e.snap.Stats)
	e.scheduleSave()
	return nil
}

// mergeAchievements adopts the server list while keeping local unlocks:
// unlock state only ever advances, so a server copy that has not caught
// up cannot re-lock an achievement.
func mergeAchievements(local, remote []model.Achievement) []model.Achievement {
	unlocked := make(map[string]model.Achievement, len(local))
	for _, a := range local {
		if a.IsUnlocked {
			unlocked[a.ID] = a
		}
	}

	out := make([]model.Achievement, len(remote))
	copy(out, remote)
	for i := range out {
		if la, ok := unlocked[out[i].ID]; ok && !out[i].IsUnlocked {
			out[i].IsUnlocked = true
			out[i].UnlockedAt = la.UnlockedAt
			if la.CurrentValue > out[i].CurrentValue {
				out[i].CurrentValue = la.CurrentValue
			}
		}
	}
	return out
}
