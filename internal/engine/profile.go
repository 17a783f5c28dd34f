package engine

import (
	"context"

	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
)

// UpdateProfile merges profile fields optimistically and dispatches the
// update, queueing the intent on failure.
func (e *Engine) UpdateProfile(ctx context.Context, u model.ProfileUpdates) model.Profile {
	e.mu.Lock()
	u.Apply(&e.snap.Profile)
	e.scheduleSave()
	e.mu.Unlock()

	updated, err := e.remote.UpdateProfile(ctx, u)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:    queue.KindUpdateProfile,
			Profile: &u,
		})
		return e.snap.Profile
	}
	e.markOnline(true)
	// Keep locally stored settings if the server copy predates them.
	settings := e.snap.Profile.Settings
	e.snap.Profile = updated
	if updated.Settings == (model.Settings{}) {
		e.snap.Profile.Settings = settings
	}
	e.scheduleSave()
	return e.snap.Profile
}

// UpdateSettings replaces the preference block optimistically and
// dispatches the update, queueing the whole block on failure. Replay is
// last-writer-wins, which is exactly what a settings blob wants.
func (e *Engine) UpdateSettings(ctx context.Context, s model.Settings) {
	e.mu.Lock()
	e.snap.Profile.Settings = s
	e.scheduleSave()
	e.mu.Unlock()

	_, err := e.remote.UpdateSettings(ctx, s)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:     queue.KindUpdateSettings,
			Settings: &s,
		})
		return
	}
	e.markOnline(true)
}

// CreateAchievement adds a user-defined achievement optimistically.
// Custom achievements are not part of the replayable set; a failed
// create leaves the entry local-only until recreated online.
func (e *Engine) CreateAchievement(ctx context.Context, a model.Achievement) model.Achievement {
	e.mu.Lock()
	if a.ID == "" {
		a.ID = model.NewTempID()
	}
	a.IsCustom = true
	e.snap.Achievements = append(e.snap.Achievements, a)
	e.scheduleSave()
	e.mu.Unlock()

	created, err := e.remote.CreateAchievement(ctx, a)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		return a
	}
	e.markOnline(true)
	e.reconcileAchievementLocked(ctx, a.ID, created)
	return created
}

// DeleteAchievement removes a custom achievement optimistically;
// built-in entries are left alone.
func (e *Engine) DeleteAchievement(ctx context.Context, id string) {
	e.mu.Lock()
	for i := range e.snap.Achievements {
		if e.snap.Achievements[i].ID == id {
			if !e.snap.Achievements[i].IsCustom {
				e.mu.Unlock()
				return
			}
			e.snap.Achievements = append(e.snap.Achievements[:i], e.snap.Achievements[i+1:]...)
			break
		}
	}
	e.scheduleSave()
	if model.IsTempID(id) {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	err := e.remote.DeleteAchievement(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(err == nil)
}
