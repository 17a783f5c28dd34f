package engine

import (
	"context"

	"github.com/zenfocus/zenfocus/internal/model"
)

// Reconciliation swaps a temporary identifier for the server-assigned
// one everywhere it can appear: the snapshot entity itself and any
// queued mutation payload referencing it. After reconciliation the
// temporary identifier must not be reachable anywhere.

// reconcileTaskLocked adopts the authoritative task returned by the
// server in place of the temp-id entry. Callers hold e.mu.
func (e *Engine) reconcileTaskLocked(ctx context.Context, tempID string, created model.Task) {
	for i := range e.snap.Tasks {
		if e.snap.Tasks[i].ID == tempID {
			e.snap.Tasks[i] = created
			break
		}
	}
	_ = e.queue.RewriteID(ctx, tempID, created.ID)
	e.scheduleSave()
}

// reconcileLogLocked adopts the authoritative log entry. Callers hold e.mu.
func (e *Engine) reconcileLogLocked(ctx context.Context, tempID string, created model.LogEntry) {
	for i := range e.snap.Logs {
		if e.snap.Logs[i].ID == tempID {
			e.snap.Logs[i] = created
			break
		}
	}
	_ = e.queue.RewriteID(ctx, tempID, created.ID)
	e.scheduleSave()
}

// reconcileDumpLocked adopts the authoritative dump. Callers hold e.mu.
func (e *Engine) reconcileDumpLocked(ctx context.Context, tempID string, created model.Dump) {
	for i := range e.snap.Dumps {
		if e.snap.Dumps[i].ID == tempID {
			e.snap.Dumps[i] = created
			break
		}
	}
	_ = e.queue.RewriteID(ctx, tempID, created.ID)
	e.scheduleSave()
}

// reconcileIdeaLocked adopts the authoritative idea. Callers hold e.mu.
func (e *Engine) reconcileIdeaLocked(ctx context.Context, tempID string, created model.Idea) {
	for i := range e.snap.Ideas {
		if e.snap.Ideas[i].ID == tempID {
			e.snap.Ideas[i] = created
			break
		}
	}
	_ = e.queue.RewriteID(ctx, tempID, created.ID)
	e.scheduleSave()
}

// reconcileChecklistLocked adopts the authoritative checklist item.
// Callers hold e.mu.
func (e *Engine) reconcileChecklistLocked(ctx context.Context, tempID string, created model.ChecklistItem) {
	for i := range e.snap.Checklist {
		if e.snap.Checklist[i].ID == tempID {
			e.snap.Checklist[i] = created
			break
		}
	}
	_ = e.queue.RewriteID(ctx, tempID, created.ID)
	e.scheduleSave()
}

// reconcileAchievementLocked adopts the authoritative achievement.
// Callers hold e.mu.
func (e *Engine) reconcileAchievementLocked(ctx context.Context, tempID string, created model.Achievement) {
	for i := range e.snap.Achievements {
		if e.snap.Achievements[i].ID == tempID {
			e.snap.Achievements[i] = created
			break
		}
	}
	_ = e.queue.RewriteID(ctx, tempID, created.ID)
	e.scheduleSave()
}
