package engine

import (
	"context"

	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
)

// AddLog records a time log optimistically and dispatches the create.
func (e *Engine) AddLog(ctx context.Context, l model.LogEntry) model.LogEntry {
	e.mu.Lock()
	if l.ID == "" {
		l.ID = model.NewTempID()
	}
	if l.Date.IsZero() {
		l.Date = e.now()
	}
	// Newest first, matching the stack view.
	e.snap.Logs = append([]model.LogEntry{l}, e.snap.Logs...)
	e.scheduleSave()
	e.mu.Unlock()

	created, err := e.remote.CreateLog(ctx, l)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:   queue.KindCreateLog,
			TempID: l.ID,
			Log:    &l,
		})
		return l
	}
	e.markOnline(true)
	e.reconcileLogLocked(ctx, l.ID, created)
	return created
}

// AddDump captures a brain-dump note optimistically and dispatches the
// create.
func (e *Engine) AddDump(ctx context.Context, d model.Dump) model.Dump {
	e.mu.Lock()
	if d.ID == "" {
		d.ID = model.NewTempID()
	}
	if d.Date.IsZero() {
		d.Date = e.now()
	}
	e.snap.Dumps = append(e.snap.Dumps, d)
	e.scheduleSave()
	e.mu.Unlock()

	created, err := e.remote.CreateDump(ctx, d)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:   queue.KindCreateDump,
			TempID: d.ID,
			Dump:   &d,
		})
		return d
	}
	e.markOnline(true)
	e.reconcileDumpLocked(ctx, d.ID, created)
	return created
}

// DeleteDump removes a note optimistically. Deletes are not part of the
// replayable mutation set; a failed remote delete leaves the note gone
// locally and the next authoritative refetch settles it.
func (e *Engine) DeleteDump(ctx context.Context, id string) {
	e.mu.Lock()
	for i := range e.snap.Dumps {
		if e.snap.Dumps[i].ID == id {
			e.snap.Dumps = append(e.snap.Dumps[:i], e.snap.Dumps[i+1:]...)
			break
		}
	}
	e.scheduleSave()
	if model.IsTempID(id) {
		e.mu.Unlock()
		e.cancelQueuedCreate(ctx, id)
		return
	}
	e.mu.Unlock()

	err := e.remote.DeleteDump(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(err == nil)
}

// AddIdea captures an idea-vault entry optimistically and dispatches
// the create.
func (e *Engine) AddIdea(ctx context.Context, i model.Idea) model.Idea {
	e.mu.Lock()
	if i.ID == "" {
		i.ID = model.NewTempID()
	}
	if i.Date.IsZero() {
		i.Date = e.now()
	}
	e.snap.Ideas = append(e.snap.Ideas, i)
	e.scheduleSave()
	e.mu.Unlock()

	created, err := e.remote.CreateIdea(ctx, i)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:   queue.KindCreateIdea,
			TempID: i.ID,
			Idea:   &i,
		})
		return i
	}
	e.markOnline(true)
	e.reconcileIdeaLocked(ctx, i.ID, created)
	return created
}

// DeleteIdea removes an idea optimistically; like dump deletes it is
// best-effort remote.
func (e *Engine) DeleteIdea(ctx context.Context, id string) {
	e.mu.Lock()
	for i := range e.snap.Ideas {
		if e.snap.Ideas[i].ID == id {
			e.snap.Ideas = append(e.snap.Ideas[:i], e.snap.Ideas[i+1:]...)
			break
		}
	}
	e.scheduleSave()
	if model.IsTempID(id) {
		e.mu.Unlock()
		e.cancelQueuedCreate(ctx, id)
		return
	}
	e.mu.Unlock()

	err := e.remote.DeleteIdea(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(err == nil)
}

// AddChecklistItem creates a checklist entry optimistically and
// dispatches the create.
func (e *Engine) AddChecklistItem(ctx context.Context, text string) model.ChecklistItem {
	item := model.ChecklistItem{
		ID:        model.NewTempID(),
		Text:      text,
		CreatedAt: e.now(),
	}

	e.mu.Lock()
	// Newest first, matching the checklist view.
	e.snap.Checklist = append([]model.ChecklistItem{item}, e.snap.Checklist...)
	e.scheduleSave()
	e.mu.Unlock()

	created, err := e.remote.CreateChecklistItem(ctx, item)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:          queue.KindCreateChecklistItem,
			TempID:        item.ID,
			ChecklistItem: &item,
		})
		return item
	}
	e.markOnline(true)
	e.reconcileChecklistLocked(ctx, item.ID, created)
	return created
}

// ToggleChecklistItem flips completion optimistically. For an
// unreconciled item the change folds into the queued create; otherwise
// the remote update is best-effort.
func (e *Engine) ToggleChecklistItem(ctx context.Context, id string, isCompleted bool) {
	var item model.ChecklistItem

	e.mu.Lock()
	for i := range e.snap.Checklist {
		if e.snap.Checklist[i].ID == id {
			e.snap.Checklist[i].IsCompleted = isCompleted
			if isCompleted {
				now := e.now()
				e.snap.Checklist[i].CompletedAt = &now
			} else {
				e.snap.Checklist[i].CompletedAt = nil
			}
			item = e.snap.Checklist[i]
			break
		}
	}
	e.scheduleSave()

	if model.IsTempID(id) {
		e.mu.Unlock()
		_, _ = e.queue.Mutate(ctx,
			func(m queue.Mutation) bool {
				return m.Kind == queue.KindCreateChecklistItem && m.TempID == id
			},
			func(m *queue.Mutation) {
				m.ChecklistItem.IsCompleted = item.IsCompleted
				m.ChecklistItem.CompletedAt = item.CompletedAt
			},
			false,
		)
		return
	}
	e.mu.Unlock()

	updated, err := e.remote.UpdateChecklistItem(ctx, id, item)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		return
	}
	e.markOnline(true)
	for i := range e.snap.Checklist {
		if e.snap.Checklist[i].ID == id {
			e.snap.Checklist[i] = updated
			break
		}
	}
	e.scheduleSave()
}

// DeleteChecklistItem removes a checklist entry optimistically;
// best-effort remote.
func (e *Engine) DeleteChecklistItem(ctx context.Context, id string) {
	e.mu.Lock()
	for i := range e.snap.Checklist {
		if e.snap.Checklist[i].ID == id {
			e.snap.Checklist = append(e.snap.Checklist[:i], e.snap.Checklist[i+1:]...)
			break
		}
	}
	e.scheduleSave()
	if model.IsTempID(id) {
		e.mu.Unlock()
		e.cancelQueuedCreate(ctx, id)
		return
	}
	e.mu.Unlock()

	err := e.remote.DeleteChecklistItem(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.markOnline(err == nil)
}
