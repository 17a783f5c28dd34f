package engine

import (
	"context"

	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
)

// AddTask applies the new task to the snapshot immediately under a
// temporary identifier, then attempts the remote create. On success the
// server identity replaces the temporary one everywhere; on failure the
// intent is queued and the optimistic entry stands. The returned task
// reflects whichever outcome occurred.
func (e *Engine) AddTask(ctx context.Context, t model.Task) model.Task {
	e.mu.Lock()
	if t.ID == "" {
		t.ID = model.NewTempID()
	}
	if t.Status == "" {
		t.Status = model.TaskStatusTodo
	}
	if t.Date == "" {
		t.Date = e.tracker.Today()
	}
	now := e.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	e.snap.Tasks = append(e.snap.Tasks, t)
	e.scheduleSave()
	e.mu.Unlock()

	created, err := e.remote.CreateTask(ctx, t)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:   queue.KindCreateTask,
			TempID: t.ID,
			Task:   &t,
		})
		return t
	}
	e.markOnline(true)
	e.reconcileTaskLocked(ctx, t.ID, created)
	return created
}

// UpdateTask merges a partial update into the snapshot immediately and
// dispatches it remotely. An update targeting a still-temporary
// identifier is folded into the queued create instead of being sent:
// the server cannot resolve an identifier it never assigned.
func (e *Engine) UpdateTask(ctx context.Context, id string, u model.TaskUpdates) {
	e.mu.Lock()
	for i := range e.snap.Tasks {
		if e.snap.Tasks[i].ID == id {
			u.Apply(&e.snap.Tasks[i])
			e.snap.Tasks[i].UpdatedAt = e.now()
			break
		}
	}
	e.scheduleSave()

	if model.IsTempID(id) {
		e.mu.Unlock()
		e.foldTaskUpdate(ctx, id, u)
		return
	}
	e.mu.Unlock()

	updated, err := e.remote.UpdateTask(ctx, id, u)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:       queue.KindUpdateTask,
			TaskUpdate: &queue.UpdateTaskPayload{ID: id, Updates: u},
		})
		return
	}
	e.markOnline(true)
	for i := range e.snap.Tasks {
		if e.snap.Tasks[i].ID == id {
			e.snap.Tasks[i] = updated
			break
		}
	}
	e.scheduleSave()
}

// UpdateTaskStatus is the board move: a one-field update.
func (e *Engine) UpdateTaskStatus(ctx context.Context, id, status string) {
	e.UpdateTask(ctx, id, model.TaskUpdates{Status: &status})
}

// DeleteTask removes the task from the snapshot immediately. A delete
// targeting a still-temporary identifier cancels the queued create
// outright; otherwise the remote delete is attempted and queued on
// failure.
func (e *Engine) DeleteTask(ctx context.Context, id string) {
	e.mu.Lock()
	for i := range e.snap.Tasks {
		if e.snap.Tasks[i].ID == id {
			e.snap.Tasks = append(e.snap.Tasks[:i], e.snap.Tasks[i+1:]...)
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

	err := e.remote.DeleteTask(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.markOnline(false)
		_ = e.queue.Enqueue(ctx, queue.Mutation{
			Kind:       queue.KindDeleteTask,
			TaskDelete: &queue.DeleteTaskPayload{ID: id},
		})
		return
	}
	e.markOnline(true)
}

// foldTaskUpdate merges an update for an unreconciled create into the
// queued create's payload. When no queued create exists (the create is
// still in flight or already reconciling), the optimistic snapshot
// change stands and the next authoritative refetch settles it.
func (e *Engine) foldTaskUpdate(ctx context.Context, tempID string, u model.TaskUpdates) {
	_, _ = e.queue.Mutate(ctx,
		func(m queue.Mutation) bool {
			return m.Kind == queue.KindCreateTask && m.TempID == tempID
		},
		func(m *queue.Mutation) {
			u.Apply(m.Task)
		},
		false,
	)
}

// cancelQueuedCreate drops the queued create for a temp id deleted
// before reconciliation; the server never needs to hear about the
// entity at all.
func (e *Engine) cancelQueuedCreate(ctx context.Context, tempID string) {
	_, _ = e.queue.Mutate(ctx,
		func(m queue.Mutation) bool { return m.TempID == tempID },
		nil,
		true,
	)
}
