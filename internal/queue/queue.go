package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Handlers maps each mutation kind to the remote call that replays it.
// Every field must be set before Drain is called.
type Handlers struct {
	CreateTask          func(ctx context.Context, m Mutation) error
	UpdateTask          func(ctx context.Context, m Mutation) error
	DeleteTask          func(ctx context.Context, m Mutation) error
	CreateLog           func(ctx context.Context, m Mutation) error
	CreateDump          func(ctx context.Context, m Mutation) error
	CreateIdea          func(ctx context.Context, m Mutation) error
	CreateChecklistItem func(ctx context.Context, m Mutation) error
	UpdateProfile       func(ctx context.Context, m Mutation) error
	UpdateSettings      func(ctx context.Context, m Mutation) error
}

// dispatch invokes the handler matching the mutation's kind.
func (h Handlers) dispatch(ctx context.Context, m Mutation) error {
	switch m.Kind {
	case KindCreateTask:
		return h.CreateTask(ctx, m)
	case KindUpdateTask:
		return h.UpdateTask(ctx, m)
	case KindDeleteTask:
		return h.DeleteTask(ctx, m)
	case KindCreateLog:
		return h.CreateLog(ctx, m)
	case KindCreateDump:
		return h.CreateDump(ctx, m)
	case KindCreateIdea:
		return h.CreateIdea(ctx, m)
	case KindCreateChecklistItem:
		return h.CreateChecklistItem(ctx, m)
	case KindUpdateProfile:
		return h.UpdateProfile(ctx, m)
	case KindUpdateSettings:
		return h.UpdateSettings(ctx, m)
	default:
		return fmt.Errorf("no handler for mutation kind %q", m.Kind)
	}
}

// PersistFunc writes the full queue contents to durable storage. It is
// called on every enqueue and after every drain outcome so a crash
// never replays an already-applied mutation.
type PersistFunc func(ctx context.Context, mutations []Mutation) error

// DrainResult summarizes one drain pass.
type DrainResult struct {
	// Applied is the number of mutations replayed successfully.
	Applied int

	// Retained is the number of mutations that failed and stay queued.
	Retained int

	// Abandoned holds mutations dropped after exhausting the retry cap.
	// They are surfaced to the caller as terminal failures rather than
	// retried forever.
	Abandoned []Mutation
}

// Queue is the ordered, persisted log of mutations awaiting replay.
// Enqueue order is replay order; failed entries keep their relative
// position across drain passes.
type Queue struct {
	mu          sync.Mutex
	items       []Mutation
	persist     PersistFunc
	maxAttempts int
	draining    bool
}

// New creates a queue seeded with previously persisted mutations.
// maxAttempts caps replay retries per mutation; zero means unlimited.
func New(persist PersistFunc, initial []Mutation, maxAttempts int) *Queue {
	items := make([]Mutation, len(initial))
	copy(items, initial)
	return &Queue{
		items:       items,
		persist:     persist,
		maxAttempts: maxAttempts,
	}
}

// Len returns the number of queued mutations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the queued mutations in replay order.
func (q *Queue) Items() []Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Mutation, len(q.items))
	copy(out, q.items)
	return out
}

// Enqueue validates, appends, and immediately persists a mutation. The
// queue must survive a full process restart, so persistence is not
// deferred.
func (q *Queue) Enqueue(ctx context.Context, m Mutation) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.EnqueuedAt.IsZero() {
		m.EnqueuedAt = time.Now()
	}

	q.mu.Lock()
	q.items = append(q.items, m)
	snapshot := make([]Mutation, len(q.items))
	copy(snapshot, q.items)
	q.mu.Unlock()

	if err := q.persist(ctx, snapshot); err != nil {
		return fmt.Errorf("persisting queue after enqueue: %w", err)
	}
	return nil
}

// Mutate applies fn to the queued mutation selected by match, in place,
// and re-persists. remove drops the entry instead. It is used to fold
// updates and deletes targeting a still-temporary identifier into the
// pending create. Returns whether a matching entry was found.
func (q *Queue) Mutate(ctx context.Context, match func(Mutation) bool, fn func(*Mutation), remove bool) (bool, error) {
	q.mu.Lock()
	found := false
	for i := range q.items {
		if !match(q.items[i]) {
			continue
		}
		found = true
		if remove {
			q.items = append(q.items[:i], q.items[i+1:]...)
		} else {
			fn(&q.items[i])
		}
		break
	}
	if !found {
		q.mu.Unlock()
		return false, nil
	}
	snapshot := make([]Mutation, len(q.items))
	copy(snapshot, q.items)
	q.mu.Unlock()

	if err := q.persist(ctx, snapshot); err != nil {
		return true, fmt.Errorf("persisting queue after fold: %w", err)
	}
	return true, nil
}

// RewriteID replaces every reference to a temporary identifier with the
// server-assigned one, so mutations queued behind a reconciled create
// replay with an identifier the server can resolve.
func (q *Queue) RewriteID(ctx context.Context, tempID, serverID string) error {
	q.mu.Lock()
	touched := false
	for i := range q.items {
		m := &q.items[i]
		if m.TempID == tempID {
			m.TempID = serverID
			touched = true
		}
		if m.TaskUpdate != nil && m.TaskUpdate.ID == tempID {
			m.TaskUpdate.ID = serverID
			touched = true
		}
		if m.TaskDelete != nil && m.TaskDelete.ID == tempID {
			m.TaskDelete.ID = serverID
			touched = true
		}
	}
	if !touched {
		q.mu.Unlock()
		return nil
	}
	snapshot := make([]Mutation, len(q.items))
	copy(snapshot, q.items)
	q.mu.Unlock()

	if err := q.persist(ctx, snapshot); err != nil {
		return fmt.Errorf("persisting queue after id rewrite: %w", err)
	}
	return nil
}

// Drain replays queued mutations sequentially, in enqueue order.
// Successful entries are removed and the queue is re-persisted before
// the next entry is attempted. Failed entries are retained in place
// (never reordered relative to one another) unless their retry cap is
// exhausted, in which case they are abandoned and reported. The lock
// is released around each handler call so user actions are never
// blocked behind a slow replay.
func (q *Queue) Drain(ctx context.Context, h Handlers) (DrainResult, error) {
	var res DrainResult

	q.mu.Lock()
	if q.draining || len(q.items) == 0 {
		q.mu.Unlock()
		return res, nil
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	// retained counts this pass's failures kept at the head; the next
	// candidate is always items[retained].
	retained := 0
	for {
		q.mu.Lock()
		if retained >= len(q.items) {
			q.mu.Unlock()
			break
		}
		m := q.items[retained]
		q.mu.Unlock()

		err := h.dispatch(ctx, m)

		q.mu.Lock()
		if err == nil {
			q.items = append(q.items[:retained], q.items[retained+1:]...)
			res.Applied++
		} else {
			q.items[retained].Attempts++
			if q.maxAttempts > 0 && q.items[retained].Attempts >= q.maxAttempts {
				res.Abandoned = append(res.Abandoned, q.items[retained])
				q.items = append(q.items[:retained], q.items[retained+1:]...)
			} else {
				retained++
			}
		}
		snapshot := make([]Mutation, len(q.items))
		copy(snapshot, q.items)
		q.mu.Unlock()

		if perr := q.persist(ctx, snapshot); perr != nil {
			res.Retained = retained
			return res, fmt.Errorf("persisting queue during drain: %w", perr)
		}
	}

	res.Retained = retained
	return res, nil
}
