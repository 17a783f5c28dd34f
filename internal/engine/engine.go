// Package engine owns the client-side snapshot and applies every user
// action optimistically: state changes locally first, the remote call
// follows, and failures queue the intent for replay instead of rolling
// the change back.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zenfocus/zenfocus/internal/achievements"
	"github.com/zenfocus/zenfocus/internal/metrics"
	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
	"github.com/zenfocus/zenfocus/internal/store"
)

// Status is the connectivity state surfaced to the UI layer. Actions
// never block on it; it only drives the background indicator.
type Status int

const (
	// StatusOffline means the last remote call failed; intents queue.
	StatusOffline Status = iota
	// StatusSyncing means a queue drain is in progress.
	StatusSyncing
	// StatusSynced means the last remote call succeeded and nothing is
	// queued.
	StatusSynced
)

// Options configures a new Engine.
type Options struct {
	Store  *store.SQLiteStore
	Remote Remote

	// SaveDebounce is the snapshot write coalescing window (~1s).
	SaveDebounce time.Duration

	// ReplayMaxAttempts caps retries per queued mutation; zero retries
	// forever.
	ReplayMaxAttempts int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine is the optimistic execution engine. It is constructed once at
// startup and passed by reference to whatever needs it; tests build a
// fresh instance each. All snapshot mutations — optimistic applies,
// reconciliation callbacks, rollover — run under one mutex so an
// in-flight call's outcome always lands on the current snapshot, never
// a stale copy.
type Engine struct {
	mu      sync.Mutex
	snap    *model.Snapshot
	queue   *queue.Queue
	remote  Remote
	store   *store.SQLiteStore
	saver   *store.SnapshotSaver
	tracker *metrics.Tracker
	eval    *achievements.Evaluator
	now     func() time.Time

	maxAttempts int
	online      bool
	syncing     bool
}

// New creates an Engine. Call Init before use.
func New(opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		remote:      opts.Remote,
		store:       opts.Store,
		saver:       store.NewSnapshotSaver(opts.Store, opts.SaveDebounce),
		tracker:     metrics.NewTrackerAt(now),
		eval:        achievements.NewEvaluatorAt(now),
		now:         now,
		maxAttempts: opts.ReplayMaxAttempts,
	}
}

// Init loads the persisted snapshot and mutation queue, applies the
// day-boundary rollover, and recomputes today's counters. The UI can
// render from the snapshot as soon as Init returns, before any network
// call completes. Only storage-level failures are returned; missing or
// corrupt local data degrades to a fresh snapshot.
func (e *Engine) Init(ctx context.Context) error {
	snap, err := e.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	pending, err := e.store.LoadQueue(ctx)
	if err != nil {
		return fmt.Errorf("loading mutation queue: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.snap = snap
	e.queue = queue.New(e.store.SaveQueue, pending, e.maxAttempts)

	if e.tracker.RolloverIfNeeded(e.snap) {
		e.saver.Schedule(e.snap)
	} else {
		e.tracker.SyncStats(&e.snap.Stats)
	}

	return nil
}

// Dispose flushes any pending snapshot write and releases the saver.
// The store itself is owned by the caller.
func (e *Engine) Dispose(ctx context.Context) error {
	return e.saver.Close(ctx)
}

// Snapshot returns a copy of the current state for rendering.
func (e *Engine) Snapshot() *model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Clone()
}

// QueueLen returns the number of mutations awaiting replay.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Status reports the connectivity state for the background indicator.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.syncing:
		return StatusSyncing
	case !e.online:
		return StatusOffline
	case e.queue.Len() > 0:
		return StatusSyncing
	default:
		return StatusSynced
	}
}

// Online reports whether the last remote call succeeded.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// markOnline records a remote outcome. Callers hold e.mu.
func (e *Engine) markOnline(ok bool) {
	e.online = ok
}

// scheduleSave queues a debounced snapshot write. Callers hold e.mu.
func (e *Engine) scheduleSave() {
	e.saver.Schedule(e.snap)
}

// Rollover re-checks the day boundary. The UI calls this on foreground
// load; the poller calls it on its interval so a session left open
// overnight resets its daily counters.
func (e *Engine) Rollover() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	crossed := e.tracker.RolloverIfNeeded(e.snap)
	if crossed {
		e.scheduleSave()
	}
	return crossed
}

// CheckAchievements recomputes achievement progress from the current
// metrics and returns entries that changed, newly unlocked ones
// included. A second run with no intervening metric change returns an
// empty list.
func (e *Engine) CheckAchievements() []model.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := e.eval.Evaluate(e.snap)
	if len(changed) > 0 {
		e.scheduleSave()
	}
	return changed
}
