package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/zenfocus/zenfocus/internal/model"
)

// SnapshotSaver debounces snapshot writes: bursts of changes within the
// debounce window coalesce into one write, and at most one write is in
// flight at a time. A change arriving mid-write is captured by the next
// scheduled write, never lost. Writes are fire-and-forget; the last
// write error is retained for inspection.
type SnapshotSaver struct {
	store    *SQLiteStore
	interval time.Duration

	mu      sync.Mutex
	pending []byte
	timer   *time.Timer
	writing bool
	rearm   bool
	lastErr error
	closed  bool
}

// NewSnapshotSaver creates a saver writing through the given store.
func NewSnapshotSaver(store *SQLiteStore, interval time.Duration) *SnapshotSaver {
	if interval <= 0 {
		interval = time.Second
	}
	return &SnapshotSaver{store: store, interval: interval}
}

// Schedule records the snapshot for the next debounced write. The
// snapshot is serialized immediately, so the caller may keep mutating
// it after Schedule returns.
func (v *SnapshotSaver) Schedule(snap *model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		v.mu.Lock()
		v.lastErr = fmt.Errorf("marshaling snapshot: %w", err)
		v.mu.Unlock()
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.pending = data
	if v.timer == nil && !v.writing {
		v.timer = time.AfterFunc(v.interval, v.write)
	}
	if v.writing {
		// Captured by the trailing write scheduled after the current
		// one finishes.
		v.rearm = true
	}
}

// write is the timer callback performing one debounced write.
func (v *SnapshotSaver) write() {
	v.mu.Lock()
	if v.writing {
		v.rearm = true
		v.mu.Unlock()
		return
	}
	data := v.pending
	v.pending = nil
	v.timer = nil
	v.writing = true
	v.mu.Unlock()

	var err error
	if data != nil {
		err = v.store.setBlob(context.Background(), snapshotKey, data)
	}

	v.mu.Lock()
	v.writing = false
	if err != nil {
		v.lastErr = err
	}
	if (v.rearm || v.pending != nil) && !v.closed {
		v.rearm = false
		if v.timer == nil {
			v.timer = time.AfterFunc(v.interval, v.write)
		}
	}
	v.mu.Unlock()
}

// Flush writes any pending snapshot immediately and stops the armed
// timer. Used at shutdown and in tests.
func (v *SnapshotSaver) Flush(ctx context.Context) error {
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	data := v.pending
	v.pending = nil
	v.rearm = false
	v.mu.Unlock()

	if data == nil {
		return v.LastError()
	}
	if err := v.store.setBlob(ctx, snapshotKey, data); err != nil {
		return err
	}
	return nil
}

// Close flushes pending state and prevents further scheduling.
func (v *SnapshotSaver) Close(ctx context.Context) error {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	return v.Flush(ctx)
}

// LastError returns the most recent background write failure, if any.
func (v *SnapshotSaver) LastError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}
