package queue

import (
	"fmt"
	"time"

	"github.com/zenfocus/zenfocus/internal/model"
)

// Kind identifies the remote operation a queued mutation replays.
type Kind string

const (
	KindCreateTask          Kind = "create_task"
	KindUpdateTask          Kind = "update_task"
	KindDeleteTask          Kind = "delete_task"
	KindCreateLog           Kind = "create_log"
	KindCreateDump          Kind = "create_dump"
	KindCreateIdea          Kind = "create_idea"
	KindCreateChecklistItem Kind = "create_checklist_item"
	KindUpdateProfile       Kind = "update_profile"
	KindUpdateSettings      Kind = "update_settings"
)

// UpdateTaskPayload carries a partial task update for replay.
type UpdateTaskPayload struct {
	ID      string            `json:"id"`
	Updates model.TaskUpdates `json:"updates"`
}

// DeleteTaskPayload carries the target of a queued delete.
type DeleteTaskPayload struct {
	ID string `json:"id"`
}

// Mutation is one replayable remote operation that failed when first
// attempted. Exactly one payload field is set, selected by Kind. The
// payload records the original user intent, not the optimistic snapshot
// delta, so it can be replayed against a fresh server state.
type Mutation struct {
	Kind       Kind      `json:"kind"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	// Attempts counts failed replay passes. At the configured cap the
	// mutation is abandoned instead of retried forever.
	Attempts int `json:"attempts"`

	// TempID is the temporary identifier assigned to a queued create,
	// used to reconcile the server id after a successful replay and to
	// fold later updates/deletes into the pending create.
	TempID string `json:"temp_id,omitempty"`

	Task          *model.Task           `json:"task,omitempty"`
	TaskUpdate    *UpdateTaskPayload    `json:"task_update,omitempty"`
	TaskDelete    *DeleteTaskPayload    `json:"task_delete,omitempty"`
	Log           *model.LogEntry       `json:"log,omitempty"`
	Dump          *model.Dump           `json:"dump,omitempty"`
	Idea          *model.Idea           `json:"idea,omitempty"`
	ChecklistItem *model.ChecklistItem  `json:"checklist_item,omitempty"`
	Profile       *model.ProfileUpdates `json:"profile,omitempty"`
	Settings      *model.Settings       `json:"settings,omitempty"`
}

// Validate checks that the mutation's payload matches its kind. Every
// kind is matched explicitly so adding one without a payload shape and
// a drain handler fails fast.
func (m Mutation) Validate() error {
	switch m.Kind {
	case KindCreateTask:
		if m.Task == nil {
			return fmt.Errorf("mutation %s: missing task payload", m.Kind)
		}
	case KindUpdateTask:
		if m.TaskUpdate == nil || m.TaskUpdate.ID == "" {
			return fmt.Errorf("mutation %s: missing task update payload", m.Kind)
		}
	case KindDeleteTask:
		if m.TaskDelete == nil || m.TaskDelete.ID == "" {
			return fmt.Errorf("mutation %s: missing task delete payload", m.Kind)
		}
	case KindCreateLog:
		if m.Log == nil {
			return fmt.Errorf("mutation %s: missing log payload", m.Kind)
		}
	case KindCreateDump:
		if m.Dump == nil {
			return fmt.Errorf("mutation %s: missing dump payload", m.Kind)
		}
	case KindCreateIdea:
		if m.Idea == nil {
			return fmt.Errorf("mutation %s: missing idea payload", m.Kind)
		}
	case KindCreateChecklistItem:
		if m.ChecklistItem == nil {
			return fmt.Errorf("mutation %s: missing checklist payload", m.Kind)
		}
	case KindUpdateProfile:
		if m.Profile == nil {
			return fmt.Errorf("mutation %s: missing profile payload", m.Kind)
		}
	case KindUpdateSettings:
		if m.Settings == nil {
			return fmt.Errorf("mutation %s: missing settings payload", m.Kind)
		}
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
	return nil
}
