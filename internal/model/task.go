package model

import "time"

// Task status constants.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "inprogress"
	TaskStatusDone       = "done"
)

// Task is a planned work item shown on the board and calendar.
type Task struct {
	// ID is the server-assigned identifier, or a temporary identifier
	// (temp_ prefix) for tasks created while offline.
	ID string `json:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Status is one of the TaskStatus* constants.
	Status string `json:"status"`

	// Date is the calendar day the task is scheduled for (YYYY-MM-DD).
	Date string `json:"date,omitempty"`

	// Time is the scheduled start time ("14:00"), if any.
	Time string `json:"time,omitempty"`

	// EndTime is the scheduled end time, if any.
	EndTime string `json:"end_time,omitempty"`

	// Notified reports whether a reminder has already fired for this task.
	Notified bool `json:"notified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdates is a partial update to a task. Nil fields are left
// untouched by the server and by local merging.
type TaskUpdates struct {
	Title    *string `json:"title,omitempty"`
	Status   *string `json:"status,omitempty"`
	Date     *string `json:"date,omitempty"`
	Time     *string `json:"time,omitempty"`
	EndTime  *string `json:"end_time,omitempty"`
	Notified *bool   `json:"notified,omitempty"`
}

// Apply merges the non-nil fields of u into t.
func (u TaskUpdates) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Time != nil {
		t.Time = *u.Time
	}
	if u.EndTime != nil {
		t.EndTime = *u.EndTime
	}
	if u.Notified != nil {
		t.Notified = *u.Notified
	}
}
