package model

import "time"

// LogEntry records one block of focused time against a task name.
type LogEntry struct {
	ID string `json:"id"`

	// TaskName is the free-text label the time was logged against.
	TaskName string `json:"task_name"`

	// Start and End are clock strings ("09:30", "10:15").
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	// Duration is the logged length in minutes.
	Duration int `json:"duration"`

	Date time.Time `json:"date"`
}

// Dump is a quick brain-dump note.
type Dump struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Idea is an entry in the idea vault.
type Idea struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// ChecklistItem is a lightweight daily checklist entry.
type ChecklistItem struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
