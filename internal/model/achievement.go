package model

import "time"

// Achievement type constants select which metric feeds the progress
// value during evaluation.
const (
	AchievementPomodoros      = "pomodoros"       // total completed sessions
	AchievementHydrationDays  = "hydration_days"  // days the hydration goal was met
	AchievementTasksCompleted = "tasks_completed" // tasks moved to done
	AchievementHoursLogged    = "hours_logged"    // whole hours of logged time
	AchievementNotes          = "notes"           // brain-dump notes captured
)

// Achievement tracks progress toward a fixed or user-defined goal.
// Progress fields are written only by the evaluator; IsUnlocked is
// monotonic and UnlockedAt is set exactly once.
type Achievement struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`

	TargetValue  int `json:"target_value"`
	CurrentValue int `json:"current_value"`

	IsUnlocked bool       `json:"is_unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`

	// IsCustom marks achievements created by the user, which may be
	// deleted; built-in entries may not.
	IsCustom bool `json:"is_custom"`
}
