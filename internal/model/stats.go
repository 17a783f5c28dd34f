package model

// Bucket is a per-day counter for a tracked metric.
type Bucket struct {
	// Date is the calendar day in YYYY-MM-DD form.
	Date string `json:"date"`

	// Count is the number of increments recorded on that day.
	Count int `json:"count"`
}

// Stats holds the hydration and pomodoro metrics. The count fields are
// denormalized views of today's history bucket; the history lists are
// the source of truth across day boundaries.
type Stats struct {
	// HydrationCount is today's glass count.
	HydrationCount int `json:"hydration_count"`

	// HydrationTarget is the per-day hydration goal.
	HydrationTarget int `json:"hydration_target"`

	// HydrationHistory is the ordered list of per-day hydration buckets.
	HydrationHistory []Bucket `json:"hydration_history"`

	// Pomodoros is today's completed session count.
	Pomodoros int `json:"pomodoros"`

	// PomodoroHistory is the ordered list of per-day pomodoro buckets.
	PomodoroHistory []Bucket `json:"pomodoro_history"`
}

// DefaultHydrationTarget is the per-day hydration goal used until the
// user configures one.
const DefaultHydrationTarget = 8

// DefaultStats returns a zeroed Stats with the default hydration target.
func DefaultStats() Stats {
	return Stats{HydrationTarget: DefaultHydrationTarget}
}
