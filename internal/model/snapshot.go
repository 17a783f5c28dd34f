package model

// Snapshot is the full client-side copy of the user's domain state. It
// is owned by the execution engine, persisted as one blob, and loaded
// whole at startup before any network call completes.
type Snapshot struct {
	Tasks        []Task          `json:"tasks"`
	Logs         []LogEntry      `json:"logs"`
	Dumps        []Dump          `json:"dumps"`
	Ideas        []Idea          `json:"ideas"`
	Checklist    []ChecklistItem `json:"checklist"`
	Stats        Stats           `json:"stats"`
	Achievements []Achievement   `json:"achievements"`
	Profile      Profile         `json:"profile"`

	// LastSeenDate is the day-boundary marker (YYYY-MM-DD): when a load
	// observes a different calendar day, the denormalized daily counters
	// are reset without touching history.
	LastSeenDate string `json:"last_seen_date,omitempty"`
}

// RemoteState is the authoritative server state fetched on refresh. A
// successful fetch overwrites the corresponding snapshot fields.
type RemoteState struct {
	Tasks        []Task          `json:"tasks"`
	Logs         []LogEntry      `json:"logs"`
	Dumps        []Dump          `json:"dumps"`
	Ideas        []Idea          `json:"ideas"`
	Checklist    []ChecklistItem `json:"checklist"`
	Stats        Stats           `json:"stats"`
	Achievements []Achievement   `json:"achievements"`
	Profile      Profile         `json:"profile"`
}

// NewSnapshot returns an empty snapshot with defaults applied. Both
// first run and local-storage corruption degrade to this state.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Stats:   DefaultStats(),
		Profile: DefaultProfile(),
	}
}

// Clone returns a copy of the snapshot safe to hand to readers while
// the original keeps being mutated. Collections and bucket lists are
// copied; entities themselves are value types.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Tasks = append([]Task(nil), s.Tasks...)
	out.Logs = append([]LogEntry(nil), s.Logs...)
	out.Dumps = append([]Dump(nil), s.Dumps...)
	out.Ideas = append([]Idea(nil), s.Ideas...)
	out.Checklist = append([]ChecklistItem(nil), s.Checklist...)
	out.Achievements = append([]Achievement(nil), s.Achievements...)
	out.Stats.HydrationHistory = append([]Bucket(nil), s.Stats.HydrationHistory...)
	out.Stats.PomodoroHistory = append([]Bucket(nil), s.Stats.PomodoroHistory...)
	return &out
}
