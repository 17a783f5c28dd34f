package model

// Profile is the single user profile record.
type Profile struct {
	Name      string   `json:"name"`
	Bio       string   `json:"bio,omitempty"`
	Avatar    string   `json:"avatar,omitempty"`
	Theme     string   `json:"theme,omitempty"`
	DailyGoal int      `json:"daily_goal"`
	Settings  Settings `json:"settings"`
}

// ProfileUpdates is a partial update to the profile. Nil fields are
// left untouched.
type ProfileUpdates struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Theme     *string `json:"theme,omitempty"`
	DailyGoal *int    `json:"daily_goal,omitempty"`
}

// Apply merges the non-nil fields of u into p.
func (u ProfileUpdates) Apply(p *Profile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.DailyGoal != nil {
		p.DailyGoal = *u.DailyGoal
	}
}

// TimerDurations holds the pomodoro timer lengths in minutes.
type TimerDurations struct {
	Work       int `json:"work"`
	ShortBreak int `json:"short_break"`
	LongBreak  int `json:"long_break"`
}

// Settings holds user preferences stored inside the profile record.
type Settings struct {
	TimerDurations       TimerDurations `json:"timer_durations"`
	NotificationsEnabled bool           `json:"notifications_enabled"`
	SoundEnabled         bool           `json:"sound_enabled"`
	AutoStartBreaks      bool           `json:"auto_start_breaks"`
}

// DefaultProfile returns the profile used until the server or the user
// provides one.
func DefaultProfile() Profile {
	return Profile{
		Name:      "Zen Master",
		DailyGoal: 8,
		Settings: Settings{
			TimerDurations: TimerDurations{Work: 25, ShortBreak: 5, LongBreak: 15},
		},
	}
}
