package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zenfocus/zenfocus/internal/model"
)

// CreateTask posts a new task and returns the authoritative entity with
// its server-assigned identifier.
func (c *Client) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	// The server assigns identity; never send a temporary id.
	t.ID = ""
	var out model.Task
	if err := c.post(ctx, "/tasks", t, &out); err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return out, nil
}

// UpdateTask applies a partial update and returns the updated entity.
func (c *Client) UpdateTask(ctx context.Context, id string, u model.TaskUpdates) (model.Task, error) {
	var out model.Task
	if err := c.put(ctx, "/tasks/"+id, u, &out); err != nil {
		return model.Task{}, fmt.Errorf("updating task %s: %w", id, err)
	}
	return out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.del(ctx, "/tasks/"+id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// CreateLog posts a new time log entry.
func (c *Client) CreateLog(ctx context.Context, l model.LogEntry) (model.LogEntry, error) {
	l.ID = ""
	var out model.LogEntry
	if err := c.post(ctx, "/logs", l, &out); err != nil {
		return model.LogEntry{}, fmt.Errorf("creating log: %w", err)
	}
	return out, nil
}

// CreateDump posts a new brain-dump note.
func (c *Client) CreateDump(ctx context.Context, d model.Dump) (model.Dump, error) {
	d.ID = ""
	var out model.Dump
	if err := c.post(ctx, "/dumps", d, &out); err != nil {
		return model.Dump{}, fmt.Errorf("creating dump: %w", err)
	}
	return out, nil
}

// DeleteDump removes a brain-dump note.
func (c *Client) DeleteDump(ctx context.Context, id string) error {
	if err := c.del(ctx, "/dumps/"+id); err != nil {
		return fmt.Errorf("deleting dump %s: %w", id, err)
	}
	return nil
}

// CreateIdea posts a new idea-vault entry.
func (c *Client) CreateIdea(ctx context.Context, i model.Idea) (model.Idea, error) {
	i.ID = ""
	var out model.Idea
	if err := c.post(ctx, "/ideas", i, &out); err != nil {
		return model.Idea{}, fmt.Errorf("creating idea: %w", err)
	}
	return out, nil
}

// DeleteIdea removes an idea-vault entry.
func (c *Client) DeleteIdea(ctx context.Context, id string) error {
	if err := c.del(ctx, "/ideas/"+id); err != nil {
		return fmt.Errorf("deleting idea %s: %w", id, err)
	}
	return nil
}

// CreateChecklistItem posts a new checklist entry.
func (c *Client) CreateChecklistItem(ctx context.Context, item model.ChecklistItem) (model.ChecklistItem, error) {
	item.ID = ""
	var out model.ChecklistItem
	if err := c.post(ctx, "/checklist", item, &out); err != nil {
		return model.ChecklistItem{}, fmt.Errorf("creating checklist item: %w", err)
	}
	return out, nil
}

// UpdateChecklistItem toggles or edits a checklist entry.
func (c *Client) UpdateChecklistItem(ctx context.Context, id string, item model.ChecklistItem) (model.ChecklistItem, error) {
	var out model.ChecklistItem
	if err := c.put(ctx, "/checklist/"+id, item, &out); err != nil {
		return model.ChecklistItem{}, fmt.Errorf("updating checklist item %s: %w", id, err)
	}
	return out, nil
}

// DeleteChecklistItem removes a checklist entry.
func (c *Client) DeleteChecklistItem(ctx context.Context, id string) error {
	if err := c.del(ctx, "/checklist/"+id); err != nil {
		return fmt.Errorf("deleting checklist item %s: %w", id, err)
	}
	return nil
}

// UpdateProfile applies a partial profile update and returns the stored
// profile.
func (c *Client) UpdateProfile(ctx context.Context, u model.ProfileUpdates) (model.Profile, error) {
	var out model.Profile
	if err := c.put(ctx, "/profile", u, &out); err != nil {
		return model.Profile{}, fmt.Errorf("updating profile: %w", err)
	}
	return out, nil
}

// UpdateSettings replaces the settings embedded in the profile record.
func (c *Client) UpdateSettings(ctx context.Context, s model.Settings) (model.Profile, error) {
	body := struct {
		Settings model.Settings `json:"settings"`
	}{Settings: s}
	var out model.Profile
	if err := c.put(ctx, "/profile", body, &out); err != nil {
		return model.Profile{}, fmt.Errorf("updating settings: %w", err)
	}
	return out, nil
}

// FetchStats retrieves the metric record. It doubles as the
// connectivity probe: a transport failure here means offline.
func (c *Client) FetchStats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	if err := c.get(ctx, "/stats", &out); err != nil {
		return model.Stats{}, fmt.Errorf("fetching stats: %w", err)
	}
	return out, nil
}

// RecordHydration registers one glass of water server-side and returns
// the updated metric record.
func (c *Client) RecordHydration(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	if err := c.post(ctx, "/stats/water", nil, &out); err != nil {
		return model.Stats{}, fmt.Errorf("recording hydration: %w", err)
	}
	return out, nil
}

// RecordPomodoro registers one completed focus session server-side and
// returns the updated metric record.
func (c *Client) RecordPomodoro(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	if err := c.post(ctx, "/stats/pomodoro", nil, &out); err != nil {
		return model.Stats{}, fmt.Errorf("recording pomodoro: %w", err)
	}
	return out, nil
}

// UpdateHydrationTarget sets the per-day hydration goal.
func (c *Client) UpdateHydrationTarget(ctx context.Context, target int) error {
	body := struct {
		Target int `json:"target"`
	}{Target: target}
	if err := c.put(ctx, "/stats/hydration-target", body, nil); err != nil {
		return fmt.Errorf("updating hydration target: %w", err)
	}
	return nil
}

// CreateAchievement posts a custom achievement definition.
func (c *Client) CreateAchievement(ctx context.Context, a model.Achievement) (model.Achievement, error) {
	a.ID = ""
	var out model.Achievement
	if err := c.post(ctx, "/achievements", a, &out); err != nil {
		return model.Achievement{}, fmt.Errorf("creating achievement: %w", err)
	}
	return out, nil
}

// DeleteAchievement removes a custom achievement.
func (c *Client) DeleteAchievement(ctx context.Context, id string) error {
	if err := c.del(ctx, "/achievements/"+id); err != nil {
		return fmt.Errorf("deleting achievement %s: %w", id, err)
	}
	return nil
}

// FetchState retrieves the full authoritative state in one pass. The
// collection endpoints are independent, so a failure on any of them
// fails the whole refresh and leaves the local snapshot authoritative.
func (c *Client) FetchState(ctx context.Context) (*model.RemoteState, error) {
	state := &model.RemoteState{}

	if err := c.get(ctx, "/tasks", &state.Tasks); err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	if err := c.get(ctx, "/logs", &state.Logs); err != nil {
		return nil, fmt.Errorf("fetching logs: %w", err)
	}
	if err := c.get(ctx, "/dumps", &state.Dumps); err != nil {
		return nil, fmt.Errorf("fetching dumps: %w", err)
	}
	if err := c.get(ctx, "/ideas", &state.Ideas); err != nil {
		return nil, fmt.Errorf("fetching ideas: %w", err)
	}
	if err := c.get(ctx, "/checklist", &state.Checklist); err != nil {
		return nil, fmt.Errorf("fetching checklist: %w", err)
	}
	if err := c.get(ctx, "/stats", &state.Stats); err != nil {
		return nil, fmt.Errorf("fetching stats: %w", err)
	}
	if err := c.get(ctx, "/profile", &state.Profile); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if err := c.get(ctx, "/achievements", &state.Achievements); err != nil {
		return nil, fmt.Errorf("fetching achievements: %w", err)
	}

	return state, nil
}

// Export retrieves the full account backup as opaque JSON.
func (c *Client) Export(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.get(ctx, "/export", &out); err != nil {
		return nil, fmt.Errorf("exporting data: %w", err)
	}
	return out, nil
}
