package engine

import (
	"context"

	"github.com/zenfocus/zenfocus/internal/model"
)

// Remote is the REST collaborator consumed by the engine: one call per
// mutation kind, plus the fetch and metric endpoints. Create and update
// calls return the authoritative entity; deletes return nothing. The
// api.Client implements it; tests substitute a scripted fake.
type Remote interface {
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id string, u model.TaskUpdates) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	CreateLog(ctx context.Context, l model.LogEntry) (model.LogEntry, error)

	CreateDump(ctx context.Context, d model.Dump) (model.Dump, error)
	DeleteDump(ctx context.Context, id string) error

	CreateIdea(ctx context.Context, i model.Idea) (model.Idea, error)
	DeleteIdea(ctx context.Context, id string) error

	CreateChecklistItem(ctx context.Context, item model.ChecklistItem) (model.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, id string, item model.ChecklistItem) (model.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, id string) error

	UpdateProfile(ctx context.Context, u model.ProfileUpdates) (model.Profile, error)
	UpdateSettings(ctx context.Context, s model.Settings) (model.Profile, error)

	FetchState(ctx context.Context) (*model.RemoteState, error)
	FetchStats(ctx context.Context) (model.Stats, error)
	RecordHydration(ctx context.Context) (model.Stats, error)
	RecordPomodoro(ctx context.Context) (model.Stats, error)
	UpdateHydrationTarget(ctx context.Context, target int) error

	CreateAchievement(ctx context.Context, a model.Achievement) (model.Achievement, error)
	DeleteAchievement(ctx context.Context, id string) error
}
