package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenfocus/zenfocus/internal/engine"
	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
	"github.com/zenfocus/zenfocus/internal/store"
	"github.com/zenfocus/zenfocus/tests/testutil"
)

type fixture struct {
	engine *engine.Engine
	remote *testutil.FakeRemote
	store  *store.SQLiteStore
	clock  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := testutil.NewTestStore(t)
	remote := testutil.NewFakeRemote()
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	f := &fixture{remote: remote, store: s, clock: &now}

	f.engine = engine.New(engine.Options{
		Store:             s,
		Remote:            remote,
		SaveDebounce:      time.Hour, // tests flush explicitly via Dispose
		ReplayMaxAttempts: 0,
		Now:               func() time.Time { return *f.clock },
	})
	require.NoError(t, f.engine.Init(context.Background()))
	t.Cleanup(func() {
		_ = f.engine.Dispose(context.Background())
	})
	return f
}

func TestAddTaskOnlineAdoptsServerIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.engine.AddTask(ctx, model.Task{Title: "Write report"})

	assert.Equal(t, "srv-1", created.ID)
	assert.Zero(t, f.engine.QueueLen())
	assert.True(t, f.engine.Online())

	snap := f.engine.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "srv-1", snap.Tasks[0].ID)
	assert.Equal(t, model.TaskStatusTodo, snap.Tasks[0].Status, "empty status defaults")
}

func TestAddTaskOfflineKeepsOptimisticEntryAndQueues(t *testing.T) {
	f := newFixture(t)
	f.remote.SetOffline(true)
	ctx := context.Background()

	created := f.engine.AddTask(ctx, model.Task{Title: "Write report"})

	assert.True(t, model.IsTempID(created.ID), "offline create carries a temporary id")
	assert.Equal(t, 1, f.engine.QueueLen())
	assert.False(t, f.engine.Online())

	snap := f.engine.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, created.ID, snap.Tasks[0].ID, "the optimistic entry stands, no rollback")
	assert.Equal(t, engine.StatusOffline, f.engine.Status())
}

func TestOfflineCreateThenEditThenReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.remote.SetOffline(true)
	created := f.engine.AddTask(ctx, model.Task{Title: "Draft"})
	tempID := created.ID

	// Edit while still offline folds into the queued create: one
	// mutation, final title.
	title := "Write report"
	f.engine.UpdateTask(ctx, tempID, model.TaskUpdates{Title: &title})
	assert.Equal(t, 1, f.engine.QueueLen())

	f.remote.SetOffline(false)
	f.remote.Calls = nil
	res, err := f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Zero(t, f.engine.QueueLen())

	snap := f.engine.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "srv-1", snap.Tasks[0].ID, "temp id replaced everywhere")
	assert.Equal(t, "Write report", snap.Tasks[0].Title, "server saw the folded title")
	assert.Equal(t, 1, f.remote.CallCount("CreateTask"), "one create, no separate update")
	assert.Zero(t, f.remote.CallCount("UpdateTask"))
}

func TestOfflineDeleteCancelsQueuedCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.remote.SetOffline(true)
	created := f.engine.AddTask(ctx, model.Task{Title: "Never mind"})
	require.Equal(t, 1, f.engine.QueueLen())

	f.engine.DeleteTask(ctx, created.ID)

	assert.Zero(t, f.engine.QueueLen(), "the server never hears about the entity")
	assert.Empty(t, f.engine.Snapshot().Tasks)
	assert.Zero(t, f.remote.CallCount("DeleteTask"))
}

func TestOfflineUpdateOfKnownTaskQueuesIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.engine.AddTask(ctx, model.Task{Title: "Known"})
	require.Equal(t, "srv-1", created.ID)

	f.remote.SetOffline(true)
	f.engine.UpdateTaskStatus(ctx, "srv-1", model.TaskStatusDone)

	assert.Equal(t, 1, f.engine.QueueLen())
	snap := f.engine.Snapshot()
	assert.Equal(t, model.TaskStatusDone, snap.Tasks[0].Status, "optimistic move applied")

	f.remote.SetOffline(false)
	res, err := f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, f.remote.CallCount("UpdateTask"))
}

func TestReplayPreservesOrderAcrossKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.remote.SetOffline(true)
	f.engine.AddTask(ctx, model.Task{Title: "first"})
	f.engine.AddDump(ctx, model.Dump{Text: "second"})
	f.engine.AddIdea(ctx, model.Idea{Text: "third"})
	require.Equal(t, 3, f.engine.QueueLen())

	f.remote.SetOffline(false)
	f.remote.Calls = nil
	res, err := f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Applied)

	var replayed []string
	for _, call := range f.remote.Calls {
		switch call {
		case "CreateTask", "CreateDump", "CreateIdea":
			replayed = append(replayed, call)
		}
	}
	assert.Equal(t, []string{"CreateTask", "CreateDump", "CreateIdea"}, replayed)
}

func TestReplayRetainsFailedHeadInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.remote.SetOffline(true)
	f.engine.AddTask(ctx, model.Task{Title: "stuck"})
	f.engine.AddDump(ctx, model.Dump{Text: "follows"})

	f.remote.SetOffline(false)
	f.remote.FailKinds["CreateTask"] = true

	res, err := f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied, "later kinds still replay past the failure")
	assert.Equal(t, 1, res.Retained)
	assert.Equal(t, 1, f.engine.QueueLen())
	assert.False(t, f.engine.Online(), "a retained failure keeps us offline")

	// Recovery: the retained create replays on the next pass.
	delete(f.remote.FailKinds, "CreateTask")
	res, err = f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Zero(t, f.engine.QueueLen())
	assert.True(t, f.engine.Online())
}

func TestReplayAbandonsAtRetryCap(t *testing.T) {
	s := testutil.NewTestStore(t)
	remote := testutil.NewFakeRemote()
	e := engine.New(engine.Options{
		Store:             s,
		Remote:            remote,
		SaveDebounce:      time.Hour,
		ReplayMaxAttempts: 2,
	})
	require.NoError(t, e.Init(context.Background()))
	ctx := context.Background()

	remote.SetOffline(true)
	e.AddTask(ctx, model.Task{Title: "rejected forever"})

	remote.SetOffline(false)
	remote.FailKinds["CreateTask"] = true

	res, err := e.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Abandoned)
	assert.Equal(t, 1, e.QueueLen())

	res, err = e.ProcessQueue(ctx)
	require.NoError(t, err)
	require.Len(t, res.Abandoned, 1, "cap reached: surfaced as terminal failure")
	assert.Equal(t, queue.KindCreateTask, res.Abandoned[0].Kind)
	assert.Zero(t, e.QueueLen())
}

func TestQueueSurvivesRestart(t *testing.T) {
	s := testutil.NewTestStore(t)
	remote := testutil.NewFakeRemote()
	ctx := context.Background()

	e1 := engine.New(engine.Options{Store: s, Remote: remote, SaveDebounce: time.Hour})
	require.NoError(t, e1.Init(ctx))

	remote.SetOffline(true)
	created := e1.AddTask(ctx, model.Task{Title: "before restart"})
	require.NoError(t, e1.Dispose(ctx))

	// Same store, fresh process.
	e2 := engine.New(engine.Options{Store: s, Remote: remote, SaveDebounce: time.Hour})
	require.NoError(t, e2.Init(ctx))

	assert.Equal(t, 1, e2.QueueLen(), "queued intent survives the restart")
	snap := e2.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, created.ID, snap.Tasks[0].ID, "optimistic entry survives too")

	remote.SetOffline(false)
	res, err := e2.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, "srv-1", e2.Snapshot().Tasks[0].ID)
}

func TestDrinkWaterStopsAtTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.UpdateHydrationTarget(ctx, 2)

	_, ok := f.engine.DrinkWater(ctx)
	assert.True(t, ok)
	stats, ok := f.engine.DrinkWater(ctx)
	assert.True(t, ok)
	assert.Equal(t, 2, stats.HydrationCount)

	stats, ok = f.engine.DrinkWater(ctx)
	assert.False(t, ok, "cap reached: strict no-op")
	assert.Equal(t, 2, stats.HydrationCount)
	assert.Equal(t, 2, f.remote.CallCount("RecordHydration"), "no remote call for the rejected glass")
}

func TestDrinkWaterOfflineKeepsLocalBuckets(t *testing.T) {
	f := newFixture(t)
	f.remote.SetOffline(true)
	ctx := context.Background()

	stats, ok := f.engine.DrinkWater(ctx)
	assert.True(t, ok, "metrics work offline")
	assert.Equal(t, 1, stats.HydrationCount)
	assert.Zero(t, f.engine.QueueLen(), "metric increments are not queued")
	assert.False(t, f.engine.Online())
}

func TestRolloverResetsDailyCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.DrinkWater(ctx)
	f.engine.CompletePomodoro(ctx)

	*f.clock = f.clock.Add(24 * time.Hour)

	assert.True(t, f.engine.Rollover())
	stats := f.engine.Stats()
	assert.Zero(t, stats.HydrationCount)
	assert.Zero(t, stats.Pomodoros)
	assert.Len(t, stats.HydrationHistory, 1, "yesterday's bucket is kept")

	assert.False(t, f.engine.Rollover(), "same day again is a no-op")
}

func TestCheckAchievementsUnlocksOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.CreateAchievement(ctx, model.Achievement{
		Title:       "First focus",
		Type:        model.AchievementPomodoros,
		TargetValue: 1,
	})

	f.engine.CompletePomodoro(ctx)

	// The unlock must reach the caller through the changed-list.
	changed := f.engine.CheckAchievements()
	require.Len(t, changed, 1)
	assert.True(t, changed[0].IsUnlocked)
	assert.Equal(t, "First focus", changed[0].Title)
	require.NotNil(t, changed[0].UnlockedAt)

	snap := f.engine.Snapshot()
	require.Len(t, snap.Achievements, 1)
	assert.True(t, snap.Achievements[0].IsUnlocked)

	changed = f.engine.CheckAchievements()
	assert.Empty(t, changed, "the unlock is reported exactly once")
}

func TestRefreshMergesAchievementsMonotonically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Seed the snapshot through a refresh, then unlock locally.
	f.remote.State.Achievements = []model.Achievement{{
		ID: "a1", Title: "Hydration hero", Type: model.AchievementHydrationDays, TargetValue: 1,
	}}
	require.NoError(t, f.engine.Refresh(ctx))

	f.engine.UpdateHydrationTarget(ctx, 1)
	f.engine.DrinkWater(ctx)
	require.NotEmpty(t, f.engine.CheckAchievements())
	require.True(t, f.engine.Snapshot().Achievements[0].IsUnlocked)

	// The server copy still shows the achievement locked.
	require.NoError(t, f.engine.Refresh(ctx))

	snap := f.engine.Snapshot()
	require.Len(t, snap.Achievements, 1)
	assert.True(t, snap.Achievements[0].IsUnlocked, "server lag cannot re-lock")
	assert.NotNil(t, snap.Achievements[0].UnlockedAt)
}

func TestRefreshSkippedWhileMutationsQueued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.remote.SetOffline(true)
	f.engine.AddTask(ctx, model.Task{Title: "queued"})
	f.remote.SetOffline(false)

	f.remote.State.Tasks = []model.Task{{ID: "srv-9", Title: "server only"}}
	require.NoError(t, f.engine.Refresh(ctx))

	snap := f.engine.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.True(t, model.IsTempID(snap.Tasks[0].ID),
		"refresh must not clobber optimistic entries the server has never seen")
	assert.Zero(t, f.remote.CallCount("FetchState"))
}

func TestUpdateProfileOfflineQueuesIntent(t *testing.T) {
	f := newFixture(t)
	f.remote.SetOffline(true)
	ctx := context.Background()

	name := "Deep Worker"
	got := f.engine.UpdateProfile(ctx, model.ProfileUpdates{Name: &name})

	assert.Equal(t, "Deep Worker", got.Name, "optimistic merge visible immediately")
	assert.Equal(t, 1, f.engine.QueueLen())

	f.remote.SetOffline(false)
	f.remote.Calls = nil
	res, err := f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, f.remote.CallCount("UpdateProfile"))
}

func TestToggleChecklistFoldsIntoQueuedCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.remote.SetOffline(true)
	item := f.engine.AddChecklistItem(ctx, "stretch")
	f.engine.ToggleChecklistItem(ctx, item.ID, true)
	require.Equal(t, 1, f.engine.QueueLen())

	f.remote.SetOffline(false)
	res, err := f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)

	snap := f.engine.Snapshot()
	require.Len(t, snap.Checklist, 1)
	assert.True(t, snap.Checklist[0].IsCompleted, "completion rode along with the create")
	assert.Zero(t, f.remote.CallCount("UpdateChecklistItem"))
}

func TestStatusReflectsQueueAndConnectivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.AddTask(ctx, model.Task{Title: "fine"})
	assert.Equal(t, engine.StatusSynced, f.engine.Status())

	f.remote.SetOffline(true)
	f.engine.AddTask(ctx, model.Task{Title: "stuck"})
	assert.Equal(t, engine.StatusOffline, f.engine.Status())

	f.remote.SetOffline(false)
	_, err := f.engine.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusSynced, f.engine.Status())
}
