package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenfocus/zenfocus/internal/model"
)

// memPersist records every persisted queue state so tests can verify
// persistence happens at the right moments.
type memPersist struct {
	saves [][]Mutation
	err   error
}

func (p *memPersist) save(ctx context.Context, mutations []Mutation) error {
	if p.err != nil {
		return p.err
	}
	snapshot := make([]Mutation, len(mutations))
	copy(snapshot, mutations)
	p.saves = append(p.saves, snapshot)
	return nil
}

func (p *memPersist) last() []Mutation {
	if len(p.saves) == 0 {
		return nil
	}
	return p.saves[len(p.saves)-1]
}

func createTaskMutation(tempID, title string) Mutation {
	return Mutation{
		Kind:   KindCreateTask,
		TempID: tempID,
		Task:   &model.Task{ID: tempID, Title: title, Status: model.TaskStatusTodo},
	}
}

func TestEnqueuePersistsImmediately(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)

	require.NoError(t, q.Enqueue(context.Background(), createTaskMutation("temp_1", "write report")))

	require.Len(t, p.saves, 1, "enqueue must persist before returning")
	require.Len(t, p.last(), 1)
	assert.Equal(t, KindCreateTask, p.last()[0].Kind)
	assert.False(t, p.last()[0].EnqueuedAt.IsZero(), "enqueue stamps the time")
}

func TestEnqueueRejectsMismatchedPayload(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)

	err := q.Enqueue(context.Background(), Mutation{Kind: KindCreateTask})
	require.Error(t, err)
	assert.Zero(t, q.Len())
	assert.Empty(t, p.saves, "invalid mutations are never persisted")
}

func TestDrainAppliesInEnqueueOrder(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "first")))
	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_2", "second")))
	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_3", "third")))

	var order []string
	h := Handlers{
		CreateTask: func(ctx context.Context, m Mutation) error {
			order = append(order, m.Task.Title)
			return nil
		},
	}

	res, err := q.Drain(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Applied)
	assert.Zero(t, res.Retained)
	assert.Empty(t, res.Abandoned)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Zero(t, q.Len())
	assert.Empty(t, p.last(), "drained queue persists empty")
}

func TestDrainRetainsFailuresInPlace(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "fails")))
	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_2", "succeeds")))
	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_3", "fails too")))

	h := Handlers{
		CreateTask: func(ctx context.Context, m Mutation) error {
			if m.Task.Title == "succeeds" {
				return nil
			}
			return errors.New("server unavailable")
		},
	}

	res, err := q.Drain(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 2, res.Retained)

	// Failed entries keep their relative order.
	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "fails", items[0].Task.Title)
	assert.Equal(t, "fails too", items[1].Task.Title)
	assert.Equal(t, 1, items[0].Attempts)
	assert.Equal(t, 1, items[1].Attempts)
}

func TestDrainAbandonsAtRetryCap(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "doomed")))

	h := Handlers{
		CreateTask: func(ctx context.Context, m Mutation) error {
			return errors.New("rejected")
		},
	}

	res, err := q.Drain(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Retained)
	assert.Empty(t, res.Abandoned)

	res, err = q.Drain(ctx, h)
	require.NoError(t, err)
	assert.Zero(t, res.Retained)
	require.Len(t, res.Abandoned, 1, "second failure hits the cap")
	assert.Equal(t, "doomed", res.Abandoned[0].Task.Title)
	assert.Equal(t, 2, res.Abandoned[0].Attempts)
	assert.Zero(t, q.Len(), "abandoned mutations leave the queue")
}

func TestDrainUnlimitedRetriesWithoutCap(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "persistent")))

	h := Handlers{
		CreateTask: func(ctx context.Context, m Mutation) error {
			return errors.New("still down")
		},
	}

	for i := 0; i < 5; i++ {
		res, err := q.Drain(ctx, h)
		require.NoError(t, err)
		assert.Empty(t, res.Abandoned)
	}
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 5, q.Items()[0].Attempts)
}

func TestMutateFoldsUpdateIntoQueuedCreate(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "draft")))

	title := "final title"
	found, err := q.Mutate(ctx,
		func(m Mutation) bool { return m.Kind == KindCreateTask && m.TempID == "temp_1" },
		func(m *Mutation) { m.Task.Title = title },
		false,
	)
	require.NoError(t, err)
	assert.True(t, found)

	items := q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "final title", items[0].Task.Title)
	assert.Equal(t, "final title", p.last()[0].Task.Title, "fold re-persists")
}

func TestMutateRemovesCancelledCreate(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "never happened")))

	found, err := q.Mutate(ctx,
		func(m Mutation) bool { return m.TempID == "temp_1" },
		nil,
		true,
	)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, q.Len())
	assert.Empty(t, p.last())
}

func TestMutateReportsMissingMatch(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)

	found, err := q.Mutate(context.Background(),
		func(m Mutation) bool { return true },
		func(m *Mutation) {},
		false,
	)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, p.saves, "no match means nothing to persist")
}

func TestRewriteIDTouchesAllReferences(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "created offline")))
	require.NoError(t, q.Enqueue(ctx, Mutation{
		Kind:       KindUpdateTask,
		TaskUpdate: &UpdateTaskPayload{ID: "temp_1"},
	}))
	require.NoError(t, q.Enqueue(ctx, Mutation{
		Kind:       KindDeleteTask,
		TaskDelete: &DeleteTaskPayload{ID: "temp_1"},
	}))

	require.NoError(t, q.RewriteID(ctx, "temp_1", "abc123"))

	items := q.Items()
	assert.Equal(t, "abc123", items[0].TempID)
	assert.Equal(t, "abc123", items[1].TaskUpdate.ID)
	assert.Equal(t, "abc123", items[2].TaskDelete.ID)
}

func TestRewriteIDNoopSkipsPersist(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "unrelated")))
	saves := len(p.saves)

	require.NoError(t, q.RewriteID(ctx, "temp_other", "abc123"))
	assert.Equal(t, saves, len(p.saves))
}

func TestDrainPersistsAfterEachOutcome(t *testing.T) {
	p := &memPersist{}
	q := New(p.save, nil, 0)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_1", "a")))
	require.NoError(t, q.Enqueue(ctx, createTaskMutation("temp_2", "b")))
	savesBefore := len(p.saves)

	h := Handlers{
		CreateTask: func(ctx context.Context, m Mutation) error { return nil },
	}
	_, err := q.Drain(ctx, h)
	require.NoError(t, err)

	// One persist per drained entry: a crash mid-drain must never
	// replay an already-applied mutation.
	assert.Equal(t, savesBefore+2, len(p.saves))
}
