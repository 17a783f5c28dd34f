package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zenfocus/zenfocus/internal/model"
)

// ErrUnavailable is the failure every FakeRemote method returns while
// the fake is offline.
var ErrUnavailable = errors.New("remote unavailable")

// FakeRemote is a scripted in-memory server implementing the engine's
// Remote interface. While offline every call fails; while online,
// creates assign sequential server identifiers ("srv-1", "srv-2", ...)
// and echo the entity back the way the real API does.
type FakeRemote struct {
	mu      sync.Mutex
	offline bool
	nextID  int

	// Calls records method names in invocation order.
	Calls []string

	// FailKinds forces specific methods to fail even while online,
	// keyed by method name.
	FailKinds map[string]bool

	// State is the authoritative state returned by FetchState.
	State model.RemoteState

	// StatsValue is returned by FetchStats and the metric increments.
	StatsValue model.Stats
}

// NewFakeRemote returns an online fake with empty server state.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{FailKinds: map[string]bool{}}
}

// SetOffline toggles blanket failure for every method.
func (f *FakeRemote) SetOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

// CallCount returns how many times the named method was invoked.
func (f *FakeRemote) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// begin records the call and reports whether it should fail.
func (f *FakeRemote) begin(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, method)
	if f.offline || f.FailKinds[method] {
		return fmt.Errorf("%s: %w", method, ErrUnavailable)
	}
	return nil
}

// assignID issues the next server identifier.
func (f *FakeRemote) assignID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("srv-%d", f.nextID)
}

func (f *FakeRemote) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if err := f.begin("CreateTask"); err != nil {
		return model.Task{}, err
	}
	t.ID = f.assignID()
	return t, nil
}

func (f *FakeRemote) UpdateTask(ctx context.Context, id string, u model.TaskUpdates) (model.Task, error) {
	if err := f.begin("UpdateTask"); err != nil {
		return model.Task{}, err
	}
	t := model.Task{ID: id}
	u.Apply(&t)
	return t, nil
}

func (f *FakeRemote) DeleteTask(ctx context.Context, id string) error {
	return f.begin("DeleteTask")
}

func (f *FakeRemote) CreateLog(ctx context.Context, l model.LogEntry) (model.LogEntry, error) {
	if err := f.begin("CreateLog"); err != nil {
		return model.LogEntry{}, err
	}
	l.ID = f.assignID()
	return l, nil
}

func (f *FakeRemote) CreateDump(ctx context.Context, d model.Dump) (model.Dump, error) {
	if err := f.begin("CreateDump"); err != nil {
		return model.Dump{}, err
	}
	d.ID = f.assignID()
	return d, nil
}

func (f *FakeRemote) DeleteDump(ctx context.Context, id string) error {
	return f.begin("DeleteDump")
}

func (f *FakeRemote) CreateIdea(ctx context.Context, i model.Idea) (model.Idea, error) {
	if err := f.begin("CreateIdea"); err != nil {
		return model.Idea{}, err
	}
	i.ID = f.assignID()
	return i, nil
}

func (f *FakeRemote) DeleteIdea(ctx context.Context, id string) error {
	return f.begin("DeleteIdea")
}

func (f *FakeRemote) CreateChecklistItem(ctx context.Context, item model.ChecklistItem) (model.ChecklistItem, error) {
	if err := f.begin("CreateChecklistItem"); err != nil {
		return model.ChecklistItem{}, err
	}
	item.ID = f.assignID()
	return item, nil
}

func (f *FakeRemote) UpdateChecklistItem(ctx context.Context, id string, item model.ChecklistItem) (model.ChecklistItem, error) {
	if err := f.begin("UpdateChecklistItem"); err != nil {
		return model.ChecklistItem{}, err
	}
	item.ID = id
	return item, nil
}

func (f *FakeRemote) DeleteChecklistItem(ctx context.Context, id string) error {
	return f.begin("DeleteChecklistItem")
}

func (f *FakeRemote) UpdateProfile(ctx context.Context, u model.ProfileUpdates) (model.Profile, error) {
	if err := f.begin("UpdateProfile"); err != nil {
		return model.Profile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.State.Profile
	u.Apply(&p)
	f.State.Profile = p
	return p, nil
}

func (f *FakeRemote) UpdateSettings(ctx context.Context, s model.Settings) (model.Profile, error) {
	if err := f.begin("UpdateSettings"); err != nil {
		return model.Profile{}, err
	}
	f.mu.Lock()
	f.State.Profile.Settings = s
	p := f.State.Profile
	f.mu.Unlock()
	return p, nil
}

func (f *FakeRemote) FetchState(ctx context.Context) (*model.RemoteState, error) {
	if err := f.begin("FetchState"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.State
	return &state, nil
}

func (f *FakeRemote) FetchStats(ctx context.Context) (model.Stats, error) {
	if err := f.begin("FetchStats"); err != nil {
		return model.Stats{}, err
	}
	return f.StatsValue, nil
}

func (f *FakeRemote) RecordHydration(ctx context.Context) (model.Stats, error) {
	if err := f.begin("RecordHydration"); err != nil {
		return model.Stats{}, err
	}
	return f.StatsValue, nil
}

func (f *FakeRemote) RecordPomodoro(ctx context.Context) (model.Stats, error) {
	if err := f.begin("RecordPomodoro"); err != nil {
		return model.Stats{}, err
	}
	return f.StatsValue, nil
}

func (f *FakeRemote) UpdateHydrationTarget(ctx context.Context, target int) error {
	return f.begin("UpdateHydrationTarget")
}

func (f *FakeRemote) CreateAchievement(ctx context.Context, a model.Achievement) (model.Achievement, error) {
	if err := f.begin("CreateAchievement"); err != nil {
		return model.Achievement{}, err
	}
	a.ID = f.assignID()
	return a, nil
}

func (f *FakeRemote) DeleteAchievement(ctx context.Context, id string) error {
	return f.begin("DeleteAchievement")
}
