// Package sync runs the background reconciliation loop: a periodic
// stats probe that doubles as a connectivity check, queue replay on
// reconnect, and day-boundary rollover for long-lived sessions.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenfocus/zenfocus/internal/engine"
	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
)

// StatusMsg is a tea.Msg reporting the connectivity state after each
// probe.
type StatusMsg struct {
	Status  engine.Status
	Pending int
}

// ReplayedMsg is a tea.Msg sent after a queue drain completes.
type ReplayedMsg struct {
	Applied   int
	Retained  int
	Abandoned []queue.Mutation
	Error     error
}

// RefreshedMsg is a tea.Msg sent after the authoritative state is
// re-adopted, so views re-render from the fresh snapshot.
type RefreshedMsg struct {
	Error error
}

// RolloverMsg is a tea.Msg sent when a session left open crosses a day
// boundary and the daily counters reset.
type RolloverMsg struct{}

// AchievementsMsg is a tea.Msg carrying achievements that changed on
// re-evaluation, newly unlocked ones included.
type AchievementsMsg struct {
	Changed []model.Achievement
}

// probeTimeout bounds a single background network pass.
const probeTimeout = 30 * time.Second

// Poller drives the background loop. It owns no state beyond the loop
// itself; the engine stays the single owner of the snapshot and queue.
type Poller struct {
	engine   *engine.Engine
	interval time.Duration

	msgCh     chan tea.Msg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a poller on the given probe interval.
func New(e *engine.Engine, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		engine:    e,
		interval:  interval,
		msgCh:     make(chan tea.Msg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the background loop and returns the subscription
// command that feeds its messages to the Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForMsg()
}

// Stop halts the background loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Trigger requests an immediate pass, used right after a user action
// fails so reconnection is noticed without waiting a full interval.
func (p *Poller) Trigger() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
	return nil
}

// loop runs passes on the interval and on demand.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial pass immediately so startup reconciles without delay.
	p.pass()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pass()
		case <-p.triggerCh:
			p.pass()
		}
	}
}

// pass runs one reconciliation round: rollover check, connectivity
// probe, queue replay if anything is pending, then a full refresh once
// the queue is empty.
func (p *Poller) pass() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if p.engine.Rollover() {
		p.send(RolloverMsg{})
	}

	wasOffline := !p.engine.Online()

	// The stats fetch is the cheapest authenticated endpoint, so it
	// doubles as the connectivity probe.
	statsErr := p.engine.RefreshStats(ctx)

	if statsErr == nil && p.engine.QueueLen() > 0 {
		res, err := p.engine.ProcessQueue(ctx)
		p.send(ReplayedMsg{
			Applied:   res.Applied,
			Retained:  res.Retained,
			Abandoned: res.Abandoned,
			Error:     err,
		})

		// Replay rewrote identities server-side; re-adopt the
		// authoritative state so the snapshot converges.
		if res.Applied > 0 && p.engine.QueueLen() == 0 {
			p.send(RefreshedMsg{Error: p.engine.Refresh(ctx)})
		}
	} else if statsErr == nil && wasOffline {
		p.send(RefreshedMsg{Error: p.engine.Refresh(ctx)})
	}

	if changed := p.engine.CheckAchievements(); len(changed) > 0 {
		p.send(AchievementsMsg{Changed: changed})
	}

	p.send(StatusMsg{
		Status:  p.engine.Status(),
		Pending: p.engine.QueueLen(),
	})
}

// send queues a message without blocking the loop.
func (p *Poller) send(msg tea.Msg) {
	select {
	case p.msgCh <- msg:
	default:
	}
}

// waitForMsg returns a tea.Cmd that waits for the next background
// message.
func (p *Poller) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-p.msgCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextMsg re-subscribes after a message is processed.
func (p *Poller) WaitForNextMsg() tea.Cmd {
	return p.waitForMsg()
}
