// Package queue dispatches inbound updates to a fixed pool of workers.
//
// Each update is handled by exactly one worker. Handler errors and panics
// end up in the manager's log (the bot's catch-all error path) and never
// stop a worker.
package queue

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
	"github.com/fairyhunter13/stars-shop-bot/internal/obs"
)

// Handler processes one update.
type Handler func(ctx context.Context, u model.Update) error

// Manager runs workers that drain the queue into a Handler.
type Manager struct {
	workers int
	q       *Queue
	handle  Handler
	ctx     context.Context
	cancel  context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewManager constructs a Manager with workers goroutines.
func NewManager(workers int, q *Queue, h Handler) *Manager {
	if workers <= 0 {
		workers = 1
	}
	return &Manager{workers: workers, q: q, handle: h}
}

// Start begins processing in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.q.Start(m.ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < m.workers; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Logger.Info("workers_started", "worker_count", len(m.workerCancels))
}

// Stop cancels background routines and stops workers. An update already
// being handled runs to completion.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

func (m *Manager) worker(ctx context.Context) {
	// Handlers get a context that outlives worker cancellation.
	hctx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-m.q.Out():
			err := m.process(hctx, u)
			m.q.MarkProcessed(err != nil)
		}
	}
}

func (m *Manager) process(ctx context.Context, u model.Update) (err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			obs.Logger.Error("update_panic", "update_id", u.ID, "kind", u.Kind.String(), "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
		}
		if err != nil {
			obs.Logger.Error("update_failed", "update_id", u.ID, "kind", u.Kind.String(), "user_id", u.UserID, "error", err)
			return
		}
		obs.Logger.Debug("update_handled", "update_id", u.ID, "kind", u.Kind.String(), "latency_ms", float64(time.Since(start).Microseconds())/1000.0)
	}()
	return m.handle(ctx, u)
}

// Enqueue proxies to the underlying queue.
func (m *Manager) Enqueue(u model.Update) bool { return m.q.Enqueue(u) }

// WorkerCount returns the current number of workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// CloseIntake disallows future enqueues.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// IsShuttingDown reports whether new enqueues are rejected.
func (m *Manager) IsShuttingDown() bool { return m.q.IsShuttingDown() }

// Metrics exposes the underlying queue metrics.
func (m *Manager) Metrics() Metrics { return m.q.Metrics() }

// DrainUntil blocks until every enqueued update has been handled or ctx is
// done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		mt := m.q.Metrics()
		if mt.Backlog == 0 && mt.Depth == 0 && mt.Enqueued == mt.Processed {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
