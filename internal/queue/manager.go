package queue

import (
	"context"
	"errors"
	"time"

	"github.com/fairyhunter13/product-reconciler/internal/config"
	"github.com/fairyhunter13/product-reconciler/internal/obs"
	"github.com/fairyhunter13/product-reconciler/internal/reconcile"
	"github.com/fairyhunter13/product-reconciler/internal/state"
)

// ErrClosed is returned by Submit once intake has been closed.
var ErrClosed = errors.New("apply queue closed")

// Manager runs the single worker applying queued mutations to the state
// container.
type Manager struct {
	cfg    config.Config
	q      *Queue
	st     *state.Container
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager constructs a Manager with the given config, queue, and state.
func NewManager(cfg config.Config, q *Queue, st *state.Container) *Manager {
	return &Manager{cfg: cfg, q: q, st: st}
}

// Start begins processing in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.done = make(chan struct{})
	m.q.Start(m.ctx, m.cfg.ApplyBuffer)
	go m.worker(m.ctx)
}

// Stop cancels background routines and waits for the worker to exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// worker drains mutations from the queue and applies them in order.
func (m *Manager) worker(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case mu := <-m.q.Out():
			applied := m.st.Apply(mu.Sequence, mu.Apply)
			m.q.MarkProcessed()
			obs.Logger.Debug().Str("op", mu.Op).Uint64("sequence", mu.Sequence).Bool("applied", applied).
				Msg("mutation_applied")
			if mu.done != nil {
				mu.done <- applied
			}
		}
	}
}

// Submit enqueues fn under the next completion sequence and waits
// until the worker has applied it. If ctx ends first the mutation stays
// queued and ctx.Err() is returned.
func (m *Manager) Submit(ctx context.Context, op string, fn func(reconcile.Collection) reconcile.Collection) error {
	mu := Mutation{Op: op, Apply: fn, done: make(chan bool, 1)}
	if !m.q.Enqueue(mu) {
		return ErrClosed
	}
	select {
	case <-mu.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BacklogSize returns pending items in the queue.
func (m *Manager) BacklogSize() int { return m.q.BacklogSize() }

// QueueDepth returns backlog plus buffered output items.
func (m *Manager) QueueDepth() int { return m.q.QueueDepth() }

// IsShuttingDown reports whether new enqueues are rejected.
func (m *Manager) IsShuttingDown() bool { return m.q.IsShuttingDown() }

// CloseIntake disallows future enqueues.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// QueueMetrics exposes the underlying queue metrics.
func (m *Manager) QueueMetrics() (enq, proc uint64, backlog, depth int) {
	return m.q.Metrics()
}

// DrainUntil blocks until the queue is fully drained or context is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, backlog, depth := m.q.Metrics()
		if backlog == 0 && depth == 0 && enq == proc {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
