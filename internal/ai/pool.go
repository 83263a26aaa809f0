package ai

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/onitama-backend/internal/entity"
)

var (
	ErrBacklogFull = errors.New("ai request backlog is full")
	ErrPoolClosed  = errors.New("ai pool is closed")
)

// Request carries a state snapshot and the requested strategy tier to the
// agent. The snapshot is taken at submission time, so the agent never races
// the session it answers to.
type Request struct {
	State    entity.State
	Strategy Strategy
}

// Agent produces a move for a given state and strategy tier. Search internals
// are entirely the agent's concern.
type Agent interface {
	SuggestMove(ctx context.Context, req Request) (entity.Move, error)
}

// Callback delivers the agent's answer back to the requesting session. It is
// invoked from a worker goroutine, never from the submitter's.
type Callback func(move entity.Move, err error)

// Pool fans AI move requests out to a fixed set of workers so a slow search
// never blocks the session that asked for it.
type Pool struct {
	logger *slog.Logger
	agent  Agent

	mu     sync.Mutex
	jobs   chan job
	closed bool
}

type job struct {
	req Request
	cb  Callback
}

func NewPool(logger *slog.Logger, agent Agent, workers, backlog int) *Pool {
	pool := &Pool{
		logger: logger.With("component", "ai-pool"),
		agent:  agent,
		jobs:   make(chan job, backlog),
	}

	for range workers {
		go pool.worker()
	}

	return pool
}

func (that *Pool) worker() {
	for j := range that.jobs {
		move, err := that.agent.SuggestMove(context.Background(), j.req)
		if err != nil {
			that.logger.Error("agent failed to produce a move", "strategy", j.req.Strategy, "error", err)
		}
		j.cb(move, err)
	}
}

// Submit enqueues a request without blocking. The callback fires exactly once
// unless the request is rejected up front: a full backlog or a closed pool
// returns an error.
func (that *Pool) Submit(req Request, cb Callback) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return ErrPoolClosed
	}

	select {
	case that.jobs <- job{req: req, cb: cb}:
		return nil
	default:
		return ErrBacklogFull
	}
}

// Close stops the workers once queued requests have drained. Submissions
// after Close are rejected with ErrPoolClosed. Idempotent.
func (that *Pool) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	close(that.jobs)
}
