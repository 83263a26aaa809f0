package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/onitama-backend/internal/apperror"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
	"github.com/rocketscienceinc/onitama-backend/internal/game"
)

// Observer receives view and error pushes from a session. Delivery failures
// are logged and never abort the mutation that produced the push.
type Observer interface {
	SendView(view entity.View) error
	SendError(message string) error
}

// Session is one running game instance: one engine-owned state, a last-move
// marker and the observers interested in its views. All mutations are
// serialized through the session mutex, so no two move applications ever
// interleave against the same state and views are pushed in commit order.
type Session struct {
	logger  *slog.Logger
	project game.Projector

	mu        sync.Mutex
	engine    game.Engine
	lastMove  entity.Move
	observers []Observer
	moves     int
	ended     bool

	// decorate lets a mode variant add its metadata to every outgoing view.
	decorate func(view entity.View) entity.View

	// gameOver fires at most once per game, from its own goroutine, after the
	// final move's view has been pushed.
	gameOver func(winner entity.Player)
}

func New(logger *slog.Logger, engine game.Engine, project game.Projector) *Session {
	if project == nil {
		project = game.Identity
	}

	return &Session{
		logger:  logger.With("component", "session"),
		project: project,
		engine:  engine,
	}
}

// SetGameOverHandler registers the terminal-outcome callback. Must be called
// before the session starts taking moves.
func (that *Session) SetGameOverHandler(fn func(winner entity.Player)) {
	that.gameOver = fn
}

// TryMove validates the claimed color against the engine's turn, applies the
// move and pushes the refreshed view to every observer. With a nil claim the
// turn check is skipped (single-device play submits for both colors).
func (that *Session) TryMove(move entity.Move, claimed *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.tryMoveLocked(move, claimed)
}

func (that *Session) tryMoveLocked(move entity.Move, claimed *entity.Player) error {
	mover, hasTurn := that.engine.CurrentTurn()

	if claimed != nil {
		if !hasTurn || mover != *claimed {
			return apperror.ErrNotYourTurn
		}
	}

	if err := that.engine.Apply(move); err != nil {
		if errors.Is(err, apperror.ErrIllegalMove) {
			return err
		}
		return fmt.Errorf("%w: %s", apperror.ErrIllegalMove, err)
	}

	that.lastMove = move
	that.moves++
	that.pushViewLocked()

	if _, ok := that.engine.CurrentTurn(); !ok && !that.ended {
		that.ended = true
		if that.gameOver != nil && hasTurn {
			go that.gameOver(mover)
		}
	}

	return nil
}

// Reset reinitializes the state to the starting configuration and pushes the
// refreshed view. It never fails.
func (that *Session) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.resetLocked()
}

func (that *Session) resetLocked() {
	that.engine.Reset()
	that.lastMove = nil
	that.moves = 0
	that.ended = false
	that.pushViewLocked()
}

// Moves reports how many moves have been committed since the last reset.
func (that *Session) Moves() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.moves
}

// Attach registers an observer and immediately pushes the current view to it,
// so every observer sees a valid board before the first move.
func (that *Session) Attach(obs Observer) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.observers = append(that.observers, obs)
	that.deliver(obs, that.currentViewLocked())
}

// CurrentView is a pure projection, safe to call at any time.
func (that *Session) CurrentView() entity.View {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.currentViewLocked()
}

// Turn reports which color moves next; false once the game is over.
func (that *Session) Turn() (entity.Player, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.engine.CurrentTurn()
}

// Finished reports whether the game has reached a terminal outcome.
func (that *Session) Finished() bool {
	_, ok := that.Turn()
	return !ok
}

// PushView re-broadcasts the current view to every observer.
func (that *Session) PushView() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.pushViewLocked()
}

func (that *Session) currentViewLocked() entity.View {
	view := entity.View{State: that.project(that.engine.Snapshot())}
	if that.decorate != nil {
		view = that.decorate(view)
	}

	return view
}

func (that *Session) pushViewLocked() {
	view := that.currentViewLocked()
	for _, obs := range that.observers {
		that.deliver(obs, view)
	}
}

func (that *Session) deliver(obs Observer, view entity.View) {
	if err := obs.SendView(view); err != nil {
		that.logger.Error("failed to deliver view", "error", err)
	}
}
