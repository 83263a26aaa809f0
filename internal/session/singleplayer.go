package session

import (
	"log/slog"

	"github.com/rocketscienceinc/onitama-backend/internal/ai"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
	"github.com/rocketscienceinc/onitama-backend/internal/game"
)

// MoveRequester hands a state snapshot to the AI worker and delivers the
// answer asynchronously. *ai.Pool satisfies it.
type MoveRequester interface {
	Submit(req ai.Request, cb ai.Callback) error
}

// SinglePlayer pits one human against the AI delegate. The human color is
// chosen uniformly at random at construction; whenever the opposite color
// holds the turn, exactly one move request is outstanding against the AI
// worker. The human cannot sneak a second move in while a request is pending
// because the turn has not changed server-side, so the claim check rejects it.
type SinglePlayer struct {
	*Session

	human    entity.Player
	strategy ai.Strategy
	requests MoveRequester

	// pending is guarded by the session mutex.
	pending bool
}

// NewSinglePlayer builds the session and, when the AI's color holds the very
// first turn, dispatches its move request before any observer is attached.
func NewSinglePlayer(logger *slog.Logger, engine game.Engine, project game.Projector, requests MoveRequester, difficulty string) *SinglePlayer {
	that := &SinglePlayer{
		Session:  New(logger, engine, project),
		human:    entity.RandomPlayer(),
		strategy: ai.StrategyForDifficulty(difficulty),
		requests: requests,
	}
	that.Session.decorate = that.decorateView

	that.maybeRequestMove()

	return that
}

// HumanPlayer reports which color the local participant controls.
func (that *SinglePlayer) HumanPlayer() entity.Player {
	return that.human
}

// Play applies a human move and, when the turn passes to the AI, dispatches
// its move request.
func (that *SinglePlayer) Play(move entity.Move) error {
	human := that.human
	if err := that.TryMove(move, &human); err != nil {
		return err
	}

	that.maybeRequestMove()

	return nil
}

// Reset restarts the game and re-dispatches the AI request when the AI color
// holds the first turn of the fresh game.
func (that *SinglePlayer) Reset() {
	that.Session.Reset()
	that.maybeRequestMove()
}

func (that *SinglePlayer) maybeRequestMove() {
	that.mu.Lock()
	req, ok := that.nextRequestLocked()
	that.mu.Unlock()

	if !ok {
		return
	}

	if err := that.requests.Submit(req, that.handleResponse); err != nil {
		that.logger.Error("failed to request ai move", "strategy", req.Strategy, "error", err)

		that.mu.Lock()
		that.pending = false
		that.mu.Unlock()
	}
}

func (that *SinglePlayer) nextRequestLocked() (ai.Request, bool) {
	if that.pending {
		return ai.Request{}, false
	}

	turn, ok := that.engine.CurrentTurn()
	if !ok || turn != that.human.Invert() {
		return ai.Request{}, false
	}

	that.pending = true

	return ai.Request{State: that.engine.Snapshot(), Strategy: that.strategy}, true
}

// handleResponse applies the AI's move through the same validated path as
// human moves, claiming the AI's color. A failed or stale answer leaves the
// state untouched.
func (that *SinglePlayer) handleResponse(move entity.Move, err error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.pending = false

	if err != nil {
		that.logger.Error("ai produced no move", "error", err)
		return
	}

	aiPlayer := that.human.Invert()
	if err := that.tryMoveLocked(move, &aiPlayer); err != nil {
		that.logger.Error("ai move was rejected", "error", err)
	}
}

func (that *SinglePlayer) decorateView(view entity.View) entity.View {
	view.Player = that.human
	view.LastMove = that.lastMove

	return view
}
