package game

import "github.com/rocketscienceinc/onitama-backend/internal/entity"

// Engine is the rule-engine contract the coordinator runs against. An engine
// owns one board state: it validates and applies moves, reports whose turn it
// is and detects terminal outcomes. Everything about board geometry and move
// legality lives behind this interface.
type Engine interface {
	// Apply validates the move against the current state and commits it.
	// The state is untouched when an error is returned.
	Apply(move entity.Move) error

	// CurrentTurn reports which color moves next. The second return is false
	// once the game has reached a terminal outcome.
	CurrentTurn() (entity.Player, bool)

	// Snapshot serializes the full current state.
	Snapshot() entity.State

	// Reset returns the engine to the game's starting configuration.
	Reset()
}

// Factory produces a fresh engine for each new session.
type Factory func() Engine

// Projector maps an internal state to the client-facing view payload. In a
// perfect-information game the identity projection is a valid choice.
type Projector func(state entity.State) entity.State

// Identity is the default projector: clients see the state as-is.
func Identity(state entity.State) entity.State {
	return state
}
