package onitama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/onitama-backend/internal/entity"
)

// dealtEngine builds an engine with a fixed deal so tests don't depend on the
// shuffle. Spare "boar" puts red on the first turn, spare "tiger" blue.
func dealtEngine(deal [5]string) *Engine {
	that := &Engine{}
	that.resetWithDeal(deal)

	return that
}

func TestEngine_OpeningPosition(t *testing.T) {
	// Given: a deal whose spare card puts red on the first turn
	engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})

	// Then: red moves first and both starting rows are complete
	turn, ok := engine.CurrentTurn()
	require.True(t, ok)
	assert.Equal(t, entity.PlayerRed, turn)

	assert.Equal(t, redMaster, engine.state.Board[cellIndex(2, 0)])
	assert.Equal(t, blueMaster, engine.state.Board[cellIndex(2, 4)])
	for _, x := range []int{0, 1, 3, 4} {
		assert.Equal(t, redStudent, engine.state.Board[cellIndex(x, 0)])
		assert.Equal(t, blueStudent, engine.state.Board[cellIndex(x, 4)])
	}
}

func TestEngine_Apply(t *testing.T) {
	t.Run("Applies a legal move and swaps the card", func(t *testing.T) {
		engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})

		// When: red jumps the master two squares forward with tiger
		err := engine.Apply(entity.Move(`{"card":"tiger","from":{"x":2,"y":0},"to":{"x":2,"y":2}}`))

		// Then: the piece moved, tiger went to the spare slot, turn passed
		require.NoError(t, err)
		assert.Equal(t, redMaster, engine.state.Board[cellIndex(2, 2)])
		assert.Equal(t, emptyCell, engine.state.Board[cellIndex(2, 0)])
		assert.Equal(t, "tiger", engine.state.Spare)
		assert.Equal(t, [2]string{"boar", "crab"}, engine.state.RedCards)

		turn, ok := engine.CurrentTurn()
		require.True(t, ok)
		assert.Equal(t, entity.PlayerBlue, turn)
	})

	t.Run("Rejects a destination the card cannot reach", func(t *testing.T) {
		engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})
		before := engine.Snapshot()

		err := engine.Apply(entity.Move(`{"card":"tiger","from":{"x":2,"y":0},"to":{"x":3,"y":2}}`))

		require.ErrorIs(t, err, ErrBadDestination)
		assert.Equal(t, before, engine.Snapshot())
	})

	t.Run("Rejects a card that is not in the mover's hand", func(t *testing.T) {
		engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})

		err := engine.Apply(entity.Move(`{"card":"ox","from":{"x":2,"y":0},"to":{"x":3,"y":0}}`))

		require.ErrorIs(t, err, ErrUnknownCard)
	})

	t.Run("Rejects moving from an empty or enemy square", func(t *testing.T) {
		engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})

		err := engine.Apply(entity.Move(`{"card":"tiger","from":{"x":2,"y":4},"to":{"x":2,"y":2}}`))

		require.ErrorIs(t, err, ErrNoPiece)
	})

	t.Run("Rejects squares outside the board", func(t *testing.T) {
		engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})

		err := engine.Apply(entity.Move(`{"card":"tiger","from":{"x":2,"y":0},"to":{"x":2,"y":-1}}`))

		require.ErrorIs(t, err, ErrOutOfBoard)
	})

	t.Run("Rejects malformed payloads", func(t *testing.T) {
		engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})

		err := engine.Apply(entity.Move(`{"card":`))

		require.Error(t, err)
	})
}

func TestEngine_WinConditions(t *testing.T) {
	t.Run("Capturing the opposing master wins", func(t *testing.T) {
		// Given: red to move with horse, masters adjacent
		engine := dealtEngine([5]string{"horse", "crab", "tiger", "ox", "boar"})
		engine.state.Board = [boardSize * boardSize]string{}
		engine.state.Board[cellIndex(2, 2)] = redMaster
		engine.state.Board[cellIndex(2, 3)] = blueMaster

		// When: red steps the master forward onto the blue master
		err := engine.Apply(entity.Move(`{"card":"horse","from":{"x":2,"y":2},"to":{"x":2,"y":3}}`))

		// Then: red wins and the game is terminal
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerRed, engine.state.Winner)

		_, ok := engine.CurrentTurn()
		assert.False(t, ok)
	})

	t.Run("Reaching the opposing temple wins", func(t *testing.T) {
		engine := dealtEngine([5]string{"horse", "crab", "tiger", "ox", "boar"})
		engine.state.Board = [boardSize * boardSize]string{}
		engine.state.Board[cellIndex(2, 3)] = redMaster
		engine.state.Board[cellIndex(0, 0)] = blueMaster

		err := engine.Apply(entity.Move(`{"card":"horse","from":{"x":2,"y":3},"to":{"x":2,"y":4}}`))

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerRed, engine.state.Winner)
	})

	t.Run("No move is accepted after the game is over", func(t *testing.T) {
		engine := dealtEngine([5]string{"horse", "crab", "tiger", "ox", "boar"})
		engine.state.Winner = entity.PlayerBlue
		engine.state.Turn = ""

		err := engine.Apply(entity.Move(`{"card":"horse","from":{"x":2,"y":2},"to":{"x":2,"y":3}}`))

		require.ErrorIs(t, err, ErrGameFinished)
	})
}

func TestEngine_Discard(t *testing.T) {
	t.Run("Discarding is allowed when no piece can move", func(t *testing.T) {
		// Given: every red crab move is blocked by the board edge or own pieces
		engine := dealtEngine([5]string{"crab", "crab", "tiger", "ox", "boar"})
		engine.state.Board = [boardSize * boardSize]string{}
		engine.state.Board[cellIndex(0, 4)] = redMaster
		engine.state.Board[cellIndex(2, 4)] = redStudent
		engine.state.Board[cellIndex(4, 4)] = redStudent
		engine.state.Board[cellIndex(2, 0)] = blueMaster
		engine.state.Turn = entity.PlayerRed

		err := engine.Apply(entity.Move(`{"card":"crab","discard":true}`))

		// Then: the card swaps with the spare and the turn passes
		require.NoError(t, err)
		assert.Equal(t, "crab", engine.state.Spare)
		assert.Equal(t, [2]string{"boar", "crab"}, engine.state.RedCards)

		turn, ok := engine.CurrentTurn()
		require.True(t, ok)
		assert.Equal(t, entity.PlayerBlue, turn)
	})

	t.Run("Discarding is rejected while a legal move exists", func(t *testing.T) {
		engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})

		err := engine.Apply(entity.Move(`{"card":"tiger","discard":true}`))

		require.ErrorIs(t, err, ErrMustMove)
	})
}

func TestEngine_Reset(t *testing.T) {
	// Given: a game that has progressed
	engine := dealtEngine([5]string{"tiger", "crab", "horse", "ox", "boar"})
	require.NoError(t, engine.Apply(entity.Move(`{"card":"tiger","from":{"x":2,"y":0},"to":{"x":2,"y":2}}`)))

	// When: the engine is reset
	engine.Reset()

	// Then: the starting rows are back and a fresh five-card deal is in play
	assert.Equal(t, redMaster, engine.state.Board[cellIndex(2, 0)])
	assert.Equal(t, blueMaster, engine.state.Board[cellIndex(2, 4)])
	assert.Empty(t, engine.state.Winner)

	dealt := map[string]bool{
		engine.state.RedCards[0]:  true,
		engine.state.RedCards[1]:  true,
		engine.state.BlueCards[0]: true,
		engine.state.BlueCards[1]: true,
		engine.state.Spare:        true,
	}
	assert.Len(t, dealt, 5)
}
