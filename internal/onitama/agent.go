package onitama

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/onitama-backend/internal/ai"
	"github.com/rocketscienceinc/onitama-backend/internal/apperror"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
)

// Agent answers move requests with a uniformly random legal move. Every
// strategy tier gets the same treatment for now; the tag is carried on the
// request so a search-based agent can slot in behind the same contract.
type Agent struct{}

func NewAgent() *Agent {
	return &Agent{}
}

func (that *Agent) SuggestMove(_ context.Context, req ai.Request) (entity.Move, error) {
	var state gameState
	if err := json.Unmarshal(req.State, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	if state.Winner != "" || state.Turn == "" {
		return nil, apperror.ErrNoMoveAvailable
	}

	moves := pieceMoves(&state, state.Turn)
	if len(moves) == 0 {
		// no piece can move: the rules still demand a card be discarded
		return marshalMove(moveMessage{Card: handOf(&state, state.Turn)[0], Discard: true})
	}

	chosen := moves[rand.Intn(len(moves))] //nolint: gosec // uniform pick, no crypto needed

	return marshalMove(chosen)
}

func handOf(state *gameState, player entity.Player) [2]string {
	if player == entity.PlayerRed {
		return state.RedCards
	}

	return state.BlueCards
}

func marshalMove(msg moveMessage) (entity.Move, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode move: %w", err)
	}

	return entity.Move(raw), nil
}
