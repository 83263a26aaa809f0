package session

import (
	"log/slog"

	"github.com/rocketscienceinc/onitama-backend/internal/entity"
	"github.com/rocketscienceinc/onitama-backend/internal/game"
)

// Local is the single-device mode: one participant plays both colors, so
// moves carry no claimed color and only legality is checked.
type Local struct {
	*Session
}

func NewLocal(logger *slog.Logger, engine game.Engine, project game.Projector) *Local {
	return &Local{Session: New(logger, engine, project)}
}

func (that *Local) Play(move entity.Move) error {
	return that.TryMove(move, nil)
}
