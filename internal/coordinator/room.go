package coordinator

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/onitama-backend/internal/apperror"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
	"github.com/rocketscienceinc/onitama-backend/internal/session"
)

const (
	StatusWaiting = "waiting"
	StatusActive  = "active"
	StatusClosed  = "closed"
)

const (
	KindVersus = "versus"
	KindWithAI = "ai"
	KindLocal  = "local"
)

const LeaveStatusOpponentOut = "opponent_out"

// Conn is one participant's connection as the coordinator sees it: a session
// observer with an identity, a join-key channel and a leave notification.
type Conn interface {
	session.Observer
	ID() string
	SendKey(key string) error
	SendLeave(status string) error
}

type occupant struct {
	conn   Conn
	player entity.Player
}

// Room pairs up to two participants (or one participant plus the AI delegate)
// around one session. The room is the unit of mutual exclusion: slot changes
// go through the room mutex, state changes through the session's.
type Room struct {
	logger *slog.Logger
	key    string
	kind   string

	// base is the underlying session for every kind; solo is additionally set
	// for the modes driven by a single connection.
	base *session.Session
	solo soloSession

	mu        sync.Mutex
	status    string
	occupants []occupant
}

// soloSession covers the modes where one connection drives the whole game
// (local play and play against the AI).
type soloSession interface {
	Play(move entity.Move) error
	Reset()
}

func (that *Room) Key() string {
	return that.key
}

func (that *Room) Kind() string {
	return that.kind
}

func (that *Room) Status() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status
}

// HandleMove applies a move submitted by the given connection. For versus
// rooms the connection's seat color is the claimed player; solo rooms route
// through their own session variant.
func (that *Room) HandleMove(connID string, move entity.Move) error {
	that.mu.Lock()

	switch that.status {
	case StatusClosed:
		that.mu.Unlock()
		return apperror.ErrRoomClosed
	case StatusWaiting:
		that.mu.Unlock()
		return apperror.ErrRoomNotReady
	}

	if that.solo != nil {
		solo := that.solo
		that.mu.Unlock()

		return solo.Play(move)
	}

	seat, ok := that.seatLocked(connID)
	base := that.base
	that.mu.Unlock()

	if !ok {
		return apperror.ErrRoomNotFound
	}

	return base.TryMove(move, &seat)
}

// HandleReset restarts the game. Only solo rooms expose reset; in a versus
// room neither side may wipe the board under the other.
func (that *Room) HandleReset(connID string) error {
	that.mu.Lock()

	if that.status == StatusClosed {
		that.mu.Unlock()
		return apperror.ErrRoomClosed
	}

	solo := that.solo
	that.mu.Unlock()

	if solo == nil {
		return apperror.ErrRoomNotFound
	}

	solo.Reset()
	return nil
}

// Moves reports how many moves have been committed in this room.
func (that *Room) Moves() int {
	return that.base.Moves()
}

// join seats a second participant and activates the room. Keys are single-use
// for the second slot: an active or closed room never admits again.
func (that *Room) join(conn Conn) error {
	that.mu.Lock()

	switch that.status {
	case StatusClosed:
		that.mu.Unlock()
		return apperror.ErrRoomNotFound
	case StatusActive:
		that.mu.Unlock()
		return apperror.ErrRoomFull
	}

	that.occupants = append(that.occupants, occupant{conn: conn, player: entity.PlayerBlue})
	that.status = StatusActive
	base := that.base
	that.mu.Unlock()

	base.Attach(conn)
	base.PushView()

	return nil
}

func (that *Room) seatLocked(connID string) (entity.Player, bool) {
	for _, occ := range that.occupants {
		if occ.conn.ID() == connID {
			return occ.player, true
		}
	}

	return "", false
}

// close marks the room closed and, when a leaver is named, notifies the
// surviving participant. Idempotent.
func (that *Room) close(leaverID string) {
	that.mu.Lock()

	if that.status == StatusClosed {
		that.mu.Unlock()
		return
	}

	that.status = StatusClosed
	occupants := that.occupants
	that.occupants = nil
	that.mu.Unlock()

	if leaverID == "" {
		return
	}

	for _, occ := range occupants {
		if occ.conn.ID() == leaverID {
			continue
		}

		if err := occ.conn.SendLeave(LeaveStatusOpponentOut); err != nil {
			that.logger.Error("failed to notify opponent", "error", err)
		}
	}
}
