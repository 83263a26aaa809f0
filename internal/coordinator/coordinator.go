package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/onitama-backend/internal/apperror"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
	"github.com/rocketscienceinc/onitama-backend/internal/game"
	"github.com/rocketscienceinc/onitama-backend/internal/pkg"
	"github.com/rocketscienceinc/onitama-backend/internal/session"
)

const archiveTimeout = 5 * time.Second

type matchArchive interface {
	CreateOrUpdate(ctx context.Context, record *entity.MatchRecord) error
}

// Coordinator is the process-wide registry of active rooms. It owns key
// allocation, admission of incoming connections and room disposal; everything
// that happens inside a room is the room's own business.
type Coordinator struct {
	logger  *slog.Logger
	engines game.Factory
	project game.Projector
	ai      session.MoveRequester
	archive matchArchive

	mu    sync.Mutex
	rooms map[string]*Room
}

// New builds a coordinator. The archive may be nil, in which case finished
// games are simply not recorded.
func New(logger *slog.Logger, engines game.Factory, project game.Projector, requests session.MoveRequester, archive matchArchive) *Coordinator {
	return &Coordinator{
		logger:  logger.With("component", "coordinator"),
		engines: engines,
		project: project,
		ai:      requests,
		archive: archive,
		rooms:   make(map[string]*Room),
	}
}

// CreateRoom opens a networked room in the waiting state. The creator takes
// the red seat and receives the join key for the second participant.
func (that *Coordinator) CreateRoom(conn Conn) (*Room, error) {
	base := session.New(that.logger, that.engines(), that.project)

	room := &Room{
		logger: that.logger,
		kind:   KindVersus,
		base:   base,
		status: StatusWaiting,
		occupants: []occupant{
			{conn: conn, player: entity.PlayerRed},
		},
	}

	that.register(room)
	base.SetGameOverHandler(that.gameOverHandler(room))

	// the key reaches the creator before the first view push
	if err := conn.SendKey(room.key); err != nil {
		that.logger.Error("failed to deliver room key", "key", room.key, "error", err)
	}

	base.Attach(conn)

	that.logger.Info("room created", "key", room.key)

	return room, nil
}

// JoinRoom admits a connection into the waiting room identified by key.
func (that *Coordinator) JoinRoom(key string, conn Conn) (*Room, error) {
	that.mu.Lock()
	room, ok := that.rooms[key]
	that.mu.Unlock()

	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	if err := room.join(conn); err != nil {
		return nil, err
	}

	that.logger.Info("room joined", "key", key)

	return room, nil
}

// CreateAIRoom opens a room that is active immediately: the second slot is
// filled by the AI delegate, no key exchange is needed.
func (that *Coordinator) CreateAIRoom(conn Conn, difficulty string) (*Room, error) {
	solo := session.NewSinglePlayer(that.logger, that.engines(), that.project, that.ai, difficulty)

	room := &Room{
		logger: that.logger,
		kind:   KindWithAI,
		base:   solo.Session,
		solo:   solo,
		status: StatusActive,
		occupants: []occupant{
			{conn: conn, player: solo.HumanPlayer()},
		},
	}

	that.register(room)
	solo.SetGameOverHandler(that.gameOverHandler(room))
	solo.Attach(conn)

	that.logger.Info("ai room created", "key", room.key, "player", solo.HumanPlayer())

	return room, nil
}

// CreateLocalRoom opens a single-device room: one connection plays both
// colors on one board.
func (that *Coordinator) CreateLocalRoom(conn Conn) (*Room, error) {
	local := session.NewLocal(that.logger, that.engines(), that.project)

	room := &Room{
		logger: that.logger,
		kind:   KindLocal,
		base:   local.Session,
		solo:   local,
		status: StatusActive,
		occupants: []occupant{
			{conn: conn, player: entity.PlayerRed},
		},
	}

	that.register(room)
	local.Attach(conn)

	return room, nil
}

// CloseRoom removes the room from the registry and releases its session.
// Closing an unknown or already-closed key is a no-op.
func (that *Coordinator) CloseRoom(key string) {
	that.closeRoom(key, "")
}

// Disconnect tears the room down after a participant drops; the surviving
// participant is told the opponent is out. There is no rejoining a key.
func (that *Coordinator) Disconnect(key, connID string) {
	that.closeRoom(key, connID)
}

func (that *Coordinator) closeRoom(key, leaverID string) {
	that.mu.Lock()
	room, ok := that.rooms[key]
	if ok {
		delete(that.rooms, key)
	}
	that.mu.Unlock()

	if !ok {
		return
	}

	room.close(leaverID)
	that.logger.Info("room closed", "key", key)
}

// Room looks a room up by key.
func (that *Coordinator) Room(key string) (*Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[key]

	return room, ok
}

// ActiveRooms reports how many rooms are registered.
func (that *Coordinator) ActiveRooms() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.rooms)
}

func (that *Coordinator) register(room *Room) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for {
		key := pkg.GenerateRoomKey()
		if _, taken := that.rooms[key]; taken {
			continue
		}

		room.key = key
		that.rooms[key] = room

		return
	}
}

func (that *Coordinator) gameOverHandler(room *Room) func(winner entity.Player) {
	return func(winner entity.Player) {
		record := &entity.MatchRecord{
			Key:        room.Key(),
			Winner:     winner,
			Moves:      room.Moves(),
			FinishedAt: time.Now().UTC(),
		}

		that.closeRoom(room.Key(), "")
		that.archiveMatch(record)
	}
}

func (that *Coordinator) archiveMatch(record *entity.MatchRecord) {
	if that.archive == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if err := that.archive.CreateOrUpdate(ctx, record); err != nil {
		that.logger.Error("failed to archive match", "key", record.Key, "error", err)
		return
	}

	that.logger.Info("match archived", "key", record.Key, "winner", record.Winner, "moves", record.Moves)
}
