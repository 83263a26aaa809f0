package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/onitama-backend/internal/coordinator"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
)

type roomCoordinator interface {
	CreateRoom(conn coordinator.Conn) (*coordinator.Room, error)
	JoinRoom(key string, conn coordinator.Conn) (*coordinator.Room, error)
	CreateAIRoom(conn coordinator.Conn, difficulty string) (*coordinator.Room, error)
	CreateLocalRoom(conn coordinator.Conn) (*coordinator.Room, error)
	Disconnect(key, connID string)
}

// Server is the connection gateway: it admits websocket connections into
// rooms and pumps messages between each connection and its room.
type Server struct {
	logger   *slog.Logger
	coord    roomCoordinator
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, coord roomCoordinator) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		coord:  coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", that.handleCreate)
	mux.HandleFunc("GET /ws/ai", that.handleCreateAI)
	mux.HandleFunc("GET /ws/local", that.handleCreateLocal)
	mux.HandleFunc("GET /ws/{key}", that.handleJoin)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleCreate opens a networked room; the creator waits for an opponent.
func (that *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	client, ok := that.upgrade(w, r)
	if !ok {
		return
	}

	room, err := that.coord.CreateRoom(client)
	if err != nil {
		that.reject(client, err)
		return
	}

	that.serveRoom(room, client)
}

// handleJoin admits a connection into an existing room by key.
func (that *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	client, ok := that.upgrade(w, r)
	if !ok {
		return
	}

	room, err := that.coord.JoinRoom(key, client)
	if err != nil {
		that.reject(client, err)
		return
	}

	that.serveRoom(room, client)
}

// handleCreateAI opens a room against the AI delegate; the difficulty label
// comes from the query string.
func (that *Server) handleCreateAI(w http.ResponseWriter, r *http.Request) {
	difficulty := r.URL.Query().Get("difficulty")

	client, ok := that.upgrade(w, r)
	if !ok {
		return
	}

	room, err := that.coord.CreateAIRoom(client, difficulty)
	if err != nil {
		that.reject(client, err)
		return
	}

	that.serveRoom(room, client)
}

// handleCreateLocal opens a single-device room.
func (that *Server) handleCreateLocal(w http.ResponseWriter, r *http.Request) {
	client, ok := that.upgrade(w, r)
	if !ok {
		return
	}

	room, err := that.coord.CreateLocalRoom(client)
	if err != nil {
		that.reject(client, err)
		return
	}

	that.serveRoom(room, client)
}

func (that *Server) upgrade(w http.ResponseWriter, r *http.Request) (*Client, bool) {
	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.logger.Error("failed to upgrade connection", "error", err)
		return nil, false
	}

	client := newClient(that.logger, conn)
	go client.writePump()

	return client, true
}

// reject reports an admission failure to the connection and closes it; the
// registry is left untouched.
func (that *Server) reject(client *Client, err error) {
	if sendErr := client.SendError(err.Error()); sendErr != nil {
		that.logger.Error("failed to send admission error", "error", sendErr)
	}

	client.shutdown()
}

// serveRoom pumps the connection's messages into its room until the
// connection drops, then tears the room down. There is no rejoining.
func (that *Server) serveRoom(room *coordinator.Room, client *Client) {
	client.readPump(func(msg *Message) {
		that.route(room, client, msg)
	})

	that.coord.Disconnect(room.Key(), client.ID())
	client.shutdown()
}

func (that *Server) route(room *coordinator.Room, client *Client, msg *Message) {
	var err error

	switch msg.Action {
	case ActionGameMove:
		if len(msg.Payload) == 0 {
			err = errors.New("move payload is required")
			break
		}
		err = room.HandleMove(client.ID(), entity.Move(msg.Payload))
	case ActionGameReset:
		err = room.HandleReset(client.ID())
	default:
		err = fmt.Errorf("unknown action %q", msg.Action)
	}

	if err == nil {
		return
	}

	// failures are scoped to the offending connection, never broadcast
	if sendErr := client.SendError(err.Error()); sendErr != nil {
		that.logger.Error("failed to send error reply", "error", sendErr)
	}
}
