package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 32
)

var ErrSlowConsumer = errors.New("connection send buffer is full")

// Client is one websocket participant. Outbound messages go through a
// buffered channel drained by the write pump, so session pushes never block
// on a slow peer; a full buffer is a delivery failure, not a stall.
type Client struct {
	logger *slog.Logger
	id     string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *Client {
	return &Client{
		logger: logger,
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

func (that *Client) ID() string {
	return that.id
}

func (that *Client) SendView(view entity.View) error {
	return that.enqueue(ActionGameView, view)
}

func (that *Client) SendError(message string) error {
	return that.enqueue(ActionError, ErrorPayload{Message: message})
}

func (that *Client) SendKey(key string) error {
	return that.enqueue(ActionRoomCreated, RoomCreatedPayload{Key: key})
}

func (that *Client) SendLeave(status string) error {
	return that.enqueue(ActionGameLeave, LeavePayload{Status: status})
}

func (that *Client) enqueue(action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case that.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// shutdown closes the send channel once; the write pump drains what is queued
// and closes the underlying connection.
func (that *Client) shutdown() {
	that.once.Do(func() {
		close(that.send)
	})
}

// readPump pumps inbound messages into the handler until the connection
// drops. Malformed frames are answered with an error reply and skipped; they
// never reach a session.
func (that *Client) readPump(handle func(msg *Message)) {
	defer that.conn.Close()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Error("connection read failed", "error", err)
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			that.logger.Error("failed to unmarshal message", "error", err)
			if err = that.SendError("failed to decode message"); err != nil {
				that.logger.Error("failed to send decode error", "error", err)
			}
			continue
		}

		handle(&msg)
	}
}

// writePump drains the send channel to the peer and keeps the connection
// alive with pings.
func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
