package websocket

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/onitama-backend/internal/ai"
	"github.com/rocketscienceinc/onitama-backend/internal/coordinator"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
	"github.com/rocketscienceinc/onitama-backend/internal/game"
)

// relayEngine accepts every move and alternates the turn, red first. It keeps
// the gateway tests about message plumbing, not game rules.
type relayEngine struct {
	mu    sync.Mutex
	turn  entity.Player
	moves int
}

func (that *relayEngine) Apply(_ entity.Move) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.moves++
	that.turn = that.turn.Invert()

	return nil
}

func (that *relayEngine) CurrentTurn() (entity.Player, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.turn, true
}

func (that *relayEngine) Snapshot() entity.State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.State(fmt.Sprintf(`{"moves":%d}`, that.moves))
}

func (that *relayEngine) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.moves = 0
	that.turn = entity.PlayerRed
}

type silentRequester struct{}

func (silentRequester) Submit(_ ai.Request, _ ai.Callback) error { return nil }

func newTestGateway(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := game.Factory(func() game.Engine { return &relayEngine{turn: entity.PlayerRed} })
	coord := coordinator.New(logger, factory, game.Identity, silentRequester{}, nil)

	server := New(logger, coord)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", server.handleCreate)
	mux.HandleFunc("GET /ws/ai", server.handleCreateAI)
	mux.HandleFunc("GET /ws/local", server.handleCreateLocal)
	mux.HandleFunc("GET /ws/{key}", server.handleJoin)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))

	return &msg
}

func writeMessage(t *testing.T, conn *websocket.Conn, msg Message) {
	t.Helper()

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestMessage_Envelope(t *testing.T) {
	// Given: a move envelope with an opaque payload
	raw := json.RawMessage(`{"card":"tiger","from":{"x":2,"y":0},"to":{"x":2,"y":2}}`)

	data, err := json.Marshal(Message{Action: ActionGameMove, Payload: raw})
	require.NoError(t, err)

	// When: it is decoded again
	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Then: the payload passed through byte for byte
	assert.Equal(t, ActionGameMove, decoded.Action)
	assert.JSONEq(t, string(raw), string(decoded.Payload))
}

func TestServer_VersusFlow(t *testing.T) {
	srv := newTestGateway(t)

	// Given: a creator connected to /ws
	red := dial(t, srv, "/ws")

	// Then: the first message carries the room key, the second the board
	created := readMessage(t, red)
	require.Equal(t, ActionRoomCreated, created.Action)

	var payload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &payload))
	require.NotEmpty(t, payload.Key)

	view := readMessage(t, red)
	require.Equal(t, ActionGameView, view.Action)

	// When: an opponent joins by key
	blue := dial(t, srv, "/ws/"+payload.Key)
	require.Equal(t, ActionGameView, readMessage(t, blue).Action)
	require.Equal(t, ActionGameView, readMessage(t, red).Action) // join re-broadcast

	// When: the creator moves
	writeMessage(t, red, Message{Action: ActionGameMove, Payload: json.RawMessage(`{"n":1}`)})

	// Then: both sides receive the refreshed view
	require.Equal(t, ActionGameView, readMessage(t, red).Action)
	require.Equal(t, ActionGameView, readMessage(t, blue).Action)

	// When: the creator moves again out of turn
	writeMessage(t, red, Message{Action: ActionGameMove, Payload: json.RawMessage(`{"n":2}`)})

	// Then: only the offender hears about it
	errMsg := readMessage(t, red)
	require.Equal(t, ActionError, errMsg.Action)

	var errPayload ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &errPayload))
	assert.Contains(t, errPayload.Message, "not your turn")
}

func TestServer_OpponentLeaves(t *testing.T) {
	srv := newTestGateway(t)

	// Given: an active room
	red := dial(t, srv, "/ws")
	created := readMessage(t, red)
	require.Equal(t, ActionRoomCreated, created.Action)
	readMessage(t, red) // initial view

	var payload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &payload))

	blue := dial(t, srv, "/ws/"+payload.Key)
	readMessage(t, blue)
	readMessage(t, red)

	// When: the opponent disconnects
	require.NoError(t, blue.Close())

	// Then: the survivor is told the opponent is out
	leave := readMessage(t, red)
	require.Equal(t, ActionGameLeave, leave.Action)

	var leavePayload LeavePayload
	require.NoError(t, json.Unmarshal(leave.Payload, &leavePayload))
	assert.Equal(t, coordinator.LeaveStatusOpponentOut, leavePayload.Status)
}

func TestServer_JoinUnknownKey(t *testing.T) {
	srv := newTestGateway(t)

	// When: joining a key no room holds
	conn := dial(t, srv, "/ws/abcdef12")

	// Then: the connection is told and closed
	msg := readMessage(t, conn)
	require.Equal(t, ActionError, msg.Action)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Contains(t, payload.Message, "room not found")
}

func TestServer_LocalRoom(t *testing.T) {
	srv := newTestGateway(t)

	// Given: a single-device connection
	conn := dial(t, srv, "/ws/local")
	require.Equal(t, ActionGameView, readMessage(t, conn).Action)

	// When: both colors are played from the same connection
	writeMessage(t, conn, Message{Action: ActionGameMove, Payload: json.RawMessage(`{"n":1}`)})
	require.Equal(t, ActionGameView, readMessage(t, conn).Action)

	writeMessage(t, conn, Message{Action: ActionGameMove, Payload: json.RawMessage(`{"n":2}`)})
	require.Equal(t, ActionGameView, readMessage(t, conn).Action)

	// And: reset wipes the board
	writeMessage(t, conn, Message{Action: ActionGameReset})
	view := readMessage(t, conn)
	require.Equal(t, ActionGameView, view.Action)

	var decoded entity.View
	require.NoError(t, json.Unmarshal(view.Payload, &decoded))
	assert.JSONEq(t, `{"moves":0}`, string(decoded.State))
}

func TestServer_BadFrames(t *testing.T) {
	srv := newTestGateway(t)

	conn := dial(t, srv, "/ws/local")
	readMessage(t, conn) // initial view

	t.Run("Malformed JSON is answered, not fatal", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		msg := readMessage(t, conn)
		require.Equal(t, ActionError, msg.Action)
	})

	t.Run("Unknown actions are answered", func(t *testing.T) {
		writeMessage(t, conn, Message{Action: "game:undo"})

		msg := readMessage(t, conn)
		require.Equal(t, ActionError, msg.Action)

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Contains(t, payload.Message, "unknown action")
	})

	t.Run("A move without a payload is answered", func(t *testing.T) {
		writeMessage(t, conn, Message{Action: ActionGameMove})

		msg := readMessage(t, conn)
		require.Equal(t, ActionError, msg.Action)
	})

	t.Run("The connection still works afterwards", func(t *testing.T) {
		writeMessage(t, conn, Message{Action: ActionGameMove, Payload: json.RawMessage(`{"n":1}`)})
		require.Equal(t, ActionGameView, readMessage(t, conn).Action)
	})
}
