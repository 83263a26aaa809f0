package websocket

import "encoding/json"

const (
	ActionRoomCreated = "room:created"
	ActionGameView    = "game:view"
	ActionGameMove    = "game:move"
	ActionGameReset   = "game:reset"
	ActionGameLeave   = "game:leave"
	ActionError       = "error"
)

// Message is the self-describing wire envelope: an action tag plus an opaque
// payload. Move payloads pass through to the rule engine untouched.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoomCreatedPayload struct {
	Key string `json:"key"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type LeavePayload struct {
	Status string `json:"status"`
}
