package entity

// Move is an opaque serialized payload understood only by the rule engine.
// The coordinator never looks inside it.
type Move []byte

func (that Move) MarshalJSON() ([]byte, error) {
	if len(that) == 0 {
		return []byte("null"), nil
	}
	return that, nil
}

func (that *Move) UnmarshalJSON(data []byte) error {
	*that = append((*that)[:0], data...)
	return nil
}

// State is the engine's full serialized game representation. Owned by exactly
// one session, mutated only through the engine.
type State []byte

func (that State) MarshalJSON() ([]byte, error) {
	if len(that) == 0 {
		return []byte("null"), nil
	}
	return that, nil
}

func (that *State) UnmarshalJSON(data []byte) error {
	*that = append((*that)[:0], data...)
	return nil
}

// View is the client-facing projection of a State. It is recomputed after
// every committed mutation and broadcast identically to every participant in
// a room; Player and LastMove are only filled in single-player sessions.
type View struct {
	Player   Player `json:"player,omitempty"`
	State    State  `json:"state"`
	LastMove Move   `json:"lastMove,omitempty"`
}
