package entity

import "time"

// MatchRecord is the archive row written when a room's game reaches a
// terminal outcome.
type MatchRecord struct {
	Key        string    `json:"key"`
	Winner     Player    `json:"winner,omitempty"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}
