package entity

import "math/rand"

const (
	PlayerRed  Player = "red"
	PlayerBlue Player = "blue"
)

// Player is a color tag, not an identity: connections claim a color and the
// session checks the claim against the engine's turn.
type Player string

func (that Player) Invert() Player {
	if that == PlayerRed {
		return PlayerBlue
	}
	return PlayerRed
}

func (that Player) IsValid() bool {
	return that == PlayerRed || that == PlayerBlue
}

// RandomPlayer picks a color with a uniform unbiased choice.
func RandomPlayer() Player {
	if rand.Intn(2) == 0 { //nolint: gosec // side assignment doesn't need a crypto source
		return PlayerRed
	}
	return PlayerBlue
}
