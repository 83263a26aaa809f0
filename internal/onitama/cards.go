package onitama

import "sort"

// offset is a card move relative to the piece, from red's perspective
// (positive Y toward blue's side). Blue plays the cards rotated.
type offset struct {
	X int
	Y int
}

// cardMoves holds the sixteen base-game movement cards.
var cardMoves = map[string][]offset{
	"tiger":    {{0, 2}, {0, -1}},
	"dragon":   {{-2, 1}, {2, 1}, {-1, -1}, {1, -1}},
	"frog":     {{-2, 0}, {-1, 1}, {1, -1}},
	"rabbit":   {{1, 1}, {2, 0}, {-1, -1}},
	"crab":     {{0, 1}, {-2, 0}, {2, 0}},
	"elephant": {{-1, 1}, {1, 1}, {-1, 0}, {1, 0}},
	"goose":    {{-1, 1}, {-1, 0}, {1, 0}, {1, -1}},
	"rooster":  {{-1, 0}, {-1, -1}, {1, 0}, {1, 1}},
	"monkey":   {{-1, 1}, {1, 1}, {-1, -1}, {1, -1}},
	"mantis":   {{-1, 1}, {1, 1}, {0, -1}},
	"horse":    {{-1, 0}, {0, 1}, {0, -1}},
	"ox":       {{1, 0}, {0, 1}, {0, -1}},
	"crane":    {{0, 1}, {-1, -1}, {1, -1}},
	"boar":     {{-1, 0}, {1, 0}, {0, 1}},
	"eel":      {{-1, 1}, {-1, -1}, {1, 0}},
	"cobra":    {{-1, 0}, {1, 1}, {1, -1}},
}

func cardNames() []string {
	names := make([]string, 0, len(cardMoves))
	for name := range cardMoves {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
