package onitama

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/onitama-backend/internal/entity"
	"github.com/rocketscienceinc/onitama-backend/internal/game"
)

const boardSize = 5

const (
	emptyCell   = ""
	redStudent  = "red-student"
	redMaster   = "red-master"
	blueStudent = "blue-student"
	blueMaster  = "blue-master"
)

var (
	ErrGameFinished   = errors.New("game is already finished")
	ErrUnknownCard    = errors.New("card is not in hand")
	ErrNoPiece        = errors.New("no piece of yours on the source square")
	ErrBadDestination = errors.New("destination is not reachable with that card")
	ErrMustMove       = errors.New("a legal move exists, discarding is not allowed")
	ErrOutOfBoard     = errors.New("square is outside the board")
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// moveMessage is the wire shape of a move: play a card from a square to a
// square, or discard a card when no legal move exists.
type moveMessage struct {
	Card    string `json:"card"`
	From    point  `json:"from"`
	To      point  `json:"to"`
	Discard bool   `json:"discard,omitempty"`
}

// gameState is the full serialized board representation. Red's temple sits at
// (2,0), blue's at (2,4); red pawns advance toward higher Y.
type gameState struct {
	Board     [boardSize * boardSize]string `json:"board"`
	RedCards  [2]string                     `json:"redCards"`
	BlueCards [2]string                     `json:"blueCards"`
	Spare     string                        `json:"spare"`
	Turn      entity.Player                 `json:"turn,omitempty"`
	Winner    entity.Player                 `json:"winner,omitempty"`
}

// Engine implements the rule-engine contract for Onitama.
type Engine struct {
	state gameState
}

func NewEngine() game.Engine {
	that := &Engine{}
	that.Reset()

	return that
}

// Reset deals five cards from a shuffled deck and rebuilds the starting rows.
func (that *Engine) Reset() {
	deck := cardNames()
	rand.Shuffle(len(deck), func(i, j int) { //nolint: gosec // a game deal doesn't need a crypto source
		deck[i], deck[j] = deck[j], deck[i]
	})

	that.resetWithDeal([5]string{deck[0], deck[1], deck[2], deck[3], deck[4]})
}

// resetWithDeal is the deterministic core of Reset; the spare card decides
// who moves first.
func (that *Engine) resetWithDeal(deal [5]string) {
	state := gameState{
		RedCards:  [2]string{deal[0], deal[1]},
		BlueCards: [2]string{deal[2], deal[3]},
		Spare:     deal[4],
	}

	for x := range boardSize {
		state.Board[cellIndex(x, 0)] = redStudent
		state.Board[cellIndex(x, boardSize-1)] = blueStudent
	}
	state.Board[cellIndex(2, 0)] = redMaster
	state.Board[cellIndex(2, boardSize-1)] = blueMaster

	state.Turn = spareOwner(deal[4])

	that.state = state
}

func (that *Engine) CurrentTurn() (entity.Player, bool) {
	if that.state.Winner != "" {
		return "", false
	}

	return that.state.Turn, true
}

func (that *Engine) Snapshot() entity.State {
	raw, err := json.Marshal(that.state)
	if err != nil {
		// the state is plain data, marshaling cannot fail
		panic(err)
	}

	return entity.State(raw)
}

func (that *Engine) Apply(move entity.Move) error {
	if that.state.Winner != "" {
		return ErrGameFinished
	}

	var msg moveMessage
	if err := json.Unmarshal(move, &msg); err != nil {
		return fmt.Errorf("failed to decode move: %w", err)
	}

	mover := that.state.Turn

	hand := that.hand(mover)
	slot := -1
	for i, card := range hand {
		if card == msg.Card {
			slot = i
			break
		}
	}
	if slot == -1 {
		return fmt.Errorf("%w: %q", ErrUnknownCard, msg.Card)
	}

	if msg.Discard {
		return that.applyDiscard(mover, slot)
	}

	if !onBoard(msg.From) || !onBoard(msg.To) {
		return ErrOutOfBoard
	}

	if err := validatePieceMove(&that.state, mover, msg); err != nil {
		return err
	}

	that.movePiece(mover, msg)
	that.swapCard(mover, slot)
	that.endTurn()

	return nil
}

// applyDiscard exchanges a card with the spare and passes the turn. Allowed
// only when the mover has no legal piece move with either card.
func (that *Engine) applyDiscard(mover entity.Player, slot int) error {
	if len(pieceMoves(&that.state, mover)) > 0 {
		return ErrMustMove
	}

	that.swapCard(mover, slot)
	that.endTurn()

	return nil
}

func (that *Engine) movePiece(mover entity.Player, msg moveMessage) {
	from := cellIndex(msg.From.X, msg.From.Y)
	to := cellIndex(msg.To.X, msg.To.Y)

	target := that.state.Board[to]
	piece := that.state.Board[from]

	that.state.Board[to] = piece
	that.state.Board[from] = emptyCell

	// way of the stone: capturing the opposing master wins
	if target == masterOf(mover.Invert()) {
		that.state.Winner = mover
	}

	// way of the stream: walking your master onto the opposing temple wins
	if piece == masterOf(mover) && to == templeIndex(mover.Invert()) {
		that.state.Winner = mover
	}
}

func (that *Engine) swapCard(mover entity.Player, slot int) {
	hand := that.hand(mover)
	hand[slot], that.state.Spare = that.state.Spare, hand[slot]
}

func (that *Engine) endTurn() {
	if that.state.Winner != "" {
		that.state.Turn = ""
		return
	}

	that.state.Turn = that.state.Turn.Invert()
}

func (that *Engine) hand(player entity.Player) *[2]string {
	if player == entity.PlayerRed {
		return &that.state.RedCards
	}

	return &that.state.BlueCards
}

func validatePieceMove(state *gameState, mover entity.Player, msg moveMessage) error {
	piece := state.Board[cellIndex(msg.From.X, msg.From.Y)]
	if !ownPiece(piece, mover) {
		return ErrNoPiece
	}

	target := state.Board[cellIndex(msg.To.X, msg.To.Y)]
	if ownPiece(target, mover) {
		return fmt.Errorf("%w: own piece on the target square", ErrBadDestination)
	}

	want := offset{X: msg.To.X - msg.From.X, Y: msg.To.Y - msg.From.Y}
	for _, off := range cardMoves[msg.Card] {
		if oriented(off, mover) == want {
			return nil
		}
	}

	return ErrBadDestination
}

// pieceMoves enumerates every legal piece move for the player; an empty
// result means the player must discard.
func pieceMoves(state *gameState, player entity.Player) []moveMessage {
	var moves []moveMessage

	var hand [2]string
	if player == entity.PlayerRed {
		hand = state.RedCards
	} else {
		hand = state.BlueCards
	}

	for idx, piece := range state.Board {
		if !ownPiece(piece, player) {
			continue
		}

		from := point{X: idx % boardSize, Y: idx / boardSize}
		for _, card := range hand {
			for _, off := range cardMoves[card] {
				o := oriented(off, player)
				to := point{X: from.X + o.X, Y: from.Y + o.Y}
				if !onBoard(to) {
					continue
				}
				if ownPiece(state.Board[cellIndex(to.X, to.Y)], player) {
					continue
				}

				moves = append(moves, moveMessage{Card: card, From: from, To: to})
			}
		}
	}

	return moves
}

func oriented(off offset, player entity.Player) offset {
	if player == entity.PlayerRed {
		return off
	}

	return offset{X: -off.X, Y: -off.Y}
}

func ownPiece(piece string, player entity.Player) bool {
	if player == entity.PlayerRed {
		return piece == redStudent || piece == redMaster
	}

	return piece == blueStudent || piece == blueMaster
}

func masterOf(player entity.Player) string {
	if player == entity.PlayerRed {
		return redMaster
	}

	return blueMaster
}

func templeIndex(player entity.Player) int {
	if player == entity.PlayerRed {
		return cellIndex(2, 0)
	}

	return cellIndex(2, boardSize-1)
}

// spareOwner derives the first player from the spare card so that a deal
// fully determines the opening position.
func spareOwner(card string) entity.Player {
	sum := 0
	for _, r := range card {
		sum += int(r)
	}

	if sum%2 == 0 {
		return entity.PlayerRed
	}

	return entity.PlayerBlue
}

func cellIndex(x, y int) int {
	return y*boardSize + x
}

func onBoard(p point) bool {
	return p.X >= 0 && p.X < boardSize && p.Y >= 0 && p.Y < boardSize
}
