package apperror

import "errors"

var (
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrIllegalMove     = errors.New("illegal move")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrRoomNotReady    = errors.New("room is waiting for an opponent")
	ErrRoomClosed      = errors.New("room is already closed")
	ErrNoMoveAvailable = errors.New("no move available")
)
