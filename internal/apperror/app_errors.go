package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", ErrIllegalMove)
	ErrInvalidCell  = fmt.Errorf("%w: invalid cell index", ErrIllegalMove)
	ErrInvalidMark  = errors.New("invalid mark")
	ErrNoLegalMove  = errors.New("no legal moves left")

	ErrNotActive    = errors.New("game is not active")
	ErrNotAPlayer   = errors.New("not a player of this game")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrStaleState   = errors.New("game state changed since it was read")
	ErrGameNotFound = errors.New("game not found")

	ErrGameAlreadyExists = errors.New("game already exists")
	ErrNoRemoteGame      = errors.New("not in a remote game")

	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownMode       = errors.New("unknown game mode")
)
