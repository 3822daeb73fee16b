package error

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds  = errors.New("coordinates out of grid bound")
	ErrInvalidKey   = errors.New("invalid coordinates key")
	ErrAlreadyShot  = errors.New("position already shot")
	ErrInvalidBoard = errors.New("invalid board index")
)

func ErrCoordinatesOutOfBounds(row, col, gridSize int) error {
	return fmt.Errorf("%w\trow: %d\tcol: %d\tgrid size: %d", ErrOutOfBounds, row, col, gridSize)
}

func ErrCoordinatesKey(key string) error {
	return fmt.Errorf("%w: %q", ErrInvalidKey, key)
}

func ErrPositionAlreadyShot(row, col int) error {
	return fmt.Errorf("%w by the attacker in previous rounds\trow: %d\tcol: %d", ErrAlreadyShot, row, col)
}

func ErrBoardIndex(board int) error {
	return fmt.Errorf("%w: %d", ErrInvalidBoard, board)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session with this id is nil, id: %s", sessionId)
}
