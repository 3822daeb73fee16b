package connection

import "errors"

var errSignalAbsent = errors.New("incoming req payload must contain 'code' field")

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID

	// Commands for the game of the session
	CodeStartGame
	CodeClickCell
	CodeConfirmPlacement
	CodeResetGame

	// Ask for the current state without changing it
	CodeSnapshot

	// Sent once, right after the shot that sinks the last ship
	CodeEndGame

	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent

	// board, row or col of a click is not on the grid
	CodeInvalidCoordinates
)

// Signal is the part every incoming message shares. Code is nil when the
// field is missing.
type Signal struct {
	Code *uint8 `json:"code"`
}
