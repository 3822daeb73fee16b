package connection

import (
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

// RespSnapshot is sent after every command, whether or not it changed
// anything.
type RespSnapshot struct {
	Changed  bool           `json:"changed"`
	Shot     *mb.ShotResult `json:"shot,omitempty"`
	Snapshot mb.Snapshot    `json:"snapshot"`
}

type RespEndGame struct {
	Winner int                `json:"winner"`
	Alive  [mb.NumPlayers]int `json:"alive"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
