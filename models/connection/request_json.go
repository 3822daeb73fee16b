package connection

import (
	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

type ReqClickCell struct {
	Board int `json:"board"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// Command converts the request to a game command. It fails if the board
// does not exist or the cell is not on the grid.
func (r ReqClickCell) Command() (mb.ClickCell, error) {
	if r.Board < 0 || r.Board >= mb.NumPlayers {
		return mb.ClickCell{}, cerr.ErrBoardIndex(r.Board)
	}

	c, err := mb.NewCoordinates(r.Row, r.Col)
	if err != nil {
		return mb.ClickCell{}, err
	}
	return mb.ClickCell{Board: r.Board, Coordinates: c}, nil
}

// CommandFromCode maps the payload-less codes to their game command.
func CommandFromCode(code uint8) (mb.Command, bool) {
	switch code {
	case CodeStartGame:
		return mb.StartGame{}, true
	case CodeConfirmPlacement:
		return mb.ConfirmPlacement{}, true
	case CodeResetGame:
		return mb.ResetGame{}, true
	default:
		return nil, false
	}
}
