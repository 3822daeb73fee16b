package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

// Screen layout. Every grid cell is two columns wide so the boards look
// roughly square in a terminal.
const (
	labelWidth = 3
	cellWidth  = 2
	boardWidth = labelWidth + mb.GridSize*cellWidth
	boardGap   = 4

	titleY   = 0
	headerY  = 1
	gridY    = 2
	statusY  = gridY + mb.GridSize + 1
	fleetY   = statusY + 1
	messageY = fleetY + 1
	helpY    = messageY + 1
)

const helpText = "arrows move  tab switch board  space/enter click  s start  c confirm  r reset  q quit"

// Cursor is the cell keyboard clicks act on.
type Cursor struct {
	Board       int
	Coordinates mb.Coordinates
}

func boardLeft(board int) int {
	return board * (boardWidth + boardGap)
}

// CellPosition is the screen position of the left column of a grid cell.
func CellPosition(board int, c mb.Coordinates) (x, y int) {
	return boardLeft(board) + labelWidth + c.Col*cellWidth, gridY + c.Row
}

// CellAt maps a screen position back to a grid cell. ok is false outside
// both grids.
func CellAt(x, y int) (board int, c mb.Coordinates, ok bool) {
	row := y - gridY
	for board = 0; board < mb.NumPlayers; board++ {
		left := boardLeft(board) + labelWidth
		if x < left || x >= left+mb.GridSize*cellWidth {
			continue
		}
		c, err := mb.NewCoordinates(row, (x-left)/cellWidth)
		if err != nil {
			return 0, mb.Coordinates{}, false
		}
		return board, c, true
	}
	return 0, mb.Coordinates{}, false
}

var (
	styleDefault = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleInvalid = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func cellGlyph(state mb.CellState) rune {
	switch state {
	case mb.CellShip:
		return '#'
	case mb.CellHit:
		return 'X'
	case mb.CellMiss:
		return 'o'
	default:
		return '~'
	}
}

func cellStyle(state mb.CellState) tcell.Style {
	switch state {
	case mb.CellShip:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case mb.CellHit:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	case mb.CellMiss:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	}
}

// Renderer draws snapshots to a Screen.
type Renderer struct {
	screen Screen
}

func NewRenderer(screen Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws both boards, the status line and the last message.
func (r *Renderer) Render(snap mb.Snapshot, cursor Cursor, message string) {
	r.screen.Clear()

	for board := range snap.Boards {
		r.renderBoard(board, snap.Boards[board], cursor)
	}

	statusStyle := styleStatus
	if snap.Phase == mb.PhasePlacement {
		if !snap.Boards[snap.CurrentPlayer].Fleet.Valid {
			statusStyle = styleInvalid
		}
		r.drawText(0, fleetY, FleetLine(), styleLabel)
	}
	r.drawText(0, statusY, StatusLine(snap), statusStyle)
	if message != "" {
		r.drawText(0, messageY, message, styleDefault)
	}
	r.drawText(0, helpY, helpText, styleLabel)

	r.screen.Show()
}

func (r *Renderer) renderBoard(board int, bs mb.BoardSnapshot, cursor Cursor) {
	left := boardLeft(board)

	r.drawText(left, titleY, fmt.Sprintf("player %d  alive %d", board+1, bs.Alive), styleTitle)
	for col := 0; col < mb.GridSize; col++ {
		r.screen.SetContent(left+labelWidth+col*cellWidth, headerY, rune('A'+col), nil, styleLabel)
	}

	for row := 0; row < mb.GridSize; row++ {
		r.drawText(left, gridY+row, fmt.Sprintf("%2d", row+1), styleLabel)
		for col := 0; col < mb.GridSize; col++ {
			c := mb.Coordinates{Row: row, Col: col}
			state := bs.Cells[row][col]
			style := cellStyle(state)
			if cursor.Board == board && cursor.Coordinates == c {
				style = style.Reverse(true)
			}
			x, y := CellPosition(board, c)
			r.screen.SetContent(x, y, cellGlyph(state), nil, style)
		}
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// StatusLine summarises the phase for the players in front of the screen.
func StatusLine(snap mb.Snapshot) string {
	player := snap.CurrentPlayer + 1

	switch snap.Phase {
	case mb.PhaseInit:
		return "press s to start a new game"

	case mb.PhasePlacement:
		fleet := snap.Boards[snap.CurrentPlayer].Fleet
		state := "fleet ready, press c to confirm"
		if !fleet.Valid {
			state = "fleet: " + fleet.Reason
		}
		return fmt.Sprintf("placement  player %d places ships  %s", player, state)

	case mb.PhaseShooting:
		return fmt.Sprintf("shooting  player %d fires at player %d", player, opponent(snap.CurrentPlayer)+1)

	case mb.PhaseFinal:
		alive := make([]string, 0, len(snap.Boards))
		for _, bs := range snap.Boards {
			alive = append(alive, fmt.Sprint(bs.Alive))
		}
		return fmt.Sprintf("player %d wins  alive %s  press r to reset", player, strings.Join(alive, "/"))

	default:
		return snap.PhaseName
	}
}

// FleetLine lists the ships every player has to place.
func FleetLine() string {
	classes := make([]string, 0, len(mb.Fleet))
	for _, class := range mb.Fleet {
		classes = append(classes, fmt.Sprintf("%s %d", class.Name, class.Length))
	}
	return "ships: " + strings.Join(classes, "  ")
}

func opponent(player int) int {
	return (player + 1) % mb.NumPlayers
}
