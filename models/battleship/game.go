package battleship

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

const NumPlayers = 2

type Phase uint8

const (
	PhaseInit Phase = iota
	PhasePlacement
	PhaseShooting
	PhaseFinal
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhasePlacement:
		return "placement"
	case PhaseShooting:
		return "shooting"
	case PhaseFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Game is the authoritative state of one hot-seat match. Every exported
// method holds the game lock for its whole duration, so a Game may be
// shared between goroutines.
//
// Actions that are not legal in the current phase are ignored; they never
// return an error. A Game must be created with NewGame.
type Game struct {
	mu            sync.Mutex
	uuid          string
	phase         Phase
	boards        [NumPlayers]*Board
	currentPlayer int
}

func NewGame() *Game {
	g := &Game{uuid: uuid.NewString()[:6]}
	g.reset()
	return g
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) reset() {
	for i := range g.boards {
		g.boards[i] = NewBoard()
	}
	g.phase = PhaseInit
	g.currentPlayer = 0
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// CurrentPlayer is the placing player during placement, the attacker
// during shooting and the winner once the game is final.
func (g *Game) CurrentPlayer() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentPlayer
}

func (g *Game) Winner() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseFinal {
		return 0, false
	}
	return g.currentPlayer, true
}

func isValidBoard(board int) bool {
	return board >= 0 && board < NumPlayers
}

func (g *Game) HasShot(board int, c Coordinates) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return isValidBoard(board) && g.boards[board].HasShot(c)
}

func (g *Game) HasShip(board int, c Coordinates) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return isValidBoard(board) && g.boards[board].HasShip(c)
}

func (g *Game) CountAlive(board int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !isValidBoard(board) {
		return 0
	}
	return g.boards[board].CountAlive()
}

func (g *Game) ValidateFleet(board int) FleetValidation {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !isValidBoard(board) {
		return invalidFleet(ReasonNoShipsPlaced)
	}
	return g.boards[board].ValidateFleet()
}

func (g *Game) StartGame() Outcome {
	return g.Dispatch(StartGame{})
}

func (g *Game) ClickCell(board int, c Coordinates) Outcome {
	return g.Dispatch(ClickCell{Board: board, Coordinates: c})
}

func (g *Game) ConfirmPlacement() Outcome {
	return g.Dispatch(ConfirmPlacement{})
}

func (g *Game) ResetGame() Outcome {
	return g.Dispatch(ResetGame{})
}

// Dispatch applies cmd and reports what changed.
func (g *Game) Dispatch(cmd Command) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	before := g.phase
	var outcome Outcome

	switch cmd := cmd.(type) {
	case StartGame:
		outcome = g.startGame()
	case ClickCell:
		outcome = g.clickCell(cmd.Board, cmd.Coordinates)
	case ConfirmPlacement:
		outcome = g.confirmPlacement()
	case ResetGame:
		outcome = g.resetGame()
	}

	outcome.PreviousPhase = before
	outcome.Phase = g.phase
	outcome.CurrentPlayer = g.currentPlayer
	if before != g.phase {
		log.Printf("game %s: %s -> %s\tcurrent player: %d\n", g.uuid, before, g.phase, g.currentPlayer)
	}
	return outcome
}

func (g *Game) startGame() Outcome {
	if g.phase != PhaseInit {
		return Outcome{}
	}
	g.phase = PhasePlacement
	return Outcome{Changed: true}
}

func (g *Game) clickCell(board int, c Coordinates) Outcome {
	if !isValidBoard(board) || !c.InGrid() {
		return Outcome{}
	}

	switch g.phase {
	case PhasePlacement:
		if board != g.currentPlayer {
			return Outcome{}
		}
		g.boards[board].ToggleShip(c)
		return Outcome{Changed: true}

	case PhaseShooting:
		if board == g.currentPlayer {
			return Outcome{}
		}
		target := g.boards[board]
		if target.HasShot(c) {
			return Outcome{}
		}

		// Both failure cases are checked above.
		hit, _ := target.ReceiveShot(c)
		shot := &ShotResult{Board: board, Coordinates: c, Hit: hit}
		if hit {
			for _, ship := range target.Ships() {
				if containsCoordinates(ship, c) && target.IsSunk(ship) {
					shot.Sunk = ship
					break
				}
			}
		}

		switch {
		case !hit:
			g.nextPlayer()
		case target.CountAlive() == 0:
			g.phase = PhaseFinal
			log.Printf("game %s: player %d wins\n", g.uuid, g.currentPlayer)
		}
		return Outcome{Changed: true, Shot: shot}

	default:
		return Outcome{}
	}
}

func (g *Game) confirmPlacement() Outcome {
	if g.phase != PhasePlacement {
		return Outcome{}
	}
	if !g.boards[g.currentPlayer].ValidateFleet().Valid {
		return Outcome{}
	}
	if wasLastPlayer := g.nextPlayer(); wasLastPlayer {
		g.phase = PhaseShooting
	}
	return Outcome{Changed: true}
}

func (g *Game) resetGame() Outcome {
	g.reset()
	return Outcome{Changed: true}
}

// nextPlayer passes the turn and reports whether it wrapped around to the
// first player.
func (g *Game) nextPlayer() bool {
	if g.currentPlayer < NumPlayers-1 {
		g.currentPlayer++
		return false
	}
	g.currentPlayer = 0
	return true
}

func containsCoordinates(coords []Coordinates, c Coordinates) bool {
	for _, other := range coords {
		if other == c {
			return true
		}
	}
	return false
}
