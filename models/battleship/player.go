package battleship

import (
	"sort"

	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
)

type CellState uint8

const (
	CellWater CellState = iota
	CellShip
	CellHit
	CellMiss
)

func (s CellState) String() string {
	switch s {
	case CellWater:
		return "water"
	case CellShip:
		return "ship"
	case CellHit:
		return "hit"
	case CellMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// Board is one player's grid: where their ships are and where the
// opponent has fired. Shots are never removed. The zero Board is empty
// and ready to use.
type Board struct {
	ships map[Coordinates]struct{}
	shots map[Coordinates]struct{}
}

func NewBoard() *Board {
	return &Board{
		ships: make(map[Coordinates]struct{}, 17),
		shots: make(map[Coordinates]struct{}, GridSize*GridSize),
	}
}

func (b *Board) HasShot(c Coordinates) bool {
	_, prs := b.shots[c]
	return prs
}

func (b *Board) HasShip(c Coordinates) bool {
	_, prs := b.ships[c]
	return prs
}

// ToggleShip places a ship cell at c, or removes it if one is there.
// Cells off the grid are ignored. Legality of the arrangement is only
// checked by ValidateFleet.
func (b *Board) ToggleShip(c Coordinates) {
	if !c.InGrid() {
		return
	}
	if b.HasShip(c) {
		delete(b.ships, c)
		return
	}
	if b.ships == nil {
		b.ships = make(map[Coordinates]struct{}, 17)
	}
	b.ships[c] = struct{}{}
}

// ReceiveShot records a shot at c and reports whether it hit a ship.
func (b *Board) ReceiveShot(c Coordinates) (bool, error) {
	if !c.InGrid() {
		return false, cerr.ErrCoordinatesOutOfBounds(c.Row, c.Col, GridSize)
	}
	if b.HasShot(c) {
		return false, cerr.ErrPositionAlreadyShot(c.Row, c.Col)
	}
	if b.shots == nil {
		b.shots = make(map[Coordinates]struct{}, GridSize*GridSize)
	}
	b.shots[c] = struct{}{}
	return b.HasShip(c), nil
}

// CountAlive is the number of ship cells not shot yet.
func (b *Board) CountAlive() int {
	alive := 0
	for c := range b.ships {
		if !b.HasShot(c) {
			alive++
		}
	}
	return alive
}

func (b *Board) CellState(c Coordinates) CellState {
	switch {
	case b.HasShot(c) && b.HasShip(c):
		return CellHit
	case b.HasShot(c):
		return CellMiss
	case b.HasShip(c):
		return CellShip
	default:
		return CellWater
	}
}

// VisibleCellState is CellState as seen by the owner of the board, or by
// the opponent when owner is false. Unshot ships look like water to the
// opponent.
func (b *Board) VisibleCellState(c Coordinates, owner bool) CellState {
	state := b.CellState(c)
	if state == CellShip && !owner {
		return CellWater
	}
	return state
}

func (b *Board) ShipCells() []Coordinates {
	return sortedKeys(b.ships)
}

func (b *Board) ShotCells() []Coordinates {
	return sortedKeys(b.shots)
}

func sortedKeys(set map[Coordinates]struct{}) []Coordinates {
	coords := make([]Coordinates, 0, len(set))
	for c := range set {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// Ships groups the ship cells into 8-connected components. Two ships that
// touch, even diagonally, come back as a single component.
func (b *Board) Ships() []Ship {
	visited := make(map[Coordinates]struct{}, len(b.ships))
	ships := make([]Ship, 0, len(Fleet))

	for _, start := range b.ShipCells() {
		if _, seen := visited[start]; seen {
			continue
		}

		ship := make(Ship, 0, 5)
		stack := []Coordinates{start}
		visited[start] = struct{}{}

		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ship = append(ship, current)

			for _, n := range current.Neighbours() {
				if _, seen := visited[n]; seen || !b.HasShip(n) {
					continue
				}
				visited[n] = struct{}{}
				stack = append(stack, n)
			}
		}

		ships = append(ships, Ship(sortedCoordinates(ship)))
	}
	return ships
}

// ValidateFleet checks the ship count, every ship's length and shape, and
// that no two ships touch.
func (b *Board) ValidateFleet() FleetValidation {
	if len(b.ships) == 0 && len(Fleet) != 0 {
		return invalidFleet(ReasonNoShipsPlaced)
	}

	ships := b.Ships()
	for _, ship := range ships {
		if !ship.IsLine() {
			return invalidFleet(reasonNotALine(ship.Representative()))
		}
	}

	if len(ships) != len(Fleet) {
		return invalidFleet(reasonShipCount(len(Fleet), len(ships)))
	}

	lengths := make([]int, 0, len(ships))
	for _, ship := range ships {
		lengths = append(lengths, ship.Len())
	}
	sort.Ints(lengths)

	for i, expected := range FleetLengths() {
		if lengths[i] != expected {
			return invalidFleet(ReasonShipLengthsIncorrect)
		}
	}
	return validFleet()
}

// IsSunk reports whether every cell of ship has been shot on this board.
func (b *Board) IsSunk(ship Ship) bool {
	for _, c := range ship {
		if !b.HasShot(c) {
			return false
		}
	}
	return true
}

// SunkenShips counts the ships whose cells were all hit.
func (b *Board) SunkenShips() int {
	sunken := 0
	for _, ship := range b.Ships() {
		if b.IsSunk(ship) {
			sunken++
		}
	}
	return sunken
}
