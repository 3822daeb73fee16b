package battleship

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
)

// Both grids are square and of this size. Not configurable at runtime.
const GridSize = 10

const (
	GridValidLowerBound = 0
	GridValidUpperBound = GridSize - 1
)

const keySeparator = ","

type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewCoordinates(row, col int) (Coordinates, error) {
	if !isInGrid(row, col) {
		return Coordinates{}, cerr.ErrCoordinatesOutOfBounds(row, col, GridSize)
	}
	return Coordinates{Row: row, Col: col}, nil
}

// MustCoordinates panics if row or col is outside the grid.
func MustCoordinates(row, col int) Coordinates {
	c, err := NewCoordinates(row, col)
	if err != nil {
		panic(err)
	}
	return c
}

// InGrid reports whether c lies on the board. Coordinates built as a
// struct literal skip the check NewCoordinates makes.
func (c Coordinates) InGrid() bool {
	return isInGrid(c.Row, c.Col)
}

func isInGrid(row, col int) bool {
	return row >= GridValidLowerBound && row <= GridValidUpperBound &&
		col >= GridValidLowerBound && col <= GridValidUpperBound
}

// Key is the canonical "<row>,<col>" form of the coordinates.
func (c Coordinates) Key() string {
	return strconv.Itoa(c.Row) + keySeparator + strconv.Itoa(c.Col)
}

func (c Coordinates) String() string {
	return c.Key()
}

// CoordinatesFromKey decodes a key produced by Key. Anything that does not
// re-encode to exactly the same string is rejected, which also covers
// padded, signed or out of range components.
func CoordinatesFromKey(key string) (Coordinates, error) {
	rowStr, colStr, found := strings.Cut(key, keySeparator)
	if !found {
		return Coordinates{}, cerr.ErrCoordinatesKey(key)
	}

	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return Coordinates{}, cerr.ErrCoordinatesKey(key)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return Coordinates{}, cerr.ErrCoordinatesKey(key)
	}

	c, err := NewCoordinates(row, col)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %w", cerr.ErrCoordinatesKey(key), err)
	}
	if c.Key() != key {
		return Coordinates{}, cerr.ErrCoordinatesKey(key)
	}
	return c, nil
}

// Less orders coordinates by row, then column.
func (c Coordinates) Less(other Coordinates) bool {
	if c.Row != other.Row {
		return c.Row < other.Row
	}
	return c.Col < other.Col
}

// Neighbours returns every in-grid cell at Chebyshev distance 1,
// diagonals included, ordered by row then column.
func (c Coordinates) Neighbours() []Coordinates {
	neighbours := make([]Coordinates, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if isInGrid(c.Row+dr, c.Col+dc) {
				neighbours = append(neighbours, Coordinates{Row: c.Row + dr, Col: c.Col + dc})
			}
		}
	}
	return neighbours
}

// AreColinear reports whether coords form one unbroken horizontal or
// vertical run with no duplicates. It says nothing about cells outside
// of coords.
func AreColinear(coords []Coordinates) bool {
	if len(coords) == 0 {
		return false
	}

	sorted := sortedCoordinates(coords)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return false
		}
	}

	first := sorted[0]
	sameRow, sameCol := true, true
	for i, c := range sorted {
		if c.Row != first.Row || c.Col != first.Col+i {
			sameRow = false
		}
		if c.Col != first.Col || c.Row != first.Row+i {
			sameCol = false
		}
	}
	return sameRow || sameCol
}

func sortedCoordinates(coords []Coordinates) []Coordinates {
	sorted := make([]Coordinates, len(coords))
	copy(sorted, coords)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return sorted
}
