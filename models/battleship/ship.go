package battleship

import (
	"fmt"
	"sort"
)

type ShipClass struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

// Every player must place exactly these ships.
var Fleet = []ShipClass{
	{Name: "carrier", Length: 5},
	{Name: "battleship", Length: 4},
	{Name: "cruiser", Length: 3},
	{Name: "submarine", Length: 3},
	{Name: "destroyer", Length: 2},
}

// FleetLengths returns the required ship lengths, ascending.
func FleetLengths() []int {
	lengths := make([]int, 0, len(Fleet))
	for _, class := range Fleet {
		lengths = append(lengths, class.Length)
	}
	sort.Ints(lengths)
	return lengths
}

const ReasonNoShipsPlaced = "no ships placed"
const ReasonShipLengthsIncorrect = "ship lengths incorrect"

// FleetValidation is the outcome of checking a placement. An invalid
// fleet is a normal state during placement, not an error.
type FleetValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func validFleet() FleetValidation {
	return FleetValidation{Valid: true}
}

func invalidFleet(reason string) FleetValidation {
	return FleetValidation{Valid: false, Reason: reason}
}

func reasonNotALine(representative Coordinates) string {
	return fmt.Sprintf("ship at %s is not a valid line", representative.Key())
}

func reasonShipCount(expected, found int) string {
	return fmt.Sprintf("expected %d ships, found %d", expected, found)
}

// Ship is one connected group of ship cells, sorted by row then column.
type Ship []Coordinates

func (sh Ship) Len() int {
	return len(sh)
}

// Representative is the smallest cell of the ship.
func (sh Ship) Representative() Coordinates {
	return sh[0]
}

func (sh Ship) IsLine() bool {
	return AreColinear(sh)
}
