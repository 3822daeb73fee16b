package battleship

// BoardSnapshot is a copy of one board as seen by a given viewer.
type BoardSnapshot struct {
	Cells       [GridSize][GridSize]CellState `json:"cells"`
	Alive       int                           `json:"alive"`
	SunkenShips int                           `json:"sunken_ships"`
	Fleet       FleetValidation               `json:"fleet"`
}

// Snapshot is an immutable copy of the game state, safe to hand to a
// renderer while the game keeps changing.
type Snapshot struct {
	GameUuid      string                    `json:"game_uuid"`
	Phase         Phase                     `json:"phase"`
	PhaseName     string                    `json:"phase_name"`
	CurrentPlayer int                       `json:"current_player"`
	Boards        [NumPlayers]BoardSnapshot `json:"boards"`
}

// Snapshot reveals ships on the board of viewer only. A viewer of -1 hides
// both fleets; NumPlayers or more reveals both.
func (g *Game) Snapshot(viewer int) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot(viewer)
}

// HotSeatSnapshot is the snapshot a shared screen should show right now.
func (g *Game) HotSeatSnapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot(HotSeatViewer(g.phase, g.currentPlayer))
}

func (g *Game) snapshot(viewer int) Snapshot {
	snap := Snapshot{
		GameUuid:      g.uuid,
		Phase:         g.phase,
		PhaseName:     g.phase.String(),
		CurrentPlayer: g.currentPlayer,
	}

	for i, board := range g.boards {
		owner := viewer == i || viewer >= NumPlayers
		bs := BoardSnapshot{
			Alive:       board.CountAlive(),
			SunkenShips: board.SunkenShips(),
		}
		if owner {
			bs.Fleet = board.ValidateFleet()
		}
		for row := 0; row < GridSize; row++ {
			for col := 0; col < GridSize; col++ {
				bs.Cells[row][col] = board.VisibleCellState(Coordinates{Row: row, Col: col}, owner)
			}
		}
		snap.Boards[i] = bs
	}
	return snap
}

// HotSeatViewer is whose ships a shared screen should reveal: the player
// whose turn it is, nobody before the game starts and everyone once it
// is over.
func HotSeatViewer(phase Phase, currentPlayer int) int {
	switch phase {
	case PhasePlacement, PhaseShooting:
		return currentPlayer
	case PhaseFinal:
		return NumPlayers
	default:
		return -1
	}
}
