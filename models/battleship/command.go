package battleship

// Command is the closed set of player actions a Game accepts.
type Command interface {
	isCommand()
}

type StartGame struct{}

type ClickCell struct {
	Board       int
	Coordinates Coordinates
}

type ConfirmPlacement struct{}

type ResetGame struct{}

func (StartGame) isCommand()        {}
func (ClickCell) isCommand()        {}
func (ConfirmPlacement) isCommand() {}
func (ResetGame) isCommand()        {}

var (
	_ Command = StartGame{}
	_ Command = ClickCell{}
	_ Command = ConfirmPlacement{}
	_ Command = ResetGame{}
)

type ShotResult struct {
	Board       int         `json:"board"`
	Coordinates Coordinates `json:"coordinates"`
	Hit         bool        `json:"hit"`

	// Cells of the ship this shot finished off, if any.
	Sunk Ship `json:"sunk,omitempty"`
}

// Outcome describes the effect of one dispatched command. Changed is false
// when the command was ignored.
type Outcome struct {
	Changed       bool
	PreviousPhase Phase
	Phase         Phase
	CurrentPlayer int
	Shot          *ShotResult
}

func (o Outcome) PhaseChanged() bool {
	return o.PreviousPhase != o.Phase
}

func (o Outcome) Started() bool {
	return o.PreviousPhase == PhaseInit && o.Phase == PhasePlacement
}

func (o Outcome) Finished() bool {
	return o.PreviousPhase != PhaseFinal && o.Phase == PhaseFinal
}
