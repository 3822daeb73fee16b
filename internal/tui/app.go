package tui

import (
	"context"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/saeidalz13/battleship-hotseat/internal/telemetry"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

// App runs one hot-seat game on a terminal shared by both players.
type App struct {
	screen   Screen
	renderer *Renderer
	game     *mb.Game
	tracer   trace.Tracer

	cursor    Cursor
	message   string
	mouseDown bool
	running   bool
}

type Option func(*App)

func WithTracer(tracer trace.Tracer) Option {
	return func(a *App) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

func New(screen Screen, game *mb.Game, opts ...Option) *App {
	a := &App{
		screen:   screen,
		renderer: NewRenderer(screen),
		game:     game,
		tracer:   telemetry.NoopTracer(),
		running:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Cursor() Cursor {
	return a.cursor
}

func (a *App) Message() string {
	return a.message
}

// Run draws and handles events until the players quit or the screen is
// finalized. The screen is finalized on return.
func (a *App) Run(ctx context.Context) error {
	defer a.screen.Fini()

	for a.running {
		a.Render()

		ev := a.screen.PollEvent()
		if ev == nil {
			break
		}
		a.HandleEvent(ctx, ev)
	}
	return nil
}

func (a *App) Render() {
	a.renderer.Render(a.game.HotSeatSnapshot(), a.cursor, a.message)
}

// HandleEvent processes one terminal event. It reports whether the app
// keeps running.
func (a *App) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.handleKeyEvent(ctx, ev)
	case *tcell.EventMouse:
		a.handleMouseEvent(ctx, ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return a.running
}

func (a *App) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.running = false

	case tcell.KeyUp:
		a.moveCursor(-1, 0)
	case tcell.KeyDown:
		a.moveCursor(1, 0)
	case tcell.KeyLeft:
		a.moveCursor(0, -1)
	case tcell.KeyRight:
		a.moveCursor(0, 1)
	case tcell.KeyTab, tcell.KeyBacktab:
		a.cursor.Board = opponent(a.cursor.Board)

	case tcell.KeyEnter:
		a.click(ctx, a.cursor)

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			a.running = false
		case ' ':
			a.click(ctx, a.cursor)
		case 's', 'S':
			a.dispatch(ctx, mb.StartGame{})
		case 'c', 'C':
			a.dispatch(ctx, mb.ConfirmPlacement{})
		case 'r', 'R':
			a.dispatch(ctx, mb.ResetGame{})
		}
	}
}

// Only the press of the primary button clicks; holding it while
// dragging does not repeat the click.
func (a *App) handleMouseEvent(ctx context.Context, ev *tcell.EventMouse) {
	pressed := ev.Buttons()&tcell.Button1 != 0
	defer func() { a.mouseDown = pressed }()

	if !pressed || a.mouseDown {
		return
	}

	x, y := ev.Position()
	board, c, ok := CellAt(x, y)
	if !ok {
		return
	}
	a.cursor = Cursor{Board: board, Coordinates: c}
	a.click(ctx, a.cursor)
}

func (a *App) moveCursor(dRow, dCol int) {
	c, err := mb.NewCoordinates(a.cursor.Coordinates.Row+dRow, a.cursor.Coordinates.Col+dCol)
	if err != nil {
		return
	}
	a.cursor.Coordinates = c
}

func (a *App) click(ctx context.Context, cursor Cursor) {
	a.dispatch(ctx, mb.ClickCell{Board: cursor.Board, Coordinates: cursor.Coordinates})
}

func (a *App) dispatch(ctx context.Context, cmd mb.Command) {
	outcome := telemetry.DispatchTraced(ctx, a.tracer, a.game, cmd)
	a.message = describe(cmd, outcome)
	if outcome.Finished() {
		log.Printf("game over\tgame: %s\twinner: %d", a.game.Uuid(), outcome.CurrentPlayer)
	}
}

// describe turns the outcome of a command into the message line.
func describe(cmd mb.Command, outcome mb.Outcome) string {
	if !outcome.Changed {
		return "not allowed right now"
	}

	if shot := outcome.Shot; shot != nil {
		switch {
		case outcome.Finished():
			return fmt.Sprintf("hit at %s, last ship sunk", shot.Coordinates)
		case len(shot.Sunk) > 0:
			return fmt.Sprintf("hit at %s, ship of length %d sunk, fire again", shot.Coordinates, shot.Sunk.Len())
		case shot.Hit:
			return fmt.Sprintf("hit at %s, fire again", shot.Coordinates)
		default:
			return fmt.Sprintf("miss at %s, player %d to fire", shot.Coordinates, outcome.CurrentPlayer+1)
		}
	}

	switch cmd.(type) {
	case mb.StartGame:
		return "game started, player 1 places ships"
	case mb.ConfirmPlacement:
		if outcome.PhaseChanged() {
			return "fleets confirmed, player 1 fires first"
		}
		return fmt.Sprintf("fleet confirmed, player %d places ships", outcome.CurrentPlayer+1)
	case mb.ResetGame:
		return "game reset"
	default:
		return ""
	}
}
