// Command tui plays a hot-seat game of battleship in the terminal.
package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/saeidalz13/battleship-hotseat/internal/telemetry"
	"github.com/saeidalz13/battleship-hotseat/internal/tui"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

func main() {
	// Not fatal, the variables might be set directly
	_ = godotenv.Load()

	// The terminal belongs to tcell, logs go to a file or nowhere
	if logPath := os.Getenv("BATTLESHIP_LOG"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	ctx := context.Background()

	var opts []tui.Option
	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx, "battleship-tui")
		if err != nil {
			log.Printf("telemetry setup failed: %v", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("telemetry shutdown: %v", err)
				}
			}()
			opts = append(opts, tui.WithTracer(telemetry.Tracer("tui")))
		}
	}

	screen, err := tui.NewScreen()
	if err != nil {
		log.Fatalf("failed to initialize screen: %v", err)
	}

	app := tui.New(screen, mb.NewGame(), opts...)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("game error: %v", err)
	}
}
