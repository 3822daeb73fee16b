package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/saeidalz13/battleship-hotseat/api"
	"github.com/saeidalz13/battleship-hotseat/db"
	"github.com/saeidalz13/battleship-hotseat/db/sqlc"
	"github.com/saeidalz13/battleship-hotseat/internal/telemetry"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
)

const defaultPort = 8000

func main() {
	if os.Getenv("STAGE") != api.StageProd {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file loaded:", err)
		}
	}
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = api.StageDev
	}

	port := defaultPort
	if portEnv := os.Getenv("PORT"); portEnv != "" {
		p, err := strconv.Atoi(portEnv)
		if err != nil {
			panic(err)
		}
		port = p
	}

	opts := []api.Option{api.WithStage(stage)}

	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		dbManager := sqlc.NewDbManager(db.MustConnectToDb(psqlUrl, db.DefaultMigrationDir))
		defer dbManager.Close()
		opts = append(opts, api.WithAnalytics(dbManager.Analytics))
	} else {
		log.Println("DATABASE_URL not set\tanalytics disabled")
	}

	if telemetry.Enabled() {
		ctx := context.Background()
		shutdown, err := telemetry.Setup(ctx, "battleship-server")
		if err != nil {
			log.Println("telemetry setup failed:", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Println("telemetry shutdown:", err)
				}
			}()
			opts = append(opts, api.WithTracer(telemetry.Tracer("server")))
		}
	}

	sessionManager := mc.NewBattleshipSessionManager(mc.DefaultCleanupInterval)
	stop := make(chan struct{})
	defer close(stop)
	go sessionManager.CleanupPeriodically(stop)

	rp := api.NewRequestProcessor(sessionManager, opts...)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)

	log.Printf("Listening to port %d\tstage: %s\n", port, stage)
	if err := http.ListenAndServe("0.0.0.0:"+fmt.Sprintf("%d", port), mux); err != nil {
		log.Println(err)
	}
}
