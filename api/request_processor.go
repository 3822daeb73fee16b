// Package api serves a hot-seat game to a renderer over a websocket. One
// connection drives one game played by two people at the same screen; there
// is no matchmaking and no message passing between connections, and remote
// two-player play is out of scope.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"
	"go.opentelemetry.io/otel/trace"

	"github.com/saeidalz13/battleship-hotseat/db/sqlc"
	"github.com/saeidalz13/battleship-hotseat/internal/telemetry"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	URLQuerySessionIDKeyword string = "sessionID"
)

var upgrader = websocket.Upgrader{
	// good average time since this is not a high-latency operation such as video streaming
	HandshakeTimeout: time.Second * 5,

	// a snapshot of both grids fits comfortably
	ReadBufferSize:  2048,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RequestProcessor bridges websocket clients to hot-seat games. Every
// session owns exactly one game; clients send commands and get a fresh
// snapshot back after each of them.
type RequestProcessor struct {
	sessionManager mc.SessionManager
	analytics      *sqlc.AnalyticsManager
	tracer         trace.Tracer
	ipnet          net.IPNet
	stage          string
}

type Option func(*RequestProcessor) error

func NewRequestProcessor(sessionManager mc.SessionManager, optFuncs ...Option) RequestProcessor {
	rp := RequestProcessor{
		sessionManager: sessionManager,
		tracer:         telemetry.NoopTracer(),
		stage:          StageDev,
	}
	for _, opt := range optFuncs {
		if err := opt(&rp); err != nil {
			panic(err)
		}
	}

	if rp.analytics != nil {
		rp.ipnet = serverIpNet()
	}
	return rp
}

func WithStage(stage string) Option {
	return func(rp *RequestProcessor) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		rp.stage = stage
		return nil
	}
}

// WithQuerier enables analytics; a nil querier leaves them disabled.
func WithQuerier(q sqlc.Querier) Option {
	return func(rp *RequestProcessor) error {
		if q != nil {
			rp.analytics = sqlc.NewAnalyticsManager(q)
		}
		return nil
	}
}

func WithAnalytics(analytics *sqlc.AnalyticsManager) Option {
	return func(rp *RequestProcessor) error {
		rp.analytics = analytics
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(rp *RequestProcessor) error {
		if tracer == nil {
			return fmt.Errorf("tracer must not be nil")
		}
		rp.tracer = tracer
		return nil
	}
}

// First non-loopback IPv4 of this host. Falls back to the
// loopback address so analytics still have a key.
func serverIpNet() net.IPNet {
	fallback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Println("failed to list interfaces:", err)
		return fallback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if ok && ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return net.IPNet{IP: ipnet.IP.To4(), Mask: net.CIDRMask(32, 32)}
			}
		}
	}
	return fallback
}

// Expose this method to use it in testing
func (rp RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Println("a new connection established\tRemote Addr: ", conn.RemoteAddr().String())
		rp.processSessionRequests(r.Context(), rp.sessionManager.GenerateNewSession(conn))

	default:
		session, err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn)
		if err != nil {
			// This either means an expired session or invalid session ID
			_ = conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID))
			conn.Close()
			return
		}

		// The read loop of the session picks up the new conn
		log.Println("session reconnected\tRemote Addr: ", conn.RemoteAddr().String())
		_ = rp.writeSnapshot(session, mb.Outcome{})
	}
}

func (rp *RequestProcessor) processSessionRequests(ctx context.Context, session *mc.Session) {
	sessionId := session.Id()

	defer func() {
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
		log.Println("session closed:", sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError(err.Error(), "incoming req payload must contain 'code' field")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch code {
		case mc.CodeStartGame, mc.CodeConfirmPlacement, mc.CodeResetGame:
			cmd, _ := mc.CommandFromCode(code)
			if err := rp.dispatch(ctx, session, cmd); err != nil {
				break sessionLoop
			}

		// The click means placing or removing a ship cell during
		// placement and firing at the opponent during shooting
		case mc.CodeClickCell:
			var req mc.Message[mc.ReqClickCell]
			if err := json.Unmarshal(payload, &req); err != nil {
				msg := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
				msg.AddError(err.Error(), "click payload must contain board, row and col")
				if err := rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
					break sessionLoop
				}
				continue sessionLoop
			}

			cmd, err := req.Payload.Command()
			if err != nil {
				msg := mc.NewMessage[mc.NoPayload](mc.CodeInvalidCoordinates)
				msg.AddError(err.Error(), "clicked cell is not on a board")
				if err := rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
					break sessionLoop
				}
				continue sessionLoop
			}

			if err := rp.dispatch(ctx, session, cmd); err != nil {
				break sessionLoop
			}

		case mc.CodeSnapshot:
			if err := rp.writeSnapshot(session, mb.Outcome{}); err != nil {
				break sessionLoop
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
		}
	}
}

// Applies the command to the game of the session and answers with
// the new state. The end of the game is announced separately.
func (rp *RequestProcessor) dispatch(ctx context.Context, session *mc.Session, cmd mb.Command) error {
	game := session.Game()
	outcome := telemetry.DispatchTraced(ctx, rp.tracer, game, cmd)
	rp.recordAnalytics(outcome)

	if err := rp.writeSnapshot(session, outcome); err != nil {
		return err
	}

	if outcome.Finished() {
		snap := game.Snapshot(mb.NumPlayers)
		respEndGame := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
		respEndGame.AddPayload(mc.RespEndGame{
			Winner: snap.CurrentPlayer,
			Alive:  [mb.NumPlayers]int{snap.Boards[0].Alive, snap.Boards[1].Alive},
		})
		return rp.sessionManager.WriteToSessionConn(session, respEndGame, mc.MessageTypeJSON)
	}
	return nil
}

func (rp *RequestProcessor) writeSnapshot(session *mc.Session, outcome mb.Outcome) error {
	msg := mc.NewMessage[mc.RespSnapshot](mc.CodeSnapshot)
	msg.AddPayload(mc.RespSnapshot{
		Changed:  outcome.Changed,
		Shot:     outcome.Shot,
		Snapshot: session.Game().HotSeatSnapshot(),
	})
	return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
}

// Analytics are best effort; a failing database never
// interrupts a game.
func (rp *RequestProcessor) recordAnalytics(outcome mb.Outcome) {
	if rp.analytics == nil {
		return
	}

	var record func(context.Context, pqtype.Inet) error
	switch {
	case outcome.Started():
		record = rp.analytics.IncrementGamesStartedCount
	case outcome.Finished():
		record = rp.analytics.IncrementGamesFinishedCount
	default:
		return
	}

	ctx, cancel := sqlc.QuerierContext(context.Background())
	defer cancel()
	if err := record(ctx, pqtype.Inet{IPNet: rp.ipnet, Valid: true}); err != nil {
		// for now not killing the game for it
		log.Println(err)
	}
}
