package api_test

import (
	"database/sql"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-hotseat/api"
	"github.com/saeidalz13/battleship-hotseat/db/sqlc"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
)

type Test[T, K any] struct {
	name string

	expectedCode uint8

	reqPayload  T
	respPayload K
}

var (
	dialer = websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	// Straight ships two rows apart, so none of them touch.
	testFleet = [][]mb.Coordinates{
		row(0, 5),
		row(2, 4),
		row(4, 3),
		row(6, 3),
		row(8, 2),
	}
)

func row(r, length int) []mb.Coordinates {
	cells := make([]mb.Coordinates, 0, length)
	for col := 0; col < length; col++ {
		cells = append(cells, mb.MustCoordinates(r, col))
	}
	return cells
}

func newTestServer(t *testing.T, opts ...api.Option) (api.RequestProcessor, string) {
	t.Helper()
	sessionManager := mc.NewBattleshipSessionManager(time.Minute)
	rp := api.NewRequestProcessor(sessionManager, opts...)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return rp, "ws" + strings.TrimPrefix(server.URL, "http") + "/battleship"
}

func dial(t *testing.T, wsUrl string) (*websocket.Conn, string) {
	t.Helper()
	conn, _, err := dialer.Dial(wsUrl, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	var respSessionId mc.Message[mc.RespSessionId]
	if err := conn.ReadJSON(&respSessionId); err != nil {
		t.Fatal(err)
	}
	if respSessionId.Code != mc.CodeSessionID || respSessionId.Payload.SessionID == "" {
		t.Fatalf("expected session id message, got: %+v", respSessionId)
	}
	return conn, respSessionId.Payload.SessionID
}

func send[T any](t *testing.T, conn *websocket.Conn, msg mc.Message[T]) mc.Message[mc.RespSnapshot] {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}

	var resp mc.Message[mc.RespSnapshot]
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != mc.CodeSnapshot {
		t.Fatalf("expected code: %d\tgot: %d\terror: %+v", mc.CodeSnapshot, resp.Code, resp.Error)
	}
	return resp
}

func click(t *testing.T, conn *websocket.Conn, board int, c mb.Coordinates) mc.Message[mc.RespSnapshot] {
	t.Helper()
	req := mc.NewMessage[mc.ReqClickCell](mc.CodeClickCell)
	req.AddPayload(mc.ReqClickCell{Board: board, Row: c.Row, Col: c.Col})
	return send(t, conn, req)
}

func placeFleet(t *testing.T, conn *websocket.Conn, player int) {
	t.Helper()
	for _, ship := range testFleet {
		for _, c := range ship {
			resp := click(t, conn, player, c)
			if !resp.Payload.Changed {
				t.Fatalf("placing %s for player %d was ignored", c, player)
			}
		}
	}
	resp := send(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeConfirmPlacement))
	if !resp.Payload.Changed {
		t.Fatalf("confirming player %d fleet was ignored: %s", player, resp.Payload.Snapshot.Boards[player].Fleet.Reason)
	}
}

func TestInvalidCode(t *testing.T) {
	_, wsUrl := newTestServer(t)
	conn, _ := dial(t, wsUrl)

	tests := []Test[string, mc.Message[mc.NoPayload]]{
		{
			name:         "random invalid code",
			expectedCode: mc.CodeInvalidSignal,
			reqPayload:   `{"code":200}`,
		},
		{
			name:         "absent code",
			expectedCode: mc.CodeSignalAbsent,
			reqPayload:   `{"payload":{"board":0}}`,
		},
		{
			name:         "not json",
			expectedCode: mc.CodeSignalAbsent,
			reqPayload:   `fire!`,
		},
		{
			name:         "click out of grid",
			expectedCode: mc.CodeInvalidCoordinates,
			reqPayload:   `{"code":3,"payload":{"board":0,"row":10,"col":0}}`,
		},
		{
			name:         "click on a third board",
			expectedCode: mc.CodeInvalidCoordinates,
			reqPayload:   `{"code":3,"payload":{"board":2,"row":0,"col":0}}`,
		},
		{
			name:         "click with bad payload",
			expectedCode: mc.CodeInvalidSignal,
			reqPayload:   `{"code":3,"payload":"a1"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(test.reqPayload)); err != nil {
				t.Fatal(err)
			}

			if err := conn.ReadJSON(&test.respPayload); err != nil {
				t.Fatal(err)
			}

			if test.respPayload.Code != test.expectedCode {
				t.Fatalf("expected status: %d\t got: %d", test.expectedCode, test.respPayload.Code)
			}
			if test.respPayload.Error == nil {
				t.Fatal("expected error details in the response")
			}
		})
	}
}

func TestIgnoredCommandsStillAnswer(t *testing.T) {
	_, wsUrl := newTestServer(t)
	conn, _ := dial(t, wsUrl)

	tests := []Test[mc.Message[mc.NoPayload], mc.Message[mc.RespSnapshot]]{
		{name: "confirm before start", reqPayload: mc.NewMessage[mc.NoPayload](mc.CodeConfirmPlacement)},
		{name: "snapshot query", reqPayload: mc.NewMessage[mc.NoPayload](mc.CodeSnapshot)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.respPayload = send(t, conn, test.reqPayload)
			if test.respPayload.Payload.Changed {
				t.Fatal("command should have been ignored")
			}
			if test.respPayload.Payload.Snapshot.Phase != mb.PhaseInit {
				t.Fatalf("expected phase init, got: %s", test.respPayload.Payload.Snapshot.PhaseName)
			}
		})
	}
}

func TestFullGame(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rp, wsUrl := newTestServer(t, api.WithStage(api.StageDev), api.WithQuerier(sqlc.New(db)))

	// Counters are keyed by the address of this server
	serverIp := pqtype.Inet{IPNet: rp.GetIpNet(), Valid: true}
	if serverIp.IPNet.IP == nil {
		t.Fatal("analytics enabled without a server ip")
	}
	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_started\)`).
		WithArgs(serverIp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_finished\)`).
		WithArgs(serverIp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	conn, _ := dial(t, wsUrl)

	resp := send(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeStartGame))
	if resp.Payload.Snapshot.Phase != mb.PhasePlacement {
		t.Fatalf("expected placement phase, got: %s", resp.Payload.Snapshot.PhaseName)
	}

	// Player 1 may not touch the board of player 0 during placement
	resp = click(t, conn, 1, mb.MustCoordinates(0, 0))
	if resp.Payload.Changed {
		t.Fatal("click on the other board must be ignored")
	}

	placeFleet(t, conn, 0)
	resp = send(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeSnapshot))
	if resp.Payload.Snapshot.CurrentPlayer != 1 || resp.Payload.Snapshot.Phase != mb.PhasePlacement {
		t.Fatalf("expected player 1 to place, got: %+v", resp.Payload.Snapshot)
	}
	// The hot-seat view hides the ships of the player that is not placing
	if resp.Payload.Snapshot.Boards[0].Cells[0][0] != mb.CellWater {
		t.Fatal("ships of player 0 must be hidden while player 1 places")
	}

	placeFleet(t, conn, 1)
	resp = send(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeSnapshot))
	if resp.Payload.Snapshot.Phase != mb.PhaseShooting || resp.Payload.Snapshot.CurrentPlayer != 0 {
		t.Fatalf("expected shooting by player 0, got: %+v", resp.Payload.Snapshot)
	}

	var shipCells []mb.Coordinates
	for _, ship := range testFleet {
		shipCells = append(shipCells, ship...)
	}

	for i, c := range shipCells {
		resp = click(t, conn, 1, c)
		if resp.Payload.Shot == nil || !resp.Payload.Shot.Hit {
			t.Fatalf("expected a hit at %s", c)
		}
		if resp.Payload.Snapshot.Boards[1].Cells[c.Row][c.Col] != mb.CellHit {
			t.Fatalf("expected hit cell at %s", c)
		}
		if i < len(shipCells)-1 && resp.Payload.Snapshot.Phase != mb.PhaseShooting {
			t.Fatalf("game ended early after %d hits", i+1)
		}
	}

	if resp.Payload.Snapshot.Phase != mb.PhaseFinal {
		t.Fatalf("expected final phase, got: %s", resp.Payload.Snapshot.PhaseName)
	}

	var respEndGame mc.Message[mc.RespEndGame]
	if err := conn.ReadJSON(&respEndGame); err != nil {
		t.Fatal(err)
	}
	if respEndGame.Code != mc.CodeEndGame {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeEndGame, respEndGame.Code)
	}
	if respEndGame.Payload.Winner != 0 {
		t.Fatalf("expected winner 0, got: %d", respEndGame.Payload.Winner)
	}
	if respEndGame.Payload.Alive != [mb.NumPlayers]int{len(shipCells), 0} {
		t.Fatalf("unexpected alive counts: %v", respEndGame.Payload.Alive)
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}

	resp = send(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeResetGame))
	if resp.Payload.Snapshot.Phase != mb.PhaseInit || resp.Payload.Snapshot.Boards[1].Alive != 0 {
		t.Fatalf("expected a fresh game after reset, got: %+v", resp.Payload.Snapshot)
	}
}

func TestAnalyticsFailureDoesNotStopGame(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO game_server_analytics`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	_, wsUrl := newTestServer(t, api.WithQuerier(sqlc.New(db)))
	conn, _ := dial(t, wsUrl)

	resp := send(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeStartGame))
	if resp.Payload.Snapshot.Phase != mb.PhasePlacement {
		t.Fatalf("expected placement phase, got: %s", resp.Payload.Snapshot.PhaseName)
	}
}

func TestReconnectInvalidSession(t *testing.T) {
	_, wsUrl := newTestServer(t)

	conn, _, err := dialer.Dial(wsUrl+"?"+api.URLQuerySessionIDKeyword+"=does-not-exist", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var resp mc.Message[mc.NoPayload]
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != mc.CodeReceivedInvalidSessionID {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeReceivedInvalidSessionID, resp.Code)
	}
}

func TestReconnectKeepsGame(t *testing.T) {
	_, wsUrl := newTestServer(t)
	conn, sessionId := dial(t, wsUrl)

	send(t, conn, mc.NewMessage[mc.NoPayload](mc.CodeStartGame))
	click(t, conn, 0, mb.MustCoordinates(5, 5))

	conn2, _, err := dialer.Dial(wsUrl+"?"+api.URLQuerySessionIDKeyword+"="+sessionId, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn2.Close()

	var resp mc.Message[mc.RespSnapshot]
	if err := conn2.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != mc.CodeSnapshot {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeSnapshot, resp.Code)
	}
	if resp.Payload.Snapshot.Phase != mb.PhasePlacement || resp.Payload.Snapshot.Boards[0].Cells[5][5] != mb.CellShip {
		t.Fatalf("reconnected session lost its game: %+v", resp.Payload.Snapshot)
	}

	// The replaced conn is closed by the server
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("expected the replaced connection to be closed")
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		t.Fatal("replaced connection is still open")
	}

	// The session keeps serving the game over the new conn
	resp = click(t, conn2, 0, mb.MustCoordinates(6, 6))
	if !resp.Payload.Changed || resp.Payload.Snapshot.Boards[0].Cells[6][6] != mb.CellShip {
		t.Fatalf("click over the new connection was not applied: %+v", resp.Payload)
	}
}

func TestWithStageInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an invalid stage")
		}
	}()
	api.NewRequestProcessor(mc.NewBattleshipSessionManager(time.Minute), api.WithStage("staging"))
}
