package connection

import (
	"errors"
	"testing"
	"time"

	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

func TestFetchCodeFromMsg(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		expectedCode uint8
		expectErr    bool
	}{
		{name: "start game", payload: `{"code":2}`, expectedCode: CodeStartGame},
		{name: "code zero", payload: `{"code":0}`, expectedCode: CodeSessionID},
		{name: "with payload", payload: `{"code":3,"payload":{"board":1,"row":2,"col":3}}`, expectedCode: CodeClickCell},
		{name: "absent code", payload: `{"payload":{}}`, expectErr: true},
		{name: "not json", payload: `hello`, expectErr: true},
		{name: "code overflow", payload: `{"code":256}`, expectErr: true},
	}

	bsm := NewBattleshipSessionManager(0)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, err := bsm.FetchCodeFromMsg([]byte(test.payload))
			if test.expectErr {
				if err == nil {
					t.Fatalf("expected error for payload %s", test.payload)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if code != test.expectedCode {
				t.Fatalf("expected code: %d\tgot: %d", test.expectedCode, code)
			}
		})
	}
}

func TestCommandFromCode(t *testing.T) {
	tests := []struct {
		code     uint8
		expected mb.Command
		ok       bool
	}{
		{CodeStartGame, mb.StartGame{}, true},
		{CodeConfirmPlacement, mb.ConfirmPlacement{}, true},
		{CodeResetGame, mb.ResetGame{}, true},
		{CodeClickCell, nil, false},
		{CodeSnapshot, nil, false},
	}

	for _, test := range tests {
		cmd, ok := CommandFromCode(test.code)
		if ok != test.ok || cmd != test.expected {
			t.Fatalf("code %d: expected (%v, %t)\tgot: (%v, %t)", test.code, test.expected, test.ok, cmd, ok)
		}
	}
}

func TestReqClickCellCommand(t *testing.T) {
	cmd, err := ReqClickCell{Board: 1, Row: 4, Col: 9}.Command()
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Board != 1 || cmd.Coordinates != mb.MustCoordinates(4, 9) {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if _, err := (ReqClickCell{Board: 0, Row: 10, Col: 0}).Command(); !errors.Is(err, cerr.ErrOutOfBounds) {
		t.Fatalf("expected out of bounds error, got: %v", err)
	}

	for _, board := range []int{-1, mb.NumPlayers} {
		if _, err := (ReqClickCell{Board: board, Row: 0, Col: 0}).Command(); !errors.Is(err, cerr.ErrInvalidBoard) {
			t.Fatalf("board %d: expected invalid board error, got: %v", board, err)
		}
	}
}

func TestConnErr(t *testing.T) {
	err := error(NewConnErr(ConnLoopBreak).AddDesc("closed"))
	if !IsConnErrCode(err, ConnLoopBreak) {
		t.Fatal("expected break code")
	}
	if IsConnErrCode(err, ConnLoopRetry) {
		t.Fatal("did not expect retry code")
	}
	if IsConnErrCode(errors.New("other"), ConnLoopBreak) {
		t.Fatal("plain errors carry no code")
	}
}

func TestSessionLifecycle(t *testing.T) {
	bsm := NewBattleshipSessionManager(time.Minute)

	session := bsm.GenerateNewSession(nil)
	if session.Game() == nil {
		t.Fatal("new session must own a game")
	}
	if session.Game().Phase() != mb.PhaseInit {
		t.Fatalf("expected phase init, got: %s", session.Game().Phase())
	}

	found, err := bsm.FindSession(session.Id())
	if err != nil {
		t.Fatal(err)
	}
	if found != session {
		t.Fatal("found a different session")
	}

	if _, err := bsm.ReconnectSession("unknown", nil); err == nil {
		t.Fatal("expected error reconnecting unknown session")
	}

	bsm.TerminateSession(session.Id())
	if _, err := bsm.FindSession(session.Id()); err == nil {
		t.Fatal("expected error after termination")
	}
	if bsm.SessionCount() != 0 {
		t.Fatalf("expected no sessions, got: %d", bsm.SessionCount())
	}
}

func TestAbnormalClosureReconnect(t *testing.T) {
	bsm := NewBattleshipSessionManager(time.Minute)
	session := bsm.GenerateNewSession(nil)
	game := session.Game()
	game.StartGame()

	done := make(chan error)
	go func() {
		done <- bsm.HandleAbnormalClosureSession(session)
	}()

	// Give the waiter time to pick up the current signal channel.
	time.Sleep(time.Millisecond * 50)
	if _, err := bsm.ReconnectSession(session.Id(), nil); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second * 2):
		t.Fatal("reconnection was not signalled")
	}

	if session.Game() != game || game.Phase() != mb.PhasePlacement {
		t.Fatal("game must survive a reconnection")
	}
}

func TestCleanupPeriodically(t *testing.T) {
	bsm := NewBattleshipSessionManager(time.Millisecond * 20)
	bsm.GenerateNewSession(nil)

	stop := make(chan struct{})
	go bsm.CleanupPeriodically(stop)
	defer close(stop)

	deadline := time.Now().Add(time.Second * 2)
	for bsm.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("stale session was not removed")
		}
		time.Sleep(time.Millisecond * 10)
	}
}
