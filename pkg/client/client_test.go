package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/ch1nq/arcadio-go/pkg/messages"
	"github.com/ch1nq/arcadio-go/pkg/network"
	"github.com/ch1nq/arcadio-go/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

// fakeConn serves a scripted sequence of inbound messages and collects
// everything the client writes.
type fakeConn struct {
	inbound  [][]byte
	pos      int
	outbound [][]byte
	closed   bool
}

func (c *fakeConn) ReadMessage(ctx context.Context) ([]byte, error) {
	if c.pos >= len(c.inbound) {
		return nil, &network.ConnectionError{Err: io.EOF}
	}
	b := c.inbound[c.pos]
	c.pos++
	return b, nil
}

func (c *fakeConn) WriteMessage(ctx context.Context, b []byte) error {
	c.outbound = append(c.outbound, b)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeRecorder struct {
	records [][]byte
	err     error
}

func (r *fakeRecorder) RecordMessage(b []byte) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, b)
	return nil
}

func encodeEvent(t *testing.T, event messages.ServerEvent) []byte {
	t.Helper()
	b, err := messages.EncodeServerEvent(event)
	require.NoError(t, err)
	return b
}

func decodePlayerEvent(t *testing.T, b []byte) messages.PlayerEvent {
	t.Helper()
	event, err := messages.DecodePlayerEvent(b)
	require.NoError(t, err)
	return event
}

func singlePlayerState(id gametypes.PlayerID) *gametypes.GameState {
	head := gametypes.Blob{ID: 0, Size: 3, Position: gametypes.Position{X: 100, Y: 100}}
	return &gametypes.GameState{
		Timestep: 0,
		Players: map[gametypes.PlayerID]*gametypes.Player{
			id: {IsAlive: true, Head: head, Body: []gametypes.Blob{head}},
		},
	}
}

func TestConnectedClient_Run(t *testing.T) {
	blob1 := gametypes.Blob{ID: 0, Size: 3, Position: gametypes.Position{X: 100, Y: 100}}
	blob2 := gametypes.Blob{ID: 1, Size: 3, Position: gametypes.Position{X: 102, Y: 100}}
	winner := gametypes.PlayerID(7)

	conn := &fakeConn{inbound: [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 7}),
		encodeEvent(t, messages.InitialState{State: &gametypes.GameState{
			Timestep: 0,
			Players: map[gametypes.PlayerID]*gametypes.Player{
				7: {IsAlive: true, Head: blob1, Body: []gametypes.Blob{blob1}},
			},
		}}),
		encodeEvent(t, messages.UpdateState{Diff: &gametypes.GameStateDiff{
			Timestep: 1,
			Players: map[gametypes.PlayerID]*gametypes.PlayerDiff{
				7: {Body: []gametypes.Blob{blob2}},
			},
		}}),
		encodeEvent(t, messages.GameOver{Winner: &winner}),
	}}

	var result *GameResult
	c := NewGameClient(NewGameClientOptions{
		Strategy:   strategy.NewForwardStrategy(),
		OnGameOver: func(r GameResult) { result = &r },
	})
	cc := c.connected(conn)
	require.NoError(t, cc.Run(context.Background()))

	require.Len(t, conn.outbound, 1)
	event := decodePlayerEvent(t, conn.outbound[0])
	assert.Equal(t, messages.Action{Action: gametypes.GameActionForward}, event)

	assert.Equal(t, int64(1), cc.gameState.Timestep)
	require.Contains(t, cc.gameState.Players, gametypes.PlayerID(7))
	assert.Equal(t, []gametypes.Blob{blob1, blob2}, cc.gameState.Players[7].Body)

	require.NotNil(t, result)
	assert.Equal(t, gametypes.PlayerID(7), result.PlayerID)
	require.NotNil(t, result.Winner)
	assert.Equal(t, gametypes.PlayerID(7), *result.Winner)
	assert.True(t, result.Won)
	assert.Equal(t, int64(1), result.Timestep)
	assert.Equal(t, 1, result.Players)
	assert.True(t, conn.closed)
}

func TestConnectedClient_Run_ProtocolErrors(t *testing.T) {
	assign := encodeEvent(t, messages.AssignPlayerID{PlayerID: 1})
	initial := encodeEvent(t, messages.InitialState{State: singlePlayerState(1)})
	update := encodeEvent(t, messages.UpdateState{Diff: &gametypes.GameStateDiff{Timestep: 1}})
	gameOver := encodeEvent(t, messages.GameOver{})

	testCases := []struct {
		name    string
		inbound [][]byte
		wantErr string
	}{
		{
			name:    "initial state before assignment",
			inbound: [][]byte{initial},
			wantErr: "expected AssignPlayerId, got InitialState",
		},
		{
			name:    "update as first event",
			inbound: [][]byte{update},
			wantErr: "expected AssignPlayerId, got UpdateState",
		},
		{
			name:    "game over before assignment",
			inbound: [][]byte{gameOver},
			wantErr: "expected AssignPlayerId, got GameOver",
		},
		{
			name:    "assignment repeated",
			inbound: [][]byte{assign, assign},
			wantErr: "expected InitialState, got AssignPlayerId",
		},
		{
			name:    "assignment during playing",
			inbound: [][]byte{assign, initial, assign},
			wantErr: "expected UpdateState or GameOver, got AssignPlayerId",
		},
		{
			name:    "initial state repeated",
			inbound: [][]byte{assign, initial, initial},
			wantErr: "expected UpdateState or GameOver, got InitialState",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn := &fakeConn{inbound: tc.inbound}
			cc := NewGameClient(NewGameClientOptions{}).connected(conn)
			err := cc.Run(context.Background())
			require.Error(t, err)
			assert.True(t, IsProtocolError(err))
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.True(t, conn.closed)
		})
	}
}

func TestConnectedClient_Run_DrawGame(t *testing.T) {
	conn := &fakeConn{inbound: [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 3}),
		encodeEvent(t, messages.InitialState{State: singlePlayerState(3)}),
		encodeEvent(t, messages.GameOver{}),
	}}

	var result *GameResult
	c := NewGameClient(NewGameClientOptions{OnGameOver: func(r GameResult) { result = &r }})
	require.NoError(t, c.connected(conn).Run(context.Background()))

	require.NotNil(t, result)
	assert.Nil(t, result.Winner)
	assert.False(t, result.Won)
}

func TestConnectedClient_Run_PullsUpdates(t *testing.T) {
	conn := &fakeConn{inbound: [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 1}),
		encodeEvent(t, messages.InitialState{State: singlePlayerState(1)}),
		encodeEvent(t, messages.UpdateState{Diff: &gametypes.GameStateDiff{Timestep: 1}}),
		encodeEvent(t, messages.GameOver{}),
	}}

	c := NewGameClient(NewGameClientOptions{
		Strategy:       strategy.NewForwardStrategy(),
		RequestUpdates: true,
	})
	require.NoError(t, c.connected(conn).Run(context.Background()))

	var tags []string
	for _, b := range conn.outbound {
		tags = append(tags, decodePlayerEvent(t, b).Type())
	}
	assert.Equal(t, []string{
		messages.EventTypeRequestUpdate,
		messages.EventTypeAction,
		messages.EventTypeRequestUpdate,
	}, tags)
}

func TestConnectedClient_Run_NoActionTicks(t *testing.T) {
	conn := &fakeConn{inbound: [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 1}),
		encodeEvent(t, messages.InitialState{State: singlePlayerState(1)}),
		encodeEvent(t, messages.UpdateState{Diff: &gametypes.GameStateDiff{Timestep: 1}}),
		encodeEvent(t, messages.UpdateState{Diff: &gametypes.GameStateDiff{Timestep: 2}}),
		encodeEvent(t, messages.GameOver{}),
	}}

	noAction := strategy.StrategyFunc(func(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
		return "", false
	})
	c := NewGameClient(NewGameClientOptions{Strategy: noAction})
	require.NoError(t, c.connected(conn).Run(context.Background()))

	assert.Empty(t, conn.outbound)
}

func TestConnectedClient_Run_RecordsMessages(t *testing.T) {
	inbound := [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 1}),
		encodeEvent(t, messages.InitialState{State: singlePlayerState(1)}),
		encodeEvent(t, messages.GameOver{}),
	}
	conn := &fakeConn{inbound: inbound}
	recorder := &fakeRecorder{}

	c := NewGameClient(NewGameClientOptions{Recorder: recorder})
	require.NoError(t, c.connected(conn).Run(context.Background()))

	assert.Equal(t, inbound, recorder.records)
}

func TestConnectedClient_Run_RecorderFailureIsNotFatal(t *testing.T) {
	conn := &fakeConn{inbound: [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 1}),
		encodeEvent(t, messages.InitialState{State: singlePlayerState(1)}),
		encodeEvent(t, messages.GameOver{}),
	}}
	recorder := &fakeRecorder{err: errors.New("disk full")}

	c := NewGameClient(NewGameClientOptions{Recorder: recorder})
	require.NoError(t, c.connected(conn).Run(context.Background()))
}

func TestConnectedClient_Run_ConnectionLost(t *testing.T) {
	conn := &fakeConn{inbound: [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 1}),
		encodeEvent(t, messages.InitialState{State: singlePlayerState(1)}),
	}}

	err := NewGameClient(NewGameClientOptions{}).connected(conn).Run(context.Background())
	require.Error(t, err)
	assert.True(t, network.IsConnectionError(err))
}

func TestConnectedClient_Run_MalformedMessage(t *testing.T) {
	conn := &fakeConn{inbound: [][]byte{[]byte("not json")}}

	err := NewGameClient(NewGameClientOptions{}).connected(conn).Run(context.Background())
	require.Error(t, err)
	assert.True(t, messages.IsDeserializationError(err))
}

func TestConnectedClient_Run_RunsOnce(t *testing.T) {
	conn := &fakeConn{inbound: [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 1}),
		encodeEvent(t, messages.InitialState{State: singlePlayerState(1)}),
		encodeEvent(t, messages.GameOver{}),
	}}

	cc := NewGameClient(NewGameClientOptions{}).connected(conn)
	require.NoError(t, cc.Run(context.Background()))

	err := cc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already ran")
}

func TestGameClient_PlaysGameOverWebsocket(t *testing.T) {
	winner := gametypes.PlayerID(2)
	actionCh := make(chan messages.PlayerEvent, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, network.ClientTypePlayer.JoinPath(), r.URL.Path)
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("failed to accept websocket: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()

		for _, event := range []messages.ServerEvent{
			messages.AssignPlayerID{PlayerID: 2},
			messages.InitialState{State: singlePlayerState(2)},
			messages.UpdateState{Diff: &gametypes.GameStateDiff{Timestep: 1}},
		} {
			b, err := messages.EncodeServerEvent(event)
			if err != nil {
				t.Errorf("failed to encode %s event: %v", event.Type(), err)
				return
			}
			if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
				t.Errorf("failed to write %s event: %v", event.Type(), err)
				return
			}
		}

		typ, b, err := conn.Read(ctx)
		if err != nil {
			t.Errorf("failed to read action: %v", err)
			return
		}
		assert.Equal(t, websocket.MessageBinary, typ)
		event, err := messages.DecodePlayerEvent(b)
		if err != nil {
			t.Errorf("failed to decode action: %v", err)
			return
		}
		actionCh <- event

		b, err = messages.EncodeServerEvent(messages.GameOver{Winner: &winner})
		if err != nil {
			t.Errorf("failed to encode GameOver event: %v", err)
			return
		}
		if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
			t.Errorf("failed to write GameOver event: %v", err)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result *GameResult
	c := NewGameClient(NewGameClientOptions{
		Strategy:   strategy.NewForwardStrategy(),
		OnGameOver: func(r GameResult) { result = &r },
	})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + network.ClientTypePlayer.JoinPath()
	cc, err := c.ConnectURL(ctx, url)
	require.NoError(t, err)
	require.NoError(t, cc.Run(ctx))

	require.NotNil(t, result)
	assert.True(t, result.Won)
	assert.Equal(t, int64(1), result.Timestep)

	select {
	case event := <-actionCh:
		assert.Equal(t, messages.Action{Action: gametypes.GameActionForward}, event)
	default:
		t.Fatal("server never received an action")
	}
}
