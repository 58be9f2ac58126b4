package client

import (
	"context"
	"fmt"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/messages"
	"github.com/ch1nq/arcadio-go/pkg/network"
	"github.com/ch1nq/arcadio-go/pkg/strategy"
)

// clientState is the protocol phase of a connected client.
type clientState int

const (
	clientStateAwaitingPlayerID clientState = iota
	clientStateAwaitingInitialState
	clientStatePlaying
	clientStateTerminated
)

func (s clientState) String() string {
	switch s {
	case clientStateAwaitingPlayerID:
		return "AwaitingPlayerId"
	case clientStateAwaitingInitialState:
		return "AwaitingInitialState"
	case clientStatePlaying:
		return "Playing"
	case clientStateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// MessageRecorder receives every raw inbound message before it is
// decoded.
type MessageRecorder interface {
	RecordMessage(b []byte) error
}

// GameResult summarizes a finished game from one client's point of view.
type GameResult struct {
	// PlayerID is the player this client controlled.
	PlayerID gametypes.PlayerID
	// Winner is nil when the game ended in a draw.
	Winner *gametypes.PlayerID
	// Won reports whether this client's player won.
	Won bool
	// Timestep is the tick the game ended at.
	Timestep int64
	// Players is the number of players in the game.
	Players int
}

// GameClient is the reusable configuration for joining games. A single
// GameClient can connect any number of times, one game per connection.
type GameClient struct {
	strategy       strategy.Strategy
	requestUpdates bool
	recorder       MessageRecorder
	onGameOver     func(result GameResult)
}

type NewGameClientOptions struct {
	// Strategy decides the action each tick. Defaults to the forward
	// strategy.
	Strategy strategy.Strategy
	// RequestUpdates makes the client ask the server for every update
	// instead of having them pushed.
	RequestUpdates bool
	// Recorder, when set, receives every raw inbound message.
	Recorder MessageRecorder
	// OnGameOver, when set, is called once the game ends.
	OnGameOver func(result GameResult)
}

func NewGameClient(opts NewGameClientOptions) *GameClient {
	if opts.Strategy == nil {
		opts.Strategy = strategy.NewForwardStrategy()
	}
	return &GameClient{
		strategy:       opts.Strategy,
		requestUpdates: opts.RequestUpdates,
		recorder:       opts.Recorder,
		onGameOver:     opts.OnGameOver,
	}
}

// Connect dials the server's player join endpoint and returns a client
// ready to run one game.
func (c *GameClient) Connect(ctx context.Context, host string, port int) (*ConnectedClient, error) {
	conn, err := network.Dial(ctx, host, port, network.ClientTypePlayer)
	if err != nil {
		return nil, err
	}
	return c.connected(conn), nil
}

// ConnectURL is Connect for a fully formed websocket URL.
func (c *GameClient) ConnectURL(ctx context.Context, url string) (*ConnectedClient, error) {
	conn, err := network.DialURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.connected(conn), nil
}

func (c *GameClient) connected(conn network.Connection) *ConnectedClient {
	return &ConnectedClient{
		conn:           conn,
		strategy:       c.strategy,
		requestUpdates: c.requestUpdates,
		recorder:       c.recorder,
		onGameOver:     c.onGameOver,
		state:          clientStateAwaitingPlayerID,
	}
}

// ConnectedClient drives one connection through the join handshake and
// the playing loop. It is not safe for concurrent use.
type ConnectedClient struct {
	conn           network.Connection
	strategy       strategy.Strategy
	requestUpdates bool
	recorder       MessageRecorder
	onGameOver     func(result GameResult)

	state     clientState
	playerID  gametypes.PlayerID
	gameState *gametypes.GameState
}

// Run drives the connection until the game ends or a fatal error
// occurs. The connection is closed when Run returns; reconnecting is
// the caller's decision.
func (cc *ConnectedClient) Run(ctx context.Context) error {
	if cc.state != clientStateAwaitingPlayerID {
		return fmt.Errorf("client already ran, state is %s", cc.state)
	}
	defer cc.conn.Close()

	if err := cc.handshake(ctx); err != nil {
		return err
	}
	return cc.play(ctx)
}

// handshake consumes the two events that precede the playing phase: the
// player id assignment, then the full state snapshot.
func (cc *ConnectedClient) handshake(ctx context.Context) error {
	event, err := cc.receiveEvent(ctx)
	if err != nil {
		return err
	}
	assign, ok := event.(messages.AssignPlayerID)
	if !ok {
		return &ProtocolError{Expected: messages.EventTypeAssignPlayerID, Got: event.Type()}
	}
	cc.playerID = assign.PlayerID
	cc.state = clientStateAwaitingInitialState
	log.Debug("Assigned player id %d", cc.playerID)

	event, err = cc.receiveEvent(ctx)
	if err != nil {
		return err
	}
	initial, ok := event.(messages.InitialState)
	if !ok {
		return &ProtocolError{Expected: messages.EventTypeInitialState, Got: event.Type()}
	}
	cc.gameState = initial.State
	if cc.gameState.Players == nil {
		cc.gameState.Players = make(map[gametypes.PlayerID]*gametypes.Player)
	}
	cc.state = clientStatePlaying
	log.Info("Joined game as player %d with %d players at timestep %d", cc.playerID, len(cc.gameState.Players), cc.gameState.Timestep)
	return nil
}

func (cc *ConnectedClient) play(ctx context.Context) error {
	for {
		if cc.requestUpdates {
			if err := cc.sendEvent(ctx, messages.RequestUpdate{}); err != nil {
				return err
			}
		}

		event, err := cc.receiveEvent(ctx)
		if err != nil {
			return err
		}

		switch e := event.(type) {
		case messages.UpdateState:
			cc.gameState.MergeDiff(e.Diff)
			action, ok := cc.strategy.TakeAction(cc.gameState, cc.playerID)
			if !ok {
				continue
			}
			if err := cc.sendEvent(ctx, messages.Action{Action: action}); err != nil {
				return err
			}
		case messages.GameOver:
			cc.finish(e.Winner)
			return nil
		default:
			return &ProtocolError{
				Expected: fmt.Sprintf("%s or %s", messages.EventTypeUpdateState, messages.EventTypeGameOver),
				Got:      event.Type(),
			}
		}
	}
}

func (cc *ConnectedClient) finish(winner *gametypes.PlayerID) {
	cc.state = clientStateTerminated
	if winner != nil {
		log.Info("Game over, player %d won after %d ticks", *winner, cc.gameState.Timestep)
	} else {
		log.Info("Game over, nobody won after %d ticks", cc.gameState.Timestep)
	}
	if cc.onGameOver != nil {
		cc.onGameOver(GameResult{
			PlayerID: cc.playerID,
			Winner:   winner,
			Won:      winner != nil && *winner == cc.playerID,
			Timestep: cc.gameState.Timestep,
			Players:  len(cc.gameState.Players),
		})
	}
}

func (cc *ConnectedClient) receiveEvent(ctx context.Context) (messages.ServerEvent, error) {
	b, err := cc.conn.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	if cc.recorder != nil {
		// Recording is best effort and never fails the game.
		if err := cc.recorder.RecordMessage(b); err != nil {
			log.Warn("Failed to record message: %v", err)
		}
	}
	event, err := messages.DecodeServerEvent(b)
	if err != nil {
		return nil, err
	}
	log.Trace("Received %s event", event.Type())
	return event, nil
}

func (cc *ConnectedClient) sendEvent(ctx context.Context, event messages.PlayerEvent) error {
	b, err := messages.EncodePlayerEvent(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %v", event.Type(), err)
	}
	log.Trace("Sending %s event", event.Type())
	return cc.conn.WriteMessage(ctx, b)
}
