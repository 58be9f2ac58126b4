package messages

import (
	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
)

// Event tags as they appear on the wire.
const (
	EventTypeAssignPlayerID = "AssignPlayerId"
	EventTypeInitialState   = "InitialState"
	EventTypeUpdateState    = "UpdateState"
	EventTypeGameOver       = "GameOver"
	EventTypeAction         = "Action"
	EventTypeRequestUpdate  = "RequestUpdate"
)

// ServerEvent is an event sent by the game server. The variant set is
// closed: decoding rejects any other tag.
type ServerEvent interface {
	isServerEvent()
	// Type returns the wire tag of the event.
	Type() string
}

// AssignPlayerID tells the client which player it controls.
type AssignPlayerID struct {
	PlayerID gametypes.PlayerID
}

// InitialState carries the full snapshot that seeds the client's local state.
type InitialState struct {
	State *gametypes.GameState
}

// UpdateState carries one tick's incremental update.
type UpdateState struct {
	Diff *gametypes.GameStateDiff
}

// GameOver ends the session. Winner is nil when nobody won.
type GameOver struct {
	Winner *gametypes.PlayerID
}

func (AssignPlayerID) isServerEvent() {}
func (InitialState) isServerEvent()   {}
func (UpdateState) isServerEvent()    {}
func (GameOver) isServerEvent()       {}

func (AssignPlayerID) Type() string { return EventTypeAssignPlayerID }
func (InitialState) Type() string   { return EventTypeInitialState }
func (UpdateState) Type() string    { return EventTypeUpdateState }
func (GameOver) Type() string       { return EventTypeGameOver }

// PlayerEvent is an event sent by the client.
type PlayerEvent interface {
	isPlayerEvent()
	// Type returns the wire tag of the event.
	Type() string
}

// Action submits the chosen move for the current tick.
type Action struct {
	Action gametypes.GameAction
}

// RequestUpdate asks the server to send the next update. Only used by
// clients configured to pull updates instead of having them pushed.
type RequestUpdate struct{}

func (Action) isPlayerEvent()        {}
func (RequestUpdate) isPlayerEvent() {}

func (Action) Type() string        { return EventTypeAction }
func (RequestUpdate) Type() string { return EventTypeRequestUpdate }
