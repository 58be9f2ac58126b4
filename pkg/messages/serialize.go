package messages

import (
	"encoding/json"
	"fmt"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
)

// serverEnvelope is the outer object wrapping every server-to-client
// message: {"event": {"e": "<Tag>", ...}}. Client-to-server messages are
// the bare tagged object.
type serverEnvelope struct {
	Event json.RawMessage `json:"event"`
}

// wireEvent is the tagged object shared by all variants. The "e" field
// selects the variant and determines which payload fields must be set.
type wireEvent struct {
	Type     string                   `json:"e"`
	PlayerID *gametypes.PlayerID      `json:"player_id,omitempty"`
	State    *gametypes.GameState     `json:"state,omitempty"`
	Diff     *gametypes.GameStateDiff `json:"diff,omitempty"`
	Winner   *gametypes.PlayerID      `json:"winner,omitempty"`
	Action   *gametypes.GameAction    `json:"action,omitempty"`
}

// DecodeServerEvent decodes a server-to-client message. Unknown tags and
// payloads missing a required field fail with a DeserializationError.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	var envelope serverEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &DeserializationError{Reason: "invalid message", Err: err}
	}
	if len(envelope.Event) == 0 {
		return nil, &DeserializationError{Reason: "missing event envelope"}
	}
	var wire wireEvent
	if err := json.Unmarshal(envelope.Event, &wire); err != nil {
		return nil, &DeserializationError{Reason: "invalid event", Err: err}
	}

	switch wire.Type {
	case EventTypeAssignPlayerID:
		if wire.PlayerID == nil {
			return nil, &DeserializationError{Reason: "AssignPlayerId event without player_id"}
		}
		return AssignPlayerID{PlayerID: *wire.PlayerID}, nil
	case EventTypeInitialState:
		if wire.State == nil {
			return nil, &DeserializationError{Reason: "InitialState event without state"}
		}
		return InitialState{State: wire.State}, nil
	case EventTypeUpdateState:
		if wire.Diff == nil {
			return nil, &DeserializationError{Reason: "UpdateState event without diff"}
		}
		return UpdateState{Diff: wire.Diff}, nil
	case EventTypeGameOver:
		// A null or absent winner means the game ended in a draw.
		return GameOver{Winner: wire.Winner}, nil
	default:
		return nil, &DeserializationError{Reason: fmt.Sprintf("unknown event tag %q", wire.Type)}
	}
}

// EncodeServerEvent encodes a server-to-client message. The server half
// of the codec exists for the replay tooling and the test harness.
func EncodeServerEvent(event ServerEvent) ([]byte, error) {
	wire := wireEvent{Type: event.Type()}
	switch e := event.(type) {
	case AssignPlayerID:
		playerID := e.PlayerID
		wire.PlayerID = &playerID
	case InitialState:
		if e.State == nil {
			return nil, fmt.Errorf("InitialState event without state")
		}
		wire.State = e.State
	case UpdateState:
		if e.Diff == nil {
			return nil, fmt.Errorf("UpdateState event without diff")
		}
		wire.Diff = e.Diff
	case GameOver:
		wire.Winner = e.Winner
	default:
		return nil, fmt.Errorf("unknown server event type %T", event)
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %v", err)
	}
	b, err := json.Marshal(serverEnvelope{Event: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %v", err)
	}
	return b, nil
}

// DecodePlayerEvent decodes a client-to-server message.
func DecodePlayerEvent(data []byte) (PlayerEvent, error) {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &DeserializationError{Reason: "invalid event", Err: err}
	}

	switch wire.Type {
	case EventTypeAction:
		if wire.Action == nil {
			return nil, &DeserializationError{Reason: "Action event without action"}
		}
		if !wire.Action.Valid() {
			return nil, &DeserializationError{Reason: fmt.Sprintf("unknown action %q", *wire.Action)}
		}
		return Action{Action: *wire.Action}, nil
	case EventTypeRequestUpdate:
		return RequestUpdate{}, nil
	default:
		return nil, &DeserializationError{Reason: fmt.Sprintf("unknown event tag %q", wire.Type)}
	}
}

// EncodePlayerEvent encodes a client-to-server message.
func EncodePlayerEvent(event PlayerEvent) ([]byte, error) {
	wire := wireEvent{Type: event.Type()}
	switch e := event.(type) {
	case Action:
		if !e.Action.Valid() {
			return nil, fmt.Errorf("unknown action %q", e.Action)
		}
		action := e.Action
		wire.Action = &action
	case RequestUpdate:
	default:
		return nil, fmt.Errorf("unknown player event type %T", event)
	}

	b, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %v", err)
	}
	return b, nil
}
