package network

import "context"

// ClientType selects the join endpoint for a new connection. Players
// take part in the game; observers only receive state updates.
type ClientType int

const (
	ClientTypePlayer ClientType = iota
	ClientTypeObserver
)

func (t ClientType) String() string {
	switch t {
	case ClientTypePlayer:
		return "player"
	case ClientTypeObserver:
		return "observer"
	default:
		return "unknown"
	}
}

// JoinPath returns the join endpoint path for the client type.
func (t ClientType) JoinPath() string {
	return "/join/" + t.String()
}

// Connection is a message-framed, ordered, bidirectional connection to
// the game server.
type Connection interface {
	// ReadMessage blocks until the next inbound message arrives.
	ReadMessage(ctx context.Context) ([]byte, error)
	// WriteMessage sends one message.
	WriteMessage(ctx context.Context, b []byte) error
	// Close closes the connection.
	Close() error
}
