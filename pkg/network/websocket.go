package network

import (
	"context"
	"fmt"

	"github.com/ch1nq/arcadio-go/pkg/log"
	"nhooyr.io/websocket"
)

// maxMessageSize bounds a single inbound message. Initial snapshots
// carry every trail blob of a running game, so the default websocket
// read limit is far too small.
const maxMessageSize = 4 << 20

// WSConnection is a Connection over a WebSocket.
type WSConnection struct {
	conn *websocket.Conn
}

// Dial connects to the game server's join endpoint for the client type.
func Dial(ctx context.Context, host string, port int, clientType ClientType) (*WSConnection, error) {
	return DialURL(ctx, fmt.Sprintf("ws://%s:%d%s", host, port, clientType.JoinPath()))
}

// DialURL connects to a join endpoint given as a full websocket URL.
func DialURL(ctx context.Context, url string) (*WSConnection, error) {
	log.Debug("Connecting to game server at %s", url)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("failed to connect to %s: %v", url, err)}
	}
	conn.SetReadLimit(maxMessageSize)
	return &WSConnection{conn: conn}, nil
}

// ReadMessage blocks until the next message arrives. Text and binary
// frames are treated the same: the payload is JSON either way.
func (c *WSConnection) ReadMessage(ctx context.Context) ([]byte, error) {
	_, b, err := c.conn.Read(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return b, nil
}

// WriteMessage sends one message as a binary frame. The server drops
// anything that is not binary.
func (c *WSConnection) WriteMessage(ctx context.Context, b []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

// Close closes the connection with a normal closure status.
func (c *WSConnection) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
