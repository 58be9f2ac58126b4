package client

import "fmt"

// ProtocolError indicates the server sent an event that violates the
// join handshake or the playing state machine. It is fatal to the run.
type ProtocolError struct {
	Expected string
	Got      string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: expected %s, got %s", e.Expected, e.Got)
}

func IsProtocolError(err error) bool {
	_, ok := err.(*ProtocolError)
	return ok
}
