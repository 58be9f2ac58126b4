package messages

import "fmt"

// DeserializationError indicates a malformed or unrecognized wire
// message. It is fatal to the connection: the stream is ordered, so a
// message that does not parse means the protocol is desynchronized.
type DeserializationError struct {
	Reason string
	Err    error
}

func (e *DeserializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to deserialize event: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to deserialize event: %s", e.Reason)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func IsDeserializationError(err error) bool {
	_, ok := err.(*DeserializationError)
	return ok
}
