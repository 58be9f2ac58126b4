package network

import "fmt"

// ConnectionError indicates the transport failed or closed mid-operation.
// It is fatal to the current run; reconnecting is the caller's decision.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func IsConnectionError(err error) bool {
	_, ok := err.(*ConnectionError)
	return ok
}
