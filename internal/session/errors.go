package session

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation targets a session id that is not
// in the store (possibly archived away concurrently).
var ErrNotFound = errors.New("session not found")

// ValidationError reports a rejected field on create or update. The write is
// never attempted when one of these is returned.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError wraps a store failure. The adapter performs no retries;
// the initiating caller decides what to do.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
