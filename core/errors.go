package session

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied reports that microphone access was refused. Terminal
// for the current connection attempt; the controller stays in
// StateConnecting awaiting an explicit retry.
var ErrPermissionDenied = errors.New("microphone access denied")

// ErrUnexpectedClose reports that the remote end went away without an
// explicit close message.
var ErrUnexpectedClose = errors.New("remote session closed unexpectedly")

// ConnectionError wraps a handshake or mid-session transport failure.
type ConnectionError struct {
	Stage string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failure during %s: %v", e.Stage, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ToolExecutionError wraps a tool handler failure. Isolated per call: the
// failing call still produces a result for the remote model.
type ToolExecutionError struct {
	ID   string
	Name string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("failed to execute tool %q (call %s): %v", e.Name, e.ID, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
