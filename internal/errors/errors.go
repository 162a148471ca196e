package errors

import (
	"errors"
	"fmt"
)

// BridgeError is the base interface for all errors raised by this module.
type BridgeError interface {
	error
	IsBridgeError() bool
}

// Compile-time verification that all error types implement BridgeError.
var (
	_ BridgeError = (*SessionNotFoundError)(nil)
	_ BridgeError = (*EngineConnError)(nil)
	_ BridgeError = (*ExecError)(nil)
	_ BridgeError = (*ValueDecodeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrClientNotConnected indicates the chat client is not connected.
	ErrClientNotConnected = errors.New("client not connected")

	// ErrClientAlreadyConnected indicates the chat client is already connected.
	ErrClientAlreadyConnected = errors.New("client already connected")

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.New("client closed: clients are single-use, create a new one with NewClient()")

	// ErrSessionClosed indicates the engine session was closed.
	ErrSessionClosed = errors.New("engine session closed")

	// ErrNoAPIKey indicates no model-provider API key was configured.
	ErrNoAPIKey = errors.New("no API key: set MOONSHOT_API_KEY or use WithAPIKey")

	// ErrRequestTimeout indicates an engine request timed out.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrVariableNotFound indicates the requested variable does not exist in
	// the MATLAB workspace.
	ErrVariableNotFound = errors.New("variable not found in MATLAB workspace")
)

// SessionNotFoundError indicates no shared MATLAB session was discovered.
//
// A shared session must be started externally before the server starts:
// run the shareEngine helper in a MATLAB command window. The server only
// attaches to sessions, it never starts them.
type SessionNotFoundError struct {
	SearchedPaths []string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("no shared MATLAB sessions found in: %v", e.SearchedPaths)
}

// IsBridgeError implements BridgeError.
func (e *SessionNotFoundError) IsBridgeError() bool { return true }

// EngineConnError indicates failure to communicate with the MATLAB session.
// It covers dial failures, broken sockets, and protocol-level faults, as
// opposed to errors raised by MATLAB code itself (see ExecError).
type EngineConnError struct {
	Session string
	Err     error
}

func (e *EngineConnError) Error() string {
	return fmt.Sprintf("MATLAB engine error (session %q): %v", e.Session, e.Err)
}

func (e *EngineConnError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *EngineConnError) IsBridgeError() bool { return true }

// ExecError indicates MATLAB raised an error while executing code.
// Identifier is the MATLAB error identifier (e.g. "MATLAB:UndefinedFunction").
// Stage records which execution tier failed ("temp_file" or "evalc_fallback").
type ExecError struct {
	Identifier string
	Message    string
	Stage      string
}

func (e *ExecError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("MATLAB execution failed (%s): %s", e.Identifier, e.Message)
	}

	return fmt.Sprintf("MATLAB execution failed: %s", e.Message)
}

// IsBridgeError implements BridgeError.
func (e *ExecError) IsBridgeError() bool { return true }

// ValueDecodeError indicates a workspace value could not be converted to a
// JSON-serializable Go value. The original MATLAB class is preserved.
type ValueDecodeError struct {
	Variable string
	Class    string
	Err      error
}

func (e *ValueDecodeError) Error() string {
	return fmt.Sprintf("cannot decode variable %q (MATLAB class %s): %v", e.Variable, e.Class, e.Err)
}

func (e *ValueDecodeError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *ValueDecodeError) IsBridgeError() bool { return true }
