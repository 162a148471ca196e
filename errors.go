package matlabmcp

import "github.com/matbridge/matlab-mcp-go/internal/errors"

// Re-export error types from internal package

// SessionNotFoundError indicates no shared MATLAB session was found.
type SessionNotFoundError = errors.SessionNotFoundError

// EngineConnError indicates a failure talking to the MATLAB session.
type EngineConnError = errors.EngineConnError

// ExecError indicates MATLAB reported an error while executing code.
type ExecError = errors.ExecError

// ValueDecodeError indicates a workspace value could not be converted.
type ValueDecodeError = errors.ValueDecodeError

// BridgeError is the base interface for all bridge errors.
type BridgeError = errors.BridgeError

// Re-export sentinel errors from internal package.
var (
	// ErrClientNotConnected indicates the client is not connected.
	ErrClientNotConnected = errors.ErrClientNotConnected

	// ErrClientAlreadyConnected indicates the client is already connected.
	ErrClientAlreadyConnected = errors.ErrClientAlreadyConnected

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrSessionClosed indicates the MATLAB session connection was closed.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrNoAPIKey indicates no provider API key was configured.
	ErrNoAPIKey = errors.ErrNoAPIKey

	// ErrRequestTimeout indicates a request timed out.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrVariableNotFound indicates the requested workspace variable does not exist.
	ErrVariableNotFound = errors.ErrVariableNotFound
)
