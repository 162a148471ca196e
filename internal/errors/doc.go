// Package errors defines error types for the MATLAB MCP bridge.
//
// This package provides structured error types for the failure scenarios of
// the engine bridge and the chat client. All error types support error
// unwrapping and can be checked using errors.Is and errors.As.
package errors
