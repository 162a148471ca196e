package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
)

// Engine operation names understood by the session shim.
const (
	opRun   = "run"
	opEvalc = "evalc"
	opGet   = "get"
	opPing  = "ping"
)

// missingVariableIdentifier is the error identifier the shim reports when a
// requested workspace variable does not exist.
const missingVariableIdentifier = "MATLAB:workspace:variableNotFound"

// Engine executes MATLAB code in an attached shared session.
type Engine struct {
	session *Session
	log     *slog.Logger
}

// New wraps an attached session in the execution API.
func New(log *slog.Logger, session *Session) *Engine {
	return &Engine{
		session: session,
		log:     log.With("component", "engine"),
	}
}

// Attach discovers shared sessions in cfg and connects to the first one.
//
// Mirrors the server startup sequence: discovery failure or connection
// failure is fatal to the caller, since the whole server depends on the one
// shared session.
func Attach(ctx context.Context, cfg *Config) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	sessions, err := NewDiscoverer(cfg).Discover()
	if err != nil {
		return nil, err
	}

	session, err := Connect(ctx, log, sessions[0])
	if err != nil {
		return nil, err
	}

	return New(log, session), nil
}

// SessionName returns the name of the attached session.
func (e *Engine) SessionName() string {
	return e.session.Info().Name
}

// Close detaches from the session.
func (e *Engine) Close() error {
	return e.session.Close()
}

// Ping verifies the session is responsive.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.session.Call(ctx, request{Op: opPing})

	return err
}

// Run executes the MATLAB script file at path in the session, discarding
// output. Returns ExecError if the script raises a MATLAB error.
func (e *Engine) Run(ctx context.Context, path string) error {
	e.log.Debug("Running script file", "path", path)

	_, err := e.session.Call(ctx, request{Op: opRun, File: path})

	return err
}

// Evalc executes code in the session and returns the captured command-window
// output. Returns ExecError if the code raises a MATLAB error.
func (e *Engine) Evalc(ctx context.Context, code string) (string, error) {
	e.log.Debug("Evaluating code with output capture", "bytes", len(code))

	resp, err := e.session.Call(ctx, request{Op: opEvalc, Code: code})
	if err != nil {
		return "", err
	}

	return resp.Output, nil
}

// Workspace fetches a variable from the session workspace and converts it to
// a JSON-serializable Go value.
//
// Returns ErrVariableNotFound if the variable does not exist, and
// ValueDecodeError if the value cannot be converted.
func (e *Engine) Workspace(ctx context.Context, name string) (any, error) {
	e.log.Debug("Fetching workspace variable", "name", name)

	resp, err := e.session.Call(ctx, request{Op: opGet, Name: name})
	if err != nil {
		var execErr *errors.ExecError
		if stderrors.As(err, &execErr) && execErr.Identifier == missingVariableIdentifier {
			return nil, fmt.Errorf("variable %q: %w", name, errors.ErrVariableNotFound)
		}

		return nil, err
	}

	value, err := Decode(name, resp.Value)
	if err != nil {
		return nil, err
	}

	return value, nil
}
