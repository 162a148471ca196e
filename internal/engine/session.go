package engine

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
)

const (
	// maxScanTokenSize is the maximum buffer size for reading session
	// response lines. Captured MATLAB output can be large.
	maxScanTokenSize = 1024 * 1024 // 1MB
)

// request is a single engine request sent to the session shim.
type request struct {
	ID   string `json:"id"`
	Op   string `json:"op"`
	Code string `json:"code,omitempty"`
	File string `json:"file,omitempty"`
	Name string `json:"name,omitempty"`
}

// response is a single engine response from the session shim.
type response struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Output string          `json:"output,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
	Error  *responseError  `json:"error,omitempty"`
}

// responseError carries a MATLAB error identifier and message.
type responseError struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// Session is an attached connection to a shared MATLAB session.
//
// All requests are correlated by ID, so calls may be issued from multiple
// goroutines, but they execute sequentially inside the single MATLAB session.
type Session struct {
	info SessionInfo
	log  *slog.Logger

	conn net.Conn

	writeMu sync.Mutex // protects writes to conn

	mu      sync.Mutex // protects pending and closed
	pending map[string]chan *response
	closed  bool

	done chan struct{}
}

// Connect attaches to the shared session described by info.
//
// Returns EngineConnError if the control socket cannot be dialed. The
// returned session owns the connection; call Close when done.
func Connect(ctx context.Context, log *slog.Logger, info SessionInfo) (*Session, error) {
	log = log.With("component", "engine_session", "session", info.Name)
	log.Info("Connecting to shared MATLAB session", "socket", info.Socket)

	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "unix", info.Socket)
	if err != nil {
		log.Error("Failed to connect to MATLAB session", "error", err)

		return nil, &errors.EngineConnError{Session: info.Name, Err: fmt.Errorf("dial %s: %w", info.Socket, err)}
	}

	s := &Session{
		info:    info,
		log:     log,
		conn:    conn,
		pending: make(map[string]chan *response),
		done:    make(chan struct{}),
	}

	go s.readLoop()

	log.Info("Successfully connected to shared MATLAB session")

	return s, nil
}

// Info returns the session descriptor this session was attached from.
func (s *Session) Info() SessionInfo {
	return s.info
}

// Call sends a request and waits for the matching response.
//
// Returns EngineConnError if the session fails at the transport level, or
// ExecError if MATLAB reported an error for the request.
func (s *Session) Call(ctx context.Context, req request) (*response, error) {
	req.ID = ulid.Make().String()

	ch := make(chan *response, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil, &errors.EngineConnError{Session: s.info.Name, Err: errors.ErrSessionClosed}
	}

	s.pending[req.ID] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, req.ID)
		s.mu.Unlock()
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	s.log.Debug("Sending engine request", "id", req.ID, "op", req.Op)

	s.writeMu.Lock()
	_, err = s.conn.Write(append(data, '\n'))
	s.writeMu.Unlock()

	if err != nil {
		return nil, &errors.EngineConnError{Session: s.info.Name, Err: fmt.Errorf("write request: %w", err)}
	}

	select {
	case resp := <-ch:
		if !resp.OK {
			execErr := &errors.ExecError{Message: "unknown engine error"}
			if resp.Error != nil {
				execErr.Identifier = resp.Error.Identifier
				execErr.Message = resp.Error.Message
			}

			return nil, execErr
		}

		return resp, nil

	case <-s.done:
		return nil, &errors.EngineConnError{Session: s.info.Name, Err: errors.ErrSessionClosed}

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readLoop reads newline-delimited JSON responses from the socket and
// dispatches them to waiting callers by request ID.
func (s *Session) readLoop() {
	defer close(s.done)

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxScanTokenSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			s.log.Warn("Failed to decode engine response", "error", err)

			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[resp.ID]
		s.mu.Unlock()

		if !ok {
			s.log.Debug("Dropping response with no matching request", "id", resp.ID)

			continue
		}

		ch <- &resp
	}

	if err := scanner.Err(); err != nil && !stderrors.Is(err, io.ErrClosedPipe) && !stderrors.Is(err, net.ErrClosed) {
		s.log.Warn("Engine session read loop ended", "error", err)
	} else {
		s.log.Debug("Engine session read loop ended")
	}
}

// Close detaches from the session. The shared MATLAB session itself keeps
// running; only this connection is torn down. Safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	s.mu.Unlock()

	s.log.Info("Detaching from shared MATLAB session")

	return s.conn.Close()
}
