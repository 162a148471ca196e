package engine

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
)

// SessionDirEnv overrides the default session registry directory.
const SessionDirEnv = "MATLAB_SESSION_DIR"

// SessionInfo describes a shared MATLAB session registered by the shareEngine
// helper. Descriptor files are JSON documents named <session>.json in the
// session registry directory.
type SessionInfo struct {
	// Name is the session name, e.g. "MATLAB_41272".
	Name string `json:"name"`

	// Socket is the path to the session's unix control socket.
	Socket string `json:"socket"`

	// PID is the process ID of the MATLAB session.
	PID int `json:"pid"`

	// StartedAt is when the session was shared.
	StartedAt time.Time `json:"started_at"`
}

// Discoverer locates shared MATLAB sessions.
type Discoverer interface {
	// Discover returns all registered shared sessions, newest first.
	// Returns SessionNotFoundError if no sessions are registered.
	Discover() ([]SessionInfo, error)
}

// Config holds configuration for session discovery.
type Config struct {
	// Dir is an explicit session registry directory. If empty, discovery
	// uses MATLAB_SESSION_DIR or the default under the OS temp directory.
	Dir string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	dir string
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// DefaultSessionDir returns the session registry directory: the
// MATLAB_SESSION_DIR environment variable if set, otherwise
// "matlab_sessions" under the OS temp directory.
func DefaultSessionDir() string {
	if dir := os.Getenv(SessionDirEnv); dir != "" {
		return dir
	}

	return filepath.Join(os.TempDir(), "matlab_sessions")
}

// NewDiscoverer creates a session discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	dir := cfg.Dir
	if dir == "" {
		dir = DefaultSessionDir()
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		dir: dir,
		log: log,
	}
}

// Discover returns all registered shared sessions, newest first.
func (d *discoverer) Discover() ([]SessionInfo, error) {
	d.log.Debug("Finding shared MATLAB sessions", "dir", d.dir)

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			d.log.Warn("Session registry directory does not exist", "dir", d.dir)

			return nil, &errors.SessionNotFoundError{SearchedPaths: []string{d.dir}}
		}

		return nil, err
	}

	var sessions []SessionInfo

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(d.dir, entry.Name())

		info, err := readDescriptor(path)
		if err != nil {
			// Stale or half-written descriptors are skipped, not fatal.
			d.log.Debug("Skipping invalid session descriptor", "path", path, "error", err)

			continue
		}

		d.log.Debug("Found shared session", "name", info.Name, "socket", info.Socket, "pid", info.PID)
		sessions = append(sessions, info)
	}

	if len(sessions) == 0 {
		d.log.Warn("No shared MATLAB sessions found", "dir", d.dir)

		return nil, &errors.SessionNotFoundError{SearchedPaths: []string{d.dir}}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	return sessions, nil
}

// readDescriptor parses a single session descriptor file.
func readDescriptor(path string) (SessionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionInfo{}, err
	}

	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return SessionInfo{}, err
	}

	if info.Name == "" {
		info.Name = entryName(path)
	}

	return info, nil
}

// entryName derives a session name from a descriptor filename.
func entryName(path string) string {
	base := filepath.Base(path)

	return base[:len(base)-len(filepath.Ext(base))]
}
