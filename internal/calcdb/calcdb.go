// Package calcdb provides the lifespan-managed backing resource for the
// calculator MCP server. The Database is deliberately fake: the calculator
// tutorial demonstrates wiring a connect/disconnect resource through server
// startup and shutdown, not persistence.
package calcdb

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrNotConnected indicates a tool used the database before Connect
// (or after Disconnect).
var ErrNotConnected = errors.New("database not connected")

// Database is a fake database used by the calculator tools.
type Database struct {
	log *slog.Logger

	mu        sync.Mutex
	connected bool
}

// New creates an unconnected Database.
func New(log *slog.Logger) *Database {
	if log == nil {
		log = slog.Default()
	}

	return &Database{
		log: log.With("component", "calcdb"),
	}
}

// Connect opens the database. Must be called before Query or Add.
func (d *Database) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connected = true
	d.log.InfoContext(ctx, "Database connected")

	return nil
}

// Disconnect closes the database. Safe to call multiple times.
func (d *Database) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.connected = false
	d.log.InfoContext(ctx, "Database disconnected")

	return nil
}

// Query returns a canned query result.
func (d *Database) Query() (string, error) {
	if err := d.check(); err != nil {
		return "", err
	}

	return "fake query result", nil
}

// Add returns the sum of two numbers.
func (d *Database) Add(a, b int) (int, error) {
	if err := d.check(); err != nil {
		return 0, err
	}

	return a + b, nil
}

// check returns an error if the database is not connected.
func (d *Database) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return ErrNotConnected
	}

	return nil
}
