// Command matlab-mcp serves a shared MATLAB session over the Model Context
// Protocol.
//
// The MATLAB session must be started beforehand and shared by running
// matlab.engine.shareEngine in its Command Window. The server attaches to
// the session at startup and exits with an error if none is found; it never
// starts or stops MATLAB itself.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	matlabmcp "github.com/matbridge/matlab-mcp-go"
	"github.com/matbridge/matlab-mcp-go/internal/engine"
)

func main() {
	var (
		transport  = flag.String("transport", "stdio", "MCP transport: stdio, sse, or http")
		addr       = flag.String("addr", ":8051", "listen address for sse and http transports")
		sessionDir = flag.String("session-dir", "", "session descriptor directory (default: $MATLAB_SESSION_DIR or the system temp dir)")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// Optional; configuration may come from the real environment.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *transport, *addr, *sessionDir); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, transport, addr, sessionDir string) error {
	eng, err := engine.Attach(ctx, &engine.Config{Dir: sessionDir, Logger: logger})
	if err != nil {
		var notFound *matlabmcp.SessionNotFoundError
		if stderrors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error: no shared MATLAB session found.")
			fmt.Fprintf(os.Stderr, "Searched: %v\n", notFound.SearchedPaths)
			fmt.Fprintln(os.Stderr, "Start MATLAB first and run matlab.engine.shareEngine in its Command Window, then restart this server.")
		}

		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Warn("Detach failed", "error", err)
		}
	}()

	if err := eng.Ping(ctx); err != nil {
		return fmt.Errorf("session unresponsive: %w", err)
	}

	logger.Info("Attached to shared MATLAB session", "session", eng.SessionName())

	server := matlabmcp.NewServer(logger, eng)

	switch transport {
	case "stdio":
		return server.Run(ctx)
	case "sse":
		return server.ListenAndServeSSE(ctx, addr)
	case "http":
		return server.ListenAndServeHTTP(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (want stdio, sse, or http)", transport)
	}
}
