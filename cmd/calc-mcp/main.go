// Command calc-mcp serves the demo calculator over MCP with SSE transport.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	matlabmcp "github.com/matbridge/matlab-mcp-go"
)

func main() {
	var (
		addr  = flag.String("addr", matlabmcp.DefaultCalculatorAddr, "listen address")
		debug = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := matlabmcp.NewCalculatorServer(logger)
	if err := server.ListenAndServe(ctx, *addr); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
