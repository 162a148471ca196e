package matlabmcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/matbridge/matlab-mcp-go/internal/engine"
)

const serverName = "MatlabServer"

const serverInstructions = `MATLAB bridge server. Executes code in a running shared MATLAB session and
reads variables from its base workspace. The session must be started before
this server and shared with matlab.engine.shareEngine.

Tools:
- runMatlabCode: execute a snippet of MATLAB code in the shared session.
  Results carry a status field; on error the error_type and message fields
  describe what went wrong and stage names the execution tier that failed.
- getVariable: fetch a variable from the base workspace as JSON. Scalars,
  vectors, matrices, logicals, and text convert to native values; other
  types are returned as display strings.`

// Server exposes a shared MATLAB session over the Model Context Protocol.
//
// The server attaches to an already-running session; it never starts or
// stops MATLAB itself. Use engine.Attach to obtain the engine:
//
//	eng, err := engine.Attach(ctx, &engine.Config{Logger: logger})
//	if err != nil {
//	    // no shared session running
//	}
//	defer eng.Close()
//
//	server := matlabmcp.NewServer(logger, eng)
//	if err := server.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
type Server struct {
	mcpServer *mcp.Server
	engine    *engine.Engine
	log       *slog.Logger
}

// NewServer creates an MCP server over an attached MATLAB engine.
func NewServer(log *slog.Logger, eng *engine.Engine) *Server {
	if log == nil {
		log = NopLogger()
	}

	s := &Server{
		engine: eng,
		log:    log.With("component", "server"),
	}

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: Version},
		&mcp.ServerOptions{Instructions: serverInstructions},
	)
	s.registerTools()

	return s
}

// Run serves the MCP protocol over stdin/stdout until the client disconnects
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("Serving over stdio", "session", s.engine.SessionName())

	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect connects the server to a single transport. Used for in-process
// clients.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

// SSEHandler returns an HTTP handler serving the MCP protocol over SSE.
func (s *Server) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return s.mcpServer }, nil)
}

// HTTPHandler returns an HTTP handler serving the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcpServer }, nil)
}

// ListenAndServeSSE serves the MCP protocol over SSE on addr until ctx is
// cancelled.
func (s *Server) ListenAndServeSSE(ctx context.Context, addr string) error {
	return serveHTTP(ctx, s.log, addr, s.SSEHandler())
}

// ListenAndServeHTTP serves the streamable HTTP transport on addr until ctx
// is cancelled.
func (s *Server) ListenAndServeHTTP(ctx context.Context, addr string) error {
	return serveHTTP(ctx, s.log, addr, s.HTTPHandler())
}

// serveHTTP runs an HTTP server on addr until ctx is cancelled, then shuts
// it down gracefully.
func serveHTTP(ctx context.Context, log *slog.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	log.Info("Listening", "addr", addr)

	return g.Wait()
}
