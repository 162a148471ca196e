package matlabmcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matbridge/matlab-mcp-go/internal/calcdb"
)

// DefaultCalculatorAddr is the default listen address of the calculator
// server.
const DefaultCalculatorAddr = ":8050"

const calculatorInstructions = `Demo calculator server backed by a fake database.

Tools:
- add: add two integers.
- query_db: run the canned query against the database.`

// CalculatorServer is a small demo MCP server with an add tool and a fake
// database. The database connects when serving starts and disconnects when
// it stops, so tool handlers always see a live connection.
type CalculatorServer struct {
	mcpServer *mcp.Server
	db        *calcdb.Database
	log       *slog.Logger
}

type calcAddArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewCalculatorServer creates the demo calculator server.
func NewCalculatorServer(log *slog.Logger) *CalculatorServer {
	if log == nil {
		log = NopLogger()
	}
	log = log.With("component", "calculator")

	s := &CalculatorServer{
		db:  calcdb.New(log),
		log: log,
	}

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{Name: "Calculator", Version: Version},
		&mcp.ServerOptions{Instructions: calculatorInstructions},
	)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add",
		Description: "Add two numbers together",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"a": {Type: "integer", Description: "First number"},
				"b": {Type: "integer", Description: "Second number"},
			},
			Required: []string{"a", "b"},
		},
	}, s.add)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_db",
		Description: "Query the database",
	}, s.queryDB)

	return s
}

func (s *CalculatorServer) add(ctx context.Context, req *mcp.CallToolRequest, args calcAddArgs) (*mcp.CallToolResult, any, error) {
	sum, err := s.db.Add(args.A, args.B)
	if err != nil {
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%d", sum)}},
	}, nil, nil
}

func (s *CalculatorServer) queryDB(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
	result, err := s.db.Query()
	if err != nil {
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: result}},
	}, nil, nil
}

// SSEHandler returns an HTTP handler serving the MCP protocol over SSE.
func (s *CalculatorServer) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return s.mcpServer }, nil)
}

// Connect connects the server to a single transport with the database
// lifecycle managed around the session. Used for in-process clients.
func (s *CalculatorServer) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	if err := s.db.Connect(ctx); err != nil {
		return nil, err
	}

	return s.mcpServer.Connect(ctx, transport, nil)
}

// Shutdown disconnects the database.
func (s *CalculatorServer) Shutdown(ctx context.Context) error {
	return s.db.Disconnect(ctx)
}

// ListenAndServe serves the calculator over SSE on addr until ctx is
// cancelled. The database connects before the listener starts and
// disconnects after it stops.
func (s *CalculatorServer) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultCalculatorAddr
	}

	if err := s.db.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.db.Disconnect(context.Background()); err != nil {
			s.log.Warn("Database disconnect failed", "error", err)
		}
	}()

	return serveHTTP(ctx, s.log, addr, s.SSEHandler())
}
