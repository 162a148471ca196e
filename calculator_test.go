package matlabmcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func newCalculatorSession(t *testing.T) (*CalculatorServer, *mcp.ClientSession) {
	t.Helper()

	ctx := context.Background()
	server := NewCalculatorServer(NopLogger())

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Shutdown(ctx) })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return server, session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestCalculator_ListTools(t *testing.T) {
	_, session := newCalculatorSession(t)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{"add", "query_db"}, names)
}

func TestCalculator_Add(t *testing.T) {
	_, session := newCalculatorSession(t)

	require.Equal(t, "5", callText(t, session, "add", map[string]any{"a": 2, "b": 3}))
	require.Equal(t, "-1", callText(t, session, "add", map[string]any{"a": 4, "b": -5}))
}

func TestCalculator_QueryDB(t *testing.T) {
	_, session := newCalculatorSession(t)

	require.Equal(t, "fake query result", callText(t, session, "query_db", map[string]any{}))
}

func TestCalculator_DatabaseLifecycle(t *testing.T) {
	ctx := context.Background()
	server, session := newCalculatorSession(t)

	// Tools work while serving.
	require.Equal(t, "5", callText(t, session, "add", map[string]any{"a": 2, "b": 3}))

	// After shutdown the database is disconnected and tool calls fail.
	require.NoError(t, server.Shutdown(ctx))

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "query_db", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.True(t, result.IsError)
}
