package matlabmcp

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/matbridge/matlab-mcp-go/internal/engine"
)

// sessionShim is a fake shared-session endpoint answering engine requests
// over a unix socket with newline-delimited JSON.
type sessionShim struct {
	t      *testing.T
	ln     net.Listener
	handle func(req map[string]any) map[string]any
}

func startSessionShim(t *testing.T, handle func(req map[string]any) map[string]any) string {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "matlab.sock")
	ln, err := net.Listen("unix", socket)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	shim := &sessionShim{t: t, ln: ln, handle: handle}
	go shim.serve()

	return socket
}

func (f *sessionShim) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req map[string]any
		if json.Unmarshal(scanner.Bytes(), &req) != nil {
			continue
		}

		resp := f.handle(req)
		if resp == nil {
			continue
		}
		resp["id"] = req["id"]

		data, err := json.Marshal(resp)
		if err != nil {
			continue
		}
		if _, err := conn.Write(append(data, '\n')); err != nil {
			return
		}
	}
}

// newTestSession connects a client session to a bridge server backed by the
// given shim behavior.
func newTestSession(t *testing.T, handle func(req map[string]any) map[string]any) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	socket := startSessionShim(t, handle)

	sess, err := engine.Connect(ctx, NopLogger(), engine.SessionInfo{Name: "MATLAB_TEST", Socket: socket})
	require.NoError(t, err)

	eng := engine.New(NopLogger(), sess)
	t.Cleanup(func() { _ = eng.Close() })

	server := NewServer(NopLogger(), eng)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

func callToolDict(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var dict map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &dict))

	return dict
}

func TestServer_ListTools(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": true}
	})

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{"runMatlabCode", "getVariable"}, names)
}

func TestServer_RunMatlabCode_Success(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		require.Equal(t, "run", req["op"])

		return map[string]any{"ok": true}
	})

	dict := callToolDict(t, session, "runMatlabCode", map[string]any{"code": "x = 1 + 1;"})
	require.Equal(t, "success", dict["status"])
	require.Contains(t, dict["output"], "temporary file")
}

func TestServer_RunMatlabCode_FallsBackToEvalc(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		if req["op"] == "run" {
			return map[string]any{"ok": false, "error": map[string]any{
				"identifier": "MATLAB:run:fileNotFound",
				"message":    "running as script failed",
			}}
		}
		require.Equal(t, "evalc", req["op"])

		return map[string]any{"ok": true, "output": "ans =\n\n     5\n"}
	})

	dict := callToolDict(t, session, "runMatlabCode", map[string]any{"code": "2 + 3"})
	require.Equal(t, "success", dict["status"])
	require.Contains(t, dict["output"], "5")
}

func TestServer_RunMatlabCode_BothTiersFail(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": false, "error": map[string]any{
			"identifier": "MATLAB:UndefinedFunction",
			"message":    "Undefined function 'frobnicate'.",
		}}
	})

	dict := callToolDict(t, session, "runMatlabCode", map[string]any{"code": "frobnicate()"})
	require.Equal(t, "error", dict["status"])
	require.Equal(t, "MatlabExecutionError", dict["error_type"])
	require.Equal(t, "evalc_fallback", dict["stage"])
	require.Contains(t, dict["message"], "tried temp file then evalc")
	require.Contains(t, dict["message"], "Undefined function")
}

func TestServer_RunMatlabCode_EmptyCode(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		t.Error("no engine request expected")

		return nil
	})

	dict := callToolDict(t, session, "runMatlabCode", map[string]any{"code": "   "})
	require.Equal(t, "error", dict["status"])
	require.Equal(t, "ValueError", dict["error_type"])
}

func TestServer_GetVariable_Success(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		require.Equal(t, "get", req["op"])
		require.Equal(t, "x", req["name"])

		return map[string]any{"ok": true, "value": map[string]any{
			"class": "double",
			"size":  []int{1, 1},
			"data":  42,
		}}
	})

	dict := callToolDict(t, session, "getVariable", map[string]any{"variable_name": "x"})
	require.Equal(t, "success", dict["status"])
	require.Equal(t, "x", dict["variable"])
	require.InDelta(t, 42.0, dict["value"], 1e-9)
}

func TestServer_GetVariable_NotFound(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": false, "error": map[string]any{
			"identifier": "MATLAB:workspace:variableNotFound",
			"message":    "Undefined variable 'nope'.",
		}}
	})

	dict := callToolDict(t, session, "getVariable", map[string]any{"variable_name": "nope"})
	require.Equal(t, "error", dict["status"])
	require.Equal(t, "KeyError", dict["error_type"])
	require.Contains(t, dict["message"], "nope")
}

func TestServer_GetVariable_UnconvertibleValue(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": true, "value": map[string]any{
			"class": "function_handle",
			"size":  []int{1, 1},
			"data":  map[string]any{"opaque": true},
		}}
	})

	dict := callToolDict(t, session, "getVariable", map[string]any{"variable_name": "f"})
	require.Equal(t, "error", dict["status"])
	require.Equal(t, "TypeError", dict["error_type"])
}

func TestServer_GetVariable_EmptyName(t *testing.T) {
	session := newTestSession(t, func(req map[string]any) map[string]any {
		t.Error("no engine request expected")

		return nil
	})

	dict := callToolDict(t, session, "getVariable", map[string]any{"variable_name": ""})
	require.Equal(t, "error", dict["status"])
	require.Equal(t, "ValueError", dict["error_type"])
}

func TestServer_EngineErrorAfterDetach(t *testing.T) {
	ctx := context.Background()
	socket := startSessionShim(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": true}
	})

	sess, err := engine.Connect(ctx, NopLogger(), engine.SessionInfo{Name: "MATLAB_TEST", Socket: socket})
	require.NoError(t, err)

	eng := engine.New(NopLogger(), sess)
	server := NewServer(NopLogger(), eng)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	require.NoError(t, eng.Close())

	dict := callToolDict(t, clientSession, "getVariable", map[string]any{"variable_name": "x"})
	require.Equal(t, "error", dict["status"])
	require.Equal(t, "EngineError", dict["error_type"])
}
