package matlabmcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves canned chat-completion responses and records request
// bodies.
type fakeProvider struct {
	t         *testing.T
	baseURL   string
	responses []string
	requests  []map[string]any
}

func startFakeProvider(t *testing.T, responses ...string) *fakeProvider {
	t.Helper()

	p := &fakeProvider{t: t, responses: responses}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		p.requests = append(p.requests, req)

		require.NotEmpty(t, p.responses, "unexpected extra request")
		resp := p.responses[0]
		p.responses = p.responses[1:]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	p.baseURL = srv.URL

	return p
}

func providerText(text string) string {
	quoted, _ := json.Marshal(text)

	return `{
		"id": "cmpl-1",
		"object": "chat.completion",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": ` + string(quoted) + `},
			"finish_reason": "stop"
		}]
	}`
}

func providerToolCall(id, name, arguments string) string {
	quotedArgs, _ := json.Marshal(arguments)

	return `{
		"id": "cmpl-2",
		"object": "chat.completion",
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "` + id + `",
					"type": "function",
					"function": {"name": "` + name + `", "arguments": ` + string(quotedArgs) + `}
				}]
			},
			"finish_reason": "tool_calls"
		}]
	}`
}

// calculatorTransport connects an in-process calculator server and returns
// the client side of the transport.
func calculatorTransport(t *testing.T) mcp.Transport {
	t.Helper()

	ctx := context.Background()
	server := NewCalculatorServer(NopLogger())

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Shutdown(ctx) })

	return clientTransport
}

func collectMessages(t *testing.T, it func(func(Message, error) bool)) []Message {
	t.Helper()

	var msgs []Message
	for msg, err := range it {
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}

	return msgs
}

func TestAsk_ToolCallLoop(t *testing.T) {
	provider := startFakeProvider(t,
		providerToolCall("call_1", "mcp__calculator__add", `{"a":2,"b":3}`),
		providerText("2 + 3 = 5"),
	)

	msgs := collectMessages(t, Ask(context.Background(), "What is 2 + 3?",
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
		WithMCPTransport("calculator", calculatorTransport(t)),
	))

	require.Len(t, msgs, 4)

	use, ok := msgs[0].(*ToolUseMessage)
	require.True(t, ok)
	require.Equal(t, "call_1", use.ID)
	require.Equal(t, "mcp__calculator__add", use.Name)
	require.InDelta(t, 2.0, use.Arguments["a"], 1e-9)

	result, ok := msgs[1].(*ToolResultMessage)
	require.True(t, ok)
	require.Equal(t, "call_1", result.ToolUseID)
	require.Equal(t, "5", result.Content)
	require.False(t, result.IsError)

	assistant, ok := msgs[2].(*AssistantMessage)
	require.True(t, ok)
	require.Equal(t, "2 + 3 = 5", assistant.Text)

	final, ok := msgs[3].(*ResultMessage)
	require.True(t, ok)
	require.Equal(t, 2, final.Turns)
	require.Equal(t, "2 + 3 = 5", final.Text)
	require.False(t, final.MaxTurnsExceeded)

	// The model was offered the calculator tools under qualified names.
	tools, ok := provider.requests[0]["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 2)

	// The tool result was fed back on the second request.
	messages, ok := provider.requests[1]["messages"].([]any)
	require.True(t, ok)
	last, ok := messages[len(messages)-1].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "tool", last["role"])
	require.Equal(t, "call_1", last["tool_call_id"])
	require.Equal(t, "5", last["content"])
}

func TestAsk_TextOnly(t *testing.T) {
	provider := startFakeProvider(t, providerText("Hello!"))

	msgs := collectMessages(t, Ask(context.Background(), "Hi",
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
		WithSystemPrompt("You are terse."),
	))

	require.Len(t, msgs, 2)
	require.Equal(t, "Hello!", msgs[0].(*AssistantMessage).Text)
	require.Equal(t, 1, msgs[1].(*ResultMessage).Turns)

	// System prompt is the first message on the wire.
	messages, ok := provider.requests[0]["messages"].([]any)
	require.True(t, ok)
	first, ok := messages[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "system", first["role"])
}

func TestAsk_NoAPIKey(t *testing.T) {
	t.Setenv("MOONSHOT_API_KEY", "")

	var firstErr error
	for _, err := range Ask(context.Background(), "Hi") {
		firstErr = err

		break
	}
	require.ErrorIs(t, firstErr, ErrNoAPIKey)
}

func TestAsk_MaxTurnsExceeded(t *testing.T) {
	provider := startFakeProvider(t,
		providerToolCall("call_1", "mcp__calculator__add", `{"a":1,"b":1}`),
		providerToolCall("call_2", "mcp__calculator__add", `{"a":2,"b":2}`),
	)

	msgs := collectMessages(t, Ask(context.Background(), "Keep adding",
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
		WithMCPTransport("calculator", calculatorTransport(t)),
		WithMaxTurns(2),
	))

	final, ok := msgs[len(msgs)-1].(*ResultMessage)
	require.True(t, ok)
	require.True(t, final.MaxTurnsExceeded)
	require.Equal(t, 2, final.Turns)
}

func TestAsk_UnknownToolFedBackAsError(t *testing.T) {
	provider := startFakeProvider(t,
		providerToolCall("call_1", "mcp__matlab__runMatlabCode", `{"code":"1+1"}`),
		providerText("That tool is unavailable."),
	)

	msgs := collectMessages(t, Ask(context.Background(), "Run some MATLAB",
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
		WithMCPTransport("calculator", calculatorTransport(t)),
	))

	result, ok := msgs[1].(*ToolResultMessage)
	require.True(t, ok)
	require.True(t, result.IsError)
	require.Contains(t, result.Content, "tool call failed")

	final, ok := msgs[len(msgs)-1].(*ResultMessage)
	require.True(t, ok)
	require.False(t, final.MaxTurnsExceeded)
}

func TestAsk_EarlyStop(t *testing.T) {
	provider := startFakeProvider(t,
		providerToolCall("call_1", "mcp__calculator__add", `{"a":2,"b":3}`),
		providerText("done"),
	)

	count := 0
	for msg, err := range Ask(context.Background(), "What is 2 + 3?",
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
		WithMCPTransport("calculator", calculatorTransport(t)),
	) {
		require.NoError(t, err)
		require.NotNil(t, msg)
		count++

		break
	}
	require.Equal(t, 1, count)
}
