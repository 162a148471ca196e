package matlabmcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Lifecycle(t *testing.T) {
	ctx := context.Background()
	provider := startFakeProvider(t, providerText("Hello!"))

	client := NewClient()
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Start(ctx,
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
	))

	// Second Start fails.
	require.ErrorIs(t, client.Start(ctx), ErrClientAlreadyConnected)

	msgs := collectMessages(t, client.Ask(ctx, "Hi"))
	require.Len(t, msgs, 2)
	require.Equal(t, "Hello!", msgs[0].(*AssistantMessage).Text)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close()) // idempotent

	// Closed clients cannot be restarted or queried.
	require.ErrorIs(t, client.Start(ctx), ErrClientClosed)

	var askErr error
	for _, err := range client.Ask(ctx, "Hi again") {
		askErr = err

		break
	}
	require.ErrorIs(t, askErr, ErrClientClosed)
}

func TestClient_AskBeforeStart(t *testing.T) {
	client := NewClient()
	t.Cleanup(func() { _ = client.Close() })

	var askErr error
	for _, err := range client.Ask(context.Background(), "Hi") {
		askErr = err

		break
	}
	require.ErrorIs(t, askErr, ErrClientNotConnected)
}

func TestClient_HistoryCarriesAcrossAsks(t *testing.T) {
	ctx := context.Background()
	provider := startFakeProvider(t,
		providerText("The sum is 5."),
		providerText("Doubled, that is 10."),
	)

	client := NewClient()
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Start(ctx,
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
		WithSystemPrompt("You are a calculator."),
	))

	collectMessages(t, client.Ask(ctx, "What is 2 + 3?"))
	collectMessages(t, client.Ask(ctx, "Double it."))

	// Second request carries the full conversation: system, first user
	// turn, first answer, second user turn.
	messages, ok := provider.requests[1]["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 4)

	first, ok := messages[1].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "user", first["role"])
	require.Equal(t, "What is 2 + 3?", first["content"])
}

func TestClient_ToolCallsAcrossTurns(t *testing.T) {
	ctx := context.Background()
	provider := startFakeProvider(t,
		providerToolCall("call_1", "mcp__calculator__add", `{"a":2,"b":3}`),
		providerText("2 + 3 = 5"),
	)

	client := NewClient()
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Start(ctx,
		WithAPIKey("test-key"),
		WithBaseURL(provider.baseURL),
		WithMCPTransport("calculator", calculatorTransport(t)),
	))

	msgs := collectMessages(t, client.Ask(ctx, "What is 2 + 3?"))

	require.Len(t, msgs, 4)
	result, ok := msgs[1].(*ToolResultMessage)
	require.True(t, ok)
	require.Equal(t, "5", result.Content)
}
