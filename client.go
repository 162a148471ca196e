package matlabmcp

import (
	"context"
	"iter"
)

// Client provides an interactive, stateful interface for multi-turn
// conversations with the model.
//
// Unlike the one-shot Ask() function, Client keeps the conversation history
// across queries, so the model sees earlier prompts, answers, and tool
// results when answering a follow-up.
//
// Lifecycle: Clients are single-use. After Close(), create a new client with
// NewClient().
//
// Example usage:
//
//	client := NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    WithLogger(slog.Default()),
//	    WithMCPServer(MCPServerConfig{Name: "matlab", Command: "matlab-mcp"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for msg, err := range client.Ask(ctx, "Compute the mean of 1:10 in MATLAB") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // process message...
//	}
//
//	// Follow-up questions share the same conversation.
//	for msg, err := range client.Ask(ctx, "Now the standard deviation") {
//	    // ...
//	}
type Client interface {
	// Start resolves configuration, connects to the model provider and the
	// configured MCP servers, and loads their tools.
	// Must be called before Ask. Returns ErrNoAPIKey when no API key is
	// configured, ErrClientAlreadyConnected on a second call.
	Start(ctx context.Context, opts ...Option) error

	// Ask sends a user prompt and returns an iterator of messages for the
	// model's response, including tool calls and their results. The last
	// message is always a ResultMessage. Returns ErrClientNotConnected
	// through the iterator when Start has not been called.
	Ask(ctx context.Context, prompt string) iter.Seq2[Message, error]

	// Close terminates the MCP sessions and releases resources.
	// After Close(), the client cannot be reused. Safe to call multiple times.
	Close() error
}

// NewClient creates a new interactive client.
//
// Call Start() with options to begin a session:
//
//	client := NewClient()
//	defer client.Close()
//
//	if err := client.Start(ctx, WithLogger(slog.Default())); err != nil {
//	    log.Fatal(err)
//	}
func NewClient() Client {
	return newClientImpl()
}
