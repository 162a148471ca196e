package matlabmcp

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matbridge/matlab-mcp-go/internal/config"
	"github.com/matbridge/matlab-mcp-go/internal/mcpclient"
)

// ChatOptions configures the behavior of the chat client.
type ChatOptions = config.Options

// MCPServerConfig describes how to reach one MCP server.
type MCPServerConfig = mcpclient.ServerConfig

// MCP transport kinds accepted in MCPServerConfig.
const (
	MCPTransportStdio = mcpclient.TransportStdio
	MCPTransportSSE   = mcpclient.TransportSSE
	MCPTransportHTTP  = mcpclient.TransportHTTP
)

// Option configures ChatOptions using the functional options pattern.
// This is the primary option type for configuring clients and queries.
type Option func(*ChatOptions)

// applyChatOptions applies functional options to a ChatOptions struct.
func applyChatOptions(opts []Option) *ChatOptions {
	options := &ChatOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *ChatOptions) {
		o.Logger = logger
	}
}

// WithAPIKey sets the provider API key.
// If not set, the MOONSHOT_API_KEY environment variable is used.
func WithAPIKey(key string) Option {
	return func(o *ChatOptions) {
		o.APIKey = key
	}
}

// WithBaseURL sets the OpenAI-compatible provider endpoint.
// If not set, the MOONSHOT_BASE_URL environment variable is used, then the
// Moonshot public endpoint.
func WithBaseURL(url string) Option {
	return func(o *ChatOptions) {
		o.BaseURL = url
	}
}

// WithModel specifies which chat model to use (e.g., "moonshot-v1-8k").
func WithModel(model string) Option {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

// WithTemperature overrides the provider's default sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(o *ChatOptions) {
		o.Temperature = &temperature
	}
}

// WithSystemPrompt sets the system message seeded into every conversation.
func WithSystemPrompt(prompt string) Option {
	return func(o *ChatOptions) {
		o.SystemPrompt = prompt
	}
}

// WithMaxTurns limits the number of model turns per query.
func WithMaxTurns(maxTurns int) Option {
	return func(o *ChatOptions) {
		o.MaxTurns = maxTurns
	}
}

// WithMCPServer adds an MCP server whose tools are offered to the model.
func WithMCPServer(cfg MCPServerConfig) Option {
	return func(o *ChatOptions) {
		o.Servers = append(o.Servers, cfg)
	}
}

// WithMCPTransport adds an MCP server reachable over a pre-built transport.
// Use this to connect to an in-process server.
func WithMCPTransport(name string, transport mcp.Transport) Option {
	return func(o *ChatOptions) {
		if o.Transports == nil {
			o.Transports = make(map[string]mcp.Transport)
		}
		o.Transports[name] = transport
	}
}
