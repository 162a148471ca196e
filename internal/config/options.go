// Package config holds the internal options shared by the chat client and
// its subsystems, plus their resolution from the environment.
package config

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matbridge/matlab-mcp-go/internal/mcpclient"
)

// Options configures the behavior of the chat client.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// APIKey authenticates against the model provider.
	// Defaults to the MOONSHOT_API_KEY environment variable.
	APIKey string

	// BaseURL is the OpenAI-compatible provider endpoint.
	// Defaults to the MOONSHOT_BASE_URL environment variable, then to the
	// Moonshot public endpoint.
	BaseURL string

	// Model specifies which chat model to use (e.g., "moonshot-v1-8k").
	// Defaults to the MOONSHOT_MODEL environment variable.
	Model string

	// Temperature, if set, overrides the provider's default sampling
	// temperature.
	Temperature *float64

	// SystemPrompt is the system message seeded into every conversation.
	SystemPrompt string

	// MaxTurns limits the number of model turns per query. A turn is one
	// completion request; tool calls and their follow-up completions each
	// count as a turn. Zero means DefaultMaxTurns.
	MaxTurns int

	// Servers lists the MCP servers whose tools are offered to the model.
	Servers []mcpclient.ServerConfig

	// Transports maps server names to pre-built MCP transports, bypassing
	// Servers for in-process or otherwise custom connections.
	Transports map[string]mcp.Transport
}

// DefaultMaxTurns bounds the tool-call loop when MaxTurns is unset.
const DefaultMaxTurns = 10
