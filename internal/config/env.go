package config

import (
	"os"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
	"github.com/matbridge/matlab-mcp-go/internal/llm"
)

// Environment variables consulted by Resolve.
const (
	EnvAPIKey  = "MOONSHOT_API_KEY"
	EnvBaseURL = "MOONSHOT_BASE_URL"
	EnvModel   = "MOONSHOT_MODEL"
)

// Resolve fills unset Options fields from the environment and applies
// defaults. Returns ErrNoAPIKey when no API key is configured anywhere.
func Resolve(opts *Options) error {
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv(EnvAPIKey)
	}
	if opts.APIKey == "" {
		return errors.ErrNoAPIKey
	}

	if opts.BaseURL == "" {
		opts.BaseURL = os.Getenv(EnvBaseURL)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = llm.DefaultBaseURL
	}

	if opts.Model == "" {
		opts.Model = os.Getenv(EnvModel)
	}
	if opts.Model == "" {
		opts.Model = llm.DefaultModel
	}

	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}

	return nil
}
