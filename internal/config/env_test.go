package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
	"github.com/matbridge/matlab-mcp-go/internal/llm"
)

func TestResolve_FromEnvironment(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvBaseURL, "https://proxy.example.com/v1")
	t.Setenv(EnvModel, "moonshot-v1-32k")

	opts := &Options{}
	require.NoError(t, Resolve(opts))
	require.Equal(t, "sk-env", opts.APIKey)
	require.Equal(t, "https://proxy.example.com/v1", opts.BaseURL)
	require.Equal(t, "moonshot-v1-32k", opts.Model)
	require.Equal(t, DefaultMaxTurns, opts.MaxTurns)
}

func TestResolve_ExplicitOptionsWin(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvModel, "moonshot-v1-32k")

	opts := &Options{APIKey: "sk-explicit", Model: "moonshot-v1-8k", MaxTurns: 3}
	require.NoError(t, Resolve(opts))
	require.Equal(t, "sk-explicit", opts.APIKey)
	require.Equal(t, "moonshot-v1-8k", opts.Model)
	require.Equal(t, 3, opts.MaxTurns)
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvModel, "")

	opts := &Options{}
	require.NoError(t, Resolve(opts))
	require.Equal(t, llm.DefaultBaseURL, opts.BaseURL)
	require.Equal(t, llm.DefaultModel, opts.Model)
}

func TestResolve_MissingAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	err := Resolve(&Options{})
	require.ErrorIs(t, err, errors.ErrNoAPIKey)
}
