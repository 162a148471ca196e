// Package llm wraps the model provider behind a small chat-completion API.
//
// The provider is any OpenAI-compatible endpoint; the defaults target
// Moonshot, which the chat tutorials use. Tool-calling follows the standard
// chat-completions function tool contract.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
)

const (
	// DefaultBaseURL is the Moonshot OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.moonshot.cn/v1"

	// DefaultModel is the default chat model.
	DefaultModel = "moonshot-v1-8k"
)

// Config holds provider configuration.
type Config struct {
	// APIKey authenticates against the provider. Required.
	APIKey string

	// BaseURL is the provider endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the chat model name. Defaults to DefaultModel.
	Model string

	// Temperature, if set, overrides the provider default.
	Temperature *float64

	// HTTPClient, if set, overrides the default HTTP client.
	HTTPClient *http.Client
}

// ToolDef describes a callable tool offered to the model.
type ToolDef struct {
	Name        string
	Description string

	// Parameters is the JSON schema of the tool input.
	Parameters map[string]any
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object
}

// Turn is the model's reply to one completion request.
type Turn struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
}

// History accumulates the conversation sent to the model.
type History struct {
	msgs []openai.ChatCompletionMessageParamUnion
}

// NewHistory creates a conversation history, optionally seeded with a system
// prompt.
func NewHistory(systemPrompt string) *History {
	h := &History{}
	if systemPrompt != "" {
		h.msgs = append(h.msgs, openai.SystemMessage(systemPrompt))
	}

	return h
}

// AddUser appends a user message.
func (h *History) AddUser(text string) {
	h.msgs = append(h.msgs, openai.UserMessage(text))
}

// AddToolResult appends the result of a tool call requested by the model.
func (h *History) AddToolResult(callID, content string) {
	h.msgs = append(h.msgs, openai.ToolMessage(content, callID))
}

// Len returns the number of messages in the history.
func (h *History) Len() int {
	return len(h.msgs)
}

// Client is a chat-completion client for an OpenAI-compatible provider.
type Client struct {
	api         openai.Client
	model       string
	temperature *float64
	log         *slog.Logger
}

// New creates a provider client. Returns ErrNoAPIKey if cfg.APIKey is empty.
func New(log *slog.Logger, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.ErrNoAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		log:         log.With("component", "llm", "model", model),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the history (plus tool definitions) to the model and
// returns its reply. The assistant message is appended to the history so a
// follow-up Complete call continues the same conversation.
func (c *Client) Complete(ctx context.Context, h *History, tools []ToolDef) (*Turn, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: h.msgs,
	}

	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}

	for _, t := range tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(
			shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.Parameters),
			},
		))
	}

	c.log.Debug("Requesting chat completion", "messages", len(h.msgs), "tools", len(tools))

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}

	choice := resp.Choices[0]
	h.msgs = append(h.msgs, choice.Message.ToParam())

	turn := &Turn{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}

	for _, tc := range choice.Message.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	c.log.Debug("Received chat completion",
		"finish_reason", turn.FinishReason,
		"tool_calls", len(turn.ToolCalls),
	)

	return turn, nil
}
