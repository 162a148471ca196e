package matlabmcp

import (
	"context"
	"iter"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matbridge/matlab-mcp-go/internal/config"
	"github.com/matbridge/matlab-mcp-go/internal/errors"
	"github.com/matbridge/matlab-mcp-go/internal/llm"
	"github.com/matbridge/matlab-mcp-go/internal/mcpclient"
)

// Compile-time verification that clientImpl implements Client.
var _ Client = (*clientImpl)(nil)

// clientImpl is the default Client implementation.
type clientImpl struct {
	mu      sync.Mutex
	started bool
	closed  bool

	log      *slog.Logger
	options  *ChatOptions
	model    *llm.Client
	manager  *mcpclient.Manager
	history  *llm.History
	toolDefs []llm.ToolDef
}

func newClientImpl() *clientImpl {
	return &clientImpl{}
}

func (c *clientImpl) Start(ctx context.Context, opts ...Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}
	if c.started {
		return errors.ErrClientAlreadyConnected
	}

	options := applyChatOptions(opts)
	log := getLoggerWithComponent(options, "client")

	if err := config.Resolve(options); err != nil {
		return err
	}

	model, err := llm.New(log, llm.Config{
		APIKey:      options.APIKey,
		BaseURL:     options.BaseURL,
		Model:       options.Model,
		Temperature: options.Temperature,
	})
	if err != nil {
		return err
	}

	manager := mcpclient.NewManager(log, &mcp.Implementation{Name: clientName, Version: Version})

	if err := connectServers(ctx, manager, options); err != nil {
		_ = manager.Close()

		return err
	}

	toolDefs, err := collectToolDefs(ctx, manager)
	if err != nil {
		_ = manager.Close()

		return err
	}

	c.log = log
	c.options = options
	c.model = model
	c.manager = manager
	c.history = llm.NewHistory(options.SystemPrompt)
	c.toolDefs = toolDefs
	c.started = true

	log.Info("Client started", "model", options.Model, "tools", len(toolDefs))

	return nil
}

func (c *clientImpl) Ask(ctx context.Context, prompt string) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		c.mu.Lock()

		if c.closed {
			c.mu.Unlock()
			yield(nil, errors.ErrClientClosed)

			return
		}
		if !c.started {
			c.mu.Unlock()
			yield(nil, errors.ErrClientNotConnected)

			return
		}

		// Hold the lock for the whole exchange: the history is shared
		// state and queries on one client are sequential.
		defer c.mu.Unlock()

		c.history.AddUser(prompt)

		runConversation(ctx, c.log, c.model, c.manager, c.history, c.toolDefs, c.options.MaxTurns, yield)
	}
}

func (c *clientImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.manager != nil {
		return c.manager.Close()
	}

	return nil
}
