package matlabmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"

	"github.com/matbridge/matlab-mcp-go/internal/config"
	"github.com/matbridge/matlab-mcp-go/internal/llm"
	"github.com/matbridge/matlab-mcp-go/internal/mcpclient"
)

// Version is the library version reported to MCP servers and peers.
const Version = "0.1.0"

const clientName = "matlab-chat"

// getLoggerWithComponent returns a logger with the component field set.
func getLoggerWithComponent(options *ChatOptions, component string) *slog.Logger {
	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	return log.With("component", component)
}

// connectServers connects the manager to every configured server and
// pre-built transport.
func connectServers(ctx context.Context, manager *mcpclient.Manager, options *ChatOptions) error {
	for _, cfg := range options.Servers {
		if err := manager.Connect(ctx, cfg); err != nil {
			return err
		}
	}

	for name, transport := range options.Transports {
		if err := manager.ConnectTransport(ctx, name, transport); err != nil {
			return err
		}
	}

	return nil
}

// collectToolDefs lists the tools of every connected server as model tool
// definitions under their qualified names.
func collectToolDefs(ctx context.Context, manager *mcpclient.Manager) ([]llm.ToolDef, error) {
	tools, err := manager.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	defs := make([]llm.ToolDef, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, llm.ToolDef{
			Name:        t.QualifiedName(),
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}

	return defs, nil
}

// Ask executes a one-shot query against the model and returns an iterator of
// messages. Tool calls requested by the model are executed against the
// configured MCP servers and fed back until the model produces a final
// answer; the last message yielded is always a ResultMessage.
//
// By default, logging is disabled. Use WithLogger to enable logging:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	for msg, err := range matlabmcp.Ask(ctx, "What is 2+3?",
//	    matlabmcp.WithLogger(logger),
//	    matlabmcp.WithMCPServer(matlabmcp.MCPServerConfig{
//	        Name: "calculator",
//	        URL:  "http://localhost:8050/sse",
//	        Transport: matlabmcp.MCPTransportSSE,
//	    }),
//	) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // process message...
//	}
func Ask(ctx context.Context, prompt string, opts ...Option) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		options := applyChatOptions(opts)
		log := getLoggerWithComponent(options, "query").With("query_id", ulid.Make().String())

		if err := config.Resolve(options); err != nil {
			yield(nil, err)

			return
		}

		model, err := llm.New(log, llm.Config{
			APIKey:      options.APIKey,
			BaseURL:     options.BaseURL,
			Model:       options.Model,
			Temperature: options.Temperature,
		})
		if err != nil {
			yield(nil, err)

			return
		}

		manager := mcpclient.NewManager(log, &mcp.Implementation{Name: clientName, Version: Version})
		defer func() {
			if err := manager.Close(); err != nil {
				log.Warn("Failed to close MCP sessions", "error", err)
			}
		}()

		if err := connectServers(ctx, manager, options); err != nil {
			yield(nil, err)

			return
		}

		toolDefs, err := collectToolDefs(ctx, manager)
		if err != nil {
			yield(nil, err)

			return
		}

		history := llm.NewHistory(options.SystemPrompt)
		history.AddUser(prompt)

		runConversation(ctx, log, model, manager, history, toolDefs, options.MaxTurns, yield)
	}
}

// runConversation drives the tool-call loop for one user prompt. It yields
// conversation messages and finishes with a ResultMessage unless the
// consumer stops early or an error occurs.
func runConversation(
	ctx context.Context,
	log *slog.Logger,
	model *llm.Client,
	manager *mcpclient.Manager,
	history *llm.History,
	toolDefs []llm.ToolDef,
	maxTurns int,
	yield func(Message, error) bool,
) {
	start := time.Now()

	for turns := 1; turns <= maxTurns; turns++ {
		turn, err := model.Complete(ctx, history, toolDefs)
		if err != nil {
			yield(nil, err)

			return
		}

		if turn.Text != "" {
			if !yield(&AssistantMessage{Text: turn.Text}, nil) {
				return
			}
		}

		if len(turn.ToolCalls) == 0 {
			log.Debug("Conversation finished", "turns", turns)
			yield(&ResultMessage{
				Text:       turn.Text,
				Turns:      turns,
				DurationMs: time.Since(start).Milliseconds(),
			}, nil)

			return
		}

		for _, call := range turn.ToolCalls {
			args := map[string]any{}
			if call.Arguments != "" {
				if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
					yield(nil, fmt.Errorf("decode arguments for tool %q: %w", call.Name, err))

					return
				}
			}

			if !yield(&ToolUseMessage{ID: call.ID, Name: call.Name, Arguments: args}, nil) {
				return
			}

			content, isError, err := manager.CallTool(ctx, call.Name, args)
			if err != nil {
				// Feed the failure back to the model instead of aborting;
				// it may recover by calling a different tool.
				log.Warn("Tool call failed", "tool", call.Name, "error", err)
				content = fmt.Sprintf("tool call failed: %v", err)
				isError = true
			}

			if !yield(&ToolResultMessage{
				ToolUseID: call.ID,
				Name:      call.Name,
				Content:   content,
				IsError:   isError,
			}, nil) {
				return
			}

			history.AddToolResult(call.ID, content)
		}
	}

	log.Warn("Turn limit reached before final answer", "max_turns", maxTurns)
	yield(&ResultMessage{
		Turns:            maxTurns,
		DurationMs:       time.Since(start).Milliseconds(),
		MaxTurnsExceeded: true,
	}, nil)
}
