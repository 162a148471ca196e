// Command matlab-chat is a terminal chat client that lets an LLM drive MCP
// tools.
//
// By default it launches the matlab-mcp server as a subprocess over stdio.
// Use -sse or -http to connect to an already-running server instead. The
// model provider is configured through MOONSHOT_API_KEY, MOONSHOT_BASE_URL,
// and MOONSHOT_MODEL (or the corresponding flags); a .env file in the
// working directory is loaded if present.
//
// With a prompt on the command line the client answers once and exits:
//
//	matlab-chat "what is the mean of 1:10?"
//
// Without arguments it runs an interactive session that keeps the
// conversation history across prompts.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	matlabmcp "github.com/matbridge/matlab-mcp-go"
)

func main() {
	var (
		command  = flag.String("server", "matlab-mcp", "MCP server command to launch over stdio")
		sseURL   = flag.String("sse", "", "connect to an SSE server at this URL instead of launching one")
		httpURL  = flag.String("http", "", "connect to a streamable HTTP server at this URL instead of launching one")
		model    = flag.String("model", "", "chat model (default: $MOONSHOT_MODEL)")
		system   = flag.String("system", "You are a helpful assistant with access to MATLAB through tools.", "system prompt")
		maxTurns = flag.Int("max-turns", 0, "turn limit per prompt (0 = default)")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := matlabmcp.NopLogger()
	if *debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := matlabmcp.MCPServerConfig{Name: "matlab"}
	switch {
	case *sseURL != "":
		server.Transport = matlabmcp.MCPTransportSSE
		server.URL = *sseURL
	case *httpURL != "":
		server.Transport = matlabmcp.MCPTransportHTTP
		server.URL = *httpURL
	default:
		server.Command = *command
	}

	opts := []matlabmcp.Option{
		matlabmcp.WithLogger(logger),
		matlabmcp.WithSystemPrompt(*system),
		matlabmcp.WithMCPServer(server),
	}
	if *model != "" {
		opts = append(opts, matlabmcp.WithModel(*model))
	}
	if *maxTurns > 0 {
		opts = append(opts, matlabmcp.WithMaxTurns(*maxTurns))
	}

	if prompt := strings.Join(flag.Args(), " "); prompt != "" {
		if err := askOnce(ctx, prompt, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		return
	}

	if err := interactive(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func askOnce(ctx context.Context, prompt string, opts []matlabmcp.Option) error {
	for msg, err := range matlabmcp.Ask(ctx, prompt, opts...) {
		if err != nil {
			return err
		}

		displayMessage(msg)
	}

	return nil
}

func interactive(ctx context.Context, opts []matlabmcp.Option) error {
	client := matlabmcp.NewClient()
	defer client.Close()

	if err := client.Start(ctx, opts...); err != nil {
		return err
	}

	fmt.Println("Connected. Type a prompt, or \"exit\" to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			continue
		}
		if prompt == "exit" || prompt == "quit" {
			return nil
		}

		for msg, err := range client.Ask(ctx, prompt) {
			if err != nil {
				return err
			}

			displayMessage(msg)
		}
	}
}

// displayMessage prints one conversation message.
func displayMessage(msg matlabmcp.Message) {
	switch m := msg.(type) {
	case *matlabmcp.AssistantMessage:
		fmt.Println(m.Text)

	case *matlabmcp.ToolUseMessage:
		fmt.Printf("[tool] %s\n", m.Name)

	case *matlabmcp.ToolResultMessage:
		if m.IsError {
			fmt.Printf("[tool error] %s\n", m.Content)
		}

	case *matlabmcp.ResultMessage:
		if m.MaxTurnsExceeded {
			fmt.Println("(stopped: turn limit reached)")
		}
	}
}
