// Package matlabmcp bridges a shared MATLAB session to the Model Context
// Protocol, and provides a chat client that lets an LLM drive the bridge's
// tools.
//
// The package has two halves. The server half attaches to a MATLAB session
// that was started beforehand and shared with matlab.engine.shareEngine, and
// exposes two tools over MCP: runMatlabCode executes arbitrary code in the
// session, and getVariable fetches a base-workspace variable as JSON. The
// client half connects an OpenAI-compatible chat model (Moonshot by default)
// to one or more MCP servers and runs the tool-call loop.
//
// # Serving a MATLAB session
//
//	eng, err := engine.Attach(ctx, &engine.Config{Logger: logger})
//	if err != nil {
//	    log.Fatal(err) // no shared session running
//	}
//	defer eng.Close()
//
//	server := matlabmcp.NewServer(logger, eng)
//	if err := server.Run(ctx); err != nil { // stdio
//	    log.Fatal(err)
//	}
//
// # One-shot queries
//
// For simple, one-shot questions, use the Ask function:
//
//	for msg, err := range matlabmcp.Ask(ctx, "What is the mean of 1:10?",
//	    matlabmcp.WithMCPServer(matlabmcp.MCPServerConfig{
//	        Name:    "matlab",
//	        Command: "matlab-mcp",
//	    }),
//	) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    switch m := msg.(type) {
//	    case *matlabmcp.AssistantMessage:
//	        fmt.Println(m.Text)
//	    case *matlabmcp.ResultMessage:
//	        fmt.Printf("Completed in %dms\n", m.DurationMs)
//	    }
//	}
//
// # Interactive sessions
//
// For multi-turn conversations, use NewClient; the conversation history is
// kept across Ask calls:
//
//	client := matlabmcp.NewClient()
//	defer client.Close()
//
//	if err := client.Start(ctx, matlabmcp.WithLogger(slog.Default())); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// The provider is configured through options or the environment: API key
// from WithAPIKey or MOONSHOT_API_KEY, endpoint from WithBaseURL or
// MOONSHOT_BASE_URL, model from WithModel or MOONSHOT_MODEL.
//
// # Error handling
//
// The package provides typed errors for different failure scenarios:
//
//	eng, err := engine.Attach(ctx, &engine.Config{Logger: logger})
//	if err != nil {
//	    var notFound *matlabmcp.SessionNotFoundError
//	    if errors.As(err, &notFound) {
//	        log.Fatalf("no shared MATLAB session, searched: %v", notFound.SearchedPaths)
//	    }
//	    log.Fatal(err)
//	}
package matlabmcp
