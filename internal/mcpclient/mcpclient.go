// Package mcpclient manages client connections to MCP servers.
//
// A Manager holds one session per configured server and exposes the union of
// their tools under qualified names of the form mcp__<server>__<tool>, so a
// model can address tools from several servers without collisions.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Transport kinds accepted in ServerConfig.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

const toolNamePrefix = "mcp__"

// ServerConfig describes how to reach one MCP server.
type ServerConfig struct {
	// Name identifies the server in qualified tool names.
	Name string

	// Transport selects the connection kind. Defaults to TransportStdio
	// when Command is set, TransportHTTP when URL is set.
	Transport string

	// Command and Args launch a stdio server as a subprocess.
	Command string
	Args    []string
	Env     []string

	// URL is the endpoint of an SSE or streamable HTTP server.
	URL string
}

func (c ServerConfig) transport() (mcp.Transport, error) {
	kind := c.Transport
	if kind == "" {
		switch {
		case c.Command != "":
			kind = TransportStdio
		case c.URL != "":
			kind = TransportHTTP
		default:
			return nil, fmt.Errorf("server %q: no command or URL configured", c.Name)
		}
	}

	switch kind {
	case TransportStdio:
		if c.Command == "" {
			return nil, fmt.Errorf("server %q: stdio transport requires a command", c.Name)
		}
		cmd := exec.Command(c.Command, c.Args...)
		cmd.Env = append(os.Environ(), c.Env...)
		cmd.Stderr = os.Stderr

		return &mcp.CommandTransport{Command: cmd}, nil
	case TransportSSE:
		if c.URL == "" {
			return nil, fmt.Errorf("server %q: sse transport requires a URL", c.Name)
		}

		return &mcp.SSEClientTransport{Endpoint: c.URL}, nil
	case TransportHTTP:
		if c.URL == "" {
			return nil, fmt.Errorf("server %q: http transport requires a URL", c.Name)
		}

		return &mcp.StreamableClientTransport{Endpoint: c.URL}, nil
	default:
		return nil, fmt.Errorf("server %q: unknown transport %q", c.Name, kind)
	}
}

// Tool is a tool exposed by a connected server.
type Tool struct {
	// Server is the configured server name.
	Server string

	// Name is the tool's own name on its server.
	Name string

	Description string

	// InputSchema is the tool's JSON schema as a generic object.
	InputSchema map[string]any
}

// QualifiedName returns the name the tool is addressed by across servers.
func (t Tool) QualifiedName() string {
	return QualifiedName(t.Server, t.Name)
}

// QualifiedName builds the cross-server tool name mcp__<server>__<tool>.
func QualifiedName(server, tool string) string {
	return toolNamePrefix + server + "__" + tool
}

// SplitQualifiedName parses a qualified tool name back into its server and
// tool parts. ok is false when name is not a qualified name.
func SplitQualifiedName(name string) (server, tool string, ok bool) {
	rest, found := strings.CutPrefix(name, toolNamePrefix)
	if !found {
		return "", "", false
	}

	server, tool, found = strings.Cut(rest, "__")
	if !found || server == "" || tool == "" {
		return "", "", false
	}

	return server, tool, true
}

// Manager holds sessions to one or more MCP servers.
type Manager struct {
	client *mcp.Client
	log    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*mcp.ClientSession
}

// NewManager creates a Manager identifying itself with the given client info.
func NewManager(log *slog.Logger, impl *mcp.Implementation) *Manager {
	return &Manager{
		client:   mcp.NewClient(impl, nil),
		log:      log.With("component", "mcpclient"),
		sessions: make(map[string]*mcp.ClientSession),
	}
}

// Connect establishes a session to the configured server.
func (m *Manager) Connect(ctx context.Context, cfg ServerConfig) error {
	transport, err := cfg.transport()
	if err != nil {
		return err
	}

	return m.ConnectTransport(ctx, cfg.Name, transport)
}

// ConnectTransport establishes a session over an already-built transport.
func (m *Manager) ConnectTransport(ctx context.Context, name string, transport mcp.Transport) error {
	if name == "" {
		return fmt.Errorf("server name must not be empty")
	}

	session, err := m.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("connect to server %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		_ = session.Close()

		return fmt.Errorf("server %q already connected", name)
	}
	m.sessions[name] = session

	m.log.Info("Connected to MCP server", "server", name)

	return nil
}

func (m *Manager) session(name string) (*mcp.ClientSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[name]
	if !ok {
		return nil, fmt.Errorf("no session for server %q", name)
	}

	return session, nil
}

func (m *Manager) serverNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// ListTools lists the tools of every connected server.
func (m *Manager) ListTools(ctx context.Context) ([]Tool, error) {
	var tools []Tool

	for _, name := range m.serverNames() {
		session, err := m.session(name)
		if err != nil {
			return nil, err
		}

		result, err := session.ListTools(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("list tools on server %q: %w", name, err)
		}

		for _, t := range result.Tools {
			schema, err := schemaToMap(t.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("tool %q on server %q: %w", t.Name, name, err)
			}

			tools = append(tools, Tool{
				Server:      name,
				Name:        t.Name,
				Description: t.Description,
				InputSchema: schema,
			})
		}
	}

	return tools, nil
}

// CallTool invokes a tool by its qualified name and flattens the result
// content to text. isError reports whether the server flagged the result as
// a tool error.
func (m *Manager) CallTool(ctx context.Context, qualifiedName string, args map[string]any) (text string, isError bool, err error) {
	server, tool, ok := SplitQualifiedName(qualifiedName)
	if !ok {
		return "", false, fmt.Errorf("invalid tool name %q", qualifiedName)
	}

	session, err := m.session(server)
	if err != nil {
		return "", false, err
	}

	m.log.Debug("Calling tool", "server", server, "tool", tool)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return "", false, fmt.Errorf("call tool %q on server %q: %w", tool, server, err)
	}

	return flattenContent(result.Content), result.IsError, nil
}

// Close closes every session. The Manager is unusable afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, session := range m.sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close session %q: %w", name, err)
		}
		delete(m.sessions, name)
	}

	return firstErr
}

func schemaToMap(schema any) (map[string]any, error) {
	if schema == nil {
		return map[string]any{"type": "object"}, nil
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode input schema: %w", err)
	}

	return out, nil
}

func flattenContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}

	return strings.Join(parts, "\n")
}
