// Package mcp manages optional tool-protocol servers the model may consult.
// Servers are opaque to the dispatch loop: their only effect here is the tool
// inventory appended to the system prompt.
package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/prudhvi1709/smart-cli/internal/version"
)

// TransportKind identifies how a server is reached.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportHTTP  TransportKind = "http"
)

// ServerSpec is a parsed --mcp-server value.
type ServerSpec struct {
	Kind    TransportKind
	Command string   // stdio only
	Args    []string // stdio only
	URL     string   // http only
}

// String returns the spec in flag form.
func (s ServerSpec) String() string {
	switch s.Kind {
	case TransportStdio:
		parts := append([]string{s.Command}, s.Args...)
		return "stdio:" + strings.Join(parts, ",")
	default:
		return "http:" + s.URL
	}
}

// ParseServerSpec parses "stdio:command,arg1,arg2" or "http:url" specs.
func ParseServerSpec(raw string) (ServerSpec, error) {
	raw = strings.TrimSpace(raw)
	kind, rest, found := strings.Cut(raw, ":")
	if !found || rest == "" {
		return ServerSpec{}, fmt.Errorf("malformed mcp server spec %q: want stdio:command,args or http:url", raw)
	}

	switch TransportKind(strings.ToLower(kind)) {
	case TransportStdio:
		parts := strings.Split(rest, ",")
		command := strings.TrimSpace(parts[0])
		if command == "" {
			return ServerSpec{}, fmt.Errorf("malformed mcp server spec %q: empty command", raw)
		}
		var args []string
		for _, a := range parts[1:] {
			if a = strings.TrimSpace(a); a != "" {
				args = append(args, a)
			}
		}
		return ServerSpec{Kind: TransportStdio, Command: command, Args: args}, nil
	case TransportHTTP:
		if !strings.HasPrefix(rest, "http://") && !strings.HasPrefix(rest, "https://") {
			return ServerSpec{}, fmt.Errorf("malformed mcp server spec %q: http spec needs a full url", raw)
		}
		return ServerSpec{Kind: TransportHTTP, URL: rest}, nil
	default:
		return ServerSpec{}, fmt.Errorf("malformed mcp server spec %q: unknown transport %q", raw, kind)
	}
}

// ToolInfo describes one discovered server tool.
type ToolInfo struct {
	Server      string
	Name        string
	Description string
}

// Manager owns connections to configured servers.
type Manager struct {
	logger  *zap.Logger
	clients []*mcpclient.Client
	tools   []ToolInfo
}

// NewManager connects each spec, initializes the session, and lists tools.
// Per-server failures are warned about and skipped, never fatal.
func NewManager(ctx context.Context, specs []ServerSpec, logger *zap.Logger) *Manager {
	m := &Manager{logger: logger}

	for _, spec := range specs {
		c, err := connect(ctx, spec)
		if err != nil {
			logger.Warn("skipping mcp server", zap.String("spec", spec.String()), zap.Error(err))
			continue
		}

		tools, err := listTools(ctx, c, spec.String())
		if err != nil {
			logger.Warn("mcp server connected but tool listing failed",
				zap.String("spec", spec.String()), zap.Error(err))
			_ = c.Close()
			continue
		}

		m.clients = append(m.clients, c)
		m.tools = append(m.tools, tools...)
		logger.Info("mcp server connected",
			zap.String("spec", spec.String()), zap.Int("tools", len(tools)))
	}

	return m
}

func connect(ctx context.Context, spec ServerSpec) (*mcpclient.Client, error) {
	var (
		c   *mcpclient.Client
		err error
	)
	switch spec.Kind {
	case TransportStdio:
		c, err = mcpclient.NewStdioMCPClient(spec.Command, nil, spec.Args...)
	case TransportHTTP:
		c, err = mcpclient.NewStreamableHttpClient(spec.URL)
		if err == nil {
			err = c.Start(ctx)
		}
	default:
		return nil, fmt.Errorf("unknown transport %q", spec.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	initReq := mcpproto.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpproto.Implementation{
		Name:    "smartcli",
		Version: version.Version,
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}

	return c, nil
}

func listTools(ctx context.Context, c *mcpclient.Client, server string) ([]ToolInfo, error) {
	res, err := c.ListTools(ctx, mcpproto.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	out := make([]ToolInfo, 0, len(res.Tools))
	for _, t := range res.Tools {
		out = append(out, ToolInfo{Server: server, Name: t.Name, Description: t.Description})
	}
	return out, nil
}

// Tools returns the discovered tool inventory.
func (m *Manager) Tools() []ToolInfo {
	return m.tools
}

// ToolSummary renders the inventory for inclusion in a system prompt.
// Empty when no servers are connected.
func (m *Manager) ToolSummary() string {
	if len(m.tools) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("External tools available through connected servers:\n")
	for _, t := range m.tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Close shuts down all server connections.
func (m *Manager) Close() {
	for _, c := range m.clients {
		if err := c.Close(); err != nil {
			m.logger.Debug("mcp client close", zap.Error(err))
		}
	}
	m.clients = nil
}
