// Package mcpserver exposes a tool registry as an MCP server.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petal-labs/f1mcp/tool"
)

const (
	DefaultName    = "F1 API"
	DefaultVersion = "1.0.0"
)

// Config identifies the server to connecting clients.
type Config struct {
	Name         string
	Version      string
	Instructions string
	Logger       *slog.Logger
}

// Server adapts a sealed tool.Registry to the MCP tools surface.
type Server struct {
	registry *tool.Registry
	server   *mcp.Server
	logger   *slog.Logger
}

// New builds an MCP server advertising every tool in reg.
func New(reg *tool.Registry, cfg Config) (*Server, error) {
	if reg == nil {
		return nil, errors.New("mcpserver: registry is nil")
	}
	if reg.Len() == 0 {
		return nil, errors.New("mcpserver: registry has no tools")
	}
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = DefaultName
	}
	if strings.TrimSpace(cfg.Version) == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var opts *mcp.ServerOptions
	if cfg.Instructions != "" {
		opts = &mcp.ServerOptions{Instructions: cfg.Instructions}
	}
	s := &Server{
		registry: reg,
		server:   mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, opts),
		logger:   cfg.Logger,
	}
	for desc := range reg.List() {
		s.server.AddTool(toolFor(desc), s.handler(desc.Name))
	}
	return s, nil
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over transport until ctx is cancelled or the peer disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("mcp server starting", "tools", s.registry.Len())
	err := s.server.Run(ctx, transport)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcpserver: %w", err)
	}
	s.logger.Info("mcp server stopped")
	return nil
}

// ServeStdio serves newline-delimited JSON-RPC on stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

func toolFor(desc tool.Descriptor) *mcp.Tool {
	return &mcp.Tool{
		Name:        desc.Name,
		Title:       desc.Title,
		Description: desc.Description,
		InputSchema: InputSchema(desc),
		Annotations: &mcp.ToolAnnotations{
			Title:          desc.Title,
			ReadOnlyHint:   true,
			IdempotentHint: true,
		},
	}
}

func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		args, err := decodeArguments(raw)
		if err != nil {
			return failureResult(&tool.Failure{Kind: tool.ToolErrorCodeInvalidParameter, Message: err.Error()}), nil
		}
		return toCallToolResult(s.registry.Invoke(ctx, name, args)), nil
	}
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var args map[string]any
	if err := decoder.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func toCallToolResult(result tool.Result) *mcp.CallToolResult {
	if !result.OK() {
		return failureResult(result.Failure)
	}
	body, err := json.Marshal(result.Payload)
	if err != nil {
		return failureResult(&tool.Failure{Kind: tool.ToolErrorCodeDecodeFailure, Message: "encode payload: " + err.Error()})
	}
	out := &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(body)}}}
	if obj, ok := result.Payload.(map[string]any); ok {
		out.StructuredContent = obj
	}
	return out
}

func failureResult(failure *tool.Failure) *mcp.CallToolResult {
	body, err := json.Marshal(failure)
	if err != nil {
		body = []byte(failure.Error())
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}
