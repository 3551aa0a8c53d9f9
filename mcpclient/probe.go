// Package mcpclient drives an MCP server end to end: initialize, tools/list and
// an optional tools/call. The probe command uses it as a smoke check.
package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProbeOptions selects the optional tools/call step.
type ProbeOptions struct {
	ClientName    string
	ClientVersion string
	// CallTool is invoked with CallArgs after listing when non-empty.
	CallTool string
	CallArgs map[string]any
}

// ToolInfo is one advertised tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// CallOutcome is the result of the optional tools/call.
type CallOutcome struct {
	Tool    string `json:"tool"`
	IsError bool   `json:"is_error"`
	Text    string `json:"text"`
}

// Report summarises one probe.
type Report struct {
	ServerName    string        `json:"server_name"`
	ServerVersion string        `json:"server_version"`
	Tools         []ToolInfo    `json:"tools"`
	Call          *CallOutcome  `json:"call,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
}

// CommandTransport launches command as an MCP server speaking over stdio.
func CommandTransport(ctx context.Context, command string, args ...string) (mcp.Transport, error) {
	clean := strings.TrimSpace(command)
	if clean == "" {
		return nil, errors.New("mcpclient: command is empty")
	}
	// #nosec G204 -- command is supplied by the operator on the command line.
	return &mcp.CommandTransport{Command: exec.CommandContext(ctx, clean, args...)}, nil
}

// Probe connects over transport and exercises the server.
func Probe(ctx context.Context, transport mcp.Transport, opts ProbeOptions) (Report, error) {
	if transport == nil {
		return Report{}, errors.New("mcpclient: transport is nil")
	}
	if opts.ClientName == "" {
		opts.ClientName = "f1mcp-probe"
	}
	if opts.ClientVersion == "" {
		opts.ClientVersion = "dev"
	}

	start := time.Now()
	client := mcp.NewClient(&mcp.Implementation{Name: opts.ClientName, Version: opts.ClientVersion}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return Report{}, fmt.Errorf("mcpclient: initialize: %w", err)
	}
	defer func() { _ = session.Close() }()

	var report Report
	if init := session.InitializeResult(); init != nil && init.ServerInfo != nil {
		report.ServerName = init.ServerInfo.Name
		report.ServerVersion = init.ServerInfo.Version
	}

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		return Report{}, fmt.Errorf("mcpclient: tools/list: %w", err)
	}
	for _, t := range listed.Tools {
		report.Tools = append(report.Tools, ToolInfo{Name: t.Name, Title: t.Title, Description: t.Description})
	}

	if name := strings.TrimSpace(opts.CallTool); name != "" {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: opts.CallArgs})
		if err != nil {
			return Report{}, fmt.Errorf("mcpclient: tools/call %s: %w", name, err)
		}
		report.Call = &CallOutcome{Tool: name, IsError: res.IsError, Text: joinText(res.Content)}
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

func joinText(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		switch v := c.(type) {
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if raw, err := json.Marshal(v); err == nil {
				parts = append(parts, string(raw))
			}
		}
	}
	return strings.Join(parts, "\n")
}
