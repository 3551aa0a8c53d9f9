package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/petal-labs/f1mcp/f1api"
	"github.com/petal-labs/f1mcp/mcpclient"
)

// NewProbeCmd creates the "probe" command.
func NewProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the upstream API and, optionally, an MCP server end to end",
		Long: "Probe issues one request to the F1 API. With --mcp it also launches an MCP server " +
			"over stdio (by default this binary's serve command), lists its tools and optionally calls one.",
		Args: cobra.NoArgs,
		RunE: runProbe,
	}
	cmd.Flags().Bool("mcp", false, "Also probe an MCP server over stdio")
	cmd.Flags().String("server-command", "", "MCP server command line (default: this binary with \"serve\")")
	cmd.Flags().String("call", "", "Tool to call during the MCP probe")
	cmd.Flags().StringArray("arg", nil, "Argument KEY=VALUE for --call (repeatable)")
	cmd.Flags().Duration("timeout", 30*time.Second, "Overall probe timeout")
	return cmd
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	out := cmd.OutOrStdout()
	client, err := f1api.NewClient(f1api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, UserAgent: cfg.API.UserAgent})
	if err != nil {
		return exitError(exitConfig, "%v", err)
	}
	start := time.Now()
	if err := client.Probe(ctx); err != nil {
		fmt.Fprintf(out, "%s upstream %s: %v\n", color.RedString("✗"), client.BaseURL(), err)
		return exitError(exitUpstream, "upstream probe failed")
	}
	fmt.Fprintf(out, "%s upstream %s (%dms)\n", color.GreenString("✓"), client.BaseURL(), time.Since(start).Milliseconds())

	if withMCP, _ := cmd.Flags().GetBool("mcp"); !withMCP {
		return nil
	}
	return probeMCP(ctx, cmd)
}

func probeMCP(ctx context.Context, cmd *cobra.Command) error {
	command, commandArgs, err := serverCommand(cmd)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}
	transport, err := mcpclient.CommandTransport(ctx, command, commandArgs...)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	opts := mcpclient.ProbeOptions{ClientVersion: cmd.Root().Version}
	if name, _ := cmd.Flags().GetString("call"); strings.TrimSpace(name) != "" {
		opts.CallTool = strings.TrimSpace(name)
		pairs, _ := cmd.Flags().GetStringArray("arg")
		opts.CallArgs = make(map[string]any, len(pairs))
		for _, pair := range pairs {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return exitError(exitValidation, "invalid --arg %q, want KEY=VALUE", pair)
			}
			opts.CallArgs[strings.TrimSpace(key)] = looseValue(value)
		}
	}

	report, err := mcpclient.Probe(ctx, transport, opts)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s mcp: %v\n", color.RedString("✗"), err)
		return exitError(exitRuntime, "mcp probe failed")
	}
	return printProbeReport(cmd, report)
}

func printProbeReport(cmd *cobra.Command, report mcpclient.Report) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s mcp server %q %s, %d tool(s) (%dms)\n",
		color.GreenString("✓"), report.ServerName, report.ServerVersion, len(report.Tools), report.Elapsed.Milliseconds())
	for _, t := range report.Tools {
		fmt.Fprintf(out, "  - %s\n", t.Name)
	}
	if report.Call == nil {
		return nil
	}
	if report.Call.IsError {
		fmt.Fprintf(out, "%s call %s: %s\n", color.RedString("✗"), report.Call.Tool, report.Call.Text)
		return exitError(exitToolFailed, "tool %s failed", report.Call.Tool)
	}
	fmt.Fprintf(out, "%s call %s: %d bytes\n", color.GreenString("✓"), report.Call.Tool, len(report.Call.Text))
	return nil
}

func serverCommand(cmd *cobra.Command) (string, []string, error) {
	if raw, _ := cmd.Flags().GetString("server-command"); strings.TrimSpace(raw) != "" {
		fields := strings.Fields(raw)
		return fields[0], fields[1:], nil
	}
	self, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("resolving executable: %w", err)
	}
	args := []string{"serve"}
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		args = append(args, "--config", configPath)
	}
	return self, args, nil
}

// looseValue decodes value as a JSON scalar when it is one ("5", "true") and
// falls back to the raw string. The remote server does not know our descriptors.
func looseValue(value string) any {
	decoder := json.NewDecoder(strings.NewReader(value))
	decoder.UseNumber()
	var v any
	if err := decoder.Decode(&v); err != nil || decoder.More() {
		return value
	}
	switch v.(type) {
	case json.Number, bool:
		return v
	default:
		return value
	}
}
