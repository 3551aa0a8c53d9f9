package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the f1mcp command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "f1mcp",
		Short: "Formula 1 API tools over MCP and HTTP",
		Long:  "f1mcp exposes the public F1 statistics API as MCP tools (stdio) or as plain HTTP handlers.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage: true,
	}
	AddGlobalFlags(root)

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("f1mcp version %s\n", version))

	root.AddCommand(NewServeCmd(version))
	root.AddCommand(NewHTTPCmd())
	root.AddCommand(NewToolsCmd())
	root.AddCommand(NewProbeCmd())
	return root
}

// AddGlobalFlags registers the persistent flags every subcommand reads.
func AddGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to f1mcp.yaml (default: ./f1mcp.yaml, then ~/.f1mcp/config.yaml)")
	flags.Bool("verbose", false, "Enable verbose/debug logging")
	flags.Bool("quiet", false, "Suppress all output except errors")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-format", "", "Log format: text | json (default from config)")
	flags.String("base-url", "", "Override the F1 API base URL")
}
