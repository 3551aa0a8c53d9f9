package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/petal-labs/f1mcp/tool"
)

// NewToolsCmd creates the "tools" command group.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and invoke the registered F1 tools",
	}
	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsDescribeCmd())
	cmd.AddCommand(newToolsCallCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	}
}

func newToolsDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <name>",
		Short: "Show a tool's parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsDescribe,
	}
	cmd.Flags().Bool("json", false, "Print the descriptor as JSON")
	return cmd
}

func newToolsCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <name>",
		Short: "Invoke a tool against the live API",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsCall,
	}
	cmd.Flags().StringArray("arg", nil, "Argument KEY=VALUE (repeatable)")
	cmd.Flags().String("json", "", "Arguments as a JSON object (merged under --arg)")
	return cmd
}

func toolsApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cmd, cfg, appOptions{})
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	a, err := toolsApp(cmd)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tTITLE\tREQUIRED\tPARAMS")
	for desc := range a.registry.List() {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			desc.Name,
			orDash(desc.Title),
			orDash(strings.Join(desc.RequiredParams(), ",")),
			orDash(strings.Join(desc.ParamNames(), ",")),
		)
	}
	return writer.Flush()
}

func runToolsDescribe(cmd *cobra.Command, args []string) error {
	a, err := toolsApp(cmd)
	if err != nil {
		return err
	}
	desc, ok := a.registry.Lookup(strings.TrimSpace(args[0]))
	if !ok {
		return exitError(exitValidation, "unknown tool %q", args[0])
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeIndentedJSON(cmd.OutOrStdout(), desc)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", color.CyanString(desc.Name), desc.Title)
	fmt.Fprintf(out, "%s\n\n", desc.Description)
	if len(desc.Params) == 0 {
		fmt.Fprintln(out, "No parameters.")
		return nil
	}
	writer := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "PARAM\tTYPE\tREQUIRED\tDEFAULT\tDESCRIPTION")
	for _, name := range desc.ParamNames() {
		spec := desc.Params[name]
		def := "-"
		if spec.Default != nil {
			def = fmt.Sprint(spec.Default)
		}
		fmt.Fprintf(writer, "%s\t%s\t%t\t%s\t%s\n", name, spec.Type, spec.Required, def, orDash(spec.Description))
	}
	return writer.Flush()
}

func runToolsCall(cmd *cobra.Command, args []string) error {
	a, err := toolsApp(cmd)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(args[0])
	desc, ok := a.registry.Lookup(name)
	if !ok {
		return exitError(exitValidation, "unknown tool %q", name)
	}

	callArgs, err := parseCallArgs(cmd, desc)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	result := a.registry.Invoke(cmd.Context(), name, callArgs)
	if !result.OK() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("✗"), result.Failure.Error())
		return exitError(exitToolFailed, "tool %s failed: %s", name, result.Failure.Kind)
	}
	return writeIndentedJSON(cmd.OutOrStdout(), result.Payload)
}

func parseCallArgs(cmd *cobra.Command, desc tool.Descriptor) (map[string]any, error) {
	out := make(map[string]any)
	if raw, _ := cmd.Flags().GetString("json"); strings.TrimSpace(raw) != "" {
		decoder := json.NewDecoder(strings.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&out); err != nil {
			return nil, fmt.Errorf("--json must be a JSON object: %w", err)
		}
	}

	pairs, _ := cmd.Flags().GetStringArray("arg")
	textual := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q, want KEY=VALUE", pair)
		}
		textual[key] = value
	}
	parsed, err := tool.ParseArgs(desc, textual)
	if err != nil {
		return nil, err
	}
	for key, value := range parsed {
		out[key] = value
	}
	return out, nil
}

func writeIndentedJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
