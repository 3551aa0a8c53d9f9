package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/petal-labs/f1mcp/catalog"
	"github.com/petal-labs/f1mcp/config"
	"github.com/petal-labs/f1mcp/f1api"
	"github.com/petal-labs/f1mcp/tool"
)

// app is the wiring shared by every subcommand: one config, one logger, one
// remote client and one sealed registry.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	client   *f1api.Client
	registry *tool.Registry
}

type appOptions struct {
	observer tool.Observer
}

// loadConfig resolves file, environment and flag settings in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")
	path, found, err := config.DiscoverPath(explicit)
	if err != nil {
		return config.Config{}, exitError(exitConfig, "%v", err)
	}
	if !found {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, exitError(exitConfig, "%v", err)
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return config.Config{}, exitError(exitConfig, "%v", err)
	}

	if baseURL, _ := cmd.Flags().GetString("base-url"); strings.TrimSpace(baseURL) != "" {
		cfg.API.BaseURL = strings.TrimSpace(baseURL)
	}
	if format, _ := cmd.Flags().GetString("log-format"); strings.TrimSpace(format) != "" {
		cfg.Log.Format = strings.TrimSpace(format)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		cfg.Log.Level = "error"
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, exitError(exitConfig, "invalid configuration: %v", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs always go to w (stderr) because
// stdout carries the MCP stdio stream.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newApp(cmd *cobra.Command, cfg config.Config, opts appOptions) (*app, error) {
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)

	client, err := f1api.NewClient(f1api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	})
	if err != nil {
		return nil, exitError(exitConfig, "%v", err)
	}

	registry := tool.NewRegistry(tool.RegistryConfig{
		Observer: opts.observer,
		Logger:   logger,
	})
	if err := catalog.Register(registry, client); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	registry.Seal()

	return &app{cfg: cfg, logger: logger, client: client, registry: registry}, nil
}
