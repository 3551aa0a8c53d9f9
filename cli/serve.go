package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/f1mcp/f1api"
	"github.com/petal-labs/f1mcp/health"
	"github.com/petal-labs/f1mcp/mcpserver"
	f1otel "github.com/petal-labs/f1mcp/otel"
)

// NewServeCmd creates the "serve" command: an MCP server on stdin/stdout.
func NewServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the F1 tools over MCP stdio",
		Long:  "Serve the F1 tools as a Model Context Protocol server speaking newline-delimited JSON-RPC on stdin/stdout. Logs go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, version)
		},
	}
	cmd.Flags().Bool("health", false, "Probe the upstream API on the configured health schedule")
	return cmd
}

// services is the observability and health plumbing shared by serve and http.
type services struct {
	observer  *f1otel.ToolObserver
	scheduler *health.Scheduler
	shutdown  f1otel.ShutdownFunc
}

func startServices(ctx context.Context, cmd *cobra.Command) (*app, *services, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	shutdown, err := f1otel.Setup(ctx, f1otel.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, nil, exitError(exitConfig, "initializing telemetry: %v", err)
	}
	observer, err := f1otel.GlobalToolObserver()
	if err != nil {
		_ = shutdown(context.Background())
		return nil, nil, exitError(exitRuntime, "initializing tool observability: %v", err)
	}

	a, err := newApp(cmd, cfg, appOptions{observer: observer})
	if err != nil {
		_ = shutdown(context.Background())
		return nil, nil, err
	}

	svc := &services{observer: observer, shutdown: shutdown}
	if enabled, _ := cmd.Flags().GetBool("health"); enabled || a.cfg.Health.Enabled {
		scheduler, err := health.NewScheduler(health.Config{
			Prober:   a.client,
			Target:   a.client.BaseURL(),
			Schedule: a.cfg.Health.Schedule,
			Timeout:  a.cfg.Health.Timeout,
			Logger:   a.logger,
			Observer: observer,
		})
		if err != nil {
			_ = shutdown(context.Background())
			return nil, nil, exitError(exitConfig, "creating health scheduler: %v", err)
		}
		if err := scheduler.Start(ctx); err != nil {
			_ = shutdown(context.Background())
			return nil, nil, exitError(exitRuntime, "starting health scheduler: %v", err)
		}
		svc.scheduler = scheduler
	}
	return a, svc, nil
}

func (s *services) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.scheduler != nil {
		_ = s.scheduler.Stop(ctx)
	}
	if s.shutdown != nil {
		_ = s.shutdown(ctx)
	}
	f1api.CloseIdleConnections()
}

func runServe(cmd *cobra.Command, version string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, svc, err := startServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.stop()

	serverVersion := a.cfg.Server.Version
	if serverVersion == "" {
		serverVersion = version
	}
	srv, err := mcpserver.New(a.registry, mcpserver.Config{
		Name:         a.cfg.Server.Name,
		Version:      serverVersion,
		Instructions: a.cfg.Server.Instructions,
		Logger:       a.logger,
	})
	if err != nil {
		return exitError(exitRuntime, "creating mcp server: %v", err)
	}
	if err := srv.ServeStdio(ctx); err != nil {
		return exitError(exitRuntime, "mcp server error: %v", err)
	}
	return nil
}
