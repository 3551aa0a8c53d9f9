package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/f1mcp/httpapi"
)

// NewHTTPCmd creates the "http" command: the REST handler variant.
func NewHTTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the F1 tools as plain HTTP handlers",
		Args:  cobra.NoArgs,
		RunE:  runHTTP,
	}
	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().String("cors-origin", "", "Allowed CORS origin (default *)")
	cmd.Flags().Bool("health", false, "Probe the upstream API on the configured health schedule")
	return cmd
}

func runHTTP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, svc, err := startServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.stop()

	addr := a.cfg.HTTP.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}
	corsOrigin := a.cfg.HTTP.CORSOrigin
	if flagOrigin, _ := cmd.Flags().GetString("cors-origin"); flagOrigin != "" {
		corsOrigin = flagOrigin
	}

	cfg := httpapi.Config{Registry: a.registry, Logger: a.logger}
	if svc.scheduler != nil {
		cfg.Health = svc.scheduler
	}
	api, err := httpapi.NewServer(cfg)
	if err != nil {
		return exitError(exitRuntime, "creating http handlers: %v", err)
	}

	handler := httpapi.WithCORS(api.Handler(), corsOrigin)
	handler = httpapi.MaxBody(handler, a.cfg.HTTP.MaxBody)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "f1mcp listening on %s\n", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}
