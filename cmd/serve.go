package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dunning/internal/api"
	"dunning/internal/config"
	"dunning/internal/logger"
	"dunning/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classified invoice view as a JSON API",
	Long: `Start an HTTP server exposing the classified overdue-invoice view for
a dashboard frontend:

  GET /api/v1/groups    per-client groups with totals and tiers
  GET /api/v1/invoices  normalized invoices with their buckets
  GET /api/v1/summary   counts, totals and skip report

Each request runs a fresh fetch cycle against the accounting system.`,
	Example: `  dunning serve --addr :8080`,
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default SERVE_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServeAddr
	}

	fetch := func(r *http.Request) (*pipeline.Cycle, error) {
		// Each request is its own cycle with its own reference date.
		return runCycle(r.Context(), cfg, time.Now())
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(fetch),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Dashboard API listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Msg("Server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
