package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/ligflow/internal/config"
	"github.com/me/ligflow/internal/server"
	"github.com/me/ligflow/internal/store"
)

func newServeCmd() *cobra.Command {
	var addr string
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run ledger over a read-only HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultServerConfig()
			cfg.Addr = addr
			cfg.DBPath = ledgerPath
			cfg.LogLevel = flagLogLevel
			cfg.LogFormat = flagLogFormat

			ledger, err := store.NewSQLiteStore(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer ledger.Close()
			if err := ledger.Migrate(cmd.Context()); err != nil {
				return err
			}

			srv := server.New(cfg, ledger, logger)
			httpSrv := &http.Server{
				Addr:    cfg.Addr,
				Handler: srv.Handler(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("status API listening", "addr", cfg.Addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "ligflow.db", "Run ledger database path")

	return cmd
}
