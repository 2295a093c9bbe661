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

	"github.com/ppiankov/claimscope/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the retrieval API over HTTP.

Endpoints:
  POST /v1/query               run a retrieval query
  GET  /v1/users/{id}/scope    resolve a viewer's access scope
  GET  /v1/users/{id}/claims   list a user's claims
  GET  /healthz                liveness
  GET  /metrics                Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		addr := serveAddr
		if addr == "" {
			addr = a.cfg.Server.Addr
		}

		// A dead generator is not fatal: queries degrade to extractive
		// answers. Surface it at startup instead of on the first request.
		if a.generator != nil {
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if !a.generator.IsAvailable(checkCtx) {
				a.log.WithField("provider", a.generator.Name()).Warn("generator unreachable at startup")
			}
			cancel()
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: server.New(a.engine, a.claims, a.resolver, a.log, version),
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.WithField("addr", addr).Info("server listening")
			errCh <- srv.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case sig := <-stop:
			a.log.WithField("signal", sig.String()).Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
