package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the collection scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.migrate(); err != nil {
				return err
			}
			c, err := a.newCollector()
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         a.cfg.Server.GetAddress(),
				Handler:      NewRouter(a.cfg, a.db, c, a.logger),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
				IdleTimeout:  a.cfg.Server.IdleTimeout,
				// Status streams end when the process is asked to stop.
				BaseContext: func(net.Listener) context.Context { return ctx },
			}

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Run(ctx)
			}()

			serveErr := make(chan error, 1)
			go func() {
				a.logger.Infow("Server starting", "address", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case <-ctx.Done():
			case err, ok := <-serveErr:
				if ok {
					stop()
					wg.Wait()
					return fmt.Errorf("server failed: %w", err)
				}
			}
			stop()

			a.logger.Infow("Shutting down", "timeout", a.cfg.Server.ShutdownTimeout)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warnw("Server shutdown incomplete", "error", err)
			}
			wg.Wait()
			a.logger.Infow("Server stopped")
			return nil
		},
	}
}
