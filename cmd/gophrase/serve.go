package main

import (
	"context"
	"errors"

	"github.com/ZaguanLabs/gophrase/internal/metrics"
	"github.com/ZaguanLabs/gophrase/internal/scheduler"
	"github.com/ZaguanLabs/gophrase/internal/server"
	"github.com/spf13/cobra"
)

func (c *cli) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			m := metrics.New()
			m.SetCacheEntries(a.store.Size())

			translator, err := a.newTranslator(c.newProvider, m)
			if err != nil {
				return withCode(exitUsage, err)
			}

			if a.cfg.Cache.TrimInterval > 0 {
				sched := scheduler.New(a.store, a.cfg.Cache.TrimInterval,
					scheduler.WithLogger(a.logger),
					scheduler.WithOnTrim(func(removed, remaining int) {
						m.AddTrimmed(removed)
						m.SetCacheEntries(remaining)
					}),
				)
				sched.Start()
				defer sched.Stop()
			}

			srv := server.New(translator, a.store, server.WithLogger(a.logger), server.WithMetrics(m))

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(a.cfg.Server.Addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			a.logger.Info("shutting down", "module", "http", "action", "shutdown")
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	return cmd
}
