package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/hawkdove/api"
	"github.com/pthm-cable/hawkdove/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve equilibrium queries and runs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			storePath, _ := cmd.Flags().GetString("store")
			maxRounds, _ := cmd.Flags().GetInt("max-rounds")
			maxPopulation, _ := cmd.Flags().GetInt("max-population")
			runTimeout, _ := cmd.Flags().GetDuration("run-timeout")

			logger := slog.Default()
			var runs api.RunStore
			if storePath != "" {
				st, err := store.Open(cmd.Context(), storePath)
				if err != nil {
					return err
				}
				defer st.Close()
				runs = st
			}

			server := api.NewServer(runs, logger, api.Limits{
				MaxRounds:     maxRounds,
				MaxPopulation: maxPopulation,
				RunTimeout:    runTimeout,
			})
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr, "archive", storePath != "")
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				logger.Info("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().String("addr", "127.0.0.1:8077", "Listen address")
	cmd.Flags().String("store", "", "SQLite archive for POST /api/v1/runs (empty = no archive)")
	cmd.Flags().Int("max-rounds", api.DefaultLimits.MaxRounds, "Largest simulation.rounds accepted per request")
	cmd.Flags().Int("max-population", api.DefaultLimits.MaxPopulation, "Largest starting population accepted per request")
	cmd.Flags().Duration("run-timeout", api.DefaultLimits.RunTimeout, "Time limit for one synchronous run")
	return cmd
}
