package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agent-pathfinder/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP route service",
	Long:  `Serves grid and waypoint routing, agent path following, graph export and Prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWorld(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			w.cfg.Server.Addr = addr
		}

		server := api.NewServer(api.Options{
			Planner:  w.planner,
			Graph:    w.graph,
			Width:    w.cfg.Grid.Width,
			Height:   w.cfg.Grid.Height,
			Static:   w.static,
			Logger:   w.logger,
			Gatherer: w.registry,
		})

		srv := &http.Server{
			Addr:              w.cfg.Server.Addr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			w.logger.Info("server starting",
				"addr", srv.Addr,
				"grid", w.planner.Occupancy().Area(),
				"waypoints", w.graph.Len())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case sig := <-shutdown:
			w.logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				w.logger.Error("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			w.logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
