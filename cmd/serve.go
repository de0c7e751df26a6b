package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/edumap/internal/dataset"
	"github.com/sells-group/edumap/internal/metrics"
	"github.com/sells-group/edumap/internal/render"
	"github.com/sells-group/edumap/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive map over HTTP",
	Long:  "Loads both datasets once at startup and serves the interactive page, the SVG and GeoJSON documents and the hover and legend APIs. When loading fails the page shows an empty drawing area and the APIs answer 503.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	met := metrics.New("edumap")
	srv := newMapServer(ctx, met)

	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}
	addr := fmt.Sprintf(":%d", port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down map server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting map server",
		zap.String("addr", addr),
		zap.Int("cache_size", cfg.Server.CacheSize),
		zap.Duration("cache_ttl", cfg.Server.CacheTTL),
	)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "map server")
	}
	return nil
}

// newMapServer loads the map and wraps it in a server. A failed load yields a
// server in its failure mode rather than an error.
func newMapServer(ctx context.Context, met *metrics.Metrics) *server.Server {
	var m *server.Map
	env, err := initMap(ctx, met)
	if err != nil {
		// Load failures are already logged by the loader.
		var loadErr *dataset.LoadError
		if !errors.As(err, &loadErr) {
			zap.L().Error("serve: build map failed", zap.Error(err))
		}
		zap.L().Warn("serving empty map, datasets unavailable")
	} else {
		m = &server.Map{Scene: env.Scene, Index: env.Index}
	}

	return server.New(m, server.Options{
		Cache:   server.NewDocumentCache(cfg.Server.CacheSize, cfg.Server.CacheTTL),
		Metrics: met,
		Page:    pageOptions(),
		Empty:   render.Empty(render.OptionsFromConfig(cfg)),
	})
}
