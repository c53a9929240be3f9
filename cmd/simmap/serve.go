package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/config"
	"github.com/JensKlimke/SimMap-sub000/pkg/kv"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/JensKlimke/SimMap-sub000/pkg/server/rest"
	"github.com/JensKlimke/SimMap-sub000/pkg/simmap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		listen    string
		storePath string
		profiler  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map environment over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("store") {
				cfg.StorePath = storePath
			}
			if cmd.Flags().Changed("profiler") {
				cfg.Profiler = profiler
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":5000", "server listen address")
	cmd.Flags().StringVarP(&storePath, "store", "s", "", "pebble directory of the map store")
	cmd.Flags().BoolVar(&profiler, "profiler", false, "mount pprof under /debug")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	env := simmap.New(simmap.WithLogger(logger.Logger), simmap.WithBuildOptions(cfg.BuildOptions()...))

	var store rest.MapStore
	if cfg.StorePath != "" {
		ms, err := kv.Open(cfg.StorePath, kv.WithLogger(logger.Logger), kv.WithWorkers(cfg.Workers))
		if err != nil {
			return err
		}
		defer ms.Close()
		store = ms
	}

	if err := preload(env, store, cfg, logger.Logger); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := rest.NewRouter(env, store, logger, reg, rest.RouterOptions{
		Profiler:    cfg.Profiler,
		QuietRoutes: []string{"/health"},
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server started", slog.String("addr", cfg.Listen))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// preload loads the configured maps, from a file in the map directory or else from the store.
func preload(env *simmap.Environment, store rest.MapStore, cfg *config.Config, logger *slog.Logger) error {
	for _, name := range cfg.Preload {
		def, err := findMap(name, cfg.MapDir, store)
		if err != nil {
			return err
		}
		h, err := env.LoadMap(def)
		if err != nil {
			return err
		}
		logger.Info("map preloaded", slog.String("map", def.Name), slog.String("handle", h.String()))
	}
	return nil
}

func findMap(name, dir string, store rest.MapStore) (*roadmap.Definition, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return roadmap.Load(path)
	}
	if store == nil {
		return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "map %s not found in %s", name, dir)
	}
	return store.Get(name)
}
