package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/panelkit/flyout/adapters/clock"
	"github.com/panelkit/flyout/adapters/idgen"
	"github.com/panelkit/flyout/adapters/memory"
	"github.com/panelkit/flyout/adapters/metrics"
	"github.com/panelkit/flyout/adapters/sqlite"
	"github.com/panelkit/flyout/app"
	"github.com/panelkit/flyout/config"
	"github.com/panelkit/flyout/core/registry"
	"github.com/panelkit/flyout/core/schema"
	"github.com/panelkit/flyout/ports"
	"github.com/panelkit/flyout/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the panel server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)

	records, cleanup, err := openRecordStore(cfg.Database)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := app.New(app.Deps{
		Records: records,
		Dir:     memory.NewDirectory(),
		IDs:     idgen.UUID{},
		Clock:   clock.Real{},
		Metrics: metrics.New(),
		Logger:  logger,
	})

	defs, err := config.LoadDefinitions(cfg.Panels.Dir, logger)
	if err != nil {
		return err
	}

	for _, p := range defs.Get() {
		if err := svc.Register(p, registry.Callbacks{}); err != nil {
			return err
		}
	}

	if cfg.Panels.HotReload {
		defs.OnChange(func(panels []schema.Panel) {
			for _, p := range panels {
				if err := svc.Replace(p, registry.Callbacks{}); err != nil {
					logger.Error().Err(err).Str("panel", p.Name).Msg("hot reload rejected")
				}
			}
		})
		if err := defs.Watch(); err != nil {
			return err
		}
		defer defs.Stop()
	}

	r := chi.NewRouter()
	r.Mount("/", web.NewHandler(svc, logger).Routes())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Int("panels", len(defs.Get())).Msg("flyout server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}

func openRecordStore(cfg config.DatabaseConfig) (ports.RecordStore, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewRecordStore(db), func() { db.Close() }, nil
	default:
		return memory.NewRecordStore(), func() {}, nil
	}
}
