// Acueducto - water utility admin dashboard backend
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aethra/acueducto/internal/api"
	"github.com/aethra/acueducto/internal/auth"
	"github.com/aethra/acueducto/internal/config"
	"github.com/aethra/acueducto/internal/database"
	"github.com/aethra/acueducto/internal/engine"
	"github.com/aethra/acueducto/internal/logging"
	"github.com/aethra/acueducto/internal/metrics"
	"github.com/aethra/acueducto/internal/store"
	"github.com/aethra/acueducto/internal/store/rest"
	"github.com/aethra/acueducto/internal/store/sqlstore"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "acueducto",
		Short:        "Acueducto admin dashboard backend",
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logging.Configure(cfg.Log.Level, cfg.Log.Format)
		return cfg, nil
	}

	root.AddCommand(
		serveCommand(load),
		migrateCommand(load),
		listCommand(load),
		statsCommand(load),
		hashPasswordCommand(),
	)
	// serve is the default
	root.RunE = serveCommand(load).RunE
	return root
}

type configLoader func() (*config.Config, error)

func serveCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return startServer(cmd.Context(), cfg)
		},
	}
}

func startServer(ctx context.Context, cfg *config.Config) error {
	log := logging.Get()
	log.WithFields(logrus.Fields{"version": Version, "backend": cfg.Backend.Kind}).Info("acueducto starting")

	gin.SetMode(cfg.Server.Mode)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	loader := engine.NewLoader(st, engine.NewFormatter(cfg.Dashboard.PhoneRegion), m)
	handler := api.NewHandler(loader, st, cfg.Dashboard)
	authHandler := api.NewAuthHandler(auth.NewAuthenticator(cfg.Auth))
	router := api.SetupRouter(cfg, handler, authHandler, reg)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// openStore connects the configured backend. The returned func releases it.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Backend.Kind {
	case config.BackendSQL:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return sqlstore.New(db), closeDB, nil
	default:
		c, err := rest.New(cfg.Backend)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}
}
