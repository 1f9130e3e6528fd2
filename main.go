package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dataview/adapters/api"
	"dataview/adapters/postgres"
	"dataview/app"
	"dataview/internal"
	internalapi "dataview/internal/api"
	"dataview/internal/config"
	"dataview/internal/watch"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	flags := pflag.NewFlagSet("dataview", pflag.ExitOnError)
	configPath := flags.String("config", os.Getenv("DATAVIEW_CONFIG"), "path to the YAML config file")
	flags.String("port", "", "HTTP port")
	flags.String("gin-mode", "", "gin mode (debug, release, test)")
	flags.String("log-level", "", "log level (ERROR, WARN, INFO, DEBUG, TRACE)")
	flags.Bool("dev", false, "human-readable log output")
	flags.Bool("watch", true, "signal evaluation boundaries when source files change")
	flags.String("dsn", "", "Postgres connection string for postgres sources")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := internal.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v, using INFO\n", err)
	}
	logger, err := internal.NewLogger(level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	catalog, err := buildCatalog(cfg, db, logger)
	if err != nil {
		return err
	}
	logger.Info("sources registered", zap.Strings("sources", catalog.Names()))

	hub := internalapi.NewSSEHub(logger)
	defer hub.Close()

	registry := app.NewRegistry(catalog, hub, app.SessionConfig{
		MailboxSize: cfg.Session.MailboxSize,
		Format:      cfg.Format,
	}, logger)
	defer registry.CloseAll()

	gin.SetMode(cfg.Server.GinMode)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewServer(registry, hub, catalog, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	boundary := func(ctx context.Context) {
		if n := registry.NotifyEvaluationBoundary(ctx); n > 0 {
			logger.Debug("evaluation boundary", zap.Int("changed", n))
		}
	}

	if paths := filePaths(cfg); cfg.Watch.Enabled && len(paths) > 0 {
		watcher, err := watch.New(paths, cfg.Watch.Debounce, boundary, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return watcher.Run(ctx) })
	}

	if db != nil && cfg.Database.NotifyChannel != "" {
		listener := postgres.NewListener(cfg.Database.DSN, cfg.Database.NotifyChannel, logger)
		g.Go(func() error { return listener.Run(ctx, boundary) })
	}

	return g.Wait()
}
