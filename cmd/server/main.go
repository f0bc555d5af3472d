package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/config"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/logging"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/metrics"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/store"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	svc := app.NewService(st, app.WithLogger(logger.Named("app")), app.WithMetrics(m))
	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: web.NewServer(svc, web.Config{
			Logger:    logger.Named("http"),
			Heartbeat: cfg.HTTP.Heartbeat,
			Metrics:   m.Handler(),
		}),
		// request contexts end with ctx so open event streams let Shutdown finish
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverRedis:
		client, err := store.Connect(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Error("could not close redis client", zap.Error(err))
			}
		}
		return store.NewRedis(client, cfg.Store.TTL), closeFn, nil
	default:
		return store.NewMemory(cfg.Store.TTL), func() {}, nil
	}
}
