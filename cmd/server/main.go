package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/config"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/app"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/logging"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		slog.Error("[Main] Server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run owns every resource it opens, so returning an error still closes them.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Warn("[Main] Falling back to info logging", slog.String("error", err.Error()))
	}
	logging.InitLogger(level)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close()

	go a.MonitorLLM(ctx)

	srv, err := server.NewServer(server.Config{
		Port:            cfg.Port,
		AnalyzeTimeout:  cfg.AnalyzeTimeout,
		DefaultPosts:    cfg.DefaultPostLimit,
		DefaultComments: cfg.DefaultComments,
	}, a.Analyzer, serverOptions(a)...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	}
	slog.Info("[Main] Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func serverOptions(a *app.App) []server.Option {
	opts := []server.Option{}
	if a.Store != nil {
		opts = append(opts, server.WithReportStore(a.Store))
	}
	if a.Archive != nil {
		opts = append(opts, server.WithReportArchive(a.Archive))
	}
	if a.Latest != nil {
		opts = append(opts, server.WithLatestReports(a.Latest))
	}
	for _, check := range a.Checks() {
		opts = append(opts, server.WithHealthCheck(check.Name, check.Fn))
	}
	return opts
}
