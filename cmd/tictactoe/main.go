package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MetalTurtle18/tic-tac-toe/internal/app"
	"github.com/MetalTurtle18/tic-tac-toe/internal/config"
	"github.com/MetalTurtle18/tic-tac-toe/internal/terminal"
	"github.com/MetalTurtle18/tic-tac-toe/internal/web"
)

var ErrUnknownMode = errors.New("unknown mode")

// main - is the entry point of the application. It initializes the configuration, logger, and runs the selected host.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "config.yml", "path to the yaml config file")
	mode := flag.String("mode", "", "host to run: web or terminal (overrides config)")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	if *mode != "" {
		conf.Mode = *mode
	}
	logger := initLogger(conf)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// The terminal host owns stdout.
	out := os.Stdout
	if conf.Mode == "terminal" {
		out = os.Stderr
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	switch conf.Mode {
	case "web":
		return serve(ctx, logger, conf)
	case "terminal":
		return terminal.NewHost(os.Stdin, os.Stdout, logger).Run(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, conf.Mode)
	}
}

func serve(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	svc := app.NewService(logger)
	go svc.RunSweeper(ctx, conf.SessionTTL, conf.SweepInterval)

	srv := &http.Server{
		Addr:              conf.HTTP.Addr(),
		Handler:           web.NewServer(svc, logger, conf.HeartbeatInterval),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
