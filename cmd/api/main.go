package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculator"
	"go-decimal-calculator/internal/config"
	"go-decimal-calculator/internal/history"
	"go-decimal-calculator/internal/observability"
	"go-decimal-calculator/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing, metrics, logs
	telemetryShutdown, err := initTelemetry(ctx, cfg.OTel)
	if err != nil {
		observability.Logger.Fatal("init telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := telemetryShutdown(ctx); err != nil {
			observability.Logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	// Calculator
	calc, err := newCalculator(cfg.Calculator)
	if err != nil {
		observability.Logger.Fatal("create calculator", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(calculator.NewHandler(calc)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		observability.Logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			observability.Logger.Error("server failed", zap.Error(err))
		}
	}

	waitForShutdown(srv, calc)
}

// newCalculator builds the shared calculator with logging and auto-save
// observers and restores any persisted history.
func newCalculator(cfg config.Calculator) (*calculator.Calculator, error) {
	calc, err := calculator.New(cfg,
		calculator.WithObserver(history.NewLoggingObserver(observability.Logger)),
	)
	if err != nil {
		return nil, err
	}

	autoSave, err := history.NewAutoSaveObserver(calc, observability.Logger)
	if err != nil {
		return nil, err
	}
	calc.AddObserver(autoSave)

	if err := calc.LoadHistory(); err != nil {
		observability.Logger.Warn("could not load history, starting empty", zap.Error(err))
	}
	return calc, nil
}

func waitForShutdown(srv *http.Server, calc *calculator.Calculator) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("server shutdown", zap.Error(err))
	}

	if err := calc.SaveHistory(); err != nil {
		observability.Logger.Error("save history on shutdown", zap.Error(err))
		return
	}
	observability.Logger.Info("server stopped, history saved")
}
