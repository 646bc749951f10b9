package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculator"
	"go-decimal-calculator/internal/config"
	"go-decimal-calculator/internal/history"
	"go-decimal-calculator/internal/observability"
	"go-decimal-calculator/internal/repl"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "calculator: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := observability.InitLogger(cfg.Log); err != nil {
		return err
	}
	defer observability.SyncLogger()

	calc, err := calculator.New(cfg.Calculator,
		calculator.WithObserver(history.NewLoggingObserver(observability.Logger)),
	)
	if err != nil {
		return fmt.Errorf("create calculator: %w", err)
	}

	autoSave, err := history.NewAutoSaveObserver(calc, observability.Logger)
	if err != nil {
		return fmt.Errorf("create auto-save observer: %w", err)
	}
	calc.AddObserver(autoSave)

	if err := calc.LoadHistory(); err != nil {
		observability.Logger.Warn("could not load history, starting empty", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return repl.Run(ctx, calc, os.Stdin, os.Stdout)
}
