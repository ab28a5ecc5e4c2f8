package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meetfeed/meetfeed-client/internal/app"
	"github.com/meetfeed/meetfeed-client/internal/config"
	"github.com/meetfeed/meetfeed-client/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mockapi start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.InfoObj("mockapi starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := app.NewMockBackend(cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize mock backend", "error", err)
		return err
	}

	if err := backend.Run(ctx); err != nil {
		return fmt.Errorf("mockapi run: %w", err)
	}
	return nil
}
