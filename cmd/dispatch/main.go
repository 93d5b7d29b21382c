package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pborman/getopt"
	"github.com/samvad-hq/samvad-httpkit/internal/app"
	"github.com/samvad-hq/samvad-httpkit/internal/config"
	"github.com/samvad-hq/samvad-httpkit/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dispatch failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		endpointID string
		body       string
		form       bool
	)
	flagSet := getopt.New()
	flagSet.SetParameters("[METHOD] URL [ITEM [ITEM ...]]")
	flagSet.StringVarLong(&endpointID, "endpoint", 'e', "dispatch through a configured endpoint profile")
	flagSet.StringVarLong(&body, "body", 'd', "raw request body")
	flagSet.BoolVarLong(&form, "form", 'f', "serialize body as application/x-www-form-urlencoded")
	flagSet.Parse(os.Args)

	call, err := parseCall(flagSet.Args(), endpointID, body, form)
	if err != nil {
		flagSet.PrintUsage(os.Stderr)
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("dispatch starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher, err := app.NewDispatcher(cfg, logger.Default())
	if err != nil {
		logger.ErrorObj("failed to initialize dispatcher", "error", err)
		return err
	}

	if err := dispatcher.Run(ctx, call); err != nil {
		return fmt.Errorf("dispatch run: %w", err)
	}

	return nil
}
