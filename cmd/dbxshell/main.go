package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dbxshell/internal/localfs"
	"github.com/GriffinCanCode/dbxshell/internal/logging"
	"github.com/GriffinCanCode/dbxshell/internal/remote/dropbox"
	"github.com/GriffinCanCode/dbxshell/internal/session"
	"github.com/GriffinCanCode/dbxshell/internal/shell"
	"github.com/GriffinCanCode/dbxshell/internal/transcript"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dbxshell: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.FromSettings(cfg.Logging))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()
	if cfg.Metrics.Addr != "" {
		monitoring.NewServer(cfg.Metrics.Addr, metrics, logger.Named("metrics").Logger).Start(ctx)
	}

	home, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}

	opts := dropbox.OptionsFromConfig(cfg)
	opts.Logger = logger.Named("dropbox").Logger
	opts.Metrics = metrics

	state := session.New(session.Options{
		Connector:   dropbox.Connector(opts),
		AppName:     cfg.Shell.AppName,
		AccessToken: cfg.Shell.AccessToken,
		Home:        home,
		Transcript:  transcript.New(os.Stdout),
		Logger:      logger.Named("session").Logger,
		Metrics:     metrics,
	})
	logger.Info("session started", zap.String("session_id", state.ID()), zap.String("home", home))

	sh := shell.New(shell.Options{
		In:               os.Stdin,
		State:            state,
		FS:               localfs.New(logger.Named("localfs").Logger),
		TranscriptPrefix: cfg.Shell.TranscriptPrefix,
	})
	sh.Run(ctx)
	return nil
}
