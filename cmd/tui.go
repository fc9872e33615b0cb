package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/bassboard/internal/adapters/tui"
	"github.com/okian/bassboard/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

func tuiCmd() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse events and leaderboards in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Log lines would tear the screen, so they go to a file.
			file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer func() { _ = file.Close() }()

			cfg, err := setup(ctx, logger.WithWriter(file))
			if err != nil {
				return err
			}

			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start service: %w", err)
			}
			defer svc.Stop()

			logger.Get().Info(ctx, "starting terminal UI", logger.String("api_base", cfg.APIBase))
			return tui.Run(ctx, svc)
		},
	}
	cmd.Flags().StringVar(&logFile, "log", "bassboard.log", "Log file")
	return cmd
}
