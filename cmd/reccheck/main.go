package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/allocator/internal/reccheck"
	"github.com/okian/allocator/pkg/logger"
)

// Exit codes for different failure modes.
const (
	exitMismatch = 1 // At least one recommendation failed verification
	exitError    = 2 // Configuration or connectivity error
)

// Default configuration constants.
const (
	defaultK           = 5
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, reccheck.ErrMismatch) {
			os.Exit(exitMismatch)
		}
		os.Exit(exitError)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &reccheck.Config{}
	var logFormat string

	cmd := &cobra.Command{
		Use:   "reccheck",
		Short: "Verify a running allocator against a local recomputation",
		Long: `reccheck fetches every employee and task from a running allocator,
requests GET /recommend for each task concurrently and recomputes the ranking
locally with the same scorer. It reports any difference in length, order,
scores, explanations or detail order.`,
		Example: `  reccheck --url http://localhost:9080 --k 5
  reccheck --workers 16 --output report.json --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			if cfg.K < 1 {
				return fmt.Errorf("--k must be positive, got %d", cfg.K)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
			defer cancel()

			_, err := reccheck.Run(ctx, cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.K, "k", defaultK, "Number of candidates requested per task")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.StringVar(&cfg.OutputFile, "output", "", "Write a JSON report to this file")
	f.BoolVar(&cfg.Verbose, "verbose", false, "Log every task result")
	f.StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text | json")
	return cmd
}
