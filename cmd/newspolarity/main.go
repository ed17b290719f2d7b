package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"NewsPolarity/internal/app"
	"NewsPolarity/internal/config"
	"NewsPolarity/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newspolarity",
		Short:         "Scrape news outlets, score polarity and classify topics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		scrapeCmd(),
		analyseCmd(),
		watchCmd(),
		migrateCmd(),
		seedCmd(),
		summaryCmd(),
		subscriberCmd(),
	)
	return root
}

// newApp loads config and builds the application for a single command invocation.
func newApp() *app.Application {
	cfg := config.Load()
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

// contextWithTimeout detaches from the cancelled command context for shutdown work.
func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
