package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Fetch recent articles from every site and stage them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			pipeline, err := a.ScrapePipeline(cmd.Context())
			if err != nil {
				return err
			}
			report, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d articles, staged %d batches\n", report.Fetched, len(report.Keys))
			for _, key := range report.Keys {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", key)
			}
			return nil
		},
	}
}

func analyseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "analyse",
		Aliases: []string{"analyze"},
		Short:   "Score, classify and store staged articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			pipeline, err := a.AnalysisPipeline(cmd.Context())
			if err != nil {
				return err
			}
			report, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "staged %d, new %d, classified %d, stored %d\n",
				report.Staged, report.Novel, report.Classified, len(report.Persisted))
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run scrape and analyse on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			watcher, err := a.Watcher(cmd.Context())
			if err != nil {
				return err
			}
			if err := watcher.Start(cmd.Context()); err != nil {
				return err
			}
			a.Logger().Info("watching", "interval", a.Config().Scheduler.ScrapeInterval)

			<-cmd.Context().Done()

			stopCtx, cancel := contextWithTimeout(30 * time.Second)
			defer cancel()
			return watcher.Stop(stopCtx)
		},
	}
}
