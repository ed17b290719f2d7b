package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"NewsPolarity/internal/infrastructure/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			repo, err := a.Repository(cmd.Context())
			if err != nil {
				return err
			}
			applied, err := repo.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		sources []string
		topics  []string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the news sources and the topic vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			repo, err := a.Repository(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Seed(cmd.Context(), sources, topics); err != nil {
				return err
			}
			names, err := repo.TopicNames(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vocabulary has %d topics\n", len(names))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sources, "source", storage.DefaultSources, "source names to insert")
	cmd.Flags().StringSliceVar(&topics, "topic", storage.DefaultTopics, "topic names to insert")
	return cmd
}

func summaryCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print average content polarity per topic and source",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			repo, err := a.Repository(cmd.Context())
			if err != nil {
				return err
			}
			since := time.Now().In(a.Config().Scheduler.Location()).AddDate(0, 0, -days)
			rows, err := repo.PolaritySummary(cmd.Context(), since)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOPIC\tSOURCE\tARTICLES\tAVG POLARITY")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%+.3f\n", r.Topic, r.Source, r.ArticleCount, r.AvgPolarity)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 1, "look back this many days")
	return cmd
}
