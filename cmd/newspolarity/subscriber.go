package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsPolarity/internal/domain"
)

func subscriberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriber",
		Short: "Manage email subscribers",
	}
	cmd.AddCommand(subscriberAddCmd(), subscriberRemoveCmd(), subscriberListCmd())
	return cmd
}

func subscriberAddCmd() *cobra.Command {
	var sub domain.Subscriber
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Add a subscriber or update an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			repo, err := a.Repository(cmd.Context())
			if err != nil {
				return err
			}
			sub.Email = args[0]
			if err := repo.UpsertSubscriber(cmd.Context(), sub); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscribed %s\n", sub.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&sub.Surname, "surname", "", "surname")
	cmd.Flags().BoolVar(&sub.Daily, "daily", false, "receive the daily email")
	cmd.Flags().BoolVar(&sub.Weekly, "weekly", false, "receive the weekly email")
	return cmd
}

func subscriberRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <email>",
		Short: "Remove a subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			repo, err := a.Repository(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := repo.DeleteSubscriber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no subscriber %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func subscriberListCmd() *cobra.Command {
	var frequency string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers, optionally by cadence",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			defer a.Close()

			repo, err := a.Repository(cmd.Context())
			if err != nil {
				return err
			}
			subs, err := repo.ListSubscribers(cmd.Context(), domain.Frequency(frequency))
			if err != nil {
				return err
			}
			for _, s := range subs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\tdaily=%t weekly=%t\n", s.Email, s.FirstName, s.Surname, s.Daily, s.Weekly)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily or weekly")
	return cmd
}
