package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
)

func newRemindersCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminders",
		Aliases: []string{"reminder"},
		Short:   "List, add and remove reminders",
	}
	cmd.AddCommand(
		newRemindersListCommand(deps, flags),
		newRemindersAddCommand(deps, flags),
		newRemindersRemoveCommand(deps, flags),
	)
	return cmd
}

func newRemindersListCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List reminders for the connected wallet",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			address, err := a.requireAddress(cmd.Context())
			if err != nil {
				return err
			}

			reminders, err := a.api.ListReminders(cmd.Context(), address)
			if err != nil {
				return err
			}
			a.printer.Reminders(reminders)
			return nil
		},
	}
}

type reminderAddFlags struct {
	at          string
	description string
}

func newRemindersAddCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	addFlags := &reminderAddFlags{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a reminder",
		Long: `Create a reminder.

Examples:
  dailyagi reminders add "Pay rent" --at "2026-11-01 09:00"
  dailyagi reminders add Call mom --description "Birthday plans"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if joinArgs(args) == "" {
				return errors.New("requires a reminder title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			address, err := a.requireAddress(cmd.Context())
			if err != nil {
				return err
			}

			reminder, err := a.api.CreateReminder(cmd.Context(), agentapi.NewReminder{
				Address:     address,
				Title:       joinArgs(args),
				Description: addFlags.description,
				Datetime:    addFlags.at,
			})
			if err != nil {
				return err
			}
			a.printer.Success("Reminder created: %s", reminder.Title)
			a.printer.Detail("ID: %s", reminder.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&addFlags.at, "at", "", "When the reminder is due")
	cmd.Flags().StringVarP(&addFlags.description, "description", "d", "", "Longer description")

	return cmd
}

func newRemindersRemoveCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a reminder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			address, err := a.requireAddress(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.api.DeleteReminder(cmd.Context(), args[0], address); err != nil {
				return err
			}
			a.printer.Success("Reminder %s deleted", args[0])
			return nil
		},
	}
}
