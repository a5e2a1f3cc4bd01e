package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGroceryCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grocery",
		Short: "Build shopping lists from fridge photos",
	}
	cmd.AddCommand(
		newGroceryUploadCommand(deps, flags),
		newGroceryShowCommand(deps, flags),
	)
	return cmd
}

func newGroceryUploadCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload a fridge photo and get the missing items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			address, err := a.requireAddress(cmd.Context())
			if err != nil {
				return err
			}

			image, err := deps.FileOpener.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer image.Close()

			list, err := a.api.UploadGrocery(cmd.Context(), address, args[0], image)
			if err != nil {
				return err
			}
			a.printer.Grocery(list)
			return nil
		},
	}
}

func newGroceryShowCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <cid>",
		Short: "Show a saved shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}

			list, err := a.api.GetGroceryList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printer.Grocery(list)
			return nil
		},
	}
}
