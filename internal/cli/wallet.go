package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

func newWalletCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the connected wallet",
	}
	cmd.AddCommand(
		newWalletConnectCommand(deps, flags),
		newWalletDisconnectCommand(deps, flags),
		newWalletStatusCommand(deps, flags),
	)
	return cmd
}

func newWalletConnectCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "connect [address]",
		Short: "Connect a wallet and remember it for later commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := wallet.ValidateAddress(args[0]); err != nil {
					return err
				}
				flags.wallet = args[0]
			}

			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}

			sess, err := a.connector.Connect(cmd.Context())
			if errors.Is(err, wallet.ErrNoProvider) && !errors.Is(err, wallet.ErrInvalidAddress) {
				return errNoWallet
			}
			if err != nil {
				return err
			}
			a.printer.Session(sess)
			return nil
		},
	}
}

func newWalletDisconnectCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			if err := a.connector.Disconnect(); err != nil {
				return err
			}
			a.printer.Success("Wallet disconnected")
			return nil
		},
	}
}

func newWalletStatusCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the remembered wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}

			sess := a.connector.Store().Snapshot()
			if sess.Address == "" {
				a.printer.Warning("No wallet connected")
				a.printer.Detail("Run 'dailyagi wallet connect <address>' to connect one")
				return nil
			}
			a.printer.Info("Saved wallet: %s", wallet.FormatAddress(sess.Address, 4))
			a.printer.Detail("Address:  %s", sess.Address)
			if sess.Provider != "" {
				a.printer.Detail("Provider: %s", sess.Provider)
			}
			if !sess.ConnectedAt.IsZero() {
				a.printer.Detail("Since:    %s", sess.ConnectedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
