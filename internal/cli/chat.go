package cli

import (
	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/chat"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

func newChatCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			ctx, cancel := a.withInterrupt(cmd.Context())
			defer cancel()

			address, err := a.connect(ctx)
			if err != nil {
				return err
			}
			if address == "" && a.cfg.Demo.Enabled {
				address = wallet.DemoAddress
			}
			if address == "" {
				return errNoWallet
			}

			conv := chat.New(a.agent, a.connector, chat.WithDemoMode(a.cfg.Demo.Enabled))
			return deps.ChatRunner.Run(ctx, conv, address)
		},
	}
}
