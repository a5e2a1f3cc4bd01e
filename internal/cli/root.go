package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/logger"
)

const version = "0.1.0"

// globalFlags are the persistent flags shared by every subcommand
type globalFlags struct {
	wallet   string
	demo     bool
	agentURL string
	apiURL   string
}

// Execute runs the CLI
func Execute() error {
	return execute(NewRootCommand())
}

// execute runs cmd and flushes buffered log entries before returning.
func execute(cmd *cobra.Command) error {
	defer func() { _ = logger.Sync() }()
	return cmd.Execute()
}

// NewRootCommand creates the root command with production dependencies
func NewRootCommand() *cobra.Command {
	return newRootCommandWithDependencies(NewRealDependencies())
}

func newRootCommandWithDependencies(deps *Dependencies) *cobra.Command {
	var showVersion bool
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "dailyagi",
		Short: "dailyAGI - a wallet-aware daily assistant",
		Long: `dailyAGI - a wallet-aware daily assistant

dailyAGI chats with a streaming agent and manages reminders, spending
insights and grocery lists tied to your wallet address.

Examples:
  dailyagi ask "Remind me to call mom tomorrow at 5pm"
  dailyagi chat --demo
  dailyagi wallet connect 0x1234567890abcdef1234567890abcdef12345678
  dailyagi spending --range 7d
  dailyagi serve-demo --port 8001`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "dailyagi version "+version)
				return err
			}
			return cmd.Help()
		},
	}

	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
	cmd.PersistentFlags().StringVar(&flags.wallet, "wallet", "", "Wallet address to use for this command")
	cmd.PersistentFlags().BoolVar(&flags.demo, "demo", false, "Fall back to the demo wallet when none is connected")
	cmd.PersistentFlags().StringVar(&flags.agentURL, "agent-url", "", "Override the streaming agent base URL")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Override the REST API base URL")

	cmd.AddCommand(
		newAskCommand(deps, flags),
		newChatCommand(deps, flags),
		newWalletCommand(deps, flags),
		newRemindersCommand(deps, flags),
		newSpendingCommand(deps, flags),
		newGroceryCommand(deps, flags),
		newDashboardCommand(deps, flags),
		newServeDemoCommand(deps, flags),
	)

	return cmd
}
