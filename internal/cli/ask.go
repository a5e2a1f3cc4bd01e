package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/chat"
)

func newAskCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message to the agent and stream the reply",
		Long: `Send one message to the agent and print its progress while the reply
streams in.

Examples:
  dailyagi ask "Remind me to water the plants tonight"
  dailyagi ask --demo "How much did I spend this week?"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if joinArgs(args) == "" {
				return errors.New("requires a message (use quotes for multi-word messages)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			ctx, cancel := a.withInterrupt(cmd.Context())
			defer cancel()
			return runAsk(ctx, a, joinArgs(args))
		},
	}
}

// runAsk sends message through a one-shot conversation and renders the
// stream live.
func runAsk(ctx context.Context, a *app, message string) error {
	if _, err := a.connect(ctx); err != nil {
		return err
	}

	if a.cfg.Agent.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Agent.Timeout)
		defer cancel()
	}

	conv := chat.New(a.agent, a.connector, chat.WithDemoMode(a.cfg.Demo.Enabled))
	view := a.printer.StartStream()
	conv.Observe(func(u chat.Update) {
		if u.Streaming {
			view.Update(u.Current)
		}
	})

	reply, err := conv.Send(ctx, message)
	if err != nil {
		view.Stop()
		if errors.Is(err, chat.ErrNoWallet) {
			return errNoWallet
		}
		return err
	}
	view.Finish(reply.Message.Content)
	return nil
}
