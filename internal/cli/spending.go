package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
)

func newSpendingCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var timeRange string

	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Analyze on-chain spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := agentapi.TimeRange(timeRange)
			if !tr.Valid() {
				return fmt.Errorf("%w: %q", agentapi.ErrInvalidTimeRange, timeRange)
			}

			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			address, err := a.requireAddress(cmd.Context())
			if err != nil {
				return err
			}

			report, err := a.api.AnalyzeSpending(cmd.Context(), address, tr)
			if err != nil {
				return err
			}
			a.printer.Spending(report, tr)
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeRange, "range", "r", string(agentapi.Range30Days), "Time range: 7d, 30d or 90d")

	return cmd
}
