package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
	"github.com/Backland-Labs/dailyagi/internal/output"
)

func newDashboardCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize reminders, spending and plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			address, err := a.requireAddress(cmd.Context())
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), a.api, a.printer, address)
		},
	}
}

// dashboard is what runDashboard managed to fetch. A nil section failed.
type dashboard struct {
	reminders []agentapi.Reminder
	spending  *agentapi.SpendingReport
	premium   *agentapi.PremiumStatus
}

// fetchDashboard loads every section concurrently. Section failures are
// combined into the returned error while the other sections still load;
// only cancellation aborts the whole fetch.
func fetchDashboard(ctx context.Context, api *agentapi.Client, address string) (dashboard, error) {
	var (
		d        dashboard
		mu       sync.Mutex
		failures error
	)
	g, gctx := errgroup.WithContext(ctx)

	section := func(name string, fetch func(context.Context) error) {
		g.Go(func() error {
			err := fetch(gctx)
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mu.Lock()
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", name, err))
			mu.Unlock()
			return nil
		})
	}

	section("reminders", func(ctx context.Context) error {
		reminders, err := api.ListReminders(ctx, address)
		if err == nil {
			mu.Lock()
			d.reminders = reminders
			mu.Unlock()
		}
		return err
	})
	section("spending", func(ctx context.Context) error {
		report, err := api.AnalyzeSpending(ctx, address, agentapi.Range30Days)
		if err == nil {
			mu.Lock()
			d.spending = report
			mu.Unlock()
		}
		return err
	})
	section("premium", func(ctx context.Context) error {
		status, err := api.PremiumStatus(ctx, address)
		if err == nil {
			mu.Lock()
			d.premium = status
			mu.Unlock()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard{}, err
	}
	return d, failures
}

func runDashboard(ctx context.Context, api *agentapi.Client, printer *output.Printer, address string) error {
	d, err := fetchDashboard(ctx, api, address)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	printer.Dashboard(address, d.reminders, d.spending, d.premium)
	failures := multierr.Errors(err)
	for _, failure := range failures {
		printer.Warning("%v", failure)
	}
	if len(failures) == 3 {
		return fmt.Errorf("dashboard unavailable: %w", err)
	}
	return nil
}
