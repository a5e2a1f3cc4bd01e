package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/server"
)

type serveDemoFlags struct {
	port       int
	frameDelay time.Duration
}

const defaultFrameDelay = 400 * time.Millisecond

// newServeDemoCommand creates the serve-demo subcommand
func newServeDemoCommand(deps *Dependencies, flags *globalFlags) *cobra.Command {
	demoFlags := &serveDemoFlags{}

	cmd := &cobra.Command{
		Use:   "serve-demo",
		Short: "Run the local demo agent",
		Long: `Run a local agent that serves the streaming chat endpoint and the
reminders, spending and grocery API from in-memory demo data.

Point the CLI at it with:
  DAILYAGI_AGENT_URL=http://localhost:8001 DAILYAGI_API_URL=http://localhost:8001 dailyagi ask --demo "..."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, deps, flags)
			if err != nil {
				return err
			}
			port := a.cfg.Demo.Port
			if cmd.Flags().Changed("port") {
				port = demoFlags.port
			}
			if port < 0 || port > 65535 {
				return fmt.Errorf("invalid port: %d", port)
			}

			ctx, cancel := a.withInterrupt(cmd.Context())
			defer cancel()

			srv := server.NewServer(port, server.WithFrameDelay(demoFlags.frameDelay))
			a.printer.Step("Starting demo agent on port %d", port)

			err = srv.Start(ctx)
			if err == nil || errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
				a.printer.Success("Demo agent stopped")
				return nil
			}
			return fmt.Errorf("demo agent failed: %w", err)
		},
	}

	cmd.Flags().IntVarP(&demoFlags.port, "port", "p", 0, "Port to listen on (defaults to DAILYAGI_DEMO_PORT or 8001)")
	cmd.Flags().DurationVar(&demoFlags.frameDelay, "frame-delay", defaultFrameDelay, "Pause between streamed frames")

	return cmd
}
