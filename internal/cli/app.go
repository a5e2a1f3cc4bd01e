package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
	"github.com/Backland-Labs/dailyagi/internal/chat"
	"github.com/Backland-Labs/dailyagi/internal/config"
	"github.com/Backland-Labs/dailyagi/internal/logger"
	"github.com/Backland-Labs/dailyagi/internal/output"
	"github.com/Backland-Labs/dailyagi/internal/stream"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

var errNoWallet = fmt.Errorf("%w (use --wallet, DAILYAGI_WALLET or --demo)", chat.ErrNoWallet)

// app is the per-invocation wiring shared by the subcommands
type app struct {
	cfg       *config.Config
	printer   *output.Printer
	connector *wallet.Connector
	api       *agentapi.Client
	agent     *stream.Client
	deps      *Dependencies
}

// newApp loads configuration, applies flag overrides and initializes the
// logger, the wallet connector and both clients.
func newApp(cmd *cobra.Command, deps *Dependencies, flags *globalFlags) (*app, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.demo {
		cfg.Demo.Enabled = true
	}
	if flags.agentURL != "" {
		cfg.Agent.URL = flags.agentURL
	}
	if flags.apiURL != "" {
		cfg.API.URL = flags.apiURL
	}
	if address := strings.TrimSpace(flags.wallet); address != "" {
		if err := wallet.ValidateAddress(address); err != nil {
			return nil, fmt.Errorf("invalid --wallet: %w", err)
		}
	}

	logger.InitializeFromConfig(cfg)

	store := wallet.NewStore(cfg.Wallet.SessionFile)
	if err := store.Load(); err != nil {
		logger.WithField("error", err.Error()).Warn("Ignoring unreadable wallet session")
	}

	connector := wallet.NewConnector(store,
		wallet.StaticProvider{Label: "flag", Address: flags.wallet},
		wallet.EnvProvider{Key: "DAILYAGI_WALLET"},
		wallet.StaticProvider{Label: "config", Address: cfg.Wallet.Address},
		wallet.SavedProvider{Store: store},
		wallet.DemoProvider{Enabled: cfg.Demo.Enabled},
	)

	return &app{
		cfg:       cfg,
		printer:   output.NewPrinterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), deps.Color),
		connector: connector,
		api:       agentapi.NewClient(cfg.API.URL, agentapi.WithTimeout(cfg.API.Timeout)),
		agent:     stream.NewClient(cfg.Agent.Endpoint()),
		deps:      deps,
	}, nil
}

// connect resolves the wallet for this invocation without saving it. It
// returns "" without an error when no provider had an address to offer.
func (a *app) connect(ctx context.Context) (string, error) {
	sess, err := a.connector.Resolve(ctx)
	switch {
	case err == nil:
		return sess.Address, nil
	case err == wallet.ErrNoProvider: //nolint:errorlint // bare sentinel means nothing failed
		return "", nil
	default:
		return "", fmt.Errorf("failed to connect wallet: %w", err)
	}
}

// requireAddress is connect for commands that cannot run without a wallet.
func (a *app) requireAddress(ctx context.Context) (string, error) {
	address, err := a.connect(ctx)
	if err != nil {
		return "", err
	}
	if address == "" {
		return "", errNoWallet
	}
	return address, nil
}

// withInterrupt cancels the returned context on SIGINT or SIGTERM.
func (a *app) withInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			a.printer.Warning("Interrupt received, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
