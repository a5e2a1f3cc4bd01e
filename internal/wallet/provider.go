package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/Backland-Labs/dailyagi/internal/logger"
)

var (
	// ErrUnavailable is returned by a provider that has nothing to offer,
	// which lets the chain move on to the next one.
	ErrUnavailable = errors.New("wallet provider unavailable")

	// ErrNoProvider is returned when every provider in a chain failed.
	ErrNoProvider = errors.New("no wallet provider available")
)

// Account is what a provider hands back on success.
type Account struct {
	Address  string
	ChainID  int
	Provider string
}

// Provider is one way of obtaining a wallet address.
type Provider interface {
	Name() string
	Probe(ctx context.Context) (Account, error)
}

// StaticProvider offers a fixed address, typically from a flag or the
// configuration file.
type StaticProvider struct {
	Label   string
	Address string
	ChainID int
}

func (p StaticProvider) Name() string {
	if p.Label == "" {
		return "static"
	}
	return p.Label
}

func (p StaticProvider) Probe(ctx context.Context) (Account, error) {
	address := strings.TrimSpace(p.Address)
	if address == "" {
		return Account{}, ErrUnavailable
	}
	if err := ValidateAddress(address); err != nil {
		return Account{}, err
	}
	return Account{Address: address, ChainID: p.ChainID, Provider: p.Name()}, nil
}

// EnvProvider reads the address from an environment variable.
type EnvProvider struct {
	Key string
}

func (p EnvProvider) Name() string {
	return "env"
}

func (p EnvProvider) Probe(ctx context.Context) (Account, error) {
	return StaticProvider{Label: p.Name(), Address: os.Getenv(p.Key)}.Probe(ctx)
}

// SavedProvider reconnects the address restored from the session store.
type SavedProvider struct {
	Store *Store
}

func (p SavedProvider) Name() string {
	return "saved"
}

func (p SavedProvider) Probe(ctx context.Context) (Account, error) {
	if p.Store == nil {
		return Account{}, ErrUnavailable
	}
	sess := p.Store.Snapshot()
	if sess.Address == "" {
		return Account{}, ErrUnavailable
	}
	return Account{Address: sess.Address, ChainID: sess.ChainID, Provider: p.Name()}, nil
}

// DemoProvider offers DemoAddress when demo mode is on.
type DemoProvider struct {
	Enabled bool
}

func (p DemoProvider) Name() string {
	return "demo"
}

func (p DemoProvider) Probe(ctx context.Context) (Account, error) {
	if !p.Enabled {
		return Account{}, ErrUnavailable
	}
	return Account{Address: DemoAddress, ChainID: 137, Provider: p.Name()}, nil
}

// Chain is an ordered list of providers; the first success wins.
type Chain []Provider

// First probes providers in order and returns the first account obtained.
// When all fail the returned error matches ErrNoProvider and carries every
// individual failure.
func (c Chain) First(ctx context.Context) (Account, error) {
	var failures error

	for _, p := range c {
		if err := ctx.Err(); err != nil {
			return Account{}, err
		}

		account, err := p.Probe(ctx)
		if err == nil {
			logger.WithFields(map[string]interface{}{
				"provider": p.Name(),
				"address":  FormatAddress(account.Address, 4),
			}).Debug("Wallet provider connected")
			return account, nil
		}

		logger.WithFields(map[string]interface{}{
			"provider": p.Name(),
			"error":    err.Error(),
		}).Debug("Wallet provider skipped")
		if !errors.Is(err, ErrUnavailable) {
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}

	if failures != nil {
		return Account{}, fmt.Errorf("%w: %w", ErrNoProvider, failures)
	}
	return Account{}, ErrNoProvider
}
