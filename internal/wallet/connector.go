package wallet

import (
	"context"
	"sync"
	"time"
)

// Connector is the wallet capability consumed by the rest of dailyagi. It
// resolves an address through a provider Chain. Only Connect records the
// result in the Store; Resolve keeps it for the current process.
type Connector struct {
	chain Chain
	store *Store
	now   func() time.Time

	mu     sync.Mutex
	active Session
}

// NewConnector creates a connector that probes providers in order.
func NewConnector(store *Store, providers ...Provider) *Connector {
	return &Connector{
		chain: Chain(providers),
		store: store,
		now:   time.Now,
	}
}

// Resolve probes the provider chain and makes the first account found the
// active wallet of this process. The saved session is left untouched.
func (c *Connector) Resolve(ctx context.Context) (Session, error) {
	account, err := c.chain.First(ctx)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Address:     account.Address,
		Provider:    account.Provider,
		ChainID:     account.ChainID,
		Connected:   true,
		ConnectedAt: c.now().UTC(),
	}

	c.mu.Lock()
	c.active = sess
	c.mu.Unlock()
	return sess, nil
}

// Connect resolves the wallet and saves it as the session later processes
// reconnect to.
func (c *Connector) Connect(ctx context.Context) (Session, error) {
	sess, err := c.Resolve(ctx)
	if err != nil {
		return Session{}, err
	}
	if err := c.store.Set(sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Disconnect forgets the active and the saved wallet.
func (c *Connector) Disconnect() error {
	c.mu.Lock()
	c.active = Session{}
	c.mu.Unlock()
	return c.store.Clear()
}

// Address returns the active address, then the saved one, or "".
func (c *Connector) Address() string {
	c.mu.Lock()
	address := c.active.Address
	c.mu.Unlock()

	if address != "" {
		return address
	}
	return c.store.Snapshot().Address
}

// IsConnected reports whether a provider connected during this process.
func (c *Connector) IsConnected() bool {
	c.mu.Lock()
	connected := c.active.Connected
	c.mu.Unlock()

	return connected || c.store.Snapshot().Connected
}

// Store returns the underlying session store.
func (c *Connector) Store() *Store {
	return c.store
}
