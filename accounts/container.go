// Package accounts holds the configured accounts and decides which one
// serves a view or a post.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	timelines "github.com/anatolykoptev/go-timelines"
)

// verifyConcurrency bounds parallel VerifyIdentity calls in VerifyAll.
const verifyConcurrency = 4

// Account pairs a protocol client with the state it mutates. The client is
// swapped on reload; the state is kept for as long as the identity is.
type Account struct {
	Name    string
	Backend Backend

	mu     sync.RWMutex
	cfg    AccountConfig
	client timelines.Client
	state  *timelines.AccountState
}

// Client returns the current protocol client.
func (a *Account) Client() timelines.Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client
}

// State returns the account state shared by every view of the account.
func (a *Account) State() *timelines.AccountState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// CanHandle reports whether the account's client claims id.
func (a *Account) CanHandle(id timelines.PostID) bool { return a.Client().CanHandle(id) }

func (a *Account) set(cfg AccountConfig, c timelines.Client) {
	a.mu.Lock()
	a.cfg = cfg
	a.client = c
	a.state = c.State()
	a.mu.Unlock()
}

// dispose turns a into a null account for views that still hold it.
func (a *Account) dispose() {
	null := timelines.NewNullClient()
	a.mu.Lock()
	a.client = null
	a.state = null.State()
	a.mu.Unlock()
}

// NullAccount returns an account whose every operation fails with ErrAuth.
func NullAccount() *Account {
	a := &Account{}
	a.dispose()
	return a
}

// Container is the set of configured accounts plus the primary one.
type Container struct {
	factory  Factory
	settings *LiveSettings

	mu       sync.RWMutex
	accounts []*Account
	byName   map[string]*Account
	primary  *Account
	null     *Account
}

// New returns an empty container. settings is updated on every Reload.
func New(factory Factory, settings *LiveSettings) *Container {
	if settings == nil {
		settings = NewLiveSettings(timelines.DefaultSettings.TimelineSettings())
	}
	return &Container{
		factory:  factory,
		settings: settings,
		byName:   map[string]*Account{},
		null:     NullAccount(),
	}
}

// Settings returns the live settings source handed to clients.
func (c *Container) Settings() *LiveSettings { return c.settings }

// Accounts returns the configured accounts in configuration order.
func (c *Container) Accounts() []*Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Account(nil), c.accounts...)
}

// Primary returns the primary account, or the null account when none is
// configured.
func (c *Container) Primary() *Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.primary == nil {
		return c.null
	}
	return c.primary
}

// ForTab returns the account a view is bound to. An empty name means the
// primary account; a name no longer configured yields the null account.
func (c *Container) ForTab(name string) *Account {
	if name == "" {
		return c.Primary()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if a, ok := c.byName[name]; ok {
		return a
	}
	return c.null
}

// ForPost picks the account to act on id: the preferred account, then the
// primary, then every other account in configuration order.
func (c *Container) ForPost(id timelines.PostID, preferred string) (*Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if a, ok := c.byName[preferred]; ok && a.CanHandle(id) {
		return a, true
	}
	if c.primary != nil && c.primary.CanHandle(id) {
		return c.primary, true
	}
	for _, a := range c.accounts {
		if a == c.primary {
			continue
		}
		if a.CanHandle(id) {
			return a, true
		}
	}
	return nil, false
}

// Reload applies cfg. Accounts whose identity is unchanged keep their
// Account value and state and get a freshly built client; removed accounts
// are disposed. On error the container is left as it was.
func (c *Container) Reload(cfg *Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	type planned struct {
		acc    *Account
		cfg    AccountConfig
		client timelines.Client
	}
	byIdentity := make(map[string]*Account, len(c.accounts))
	for _, a := range c.accounts {
		a.mu.RLock()
		byIdentity[a.cfg.identity()] = a
		a.mu.RUnlock()
	}

	plan := make([]planned, 0, len(cfg.Accounts))
	kept := make(map[*Account]bool, len(cfg.Accounts))
	for _, ac := range cfg.Accounts {
		acc, reuse := byIdentity[ac.identity()]
		var st *timelines.AccountState
		if reuse {
			st = acc.State()
			kept[acc] = true
		} else {
			acc = &Account{Name: ac.Name, Backend: ac.Backend}
		}
		client, err := c.factory(ac, st)
		if err != nil {
			return fmt.Errorf("reload account %q: %w", ac.Name, err)
		}
		plan = append(plan, planned{acc: acc, cfg: ac, client: client})
	}

	for _, a := range c.accounts {
		if !kept[a] {
			slog.Info("accounts: account removed", slog.String("account", a.Name))
			a.dispose()
		}
	}

	c.accounts = make([]*Account, 0, len(plan))
	c.byName = make(map[string]*Account, len(plan))
	c.primary = nil
	for _, p := range plan {
		if kept[p.acc] && credentialsChanged(p.acc.cfg, p.cfg) {
			p.client.State().ResetUnrecoverable()
		}
		p.acc.set(p.cfg, p.client)
		c.accounts = append(c.accounts, p.acc)
		c.byName[p.acc.Name] = p.acc
		if p.acc.Name == cfg.Primary {
			c.primary = p.acc
		}
	}
	c.settings.Store(cfg.Settings)
	return nil
}

func credentialsChanged(a, b AccountConfig) bool {
	return a.Token != b.Token || a.AuthToken != b.AuthToken || a.CT0 != b.CT0
}

// VerifyAll verifies every account concurrently. Failures do not stop the
// other verifications; they are joined into the returned error.
func (c *Container) VerifyAll(ctx context.Context) error {
	accounts := c.Accounts()
	errs := make([]error, len(accounts))

	var g errgroup.Group
	g.SetLimit(verifyConcurrency)
	for i, a := range accounts {
		g.Go(func() error {
			if err := a.Client().VerifyIdentity(ctx); err != nil {
				slog.Warn("accounts: verify failed", slog.String("account", a.Name), slog.Any("error", err))
				errs[i] = fmt.Errorf("account %q: %w", a.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
