// Package legacy implements timelines.Client on top of the v1.1 REST API.
package legacy

import (
	"errors"
	"fmt"
	"sync"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Client is one authenticated REST account.
type Client struct {
	cfg      Config
	state    *timelines.AccountState
	resolver *timelines.Resolver

	mu     sync.RWMutex
	limits Configuration
}

var (
	_ timelines.Client             = (*Client)(nil)
	_ timelines.ConversationSource = (*Client)(nil)
)

// New creates a REST client. No request is made until the first call.
func New(cfg Config) (*Client, error) {
	if cfg.Transport == nil {
		return nil, errors.New("legacy: transport is required")
	}
	cfg.defaults()

	c := &Client{cfg: cfg, state: cfg.State}
	c.resolver = timelines.NewResolver(c, cfg.Cache)
	return c, nil
}

func (c *Client) Network() timelines.Network { return timelines.NetworkTwitter }

// CanHandle claims Twitter status and direct message ids.
func (c *Client) CanHandle(id timelines.PostID) bool {
	return id.Network == timelines.NetworkTwitter &&
		(id.Kind == timelines.KindStatus || id.Kind == timelines.KindDirectMessage)
}

func (c *Client) State() *timelines.AccountState { return c.state }

// Configuration returns the server limits loaded by RefreshConfiguration.
func (c *Client) Configuration() Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limits
}

// check runs the pre-flight checks for operations on statuses. Direct
// messages only support deletion, which checks them separately.
func (c *Client) check(id timelines.PostID) error {
	if err := timelines.CheckUsable(c.state); err != nil {
		return err
	}
	if id.Network != timelines.NetworkTwitter || id.Kind != timelines.KindStatus {
		return fmt.Errorf("legacy %s: %w", id, timelines.ErrNotSupported)
	}
	return nil
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}

func (c *Client) settings() timelines.Settings { return c.cfg.Settings.TimelineSettings() }

// remember stores fetched posts in the shared cache.
func (c *Client) remember(posts ...*timelines.Post) {
	if c.cfg.Cache == nil {
		return
	}
	for _, p := range posts {
		c.cfg.Cache.Upsert(p)
	}
}
