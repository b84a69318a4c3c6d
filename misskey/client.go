// Package misskey implements timelines.Client for Misskey servers.
package misskey

import (
	"errors"
	"fmt"
	"sync"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Client is one account on one Misskey server.
type Client struct {
	cfg      Config
	state    *timelines.AccountState
	resolver *timelines.Resolver

	mu   sync.RWMutex
	meta Meta
}

var (
	_ timelines.Client             = (*Client)(nil)
	_ timelines.ConversationSource = (*Client)(nil)
)

// New creates a Misskey client. No request is made until the first call.
func New(cfg Config) (*Client, error) {
	if cfg.Transport == nil {
		return nil, errors.New("misskey: transport is required")
	}
	if cfg.Host == "" {
		return nil, errors.New("misskey: host is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("misskey: token is required")
	}
	cfg.defaults()

	c := &Client{cfg: cfg, state: cfg.State}
	c.resolver = timelines.NewResolver(c, cfg.Cache)
	return c, nil
}

func (c *Client) Network() timelines.Network { return timelines.NetworkMisskey }

// CanHandle claims note ids.
func (c *Client) CanHandle(id timelines.PostID) bool {
	return id.Network == timelines.NetworkMisskey && id.Kind == timelines.KindNote
}

func (c *Client) State() *timelines.AccountState { return c.state }

// Host returns the server name the client talks to.
func (c *Client) Host() string { return c.cfg.Host }

// Meta returns the server metadata loaded by RefreshConfiguration.
func (c *Client) Meta() Meta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meta
}

func (c *Client) check(id timelines.PostID) error {
	if err := timelines.CheckUsable(c.state); err != nil {
		return err
	}
	if !c.CanHandle(id) {
		return fmt.Errorf("misskey %s: %w", id, timelines.ErrNotSupported)
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
