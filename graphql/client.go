// Package graphql implements timelines.Client on top of the GraphQL web API
// used by the x.com web app.
package graphql

import (
	"errors"
	"fmt"
	"sync"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Client is one authenticated web session.
type Client struct {
	cfg      Config
	state    *timelines.AccountState
	resolver *timelines.Resolver

	mu  sync.Mutex
	ct0 string
}

var (
	_ timelines.Client             = (*Client)(nil)
	_ timelines.ConversationSource = (*Client)(nil)
)

// New creates a GraphQL client. No request is made until the first call.
func New(cfg Config) (*Client, error) {
	if cfg.Transport == nil {
		return nil, errors.New("graphql: transport is required")
	}
	if cfg.AuthToken == "" {
		return nil, errors.New("graphql: auth token is required")
	}
	cfg.defaults()

	c := &Client{
		cfg:   cfg,
		state: cfg.State,
		ct0:   cfg.CT0,
	}
	c.resolver = timelines.NewResolver(c, cfg.Cache)
	return c, nil
}

func (c *Client) Network() timelines.Network { return timelines.NetworkTwitter }

// CanHandle claims Twitter status ids. Direct messages are not reachable
// through the GraphQL session.
func (c *Client) CanHandle(id timelines.PostID) bool {
	return id.Network == timelines.NetworkTwitter && id.Kind == timelines.KindStatus
}

func (c *Client) State() *timelines.AccountState { return c.state }

// check runs the pre-flight checks shared by every id-taking operation.
func (c *Client) check(id timelines.PostID) error {
	if err := timelines.CheckUsable(c.state); err != nil {
		return err
	}
	if !c.CanHandle(id) {
		return fmt.Errorf("graphql %s: %w", id, timelines.ErrNotSupported)
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
