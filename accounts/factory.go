package accounts

import (
	"fmt"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/graphql"
	"github.com/anatolykoptev/go-timelines/legacy"
	"github.com/anatolykoptev/go-timelines/misskey"
	"github.com/anatolykoptev/go-timelines/transport"
)

// Factory builds the protocol client of an account around existing state.
type Factory func(ac AccountConfig, st *timelines.AccountState) (timelines.Client, error)

// Deps are the collaborators shared by every client a factory builds.
type Deps struct {
	// Transport is used by accounts without their own proxy. Required.
	Transport timelines.Transport
	// NewTransport builds a dedicated transport for accounts with a proxy.
	// Default: a single-egress stealth transport.
	NewTransport func(proxy string) (timelines.Transport, error)
	Settings     timelines.SettingsSource
	Cache        timelines.PostCache
	MetricsHook  timelines.MetricsHook
}

// NewFactory returns the Factory for the three built-in backends.
func NewFactory(deps Deps) Factory {
	if deps.NewTransport == nil {
		deps.NewTransport = func(proxy string) (timelines.Transport, error) {
			return transport.New(transport.Config{Proxies: []string{proxy}})
		}
	}
	return func(ac AccountConfig, st *timelines.AccountState) (timelines.Client, error) {
		tr := deps.Transport
		if ac.Proxy != "" {
			t, err := deps.NewTransport(ac.Proxy)
			if err != nil {
				return nil, fmt.Errorf("account %q transport: %w", ac.Name, err)
			}
			tr = t
		}

		switch ac.Backend {
		case BackendLegacy:
			return asClient(legacy.New(legacy.Config{
				Transport:   tr,
				Settings:    deps.Settings,
				Cache:       deps.Cache,
				BaseURL:     ac.BaseURL,
				Token:       ac.Token,
				UserAgent:   ac.UserAgent,
				MetricsHook: deps.MetricsHook,
				State:       st,
			}))
		case BackendGraphQL:
			return asClient(graphql.New(graphql.Config{
				Transport:   tr,
				Settings:    deps.Settings,
				Cache:       deps.Cache,
				ScreenName:  ac.ScreenName,
				AuthToken:   ac.AuthToken,
				CT0:         ac.CT0,
				UserAgent:   ac.UserAgent,
				MetricsHook: deps.MetricsHook,
				State:       st,
			}))
		case BackendMisskey:
			return asClient(misskey.New(misskey.Config{
				Transport:   tr,
				Settings:    deps.Settings,
				Cache:       deps.Cache,
				Host:        ac.Host,
				Token:       ac.Token,
				UserAgent:   ac.UserAgent,
				MetricsHook: deps.MetricsHook,
				State:       st,
			}))
		}
		return nil, fmt.Errorf("account %q: unknown backend %q", ac.Name, ac.Backend)
	}
}

// asClient keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func asClient[C timelines.Client](c C, err error) (timelines.Client, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
