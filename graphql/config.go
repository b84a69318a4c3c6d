package graphql

import (
	timelines "github.com/anatolykoptev/go-timelines"
)

// TransactionIDSource generates the x-client-transaction-id header for a
// request method and URL path.
type TransactionIDSource interface {
	GenerateID(method, path string) (string, error)
}

// Config holds everything a GraphQL client needs for one account.
type Config struct {
	// Transport sends every request. Required.
	Transport timelines.Transport

	// Settings supplies the read and retweet policy.
	// Default: timelines.DefaultSettings.
	Settings timelines.SettingsSource

	// Cache is the shared post cache used while resolving conversations.
	Cache timelines.PostCache

	// ScreenName is the account handle, used to verify the identity and to
	// build the mentions query.
	ScreenName string

	// AuthToken is the auth_token session cookie. Required.
	AuthToken string

	// CT0 is the csrf cookie. A random one is generated when empty; the server
	// replaces it through set-cookie on the first response.
	CT0 string

	// UserAgent overrides the default browser User-Agent.
	UserAgent string

	// MetricsHook is called on each API request for external metrics collection.
	MetricsHook timelines.MetricsHook

	// TransactionIDs, when set, stamps x-client-transaction-id on every request.
	TransactionIDs TransactionIDSource

	// State is reused when the account is re-initialized after a reload.
	State *timelines.AccountState
}

// defaults fills in zero-value config fields.
func (cfg *Config) defaults() {
	if cfg.Settings == nil {
		cfg.Settings = timelines.DefaultSettings
	}
	if cfg.CT0 == "" {
		cfg.CT0 = GenerateCT0()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.State == nil {
		cfg.State = timelines.NewAccountState(timelines.PersonID{}, cfg.ScreenName)
	}
}
