package legacy

import (
	"strings"

	timelines "github.com/anatolykoptev/go-timelines"
)

// DefaultBaseURL is the v1.1 REST root.
const DefaultBaseURL = "https://api.twitter.com/1.1"

// Config holds everything a REST client needs for one account.
type Config struct {
	// Transport sends every request. Required.
	Transport timelines.Transport

	// Settings supplies the read and retweet policy.
	// Default: timelines.DefaultSettings.
	Settings timelines.SettingsSource

	// Cache is the shared post cache used while resolving conversations.
	Cache timelines.PostCache

	// BaseURL overrides DefaultBaseURL, mostly for tests and API proxies.
	BaseURL string

	// Token is sent as a bearer credential. Transports that sign requests
	// themselves (OAuth 1.0a) leave it empty.
	Token string

	// UserAgent is sent when non-empty.
	UserAgent string

	// MetricsHook is called on each API request for external metrics collection.
	MetricsHook timelines.MetricsHook

	// State is reused when the account is re-initialized after a reload.
	State *timelines.AccountState
}

// defaults fills in zero-value config fields.
func (cfg *Config) defaults() {
	if cfg.Settings == nil {
		cfg.Settings = timelines.DefaultSettings
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.State == nil {
		cfg.State = timelines.NewAccountState(timelines.PersonID{}, "")
	}
}
