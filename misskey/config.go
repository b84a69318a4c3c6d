package misskey

import (
	"strings"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Config holds everything a Misskey client needs for one account.
type Config struct {
	// Transport sends every request. Required.
	Transport timelines.Transport

	// Settings supplies the read and retweet policy.
	// Default: timelines.DefaultSettings.
	Settings timelines.SettingsSource

	// Cache is the shared post cache used while resolving conversations.
	Cache timelines.PostCache

	// Host is the server name, e.g. "misskey.io". Required.
	Host string

	// Token is the access token sent as "i" in every request body. Required.
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
	cfg.Host = strings.TrimSuffix(strings.TrimPrefix(cfg.Host, "https://"), "/")
	if cfg.State == nil {
		cfg.State = timelines.NewAccountState(timelines.PersonID{}, "")
	}
}
