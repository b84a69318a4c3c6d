package accounts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Backend names a wire protocol.
type Backend string

const (
	BackendLegacy  Backend = "legacy"
	BackendGraphQL Backend = "graphql"
	BackendMisskey Backend = "misskey"
)

// Config is the accounts file.
type Config struct {
	// Primary names the account used when a view specifies none.
	// Default: the first account.
	Primary   string             `yaml:"primary"`
	Settings  timelines.Settings `yaml:"settings"`
	Transport TransportConfig    `yaml:"transport"`
	Accounts  []AccountConfig    `yaml:"accounts"`
}

// TransportConfig tunes the shared stealth transport.
type TransportConfig struct {
	Proxies     []string `yaml:"proxies"`
	Jitter      bool     `yaml:"jitter"`
	MaxAttempts int      `yaml:"max_attempts"`
}

// AccountConfig describes one account. Credential fields may reference
// environment variables as ${VAR}.
type AccountConfig struct {
	Name    string  `yaml:"name"`
	Backend Backend `yaml:"backend"`

	ScreenName string `yaml:"screen_name"`
	UserAgent  string `yaml:"user_agent"`
	// Proxy routes this account through its own egress instead of the
	// shared transport.
	Proxy string `yaml:"proxy"`

	// Token is the bearer token (legacy) or access token (misskey).
	Token string `yaml:"token"`
	// BaseURL overrides the legacy REST root.
	BaseURL string `yaml:"base_url"`

	// AuthToken and CT0 are the graphql session cookies.
	AuthToken string `yaml:"auth_token"`
	CT0       string `yaml:"ct0"`

	// Host is the misskey server name.
	Host string `yaml:"host"`
}

// identity is what must stay equal for a reload to reuse an account.
func (a AccountConfig) identity() string {
	return string(a.Backend) + "|" + a.Name + "|" + strings.ToLower(a.Host)
}

// Load reads and parses an accounts file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, expands environment references, fills defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{Settings: timelines.Settings{IncludeRetweets: true}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse accounts config: %w", err)
	}
	cfg.expandEnv()
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) expandEnv() {
	for i := range cfg.Accounts {
		a := &cfg.Accounts[i]
		a.Token = os.ExpandEnv(a.Token)
		a.AuthToken = os.ExpandEnv(a.AuthToken)
		a.CT0 = os.ExpandEnv(a.CT0)
		a.Proxy = os.ExpandEnv(a.Proxy)
	}
	for i, p := range cfg.Transport.Proxies {
		cfg.Transport.Proxies[i] = os.ExpandEnv(p)
	}
}

// defaults fills in zero-value config fields.
func (cfg *Config) defaults() {
	for i := range cfg.Accounts {
		a := &cfg.Accounts[i]
		a.Backend = Backend(strings.ToLower(strings.TrimSpace(string(a.Backend))))
		if a.Name == "" {
			a.Name = fmt.Sprintf("%s-%d", a.Backend, i+1)
		}
	}
	if cfg.Primary == "" && len(cfg.Accounts) > 0 {
		cfg.Primary = cfg.Accounts[0].Name
	}
}

func (cfg *Config) validate() error {
	var errs []error
	seen := make(map[string]bool, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		if seen[a.Name] {
			errs = append(errs, fmt.Errorf("account %q: duplicate name", a.Name))
		}
		seen[a.Name] = true

		switch a.Backend {
		case BackendLegacy:
		case BackendGraphQL:
			if a.AuthToken == "" {
				errs = append(errs, fmt.Errorf("account %q: auth_token is required", a.Name))
			}
		case BackendMisskey:
			if a.Host == "" || a.Token == "" {
				errs = append(errs, fmt.Errorf("account %q: host and token are required", a.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("account %q: unknown backend %q", a.Name, a.Backend))
		}
	}
	if cfg.Primary != "" && !seen[cfg.Primary] {
		errs = append(errs, fmt.Errorf("primary account %q is not configured", cfg.Primary))
	}
	return errors.Join(errs...)
}
