// Package cli implements the tlcore commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/accounts"
	"github.com/anatolykoptev/go-timelines/cache"
	"github.com/anatolykoptev/go-timelines/transport"
)

var (
	configPath string
	accountArg string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "tlcore",
	Short: "Read Twitter and Misskey timelines from the terminal",
	Long:  "tlcore loads accounts from a YAML file and prints timelines, threads and rate limits.",
	PersistentPreRun: func(*cobra.Command, []string) {
		_ = godotenv.Load(".env")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Accounts file (default: $TLCORE_CONFIG or accounts.yaml)")
	RootCmd.PersistentFlags().StringVarP(&accountArg, "account", "a", "", "Account name (default: primary)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("TLCORE_CONFIG"); env != "" {
		return env
	}
	return "accounts.yaml"
}

// openContainer loads the accounts file and builds every client over one
// shared stealth transport and post cache.
func openContainer() (*accounts.Container, error) {
	cfg, err := accounts.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	tr, err := transport.New(transport.Config{
		Proxies:     cfg.Transport.Proxies,
		Jitter:      cfg.Transport.Jitter,
		MaxAttempts: cfg.Transport.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	settings := accounts.NewLiveSettings(cfg.Settings)
	factory := accounts.NewFactory(accounts.Deps{
		Transport:   tr,
		Settings:    settings,
		Cache:       cache.NewMemory(),
		MetricsHook: logMetrics,
	})
	c := accounts.New(factory, settings)
	if err := c.Reload(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func logMetrics(endpoint string, success, rateLimited bool) {
	slog.Debug("api call",
		slog.String("endpoint", endpoint),
		slog.Bool("success", success),
		slog.Bool("rate_limited", rateLimited))
}

func selectAccount(c *accounts.Container) (*accounts.Account, error) {
	a := c.ForTab(accountArg)
	if a.State().HasUnrecoverableError() {
		if accountArg == "" {
			return nil, fmt.Errorf("no usable primary account: %w", timelines.ErrAuth)
		}
		return nil, fmt.Errorf("account %q: %w", accountArg, timelines.ErrAuth)
	}
	return a, nil
}
