// Package transport provides the production timelines.Transport: a
// browser-fingerprinted HTTP client that spreads requests over a pool of
// egress proxies.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Config configures a Stealth transport.
type Config struct {
	// Proxies lists egress proxy URLs. Empty means one direct connection.
	Proxies []string

	// ProfileIndex picks a browser profile from stealth.BuiltinProfiles.
	ProfileIndex int

	// HeaderOrder is used for requests that carry none.
	HeaderOrder []string

	// MaxAttempts bounds tries per request on transport failures. Default: 3.
	MaxAttempts int

	// Jitter sleeps a random anti-fingerprint delay before each request.
	Jitter bool

	// EgressBackoffInitial and EgressBackoffMax bound how long a failing
	// egress stays out of rotation. Defaults: 30s and 10m.
	EgressBackoffInitial time.Duration
	EgressBackoffMax     time.Duration
}

func (cfg *Config) defaults() {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.EgressBackoffInitial <= 0 {
		cfg.EgressBackoffInitial = 30 * time.Second
	}
	if cfg.EgressBackoffMax <= 0 {
		cfg.EgressBackoffMax = 10 * time.Minute
	}
	if len(cfg.Proxies) == 0 {
		cfg.Proxies = []string{""}
	}
}

// Stealth sends requests through go-stealth browser clients.
type Stealth struct {
	cfg     Config
	profile stealth.BrowserProfile
	pool    *pool.Pool[*egress]
}

var _ timelines.Transport = (*Stealth)(nil)

// New builds one browser client per proxy.
func New(cfg Config) (*Stealth, error) {
	cfg.defaults()
	profile := stealth.BuiltinProfiles[cfg.ProfileIndex%len(stealth.BuiltinProfiles)]

	egresses := make([]*egress, 0, len(cfg.Proxies))
	for _, proxy := range cfg.Proxies {
		opts := []stealth.ClientOption{
			stealth.WithProfile(profile.TLSProfile),
			stealth.WithHeaderOrder(cfg.HeaderOrder),
		}
		if proxy != "" {
			opts = append(opts, stealth.WithProxy(proxy))
		}
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("stealth client for %s: %w", stealth.MaskProxy(proxy), err)
		}
		egresses = append(egresses, newEgress(proxy, bc))
	}

	p := pool.New(egresses, pool.Config{
		AlertHook: func(topic string, payload any) {
			slog.Warn("transport: pool alert", slog.String("topic", topic), slog.Any("payload", payload))
		},
		ProxyBackoff: pool.BackoffConfig{
			InitialWait: cfg.EgressBackoffInitial,
			MaxWait:     cfg.EgressBackoffMax,
			Multiplier:  2.0,
			JitterPct:   0.3,
		},
	})
	return &Stealth{cfg: cfg, profile: profile, pool: p}, nil
}

// UserAgent returns the User-Agent of the selected browser profile, for
// backends that must send a matching one.
func (s *Stealth) UserAgent() string { return s.profile.UserAgent }

// Send implements timelines.Transport. Transport failures are retried on
// the next healthy egress, or on the same one when no other is left; any
// HTTP answer is returned as is.
func (s *Stealth) Send(ctx context.Context, req *timelines.Request) (*timelines.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cfg.Jitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, err
		}
	}
	order := req.HeaderOrder
	if order == nil {
		order = s.cfg.HeaderOrder
	}

	var lastErr error
	for attempt := range s.cfg.MaxAttempts {
		if attempt > 0 {
			delay := stealth.DefaultBackoff.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		eg, err := s.pool.Next(func(e *egress) bool { return time.Now().After(e.backoffUntil()) })
		if err != nil {
			lastErr = err
			break
		}

		body, hdrs, status, err := eg.client.DoWithHeaderOrder(req.Method, req.URL, copyHeaders(req.Headers), bodyReader(req.Body), order)
		if err != nil {
			if s.canMarkDown(eg, err) {
				s.markDown(eg, err)
			} else {
				eg.RecordFailure()
				slog.Debug("transport: request failed, retrying",
					slog.String("endpoint", req.Endpoint),
					slog.Int("attempt", attempt+1),
					slog.Any("error", err))
			}
			lastErr = err
			continue
		}
		eg.RecordSuccess()
		eg.resetFailures()
		return &timelines.Response{Status: status, Headers: lowerKeys(hdrs), Body: body}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no attempt made")
	}
	return nil, fmt.Errorf("transport %s: %w", req.Endpoint, lastErr)
}

// canMarkDown reports whether a failure is the egress's fault and another
// egress remains to take over. A direct connection is never taken out, and
// neither is the last active egress.
func (s *Stealth) canMarkDown(eg *egress, err error) bool {
	if eg.proxy == "" || !isProxyError(err) {
		return false
	}
	return s.pool.Healthy(nil) > 1
}

// isProxyError matches dial failures caused by the proxy rather than the target.
func isProxyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "proxy") ||
		strings.Contains(msg, "SOCKS") ||
		strings.Contains(msg, "tunnel")
}

// markDown takes a failing egress out of rotation with exponential backoff.
func (s *Stealth) markDown(eg *egress, cause error) {
	fails := eg.fail()
	duration := stealth.BackoffConfig{
		InitialWait: s.cfg.EgressBackoffInitial,
		MaxWait:     s.cfg.EgressBackoffMax,
		Multiplier:  2.0,
		JitterPct:   0.3,
	}.Duration(fails - 1)
	eg.setBackoff(time.Now().Add(duration))
	eg.RecordFailure()
	s.pool.SoftDeactivate(eg, duration)

	slog.Warn("transport: egress failed, backing off",
		slog.String("proxy", stealth.MaskProxy(eg.proxy)),
		slog.Int("consec_fails", fails),
		slog.Duration("backoff", duration),
		slog.Any("error", cause))
}

// bodyReader returns nil for an empty body so GETs carry no payload.
func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// lowerKeys normalizes response header names to lower case.
func lowerKeys(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = v
	}
	return out
}
