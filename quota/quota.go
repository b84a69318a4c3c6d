// Package quota tracks per-endpoint API quota snapshots reported by backends.
package quota

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Limit is a fully populated quota snapshot for one endpoint.
type Limit struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// ParseHeaders reads {prefix}Limit, {prefix}Remaining and {prefix}Reset
// case-insensitively. Reset is a Unix epoch second count. It returns false
// unless all three are present and numeric.
func ParseHeaders(headers map[string]string, prefix string) (Limit, bool) {
	limit, ok1 := headerInt(headers, prefix+"Limit")
	remaining, ok2 := headerInt(headers, prefix+"Remaining")
	reset, ok3 := headerInt(headers, prefix+"Reset")
	if !ok1 || !ok2 || !ok3 {
		return Limit{}, false
	}
	return Limit{
		Limit:     int(limit),
		Remaining: int(remaining),
		ResetAt:   time.Unix(reset, 0).UTC(),
	}, true
}

func headerInt(headers map[string]string, key string) (int64, bool) {
	for k, v := range headers {
		if !strings.EqualFold(k, key) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Change identifies what a registry mutation touched.
type Change struct {
	// Endpoint is empty when All is set.
	Endpoint string
	All      bool
}

// Registry is a concurrent endpoint -> Limit map with change notification.
// Entries are replaced whole; readers never see a partially written Limit.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Limit
	limiter *ratelimit.Limiter

	watchMu  sync.Mutex
	watchers map[*Watcher]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries:  make(map[string]Limit),
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig),
		watchers: make(map[*Watcher]struct{}),
	}
}

// Get returns the snapshot for endpoint.
func (r *Registry) Get(endpoint string) (Limit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.entries[endpoint]
	return l, ok
}

// Set replaces the snapshot for endpoint.
func (r *Registry) Set(endpoint string, l Limit) {
	r.mu.Lock()
	r.entries[endpoint] = l
	r.markExhausted(endpoint, l)
	r.mu.Unlock()
	r.notify(Change{Endpoint: endpoint})
}

// Merge stores every entry of m and fires a single change notification.
func (r *Registry) Merge(m map[string]Limit) {
	if len(m) == 0 {
		return
	}
	r.mu.Lock()
	for endpoint, l := range m {
		r.entries[endpoint] = l
		r.markExhausted(endpoint, l)
	}
	r.mu.Unlock()
	r.notify(Change{All: true})
}

// Clear drops every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.entries = make(map[string]Limit)
	r.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig)
	r.mu.Unlock()
	r.notify(Change{All: true})
}

// Snapshot returns a copy of all entries.
func (r *Registry) Snapshot() map[string]Limit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Limit, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// UpdateFromHeaders parses headers and stores the result under endpoint.
// Malformed or missing headers leave the registry untouched.
func (r *Registry) UpdateFromHeaders(endpoint string, headers map[string]string, prefix string) bool {
	l, ok := ParseHeaders(headers, prefix)
	if !ok {
		return false
	}
	r.Set(endpoint, l)
	return true
}

// Exhausted reports whether endpoint last reported no remaining quota and
// its reset time has not passed yet.
func (r *Registry) Exhausted(endpoint string) bool {
	r.mu.RLock()
	lim := r.limiter
	r.mu.RUnlock()
	return lim.IsRateLimited(endpoint)
}

// AvailableAt returns when endpoint can be used again, zero if it is usable now.
func (r *Registry) AvailableAt(endpoint string) time.Time {
	r.mu.RLock()
	lim := r.limiter
	r.mu.RUnlock()
	if !lim.IsRateLimited(endpoint) {
		return time.Time{}
	}
	return lim.AvailableAt(endpoint)
}

// markExhausted mirrors l into the limiter, clearing an earlier mark when l
// has quota left. It must be called with r.mu held.
func (r *Registry) markExhausted(endpoint string, l Limit) {
	if l.Remaining <= 0 && l.ResetAt.After(time.Now()) {
		r.limiter.MarkRateLimited(endpoint, l.ResetAt)
		return
	}
	r.limiter.MarkRateLimited(endpoint, time.Time{})
}
