package transport

import (
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"
)

// egress is one outbound route: a proxy and the browser client bound to it.
type egress struct {
	proxy  string
	client *stealth.BrowserClient

	active       bool
	reactivateAt time.Time

	mu          sync.Mutex
	backoff     time.Time
	consecFails int

	pool.HealthTracker
}

func newEgress(proxy string, bc *stealth.BrowserClient) *egress {
	return &egress{
		proxy:         proxy,
		client:        bc,
		active:        true,
		HealthTracker: pool.DefaultHealthTracker(),
	}
}

// ID implements pool.Identity.
func (e *egress) ID() string {
	if e.proxy == "" {
		return "direct"
	}
	return stealth.MaskProxy(e.proxy)
}

// IsActive implements pool.Identity.
func (e *egress) IsActive() bool { return e.active }

// SetActive implements pool.Identity.
func (e *egress) SetActive(v bool) { e.active = v }

// ReactivateAt implements pool.Identity.
func (e *egress) ReactivateAt() time.Time { return e.reactivateAt }

// SetReactivateAt implements pool.Identity.
func (e *egress) SetReactivateAt(t time.Time) { e.reactivateAt = t }

func (e *egress) backoffUntil() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backoff
}

func (e *egress) setBackoff(t time.Time) {
	e.mu.Lock()
	e.backoff = t
	e.mu.Unlock()
}

// fail counts a consecutive failure and returns the new count.
func (e *egress) fail() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consecFails++
	return e.consecFails
}

func (e *egress) resetFailures() {
	e.mu.Lock()
	e.consecFails = 0
	e.mu.Unlock()
}
