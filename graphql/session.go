package graphql

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
)

// GenerateCT0 returns a random 32-byte hex csrf token.
func GenerateCT0() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", 64)
	}
	return hex.EncodeToString(b)
}

// ct0FromSetCookie finds the ct0 value in a set-cookie header. Transports
// fold repeated set-cookie lines with newlines or commas.
func ct0FromSetCookie(headers map[string]string) string {
	cookie := headers["set-cookie"]
	if cookie == "" {
		return ""
	}
	for _, part := range strings.FieldsFunc(cookie, func(r rune) bool {
		return r == ';' || r == ',' || r == '\n'
	}) {
		if val, ok := strings.CutPrefix(strings.TrimSpace(part), "ct0="); ok && val != "" {
			return val
		}
	}
	return ""
}

// credentials returns the current session cookies and User-Agent.
func (c *Client) credentials() (authToken, ct0, userAgent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.AuthToken, c.ct0, c.cfg.UserAgent
}

// refreshCT0 adopts a csrf token the server rotated through set-cookie.
func (c *Client) refreshCT0(headers map[string]string, sent string) {
	v := ct0FromSetCookie(headers)
	if v == "" || v == sent {
		return
	}
	c.mu.Lock()
	c.ct0 = v
	c.mu.Unlock()
	slog.Debug("graphql: ct0 refreshed", slog.String("user", c.state.UserName()), slog.String("prefix", v[:min(8, len(v))]))
}
