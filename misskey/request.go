package misskey

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	timelines "github.com/anatolykoptev/go-timelines"
)

var headerOrder = []string{"user-agent", "accept", "content-type"}

func (c *Client) headers() map[string]string {
	h := map[string]string{
		"accept":       "application/json",
		"content-type": "application/json",
	}
	if c.cfg.UserAgent != "" {
		h["user-agent"] = c.cfg.UserAgent
	}
	return h
}

// call POSTs params plus the token to /api/{endpoint}. A nil params map
// sends only the token.
func (c *Client) call(ctx context.Context, endpoint string, params map[string]any) ([]byte, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}

	body := make(map[string]any, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["i"] = c.cfg.Token
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", endpoint, err)
	}

	resp, err := c.cfg.Transport.Send(ctx, &timelines.Request{
		Endpoint:    endpoint,
		Method:      http.MethodPost,
		URL:         "https://" + c.cfg.Host + "/api/" + endpoint,
		Headers:     c.headers(),
		HeaderOrder: headerOrder,
		Body:        payload,
	})
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, &timelines.APIError{Endpoint: endpoint, Err: err}
	}

	if resp.Status == http.StatusOK || resp.Status == http.StatusNoContent {
		c.recordAPICall(endpoint, true, false)
		return resp.Body, nil
	}

	code := errorCode(resp.Body)
	apiErr := &timelines.APIError{Endpoint: endpoint, Status: resp.Status, Code: code, Body: resp.Body}
	switch {
	case resp.Status == http.StatusUnauthorized || invalidatesSession(code):
		c.recordAPICall(endpoint, false, false)
		c.state.MarkUnrecoverable()
		slog.Warn("misskey: token rejected, account needs re-authentication",
			slog.String("host", c.cfg.Host),
			slog.String("user", c.state.UserName()),
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.Status),
			slog.String("code", code))
		return nil, timelines.AuthFailure(apiErr)

	case resp.Status == http.StatusTooManyRequests || code == codeRateLimitExceeded:
		c.recordAPICall(endpoint, false, true)
		return nil, apiErr
	}

	c.recordAPICall(endpoint, false, false)
	if code != codeAlreadyFavorited {
		slog.Warn("misskey: non-200", slog.String("endpoint", endpoint), slog.Int("status", resp.Status), slog.String("code", code))
	}
	return nil, apiErr
}

// decode unmarshals a response body, reporting failures as ParseError.
func decode(endpoint string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &timelines.ParseError{Endpoint: endpoint, Err: err}
	}
	return nil
}
