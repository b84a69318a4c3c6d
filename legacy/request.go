package legacy

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

// rateLimitPrefix is the header prefix of per-endpoint quota headers.
const rateLimitPrefix = "x-rate-limit-"

var headerOrder = []string{"authorization", "user-agent", "accept", "content-type"}

func (c *Client) headers(form bool) map[string]string {
	h := map[string]string{"accept": "application/json"}
	if c.cfg.Token != "" {
		h["authorization"] = "Bearer " + c.cfg.Token
	}
	if c.cfg.UserAgent != "" {
		h["user-agent"] = c.cfg.UserAgent
	}
	if form {
		h["content-type"] = "application/x-www-form-urlencoded"
	}
	return h
}

// get calls GET {base}{resource}.json. resource doubles as the rate-limit
// endpoint name, e.g. "/statuses/home_timeline".
func (c *Client) get(ctx context.Context, resource string, params url.Values) ([]byte, error) {
	u := c.cfg.BaseURL + resource + ".json"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, resource, u, nil)
}

// post calls POST {base}{path}.json with a form body. endpoint is the
// resource name without per-id path segments.
func (c *Client) post(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, c.cfg.BaseURL+path+".json", []byte(params.Encode()))
}

// do sends one request and maps the answer onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, endpoint, u string, payload []byte) ([]byte, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}

	resp, err := c.cfg.Transport.Send(ctx, &timelines.Request{
		Endpoint:    endpoint,
		Method:      method,
		URL:         u,
		Headers:     c.headers(payload != nil),
		HeaderOrder: headerOrder,
		Body:        payload,
	})
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, &timelines.APIError{Endpoint: endpoint, Err: err}
	}

	c.state.RateLimits.UpdateFromHeaders(endpoint, resp.Headers, rateLimitPrefix)

	class, code := twitterfmt.ClassifyError(resp.Body)
	apiErr := &timelines.APIError{Endpoint: endpoint, Status: resp.Status, Code: twitterfmt.CodeString(code), Body: resp.Body}

	switch {
	case resp.Status == http.StatusUnauthorized || class.InvalidatesSession():
		c.recordAPICall(endpoint, false, false)
		c.state.MarkUnrecoverable()
		slog.Warn("legacy: credentials rejected, account needs re-authentication",
			slog.String("user", c.state.UserName()),
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.Status),
			slog.Int("code", code))
		return nil, timelines.AuthFailure(apiErr)

	case resp.Status == http.StatusTooManyRequests || class == twitterfmt.ClassBanned:
		c.recordAPICall(endpoint, false, true)
		return nil, apiErr

	case resp.Status == http.StatusNoContent:

	case resp.Status != http.StatusOK:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("legacy: non-200", slog.String("endpoint", endpoint), slog.Int("status", resp.Status), slog.String("body", truncate(resp.Body, 500)))
		return nil, apiErr

	case class != twitterfmt.ClassNone:
		c.recordAPICall(endpoint, false, false)
		return nil, apiErr
	}

	c.recordAPICall(endpoint, true, false)
	return resp.Body, nil
}

// decode unmarshals a response body, reporting failures as ParseError.
func decode(endpoint string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &timelines.ParseError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// statusParams are the query parameters every status-returning call sends.
func statusParams() url.Values {
	return url.Values{
		"tweet_mode":           {"extended"},
		"include_entities":     {"true"},
		"include_ext_alt_text": {"true"},
	}
}

// conversationQuery builds "from:a OR to:a ..." over the participants.
func conversationQuery(screenNames []string) string {
	var terms []string
	for _, n := range screenNames {
		if n == "" {
			continue
		}
		terms = append(terms, "from:"+n, "to:"+n)
	}
	return strings.Join(terms, " OR ")
}
