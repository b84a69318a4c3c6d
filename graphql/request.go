package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

// rateLimitPrefix is the header prefix of per-endpoint quota headers.
const rateLimitPrefix = "x-rate-limit-"

// doGET executes a GraphQL query.
func (c *Client) doGET(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, rawURL, nil)
}

// doPOST executes a GraphQL mutation.
func (c *Client) doPOST(ctx context.Context, endpoint, rawURL string, payload []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, rawURL, payload)
}

// do sends one request and maps the answer onto the error taxonomy. It never
// retries; that is the transport's business.
func (c *Client) do(ctx context.Context, method, endpoint, rawURL string, payload []byte) ([]byte, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}

	authTok, ct0, ua := c.credentials()
	headers := sessionHeaders(authTok, ct0, ua)
	c.stampTransactionID(headers, method, rawURL)
	resp, err := c.cfg.Transport.Send(ctx, &timelines.Request{
		Endpoint:    endpoint,
		Method:      method,
		URL:         rawURL,
		Headers:     headers,
		HeaderOrder: sessionHeaderOrder,
		Body:        payload,
	})
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, &timelines.APIError{Endpoint: endpoint, Err: err}
	}

	c.state.RateLimits.UpdateFromHeaders(endpoint, resp.Headers, rateLimitPrefix)
	c.refreshCT0(resp.Headers, ct0)

	class, code := twitterfmt.ClassifyError(resp.Body)
	apiErr := &timelines.APIError{Endpoint: endpoint, Status: resp.Status, Code: twitterfmt.CodeString(code), Body: resp.Body}

	switch {
	case resp.Status == http.StatusUnauthorized || class.InvalidatesSession():
		c.recordAPICall(endpoint, false, false)
		c.state.MarkUnrecoverable()
		slog.Warn("graphql: session rejected, account needs re-authentication",
			slog.String("user", c.state.UserName()),
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.Status),
			slog.Int("code", code))
		return nil, timelines.AuthFailure(apiErr)

	case resp.Status == http.StatusTooManyRequests || class == twitterfmt.ClassBanned:
		c.recordAPICall(endpoint, false, true)
		return nil, apiErr

	case resp.Status != http.StatusOK:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("graphql: non-200", slog.String("endpoint", endpoint), slog.Int("status", resp.Status), slog.String("body", truncate(resp.Body, 500)))
		return nil, apiErr
	}

	switch class {
	case twitterfmt.ClassNone:
	case twitterfmt.ClassInternal:
		if !hasResponseData(resp.Body) {
			c.recordAPICall(endpoint, false, false)
			return nil, apiErr
		}
		slog.Debug("error 131 with usable data, treating as success", slog.String("endpoint", endpoint))
	default:
		c.recordAPICall(endpoint, false, false)
		return nil, apiErr
	}

	c.recordAPICall(endpoint, true, false)
	return resp.Body, nil
}

// stampTransactionID adds x-client-transaction-id when a source is
// configured. Generation failures only cost the header.
func (c *Client) stampTransactionID(headers map[string]string, method, rawURL string) {
	if c.cfg.TransactionIDs == nil {
		return
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	id, err := c.cfg.TransactionIDs.GenerateID(method, path)
	if err != nil {
		slog.Debug("graphql: failed to generate transaction id", slog.Any("error", err))
		return
	}
	headers["x-client-transaction-id"] = id
}

// query runs a GraphQL GET for a named operation.
func (c *Client) query(ctx context.Context, operation string, variables map[string]any, fieldToggles map[string]any) ([]byte, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
	return c.doGET(ctx, operation, addGraphQLParams(ep.URL(), variables, ep.Features, fieldToggles))
}

// mutate runs a GraphQL POST for a named operation.
func (c *Client) mutate(ctx context.Context, operation string, variables map[string]any) ([]byte, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
	payload, err := json.Marshal(map[string]any{
		"variables": variables,
		"queryId":   ep.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", operation, err)
	}
	return c.doPOST(ctx, operation, ep.URL(), payload)
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

// addGraphQLParams builds the full URL with variables, features, and optional fieldToggles.
func addGraphQLParams(base string, variables, features map[string]any, fieldToggles map[string]any) string {
	v, _ := json.Marshal(variables)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	result := base + sep + "variables=" + jsonEscape(v)
	if features != nil {
		f, _ := json.Marshal(features)
		result += "&features=" + jsonEscape(f)
	}
	if fieldToggles != nil {
		ft, _ := json.Marshal(fieldToggles)
		result += "&fieldToggles=" + jsonEscape(ft)
	}
	return result
}

var jsonEscaper = strings.NewReplacer(
	"%", "%25",
	" ", "%20",
	`"`, "%22",
	"{", "%7B",
	"}", "%7D",
	"[", "%5B",
	"]", "%5D",
	":", "%3A",
	",", "%2C",
	"'", "%27",
	"|", "%7C",
	"#", "%23",
	"&", "%26",
	"+", "%2B",
	"@", "%40",
	"=", "%3D",
)

// jsonEscape percent-encodes the JSON punctuation the API expects encoded.
func jsonEscape(b []byte) string {
	return jsonEscaper.Replace(string(b))
}
