package legacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

// DeletePost destroys a status, or a direct message event for DM ids.
func (c *Client) DeletePost(ctx context.Context, id timelines.PostID) error {
	if err := timelines.CheckUsable(c.state); err != nil {
		return err
	}
	if !c.CanHandle(id) {
		return fmt.Errorf("legacy %s: %w", id, timelines.ErrNotSupported)
	}
	if id.Kind == timelines.KindDirectMessage {
		const endpoint = "/direct_messages/events/destroy"
		u := c.cfg.BaseURL + endpoint + ".json?" + url.Values{"id": {id.Raw}}.Encode()
		_, err := c.do(ctx, http.MethodDelete, endpoint, u, nil)
		return err
	}
	_, err := c.post(ctx, "/statuses/destroy", "/statuses/destroy/"+id.Raw, url.Values{"trim_user": {"true"}})
	return err
}

// FavoritePost likes a tweet. Code 139 (already favorited) counts as success.
func (c *Client) FavoritePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	_, err := c.post(ctx, "/favorites/create", "/favorites/create", url.Values{"id": {id.Raw}})
	var apiErr *timelines.APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr) && apiErr.Code == twitterfmt.Code139:
		slog.Debug("legacy: already favorited", slog.String("id", id.Raw))
	default:
		return err
	}
	return nil
}

func (c *Client) UnfavoritePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	_, err := c.post(ctx, "/favorites/destroy", "/favorites/destroy", url.Values{"id": {id.Raw}})
	return err
}

// RetweetPost reshares a tweet. The response is the new retweet with the
// original embedded, so a full Post is returned.
func (c *Client) RetweetPost(ctx context.Context, id timelines.PostID) (*timelines.Post, error) {
	if err := c.check(id); err != nil {
		return nil, err
	}
	const endpoint = "/statuses/retweet"
	body, err := c.post(ctx, endpoint, endpoint+"/"+id.Raw, statusParams())
	if err != nil {
		return nil, err
	}
	var s status
	if err := decode(endpoint, body, &s); err != nil {
		return nil, err
	}
	p, err := normalizeStatus(&s, c.state, c.settings(), false)
	if err != nil {
		return nil, &timelines.ParseError{Endpoint: endpoint, Err: err}
	}
	c.remember(p)
	return p, nil
}

func (c *Client) UnretweetPost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	_, err := c.post(ctx, "/statuses/unretweet", "/statuses/unretweet/"+id.Raw, url.Values{"trim_user": {"true"}})
	return err
}

// RefreshConfiguration reloads the server limits and the follower, block,
// mute and no-retweet sets. Only the first page of follower ids is read.
func (c *Client) RefreshConfiguration(ctx context.Context) error {
	const endpoint = "/help/configuration"
	body, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	var conf Configuration
	if err := decode(endpoint, body, &conf); err != nil {
		return err
	}
	c.mu.Lock()
	c.limits = conf
	c.mu.Unlock()

	lists := []struct {
		endpoint string
		set      func([]timelines.PersonID)
	}{
		{"/followers/ids", c.state.SetFollowerIDs},
		{"/blocks/ids", c.state.SetBlockedIDs},
		{"/mutes/users/ids", c.state.SetMutedIDs},
		{"/friendships/no_retweets/ids", c.state.SetNoRetweetIDs},
	}
	for _, l := range lists {
		body, err := c.get(ctx, l.endpoint, url.Values{"stringify_ids": {"true"}})
		if err != nil {
			return err
		}
		ids, err := twitterfmt.ParseIDList(body)
		if err != nil {
			return &timelines.ParseError{Endpoint: l.endpoint, Err: err}
		}
		l.set(ids)
	}
	return nil
}
