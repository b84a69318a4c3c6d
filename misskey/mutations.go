package misskey

import (
	"context"
	"log/slog"

	timelines "github.com/anatolykoptev/go-timelines"
)

func (c *Client) DeletePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	_, err := c.call(ctx, "notes/delete", map[string]any{"noteId": id.Raw})
	return err
}

// FavoritePost favorites a note. ALREADY_FAVORITED counts as success.
func (c *Client) FavoritePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	_, err := c.call(ctx, "notes/favorites/create", map[string]any{"noteId": id.Raw})
	switch {
	case err == nil:
	case hasCode(err, codeAlreadyFavorited):
		slog.Debug("misskey: already favorited", slog.String("id", id.Raw))
	default:
		return err
	}
	return nil
}

func (c *Client) UnfavoritePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	_, err := c.call(ctx, "notes/favorites/delete", map[string]any{"noteId": id.Raw})
	return err
}

// RetweetPost renotes a note and returns the created renote.
func (c *Client) RetweetPost(ctx context.Context, id timelines.PostID) (*timelines.Post, error) {
	if err := c.check(id); err != nil {
		return nil, err
	}
	const endpoint = "notes/create"
	body, err := c.call(ctx, endpoint, map[string]any{"renoteId": id.Raw})
	if err != nil {
		return nil, err
	}
	var raw createdNote
	if err := decode(endpoint, body, &raw); err != nil {
		return nil, err
	}
	if raw.CreatedNote == nil {
		return nil, nil
	}
	p, err := c.normalizeNote(raw.CreatedNote, false)
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
	_, err := c.call(ctx, "notes/unrenote", map[string]any{"noteId": id.Raw})
	return err
}

// RefreshConfiguration reloads the server metadata and the block, mute and
// renote-mute sets.
func (c *Client) RefreshConfiguration(ctx context.Context) error {
	body, err := c.call(ctx, "meta", map[string]any{"detail": false})
	if err != nil {
		return err
	}
	var m Meta
	if err := decode("meta", body, &m); err != nil {
		return err
	}
	c.mu.Lock()
	c.meta = m
	c.mu.Unlock()

	lists := []struct {
		endpoint string
		id       func(userRecord) string
		set      func([]timelines.PersonID)
	}{
		{"blocking/list", func(r userRecord) string { return r.BlockeeID }, c.state.SetBlockedIDs},
		{"mute/list", func(r userRecord) string { return r.MuteeID }, c.state.SetMutedIDs},
		{"renote-mute/list", func(r userRecord) string { return r.MuteeID }, c.state.SetNoRetweetIDs},
	}
	for _, l := range lists {
		body, err := c.call(ctx, l.endpoint, map[string]any{"limit": maxCount})
		if err != nil {
			return err
		}
		var records []userRecord
		if err := decode(l.endpoint, body, &records); err != nil {
			return err
		}
		ids := make([]timelines.PersonID, 0, len(records))
		for _, r := range records {
			if id := l.id(r); id != "" {
				ids = append(ids, timelines.MisskeyUserID(id))
			}
		}
		l.set(ids)
	}
	return nil
}
