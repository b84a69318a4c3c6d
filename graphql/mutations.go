package graphql

import (
	"context"
	"fmt"
	"log/slog"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

func (c *Client) DeletePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	if _, err := c.mutate(ctx, "DeleteTweet", map[string]any{"tweet_id": id.Raw, "dark_request": false}); err != nil {
		return fmt.Errorf("DeleteTweet: %w", err)
	}
	return nil
}

// FavoritePost likes a tweet. Code 139 (already favorited) counts as success.
func (c *Client) FavoritePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	_, err := c.mutate(ctx, "FavoriteTweet", map[string]any{"tweet_id": id.Raw})
	switch {
	case err == nil:
	case isAlreadyFavorited(err):
		slog.Debug("graphql: already favorited", slog.String("id", id.Raw))
	default:
		return fmt.Errorf("FavoriteTweet: %w", err)
	}
	return nil
}

func (c *Client) UnfavoritePost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	if _, err := c.mutate(ctx, "UnfavoriteTweet", map[string]any{"tweet_id": id.Raw}); err != nil {
		return fmt.Errorf("UnfavoriteTweet: %w", err)
	}
	return nil
}

// RetweetPost reshares a tweet. CreateRetweet answers with little more than
// the new id, so no Post is returned.
func (c *Client) RetweetPost(ctx context.Context, id timelines.PostID) (*timelines.Post, error) {
	if err := c.check(id); err != nil {
		return nil, err
	}
	body, err := c.mutate(ctx, "CreateRetweet", map[string]any{"tweet_id": id.Raw, "dark_request": false})
	if err != nil {
		return nil, fmt.Errorf("CreateRetweet: %w", err)
	}
	var raw createRetweetResponse
	if err := decode("CreateRetweet", body, &raw); err != nil {
		return nil, err
	}
	slog.Debug("graphql: retweet created",
		slog.String("source", id.Raw),
		slog.String("retweet", raw.Data.CreateRetweet.RetweetResults.Result.RestID))
	return nil, nil
}

func (c *Client) UnretweetPost(ctx context.Context, id timelines.PostID) error {
	if err := c.check(id); err != nil {
		return err
	}
	if _, err := c.mutate(ctx, "DeleteRetweet", map[string]any{"source_tweet_id": id.Raw, "dark_request": false}); err != nil {
		return fmt.Errorf("DeleteRetweet: %w", err)
	}
	return nil
}

// RefreshConfiguration reloads the follower, block, mute and no-retweet sets through
// the v1.1 id endpoints the web app still uses.
func (c *Client) RefreshConfiguration(ctx context.Context) error {
	if err := timelines.CheckUsable(c.state); err != nil {
		return err
	}
	lists := []struct {
		endpoint string
		set      func([]timelines.PersonID)
	}{
		{"followers/ids", c.state.SetFollowerIDs},
		{"blocks/ids", c.state.SetBlockedIDs},
		{"mutes/users/ids", c.state.SetMutedIDs},
		{"friendships/no_retweets/ids", c.state.SetNoRetweetIDs},
	}
	for _, l := range lists {
		body, err := c.doGET(ctx, l.endpoint, restBase+"/"+l.endpoint+".json?stringify_ids=true")
		if err != nil {
			return fmt.Errorf("%s: %w", l.endpoint, err)
		}
		ids, err := twitterfmt.ParseIDList(body)
		if err != nil {
			return &timelines.ParseError{Endpoint: l.endpoint, Err: err}
		}
		l.set(ids)
	}
	return nil
}
