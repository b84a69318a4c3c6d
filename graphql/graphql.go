package graphql

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Page size caps per operation.
const (
	maxHomeCount   = 40
	maxSearchCount = 20
	maxLikesCount  = 20
	maxListCount   = 20
)

// Cursor is the opaque cursor string of a TimelineTimelineCursor entry.
type Cursor string

// cursorValue unwraps a cursor produced by this backend. A nil cursor means
// the start of the timeline.
func cursorValue(c *timelines.Cursor) (string, error) {
	if c == nil {
		return "", nil
	}
	v, ok := timelines.CursorAs[Cursor](c)
	if !ok {
		return "", fmt.Errorf("graphql: foreign cursor: %w", timelines.ErrNotSupported)
	}
	return string(v), nil
}

func pageCursor(dir timelines.Direction, v string) *timelines.Cursor {
	if v == "" {
		return nil
	}
	return timelines.NewCursor(dir, Cursor(v))
}

// VerifyIdentity loads the account profile by screen name.
func (c *Client) VerifyIdentity(ctx context.Context) error {
	if err := timelines.CheckUsable(c.state); err != nil {
		return err
	}
	handle := c.state.UserName()
	if handle == "" {
		handle = c.cfg.ScreenName
	}
	if handle == "" {
		return fmt.Errorf("graphql: verify identity without a screen name: %w", timelines.ErrIdentityUnknown)
	}

	variables := map[string]any{
		"screen_name":              handle,
		"withSafetyModeUserFields": true,
	}
	body, err := c.query(ctx, "UserByScreenName", variables, nil)
	if err != nil {
		return fmt.Errorf("UserByScreenName: %w", err)
	}
	var raw userByScreenNameResponse
	if err := decode("UserByScreenName", body, &raw); err != nil {
		return err
	}
	u := raw.Data.User.Result
	if u.TypeName == "UserUnavailable" || u.RestID == "" {
		return &timelines.ParseError{Endpoint: "UserByScreenName", Err: fmt.Errorf("user unavailable (typename=%s)", u.TypeName)}
	}
	c.state.SetProfile(timelines.Profile{
		UserID:         timelines.TwitterUserID(u.RestID),
		UserName:       u.screenName(),
		FollowersCount: u.Legacy.FollowersCount,
		FriendsCount:   u.Legacy.FriendsCount,
		StatusesCount:  u.Legacy.StatusesCount,
	})
	return nil
}

// GetPostByID fetches one tweet through TweetDetail. The rest of the
// conversation delivered alongside it goes into the cache.
func (c *Client) GetPostByID(ctx context.Context, id timelines.PostID, firstLoad bool) (*timelines.Post, error) {
	if err := c.check(id); err != nil {
		return nil, err
	}
	variables := map[string]any{
		"focalTweetId":                           id.Raw,
		"with_rux_injections":                    false,
		"includePromotedContent":                 false,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": false,
		"withBirdwatchNotes":                     false,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
	fieldToggles := map[string]any{"withArticleRichContentState": false}
	body, err := c.query(ctx, "TweetDetail", variables, fieldToggles)
	if err != nil {
		return nil, fmt.Errorf("TweetDetail: %w", err)
	}
	tl, err := timelineParsers["TweetDetail"](body)
	if err != nil {
		return nil, err
	}

	posts := normalizeAll(extractTimeline(tl).tweets, c.state, c.settings(), firstLoad)
	var focal *timelines.Post
	for _, p := range posts {
		if p.StatusID == id {
			focal = p
			continue
		}
		c.remember(p)
	}
	if focal == nil {
		return nil, &timelines.APIError{Endpoint: "TweetDetail", Status: http.StatusNotFound, Body: body}
	}
	return focal, nil
}

func (c *Client) GetHomeTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	variables := map[string]any{
		"count":                  timelines.ClampCount(q.Count, maxHomeCount),
		"includePromotedContent": false,
		"latestControlAvailable": true,
		"requestContext":         "launch",
	}
	return c.fetchTimeline(ctx, "HomeLatestTimeline", timelines.TimelineHome, variables, q)
}

// GetMentionsTimeline searches for the latest tweets addressing the account.
func (c *Client) GetMentionsTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	name := c.state.UserName()
	if name == "" {
		name = c.cfg.ScreenName
	}
	return c.fetchTimeline(ctx, "SearchTimeline", timelines.TimelineMentions, searchVariables("@"+name, q), q)
}

// GetFavoritesTimeline needs the user id, so VerifyIdentity must have run.
func (c *Client) GetFavoritesTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	uid := c.state.UserID()
	if uid.IsZero() {
		if err := timelines.CheckUsable(c.state); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("graphql: Likes: %w", timelines.ErrIdentityUnknown)
	}
	variables := map[string]any{
		"userId":                 uid.Raw,
		"count":                  timelines.ClampCount(q.Count, maxLikesCount),
		"includePromotedContent": false,
		"withClientEventToken":   false,
		"withBirdwatchNotes":     false,
		"withVoice":              true,
		"withV2Timeline":         true,
	}
	return c.fetchTimeline(ctx, "Likes", timelines.TimelineFavorites, variables, q)
}

func (c *Client) GetListTimeline(ctx context.Context, listID string, q timelines.PageQuery) (*timelines.Page, error) {
	variables := map[string]any{
		"listId": listID,
		"count":  timelines.ClampCount(q.Count, maxListCount),
	}
	return c.fetchTimeline(ctx, "ListLatestTweetsTimeline", timelines.TimelineList, variables, q)
}

func (c *Client) GetSearchTimeline(ctx context.Context, query string, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchTimeline(ctx, "SearchTimeline", timelines.TimelineSearch, searchVariables(query, q), q)
}

func searchVariables(rawQuery string, q timelines.PageQuery) map[string]any {
	return map[string]any{
		"rawQuery":    rawQuery,
		"count":       timelines.ClampCount(q.Count, maxSearchCount),
		"querySource": "typed_query",
		"product":     "Latest",
	}
}

// fetchTimeline runs a timeline operation and finishes the page.
func (c *Client) fetchTimeline(ctx context.Context, operation string, kind timelines.TimelineKind, variables map[string]any, q timelines.PageQuery) (*timelines.Page, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	cursor, err := cursorValue(q.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	var fieldToggles map[string]any
	if operation == "SearchTimeline" {
		fieldToggles = map[string]any{"withArticleRichContentState": false}
	}

	body, err := c.query(ctx, operation, variables, fieldToggles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	tl, err := timelineParsers[operation](body)
	if err != nil {
		return nil, err
	}
	slice := extractTimeline(tl)
	posts := normalizeAll(slice.tweets, c.state, c.settings(), q.FirstLoad)
	c.remember(posts...)
	return timelines.FinishPage(posts, c.state, c.settings(), kind,
		pageCursor(timelines.Top, slice.top),
		pageCursor(timelines.Bottom, slice.bottom)), nil
}

// GetRelatedPosts assembles the conversation around target.
func (c *Client) GetRelatedPosts(ctx context.Context, target *timelines.Post, firstLoad bool) ([]*timelines.Post, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	return c.resolver.Resolve(ctx, target, firstLoad)
}

// SearchConversation searches the conversation of root restricted to the
// given participants.
func (c *Client) SearchConversation(ctx context.Context, root *timelines.Post, screenNames []string, firstLoad bool) ([]*timelines.Post, error) {
	if err := c.check(root.StatusID); err != nil {
		return nil, err
	}
	body, err := c.query(ctx, "SearchTimeline", searchVariables(conversationQuery(root.StatusID.Raw, screenNames), timelines.PageQuery{}), map[string]any{"withArticleRichContentState": false})
	if err != nil {
		return nil, fmt.Errorf("SearchTimeline: %w", err)
	}
	tl, err := timelineParsers["SearchTimeline"](body)
	if err != nil {
		return nil, err
	}
	return normalizeAll(extractTimeline(tl).tweets, c.state, c.settings(), firstLoad), nil
}

// conversationQuery builds "conversation_id:ID (from:a OR to:a ...)".
func conversationQuery(rootID string, screenNames []string) string {
	var terms []string
	for _, n := range screenNames {
		if n == "" {
			continue
		}
		terms = append(terms, "from:"+n, "to:"+n)
	}
	q := "conversation_id:" + rootID
	if len(terms) > 0 {
		q += " (" + strings.Join(terms, " OR ") + ")"
	}
	return q
}
