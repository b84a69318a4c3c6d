package legacy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Page size caps per resource.
const (
	maxTimelineCount = 200
	maxSearchCount   = 100
)

// Cursor is the status id sent as since_id (Top) or max_id (Bottom).
type Cursor string

// applyCursor sets since_id or max_id from a cursor of this backend.
func applyCursor(params url.Values, c *timelines.Cursor) error {
	if c == nil {
		return nil
	}
	v, ok := timelines.CursorAs[Cursor](c)
	if !ok {
		return fmt.Errorf("legacy: foreign cursor: %w", timelines.ErrNotSupported)
	}
	if c.Direction == timelines.Top {
		params.Set("since_id", string(v))
	} else {
		params.Set("max_id", string(v))
	}
	return nil
}

// pageCursors derives the cursors from the raw statuses: Top continues
// after the newest id, Bottom before the oldest one.
func pageCursors(statuses []*status) (top, bottom *timelines.Cursor) {
	var newest, oldest timelines.PostID
	for _, s := range statuses {
		if s == nil || s.IDStr == "" {
			continue
		}
		id := timelines.TwitterStatusID(s.IDStr)
		if newest.IsZero() || newest.Less(id) {
			newest = id
		}
		if oldest.IsZero() || id.Less(oldest) {
			oldest = id
		}
	}
	if newest.IsZero() {
		return nil, nil
	}
	top = timelines.NewCursor(timelines.Top, Cursor(newest.Raw))
	if before := decrementID(oldest.Raw); before != "" {
		bottom = timelines.NewCursor(timelines.Bottom, Cursor(before))
	}
	return top, bottom
}

// decrementID subtracts one from a decimal id without parsing it into a
// fixed-width integer. It returns "" for zero or non-numeric input.
func decrementID(id string) string {
	b := []byte(id)
	if len(b) == 0 {
		return ""
	}
	for _, ch := range b {
		if ch < '0' || ch > '9' {
			return ""
		}
	}
	i := len(b) - 1
	for i >= 0 && b[i] == '0' {
		b[i] = '9'
		i--
	}
	if i < 0 {
		return ""
	}
	b[i]--
	for len(b) > 1 && b[0] == '0' {
		b = b[1:]
	}
	return string(b)
}

// VerifyIdentity loads the account profile from account/verify_credentials.
func (c *Client) VerifyIdentity(ctx context.Context) error {
	const endpoint = "/account/verify_credentials"
	body, err := c.get(ctx, endpoint, url.Values{"include_entities": {"false"}, "skip_status": {"true"}})
	if err != nil {
		return err
	}
	var u user
	if err := decode(endpoint, body, &u); err != nil {
		return err
	}
	if u.IDStr == "" {
		return &timelines.ParseError{Endpoint: endpoint, Err: errors.New("user without id_str")}
	}
	c.state.SetProfile(timelines.Profile{
		UserID:         timelines.TwitterUserID(u.IDStr),
		UserName:       u.ScreenName,
		FollowersCount: u.FollowersCount,
		FriendsCount:   u.FriendsCount,
		StatusesCount:  u.StatusesCount,
	})
	return nil
}

func (c *Client) GetPostByID(ctx context.Context, id timelines.PostID, firstLoad bool) (*timelines.Post, error) {
	if err := c.check(id); err != nil {
		return nil, err
	}
	const endpoint = "/statuses/show"
	params := statusParams()
	params.Set("id", id.Raw)
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var s status
	if err := decode(endpoint, body, &s); err != nil {
		return nil, err
	}
	p, err := normalizeStatus(&s, c.state, c.settings(), firstLoad)
	if err != nil {
		return nil, &timelines.ParseError{Endpoint: endpoint, Err: err}
	}
	return p, nil
}

func (c *Client) GetHomeTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchTimeline(ctx, "/statuses/home_timeline", timelines.TimelineHome, url.Values{}, q)
}

func (c *Client) GetMentionsTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchTimeline(ctx, "/statuses/mentions_timeline", timelines.TimelineMentions, url.Values{}, q)
}

func (c *Client) GetFavoritesTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchTimeline(ctx, "/favorites/list", timelines.TimelineFavorites, url.Values{}, q)
}

func (c *Client) GetListTimeline(ctx context.Context, listID string, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchTimeline(ctx, "/lists/statuses", timelines.TimelineList, url.Values{
		"list_id":          {listID},
		"include_rts":      {"true"},
		"include_entities": {"true"},
	}, q)
}

func (c *Client) GetSearchTimeline(ctx context.Context, query string, q timelines.PageQuery) (*timelines.Page, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	params := url.Values{"q": {query}, "result_type": {"recent"}}
	if err := applyCursor(params, q.Cursor); err != nil {
		return nil, err
	}
	statuses, err := c.search(ctx, params, q.Count)
	if err != nil {
		return nil, err
	}
	return c.finish(statuses, timelines.TimelineSearch, q.FirstLoad), nil
}

func (c *Client) search(ctx context.Context, params url.Values, count int) ([]*status, error) {
	const endpoint = "/search/tweets"
	for k, v := range statusParams() {
		params[k] = v
	}
	params.Set("count", strconv.Itoa(timelines.ClampCount(count, maxSearchCount)))
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var raw searchResponse
	if err := decode(endpoint, body, &raw); err != nil {
		return nil, err
	}
	return raw.Statuses, nil
}

// fetchTimeline runs one of the array-returning timeline resources.
func (c *Client) fetchTimeline(ctx context.Context, endpoint string, kind timelines.TimelineKind, params url.Values, q timelines.PageQuery) (*timelines.Page, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	if err := applyCursor(params, q.Cursor); err != nil {
		return nil, err
	}
	for k, v := range statusParams() {
		params[k] = v
	}
	params.Set("count", strconv.Itoa(timelines.ClampCount(q.Count, maxTimelineCount)))

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var statuses []*status
	if err := decode(endpoint, body, &statuses); err != nil {
		return nil, err
	}
	return c.finish(statuses, kind, q.FirstLoad), nil
}

func (c *Client) finish(statuses []*status, kind timelines.TimelineKind, firstLoad bool) *timelines.Page {
	top, bottom := pageCursors(statuses)
	posts := normalizeAll(statuses, c.state, c.settings(), firstLoad)
	c.remember(posts...)
	return timelines.FinishPage(posts, c.state, c.settings(), kind, top, bottom)
}

// GetRelatedPosts assembles the conversation around target.
func (c *Client) GetRelatedPosts(ctx context.Context, target *timelines.Post, firstLoad bool) ([]*timelines.Post, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	return c.resolver.Resolve(ctx, target, firstLoad)
}

// SearchConversation searches the participants' tweets newer than root.
// v1.1 search has no conversation operator; the resolver keeps only the
// results that connect back to the chain.
func (c *Client) SearchConversation(ctx context.Context, root *timelines.Post, screenNames []string, firstLoad bool) ([]*timelines.Post, error) {
	if err := c.check(root.StatusID); err != nil {
		return nil, err
	}
	q := conversationQuery(screenNames)
	if q == "" {
		return nil, nil
	}
	statuses, err := c.search(ctx, url.Values{
		"q":           {q},
		"result_type": {"recent"},
		"since_id":    {root.StatusID.Raw},
	}, maxSearchCount)
	if err != nil {
		return nil, err
	}
	return normalizeAll(statuses, c.state, c.settings(), firstLoad), nil
}
