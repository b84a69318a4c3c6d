package legacy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/cache"
)

type handler func(req *timelines.Request) *timelines.Response

// fakeTransport routes requests to handlers keyed by endpoint.
type fakeTransport struct {
	mu       sync.Mutex
	routes   map[string]handler
	requests []*timelines.Request
}

func (f *fakeTransport) Send(_ context.Context, req *timelines.Request) (*timelines.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	h, ok := f.routes[req.Endpoint]
	if !ok {
		return nil, fmt.Errorf("no route for %s", req.Endpoint)
	}
	return h(req), nil
}

func (f *fakeTransport) last() *timelines.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func reply(status int, body string) handler {
	return func(*timelines.Request) *timelines.Response {
		return &timelines.Response{Status: status, Headers: map[string]string{}, Body: []byte(body)}
	}
}

func ok(body string) handler { return reply(http.StatusOK, body) }

func query(t *testing.T, req *timelines.Request) url.Values {
	t.Helper()
	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	return u.Query()
}

type metricCall struct {
	endpoint             string
	success, rateLimited bool
}

func newTestClient(t *testing.T, settings timelines.Settings, routes map[string]handler) (*Client, *fakeTransport, *[]metricCall) {
	t.Helper()
	ft := &fakeTransport{routes: routes}
	var calls []metricCall
	c, err := New(Config{
		Transport: ft,
		Settings:  timelines.StaticSettings(settings),
		Cache:     cache.NewMemory(),
		Token:     "bearer-token",
		MetricsHook: func(endpoint string, success, rateLimited bool) {
			calls = append(calls, metricCall{endpoint, success, rateLimited})
		},
	})
	require.NoError(t, err)
	c.state.SetProfile(timelines.Profile{UserID: timelines.TwitterUserID("1"), UserName: "me"})
	return c, ft, &calls
}

func statusJSON(id, userID, screenName, text, createdAt string, extra string) string {
	return fmt.Sprintf(`{"id_str":%q,"full_text":%q,"created_at":%q,"user":{"id_str":%q,"screen_name":%q,"name":%q}%s}`,
		id, text, createdAt, userID, screenName, strings.ToUpper(screenName), extra)
}

const (
	jan1 = "Mon Jan 01 10:00:00 +0000 2024"
	jan2 = "Tue Jan 02 15:04:05 +0000 2024"
	jan3 = "Wed Jan 03 08:00:00 +0000 2024"
)

func homeFixture() string {
	orig := statusJSON("150", "2", "bob", "original", jan1, "")
	rt := statusJSON("300", "3", "carol", "RT @bob: original", jan3, `,"retweeted_status":`+orig)
	plain := statusJSON("200", "2", "bob", "hello", jan2, "")
	return "[" + rt + "," + plain + "]"
}

func TestNewRequiresTransport(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestHomeTimeline(t *testing.T) {
	c, ft, calls := newTestClient(t, timelines.DefaultSettings.TimelineSettings(), map[string]handler{
		"/statuses/home_timeline": func(*timelines.Request) *timelines.Response {
			return &timelines.Response{Status: 200, Body: []byte(homeFixture()), Headers: map[string]string{
				"x-rate-limit-limit":     "15",
				"x-rate-limit-remaining": "14",
				"x-rate-limit-reset":     "1700000000",
			}}
		},
	})
	page, err := c.GetHomeTimeline(t.Context(), timelines.PageQuery{Count: 500})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)

	rt := page.Posts[0]
	assert.Equal(t, timelines.TwitterStatusID("150"), rt.RetweetedID)
	assert.Equal(t, "carol", rt.RetweetedBy)
	assert.Equal(t, "original", rt.TextFromAPI)

	top, ok := timelines.CursorAs[Cursor](page.Top)
	require.True(t, ok)
	assert.Equal(t, Cursor("300"), top)
	bottom, ok := timelines.CursorAs[Cursor](page.Bottom)
	require.True(t, ok)
	assert.Equal(t, Cursor("199"), bottom)

	req := ft.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "Bearer bearer-token", req.Headers["authorization"])
	assert.True(t, strings.HasPrefix(req.URL, DefaultBaseURL+"/statuses/home_timeline.json?"))
	assert.Equal(t, "200", query(t, req).Get("count"))
	assert.Equal(t, "extended", query(t, req).Get("tweet_mode"))

	l, ok := c.state.RateLimits.Get("/statuses/home_timeline")
	require.True(t, ok)
	assert.Equal(t, 14, l.Remaining)
	assert.Equal(t, []metricCall{{"/statuses/home_timeline", true, false}}, *calls)
}

func TestHomeTimelineExcludesRetweetsBySetting(t *testing.T) {
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/home_timeline": ok(homeFixture()),
	})
	page, err := c.GetHomeTimeline(t.Context(), timelines.PageQuery{})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "200", page.Posts[0].StatusID.Raw)
	assert.NotNil(t, page.Top, "cursors follow the raw page, not the filtered one")
}

func TestEmptyTimelineHasNoCursors(t *testing.T) {
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/mentions_timeline": ok(`[]`),
	})
	page, err := c.GetMentionsTimeline(t.Context(), timelines.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Nil(t, page.Top)
	assert.Nil(t, page.Bottom)
}

func TestCursorsMapToSinceAndMaxID(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/favorites/list": ok(`[]`),
	})
	_, err := c.GetFavoritesTimeline(t.Context(), timelines.PageQuery{Cursor: timelines.NewCursor(timelines.Top, Cursor("500"))})
	require.NoError(t, err)
	assert.Equal(t, "500", query(t, ft.last()).Get("since_id"))
	assert.Empty(t, query(t, ft.last()).Get("max_id"))

	_, err = c.GetFavoritesTimeline(t.Context(), timelines.PageQuery{Cursor: timelines.NewCursor(timelines.Bottom, Cursor("499"))})
	require.NoError(t, err)
	assert.Equal(t, "499", query(t, ft.last()).Get("max_id"))

	_, err = c.GetFavoritesTimeline(t.Context(), timelines.PageQuery{Cursor: timelines.NewCursor(timelines.Bottom, "499")})
	require.ErrorIs(t, err, timelines.ErrNotSupported)
	assert.Len(t, ft.requests, 2)
}

func TestSearchTimeline(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/search/tweets": ok(`{"statuses":[` + statusJSON("10", "2", "bob", "go go", jan1, "") + `],"search_metadata":{"count":15}}`),
	})
	page, err := c.GetSearchTimeline(t.Context(), "golang", timelines.PageQuery{Count: 1000})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	q := query(t, ft.last())
	assert.Equal(t, "golang", q.Get("q"))
	assert.Equal(t, "100", q.Get("count"))
	assert.Equal(t, "recent", q.Get("result_type"))
}

func TestListTimeline(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/lists/statuses": ok(`[]`),
	})
	_, err := c.GetListTimeline(t.Context(), "77", timelines.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, "77", query(t, ft.last()).Get("list_id"))
}

func TestMalformedTimelineIsParseError(t *testing.T) {
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/home_timeline": ok(`{"not":"an array"}`),
	})
	_, err := c.GetHomeTimeline(t.Context(), timelines.PageQuery{})
	var perr *timelines.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "/statuses/home_timeline", perr.Endpoint)
}

func TestUnauthorizedIsStickyAuthError(t *testing.T) {
	c, ft, calls := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/home_timeline": reply(http.StatusUnauthorized, `{"errors":[{"code":89,"message":"Invalid or expired token."}]}`),
	})
	_, err := c.GetHomeTimeline(t.Context(), timelines.PageQuery{})
	require.ErrorIs(t, err, timelines.ErrAuth)
	var apiErr *timelines.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "89", apiErr.Code)
	assert.True(t, c.state.HasUnrecoverableError())

	_, err = c.GetHomeTimeline(t.Context(), timelines.PageQuery{})
	require.ErrorIs(t, err, timelines.ErrAuth)
	require.ErrorIs(t, c.FavoritePost(t.Context(), timelines.TwitterStatusID("1")), timelines.ErrAuth)
	assert.Len(t, ft.requests, 1)
	assert.Len(t, *calls, 1)
}

func TestLockedAccountIsAuthError(t *testing.T) {
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/account/verify_credentials": reply(http.StatusForbidden, `{"errors":[{"code":326}]}`),
	})
	require.ErrorIs(t, c.VerifyIdentity(t.Context()), timelines.ErrAuth)
	assert.True(t, c.state.HasUnrecoverableError())
}

func TestRateLimitedResponse(t *testing.T) {
	c, _, calls := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/search/tweets": reply(http.StatusTooManyRequests, `{"errors":[{"code":88}]}`),
	})
	_, err := c.GetSearchTimeline(t.Context(), "x", timelines.PageQuery{})
	var apiErr *timelines.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.RateLimited())
	assert.False(t, errors.Is(err, timelines.ErrAuth))
	assert.False(t, c.state.HasUnrecoverableError())
	assert.Equal(t, []metricCall{{"/search/tweets", false, true}}, *calls)
}

func TestNotFoundKeepsStatusAndBody(t *testing.T) {
	body := `{"errors":[{"code":144,"message":"No status found with that ID."}]}`
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/show": reply(http.StatusNotFound, body),
	})
	_, err := c.GetPostByID(t.Context(), timelines.TwitterStatusID("5"), false)
	var apiErr *timelines.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, body, string(apiErr.Body))
}

func TestWrongIDKinds(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, nil)
	note := timelines.MisskeyNoteID("9abc")
	dm := timelines.TwitterDirectMessageID("5")

	_, err := c.GetPostByID(t.Context(), note, false)
	require.ErrorIs(t, err, timelines.ErrNotSupported)
	require.ErrorIs(t, c.DeletePost(t.Context(), note), timelines.ErrNotSupported)
	require.ErrorIs(t, c.FavoritePost(t.Context(), dm), timelines.ErrNotSupported)
	_, err = c.RetweetPost(t.Context(), dm)
	require.ErrorIs(t, err, timelines.ErrNotSupported)
	assert.Empty(t, ft.requests)
	assert.True(t, c.CanHandle(dm))
}

func TestDeleteDirectMessage(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/direct_messages/events/destroy": reply(http.StatusNoContent, ""),
	})
	require.NoError(t, c.DeletePost(t.Context(), timelines.TwitterDirectMessageID("555")))
	req := ft.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "555", query(t, req).Get("id"))
}

func TestDeleteStatus(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/destroy": ok(statusJSON("10", "1", "me", "bye", jan1, "")),
	})
	require.NoError(t, c.DeletePost(t.Context(), timelines.TwitterStatusID("10")))
	req := ft.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, DefaultBaseURL+"/statuses/destroy/10.json", req.URL)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Headers["content-type"])
}

func TestFavoriteAlreadyFavorited(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/favorites/create": reply(http.StatusForbidden, `{"errors":[{"code":139,"message":"You have already favorited this status."}]}`),
	})
	require.NoError(t, c.FavoritePost(t.Context(), timelines.TwitterStatusID("10")))
	assert.Equal(t, "id=10", string(ft.last().Body))
}

func TestFavoriteFailurePropagates(t *testing.T) {
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/favorites/create": reply(http.StatusForbidden, `{"errors":[{"code":161}]}`),
	})
	var apiErr *timelines.APIError
	require.ErrorAs(t, c.FavoritePost(t.Context(), timelines.TwitterStatusID("10")), &apiErr)
	assert.Equal(t, "161", apiErr.Code)
}

func TestRetweetReturnsPost(t *testing.T) {
	orig := statusJSON("10", "2", "bob", "nice", jan1, "")
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/retweet": ok(statusJSON("11", "1", "me", "RT @bob: nice", jan2, `,"retweeted_status":`+orig)),
	})
	p, err := c.RetweetPost(t.Context(), timelines.TwitterStatusID("10"))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, timelines.TwitterStatusID("11"), p.StatusID)
	assert.Equal(t, timelines.TwitterStatusID("10"), p.RetweetedID)
	assert.Equal(t, "me", p.RetweetedBy)
	assert.Equal(t, DefaultBaseURL+"/statuses/retweet/10.json", ft.last().URL)
}

func TestUnfavoriteAndUnretweet(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/favorites/destroy":  ok(`{}`),
		"/statuses/unretweet": ok(`{}`),
	})
	require.NoError(t, c.UnfavoritePost(t.Context(), timelines.TwitterStatusID("10")))
	require.NoError(t, c.UnretweetPost(t.Context(), timelines.TwitterStatusID("10")))
	assert.Equal(t, DefaultBaseURL+"/statuses/unretweet/10.json", ft.last().URL)
}

func TestVerifyIdentity(t *testing.T) {
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/account/verify_credentials": ok(`{"id_str":"42","screen_name":"alice","followers_count":3,"friends_count":4,"statuses_count":5}`),
	})
	require.NoError(t, c.VerifyIdentity(t.Context()))
	prof := c.state.Profile()
	assert.Equal(t, timelines.TwitterUserID("42"), prof.UserID)
	assert.Equal(t, "alice", prof.UserName)
	assert.Equal(t, 3, prof.FollowersCount)
	assert.Equal(t, 5, prof.StatusesCount)
}

func TestRefreshConfiguration(t *testing.T) {
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/help/configuration":          ok(`{"short_url_length":23,"short_url_length_https":23,"dm_text_character_limit":10000}`),
		"/followers/ids":               ok(`{"ids":["6"],"next_cursor_str":"0"}`),
		"/blocks/ids":                  ok(`{"ids":["7"],"next_cursor_str":"0"}`),
		"/mutes/users/ids":             ok(`{"ids":["8"]}`),
		"/friendships/no_retweets/ids": ok(`["9"]`),
	})
	require.NoError(t, c.RefreshConfiguration(t.Context()))
	assert.Equal(t, 23, c.Configuration().ShortURLLength)
	assert.Equal(t, 10000, c.Configuration().DMTextLimit)
	assert.True(t, c.state.IsFollower(timelines.TwitterUserID("6")))
	assert.True(t, c.state.IsBlocked(timelines.TwitterUserID("7")))
	assert.True(t, c.state.IsMuted(timelines.TwitterUserID("8")))
	assert.True(t, c.state.IsNoRetweet(timelines.TwitterUserID("9")))
}

func TestGetRelatedPostsWalksChain(t *testing.T) {
	statuses := map[string]string{
		"100": statusJSON("100", "2", "bob", "root", jan1, ""),
		"101": statusJSON("101", "3", "carol", "@bob middle", jan2, `,"in_reply_to_status_id_str":"100","in_reply_to_screen_name":"bob"`),
	}
	c, _, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/statuses/show": func(req *timelines.Request) *timelines.Response {
			u, _ := url.Parse(req.URL)
			body, found := statuses[u.Query().Get("id")]
			if !found {
				return &timelines.Response{Status: 404, Body: []byte(`{"errors":[{"code":144}]}`)}
			}
			return &timelines.Response{Status: 200, Body: []byte(body)}
		},
		"/search/tweets": ok(`{"statuses":[` +
			statusJSON("103", "2", "bob", "@carol reply", jan3, `,"in_reply_to_status_id_str":"102"`) + `,` +
			statusJSON("104", "4", "dave", "@carol island", jan3, `,"in_reply_to_status_id_str":"90"`) + `]}`),
	})
	target := &timelines.Post{
		StatusID:          timelines.TwitterStatusID("102"),
		ScreenName:        "dave",
		TextFromAPI:       "@carol leaf",
		InReplyToStatusID: timelines.TwitterStatusID("101"),
		InReplyToUser:     "carol",
	}
	posts, err := c.GetRelatedPosts(t.Context(), target, false)
	require.NoError(t, err)
	var ids []string
	for _, p := range posts {
		ids = append(ids, p.StatusID.Raw)
	}
	assert.Equal(t, []string{"100", "101", "102", "103"}, ids)
}

func TestSearchConversationQuery(t *testing.T) {
	c, ft, _ := newTestClient(t, timelines.Settings{}, map[string]handler{
		"/search/tweets": ok(`{"statuses":[]}`),
	})
	root := &timelines.Post{StatusID: timelines.TwitterStatusID("100")}
	_, err := c.SearchConversation(t.Context(), root, []string{"alice", "bob"}, false)
	require.NoError(t, err)
	q := query(t, ft.last())
	assert.Equal(t, "from:alice OR to:alice OR from:bob OR to:bob", q.Get("q"))
	assert.Equal(t, "100", q.Get("since_id"))
}

func TestTransportTimeoutIsAPIError(t *testing.T) {
	c, _, calls := newTestClient(t, timelines.Settings{}, nil)
	c.cfg.Transport = timelines.TransportFunc(func(context.Context, *timelines.Request) (*timelines.Response, error) {
		return nil, context.DeadlineExceeded
	})
	_, err := c.GetHomeTimeline(t.Context(), timelines.PageQuery{})
	var apiErr *timelines.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "/statuses/home_timeline", apiErr.Endpoint)
	assert.Zero(t, apiErr.Status)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.state.HasUnrecoverableError())
	assert.Equal(t, []metricCall{{"/statuses/home_timeline", false, false}}, *calls)
}
