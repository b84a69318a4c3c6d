package misskey

import (
	"context"
	"errors"
	"fmt"

	timelines "github.com/anatolykoptev/go-timelines"
)

// maxCount is the server-side limit cap of every list endpoint.
const maxCount = 100

// Cursor is a note id (a favorite record id for i/favorites) sent as
// sinceId (Top) or untilId (Bottom).
type Cursor string

func applyCursor(params map[string]any, c *timelines.Cursor) error {
	if c == nil {
		return nil
	}
	v, ok := timelines.CursorAs[Cursor](c)
	if !ok {
		return fmt.Errorf("misskey: foreign cursor: %w", timelines.ErrNotSupported)
	}
	if c.Direction == timelines.Top {
		params["sinceId"] = string(v)
	} else {
		params["untilId"] = string(v)
	}
	return nil
}

// pageCursors picks the newest id for Top and the oldest for Bottom. Both
// sinceId and untilId are exclusive.
func pageCursors(ids []string) (top, bottom *timelines.Cursor) {
	var newest, oldest timelines.PostID
	for _, raw := range ids {
		if raw == "" {
			continue
		}
		id := timelines.MisskeyNoteID(raw)
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
	return timelines.NewCursor(timelines.Top, Cursor(newest.Raw)),
		timelines.NewCursor(timelines.Bottom, Cursor(oldest.Raw))
}

func noteIDs(notes []*note) []string {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		if n != nil {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// VerifyIdentity loads the account profile from the "i" endpoint.
func (c *Client) VerifyIdentity(ctx context.Context) error {
	body, err := c.call(ctx, "i", nil)
	if err != nil {
		return err
	}
	var u me
	if err := decode("i", body, &u); err != nil {
		return err
	}
	if u.ID == "" {
		return &timelines.ParseError{Endpoint: "i", Err: errors.New("user without id")}
	}
	c.state.SetProfile(timelines.Profile{
		UserID:         timelines.MisskeyUserID(u.ID),
		UserName:       u.Username,
		FollowersCount: u.FollowersCount,
		FriendsCount:   u.FollowingCount,
		StatusesCount:  u.NotesCount,
	})
	return nil
}

func (c *Client) GetPostByID(ctx context.Context, id timelines.PostID, firstLoad bool) (*timelines.Post, error) {
	if err := c.check(id); err != nil {
		return nil, err
	}
	body, err := c.call(ctx, "notes/show", map[string]any{"noteId": id.Raw})
	if err != nil {
		return nil, err
	}
	var n note
	if err := decode("notes/show", body, &n); err != nil {
		return nil, err
	}
	p, err := c.normalizeNote(&n, firstLoad)
	if err != nil {
		return nil, &timelines.ParseError{Endpoint: "notes/show", Err: err}
	}
	return p, nil
}

func (c *Client) GetHomeTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchNotes(ctx, "notes/timeline", timelines.TimelineHome, map[string]any{}, q)
}

func (c *Client) GetMentionsTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchNotes(ctx, "notes/mentions", timelines.TimelineMentions, map[string]any{}, q)
}

func (c *Client) GetListTimeline(ctx context.Context, listID string, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchNotes(ctx, "notes/user-list-timeline", timelines.TimelineList, map[string]any{"listId": listID}, q)
}

func (c *Client) GetSearchTimeline(ctx context.Context, query string, q timelines.PageQuery) (*timelines.Page, error) {
	return c.fetchNotes(ctx, "notes/search", timelines.TimelineSearch, map[string]any{"query": query}, q)
}

// GetFavoritesTimeline pages over favorite records rather than notes, so
// its cursors hold record ids.
func (c *Client) GetFavoritesTimeline(ctx context.Context, q timelines.PageQuery) (*timelines.Page, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	const endpoint = "i/favorites"
	params := map[string]any{"limit": timelines.ClampCount(q.Count, maxCount)}
	if err := applyCursor(params, q.Cursor); err != nil {
		return nil, err
	}
	body, err := c.call(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var favs []favorite
	if err := decode(endpoint, body, &favs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(favs))
	notes := make([]*note, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ID)
		if f.Note != nil {
			notes = append(notes, f.Note)
		}
	}
	posts := c.normalizeAll(notes, q.FirstLoad)
	for _, p := range posts {
		p.IsFav = true
	}
	c.remember(posts...)
	top, bottom := pageCursors(ids)
	return timelines.FinishPage(posts, c.state, c.settings(), timelines.TimelineFavorites, top, bottom), nil
}

func (c *Client) fetchNotes(ctx context.Context, endpoint string, kind timelines.TimelineKind, params map[string]any, q timelines.PageQuery) (*timelines.Page, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	params["limit"] = timelines.ClampCount(q.Count, maxCount)
	if err := applyCursor(params, q.Cursor); err != nil {
		return nil, err
	}
	body, err := c.call(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var notes []*note
	if err := decode(endpoint, body, &notes); err != nil {
		return nil, err
	}
	posts := c.normalizeAll(notes, q.FirstLoad)
	c.remember(posts...)
	top, bottom := pageCursors(noteIDs(notes))
	return timelines.FinishPage(posts, c.state, c.settings(), kind, top, bottom), nil
}

// GetRelatedPosts assembles the conversation around target.
func (c *Client) GetRelatedPosts(ctx context.Context, target *timelines.Post, firstLoad bool) ([]*timelines.Post, error) {
	if err := timelines.CheckUsable(c.state); err != nil {
		return nil, err
	}
	return c.resolver.Resolve(ctx, target, firstLoad)
}

// SearchConversation lists the replies to root. notes/children is already
// scoped to the thread, so the screen names are not needed.
func (c *Client) SearchConversation(ctx context.Context, root *timelines.Post, _ []string, firstLoad bool) ([]*timelines.Post, error) {
	if err := c.check(root.StatusID); err != nil {
		return nil, err
	}
	const endpoint = "notes/children"
	body, err := c.call(ctx, endpoint, map[string]any{"noteId": root.StatusID.Raw, "limit": maxCount})
	if err != nil {
		return nil, err
	}
	var notes []*note
	if err := decode(endpoint, body, &notes); err != nil {
		return nil, err
	}
	return c.normalizeAll(notes, firstLoad), nil
}
