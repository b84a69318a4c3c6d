package timelines

import "context"

// NullClient answers every operation with ErrAuth. It stands in for accounts
// that are unusable, e.g. removed from configuration while still referenced.
type NullClient struct {
	state *AccountState
}

var _ Client = (*NullClient)(nil)

// NewNullClient returns a client whose state is empty and permanently flagged.
func NewNullClient() *NullClient {
	st := NewAccountState(PersonID{}, "")
	st.MarkUnrecoverable()
	return &NullClient{state: st}
}

func (*NullClient) Network() Network { return NetworkUnknown }
func (*NullClient) CanHandle(PostID) bool { return false }
func (n *NullClient) State() *AccountState { return n.state }
func (*NullClient) VerifyIdentity(context.Context) error { return ErrAuth }

func (*NullClient) GetPostByID(context.Context, PostID, bool) (*Post, error) { return nil, ErrAuth }

func (*NullClient) GetHomeTimeline(context.Context, PageQuery) (*Page, error) { return nil, ErrAuth }
func (*NullClient) GetMentionsTimeline(context.Context, PageQuery) (*Page, error) { return nil, ErrAuth }
func (*NullClient) GetFavoritesTimeline(context.Context, PageQuery) (*Page, error) {
	return nil, ErrAuth
}
func (*NullClient) GetListTimeline(context.Context, string, PageQuery) (*Page, error) {
	return nil, ErrAuth
}
func (*NullClient) GetSearchTimeline(context.Context, string, PageQuery) (*Page, error) {
	return nil, ErrAuth
}

func (*NullClient) GetRelatedPosts(context.Context, *Post, bool) ([]*Post, error) {
	return nil, ErrAuth
}

func (*NullClient) DeletePost(context.Context, PostID) error { return ErrAuth }
func (*NullClient) FavoritePost(context.Context, PostID) error { return ErrAuth }
func (*NullClient) UnfavoritePost(context.Context, PostID) error { return ErrAuth }
func (*NullClient) RetweetPost(context.Context, PostID) (*Post, error) { return nil, ErrAuth }
func (*NullClient) UnretweetPost(context.Context, PostID) error { return ErrAuth }
func (*NullClient) RefreshConfiguration(context.Context) error { return ErrAuth }
