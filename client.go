package timelines

import "context"

// Client is the capability contract every backend implements. Every method
// may block on network I/O and honours ctx cancellation.
type Client interface {
	// Network returns the id space this client serves.
	Network() Network
	// CanHandle reports whether id belongs to this client's network and kinds.
	CanHandle(id PostID) bool
	// State returns the account state mutated by this client.
	State() *AccountState

	VerifyIdentity(ctx context.Context) error
	GetPostByID(ctx context.Context, id PostID, firstLoad bool) (*Post, error)

	GetHomeTimeline(ctx context.Context, q PageQuery) (*Page, error)
	GetMentionsTimeline(ctx context.Context, q PageQuery) (*Page, error)
	GetFavoritesTimeline(ctx context.Context, q PageQuery) (*Page, error)
	GetListTimeline(ctx context.Context, listID string, q PageQuery) (*Page, error)
	GetSearchTimeline(ctx context.Context, query string, q PageQuery) (*Page, error)

	// GetRelatedPosts assembles the conversation around target. On partial
	// failure it returns the gathered posts together with a *PartialError.
	GetRelatedPosts(ctx context.Context, target *Post, firstLoad bool) ([]*Post, error)

	DeletePost(ctx context.Context, id PostID) error
	// FavoritePost succeeds when the post is already favorited.
	FavoritePost(ctx context.Context, id PostID) error
	UnfavoritePost(ctx context.Context, id PostID) error
	// RetweetPost returns the created reshare, or nil without error when the
	// backend response does not carry enough to build a Post.
	RetweetPost(ctx context.Context, id PostID) (*Post, error)
	UnretweetPost(ctx context.Context, id PostID) error

	RefreshConfiguration(ctx context.Context) error
}

// Request describes one wire call for the transport.
type Request struct {
	// Endpoint names the operation for rate-limit bookkeeping and metrics.
	Endpoint string
	Method   string
	URL      string
	Headers  map[string]string
	// HeaderOrder is the wire order of Headers for fingerprint-aware
	// transports. Nil leaves the order to the transport.
	HeaderOrder []string
	Body        []byte
}

// Response is the raw transport answer. Header keys are lower case.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Transport sends requests. It owns signing, retries, timeouts and pooling;
// any error it returns is treated as a transient failure.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) { return f(ctx, req) }

// PostCache is the shared read/write post store used to avoid refetching.
type PostCache interface {
	LookupByID(id PostID) (*Post, bool)
	Upsert(p *Post)
}

// MetricsHook is called once per backend request.
type MetricsHook func(endpoint string, success, rateLimited bool)

// CheckUsable fails with ErrAuth when st carries the sticky error flag.
func CheckUsable(st *AccountState) error {
	if st == nil || st.HasUnrecoverableError() {
		return ErrAuth
	}
	return nil
}
