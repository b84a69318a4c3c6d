package timelines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"
)

// maxAncestorWalk bounds how many missing ancestors one resolution fetches.
const maxAncestorWalk = 20

// ConversationSource is the backend side of conversation resolution.
type ConversationSource interface {
	CanHandle(id PostID) bool
	GetPostByID(ctx context.Context, id PostID, firstLoad bool) (*Post, error)
	// SearchConversation returns posts of the conversation rooted at root,
	// scoped to the given screen names. Results need not connect to root.
	SearchConversation(ctx context.Context, root *Post, screenNames []string, firstLoad bool) ([]*Post, error)
}

// Resolver rebuilds reply chains and conversations on top of a backend and
// a shared post cache. It only reads from and inserts into the cache.
type Resolver struct {
	src     ConversationSource
	cache   PostCache
	flights singleflight.Group
}

// NewResolver returns a resolver. cache may be nil.
func NewResolver(src ConversationSource, cache PostCache) *Resolver {
	return &Resolver{src: src, cache: cache}
}

// Resolve returns the best-effort set of posts forming target's reply chain
// and surrounding conversation, ordered by id. When some fetch failed the
// gathered posts are still returned, together with a *PartialError wrapping
// the last failure. Returned posts are copies.
func (r *Resolver) Resolve(ctx context.Context, target *Post, firstLoad bool) ([]*Post, error) {
	if target == nil {
		return nil, errors.New("resolve conversation: nil target")
	}
	target = target.Original()

	rel := map[PostID]*Post{target.StatusID: target}
	var lastErr error
	record := func(step string, err error) {
		slog.Debug("conversation: fetch failed",
			slog.String("step", step),
			slog.String("target", target.StatusID.String()),
			slog.Any("error", err))
		lastErr = err
	}

	// Some search payloads drop the reply reference; a mention marker hints
	// that a fuller copy has one.
	if strings.Contains(target.TextFromAPI, "@") && target.InReplyToStatusID.IsZero() {
		richer, err := r.richerCopy(ctx, target.StatusID, firstLoad)
		if err != nil {
			record("repair", err)
		} else if richer != nil {
			delete(rel, target.StatusID)
			target = richer.Original()
			rel[target.StatusID] = target
		}
	}

	for range maxAncestorWalk {
		top, _ := FindTopOfReplyChain(rel, target.StatusID)
		parentID := top.InReplyToStatusID
		if parentID.IsZero() {
			break
		}
		parent, err := r.lookup(ctx, parentID, firstLoad)
		if err != nil {
			record("ancestor", err)
			break
		}
		if parent.StatusID != parentID {
			record("ancestor", fmt.Errorf("fetch %s: got post %s", parentID, parent.StatusID))
			break
		}
		rel[parentID] = parent
	}

	refs := append(PermalinkIDs(target.AccessibleText), target.QuoteStatusIDs...)
	for _, id := range refs {
		if _, ok := rel[id]; ok {
			continue
		}
		// Posts from another network are used when cached, never fetched.
		if r.cache != nil {
			if p, ok := r.cache.LookupByID(id); ok {
				rel[p.StatusID] = p.Clone()
				continue
			}
		}
		if !r.src.CanHandle(id) {
			continue
		}
		p, err := r.fetch(ctx, id, firstLoad)
		if err != nil {
			record("reference", err)
			continue
		}
		rel[p.StatusID] = p
	}

	if err := ctx.Err(); err != nil {
		record("search", err)
	} else {
		root, _ := FindTopOfReplyChain(rel, target.StatusID)
		results, err := r.src.SearchConversation(ctx, root, conversationNames(target), firstLoad)
		if err != nil {
			record("search", err)
		}
		SortPosts(results)
		for _, p := range results {
			if p.IsRetweet() {
				continue
			}
			if _, ok := rel[p.StatusID]; ok {
				continue
			}
			// Only attach posts that connect back to what we already have.
			if _, ok := rel[p.InReplyToStatusID]; !ok {
				continue
			}
			rel[p.StatusID] = p.Clone()
			if r.cache != nil {
				r.cache.Upsert(p)
			}
		}
	}

	out := make([]*Post, 0, len(rel))
	for _, p := range rel {
		out = append(out, p.Clone())
	}
	SortPosts(out)

	if lastErr != nil {
		return out, &PartialError{Err: lastErr}
	}
	return out, nil
}

// richerCopy prefers a cached copy that records a reply target, otherwise
// refetches the post.
func (r *Resolver) richerCopy(ctx context.Context, id PostID, firstLoad bool) (*Post, error) {
	if r.cache != nil {
		if p, ok := r.cache.LookupByID(id); ok && !p.InReplyToStatusID.IsZero() {
			return p.Clone(), nil
		}
	}
	return r.fetch(ctx, id, firstLoad)
}

func (r *Resolver) lookup(ctx context.Context, id PostID, firstLoad bool) (*Post, error) {
	if r.cache != nil {
		if p, ok := r.cache.LookupByID(id); ok {
			return p.Clone(), nil
		}
	}
	return r.fetch(ctx, id, firstLoad)
}

// fetch collapses concurrent remote fetches of the same id into one call.
// The shared call runs without the caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (r *Resolver) fetch(ctx context.Context, id PostID, firstLoad bool) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(id.String(), func() (any, error) {
		p, err := r.src.GetPostByID(flightCtx, id, firstLoad)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.Upsert(p)
		}
		return p, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s: %w", id, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("fetch %s: %w", id, res.Err)
		}
		return res.Val.(*Post).Clone(), nil
	}
}

func conversationNames(target *Post) []string {
	names := []string{target.ScreenName}
	if target.InReplyToUser != "" && !strings.EqualFold(target.InReplyToUser, target.ScreenName) {
		names = append(names, target.InReplyToUser)
	}
	return names
}

// FindTopOfReplyChain follows InReplyToStatusID links from start while the
// linked post is present in posts and returns the last post reached.
func FindTopOfReplyChain(posts map[PostID]*Post, start PostID) (*Post, error) {
	p, ok := posts[start]
	if !ok {
		return nil, fmt.Errorf("find top of reply chain: %w: %s", ErrPostNotFound, start)
	}
	// len(posts) steps visit every node once, which also stops reply cycles.
	for range len(posts) {
		parent, ok := posts[p.InReplyToStatusID]
		if !ok || p.InReplyToStatusID.IsZero() {
			break
		}
		p = parent
	}
	return p, nil
}
