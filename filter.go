package timelines

// FilterOptions select which timeline filter stages run.
type FilterOptions struct {
	HomeTimeline    bool
	IncludeRetweets bool
}

type postFilter func(p *Post) bool

// FilterPosts drops posts the account should not see. Stages run in a fixed
// order but are independent, so the order never changes the result:
//
//  1. retweets by users on the no-retweet list (always)
//  2. home timeline only: blocked authors, then muted authors or resharers
//     unless the post is a reply
//  3. retweets, when IncludeRetweets is off
func FilterPosts(posts []*Post, st *AccountState, opts FilterOptions) []*Post {
	stages := []postFilter{
		func(p *Post) bool { return !st.IsNoRetweet(p.RetweetedByUserID) },
	}
	if opts.HomeTimeline {
		stages = append(stages,
			func(p *Post) bool { return !st.IsBlocked(p.UserID) },
			func(p *Post) bool {
				if p.IsReply {
					return true
				}
				return !st.IsMuted(p.UserID) && !st.IsMuted(p.RetweetedByUserID)
			},
		)
	}
	if !opts.IncludeRetweets {
		stages = append(stages, func(p *Post) bool { return !p.IsRetweet() })
	}

	for _, keep := range stages {
		posts = keepPosts(posts, keep)
	}
	return posts
}

func keepPosts(posts []*Post, keep postFilter) []*Post {
	out := make([]*Post, 0, len(posts))
	for _, p := range posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// TimelineKind is the kind of timeline a page was fetched for.
type TimelineKind uint8

const (
	TimelineHome TimelineKind = iota + 1
	TimelineMentions
	TimelineFavorites
	TimelineList
	TimelineSearch
	TimelineSingle
)

// FinishPage runs the shared post-processing every backend applies after
// normalizing a timeline: filtering and cursor assembly. top and bottom are
// dropped when the backend returned no posts at all; a page emptied by the
// filter keeps them so paging can continue past it.
func FinishPage(posts []*Post, st *AccountState, settings Settings, kind TimelineKind, top, bottom *Cursor) *Page {
	opts := FilterOptions{
		HomeTimeline:    kind == TimelineHome,
		IncludeRetweets: true,
	}
	if kind == TimelineHome || kind == TimelineList {
		opts.IncludeRetweets = settings.IncludeRetweets
	}
	page := &Page{Posts: FilterPosts(posts, st, opts)}
	if len(posts) > 0 {
		page.Top, page.Bottom = top, bottom
	}
	return page
}
