package timelines

import (
	"slices"
	"time"
)

// Post is the network-agnostic representation every backend normalizes into.
//
// For a retweet, StatusID is the id of the reshare itself and RetweetedID is
// the id of the original. All content fields describe the original and
// RetweetedBy* describe the resharer; CreatedAt is the original authoring
// time and CreatedAtForSorting the resharing time.
type Post struct {
	StatusID            PostID
	CreatedAt           time.Time
	CreatedAtForSorting time.Time

	// Text is the display text with shortened links expanded.
	Text string
	// TextFromAPI is the text exactly as the backend sent it.
	TextFromAPI string
	// AccessibleText is plain text with full link targets, for screen readers
	// and permalink mining.
	AccessibleText string

	UserID     PersonID
	ScreenName string
	Nickname   string
	ImageURL   string
	Source     string

	IsFav     bool
	IsReply   bool
	IsProtect bool
	IsRead    bool
	IsMe      bool

	InReplyToStatusID PostID
	InReplyToUser     string
	InReplyToUserID   PersonID

	RetweetedID       PostID
	RetweetedBy       string
	RetweetedByUserID PersonID

	QuoteStatusIDs []PostID
	MediaURLs      []string
	PostURI        string
}

// IsRetweet reports whether p is a pure reshare.
func (p *Post) IsRetweet() bool { return !p.RetweetedID.IsZero() }

// Clone returns a deep copy of p.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.QuoteStatusIDs = slices.Clone(p.QuoteStatusIDs)
	c.MediaURLs = slices.Clone(p.MediaURLs)
	return &c
}

// Original returns a copy of a retweet describing the reshared post, with the
// reshare markers cleared. Non-retweets are returned as a plain copy.
func (p *Post) Original() *Post {
	c := p.Clone()
	if !p.IsRetweet() {
		return c
	}
	c.StatusID = p.RetweetedID
	c.CreatedAtForSorting = p.CreatedAt
	c.RetweetedID = PostID{}
	c.RetweetedBy = ""
	c.RetweetedByUserID = PersonID{}
	return c
}

// AddQuoteID appends id to QuoteStatusIDs unless it is already present or is
// the post itself.
func (p *Post) AddQuoteID(id PostID) {
	if id.IsZero() || id == p.StatusID || slices.Contains(p.QuoteStatusIDs, id) {
		return
	}
	p.QuoteStatusIDs = append(p.QuoteStatusIDs, id)
}

// SortPosts orders posts by ascending StatusID.
func SortPosts(posts []*Post) {
	slices.SortFunc(posts, func(a, b *Post) int { return a.StatusID.Compare(b.StatusID) })
}
