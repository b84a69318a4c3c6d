package timelines

import "strings"

// ApplyReadPolicy sets IsMe and IsRead on a freshly normalized post.
func ApplyReadPolicy(p *Post, st *AccountState, s Settings, firstLoad bool) {
	p.IsMe = st.IsMe(p.UserID)
	switch {
	case p.IsMe && s.MarkOwnPostsRead:
		p.IsRead = true
	case firstLoad && s.MarkInitialLoadRead:
		p.IsRead = true
	default:
		p.IsRead = false
	}
}

// ReshareKind classifies a post carrying a structural reshare reference.
type ReshareKind uint8

const (
	NotReshare ReshareKind = iota
	PureReshare
	QuoteReshare
)

// ClassifyReshare applies the caption rule: a reshare with its own non-empty
// caption is a quote, otherwise it is a pure reshare. A caption-less quote
// carrying only media is therefore treated as a pure reshare.
func ClassifyReshare(hasReshareRef bool, ownCaption string) ReshareKind {
	if !hasReshareRef {
		return NotReshare
	}
	if strings.TrimSpace(ownCaption) != "" {
		return QuoteReshare
	}
	return PureReshare
}

// AddCrossNetworkQuotes appends permalink ids of other networks found in the
// post's accessible text to QuoteStatusIDs.
func AddCrossNetworkQuotes(p *Post) {
	for _, id := range CrossNetworkQuoteIDs(p.AccessibleText, p.StatusID.Network) {
		p.AddQuoteID(id)
	}
}

// MarkReplyByMention sets IsReply when the viewer is among mentioned users.
// InReplyTo fields are never derived from mentions.
func MarkReplyByMention(p *Post, st *AccountState, mentioned []PersonID) {
	if p.IsReply {
		return
	}
	for _, id := range mentioned {
		if st.IsMe(id) {
			p.IsReply = true
			return
		}
	}
}
