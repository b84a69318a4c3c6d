// Package twitterfmt holds the status object shape shared by the v1.1 REST
// API and the "legacy" half of GraphQL tweet results.
package twitterfmt

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	timelines "github.com/anatolykoptev/go-timelines"
)

// createdAtLayout is the timestamp format of created_at fields.
const createdAtLayout = time.RubyDate

// Status carries the fields both Twitter wire formats agree on.
type Status struct {
	IDStr               string   `json:"id_str"`
	FullText            string   `json:"full_text"`
	Text                string   `json:"text"`
	CreatedAt           string   `json:"created_at"`
	Favorited           bool     `json:"favorited"`
	Source              string   `json:"source"`
	UserIDStr           string   `json:"user_id_str"`
	InReplyToStatusID   string   `json:"in_reply_to_status_id_str"`
	InReplyToScreenName string   `json:"in_reply_to_screen_name"`
	InReplyToUserID     string   `json:"in_reply_to_user_id_str"`
	IsQuoteStatus       bool     `json:"is_quote_status"`
	QuotedStatusID      string   `json:"quoted_status_id_str"`
	Entities            Entities `json:"entities"`
	ExtendedEntities    Entities `json:"extended_entities"`
}

// Entities lists the spans Twitter annotates in a status text.
type Entities struct {
	URLs         []URLEntity     `json:"urls"`
	UserMentions []MentionEntity `json:"user_mentions"`
	Media        []MediaEntity   `json:"media"`
}

type URLEntity struct {
	URL         string `json:"url"`
	DisplayURL  string `json:"display_url"`
	ExpandedURL string `json:"expanded_url"`
}

type MentionEntity struct {
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
}

type MediaEntity struct {
	URL           string `json:"url"`
	MediaURLHTTPS string `json:"media_url_https"`
	Type          string `json:"type"`
}

// RawText returns the untruncated text as delivered.
func (s *Status) RawText() string {
	if s.FullText != "" {
		return s.FullText
	}
	return s.Text
}

// ParseTime parses a created_at value. Unparseable input yields the zero time.
func ParseTime(v string) time.Time {
	t, err := time.Parse(createdAtLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// ExpandText replaces t.co links with their targets. text uses the short
// display form, accessible the full expanded URL. Media links are dropped.
func ExpandText(raw string, e, extended Entities) (text, accessible string) {
	text, accessible = raw, raw
	for _, u := range e.URLs {
		if u.URL == "" {
			continue
		}
		display := u.DisplayURL
		if display == "" {
			display = u.ExpandedURL
		}
		text = strings.ReplaceAll(text, u.URL, display)
		accessible = strings.ReplaceAll(accessible, u.URL, u.ExpandedURL)
	}
	for _, m := range append(e.Media, extended.Media...) {
		if m.URL == "" {
			continue
		}
		text = strings.ReplaceAll(text, m.URL, "")
		accessible = strings.ReplaceAll(accessible, m.URL, "")
	}
	text = strings.TrimSpace(html.UnescapeString(text))
	accessible = strings.TrimSpace(html.UnescapeString(accessible))
	return text, accessible
}

var sourceRe = regexp.MustCompile(`>([^<]*)<`)

// SourceName extracts the client name from an anchor-wrapped source field.
func SourceName(src string) string {
	if m := sourceRe.FindStringSubmatch(src); m != nil {
		return html.UnescapeString(m[1])
	}
	return html.UnescapeString(src)
}

// StatusURL is the canonical permalink of a status.
func StatusURL(screenName, id string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", screenName, id)
}

// MentionIDs returns the user ids mentioned by a status.
func MentionIDs(e Entities) []timelines.PersonID {
	ids := make([]timelines.PersonID, 0, len(e.UserMentions))
	for _, m := range e.UserMentions {
		if m.IDStr != "" {
			ids = append(ids, timelines.TwitterUserID(m.IDStr))
		}
	}
	return ids
}

// Apply copies the content fields of s onto p: text, creation time, reply
// reference, favorite flag, media, source and the structural quote id.
// Author fields and reshare markers are left to the caller.
func Apply(p *timelines.Post, s *Status) {
	p.CreatedAt = ParseTime(s.CreatedAt)
	p.TextFromAPI = s.RawText()
	p.Text, p.AccessibleText = ExpandText(p.TextFromAPI, s.Entities, s.ExtendedEntities)
	p.IsFav = s.Favorited
	p.Source = SourceName(s.Source)

	if s.InReplyToStatusID != "" {
		p.IsReply = true
		p.InReplyToStatusID = timelines.TwitterStatusID(s.InReplyToStatusID)
		p.InReplyToUser = s.InReplyToScreenName
		if s.InReplyToUserID != "" {
			p.InReplyToUserID = timelines.TwitterUserID(s.InReplyToUserID)
		}
	}

	media := s.ExtendedEntities.Media
	if len(media) == 0 {
		media = s.Entities.Media
	}
	for _, m := range media {
		if m.MediaURLHTTPS != "" {
			p.MediaURLs = append(p.MediaURLs, m.MediaURLHTTPS)
		}
	}

	if s.QuotedStatusID != "" {
		p.AddQuoteID(timelines.TwitterStatusID(s.QuotedStatusID))
	}
}
