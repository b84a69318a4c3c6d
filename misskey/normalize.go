package misskey

import (
	"errors"
	"log/slog"
	"time"

	timelines "github.com/anatolykoptev/go-timelines"
)

// publicVisibility lists the visibility levels anyone may read.
var publicVisibility = map[string]bool{"public": true, "home": true}

// normalizeNote maps a note onto a Post. A renote with its own text is a
// quote; one without is a pure reshare whose content mirrors the renoted note.
func (c *Client) normalizeNote(n *note, firstLoad bool) (*timelines.Post, error) {
	if n == nil || n.ID == "" {
		return nil, errors.New("note without id")
	}

	p := &timelines.Post{
		StatusID:            timelines.MisskeyNoteID(n.ID),
		CreatedAtForSorting: parseTime(n.CreatedAt),
	}
	hasRenote := n.Renote != nil && n.Renote.ID != ""
	content := n
	switch timelines.ClassifyReshare(hasRenote, n.text()) {
	case timelines.PureReshare:
		p.RetweetedID = timelines.MisskeyNoteID(n.Renote.ID)
		p.RetweetedBy = n.User.acct()
		p.RetweetedByUserID = personID(n.User.ID, n.UserID)
		content = n.Renote
	case timelines.QuoteReshare:
		p.AddQuoteID(timelines.MisskeyNoteID(n.Renote.ID))
	case timelines.NotReshare:
		// The server omits renote when the renoted note is gone.
		if id := str(n.RenoteID); id != "" && n.text() != "" {
			p.AddQuoteID(timelines.MisskeyNoteID(id))
		}
	}

	p.CreatedAt = parseTime(content.CreatedAt)
	p.TextFromAPI = content.text()
	p.Text = p.TextFromAPI
	if cw := str(content.CW); cw != "" {
		p.Text = cw + "\n\n" + p.Text
	}
	p.AccessibleText = p.Text

	p.UserID = personID(content.User.ID, content.UserID)
	p.ScreenName = content.User.acct()
	p.Nickname = content.User.displayName()
	p.ImageURL = str(content.User.AvatarURL)
	p.IsProtect = !publicVisibility[content.Visibility]
	p.PostURI = c.noteURL(content)
	for _, f := range content.Files {
		if f.URL != "" {
			p.MediaURLs = append(p.MediaURLs, f.URL)
		}
	}

	if rid := str(content.ReplyID); rid != "" {
		p.IsReply = true
		p.InReplyToStatusID = timelines.MisskeyNoteID(rid)
		if r := content.Reply; r != nil {
			p.InReplyToUser = r.User.acct()
			p.InReplyToUserID = personID(r.User.ID, r.UserID)
		}
	}

	if p.CreatedAtForSorting.IsZero() {
		p.CreatedAtForSorting = p.CreatedAt
	}

	st := c.state
	mentioned := make([]timelines.PersonID, 0, len(content.Mentions))
	for _, id := range content.Mentions {
		mentioned = append(mentioned, timelines.MisskeyUserID(id))
	}
	timelines.AddCrossNetworkQuotes(p)
	timelines.MarkReplyByMention(p, st, mentioned)
	timelines.ApplyReadPolicy(p, st, c.settings(), firstLoad)
	return p, nil
}

// noteURL prefers the origin URL for notes federated from other servers.
func (c *Client) noteURL(n *note) string {
	if u := str(n.URL); u != "" {
		return u
	}
	if u := str(n.URI); u != "" {
		return u
	}
	return "https://" + c.cfg.Host + "/notes/" + n.ID
}

func personID(id, fallback string) timelines.PersonID {
	if id == "" {
		id = fallback
	}
	if id == "" {
		return timelines.PersonID{}
	}
	return timelines.MisskeyUserID(id)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// normalizeAll maps every note, logging and skipping the ones that fail.
func (c *Client) normalizeAll(notes []*note, firstLoad bool) []*timelines.Post {
	posts := make([]*timelines.Post, 0, len(notes))
	for _, n := range notes {
		p, err := c.normalizeNote(n, firstLoad)
		if err != nil {
			slog.Debug("skip note parse error", slog.Any("error", err))
			continue
		}
		posts = append(posts, p)
	}
	return posts
}
