package legacy

import (
	"fmt"
	"log/slog"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

// normalizeStatus maps a v1.1 status onto a Post. A retweeted_status is
// always a pure reshare; quotes come through quoted_status.
func normalizeStatus(s *status, st *timelines.AccountState, set timelines.Settings, firstLoad bool) (*timelines.Post, error) {
	if s == nil || s.IDStr == "" {
		return nil, fmt.Errorf("status without id_str")
	}

	p := &timelines.Post{StatusID: timelines.TwitterStatusID(s.IDStr)}
	orig := s
	if rt := s.RetweetedStatus; rt != nil && rt.IDStr != "" {
		p.RetweetedID = timelines.TwitterStatusID(rt.IDStr)
		p.RetweetedBy = s.User.ScreenName
		p.RetweetedByUserID = userID(&s.User, s.UserIDStr)
		orig = rt
	}

	twitterfmt.Apply(p, &orig.Status)
	p.CreatedAtForSorting = twitterfmt.ParseTime(s.CreatedAt)
	if p.CreatedAtForSorting.IsZero() {
		p.CreatedAtForSorting = p.CreatedAt
	}

	p.UserID = userID(&orig.User, orig.UserIDStr)
	p.ScreenName = orig.User.ScreenName
	p.Nickname = orig.User.Name
	p.ImageURL = orig.User.ProfileImageURLHTTPS
	p.IsProtect = orig.User.Protected
	p.PostURI = twitterfmt.StatusURL(p.ScreenName, orig.IDStr)

	if q := orig.QuotedStatus; q != nil {
		p.AddQuoteID(timelines.TwitterStatusID(q.IDStr))
	}
	timelines.AddCrossNetworkQuotes(p)
	timelines.MarkReplyByMention(p, st, twitterfmt.MentionIDs(orig.Entities))
	timelines.ApplyReadPolicy(p, st, set, firstLoad)
	return p, nil
}

func userID(u *user, fallback string) timelines.PersonID {
	id := u.IDStr
	if id == "" {
		id = fallback
	}
	if id == "" {
		return timelines.PersonID{}
	}
	return timelines.TwitterUserID(id)
}

// normalizeAll maps every status, logging and skipping the ones that fail.
func normalizeAll(statuses []*status, st *timelines.AccountState, s timelines.Settings, firstLoad bool) []*timelines.Post {
	posts := make([]*timelines.Post, 0, len(statuses))
	for _, raw := range statuses {
		p, err := normalizeStatus(raw, st, s, firstLoad)
		if err != nil {
			slog.Debug("skip status parse error", slog.Any("error", err))
			continue
		}
		posts = append(posts, p)
	}
	return posts
}
