package graphql

import (
	"fmt"
	"log/slog"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

// normalizeTweet maps a GraphQL tweet result onto a Post. Native retweets
// never carry a caption of their own, so retweeted_status_result always
// yields a pure reshare; quotes arrive through quoted_status_result.
func normalizeTweet(r *tweetResult, st *timelines.AccountState, s timelines.Settings, firstLoad bool) (*timelines.Post, error) {
	r = r.unwrap()
	if r == nil {
		return nil, fmt.Errorf("empty tweet result")
	}
	if r.TypeName == "TweetTombstone" || r.TypeName == "TweetUnavailable" {
		return nil, fmt.Errorf("tweet unavailable (typename=%s)", r.TypeName)
	}
	if r.RestID == "" {
		return nil, fmt.Errorf("empty tweet rest_id")
	}

	p := &timelines.Post{StatusID: timelines.TwitterStatusID(r.RestID)}
	orig := r
	if rt := r.Legacy.RetweetedStatusResult; rt != nil {
		if o := rt.Result.unwrap(); o != nil && o.RestID != "" {
			resharer := &r.Core.UserResults.Result
			p.RetweetedID = timelines.TwitterStatusID(o.RestID)
			p.RetweetedBy = resharer.screenName()
			p.RetweetedByUserID = userID(resharer.RestID, r.Legacy.UserIDStr)
			orig = o
		}
	}

	status := orig.Legacy.Status
	if note := orig.NoteTweet.NoteTweetResults.Result.Text; note != "" {
		status.FullText = note
	}
	twitterfmt.Apply(p, &status)
	p.CreatedAtForSorting = twitterfmt.ParseTime(r.Legacy.CreatedAt)
	if p.CreatedAtForSorting.IsZero() {
		p.CreatedAtForSorting = p.CreatedAt
	}

	author := &orig.Core.UserResults.Result
	p.UserID = userID(author.RestID, orig.Legacy.UserIDStr)
	p.ScreenName = author.screenName()
	p.Nickname = author.name()
	p.ImageURL = author.imageURL()
	p.IsProtect = author.protected()
	p.PostURI = twitterfmt.StatusURL(p.ScreenName, orig.RestID)

	if q := orig.QuotedStatusResult; q != nil {
		if qr := q.Result.unwrap(); qr != nil && qr.RestID != "" {
			p.AddQuoteID(timelines.TwitterStatusID(qr.RestID))
		}
	}
	timelines.AddCrossNetworkQuotes(p)
	timelines.MarkReplyByMention(p, st, twitterfmt.MentionIDs(orig.Legacy.Entities))
	timelines.ApplyReadPolicy(p, st, s, firstLoad)
	return p, nil
}

func userID(restID, fallback string) timelines.PersonID {
	if restID == "" {
		restID = fallback
	}
	if restID == "" {
		return timelines.PersonID{}
	}
	return timelines.TwitterUserID(restID)
}

// normalizeAll maps every result, logging and skipping the ones that fail.
func normalizeAll(results []*tweetResult, st *timelines.AccountState, s timelines.Settings, firstLoad bool) []*timelines.Post {
	posts := make([]*timelines.Post, 0, len(results))
	for _, r := range results {
		p, err := normalizeTweet(r, st, s, firstLoad)
		if err != nil {
			slog.Debug("skip tweet parse error", slog.Any("error", err))
			continue
		}
		posts = append(posts, p)
	}
	return posts
}
