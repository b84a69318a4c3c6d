package graphql

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

// --- Timeline types ---

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

// timelineInstruction covers TimelineAddEntries (Entries) as well as
// TimelineReplaceEntry and TimelinePinEntry (Entry).
type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
	Entry   *timelineEntry  `json:"entry"`
}

type timelineEntry struct {
	EntryID   string          `json:"entryId"`
	SortIndex string          `json:"sortIndex"`
	Content   timelineContent `json:"content"`
}

type timelineContent struct {
	EntryType   string          `json:"entryType"`
	TypeName    string          `json:"__typename"`
	ItemContent json.RawMessage `json:"itemContent"`
	Items       []moduleItem    `json:"items"`
	Value       string          `json:"value"`
	CursorType  string          `json:"cursorType"`
}

// moduleItem is one tweet of a TimelineTimelineModule, such as a
// conversation block on the home timeline.
type moduleItem struct {
	EntryID string `json:"entryId"`
	Item    struct {
		ItemContent json.RawMessage `json:"itemContent"`
	} `json:"item"`
}

type itemContent struct {
	TypeName     string       `json:"__typename"`
	ItemType     string       `json:"itemType"`
	TweetResults resultHolder `json:"tweet_results"`
	Promoted     *struct{}    `json:"promotedMetadata"`
}

type resultHolder struct {
	Result *tweetResult `json:"result"`
}

type userResult struct {
	TypeName string `json:"__typename"`
	RestID   string `json:"rest_id"`
	Legacy   struct {
		Name            string `json:"name"`
		ScreenName      string `json:"screen_name"`
		FollowersCount  int    `json:"followers_count"`
		FriendsCount    int    `json:"friends_count"`
		StatusesCount   int    `json:"statuses_count"`
		Protected       bool   `json:"protected"`
		ProfileImageURL string `json:"profile_image_url_https"`
	} `json:"legacy"`
	// Newer payloads move these out of legacy.
	Core struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"core"`
	Avatar struct {
		ImageURL string `json:"image_url"`
	} `json:"avatar"`
	Privacy struct {
		Protected bool `json:"protected"`
	} `json:"privacy"`
}

func (u *userResult) screenName() string {
	if u.Legacy.ScreenName != "" {
		return u.Legacy.ScreenName
	}
	return u.Core.ScreenName
}

func (u *userResult) name() string {
	if u.Legacy.Name != "" {
		return u.Legacy.Name
	}
	return u.Core.Name
}

func (u *userResult) imageURL() string {
	if u.Legacy.ProfileImageURL != "" {
		return u.Legacy.ProfileImageURL
	}
	return u.Avatar.ImageURL
}

func (u *userResult) protected() bool { return u.Legacy.Protected || u.Privacy.Protected }

type tweetResult struct {
	TypeName string `json:"__typename"`
	RestID   string `json:"rest_id"`
	// Tweet is set on TweetWithVisibilityResults wrappers.
	Tweet *tweetResult `json:"tweet"`
	Core  struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy             legacyTweet   `json:"legacy"`
	QuotedStatusResult *resultHolder `json:"quoted_status_result"`
	NoteTweet          struct {
		NoteTweetResults struct {
			Result struct {
				Text string `json:"text"`
			} `json:"result"`
		} `json:"note_tweet_results"`
	} `json:"note_tweet"`
}

type legacyTweet struct {
	twitterfmt.Status
	RetweetedStatusResult *resultHolder `json:"retweeted_status_result"`
}

// unwrap strips TweetWithVisibilityResults envelopes.
func (r *tweetResult) unwrap() *tweetResult {
	for r != nil && r.Tweet != nil {
		r = r.Tweet
	}
	return r
}

// --- Extraction helpers ---

// timelineSlice is what one timeline response yields before normalization.
type timelineSlice struct {
	tweets []*tweetResult
	top    string
	bottom string
}

func extractTimeline(tl timelineObj) timelineSlice {
	var out timelineSlice
	for _, instruction := range tl.Instructions {
		entries := instruction.Entries
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
		for _, entry := range entries {
			c := entry.Content
			if c.EntryType == "TimelineTimelineCursor" || c.TypeName == "TimelineTimelineCursor" {
				switch {
				case c.CursorType == "Top" || strings.HasPrefix(entry.EntryID, "cursor-top"):
					out.top = c.Value
				case c.CursorType == "Bottom" || strings.HasPrefix(entry.EntryID, "cursor-bottom"):
					out.bottom = c.Value
				}
				continue
			}
			if r := decodeItem(entry.EntryID, c.ItemContent); r != nil {
				out.tweets = append(out.tweets, r)
			}
			for _, it := range c.Items {
				if r := decodeItem(it.EntryID, it.Item.ItemContent); r != nil {
					out.tweets = append(out.tweets, r)
				}
			}
		}
	}
	return out
}

// decodeItem returns the tweet of a TimelineTweet item, skipping promoted
// content and anything that is not a tweet.
func decodeItem(entryID string, raw json.RawMessage) *tweetResult {
	if len(raw) == 0 {
		return nil
	}
	var item itemContent
	if err := json.Unmarshal(raw, &item); err != nil {
		slog.Debug("skip timeline item", slog.String("entry", entryID), slog.Any("error", err))
		return nil
	}
	if item.TypeName != "TimelineTweet" && item.ItemType != "TimelineTweet" {
		return nil
	}
	if item.Promoted != nil || strings.HasPrefix(entryID, "promoted") {
		return nil
	}
	return item.TweetResults.Result.unwrap()
}

// userByScreenNameResponse is the UserByScreenName envelope.
type userByScreenNameResponse struct {
	Data struct {
		User struct {
			Result userResult `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

type homeResponse struct {
	Data struct {
		Home struct {
			HomeTimelineURT timelineObj `json:"home_timeline_urt"`
		} `json:"home"`
	} `json:"data"`
}

type searchResponse struct {
	Data struct {
		SearchByRawQuery struct {
			SearchTimeline struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"search_timeline"`
		} `json:"search_by_raw_query"`
	} `json:"data"`
}

// likesResponse accepts both the timeline and timeline_v2 layouts.
type likesResponse struct {
	Data struct {
		User struct {
			Result struct {
				Timeline struct {
					Timeline timelineObj `json:"timeline"`
				} `json:"timeline"`
				TimelineV2 struct {
					Timeline timelineObj `json:"timeline"`
				} `json:"timeline_v2"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

type listResponse struct {
	Data struct {
		List struct {
			TweetsTimeline struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"tweets_timeline"`
		} `json:"list"`
	} `json:"data"`
}

type tweetDetailResponse struct {
	Data struct {
		Conversation timelineObj `json:"threaded_conversation_with_injections_v2"`
	} `json:"data"`
}

// timelineParsers maps each timeline operation to its envelope.
var timelineParsers = map[string]func(body []byte) (timelineObj, error){
	"HomeLatestTimeline": func(body []byte) (timelineObj, error) {
		var raw homeResponse
		err := decode("HomeLatestTimeline", body, &raw)
		return raw.Data.Home.HomeTimelineURT, err
	},
	"SearchTimeline": func(body []byte) (timelineObj, error) {
		var raw searchResponse
		err := decode("SearchTimeline", body, &raw)
		return raw.Data.SearchByRawQuery.SearchTimeline.Timeline, err
	},
	"Likes": func(body []byte) (timelineObj, error) {
		var raw likesResponse
		err := decode("Likes", body, &raw)
		tl := raw.Data.User.Result.Timeline.Timeline
		if len(tl.Instructions) == 0 {
			tl = raw.Data.User.Result.TimelineV2.Timeline
		}
		return tl, err
	},
	"ListLatestTweetsTimeline": func(body []byte) (timelineObj, error) {
		var raw listResponse
		err := decode("ListLatestTweetsTimeline", body, &raw)
		return raw.Data.List.TweetsTimeline.Timeline, err
	},
	"TweetDetail": func(body []byte) (timelineObj, error) {
		var raw tweetDetailResponse
		err := decode("TweetDetail", body, &raw)
		return raw.Data.Conversation, err
	},
}

// createRetweetResponse is all CreateRetweet returns: the new id and the
// "RT @user:" text, without author or original.
type createRetweetResponse struct {
	Data struct {
		CreateRetweet struct {
			RetweetResults struct {
				Result struct {
					RestID string `json:"rest_id"`
				} `json:"result"`
			} `json:"retweet_results"`
		} `json:"create_retweet"`
	} `json:"data"`
}
