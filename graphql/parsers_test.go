package graphql

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Builders for GraphQL payloads. Tweets are plain maps so tests can tweak
// single fields.

func userJSON(id, screenName string) map[string]any {
	return map[string]any{"result": map[string]any{
		"__typename": "User",
		"rest_id":    id,
		"legacy": map[string]any{
			"name":                    strings.ToUpper(screenName),
			"screen_name":             screenName,
			"profile_image_url_https": "https://pbs.twimg.com/" + screenName + ".jpg",
		},
	}}
}

func tweetJSON(id, userID, screenName, text, createdAt string) map[string]any {
	return map[string]any{
		"__typename": "Tweet",
		"rest_id":    id,
		"core":       map[string]any{"user_results": userJSON(userID, screenName)},
		"legacy": map[string]any{
			"id_str":      id,
			"full_text":   text,
			"created_at":  createdAt,
			"user_id_str": userID,
		},
	}
}

func legacyOf(tw map[string]any) map[string]any { return tw["legacy"].(map[string]any) }

func itemEntry(entryID string, result map[string]any) map[string]any {
	return map[string]any{
		"entryId": entryID,
		"content": map[string]any{
			"entryType":  "TimelineTimelineItem",
			"__typename": "TimelineTimelineItem",
			"itemContent": map[string]any{
				"itemType":      "TimelineTweet",
				"__typename":    "TimelineTweet",
				"tweet_results": map[string]any{"result": result},
			},
		},
	}
}

func cursorEntry(kind, value string) map[string]any {
	return map[string]any{
		"entryId": "cursor-" + strings.ToLower(kind) + "-1",
		"content": map[string]any{
			"entryType":  "TimelineTimelineCursor",
			"__typename": "TimelineTimelineCursor",
			"value":      value,
			"cursorType": kind,
		},
	}
}

func addEntries(entries ...map[string]any) map[string]any {
	return map[string]any{"type": "TimelineAddEntries", "entries": entries}
}

func replaceEntry(entry map[string]any) map[string]any {
	return map[string]any{"type": "TimelineReplaceEntry", "entry": entry}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func homeBody(t *testing.T, instructions ...map[string]any) string {
	return mustJSON(t, map[string]any{"data": map[string]any{"home": map[string]any{
		"home_timeline_urt": map[string]any{"instructions": instructions},
	}}})
}

func searchBody(t *testing.T, instructions ...map[string]any) string {
	return mustJSON(t, map[string]any{"data": map[string]any{"search_by_raw_query": map[string]any{
		"search_timeline": map[string]any{"timeline": map[string]any{"instructions": instructions}},
	}}})
}

func detailBody(t *testing.T, instructions ...map[string]any) string {
	return mustJSON(t, map[string]any{"data": map[string]any{
		"threaded_conversation_with_injections_v2": map[string]any{"instructions": instructions},
	}})
}

const (
	jan1 = "Mon Jan 01 10:00:00 +0000 2024"
	jan2 = "Tue Jan 02 15:04:05 +0000 2024"
	jan3 = "Wed Jan 03 08:00:00 +0000 2024"
)

func TestExtractTimeline(t *testing.T) {
	promoted := itemEntry("promoted-tweet-9", tweetJSON("9", "9", "ads", "buy", jan1))
	promoted["content"].(map[string]any)["itemContent"].(map[string]any)["promotedMetadata"] = map[string]any{}

	module := map[string]any{
		"entryId": "home-conversation-1",
		"content": map[string]any{
			"entryType": "TimelineTimelineModule",
			"items": []map[string]any{
				{"entryId": "home-conversation-1-tweet-5", "item": map[string]any{"itemContent": map[string]any{
					"__typename":    "TimelineTweet",
					"tweet_results": map[string]any{"result": tweetJSON("5", "2", "bob", "in module", jan1)},
				}}},
			},
		},
	}

	body := homeBody(t,
		addEntries(
			itemEntry("tweet-1", tweetJSON("1", "2", "bob", "one", jan1)),
			promoted,
			module,
			cursorEntry("Top", "TOP"),
			cursorEntry("Bottom", "BOTTOM"),
		),
		replaceEntry(cursorEntry("Bottom", "BOTTOM2")),
	)
	tl, err := timelineParsers["HomeLatestTimeline"]([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	got := extractTimeline(tl)
	if len(got.tweets) != 2 || got.tweets[0].RestID != "1" || got.tweets[1].RestID != "5" {
		t.Fatalf("unexpected tweets %+v", got.tweets)
	}
	if got.top != "TOP" || got.bottom != "BOTTOM2" {
		t.Fatalf("cursors = %q/%q", got.top, got.bottom)
	}
}

func TestTimelineParserMalformed(t *testing.T) {
	_, err := timelineParsers["SearchTimeline"]([]byte(`{"data":`))
	var perr *timelines.ParseError
	if !errors.As(err, &perr) || perr.Endpoint != "SearchTimeline" {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestNormalizeRetweet(t *testing.T) {
	orig := tweetJSON("150", "2", "bob", "original", jan1)
	legacyOf(orig)["favorited"] = true
	rt := tweetJSON("300", "3", "carol", "RT @bob: original", jan3)
	legacyOf(rt)["retweeted_status_result"] = map[string]any{"result": map[string]any{
		"__typename": "TweetWithVisibilityResults",
		"tweet":      orig,
	}}
	var r tweetResult
	if err := json.Unmarshal([]byte(mustJSON(t, rt)), &r); err != nil {
		t.Fatal(err)
	}

	st := timelines.NewAccountState(timelines.TwitterUserID("1"), "me")
	p, err := normalizeTweet(&r, st, timelines.Settings{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if p.StatusID.Raw != "300" || p.RetweetedID.Raw != "150" {
		t.Fatalf("ids = %s/%s", p.StatusID, p.RetweetedID)
	}
	if p.RetweetedBy != "carol" || p.RetweetedByUserID != timelines.TwitterUserID("3") {
		t.Fatalf("resharer = %s/%s", p.RetweetedBy, p.RetweetedByUserID)
	}
	if p.ScreenName != "bob" || p.UserID != timelines.TwitterUserID("2") || p.TextFromAPI != "original" || !p.IsFav {
		t.Fatalf("content must mirror the original: %+v", p)
	}
	if !p.CreatedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("CreatedAt = %v", p.CreatedAt)
	}
	if !p.CreatedAtForSorting.Equal(time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("CreatedAtForSorting = %v", p.CreatedAtForSorting)
	}
	if p.PostURI != "https://x.com/bob/status/150" {
		t.Fatalf("PostURI = %s", p.PostURI)
	}
}

func TestNormalizeQuoteReplyAndMentions(t *testing.T) {
	tw := tweetJSON("400", "2", "bob", "@me look https://t.co/q", jan2)
	l := legacyOf(tw)
	l["in_reply_to_status_id_str"] = "390"
	l["in_reply_to_screen_name"] = "alice"
	l["entities"] = map[string]any{
		"urls": []map[string]any{{
			"url":          "https://t.co/q",
			"display_url":  "misskey.io/notes/9abcdefghij",
			"expanded_url": "https://misskey.io/notes/9abcdefghij",
		}},
		"user_mentions": []map[string]any{{"id_str": "1", "screen_name": "me"}},
	}
	tw["quoted_status_result"] = map[string]any{"result": tweetJSON("380", "4", "dave", "quoted", jan1)}
	tw["core"].(map[string]any)["user_results"].(map[string]any)["result"].(map[string]any)["legacy"].(map[string]any)["protected"] = true

	var r tweetResult
	if err := json.Unmarshal([]byte(mustJSON(t, tw)), &r); err != nil {
		t.Fatal(err)
	}
	st := timelines.NewAccountState(timelines.TwitterUserID("1"), "me")
	p, err := normalizeTweet(&r, st, timelines.Settings{MarkInitialLoadRead: true}, true)
	if err != nil {
		t.Fatal(err)
	}
	if p.IsRetweet() {
		t.Fatal("a quote is not a retweet")
	}
	want := []timelines.PostID{timelines.TwitterStatusID("380"), timelines.MisskeyNoteID("9abcdefghij")}
	if len(p.QuoteStatusIDs) != 2 || p.QuoteStatusIDs[0] != want[0] || p.QuoteStatusIDs[1] != want[1] {
		t.Fatalf("QuoteStatusIDs = %v, want %v", p.QuoteStatusIDs, want)
	}
	if !p.IsReply || p.InReplyToStatusID.Raw != "390" || p.InReplyToUser != "alice" {
		t.Fatalf("reply fields = %v %s %s", p.IsReply, p.InReplyToStatusID, p.InReplyToUser)
	}
	if !p.IsProtect || !p.IsRead || p.IsMe {
		t.Fatalf("flags protect=%v read=%v me=%v", p.IsProtect, p.IsRead, p.IsMe)
	}
	if p.Text != "@me look misskey.io/notes/9abcdefghij" {
		t.Fatalf("Text = %q", p.Text)
	}
}

func TestNormalizeTombstone(t *testing.T) {
	r := &tweetResult{TypeName: "TweetTombstone"}
	if _, err := normalizeTweet(r, timelines.NewAccountState(timelines.PersonID{}, ""), timelines.Settings{}, false); err == nil {
		t.Fatal("expected error for tombstone")
	}
}

func TestNormalizeNoteTweet(t *testing.T) {
	tw := tweetJSON("7", "2", "bob", "short…", jan2)
	tw["note_tweet"] = map[string]any{"note_tweet_results": map[string]any{"result": map[string]any{"text": "the whole long text"}}}
	var r tweetResult
	if err := json.Unmarshal([]byte(mustJSON(t, tw)), &r); err != nil {
		t.Fatal(err)
	}
	p, err := normalizeTweet(&r, timelines.NewAccountState(timelines.PersonID{}, ""), timelines.Settings{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if p.TextFromAPI != "the whole long text" {
		t.Fatalf("TextFromAPI = %q", p.TextFromAPI)
	}
}

func TestAddGraphQLParams(t *testing.T) {
	u := addGraphQLParams("https://x.com/i/api/graphql/ID/Op", map[string]any{"rawQuery": "@me 100%"}, nil, nil)
	want := "https://x.com/i/api/graphql/ID/Op?variables=%7B%22rawQuery%22%3A%22%40me%20100%25%22%7D"
	if u != want {
		t.Fatalf("addGraphQLParams = %s\nwant %s", u, want)
	}
	u = addGraphQLParams("https://h/p?x=1", map[string]any{}, map[string]any{"a": true}, map[string]any{"b": false})
	if !strings.Contains(u, "&variables=%7B%7D&features=%7B%22a%22%3Atrue%7D&fieldToggles=%7B%22b%22%3Afalse%7D") {
		t.Fatalf("unexpected url %s", u)
	}
}

func TestConversationQuery(t *testing.T) {
	got := conversationQuery("100", []string{"alice", "", "bob"})
	want := "conversation_id:100 (from:alice OR to:alice OR from:bob OR to:bob)"
	if got != want {
		t.Fatalf("conversationQuery = %q, want %q", got, want)
	}
	if got := conversationQuery("100", nil); got != "conversation_id:100" {
		t.Fatalf("conversationQuery without names = %q", got)
	}
}
