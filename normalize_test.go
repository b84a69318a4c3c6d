package timelines

import (
	"testing"
)

func TestPermalinkIDs(t *testing.T) {
	text := "a https://misskey.io/notes/9abcdefghij b https://x.com/foo/status/200 " +
		"c https://twitter.com/bar/status/100?s=20 d https://fxtwitter.com/baz/status/300 " +
		"e https://x.com/foo/status/200 f https://favstar.fm/users/q/status/400"
	got := PermalinkIDs(text)
	want := []PostID{
		MisskeyNoteID("9abcdefghij"),
		TwitterStatusID("200"),
		TwitterStatusID("100"),
		TwitterStatusID("300"),
		TwitterStatusID("400"),
	}
	if len(got) != len(want) {
		t.Fatalf("PermalinkIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PermalinkIDs[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCrossNetworkQuoteIDs(t *testing.T) {
	text := "https://twitter.com/a/status/1 https://misskey.io/notes/9abcdefghij"
	got := CrossNetworkQuoteIDs(text, NetworkMisskey)
	if len(got) != 1 || got[0] != TwitterStatusID("1") {
		t.Fatalf("from misskey: %v", got)
	}
	got = CrossNetworkQuoteIDs(text, NetworkTwitter)
	if len(got) != 1 || got[0] != MisskeyNoteID("9abcdefghij") {
		t.Fatalf("from twitter: %v", got)
	}
}

func TestAddCrossNetworkQuotes(t *testing.T) {
	p := &Post{
		StatusID:       MisskeyNoteID("9zzzzzzzzzz"),
		AccessibleText: "https://twitter.com/a/status/1 https://misskey.io/notes/9abcdefghij",
	}
	AddCrossNetworkQuotes(p)
	if len(p.QuoteStatusIDs) != 1 || p.QuoteStatusIDs[0] != TwitterStatusID("1") {
		t.Fatalf("QuoteStatusIDs = %v", p.QuoteStatusIDs)
	}
}

func TestClassifyReshare(t *testing.T) {
	tests := []struct {
		ref     bool
		caption string
		want    ReshareKind
	}{
		{false, "hello", NotReshare},
		{true, "", PureReshare},
		{true, "  \n", PureReshare},
		{true, "my take", QuoteReshare},
	}
	for _, tt := range tests {
		if got := ClassifyReshare(tt.ref, tt.caption); got != tt.want {
			t.Fatalf("ClassifyReshare(%v, %q) = %d, want %d", tt.ref, tt.caption, got, tt.want)
		}
	}
}

func TestApplyReadPolicy(t *testing.T) {
	st := NewAccountState(TwitterUserID("1"), "me")
	tests := []struct {
		name      string
		author    string
		settings  Settings
		firstLoad bool
		wantRead  bool
	}{
		{"own post, setting on", "1", Settings{MarkOwnPostsRead: true}, false, true},
		{"own post, setting off", "1", Settings{}, false, false},
		{"initial load, setting on", "2", Settings{MarkInitialLoadRead: true}, true, true},
		{"initial load, setting off", "2", Settings{}, true, false},
		{"later load", "2", Settings{MarkInitialLoadRead: true}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{UserID: TwitterUserID(tt.author)}
			ApplyReadPolicy(p, st, tt.settings, tt.firstLoad)
			if p.IsRead != tt.wantRead {
				t.Fatalf("IsRead = %v, want %v", p.IsRead, tt.wantRead)
			}
			if p.IsMe != (tt.author == "1") {
				t.Fatalf("IsMe = %v", p.IsMe)
			}
		})
	}
}

func TestMarkReplyByMention(t *testing.T) {
	st := NewAccountState(TwitterUserID("1"), "me")
	p := &Post{}
	MarkReplyByMention(p, st, []PersonID{TwitterUserID("5"), TwitterUserID("1")})
	if !p.IsReply {
		t.Fatal("expected mention of viewer to mark IsReply")
	}
	if !p.InReplyToStatusID.IsZero() || !p.InReplyToUserID.IsZero() {
		t.Fatal("mentions must not populate InReplyTo fields")
	}
}

func TestPostOriginal(t *testing.T) {
	created := mustTime(t, "2024-01-02T15:04:05Z")
	shared := mustTime(t, "2024-01-03T10:00:00Z")
	rt := &Post{
		StatusID:            TwitterStatusID("20"),
		RetweetedID:         TwitterStatusID("10"),
		RetweetedBy:         "bob",
		RetweetedByUserID:   TwitterUserID("2"),
		CreatedAt:           created,
		CreatedAtForSorting: shared,
		QuoteStatusIDs:      []PostID{TwitterStatusID("5")},
	}
	orig := rt.Original()
	if orig.StatusID.Raw != "10" || orig.IsRetweet() || orig.RetweetedBy != "" {
		t.Fatalf("unexpected original %+v", orig)
	}
	if !orig.CreatedAtForSorting.Equal(created) {
		t.Fatalf("CreatedAtForSorting = %v, want %v", orig.CreatedAtForSorting, created)
	}
	orig.QuoteStatusIDs[0] = TwitterStatusID("6")
	if rt.QuoteStatusIDs[0].Raw != "5" {
		t.Fatal("Original must not share slices with the source post")
	}
}

func TestNullClient(t *testing.T) {
	n := NewNullClient()
	if !n.State().HasUnrecoverableError() {
		t.Fatal("null client state must carry the sticky error")
	}
	if _, err := n.GetHomeTimeline(t.Context(), PageQuery{}); err != ErrAuth {
		t.Fatalf("GetHomeTimeline err = %v", err)
	}
	if err := n.FavoritePost(t.Context(), TwitterStatusID("1")); err != ErrAuth {
		t.Fatalf("FavoritePost err = %v", err)
	}
	if n.CanHandle(TwitterStatusID("1")) {
		t.Fatal("null client claims no ids")
	}
}
