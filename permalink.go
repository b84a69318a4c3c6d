package timelines

import (
	"regexp"
	"slices"
)

// permalinkPattern recognizes post URLs of one network. The id is capture group 1.
type permalinkPattern struct {
	network Network
	re      *regexp.Regexp
	makeID  func(raw string) PostID
}

var permalinkPatterns = []permalinkPattern{
	{
		network: NetworkTwitter,
		re:      regexp.MustCompile(`https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/(?:#!/)?(?:\w+/status(?:es)?|i/web/status)/(\d+)`),
		makeID:  TwitterStatusID,
	},
	{
		network: NetworkTwitter,
		re:      regexp.MustCompile(`https?://(?:www\.)?(?:vxtwitter\.com|fxtwitter\.com|fixupx\.com|fixvx\.com)/\w+/status/(\d+)`),
		makeID:  TwitterStatusID,
	},
	{
		network: NetworkTwitter,
		re:      regexp.MustCompile(`https?://(?:www\.)?favstar\.fm/users/\w+/status/(\d+)`),
		makeID:  TwitterStatusID,
	},
	{
		network: NetworkMisskey,
		re:      regexp.MustCompile(`https?://[\w.-]+\.[a-z]{2,}/notes/([0-9a-z]{10,})`),
		makeID:  MisskeyNoteID,
	},
}

// PermalinkIDs returns the ids of every recognized post permalink in text,
// across networks and mirror hosts, in order of appearance, deduplicated.
func PermalinkIDs(text string) []PostID {
	return minePermalinks(text, func(permalinkPattern) bool { return true })
}

// CrossNetworkQuoteIDs returns permalink ids in text that belong to networks
// other than self.
func CrossNetworkQuoteIDs(text string, self Network) []PostID {
	return minePermalinks(text, func(p permalinkPattern) bool { return p.network != self })
}

func minePermalinks(text string, use func(permalinkPattern) bool) []PostID {
	type hit struct {
		pos int
		id  PostID
	}
	var hits []hit
	for _, p := range permalinkPatterns {
		if !use(p) {
			continue
		}
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, hit{pos: m[0], id: p.makeID(text[m[2]:m[3]])})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.pos - b.pos })
	seen := make(map[PostID]bool, len(hits))
	var ids []PostID
	for _, h := range hits {
		if seen[h.id] {
			continue
		}
		seen[h.id] = true
		ids = append(ids, h.id)
	}
	return ids
}
