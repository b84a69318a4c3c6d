package graphql

const (
	graphqlBase = "https://x.com/i/api/graphql"
	// restBase serves the v1.1 id-list endpoints to the same web session.
	restBase = "https://x.com/i/api/1.1"
)

// BearerToken is the public bearer credential of the web app. The session
// itself is carried by the auth_token and ct0 cookies.
const BearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

// Endpoint is one GraphQL operation. Queries carry feature flags; mutations
// are POSTed with the query id in the body and carry none.
type Endpoint struct {
	ID       string
	Name     string
	Features map[string]any
}

// URL returns {graphqlBase}/{ID}/{Name}.
func (e Endpoint) URL() string {
	return graphqlBase + "/" + e.ID + "/" + e.Name
}

func queryOp(id, name string) Endpoint    { return Endpoint{ID: id, Name: name, Features: gqlFeatures()} }
func mutationOp(id, name string) Endpoint { return Endpoint{ID: id, Name: name} }

// Endpoints maps each operation the backend uses to its current query id.
var Endpoints = map[string]Endpoint{
	"UserByScreenName":         queryOp("1VOOyvKkiI3FMmkeDNxM9A", "UserByScreenName"),
	"TweetDetail":              queryOp("_8aYOgEDz35BrBcBal1-_w", "TweetDetail"),
	"HomeLatestTimeline":       queryOp("DiTkXJgLqBBxCs7zaYsbtA", "HomeLatestTimeline"),
	"SearchTimeline":           queryOp("AIdc203rPpK_k_2KWSdm7g", "SearchTimeline"),
	"Likes":                    queryOp("eSSNbhECHHWWALkkQq-YTA", "Likes"),
	"ListLatestTweetsTimeline": queryOp("RlZzktZY_9wJynoepm8ZsA", "ListLatestTweetsTimeline"),
	"DeleteTweet":              mutationOp("VaenaVgh5q5ih7kvyVjgtg", "DeleteTweet"),
	"FavoriteTweet":            mutationOp("lI07N6Otwv1PhnEgXILM7A", "FavoriteTweet"),
	"UnfavoriteTweet":          mutationOp("ZYKSe-w7KEslx3JhSIk5LA", "UnfavoriteTweet"),
	"CreateRetweet":            mutationOp("ojPdsZsimiJrUGLR1sjUtA", "CreateRetweet"),
	"DeleteRetweet":            mutationOp("iQtK4dl5hBmXewYZuEOKVw", "DeleteRetweet"),
}

// gqlFeatures returns the canonical Twitter GraphQL feature flags.
func gqlFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                false,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"premium_content_api_read_enabled":                                        false,
		"profile_label_improvements_pcf_label_in_post_enabled":                   false,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      false,
		"responsive_web_grok_image_annotation_enabled":                            false,
		"responsive_web_grok_share_attachment_enabled":                            false,
		"responsive_web_media_download_video_enabled":                             false,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_timestamps_enabled":                                           true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"tweet_with_visibility_results_prefer_gql_media_interstitial_enabled":     false,
		"tweetypie_unmention_optimization_enabled":                                true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}
