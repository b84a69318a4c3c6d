package legacy

import "github.com/anatolykoptev/go-timelines/internal/twitterfmt"

// user is the v1.1 user object.
type user struct {
	IDStr                string `json:"id_str"`
	ScreenName           string `json:"screen_name"`
	Name                 string `json:"name"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
	Protected            bool   `json:"protected"`
	FollowersCount       int    `json:"followers_count"`
	FriendsCount         int    `json:"friends_count"`
	StatusesCount        int    `json:"statuses_count"`
}

// status is the v1.1 status object requested with tweet_mode=extended.
type status struct {
	twitterfmt.Status
	User            user    `json:"user"`
	RetweetedStatus *status `json:"retweeted_status"`
	QuotedStatus    *status `json:"quoted_status"`
}

type searchResponse struct {
	Statuses []*status `json:"statuses"`
}

// Configuration is the subset of help/configuration the client keeps.
type Configuration struct {
	ShortURLLength      int `json:"short_url_length"`
	ShortURLLengthHTTPS int `json:"short_url_length_https"`
	CharactersReserved  int `json:"characters_reserved_per_media"`
	DMTextLimit         int `json:"dm_text_character_limit"`
	PhotoSizeLimit      int `json:"photo_size_limit"`
}
