package timelines

// Settings are the read-only user preferences the core consults.
type Settings struct {
	MarkOwnPostsRead    bool `yaml:"mark_own_posts_read"`
	MarkInitialLoadRead bool `yaml:"mark_initial_load_read"`
	// IncludeRetweets applies to home and list timelines only.
	IncludeRetweets bool `yaml:"include_retweets"`
}

// SettingsSource supplies the current settings; they may change between calls.
type SettingsSource interface {
	TimelineSettings() Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings Settings

// TimelineSettings implements SettingsSource.
func (s StaticSettings) TimelineSettings() Settings { return Settings(s) }

// DefaultSettings include retweets and leave everything unread.
var DefaultSettings = StaticSettings{IncludeRetweets: true}
