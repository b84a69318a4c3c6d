package accounts

import (
	"sync/atomic"

	timelines "github.com/anatolykoptev/go-timelines"
)

// LiveSettings is a SettingsSource whose value a reload may replace. Clients
// built with it see new settings without being rebuilt.
type LiveSettings struct {
	v atomic.Pointer[timelines.Settings]
}

var _ timelines.SettingsSource = (*LiveSettings)(nil)

// NewLiveSettings returns a source holding s.
func NewLiveSettings(s timelines.Settings) *LiveSettings {
	l := &LiveSettings{}
	l.Store(s)
	return l
}

// TimelineSettings implements timelines.SettingsSource.
func (l *LiveSettings) TimelineSettings() timelines.Settings { return *l.v.Load() }

// Store replaces the current settings.
func (l *LiveSettings) Store(s timelines.Settings) { l.v.Store(&s) }
