package timelines

import (
	"sync"
	"sync/atomic"

	"github.com/anatolykoptev/go-timelines/quota"
)

// Profile is the identity data a backend reports for the viewing account.
type Profile struct {
	UserID         PersonID
	UserName       string
	FollowersCount int
	FriendsCount   int
	StatusesCount  int
}

// AccountState is the mutable per-account state shared by every view backed
// by the same account. Id sets are replaced whole, never edited in place.
type AccountState struct {
	RateLimits *quota.Registry

	mu          sync.RWMutex
	profile     Profile
	followerIDs map[PersonID]struct{}
	blockedIDs  map[PersonID]struct{}
	mutedIDs    map[PersonID]struct{}
	noRetweet   map[PersonID]struct{}

	unrecoverable atomic.Bool
}

// NewAccountState returns state for an account known so far only by its id.
func NewAccountState(userID PersonID, userName string) *AccountState {
	return &AccountState{
		RateLimits: quota.New(),
		profile:    Profile{UserID: userID, UserName: userName},
	}
}

// Profile returns a snapshot of the account identity and counters.
func (s *AccountState) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// UserID returns the viewing account's id.
func (s *AccountState) UserID() PersonID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.UserID
}

// UserName returns the viewing account's screen name.
func (s *AccountState) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.UserName
}

// SetProfile replaces identity and counters. A zero UserID keeps the current one.
func (s *AccountState) SetProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.UserID.IsZero() {
		p.UserID = s.profile.UserID
	}
	if p.UserName == "" {
		p.UserName = s.profile.UserName
	}
	s.profile = p
}

// IsMe reports whether id is the viewing account.
func (s *AccountState) IsMe(id PersonID) bool {
	return !id.IsZero() && s.UserID() == id
}

func (s *AccountState) SetFollowerIDs(ids []PersonID) { s.replace(&s.followerIDs, ids) }
func (s *AccountState) SetBlockedIDs(ids []PersonID)  { s.replace(&s.blockedIDs, ids) }
func (s *AccountState) SetMutedIDs(ids []PersonID)    { s.replace(&s.mutedIDs, ids) }
func (s *AccountState) SetNoRetweetIDs(ids []PersonID) {
	s.replace(&s.noRetweet, ids)
}

func (s *AccountState) IsFollower(id PersonID) bool  { return s.has(&s.followerIDs, id) }
func (s *AccountState) IsBlocked(id PersonID) bool   { return s.has(&s.blockedIDs, id) }
func (s *AccountState) IsMuted(id PersonID) bool     { return s.has(&s.mutedIDs, id) }
func (s *AccountState) IsNoRetweet(id PersonID) bool { return s.has(&s.noRetweet, id) }

func (s *AccountState) replace(dst *map[PersonID]struct{}, ids []PersonID) {
	m := make(map[PersonID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	s.mu.Lock()
	*dst = m
	s.mu.Unlock()
}

func (s *AccountState) has(m *map[PersonID]struct{}, id PersonID) bool {
	if id.IsZero() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := (*m)[id]
	return ok
}

// HasUnrecoverableError reports whether the account needs re-authentication.
func (s *AccountState) HasUnrecoverableError() bool { return s.unrecoverable.Load() }

// MarkUnrecoverable sets the sticky re-authentication flag.
func (s *AccountState) MarkUnrecoverable() { s.unrecoverable.Store(true) }

// ResetUnrecoverable clears the flag after a successful re-authentication.
func (s *AccountState) ResetUnrecoverable() { s.unrecoverable.Store(false) }
