// Package timelines is the multi-backend protocol abstraction and
// timeline-assembly core: identities, cursors, canonical posts, account
// state, the protocol client contract, the timeline filter and the
// conversation resolver.
package timelines

import (
	"cmp"
	"strings"
)

// Network identifies a family of wire-compatible backends sharing one id space.
type Network uint8

const (
	NetworkUnknown Network = iota
	NetworkTwitter
	NetworkMisskey
)

func (n Network) String() string {
	switch n {
	case NetworkTwitter:
		return "twitter"
	case NetworkMisskey:
		return "misskey"
	}
	return "unknown"
}

// PostKind separates disjoint id spaces within one network.
type PostKind uint8

const (
	KindStatus PostKind = iota + 1
	KindDirectMessage
	KindNote
)

func (k PostKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindDirectMessage:
		return "dm"
	case KindNote:
		return "note"
	}
	return "unknown"
}

// PersonID is a network-tagged user id. The zero value means "no user".
type PersonID struct {
	Network Network
	Raw     string
}

// TwitterUserID returns the PersonID of a Twitter user.
func TwitterUserID(raw string) PersonID { return PersonID{Network: NetworkTwitter, Raw: raw} }

// MisskeyUserID returns the PersonID of a Misskey user.
func MisskeyUserID(raw string) PersonID { return PersonID{Network: NetworkMisskey, Raw: raw} }

// IsZero reports whether p is unset.
func (p PersonID) IsZero() bool { return p.Raw == "" }

// Compare orders by network, then by raw id length, then lexicographically.
func (p PersonID) Compare(o PersonID) int {
	if p.Network != o.Network {
		return cmp.Compare(p.Network, o.Network)
	}
	return compareRaw(p.Raw, o.Raw)
}

func (p PersonID) String() string { return p.Network.String() + ":" + p.Raw }

// PostID is a post id tagged by network and kind. The zero value means "no post".
type PostID struct {
	Network Network
	Kind    PostKind
	Raw     string
}

// TwitterStatusID returns the PostID of a Twitter status.
func TwitterStatusID(raw string) PostID {
	return PostID{Network: NetworkTwitter, Kind: KindStatus, Raw: raw}
}

// TwitterDirectMessageID returns the PostID of a Twitter direct message.
func TwitterDirectMessageID(raw string) PostID {
	return PostID{Network: NetworkTwitter, Kind: KindDirectMessage, Raw: raw}
}

// MisskeyNoteID returns the PostID of a Misskey note.
func MisskeyNoteID(raw string) PostID {
	return PostID{Network: NetworkMisskey, Kind: KindNote, Raw: raw}
}

// IsZero reports whether p is unset.
func (p PostID) IsZero() bool { return p.Raw == "" }

// Compare orders by network, kind, raw id length and finally lexicographically.
// Raw ids are never parsed as numbers, they may not fit any integer type.
func (p PostID) Compare(o PostID) int {
	if p.Network != o.Network {
		return cmp.Compare(p.Network, o.Network)
	}
	if p.Kind != o.Kind {
		return cmp.Compare(p.Kind, o.Kind)
	}
	return compareRaw(p.Raw, o.Raw)
}

// Less reports whether p orders before o.
func (p PostID) Less(o PostID) bool { return p.Compare(o) < 0 }

func (p PostID) String() string {
	return p.Network.String() + "/" + p.Kind.String() + "/" + p.Raw
}

// compareRaw orders decimal numerals of different lengths numerically.
func compareRaw(a, b string) int {
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}
	return strings.Compare(a, b)
}
