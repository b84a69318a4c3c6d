package misskey

// user is the packed user object embedded in notes.
type user struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Host      *string `json:"host"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
	IsLocked  bool    `json:"isLocked"`
}

// acct is username for local users and username@host for remote ones.
func (u *user) acct() string {
	if u.Host != nil && *u.Host != "" {
		return u.Username + "@" + *u.Host
	}
	return u.Username
}

func (u *user) displayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Username
}

// me is the response of the "i" endpoint.
type me struct {
	user
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
	NotesCount     int `json:"notesCount"`
}

type driveFile struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// note is the packed note object. reply and renote are included one level
// deep by the server.
type note struct {
	ID         string      `json:"id"`
	CreatedAt  string      `json:"createdAt"`
	Text       *string     `json:"text"`
	CW         *string     `json:"cw"`
	UserID     string      `json:"userId"`
	User       user        `json:"user"`
	ReplyID    *string     `json:"replyId"`
	RenoteID   *string     `json:"renoteId"`
	Reply      *note       `json:"reply"`
	Renote     *note       `json:"renote"`
	Visibility string      `json:"visibility"`
	Mentions   []string    `json:"mentions"`
	Files      []driveFile `json:"files"`
	URI        *string     `json:"uri"`
	URL        *string     `json:"url"`
}

func (n *note) text() string {
	if n.Text == nil {
		return ""
	}
	return *n.Text
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// favorite is an i/favorites record. Its id, not the note's, pages the list.
type favorite struct {
	ID     string `json:"id"`
	NoteID string `json:"noteId"`
	Note   *note  `json:"note"`
}

type createdNote struct {
	CreatedNote *note `json:"createdNote"`
}

// userRecord covers blocking/list, mute/list and renote-mute/list entries.
type userRecord struct {
	ID        string `json:"id"`
	BlockeeID string `json:"blockeeId"`
	MuteeID   string `json:"muteeId"`
}

// Meta is the subset of server metadata the client keeps.
type Meta struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	MaxNoteTextLength int    `json:"maxNoteTextLength"`
}
