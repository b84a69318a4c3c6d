package timelines

// Direction says which side of a page a Cursor continues from.
type Direction uint8

const (
	// Top asks for items newer than the cursor position.
	Top Direction = iota + 1
	// Bottom asks for items older than the cursor position.
	Bottom
)

func (d Direction) String() string {
	if d == Top {
		return "top"
	}
	return "bottom"
}

// Cursor is an opaque pagination token. Its payload belongs to the backend
// that produced it and is only readable through CursorAs.
type Cursor struct {
	Direction Direction
	payload   any
}

// NewCursor wraps a backend-specific payload.
func NewCursor(dir Direction, payload any) *Cursor {
	return &Cursor{Direction: dir, payload: payload}
}

// CursorAs narrows the payload of c to T. It returns false when c is nil or
// was produced by a backend using a different payload type.
func CursorAs[T any](c *Cursor) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// PageQuery holds the common timeline fetch parameters.
type PageQuery struct {
	// Count is clamped by each backend to its own maximum.
	Count int
	// Cursor is nil to start from the newest items.
	Cursor    *Cursor
	FirstLoad bool
}

// Page is one fetched timeline slice. Top and Bottom are nil when the
// backend returned nothing.
type Page struct {
	Posts  []*Post
	Top    *Cursor
	Bottom *Cursor
}

// ClampCount bounds n to [1, max]; max <= 0 means no upper bound.
// A non-positive n asks for a full page.
func ClampCount(n, max int) int {
	if n < 1 {
		if max > 0 {
			return max
		}
		return 1
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
