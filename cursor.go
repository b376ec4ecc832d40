package desub

// Cursor is a logical position into an input buffer. Every primitive decode
// in this module advances a Cursor rather than slicing and reslicing the
// input, so callers can always ask how much of the input was consumed.
//
// Boundary checks mirror the teacher's offset-and-size overflow-safe style
// (see DESIGN.md): every read validates offset+n against the buffer length
// before touching memory, and never panics on a short buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for reading from position 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.pos
}

// Bytes returns the full underlying buffer (not just the unread portion).
func (c *Cursor) Bytes() []byte { return c.buf }

// Rest returns the unread portion of the buffer without advancing.
func (c *Cursor) Rest() []byte { return c.buf[c.pos:] }

// Seek repositions the cursor to an absolute offset. It does not validate
// the offset; callers that seek past the end will see Remaining() go
// negative-safe (zero), and subsequent reads fail with ErrNeedMoreBytes.
func (c *Cursor) Seek(pos int) { c.pos = pos }

// ReadByte consumes and returns a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.Remaining() < 1 {
		return 0, ErrNeedMoreBytes
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// PeekByte returns the next byte without advancing the cursor.
func (c *Cursor) PeekByte() (byte, error) {
	if c.Remaining() < 1 {
		return 0, ErrNeedMoreBytes
	}
	return c.buf[c.pos], nil
}

// ReadBytes consumes and returns the next n bytes. The returned slice
// aliases the underlying buffer; callers that need an owned copy (the value
// model does, per spec.md's ownership invariant) must clone it themselves.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, ErrNeedMoreBytes
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// CloneBytes consumes the next n bytes and returns an owned copy, per the
// "value tree must not reference metadata/input buffers" invariant.
func (c *Cursor) CloneBytes(n int) ([]byte, error) {
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
