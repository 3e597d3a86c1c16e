package classfile

import "encoding/binary"

// Cursor reads big-endian values from an immutable byte slice. The first
// failed read is remembered; later reads return zero values and leave the
// position alone, so a run of reads can be checked once with Err.
type Cursor struct {
	buf   []byte
	pos   int
	limit int
	base  int
	err   error
}

func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b, limit: len(b)}
}

// Offset is the absolute position of the next byte, counted from the
// start of the outermost cursor.
func (c *Cursor) Offset() int { return c.base + c.pos }

func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Limit() int     { return c.limit }
func (c *Cursor) Remaining() int { return c.limit - c.pos }
func (c *Cursor) Err() error     { return c.err }

func (c *Cursor) take(n int) ([]byte, bool) {
	if c.err != nil {
		return nil, false
	}
	if n < 0 || n > c.limit-c.pos {
		c.err = truncated(c.Offset(), n, c.Remaining())
		return nil, false
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, true
}

func (c *Cursor) U1() uint8 {
	b, ok := c.take(1)
	if !ok {
		return 0
	}
	return b[0]
}

func (c *Cursor) U2() uint16 {
	b, ok := c.take(2)
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (c *Cursor) U4() uint32 {
	b, ok := c.take(4)
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Bytes returns the next n bytes without copying them.
func (c *Cursor) Bytes(n int) []byte {
	b, _ := c.take(n)
	return b
}

// Sub carves the next n bytes out as a cursor of their own and moves c
// past them. Offsets reported by the child stay absolute.
func (c *Cursor) Sub(n int) *Cursor {
	start := c.Offset()
	b, ok := c.take(n)
	if !ok {
		return &Cursor{base: start, err: c.err}
	}
	return &Cursor{buf: b, limit: n, base: start}
}
