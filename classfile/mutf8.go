package classfile

import (
	"strings"
	"unicode/utf16"
)

type textDecoder struct {
	narrowTwoByte bool
}

// DecodeModifiedUTF8 decodes b as the class-file text encoding. Offsets in
// errors are relative to the start of b.
func DecodeModifiedUTF8(b []byte) (string, error) {
	return textDecoder{}.decode(NewCursor(b))
}

func (d textDecoder) decode(c *Cursor) (string, error) {
	n := c.Remaining()
	var sb strings.Builder
	sb.Grow(n + n/2 + 16)

	var high rune
	flush := func() {
		if high != 0 {
			sb.WriteRune(high)
			high = 0
		}
	}

	for c.Remaining() > 0 {
		start := c.Offset()
		b1 := c.U1()
		if b1&0x80 == 0 {
			flush()
			sb.WriteByte(b1)
			continue
		}

		if c.Remaining() == 0 {
			return "", malformed(start, "missing continuation byte")
		}
		b2 := c.U1()

		var r rune
		if b1&0xF0 != 0xE0 {
			if d.narrowTwoByte {
				r = rune(b1&0x1F) | rune(b2&0x3F)
			} else {
				r = rune(b1&0x1F)<<6 | rune(b2&0x3F)
			}
		} else {
			if c.Remaining() == 0 {
				return "", malformed(start, "missing continuation byte")
			}
			b3 := c.U1()
			r = rune(b1&0x0F)<<12 | rune(b2&0x3F)<<6 | rune(b3&0x3F)
		}

		switch {
		case utf16.IsSurrogate(r) && r < 0xDC00:
			flush()
			high = r
			continue
		case utf16.IsSurrogate(r) && high != 0:
			sb.WriteRune(utf16.DecodeRune(high, r))
			high = 0
			continue
		}
		flush()
		sb.WriteRune(r)
	}
	flush()

	if err := c.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
