package classfile

// Header is the fixed ten-byte prologue of a class file.
type Header struct {
	Magic             uint32
	MinorVersion      uint16
	MajorVersion      uint16
	ConstantPoolCount uint16
}

// EntryCount is the number of constant pool slots the header declares.
// Index 0 is reserved, so a count of N describes N-1 slots.
func (h Header) EntryCount() int {
	if h.ConstantPoolCount == 0 {
		return 0
	}
	return int(h.ConstantPoolCount) - 1
}

// ReadHeader reads the header from c, which must sit at offset 0. A magic
// mismatch is reported before any other field is read.
func ReadHeader(c *Cursor) (Header, error) {
	var h Header

	start := c.Offset()
	h.Magic = c.U4()
	if err := c.Err(); err != nil {
		return Header{}, err
	}
	if h.Magic != Magic {
		return Header{}, &ParseError{Kind: ErrInvalidFormat, Offset: start, Magic: h.Magic}
	}

	h.MinorVersion = c.U2()
	h.MajorVersion = c.U2()
	h.ConstantPoolCount = c.U2()
	if err := c.Err(); err != nil {
		return Header{}, err
	}
	return h, nil
}
