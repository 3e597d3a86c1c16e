package classfile

import (
	"errors"
	"fmt"
)

var (
	ErrIO                     = errors.New("classfile: i/o error")
	ErrInvalidFormat          = errors.New("classfile: invalid format")
	ErrUnsupportedConstantTag = errors.New("classfile: unsupported constant tag")
	ErrMalformedText          = errors.New("classfile: malformed modified utf-8")
	ErrTruncatedInput         = errors.New("classfile: truncated input")
	ErrBadIndex               = errors.New("classfile: bad constant pool index")
)

// ParseError describes why a parse was aborted. Kind is one of the
// sentinel errors above, so errors.Is works against it directly.
type ParseError struct {
	Kind   error
	Path   string
	Offset int // -1 when the failure has no byte position
	Tag    ConstantTag
	Magic  uint32
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	switch {
	case errors.Is(e.Kind, ErrInvalidFormat):
		msg = fmt.Sprintf("%s: bad magic 0x%08X (expected 0x%08X)", msg, e.Magic, uint32(Magic))
	case errors.Is(e.Kind, ErrUnsupportedConstantTag):
		msg = fmt.Sprintf("%s %d", msg, e.Tag)
	}
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func truncated(offset, want, have int) *ParseError {
	return &ParseError{
		Kind:   ErrTruncatedInput,
		Offset: offset,
		Err:    fmt.Errorf("need %d bytes, %d left", want, have),
	}
}

func malformed(offset int, cause string) *ParseError {
	return &ParseError{
		Kind:   ErrMalformedText,
		Offset: offset,
		Err:    errors.New(cause),
	}
}

// withPath stamps path onto err if it is a *ParseError without one.
func withPath(err error, path string) error {
	var pe *ParseError
	if path != "" && errors.As(err, &pe) && pe.Path == "" {
		pe.Path = path
	}
	return err
}
