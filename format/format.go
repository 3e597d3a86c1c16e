// Package format renders a decoded class file as text.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/classpool/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *classfile.ClassFile) error
}

// Names lists the formats New accepts.
var Names = []string{"line", "json", "yaml"}

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "line", "":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml", "yml":
		return NewYAMLEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Names)
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
