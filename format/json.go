package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/classpool/classfile"
)

type JSONEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	text, err := json.MarshalIndent(buildClassData(e.class), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}
