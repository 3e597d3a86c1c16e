package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/classpool/classfile"
)

// LineEncoder writes a header line followed by one tab-separated line per
// constant pool slot: index, kind, payload.
type LineEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class

	fmt.Fprintf(&sb, "class\t%s\t%d.%d\t%d\n",
		c.Path,
		c.MajorVersion(),
		c.MinorVersion(),
		c.Header.ConstantPoolCount,
	)

	for i := range c.ConstantPool {
		d := describe(c.ConstantPool, uint16(i+1))
		fmt.Fprintf(&sb, "#%d\t%s\t%s\n", d.Index, d.Kind, linePayload(d))
	}

	return []byte(sb.String()), nil
}

func linePayload(d entryData) string {
	var parts []string
	switch v := d.Value.(type) {
	case nil:
	case string:
		if d.Kind == classfile.ConstantUtf8.String() {
			parts = append(parts, strconv.Quote(v))
		} else {
			parts = append(parts, v)
		}
	case float32:
		parts = append(parts, strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	default:
		parts = append(parts, fmt.Sprint(v))
	}
	if len(d.Refs) > 0 {
		refs := make([]string, len(d.Refs))
		for i, r := range d.Refs {
			refs[i] = "#" + strconv.Itoa(int(r))
		}
		parts = append(parts, strings.Join(refs, "."))
	}
	if d.Resolved != "" {
		parts = append(parts, "// "+d.Resolved)
	}
	return strings.Join(parts, " ")
}
