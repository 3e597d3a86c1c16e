package classfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"
)

// classBytes assembles a class file prologue followed by raw entries.
func classBytes(major, count uint16, entries ...[]byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(Magic))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, major)
	binary.Write(&buf, binary.BigEndian, count)
	for _, e := range entries {
		buf.Write(e)
	}
	return buf.Bytes()
}

func u2(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func entry(tag ConstantTag, payload ...[]byte) []byte {
	out := []byte{byte(tag)}
	for _, p := range payload {
		out = append(out, p...)
	}
	return out
}

func utf8Entry(s string) []byte {
	text := encodeModifiedUTF8(s)
	return entry(ConstantUtf8, u2(uint16(len(text))), text)
}

func classEntry(nameIndex uint16) []byte {
	return entry(ConstantClass, u2(nameIndex))
}

// encodeModifiedUTF8 is the inverse of the decoder: NUL and 0x80-0x7FF use
// two bytes, the rest of the BMP three, supplementary characters a pair of
// three-byte surrogates.
func encodeModifiedUTF8(s string) []byte {
	var out []byte
	for _, r := range s {
		switch {
		case r != 0 && r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r <= 0xFFFF:
			out = append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
		default:
			hi, lo := utf16.EncodeRune(r)
			for _, s := range []rune{hi, lo} {
				out = append(out, 0xE0|byte(s>>12), 0x80|byte((s>>6)&0x3F), 0x80|byte(s&0x3F))
			}
		}
	}
	return out
}

func writeClass(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
