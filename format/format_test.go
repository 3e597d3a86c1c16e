package format

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/classpool/classfile"
)

func sampleClass() *classfile.ClassFile {
	return &classfile.ClassFile{
		Path: "Hello.class",
		Header: classfile.Header{
			Magic:             classfile.Magic,
			MajorVersion:      52,
			ConstantPoolCount: 11,
		},
		ConstantPool: classfile.ConstantPool{
			&classfile.ConstantUtf8Info{Value: "Hello"},
			&classfile.ConstantClassInfo{NameIndex: 1},
			&classfile.ConstantUtf8Info{Value: "greet"},
			&classfile.ConstantUtf8Info{Value: "()V"},
			&classfile.ConstantNameAndTypeInfo{NameIndex: 3, DescriptorIndex: 4},
			&classfile.ConstantMethodrefInfo{ClassIndex: 2, NameAndTypeIndex: 5},
			&classfile.ConstantStringInfo{StringIndex: 3},
			&classfile.ConstantLongInfo{Value: 42},
			&classfile.ConstantUnusableInfo{},
			&classfile.ConstantMethodHandleInfo{ReferenceKind: classfile.RefInvokeStatic, ReferenceIndex: 6},
		},
	}
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf).Encode(sampleClass()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "class\tHello.class\t52.0\t11", lines[0])
	assert.Equal(t, "#1\tUtf8\t\"Hello\"", lines[1])
	assert.Equal(t, "#2\tClass\t#1 // Hello", lines[2])
	assert.Equal(t, "#5\tNameAndType\t#3.#4 // greet:()V", lines[5])
	assert.Equal(t, "#6\tMethodref\t#2.#5 // Hello.greet:()V", lines[6])
	assert.Equal(t, "#8\tLong\t42", lines[8])
	assert.Equal(t, "#9\tUnusable\t", lines[9])
	assert.Equal(t, "#10\tMethodHandle\tREF_invokeStatic #6 // Hello.greet:()V", lines[10])
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(sampleClass()))

	var got classData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "0xCAFEBABE", got.Magic)
	assert.Equal(t, uint16(52), got.Version.Major)
	require.Len(t, got.Entries, 10)
	assert.Equal(t, "Hello", got.Entries[0].Value)
	assert.Equal(t, []uint16{2, 5}, got.Entries[5].Refs)
	assert.Equal(t, float64(42), got.Entries[7].Value)
}

func TestJSONEncoderNonFiniteDouble(t *testing.T) {
	class := &classfile.ClassFile{
		Header: classfile.Header{Magic: classfile.Magic, ConstantPoolCount: 3},
		ConstantPool: classfile.ConstantPool{
			&classfile.ConstantDoubleInfo{Value: math.NaN()},
			&classfile.ConstantUnusableInfo{},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(class))
	assert.Contains(t, buf.String(), `"NaN"`)
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLEncoder(&buf).Encode(sampleClass()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Hello.class", got["path"])
	assert.Equal(t, 11, got["constantPoolCount"])

	entries, ok := got["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 10)
	second := entries[1].(map[string]any)
	assert.Equal(t, "Class", second["kind"])
	assert.Equal(t, "Hello", second["resolved"])
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		enc, err := New(name, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, enc)
	}

	_, err := New("xml", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
