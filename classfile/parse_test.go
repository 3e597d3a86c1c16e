package classfile

import (
	"os"
	"path/filepath"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var minimalClass = []byte{
	0xCA, 0xFE, 0xBA, 0xBE, // magic
	0x00, 0x00, // minor
	0x00, 0x34, // major 52
	0x00, 0x02, // count
	0x01, 0x00, 0x01, 0x41, // Utf8 "A"
}

func TestParseMinimalClassFile(t *testing.T) {
	path := writeClass(t, "A.class", minimalClass)

	header, pool, err := ParseClassFile(path)
	require.NoError(t, err)

	assert.Equal(t, Header{Magic: Magic, MinorVersion: 0, MajorVersion: 52, ConstantPoolCount: 2}, header)
	require.Len(t, pool, 1)
	assert.Equal(t, &ConstantUtf8Info{Value: "A"}, pool[0])
	assert.Equal(t, "A", pool.GetUtf8(1))
}

func TestParseFromMemory(t *testing.T) {
	cf, err := Parse(minimalClass, WithPath("mem/A.class"))
	require.NoError(t, err)
	assert.Equal(t, "mem/A.class", cf.Path)
	assert.Equal(t, uint16(52), cf.MajorVersion())
	assert.Equal(t, uint16(0), cf.MinorVersion())
	assert.Equal(t, cf.Header.EntryCount(), len(cf.ConstantPool))
}

func TestParseCountExceedsEntries(t *testing.T) {
	data := append([]byte(nil), minimalClass...)
	data[9] = 0x03

	path := writeClass(t, "Short.class", data)
	_, _, err := ParseClassFile(path)
	require.ErrorIs(t, err, ErrTruncatedInput)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 14, pe.Offset, "second tag sits right after the first entry")
	assert.Equal(t, path, pe.Path)
}

func TestParseInvalidMagic(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x00, 0x00, 0x34, 0x00, 0x02, 0x01, 0x00, 0x01, 0x41}

	t.Run("file", func(t *testing.T) {
		path := writeClass(t, "Bad.class", data)
		header, pool, err := ParseClassFile(path)
		require.ErrorIs(t, err, ErrInvalidFormat)
		assert.Equal(t, Header{}, header)
		assert.Nil(t, pool)

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, uint32(0xDEADBEEF), pe.Magic)
		assert.Equal(t, path, pe.Path)
		assert.Contains(t, err.Error(), "0xDEADBEEF")
	})

	t.Run("stops at offset 4", func(t *testing.T) {
		c := NewCursor(data)
		_, err := ReadHeader(c)
		require.ErrorIs(t, err, ErrInvalidFormat)
		assert.Equal(t, 4, c.Offset())
	})

	t.Run("too short for magic", func(t *testing.T) {
		_, err := Parse([]byte{0xCA, 0xFE})
		require.ErrorIs(t, err, ErrTruncatedInput)
	})
}

func TestParseUnsupportedTag(t *testing.T) {
	data := classBytes(52, 3, utf8Entry("A"), []byte{99, 0x00, 0x01})

	_, err := Parse(data)
	require.ErrorIs(t, err, ErrUnsupportedConstantTag)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ConstantTag(99), pe.Tag)
	assert.Equal(t, 14, pe.Offset)
	assert.Contains(t, err.Error(), "99")
}

func TestParseTruncatedEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry []byte
	}{
		{"fieldref with one index byte", []byte{byte(ConstantFieldref), 0x00}},
		{"fieldref with one index", []byte{byte(ConstantFieldref), 0x00, 0x01}},
		{"class without index", []byte{byte(ConstantClass)}},
		{"nameandtype short", []byte{byte(ConstantNameAndType), 0x00, 0x01, 0x00}},
		{"utf8 without length", []byte{byte(ConstantUtf8), 0x00}},
		{"long short", []byte{byte(ConstantLong), 0, 0, 0, 0, 0, 0, 0}},
		{"methodhandle short", []byte{byte(ConstantMethodHandle), 5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf, err := Parse(classBytes(52, 2, tt.entry))
			require.ErrorIs(t, err, ErrTruncatedInput)
			assert.Nil(t, cf)
		})
	}
}

func TestParseMalformedText(t *testing.T) {
	tests := []struct {
		name  string
		entry []byte
	}{
		{"two-byte lead at end", entry(ConstantUtf8, u2(1), []byte{0xC3})},
		{"three-byte lead missing last", entry(ConstantUtf8, u2(2), []byte{0xE2, 0x82})},
		{"length overruns input", entry(ConstantUtf8, u2(5), []byte{'a', 'b'})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(classBytes(52, 2, tt.entry))
			require.ErrorIs(t, err, ErrMalformedText)
		})
	}
}

func TestParseEmptyPool(t *testing.T) {
	for _, count := range []uint16{0, 1} {
		cf, err := Parse(classBytes(61, count))
		require.NoError(t, err)
		assert.Empty(t, cf.ConstantPool)
		assert.Equal(t, cf.Header.EntryCount(), len(cf.ConstantPool))
	}
}

func TestParseAllEntryKinds(t *testing.T) {
	// Slots 6-7 hold the Long and 8-9 the Double.
	data := classBytes(65, 22,
		utf8Entry("Foo"),
		classEntry(1),
		entry(ConstantString, u2(1)),
		entry(ConstantInteger, []byte{0xFF, 0xFF, 0xFF, 0xFE}),
		entry(ConstantFloat, []byte{0x3F, 0xC0, 0x00, 0x00}),
		entry(ConstantLong, []byte{0, 0, 0, 1, 0, 0, 0, 2}),
		entry(ConstantDouble, []byte{0x40, 0x09, 0x21, 0xFB, 0x54, 0x44, 0x2D, 0x18}),
		utf8Entry("bar"),
		utf8Entry("()V"),
		entry(ConstantNameAndType, u2(10), u2(11)),
		entry(ConstantFieldref, u2(2), u2(12)),
		entry(ConstantMethodref, u2(2), u2(12)),
		entry(ConstantInterfaceMethodref, u2(2), u2(12)),
		entry(ConstantMethodHandle, []byte{byte(RefInvokeStatic)}, u2(14)),
		entry(ConstantMethodType, u2(11)),
		entry(ConstantDynamic, u2(0), u2(12)),
		entry(ConstantInvokeDynamic, u2(1), u2(12)),
		entry(ConstantModule, u2(1)),
		entry(ConstantPackage, u2(1)),
	)

	cf, err := Parse(data)
	require.NoError(t, err)
	cp := cf.ConstantPool
	require.Len(t, cp, 21)
	require.NoError(t, cp.Validate())

	assert.Equal(t, "Foo", cp.GetClassName(2))
	assert.Equal(t, "Foo", cp.GetString(3))

	i, ok := cp.GetInteger(4)
	assert.True(t, ok)
	assert.Equal(t, int32(-2), i)

	f, ok := cp.GetFloat(5)
	assert.True(t, ok)
	assert.Equal(t, float32(1.5), f)

	l, ok := cp.GetLong(6)
	assert.True(t, ok)
	assert.Equal(t, int64(1)<<32|2, l)
	assert.Equal(t, ConstantUnusable, cp[6].Tag())

	d, ok := cp.GetDouble(8)
	assert.True(t, ok)
	assert.InDelta(t, 3.141592653589793, d, 1e-15)
	assert.Equal(t, ConstantUnusable, cp[8].Tag())

	name, desc := cp.GetNameAndType(12)
	assert.Equal(t, "bar", name)
	assert.Equal(t, "()V", desc)

	cn, n, dsc := cp.GetFieldref(13)
	assert.Equal(t, []string{"Foo", "bar", "()V"}, []string{cn, n, dsc})
	cn, n, dsc = cp.GetMethodref(14)
	assert.Equal(t, []string{"Foo", "bar", "()V"}, []string{cn, n, dsc})
	cn, n, dsc = cp.GetInterfaceMethodref(15)
	assert.Equal(t, []string{"Foo", "bar", "()V"}, []string{cn, n, dsc})

	mh := cp.GetMethodHandle(16)
	require.NotNil(t, mh)
	assert.Equal(t, RefInvokeStatic, mh.ReferenceKind)
	assert.Equal(t, uint16(14), mh.ReferenceIndex)

	assert.Equal(t, "()V", cp.GetMethodType(17))
	assert.Equal(t, uint16(12), cp.GetDynamic(18).NameAndTypeIndex)
	assert.Equal(t, uint16(1), cp.GetInvokeDynamic(19).BootstrapMethodAttrIndex)
	assert.Equal(t, "Foo", cp.GetModuleName(20))
	assert.Equal(t, "Foo", cp.GetPackageName(21))
}

func TestParseWideEntryAtEnd(t *testing.T) {
	// A Long in the last declared slot has no room for its marker.
	cf, err := Parse(classBytes(52, 2, entry(ConstantLong, []byte{0, 0, 0, 0, 0, 0, 0, 7})))
	require.NoError(t, err)
	require.Len(t, cf.ConstantPool, 1)
	v, ok := cf.ConstantPool.GetLong(1)
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)
}

func TestParseForwardReference(t *testing.T) {
	cf, err := Parse(classBytes(52, 3, classEntry(2), utf8Entry("com/example/Later")))
	require.NoError(t, err)

	class, ok := cf.ConstantPool[0].(*ConstantClassInfo)
	require.True(t, ok)
	assert.Equal(t, uint16(2), class.NameIndex, "indices are kept raw")
	assert.Equal(t, "com/example/Later", cf.ConstantPool.GetClassName(1))
	assert.NoError(t, cf.ConstantPool.Validate())
}

func TestEntryCountProperty(t *testing.T) {
	property := func(names []string) bool {
		if len(names) > 200 {
			names = names[:200]
		}
		var entries [][]byte
		for i, name := range names {
			if len(encodeModifiedUTF8(name)) > 0xFFFF {
				return true
			}
			entries = append(entries, utf8Entry(name), classEntry(uint16(2*i+1)))
		}
		count := uint16(len(entries) + 1)
		cf, err := Parse(classBytes(52, count, entries...))
		if err != nil {
			t.Log(err)
			return false
		}
		return len(cf.ConstantPool) == int(cf.Header.ConstantPoolCount)-1 &&
			cf.Header.Magic == Magic &&
			cf.ConstantPool.Validate() == nil
	}
	require.NoError(t, quick.Check(property, nil))
}

func TestReadConstantPoolEntryResumable(t *testing.T) {
	entries := [][]byte{
		utf8Entry("héllo"),
		classEntry(1),
		entry(ConstantMethodref, u2(2), u2(4)),
	}
	var stream []byte
	var starts []int
	for _, e := range entries {
		starts = append(starts, len(stream))
		stream = append(stream, e...)
	}

	for i, start := range starts {
		c := NewCursor(stream[start:])
		e, err := ReadConstantPoolEntry(c)
		require.NoError(t, err)
		assert.Equal(t, len(entries[i]), c.Pos(), "entry %d consumes exactly its bytes", i)
		assert.Equal(t, ConstantTag(entries[i][0]), e.Tag())
	}

	pool, err := ReadConstantPool(NewCursor(stream), 4)
	require.NoError(t, err)
	assert.Equal(t, "héllo", pool.GetUtf8(1))
}

func TestParseFileErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Missing.class")
		_, err := ParseFile(path)
		require.ErrorIs(t, err, ErrIO)
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := ParseFile(t.TempDir())
		require.ErrorIs(t, err, ErrIO)
	})

	t.Run("empty", func(t *testing.T) {
		path := writeClass(t, "Empty.class", nil)
		_, err := ParseFile(path)
		require.ErrorIs(t, err, ErrTruncatedInput)
	})
}

func FuzzParse(f *testing.F) {
	f.Add(minimalClass)
	f.Add(classBytes(52, 3, utf8Entry("Foo"), classEntry(1)))
	f.Add(classBytes(52, 4, entry(ConstantDouble, make([]byte, 8)), utf8Entry("x")))
	f.Fuzz(func(t *testing.T, data []byte) {
		cf, err := Parse(data)
		if err != nil {
			require.Nil(t, cf)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			return
		}
		require.Equal(t, cf.Header.EntryCount(), len(cf.ConstantPool))
	})
}
