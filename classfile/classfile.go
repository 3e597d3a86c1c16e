// Package classfile decodes the header and constant pool of JVM class files.
package classfile

import (
	"fmt"
	"runtime/debug"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classpool.classfile")

type ClassFile struct {
	Path         string
	Header       Header
	ConstantPool ConstantPool
}

func (cf *ClassFile) MinorVersion() uint16 { return cf.Header.MinorVersion }
func (cf *ClassFile) MajorVersion() uint16 { return cf.Header.MajorVersion }

// ClassNames lists the classes this file refers to. See ConstantPool.ClassNames.
func (cf *ClassFile) ClassNames() []string {
	return cf.ConstantPool.ClassNames()
}

type Option func(*options)

type options struct {
	path          string
	narrowTwoByte bool
	logger        commonlog.Logger
}

// WithPath labels errors from Parse with path.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithNarrowTwoByteForm decodes two-byte text sequences as
// (b1&0x1F)|(b2&0x3F), without shifting the first byte's bits. Some
// older tooling produced strings this way. The default is the JVM rule,
// (b1&0x1F)<<6|(b2&0x3F).
func WithNarrowTwoByteForm() Option {
	return func(o *options) {
		o.narrowTwoByte = true
	}
}

func WithLogger(logger commonlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: log}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ParseClassFile maps the file at path and decodes its header and constant
// pool. The mapping is released before returning, whatever the outcome.
func ParseClassFile(path string, opts ...Option) (Header, ConstantPool, error) {
	cf, err := ParseFile(path, opts...)
	if err != nil {
		return Header{}, nil, err
	}
	return cf.Header, cf.ConstantPool, nil
}

func ParseFile(path string, opts ...Option) (*ClassFile, error) {
	o := newOptions(append(opts[:len(opts):len(opts)], WithPath(path)))
	m, err := openMapped(path)
	if err != nil {
		return nil, err
	}
	return parseMapped(m, o)
}

// openMapped is replaced in tests to observe the mapping's lifetime.
var openMapped = OpenMapped

// parseMapped decodes m and releases it. A fault while reading the mapping,
// such as the file being truncated underneath it, becomes an ErrIO instead
// of killing the process.
func parseMapped(m *MappedFile, o *options) (cf *ClassFile, err error) {
	defer func() {
		if cerr := m.Close(); cerr != nil {
			o.logger.Warning("release mapping", "path", m.Path(), "error", cerr)
		}
	}()
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, fault := r.(interface{ Addr() uintptr }); !fault {
			panic(r)
		}
		cf = nil
		err = ioError(m.Path(), fmt.Errorf("read mapped file: %v", r))
		o.logger.Debug("parse failed", "path", m.Path(), "error", err)
	}()

	// The mapped bytes are only valid until Close; nothing decoded below
	// keeps a reference to them.
	return parse(m.Bytes(), o)
}

// Parse decodes a class file that is already in memory.
func Parse(data []byte, opts ...Option) (*ClassFile, error) {
	return parse(data, newOptions(opts))
}

func parse(data []byte, o *options) (*ClassFile, error) {
	o.logger.Debug("parse", "path", o.path, "size", len(data))

	cf, err := decode(NewCursor(data), o)
	if err != nil {
		err = withPath(err, o.path)
		o.logger.Debug("parse failed", "path", o.path, "error", err)
		return nil, err
	}

	o.logger.Debug("parsed", "path", o.path,
		"major", cf.Header.MajorVersion,
		"minor", cf.Header.MinorVersion,
		"entries", len(cf.ConstantPool))
	return cf, nil
}

func decode(c *Cursor, o *options) (*ClassFile, error) {
	header, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}

	d := textDecoder{narrowTwoByte: o.narrowTwoByte}
	pool, err := d.readPool(c, header.ConstantPoolCount)
	if err != nil {
		return nil, err
	}

	return &ClassFile{
		Path:         o.path,
		Header:       header,
		ConstantPool: pool,
	}, nil
}
