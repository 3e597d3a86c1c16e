package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dhamidi/classpool/classfile"
)

// classData is the document shape shared by the JSON and YAML encoders.
type classData struct {
	Path              string      `json:"path,omitempty" yaml:"path,omitempty"`
	Magic             string      `json:"magic" yaml:"magic"`
	Version           versionData `json:"version" yaml:"version"`
	ConstantPoolCount uint16      `json:"constantPoolCount" yaml:"constantPoolCount"`
	Entries           []entryData `json:"entries" yaml:"entries"`
}

type versionData struct {
	Major uint16 `json:"major" yaml:"major"`
	Minor uint16 `json:"minor" yaml:"minor"`
}

type entryData struct {
	Index    uint16   `json:"index" yaml:"index"`
	Kind     string   `json:"kind" yaml:"kind"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
	Refs     []uint16 `json:"refs,omitempty" yaml:"refs,omitempty,flow"`
	Resolved string   `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

func buildClassData(c *classfile.ClassFile) classData {
	data := classData{
		Path:              c.Path,
		Magic:             fmt.Sprintf("0x%08X", c.Header.Magic),
		ConstantPoolCount: c.Header.ConstantPoolCount,
		Version: versionData{
			Major: c.MajorVersion(),
			Minor: c.MinorVersion(),
		},
		Entries: make([]entryData, len(c.ConstantPool)),
	}
	for i := range c.ConstantPool {
		data.Entries[i] = describe(c.ConstantPool, uint16(i+1))
	}
	return data
}

// describe summarises the entry at index: its literal value if it has one,
// the raw indices it refers to and a human readable resolution of them.
func describe(cp classfile.ConstantPool, index uint16) entryData {
	entry := cp[index-1]
	d := entryData{Index: index, Kind: entry.Tag().String()}

	switch e := entry.(type) {
	case *classfile.ConstantUtf8Info:
		d.Value = e.Value
	case *classfile.ConstantIntegerInfo:
		d.Value = e.Value
	case *classfile.ConstantFloatInfo:
		d.Value = finite(float64(e.Value), e.Value)
	case *classfile.ConstantLongInfo:
		d.Value = e.Value
	case *classfile.ConstantDoubleInfo:
		d.Value = finite(e.Value, e.Value)
	case *classfile.ConstantClassInfo:
		d.Refs = []uint16{e.NameIndex}
		d.Resolved = cp.GetClassName(index)
	case *classfile.ConstantStringInfo:
		d.Refs = []uint16{e.StringIndex}
		d.Resolved = cp.GetString(index)
	case classfile.MemberRef:
		classIndex, natIndex := e.Refs()
		d.Refs = []uint16{classIndex, natIndex}
		d.Resolved = memberString(cp, classIndex, natIndex)
	case *classfile.ConstantNameAndTypeInfo:
		d.Refs = []uint16{e.NameIndex, e.DescriptorIndex}
		name, desc := cp.GetNameAndType(index)
		d.Resolved = name + ":" + desc
	case *classfile.ConstantMethodHandleInfo:
		d.Value = e.ReferenceKind.String()
		d.Refs = []uint16{e.ReferenceIndex}
		if ref, ok := entryAt(cp, e.ReferenceIndex).(classfile.MemberRef); ok {
			classIndex, natIndex := ref.Refs()
			d.Resolved = memberString(cp, classIndex, natIndex)
		}
	case *classfile.ConstantMethodTypeInfo:
		d.Refs = []uint16{e.DescriptorIndex}
		d.Resolved = cp.GetMethodType(index)
	case *classfile.ConstantDynamicInfo:
		d.Refs = []uint16{e.BootstrapMethodAttrIndex, e.NameAndTypeIndex}
		d.Resolved = bootstrapString(cp, e.BootstrapMethodAttrIndex, e.NameAndTypeIndex)
	case *classfile.ConstantInvokeDynamicInfo:
		d.Refs = []uint16{e.BootstrapMethodAttrIndex, e.NameAndTypeIndex}
		d.Resolved = bootstrapString(cp, e.BootstrapMethodAttrIndex, e.NameAndTypeIndex)
	case *classfile.ConstantModuleInfo:
		d.Refs = []uint16{e.NameIndex}
		d.Resolved = cp.GetModuleName(index)
	case *classfile.ConstantPackageInfo:
		d.Refs = []uint16{e.NameIndex}
		d.Resolved = cp.GetPackageName(index)
	}
	return d
}

// finite keeps v as is unless f is NaN or infinite, which JSON cannot
// carry; those become their strconv spelling.
func finite(f float64, v any) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return v
}

func entryAt(cp classfile.ConstantPool, index uint16) classfile.ConstantPoolEntry {
	e, err := cp.Entry(index)
	if err != nil {
		return nil
	}
	return e
}

func memberString(cp classfile.ConstantPool, classIndex, natIndex uint16) string {
	name, desc := cp.GetNameAndType(natIndex)
	return cp.GetClassName(classIndex) + "." + name + ":" + desc
}

func bootstrapString(cp classfile.ConstantPool, bsm, natIndex uint16) string {
	name, desc := cp.GetNameAndType(natIndex)
	return "#" + strconv.Itoa(int(bsm)) + ":" + name + ":" + desc
}
