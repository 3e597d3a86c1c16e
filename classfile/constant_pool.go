package classfile

import (
	"fmt"
	"sort"
	"strings"
)

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

// MemberRef is implemented by the three member reference kinds.
type MemberRef interface {
	ConstantPoolEntry
	Refs() (classIndex, nameAndTypeIndex uint16)
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

// ConstantUnusableInfo fills the slot that follows a Long or Double.
type ConstantUnusableInfo struct{}

func (c *ConstantUnusableInfo) Tag() ConstantTag { return ConstantUnusable }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }
func (c *ConstantFieldrefInfo) Refs() (uint16, uint16) {
	return c.ClassIndex, c.NameAndTypeIndex
}

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }
func (c *ConstantMethodrefInfo) Refs() (uint16, uint16) {
	return c.ClassIndex, c.NameAndTypeIndex
}

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }
func (c *ConstantInterfaceMethodrefInfo) Refs() (uint16, uint16) {
	return c.ClassIndex, c.NameAndTypeIndex
}

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return ConstantDynamic }

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() ConstantTag { return ConstantInvokeDynamic }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

// ConstantPool holds the entries in file order. Index i of the class file
// is element i-1; index 0 is reserved and never stored.
type ConstantPool []ConstantPoolEntry

// Entry returns the entry at the 1-based index.
func (cp ConstantPool) Entry(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) > len(cp) {
		return nil, fmt.Errorf("%w: %d (pool has %d slots)", ErrBadIndex, index, len(cp))
	}
	return cp[index-1], nil
}

func entryAs[T ConstantPoolEntry](cp ConstantPool, index uint16) (T, bool) {
	var zero T
	if index == 0 || int(index) > len(cp) {
		return zero, false
	}
	e, ok := cp[index-1].(T)
	return e, ok
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if e, ok := entryAs[*ConstantUtf8Info](cp, index); ok {
		return e.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if e, ok := entryAs[*ConstantClassInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if e, ok := entryAs[*ConstantNameAndTypeInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex), cp.GetUtf8(e.DescriptorIndex)
	}
	return "", ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if e, ok := entryAs[*ConstantStringInfo](cp, index); ok {
		return cp.GetUtf8(e.StringIndex)
	}
	return ""
}

func (cp ConstantPool) GetModuleName(index uint16) string {
	if e, ok := entryAs[*ConstantModuleInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetPackageName(index uint16) string {
	if e, ok := entryAs[*ConstantPackageInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetInteger(index uint16) (int32, bool) {
	e, ok := entryAs[*ConstantIntegerInfo](cp, index)
	if !ok {
		return 0, false
	}
	return e.Value, true
}

func (cp ConstantPool) GetLong(index uint16) (int64, bool) {
	e, ok := entryAs[*ConstantLongInfo](cp, index)
	if !ok {
		return 0, false
	}
	return e.Value, true
}

func (cp ConstantPool) GetFloat(index uint16) (float32, bool) {
	e, ok := entryAs[*ConstantFloatInfo](cp, index)
	if !ok {
		return 0, false
	}
	return e.Value, true
}

func (cp ConstantPool) GetDouble(index uint16) (float64, bool) {
	e, ok := entryAs[*ConstantDoubleInfo](cp, index)
	if !ok {
		return 0, false
	}
	return e.Value, true
}

func (cp ConstantPool) memberRef(ref MemberRef, ok bool) (className, name, descriptor string) {
	if !ok {
		return "", "", ""
	}
	classIndex, natIndex := ref.Refs()
	name, descriptor = cp.GetNameAndType(natIndex)
	return cp.GetClassName(classIndex), name, descriptor
}

func (cp ConstantPool) GetFieldref(index uint16) (className, name, descriptor string) {
	return cp.memberRef(entryAs[*ConstantFieldrefInfo](cp, index))
}

func (cp ConstantPool) GetMethodref(index uint16) (className, name, descriptor string) {
	return cp.memberRef(entryAs[*ConstantMethodrefInfo](cp, index))
}

func (cp ConstantPool) GetInterfaceMethodref(index uint16) (className, name, descriptor string) {
	return cp.memberRef(entryAs[*ConstantInterfaceMethodrefInfo](cp, index))
}

func (cp ConstantPool) GetMethodHandle(index uint16) *ConstantMethodHandleInfo {
	e, _ := entryAs[*ConstantMethodHandleInfo](cp, index)
	return e
}

func (cp ConstantPool) GetMethodType(index uint16) string {
	if e, ok := entryAs[*ConstantMethodTypeInfo](cp, index); ok {
		return cp.GetUtf8(e.DescriptorIndex)
	}
	return ""
}

func (cp ConstantPool) GetDynamic(index uint16) *ConstantDynamicInfo {
	e, _ := entryAs[*ConstantDynamicInfo](cp, index)
	return e
}

func (cp ConstantPool) GetInvokeDynamic(index uint16) *ConstantInvokeDynamicInfo {
	e, _ := entryAs[*ConstantInvokeDynamicInfo](cp, index)
	return e
}

// ClassNames returns the distinct internal names of every class the pool
// refers to, sorted. Array classes are reduced to their element class and
// arrays of primitives are dropped.
func (cp ConstantPool) ClassNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, entry := range cp {
		class, ok := entry.(*ConstantClassInfo)
		if !ok {
			continue
		}
		name := elementClass(cp.GetUtf8(class.NameIndex))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Strings returns the values of all String literals in pool order.
func (cp ConstantPool) Strings() []string {
	var values []string
	for _, entry := range cp {
		if s, ok := entry.(*ConstantStringInfo); ok {
			values = append(values, cp.GetUtf8(s.StringIndex))
		}
	}
	return values
}

func elementClass(name string) string {
	if !strings.HasPrefix(name, "[") {
		return name
	}
	name = strings.TrimLeft(name, "[")
	if strings.HasPrefix(name, "L") && strings.HasSuffix(name, ";") {
		return name[1 : len(name)-1]
	}
	return ""
}

// Validate checks that every index field points at an entry of the kind
// the format requires. Forward references are fine; the whole pool is
// available by the time this runs.
func (cp ConstantPool) Validate() error {
	for i, entry := range cp {
		index := uint16(i + 1)
		var err error
		switch e := entry.(type) {
		case *ConstantClassInfo:
			err = cp.expect(e.NameIndex, ConstantUtf8)
		case *ConstantStringInfo:
			err = cp.expect(e.StringIndex, ConstantUtf8)
		case MemberRef:
			classIndex, natIndex := e.Refs()
			if err = cp.expect(classIndex, ConstantClass); err == nil {
				err = cp.expect(natIndex, ConstantNameAndType)
			}
		case *ConstantNameAndTypeInfo:
			if err = cp.expect(e.NameIndex, ConstantUtf8); err == nil {
				err = cp.expect(e.DescriptorIndex, ConstantUtf8)
			}
		case *ConstantMethodTypeInfo:
			err = cp.expect(e.DescriptorIndex, ConstantUtf8)
		case *ConstantDynamicInfo:
			err = cp.expect(e.NameAndTypeIndex, ConstantNameAndType)
		case *ConstantInvokeDynamicInfo:
			err = cp.expect(e.NameAndTypeIndex, ConstantNameAndType)
		case *ConstantModuleInfo:
			err = cp.expect(e.NameIndex, ConstantUtf8)
		case *ConstantPackageInfo:
			err = cp.expect(e.NameIndex, ConstantUtf8)
		case *ConstantMethodHandleInfo:
			_, err = cp.Entry(e.ReferenceIndex)
		}
		if err != nil {
			return fmt.Errorf("entry #%d (%s): %w", index, entry.Tag(), err)
		}
	}
	return nil
}

func (cp ConstantPool) expect(index uint16, tag ConstantTag) error {
	entry, err := cp.Entry(index)
	if err != nil {
		return err
	}
	if entry.Tag() != tag {
		return fmt.Errorf("%w: #%d is %s, want %s", ErrBadIndex, index, entry.Tag(), tag)
	}
	return nil
}
