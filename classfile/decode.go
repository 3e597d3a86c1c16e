package classfile

import "math"

// ReadConstantPool decodes the slots declared by count. The cursor must sit
// at the first tag byte; on success it sits just past the last entry.
func ReadConstantPool(c *Cursor, count uint16) (ConstantPool, error) {
	return textDecoder{}.readPool(c, count)
}

// ReadConstantPoolEntry decodes the single entry starting at the cursor.
// Long and Double are returned without their trailing unusable slot.
func ReadConstantPoolEntry(c *Cursor) (ConstantPoolEntry, error) {
	return textDecoder{}.readEntry(c)
}

func (d textDecoder) readPool(c *Cursor, count uint16) (ConstantPool, error) {
	if count == 0 {
		return ConstantPool{}, nil
	}
	slots := int(count) - 1
	pool := make(ConstantPool, 0, slots)
	for len(pool) < slots {
		entry, err := d.readEntry(c)
		if err != nil {
			return nil, err
		}
		pool = append(pool, entry)
		if wide(entry) && len(pool) < slots {
			pool = append(pool, &ConstantUnusableInfo{})
		}
	}
	return pool, nil
}

func wide(entry ConstantPoolEntry) bool {
	tag := entry.Tag()
	return tag == ConstantLong || tag == ConstantDouble
}

func (d textDecoder) readEntry(c *Cursor) (ConstantPoolEntry, error) {
	start := c.Offset()
	tag := ConstantTag(c.U1())
	if err := c.Err(); err != nil {
		return nil, err
	}

	var entry ConstantPoolEntry
	switch tag {
	case ConstantUtf8:
		length := int(c.U2())
		if err := c.Err(); err != nil {
			return nil, err
		}
		if length > c.Remaining() {
			return nil, malformed(c.Offset(), "declared length overruns input")
		}
		value, err := d.decode(c.Sub(length))
		if err != nil {
			return nil, err
		}
		entry = &ConstantUtf8Info{Value: value}

	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: int32(c.U4())}

	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: math.Float32frombits(c.U4())}

	case ConstantLong:
		high, low := c.U4(), c.U4()
		entry = &ConstantLongInfo{Value: int64(uint64(high)<<32 | uint64(low))}

	case ConstantDouble:
		high, low := c.U4(), c.U4()
		entry = &ConstantDoubleInfo{Value: math.Float64frombits(uint64(high)<<32 | uint64(low))}

	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: c.U2()}

	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: c.U2()}

	case ConstantFieldref:
		classIndex, natIndex := c.U2(), c.U2()
		entry = &ConstantFieldrefInfo{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

	case ConstantMethodref:
		classIndex, natIndex := c.U2(), c.U2()
		entry = &ConstantMethodrefInfo{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

	case ConstantInterfaceMethodref:
		classIndex, natIndex := c.U2(), c.U2()
		entry = &ConstantInterfaceMethodrefInfo{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

	case ConstantNameAndType:
		nameIndex, descIndex := c.U2(), c.U2()
		entry = &ConstantNameAndTypeInfo{NameIndex: nameIndex, DescriptorIndex: descIndex}

	case ConstantMethodHandle:
		kind, refIndex := MethodHandleKind(c.U1()), c.U2()
		entry = &ConstantMethodHandleInfo{ReferenceKind: kind, ReferenceIndex: refIndex}

	case ConstantMethodType:
		entry = &ConstantMethodTypeInfo{DescriptorIndex: c.U2()}

	case ConstantDynamic:
		bsm, natIndex := c.U2(), c.U2()
		entry = &ConstantDynamicInfo{BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: natIndex}

	case ConstantInvokeDynamic:
		bsm, natIndex := c.U2(), c.U2()
		entry = &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: natIndex}

	case ConstantModule:
		entry = &ConstantModuleInfo{NameIndex: c.U2()}

	case ConstantPackage:
		entry = &ConstantPackageInfo{NameIndex: c.U2()}

	default:
		// Entry length depends on the tag, so there is no safe way to skip.
		return nil, &ParseError{Kind: ErrUnsupportedConstantTag, Offset: start, Tag: tag}
	}

	if err := c.Err(); err != nil {
		return nil, err
	}
	return entry, nil
}
