package classfile

import "fmt"

// Tag discriminates a constant-pool entry's payload shape.
type Tag uint8

const (
	TagUtf8          Tag = 1
	TagInteger       Tag = 3
	TagClass         Tag = 7
	TagString        Tag = 8
	TagFieldRef       Tag = 9
	TagMethodRef      Tag = 10
	TagNameAndType    Tag = 12
	TagMethodHandle   Tag = 15
	TagInvokeDynamic  Tag = 18
)

// Constant is one entry of the constant pool. Only the fields relevant to
// its Tag are populated; accessors assert the expected tag and return a
// decode error on mismatch.
type Constant struct {
	Tag Tag

	Utf8 string // TagUtf8

	Int32 int32 // TagInteger

	NameIndex uint16 // TagClass (binary name), TagNameAndType (name)
	StringIndex uint16 // TagString

	ClassIndex       uint16 // TagFieldRef, TagMethodRef
	NameAndTypeIndex uint16 // TagFieldRef, TagMethodRef

	DescriptorIndex uint16 // TagNameAndType

	BootstrapMethodAttrIndex uint16 // TagInvokeDynamic
	NameAndTypeIndexDynamic  uint16 // TagInvokeDynamic

	ReferenceKind  uint8  // TagMethodHandle
	ReferenceIndex uint16 // TagMethodHandle
}

// ConstantPool is the one-indexed table of constants; slot 0 is reserved
// and unused, matching the on-disk constant_pool_count convention.
type ConstantPool struct {
	entries []Constant
}

func newConstantPool(count int) *ConstantPool {
	return &ConstantPool{entries: make([]Constant, count)}
}

func (cp *ConstantPool) set(i uint16, c Constant) {
	cp.entries[i] = c
}

func (cp *ConstantPool) at(i uint16) (Constant, error) {
	if int(i) <= 0 || int(i) >= len(cp.entries) {
		return Constant{}, fmt.Errorf("constant pool index %d out of range [1,%d)", i, len(cp.entries))
	}
	return cp.entries[i], nil
}

// Utf8At returns the string payload of a Utf8 entry.
func (cp *ConstantPool) Utf8At(i uint16) (string, error) {
	c, err := cp.at(i)
	if err != nil {
		return "", err
	}
	if c.Tag != TagUtf8 {
		return "", fmt.Errorf("constant %d: expected Utf8, got tag %d", i, c.Tag)
	}
	return c.Utf8, nil
}

// ClassName resolves a Class constant to its binary name.
func (cp *ConstantPool) ClassName(i uint16) (string, error) {
	c, err := cp.at(i)
	if err != nil {
		return "", err
	}
	if c.Tag != TagClass {
		return "", fmt.Errorf("constant %d: expected Class, got tag %d", i, c.Tag)
	}
	return cp.Utf8At(c.NameIndex)
}

// IntegerAt returns the signed 32-bit payload of an Integer entry.
func (cp *ConstantPool) IntegerAt(i uint16) (int32, error) {
	c, err := cp.at(i)
	if err != nil {
		return 0, err
	}
	if c.Tag != TagInteger {
		return 0, fmt.Errorf("constant %d: expected Integer, got tag %d", i, c.Tag)
	}
	return c.Int32, nil
}

// StringValue resolves a String entry to its referenced Utf8 text.
func (cp *ConstantPool) StringValue(i uint16) (string, error) {
	c, err := cp.at(i)
	if err != nil {
		return "", err
	}
	if c.Tag != TagString {
		return "", fmt.Errorf("constant %d: expected String, got tag %d", i, c.Tag)
	}
	return cp.Utf8At(c.StringIndex)
}

// NameAndType resolves a NameAndType entry to its (name, descriptor) pair.
func (cp *ConstantPool) NameAndType(i uint16) (name, descriptor string, err error) {
	c, err := cp.at(i)
	if err != nil {
		return "", "", err
	}
	if c.Tag != TagNameAndType {
		return "", "", fmt.Errorf("constant %d: expected NameAndType, got tag %d", i, c.Tag)
	}
	name, err = cp.Utf8At(c.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = cp.Utf8At(c.DescriptorIndex)
	if err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// RefInfo is the resolved shape shared by FieldRef and MethodRef: the
// owning class's binary name plus the (name, descriptor) pair.
type RefInfo struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (cp *ConstantPool) resolveRef(i uint16, want Tag) (RefInfo, error) {
	c, err := cp.at(i)
	if err != nil {
		return RefInfo{}, err
	}
	if c.Tag != want {
		return RefInfo{}, fmt.Errorf("constant %d: expected tag %d, got %d", i, want, c.Tag)
	}
	className, err := cp.ClassName(c.ClassIndex)
	if err != nil {
		return RefInfo{}, err
	}
	name, desc, err := cp.NameAndType(c.NameAndTypeIndex)
	if err != nil {
		return RefInfo{}, err
	}
	return RefInfo{ClassName: className, Name: name, Descriptor: desc}, nil
}

// FieldRef resolves a FieldRef constant.
func (cp *ConstantPool) FieldRef(i uint16) (RefInfo, error) {
	return cp.resolveRef(i, TagFieldRef)
}

// MethodRef resolves a MethodRef constant.
func (cp *ConstantPool) MethodRef(i uint16) (RefInfo, error) {
	return cp.resolveRef(i, TagMethodRef)
}

// InvokeDynamicInfo is the resolved shape of an InvokeDynamic constant.
type InvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	Name                     string
	Descriptor               string
}

// InvokeDynamic resolves an InvokeDynamic constant.
func (cp *ConstantPool) InvokeDynamic(i uint16) (InvokeDynamicInfo, error) {
	c, err := cp.at(i)
	if err != nil {
		return InvokeDynamicInfo{}, err
	}
	if c.Tag != TagInvokeDynamic {
		return InvokeDynamicInfo{}, fmt.Errorf("constant %d: expected InvokeDynamic, got tag %d", i, c.Tag)
	}
	name, desc, err := cp.NameAndType(c.NameAndTypeIndexDynamic)
	if err != nil {
		return InvokeDynamicInfo{}, err
	}
	return InvokeDynamicInfo{
		BootstrapMethodAttrIndex: c.BootstrapMethodAttrIndex,
		Name:                     name,
		Descriptor:               desc,
	}, nil
}

// Count returns the number of slots, including the unused slot 0.
func (cp *ConstantPool) Count() int {
	return len(cp.entries)
}

// RawAt exposes the raw constant for disassembly rendering.
func (cp *ConstantPool) RawAt(i uint16) (Constant, error) {
	return cp.at(i)
}
