// Package classfile decodes the binary, big-endian, tag-dispatched subset
// of the Java class file format described by the project: constant pool,
// methods with their Code attribute, fields, and an optional
// BootstrapMethods attribute.
package classfile

import "github.com/halsted/minijvm/internal/vmvalue"

// Code holds a method's executable bytecode and frame-sizing metadata.
type Code struct {
	MaxStack  uint16
	MaxLocals uint16
	Bytes     []byte
}

// Method is one entry of the methods table. The decoded methods slice
// holds exactly methods_count entries; there is no terminating sentinel
// entry, and lookups range over the slice.
type Method struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Code        Code // zero value for native methods
	Native      bool
}

const (
	accStatic = 0x0008
	accNative = 0x0100
)

// AccessFlagsStatic reports whether the method's ACC_STATIC bit is set.
func (m Method) AccessFlagsStatic() bool {
	return m.AccessFlags&accStatic != 0
}

// ParamCount derives the argument count from the descriptor the way the
// original source does: by character length rather than parsing type
// signatures. This is only correct for single-character primitive
// parameters and is preserved deliberately, not "fixed": param count is
// len(descriptor) - 3, which accounts for the two parens and one
// character of the return type around a single-char-per-param list.
func (m Method) ParamCount() int {
	n := len(m.Descriptor) - 3
	if n < 0 {
		return 0
	}
	return n
}

// Field is one entry of the fields (or instance layout) table. Value
// holds the static storage cell; instance fields use this table purely
// as a positional layout template, not as storage.
type Field struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Value       vmvalue.Cell
}

// BootstrapMethod is one entry of an optional class-level BootstrapMethods
// attribute, used by invokedynamic call sites.
type BootstrapMethod struct {
	MethodRef uint16
	Arguments []uint16
}

// ClassFile is the fully decoded in-memory form of one .class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16

	ConstantPool *ConstantPool

	AccessFlags uint16
	ThisClass   uint16
	SuperClass  uint16

	Interfaces []uint16
	Fields     []Field
	Methods    []Method

	Bootstrap []BootstrapMethod

	// BinaryName is the resolved name of ThisClass, cached at decode time.
	BinaryName string
	// SuperName is the resolved name of SuperClass, or "" if SuperClass is 0.
	SuperName string
}

// FindMethod linearly searches the methods table by name and descriptor.
func (c *ClassFile) FindMethod(name, descriptor string) (*Method, bool) {
	for i := range c.Methods {
		m := &c.Methods[i]
		if m.Name == name && m.Descriptor == descriptor {
			return m, true
		}
	}
	return nil, false
}

// FindField linearly searches the fields table by name.
func (c *ClassFile) FindField(name string) (int, bool) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return i, true
		}
	}
	return 0, false
}
