package classfile

import (
	"fmt"
	"io"

	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

const magic = 0xCAFEBABE

// Decode reads one class file from r, which may be backed by a plain byte
// slice, a memory-mapped region, or any other io.Reader — the decoder
// never assumes a seekable *os.File, so tests can drive it over
// bytes.NewReader.
func Decode(r io.Reader) (*ClassFile, error) {
	br := NewReader(r)

	got, err := br.U4()
	if err != nil {
		return nil, vmerr.Decode("classfile.magic", err)
	}
	if got != magic {
		return nil, vmerr.Decode("classfile.magic", fmt.Errorf("bad magic %#x", got))
	}

	minor, err := br.U2()
	if err != nil {
		return nil, vmerr.Decode("classfile.version", err)
	}
	major, err := br.U2()
	if err != nil {
		return nil, vmerr.Decode("classfile.version", err)
	}

	cp, err := decodeConstantPool(br)
	if err != nil {
		return nil, vmerr.Decode("classfile.constantpool", err)
	}

	accessFlags, err := br.U2()
	if err != nil {
		return nil, vmerr.Decode("classfile.accessflags", err)
	}
	thisClass, err := br.U2()
	if err != nil {
		return nil, vmerr.Decode("classfile.thisclass", err)
	}
	superClass, err := br.U2()
	if err != nil {
		return nil, vmerr.Decode("classfile.superclass", err)
	}

	interfaces, err := decodeInterfaces(br)
	if err != nil {
		return nil, vmerr.Decode("classfile.interfaces", err)
	}

	fields, err := decodeFields(br, cp)
	if err != nil {
		return nil, vmerr.Decode("classfile.fields", err)
	}

	methods, err := decodeMethods(br, cp)
	if err != nil {
		return nil, vmerr.Decode("classfile.methods", err)
	}

	bootstrap, err := decodeClassAttributes(br, cp)
	if err != nil {
		return nil, vmerr.Decode("classfile.attributes", err)
	}

	binaryName, err := cp.ClassName(thisClass)
	if err != nil {
		return nil, vmerr.Decode("classfile.thisclass.name", err)
	}
	var superName string
	if superClass != 0 {
		superName, err = cp.ClassName(superClass)
		if err != nil {
			return nil, vmerr.Decode("classfile.superclass.name", err)
		}
	}

	return &ClassFile{
		MinorVersion: minor,
		MajorVersion: major,
		ConstantPool: cp,
		AccessFlags:  accessFlags,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Bootstrap:    bootstrap,
		BinaryName:   binaryName,
		SuperName:    superName,
	}, nil
}

func decodeConstantPool(br *Reader) (*ConstantPool, error) {
	count, err := br.U2()
	if err != nil {
		return nil, err
	}
	cp := newConstantPool(int(count))

	for i := uint16(1); i < count; i++ {
		tagByte, err := br.U1()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		tag := Tag(tagByte)

		var c Constant
		c.Tag = tag
		switch tag {
		case TagUtf8:
			c.Utf8, err = br.Utf8()
		case TagInteger:
			c.Int32, err = br.I4()
		case TagClass:
			c.NameIndex, err = br.U2()
		case TagString:
			c.StringIndex, err = br.U2()
		case TagFieldRef, TagMethodRef:
			c.ClassIndex, err = br.U2()
			if err == nil {
				c.NameAndTypeIndex, err = br.U2()
			}
		case TagNameAndType:
			c.NameIndex, err = br.U2()
			if err == nil {
				c.DescriptorIndex, err = br.U2()
			}
		case TagMethodHandle:
			var kind uint8
			kind, err = br.U1()
			c.ReferenceKind = kind
			if err == nil {
				c.ReferenceIndex, err = br.U2()
			}
		case TagInvokeDynamic:
			c.BootstrapMethodAttrIndex, err = br.U2()
			if err == nil {
				c.NameAndTypeIndexDynamic, err = br.U2()
			}
		default:
			return nil, fmt.Errorf("entry %d: unrecognized constant tag %d", i, tagByte)
		}
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		cp.set(i, c)
	}

	return cp, nil
}

func decodeInterfaces(br *Reader) ([]uint16, error) {
	count, err := br.U2()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i], err = br.U2()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeFields(br *Reader, cp *ConstantPool) ([]Field, error) {
	count, err := br.U2()
	if err != nil {
		return nil, err
	}
	out := make([]Field, count)
	for i := range out {
		accessFlags, err := br.U2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := br.U2()
		if err != nil {
			return nil, err
		}
		descIdx, err := br.U2()
		if err != nil {
			return nil, err
		}
		name, err := cp.Utf8At(nameIdx)
		if err != nil {
			return nil, err
		}
		descriptor, err := cp.Utf8At(descIdx)
		if err != nil {
			return nil, err
		}
		if err := skipAttributes(br); err != nil {
			return nil, fmt.Errorf("field %s attributes: %w", name, err)
		}
		out[i] = Field{AccessFlags: accessFlags, Name: name, Descriptor: descriptor, Value: vmvalue.Empty}
	}
	return out, nil
}

func decodeMethods(br *Reader, cp *ConstantPool) ([]Method, error) {
	count, err := br.U2()
	if err != nil {
		return nil, err
	}
	out := make([]Method, count)
	for i := range out {
		accessFlags, err := br.U2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := br.U2()
		if err != nil {
			return nil, err
		}
		descIdx, err := br.U2()
		if err != nil {
			return nil, err
		}
		name, err := cp.Utf8At(nameIdx)
		if err != nil {
			return nil, err
		}
		descriptor, err := cp.Utf8At(descIdx)
		if err != nil {
			return nil, err
		}

		native := accessFlags&accNative != 0

		attrCount, err := br.U2()
		if err != nil {
			return nil, err
		}

		var code Code
		haveCode := false
		for a := uint16(0); a < attrCount; a++ {
			attrNameIdx, err := br.U2()
			if err != nil {
				return nil, err
			}
			attrLen, err := br.U4()
			if err != nil {
				return nil, err
			}
			attrName, err := cp.Utf8At(attrNameIdx)
			if err != nil {
				return nil, err
			}
			if attrName != "Code" {
				if err := br.Skip(int(attrLen)); err != nil {
					return nil, err
				}
				continue
			}
			code, err = decodeCodeAttribute(br)
			if err != nil {
				return nil, fmt.Errorf("method %s code: %w", name, err)
			}
			haveCode = true
		}

		if !haveCode && !native {
			return nil, fmt.Errorf("method %s: missing Code attribute", name)
		}

		out[i] = Method{
			AccessFlags: accessFlags,
			Name:        name,
			Descriptor:  descriptor,
			Code:        code,
			Native:      native,
		}
	}
	return out, nil
}

func decodeCodeAttribute(br *Reader) (Code, error) {
	maxStack, err := br.U2()
	if err != nil {
		return Code{}, err
	}
	maxLocals, err := br.U2()
	if err != nil {
		return Code{}, err
	}
	codeLength, err := br.U4()
	if err != nil {
		return Code{}, err
	}
	bytes, err := br.Bytes(int(codeLength))
	if err != nil {
		return Code{}, err
	}

	// exception table
	excCount, err := br.U2()
	if err != nil {
		return Code{}, err
	}
	if err := br.Skip(int(excCount) * 8); err != nil {
		return Code{}, err
	}

	if err := skipAttributes(br); err != nil {
		return Code{}, err
	}

	return Code{MaxStack: maxStack, MaxLocals: maxLocals, Bytes: bytes}, nil
}

func skipAttributes(br *Reader) error {
	count, err := br.U2()
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		if _, err := br.U2(); err != nil {
			return err
		}
		length, err := br.U4()
		if err != nil {
			return err
		}
		if err := br.Skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

func decodeClassAttributes(br *Reader, cp *ConstantPool) ([]BootstrapMethod, error) {
	count, err := br.U2()
	if err != nil {
		return nil, err
	}
	var bootstrap []BootstrapMethod
	for i := uint16(0); i < count; i++ {
		nameIdx, err := br.U2()
		if err != nil {
			return nil, err
		}
		length, err := br.U4()
		if err != nil {
			return nil, err
		}
		name, err := cp.Utf8At(nameIdx)
		if err != nil {
			return nil, err
		}
		if name != "BootstrapMethods" {
			if err := br.Skip(int(length)); err != nil {
				return nil, err
			}
			continue
		}
		bootstrap, err = decodeBootstrapMethods(br)
		if err != nil {
			return nil, err
		}
	}
	return bootstrap, nil
}

func decodeBootstrapMethods(br *Reader) ([]BootstrapMethod, error) {
	count, err := br.U2()
	if err != nil {
		return nil, err
	}
	out := make([]BootstrapMethod, count)
	for i := range out {
		methodRef, err := br.U2()
		if err != nil {
			return nil, err
		}
		argCount, err := br.U2()
		if err != nil {
			return nil, err
		}
		args := make([]uint16, argCount)
		for j := range args {
			args[j], err = br.U2()
			if err != nil {
				return nil, err
			}
		}
		out[i] = BootstrapMethod{MethodRef: methodRef, Arguments: args}
	}
	return out, nil
}
