package interp

import (
	"fmt"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// ldc pushes an int constant directly, or synthesizes a fresh object-heap
// string for a String constant.
func (e *Engine) ldc(f *runtime.Frame, idx uint16) error {
	raw, err := f.Class.ConstantPool.RawAt(idx)
	if err != nil {
		return vmerr.Decode("interp.ldc", err)
	}
	switch raw.Tag {
	case classfile.TagInteger:
		v, err := f.Class.ConstantPool.IntegerAt(idx)
		if err != nil {
			return vmerr.Decode("interp.ldc", err)
		}
		return checkedPushErr(f, f.Stack.Push(vmvalue.Int(v)))
	case classfile.TagString:
		s, err := f.Class.ConstantPool.StringValue(idx)
		if err != nil {
			return vmerr.Decode("interp.ldc", err)
		}
		ref, err := e.Objects.CreateString(s)
		if err != nil {
			return vmerr.Invariant("interp.ldc", err)
		}
		return checkedPushErr(f, f.Stack.Push(vmvalue.Reference(ref)))
	default:
		return vmerr.Execution("interp.ldc", fmt.Errorf("unsupported constant tag %d at index %d", raw.Tag, idx))
	}
}

func checkedPushErr(f *runtime.Frame, err error) error {
	if err != nil {
		return execErr(f, err)
	}
	return nil
}
