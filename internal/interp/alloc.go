package interp

import (
	"fmt"

	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

const newarrayTypeInt = 10 // JVM atype code for T_INT

func (e *Engine) opcodeNew(f *runtime.Frame, cpIdx uint16) error {
	className, err := f.Class.ConstantPool.ClassName(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.new", err)
	}
	class, err := e.Resolver.Resolve(className)
	if err != nil {
		return err
	}
	ref, err := e.Objects.CreateObject(class)
	if err != nil {
		return vmerr.Invariant("interp.new", err)
	}
	if err := f.Stack.Push(vmvalue.Reference(ref)); err != nil {
		return execErr(f, err)
	}
	return nil
}

func (e *Engine) newarray(f *runtime.Frame, typeCode uint8) error {
	if typeCode != newarrayTypeInt {
		return vmerr.Execution("interp.newarray", fmt.Errorf("unsupported array element type code %d", typeCode))
	}
	n, err := f.Stack.PopInt32()
	if err != nil {
		return execErr(f, err)
	}
	ref, err := e.Objects.CreateArray(int(n))
	if err != nil {
		return vmerr.Invariant("interp.newarray", err)
	}
	if err := f.Stack.Push(vmvalue.Reference(ref)); err != nil {
		return execErr(f, err)
	}
	return nil
}

// multianewarray supports only two-dimensional int arrays ([[I);
// dimensions are popped in reverse (columns, then rows).
func (e *Engine) multianewarray(f *runtime.Frame, cpIdx uint16, dims uint8) error {
	className, err := f.Class.ConstantPool.ClassName(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.multianewarray", err)
	}
	if className != "[[I" || dims != 2 {
		return vmerr.Execution("interp.multianewarray", fmt.Errorf("unsupported array type %q dims %d, only [[I with 2 dimensions is supported", className, dims))
	}
	cols, err := f.Stack.PopInt32()
	if err != nil {
		return execErr(f, err)
	}
	rows, err := f.Stack.PopInt32()
	if err != nil {
		return execErr(f, err)
	}
	ref, err := e.Objects.CreateTwoDimensionArray(int(rows), int(cols))
	if err != nil {
		return vmerr.Invariant("interp.multianewarray", err)
	}
	if err := f.Stack.Push(vmvalue.Reference(ref)); err != nil {
		return execErr(f, err)
	}
	return nil
}
