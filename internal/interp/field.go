package interp

import (
	"fmt"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// findFieldWithSuperWalk resolves a field by name on class, walking the
// immediate superclass chain via super_class on a miss. The walk loads
// each ancestor through the resolver and is bounded by the depth at
// which super_class becomes 0.
func (e *Engine) findFieldWithSuperWalk(class *classfile.ClassFile, name string) (*classfile.ClassFile, int, error) {
	cur := class
	for {
		if idx, ok := cur.FindField(name); ok {
			return cur, idx, nil
		}
		if cur.SuperName == "" {
			return nil, 0, vmerr.Invariant("interp.findField", fmt.Errorf("field %q not found on %s or any superclass", name, class.BinaryName))
		}
		super, err := e.Resolver.Resolve(cur.SuperName)
		if err != nil {
			return nil, 0, err
		}
		cur = super
	}
}

// checkFieldDescriptor rejects the unsupported D/F primitive field types; J
// (long) is fully supported, as is every reference/array first character.
func checkFieldDescriptor(desc string) error {
	if len(desc) == 0 {
		return fmt.Errorf("empty field descriptor")
	}
	switch desc[0] {
	case 'D', 'F':
		return vmerr.Execution("interp.field", fmt.Errorf("descriptor %q: floating point fields are not supported", desc))
	}
	return nil
}

func (e *Engine) getstatic(f *runtime.Frame, cpIdx uint16) error {
	ref, err := f.Class.ConstantPool.FieldRef(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.getstatic", err)
	}
	owner, err := e.Resolver.Resolve(ref.ClassName)
	if err != nil {
		return err
	}
	if err := checkFieldDescriptor(ref.Descriptor); err != nil {
		return err
	}
	owner, idx, err := e.findFieldWithSuperWalk(owner, ref.Name)
	if err != nil {
		return err
	}
	if err := f.Stack.Push(owner.Fields[idx].Value); err != nil {
		return execErr(f, err)
	}
	return nil
}

func (e *Engine) putstatic(f *runtime.Frame, cpIdx uint16) error {
	ref, err := f.Class.ConstantPool.FieldRef(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.putstatic", err)
	}
	owner, err := e.Resolver.Resolve(ref.ClassName)
	if err != nil {
		return err
	}
	if err := checkFieldDescriptor(ref.Descriptor); err != nil {
		return err
	}
	owner, idx, err := e.findFieldWithSuperWalk(owner, ref.Name)
	if err != nil {
		return err
	}
	val, err := f.Stack.Pop()
	if err != nil {
		return execErr(f, err)
	}
	owner.Fields[idx].Value = coerceFieldValue(ref.Descriptor, val)
	return nil
}

func (e *Engine) getfield(f *runtime.Frame, cpIdx uint16) error {
	ref, err := f.Class.ConstantPool.FieldRef(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.getfield", err)
	}
	if err := checkFieldDescriptor(ref.Descriptor); err != nil {
		return err
	}
	objRef, err := f.Stack.PopRef()
	if err != nil {
		return execErr(f, err)
	}
	obj, err := e.Objects.Get(objRef)
	if err != nil {
		return execErr(f, err)
	}
	idx, ok := obj.Class.FindField(ref.Name)
	if !ok {
		return vmerr.Invariant("interp.getfield", fmt.Errorf("field %q not found on instance of %s", ref.Name, obj.Class.BinaryName))
	}
	if err := f.Stack.Push(obj.Cells[idx]); err != nil {
		return execErr(f, err)
	}
	return nil
}

func (e *Engine) putfield(f *runtime.Frame, cpIdx uint16) error {
	ref, err := f.Class.ConstantPool.FieldRef(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.putfield", err)
	}
	if err := checkFieldDescriptor(ref.Descriptor); err != nil {
		return err
	}
	val, err := f.Stack.Pop()
	if err != nil {
		return execErr(f, err)
	}
	objRef, err := f.Stack.PopRef()
	if err != nil {
		return execErr(f, err)
	}
	obj, err := e.Objects.Get(objRef)
	if err != nil {
		return execErr(f, err)
	}
	idx, ok := obj.Class.FindField(ref.Name)
	if !ok {
		return vmerr.Invariant("interp.putfield", fmt.Errorf("field %q not found on instance of %s", ref.Name, obj.Class.BinaryName))
	}
	obj.Cells[idx] = coerceFieldValue(ref.Descriptor, val)
	return nil
}

// coerceFieldValue narrows a popped cell per the descriptor's first
// character: B/C/S/Z as byte, I as int, J as long, L/[ as reference.
func coerceFieldValue(descriptor string, val vmvalue.Cell) vmvalue.Cell {
	if len(descriptor) == 0 {
		return val
	}
	switch descriptor[0] {
	case 'B', 'C', 'S', 'Z':
		return vmvalue.Byte(int8(val.AsInt64()))
	case 'I':
		return vmvalue.Int(val.AsInt32())
	case 'J':
		return vmvalue.Long(val.AsInt64())
	default: // L..., [, [[
		return val
	}
}
