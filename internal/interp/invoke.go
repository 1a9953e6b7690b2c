package interp

import (
	"fmt"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// popArgs pops n cells off the stack in reverse order (the last-pushed
// argument is popped first) and returns them in left-to-right order,
// ready to install into locals[base..base+n).
func popArgs(f *runtime.Frame, n int) ([]vmvalue.Cell, error) {
	args := make([]vmvalue.Cell, n)
	for i := n - 1; i >= 0; i-- {
		c, err := f.Stack.Pop()
		if err != nil {
			return nil, err
		}
		args[i] = c
	}
	return args, nil
}

func (e *Engine) resolveMethod(f *runtime.Frame, cpIdx uint16) (*classfile.ClassFile, *classfile.Method, classfile.RefInfo, error) {
	ref, err := f.Class.ConstantPool.MethodRef(cpIdx)
	if err != nil {
		return nil, nil, ref, vmerr.Decode("interp.invoke", err)
	}
	owner, err := e.Resolver.Resolve(ref.ClassName)
	if err != nil {
		return nil, nil, ref, err
	}
	method, ok := owner.FindMethod(ref.Name, ref.Descriptor)
	if !ok {
		return nil, nil, ref, vmerr.Invariant("interp.invoke", fmt.Errorf("method %s.%s%s not found", ref.ClassName, ref.Name, ref.Descriptor))
	}
	return owner, method, ref, nil
}

// pushReturn pushes a returned cell onto the caller's stack according to
// its tag; an empty cell (void return) pushes nothing.
func pushReturn(f *runtime.Frame, ret vmvalue.Cell) error {
	if ret.Tag == vmvalue.TagEmpty {
		return nil
	}
	return f.Stack.Push(ret)
}

func (e *Engine) invokeStatic(f *runtime.Frame, cpIdx uint16) error {
	owner, method, ref, err := e.resolveMethod(f, cpIdx)
	if err != nil {
		return err
	}
	n := method.ParamCount()
	args, err := popArgs(f, n)
	if err != nil {
		return execErr(f, err)
	}

	ret, err := e.callMethod(owner, method, args, 0)
	if err != nil {
		return err
	}
	if err := pushReturn(f, ret); err != nil {
		return execErr(f, fmt.Errorf("invokestatic %s.%s: %w", ref.ClassName, ref.Name, err))
	}
	return nil
}

// invokeSpecial implements the constructor-style calling convention: pop
// n args into locals 1..n, pop "this" into local 0, recurse.
func (e *Engine) invokeSpecial(f *runtime.Frame, cpIdx uint16) error {
	owner, method, ref, err := e.resolveMethod(f, cpIdx)
	if err != nil {
		return err
	}
	n := method.ParamCount()
	args, err := popArgs(f, n)
	if err != nil {
		return execErr(f, err)
	}
	this, err := f.Stack.PopRef()
	if err != nil {
		return execErr(f, err)
	}

	ret, err := e.callMethod(owner, method, args, this)
	if err != nil {
		return err
	}
	if ref.Name == "<init>" && ret.Tag != vmvalue.TagEmpty {
		return vmerr.Invariant("interp.invokespecial", fmt.Errorf("<init> must return void"))
	}
	return pushReturn(f, ret)
}

// invokeVirtual shares invokespecial's calling convention but takes two
// fast paths ahead of resolution: a no-op for java/lang/Object, and a
// direct print to standard output for java/io/PrintStream.
func (e *Engine) invokeVirtual(f *runtime.Frame, cpIdx uint16) error {
	ref, err := f.Class.ConstantPool.MethodRef(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.invokevirtual", err)
	}

	switch ref.ClassName {
	case "java/lang/Object":
		return nil
	case "java/io/PrintStream":
		return e.printStreamFastPath(f, ref)
	}

	owner, method, err := e.lookupMethod(ref)
	if err != nil {
		return err
	}
	n := method.ParamCount()
	args, err := popArgs(f, n)
	if err != nil {
		return execErr(f, err)
	}
	this, err := f.Stack.PopRef()
	if err != nil {
		return execErr(f, err)
	}

	ret, err := e.callMethod(owner, method, args, this)
	if err != nil {
		return err
	}
	return pushReturn(f, ret)
}

func (e *Engine) lookupMethod(ref classfile.RefInfo) (*classfile.ClassFile, *classfile.Method, error) {
	owner, err := e.Resolver.Resolve(ref.ClassName)
	if err != nil {
		return nil, nil, err
	}
	method, ok := owner.FindMethod(ref.Name, ref.Descriptor)
	if !ok {
		return nil, nil, vmerr.Invariant("interp.invoke", fmt.Errorf("method %s.%s%s not found", ref.ClassName, ref.Name, ref.Descriptor))
	}
	return owner, method, nil
}

// callMethod builds a fresh locals array (local 0 reserved for "this"
// when the method is not static) and recurses into Execute, which routes
// native methods to the fast path.
func (e *Engine) callMethod(owner *classfile.ClassFile, method *classfile.Method, args []vmvalue.Cell, this int32) (vmvalue.Cell, error) {
	hasThis := !method.AccessFlagsStatic()
	size := len(args)
	base := 0
	if hasThis {
		size++
		base = 1
	}
	if int(method.Code.MaxLocals) > size {
		size = int(method.Code.MaxLocals)
	}

	locals := runtime.NewLocals(size)
	if hasThis {
		if err := locals.Set(0, vmvalue.Reference(this)); err != nil {
			return vmvalue.Cell{}, execErrBare(err)
		}
	}
	for i, a := range args {
		if err := locals.Set(base+i, a); err != nil {
			return vmvalue.Cell{}, execErrBare(err)
		}
	}

	return e.Execute(owner, method, locals)
}

func execErrBare(err error) error {
	return vmerr.Invariant("interp.callMethod", err)
}
