package interp

import (
	"fmt"

	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

func readU1(f *runtime.Frame) uint8 {
	b := f.Method.Code.Bytes[f.PC]
	f.PC++
	return b
}

func readI1(f *runtime.Frame) int8 {
	return int8(readU1(f))
}

func readU2(f *runtime.Frame) uint16 {
	code := f.Method.Code.Bytes
	v := uint16(code[f.PC])<<8 | uint16(code[f.PC+1])
	f.PC += 2
	return v
}

func readI2(f *runtime.Frame) int16 {
	return int16(readU2(f))
}

// dispatch executes exactly one opcode at f.PC, advancing the program
// counter. It returns (returnValue, true, nil) when the opcode is a
// return instruction, or (_, false, nil) to continue the loop.
func (e *Engine) dispatch(f *runtime.Frame, op byte) (vmvalue.Cell, bool, error) {
	opPC := f.PC
	f.PC++ // consume the opcode byte itself

	switch op {
	case opNop:
		// no-op

	case opAconstNull:
		if err := f.Stack.Push(vmvalue.Null); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opIconstM1, opIconst0, opIconst1, opIconst2, opIconst3, opIconst4, opIconst5:
		if err := f.Stack.PushInt(int32(op) - int32(opIconst0)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opLconst0, opLconst1:
		if err := f.Stack.Push(vmvalue.Long(int64(op) - int64(opLconst0))); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opBipush:
		v := readI1(f)
		if err := f.Stack.Push(vmvalue.Byte(v)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opSipush:
		v := readI2(f)
		if err := f.Stack.Push(vmvalue.Short(v)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opLdc:
		idx := readU1(f)
		if err := e.ldc(f, uint16(idx)); err != nil {
			return vmvalue.Cell{}, false, err
		}

	case opLdc2W:
		idx := readU2(f)
		v, err := f.Class.ConstantPool.IntegerAt(idx)
		if err == nil {
			// single-width long constant not modeled separately; reuse
			// Integer slot widened to 64 bits when present.
			if err := f.Stack.Push(vmvalue.Long(int64(v))); err != nil {
				return vmvalue.Cell{}, false, execErr(f, err)
			}
			break
		}
		return vmvalue.Cell{}, false, execErr(f, fmt.Errorf("ldc2_w: unsupported constant at %d", idx))

	case opIload, opLload, opAload:
		idx := readU1(f)
		if err := loadLocal(f, int(idx)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opIload0, opIload1, opIload2, opIload3:
		if err := loadLocal(f, int(op-opIload0)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
	case opLload0, opLload1, opLload2, opLload3:
		if err := loadLocal(f, int(op-opLload0)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
	case opAload0, opAload1, opAload2, opAload3:
		if err := loadLocal(f, int(op-opAload0)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opIstore, opLstore, opAstore:
		idx := readU1(f)
		if err := f.Stack.PopToLocal(f.Locals, int(idx)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opIstore0, opIstore1, opIstore2, opIstore3:
		if err := f.Stack.PopToLocal(f.Locals, int(op-opIstore0)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
	case opLstore0, opLstore1, opLstore2, opLstore3:
		if err := f.Stack.PopToLocal(f.Locals, int(op-opLstore0)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
	case opAstore0, opAstore1, opAstore2, opAstore3:
		if err := f.Stack.PopToLocal(f.Locals, int(op-opAstore0)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opDup:
		top, err := f.Stack.Peek()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		if err := f.Stack.Push(top); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opDup2:
		top, err := f.Stack.Peek()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		if top.Tag == vmvalue.TagLong {
			if err := f.Stack.Push(top); err != nil {
				return vmvalue.Cell{}, false, execErr(f, err)
			}
		} else {
			second, err := f.Stack.Pop()
			if err != nil {
				return vmvalue.Cell{}, false, execErr(f, err)
			}
			first, err := f.Stack.Pop()
			if err != nil {
				return vmvalue.Cell{}, false, execErr(f, err)
			}
			for _, c := range []vmvalue.Cell{first, second, first, second} {
				if err := f.Stack.Push(c); err != nil {
					return vmvalue.Cell{}, false, execErr(f, err)
				}
			}
		}

	case opIadd, opIsub, opImul, opIdiv, opIrem, opIneg,
		opLadd, opLsub, opLmul, opLdiv:
		if err := e.arith(f, op); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opIinc:
		idx := readU1(f)
		delta := readI1(f)
		cur, err := f.Locals.Get(int(idx))
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		if err := f.Locals.Set(int(idx), vmvalue.Int(cur.AsInt32()+int32(delta))); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opI2l:
		v, err := f.Stack.PopInt64()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		if err := f.Stack.Push(vmvalue.Long(v)); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opI2c:
		v, err := f.Stack.PopInt32()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		if err := f.Stack.PushInt(int32(uint16(v))); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opLcmp:
		b, err := f.Stack.PopInt64()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		a, err := f.Stack.PopInt64()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		// Pushes -1 when a < b, 0 when equal, 1 when a > b, per the real
		// JVM specification (see DESIGN.md open-question decisions).
		var r int32
		switch {
		case a < b:
			r = -1
		case a > b:
			r = 1
		}
		if err := f.Stack.PushInt(r); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opIfeq, opIfne, opIflt, opIfge, opIfgt, opIfle,
		opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple, opIfnull:
		if err := e.branch(f, op, opPC); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opGoto:
		offset := readI2(f)
		f.PC = opPC + int(offset)

	case opTableswitch:
		if err := e.tableswitch(f, opPC); err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}

	case opGetstatic:
		idx := readU2(f)
		if err := e.getstatic(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opPutstatic:
		idx := readU2(f)
		if err := e.putstatic(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opGetfield:
		idx := readU2(f)
		if err := e.getfield(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opPutfield:
		idx := readU2(f)
		if err := e.putfield(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}

	case opInvokestatic:
		idx := readU2(f)
		if err := e.invokeStatic(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opInvokespecial:
		idx := readU2(f)
		if err := e.invokeSpecial(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opInvokevirtual:
		idx := readU2(f)
		if err := e.invokeVirtual(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opInvokedynamic:
		idx := readU2(f)
		f.PC += 2 // trailing zero bytes
		if err := e.invokeDynamic(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}

	case opNew:
		idx := readU2(f)
		if err := e.opcodeNew(f, idx); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opNewarray:
		typeCode := readU1(f)
		if err := e.newarray(f, typeCode); err != nil {
			return vmvalue.Cell{}, false, err
		}
	case opMultianewarray:
		idx := readU2(f)
		dims := readU1(f)
		if err := e.multianewarray(f, idx, dims); err != nil {
			return vmvalue.Cell{}, false, err
		}

	case opIreturn:
		v, err := f.Stack.PopInt32()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		return vmvalue.Int(v), true, nil
	case opLreturn:
		v, err := f.Stack.PopInt64()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		return vmvalue.Long(v), true, nil
	case opAreturn:
		c, err := f.Stack.Pop()
		if err != nil {
			return vmvalue.Cell{}, false, execErr(f, err)
		}
		return c, true, nil
	case opReturn:
		return vmvalue.Empty, true, nil

	default:
		return vmvalue.Cell{}, false, vmerr.Execution("interp.dispatch", fmt.Errorf("unrecognized opcode %#x at pc %d", op, opPC))
	}

	return vmvalue.Cell{}, false, nil
}

func loadLocal(f *runtime.Frame, idx int) error {
	c, err := f.Locals.Get(idx)
	if err != nil {
		return err
	}
	return f.Stack.Push(c)
}

func execErr(f *runtime.Frame, err error) error {
	if _, ok := err.(interface{ Unwrap() error }); ok {
		return err
	}
	return vmerr.Invariant("interp.dispatch", fmt.Errorf("%s.%s: %w", f.Class.BinaryName, f.Method.Name, err))
}
