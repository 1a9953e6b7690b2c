package interp

import (
	"fmt"

	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// arith implements the int and long arithmetic family. Operand order
// follows Java stack order: for subtract/divide/remainder, the
// second-popped value is the left-hand operand.
func (e *Engine) arith(f *runtime.Frame, op byte) error {
	switch op {
	case opIneg:
		v, err := f.Stack.PopInt32()
		if err != nil {
			return err
		}
		return f.Stack.PushInt(-v)

	case opIadd, opIsub, opImul, opIdiv, opIrem:
		b, err := f.Stack.PopInt32()
		if err != nil {
			return err
		}
		a, err := f.Stack.PopInt32()
		if err != nil {
			return err
		}
		var r int32
		switch op {
		case opIadd:
			r = a + b
		case opIsub:
			r = a - b
		case opImul:
			r = a * b
		case opIdiv:
			if b == 0 {
				return fmt.Errorf("idiv: division by zero")
			}
			r = a / b
		case opIrem:
			if b == 0 {
				return fmt.Errorf("irem: division by zero")
			}
			r = a % b
		}
		return f.Stack.PushInt(r)

	case opLadd, opLsub, opLmul, opLdiv:
		b, err := f.Stack.PopInt64()
		if err != nil {
			return err
		}
		a, err := f.Stack.PopInt64()
		if err != nil {
			return err
		}
		var r int64
		switch op {
		case opLadd:
			r = a + b
		case opLsub:
			r = a - b
		case opLmul:
			r = a * b
		case opLdiv:
			if b == 0 {
				return fmt.Errorf("ldiv: division by zero")
			}
			r = a / b
		}
		return f.Stack.Push(vmvalue.Long(r))
	}

	return fmt.Errorf("arith: unhandled opcode %#x", op)
}
