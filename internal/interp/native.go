package interp

import (
	"bufio"
	"fmt"
	"strconv"
	"time"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

type nativeKey struct {
	name       string
	descriptor string
}

type nativeFunc func(e *Engine, locals *runtime.Locals) (vmvalue.Cell, error)

// nativeTable is the (name, descriptor)-keyed dispatch table built once
// at package init, replacing ad-hoc string comparisons.
var nativeTable = map[nativeKey]nativeFunc{
	{"println", "()V"}: func(e *Engine, _ *runtime.Locals) (vmvalue.Cell, error) {
		fmt.Fprintln(e.Stdout)
		return vmvalue.Empty, nil
	},
	{"println", "(I)V"}: func(e *Engine, locals *runtime.Locals) (vmvalue.Cell, error) {
		v, err := locals.Get(0)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		fmt.Fprintln(e.Stdout, v.AsInt32())
		return vmvalue.Empty, nil
	},
	{"println", "(Ljava/lang/String;)V"}: func(e *Engine, locals *runtime.Locals) (vmvalue.Cell, error) {
		v, err := locals.Get(0)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		s, err := e.stringOf(v)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		fmt.Fprintln(e.Stdout, s)
		return vmvalue.Empty, nil
	},
	{"print", "(Ljava/lang/String;)V"}: func(e *Engine, locals *runtime.Locals) (vmvalue.Cell, error) {
		v, err := locals.Get(0)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		s, err := e.stringOf(v)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		fmt.Fprint(e.Stdout, s)
		return vmvalue.Empty, nil
	},
	{"flush", "()V"}: func(e *Engine, _ *runtime.Locals) (vmvalue.Cell, error) {
		if f, ok := e.Stdout.(interface{ Flush() error }); ok {
			return vmvalue.Empty, f.Flush()
		}
		return vmvalue.Empty, nil
	},
	{"readLine", "()Ljava/lang/String;"}: func(e *Engine, _ *runtime.Locals) (vmvalue.Cell, error) {
		tok, err := readToken(e.Stdin, 50)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		ref, err := e.Objects.CreateString(tok)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		return vmvalue.Reference(ref), nil
	},
	{"parseLong", "(Ljava/lang/String;)J"}: func(e *Engine, locals *runtime.Locals) (vmvalue.Cell, error) {
		v, err := locals.Get(0)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		s, err := e.stringOf(v)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return vmvalue.Cell{}, vmerr.Execution("interp.native.parseLong", err)
		}
		return vmvalue.Long(n), nil
	},
	{"currentTimeMillis", "()J"}: func(e *Engine, _ *runtime.Locals) (vmvalue.Cell, error) {
		return vmvalue.Long(time.Now().UnixMilli()), nil
	},
	{"charAt", "(I)C"}: func(e *Engine, locals *runtime.Locals) (vmvalue.Cell, error) {
		this, err := locals.Get(0)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		idxCell, err := locals.Get(1)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		s, err := e.stringOf(this)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		idx := int(idxCell.AsInt32())
		if idx < 0 || idx >= len(s) {
			return vmvalue.Cell{}, vmerr.Invariant("interp.native.charAt", fmt.Errorf("index %d out of range for string of length %d", idx, len(s)))
		}
		return vmvalue.Int(int32(s[idx])), nil
	},
	{"compareTo", "(Ljava/lang/String;)I"}: func(e *Engine, locals *runtime.Locals) (vmvalue.Cell, error) {
		this, err := locals.Get(0)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		other, err := locals.Get(1)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		a, err := e.stringOf(this)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		b, err := e.stringOf(other)
		if err != nil {
			return vmvalue.Cell{}, err
		}
		return vmvalue.Int(int32(lexicographicCompare(a, b))), nil
	},
}

func lexicographicCompare(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

func readToken(r *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	// skip leading whitespace
	for {
		b, err := r.ReadByte()
		if err != nil {
			return string(buf), nil
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return "", err
		}
		break
	}
	for len(buf) < maxLen {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

// stringOf resolves a cell tagged as a string reference to its Go string
// value, via the object heap.
func (e *Engine) stringOf(c vmvalue.Cell) (string, error) {
	if c.Tag != vmvalue.TagRef {
		return "", vmerr.Execution("interp.stringOf", fmt.Errorf("expected string reference, got %s", c.Tag))
	}
	obj, err := e.Objects.Get(c.Ref)
	if err != nil {
		return "", vmerr.Invariant("interp.stringOf", err)
	}
	return obj.StringValue(), nil
}

func (e *Engine) invokeNative(class *classfile.ClassFile, method *classfile.Method, locals *runtime.Locals) (vmvalue.Cell, error) {
	fn, ok := nativeTable[nativeKey{method.Name, method.Descriptor}]
	if !ok {
		return vmvalue.Cell{}, vmerr.Execution("interp.invokeNative", fmt.Errorf("unsupported native method %s.%s%s", class.BinaryName, method.Name, method.Descriptor))
	}
	return fn(e, locals)
}

// printStreamFastPath handles System.out.print/println calls without a
// loaded java/io/PrintStream class: pop the call's argument (if any) and
// receiver directly off the caller's stack and write to standard output.
func (e *Engine) printStreamFastPath(f *runtime.Frame, ref classfile.RefInfo) error {
	n := len(ref.Descriptor) - 3
	if n < 0 {
		n = 0
	}

	var arg vmvalue.Cell
	hasArg := n > 0
	if hasArg {
		var err error
		arg, err = f.Stack.Pop()
		if err != nil {
			return execErr(f, err)
		}
	}
	if _, err := f.Stack.PopRef(); err != nil {
		return execErr(f, err)
	}

	switch {
	case hasArg && arg.Tag == vmvalue.TagRef:
		s, err := e.stringOf(arg)
		if err != nil {
			return err
		}
		fmt.Fprint(e.Stdout, s)
	case hasArg:
		fmt.Fprint(e.Stdout, arg.AsInt64())
	}

	if ref.Name == "println" {
		fmt.Fprintln(e.Stdout)
	}
	return nil
}
