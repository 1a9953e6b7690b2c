// Package interp implements the bytecode interpreter: a frame-executing
// function that dispatches per-opcode over a method's Code attribute,
// manipulating an operand stack and local-variable array, and invoking
// the resolver and object heap as it meets symbolic references.
package interp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/classheap"
	"github.com/halsted/minijvm/internal/objectheap"
	"github.com/halsted/minijvm/internal/resolver"
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/trace"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// Engine owns the heaps and resolver shared by every frame execution and
// drives the single-threaded, recursive interpreter loop.
type Engine struct {
	Classes  *classheap.Heap
	Objects  *objectheap.Heap
	Resolver *resolver.Resolver
	Trace    *trace.Writer

	Stdout io.Writer
	Stdin  *bufio.Reader

	// Step, when non-nil, is invoked after every dispatched opcode with
	// the frame that just executed it. It is the hook the watch TUI uses
	// to single-step the interpreter; nil is the normal free-running path.
	Step func(f *runtime.Frame)

	// Depth is the current recursive call depth, maintained by Execute
	// for the Step hook's benefit; the interpreter itself never reads it.
	Depth int
}

// New builds an Engine over the given heaps and resolver. stdout/stdin
// back the native print/read fast path.
func New(classes *classheap.Heap, objects *objectheap.Heap, res *resolver.Resolver, out io.Writer, in io.Reader, tr *trace.Writer) *Engine {
	return &Engine{
		Classes:  classes,
		Objects:  objects,
		Resolver: res,
		Stdout:   out,
		Stdin:    bufio.NewReader(in),
		Trace:    tr,
	}
}

// Execute runs method in the context of class (for constant-pool
// resolution) with locals prefilled with its arguments, returning the
// tagged return cell. Native methods are routed to the fast-path table
// instead of interpreting a (nonexistent) Code attribute.
func (e *Engine) Execute(class *classfile.ClassFile, method *classfile.Method, locals *runtime.Locals) (vmvalue.Cell, error) {
	if method.Native {
		return e.invokeNative(class, method, locals)
	}

	frame := &runtime.Frame{
		Stack:  runtime.NewStack(int(method.Code.MaxStack)),
		Locals: locals,
		Class:  class,
		Method: method,
	}

	e.Depth++
	defer func() { e.Depth-- }()

	code := method.Code.Bytes
	for frame.PC < len(code) {
		pc := frame.PC
		op := code[pc]

		before := frame.Stack.Len()
		ret, done, err := e.dispatch(frame, op)
		if err != nil {
			return vmvalue.Cell{}, err
		}

		if e.Trace.Enabled() {
			e.Trace.Emit(trace.Event{
				PC:               pc,
				Opcode:           mnemonic(op),
				ClassName:        class.BinaryName,
				MethodName:       method.Name,
				StackDepthBefore: before,
				StackDepthAfter:  frame.Stack.Len(),
			})
		}
		if e.Step != nil {
			e.Step(frame)
		}

		if done {
			return ret, nil
		}
	}

	return vmvalue.Cell{}, vmerr.Execution("interp.Execute", fmt.Errorf("%s.%s: fell off the end of the code buffer", class.BinaryName, method.Name))
}
