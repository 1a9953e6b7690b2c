package runtime

import (
	"fmt"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// Locals is a frame's local-variable array, preallocated to max_locals.
type Locals struct {
	cells []vmvalue.Cell
}

func NewLocals(maxLocals int) *Locals {
	cells := make([]vmvalue.Cell, maxLocals)
	for i := range cells {
		cells[i] = vmvalue.Empty
	}
	return &Locals{cells: cells}
}

func (l *Locals) Get(idx int) (vmvalue.Cell, error) {
	if idx < 0 || idx >= len(l.cells) {
		return vmvalue.Cell{}, fmt.Errorf("local variable index %d out of range [0,%d)", idx, len(l.cells))
	}
	return l.cells[idx], nil
}

func (l *Locals) Set(idx int, c vmvalue.Cell) error {
	if idx < 0 || idx >= len(l.cells) {
		return fmt.Errorf("local variable index %d out of range [0,%d)", idx, len(l.cells))
	}
	l.cells[idx] = c
	return nil
}

func (l *Locals) Len() int {
	return len(l.cells)
}

// Cells returns the full local-variable array, including unset slots.
func (l *Locals) Cells() []vmvalue.Cell {
	return l.cells
}

// Frame is the per-invocation runtime state: operand stack, locals,
// program counter, and the owning class whose constant pool indices
// resolve for this invocation.
type Frame struct {
	Stack  *Stack
	Locals *Locals
	PC     int

	Class  *classfile.ClassFile
	Method *classfile.Method
}

// NewFrame allocates a frame's stack and locals from the method's decoded
// Code attribute sizes.
func NewFrame(class *classfile.ClassFile, method *classfile.Method) *Frame {
	return &Frame{
		Stack:  NewStack(int(method.Code.MaxStack)),
		Locals: NewLocals(int(method.Code.MaxLocals)),
		Class:  class,
		Method: method,
	}
}
