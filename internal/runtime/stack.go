// Package runtime implements the per-frame operand stack and local
// variable array: fixed-capacity, preallocated per frame, with push/pop
// helpers that widen and narrow integers and keep references tag-distinct.
package runtime

import (
	"fmt"

	"github.com/halsted/minijvm/internal/vmvalue"
)

// Stack is a frame's operand stack, preallocated to max_stack as decoded
// from the method's Code attribute. The interpreter trusts max_stack
// without verification; overflow/underflow are invariant violations.
type Stack struct {
	cells []vmvalue.Cell
	sp    int
}

func NewStack(maxStack int) *Stack {
	return &Stack{cells: make([]vmvalue.Cell, maxStack)}
}

func (s *Stack) Push(c vmvalue.Cell) error {
	if s.sp >= len(s.cells) {
		return fmt.Errorf("operand stack overflow (max %d)", len(s.cells))
	}
	s.cells[s.sp] = c
	s.sp++
	return nil
}

func (s *Stack) Pop() (vmvalue.Cell, error) {
	if s.sp == 0 {
		return vmvalue.Cell{}, fmt.Errorf("operand stack underflow")
	}
	s.sp--
	return s.cells[s.sp], nil
}

// Peek returns the top cell without popping, used by dup/dup2.
func (s *Stack) Peek() (vmvalue.Cell, error) {
	if s.sp == 0 {
		return vmvalue.Cell{}, fmt.Errorf("operand stack empty")
	}
	return s.cells[s.sp-1], nil
}

func (s *Stack) Len() int {
	return s.sp
}

// Cells returns the currently occupied cells, bottom to top. The slice
// aliases the stack's backing array and is only safe to read before the
// next mutating call.
func (s *Stack) Cells() []vmvalue.Cell {
	return s.cells[:s.sp]
}

// PushInt is a convenience wrapper for the common int-push case.
func (s *Stack) PushInt(v int32) error {
	return s.Push(vmvalue.Int(v))
}

// PopInt64 pops a cell and widens it to a signed 64-bit integer.
func (s *Stack) PopInt64() (int64, error) {
	c, err := s.Pop()
	if err != nil {
		return 0, err
	}
	if !c.IsInteger() {
		return 0, fmt.Errorf("expected integer cell, got %s", c.Tag)
	}
	return c.AsInt64(), nil
}

// PopInt32 pops a cell and narrows it to a signed 32-bit integer.
func (s *Stack) PopInt32() (int32, error) {
	v, err := s.PopInt64()
	return int32(v), err
}

// PopRef pops a reference cell.
func (s *Stack) PopRef() (int32, error) {
	c, err := s.Pop()
	if err != nil {
		return 0, err
	}
	if c.Tag != vmvalue.TagRef {
		return 0, fmt.Errorf("expected reference cell, got %s", c.Tag)
	}
	return c.Ref, nil
}

// PopToLocal pops the top cell and stores it into locals[idx], preserving
// the reference-vs-integer distinction: integers are width-normalized to
// a long, references are stored as references.
func (s *Stack) PopToLocal(locals *Locals, idx int) error {
	c, err := s.Pop()
	if err != nil {
		return err
	}
	if c.Tag == vmvalue.TagRef {
		return locals.Set(idx, c)
	}
	if !c.IsInteger() {
		return fmt.Errorf("pop_to_local: cell tag %s is neither integer nor reference", c.Tag)
	}
	return locals.Set(idx, vmvalue.Long(c.AsInt64()))
}
