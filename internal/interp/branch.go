package interp

import (
	"fmt"

	"github.com/halsted/minijvm/internal/runtime"
)

// branch implements the single-operand zero-comparison family, the
// two-operand comparison family, and ifnull. opPC is the address of the
// opcode byte itself; the branch offset is relative to that address, not
// to the post-operand program counter.
func (e *Engine) branch(f *runtime.Frame, op byte, opPC int) error {
	offset := readI2(f)

	taken := false
	switch op {
	case opIfeq, opIfne, opIflt, opIfge, opIfgt, opIfle:
		v, err := f.Stack.PopInt32()
		if err != nil {
			return err
		}
		switch op {
		case opIfeq:
			taken = v == 0
		case opIfne:
			taken = v != 0
		case opIflt:
			taken = v < 0
		case opIfge:
			taken = v >= 0
		case opIfgt:
			taken = v > 0
		case opIfle:
			taken = v <= 0
		}

	case opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple:
		b, err := f.Stack.PopInt32()
		if err != nil {
			return err
		}
		a, err := f.Stack.PopInt32()
		if err != nil {
			return err
		}
		switch op {
		case opIfIcmpeq:
			taken = a == b
		case opIfIcmpne:
			taken = a != b
		case opIfIcmplt:
			taken = a < b
		case opIfIcmpge:
			taken = a >= b
		case opIfIcmpgt:
			taken = a > b
		case opIfIcmple:
			taken = a <= b
		}

	case opIfnull:
		ref, err := f.Stack.PopRef()
		if err != nil {
			return err
		}
		taken = ref < 0

	default:
		return fmt.Errorf("branch: unhandled opcode %#x", op)
	}

	if taken {
		f.PC = opPC + int(offset)
	}
	return nil
}

// tableswitch aligns the next pc to a 4-byte boundary after the opcode's
// own address, reads a default offset, low, high, and (high-low+1)
// targets, and branches to base+default or base+targets[key-low].
func (e *Engine) tableswitch(f *runtime.Frame, opPC int) error {
	// Align to the next multiple of 4 bytes counted from the start of the
	// code buffer.
	pad := (4 - f.PC%4) % 4
	f.PC += pad

	defaultOffset := readI4(f)
	low := readI4(f)
	high := readI4(f)
	if high < low {
		return fmt.Errorf("tableswitch: high %d < low %d", high, low)
	}
	count := int(high-low) + 1
	targets := make([]int32, count)
	for i := range targets {
		targets[i] = readI4(f)
	}

	key, err := f.Stack.PopInt32()
	if err != nil {
		return err
	}

	if key < low || key > high {
		f.PC = opPC + int(defaultOffset)
		return nil
	}
	f.PC = opPC + int(targets[key-low])
	return nil
}

func readI4(f *runtime.Frame) int32 {
	code := f.Method.Code.Bytes
	v := int32(code[f.PC])<<24 | int32(code[f.PC+1])<<16 | int32(code[f.PC+2])<<8 | int32(code[f.PC+3])
	f.PC += 4
	return v
}
