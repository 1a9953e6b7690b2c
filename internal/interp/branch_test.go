package interp

import (
	"testing"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmvalue"
)

func newTestFrame(code []byte) *runtime.Frame {
	return &runtime.Frame{
		Stack:  runtime.NewStack(8),
		Locals: runtime.NewLocals(4),
		Class:  &classfile.ClassFile{BinaryName: "Test"},
		Method: &classfile.Method{Name: "m", Code: classfile.Code{Bytes: code}},
	}
}

func i2Bytes(v int16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func TestBranchZeroComparisonFamily(t *testing.T) {
	tests := []struct {
		op    byte
		value int32
		taken bool
	}{
		{opIfeq, 0, true}, {opIfeq, 1, false},
		{opIfne, 1, true}, {opIfne, 0, false},
		{opIflt, -1, true}, {opIflt, 0, false},
		{opIfge, 0, true}, {opIfge, -1, false},
		{opIfgt, 1, true}, {opIfgt, 0, false},
		{opIfle, 0, true}, {opIfle, 1, false},
	}

	e := &Engine{}
	for _, tt := range tests {
		f := newTestFrame(i2Bytes(10))
		if err := f.Stack.PushInt(tt.value); err != nil {
			t.Fatalf("push: %v", err)
		}
		if err := e.branch(f, tt.op, 0); err != nil {
			t.Fatalf("branch(%#x): %v", tt.op, err)
		}
		wantPC := 0
		if tt.taken {
			wantPC = 10
		} else {
			wantPC = 2 // past the 2-byte offset operand, no branch taken
		}
		if f.PC != wantPC {
			t.Errorf("op %#x value %d: PC = %d, want %d", tt.op, tt.value, f.PC, wantPC)
		}
	}
}

func TestBranchTwoOperandComparison(t *testing.T) {
	f := newTestFrame(i2Bytes(20))
	if err := f.Stack.PushInt(3); err != nil {
		t.Fatal(err)
	}
	if err := f.Stack.PushInt(5); err != nil {
		t.Fatal(err)
	}
	e := &Engine{}
	if err := e.branch(f, opIfIcmplt, 0); err != nil {
		t.Fatalf("branch: %v", err)
	}
	if f.PC != 20 {
		t.Errorf("3 < 5: PC = %d, want 20 (branch taken)", f.PC)
	}
}

func TestBranchIfnull(t *testing.T) {
	f := newTestFrame(i2Bytes(7))
	if err := f.Stack.Push(vmvalue.Null); err != nil {
		t.Fatal(err)
	}
	e := &Engine{}
	if err := e.branch(f, opIfnull, 0); err != nil {
		t.Fatalf("branch: %v", err)
	}
	if f.PC != 7 {
		t.Errorf("null ref: PC = %d, want 7", f.PC)
	}
}

func TestTableswitchInRange(t *testing.T) {
	// default=-1, low=0, high=2, targets=[100,200,300], key=1 -> target 200.
	payload := []byte{}
	payload = append(payload, i4Bytes(-1)...)
	payload = append(payload, i4Bytes(0)...)
	payload = append(payload, i4Bytes(2)...)
	payload = append(payload, i4Bytes(100)...)
	payload = append(payload, i4Bytes(200)...)
	payload = append(payload, i4Bytes(300)...)

	// opPC=0, opcode occupies 1 byte so f.PC=1 after consuming it; pad to
	// the next multiple of 4 counted from the start of the code, i.e. pc=4.
	f := newTestFrame(append([]byte{0xaa, 0, 0, 0}, payload...))
	f.PC = 1
	if err := f.Stack.PushInt(1); err != nil {
		t.Fatal(err)
	}
	e := &Engine{}
	if err := e.tableswitch(f, 0); err != nil {
		t.Fatalf("tableswitch: %v", err)
	}
	if f.PC != 200 {
		t.Errorf("key=1: PC = %d, want 200", f.PC)
	}
}

func TestTableswitchOutOfRangeUsesDefault(t *testing.T) {
	payload := []byte{}
	payload = append(payload, i4Bytes(-5)...)
	payload = append(payload, i4Bytes(0)...)
	payload = append(payload, i4Bytes(1)...)
	payload = append(payload, i4Bytes(100)...)
	payload = append(payload, i4Bytes(200)...)

	f := newTestFrame(append([]byte{0xaa, 0, 0, 0}, payload...))
	f.PC = 1
	if err := f.Stack.PushInt(99); err != nil {
		t.Fatal(err)
	}
	e := &Engine{}
	if err := e.tableswitch(f, 0); err != nil {
		t.Fatalf("tableswitch: %v", err)
	}
	if f.PC != -5 {
		t.Errorf("out-of-range key: PC = %d, want -5 (default)", f.PC)
	}
}

func i4Bytes(v int32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
