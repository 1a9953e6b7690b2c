package watchtui

import (
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// Snapshot is the per-step view of interpreter state, captured from the
// Step hook right after one opcode has been dispatched.
type Snapshot struct {
	PC         int
	Opcode     byte
	MethodName string
	ClassName  string
	Stack      []vmvalue.Cell
	Locals     []vmvalue.Cell
	Depth      int
}

func snapshotOf(f *runtime.Frame, depth int) Snapshot {
	stack := append([]vmvalue.Cell(nil), f.Stack.Cells()...)
	locals := append([]vmvalue.Cell(nil), f.Locals.Cells()...)
	op := byte(0)
	if f.PC > 0 && f.PC <= len(f.Method.Code.Bytes) {
		op = f.Method.Code.Bytes[f.PC-1]
	}
	return Snapshot{
		PC:         f.PC,
		Opcode:     op,
		MethodName: f.Method.Name,
		ClassName:  f.Class.BinaryName,
		Stack:      stack,
		Locals:     locals,
		Depth:      depth,
	}
}

// stepMsg wraps a Snapshot as a bubbletea message.
type stepMsg Snapshot

// doneMsg signals the interpreter run has finished, successfully or not.
type doneMsg struct{ err error }
