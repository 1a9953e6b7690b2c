// Package trace provides an optional side-channel diagnostic writer the
// interpreter narrates every dispatched opcode to. It never feeds back into
// execution; it exists purely for the --trace CLI flag (the watch TUI uses
// the engine's Step hook instead).
package trace

import (
	"fmt"
	"io"
)

// Event is a single dispatched-opcode record.
type Event struct {
	PC               int
	Opcode           string
	ClassName        string
	MethodName       string
	StackDepthBefore int
	StackDepthAfter  int
}

// Writer narrates Events to an underlying io.Writer. A nil Writer (or one
// wrapping a nil out) is a valid no-op tracer.
type Writer struct {
	out io.Writer
}

// New wraps out as a trace destination. out may be nil to disable tracing.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Enabled reports whether this writer actually emits anything.
func (w *Writer) Enabled() bool {
	return w != nil && w.out != nil
}

// Emit writes one trace line. It is a no-op when tracing is disabled.
func (w *Writer) Emit(e Event) {
	if !w.Enabled() {
		return
	}
	fmt.Fprintf(w.out, "%04d %-16s %s.%s stack %d->%d\n",
		e.PC, e.Opcode, e.ClassName, e.MethodName, e.StackDepthBefore, e.StackDepthAfter)
}
