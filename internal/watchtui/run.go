package watchtui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vm"
)

// Start decodes mainClassPath, wires an interpreter whose Step hook feeds
// snapshots to a bubbletea program, and blocks until the user quits or the
// run finishes. Program stdout is discarded rather than interleaved with
// the TUI, which owns the terminal screen for the duration of the run.
func Start(mainClassPath string) error {
	outR, outW := io.Pipe()
	go drainOutput(outR)
	defer outW.Close()

	machine := vm.New(mainClassPath, outW, os.Stdin, nil)

	if err := vm.PreloadNativeClasses(machine.Classes); err != nil {
		return err
	}

	steps := make(chan Snapshot)
	resume := make(chan struct{})
	done := make(chan error, 1)

	machine.Engine.Step = func(f *runtime.Frame) {
		steps <- snapshotOf(f, machine.Engine.Depth)
		<-resume
	}

	go func() {
		defer close(steps)
		done <- machine.Run(mainClassPath, nil)
	}()

	model := newModel(steps, resume, done)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func drainOutput(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		if _, err := r.Read(buf); err != nil {
			return
		}
	}
}
