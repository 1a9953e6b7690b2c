package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halsted/minijvm/internal/trace"
	"github.com/halsted/minijvm/internal/vm"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/utils"
)

var traceFile string

func init() {
	rootCmd.Flags().StringVar(&traceFile, "trace", "", "write an opcode trace log to this file")
	_ = rootCmd.RegisterFlagCompletionFunc("trace", utils.CompleteFilesByExtension([]string{".log", ".txt"}, false))
}

// runMain is the root command's RunE: load, preload native classes, and
// execute the given class file's main method.
func runMain(cmd *cobra.Command, args []string) error {
	classPath := args[0]

	var tw *trace.Writer
	if traceFile != "" {
		f, err := os.Create(traceFile)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer f.Close()
		tw = trace.New(f)
	}

	machine := vm.New(classPath, os.Stdout, os.Stdin, tw)

	if err := vm.PreloadNativeClasses(machine.Classes); err != nil {
		return reportFatal(err)
	}

	if err := machine.Run(classPath, args[1:]); err != nil {
		return reportFatal(err)
	}
	return nil
}

// reportFatal prints a fatal VM error to stderr and maps it to the
// documented process exit code via vmerr.Kind, without involving cobra's
// own error-printing path (which would duplicate the message).
func reportFatal(err error) error {
	code := 1
	if ve, ok := vmerr.As(err); ok {
		code = ve.Kind.ExitCode()
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
	return nil
}
