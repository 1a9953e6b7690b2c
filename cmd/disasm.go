package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halsted/minijvm/internal/lipglosstable"
	"github.com/halsted/minijvm/internal/resolver"
	"github.com/halsted/minijvm/utils"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <class-file>",
	Short: "Decode a class file and print its constant pool and bytecode",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func runDisasm(cmd *cobra.Command, args []string) error {
	class, err := resolver.LoadFile(args[0])
	if err != nil {
		return reportFatal(err)
	}
	if info, err := os.Stat(args[0]); err == nil {
		fmt.Printf("%s (%s)\n\n", args[0], utils.MemorySize(info.Size()))
	}
	fmt.Print(lipglosstable.RenderClass(class))
	return nil
}
