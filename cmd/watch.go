package cmd

import (
	"github.com/spf13/cobra"

	"github.com/halsted/minijvm/internal/watchtui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <class-file>",
	Short: "Step through execution in a live TUI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchtui.Start(args[0])
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
