package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blg-lang/blg/pkg/pipeline"
	"github.com/blg-lang/blg/pkg/vm"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>",
		Short: "Run a .blg source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd, args[0])
		},
	}
}

// runPath loads path as a module, runs its $init, and invokes main(none).
// Errors are printed with an "error:" prefix, colorized in red when stdout
// is a terminal (color auto-detects this via go-isatty and no-ops
// otherwise).
func runPath(cmd *cobra.Command, path string) error {
	_, err := pipeline.RunFile(path)
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, vm.ErrorStackTrace(err))
		os.Exit(1)
	}
	return nil
}
