// Command blg is the blg language driver: run/repl/disasm/test
// subcommands built on cobra.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd assembles the root command. The bare `blg <path>` form is
// handled by root's own Args/RunE when no subcommand matches, alongside the
// `run`/`repl`/`disasm`/`test` subcommands and the `--test` compatibility
// flag.
func newRootCmd() *cobra.Command {
	var testFlag bool

	root := &cobra.Command{
		Use:     "blg [path]",
		Short:   "blg - a small bytecode-compiled scripting language",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if testFlag {
				return runTest(cmd, args)
			}
			if len(args) == 0 {
				return runREPL(cmd, args)
			}
			return runPath(cmd, args[0])
		},
	}
	root.Flags().BoolVar(&testFlag, "test", false, "run the built-in smoke-test suite")

	root.AddCommand(newRunCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newDisasmCmd())
	root.AddCommand(newTestCmd())
	return root
}
