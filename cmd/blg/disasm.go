package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blg-lang/blg/pkg/pipeline"
	"github.com/blg-lang/blg/pkg/vm"
)

func newDisasmCmd() *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "disasm <path>",
		Short: "Compile a .blg file and print its bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if trace {
				return runTraced(args[0])
			}
			out, err := pipeline.Disassemble(args[0])
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "run the file with the instruction-step debugger enabled")
	return cmd
}

// runTraced runs path with the pkg/vm debugger attached in step mode, so
// execution pauses before every instruction and drops into a breakpoint
// console (stack/locals/globals/callstack inspection, then step or
// continue) instead of running straight through.
func runTraced(path string) error {
	sess, err := pipeline.New(".", ".")
	if err != nil {
		return err
	}
	defer sess.Close()

	d := vm.NewDebugger(sess.Runtime)
	d.SetStepMode(true)
	d.Enable()
	sess.Runtime.SetDebugger(d)

	_, err = pipeline.RunFileWithSession(sess, path)
	if err != nil {
		fmt.Println(vm.ErrorStackTrace(err))
	}
	return nil
}
