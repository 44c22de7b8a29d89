package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blg-lang/blg/pkg/pipeline"
	"github.com/blg-lang/blg/pkg/vm"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE:  runREPL,
	}
}

// runREPL drives a persistent-VM REPL loop: one Session (one Runtime, with
// its import cache) is kept alive across inputs. Each input is compiled and
// run as its own module, so top-level bindings made by one input are not
// visible to later inputs. It reads with chzyer/readline
// for history/line-editing instead of a bare bufio.Scanner, and buffers
// multi-line input until a trailing `;` (blg's statement terminator).
func runREPL(cmd *cobra.Command, _ []string) error {
	sess, err := pipeline.New(".", ".")
	if err != nil {
		return err
	}
	defer sess.Close()

	rl, err := readline.New("blg> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	var buf strings.Builder
	n := 0
	for {
		if buf.Len() == 0 {
			rl.SetPrompt("blg> ")
		} else {
			rl.SetPrompt("...> ")
		}
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			break
		}
		switch strings.TrimSpace(line) {
		case ":quit", ":exit":
			return nil
		case "":
			if buf.Len() == 0 {
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		input := strings.TrimSpace(buf.String())
		if !strings.HasSuffix(input, ";") {
			continue
		}

		n++
		v, err := sess.RunString(input, fmt.Sprintf("<repl:%d>", n))
		if err != nil {
			color.New(color.FgRed).Println(vm.ErrorStackTrace(err))
		} else if v != nil {
			fmt.Println(v)
		}
		buf.Reset()
	}
	return nil
}
