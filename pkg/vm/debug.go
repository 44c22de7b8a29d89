package vm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blg-lang/blg/pkg/bytecode"
)

// Debugger provides interactive, instruction-stepping inspection of a
// Runtime — a step/trace hook for `blg disasm --trace`, adapted from the
// VM's single-stepping breakpoint console onto frame/scope/value-stack
// terms instead of register-machine instruction/selector terms.
type Debugger struct {
	rt          *Runtime
	breakpoints map[int]bool
	stepMode    bool
	enabled     bool
}

// NewDebugger creates a debugger attached to rt. Call Enable to activate it.
func NewDebugger(rt *Runtime) *Debugger {
	return &Debugger{rt: rt, breakpoints: make(map[int]bool)}
}

// SetDebugger attaches (or detaches, with nil) a debugger to the runtime's
// execution loop.
func (rt *Runtime) SetDebugger(d *Debugger) { rt.debugger = d }

func (d *Debugger) Enable()                 { d.enabled = true }
func (d *Debugger) Disable()                { d.enabled = false }
func (d *Debugger) SetStepMode(on bool)     { d.stepMode = on }
func (d *Debugger) AddBreakpoint(ip int)    { d.breakpoints[ip] = true }
func (d *Debugger) RemoveBreakpoint(ip int) { delete(d.breakpoints, ip) }
func (d *Debugger) ClearBreakpoints()       { d.breakpoints = make(map[int]bool) }

// ShouldPause reports whether execution should pause before the
// instruction at ip in the current frame.
func (d *Debugger) ShouldPause(ip int) bool {
	if !d.enabled {
		return false
	}
	return d.stepMode || d.breakpoints[ip]
}

// formatInstruction renders the single instruction at ip in m, in the
// same style as pkg/bytecode's disassembler but for one instruction.
func formatInstruction(m *bytecode.Module, ip int) string {
	if ip < 0 || ip >= len(m.Code) {
		return fmt.Sprintf("%6d: <out of bounds>", ip)
	}
	op := bytecode.Opcode(m.Code[ip])
	switch op {
	case bytecode.OpPushInt:
		return fmt.Sprintf("%6d: %-16s %d", ip, op, readI32(m.Code, ip+1))
	case bytecode.OpPushFloat:
		return fmt.Sprintf("%6d: %-16s %g", ip, op, readF32(m.Code, ip+1))
	case bytecode.OpPushBuiltin, bytecode.OpPushLiteral, bytecode.OpLoad, bytecode.OpStore:
		idx := readU32(m.Code, ip+1)
		return fmt.Sprintf("%6d: %-16s %d (%q)", ip, op, idx, constAt(m, idx))
	case bytecode.OpCall:
		return fmt.Sprintf("%6d: %-16s arity=%d", ip, op, readU32(m.Code, ip+1))
	case bytecode.OpCreateFunc, bytecode.OpCondJumpTrue, bytecode.OpCondJumpFalse, bytecode.OpAbsJump:
		return fmt.Sprintf("%6d: %-16s -> %d", ip, op, readU32(m.Code, ip+1))
	case bytecode.OpDefFunc:
		arity := int(m.Code[ip+1])
		return fmt.Sprintf("%6d: %-16s arity=%d", ip, op, arity)
	default:
		return fmt.Sprintf("%6d: %-16s", ip, op)
	}
}

// ShowCurrentInstruction prints the instruction the runtime is about to
// execute.
func (d *Debugger) ShowCurrentInstruction() {
	f := d.rt.currentFrame()
	if f == nil || f.Native {
		fmt.Println("(no current instruction: native frame)")
		return
	}
	fmt.Println(formatInstruction(f.Module, f.IP))
}

// ShowStack prints the value stack, top to bottom.
func (d *Debugger) ShowStack() {
	fmt.Println("Stack (top to bottom):")
	if len(d.rt.valueStack) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i := len(d.rt.valueStack) - 1; i >= 0; i-- {
		fmt.Printf("  [%d] %v\n", i, d.rt.valueStack[i])
	}
}

// ShowLocals prints the current frame's own scope bindings.
func (d *Debugger) ShowLocals() {
	fmt.Println("Local variables:")
	f := d.rt.currentFrame()
	if f == nil || f.Scope == nil {
		fmt.Println("  (none)")
		return
	}
	any := false
	f.Scope.Each(func(name string, v interface{}) {
		any = true
		fmt.Printf("  %s = %v\n", name, v)
	})
	if !any {
		fmt.Println("  (none set)")
	}
}

// ShowGlobals prints the builtins scope's bindings.
func (d *Debugger) ShowGlobals() {
	fmt.Println("Global variables:")
	any := false
	d.rt.builtins.Each(func(name string, v interface{}) {
		any = true
		fmt.Printf("  %s = %v\n", name, v)
	})
	if !any {
		fmt.Println("  (none)")
	}
}

// ShowCallStack prints the frame stack, top to bottom.
func (d *Debugger) ShowCallStack() {
	fmt.Println("Call stack (top to bottom):")
	if len(d.rt.frames) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i := len(d.rt.frames) - 1; i >= 0; i-- {
		f := d.rt.frames[i]
		if f.Native {
			fmt.Printf("  <native> %s\n", f.Name)
			continue
		}
		fmt.Printf("  %s [IP: %d]\n", f.Name, f.IP)
	}
}

// InteractivePrompt pauses execution and drives a console session until
// the user resumes or aborts. Returns false to abort execution.
func (d *Debugger) InteractivePrompt() (continueExecution bool) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("\n=== Debugger Paused ===")
	d.ShowCurrentInstruction()

	for {
		fmt.Print("debug> ")
		if !scanner.Scan() {
			return false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		switch parts[0] {
		case "help", "h", "?":
			d.printHelp()
		case "continue", "c":
			d.SetStepMode(false)
			return true
		case "step", "s", "next", "n":
			d.SetStepMode(true)
			return true
		case "stack", "st":
			d.ShowStack()
		case "locals", "l":
			d.ShowLocals()
		case "globals", "g":
			d.ShowGlobals()
		case "callstack", "cs":
			d.ShowCallStack()
		case "instruction", "i":
			d.ShowCurrentInstruction()
		case "breakpoint", "b":
			if len(parts) < 2 {
				fmt.Println("Usage: breakpoint <ip>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Invalid instruction pointer")
				continue
			}
			d.AddBreakpoint(ip)
			fmt.Printf("Breakpoint added at %d\n", ip)
		case "delete", "d":
			if len(parts) < 2 {
				fmt.Println("Usage: delete <ip>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Invalid instruction pointer")
				continue
			}
			d.RemoveBreakpoint(ip)
			fmt.Printf("Breakpoint removed at %d\n", ip)
		case "quit", "q":
			return false
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", parts[0])
		}
	}
}

func (d *Debugger) printHelp() {
	fmt.Println("Debugger commands:")
	fmt.Println("  help, h, ?           Show this help")
	fmt.Println("  continue, c          Continue execution")
	fmt.Println("  step, s, next, n     Execute one instruction and re-pause")
	fmt.Println("  stack, st            Show the value stack")
	fmt.Println("  locals, l            Show the current frame's scope")
	fmt.Println("  globals, g           Show the builtins scope")
	fmt.Println("  callstack, cs        Show the frame stack")
	fmt.Println("  instruction, i       Show the current instruction")
	fmt.Println("  breakpoint <ip>, b   Add a breakpoint at an instruction pointer")
	fmt.Println("  delete <ip>, d       Remove a breakpoint")
	fmt.Println("  quit, q              Abort execution")
}
