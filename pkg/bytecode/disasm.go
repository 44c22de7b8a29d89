package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Disassemble renders a Module as a human-readable listing: one line per
// instruction, decoded operands, and a header summarizing the constant
// pool and code size. This replaces persisting bytecode to disk (the
// runtime never writes a Module out) with a read-only debugging view.
func Disassemble(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; %s constants, %s bytes of code, entry @%d\n",
		humanize.Comma(int64(len(m.Constants))), humanize.Comma(int64(len(m.Code))), m.Entry)
	if m.Filename != "" {
		fmt.Fprintf(&b, "; %s\n", m.Filename)
	}

	for i, c := range m.Constants {
		fmt.Fprintf(&b, "; const[%d] = %q\n", i, c)
	}

	off := 0
	for off < len(m.Code) {
		start := off
		op := Opcode(m.Code[off])
		off++
		operand := ""

		switch op {
		case OpPushInt:
			v := int32(binary.BigEndian.Uint32(m.Code[off:]))
			operand = fmt.Sprintf("%d", v)
			off += 4
		case OpPushFloat:
			bits := binary.BigEndian.Uint32(m.Code[off:])
			operand = fmt.Sprintf("%g", math.Float32frombits(bits))
			off += 4
		case OpPushBuiltin, OpPushLiteral, OpLoad, OpStore:
			idx := binary.BigEndian.Uint32(m.Code[off:])
			operand = fmt.Sprintf("%d ; %q", idx, constAt(m, int(idx)))
			off += 4
		case OpCall:
			operand = fmt.Sprintf("%d", binary.BigEndian.Uint32(m.Code[off:]))
			off += 4
		case OpCreateFunc, OpCondJumpTrue, OpCondJumpFalse, OpAbsJump:
			operand = fmt.Sprintf("@%d", binary.BigEndian.Uint32(m.Code[off:]))
			off += 4
		case OpDefFunc:
			arity := int(m.Code[off])
			off++
			names := make([]string, arity)
			for i := 0; i < arity; i++ {
				idx := binary.BigEndian.Uint32(m.Code[off:])
				names[i] = constAt(m, int(idx))
				off += 4
			}
			operand = fmt.Sprintf("(%s)", strings.Join(names, ", "))
		default:
			// fixed zero-operand opcodes fall through with no operand text
		}

		if start == m.Entry {
			fmt.Fprintf(&b, "%6d: ; entry\n", start)
		}
		if operand != "" {
			fmt.Fprintf(&b, "%6d: %-16s %s\n", start, op.String(), operand)
		} else {
			fmt.Fprintf(&b, "%6d: %s\n", start, op.String())
		}
	}
	return b.String()
}

func constAt(m *Module, idx int) string {
	if idx < 0 || idx >= len(m.Constants) {
		return "?"
	}
	return m.Constants[idx]
}
