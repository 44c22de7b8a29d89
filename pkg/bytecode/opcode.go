// Package bytecode defines the bytecode format this module's virtual
// machine executes, the accumulator used to build it, and the tree-walk
// that turns a lowered program into it.
//
// Architecture:
//
// The bytecode is a stack-based instruction stream where:
//  1. Values are pushed onto and popped from a single runtime value stack
//  2. Every opcode is one byte, with big-endian fixed-width operands
//  3. String and symbol-name constants live in an interned constant pool,
//     referenced by index rather than embedded inline
//  4. Jump/create-func targets are label ids, patched to concrete
//     byte-offsets only once the whole module has been emitted
//
// Example compilation:
//
//	Source:  x = 1 + 2;
//
//	Bytecode ($init's body; its DEF_FUNC prologue has already interned
//	"$arg" as constants[0]):
//	  PUSH_BUILTIN 1   ; constants[1] == "+"
//	  PUSH_INT 1
//	  PUSH_INT 2
//	  CALL 2           ; "+"(1, 2)
//	  STORE 2          ; constants[2] == "x"
package bytecode

// Opcode is a single-byte instruction tag.
type Opcode byte

// The fixed opcode table. Operand widths: u8 is one byte, u32/i32/f32 are
// four bytes big-endian (f32 is the IEEE-754 bit pattern of a float32).
const (
	// OpPushInt pushes an immediate i32. Operand: i32. Stack: -> int
	OpPushInt Opcode = iota
	// OpPushFloat pushes an immediate f32 bit pattern. Operand: f32. Stack: -> float
	OpPushFloat
	// OpPushBuiltin pushes the builtin named by a constant-pool string.
	// Operand: u32 const-index. Stack: -> builtin
	OpPushBuiltin
	// OpPushLiteral pushes a string literal. Operand: u32 const-index. Stack: -> string
	OpPushLiteral
	// OpPushNone pushes the none singleton. Stack: -> none
	OpPushNone
	// OpLoad looks up a name in the current scope chain. Operand: u32
	// const-index. Stack: -> scope[name]
	OpLoad
	// OpStore pops a value and assigns it to name: the nearest scope in
	// the current chain that already binds name is rebound, else the
	// current scope gets a new binding. Operand: u32 const-index.
	// Stack: value ->
	OpStore
	// OpCall pops a function and arity arguments (f, a1..an, deepest to
	// shallowest) and pushes the call's result. Operand: u32 arity.
	OpCall
	// OpReturn pops a value, pops the current frame, and pushes the value
	// onto the caller. Stack: v ->
	OpReturn
	// OpCreateFunc pushes a function value closing over the current
	// scope, with its entry at the given label. Operand: u32 label.
	OpCreateFunc
	// OpCondJumpTrue pops a value and jumps to label if it is truthy.
	// Operand: u32 label.
	OpCondJumpTrue
	// OpCondJumpFalse pops a value and jumps to label if it is falsy.
	// Operand: u32 label.
	OpCondJumpFalse
	// OpAbsJump jumps unconditionally to label. Operand: u32 label.
	OpAbsJump
	// OpDup duplicates the top of stack. Stack: a -> a a
	OpDup
	// OpRot3 rotates the top three values. Stack: a b c -> b c a
	OpRot3
	// OpSwap exchanges the top two values. Stack: a b -> b a
	OpSwap
	// OpPop discards the top of stack. Stack: a ->
	OpPop
	// OpCheckNone pops a value and fails unless it is none. Stack: a ->
	OpCheckNone
	// OpDefFunc is a defined function's prologue: binds `arity` arguments
	// (by const-index name, shallowest argument first) into the new
	// frame's scope. Operand: u8 arity, u32 x arity names.
	OpDefFunc
)

var opcodeNames = map[Opcode]string{
	OpPushInt:       "PUSH_INT",
	OpPushFloat:     "PUSH_FLOAT",
	OpPushBuiltin:   "PUSH_BUILTIN",
	OpPushLiteral:   "PUSH_LITERAL",
	OpPushNone:      "PUSH_NONE",
	OpLoad:          "LOAD",
	OpStore:         "STORE",
	OpCall:          "CALL",
	OpReturn:        "RETURN",
	OpCreateFunc:    "CREATE_FUNC",
	OpCondJumpTrue:  "COND_JUMP_TRUE",
	OpCondJumpFalse: "COND_JUMP_FALSE",
	OpAbsJump:       "ABS_JUMP",
	OpDup:           "DUP",
	OpRot3:          "ROT3",
	OpSwap:          "SWAP",
	OpPop:           "POP",
	OpCheckNone:     "CHECK_NONE",
	OpDefFunc:       "DEF_FUNC",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "UNKNOWN"
}

// operandWidth reports how many operand bytes (excluding the opcode byte
// itself) a fixed-width opcode occupies; OpDefFunc is variable-width and
// is not covered here (disassembly special-cases it).
var operandWidth = map[Opcode]int{
	OpPushInt:       4,
	OpPushFloat:     4,
	OpPushBuiltin:   4,
	OpPushLiteral:   4,
	OpPushNone:      0,
	OpLoad:          4,
	OpStore:         4,
	OpCall:          4,
	OpReturn:        0,
	OpCreateFunc:    4,
	OpCondJumpTrue:  4,
	OpCondJumpFalse: 4,
	OpAbsJump:       4,
	OpDup:           0,
	OpRot3:          0,
	OpSwap:          0,
	OpPop:           0,
	OpCheckNone:     0,
}
