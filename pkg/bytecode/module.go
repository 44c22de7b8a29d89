package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// segmentCap is the fixed capacity of one chain segment. Appending never
// reallocates an existing segment; once full, a new one is linked in front
// of it, so append stays amortized O(1) regardless of final size.
const segmentCap = 1024

// segment is one fixed-capacity, reverse-linked node of a chain.
type segment[T any] struct {
	items [segmentCap]T
	n     int
	prev  *segment[T]
}

// chain is an append-only sequence built from reverse-linked segments, so
// growing it never copies already-written data. collect() compacts it into
// one contiguous slice in append order.
type chain[T any] struct {
	tail  *segment[T]
	total int
}

func newChain[T any]() *chain[T] {
	return &chain[T]{tail: &segment[T]{}}
}

func (c *chain[T]) append(v T) int {
	if c.tail.n == segmentCap {
		c.tail = &segment[T]{prev: c.tail}
	}
	c.tail.items[c.tail.n] = v
	c.tail.n++
	c.total++
	return c.total - 1
}

func (c *chain[T]) len() int { return c.total }

func (c *chain[T]) collect() []T {
	var order []*segment[T]
	for s := c.tail; s != nil; s = s.prev {
		order = append(order, s)
	}
	out := make([]T, 0, c.total)
	for i := len(order) - 1; i >= 0; i-- {
		s := order[i]
		out = append(out, s.items[:s.n]...)
	}
	return out
}

// SourceMapEntry records which source position produced the instruction at
// Offset, for error reporting and disassembly.
type SourceMapEntry struct {
	Offset     int
	Line, Column int
}

// Module is the immutable, finalized result of a ModuleBuilder: an interned
// constant pool and a flat byte-code stream with all labels patched to
// concrete offsets.
type Module struct {
	Constants []string
	Code      []byte
	SourceMap []SourceMapEntry
	Entry     int
	Filename  string
}

// ModuleBuilder accumulates constants and bytecode as a program is emitted,
// deferring every jump/create-func target to a label id resolved only once
// the whole program is known. Labels let a forward reference (an `if`'s
// jump past a not-yet-emitted else branch, a function referencing itself)
// be recorded before its definition exists.
type ModuleBuilder struct {
	code      *chain[byte]
	constants *chain[string]
	constIdx  map[string]int
	sourceMap []SourceMapEntry

	labelDefs map[int]int   // label id -> byte offset, once MarkLabel runs
	labelRefs map[int][]int // label id -> byte offsets of 4-byte placeholders to patch
	nextLabel int

	entryLabel int
	entrySet   bool
	filename   string
}

// NewModuleBuilder creates an empty builder. filename is optional and is
// carried into the finished Module for error messages; pass "" for none.
func NewModuleBuilder(filename string) *ModuleBuilder {
	return &ModuleBuilder{
		code:      newChain[byte](),
		constants: newChain[string](),
		constIdx:  make(map[string]int),
		labelDefs: make(map[int]int),
		labelRefs: make(map[int][]int),
		filename:  filename,
	}
}

// Intern returns the stable constant-pool index for s, inserting it if this
// is the first occurrence.
func (b *ModuleBuilder) Intern(s string) int {
	if idx, ok := b.constIdx[s]; ok {
		return idx
	}
	idx := b.constants.append(s)
	b.constIdx[s] = idx
	return idx
}

// NewLabel allocates a fresh label id with no definition yet.
func (b *ModuleBuilder) NewLabel() int {
	id := b.nextLabel
	b.nextLabel++
	return id
}

// MarkLabel records that label now resolves to the current end of the code
// stream. Must be called exactly once per label before Finalize.
func (b *ModuleBuilder) MarkLabel(label int) {
	b.labelDefs[label] = b.code.len()
}

// Offset reports the current end of the code stream, e.g. for recording a
// SourceMapEntry around the next emitted instruction.
func (b *ModuleBuilder) Offset() int { return b.code.len() }

// MarkSource appends a source-map entry pointing at the current offset.
func (b *ModuleBuilder) MarkSource(line, col int) {
	b.sourceMap = append(b.sourceMap, SourceMapEntry{Offset: b.code.len(), Line: line, Column: col})
}

// SetEntry records which label the finished Module should begin execution
// at (normally the `$init` function's label).
func (b *ModuleBuilder) SetEntry(label int) {
	b.entryLabel = label
	b.entrySet = true
}

// emitByte appends a single raw byte.
func (b *ModuleBuilder) emitByte(v byte) { b.code.append(v) }

func (b *ModuleBuilder) emitU32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	for _, x := range buf {
		b.code.append(x)
	}
}

func (b *ModuleBuilder) emitI32(v int32) { b.emitU32(uint32(v)) }

func (b *ModuleBuilder) emitF32(v float32) { b.emitU32(math.Float32bits(v)) }

// emitLabelRef appends a placeholder u32 for label, remembering the offset
// so Finalize can patch it once every label is defined.
func (b *ModuleBuilder) emitLabelRef(label int) {
	off := b.code.len()
	b.labelRefs[label] = append(b.labelRefs[label], off)
	b.emitU32(0)
}

// --- opcode-level emission helpers -----------------------------------------

func (b *ModuleBuilder) PushInt(v int32)     { b.emitByte(byte(OpPushInt)); b.emitI32(v) }
func (b *ModuleBuilder) PushFloat(v float32) { b.emitByte(byte(OpPushFloat)); b.emitF32(v) }
func (b *ModuleBuilder) PushBuiltin(name string) {
	b.emitByte(byte(OpPushBuiltin))
	b.emitU32(uint32(b.Intern(name)))
}
func (b *ModuleBuilder) PushLiteral(s string) {
	b.emitByte(byte(OpPushLiteral))
	b.emitU32(uint32(b.Intern(s)))
}
func (b *ModuleBuilder) PushNone() { b.emitByte(byte(OpPushNone)) }
func (b *ModuleBuilder) Load(name string) {
	b.emitByte(byte(OpLoad))
	b.emitU32(uint32(b.Intern(name)))
}
func (b *ModuleBuilder) Store(name string) {
	b.emitByte(byte(OpStore))
	b.emitU32(uint32(b.Intern(name)))
}
func (b *ModuleBuilder) Call(arity int) { b.emitByte(byte(OpCall)); b.emitU32(uint32(arity)) }
func (b *ModuleBuilder) Return()        { b.emitByte(byte(OpReturn)) }
func (b *ModuleBuilder) CreateFunc(label int) {
	b.emitByte(byte(OpCreateFunc))
	b.emitLabelRef(label)
}
func (b *ModuleBuilder) CondJumpTrue(label int) {
	b.emitByte(byte(OpCondJumpTrue))
	b.emitLabelRef(label)
}
func (b *ModuleBuilder) CondJumpFalse(label int) {
	b.emitByte(byte(OpCondJumpFalse))
	b.emitLabelRef(label)
}
func (b *ModuleBuilder) AbsJump(label int) { b.emitByte(byte(OpAbsJump)); b.emitLabelRef(label) }
func (b *ModuleBuilder) Dup()              { b.emitByte(byte(OpDup)) }
func (b *ModuleBuilder) Rot3()             { b.emitByte(byte(OpRot3)) }
func (b *ModuleBuilder) Swap()             { b.emitByte(byte(OpSwap)) }
func (b *ModuleBuilder) Pop()              { b.emitByte(byte(OpPop)) }
func (b *ModuleBuilder) CheckNone()        { b.emitByte(byte(OpCheckNone)) }

// DefFunc emits a function prologue binding params (shallowest argument
// first) into the new call frame's scope.
func (b *ModuleBuilder) DefFunc(params []string) {
	b.emitByte(byte(OpDefFunc))
	b.emitByte(byte(len(params)))
	for _, p := range params {
		b.emitU32(uint32(b.Intern(p)))
	}
}

// Finalize compacts the accumulated segments into a Module, patching every
// label reference with its definition's 4-byte big-endian offset. Returns an
// error if a label was referenced but never marked, or if no entry point was
// set or its label never marked; a marked label that is never referenced is
// not an error.
func (b *ModuleBuilder) Finalize() (*Module, error) {
	code := b.code.collect()
	for label, offsets := range b.labelRefs {
		def, ok := b.labelDefs[label]
		if !ok {
			return nil, fmt.Errorf("bytecode: label %d referenced but never defined", label)
		}
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(def))
		for _, off := range offsets {
			copy(code[off:off+4], buf[:])
		}
	}
	if !b.entrySet {
		return nil, fmt.Errorf("bytecode: no entry point set")
	}
	entryOff, ok := b.labelDefs[b.entryLabel]
	if !ok {
		return nil, fmt.Errorf("bytecode: entry label %d never defined", b.entryLabel)
	}
	return &Module{
		Constants: b.constants.collect(),
		Code:      code,
		SourceMap: append([]SourceMapEntry(nil), b.sourceMap...),
		Entry:     entryOff,
		Filename:  b.filename,
	}, nil
}
