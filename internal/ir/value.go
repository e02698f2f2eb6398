// Package ir models the IR Emitter's value and bookkeeping types: tagged
// IR values (none/constant/virtual-register/label), the per-function
// pending stack-allocation queue, and the monotonic register/label
// counters. Grounded on spec.md §3 ("IR Value", "Stack-Entry Node") and on
// the teacher's util.NewLabel (src/util/label.go) for the label-allocator
// shape, simplified from a channel-serviced global allocator to a plain
// per-Compiler counter per spec.md §5's single-threaded mandate.
package ir

import (
	"fmt"

	"purplec/internal/types"
)

// ValueKind discriminates Value's tagged union.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueConstant
	ValueRegister
	ValueGlobal
	ValueLabel
)

// Value is a tagged IR value (spec.md §3). ValueGlobal is an extension
// beyond spec.md's three named kinds: LLVM addresses global variables by
// name (`@x`), not by a numbered virtual register, so a fourth kind
// distinguishes "this operand prints as `@name`" from "this operand prints
// as `%N`" while both otherwise participate in ensure-loaded/store the same
// way a virtual-register address would.
type Value struct {
	Kind ValueKind

	// ValueConstant:
	ConstInt int64

	// ValueRegister:
	Register    uint
	Number      types.Number
	SourceIdent string // optional: "this value was just loaded from global X".

	// ValueGlobal:
	GlobalName string

	// ValueLabel:
	Label uint
}

// Operand returns the textual LLVM operand for v: "%N" for a register,
// "@name" for a global, or the decimal constant value.
func (v Value) Operand() string {
	switch v.Kind {
	case ValueRegister:
		return fmt.Sprintf("%%%d", v.Register)
	case ValueGlobal:
		return "@" + v.GlobalName
	case ValueConstant:
		return fmt.Sprintf("%d", v.ConstInt)
	case ValueLabel:
		return fmt.Sprintf("%%L%d", v.Label)
	}
	return "<none>"
}

// Global builds a global-address IR value. Its pointer depth is the
// declared pointer depth plus one, since `@name` itself denotes the
// address of the storage (matching a local's alloca-slot register).
func Global(name string, n types.Number) Value {
	return Value{Kind: ValueGlobal, GlobalName: name, Number: types.Number{Width: n.Width, PointerDepth: n.PointerDepth + 1}}
}

// None is the absence of a value.
var None = Value{Kind: ValueNone}

// Constant builds a constant IR value of width w.
func Constant(v int64, w types.Width) Value {
	return Value{Kind: ValueConstant, ConstInt: v, Number: types.Number{Width: w}}
}

// Register builds a virtual-register IR value.
func Register(idx uint, n types.Number) Value {
	return Value{Kind: ValueRegister, Register: idx, Number: n}
}

// Label builds a label IR value.
func Label(idx uint) Value {
	return Value{Kind: ValueLabel, Label: idx}
}

// PointerDepth returns the value's pointer depth; constants and labels are
// always depth 0.
func (v Value) PointerDepth() int {
	if v.Kind == ValueRegister || v.Kind == ValueGlobal {
		return v.Number.PointerDepth
	}
	return 0
}

// Width returns the value's integer width.
func (v Value) Width() types.Width {
	return v.Number.Width
}

// WithSourceIdent tags a loaded register value with the global identifier
// it was just loaded from, mirroring original_source's "just_loaded"
// tracking in src/translate/llvm.c. The emitter records the tag but never
// reads it back: every load of a global is emitted as its own instruction.
func (v Value) WithSourceIdent(name string) Value {
	v.SourceIdent = name
	return v
}

// StackEntry is a pending local allocation: virtual-register index, width,
// pointer depth and alignment, linked into a per-function queue
// (spec.md §3: "Stack-Entry Node"). original_source's
// prepend_stack_entry_linked_list (src/translate/llvm_stack_entry.c) has
// two distinct signatures across files; per spec.md §9 this
// re-implementation exposes exactly one: Push takes the entry by value.
type StackEntry struct {
	Register     uint
	Width        types.Width
	PointerDepth int
	Align        int
	next         *StackEntry
}

// StackEntryQueue is the per-function pending-allocation queue described in
// spec.md §3/§4.5 (the free-register list is a separate field of the
// emitter). It is reset on function entry.
type StackEntryQueue struct {
	head *StackEntry
	tail *StackEntry
	size int
}

// Push appends an entry to the queue, taking it by value (resolving
// spec.md §9's Open Question about the dual prepend signature).
func (q *StackEntryQueue) Push(e StackEntry) {
	e.next = nil
	node := &e
	if q.tail == nil {
		q.head = node
		q.tail = node
	} else {
		q.tail.next = node
		q.tail = node
	}
	q.size++
}

// Drain removes and returns every queued entry in insertion order, then
// empties the queue.
func (q *StackEntryQueue) Drain() []StackEntry {
	out := make([]StackEntry, 0, q.size)
	for e := q.head; e != nil; e = e.next {
		out = append(out, StackEntry{Register: e.Register, Width: e.Width, PointerDepth: e.PointerDepth, Align: e.Align})
	}
	q.head, q.tail, q.size = nil, nil, 0
	return out
}

// Len returns the number of entries currently queued.
func (q *StackEntryQueue) Len() int { return q.size }

// Counter allocates monotonically increasing indices, used separately for
// virtual registers (per-function, reset on function entry) and labels
// (whole-program, never reset). Plain counters suffice per spec.md §5:
// the compiler is single-threaded, unlike the teacher's channel-serviced
// concurrent label allocator.
type Counter struct {
	next uint
}

// NewCounter returns a Counter starting at start.
func NewCounter(start uint) *Counter {
	return &Counter{next: start}
}

// Next returns the next value and advances the counter.
func (c *Counter) Next() uint {
	v := c.next
	c.next++
	return v
}

// Reset restores the counter to start.
func (c *Counter) Reset(start uint) {
	c.next = start
}
