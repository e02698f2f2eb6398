// Package symtab implements a scope-chained, separately-hashed symbol
// table, grounded on original_source/include/translate/symbol_table.h and
// src/translate/symbol_table.c (FNV-1 hashing, hash-chain collision
// resolution, grow-by-doubling) and on the teacher's util.Stack
// (src/util/stack.go) for the scope-stack shape. Single-threaded: the
// teacher's stack guards itself with a mutex for concurrent worker
// goroutines; this compiler never runs more than one, so no lock is needed.
package symtab

import (
	"purplec/internal/diag"
	"purplec/internal/types"
)

// FNV-1 constants, matching original_source/include/utils/hash.h exactly.
// Note this is FNV-1 (multiply, then xor), not FNV-1a.
const (
	offsetBasis uint64 = 0xCBF29CE484222325
	prime       uint64 = 0x100000001B3
)

// fnv1 hashes name using the 64-bit FNV-1 algorithm.
func fnv1(name string) uint64 {
	h := offsetBasis
	for i := 0; i < len(name); i++ {
		h *= prime
		h ^= uint64(name[i])
	}
	return h
}

// defaultCapacity is the default bucket count for a new Table
// (spec.md §4.4: "configurable bucket count (default 1024)").
const defaultCapacity = 1024

// Entry is one symbol table entry: a name, its declared Type, and (for
// locals only) the most recently produced IR value bound to this symbol.
// The IR value slot is represented as interface{} here to avoid a package
// dependency cycle with internal/ir. No package currently sets it; the
// emitter tracks parameter slots in its own map instead.
type Entry struct {
	Name       string
	Type       types.Type
	LastValue  interface{}
	next       *Entry // hash-chain link within one bucket.
}

// Table is a separately-chained hash table keyed by FNV-1 of the symbol
// name, with grow-by-doubling.
type Table struct {
	buckets []*Entry
	count   int
	next    *Table // non-owning back-edge to the enclosing scope.
}

// NewTable returns an empty Table with capacity buckets (defaultCapacity if
// capacity <= 0).
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Table{buckets: make([]*Entry, capacity)}
}

// Find walks the bucket chain for name, returning its Entry or nil.
func (t *Table) Find(name string) *Entry {
	idx := fnv1(name) % uint64(len(t.buckets))
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Add inserts a new entry for name with the given type. It errors if name
// is already present in this table (spec.md §4.4: "add errors if find
// returns non-null"), mirroring original_source's
// add_symbol_table_entry (src/translate/symbol_table.c).
func (t *Table) Add(name string, typ types.Type) (*Entry, error) {
	if t.Find(name) != nil {
		return nil, diag.New(diag.IdentifierError, "redeclaration of identifier %q", name)
	}
	if t.count >= len(t.buckets) {
		t.resize()
	}
	idx := fnv1(name) % uint64(len(t.buckets))
	e := &Entry{Name: name, Type: typ, next: t.buckets[idx]}
	t.buckets[idx] = e
	t.count++
	return e, nil
}

// resize doubles the bucket count and rehashes every entry.
func (t *Table) resize() {
	old := t.buckets
	t.buckets = make([]*Entry, len(old)*2)
	for _, head := range old {
		for e := head; e != nil; {
			nextEntry := e.next
			idx := fnv1(e.Name) % uint64(len(t.buckets))
			e.next = t.buckets[idx]
			t.buckets[idx] = e
			e = nextEntry
		}
	}
}

// Stack is an ordered chain of Tables forming the scope stack
// (spec.md §3: "Ordered link to the enclosing table forms a stack"). The
// bottom table is the global scope and the stack is always non-empty
// during parsing (spec.md invariant).
type Stack struct {
	top *Table
	size int
}

// NewStack returns a Stack containing a single global-scope Table.
func NewStack(globalCapacity int) *Stack {
	s := &Stack{}
	s.Push(globalCapacity)
	return s
}

// Push creates a new Table with the given capacity and makes it the current
// scope.
func (s *Stack) Push(capacity int) *Table {
	t := NewTable(capacity)
	t.next = s.top
	s.top = t
	s.size++
	return t
}

// PushExisting makes t the current scope, linking it above the prior top.
func (s *Stack) PushExisting(t *Table) {
	t.next = s.top
	s.top = t
	s.size++
}

// Pop removes and returns the current (innermost) scope. The global scope
// (the last remaining table) is never popped by callers that respect
// spec.md's "stack is always non-empty" invariant.
func (s *Stack) Pop() *Table {
	if s.top == nil {
		return nil
	}
	t := s.top
	s.top = t.next
	t.next = nil
	s.size--
	return t
}

// Peek returns the current (innermost) scope without removing it.
func (s *Stack) Peek() *Table {
	return s.top
}

// Size returns the number of scopes currently on the stack.
func (s *Stack) Size() int { return s.size }

// Find walks the scope stack from innermost to outermost looking for name,
// implementing spec.md §4.3's "Identifier resolution" rule.
func (s *Stack) Find(name string) *Entry {
	for t := s.top; t != nil; t = t.next {
		if e := t.Find(name); e != nil {
			return e
		}
	}
	return nil
}

// Global returns the outermost (global) scope table.
func (s *Stack) Global() *Table {
	t := s.top
	for t != nil && t.next != nil {
		t = t.next
	}
	return t
}
