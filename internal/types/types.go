// Package types implements the semantic type system: Number (integer width
// plus pointer depth), and Type (void, Number, or Function), grounded on
// original_source/include/types/number.h, include/types/type.h and
// include/types/function.h.
package types

import (
	"fmt"
	"strings"

	"purplec/internal/diag"
	"purplec/internal/token"
)

// Width is the integer width tag. Ordering is total and determines
// promotion: NT_INT1 < NT_INT8 < NT_INT16 < NT_INT32 < NT_INT64.
type Width int

const (
	Width1 Width = iota
	Width8
	Width16
	Width32
	Width64
)

// Bits returns the bit width represented by w.
func (w Width) Bits() int {
	switch w {
	case Width1:
		return 1
	case Width8:
		return 8
	case Width16:
		return 16
	case Width32:
		return 32
	case Width64:
		return 64
	}
	return 0
}

// Bytes returns the natural alignment, in bytes, of a value of width w
// (spec.md §6: "Alignments: 1 byte for i8, 2 for i16, 4 for i32, 8 for
// i64"). Width1 (i1, booleans) is stored as a byte, matching the original's
// byte-sized bool representation.
func (w Width) Bytes() int {
	switch w {
	case Width1, Width8:
		return 1
	case Width16:
		return 2
	case Width32:
		return 4
	case Width64:
		return 8
	}
	return 0
}

// LLVM returns the textual LLVM integer type for w, e.g. "i32".
func (w Width) LLVM() string {
	return fmt.Sprintf("i%d", w.Bits())
}

func (w Width) String() string {
	switch w {
	case Width1:
		return "bool"
	case Width8:
		return "byte"
	case Width16:
		return "short"
	case Width32:
		return "int"
	case Width64:
		return "long"
	}
	return "?"
}

// Wider returns the wider of a and b. Ties return a. This is an explicit
// ordering function by bit width rather than relying on enum-declaration
// order, resolving spec.md §9's "MAX on an enum" Open Question.
func Wider(a, b Width) Width {
	if b.Bits() > a.Bits() {
		return b
	}
	return a
}

// FromTokenKind converts a type-keyword or literal token kind to its Number
// width. original_source's token_type_to_number_type (src/types/number.c)
// falls off the end and returns -1 for unrecognized input; per spec.md §9
// this re-implementation signals an error instead of a sentinel value.
func FromTokenKind(k token.Kind) (Width, error) {
	switch k {
	case token.Bool, token.True, token.False:
		return Width1, nil
	case token.Byte, token.ByteLiteral, token.Char, token.CharLiteral:
		return Width8, nil
	case token.Short, token.ShortLiteral:
		return Width16, nil
	case token.Int, token.IntegerLiteral:
		return Width32, nil
	case token.Long, token.LongLiteral:
		return Width64, nil
	}
	return 0, diag.CompilerErrorf("no Number width corresponds to token kind %s", k)
}

// Number is an integer value descriptor: a width tag and a pointer depth
// (spec.md §3).
type Number struct {
	Width        Width
	PointerDepth int
}

// LLVM returns the textual LLVM type for n, including trailing '*' per
// pointer depth, e.g. Number{Width32, 2}.LLVM() == "i32**".
func (n Number) LLVM() string {
	return n.Width.LLVM() + strings.Repeat("*", n.PointerDepth)
}

func (n Number) String() string {
	return n.Width.String() + strings.Repeat("*", n.PointerDepth)
}

// Deref returns n with pointer depth decreased by one (spec.md §3: "loads
// decrease depth by 1").
func (n Number) Deref() Number {
	return Number{Width: n.Width, PointerDepth: n.PointerDepth - 1}
}

// AddrOf returns n with pointer depth increased by one ("address-of
// increases by 1").
func (n Number) AddrOf() Number {
	return Number{Width: n.Width, PointerDepth: n.PointerDepth + 1}
}

// Parameter is a named, typed function parameter.
type Parameter struct {
	Number Number
	Name   string
}

// Function is a function's return type and ordered parameter list.
// Functions are not first-class values (spec.md §3).
type Function struct {
	Return     Type
	Parameters []Parameter
}

// Kind discriminates the Type union.
type Kind int

const (
	KindVoid Kind = iota
	KindNumber
	KindFunction
)

// Type is either void, a Number descriptor, or a Function descriptor
// (spec.md §3). Exactly one of NumberValue/FunctionValue is meaningful,
// selected by Kind.
type Type struct {
	Kind          Kind
	NumberValue   Number
	FunctionValue Function
}

// Void is the singleton void type.
var Void = Type{Kind: KindVoid}

// NewNumber wraps a Number descriptor in a Type.
func NewNumber(n Number) Type {
	return Type{Kind: KindNumber, NumberValue: n}
}

// NewFunction wraps a Function descriptor in a Type.
func NewFunction(f Function) Type {
	return Type{Kind: KindFunction, FunctionValue: f}
}

// IsVoid reports whether t is the void type.
func (t Type) IsVoid() bool { return t.Kind == KindVoid }

func (t Type) String() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindNumber:
		return t.NumberValue.String()
	case KindFunction:
		parts := make([]string, len(t.FunctionValue.Parameters))
		for i, p := range t.FunctionValue.Parameters {
			parts[i] = p.Number.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.FunctionValue.Return)
	}
	return "?"
}
