// Package ast defines the abstract syntax tree produced by the parser:
// tagged nodes with up to three children and a value payload, grounded on
// the teacher's ir.Node (src/ir/nodetype.go) but generalized from a
// variadic Children slice to spec.md §3's explicit ternary Left/Mid/Right
// shape required by the IR Emitter's structured control-flow lowering.
package ast

import (
	"fmt"

	"purplec/internal/token"
	"purplec/internal/types"
)

// Node is one AST node. Its Kind is either a token.Kind describing a
// statement/operator/literal, or one of the synthetic kinds
// (token.Glue, token.FunctionDeclaration, token.FunctionCall). At most one
// of IntValue/Name is meaningful, depending on Kind; Type may accompany
// either.
type Node struct {
	Kind token.Kind
	Pos  token.Position

	Left  *Node
	Mid   *Node
	Right *Node

	// Payload: at most one of IntValue/Name is populated; Type is set
	// alongside it.
	IntValue int64       // integer literal value.
	Name     string      // identifier name, or function name for calls/decls.
	Type     types.Type  // synthesized type, attached by the parser/emitter.
}

// NewGlue builds a glue node sequencing left then right, with no semantics
// of its own beyond ordering (spec.md glossary: "Glue node").
func NewGlue(left, right *Node) *Node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return &Node{Kind: token.Glue, Left: left, Right: right, Pos: left.Pos}
}

// New builds a node with the given kind, children and type.
func New(kind token.Kind, pos token.Position, left, mid, right *Node, typ types.Type) *Node {
	return &Node{Kind: kind, Pos: pos, Left: left, Mid: mid, Right: right, Type: typ}
}

// NewLeaf builds a childless node carrying an integer or identifier payload.
func NewLeaf(kind token.Kind, pos token.Position, typ types.Type) *Node {
	return &Node{Kind: kind, Pos: pos, Type: typ}
}

// String returns a short, single-line description of n, mirroring the
// teacher's Node.String() (src/ir/nodetype.go).
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case token.Identifier:
		return fmt.Sprintf("%s(%q)", n.Kind, n.Name)
	case token.IntegerLiteral, token.ByteLiteral, token.CharLiteral, token.ShortLiteral, token.LongLiteral:
		return fmt.Sprintf("%s(%d)", n.Kind, n.IntValue)
	default:
		return n.Kind.String()
	}
}

// Print recursively prints n and its children, indenting per depth, in the
// manner of the teacher's Node.Print (src/ir/nodetype.go).
func (n *Node) Print(depth int) {
	if n == nil {
		fmt.Printf("%*s---> NIL\n", depth<<1, "")
		return
	}
	fmt.Printf("%*s%s\n", depth<<1, "", n.String())
	for _, c := range []*Node{n.Left, n.Mid, n.Right} {
		if c != nil {
			c.Print(depth + 1)
		}
	}
}
