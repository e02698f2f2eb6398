package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"purplec/internal/token"
	"purplec/internal/types"
)

func TestNewGlueNilHandling(t *testing.T) {
	leaf := NewLeaf(token.Identifier, token.Position{}, types.Void)
	require.Same(t, leaf, NewGlue(nil, leaf))
	require.Same(t, leaf, NewGlue(leaf, nil))

	g := NewGlue(leaf, leaf)
	require.Equal(t, token.Glue, g.Kind)
	require.Same(t, leaf, g.Left)
	require.Same(t, leaf, g.Right)
}

func TestNodeStringLiteralAndIdentifier(t *testing.T) {
	lit := NewLeaf(token.IntegerLiteral, token.Position{}, types.NewNumber(types.Number{Width: types.Width32}))
	lit.IntValue = 42
	require.Equal(t, "integer-literal(42)", lit.String())

	ident := NewLeaf(token.Identifier, token.Position{}, types.Void)
	ident.Name = "x"
	require.Equal(t, `identifier("x")`, ident.String())
}

func TestNodeStringNilIsSafe(t *testing.T) {
	var n *Node
	require.Equal(t, "<nil>", n.String())
}
