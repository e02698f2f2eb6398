package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"purplec/internal/token"
)

func TestWiderComparesByBitWidth(t *testing.T) {
	require.Equal(t, Width64, Wider(Width8, Width64))
	require.Equal(t, Width64, Wider(Width64, Width8))
	require.Equal(t, Width32, Wider(Width32, Width32))
}

func TestFromTokenKindKnown(t *testing.T) {
	cases := []struct {
		k token.Kind
		w Width
	}{
		{token.Bool, Width1},
		{token.ByteLiteral, Width8},
		{token.Short, Width16},
		{token.IntegerLiteral, Width32},
		{token.LongLiteral, Width64},
	}
	for _, c := range cases {
		w, err := FromTokenKind(c.k)
		require.NoError(t, err)
		require.Equal(t, c.w, w)
	}
}

func TestFromTokenKindUnknownErrors(t *testing.T) {
	_, err := FromTokenKind(token.Semicolon)
	require.Error(t, err)
}

func TestNumberDerefAndAddrOf(t *testing.T) {
	n := Number{Width: Width32, PointerDepth: 1}
	require.Equal(t, 0, n.Deref().PointerDepth)
	require.Equal(t, 2, n.AddrOf().PointerDepth)
}

func TestNumberLLVM(t *testing.T) {
	require.Equal(t, "i32", Number{Width: Width32}.LLVM())
	require.Equal(t, "i32**", Number{Width: Width32, PointerDepth: 2}.LLVM())
}

func TestVoidIsVoid(t *testing.T) {
	require.True(t, Void.IsVoid())
	require.False(t, NewNumber(Number{Width: Width32}).IsVoid())
}
