// Grounded on the teacher's ir/symtab.go tests' "push scope, add, find,
// pop" shape (hhramberg-go-vslc/src/ir/symtab_test.go exercises the same
// scope-stack sequence this reproduces for the FNV-1 hash-chained table).
package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"purplec/internal/types"
)

func TestTableAddAndFind(t *testing.T) {
	tab := NewTable(4)
	_, err := tab.Add("x", types.NewNumber(types.Number{Width: types.Width32}))
	require.NoError(t, err)

	e := tab.Find("x")
	require.NotNil(t, e)
	require.Equal(t, "x", e.Name)
	require.Nil(t, tab.Find("y"))
}

func TestTableAddDuplicateErrors(t *testing.T) {
	tab := NewTable(4)
	_, err := tab.Add("x", types.Void)
	require.NoError(t, err)
	_, err = tab.Add("x", types.Void)
	require.Error(t, err)
}

func TestTableResizesPastCapacity(t *testing.T) {
	tab := NewTable(2)
	for i := 0; i < 10; i++ {
		name := string(rune('a' + i))
		_, err := tab.Add(name, types.Void)
		require.NoError(t, err)
	}
	for i := 0; i < 10; i++ {
		name := string(rune('a' + i))
		require.NotNil(t, tab.Find(name))
	}
}

func TestStackScopeShadowing(t *testing.T) {
	s := NewStack(4)
	_, err := s.Global().Add("g", types.Void)
	require.NoError(t, err)

	s.Push(4)
	_, err = s.Peek().Add("g", types.NewNumber(types.Number{Width: types.Width8}))
	require.NoError(t, err)

	inner := s.Find("g")
	require.Equal(t, types.Width8, inner.Type.NumberValue.Width)

	s.Pop()
	outer := s.Find("g")
	require.True(t, outer.Type.IsVoid())
}

func TestFnv1IsDeterministic(t *testing.T) {
	require.Equal(t, fnv1("purple"), fnv1("purple"))
	require.NotEqual(t, fnv1("purple"), fnv1("elpurp"))
}
