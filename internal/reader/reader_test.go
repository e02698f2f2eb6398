package reader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextAdvancesLineAndColumn(t *testing.T) {
	r := New("t.pur", []byte("ab\ncd"))
	require.Equal(t, byte('a'), r.Next())
	require.Equal(t, 1, r.Line())
	require.Equal(t, 1, r.Column())
	require.Equal(t, byte('b'), r.Next())
	require.Equal(t, byte('\n'), r.Next())
	require.Equal(t, byte('c'), r.Next())
	require.Equal(t, 2, r.Line())
}

func TestPutBackReplaysByte(t *testing.T) {
	r := New("t.pur", []byte("ab"))
	c := r.Next()
	require.Equal(t, byte('a'), c)
	r.PutBack(c)
	require.Equal(t, byte('a'), r.Next())
	require.Equal(t, byte('b'), r.Next())
}

func TestNextIsStickyAtEOF(t *testing.T) {
	r := New("t.pur", []byte("a"))
	require.Equal(t, byte('a'), r.Next())
	require.Equal(t, byte(0), r.Next())
	require.Equal(t, byte(0), r.Next())
}
