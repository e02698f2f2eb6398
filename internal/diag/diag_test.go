package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfRecoversWrappedKind(t *testing.T) {
	err := SyntaxErrorAt(Position{File: "a.pur", Line: 1, Column: 2}, "unexpected token %q", "!")
	require.Equal(t, SyntaxError, KindOf(err))
	require.Contains(t, err.Error(), "a.pur:1:2")
}

func TestKindOfDefaultsOnForeignError(t *testing.T) {
	require.Equal(t, ErrorGeneric, KindOf(assertErr{}))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestCollectorBuffersWarningsInOrder(t *testing.T) {
	c := NewCollector(0)
	c.Warn(WarningLow, nil, "first")
	c.Warn(WarningHigh, nil, "second")

	require.Equal(t, 2, c.Len())
	ws := c.Warnings()
	require.Equal(t, "first", ws[0].Msg)
	require.Equal(t, WarningHigh, ws[1].Severity)

	c.Flush()
	require.Equal(t, 0, c.Len())
}
