// Tests the scanner by verifying a small Purple program tokenizes in
// the expected order, grounded on the teacher's lexer_test.go technique
// of a hand-transcribed token tuple slice compared in order (see
// hhramberg-go-vslc/src/frontend/lexer_test.go).
package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"purplec/internal/reader"
	"purplec/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	r := reader.New("test.pur", []byte(src))
	l := New(r)
	var toks []token.Token
	for {
		tok, err := l.Scan()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanBasicDeclaration(t *testing.T) {
	toks := scanAll(t, "int add(int a, int b) { return a + b; }")
	kinds := make([]token.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	require.Equal(t, []token.Kind{
		token.Int, token.Identifier, token.LeftParen,
		token.Int, token.Identifier, token.Comma,
		token.Int, token.Identifier, token.RightParen,
		token.LeftBrace,
		token.Return, token.Identifier, token.Plus, token.Identifier, token.Semicolon,
		token.RightBrace,
		token.EOF,
	}, kinds)
}

func TestScanTwoCharOperators(t *testing.T) {
	toks := scanAll(t, "a == b != c <= d >= e ** f")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	require.Equal(t, []token.Kind{
		token.Identifier, token.Eq, token.Identifier, token.Neq, token.Identifier,
		token.Le, token.Identifier, token.Ge, token.Identifier, token.Pow, token.Identifier,
		token.EOF,
	}, kinds)
}

func TestScanKeywordReclassification(t *testing.T) {
	toks := scanAll(t, "if while for true false print")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	require.Equal(t, []token.Kind{
		token.If, token.While, token.For, token.True, token.False, token.Print, token.EOF,
	}, kinds)
}

func TestScanNumericLiteralBases(t *testing.T) {
	toks := scanAll(t, "0x1F 0b101 0o17 16#FF 1'000 42L")
	require.Len(t, toks, 7) // 6 literals + EOF
	require.Equal(t, int64(31), toks[0].IntValue)
	require.Equal(t, int64(5), toks[1].IntValue)
	require.Equal(t, int64(15), toks[2].IntValue)
	require.Equal(t, int64(255), toks[3].IntValue)
	require.Equal(t, int64(1000), toks[4].IntValue)
	require.Equal(t, token.LongLiteral, toks[5].Kind)
	require.Equal(t, int64(42), toks[5].IntValue)
}

func TestScanBareBangIsSyntaxError(t *testing.T) {
	r := reader.New("test.pur", []byte("!"))
	l := New(r)
	_, err := l.Scan()
	require.Error(t, err)
}

func TestScanIdentifierLengthLimit(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	r := reader.New("test.pur", long)
	l := New(r)
	_, err := l.Scan()
	require.Error(t, err)
}
