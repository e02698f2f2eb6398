// Package lexer implements the scanner: scan() produces one Token at a
// time from a reader.Reader. Structurally grounded on the teacher's
// frontend/lexer.go + frontend/lexerStates.go state-machine scanner (a
// dispatch-by-leading-character loop, one/two-character operator
// resolution via one-rune lookahead), but collapsed from the teacher's
// goroutine+channel pipeline into a single synchronous method per spec.md
// §5's single-threaded mandate. The literal grammar (base prefixes, digit
// separators, identifier length limit, keyword reclassification) is
// grounded on original_source/src/scan.c and include/scan.h.
package lexer

import (
	"strings"

	"purplec/internal/diag"
	"purplec/internal/reader"
	"purplec/internal/token"
)

const eof = 0

// maxIdentifierLength mirrors original_source's D_MAX_IDENTIFIER_LENGTH
// (include/data.h): 255.
const maxIdentifierLength = 255

// Lexer scans tokens from a Reader.
type Lexer struct {
	r *reader.Reader
}

// New wraps r in a Lexer.
func New(r *reader.Reader) *Lexer {
	return &Lexer{r: r}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlphaNumeric(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return int(c-'0') < base
	case c >= 'a' && c <= 'z':
		return int(c-'a'+10) < base
	case c >= 'A' && c <= 'Z':
		return int(c-'A'+10) < base
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func digitValue(c byte) int64 {
	switch {
	case c >= '0' && c <= '9':
		return int64(c - '0')
	case c >= 'a' && c <= 'z':
		return int64(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int64(c-'A') + 10
	}
	return -1
}

// Scan reads and returns the next token. Whitespace is skipped. EOF is
// returned as a token.EOF token once the stream is exhausted.
func (l *Lexer) Scan() (token.Token, error) {
	c := l.skipSpace()
	pos := token.Position{File: l.r.Name(), Line: l.r.Line(), Column: l.r.Column()}

	switch {
	case c == eof:
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	case isDigit(c):
		return l.scanNumber(c, pos)
	case isIdentStart(c):
		return l.scanIdentifier(c, pos)
	}

	switch c {
	case '+':
		return token.Token{Kind: token.Plus, Pos: pos}, nil
	case '-':
		return token.Token{Kind: token.Minus, Pos: pos}, nil
	case '/':
		return token.Token{Kind: token.Slash, Pos: pos}, nil
	case ';':
		return token.Token{Kind: token.Semicolon, Pos: pos}, nil
	case '(':
		return token.Token{Kind: token.LeftParen, Pos: pos}, nil
	case ')':
		return token.Token{Kind: token.RightParen, Pos: pos}, nil
	case '{':
		return token.Token{Kind: token.LeftBrace, Pos: pos}, nil
	case '}':
		return token.Token{Kind: token.RightBrace, Pos: pos}, nil
	case ',':
		return token.Token{Kind: token.Comma, Pos: pos}, nil
	case '&':
		return token.Token{Kind: token.Amp, Pos: pos}, nil
	case '*':
		if l.peek() == '*' {
			l.next()
			return token.Token{Kind: token.Pow, Pos: pos}, nil
		}
		return token.Token{Kind: token.Star, Pos: pos}, nil
	case '=':
		if l.peek() == '=' {
			l.next()
			return token.Token{Kind: token.Eq, Pos: pos}, nil
		}
		return token.Token{Kind: token.Assign, Pos: pos}, nil
	case '<':
		if l.peek() == '=' {
			l.next()
			return token.Token{Kind: token.Le, Pos: pos}, nil
		}
		return token.Token{Kind: token.Lt, Pos: pos}, nil
	case '>':
		if l.peek() == '=' {
			l.next()
			return token.Token{Kind: token.Ge, Pos: pos}, nil
		}
		return token.Token{Kind: token.Gt, Pos: pos}, nil
	case '!':
		if l.peek() == '=' {
			l.next()
			return token.Token{Kind: token.Neq, Pos: pos}, nil
		}
		// original_source's scan() has no case for a bare '!': it falls
		// through unmatched and is later reported as "unrecognized
		// token". spec.md §9 flags this as worth resolving explicitly
		// rather than silently falling through; this implementation
		// rejects it outright as a syntax error.
		return token.Token{}, diag.SyntaxErrorAt(diagPos(pos), "unexpected character '!' (bare '!' is not a valid operator)")
	}

	return token.Token{}, diag.SyntaxErrorAt(diagPos(pos), "unrecognized character %q", c)
}

func diagPos(p token.Position) diag.Position {
	return diag.Position{File: p.File, Line: p.Line, Column: p.Column}
}

func (l *Lexer) next() byte {
	return l.r.Next()
}

func (l *Lexer) peek() byte {
	c := l.r.Next()
	if c != eof {
		l.r.PutBack(c)
	}
	return c
}

// skipSpace consumes whitespace and returns the first non-whitespace byte
// (or eof).
func (l *Lexer) skipSpace() byte {
	for {
		c := l.next()
		if c == eof || !isSpace(c) {
			return c
		}
	}
}

// scanIdentifier scans [A-Za-z_$][A-Za-z0-9_$]*, reclassifying it as a
// keyword on an exact match (spec.md §4.2).
func (l *Lexer) scanIdentifier(first byte, pos token.Position) (token.Token, error) {
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		c := l.next()
		if !isIdentCont(c) {
			if c != eof {
				l.r.PutBack(c)
			}
			break
		}
		sb.WriteByte(c)
		if sb.Len() > maxIdentifierLength {
			return token.Token{}, diag.SyntaxErrorAt(diagPos(pos),
				"identifier exceeds maximum length of %d", maxIdentifierLength)
		}
	}
	name := sb.String()
	if kw, ok := token.Keywords[name]; ok {
		if kw == token.True {
			return token.Token{Kind: token.True, Pos: pos, IntValue: 1}, nil
		}
		if kw == token.False {
			return token.Token{Kind: token.False, Pos: pos, IntValue: 0}, nil
		}
		return token.Token{Kind: kw, Pos: pos}, nil
	}
	return token.Token{Kind: token.Identifier, Pos: pos, Name: name}, nil
}

// scanNumber scans an integer literal. Grammar (spec.md §6, grounded on
// original_source/src/scan.c and include/scan.h's literal prefix macros):
// plain decimal digits, or 0b/0o/0x-prefixed, or <base>#<digits>, with an
// optional trailing L forcing 64-bit width, and ' permitted anywhere in the
// digit run as an ignorable separator.
func (l *Lexer) scanNumber(first byte, pos token.Position) (token.Token, error) {
	base := 10
	var digits strings.Builder

	if first == '0' {
		switch l.peek() {
		case 'b', 'B':
			l.next()
			base = 2
			first = 0
		case 'o', 'O':
			l.next()
			base = 8
			first = 0
		case 'x', 'X':
			l.next()
			base = 16
			first = 0
		}
	}
	if first != 0 {
		digits.WriteByte(first)
	}

	for {
		c := l.next()
		switch {
		case c == '\'':
			continue // digit separator, ignored.
		case c == '#' && base == 10 && digits.Len() > 0:
			// <base>#<digits> form: the digits scanned so far were the
			// base, in decimal.
			baseVal, err := parseDecimal(digits.String())
			if err != nil || baseVal < 2 || baseVal > 36 {
				return token.Token{}, diag.SyntaxErrorAt(diagPos(pos), "invalid numeric literal base %q", digits.String())
			}
			base = int(baseVal)
			digits.Reset()
			continue
		case isAlphaNumeric(c, base):
			digits.WriteByte(c)
		default:
			if c != eof {
				l.r.PutBack(c)
			}
			return l.finishNumber(digits.String(), base, pos)
		}
	}
}

func parseDecimal(s string) (int64, error) {
	var v int64
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, diag.CompilerErrorf("non-decimal digit in base specifier")
		}
		v = v*10 + int64(s[i]-'0')
	}
	return v, nil
}

func (l *Lexer) finishNumber(digits string, base int, pos token.Position) (token.Token, error) {
	forceLong := false
	if l.peek() == 'L' {
		l.next()
		forceLong = true
	}

	var value int64
	for i := 0; i < len(digits); i++ {
		d := digitValue(digits[i])
		if d < 0 || int(d) >= base {
			return token.Token{}, diag.SyntaxErrorAt(diagPos(pos), "invalid digit %q for base %d literal", digits[i], base)
		}
		next := value*int64(base) + d
		if next < value {
			return token.Token{}, diag.SyntaxErrorAt(diagPos(pos), "integer literal overflows 64 bits")
		}
		value = next
	}

	kind := token.IntegerLiteral
	if forceLong {
		kind = token.LongLiteral
	}
	return token.Token{Kind: kind, Pos: pos, IntValue: value}, nil
}
