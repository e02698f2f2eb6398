// Package reader provides byte-level access to compiler input with
// one-character pushback and line/column tracking, grounded on the
// teacher's util.ReadSource (src/util/io.go) for file acquisition and on
// original_source's D_PUT_BACK / D_LINE_NUMBER globals (include/data.h) for
// the pushback and line-tracking semantics.
package reader

import (
	"io/ioutil"

	"purplec/internal/diag"
)

// eof is returned by Next once the stream is exhausted. It is sticky: once
// emitted, every subsequent Next call returns eof again.
const eof = 0

// Reader is a pushback-capable byte reader over an in-memory source buffer.
// At most one byte of pushback is ever required by the scanner (to resolve
// two-character operators), so a single pending byte suffices.
type Reader struct {
	name    string
	buf     []byte
	pos     int
	line    int
	column  int
	pending bool
	back    byte
	atEOF   bool
}

// New constructs a Reader over src, whose diagnostics report as file name.
func New(name string, src []byte) *Reader {
	return &Reader{name: name, buf: src, line: 1, column: 0}
}

// Open reads the file at path and wraps it in a Reader.
func Open(path string) (*Reader, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, diag.New(diag.FileError, "could not read source file %q: %s", path, err)
	}
	return New(path, b), nil
}

// Name returns the source file name used in diagnostics.
func (r *Reader) Name() string { return r.name }

// Line returns the current (1-indexed) line.
func (r *Reader) Line() int { return r.line }

// Column returns the current (1-indexed) column on the current line.
func (r *Reader) Column() int { return r.column }

// Next returns the next byte, advancing the line counter on newline. EOF is
// sticky: once reached it is returned on every subsequent call.
func (r *Reader) Next() byte {
	if r.pending {
		r.pending = false
		r.column++
		return r.back
	}
	if r.atEOF || r.pos >= len(r.buf) {
		r.atEOF = true
		return eof
	}
	c := r.buf[r.pos]
	r.pos++
	if c == '\n' {
		r.line++
		r.column = 0
	} else {
		r.column++
	}
	return c
}

// PutBack stores one byte to be returned by the next call to Next. Only one
// byte of pushback is ever required by the scanner.
func (r *Reader) PutBack(c byte) {
	r.pending = true
	r.back = c
	r.column--
}
