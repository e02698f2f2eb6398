// Package diag implements the compiler's diagnostics: fatal errors tagged
// with a category and source position, and non-fatal warnings. Every fatal
// diagnostic maps to a process exit code, mirroring the original compiler's
// ReturnCode enum (include/utils/logging.h).
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind categorizes a fatal diagnostic. The numeric values are also used as
// process exit codes.
type Kind int

const (
	OK Kind = iota
	ErrorGeneric
	SyntaxError
	MemoryError
	FileError
	IdentifierError
	CompilerError
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case ErrorGeneric:
		return "ERROR"
	case SyntaxError:
		return "SYNTAX_ERROR"
	case MemoryError:
		return "MEMORY_ERROR"
	case FileError:
		return "FILE_ERROR"
	case IdentifierError:
		return "IDENTIFIER_ERROR"
	case CompilerError:
		return "COMPILER_ERROR"
	}
	return "UNKNOWN_ERROR"
}

// Position is a source location used to annotate syntax/identifier errors.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Error is a fatal compiler diagnostic. It is always terminal: the driver
// reports it and exits with Kind as the process status.
type Error struct {
	Kind Kind
	Pos  *Position // nil when the error carries no source position.
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds a positionless fatal diagnostic of the given kind, wrapped with
// a stack trace for debug logging.
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// NewAt builds a fatal diagnostic carrying a source position.
func NewAt(kind Kind, pos Position, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Pos: &pos, Msg: fmt.Sprintf(format, args...)})
}

// SyntaxErrorAt is a convenience constructor mirroring the original's
// syntax_error(line, col, ...) calls in src/scan.c and src/parse/*.c.
func SyntaxErrorAt(pos Position, format string, args ...interface{}) error {
	return NewAt(SyntaxError, pos, format, args...)
}

// IdentifierErrorAt mirrors the original's identifier_error(...) calls.
func IdentifierErrorAt(pos Position, format string, args ...interface{}) error {
	return NewAt(IdentifierError, pos, format, args...)
}

// CompilerErrorf mirrors fatal(RC_COMPILER_ERROR, ...) calls guarding
// internal invariants (popping an empty register list, emitting after
// postamble, returning a typed value from a void function, ...).
func CompilerErrorf(format string, args ...interface{}) error {
	return New(CompilerError, format, args...)
}

// KindOf unwraps err (via errors.As) to recover its Kind, defaulting
// to ErrorGeneric for errors that did not originate in this package.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrorGeneric
}

// WarningSeverity mirrors original_source's WarningType enum
// (include/errors_warnings.h): WARNING_LOW, WARNING_MED, WARNING_HIGH.
// Warnings are non-fatal and never change the process exit code.
type WarningSeverity int

const (
	WarningLow WarningSeverity = iota
	WarningMed
	WarningHigh
)

func (s WarningSeverity) String() string {
	switch s {
	case WarningLow:
		return "low"
	case WarningMed:
		return "med"
	case WarningHigh:
		return "high"
	}
	return "unknown"
}

// Warning is a non-fatal diagnostic with a severity and optional position.
type Warning struct {
	Severity WarningSeverity
	Pos      *Position
	Msg      string
}

// Collector buffers warnings issued during a compile run, modeled on the
// teacher's util/perror.go error collector but single-threaded: this
// compiler never runs more than one goroutine, so there is no channel or
// mutex to guard concurrent writers.
type Collector struct {
	warnings []Warning
}

// NewCollector returns an empty warning collector with room for n entries.
func NewCollector(n int) *Collector {
	if n < 1 {
		n = 16
	}
	return &Collector{warnings: make([]Warning, 0, n)}
}

// Warn appends a warning to the collector.
func (c *Collector) Warn(sev WarningSeverity, pos *Position, format string, args ...interface{}) {
	c.warnings = append(c.warnings, Warning{Severity: sev, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Len returns the number of buffered warnings.
func (c *Collector) Len() int { return len(c.warnings) }

// Warnings returns the buffered warnings in emission order.
func (c *Collector) Warnings() []Warning { return c.warnings }

// Flush empties the collector.
func (c *Collector) Flush() { c.warnings = c.warnings[:0] }
