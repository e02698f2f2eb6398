// Package compiler is the driver: it threads Reader -> Lexer -> Parser
// (+ Symbol Table, + IR Emitter) -> globals splice -> output, owning
// every file handle created along the way and closing them on both
// normal completion and any fatal error (spec.md §5's "all file handles
// are owned by the driver", supplemented per SPEC_FULL.md §9.1 by
// original_source's utils/shutdown.c-style guaranteed cleanup).
// Grounded on the teacher's src/main.go orchestration sequence
// (ParseArgs -> lex -> parse -> ir build -> optimise -> backend emit),
// collapsed to this spec's simpler single-target-format pipeline.
package compiler

import (
	"os"

	"github.com/sirupsen/logrus"

	"purplec/internal/diag"
	"purplec/internal/emit"
	"purplec/internal/lexer"
	"purplec/internal/parser"
	"purplec/internal/probe"
	"purplec/internal/reader"
	"purplec/internal/symtab"
)

// Options configures one compile run.
type Options struct {
	SourcePath string
	OutPath    string
	Triple     string // overrides the platform probe when non-empty.
	Datalayout string // overrides the platform probe when non-empty.
}

// Compiler threads all per-run state and owns every resource opened
// while compiling: the source reader and the output file. Close is
// always safe to call more than once.
type Compiler struct {
	opt Options
	log *logrus.Logger

	r   *reader.Reader
	out *os.File
}

// New returns a Compiler for the given options and logger.
func New(opt Options, log *logrus.Logger) *Compiler {
	return &Compiler{opt: opt, log: log}
}

// Close releases every resource this Compiler has opened. Safe to call
// multiple times and on a Compiler that never opened anything.
func (c *Compiler) Close() error {
	var err error
	if c.out != nil {
		err = c.out.Close()
		c.out = nil
	}
	c.r = nil
	return err
}

// Run executes one full compile: read, lex+parse+emit in one pass,
// splice the globals sink into the main sink, and write the result to
// Options.OutPath. It always returns a *diag.Error on failure (via
// diag.KindOf) so the caller can map it to a process exit code.
func (c *Compiler) Run() error {
	defer c.Close()

	r, err := reader.Open(c.opt.SourcePath)
	if err != nil {
		return err
	}
	c.r = r

	lex := lexer.New(r)
	em := emit.New()
	sym := symtab.NewStack(0)

	p, err := parser.New(lex, em, sym)
	if err != nil {
		return err
	}

	fns, err := p.Program()
	if err != nil {
		return err
	}

	target := c.resolveTarget()
	em.ModuleHeader(r.Name(), target.Datalayout, target.Triple)

	for _, fn := range fns {
		em.BeginFunction(fn.Name, fn.Type)
		if err := em.Stmt(fn.Body); err != nil {
			return err
		}
		if err := em.EndFunction(); err != nil {
			return err
		}
	}
	em.ModuleFooter()

	for _, w := range em.Warnings.Warnings() {
		c.log.WithField("warning_kind", w.Severity.String()).Warn(w.Msg)
	}

	final := emit.Splice(em.Main.String(), em.Globals.String())

	out, err := os.Create(c.opt.OutPath)
	if err != nil {
		return diag.New(diag.FileError, "cannot create output file %q: %v", c.opt.OutPath, err)
	}
	c.out = out
	if _, err := out.WriteString(final); err != nil {
		return diag.New(diag.FileError, "cannot write output file %q: %v", c.opt.OutPath, err)
	}
	return nil
}

// resolveTarget prefers explicit Options overrides (config-file/env/flag
// supplied triple+datalayout, spec.md §6.3) over the Platform Probe.
func (c *Compiler) resolveTarget() probe.Target {
	if c.opt.Triple != "" && c.opt.Datalayout != "" {
		return probe.Target{Triple: c.opt.Triple, Datalayout: c.opt.Datalayout}
	}
	t := probe.New().Target()
	if c.opt.Triple != "" {
		t.Triple = c.opt.Triple
	}
	if c.opt.Datalayout != "" {
		t.Datalayout = c.opt.Datalayout
	}
	return t
}
