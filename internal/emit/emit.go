// Package emit is the IR Emitter: it walks the AST and writes textual LLVM
// IR to two sinks (main and globals), owning the virtual-register counter,
// label counter, pending stack-allocation buffer and current-function
// state (spec.md §2, §4.5). Structurally grounded on the teacher's
// util.Writer (src/util/io.go, a strings.Builder-backed sink with small
// Ins*/Label helper methods) and on original_source/src/translate/llvm.c
// for the exact module/function preamble-postamble text and per-operation
// lowering this package reproduces in LLVM-IR-text form instead of the
// teacher's two-stage lir+llvm-API lowering (src/ir/lir, src/ir/llvm).
package emit

import (
	"fmt"
	"strings"

	"purplec/internal/diag"
	"purplec/internal/ir"
	"purplec/internal/symtab"
	"purplec/internal/types"
)

// globalsPlaceholder is the sentinel line spliced out of the main sink and
// replaced by the globals sink's contents (spec.md §4.5, glossary:
// "Globals placeholder").
const globalsPlaceholder = ";<purple_globals_placeholder>"

// writer is a strings.Builder-backed textual sink with small helper
// methods, mirroring the shape (if not the instruction vocabulary) of the
// teacher's util.Writer.
type writer struct {
	sb strings.Builder
}

func (w *writer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

func (w *writer) WriteString(s string) { w.sb.WriteString(s) }

func (w *writer) Label(name string) { fmt.Fprintf(&w.sb, "%s:\n", name) }

func (w *writer) String() string { return w.sb.String() }

// funcState is the function-emission state machine of spec.md §4.7:
// {not-entered, preamble-pending, preamble-printed, returned, postambled}.
type funcState int

const (
	fnNotEntered funcState = iota
	fnPreamblePending
	fnPreamblePrinted
	fnReturned
	fnPostambled
)

// Emitter translates an AST into textual LLVM IR. It owns the two output
// sinks, register/label counters, the pending stack-allocation queue, and
// current-function bookkeeping — exactly the state spec.md §2 assigns to
// the IR Emitter component.
type Emitter struct {
	Main    writer
	Globals writer

	regs   *ir.Counter
	labels *ir.Counter

	pending  ir.StackEntryQueue
	freeList []ir.StackEntry

	state       funcState
	fnName      string
	fnReturnTy  types.Type
	fnHasReturn bool

	// locals maps a parameter or local variable name to the register
	// holding its stack-slot address (pointer depth = declared depth + 1),
	// scoped to the current function.
	locals map[string]ir.Value

	modulePrinted bool

	Warnings *diag.Collector
}

// New returns an Emitter ready to accept module header emission.
func New() *Emitter {
	return &Emitter{
		regs:     ir.NewCounter(1),
		labels:   ir.NewCounter(0),
		Warnings: diag.NewCollector(16),
	}
}

// newRegister allocates the next virtual-register index for the current
// function, guaranteeing the SSA invariant "%N appears at most once as a
// definition" (spec.md §8) by construction: indices only ever increase.
func (e *Emitter) newRegister(n types.Number) ir.Value {
	return ir.Register(e.regs.Next(), n)
}

// newLabel allocates the next program-wide label index.
func (e *Emitter) newLabel() string {
	return fmt.Sprintf("L%d", e.labels.Next())
}

// ModuleHeader writes the module preamble: ModuleID comment, target
// datalayout/triple, the globals placeholder, and the print format-string
// globals, grounded on original_source/src/translate/llvm.c's
// module-initialization routine and spec.md §6's "Output" contract.
func (e *Emitter) ModuleHeader(sourceName, datalayout, triple string) {
	e.Main.Printf("; ModuleID = '%s'\n", sourceName)
	e.Main.Printf("source_filename = \"%s\"\n", sourceName)
	e.Main.Printf("target datalayout = \"%s\"\n", datalayout)
	e.Main.Printf("target triple = \"%s\"\n\n", triple)
	e.Main.WriteString(globalsPlaceholder + "\n\n")
	e.Main.WriteString("@print_int_fstring = private unnamed_addr constant [4 x i8] c\"%d\\0A\\00\", align 1\n")
	e.Main.WriteString("@print_long_fstring = private unnamed_addr constant [5 x i8] c\"%ld\\0A\\00\", align 1\n")
	e.Main.WriteString("@print_char_fstring = private unnamed_addr constant [4 x i8] c\"%c\\0A\\00\", align 1\n")
	e.Main.WriteString("@print_true_fstring = private unnamed_addr constant [6 x i8] c\"true\\0A\\00\", align 1\n")
	e.Main.WriteString("@print_false_fstring = private unnamed_addr constant [7 x i8] c\"false\\0A\\00\", align 1\n\n")
	e.modulePrinted = true
}

// ModuleFooter writes the printf declaration, the standard attribute
// groups and module-metadata flags (spec.md §6).
func (e *Emitter) ModuleFooter() {
	e.Main.WriteString("\ndeclare i32 @printf(i8*, ...) #1\n")
	// '**' with a non-constant exponent defers to a runtime helper,
	// the same way @printf is an external declaration the downstream
	// toolchain resolves at link time (spec.md §6's toolchain contract).
	e.Main.WriteString("declare i64 @__purple_ipow(i64, i64) #1\n\n")
	e.Main.WriteString("attributes #0 = { noinline nounwind optnone uwtable }\n")
	e.Main.WriteString("attributes #1 = { \"frame-pointer\"=\"all\" }\n\n")
	e.Main.WriteString("!llvm.module.flags = !{!0, !1, !2, !3, !4}\n")
	e.Main.WriteString("!0 = !{i32 1, !\"wchar_size\", i32 4}\n")
	e.Main.WriteString("!1 = !{i32 7, !\"PIC Level\", i32 2}\n")
	e.Main.WriteString("!2 = !{i32 7, !\"PIE Level\", i32 2}\n")
	e.Main.WriteString("!3 = !{i32 7, !\"uwtable\", i32 1}\n")
	e.Main.WriteString("!4 = !{i32 7, !\"frame-pointer\", i32 2}\n")
}

// DeclareGlobal emits a global variable declaration into the globals sink,
// zero-initialized (or null, for pointer types), per spec.md §4.3's
// variable-declaration rule and confirmed against original_source's
// llvm_declare_global_number_variable (src/translate/llvm.c): pointer
// globals use LLVM `null`, not an integer zero literal.
func (e *Emitter) DeclareGlobal(name string, n types.Number) {
	init := "0"
	if n.PointerDepth > 0 {
		init = "null"
	}
	e.Globals.Printf("@%s = dso_local global %s %s, align %d\n", name, n.LLVM(), init, n.Width.Bytes())
}

// Splice replaces the globals placeholder line in the main sink with the
// globals sink's contents, per spec.md §4.5's "Globals linking". The
// operation is idempotent: once the placeholder has been consumed it does
// not reappear, so re-running Splice on the result is a no-op.
func Splice(main, globals string) string {
	lines := strings.Split(main, "\n")
	var out strings.Builder
	spliced := false
	for i, line := range lines {
		if !spliced && strings.TrimRight(line, " \t") == globalsPlaceholder {
			out.WriteString(globals)
			spliced = true
			continue
		}
		out.WriteString(line)
		if i < len(lines)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

// enterFunction resets per-function state: register counter, free list,
// pending queue and function flags (spec.md §4.5: "Postamble ... resets
// per-function state").
func (e *Emitter) enterFunction(name string, returnTy types.Type) {
	e.regs.Reset(1)
	e.pending = ir.StackEntryQueue{}
	e.freeList = nil
	e.state = fnPreamblePending
	e.fnName = name
	e.fnReturnTy = returnTy
	e.fnHasReturn = false
	e.locals = make(map[string]ir.Value)
}

// BeginFunction writes `define dso_local <ret> @<name>(<params>) #0 {`,
// then flushes the pending stack-allocation queue as a run of `alloca`
// instructions (spec.md §4.5), then one alloca+store per parameter. Each
// parameter's slot register is recorded in e.locals so expression
// emission can resolve identifier loads.
func (e *Emitter) BeginFunction(name string, fn types.Function) {
	e.enterFunction(name, fn.Return)
	// LLVM numbers unnamed values (including positional parameters)
	// monotonically across the whole function; starting the register
	// counter after the parameter count keeps slot/instruction registers
	// from colliding with the implicit %0..%(n-1) parameter numbering.
	e.regs.Reset(uint(len(fn.Parameters)))

	retLLVM := "void"
	if !fn.Return.IsVoid() {
		retLLVM = fn.Return.NumberValue.LLVM()
	}
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = fmt.Sprintf("%s %%%d", p.Number.LLVM(), i)
	}
	e.Main.Printf("define dso_local %s @%s(%s) #0 {\n", retLLVM, name, strings.Join(params, ", "))

	slots := make([]ir.Value, len(fn.Parameters))
	for i, p := range fn.Parameters {
		slotReg := e.newRegister(types.Number{Width: p.Number.Width, PointerDepth: p.Number.PointerDepth + 1})
		e.pending.Push(ir.StackEntry{Register: slotReg.Register, Width: p.Number.Width, PointerDepth: p.Number.PointerDepth + 1, Align: p.Number.Width.Bytes()})
		slots[i] = slotReg
	}
	e.flushAllocas()
	e.state = fnPreamblePrinted

	for i, p := range fn.Parameters {
		e.Main.Printf("  store %s %%%d, %s %%%d, align %d\n",
			p.Number.LLVM(), i, slots[i].Number.LLVM(), slots[i].Register, p.Number.Width.Bytes())
		e.locals[p.Name] = slots[i]
	}
}

// flushAllocas drains the pending stack-entry queue and emits one alloca
// per entry, per spec.md §4.5's buffered-until-preamble pattern.
func (e *Emitter) flushAllocas() {
	for _, entry := range e.pending.Drain() {
		n := types.Number{Width: entry.Width, PointerDepth: entry.PointerDepth - 1}
		e.Main.Printf("  %%%d = alloca %s, align %d\n", entry.Register, n.LLVM(), entry.Align)
	}
}

// AllocateLocal queues a stack slot for a local/global-scope variable
// referenced from within a function body (e.g. a literal needing scratch
// storage). If the preamble has already been printed the alloca is
// emitted immediately instead of being queued (spec.md §4.5: "subsequent
// stack_allocation calls emit immediately").
func (e *Emitter) AllocateLocal(n types.Number) ir.Value {
	slotReg := e.newRegister(types.Number{Width: n.Width, PointerDepth: n.PointerDepth + 1})
	entry := ir.StackEntry{Register: slotReg.Register, Width: n.Width, PointerDepth: n.PointerDepth + 1, Align: n.Width.Bytes()}
	if e.state == fnPreamblePending {
		e.pending.Push(entry)
	} else {
		e.Main.Printf("  %%%d = alloca %s, align %d\n", entry.Register, n.LLVM(), entry.Align)
	}
	return slotReg
}

// EndFunction writes the postamble and marks the function as postambled;
// the per-function counters and queues are reset by the next
// BeginFunction.
func (e *Emitter) EndFunction() error {
	if e.state == fnPostambled {
		return diag.CompilerErrorf("emitting postamble for function %q that was already postambled", e.fnName)
	}
	if e.fnReturnTy.IsVoid() && !e.fnHasReturn {
		e.Main.WriteString("  ret void\n")
	}
	e.Main.WriteString("}\n\n")
	e.state = fnPostambled
	return nil
}
