// Expression lowering: ensure-loaded, width promotion, constant folding,
// arithmetic/comparison/logical operator emission and short-circuit
// comparison-jump, grounded on spec.md §4.5 and on
// original_source/src/translate/llvm.c's binary-operator and
// comparison-jump lowering routines.
package emit

import (
	"fmt"
	"strings"

	"purplec/internal/ast"
	"purplec/internal/diag"
	"purplec/internal/ir"
	"purplec/internal/token"
	"purplec/internal/types"
)

// ensureLoaded emits `load` instructions until v's pointer depth equals
// depth (spec.md §4.5: "ensure-loaded to depth d").
func (e *Emitter) ensureLoaded(v ir.Value, depth int) ir.Value {
	for v.PointerDepth() > depth {
		loaded := e.newRegister(v.Number.Deref())
		e.Main.Printf("  %s = load %s, %s %s, align %d\n",
			loaded.Operand(), loaded.Number.LLVM(), v.Number.LLVM(), v.Operand(), loaded.Number.Width.Bytes())
		if v.Kind == ir.ValueGlobal {
			loaded = loaded.WithSourceIdent(v.GlobalName)
		}
		v = loaded
	}
	return v
}

// ensureRValue loads v all the way down to pointer depth 0, the form every
// arithmetic/comparison/print/return/branch operand requires.
func (e *Emitter) ensureRValue(v ir.Value) ir.Value {
	return e.ensureLoaded(v, 0)
}

// promote resizes the narrower of a, b to the other's width via zext/trunc
// (spec.md §4.5: "Type promotion"); a constant operand is re-tagged at
// compile time without emitting an instruction.
func (e *Emitter) promote(a, b ir.Value) (ir.Value, ir.Value) {
	w := types.Wider(a.Width(), b.Width())
	return e.resize(a, w), e.resize(b, w)
}

// resize widens (zext) or narrows (trunc) v to width w, emitting nothing
// if the widths already match.
func (e *Emitter) resize(v ir.Value, w types.Width) ir.Value {
	if v.Width() == w {
		return v
	}
	if v.Kind == ir.ValueConstant {
		return ir.Constant(v.ConstInt, w)
	}
	op := "zext"
	if w.Bits() < v.Width().Bits() {
		op = "trunc"
	}
	out := e.newRegister(types.Number{Width: w})
	e.Main.Printf("  %s = %s %s %s to %s\n", out.Operand(), op, v.Number.LLVM(), v.Operand(), w.LLVM())
	return out
}

// Store emits `store %v, %p` consuming a value at depth d and a
// destination at depth d+1 (spec.md §3 invariant).
func (e *Emitter) Store(value, dest ir.Value) error {
	if dest.PointerDepth() != value.PointerDepth()+1 {
		return diag.CompilerErrorf("store destination pointer depth %d does not exceed value depth %d by one",
			dest.PointerDepth(), value.PointerDepth())
	}
	e.Main.Printf("  store %s %s, %s %s, align %d\n",
		value.Number.LLVM(), value.Operand(), dest.Number.LLVM(), dest.Operand(), value.Width().Bytes())
	return nil
}

// resolveIdent returns the IR value addressing name: its local slot if it
// is a parameter of the current function, otherwise the global address.
func (e *Emitter) resolveIdent(name string, n types.Number) ir.Value {
	if v, ok := e.locals[name]; ok {
		return v
	}
	return ir.Global(name, n)
}

// storeAddress resolves the destination address for a dereference lvalue
// (n.Kind == token.Star): the address a pointer expression names is the
// pointer's own fully-loaded value, one load shallower than a plain
// r-value of the same operand, since the store target is what the
// pointer points at rather than the pointer's own storage cell.
func (e *Emitter) storeAddress(n *ast.Node) (ir.Value, error) {
	switch n.Kind {
	case token.Star:
		inner, err := e.storeAddress(n.Left)
		if err != nil {
			return ir.None, err
		}
		return e.ensureLoaded(inner, n.Left.Type.NumberValue.PointerDepth), nil
	case token.Identifier:
		addr := e.resolveIdent(n.Name, n.Type.NumberValue)
		return e.ensureLoaded(addr, n.Type.NumberValue.PointerDepth), nil
	}
	return ir.None, diag.CompilerErrorf("node kind %s is not a valid dereference-assignment target", n.Kind)
}

// Expr lowers an expression subtree to an r-value IR Value.
func (e *Emitter) Expr(n *ast.Node) (ir.Value, error) {
	switch n.Kind {
	case token.IntegerLiteral, token.ByteLiteral, token.CharLiteral, token.ShortLiteral, token.LongLiteral:
		w, err := types.FromTokenKind(n.Kind)
		if err != nil {
			return ir.None, err
		}
		return ir.Constant(n.IntValue, w), nil
	case token.True, token.False:
		return ir.Constant(n.IntValue, types.Width1), nil
	case token.Identifier:
		addr := e.resolveIdent(n.Name, n.Type.NumberValue)
		return e.ensureRValue(addr), nil
	case token.Amp:
		// Address-of: resolve the operand's address without loading it
		// down to an r-value (spec.md §3: "address-of increases by 1").
		addr := e.resolveIdent(n.Left.Name, n.Left.Type.NumberValue)
		return addr, nil
	case token.Star:
		if n.Mid == nil && n.Right == nil && isUnaryDeref(n) {
			v, err := e.Expr(n.Left)
			if err != nil {
				return ir.None, err
			}
			return e.ensureLoaded(v, v.PointerDepth()-1), nil
		}
		return e.binary(n)
	case token.Plus, token.Minus, token.Slash, token.Pow:
		return e.binary(n)
	case token.Eq, token.Neq, token.Lt, token.Gt, token.Le, token.Ge:
		return e.comparison(n)
	case token.And, token.Or, token.Xor:
		return e.logical(n)
	case token.Nand, token.Nor, token.Xnor:
		if cl, cr, ok := bothConstant(n); ok {
			return ir.Constant(foldLogical(n.Kind, cl, cr), types.Width1), nil
		}
		return ir.None, diag.CompilerErrorf("operator %s has no runtime lowering; only constant folding is defined", n.Kind)
	case token.FunctionCall:
		return e.call(n)
	}
	return ir.None, diag.CompilerErrorf("unhandled expression node kind %s", n.Kind)
}

// flattenArgs unwraps the left-leaning glue chain built by the parser's
// call() into argument nodes in source order.
func flattenArgs(n *ast.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	if n.Kind != token.Glue {
		return []*ast.Node{n}
	}
	return append(flattenArgs(n.Left), flattenArgs(n.Right)...)
}

// call lowers a function-call expression: evaluate each argument to an
// r-value left-to-right, then emit `call`. A void-returning call yields
// ir.None, consistent with print/return rejecting a typed value from a
// void expression.
func (e *Emitter) call(n *ast.Node) (ir.Value, error) {
	args := flattenArgs(n.Left)
	vals := make([]ir.Value, len(args))
	for i, a := range args {
		v, err := e.Expr(a)
		if err != nil {
			return ir.None, err
		}
		vals[i] = e.ensureRValue(v)
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%s %s", v.Number.LLVM(), v.Operand())
	}
	argList := strings.Join(parts, ", ")

	if n.Type.IsVoid() {
		e.Main.Printf("  call void @%s(%s)\n", n.Name, argList)
		return ir.None, nil
	}
	out := e.newRegister(n.Type.NumberValue)
	e.Main.Printf("  %s = call %s @%s(%s)\n", out.Operand(), n.Type.NumberValue.LLVM(), n.Name, argList)
	return out, nil
}

// isUnaryDeref distinguishes a dereference ('*' with only Left populated)
// from a multiplication (binary '*' with both Left and Right).
func isUnaryDeref(n *ast.Node) bool {
	return n.Left != nil && n.Right == nil
}

func bothConstant(n *ast.Node) (int64, int64, bool) {
	lc, lok := constValue(n.Left)
	rc, rok := constValue(n.Right)
	return lc, rc, lok && rok
}

func constValue(n *ast.Node) (int64, bool) {
	switch n.Kind {
	case token.IntegerLiteral, token.ByteLiteral, token.CharLiteral, token.ShortLiteral, token.LongLiteral, token.True, token.False:
		return n.IntValue, true
	}
	return 0, false
}

func foldArith(op token.Kind, a, b int64) int64 {
	switch op {
	case token.Plus:
		return a + b
	case token.Minus:
		return a - b
	case token.Star:
		return a * b
	case token.Slash:
		if b == 0 {
			return 0
		}
		return a / b
	case token.Pow:
		r := int64(1)
		for i := int64(0); i < b; i++ {
			r *= a
		}
		return r
	}
	return 0
}

func foldCompare(op token.Kind, a, b int64) int64 {
	var res bool
	switch op {
	case token.Eq:
		res = a == b
	case token.Neq:
		res = a != b
	case token.Lt:
		res = a < b
	case token.Le:
		res = a <= b
	case token.Gt:
		res = a > b
	case token.Ge:
		res = a >= b
	}
	if res {
		return 1
	}
	return 0
}

func foldLogical(op token.Kind, a, b int64) int64 {
	av, bv := a != 0, b != 0
	switch op {
	case token.And:
		return boolInt(av && bv)
	case token.Or:
		return boolInt(av || bv)
	case token.Xor:
		return boolInt(av != bv)
	case token.Nand:
		return boolInt(!(av && bv))
	case token.Nor:
		return boolInt(!(av || bv))
	case token.Xnor:
		return boolInt(av == bv)
	}
	return 0
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// binary lowers arithmetic operators '+ - * / **'. Constant folding is
// applied first; the folded result's width is the max of the two inputs'
// widths (spec.md §4.5).
func (e *Emitter) binary(n *ast.Node) (ir.Value, error) {
	l, err := e.Expr(n.Left)
	if err != nil {
		return ir.None, err
	}
	r, err := e.Expr(n.Right)
	if err != nil {
		return ir.None, err
	}
	if l.Kind == ir.ValueConstant && r.Kind == ir.ValueConstant {
		w := types.Wider(l.Width(), r.Width())
		return ir.Constant(foldArith(n.Kind, l.ConstInt, r.ConstInt), w), nil
	}
	l, r = e.promote(l, r)

	if n.Kind == token.Pow {
		return e.emitPow(l, r), nil
	}

	var op string
	switch n.Kind {
	case token.Plus:
		op = "add nsw"
	case token.Minus:
		op = "sub nsw"
	case token.Star:
		op = "mul nsw"
	case token.Slash:
		op = "udiv"
	}
	out := e.newRegister(types.Number{Width: l.Width()})
	e.Main.Printf("  %s = %s %s %s, %s\n", out.Operand(), op, l.Number.LLVM(), l.Operand(), r.Operand())
	return out, nil
}

// emitPow lowers '**' with a non-constant operand as a call to the external
// runtime helper @__purple_ipow, which ModuleFooter declares: both operands
// are resized to i64 and the result is resized back to the base's width.
func (e *Emitter) emitPow(base, exp ir.Value) ir.Value {
	origWidth := base.Width()
	base64 := e.resize(base, types.Width64)
	exp64 := e.resize(exp, types.Width64)
	call := e.newRegister(types.Number{Width: types.Width64})
	e.Main.Printf("  %s = call i64 @__purple_ipow(i64 %s, i64 %s)\n", call.Operand(), base64.Operand(), exp64.Operand())
	return e.resize(call, origWidth)
}

// comparison lowers relational operators to `icmp` with the corresponding
// signed predicate, producing an i1 (spec.md §4.5).
func (e *Emitter) comparison(n *ast.Node) (ir.Value, error) {
	l, err := e.Expr(n.Left)
	if err != nil {
		return ir.None, err
	}
	r, err := e.Expr(n.Right)
	if err != nil {
		return ir.None, err
	}
	if l.Kind == ir.ValueConstant && r.Kind == ir.ValueConstant {
		return ir.Constant(foldCompare(n.Kind, l.ConstInt, r.ConstInt), types.Width1), nil
	}
	l, r = e.promote(l, r)
	pred := comparePredicate(n.Kind)
	out := e.newRegister(types.Number{Width: types.Width1})
	e.Main.Printf("  %s = icmp %s %s %s, %s\n", out.Operand(), pred, l.Number.LLVM(), l.Operand(), r.Operand())
	return out, nil
}

func comparePredicate(k token.Kind) string {
	switch k {
	case token.Eq:
		return "eq"
	case token.Neq:
		return "ne"
	case token.Lt:
		return "slt"
	case token.Le:
		return "sle"
	case token.Gt:
		return "sgt"
	case token.Ge:
		return "sge"
	}
	return "eq"
}

// logical lowers 'and or xor' as the bitwise instruction on i1 operands
// (spec.md §4.5). 'nand nor xnor' have no runtime lowering and are
// rejected dynamically in Expr above.
func (e *Emitter) logical(n *ast.Node) (ir.Value, error) {
	l, err := e.Expr(n.Left)
	if err != nil {
		return ir.None, err
	}
	r, err := e.Expr(n.Right)
	if err != nil {
		return ir.None, err
	}
	if l.Kind == ir.ValueConstant && r.Kind == ir.ValueConstant {
		return ir.Constant(foldLogical(n.Kind, l.ConstInt, r.ConstInt), types.Width1), nil
	}
	l, r = e.promote(l, r)
	var op string
	switch n.Kind {
	case token.And:
		op = "and"
	case token.Or:
		op = "or"
	case token.Xor:
		op = "xor"
	}
	out := e.newRegister(types.Number{Width: l.Width()})
	e.Main.Printf("  %s = %s %s %s, %s\n", out.Operand(), op, l.Number.LLVM(), l.Operand(), r.Operand())
	return out, nil
}

// CompareJump emits cond's comparison/logical operator directly as a
// conditional branch to trueLabel or falseLabel, without materializing an
// intermediate i1 register for the caller — spec.md §4.5's
// "compare_jump(op, L, R, false_label)", used by if/while lowering.
func (e *Emitter) CompareJump(cond *ast.Node, trueLabel, falseLabel string) error {
	v, err := e.Expr(cond)
	if err != nil {
		return err
	}
	v = e.ensureRValue(v)
	if v.Kind == ir.ValueConstant {
		if v.ConstInt != 0 {
			e.Main.Printf("  br label %%%s\n", trueLabel)
		} else {
			e.Main.Printf("  br label %%%s\n", falseLabel)
		}
		return nil
	}
	e.Main.Printf("  br i1 %s, label %%%s, label %%%s\n", v.Operand(), trueLabel, falseLabel)
	return nil
}
