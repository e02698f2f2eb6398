// Statement and control-flow lowering: print, assignment, if/while,
// return, and glue sequencing, grounded on spec.md §4.5's
// "Control-flow lowering" and "Print" subsections and on
// original_source/src/translate/llvm.c's analogous routines.
package emit

import (
	"purplec/internal/ast"
	"purplec/internal/diag"
	"purplec/internal/ir"
	"purplec/internal/token"
	"purplec/internal/types"
)

// Stmt lowers one statement (or glue-sequenced group of statements) into
// the current function body.
func (e *Emitter) Stmt(n *ast.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case token.Glue:
		if err := e.Stmt(n.Left); err != nil {
			return err
		}
		return e.Stmt(n.Right)
	case token.Print:
		return e.print(n)
	case token.Assign:
		return e.assign(n)
	case token.If:
		return e.ifStmt(n)
	case token.While:
		return e.whileStmt(n)
	case token.Return:
		return e.returnStmt(n)
	}
	// A bare expression statement (e.g. a function call for effect).
	_, err := e.Expr(n)
	return err
}

// print chooses a format string by the printed value's width: i8 as
// "%c\n", i16/i32 as "%d\n", i64 as "%ld\n". Booleans dispatch through a
// three-label sequence (spec.md §4.5: "Print").
func (e *Emitter) print(n *ast.Node) error {
	v, err := e.Expr(n.Left)
	if err != nil {
		return err
	}
	v = e.ensureRValue(v)

	if v.Width() == types.Width1 {
		return e.printBool(v)
	}

	var fstring string
	var fstringLen int
	switch v.Width() {
	case types.Width8:
		fstring, fstringLen = "@print_char_fstring", 4
	case types.Width16, types.Width32:
		fstring, fstringLen = "@print_int_fstring", 4
	case types.Width64:
		fstring, fstringLen = "@print_long_fstring", 5
	}
	e.Main.Printf("  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([%d x i8], [%d x i8]* %s, i64 0, i64 0), %s %s)\n",
		fstringLen, fstringLen, fstring, v.Number.LLVM(), v.Operand())
	return nil
}

// printBool dispatches through three labels: true -> print "true\n" ->
// jump end; false -> print "false\n" -> jump end; end.
func (e *Emitter) printBool(v ir.Value) error {
	lTrue := e.newLabel()
	lFalse := e.newLabel()
	lEnd := e.newLabel()

	if v.Kind == ir.ValueConstant {
		if v.ConstInt != 0 {
			e.Main.Printf("  br label %%%s\n", lTrue)
		} else {
			e.Main.Printf("  br label %%%s\n", lFalse)
		}
	} else {
		e.Main.Printf("  br i1 %s, label %%%s, label %%%s\n", v.Operand(), lTrue, lFalse)
	}

	e.Main.Label(lTrue)
	e.Main.Printf("  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([6 x i8], [6 x i8]* @print_true_fstring, i64 0, i64 0))\n")
	e.Main.Printf("  br label %%%s\n", lEnd)

	e.Main.Label(lFalse)
	e.Main.Printf("  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([7 x i8], [7 x i8]* @print_false_fstring, i64 0, i64 0))\n")
	e.Main.Printf("  br label %%%s\n", lEnd)

	e.Main.Label(lEnd)
	return nil
}

// assign lowers `IDENT '=' expr` and `'*' unary '=' expr`: evaluate the
// right-hand side, resolve the destination address (a local/global slot
// for a plain identifier, or the pointer value itself for a dereference
// lvalue), ensure the value is loaded to the destination's element depth,
// and store.
func (e *Emitter) assign(n *ast.Node) error {
	rhs, err := e.Expr(n.Right)
	if err != nil {
		return err
	}
	var dest ir.Value
	if n.Left.Kind == token.Star {
		dest, err = e.storeAddress(n.Left)
		if err != nil {
			return err
		}
	} else {
		dest = e.resolveIdent(n.Left.Name, n.Left.Type.NumberValue)
	}
	rhs = e.ensureLoaded(rhs, dest.PointerDepth()-1)
	rhs = e.resize(rhs, dest.Number.Width)
	return e.Store(rhs, dest)
}

// ifStmt lowers `if(c, t, e)` per spec.md §4.5. A branch whose body already
// ends in a terminator (e.g. a nested `return`) must not get a trailing
// unconditional branch appended — LLVM rejects a basic block with two
// terminators — so each arm's state is checked before closing it out, and
// reset to "open" when a fresh block (lTrue/lFalse/lEnd) starts.
func (e *Emitter) ifStmt(n *ast.Node) error {
	lTrue := e.newLabel()
	lFalse := e.newLabel()
	lEnd := e.newLabel()

	if err := e.CompareJump(n.Left, lTrue, lFalse); err != nil {
		return err
	}

	e.Main.Label(lTrue)
	e.state = fnPreamblePrinted
	if err := e.Stmt(n.Mid); err != nil {
		return err
	}
	if e.state != fnReturned {
		e.Main.Printf("  br label %%%s\n", lEnd)
	}

	e.Main.Label(lFalse)
	e.state = fnPreamblePrinted
	if err := e.Stmt(n.Right); err != nil {
		return err
	}
	if e.state != fnReturned {
		e.Main.Printf("  br label %%%s\n", lEnd)
	}

	e.Main.Label(lEnd)
	e.state = fnPreamblePrinted
	return nil
}

// whileStmt lowers `while(c, body, else)` per spec.md §4.5: the else block
// executes once after the loop runs to normal completion (a desugared
// for-loop carries its step at the end of the body). As in ifStmt, a body or
// else block that already ends in a terminator (a nested `return`) must
// not get a trailing unconditional branch appended.
func (e *Emitter) whileStmt(n *ast.Node) error {
	lCond := e.newLabel()
	lBody := e.newLabel()
	lElse := e.newLabel()
	lEnd := e.newLabel()

	e.Main.Printf("  br label %%%s\n", lCond)
	e.Main.Label(lCond)
	e.state = fnPreamblePrinted
	if err := e.CompareJump(n.Left, lBody, lElse); err != nil {
		return err
	}

	e.Main.Label(lBody)
	e.state = fnPreamblePrinted
	if err := e.Stmt(n.Mid); err != nil {
		return err
	}
	if e.state != fnReturned {
		e.Main.Printf("  br label %%%s\n", lCond)
	}

	e.Main.Label(lElse)
	e.state = fnPreamblePrinted
	if err := e.Stmt(n.Right); err != nil {
		return err
	}
	if e.state != fnReturned {
		e.Main.Printf("  br label %%%s\n", lEnd)
	}

	e.Main.Label(lEnd)
	e.state = fnPreamblePrinted
	return nil
}

// returnStmt ensure-loads and width-matches to the declared return type,
// emits `ret`, and marks "current function has returned". Returning
// nothing in a non-void function, or a value in a void function, is a
// compiler error (spec.md §4.5, §7).
func (e *Emitter) returnStmt(n *ast.Node) error {
	if e.fnReturnTy.IsVoid() {
		if n.Left != nil {
			return diag.CompilerErrorf("function %q is void but return statement carries a value", e.fnName)
		}
		e.Main.WriteString("  ret void\n")
		e.fnHasReturn = true
		e.state = fnReturned
		return nil
	}
	if n.Left == nil {
		return diag.CompilerErrorf("function %q must return a value of type %s", e.fnName, e.fnReturnTy)
	}
	v, err := e.Expr(n.Left)
	if err != nil {
		return err
	}
	v = e.ensureRValue(v)
	v = e.resize(v, e.fnReturnTy.NumberValue.Width)
	e.Main.Printf("  ret %s %s\n", v.Number.LLVM(), v.Operand())
	e.fnHasReturn = true
	e.state = fnReturned
	return nil
}
