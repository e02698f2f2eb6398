// Grounded on the teacher's ir/lir tests' "build a tiny function, assert
// on the rendered text" technique, adapted to this package's single-pass
// textual emission.
package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"purplec/internal/ast"
	"purplec/internal/token"
	"purplec/internal/types"
)

func i32() types.Number { return types.Number{Width: types.Width32} }

func intLit(v int64) *ast.Node {
	n := ast.NewLeaf(token.IntegerLiteral, token.Position{}, types.NewNumber(i32()))
	n.IntValue = v
	return n
}

func TestModuleHeaderAndSplice(t *testing.T) {
	e := New()
	e.ModuleHeader("t.pur", "e-m:e", "x86_64-unknown-linux-gnu")
	e.DeclareGlobal("counter", i32())
	e.ModuleFooter()

	out := Splice(e.Main.String(), e.Globals.String())
	require.Contains(t, out, "@counter = dso_local global i32 0, align 4")
	require.NotContains(t, out, globalsPlaceholder)
	require.Contains(t, out, "declare i32 @printf")
}

func TestBeginAndEndFunctionEmitsAllocaStoreAndImplicitReturn(t *testing.T) {
	e := New()
	fn := types.Function{
		Return:     types.Void,
		Parameters: []types.Parameter{{Number: i32(), Name: "a"}},
	}
	e.BeginFunction("f", fn)
	require.NoError(t, e.EndFunction())

	out := e.Main.String()
	require.Contains(t, out, "define dso_local void @f(i32 %0) #0 {")
	require.Contains(t, out, "alloca i32")
	require.Contains(t, out, "store i32 %0")
	require.Contains(t, out, "ret void")
}

func TestConstantFoldingArithmetic(t *testing.T) {
	e := New()
	n := ast.New(token.Plus, token.Position{}, intLit(2), nil, intLit(3), types.NewNumber(i32()))
	v, err := e.Expr(n)
	require.NoError(t, err)
	require.Equal(t, int64(5), v.ConstInt)
}

func TestBinaryWithParameterEmitsAddInstruction(t *testing.T) {
	e := New()
	fn := types.Function{Return: types.NewNumber(i32()), Parameters: []types.Parameter{{Number: i32(), Name: "a"}}}
	e.BeginFunction("f", fn)

	ident := ast.NewLeaf(token.Identifier, token.Position{}, types.NewNumber(i32()))
	ident.Name = "a"
	n := ast.New(token.Plus, token.Position{}, ident, nil, intLit(1), types.NewNumber(i32()))

	_, err := e.Expr(n)
	require.NoError(t, err)
	require.NoError(t, e.EndFunction())

	out := e.Main.String()
	require.True(t, strings.Contains(out, "add nsw i32"))
}

func TestNandHasNoRuntimeLoweringForNonConstants(t *testing.T) {
	e := New()
	fn := types.Function{Return: types.Void}
	e.BeginFunction("f", fn)

	ident := ast.NewLeaf(token.Identifier, token.Position{}, types.NewNumber(types.Number{Width: types.Width1}))
	ident.Name = "missing"
	n := ast.New(token.Nand, token.Position{}, ident, nil, intLit(1), types.NewNumber(types.Number{Width: types.Width1}))

	_, err := e.Expr(n)
	require.Error(t, err)
}

func TestIfStatementEmitsThreeLabels(t *testing.T) {
	e := New()
	fn := types.Function{Return: types.Void, Parameters: []types.Parameter{{Number: i32(), Name: "a"}}}
	e.BeginFunction("f", fn)

	ident := ast.NewLeaf(token.Identifier, token.Position{}, types.NewNumber(i32()))
	ident.Name = "a"
	cond := ast.New(token.Eq, token.Position{}, ident, nil, intLit(1), types.NewNumber(types.Number{Width: types.Width1}))
	ifNode := ast.New(token.If, token.Position{}, cond, nil, nil, types.Void)
	require.NoError(t, e.Stmt(ifNode))
	require.NoError(t, e.EndFunction())

	out := e.Main.String()
	require.Contains(t, out, "icmp eq i32")
	require.Contains(t, out, "br i1")
	require.Contains(t, out, "L0:\n")
	require.Contains(t, out, "L1:\n")
	require.Contains(t, out, "L2:\n")
}

// TestIfWithNestedReturnHasNoDoubleTerminator guards against emitting a
// trailing unconditional branch after a block that already ended in a
// `return`: LLVM rejects a basic block with two terminators.
func TestIfWithNestedReturnHasNoDoubleTerminator(t *testing.T) {
	e := New()
	fn := types.Function{Return: types.NewNumber(i32()), Parameters: []types.Parameter{{Number: i32(), Name: "a"}}}
	e.BeginFunction("f", fn)

	ident := ast.NewLeaf(token.Identifier, token.Position{}, types.NewNumber(i32()))
	ident.Name = "a"
	cond := ast.New(token.Gt, token.Position{}, ident, nil, intLit(0), types.NewNumber(types.Number{Width: types.Width1}))
	thenReturn := ast.New(token.Return, token.Position{}, intLit(1), nil, nil, types.NewNumber(i32()))
	ifNode := ast.New(token.If, token.Position{}, cond, thenReturn, nil, types.Void)
	require.NoError(t, e.Stmt(ifNode))

	trailingReturn := ast.New(token.Return, token.Position{}, intLit(0), nil, nil, types.NewNumber(i32()))
	require.NoError(t, e.Stmt(trailingReturn))
	require.NoError(t, e.EndFunction())

	out := e.Main.String()
	// Every block must have exactly one terminator: a "ret i32 1" must
	// never be immediately followed by an unconditional branch before the
	// next label.
	require.NotContains(t, out, "ret i32 1\n  br label")
	require.Contains(t, out, "ret i32 1")
	require.Contains(t, out, "ret i32 0")
}

// TestWhileWithNestedReturnHasNoDoubleTerminator mirrors the if case for a
// `return` nested directly inside a while body.
func TestWhileWithNestedReturnHasNoDoubleTerminator(t *testing.T) {
	e := New()
	fn := types.Function{Return: types.NewNumber(i32()), Parameters: []types.Parameter{{Number: i32(), Name: "a"}}}
	e.BeginFunction("f", fn)

	ident := ast.NewLeaf(token.Identifier, token.Position{}, types.NewNumber(i32()))
	ident.Name = "a"
	cond := ast.New(token.Gt, token.Position{}, ident, nil, intLit(0), types.NewNumber(types.Number{Width: types.Width1}))
	bodyReturn := ast.New(token.Return, token.Position{}, intLit(1), nil, nil, types.NewNumber(i32()))
	whileNode := ast.New(token.While, token.Position{}, cond, bodyReturn, nil, types.Void)
	require.NoError(t, e.Stmt(whileNode))

	trailingReturn := ast.New(token.Return, token.Position{}, intLit(0), nil, nil, types.NewNumber(i32()))
	require.NoError(t, e.Stmt(trailingReturn))
	require.NoError(t, e.EndFunction())

	out := e.Main.String()
	require.NotContains(t, out, "ret i32 1\n  br label")
	require.Contains(t, out, "ret i32 1")
	require.Contains(t, out, "ret i32 0")
}

// TestDereferenceAssignmentStoresThroughPointer exercises `*p = 7`: the
// destination address is the pointer value p holds, loaded one level
// shallower than a plain r-value of p (spec.md §8's pointer scenario).
func TestDereferenceAssignmentStoresThroughPointer(t *testing.T) {
	e := New()
	fn := types.Function{Return: types.Void}
	e.BeginFunction("f", fn)

	ptrType := types.NewNumber(types.Number{Width: types.Width32, PointerDepth: 1})
	e.DeclareGlobal("p", ptrType.NumberValue)
	ident := ast.NewLeaf(token.Identifier, token.Position{}, ptrType)
	ident.Name = "p"
	deref := ast.New(token.Star, token.Position{}, ident, nil, nil, types.NewNumber(i32()))
	assign := ast.New(token.Assign, token.Position{}, deref, nil, intLit(7), types.Void)

	require.NoError(t, e.Stmt(assign))
	require.NoError(t, e.EndFunction())

	out := e.Main.String()
	require.Contains(t, out, "load i32*, i32** @p")
	require.Contains(t, out, "store i32 7, i32* %")
}
