// Package parser implements the recursive-descent parser with operator-
// precedence climbing for expressions (spec.md §4.3). Structurally
// grounded on the teacher's frontend/tree.go parse-entry shape, but
// hand-written instead of goyacc-generated: spec.md mandates recursive
// descent, and goyacc code generation is itself a toolchain invocation
// this rewrite cannot perform. The statement grammar (print/assignment/
// if/while/for/return, the for-loop desugar, and the "condition must be a
// comparator or logical operator" rule) is grounded on
// original_source/src/parse/statement.c and src/parse/declaration.c.
package parser

import (
	"purplec/internal/ast"
	"purplec/internal/diag"
	"purplec/internal/emit"
	"purplec/internal/lexer"
	"purplec/internal/symtab"
	"purplec/internal/token"
	"purplec/internal/types"
)

// precedence is the operator-precedence table of spec.md §4.3. Higher
// climbs first; all are left-associative except assignment, which the
// statement grammar already handles separately as right-associative
// top-level `IDENT '=' expr`.
var precedence = map[token.Kind]int{
	token.Pow:   15,
	token.Star:  13,
	token.Slash: 13,
	token.Plus:  12,
	token.Minus: 12,
	token.Lt:    10,
	token.Le:    10,
	token.Gt:    10,
	token.Ge:    10,
	token.Eq:    9,
	token.Neq:   9,
	token.And:   6,
	token.Nand:  6,
	token.Xor:   5,
	token.Xnor:  5,
	token.Or:    4,
	token.Nor:   4,
}

// Function is a parsed top-level function: its signature and its emitted-
// ready statement-tree body.
type Function struct {
	Name string
	Type types.Function
	Body *ast.Node
}

// Parser consumes a token stream and produces function bodies as AST,
// emitting global variable declarations directly as they are parsed
// (mirroring original_source's variable_declaration, which calls
// llvm_declare_global_number_variable inline rather than deferring it to
// a later tree walk).
type Parser struct {
	lex *lexer.Lexer
	cur token.Token

	sym *symtab.Stack
	em  *emit.Emitter

	currentFnName string
	currentFnType types.Function
}

// New returns a Parser reading from lex, declaring globals into em and
// registering symbols into sym (which must contain at least the global
// scope).
func New(lex *lexer.Lexer, em *emit.Emitter, sym *symtab.Stack) (*Parser, error) {
	p := &Parser{lex: lex, sym: sym, em: em}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	t, err := p.lex.Scan()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) pos() diag.Position {
	return diag.Position{File: p.cur.Pos.File, Line: p.cur.Pos.Line, Column: p.cur.Pos.Column}
}

// match ensures the current token has kind k, then scans the next token.
func (p *Parser) match(k token.Kind) error {
	if p.cur.Kind != k {
		return diag.SyntaxErrorAt(p.pos(), "expected token %q, got %q", k, p.cur.Kind)
	}
	return p.advance()
}

// matchType parses a type token followed by zero or more '*' pointer
// sigils (spec.md §4.3: "Type token"). ok is false for a bare 'void' with
// no pointer depth (the parameter-list terminator case).
func (p *Parser) matchType() (n types.Number, ok bool, err error) {
	if !token.IsType(p.cur.Kind) {
		return types.Number{}, false, diag.SyntaxErrorAt(p.pos(), "expected a type, got %q", p.cur.Kind)
	}
	kw := p.cur.Kind
	if err = p.advance(); err != nil {
		return
	}
	depth := 0
	for p.cur.Kind == token.Star {
		depth++
		if err = p.advance(); err != nil {
			return
		}
	}
	if kw == token.Void && depth == 0 {
		return types.Number{}, false, nil
	}
	w, werr := types.FromTokenKind(kw)
	if werr != nil {
		return types.Number{}, false, werr
	}
	return types.Number{Width: w, PointerDepth: depth}, true, nil
}

// Program parses a sequence of global variable declarations and function
// declarations (spec.md §4.3: "Grammar (top level)").
func (p *Parser) Program() ([]Function, error) {
	var fns []Function
	for p.cur.Kind != token.EOF {
		n, ok, err := p.matchType()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != token.Identifier {
			return nil, diag.SyntaxErrorAt(p.pos(), "expected identifier after type in declaration")
		}
		name := p.cur.Name
		namePos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.LeftParen {
			retType := types.Void
			if ok {
				retType = types.NewNumber(n)
			}
			fn, err := p.functionDeclaration(name, namePos, retType)
			if err != nil {
				return nil, err
			}
			fns = append(fns, fn)
			continue
		}
		if !ok {
			return nil, diag.SyntaxErrorAt(p.pos(), "variable declarations must have a concrete type")
		}
		if err := p.match(token.Semicolon); err != nil {
			return nil, err
		}
		if _, err := p.sym.Global().Add(name, types.NewNumber(n)); err != nil {
			return nil, err
		}
		p.em.DeclareGlobal(name, n)
	}
	return fns, nil
}

// functionDeclaration parses the parameter list and body of a function
// declaration (spec.md §4.3), registering the function in global scope and
// its parameters in a scope pushed for the duration of the body.
func (p *Parser) functionDeclaration(name string, namePos token.Position, retType types.Type) (Function, error) {
	ftype := types.Function{Return: retType}
	if _, err := p.sym.Global().Add(name, types.NewFunction(ftype)); err != nil {
		return Function{}, err
	}

	if err := p.match(token.LeftParen); err != nil {
		return Function{}, err
	}

	var params []types.Parameter
	for p.cur.Kind != token.RightParen {
		pn, ok, err := p.matchType()
		if err != nil {
			return Function{}, err
		}
		if !ok {
			// bare 'void': no parameters.
			break
		}
		if p.cur.Kind != token.Identifier {
			return Function{}, diag.SyntaxErrorAt(p.pos(), "expected parameter name")
		}
		pname := p.cur.Name
		if err := p.advance(); err != nil {
			return Function{}, err
		}
		params = append(params, types.Parameter{Number: pn, Name: pname})
		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return Function{}, err
			}
		}
	}
	if err := p.match(token.RightParen); err != nil {
		return Function{}, err
	}

	ftype.Parameters = params
	// Re-register with the completed signature (parameters were unknown
	// at the first Add call, mirroring original_source's
	// function_declaration, which fills in function_type.parameters
	// after add_symbol_table_entry has already run).
	if entry := p.sym.Global().Find(name); entry != nil {
		entry.Type = types.NewFunction(ftype)
	}

	p.currentFnName = name
	p.currentFnType = ftype

	p.sym.Push(0)
	for _, param := range params {
		if _, err := p.sym.Peek().Add(param.Name, types.NewNumber(param.Number)); err != nil {
			return Function{}, err
		}
	}
	body, err := p.block()
	p.sym.Pop()
	if err != nil {
		return Function{}, err
	}

	return Function{Name: name, Type: ftype, Body: body}, nil
}

// block parses `'{' stmt* '}'`.
func (p *Parser) block() (*ast.Node, error) {
	if err := p.match(token.LeftBrace); err != nil {
		return nil, err
	}
	var body *ast.Node
	for p.cur.Kind != token.RightBrace {
		stmt, needSemi, err := p.statement()
		if err != nil {
			return nil, err
		}
		if needSemi {
			if err := p.match(token.Semicolon); err != nil {
				return nil, err
			}
		}
		if stmt != nil {
			body = ast.NewGlue(body, stmt)
		}
	}
	if err := p.match(token.RightBrace); err != nil {
		return nil, err
	}
	return body, nil
}

// statement parses one statement, returning whether a trailing ';' is
// required (control statements are not semicolon-terminated).
func (p *Parser) statement() (*ast.Node, bool, error) {
	if token.IsType(p.cur.Kind) {
		if err := p.localDeclarationRejected(); err != nil {
			return nil, false, err
		}
	}
	switch p.cur.Kind {
	case token.Print:
		n, err := p.printStatement()
		return n, true, err
	case token.Identifier:
		n, err := p.assignmentStatement()
		return n, true, err
	case token.Star:
		n, err := p.derefAssignmentStatement()
		return n, true, err
	case token.If:
		n, err := p.ifStatement()
		return n, false, err
	case token.While:
		n, err := p.whileStatement()
		return n, false, err
	case token.For:
		n, err := p.forStatement()
		return n, false, err
	case token.Return:
		n, err := p.returnStatement()
		return n, true, err
	}
	return nil, false, diag.SyntaxErrorAt(p.pos(), "unexpected token %q in statement", p.cur.Kind)
}

// localDeclarationRejected exists because this language (per spec.md §4.3)
// only has top-level variable declarations; a type keyword inside a
// function body is a syntax error rather than a local declaration.
func (p *Parser) localDeclarationRejected() error {
	return diag.SyntaxErrorAt(p.pos(), "variable declarations are only allowed at the top level")
}

func (p *Parser) printStatement() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.match(token.Print); err != nil {
		return nil, err
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(token.Print, pos, e, nil, nil, types.Void), nil
}

func (p *Parser) assignmentStatement() (*ast.Node, error) {
	pos := p.cur.Pos
	name := p.cur.Name
	entry := p.sym.Find(name)
	if entry == nil {
		return nil, diag.IdentifierErrorAt(p.pos(), "identifier %q has not been declared", name)
	}
	if err := p.match(token.Identifier); err != nil {
		return nil, err
	}
	left := ast.NewLeaf(token.Identifier, pos, entry.Type)
	left.Name = name

	if err := p.match(token.Assign); err != nil {
		return nil, err
	}
	rhs, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(token.Assign, pos, left, nil, rhs, types.Void), nil
}

// derefAssignmentStatement parses an assignment through a dereferenced
// pointer, `'*' unary '=' expr`, e.g. `*p = 7;` (spec.md §8's pointer
// scenario). The lvalue is parsed with the same unary() rule used for a
// dereference in expression position, then checked to make sure it is
// actually a dereference chain and not some other unary form.
func (p *Parser) derefAssignmentStatement() (*ast.Node, error) {
	pos := p.cur.Pos
	lvalue, err := p.unary()
	if err != nil {
		return nil, err
	}
	if lvalue.Kind != token.Star {
		return nil, diag.SyntaxErrorAt(pos, "expected a dereference expression as an assignment target")
	}
	if err := p.match(token.Assign); err != nil {
		return nil, err
	}
	rhs, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(token.Assign, pos, lvalue, nil, rhs, types.Void), nil
}

// checkCondition enforces spec.md's rule that an if/while/for condition's
// root operator must be a comparator or a logical operator.
func checkCondition(n *ast.Node, pos diag.Position) error {
	if !token.IsComparator(n.Kind) && !token.IsLogical(n.Kind) {
		return diag.SyntaxErrorAt(pos, "condition clauses must use a logical or comparison operator")
	}
	return nil
}

func (p *Parser) ifStatement() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.match(token.If); err != nil {
		return nil, err
	}
	if err := p.match(token.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if err := checkCondition(cond, p.pos()); err != nil {
		return nil, err
	}
	if err := p.match(token.RightParen); err != nil {
		return nil, err
	}
	trueBranch, err := p.block()
	if err != nil {
		return nil, err
	}
	var falseBranch *ast.Node
	if p.cur.Kind == token.Else {
		if err := p.advance(); err != nil {
			return nil, err
		}
		falseBranch, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return ast.New(token.If, pos, cond, trueBranch, falseBranch, types.Void), nil
}

func (p *Parser) whileStatement() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.match(token.While); err != nil {
		return nil, err
	}
	if err := p.match(token.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if err := checkCondition(cond, p.pos()); err != nil {
		return nil, err
	}
	if err := p.match(token.RightParen); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	var elseBody *ast.Node
	if p.cur.Kind == token.Else {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBody, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return ast.New(token.While, pos, cond, body, elseBody, types.Void), nil
}

// forStatement desugars `for(init; cond; step) body [else elseBody]` into
// `glue(init, while(cond, glue(body, step), elseBody))`: the step runs at
// the end of every iteration, and elseBody keeps while's
// else-after-normal-completion semantics (spec.md §4.3).
func (p *Parser) forStatement() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.match(token.For); err != nil {
		return nil, err
	}
	if err := p.match(token.LeftParen); err != nil {
		return nil, err
	}
	init, err := p.assignmentStatement()
	if err != nil {
		return nil, err
	}
	if err := p.match(token.Semicolon); err != nil {
		return nil, err
	}
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if err := checkCondition(cond, p.pos()); err != nil {
		return nil, err
	}
	if err := p.match(token.Semicolon); err != nil {
		return nil, err
	}
	step, err := p.assignmentStatement()
	if err != nil {
		return nil, err
	}
	if err := p.match(token.RightParen); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	var elseBody *ast.Node
	if p.cur.Kind == token.Else {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBody, err = p.block()
		if err != nil {
			return nil, err
		}
	}

	loop := ast.New(token.While, pos, cond, ast.NewGlue(body, step), elseBody, types.Void)
	return ast.NewGlue(init, loop), nil
}

func (p *Parser) returnStatement() (*ast.Node, error) {
	pos := p.cur.Pos
	if err := p.match(token.Return); err != nil {
		return nil, err
	}
	if p.currentFnType.Return.IsVoid() {
		return ast.New(token.Return, pos, nil, nil, nil, types.Void), nil
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return ast.New(token.Return, pos, e, nil, nil, p.currentFnType.Return), nil
}

// expr parses an expression using operator-precedence climbing
// (spec.md §4.3). minPrec is the minimum precedence an operator must have
// to be consumed at this recursion level.
func (p *Parser) expr(minPrec int) (*ast.Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := precedence[p.cur.Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		op := p.cur.Kind
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		// All binary operators here are left-associative (spec.md §4.3).
		right, err := p.expr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = ast.New(op, pos, left, nil, right, resultType(op, left, right))
	}
}

// resultType synthesizes the type of a binary operator application: the
// wider of the two operand widths for arithmetic, i1 for
// comparisons/logicals (spec.md §4.5: "Constant folding").
func resultType(op token.Kind, left, right *ast.Node) types.Type {
	if token.IsComparator(op) || token.IsLogical(op) {
		return types.NewNumber(types.Number{Width: types.Width1})
	}
	lw := left.Type.NumberValue.Width
	rw := right.Type.NumberValue.Width
	return types.NewNumber(types.Number{Width: types.Wider(lw, rw)})
}

// unary parses a terminal expression: integer literal, identifier,
// parenthesized sub-expression, address-of ('&') or dereference ('*')
// (spec.md §4.7: "Terminal tokens in expressions").
func (p *Parser) unary() (*ast.Node, error) {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.IntegerLiteral, token.ByteLiteral, token.CharLiteral, token.ShortLiteral, token.LongLiteral:
		w, err := types.FromTokenKind(p.cur.Kind)
		if err != nil {
			return nil, err
		}
		v := p.cur.IntValue
		k := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		n := ast.NewLeaf(k, pos, types.NewNumber(types.Number{Width: w}))
		n.IntValue = v
		return n, nil
	case token.True, token.False:
		v := p.cur.IntValue
		k := p.cur.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		n := ast.NewLeaf(k, pos, types.NewNumber(types.Number{Width: types.Width1}))
		n.IntValue = v
		return n, nil
	case token.Identifier:
		name := p.cur.Name
		entry := p.sym.Find(name)
		if entry == nil {
			return nil, diag.IdentifierErrorAt(p.pos(), "identifier %q has not been declared", name)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.LeftParen {
			return p.call(name, entry.Type, pos)
		}
		n := ast.NewLeaf(token.Identifier, pos, entry.Type)
		n.Name = name
		return n, nil
	case token.Amp:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		n := ast.New(token.Amp, pos, operand, nil, nil, types.NewNumber(operand.Type.NumberValue.AddrOf()))
		return n, nil
	case token.Star:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.New(token.Star, pos, operand, nil, nil, types.NewNumber(operand.Type.NumberValue.Deref())), nil
	case token.LeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.match(token.RightParen); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, diag.SyntaxErrorAt(p.pos(), "unexpected token %q in expression", p.cur.Kind)
}

// call parses the argument list of a function-call expression
// (spec.md §3's synthetic "function_call" token kind).
func (p *Parser) call(name string, fnType types.Type, pos token.Position) (*ast.Node, error) {
	if err := p.match(token.LeftParen); err != nil {
		return nil, err
	}
	var args *ast.Node
	for p.cur.Kind != token.RightParen {
		arg, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		args = ast.NewGlue(args, arg)
		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.match(token.RightParen); err != nil {
		return nil, err
	}
	n := ast.New(token.FunctionCall, pos, args, nil, nil, fnType.FunctionValue.Return)
	n.Name = name
	return n, nil
}
