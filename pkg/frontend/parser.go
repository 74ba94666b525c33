package frontend

import (
	"math/big"
	"strconv"

	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

// Parser walks tokens, constructing AST values with folding interleaved
// into parsing rather than as a post-hoc pass, per §4.4. Grounded on
// pkg/parser/parser.go's recursive-descent structure, specifically its
// parseBinaryExpr precedence-climbing loop and parseUnary.
type Parser struct {
	tokens []Token
	pos    int

	ctx   *compile.Context
	reg   *registry.Registry
	diags *Diagnostics
}

func NewParser(tokens []Token, ctx *compile.Context, reg *registry.Registry) *Parser {
	return &Parser{tokens: tokens, ctx: ctx, reg: reg, diags: &Diagnostics{}}
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[idx]
}

func (p *Parser) at(tt TokenType) bool { return p.cur().Type == tt }

func (p *Parser) advance() Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt TokenType) (Token, bool) {
	if p.at(tt) {
		return p.advance(), true
	}
	tok := p.cur()
	p.diags.Add(DiagGrammarError, tok.Line, tok.Column, "expected %s, got %s", tt, tok.Type)
	return tok, false
}

func (p *Parser) skipTerminators() {
	for p.at(NEWLINE) || p.at(SEMICOLON) {
		p.advance()
	}
}

// ParseProgram parses the whole token stream into a pre-compaction
// Program. Diagnostics accumulate on p.diags; the caller should check
// p.diags.HasErrors() after return.
func (p *Parser) ParseProgram() *Program {
	var stmts []Statement
	p.ctx.BeginStatements()
	p.skipTerminators()
	for !p.at(EOF) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipTerminators()
	}

	// Final statement promotion (§4.4): a trailing expression-statement
	// becomes the program's return value.
	if n := len(stmts); n > 0 {
		if es, ok := stmts[n-1].(*ExprStmt); ok {
			stmts[n-1] = &ReturnStmt{Expr: es.Expr}
		}
	}
	return &Program{Statements: stmts}
}

func (p *Parser) Diagnostics() *Diagnostics { return p.diags }

func (p *Parser) parseStatement() Statement {
	switch p.cur().Type {
	case LET:
		return p.parseLet()
	case IF:
		return p.parseIfElse()
	case WHILE:
		return p.parseWhile()
	case RETURN:
		return p.parseReturn()
	case EOF, RBRACE:
		return nil
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) parseBlock() []Statement {
	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}
	p.ctx.PushBlock()
	var stmts []Statement
	p.skipTerminators()
	for !p.at(RBRACE) && !p.at(EOF) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipTerminators()
	}
	p.expect(RBRACE)
	p.ctx.PopBlock()
	return stmts
}

// parseLet implements `let name = expr;` — always a fresh variable at the
// current scope, per §4.4 ASSIGNMENT.
func (p *Parser) parseLet() Statement {
	p.advance() // consume 'let'
	nameTok, ok := p.expect(IDENT)
	if !ok {
		return nil
	}
	if _, ok := p.expect(EQUALS); !ok {
		return nil
	}
	expr := p.parseExpr(1)

	v := &compile.Variable{Name: nameTok.Literal, CanInline: true}
	if expr.IsSimple() {
		v.CurrentKnownValue = expr
		v.HasKnownValue = true
		bl, idx := p.ctx.PushVariable(v, true)
		_ = bl
		_ = idx
		return nil // folds away entirely: nothing to emit at runtime
	}
	bl, idx := p.ctx.PushVariable(v, true)
	p.ctx.MarkNonInlineable(bl, idx)
	return &ScopedAssignStmt{BlockLevel: bl, VarIndex: idx, Expr: expr}
}

// parseExprOrAssignStatement handles `ident = expr`, `property = expr`,
// and bare expression statements, sharing the same primary-with-chain
// parse so the target of an assignment and a plain read use one code
// path.
func (p *Parser) parseExprOrAssignStatement() Statement {
	line, col := p.cur().Line, p.cur().Column
	if p.at(BANG) || p.at(MINUS) {
		// A unary-prefixed expression is never an assignment target.
		return &ExprStmt{Expr: p.parseExpr(1)}
	}
	expr, tgt := p.parsePrimaryWithChain()

	if p.at(EQUALS) {
		p.advance()
		rhs := p.parseExpr(1)
		switch {
		case tgt != nil && tgt.isVariable:
			if rhs.IsSimple() {
				v := p.ctx.GetVariableAt(tgt.blockLevel, tgt.index)
				if v != nil {
					v.CurrentKnownValue = rhs
					v.HasKnownValue = true
				}
				return nil
			}
			p.ctx.MarkNonInlineable(tgt.blockLevel, tgt.index)
			return &ScopedAssignStmt{BlockLevel: tgt.blockLevel, VarIndex: tgt.index, Expr: rhs}
		case tgt != nil && tgt.isProperty:
			result, _ := p.resolveProperty(tgt.receiver, tgt.receiverType, tgt.segment, tgt.args, &rhs, tgt.line, tgt.col)
			return &ExprStmt{Expr: result}
		default:
			p.diags.Add(DiagGrammarError, line, col, "left-hand side of assignment is not assignable")
			return nil
		}
	}

	full := p.continueBinary(expr, 1, line, col)
	return &ExprStmt{Expr: full}
}

// parseIfElse builds the ordered (predicate, body) clause list and applies
// the four simplification rules of §4.4.
func (p *Parser) parseIfElse() Statement {
	var clauses []Clause
	p.advance() // consume 'if'
	cond := p.parseExpr(1)
	body := p.parseBlock()
	clauses = append(clauses, Clause{Cond: cond, Body: body})

	for p.at(ELSE) {
		p.advance()
		if p.at(IF) {
			p.advance()
			c := p.parseExpr(1)
			b := p.parseBlock()
			clauses = append(clauses, Clause{Cond: c, Body: b})
			continue
		}
		b := p.parseBlock()
		clauses = append(clauses, Clause{Cond: value.Bool(true), Body: b})
		break
	}

	return simplifyIfElse(clauses)
}

// simplifyIfElse applies §4.4's four if/else-if/else simplification rules.
func simplifyIfElse(clauses []Clause) Statement {
	kept := clauses[:0:0]
	for _, c := range clauses {
		if c.Cond.IsConstantFalse() {
			continue
		}
		kept = append(kept, c)
		if c.Cond.IsConstantTrue() {
			break // truncate: everything after a constant-true clause is unreachable
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		if kept[0].Cond.IsConstantTrue() {
			return blockToStatement(kept[0].Body)
		}
		if kept[0].Cond.IsSimple() {
			b, err := value.ToBool(kept[0].Cond)
			if err == nil {
				if b {
					return blockToStatement(kept[0].Body)
				}
				return nil
			}
		}
	}
	return &IfElseStmt{Clauses: kept}
}

// blockToStatement collapses a single-clause body list into one
// statement slot; callers that need a single Statement embed it inside a
// synthetic always-true IfElseStmt since Program.Statements is flat.
func blockToStatement(body []Statement) Statement {
	return &IfElseStmt{Clauses: []Clause{{Cond: value.Bool(true), Body: body}}}
}

// parseWhile implements the WHILE construction rule. The condition reads
// variables normally: whether a variable is still foldable here is
// governed entirely by the conservative invalidation rule in
// compile.Context (cleared the moment something writes to it at a deeper
// scope), not by a separate suspend-around-the-predicate toggle — see
// SPEC_FULL.md §9.1 for why the toggle was dropped in favor of that rule.
// A new scope is pushed for the body.
func (p *Parser) parseWhile() Statement {
	p.advance() // consume 'while'
	cond := p.parseExpr(1)
	body := p.parseBlock()
	return &WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) parseReturn() Statement {
	p.advance() // consume 'return'
	if p.at(SEMICOLON) || p.at(NEWLINE) || p.at(RBRACE) || p.at(EOF) {
		return &ReturnStmt{Expr: value.Null()}
	}
	expr := p.parseExpr(1)
	return &ReturnStmt{Expr: expr}
}

// parseExpr is the entry point for a full expression (no statement-level
// assignment handling).
func (p *Parser) parseExpr(minPrec int) value.Value {
	line, col := p.cur().Line, p.cur().Column
	left, _ := p.parseUnary()
	return p.continueBinary(left, minPrec, line, col)
}

// continueBinary runs the precedence-climbing loop starting from an
// already-parsed left operand, mirroring
// pkg/parser/parser.go's parseBinaryExpr.
func (p *Parser) continueBinary(left value.Value, minPrec int, line, col int) value.Value {
	for {
		symbol, prec, ok := p.currentBinaryOp()
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right, _ := p.parseUnary()
		right = p.continueBinary(right, prec+1, opTok.Line, opTok.Column)
		left = p.resolveBinary(symbol, left, right, line, col)
	}
}

func (p *Parser) currentBinaryOp() (string, int, bool) {
	tt := p.cur().Type
	var symbol string
	switch tt {
	case PIPE_PIPE:
		symbol = "||"
	case CARET:
		symbol = "^"
	case AMP_AMP:
		symbol = "&&"
	case SHL:
		symbol = "<<"
	case SHR:
		symbol = ">>"
	case EQ_EQ:
		symbol = "=="
	case NOT_EQ:
		symbol = "!="
	case LESS:
		symbol = "<"
	case LESS_EQ:
		symbol = "<="
	case GREATER:
		symbol = ">"
	case GREATER_EQ:
		symbol = ">="
	case PERCENT:
		symbol = "%"
	case STAR:
		symbol = "*"
	case SLASH:
		symbol = "/"
	case PLUS:
		symbol = "+"
	case MINUS:
		symbol = "-"
	default:
		return "", 0, false
	}
	prec, ok := registry.BinaryOperators[symbol]
	return symbol, prec, ok
}

func (p *Parser) parseUnary() (value.Value, *target) {
	if p.at(BANG) || p.at(MINUS) {
		opTok := p.advance()
		symbol := "!"
		if opTok.Type == MINUS {
			symbol = "-"
		}
		operand, _ := p.parseUnary()
		return p.resolveUnary(symbol, operand, opTok.Line, opTok.Column), nil
	}
	return p.parsePrimaryWithChain()
}

// target identifies an lvalue-shaped expression so the caller can decide,
// once it sees whether `=` follows, whether to treat it as an assignment
// target or a plain read.
type target struct {
	isVariable bool
	blockLevel int
	index      int

	isProperty   bool
	receiver     value.Value
	receiverType string
	segment      string
	args         []value.Value
	line, col    int
}

// parsePrimaryWithChain parses a primary expression and any trailing
// `.segment(args)` / `[index]` postfix chain, returning both the folded
// expression value and, when the expression is assignable, a target
// describing where an `=` would write.
func (p *Parser) parsePrimaryWithChain() (value.Value, *target) {
	base, baseType, tgt := p.parsePrimary()

	for {
		switch p.cur().Type {
		case DOT:
			dotTok := p.advance()
			segTok, ok := p.expect(IDENT)
			if !ok {
				return base, nil
			}
			var args []value.Value
			hasCall := false
			if p.at(LPAREN) {
				hasCall = true
				args = p.parseArgList()
			}
			// An assignment target only if this is the final segment,
			// which the caller (parseExprOrAssignStatement) determines
			// by checking for `=` immediately after we return; we always
			// prepare a property target here and let the caller decide.
			if !hasCall && p.cur().Type != DOT && p.cur().Type != LBRACKET {
				tgt = &target{
					isProperty:   true,
					receiver:     base,
					receiverType: baseType,
					segment:      segTok.Literal,
					args:         nil,
					line:         dotTok.Line,
					col:          dotTok.Column,
				}
				if p.at(EQUALS) {
					return base, tgt
				}
			}
			result, retType := p.resolveProperty(base, baseType, segTok.Literal, args, nil, dotTok.Line, dotTok.Column)
			base, baseType = result, retType
			tgt = nil
		case LBRACKET:
			brTok := p.advance()
			idx := p.parseExpr(1)
			p.expect(RBRACKET)
			base = p.resolveIndex(base, idx, brTok.Line, brTok.Column)
			baseType = ""
			tgt = nil
		default:
			return base, tgt
		}
	}
}

// parseArgList parses a parenthesized, comma-separated argument list.
func (p *Parser) parseArgList() []value.Value {
	p.expect(LPAREN)
	var args []value.Value
	if !p.at(RPAREN) {
		args = append(args, p.parseExpr(1))
		for p.at(COMMA) {
			p.advance()
			args = append(args, p.parseExpr(1))
		}
	}
	p.expect(RPAREN)
	return args
}

// parsePrimary parses the innermost non-chained expression, returning its
// value, its known associated type (empty if untyped), and an lvalue
// target when the primary is a bare identifier naming a variable.
func (p *Parser) parsePrimary() (value.Value, string, *target) {
	tok := p.cur()
	switch tok.Type {
	case INTEGER:
		p.advance()
		n := new(big.Int)
		if _, ok := n.SetString(tok.Literal, 10); !ok {
			p.diags.Add(DiagNumericLiteralOutOfRange, tok.Line, tok.Column, "invalid integer literal %q", tok.Literal)
			return value.Null(), "", nil
		}
		return value.Int(value.Int128FromBig(n)), "Integer", nil
	case DECIMAL:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.diags.Add(DiagNumericLiteralOutOfRange, tok.Line, tok.Column, "invalid decimal literal %q", tok.Literal)
			return value.Null(), "", nil
		}
		return value.Decimal(f), "Decimal", nil
	case STRING:
		p.advance()
		return value.Str(tok.Literal), "String", nil
	case TRUE:
		p.advance()
		return value.Bool(true), "Boolean", nil
	case FALSE:
		p.advance()
		return value.Bool(false), "Boolean", nil
	case NULL:
		p.advance()
		return value.Null(), "", nil
	case LPAREN:
		p.advance()
		v := p.parseExpr(1)
		p.expect(RPAREN)
		return v, "", nil
	case LBRACKET:
		return p.parseArrayLiteral(), "Array", nil
	case IDENT:
		return p.parseIdentifier()
	default:
		p.diags.Add(DiagGrammarError, tok.Line, tok.Column, "unexpected token %s", tok.Type)
		p.advance()
		return value.Null(), "", nil
	}
}

// parseArrayLiteral parses `[a b c]` — whitespace-separated elements, an
// optional comma also accepted between elements for readability. All
// elements are folded; the array is itself simple if every element is.
// An element that starts with '[' is read as a nested array literal on its
// own, so a following '[' opens the next element; after any other element
// a '[' is read as an index into that element.
func (p *Parser) parseArrayLiteral() value.Value {
	p.advance() // consume '['
	var items []value.Value
	for !p.at(RBRACKET) && !p.at(EOF) {
		if p.at(LBRACKET) {
			items = append(items, p.parseArrayLiteral())
		} else {
			items = append(items, p.parseExpr(1))
		}
		for p.at(COMMA) {
			p.advance()
		}
	}
	p.expect(RBRACKET)
	return value.Arr(items)
}

// parseIdentifier resolves a bare identifier: a module-qualified call
// (`module/name(args)`), a bare call (`name(args)`), a known variable
// (substituted if inlineable), or a constant.
func (p *Parser) parseIdentifier() (value.Value, string, *target) {
	tok := p.advance()
	name := tok.Literal

	if p.at(SLASH) && p.isModulePathAhead() {
		p.advance() // consume '/'
		fnTok, _ := p.expect(IDENT)
		args := p.parseArgList()
		return p.resolveCall("", name, fnTok.Literal, args, tok.Line, tok.Column), "", nil
	}

	if p.at(LPAREN) {
		args := p.parseArgList()
		return p.resolveCall("", "", name, args, tok.Line, tok.Column), "", nil
	}

	if bl, idx, v, ok := p.ctx.FindVariable(name); ok {
		declType := ""
		if v.HasDeclaredType {
			declType = v.DeclaredType
		}
		tgt := &target{isVariable: true, blockLevel: bl, index: idx}
		if p.at(EQUALS) {
			return value.ScopedVar(bl, idx), declType, tgt
		}
		if val, okInline := v.InlineableValue(); okInline {
			return val, declType, nil
		}
		return value.ScopedVar(bl, idx), declType, tgt
	}

	if cv, ctype, ok := p.reg.FindConstant(name); ok {
		return cv, ctype, nil
	}

	if near, found := nearestName(name, p.ctx.VisibleVariableNames()); found {
		p.diags.Add(DiagIdentifierNotInScope, tok.Line, tok.Column, "identifier %q not in scope; did you mean %q?", name, near)
	} else {
		p.diags.Add(DiagIdentifierNotInScope, tok.Line, tok.Column, "identifier %q not in scope", name)
	}
	return value.Null(), "", nil
}

// isModulePathAhead looks two tokens past the current '/' to decide
// whether this is a module-qualified call (`module/name(`) rather than a
// division expression; the grammar is deliberately ambiguous here (the
// source language reuses '/' for both), so this heuristic resolves it the
// way a human reader would: "identifier slash identifier paren" reads as
// a path.
func (p *Parser) isModulePathAhead() bool {
	return p.peekAt(1).Type == IDENT && p.peekAt(2).Type == LPAREN
}
