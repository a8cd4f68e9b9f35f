// Package parser implements a Pratt (top-down operator precedence) parser
// producing the ast package's tagged tree, with namespace-aware name
// resolution for "ns" blocks and dotted identifiers.
package parser

import (
	"strconv"

	"github.com/wudi/ccb/ast"
	"github.com/wudi/ccb/internal/diag"
	"github.com/wudi/ccb/lexer"
)

// precedence levels, ascending, matching spec.md §4.2's table.
const (
	LOWEST = iota
	ASSIGNMENT
	LESSGREATER
	COMPARISON
	EQUALITY
	SUM
	PRODUCT
	CALL
)

var precedences = map[lexer.Kind]int{
	lexer.ASSIGN:  ASSIGNMENT,
	lexer.LT:      LESSGREATER,
	lexer.GT:      LESSGREATER,
	lexer.LT_EQ:   COMPARISON,
	lexer.GT_EQ:   COMPARISON,
	lexer.EQ:      EQUALITY,
	lexer.NOT_EQ:  EQUALITY,
	lexer.PLUS:    SUM,
	lexer.MINUS:   SUM,
	lexer.STAR:    PRODUCT,
	lexer.SLASH:   PRODUCT,
	lexer.LPAREN:  CALL,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser consumes tokens from a Lexer and builds an AST. Errors are
// non-recovering but non-fatal: a failing sub-parser returns nil and the
// caller abandons the current statement, resuming at the next boundary.
type Parser struct {
	l *lexer.Lexer

	curTok  lexer.Token
	peekTok lexer.Token

	nsStack   []string // active "ns" name components, outermost first
	funcDepth int      // >0 while inside a function body

	Errors []*diag.Error

	prefixParseFns map[lexer.Kind]prefixParseFn
	infixParseFns  map[lexer.Kind]infixParseFn
}

// New creates a parser over the token stream produced by l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[lexer.Kind]prefixParseFn{
		lexer.IDENT: p.parseIdentifier,
		lexer.INT:   p.parseIntegerLiteral,
		lexer.IF:    p.parseIfExpression,
	}
	p.infixParseFns = map[lexer.Kind]infixParseFn{
		lexer.ASSIGN:  p.parseAssignExpression,
		lexer.LT:      p.parseInfixExpression,
		lexer.GT:      p.parseInfixExpression,
		lexer.LT_EQ:   p.parseInfixExpression,
		lexer.GT_EQ:   p.parseInfixExpression,
		lexer.EQ:      p.parseInfixExpression,
		lexer.NOT_EQ:  p.parseInfixExpression,
		lexer.PLUS:    p.parseInfixExpression,
		lexer.MINUS:   p.parseInfixExpression,
		lexer.STAR:    p.parseInfixExpression,
		lexer.SLASH:   p.parseInfixExpression,
		lexer.LPAREN:  p.parseCallExpression,
	}

	// prime curTok/peekTok
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
	if p.peekTok.Kind == lexer.ILLEGAL {
		p.Errors = append(p.Errors, diag.NewLexError(
			diag.Position{Line: p.peekTok.Line, Col: p.peekTok.Col},
			"illegal character '%s'", p.peekTok.Literal,
		))
	}
}

func (p *Parser) pos() diag.Position {
	return diag.Position{Line: p.curTok.Line, Col: p.curTok.Col}
}

func (p *Parser) curIs(k lexer.Kind) bool  { return p.curTok.Kind == k }
func (p *Parser) peekIs(k lexer.Kind) bool { return p.peekTok.Kind == k }

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Kind]; ok {
		return pr
	}
	return LOWEST
}

// expect advances past curTok if it matches k, else records a diagnostic
// and returns false without advancing.
func (p *Parser) expect(k lexer.Kind) bool {
	if p.curIs(k) {
		p.nextToken()
		return true
	}
	p.Errors = append(p.Errors, diag.NewParseError(p.pos(),
		"expected %s, got %s", k, p.curTok.Kind))
	return false
}

// synchronize skips tokens until a likely statement boundary, so parsing
// can continue after an error without cascading failures.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
			return
		}
		if p.curIs(lexer.RBRACE) {
			return
		}
		switch p.curTok.Kind {
		case lexer.LET, lexer.IF, lexer.WHILE, lexer.OUT, lexer.IN, lexer.NS, lexer.FN, lexer.RETURN:
			return
		}
		p.nextToken()
	}
}

// skipSemicolon consumes a trailing ";" if present; it is optional at
// end-of-input and after blocks per spec.md §4.2.
func (p *Parser) skipSemicolon() {
	if p.curIs(lexer.SEMICOLON) {
		p.nextToken()
	}
}

// ParseProgram parses the whole token stream into a Program, continuing
// past statement-level errors.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(lexer.EOF) {
		before := len(p.Errors)
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if len(p.Errors) > before && stmt == nil {
			p.synchronize()
		}
	}
	return prog
}

func (p *Parser) qualify(name string) string {
	if p.funcDepth > 0 {
		return name
	}
	if len(p.nsStack) == 0 {
		return name
	}
	prefix := p.nsStack[0]
	for _, c := range p.nsStack[1:] {
		prefix = prefix + "." + c
	}
	return prefix + "." + name
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curTok.Kind {
	case lexer.LET:
		return p.parseLetStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.OUT:
		return p.parseOutStatement()
	case lexer.IN:
		return p.parseInStatement()
	case lexer.NS:
		return p.parseNsStatement()
	case lexer.FN:
		return p.parseFunctionDecl()
	case lexer.RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'let'
	if !p.curIs(lexer.IDENT) {
		p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "expected identifier, got %s", p.curTok.Kind))
		return nil
	}
	name := p.qualify(p.curTok.Literal)
	p.nextToken()
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	val := p.parseExpression(LOWEST)
	if val == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.Let{Position: pos, Name: name, Value: val}
}

func (p *Parser) parseWhileStatement() ast.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'while'
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.While{Position: pos, Cond: cond, Body: body}
}

func (p *Parser) parseOutStatement() ast.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'out'
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.Out{Position: pos, Expr: expr}
}

func (p *Parser) parseInStatement() ast.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'in'
	if !p.curIs(lexer.IDENT) {
		p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "expected identifier, got %s", p.curTok.Kind))
		return nil
	}
	name := p.qualify(p.curTok.Literal)
	p.nextToken()
	p.skipSemicolon()
	return &ast.In{Position: pos, Name: name}
}

func (p *Parser) parseNsStatement() ast.Stmt {
	p.nextToken() // consume 'ns'
	if !p.curIs(lexer.IDENT) {
		p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "expected identifier, got %s", p.curTok.Kind))
		return nil
	}
	name := p.curTok.Literal
	p.nextToken()

	p.nsStack = append(p.nsStack, name)
	block := p.parseBlock()
	p.nsStack = p.nsStack[:len(p.nsStack)-1]
	if block == nil {
		return nil
	}
	// "ns" has no runtime existence: lowered to a plain Block.
	return block
}

func (p *Parser) parseFunctionDecl() ast.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'fn'
	if !p.curIs(lexer.IDENT) {
		p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "expected identifier, got %s", p.curTok.Kind))
		return nil
	}
	name := p.qualify(p.curTok.Literal)
	p.nextToken()

	if !p.expect(lexer.LPAREN) {
		return nil
	}
	var params []string
	for !p.curIs(lexer.RPAREN) {
		if !p.curIs(lexer.IDENT) {
			p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "expected identifier, got %s", p.curTok.Kind))
			return nil
		}
		params = append(params, p.curTok.Literal)
		p.nextToken()
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}

	returnType := "int"
	if p.curIs(lexer.ARROW) {
		p.nextToken()
		if !p.curIs(lexer.IDENT) {
			p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "expected type name, got %s", p.curTok.Kind))
			return nil
		}
		returnType = p.curTok.Literal
		p.nextToken()
	}

	p.funcDepth++
	body := p.parseBlock()
	p.funcDepth--
	if body == nil {
		return nil
	}

	return &ast.FunctionDecl{Position: pos, Name: name, Params: params, ReturnType: returnType, Body: body}
}

func (p *Parser) parseReturnStatement() ast.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'return'
	if p.curIs(lexer.SEMICOLON) || p.curIs(lexer.RBRACE) {
		p.skipSemicolon()
		return &ast.Return{Position: pos}
	}
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.Return{Position: pos, Expr: expr}
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	pos := p.pos()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.ExprStmt{Position: pos, Expr: expr}
}

func (p *Parser) parseBlock() *ast.Block {
	pos := p.pos()
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	block := &ast.Block{Position: pos}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		before := len(p.Errors)
		stmt := p.parseStatement()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if len(p.Errors) > before && stmt == nil {
			p.synchronize()
			if p.curIs(lexer.RBRACE) {
				break
			}
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return block
}

// --- expressions ---

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curTok.Kind]
	if prefix == nil {
		p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "unexpected token %s", p.curTok.Kind))
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for !p.curIs(lexer.SEMICOLON) && precedence < p.curPrecedence() {
		infix := p.infixParseFns[p.curTok.Kind]
		if infix == nil {
			return left
		}
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expr {
	pos := p.pos()
	name := p.curTok.Literal
	p.nextToken()
	for p.curIs(lexer.DOT) {
		p.nextToken() // consume '.'
		if !p.curIs(lexer.IDENT) {
			p.Errors = append(p.Errors, diag.NewParseError(p.pos(), "expected identifier after '.', got %s", p.curTok.Kind))
			return nil
		}
		name = name + "." + p.curTok.Literal
		p.nextToken()
	}
	return &ast.Identifier{Position: pos, Name: name}
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	pos := p.pos()
	v, err := strconv.Atoi(p.curTok.Literal)
	if err != nil {
		p.Errors = append(p.Errors, diag.NewParseError(pos, "invalid integer literal %q", p.curTok.Literal))
		return nil
	}
	p.nextToken()
	return &ast.IntegerLiteral{Position: pos, Value: v}
}

func (p *Parser) parseIfExpression() ast.Expr {
	pos := p.pos()
	p.nextToken() // consume 'if'
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}
	node := &ast.If{Position: pos, Cond: cond, Then: then}
	if p.curIs(lexer.ELSE) {
		p.nextToken()
		elseBlock := p.parseBlock()
		if elseBlock == nil {
			return nil
		}
		node.Else = elseBlock
	}
	return node
}

// parseInfixExpression handles the left-associative binary operators.
func (p *Parser) parseInfixExpression(left ast.Expr) ast.Expr {
	pos := p.pos()
	op := p.curTok.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{Position: pos, Op: op, Left: left, Right: right}
}

// parseAssignExpression requires its left operand to be an identifier and
// is right-associative: it parses its right side one level below
// ASSIGNMENT, so a following "=" is taken into the right operand.
func (p *Parser) parseAssignExpression(left ast.Expr) ast.Expr {
	pos := p.pos()
	if _, ok := left.(*ast.Identifier); !ok {
		p.Errors = append(p.Errors, diag.NewParseError(pos, "invalid assignment target"))
		return nil
	}
	p.nextToken() // consume '='
	right := p.parseExpression(ASSIGNMENT - 1)
	if right == nil {
		return nil
	}
	return &ast.Infix{Position: pos, Op: "=", Left: left, Right: right}
}

// parseCallExpression treats "(" as a postfix infix operator.
func (p *Parser) parseCallExpression(callee ast.Expr) ast.Expr {
	pos := p.pos()
	ident, ok := callee.(*ast.Identifier)
	if !ok {
		p.Errors = append(p.Errors, diag.NewParseError(pos, "call target must be an identifier"))
		return nil
	}
	p.nextToken() // consume '('
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) {
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return &ast.Call{Position: pos, Callee: ident, Args: args}
}
