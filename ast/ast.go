// Package ast defines the tagged tree produced by the parser: the closed
// node set of spec.md §3, no more.
package ast

import "github.com/wudi/ccb/internal/diag"

// Node is any AST node.
type Node interface {
	Pos() diag.Position
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root of the tree: a sequence of top-level statements.
type Program struct {
	Statements []Stmt
}

func (p *Program) Pos() diag.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return diag.Position{}
}

// --- Expressions ---

type IntegerLiteral struct {
	Position diag.Position
	Value    int
}

func (n *IntegerLiteral) Pos() diag.Position { return n.Position }
func (*IntegerLiteral) exprNode()            {}

// Identifier may be a simple name or a dotted, namespace-qualified name
// (already concatenated with "." by the parser).
type Identifier struct {
	Position diag.Position
	Name     string
}

func (n *Identifier) Pos() diag.Position { return n.Position }
func (*Identifier) exprNode()            {}

// Infix covers all binary operators including assignment ("="), whose
// Left is always an *Identifier.
type Infix struct {
	Position diag.Position
	Op       string
	Left     Expr
	Right    Expr
}

func (n *Infix) Pos() diag.Position { return n.Position }
func (*Infix) exprNode()            {}

// If is an expression: it contributes whatever its taken branch pushes.
type If struct {
	Position diag.Position
	Cond     Expr
	Then     *Block
	Else     *Block // nil if no else clause
}

func (n *If) Pos() diag.Position { return n.Position }
func (*If) exprNode()            {}

// Call's Callee is always an *Identifier; the language has no first-class
// function values.
type Call struct {
	Position diag.Position
	Callee   *Identifier
	Args     []Expr
}

func (n *Call) Pos() diag.Position { return n.Position }
func (*Call) exprNode()            {}

// --- Statements ---

type Block struct {
	Position diag.Position
	Stmts    []Stmt
}

func (n *Block) Pos() diag.Position { return n.Position }
func (*Block) stmtNode()            {}

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	Position diag.Position
	Expr     Expr
}

func (n *ExprStmt) Pos() diag.Position { return n.Position }
func (*ExprStmt) stmtNode()            {}

// Let declares a new binding, global or local depending on context.
type Let struct {
	Position diag.Position
	Name     string // already namespace-qualified if at top level
	Value    Expr
}

func (n *Let) Pos() diag.Position { return n.Position }
func (*Let) stmtNode()            {}

type While struct {
	Position diag.Position
	Cond     Expr
	Body     *Block
}

func (n *While) Pos() diag.Position { return n.Position }
func (*While) stmtNode()            {}

type Out struct {
	Position diag.Position
	Expr     Expr
}

func (n *Out) Pos() diag.Position { return n.Position }
func (*Out) stmtNode()            {}

// In reads one integer from stdin into Name (global or local).
type In struct {
	Position diag.Position
	Name     string
}

func (n *In) Pos() diag.Position { return n.Position }
func (*In) stmtNode()            {}

// FunctionDecl's Name is always the fully-qualified form. ReturnType is
// accepted syntax but not semantically enforced (spec.md §4.2).
type FunctionDecl struct {
	Position   diag.Position
	Name       string
	Params     []string
	ReturnType string
	Body       *Block
}

func (n *FunctionDecl) Pos() diag.Position { return n.Position }
func (*FunctionDecl) stmtNode()            {}

// Return's Expr is nil for a bare "return;".
type Return struct {
	Position diag.Position
	Expr     Expr
}

func (n *Return) Pos() diag.Position { return n.Position }
func (*Return) stmtNode()            {}
