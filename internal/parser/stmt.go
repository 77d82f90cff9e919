package parser

import "rusteria/internal/lexer"

// Stmt is any statement node.
type Stmt interface {
	Accept(v StmtVisitor) error
	Token() lexer.Token
}

type StmtVisitor interface {
	VisitBlockStmt(s *BlockStmt) error
	VisitExpressionStmt(s *ExpressionStmt) error
	VisitVarDeclStmt(s *VarDeclStmt) error
	VisitAssignStmt(s *AssignStmt) error
	VisitFunctionDeclStmt(s *FunctionDeclStmt) error
	VisitStructDeclStmt(s *StructDeclStmt) error
	VisitReturnStmt(s *ReturnStmt) error
	VisitIfStmt(s *IfStmt) error
	VisitWhileStmt(s *WhileStmt) error
	VisitForStmt(s *ForStmt) error
	VisitBreakStmt(s *BreakStmt) error
	VisitImportStmt(s *ImportStmt) error
	VisitEmptyStmt(s *EmptyStmt) error
}

type BlockStmt struct {
	Tok   lexer.Token
	Stmts []Stmt
}

func (s *BlockStmt) Accept(v StmtVisitor) error { return v.VisitBlockStmt(s) }
func (s *BlockStmt) Token() lexer.Token         { return s.Tok }

type ExpressionStmt struct {
	Tok  lexer.Token
	Expr Expr
}

func (s *ExpressionStmt) Accept(v StmtVisitor) error { return v.VisitExpressionStmt(s) }
func (s *ExpressionStmt) Token() lexer.Token         { return s.Tok }

// VarDeclStmt is `let name = expr;`. Declares a new local (inside a
// function body) or global (at module scope).
type VarDeclStmt struct {
	Tok  lexer.Token
	Name string
	Init Expr
}

func (s *VarDeclStmt) Accept(v StmtVisitor) error { return v.VisitVarDeclStmt(s) }
func (s *VarDeclStmt) Token() lexer.Token         { return s.Tok }

// AssignStmt is `target[.swizzle] op= value;` for op in {=, +=, -=, *=, /=}.
type AssignStmt struct {
	Tok     lexer.Token
	Target  string
	Swizzle []int
	Op      lexer.TokenType
	Value   Expr
}

func (s *AssignStmt) Accept(v StmtVisitor) error { return v.VisitAssignStmt(s) }
func (s *AssignStmt) Token() lexer.Token         { return s.Tok }

type FunctionDeclStmt struct {
	Tok    lexer.Token
	Name   string
	Params []string
	Body   []Stmt
}

func (s *FunctionDeclStmt) Accept(v StmtVisitor) error { return v.VisitFunctionDeclStmt(s) }
func (s *FunctionDeclStmt) Token() lexer.Token         { return s.Tok }

// StructDeclStmt is parsed (the grammar accepts `struct Name { fields }`)
// but rejected by the compiler: struct types are not implemented.
type StructDeclStmt struct {
	Tok    lexer.Token
	Name   string
	Fields []string
}

func (s *StructDeclStmt) Accept(v StmtVisitor) error { return v.VisitStructDeclStmt(s) }
func (s *StructDeclStmt) Token() lexer.Token         { return s.Tok }

type ReturnStmt struct {
	Tok   lexer.Token
	Value Expr // nil for a bare `return;`
}

func (s *ReturnStmt) Accept(v StmtVisitor) error { return v.VisitReturnStmt(s) }
func (s *ReturnStmt) Token() lexer.Token         { return s.Tok }

type IfStmt struct {
	Tok  lexer.Token
	Cond Expr
	Then []Stmt
	Else []Stmt // nil when there is no else clause
}

func (s *IfStmt) Accept(v StmtVisitor) error { return v.VisitIfStmt(s) }
func (s *IfStmt) Token() lexer.Token         { return s.Tok }

// WhileStmt is parsed but rejected by the compiler (see non-goals: no
// loop constructs in the compiled core).
type WhileStmt struct {
	Tok  lexer.Token
	Cond Expr
	Body []Stmt
}

func (s *WhileStmt) Accept(v StmtVisitor) error { return v.VisitWhileStmt(s) }
func (s *WhileStmt) Token() lexer.Token         { return s.Tok }

// ForStmt is parsed but rejected by the compiler, same as WhileStmt.
type ForStmt struct {
	Tok  lexer.Token
	Init Stmt // may be nil
	Cond Expr // may be nil
	Post Stmt // may be nil
	Body []Stmt
}

func (s *ForStmt) Accept(v StmtVisitor) error { return v.VisitForStmt(s) }
func (s *ForStmt) Token() lexer.Token         { return s.Tok }

// BreakStmt is parsed but rejected by the compiler, same as WhileStmt.
type BreakStmt struct {
	Tok lexer.Token
}

func (s *BreakStmt) Accept(v StmtVisitor) error { return v.VisitBreakStmt(s) }
func (s *BreakStmt) Token() lexer.Token         { return s.Tok }

type ImportStmt struct {
	Tok  lexer.Token
	Path string
}

func (s *ImportStmt) Accept(v StmtVisitor) error { return v.VisitImportStmt(s) }
func (s *ImportStmt) Token() lexer.Token         { return s.Tok }

// EmptyStmt is a bare `;`.
type EmptyStmt struct {
	Tok lexer.Token
}

func (s *EmptyStmt) Accept(v StmtVisitor) error { return v.VisitEmptyStmt(s) }
func (s *EmptyStmt) Token() lexer.Token         { return s.Tok }
