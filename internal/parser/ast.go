package parser

import "rusteria/internal/lexer"

// Expr is any expression node. Accept dispatches to the matching
// ExprVisitor method, the same visitor-over-AST shape the compiler pass
// uses to emit opcodes.
type Expr interface {
	Accept(v ExprVisitor) (interface{}, error)
	Token() lexer.Token
}

type ExprVisitor interface {
	VisitValueExpr(e *ValueExpr) (interface{}, error)
	VisitVariableExpr(e *VariableExpr) (interface{}, error)
	VisitUnaryExpr(e *UnaryExpr) (interface{}, error)
	VisitBinaryExpr(e *BinaryExpr) (interface{}, error)
	VisitComparisonExpr(e *ComparisonExpr) (interface{}, error)
	VisitEqualityExpr(e *EqualityExpr) (interface{}, error)
	VisitLogicalExpr(e *LogicalExpr) (interface{}, error)
	VisitGroupingExpr(e *GroupingExpr) (interface{}, error)
	VisitCallExpr(e *CallExpr) (interface{}, error)
	VisitVecExpr(e *VecExpr) (interface{}, error)
	VisitTernaryExpr(e *TernaryExpr) (interface{}, error)
}

// ValueExpr is a literal: a number or a string. Booleans lower straight to
// 1.0/0.0 at parse time since the value model has no separate bool type.
type ValueExpr struct {
	Tok      lexer.Token
	Number   float32
	IsString bool
	Str      string
	Swizzle  []int
}

func (e *ValueExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitValueExpr(e) }
func (e *ValueExpr) Token() lexer.Token                        { return e.Tok }

// VariableExpr reads a named binding (environment register, local, or
// global — resolved at compile time), optionally swizzled.
type VariableExpr struct {
	Tok     lexer.Token
	Name    string
	Swizzle []int
}

func (e *VariableExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitVariableExpr(e) }
func (e *VariableExpr) Token() lexer.Token                        { return e.Tok }

type UnaryExpr struct {
	Tok   lexer.Token
	Op    lexer.TokenType // TokenMinus or TokenBang
	Right Expr
}

func (e *UnaryExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitUnaryExpr(e) }
func (e *UnaryExpr) Token() lexer.Token                        { return e.Tok }

type BinaryExpr struct {
	Tok   lexer.Token
	Op    lexer.TokenType // + - * / %
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitBinaryExpr(e) }
func (e *BinaryExpr) Token() lexer.Token                        { return e.Tok }

type ComparisonExpr struct {
	Tok   lexer.Token
	Op    lexer.TokenType // < > <= >=
	Left  Expr
	Right Expr
}

func (e *ComparisonExpr) Accept(v ExprVisitor) (interface{}, error) {
	return v.VisitComparisonExpr(e)
}
func (e *ComparisonExpr) Token() lexer.Token { return e.Tok }

type EqualityExpr struct {
	Tok   lexer.Token
	Op    lexer.TokenType // == !=
	Left  Expr
	Right Expr
}

func (e *EqualityExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitEqualityExpr(e) }
func (e *EqualityExpr) Token() lexer.Token                        { return e.Tok }

type LogicalExpr struct {
	Tok   lexer.Token
	Op    lexer.TokenType // && ||
	Left  Expr
	Right Expr
}

func (e *LogicalExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitLogicalExpr(e) }
func (e *LogicalExpr) Token() lexer.Token                        { return e.Tok }

type GroupingExpr struct {
	Tok     lexer.Token
	Inner   Expr
	Swizzle []int
}

func (e *GroupingExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitGroupingExpr(e) }
func (e *GroupingExpr) Token() lexer.Token                        { return e.Tok }

// CallExpr is a call to an intrinsic or a user-declared function.
type CallExpr struct {
	Tok     lexer.Token
	Callee  string
	Args    []Expr
	Swizzle []int
}

func (e *CallExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitCallExpr(e) }
func (e *CallExpr) Token() lexer.Token                        { return e.Tok }

// VecExpr is a vec2(...)/vec3(...) constructor, parsed distinctly from an
// ordinary call so the compiler can lower it straight to Pack2/Pack3.
type VecExpr struct {
	Tok     lexer.Token
	Size    int // 2 or 3
	Args    []Expr
	Swizzle []int
}

func (e *VecExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitVecExpr(e) }
func (e *VecExpr) Token() lexer.Token                        { return e.Tok }

// TernaryExpr is cond ? then : else. Both branches are always parsed; the
// compiler rejects every TernaryExpr at compile time (see the compiler's
// ternary handling) since only a then-only ternary was ever supported
// upstream and that narrower form has no expression in this grammar.
type TernaryExpr struct {
	Tok  lexer.Token
	Cond Expr
	Then Expr
	Else Expr
}

func (e *TernaryExpr) Accept(v ExprVisitor) (interface{}, error) { return v.VisitTernaryExpr(e) }
func (e *TernaryExpr) Token() lexer.Token                        { return e.Tok }
