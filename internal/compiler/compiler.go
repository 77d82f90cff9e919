// Package compiler walks the parsed statement/expression tree and emits a
// bytecode.Program: a flat NodeOp sequence per function plus a top-level
// body that runs once to populate globals across the entry module and
// everything it imports.
package compiler

import (
	"fmt"
	"strings"

	"rusteria/internal/bytecode"
	rerrors "rusteria/internal/errors"
	"rusteria/internal/intrinsics"
	"rusteria/internal/lexer"
	"rusteria/internal/module"
	"rusteria/internal/parser"
	"rusteria/internal/vmvalue"
)

// envRegisters are the read-only host-provided values every shade function
// body can reference by name; they compile straight to a dedicated opcode
// rather than a global or local slot.
var envRegisters = map[string]bytecode.OpCode{
	"uv":       bytecode.OpUV,
	"normal":   bytecode.OpNormal,
	"input":    bytecode.OpInput,
	"hitpoint": bytecode.OpHitpoint,
	"time":     bytecode.OpTime,
}

var binaryOpcodes = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenPlus:    bytecode.OpAdd,
	lexer.TokenMinus:   bytecode.OpSub,
	lexer.TokenStar:    bytecode.OpMul,
	lexer.TokenSlash:   bytecode.OpDiv,
	lexer.TokenPercent: bytecode.OpMod,
}

var comparisonOpcodes = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenLT: bytecode.OpLt,
	lexer.TokenGT: bytecode.OpGt,
	lexer.TokenLE: bytecode.OpLe,
	lexer.TokenGE: bytecode.OpGe,
}

var equalityOpcodes = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenEqEq:  bytecode.OpEq,
	lexer.TokenNotEq: bytecode.OpNe,
}

var logicalOpcodes = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenAndAnd: bytecode.OpAnd,
	lexer.TokenOrOr:   bytecode.OpOr,
}

var compoundOpcodes = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenPlusEq:  bytecode.OpAdd,
	lexer.TokenMinusEq: bytecode.OpSub,
	lexer.TokenStarEq:  bytecode.OpMul,
	lexer.TokenSlashEq: bytecode.OpDiv,
}

// Compiler emits opcodes for a single function (or the module's top-level
// init sequence) into the active target on ctx. locals is nil while
// compiling module scope, where every VarDeclStmt resolves to a global.
type Compiler struct {
	ctx    *Context
	locals map[string]int
	source []string
}

func newCompiler(ctx *Context, source string) *Compiler {
	return &Compiler{ctx: ctx, source: strings.Split(source, "\n")}
}

type moduleUnit struct {
	file   string
	source string
	stmts  []parser.Stmt
}

// CompileProgram compiles an entry module and everything it transitively
// imports into a single Program. Globals are resolved across every unit
// before any opcode is emitted, so a module can read a global declared by
// one of its imports regardless of load order.
func CompileProgram(entrySource, entryFile string, loader module.Loader) (*bytecode.Program, error) {
	entryStmts, err := parseSource(entrySource, entryFile)
	if err != nil {
		return nil, err
	}

	units, err := loadImports(entryStmts, entryFile, entrySource, loader)
	if err != nil {
		return nil, err
	}
	units = append(units, moduleUnit{file: entryFile, source: entrySource, stmts: entryStmts})

	ctx := NewContext()

	for _, u := range units {
		for _, s := range u.stmts {
			switch st := s.(type) {
			case *parser.VarDeclStmt:
				ctx.Global(st.Name)
			case *parser.FunctionDeclStmt:
				if _, exists := ctx.Program.UserFunctionIndex[st.Name]; exists {
					return nil, newCompileError(st.Tok, u.source, fmt.Sprintf("function %q already declared", st.Name))
				}
				idx := ctx.Program.AddFunction(st.Name, len(st.Params))
				_, localIndex := collectLocals(st.Params, st.Body)
				ctx.Program.SetFunctionLocals(idx, len(localIndex))
			}
		}
	}

	for _, u := range units {
		c := newCompiler(ctx, u.source)
		ctx.PushTarget()
		for _, s := range u.stmts {
			switch st := s.(type) {
			case *parser.FunctionDeclStmt:
				if err := c.compileFunctionDecl(st); err != nil {
					return nil, err
				}
			case *parser.ImportStmt:
				// already resolved above; nothing to emit
			default:
				if err := s.Accept(c); err != nil {
					return nil, err
				}
			}
		}
		ctx.Program.Body = append(ctx.Program.Body, ctx.PopTarget()...)
	}

	ctx.Program.Globals = len(ctx.Globals)
	if idx, ok := ctx.Program.UserFunctionIndex["shade"]; ok {
		shadeIdx := idx
		ctx.Program.ShadeIndex = &shadeIdx
	}

	ctx.Program.Body = bytecode.Optimize(ctx.Program.Body)
	for _, body := range ctx.Program.UserFunctions {
		*body = bytecode.Optimize(*body)
	}

	return ctx.Program, nil
}

func loadImports(entryStmts []parser.Stmt, entryFile, entrySource string, loader module.Loader) ([]moduleUnit, error) {
	var units []moduleUnit
	seen := map[string]bool{}
	queue := collectImportPaths(entryStmts)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if seen[path] {
			continue
		}
		seen[path] = true

		source, path2, err := loader.Load(path)
		if err != nil {
			return nil, rerrors.NewRuntimeError(fmt.Sprintf("import %q: %v", path, err), entryFile, 0, 0)
		}
		stmts, err := parseSource(source, path2)
		if err != nil {
			return nil, err
		}
		units = append(units, moduleUnit{file: path2, source: source, stmts: stmts})
		queue = append(queue, collectImportPaths(stmts)...)
	}
	return units, nil
}

func collectImportPaths(stmts []parser.Stmt) []string {
	var paths []string
	for _, s := range stmts {
		if imp, ok := s.(*parser.ImportStmt); ok {
			paths = append(paths, imp.Path)
		}
	}
	return paths
}

func parseSource(source, file string) ([]parser.Stmt, error) {
	scanner := lexer.NewScanner(source, file)
	tokens, err := scanner.ScanTokens()
	if err != nil {
		return nil, wrapScanError(err, file, source)
	}
	p := parser.NewParser(tokens, source, file)
	return p.Parse()
}

func wrapScanError(err error, file, source string) error {
	se, ok := err.(*lexer.ScanError)
	if !ok {
		return err
	}
	e := rerrors.NewParseError(se.Message, file, se.Line, se.Column)
	lines := strings.Split(source, "\n")
	if se.Line-1 >= 0 && se.Line-1 < len(lines) {
		e.WithSource(lines[se.Line-1])
	}
	return e
}

// collectLocals hoists every variable binding a function body will need a
// slot for: its parameters first, then every `let` name encountered while
// walking the body (including inside if branches), in source order. This
// mirrors the reference compiler's pre-pass over declared locals, done here
// via a direct AST walk since this port has no separate IR stage.
func collectLocals(params []string, body []parser.Stmt) ([]string, map[string]int) {
	index := make(map[string]int)
	var order []string
	add := func(name string) {
		if _, exists := index[name]; !exists {
			index[name] = len(order)
			order = append(order, name)
		}
	}
	for _, p := range params {
		add(p)
	}
	var walk func([]parser.Stmt)
	walk = func(stmts []parser.Stmt) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *parser.VarDeclStmt:
				add(st.Name)
			case *parser.BlockStmt:
				walk(st.Stmts)
			case *parser.IfStmt:
				walk(st.Then)
				walk(st.Else)
			case *parser.WhileStmt:
				walk(st.Body)
			case *parser.ForStmt:
				walk(st.Body)
			}
		}
	}
	walk(body)
	return order, index
}

func (c *Compiler) compileFunctionDecl(fn *parser.FunctionDeclStmt) error {
	_, localIndex := collectLocals(fn.Params, fn.Body)

	c.locals = localIndex
	c.ctx.PushTarget()
	for _, s := range fn.Body {
		if err := s.Accept(c); err != nil {
			c.locals = nil
			c.ctx.PopTarget()
			return err
		}
	}
	body := c.ctx.PopTarget()
	c.locals = nil

	idx := c.ctx.Program.UserFunctionIndex[fn.Name]
	c.ctx.Program.SetFunctionBody(idx, body)
	return nil
}

func (c *Compiler) emitSwizzleGet(swizzle []int) {
	if len(swizzle) > 0 {
		c.ctx.Emit(bytecode.GetComponents(swizzle))
	}
}

func (c *Compiler) errorAt(tok lexer.Token, msg string) error {
	e := rerrors.NewRuntimeError(msg, tok.File, tok.Line, tok.Column)
	if tok.Line-1 >= 0 && tok.Line-1 < len(c.source) {
		e.WithSource(c.source[tok.Line-1])
	}
	return e
}

func newCompileError(tok lexer.Token, source, msg string) error {
	e := rerrors.NewRuntimeError(msg, tok.File, tok.Line, tok.Column)
	lines := strings.Split(source, "\n")
	if tok.Line-1 >= 0 && tok.Line-1 < len(lines) {
		e.WithSource(lines[tok.Line-1])
	}
	return e
}

// ---- expressions ----

func (c *Compiler) VisitValueExpr(e *parser.ValueExpr) (interface{}, error) {
	if e.IsString {
		c.ctx.Emit(bytecode.Push(vmvalue.NewString(e.Str)))
	} else {
		c.ctx.Emit(bytecode.Push(vmvalue.Broadcast(e.Number)))
	}
	c.emitSwizzleGet(e.Swizzle)
	return nil, nil
}

func (c *Compiler) VisitVariableExpr(e *parser.VariableExpr) (interface{}, error) {
	if op, ok := envRegisters[e.Name]; ok {
		c.ctx.Emit(bytecode.Simple(op))
		c.emitSwizzleGet(e.Swizzle)
		return nil, nil
	}
	if c.locals != nil {
		if idx, ok := c.locals[e.Name]; ok {
			c.ctx.Emit(bytecode.LoadLocal(idx))
			c.emitSwizzleGet(e.Swizzle)
			return nil, nil
		}
	}
	if idx, ok := c.ctx.Globals[e.Name]; ok {
		c.ctx.Emit(bytecode.LoadGlobal(idx))
		c.emitSwizzleGet(e.Swizzle)
		return nil, nil
	}
	return nil, c.errorAt(e.Tok, fmt.Sprintf("undefined variable %q", e.Name))
}

func (c *Compiler) VisitUnaryExpr(e *parser.UnaryExpr) (interface{}, error) {
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	switch e.Op {
	case lexer.TokenMinus:
		c.ctx.Emit(bytecode.Simple(bytecode.OpNeg))
	case lexer.TokenBang:
		c.ctx.Emit(bytecode.Simple(bytecode.OpNot))
	}
	return nil, nil
}

func (c *Compiler) VisitBinaryExpr(e *parser.BinaryExpr) (interface{}, error) {
	if _, err := e.Left.Accept(c); err != nil {
		return nil, err
	}
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	c.ctx.Emit(bytecode.Simple(binaryOpcodes[e.Op]))
	return nil, nil
}

func (c *Compiler) VisitComparisonExpr(e *parser.ComparisonExpr) (interface{}, error) {
	if _, err := e.Left.Accept(c); err != nil {
		return nil, err
	}
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	c.ctx.Emit(bytecode.Simple(comparisonOpcodes[e.Op]))
	return nil, nil
}

func (c *Compiler) VisitEqualityExpr(e *parser.EqualityExpr) (interface{}, error) {
	if _, err := e.Left.Accept(c); err != nil {
		return nil, err
	}
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	c.ctx.Emit(bytecode.Simple(equalityOpcodes[e.Op]))
	return nil, nil
}

// VisitLogicalExpr evaluates both operands unconditionally; the surface
// has no branching inside expressions (If is a statement), so && and ||
// cannot short-circuit.
func (c *Compiler) VisitLogicalExpr(e *parser.LogicalExpr) (interface{}, error) {
	if _, err := e.Left.Accept(c); err != nil {
		return nil, err
	}
	if _, err := e.Right.Accept(c); err != nil {
		return nil, err
	}
	c.ctx.Emit(bytecode.Simple(logicalOpcodes[e.Op]))
	return nil, nil
}

func (c *Compiler) VisitGroupingExpr(e *parser.GroupingExpr) (interface{}, error) {
	if _, err := e.Inner.Accept(c); err != nil {
		return nil, err
	}
	c.emitSwizzleGet(e.Swizzle)
	return nil, nil
}

func (c *Compiler) VisitCallExpr(e *parser.CallExpr) (interface{}, error) {
	if in, ok := intrinsics.Lookup(e.Callee); ok {
		if len(e.Args) != in.Arity {
			return nil, c.errorAt(e.Tok, fmt.Sprintf("%s expects %d arguments, got %d", e.Callee, in.Arity, len(e.Args)))
		}
		for _, a := range e.Args {
			if _, err := a.Accept(c); err != nil {
				return nil, err
			}
		}
		c.ctx.Emit(bytecode.Simple(in.Opcode))
		c.emitSwizzleGet(e.Swizzle)
		return nil, nil
	}

	idx, ok := c.ctx.Program.UserFunctionIndex[e.Callee]
	if !ok {
		return nil, c.errorAt(e.Tok, fmt.Sprintf("unknown function %q", e.Callee))
	}
	arity := c.ctx.Program.UserFunctionArity[idx]
	if len(e.Args) != arity {
		return nil, c.errorAt(e.Tok, fmt.Sprintf("%s expects %d arguments, got %d", e.Callee, arity, len(e.Args)))
	}
	for _, a := range e.Args {
		if _, err := a.Accept(c); err != nil {
			return nil, err
		}
	}
	totalLocals := c.ctx.Program.UserFunctionLocals[idx]
	c.ctx.Emit(bytecode.Call(arity, totalLocals, idx))
	c.emitSwizzleGet(e.Swizzle)
	return nil, nil
}

func (c *Compiler) VisitVecExpr(e *parser.VecExpr) (interface{}, error) {
	for _, a := range e.Args {
		if _, err := a.Accept(c); err != nil {
			return nil, err
		}
	}
	if e.Size == 2 {
		c.ctx.Emit(bytecode.Simple(bytecode.OpPack2))
	} else {
		c.ctx.Emit(bytecode.Simple(bytecode.OpPack3))
	}
	c.emitSwizzleGet(e.Swizzle)
	return nil, nil
}

// VisitTernaryExpr always fails: both branches of `cond ? a : b` would have
// to be evaluated unconditionally to stay within this expression language's
// no-branching-in-expressions rule, which defeats the point of a ternary.
func (c *Compiler) VisitTernaryExpr(e *parser.TernaryExpr) (interface{}, error) {
	return nil, c.errorAt(e.Tok, "ternary expressions are not supported; use an if statement")
}

// ---- statements ----

func (c *Compiler) VisitBlockStmt(s *parser.BlockStmt) error {
	for _, st := range s.Stmts {
		if err := st.Accept(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) VisitExpressionStmt(s *parser.ExpressionStmt) error {
	_, err := s.Expr.Accept(c)
	return err
}

func (c *Compiler) VisitVarDeclStmt(s *parser.VarDeclStmt) error {
	if _, err := s.Init.Accept(c); err != nil {
		return err
	}
	if c.locals != nil {
		if idx, ok := c.locals[s.Name]; ok {
			c.ctx.Emit(bytecode.StoreLocal(idx))
			return nil
		}
	}
	idx := c.ctx.Global(s.Name)
	c.ctx.Emit(bytecode.StoreGlobal(idx))
	return nil
}

// VisitAssignStmt lowers target[.swizzle] op= value following the stack
// discipline the interpreter expects: for a non-swizzled compound op the
// rhs is pushed, the current value loaded, and a Swap puts them in
// (target, rhs) order before the binop so `x -= 1` computes x-1 and not
// 1-x. A swizzled compound op instead loads the target once, Dups it so one
// copy survives for SetComponents, reads the swizzled component, and folds
// the op against the freshly-computed rhs.
func (c *Compiler) VisitAssignStmt(s *parser.AssignStmt) error {
	if _, isEnv := envRegisters[s.Target]; isEnv {
		return c.errorAt(s.Tok, fmt.Sprintf("cannot assign to built-in variable %q", s.Target))
	}

	var slot int
	var load, store func(int) bytecode.NodeOp
	if c.locals != nil {
		if idx, ok := c.locals[s.Target]; ok {
			slot, load, store = idx, bytecode.LoadLocal, bytecode.StoreLocal
		}
	}
	if load == nil {
		idx, ok := c.ctx.Globals[s.Target]
		if !ok {
			return c.errorAt(s.Tok, fmt.Sprintf("undefined variable %q", s.Target))
		}
		slot, load, store = idx, bytecode.LoadGlobal, bytecode.StoreGlobal
	}

	if len(s.Swizzle) == 0 {
		if s.Op == lexer.TokenEqual {
			if _, err := s.Value.Accept(c); err != nil {
				return err
			}
			c.ctx.Emit(store(slot))
			return nil
		}
		if _, err := s.Value.Accept(c); err != nil { // [rhs]
			return err
		}
		c.ctx.Emit(load(slot))                     // [rhs, target]
		c.ctx.Emit(bytecode.Simple(bytecode.OpSwap)) // [target, rhs]
		c.ctx.Emit(bytecode.Simple(compoundOpcodes[s.Op]))
		c.ctx.Emit(store(slot))
		return nil
	}

	if s.Op == lexer.TokenEqual {
		if _, err := s.Value.Accept(c); err != nil { // [rhs]
			return err
		}
		c.ctx.Emit(load(slot))                     // [rhs, target]
		c.ctx.Emit(bytecode.Simple(bytecode.OpSwap)) // [target, rhs]
		c.ctx.Emit(bytecode.SetComponents(s.Swizzle))
		c.ctx.Emit(store(slot))
		return nil
	}
	c.ctx.Emit(load(slot))                       // [t]
	c.ctx.Emit(bytecode.Simple(bytecode.OpDup))   // [t, t]
	c.ctx.Emit(bytecode.GetComponents(s.Swizzle)) // [t, a]
	if _, err := s.Value.Accept(c); err != nil {  // [t, a, rhs]
		return err
	}
	c.ctx.Emit(bytecode.Simple(compoundOpcodes[s.Op])) // [t, (a op rhs)]
	c.ctx.Emit(bytecode.SetComponents(s.Swizzle))       // [t']
	c.ctx.Emit(store(slot))
	return nil
}

// VisitFunctionDeclStmt is reached only for a `fn` appearing somewhere
// other than module top level; top-level declarations are compiled
// directly by CompileProgram via compileFunctionDecl.
func (c *Compiler) VisitFunctionDeclStmt(s *parser.FunctionDeclStmt) error {
	return c.errorAt(s.Tok, "nested function declarations are not supported")
}

func (c *Compiler) VisitStructDeclStmt(s *parser.StructDeclStmt) error {
	return c.errorAt(s.Tok, "struct declarations are not supported")
}

func (c *Compiler) VisitReturnStmt(s *parser.ReturnStmt) error {
	if s.Value != nil {
		if _, err := s.Value.Accept(c); err != nil {
			return err
		}
	} else {
		c.ctx.Emit(bytecode.Push(vmvalue.Zero()))
	}
	c.ctx.Emit(bytecode.Simple(bytecode.OpReturn))
	return nil
}

// VisitIfStmt compiles both branches into their own nested code buffers
// before the condition, matching the order the reference compiler uses:
// by the time the condition expression is compiled (and may itself call a
// function, which needs Program fully populated), both branch bodies
// already exist as complete, independent NodeOp slices to hang off the If.
func (c *Compiler) VisitIfStmt(s *parser.IfStmt) error {
	c.ctx.PushTarget()
	for _, st := range s.Then {
		if err := st.Accept(c); err != nil {
			return err
		}
	}
	thenCode := c.ctx.PopTarget()

	var elseCode []bytecode.NodeOp
	if s.Else != nil {
		c.ctx.PushTarget()
		for _, st := range s.Else {
			if err := st.Accept(c); err != nil {
				return err
			}
		}
		elseCode = c.ctx.PopTarget()
	}

	if _, err := s.Cond.Accept(c); err != nil {
		return err
	}
	c.ctx.Emit(bytecode.If(thenCode, elseCode))
	return nil
}

func (c *Compiler) VisitWhileStmt(s *parser.WhileStmt) error {
	return c.errorAt(s.Tok, "while loops are not supported")
}

func (c *Compiler) VisitForStmt(s *parser.ForStmt) error {
	return c.errorAt(s.Tok, "for loops are not supported")
}

func (c *Compiler) VisitBreakStmt(s *parser.BreakStmt) error {
	return c.errorAt(s.Tok, "break is not supported")
}

// VisitImportStmt is reached only for an import appearing somewhere other
// than module top level; top-level imports are resolved before compilation
// starts and never re-visited here.
func (c *Compiler) VisitImportStmt(s *parser.ImportStmt) error {
	return c.errorAt(s.Tok, "import statements must appear at the top level of a module")
}

func (c *Compiler) VisitEmptyStmt(s *parser.EmptyStmt) error {
	return nil
}
