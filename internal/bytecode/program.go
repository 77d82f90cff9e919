package bytecode

// Program is the output of compilation: the top-level body plus the table
// of user-defined functions it (and itself) may call into. UserFunctions
// is shared by reference across every Execution running this Program —
// compiling happens once, executing happens per pixel/tile.
type Program struct {
	Body []NodeOp

	// UserFunctions holds one compiled body per user function, indexed
	// the same way FunctionCall.Index addresses it.
	UserFunctions []*[]NodeOp

	// UserFunctionIndex maps a function name to its slot in UserFunctions.
	UserFunctionIndex map[string]int

	// UserFunctionArity records each function's declared parameter count,
	// used by the compiler to validate call arity without re-walking the
	// AST.
	UserFunctionArity []int

	// UserFunctionLocals records each function's total local-slot count
	// (parameters plus every hoisted `let` declared in its body), used by
	// FunctionCall at every call site to size the callee's locals frame.
	UserFunctionLocals []int

	// Globals is the total number of global variable slots across the
	// entry module and everything it transitively imports.
	Globals int

	// ShadeIndex is the user-function slot implementing the shade(uv)
	// entry point, or nil if the program defines none.
	ShadeIndex *int
}

// FunctionBody returns the compiled body for a user function index.
func (p *Program) FunctionBody(index int) []NodeOp {
	return *p.UserFunctions[index]
}

// AddFunction reserves a function slot (so recursive calls can reference
// it by index before the body finishes compiling) and returns the index.
func (p *Program) AddFunction(name string, arity int) int {
	index := len(p.UserFunctions)
	body := make([]NodeOp, 0)
	p.UserFunctions = append(p.UserFunctions, &body)
	p.UserFunctionArity = append(p.UserFunctionArity, arity)
	p.UserFunctionLocals = append(p.UserFunctionLocals, arity)
	if p.UserFunctionIndex == nil {
		p.UserFunctionIndex = make(map[string]int)
	}
	p.UserFunctionIndex[name] = index
	return index
}

// SetFunctionBody fills in a previously reserved function slot.
func (p *Program) SetFunctionBody(index int, body []NodeOp) {
	*p.UserFunctions[index] = body
}

// SetFunctionLocals records the total local-slot count for a previously
// reserved function slot, computed once params and hoisted lets are known.
func (p *Program) SetFunctionLocals(index, total int) {
	p.UserFunctionLocals[index] = total
}
