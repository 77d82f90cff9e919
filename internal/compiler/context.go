package compiler

import "rusteria/internal/bytecode"

// Context carries the state that spans a whole compile: the program being
// built, the resolved global-slot table (shared across the entry module and
// everything it imports), and a stack of in-progress code buffers.
//
// The buffer stack exists because a nested construct — an if branch, a
// function body — needs its own isolated []NodeOp to build into before it
// is known where (or whether) that slice ends up in the final program; the
// compiler pushes a target before descending into such a construct and
// pops it back off once the construct is fully walked.
type Context struct {
	Globals map[string]int
	Program *bytecode.Program

	targets [][]bytecode.NodeOp
}

func NewContext() *Context {
	return &Context{
		Globals: make(map[string]int),
		Program: &bytecode.Program{},
	}
}

func (c *Context) PushTarget() {
	c.targets = append(c.targets, nil)
}

func (c *Context) PopTarget() []bytecode.NodeOp {
	n := len(c.targets) - 1
	code := c.targets[n]
	c.targets = c.targets[:n]
	return code
}

func (c *Context) Emit(op bytecode.NodeOp) {
	n := len(c.targets) - 1
	c.targets[n] = append(c.targets[n], op)
}

// Global returns the slot for name, allocating a new one if this is the
// first time it's been declared across the whole compile.
func (c *Context) Global(name string) int {
	if idx, ok := c.Globals[name]; ok {
		return idx
	}
	idx := len(c.Globals)
	c.Globals[name] = idx
	return idx
}
