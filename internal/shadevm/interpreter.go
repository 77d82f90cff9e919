// Package shadevm executes a compiled bytecode.Program: a tree-walking
// interpreter over the flat NodeOp sequence, with a self-contained If (its
// branches are nested sub-programs, recursed into directly) and explicit
// locals-stack save/restore around every function call.
package shadevm

import (
	"errors"
	"fmt"

	"rusteria/internal/bytecode"
	"rusteria/internal/vmvalue"
)

// ErrFuelExhausted is returned when a fuel-limited Execute runs out of
// budget mid-program. The host decides what that means (abort the frame,
// substitute a fallback color, surface an error to the author).
var ErrFuelExhausted = errors.New("shadevm: fuel exhausted")

// Sampler answers sample(id, uv) calls against whatever texture backing
// store the host wires in; shadevm itself holds no notion of textures.
type Sampler interface {
	Sample(id, uv vmvalue.Value) vmvalue.Value
}

// Interpreter holds one shader execution's full mutable state: globals
// (its own copy; Fork gives each forked Interpreter a separate one),
// the active locals frame and its saved-frame stack for recursive calls,
// the value stack, and the environment registers the host sets per
// invocation (uv, input, normal, hitpoint, time).
type Interpreter struct {
	Globals []vmvalue.Value

	locals      []vmvalue.Value
	localsStack [][]vmvalue.Value
	stack       []vmvalue.Value
	returnValue *vmvalue.Value

	UV       vmvalue.Value
	Input    vmvalue.Value
	Normal   vmvalue.Value
	Hitpoint vmvalue.Value
	Time     vmvalue.Value

	Sampler Sampler
	Print   func(vmvalue.Value)

	// Fuel, when positive, caps the number of opcodes a single Execute
	// (including everything it recurses into: If branches, function
	// bodies) may dispatch before it aborts with ErrFuelExhausted. Zero
	// or negative means unlimited.
	Fuel int
}

// New creates an interpreter with a freshly zeroed globals frame sized for
// the given program.
func New(program *bytecode.Program) *Interpreter {
	return &Interpreter{Globals: make([]vmvalue.Value, program.Globals)}
}

// Peek returns the value left on top of the stack after a top-level
// Execute, if any (a trailing expression statement like `a + 2;` leaves
// its result sitting there unconsumed). Used by the REPL and `run` CLI
// command to print a script's final value.
func (in *Interpreter) Peek() (vmvalue.Value, bool) {
	if len(in.stack) == 0 {
		return vmvalue.Value{}, false
	}
	return in.stack[len(in.stack)-1], true
}

// Fork clones Globals (by value, so the fork can never mutate the
// original's), carries over Sampler, Print and Fuel, and resets every
// other piece of execution state (stack, locals, env registers). This is
// the hook a parallel-tile or parallel-pixel host uses: compile once,
// fork one Interpreter per worker, run them concurrently with no shared
// mutable state except the read-mostly global snapshot they started from.
func (in *Interpreter) Fork() *Interpreter {
	globals := make([]vmvalue.Value, len(in.Globals))
	copy(globals, in.Globals)
	return &Interpreter{
		Globals: globals,
		Sampler: in.Sampler,
		Print:   in.Print,
		Fuel:    in.Fuel,
	}
}

func (in *Interpreter) push(v vmvalue.Value) { in.stack = append(in.stack, v) }

func (in *Interpreter) pop() vmvalue.Value {
	n := len(in.stack) - 1
	v := in.stack[n]
	in.stack = in.stack[:n]
	return v
}

func (in *Interpreter) peek() vmvalue.Value { return in.stack[len(in.stack)-1] }

// Execute runs code to completion, returning early the moment a Return
// opcode (anywhere in code or anything it recurses into) sets
// in.returnValue.
func (in *Interpreter) Execute(code []bytecode.NodeOp, program *bytecode.Program) error {
	for _, op := range code {
		if in.returnValue != nil {
			return nil
		}
		if in.Fuel > 0 {
			in.Fuel--
			if in.Fuel == 0 {
				return ErrFuelExhausted
			}
		}
		if err := in.step(op, program); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) step(op bytecode.NodeOp, program *bytecode.Program) error {
	switch {
	case op.Code == bytecode.OpPush:
		in.push(op.Value)
	case op.Code == bytecode.OpClear:
		if len(in.stack) > 0 {
			in.pop()
		}
	case op.Code == bytecode.OpDup:
		in.push(in.peek())
	case op.Code == bytecode.OpSwap:
		n := len(in.stack)
		in.stack[n-1], in.stack[n-2] = in.stack[n-2], in.stack[n-1]

	case op.Code == bytecode.OpLoadGlobal:
		in.push(in.Globals[op.Index])
	case op.Code == bytecode.OpStoreGlobal:
		in.Globals[op.Index] = in.pop()
	case op.Code == bytecode.OpLoadLocal:
		in.push(in.locals[op.Index])
	case op.Code == bytecode.OpStoreLocal:
		in.locals[op.Index] = in.pop()

	case op.Code == bytecode.OpGetComponents:
		v := in.pop()
		in.push(vmvalue.GetComponents(v, op.Swizzle))
	case op.Code == bytecode.OpSetComponents:
		value := in.pop()
		target := in.pop()
		in.push(vmvalue.SetComponents(target, value, op.Swizzle))

	case op.Code == bytecode.OpPack2:
		y := in.pop()
		x := in.pop()
		in.push(vmvalue.Pack2(x, y))
	case op.Code == bytecode.OpPack3:
		z := in.pop()
		y := in.pop()
		x := in.pop()
		in.push(vmvalue.Pack3(x, y, z))

	case op.Code == bytecode.OpReturn:
		in.doReturn()
	case op.Code == bytecode.OpFunctionCall:
		return in.call(op, program)
	case op.Code == bytecode.OpIf:
		return in.doIf(op, program)

	case op.Code == bytecode.OpUV:
		in.push(in.UV)
	case op.Code == bytecode.OpInput:
		in.push(in.Input)
	case op.Code == bytecode.OpNormal:
		in.push(in.Normal)
	case op.Code == bytecode.OpHitpoint:
		in.push(in.Hitpoint)
	case op.Code == bytecode.OpTime:
		in.push(in.Time)
	case op.Code == bytecode.OpSample:
		uv := in.pop()
		id := in.pop()
		if in.Sampler != nil {
			in.push(in.Sampler.Sample(id, uv))
		} else {
			in.push(vmvalue.Zero())
		}

	case op.Code == bytecode.OpPrint:
		v := in.pop()
		if in.Print != nil {
			in.Print(v)
		}

	case bytecode.IsUnaryMath(op.Code):
		a := in.pop()
		result, _ := bytecode.ApplyUnary(op.Code, a)
		in.push(result)
	case bytecode.IsBinaryMath(op.Code):
		b := in.pop()
		a := in.pop()
		result, _ := bytecode.ApplyBinary(op.Code, a, b)
		in.push(result)
	case op.Code == bytecode.OpMix, op.Code == bytecode.OpSmoothstep, op.Code == bytecode.OpClamp:
		c := in.pop()
		b := in.pop()
		a := in.pop()
		result, _ := bytecode.ApplyTernary(op.Code, a, b, c)
		in.push(result)

	default:
		return fmt.Errorf("shadevm: unhandled opcode %v", op.Code)
	}
	return nil
}

// doReturn takes whatever the return expression already pushed (the
// compiler pushes zero for a bare `return;`), or zero if the stack is empty.
func (in *Interpreter) doReturn() {
	var v vmvalue.Value
	if len(in.stack) > 0 {
		v = in.pop()
	}
	in.returnValue = &v
}

// doIf evaluates the condition (already compiled to push onto the stack
// ahead of this opcode) and recurses straight into the matching branch's
// nested NodeOp slice — no jump targets anywhere in this design.
func (in *Interpreter) doIf(op bytecode.NodeOp, program *bytecode.Program) error {
	cond := in.pop()
	if cond.Bool() {
		return in.Execute(op.Then, program)
	}
	if op.Else != nil {
		return in.Execute(op.Else, program)
	}
	return nil
}

// call pushes a fresh locals frame sized for the callee, pops its
// arguments off the caller's stack in reverse (so arg 0 ends up in
// locals[0]), runs the callee body, then restores the caller's frame and
// pushes whatever the callee returned.
func (in *Interpreter) call(op bytecode.NodeOp, program *bytecode.Program) error {
	savedLocals := in.locals
	in.localsStack = append(in.localsStack, savedLocals)

	in.locals = make([]vmvalue.Value, op.TotalLocals)
	for i := op.Arity - 1; i >= 0; i-- {
		in.locals[i] = in.pop()
	}

	stackBase := len(in.stack)
	savedReturn := in.returnValue
	in.returnValue = nil

	err := in.Execute(program.FunctionBody(op.Index), program)

	var result vmvalue.Value
	if in.returnValue != nil {
		result = *in.returnValue
	} else if len(in.stack) > stackBase {
		result = in.pop()
	}
	in.stack = in.stack[:stackBase]

	n := len(in.localsStack) - 1
	in.locals = in.localsStack[n]
	in.localsStack = in.localsStack[:n]
	in.returnValue = savedReturn

	if err != nil {
		return err
	}
	in.push(result)
	return nil
}

// RunFunction invokes a top-level user function by index with the given
// arguments and returns its result. Used by the CLI/preview server to run
// shade(uv) once per pixel after the module's top-level Body has already
// populated globals.
func (in *Interpreter) RunFunction(program *bytecode.Program, index int, args []vmvalue.Value) (vmvalue.Value, error) {
	in.locals = make([]vmvalue.Value, program.UserFunctionLocals[index])
	copy(in.locals, args)
	in.returnValue = nil
	stackBase := len(in.stack)

	if err := in.Execute(program.FunctionBody(index), program); err != nil {
		return vmvalue.Zero(), err
	}

	var result vmvalue.Value
	if in.returnValue != nil {
		result = *in.returnValue
	} else if len(in.stack) > stackBase {
		result = in.pop()
	}
	in.stack = in.stack[:stackBase]
	return result, nil
}
