package shadevm

import (
	"testing"

	"rusteria/internal/compiler"
	"rusteria/internal/module"
	"rusteria/internal/vmvalue"
)

func compileAndRun(t *testing.T, source string) *Interpreter {
	t.Helper()
	prog, err := compiler.CompileProgram(source, "test.shade", module.NewFileLoader(t.TempDir()))
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	in := New(prog)
	if err := in.Execute(prog.Body, prog); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return in
}

func lastStack(in *Interpreter) vmvalue.Value {
	return in.stack[len(in.stack)-1]
}

func TestExecuteSimpleArithmetic(t *testing.T) {
	in := compileAndRun(t, "let a = 2; a + 2;")
	got := lastStack(in)
	if got.X != 4 {
		t.Errorf("expected 4, got %v", got.X)
	}
}

func TestExecutePrintPopsNotPeeks(t *testing.T) {
	var printed []vmvalue.Value
	prog, err := compiler.CompileProgram("let a = 2; print(a); a + 3;", "test.shade", module.NewFileLoader(t.TempDir()))
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	in := New(prog)
	in.Print = func(v vmvalue.Value) { printed = append(printed, v) }
	if err := in.Execute(prog.Body, prog); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(printed) != 1 || printed[0].X != 2 {
		t.Fatalf("expected print to observe 2, got %+v", printed)
	}
	if len(in.stack) != 1 {
		t.Fatalf("expected exactly one value left on the stack, got %d: %+v", len(in.stack), in.stack)
	}
	if got := lastStack(in); got.X != 5 {
		t.Errorf("expected trailing expression 5, got %v", got.X)
	}
}

func TestExecuteRecursiveFibonacci(t *testing.T) {
	in := compileAndRun(t, `
fn fib(n) {
	if n <= 1 {
		return n;
	} else {
		return fib(n - 1) + fib(n - 2);
	}
}
fib(27);
`)
	got := lastStack(in)
	if got.X != 196418 {
		t.Errorf("expected fib(27) = 196418, got %v", got.X)
	}
}

func TestExecuteStringEquality(t *testing.T) {
	in := compileAndRun(t, `let a = "hi"; let b = "hi"; a == b;`)
	got := lastStack(in)
	if got.X != 1 {
		t.Errorf("expected true (1), got %v", got.X)
	}
}

func TestExecuteSwizzledCompoundAssign(t *testing.T) {
	in := compileAndRun(t, "let p = vec3(1, 2, 3); p.xz += vec2(10, 20); p;")
	got := lastStack(in)
	if got.X != 11 || got.Y != 2 || got.Z != 23 {
		t.Errorf("expected (11,2,23), got (%v,%v,%v)", got.X, got.Y, got.Z)
	}
}

func TestExecuteMix(t *testing.T) {
	in := compileAndRun(t, "mix(0.0, 10.0, 0.5);")
	got := lastStack(in)
	if got.X != 5 {
		t.Errorf("expected 5, got %v", got.X)
	}
}

func TestExecuteGlobalsSharedAcrossFunctions(t *testing.T) {
	in := compileAndRun(t, `
let scale = 2;
fn scaled(x) {
	return x * scale;
}
scaled(21);
`)
	got := lastStack(in)
	if got.X != 42 {
		t.Errorf("expected 42, got %v", got.X)
	}
}

func TestExecuteSubtractAssignNotReversed(t *testing.T) {
	in := compileAndRun(t, "let x = 10; x -= 1; x;")
	got := lastStack(in)
	if got.X != 9 {
		t.Errorf("expected 9 (10 - 1, not 1 - 10), got %v", got.X)
	}
}

func TestExecuteStepPerComponent(t *testing.T) {
	in := compileAndRun(t, "let edge = vec3(0.5, 0.5, 0.5); let x = vec3(0.0, 0.5, 1.0); step(edge, x);")
	got := lastStack(in)
	if got.X != 0 || got.Y != 1 || got.Z != 1 {
		t.Errorf("expected (0,1,1), got (%v,%v,%v)", got.X, got.Y, got.Z)
	}
}

func TestExecuteShadeEntryPoint(t *testing.T) {
	prog, err := compiler.CompileProgram(`
fn shade(uv) {
	return uv * 2;
}
`, "test.shade", module.NewFileLoader(t.TempDir()))
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	in := New(prog)
	if err := in.Execute(prog.Body, prog); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if prog.ShadeIndex == nil {
		t.Fatal("expected shade to be registered as the entry point")
	}
	// `uv` resolves to the environment register, so set it as a host does.
	in.UV = vmvalue.New(1, 2, 3)
	result, err := in.RunFunction(prog, *prog.ShadeIndex, []vmvalue.Value{in.UV})
	if err != nil {
		t.Fatalf("RunFunction: %v", err)
	}
	if result.X != 2 || result.Y != 4 || result.Z != 6 {
		t.Errorf("expected (2,4,6), got (%v,%v,%v)", result.X, result.Y, result.Z)
	}
}

func TestForkClonesGlobalsIndependently(t *testing.T) {
	prog, err := compiler.CompileProgram("let counter = 0;", "test.shade", module.NewFileLoader(t.TempDir()))
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	in := New(prog)
	in.Globals[0] = vmvalue.Broadcast(5)

	fork := in.Fork()
	fork.Globals[0] = vmvalue.Broadcast(99)

	if in.Globals[0].X != 5 {
		t.Errorf("fork mutated the original's globals: got %v", in.Globals[0].X)
	}
}

func TestFuelExhaustion(t *testing.T) {
	prog, err := compiler.CompileProgram(`
fn spin(n) {
	if n < 1 {
		return 0;
	}
	return spin(n - 1);
}
spin(1000);
`, "test.shade", module.NewFileLoader(t.TempDir()))
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	in := New(prog)
	in.Fuel = 5
	err = in.Execute(prog.Body, prog)
	if err != ErrFuelExhausted {
		t.Fatalf("expected ErrFuelExhausted, got %v", err)
	}
}
