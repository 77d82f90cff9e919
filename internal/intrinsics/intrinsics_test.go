package intrinsics

import (
	"testing"

	"rusteria/internal/bytecode"
)

func TestStepAndSmoothstepAreDistinct(t *testing.T) {
	step, ok := Lookup("step")
	if !ok {
		t.Fatal("step not registered")
	}
	smooth, ok := Lookup("smoothstep")
	if !ok {
		t.Fatal("smoothstep not registered")
	}
	if step.Opcode == smooth.Opcode {
		t.Errorf("step and smoothstep must not alias to the same opcode, both got %v", step.Opcode)
	}
	if step.Opcode != bytecode.OpStep {
		t.Errorf("step should compile to OpStep, got %v", step.Opcode)
	}
}

func TestArities(t *testing.T) {
	cases := map[string]int{
		"length": 1, "mix": 3, "atan2": 2, "clamp": 3, "sample": 2,
	}
	for name, arity := range cases {
		in, ok := Lookup(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if in.Arity != arity {
			t.Errorf("%s: got arity %d, want %d", name, in.Arity, arity)
		}
	}
}

func TestUnknownNotRegistered(t *testing.T) {
	if _, ok := Lookup("not_a_real_function"); ok {
		t.Error("expected unknown function to be absent")
	}
}
