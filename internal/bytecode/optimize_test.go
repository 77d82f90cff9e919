package bytecode

import (
	"testing"

	"rusteria/internal/vmvalue"
)

func TestConstantFoldBinary(t *testing.T) {
	code := []NodeOp{
		Push(vmvalue.Broadcast(2)),
		Push(vmvalue.Broadcast(2)),
		Simple(OpAdd),
	}
	got := Optimize(code)
	if len(got) != 1 || got[0].Code != OpPush {
		t.Fatalf("expected single folded Push, got %+v", got)
	}
	if got[0].Value != vmvalue.Broadcast(4) {
		t.Errorf("got %+v, want 4", got[0].Value)
	}
}

func TestConstantFoldTransitive(t *testing.T) {
	// ((2 + 2) negated) should fold all the way down to a single Push(-4).
	code := []NodeOp{
		Push(vmvalue.Broadcast(2)),
		Push(vmvalue.Broadcast(2)),
		Simple(OpAdd),
		Simple(OpNeg),
	}
	got := Optimize(code)
	if len(got) != 1 || got[0].Value != vmvalue.Broadcast(-4) {
		t.Fatalf("expected folded Push(-4), got %+v", got)
	}
}

func TestConstantFoldDoesNotCrossNonConstant(t *testing.T) {
	code := []NodeOp{
		LoadLocal(0),
		Push(vmvalue.Broadcast(2)),
		Simple(OpAdd),
	}
	got := Optimize(code)
	if len(got) != 3 {
		t.Fatalf("expected no folding across a non-constant load, got %+v", got)
	}
}

func TestDeadStoreBecomesClear(t *testing.T) {
	code := []NodeOp{
		Push(vmvalue.Broadcast(1)),
		StoreLocal(0),
		Push(vmvalue.Broadcast(2)),
		StoreLocal(0),
	}
	got := Optimize(code)
	if got[1].Code != OpClear {
		t.Errorf("expected first store to become Clear, got %+v", got[1])
	}
	if got[3].Code != OpStoreLocal {
		t.Errorf("expected second store to survive, got %+v", got[3])
	}
}

func TestDeadStoreNotElidedAcrossLoad(t *testing.T) {
	code := []NodeOp{
		Push(vmvalue.Broadcast(1)),
		StoreLocal(0),
		LoadLocal(0),
		Push(vmvalue.Broadcast(2)),
		StoreLocal(0),
	}
	got := Optimize(code)
	if got[1].Code != OpStoreLocal {
		t.Errorf("expected first store to survive (read in between), got %+v", got[1])
	}
}

func TestConstantFoldPack2(t *testing.T) {
	code := []NodeOp{
		Push(vmvalue.Broadcast(1)),
		Push(vmvalue.Broadcast(2)),
		Simple(OpPack2),
	}
	got := Optimize(code)
	if len(got) != 1 || got[0].Code != OpPush {
		t.Fatalf("expected single folded Push, got %+v", got)
	}
	want := vmvalue.Pack2(vmvalue.Broadcast(1), vmvalue.Broadcast(2))
	if got[0].Value != want {
		t.Errorf("got %+v, want %+v", got[0].Value, want)
	}
}

func TestConstantFoldPack3(t *testing.T) {
	code := []NodeOp{
		Push(vmvalue.Broadcast(1)),
		Push(vmvalue.Broadcast(2)),
		Push(vmvalue.Broadcast(3)),
		Simple(OpPack3),
	}
	got := Optimize(code)
	if len(got) != 1 || got[0].Code != OpPush {
		t.Fatalf("expected single folded Push, got %+v", got)
	}
	want := vmvalue.Pack3(vmvalue.Broadcast(1), vmvalue.Broadcast(2), vmvalue.Broadcast(3))
	if got[0].Value != want {
		t.Errorf("got %+v, want %+v", got[0].Value, want)
	}
}

func TestOptimizeRecursesIntoIf(t *testing.T) {
	code := []NodeOp{
		If([]NodeOp{
			Push(vmvalue.Broadcast(1)),
			Push(vmvalue.Broadcast(1)),
			Simple(OpAdd),
		}, nil),
	}
	got := Optimize(code)
	then := got[0].Then
	if len(then) != 1 || then[0].Value != vmvalue.Broadcast(2) {
		t.Fatalf("expected then-branch folded, got %+v", then)
	}
}
