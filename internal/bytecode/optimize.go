package bytecode

import "rusteria/internal/vmvalue"

// Optimize runs the peephole passes over a compiled body: constant folding
// first (it can expose dead stores by collapsing arithmetic down to a
// single Push), then dead-store elimination. It recurses into nested If
// branches so a nested `if` body is optimized exactly as if it were its
// own top-level body.
func Optimize(code []NodeOp) []NodeOp {
	code = constantFold(code)
	code = eliminateDeadStores(code)
	for i := range code {
		if code[i].Code == OpIf {
			code[i].Then = Optimize(code[i].Then)
			if code[i].Else != nil {
				code[i].Else = Optimize(code[i].Else)
			}
		}
	}
	return code
}

// constantFold collapses Push,Push,<binop>, Push,<unop>, Push,Push,Pack2
// and Push,Push,Push,Pack3 chains into a single Push, transitively:
// folding one op can expose another foldable op immediately above it,
// since the result stays at the top of the same output slice being built.
func constantFold(code []NodeOp) []NodeOp {
	out := make([]NodeOp, 0, len(code))
	for _, op := range code {
		switch {
		case IsUnaryMath(op.Code) && len(out) >= 1 && out[len(out)-1].Code == OpPush:
			a := out[len(out)-1].Value
			if folded, ok := ApplyUnary(op.Code, a); ok {
				out[len(out)-1] = Push(folded)
				continue
			}
			out = append(out, op)
		case IsBinaryMath(op.Code) && len(out) >= 2 &&
			out[len(out)-1].Code == OpPush && out[len(out)-2].Code == OpPush:
			a := out[len(out)-2].Value
			b := out[len(out)-1].Value
			if folded, ok := ApplyBinary(op.Code, a, b); ok {
				out = out[:len(out)-1]
				out[len(out)-1] = Push(folded)
				continue
			}
			out = append(out, op)
		case op.Code == OpPack2 && len(out) >= 2 &&
			out[len(out)-1].Code == OpPush && out[len(out)-2].Code == OpPush:
			x := out[len(out)-2].Value
			y := out[len(out)-1].Value
			out = out[:len(out)-1]
			out[len(out)-1] = Push(vmvalue.Pack2(x, y))
		case op.Code == OpPack3 && len(out) >= 3 &&
			out[len(out)-1].Code == OpPush && out[len(out)-2].Code == OpPush && out[len(out)-3].Code == OpPush:
			x := out[len(out)-3].Value
			y := out[len(out)-2].Value
			z := out[len(out)-1].Value
			out = out[:len(out)-2]
			out[len(out)-1] = Push(vmvalue.Pack3(x, y, z))
		default:
			out = append(out, op)
		}
	}
	return out
}

// eliminateDeadStores turns a StoreLocal that is provably overwritten
// before its slot is next read into a Clear: if a later StoreLocal to the
// same slot is reached with no intervening LoadLocal of that slot and no
// intervening FunctionCall or If (either of which could observe the value
// through a path we are not tracking), the earlier store never had an
// effect on anything that reads the slot — but the value it would have
// stored must still be popped off the stack, so the op becomes a Clear
// rather than disappearing outright.
func eliminateDeadStores(code []NodeOp) []NodeOp {
	dead := make(map[int]bool)
	lastStore := make(map[int]int) // slot -> index of most recent un-superseded store

	for i, op := range code {
		switch op.Code {
		case OpLoadLocal:
			delete(lastStore, op.Index)
		case OpStoreLocal:
			if prev, ok := lastStore[op.Index]; ok {
				dead[prev] = true
			}
			lastStore[op.Index] = i
		case OpFunctionCall, OpIf:
			lastStore = make(map[int]int)
		}
	}

	if len(dead) == 0 {
		return code
	}
	out := make([]NodeOp, len(code))
	copy(out, code)
	for i := range out {
		if dead[i] {
			out[i] = Simple(OpClear)
		}
	}
	return out
}
