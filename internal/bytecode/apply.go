package bytecode

import "rusteria/internal/vmvalue"

// ApplyUnary evaluates a single-operand opcode against a. It is the one
// place that defines unary opcode semantics; both the interpreter and the
// peephole constant folder call it so the two can never disagree about
// what Sin/Abs/Neg/etc. actually compute.
func ApplyUnary(code OpCode, a vmvalue.Value) (vmvalue.Value, bool) {
	switch code {
	case OpAbs:
		return a.Map(absf), true
	case OpSin:
		return a.Map(sinf), true
	case OpCos:
		return a.Map(cosf), true
	case OpTan:
		return a.Map(tanf), true
	case OpAtan:
		return a.Map(atanf), true
	case OpFloor:
		return a.Map(floorf), true
	case OpCeil:
		return a.Map(ceilf), true
	case OpFract:
		return a.Map(fractf), true
	case OpRadians:
		return a.Map(radiansf), true
	case OpDegrees:
		return a.Map(degreesf), true
	case OpSqrt:
		return a.Map(sqrtf), true
	case OpLog:
		return a.Map(logf), true
	case OpNeg:
		return a.Neg(), true
	case OpNot:
		return vmvalue.BoolValue(!a.Bool()), true
	case OpLength:
		return vmvalue.Broadcast(a.Magnitude()), true
	case OpNormalize:
		len := a.Magnitude()
		if len > 0 {
			return a.Div(vmvalue.Broadcast(len)), true
		}
		return a, true
	default:
		return vmvalue.Value{}, false
	}
}

// ApplyBinary evaluates a two-operand opcode against a (pushed first) and
// b (pushed second). See ApplyUnary for why this lives here.
func ApplyBinary(code OpCode, a, b vmvalue.Value) (vmvalue.Value, bool) {
	switch code {
	case OpAdd:
		return a.Add(b), true
	case OpSub:
		return a.Sub(b), true
	case OpMul:
		return a.Mul(b), true
	case OpDiv:
		return a.Div(b), true
	case OpMod:
		return vmvalue.New(modf(a.X, b.X), modf(a.Y, b.Y), modf(a.Z, b.Z)), true
	case OpAtan2:
		return vmvalue.New(atan2f(a.X, b.X), atan2f(a.Y, b.Y), atan2f(a.Z, b.Z)), true
	case OpDot:
		return vmvalue.Broadcast(a.Dot(b)), true
	case OpCross:
		return a.Cross(b), true
	case OpMin:
		return vmvalue.New(minf(a.X, b.X), minf(a.Y, b.Y), minf(a.Z, b.Z)), true
	case OpMax:
		return vmvalue.New(maxf(a.X, b.X), maxf(a.Y, b.Y), maxf(a.Z, b.Z)), true
	case OpPow:
		return vmvalue.New(powf(a.X, b.X), powf(a.Y, b.Y), powf(a.Z, b.Z)), true
	case OpStep:
		return vmvalue.New(stepf(a.X, b.X), stepf(a.Y, b.Y), stepf(a.Z, b.Z)), true
	case OpEq:
		return vmvalue.BoolValue(vmvalue.Equal(a, b)), true
	case OpNe:
		return vmvalue.BoolValue(!vmvalue.Equal(a, b)), true
	case OpLt:
		return vmvalue.BoolValue(a.X < b.X), true
	case OpLe:
		return vmvalue.BoolValue(a.X <= b.X), true
	case OpGt:
		return vmvalue.BoolValue(a.X > b.X), true
	case OpGe:
		return vmvalue.BoolValue(a.X >= b.X), true
	case OpAnd:
		return vmvalue.BoolValue(a.Bool() && b.Bool()), true
	case OpOr:
		return vmvalue.BoolValue(a.Bool() || b.Bool()), true
	default:
		return vmvalue.Value{}, false
	}
}

// ApplyTernary evaluates the three-operand intrinsics (mix, smoothstep,
// clamp), which pop in the order a, b, c and are not foldable by the
// generic Push,Push,<op> peephole pattern (it only looks two operands
// back) but share the same semantics home for the interpreter's sake.
func ApplyTernary(code OpCode, a, b, c vmvalue.Value) (vmvalue.Value, bool) {
	switch code {
	case OpMix:
		return a.Add(b.Sub(a).Mul(c)), true
	case OpSmoothstep:
		t := c.Sub(a).Div(b.Sub(a)).Map(func(x float32) float32 { return clampf(x, 0, 1) })
		three := vmvalue.Broadcast(3)
		two := vmvalue.Broadcast(2)
		return t.Mul(t).Mul(three.Sub(two.Mul(t))), true
	case OpClamp:
		return vmvalue.Clamp(a, b, c), true
	default:
		return vmvalue.Value{}, false
	}
}
