// Package intrinsics holds the fixed table of built-in function names the
// compiler recognizes and lowers directly to a single opcode, without ever
// treating them as user functions.
package intrinsics

import "rusteria/internal/bytecode"

// Intrinsic describes one built-in: its fixed arity and the opcode the
// compiler emits in place of a FunctionCall.
type Intrinsic struct {
	Name   string
	Arity  int
	Opcode bytecode.OpCode
}

// Table is the name -> Intrinsic registry, matching the reference
// compiler's built-in function map one entry at a time. step and
// smoothstep are given distinct opcodes here (Step, Smoothstep) rather
// than both compiling to Smoothstep, fixing the upstream aliasing bug;
// spec.md's interpreter design requires them to behave differently.
var Table = map[string]Intrinsic{
	"length":     {"length", 1, bytecode.OpLength},
	"abs":        {"abs", 1, bytecode.OpAbs},
	"sin":        {"sin", 1, bytecode.OpSin},
	"cos":        {"cos", 1, bytecode.OpCos},
	"normalize":  {"normalize", 1, bytecode.OpNormalize},
	"tan":        {"tan", 1, bytecode.OpTan},
	"atan":       {"atan", 1, bytecode.OpAtan},
	"atan2":      {"atan2", 2, bytecode.OpAtan2},
	"dot":        {"dot", 2, bytecode.OpDot},
	"cross":      {"cross", 2, bytecode.OpCross},
	"floor":      {"floor", 1, bytecode.OpFloor},
	"ceil":       {"ceil", 1, bytecode.OpCeil},
	"fract":      {"fract", 1, bytecode.OpFract},
	"radians":    {"radians", 1, bytecode.OpRadians},
	"degrees":    {"degrees", 1, bytecode.OpDegrees},
	"min":        {"min", 2, bytecode.OpMin},
	"max":        {"max", 2, bytecode.OpMax},
	"mix":        {"mix", 3, bytecode.OpMix},
	"smoothstep": {"smoothstep", 3, bytecode.OpSmoothstep},
	"step":       {"step", 2, bytecode.OpStep},
	"mod":        {"mod", 2, bytecode.OpMod},
	"clamp":      {"clamp", 3, bytecode.OpClamp},
	"sqrt":       {"sqrt", 1, bytecode.OpSqrt},
	"log":        {"log", 1, bytecode.OpLog},
	"pow":        {"pow", 2, bytecode.OpPow},
	"print":      {"print", 1, bytecode.OpPrint},
	"sample":     {"sample", 2, bytecode.OpSample},
}

// Lookup reports whether name is a registered intrinsic.
func Lookup(name string) (Intrinsic, bool) {
	i, ok := Table[name]
	return i, ok
}
