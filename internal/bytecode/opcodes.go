// Package bytecode defines the flat opcode set the compiler emits and the
// interpreter executes: a tagged-variant NodeOp sequence with a
// self-contained If (its branches are nested sub-programs, not jump
// targets), plus the Program container that holds a compiled module.
package bytecode

type OpCode int

const (
	OpLoadGlobal OpCode = iota
	OpStoreGlobal
	OpLoadLocal
	OpStoreLocal
	OpSwap
	OpGetComponents
	OpSetComponents
	OpPush
	OpClear
	OpFunctionCall
	OpReturn
	OpPack2
	OpPack3
	OpDup
	OpIf

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLength
	OpAbs
	OpSin
	OpCos
	OpNormalize
	OpTan
	OpAtan
	OpAtan2
	OpDot
	OpCross
	OpFloor
	OpCeil
	OpFract
	OpMod
	OpRadians
	OpDegrees
	OpMin
	OpMax
	OpMix
	OpSmoothstep
	OpStep
	OpClamp
	OpSqrt
	OpLog
	OpPow

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpAnd
	OpOr
	OpNot
	OpNeg

	OpPrint

	OpUV
	OpInput
	OpNormal
	OpHitpoint
	OpTime
	OpSample
)

var opcodeNames = map[OpCode]string{
	OpLoadGlobal:    "LoadGlobal",
	OpStoreGlobal:   "StoreGlobal",
	OpLoadLocal:     "LoadLocal",
	OpStoreLocal:    "StoreLocal",
	OpSwap:          "Swap",
	OpGetComponents: "GetComponents",
	OpSetComponents: "SetComponents",
	OpPush:          "Push",
	OpClear:         "Clear",
	OpFunctionCall:  "FunctionCall",
	OpReturn:        "Return",
	OpPack2:         "Pack2",
	OpPack3:         "Pack3",
	OpDup:           "Dup",
	OpIf:            "If",
	OpAdd:           "Add",
	OpSub:           "Sub",
	OpMul:           "Mul",
	OpDiv:           "Div",
	OpLength:        "Length",
	OpAbs:           "Abs",
	OpSin:           "Sin",
	OpCos:           "Cos",
	OpNormalize:     "Normalize",
	OpTan:           "Tan",
	OpAtan:          "Atan",
	OpAtan2:         "Atan2",
	OpDot:           "Dot",
	OpCross:         "Cross",
	OpFloor:         "Floor",
	OpCeil:          "Ceil",
	OpFract:         "Fract",
	OpMod:           "Mod",
	OpRadians:       "Radians",
	OpDegrees:       "Degrees",
	OpMin:           "Min",
	OpMax:           "Max",
	OpMix:           "Mix",
	OpSmoothstep:    "Smoothstep",
	OpStep:          "Step",
	OpClamp:         "Clamp",
	OpSqrt:          "Sqrt",
	OpLog:           "Log",
	OpPow:           "Pow",
	OpEq:            "Eq",
	OpNe:            "Ne",
	OpLt:            "Lt",
	OpLe:            "Le",
	OpGt:            "Gt",
	OpGe:            "Ge",
	OpAnd:           "And",
	OpOr:            "Or",
	OpNot:           "Not",
	OpNeg:           "Neg",
	OpPrint:         "Print",
	OpUV:            "UV",
	OpInput:         "Input",
	OpNormal:        "Normal",
	OpHitpoint:      "Hitpoint",
	OpTime:          "Time",
	OpSample:        "Sample",
}

func (c OpCode) String() string {
	if n, ok := opcodeNames[c]; ok {
		return n
	}
	return "Unknown"
}

// unaryMathOps lists the single-operand opcodes evaluated by ApplyUnary;
// the interpreter and the optimizer's constant-folding pass both consult
// it, so neither needs a second table.
var unaryMathOps = map[OpCode]bool{
	OpAbs: true, OpSin: true, OpCos: true, OpTan: true, OpAtan: true,
	OpFloor: true, OpCeil: true, OpFract: true, OpRadians: true,
	OpDegrees: true, OpSqrt: true, OpLog: true, OpNeg: true,
	OpNot: true, OpLength: true, OpNormalize: true,
}

func IsUnaryMath(c OpCode) bool { return unaryMathOps[c] }

var binaryMathOps = map[OpCode]bool{
	OpAdd: true, OpSub: true, OpMul: true, OpDiv: true, OpMod: true,
	OpAtan2: true, OpDot: true, OpCross: true, OpMin: true, OpMax: true,
	OpPow: true, OpStep: true, OpEq: true, OpNe: true, OpLt: true, OpLe: true,
	OpGt: true, OpGe: true, OpAnd: true, OpOr: true,
}

func IsBinaryMath(c OpCode) bool { return binaryMathOps[c] }
