// Package vmvalue holds the single runtime datum of the shader language: a
// 3-lane float vector, optionally tagged with a string for literal string
// values and equality comparisons.
package vmvalue

import "math"

// Value is a 3-component float vector. Scalars are represented by
// broadcasting the same float into all three lanes; booleans use the x
// lane (nonzero is true). A non-nil Str marks a string literal — strings
// never participate in arithmetic, only in equality comparisons.
type Value struct {
	X, Y, Z float32
	Str     *string
}

func Zero() Value { return Value{} }

func Broadcast(f float32) Value { return Value{X: f, Y: f, Z: f} }

// New builds a 3-lane value directly.
func New(x, y, z float32) Value { return Value{X: x, Y: y, Z: z} }

// NewString wraps a string literal. X/Y/Z stay zero; Str carries the text.
func NewString(s string) Value {
	return Value{Str: &s}
}

func (v Value) IsString() bool { return v.Str != nil }

// Bool reports the boolean interpretation of v: true if the x lane is
// nonzero (or, for a string value, if it is non-empty).
func (v Value) Bool() bool {
	if v.Str != nil {
		return *v.Str != ""
	}
	return v.X != 0
}

func BoolValue(b bool) Value {
	if b {
		return Broadcast(1)
	}
	return Broadcast(0)
}

// Pack2 builds a Value from the x lanes of two scalar-ish values, per
// vec2(a, b) construction: z is zero.
func Pack2(x, y Value) Value {
	return Value{X: x.X, Y: y.X, Z: 0}
}

// Pack3 builds a Value from the x lanes of three scalar-ish values.
func Pack3(x, y, z Value) Value {
	return Value{X: x.X, Y: y.X, Z: z.X}
}

// Lane indices used by swizzle get/set.
const (
	LaneX = 0
	LaneY = 1
	LaneZ = 2
)

func (v Value) Lane(i int) float32 {
	switch i {
	case LaneX:
		return v.X
	case LaneY:
		return v.Y
	case LaneZ:
		return v.Z
	default:
		return 0
	}
}

// GetComponents reads the lanes named by swizzle (each 0/1/2) and returns
// a new Value: one matched lane broadcasts to all three, two lanes fill
// x/y with z=0, three lanes fill x/y/z directly.
func GetComponents(v Value, swizzle []int) Value {
	var result []float32
	for _, idx := range swizzle {
		if idx < 0 || idx > 2 {
			continue
		}
		result = append(result, v.Lane(idx))
	}
	switch len(result) {
	case 1:
		return Broadcast(result[0])
	case 2:
		return New(result[0], result[1], 0)
	case 3:
		return New(result[0], result[1], result[2])
	default:
		return Broadcast(0)
	}
}

// SetComponents writes value's leading lanes into target at the positions
// named by swizzle, returning the updated target. Extra swizzle entries
// beyond value's available lanes are ignored.
func SetComponents(target, value Value, swizzle []int) Value {
	var components []float32
	switch len(swizzle) {
	case 1:
		components = []float32{value.X}
	case 2:
		components = []float32{value.X, value.Y}
	case 3:
		components = []float32{value.X, value.Y, value.Z}
	}
	for i, idx := range swizzle {
		if i >= len(components) {
			break
		}
		switch idx {
		case LaneX:
			target.X = components[i]
		case LaneY:
			target.Y = components[i]
		case LaneZ:
			target.Z = components[i]
		}
	}
	return target
}

func (v Value) Add(o Value) Value { return New(v.X+o.X, v.Y+o.Y, v.Z+o.Z) }
func (v Value) Sub(o Value) Value { return New(v.X-o.X, v.Y-o.Y, v.Z-o.Z) }
func (v Value) Mul(o Value) Value { return New(v.X*o.X, v.Y*o.Y, v.Z*o.Z) }
func (v Value) Div(o Value) Value { return New(v.X/o.X, v.Y/o.Y, v.Z/o.Z) }
func (v Value) Neg() Value        { return New(-v.X, -v.Y, -v.Z) }

func (v Value) Map(f func(float32) float32) Value {
	return New(f(v.X), f(v.Y), f(v.Z))
}

func (v Value) Magnitude() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

func (v Value) Dot(o Value) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Value) Cross(o Value) Value {
	return New(
		v.Y*o.Z-v.Z*o.Y,
		v.Z*o.X-v.X*o.Z,
		v.X*o.Y-v.Y*o.X,
	)
}

// Equal implements the language's `==`: string values compare by text,
// everything else compares by the x lane only (matching the original's
// scalar-comparison convention for all comparison opcodes).
func Equal(a, b Value) bool {
	if a.Str != nil || b.Str != nil {
		if a.Str == nil || b.Str == nil {
			return false
		}
		return *a.Str == *b.Str
	}
	return a.X == b.X
}

func clamp32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp clamps each lane of x independently between the matching lanes of
// lo and hi.
func Clamp(x, lo, hi Value) Value {
	return New(
		clamp32(x.X, lo.X, hi.X),
		clamp32(x.Y, lo.Y, hi.Y),
		clamp32(x.Z, lo.Z, hi.Z),
	)
}
