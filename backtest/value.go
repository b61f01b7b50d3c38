package backtest

import (
	"math"
	"strconv"
)

// ValueKind tags the payload of a Value.
type ValueKind int

// Value kinds. KindNa is the undefined value: it is what division by zero
// and insufficient indicator history produce, and it propagates through
// arithmetic while collapsing to false in boolean positions.
const (
	KindNa ValueKind = iota
	KindNum
	KindBool
	KindStr
)

// Value is the tagged union of the strategy language's value space.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

// Na is the undefined value.
var Na = Value{Kind: KindNa}

// NumVal wraps a float as a Value. Non-finite floats collapse to Na so that
// overflow and 0/0 never leak NaN or Inf into signal logic.
func NumVal(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Na
	}
	return Value{Kind: KindNum, Num: f}
}

// BoolVal wraps a bool as a Value.
func BoolVal(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// StrVal wraps a string as a Value.
func StrVal(s string) Value { return Value{Kind: KindStr, Str: s} }

// IsNa reports whether the value is undefined.
func (v Value) IsNa() bool { return v.Kind == KindNa }

// Truthy reports whether the value holds in a boolean position.
// Na and every non-boolean value are false.
func (v Value) Truthy() bool { return v.Kind == KindBool && v.Bool }

func (v Value) String() string {
	switch v.Kind {
	case KindNum:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindStr:
		return v.Str
	}
	return "na"
}

func numeric(a, b Value) bool { return a.Kind == KindNum && b.Kind == KindNum }

// Add returns a+b, or Na when either operand is not a number.
func (v Value) Add(o Value) Value {
	if !numeric(v, o) {
		return Na
	}
	return NumVal(v.Num + o.Num)
}

// Sub returns a-b, or Na when either operand is not a number.
func (v Value) Sub(o Value) Value {
	if !numeric(v, o) {
		return Na
	}
	return NumVal(v.Num - o.Num)
}

// Mul returns a*b, or Na when either operand is not a number.
func (v Value) Mul(o Value) Value {
	if !numeric(v, o) {
		return Na
	}
	return NumVal(v.Num * o.Num)
}

// Div returns a/b. Division by zero yields Na, never a panic or an Inf.
func (v Value) Div(o Value) Value {
	if !numeric(v, o) || o.Num == 0 {
		return Na
	}
	return NumVal(v.Num / o.Num)
}

// Mod returns the floating point remainder, Na on a zero divisor.
func (v Value) Mod(o Value) Value {
	if !numeric(v, o) || o.Num == 0 {
		return Na
	}
	return NumVal(math.Mod(v.Num, o.Num))
}

// Neg returns -a, or Na for a non-number.
func (v Value) Neg() Value {
	if v.Kind != KindNum {
		return Na
	}
	return NumVal(-v.Num)
}

// Compare applies a relational operator. Any comparison involving Na or
// mismatched kinds is false: an undefined operand can never satisfy a
// condition.
func (v Value) Compare(op string, o Value) Value {
	if v.Kind != o.Kind || v.IsNa() {
		return BoolVal(false)
	}
	switch v.Kind {
	case KindNum:
		return BoolVal(cmpFloat(op, v.Num, o.Num))
	case KindStr:
		return BoolVal(cmpString(op, v.Str, o.Str))
	case KindBool:
		switch op {
		case "==":
			return BoolVal(v.Bool == o.Bool)
		case "!=":
			return BoolVal(v.Bool != o.Bool)
		}
	}
	return BoolVal(false)
}

func cmpFloat(op string, a, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func cmpString(op string, a, b string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	}
	return false
}
