package vm

import (
	"math"
	"strconv"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNil ValueType = iota
	ValNumber
	ValBool
	ValObj // heap objects (String, Array, Function, ...)
)

// Value is a stack-allocated tagged union. Numbers and booleans are
// stored inline in Data; everything else lives behind the Obj pointer.
type Value struct {
	Type ValueType
	Data uint64
	Obj  Object
}

// Constructors

func NilVal() Value {
	return Value{Type: ValNil}
}

func NumberVal(v float64) Value {
	return Value{Type: ValNumber, Data: math.Float64bits(v)}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func ObjVal(o Object) Value {
	return Value{Type: ValObj, Obj: o}
}

// Accessors

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.Data)
}

func (v Value) AsBool() bool {
	return v.Data == 1
}

func (v Value) IsNil() bool {
	return v.Type == ValNil
}

func (v Value) IsNumber() bool {
	return v.Type == ValNumber
}

// AsString returns the string object held by v, or nil if v is not a string
func (v Value) AsString() *StringObject {
	if v.Type != ValObj {
		return nil
	}
	s, _ := v.Obj.(*StringObject)
	return s
}

// Truthy reports whether v is truthy: nil and false are falsy,
// everything else is truthy.
func (v Value) Truthy() bool {
	switch v.Type {
	case ValNil:
		return false
	case ValBool:
		return v.Data == 1
	default:
		return true
	}
}

// TypeName returns the language-level type name of v
func (v Value) TypeName() string {
	switch v.Type {
	case ValNil:
		return "Nil"
	case ValNumber:
		return "Number"
	case ValBool:
		return "Boolean"
	case ValObj:
		return v.Obj.TypeName()
	default:
		return "Unknown"
	}
}

// Format renders v the way print displays it
func (v Value) Format() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValNumber:
		return formatNumber(v.AsNumber())
	case ValBool:
		if v.Data == 1 {
			return "true"
		}
		return "false"
	case ValObj:
		return v.Obj.Format()
	default:
		return "<?>"
	}
}

// formatNumber renders a number without a trailing ".0" for integral values
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal reports whether two values compare equal under ==
func Equal(a, b Value) bool {
	return valuesEqual(a, b)
}

// valuesEqual implements ==. Numbers, booleans and nil compare by value,
// strings by content, all other objects by identity.
func valuesEqual(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ValNil:
		return true
	case ValNumber:
		return a.AsNumber() == b.AsNumber()
	case ValBool:
		return a.Data == b.Data
	case ValObj:
		if as, bs := a.AsString(), b.AsString(); as != nil && bs != nil {
			return as.Value == bs.Value
		}
		if ar, ok := a.Obj.(*RangeObject); ok {
			if br, ok := b.Obj.(*RangeObject); ok {
				return *ar == *br
			}
		}
		return a.Obj == b.Obj
	default:
		return false
	}
}

// mapKey is the hashable projection of a Value used by Map and Set.
// Only nil, numbers, booleans and strings are hashable.
type mapKey struct {
	Type ValueType
	Data uint64
	Str  string
}

// keyFor projects v to a map key; ok is false for unhashable values.
func keyFor(v Value) (mapKey, bool) {
	switch v.Type {
	case ValNil, ValNumber, ValBool:
		return mapKey{Type: v.Type, Data: v.Data}, true
	case ValObj:
		if s := v.AsString(); s != nil {
			return mapKey{Type: ValObj, Str: s.Value}, true
		}
	}
	return mapKey{}, false
}
