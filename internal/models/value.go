// Package models holds the in-memory tree that every other package operates on.
package models

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant stored in a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the schema name of the kind ("object", "array", ...).
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union over null, bool, number, string, array and object.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps the given items. The slice is not copied.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// FromObject wraps an Object. A nil object becomes an empty one.
func FromObject(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsArray() bool  { return v.kind == KindArray }
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsContainer reports whether v is an Array or an Object.
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

// AsBool returns the boolean payload; false for other kinds.
func (v Value) AsBool() bool { return v.kind == KindBool && v.b }

// AsNumber returns the numeric payload; 0 for other kinds.
func (v Value) AsNumber() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.n
}

// AsString returns the string payload; "" for other kinds.
func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// AsArray returns the backing slice of an Array, nil otherwise.
// Callers must not mutate the result of a Value they do not own.
func (v Value) AsArray() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// AsObject returns the Object payload, nil otherwise.
func (v Value) AsObject() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Len is the element count of an Array or the member count of an Object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// IsWhole reports whether v is a finite number without a fractional part.
func (v Value) IsWhole() bool {
	if v.kind != KindNumber || math.IsInf(v.n, 0) || math.IsNaN(v.n) {
		return false
	}
	return v.n == math.Trunc(v.n)
}

// Clone returns a deep copy that shares no containers with v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.Clone()
		}
		return Value{kind: KindArray, arr: items}
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	default:
		return v
	}
}

// Equal compares two Values deeply. Object member order is significant.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return a.obj.equal(b.obj)
	}
	return false
}

// String renders v for debugging. Use the formatter package for real output.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	default:
		return v.obj.String()
	}
}
