// Package attribute implements the tagged attribute-value model shared by
// the case-centric and object-centric event log families.
package attribute

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the variant carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindTime
	KindInt
	KindFloat
	KindBool
	KindUUID
	KindList
	KindContainer
)

// Sentinel errors for attribute-value construction and comparison.
var (
	ErrNaNValue     = errors.New("attribute: NaN is not permitted as a key or order")
	ErrKindMismatch = errors.New("attribute: value kind mismatch")
)

// Value is a tagged variant over the attribute-value cases named in the
// data model: string, date, 64-bit signed integer, 64-bit float, boolean,
// UUID, ordered list of attributes, keyed container of attributes, null.
type Value struct {
	kind      Kind
	str       string
	t         time.Time
	i         int64
	f         float64
	b         bool
	u         uuid.UUID
	list      []Value
	container Attributes
}

// Null returns the null variant.
func Null() Value { return Value{kind: KindNull} }

// NewString returns the string variant.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewTime returns the date/time variant. Millisecond precision is
// sufficient per the data model; callers truncating to milliseconds before
// constructing the value avoid spurious inequality from sub-millisecond
// jitter introduced by round-tripping through text formats.
func NewTime(t time.Time) Value { return Value{kind: KindTime, t: t} }

// NewInt returns the 64-bit signed integer variant.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat returns the 64-bit float variant. NaN is rejected: the data
// model disallows NaN as a key or in ordering, and accepting it here would
// let it leak into map keys and sorted output downstream.
func NewFloat(f float64) (Value, error) {
	if math.IsNaN(f) {
		return Value{}, ErrNaNValue
	}

	return Value{kind: KindFloat, f: f}, nil
}

// MustFloat panics on NaN; for call sites constructing literals where NaN
// is structurally impossible.
func MustFloat(f float64) Value {
	v, err := NewFloat(f)
	if err != nil {
		panic(err)
	}

	return v
}

// NewBool returns the boolean variant.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewUUID returns the UUID variant.
func NewUUID(u uuid.UUID) Value { return Value{kind: KindUUID, u: u} }

// NewList returns the ordered-list-of-attributes variant.
func NewList(vals []Value) Value {
	cp := make([]Value, len(vals))
	copy(cp, vals)

	return Value{kind: KindList, list: cp}
}

// NewContainer returns the keyed-container-of-attributes variant.
func NewContainer(attrs Attributes) Value {
	return Value{kind: KindContainer, container: attrs.Clone()}
}

// Kind reports the variant carried by v.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload and whether v is the string variant.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsTime returns the time payload and whether v is the time variant.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == KindTime }

// AsInt returns the int payload and whether v is the int variant.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float payload and whether v is the float variant.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the bool payload and whether v is the bool variant.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsUUID returns the UUID payload and whether v is the UUID variant.
func (v Value) AsUUID() (uuid.UUID, bool) { return v.u, v.kind == KindUUID }

// AsList returns the list payload and whether v is the list variant.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}

	cp := make([]Value, len(v.list))
	copy(cp, v.list)

	return cp, true
}

// AsContainer returns the container payload and whether v is the container
// variant.
func (v Value) AsContainer() (Attributes, bool) {
	if v.kind != KindContainer {
		return nil, false
	}

	return v.container.Clone(), true
}

// StringOrEmpty returns the string payload, or "" for any non-string kind.
// This is the classifier-identity fallback named in the data model: a
// missing or non-string attribute value contributes an empty segment.
func (v Value) StringOrEmpty() string {
	if v.kind == KindString {
		return v.str
	}

	return ""
}

// Equal reports whether v and other carry the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindTime:
		return v.t.Equal(other.t)
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindUUID:
		return v.u == other.u
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}

		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}

		return true
	case KindContainer:
		return v.container.Equal(other.container)
	default:
		return false
	}
}

// String renders a debug-friendly representation. Not used for
// serialization — importers and exporters format values per their own
// wire-format rules.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindUUID:
		return v.u.String()
	case KindList:
		return fmt.Sprintf("list[%d]", len(v.list))
	case KindContainer:
		return fmt.Sprintf("container[%d]", len(v.container))
	default:
		return ""
	}
}
