package attribute

import "sort"

// Attribute is a single key/value pair, optionally carrying nested
// own-attributes (produced by XES typed tags that nest child attribute
// elements under a parent).
type Attribute struct {
	Key           string
	Value         Value
	OwnAttributes Attributes
}

// Attributes is a keyed mapping from string to Attribute. Key uniqueness is
// required; insertion order is irrelevant for equality, so the underlying
// representation is a plain map.
type Attributes map[string]Attribute

// NewAttributes returns an empty attribute collection.
func NewAttributes() Attributes { return make(Attributes) }

// Set inserts or overwrites the attribute under its own key.
func (a Attributes) Set(attr Attribute) { a[attr.Key] = attr }

// Get returns the attribute at key and whether it was present.
func (a Attributes) Get(key string) (Attribute, bool) {
	attr, ok := a[key]

	return attr, ok
}

// Value returns the value at key, or the null variant when absent.
func (a Attributes) Value(key string) Value {
	if attr, ok := a[key]; ok {
		return attr.Value
	}

	return Null()
}

// Keys returns the attribute keys in sorted order, for deterministic
// iteration in tests and serializers.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Clone returns a deep-enough copy safe for independent mutation: the map
// itself and each attribute's own-attributes map are copied; scalar Values
// are immutable by construction and shared.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}

	cp := make(Attributes, len(a))
	for k, v := range a {
		v.OwnAttributes = v.OwnAttributes.Clone()
		cp[k] = v
	}

	return cp
}

// Equal reports whether a and other carry the same keys mapped to equal
// attributes (value and own-attributes), independent of map iteration
// order.
func (a Attributes) Equal(other Attributes) bool {
	if len(a) != len(other) {
		return false
	}

	for k, v := range a {
		ov, ok := other[k]
		if !ok {
			return false
		}

		if !v.Value.Equal(ov.Value) || !v.OwnAttributes.Equal(ov.OwnAttributes) {
			return false
		}
	}

	return true
}
