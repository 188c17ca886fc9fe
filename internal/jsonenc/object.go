package jsonenc

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object whose keys keep their insertion order. Serialized
// records must reproduce the order fields were attached in, which a plain
// map cannot guarantee. The zero value is not usable; call [NewObject].
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, Value]()}
}

// Set stores value under key, bridging Go values through [Of]. Setting an
// existing key updates its value in place without moving it. Returns o for
// chaining.
func (o *Object) Set(key string, value any) *Object {
	o.m.Set(key, Of(value))
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	return o.m.Get(key)
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	_, present := o.m.Delete(key)
	return present
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return o.m.Len()
}

// Keys iterates over keys in insertion order.
func (o *Object) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for p := o.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key) {
				return
			}
		}
	}
}

// Pairs iterates over entries in insertion order.
func (o *Object) Pairs() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for p := o.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// AppendJSON appends the object's JSON text to dst and returns the extended
// slice. No whitespace is inserted; an empty object emits {}.
func (o *Object) AppendJSON(dst []byte) []byte {
	dst = append(dst, '{')
	first := true
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if !first {
			dst = append(dst, ',')
		}
		first = false
		dst = appendQuoted(dst, p.Key)
		dst = append(dst, ':')
		dst = p.Value.AppendJSON(dst)
	}
	return append(dst, '}')
}

// JSON returns the object's JSON text.
func (o *Object) JSON() string {
	return string(o.AppendJSON(nil))
}

// String returns the JSON text, for logging and %v formatting.
func (o *Object) String() string {
	return o.JSON()
}
