// Package jsonenc builds and serializes insertion-ordered JSON objects for
// diagnostic records.
//
// # Values
//
// [Value] is a tagged variant over the JSON shapes a record may carry: null,
// booleans, integers, floating-point numbers, strings, 128-bit identifiers,
// sequences, and nested [Object] values. Encoding dispatches on the tag, never
// on runtime reflection. [Of] bridges arbitrary Go values into the variant;
// anything it does not recognize degrades to null rather than failing, so a
// record carrying an exotic field is still persisted with the rest of its
// data intact.
//
// Objects nest to any depth, but an object reachable from itself is
// undefined behavior: there is no cycle detection, matching encoding/json.
//
// # Escaping
//
// Strings are escaped with a fixed, narrow profile: backslash, double quote,
// backspace, tab, line feed, form feed and carriage return. Every other byte
// is copied verbatim, including control characters and non-ASCII sequences.
// The profile is part of the on-disk record format and must not grow.
//
// # Incremental encoding
//
// [Encoder] serializes an [Object] cooperatively. [Encoder.Step] emits
// entries, recursing into nested objects, until the shared output buffer
// crosses a byte threshold, then returns control to the caller. Each
// resumption advances the threshold by the configured chunk size, so a
// document N chunks long suspends roughly N times. The output is
// byte-identical to [Object.JSON] no matter the chunk size.
//
// Nothing in this package locks: objects and encoders belong to a single
// goroutine at a time.
package jsonenc
