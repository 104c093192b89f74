// Package transpose validates JSON-shaped input against Go struct types and,
// when the input is valid, builds the typed value.
//
// A Transposer derives one schema per struct type from its declaration:
// field types pick the property variant, struct tags attach wire names,
// defaults and constraints. Input is walked against the schema, every data
// error is collected, and only a fully valid input is hydrated.
//
// Design policy:
//   - Data errors are strings collected into a result.Result; definition
//     defects, recursion beyond the depth limit and malformed input are
//     returned as typed errors.
//   - Schemas and constraints are derived once and shared between calls.
//   - Interface fields are resolved per input fragment through the resolver.
//
// Typical usage:
//
//	tp := transpose.New(transpose.WithNaming(naming.Camel))
//	user, err := transpose.Transpose[User](ctx, tp, transpose.JSONBytes(body))
//
//	out, err := transpose.TryTranspose[User](ctx, tp, transpose.JSONBytes(body))
//	if err == nil && !out.Valid() {
//		for _, msg := range out.Result.Errors() { ... }
//	}
package transpose
