package transpose

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/reoring/transpose/result"
)

// Outcome is the non-throwing result of TryTranspose. Value is only set when
// Result is valid.
type Outcome[T any] struct {
	Value  T
	Result result.Result
}

// Valid reports whether the input had no data errors.
func (o Outcome[T]) Valid() bool { return o.Result.Valid() }

// Transpose validates src against T and returns the hydrated value. Data
// errors are returned as a *ValidationError carrying the full result.
func Transpose[T any](ctx context.Context, tp *Transposer, src Source) (T, error) {
	out, err := TryTranspose[T](ctx, tp, src)
	if err != nil {
		var zero T
		return zero, err
	}
	if !out.Valid() {
		var zero T
		return zero, &ValidationError{Result: out.Result}
	}
	return out.Value, nil
}

// TryTranspose validates src against T. Data errors are reported in the
// Outcome; the error return is reserved for fatal conditions such as
// malformed input, definition defects and recursion beyond the limit.
func TryTranspose[T any](ctx context.Context, tp *Transposer, src Source) (Outcome[T], error) {
	var out Outcome[T]
	rt := reflect.TypeOf((*T)(nil)).Elem()
	st := rt
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	c, err := tp.Derive(st)
	if err != nil {
		return out, err
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	raw, err := src.Load(ctx, tp.loadOptions())
	if err != nil {
		return out, err
	}
	r, err := tp.Validate(c, raw)
	if err != nil {
		return out, err
	}
	out.Result = r
	if !r.Valid() {
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	d := result.NewDraft()
	if err := r.Run(d); err != nil {
		return out, err
	}
	v, err := tp.hydrator.Hydrate(st, d)
	if err != nil {
		return out, err
	}
	val, err := convert[T](v, rt)
	if err != nil {
		return out, err
	}
	out.Value = val
	tp.log.Debug("input transposed", zap.Stringer("type", rt))
	return out, nil
}

// convert adapts the hydrated struct value to T, which may be a pointer type.
func convert[T any](v any, rt reflect.Type) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	rv := reflect.ValueOf(v)
	for t := rt; rv.IsValid() && t.Kind() == reflect.Pointer; t = t.Elem() {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}
	if rv.IsValid() {
		if t, ok := rv.Interface().(T); ok {
			return t, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("transpose: hydrator returned %T for %v", v, rt)
}
