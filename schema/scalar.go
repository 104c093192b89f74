package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/transpose/internal/value"
	"github.com/reoring/transpose/location"
	"github.com/reoring/transpose/result"
)

// Bool is a boolean property.
type Bool struct{ base }

// NewBool builds a boolean node.
func NewBool(name string, opts ...Option) (*Bool, error) {
	b, err := newBase(KindBool, name, isBool, opts)
	if err != nil {
		return nil, err
	}
	return &Bool{b}, nil
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (n *Bool) Check(p location.Path, v any) result.Result { return check(n, isBool, p, v) }

// Normalize treats true, "true", "1", "1.0", 1 and 1.0 as true and any other
// scalar as false.
func (n *Bool) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	switch t := value.Canonical(v).(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1" || t == "1.0"
	case int64:
		return t == 1
	case float64:
		return t == 1.0
	}
	return n.fallback(false)
}

// Int is an integer property. Only integral numbers are accepted, and only
// those that fit the declared Go type when there is one.
type Int struct {
	base
	min, max int64
}

// NewInt builds an integer node.
func NewInt(name string, opts ...Option) (*Int, error) {
	b, err := newBase(KindInt, name, isInt, opts)
	if err != nil {
		return nil, err
	}
	n := &Int{base: b, min: math.MinInt64, max: math.MaxInt64}
	if t := b.goType(); t != nil {
		n.min, n.max = intRange(t)
	}
	if d, ok := value.Canonical(b.def).(int64); ok && (d < n.min || d > n.max) {
		return nil, &DefinitionError{Field: name, Err: fmt.Errorf("%w: %d does not fit %s", ErrIncompatibleDefault, d, b.goType())}
	}
	return n, nil
}

// intRange is the span of int64 values t can hold. Values above MaxInt64
// never reach an Int node as integers.
func intRange(t reflect.Type) (lo, hi int64) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		shift := 64 - t.Bits()
		return math.MinInt64 >> shift, math.MaxInt64 >> shift
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if t.Bits() >= 64 {
			return 0, math.MaxInt64
		}
		return 0, 1<<t.Bits() - 1
	}
	return math.MinInt64, math.MaxInt64
}

func isInt(v any) bool {
	_, ok := value.Canonical(v).(int64)
	return ok
}

func (n *Int) Check(p location.Path, v any) result.Result {
	if i, ok := value.Canonical(v).(int64); ok && (i < n.min || i > n.max) {
		var r result.Result
		return r.WithErrors(RangeError(p, v, strconv.FormatInt(n.min, 10), strconv.FormatInt(n.max, 10)))
	}
	return check(n, isInt, p, v)
}

// Normalize coerces numbers, booleans and numeric strings to int64.
func (n *Int) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	switch t := value.Canonical(v).(type) {
	case int64:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return n.fallback(int64(0))
		}
		return int64(t)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	}
	return n.fallback(int64(0))
}

// Float is a floating point property. Integers are accepted.
type Float struct {
	base
	limit float64
}

// NewFloat builds a float node.
func NewFloat(name string, opts ...Option) (*Float, error) {
	b, err := newBase(KindFloat, name, isNumber, opts)
	if err != nil {
		return nil, err
	}
	if i, ok := b.def.(int64); ok {
		b.def = float64(i)
	}
	n := &Float{base: b, limit: math.MaxFloat64}
	if t := b.goType(); t != nil && t.Kind() == reflect.Float32 {
		n.limit = math.MaxFloat32
	}
	if d, ok := b.def.(float64); ok && math.Abs(d) > n.limit {
		return nil, &DefinitionError{Field: name, Err: fmt.Errorf("%w: %g does not fit %s", ErrIncompatibleDefault, d, b.goType())}
	}
	return n, nil
}

func isNumber(v any) bool {
	_, _, _, ok := value.Number(v)
	return ok
}

func (n *Float) Check(p location.Path, v any) result.Result {
	if _, f, _, ok := value.Number(v); ok && math.Abs(f) > n.limit {
		var r result.Result
		return r.WithErrors(RangeError(p, v, strconv.FormatFloat(-n.limit, 'g', -1, 64), strconv.FormatFloat(n.limit, 'g', -1, 64)))
	}
	return check(n, isNumber, p, v)
}

// Normalize coerces numbers, booleans and numeric strings to float64.
func (n *Float) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	if _, f, _, ok := value.Number(v); ok {
		return f
	}
	switch t := v.(type) {
	case bool:
		if t {
			return 1.0
		}
		return 0.0
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return n.fallback(0.0)
}

// String is a string property.
type String struct{ base }

// NewString builds a string node.
func NewString(name string, opts ...Option) (*String, error) {
	b, err := newBase(KindString, name, isString, opts)
	if err != nil {
		return nil, err
	}
	return &String{b}, nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func (n *String) Check(p location.Path, v any) result.Result { return check(n, isString, p, v) }

func (n *String) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	if s, ok := v.(string); ok {
		return s
	}
	return n.fallback("")
}
