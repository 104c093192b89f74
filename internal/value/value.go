// Package value defines the scalar model shared by constraints, schema nodes and
// the engine. Inputs are canonicalised so that integral numbers are int64,
// other numbers are float64, and containers are []any / map[string]any.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Canonical maps a Go scalar onto the value model. Containers are returned as-is.
func Canonical(v any) any {
	switch t := v.(type) {
	case nil, bool, string, int64, float64:
		return v
	case json.Number:
		return fromNumberLiteral(string(t))
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return fromUint(t)
	case float32:
		return float64(t)
	}
	return v
}

// CanonicalTree canonicalises every scalar reachable from v. Maps with string
// keys and slices are rebuilt; the input is not modified.
func CanonicalTree(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ce, err := CanonicalTree(e)
			if err != nil {
				return nil, err
			}
			out[k] = ce
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is %T, expected string", k, k)
			}
			ce, err := CanonicalTree(e)
			if err != nil {
				return nil, err
			}
			out[ks] = ce
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ce, err := CanonicalTree(e)
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	}
	return Canonical(v), nil
}

func fromNumberLiteral(s string) any {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}

func fromUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

// Number splits a canonical number into its int and float readings.
func Number(v any) (i int64, f float64, isInt bool, ok bool) {
	switch t := Canonical(v).(type) {
	case int64:
		return t, float64(t), true, true
	case float64:
		return int64(t), t, false, true
	}
	return 0, 0, false, false
}

// Compare orders two numbers. It reports false when either side is not numeric.
func Compare(a, b any) (int, bool) {
	ai, af, aInt, ok := Number(a)
	if !ok {
		return 0, false
	}
	bi, bf, bInt, ok := Number(b)
	if !ok {
		return 0, false
	}
	if aInt && bInt {
		switch {
		case ai < bi:
			return -1, true
		case ai > bi:
			return 1, true
		}
		return 0, true
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

// Same reports equality without numeric coercion: 1 and 1.0 differ.
func Same(a, b any) bool {
	a, b = Canonical(a), Canonical(b)
	switch at := a.(type) {
	case int64:
		bt, ok := b.(int64)
		return ok && at == bt
	case float64:
		bt, ok := b.(float64)
		return ok && at == bt
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case nil:
		return b == nil
	}
	return false
}

// TypeName returns the runtime type label used in messages.
func TypeName(v any) string {
	switch Canonical(v).(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case time.Time:
		return "DateTime"
	case uuid.UUID:
		return "UUID"
	}
	return reflect.TypeOf(v).String()
}

// Render prints a value for inclusion in a message.
func Render(v any) string {
	switch t := Canonical(v).(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") && !math.IsInf(t, 0) && !math.IsNaN(t) {
			s += ".0"
		}
		return s
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case fmt.Stringer:
		return strconv.Quote(t.String())
	}
	return TypeName(v)
}
