package constraint

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/reoring/transpose/i18n"
	"github.com/reoring/transpose/internal/value"
	"github.com/reoring/transpose/location"
)

type compareOp uint8

const (
	opGT compareOp = iota
	opGTE
	opLT
	opLTE
	opNE
)

var compareOps = map[compareOp]struct {
	name string
	code string
	ok   func(c int) bool
}{
	opGT:  {"gt", i18n.CodeGreaterThan, func(c int) bool { return c > 0 }},
	opGTE: {"gte", i18n.CodeGreaterOrEqual, func(c int) bool { return c >= 0 }},
	opLT:  {"lt", i18n.CodeLessThan, func(c int) bool { return c < 0 }},
	opLTE: {"lte", i18n.CodeLessOrEqual, func(c int) bool { return c <= 0 }},
	opNE:  {"ne", i18n.CodeNotEqual, func(c int) bool { return c != 0 }},
}

// compare checks a number against a fixed bound.
type compare struct {
	op    compareOp
	bound any
}

// GreaterThan matches numbers strictly greater than bound.
func GreaterThan(bound any) Constraint { return &compare{op: opGT, bound: value.Canonical(bound)} }

// GreaterOrEqual matches numbers greater than or equal to bound.
func GreaterOrEqual(bound any) Constraint { return &compare{op: opGTE, bound: value.Canonical(bound)} }

// LessThan matches numbers strictly less than bound.
func LessThan(bound any) Constraint { return &compare{op: opLT, bound: value.Canonical(bound)} }

// LessOrEqual matches numbers less than or equal to bound.
func LessOrEqual(bound any) Constraint { return &compare{op: opLTE, bound: value.Canonical(bound)} }

// NotEqual matches numbers different from bound.
func NotEqual(bound any) Constraint { return &compare{op: opNE, bound: value.Canonical(bound)} }

func (c compare) Name() string  { return compareOps[c.op].name }
func (c compare) Accepts() Kind { return KindNumber }

func (c compare) Matches(v any) bool {
	r, ok := value.Compare(v, c.bound)
	return ok && compareOps[c.op].ok(r)
}

func (c compare) Explain(p location.Path, v any) string {
	return i18n.T(compareOps[c.op].code, map[string]string{
		"path":  p.String(),
		"bound": value.Render(c.bound),
		"given": value.Render(v),
	})
}

// numberIn matches members of a fixed list. 1 and 1.0 are different members.
type numberIn struct{ values []any }

// NumberIn matches numbers equal in kind and value to one of values.
func NumberIn(values ...any) Constraint {
	return &numberIn{values: lo.Map(values, func(v any, _ int) any { return value.Canonical(v) })}
}

func (numberIn) Name() string  { return "numberIn" }
func (numberIn) Accepts() Kind { return KindNumber }

func (c numberIn) Matches(v any) bool {
	if _, _, _, ok := value.Number(v); !ok {
		return false
	}
	return lo.ContainsBy(c.values, func(m any) bool { return value.Same(m, v) })
}

func (c numberIn) Explain(p location.Path, v any) string {
	return i18n.T(i18n.CodeInList, map[string]string{
		"path":   p.String(),
		"values": renderList(c.values),
		"given":  value.Render(v),
	})
}

func renderList(vs []any) string {
	return "[" + strings.Join(lo.Map(vs, func(v any, _ int) string { return value.Render(v) }), ", ") + "]"
}

// parseNumber reads a numeric constructor argument.
func parseNumber(s string) (any, error) {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err != nil || strings.ContainsAny(s, "xXnN_") {
		return nil, fmt.Errorf("%w: %q is not a number", ErrBadArguments, s)
	}
	return value.Canonical(json.Number(s)), nil
}

func numberCtor(build func(any) Constraint) Ctor {
	return func(args ...string) (Constraint, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: expected 1 bound, got %d", ErrBadArguments, len(args))
		}
		n, err := parseNumber(args[0])
		if err != nil {
			return nil, err
		}
		return build(n), nil
	}
}

func numberInCtor(args ...string) (Constraint, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: expected at least one value", ErrBadArguments)
	}
	values := make([]any, 0, len(args))
	for _, a := range args {
		n, err := parseNumber(a)
		if err != nil {
			return nil, err
		}
		values = append(values, n)
	}
	return NumberIn(values...), nil
}
