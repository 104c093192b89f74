package schema

import (
	"reflect"
	"strconv"

	"github.com/reoring/transpose/constraint"
	"github.com/reoring/transpose/i18n"
	"github.com/reoring/transpose/location"
	"github.com/reoring/transpose/result"
)

// Array is a list property. Elements are described by an optional item node.
// Bound to a Go array type, it holds at most that many elements.
type Array struct {
	base
	item Node
	size int
}

// NewArray builds an array node. item may be nil for untyped elements.
func NewArray(name string, item Node, opts ...Option) (*Array, error) {
	b, err := newBase(KindArray, name, isArray, opts)
	if err != nil {
		return nil, err
	}
	if err := b.forbidChecks(); err != nil {
		return nil, err
	}
	n := &Array{base: b, item: item, size: -1}
	if t := b.goType(); t != nil && t.Kind() == reflect.Array {
		n.size = t.Len()
	}
	return n, nil
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func (n *Array) Item() Node                                  { return n.item }
func (n *Array) ElementConstraints() []constraint.Constraint { return n.elemChecks }
func (n *Array) KeyConstraints() []constraint.Constraint     { return nil }

// Check validates the list itself; elements are walked by the engine.
func (n *Array) Check(p location.Path, v any) result.Result {
	if a, ok := v.([]any); ok && n.size >= 0 && len(a) > n.size {
		var r result.Result
		return r.WithErrors(i18n.T(i18n.CodeMaxItems, map[string]string{
			"path":  p.String(),
			"bound": strconv.Itoa(n.size),
			"given": strconv.Itoa(len(a)),
		}))
	}
	return check(n, isArray, p, v)
}

func (n *Array) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	if a, ok := v.([]any); ok {
		return a
	}
	return n.fallback([]any{})
}

// Object is a string-keyed map property.
type Object struct {
	base
	item Node
}

// NewObject builds an object node. item may be nil for untyped values.
func NewObject(name string, item Node, opts ...Option) (*Object, error) {
	b, err := newBase(KindObject, name, isObject, opts)
	if err != nil {
		return nil, err
	}
	if err := b.forbidChecks(); err != nil {
		return nil, err
	}
	return &Object{base: b, item: item}, nil
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func (n *Object) Item() Node                                  { return n.item }
func (n *Object) ElementConstraints() []constraint.Constraint { return n.elemChecks }
func (n *Object) KeyConstraints() []constraint.Constraint     { return n.keyChecks }

// Check validates the map itself; keys and values are walked by the engine.
func (n *Object) Check(p location.Path, v any) result.Result { return check(n, isObject, p, v) }

func (n *Object) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return n.fallback(map[string]any{})
}

// Mixed accepts any value, including null.
type Mixed struct{ base }

// NewMixed builds an untyped node. It is always nullable and carries no constraints.
func NewMixed(name string, opts ...Option) (*Mixed, error) {
	b, err := newBase(KindMixed, name, func(any) bool { return true }, append(append([]Option(nil), opts...), WithNullable(true)))
	if err != nil {
		return nil, err
	}
	if err := b.forbidChecks(); err != nil {
		return nil, err
	}
	return &Mixed{b}, nil
}

func (n *Mixed) Check(location.Path, any) result.Result { return result.Result{} }

func (n *Mixed) Normalize(v any) any { return v }
