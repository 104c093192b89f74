// Package schema models the properties of a struct type as schema nodes and
// derives them from struct declarations.
package schema

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/reoring/transpose/constraint"
	"github.com/reoring/transpose/i18n"
	"github.com/reoring/transpose/internal/value"
	"github.com/reoring/transpose/location"
	"github.com/reoring/transpose/result"
)

// Kind discriminates node variants.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindMixed
	KindNested
	KindInterface
	KindDateTime
	KindUUID
)

var kindNames = [...]string{
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
	KindMixed:     "mixed",
	KindNested:    "nested",
	KindInterface: "interface",
	KindDateTime:  "DateTime",
	KindUUID:      "UUID",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Node describes one declared property.
type Node interface {
	Kind() Kind
	// Name is the Go field name.
	Name() string
	// WireName is the key expected in input documents.
	WireName() string
	Nullable() bool
	Default() (any, bool)
	// Constraints are the scalar family constraints, in declaration order.
	Constraints() []constraint.Constraint
	// Type is the declared Go type (pointer types included).
	Type() reflect.Type
	// Expected is the type label used in messages.
	Expected() string
	// Check validates a value present in the input.
	Check(p location.Path, v any) result.Result
	// Normalize converts a value into the form handed to hydration.
	Normalize(v any) any
}

// Container is implemented by array and object nodes.
type Container interface {
	Node
	// Item describes the elements, or nil when they are untyped.
	Item() Node
	ElementConstraints() []constraint.Constraint
	KeyConstraints() []constraint.Constraint
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Option configures a node under construction.
type Option func(*base)

// WithWireName sets the input key. It defaults to the node name.
func WithWireName(w string) Option { return func(b *base) { b.wire = w } }

// WithNullable marks the node as accepting null.
func WithNullable(n bool) Option { return func(b *base) { b.nullable = n } }

// WithDefault attaches a default used when the property is absent.
func WithDefault(v any) Option {
	return func(b *base) {
		b.def = value.Canonical(v)
		b.hasDefault = true
	}
}

// WithConstraints appends scalar family constraints.
func WithConstraints(cs ...constraint.Constraint) Option {
	return func(b *base) { b.checks = append(b.checks, cs...) }
}

// WithElementConstraints appends constraints applied to each element or map value.
func WithElementConstraints(cs ...constraint.Constraint) Option {
	return func(b *base) { b.elemChecks = append(b.elemChecks, cs...) }
}

// WithKeyConstraints appends constraints applied to each map key.
func WithKeyConstraints(cs ...constraint.Constraint) Option {
	return func(b *base) { b.keyChecks = append(b.keyChecks, cs...) }
}

// WithGoType records the declared Go type.
func WithGoType(t reflect.Type) Option { return func(b *base) { b.typ = t } }

// base carries the state shared by every variant.
type base struct {
	kind       Kind
	name       string
	wire       string
	nullable   bool
	def        any
	hasDefault bool
	checks     []constraint.Constraint
	elemChecks []constraint.Constraint
	keyChecks  []constraint.Constraint
	typ        reflect.Type
}

func (b *base) Kind() Kind                           { return b.kind }
func (b *base) Name() string                         { return b.name }
func (b *base) WireName() string                     { return b.wire }
func (b *base) Nullable() bool                       { return b.nullable }
func (b *base) Default() (any, bool)                 { return b.def, b.hasDefault }
func (b *base) Constraints() []constraint.Constraint { return b.checks }
func (b *base) Type() reflect.Type                   { return b.typ }
func (b *base) Expected() string                     { return b.kind.String() }

// goType is the declared Go type with pointers removed, or nil.
func (b *base) goType() reflect.Type {
	t := b.typ
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func (b *base) fallback(zero any) any {
	if b.hasDefault {
		return b.def
	}
	return zero
}

// newBase applies opts and validates the name. accepts validates a non-null
// default.
func newBase(kind Kind, name string, accepts func(any) bool, opts []Option) (base, error) {
	b := base{kind: kind, name: name}
	for _, opt := range opts {
		opt(&b)
	}
	if !identifier.MatchString(name) {
		return b, &DefinitionError{Type: b.typ, Field: name, Err: ErrInvalidName}
	}
	if b.wire == "" {
		b.wire = name
	}
	if b.hasDefault {
		switch {
		case b.def == nil && !b.nullable:
			return b, &DefinitionError{Field: name, Err: fmt.Errorf("%w: null default on a non-nullable %s", ErrIncompatibleDefault, kind)}
		case b.def != nil && (accepts == nil || !accepts(b.def)):
			return b, &DefinitionError{Field: name, Err: fmt.Errorf("%w: %s default for %s", ErrIncompatibleDefault, value.TypeName(b.def), kind)}
		}
	}
	return b, nil
}

// forbidChecks rejects scalar family constraints on variants without a scalar
// value to test.
func (b *base) forbidChecks() error {
	if len(b.checks) > 0 {
		return &DefinitionError{Field: b.name, Err: fmt.Errorf("%w: %s", ErrConstraintFamily, b.kind)}
	}
	return nil
}

func expectedLabel(n Node) string {
	if n.Nullable() {
		return n.Expected() + " or null"
	}
	return n.Expected()
}

// NullError renders the message for null given to a non-nullable node.
func NullError(n Node, p location.Path) string {
	return i18n.T(i18n.CodeNullGiven, map[string]string{"path": p.String(), "expected": n.Expected()})
}

// TypeError renders the message for a value of the wrong type.
func TypeError(n Node, p location.Path, v any) string {
	return i18n.T(i18n.CodeInvalidType, map[string]string{
		"path":     p.String(),
		"expected": expectedLabel(n),
		"given":    value.TypeName(v),
	})
}

// RangeError renders the message for a number outside the declared Go type.
func RangeError(p location.Path, v any, lo, hi string) string {
	return i18n.T(i18n.CodeOutOfRange, map[string]string{
		"path":  p.String(),
		"min":   lo,
		"max":   hi,
		"given": value.Render(v),
	})
}

// check applies the shared policy: null handling, type match, then the first
// failing constraint.
func check(n Node, matches func(any) bool, p location.Path, v any) result.Result {
	var r result.Result
	if v == nil {
		if n.Nullable() {
			return r
		}
		return r.WithErrors(NullError(n, p))
	}
	if !matches(v) {
		return r.WithErrors(TypeError(n, p, v))
	}
	if c := constraint.First(n.Constraints(), v); c != nil {
		return r.WithErrors(c.Explain(p, v))
	}
	return r
}
