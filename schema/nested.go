package schema

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/reoring/transpose/location"
	"github.com/reoring/transpose/result"
)

// Nested is a property holding another struct. Its collection is derived on
// first use so self-referencing types do not expand eagerly.
type Nested struct {
	base
	target reflect.Type
	load   func() (*Collection, error)
}

// NewNested builds a nested node for the struct type target. load is called
// at most once.
func NewNested(name string, target reflect.Type, load func() (*Collection, error), opts ...Option) (*Nested, error) {
	b, err := newBase(KindNested, name, nil, opts)
	if err != nil {
		return nil, err
	}
	if err := b.forbidChecks(); err != nil {
		return nil, err
	}
	if target == nil || target.Kind() != reflect.Struct || load == nil {
		return nil, &DefinitionError{Field: name, Err: fmt.Errorf("%w: nested %v", ErrUnsupportedType, target)}
	}
	return &Nested{base: b, target: target, load: sync.OnceValues(load)}, nil
}

// Target is the struct type the property hydrates into.
func (n *Nested) Target() reflect.Type { return n.target }

// Collection returns the nested type's schema.
func (n *Nested) Collection() (*Collection, error) { return n.load() }

func (n *Nested) Expected() string { return typeLabel(n.target) }

func (n *Nested) Check(p location.Path, v any) result.Result { return check(n, isObject, p, v) }

func (n *Nested) Normalize(v any) any { return v }

// Interface is a property typed as a non-empty Go interface. The concrete
// type is picked per input fragment by a Resolver.
type Interface struct {
	base
	iface    reflect.Type
	resolver *Resolver
	derive   func(reflect.Type) (*Collection, error)
}

// NewInterface builds an interface node resolved through r. derive returns the
// schema of a resolved concrete type.
func NewInterface(name string, iface reflect.Type, r *Resolver, derive func(reflect.Type) (*Collection, error), opts ...Option) (*Interface, error) {
	b, err := newBase(KindInterface, name, nil, opts)
	if err != nil {
		return nil, err
	}
	if err := b.forbidChecks(); err != nil {
		return nil, err
	}
	if iface == nil || iface.Kind() != reflect.Interface || r == nil || derive == nil {
		return nil, &DefinitionError{Field: name, Err: fmt.Errorf("%w: interface %v", ErrUnsupportedType, iface)}
	}
	return &Interface{base: b, iface: iface, resolver: r, derive: derive}, nil
}

// InterfaceType is the declared interface.
func (n *Interface) InterfaceType() reflect.Type { return n.iface }

// Resolve picks the concrete type for fragment and returns its schema.
func (n *Interface) Resolve(fragment map[string]any) (reflect.Type, *Collection, error) {
	t, err := n.resolver.Resolve(n.iface, fragment)
	if err != nil {
		return nil, nil, err
	}
	c, err := n.derive(t)
	if err != nil {
		return nil, nil, err
	}
	return t, c, nil
}

func (n *Interface) Expected() string { return typeLabel(n.iface) }

func (n *Interface) Check(p location.Path, v any) result.Result { return check(n, isObject, p, v) }

func (n *Interface) Normalize(v any) any { return v }

func typeLabel(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return KindObject.String()
}
