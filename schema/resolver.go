package schema

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/tiendc/go-deepcopy"
	"go.uber.org/zap"
)

// ResolveFunc picks the concrete type for an input fragment. It returns either
// a reflect.Type or the name of a type known to the Resolver. The fragment is
// a private copy of the raw, not yet validated input.
type ResolveFunc func(fragment map[string]any) any

type resolution struct {
	fixed reflect.Type
	fn    ResolveFunc
}

// Resolver maps interface types to concrete struct types. Registration is
// expected at start-up; resolution is safe for concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	entries map[reflect.Type]resolution
	names   map[string]reflect.Type
	log     *zap.Logger
}

// NewResolver returns an empty resolver. A nil logger disables logging.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{entries: map[reflect.Type]resolution{}, names: map[string]reflect.Type{}, log: log}
}

// Register maps iface to target, which is a reflect.Type, a ResolveFunc or a
// func(map[string]any) any. A fixed type must implement iface.
func (r *Resolver) Register(iface reflect.Type, target any) error {
	if iface == nil || iface.Kind() != reflect.Interface || iface.NumMethod() == 0 {
		return &ResolveError{Interface: iface, Err: ErrNotInterface}
	}
	var res resolution
	switch t := target.(type) {
	case reflect.Type:
		concrete, err := concreteFor(iface, t)
		if err != nil {
			return err
		}
		res.fixed = concrete
	case ResolveFunc:
		res.fn = t
	case func(map[string]any) any:
		res.fn = t
	default:
		return &ResolveError{Interface: iface, Concrete: target, Err: ErrBadResolution}
	}
	if res.fn == nil && res.fixed == nil {
		return &ResolveError{Interface: iface, Err: ErrBadResolution}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if res.fixed != nil {
		if err := r.registerNameLocked(res.fixed); err != nil {
			return err
		}
	}
	r.entries[iface] = res
	r.log.Debug("interface registered", zap.Stringer("interface", iface), zap.Bool("callback", res.fn != nil))
	return nil
}

// RegisterType makes concrete types resolvable by name from a ResolveFunc.
// Both the bare name ("Cat") and the qualified name ("pets.Cat") are known.
func (r *Resolver) RegisterType(types ...reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
			return &ResolveError{Concrete: t, Err: fmt.Errorf("%w: only named struct types can be registered", ErrBadResolution)}
		}
		if err := r.registerNameLocked(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) registerNameLocked(t reflect.Type) error {
	for _, name := range []string{t.Name(), t.String()} {
		if prev, ok := r.names[name]; ok && prev != t {
			return &ResolveError{Concrete: t, Err: fmt.Errorf("%w: name %q already used by %v", ErrBadResolution, name, prev)}
		}
		r.names[name] = t
	}
	return nil
}

// Resolve returns the concrete struct type for fragment.
func (r *Resolver) Resolve(iface reflect.Type, fragment map[string]any) (reflect.Type, error) {
	r.mu.RLock()
	res, ok := r.entries[iface]
	r.mu.RUnlock()
	if !ok {
		return nil, &ResolveError{Interface: iface, Err: ErrUnregistered}
	}
	if res.fixed != nil {
		return res.fixed, nil
	}

	var frag map[string]any
	if fragment != nil {
		if err := deepcopy.Copy(&frag, fragment); err != nil {
			return nil, &ResolveError{Interface: iface, Err: err}
		}
	}
	switch t := res.fn(frag).(type) {
	case reflect.Type:
		return concreteFor(iface, t)
	case string:
		r.mu.RLock()
		named, ok := r.names[t]
		r.mu.RUnlock()
		if !ok {
			return nil, &ResolveError{Interface: iface, Concrete: t, Err: ErrUnknownType}
		}
		return concreteFor(iface, named)
	case nil:
		return nil, &ResolveError{Interface: iface, Err: ErrBadResolution}
	default:
		return nil, &ResolveError{Interface: iface, Concrete: t, Err: fmt.Errorf("%w: %T is neither a type nor a type name", ErrBadResolution, t)}
	}
}

// concreteFor checks that t (or *t) implements iface and returns the struct type.
func concreteFor(iface, t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, &ResolveError{Interface: iface, Err: ErrBadResolution}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &ResolveError{Interface: iface, Concrete: t, Err: fmt.Errorf("%w: %v is not a struct", ErrBadResolution, t)}
	}
	if !t.Implements(iface) && !reflect.PointerTo(t).Implements(iface) {
		return nil, &ResolveError{Interface: iface, Concrete: t, Err: ErrNotImplemented}
	}
	return t, nil
}

// Fixed returns the concrete type registered for iface when it does not
// depend on the input.
func (r *Resolver) Fixed(iface reflect.Type) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.entries[iface]
	return res.fixed, ok && res.fixed != nil
}
