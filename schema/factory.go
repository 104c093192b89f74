package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/reoring/transpose/constraint"
	"github.com/reoring/transpose/naming"
)

// Include selects which struct fields become properties.
type Include uint8

const (
	IncludeExported Include = 1 << iota
	IncludeUnexported
	IncludeAll = IncludeExported | IncludeUnexported
)

// Options are per-type overrides, supplied by implementing Optioner.
type Options struct {
	// Include overrides the factory's field filter when non-zero.
	Include Include
	// Defaults by Go field name; they take precedence over default tags.
	Defaults map[string]any
	// Constraints by Go field name, appended after tag constraints.
	Constraints map[string][]constraint.Constraint
}

// Optioner is implemented by types that customise their own schema.
type Optioner interface {
	SchemaOptions() Options
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// typeTable maps special struct and array types to their dedicated variant.
var typeTable = map[reflect.Type]Kind{
	timeType: KindDateTime,
	uuidType: KindUUID,
}

// kindTable maps the remaining Go kinds to node variants.
var kindTable = map[reflect.Kind]Kind{
	reflect.Bool:      KindBool,
	reflect.Int:       KindInt,
	reflect.Int8:      KindInt,
	reflect.Int16:     KindInt,
	reflect.Int32:     KindInt,
	reflect.Int64:     KindInt,
	reflect.Uint:      KindInt,
	reflect.Uint8:     KindInt,
	reflect.Uint16:    KindInt,
	reflect.Uint32:    KindInt,
	reflect.Uint64:    KindInt,
	reflect.Float32:   KindFloat,
	reflect.Float64:   KindFloat,
	reflect.String:    KindString,
	reflect.Slice:     KindArray,
	reflect.Array:     KindArray,
	reflect.Map:       KindObject,
	reflect.Struct:    KindNested,
	reflect.Interface: KindInterface,
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithNaming sets the strategy deriving wire names from field names.
func WithNaming(s naming.Strategy) FactoryOption { return func(f *Factory) { f.naming = s } }

// WithInclude sets the default field filter.
func WithInclude(in Include) FactoryOption { return func(f *Factory) { f.include = in } }

// WithConstraintFactory sets the factory resolving constraint tags.
func WithConstraintFactory(c *constraint.Factory) FactoryOption {
	return func(f *Factory) { f.constraints = c }
}

// WithResolver sets the resolver used by interface properties.
func WithResolver(r *Resolver) FactoryOption { return func(f *Factory) { f.resolver = r } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) FactoryOption { return func(f *Factory) { f.log = l } }

// Factory derives and caches one Collection per struct type. It is safe for
// concurrent use; concurrent first derivations of a type share one result.
type Factory struct {
	mu          sync.RWMutex
	cache       map[reflect.Type]*Collection
	gen         uint64
	group       singleflight.Group
	naming      naming.Strategy
	include     Include
	constraints *constraint.Factory
	resolver    *Resolver
	log         *zap.Logger
}

// NewFactory returns a factory. By default exported fields are included, wire
// names equal field names, and constraints come from constraint.Default.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{cache: map[reflect.Type]*Collection{}}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	if f.naming == nil {
		f.naming = naming.Identity
	}
	if f.include == 0 {
		f.include = IncludeExported
	}
	if f.constraints == nil {
		f.constraints = constraint.Default()
	}
	if f.resolver == nil {
		f.resolver = NewResolver(f.log)
	}
	return f
}

// Resolver returns the resolver used for interface properties.
func (f *Factory) Resolver() *Resolver { return f.resolver }

// Constraints returns the constraint factory.
func (f *Factory) Constraints() *constraint.Factory { return f.constraints }

// SetNaming switches the wire naming strategy and drops every cached schema.
func (f *Factory) SetNaming(s naming.Strategy) {
	if s == nil {
		s = naming.Identity
	}
	f.mu.Lock()
	f.naming = s
	f.invalidateLocked()
	f.mu.Unlock()
}

// Invalidate drops every cached schema.
func (f *Factory) Invalidate() {
	f.mu.Lock()
	f.invalidateLocked()
	f.mu.Unlock()
}

func (f *Factory) invalidateLocked() {
	n := len(f.cache)
	f.cache = map[reflect.Type]*Collection{}
	f.gen++
	f.log.Debug("schema cache invalidated", zap.Int("dropped", n), zap.Uint64("generation", f.gen))
}

// Derive returns the schema of t (a struct or pointer to struct). Repeated
// calls return the same *Collection until the cache is invalidated.
func (f *Factory) Derive(t reflect.Type) (*Collection, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &DefinitionError{Type: t, Err: ErrNotStruct}
	}

	f.mu.RLock()
	c, ok := f.cache[t]
	gen, strategy := f.gen, f.naming
	f.mu.RUnlock()
	if ok {
		return c, nil
	}

	key := t.PkgPath() + "|" + t.String() + "|" + strconv.FormatUint(gen, 10)
	v, err, _ := f.group.Do(key, func() (any, error) {
		f.mu.RLock()
		c, ok := f.cache[t]
		f.mu.RUnlock()
		if ok {
			return c, nil
		}
		c, err := f.build(t, strategy)
		if err != nil {
			f.log.Debug("schema derivation failed", zap.Stringer("type", t), zap.Error(err))
			return nil, err
		}
		f.mu.Lock()
		if f.gen == gen {
			if existing, ok := f.cache[t]; ok {
				c = existing
			} else {
				f.cache[t] = c
			}
		}
		f.mu.Unlock()
		f.log.Debug("schema derived", zap.Stringer("type", t), zap.Int("properties", c.Len()))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Collection), nil
}

func optionsFor(t reflect.Type) Options {
	if o, ok := reflect.Zero(t).Interface().(Optioner); ok {
		return o.SchemaOptions()
	}
	if o, ok := reflect.New(t).Interface().(Optioner); ok {
		return o.SchemaOptions()
	}
	return Options{}
}

func (f *Factory) build(t reflect.Type, strategy naming.Strategy) (*Collection, error) {
	opts := optionsFor(t)
	include := f.include
	if opts.Include != 0 {
		include = opts.Include
	}
	var nodes []Node
	for _, sf := range reflect.VisibleFields(t) {
		if !reachable(t, sf) || flattened(sf) {
			continue
		}
		if sf.IsExported() && include&IncludeExported == 0 || !sf.IsExported() && include&IncludeUnexported == 0 {
			continue
		}
		tags := readTags(sf)
		if tags.skip {
			continue
		}
		n, err := f.fieldNode(t, sf, tags, strategy, opts)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return NewCollection(t, nodes...)
}

// flattened reports whether sf is an embedded struct whose fields are
// promoted into the parent instead of forming a property.
func flattened(sf reflect.StructField) bool {
	if !sf.Anonymous {
		return false
	}
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	if _, special := typeTable[t]; special {
		return false
	}
	tags := readTags(sf)
	return !tags.skip && tags.wire == ""
}

// reachable reports whether every embedded field on the way to sf is flattened.
func reachable(t reflect.Type, sf reflect.StructField) bool {
	for i := 1; i < len(sf.Index); i++ {
		if !flattened(t.FieldByIndex(sf.Index[:i])) {
			return false
		}
	}
	return true
}

// plan is one dispatch table decision.
type plan struct {
	kind     Kind
	nullable bool
	build    func(name string, opts []Option) (Node, error)
}

func (f *Factory) planFor(owner reflect.Type, name string, t reflect.Type) (plan, error) {
	var p plan
	for t.Kind() == reflect.Pointer {
		p.nullable = true
		t = t.Elem()
	}
	kind, ok := typeTable[t]
	if !ok {
		kind, ok = kindTable[t.Kind()]
	}
	if !ok {
		return p, &DefinitionError{Type: owner, Field: name, Err: fmt.Errorf("%w: %v", ErrUnsupportedType, t)}
	}
	if kind == KindInterface && t.NumMethod() == 0 {
		kind = KindMixed
	}
	p.kind = kind
	switch kind {
	case KindBool:
		p.build = func(n string, o []Option) (Node, error) { return NewBool(n, o...) }
	case KindInt:
		p.build = func(n string, o []Option) (Node, error) { return NewInt(n, o...) }
	case KindFloat:
		p.build = func(n string, o []Option) (Node, error) { return NewFloat(n, o...) }
	case KindString:
		p.build = func(n string, o []Option) (Node, error) { return NewString(n, o...) }
	case KindDateTime:
		p.build = func(n string, o []Option) (Node, error) { return NewDateTime(n, o...) }
	case KindUUID:
		p.build = func(n string, o []Option) (Node, error) { return NewUUID(n, o...) }
	case KindMixed:
		p.build = func(n string, o []Option) (Node, error) { return NewMixed(n, o...) }
	case KindArray:
		p.build = func(n string, o []Option) (Node, error) {
			item, err := f.itemNode(owner, n, t.Elem())
			if err != nil {
				return nil, err
			}
			return NewArray(n, item, o...)
		}
	case KindObject:
		if t.Key().Kind() != reflect.String {
			return p, &DefinitionError{Type: owner, Field: name, Err: fmt.Errorf("%w: map key %v", ErrUnsupportedType, t.Key())}
		}
		p.build = func(n string, o []Option) (Node, error) {
			item, err := f.itemNode(owner, n, t.Elem())
			if err != nil {
				return nil, err
			}
			return NewObject(n, item, o...)
		}
	case KindNested:
		p.build = func(n string, o []Option) (Node, error) {
			return NewNested(n, t, func() (*Collection, error) { return f.Derive(t) }, o...)
		}
	case KindInterface:
		p.build = func(n string, o []Option) (Node, error) {
			return NewInterface(n, t, f.resolver, f.Derive, o...)
		}
	}
	return p, nil
}

// itemNode describes the elements of an array or map; nil for untyped elements.
func (f *Factory) itemNode(owner reflect.Type, name string, et reflect.Type) (Node, error) {
	if et.Kind() == reflect.Interface && et.NumMethod() == 0 {
		return nil, nil
	}
	p, err := f.planFor(owner, name, et)
	if err != nil {
		return nil, err
	}
	return p.build(name, []Option{WithGoType(et), WithNullable(p.nullable)})
}

func constraintKind(k Kind) (constraint.Kind, bool) {
	switch k {
	case KindInt, KindFloat:
		return constraint.KindNumber, true
	case KindString:
		return constraint.KindString, true
	}
	return constraint.KindAny, false
}

func (f *Factory) fieldNode(owner reflect.Type, sf reflect.StructField, tags fieldTags, strategy naming.Strategy, extra Options) (Node, error) {
	name := sf.Name
	p, err := f.planFor(owner, name, sf.Type)
	if err != nil {
		return nil, err
	}
	wire := tags.wire
	if wire == "" {
		wire = strategy.Format(name)
	}
	opts := []Option{WithWireName(wire), WithGoType(sf.Type), WithNullable(p.nullable || tags.nullable)}

	fail := func(err error) (Node, error) {
		return nil, &DefinitionError{Type: owner, Field: name, Err: err}
	}

	if tags.hasDefault {
		d, err := parseDefault(p.kind, tags.def, p.nullable || tags.nullable)
		if err != nil {
			return fail(fmt.Errorf("%w: %v", ErrIncompatibleDefault, err))
		}
		opts = append(opts, WithDefault(d))
	}
	if d, ok := extra.Defaults[name]; ok {
		opts = append(opts, WithDefault(d))
	}

	if tags.check != "" {
		ck, ok := constraintKind(p.kind)
		if !ok {
			return fail(fmt.Errorf("%w: %s", ErrConstraintFamily, p.kind))
		}
		cs, err := f.constraints.Parse(tags.check, ck)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, WithConstraints(cs...))
	}
	if cs := extra.Constraints[name]; len(cs) > 0 {
		opts = append(opts, WithConstraints(cs...))
	}
	if tags.checkElem != "" {
		cs, err := f.elementConstraints(owner, name, p.kind, sf.Type, tags.checkElem)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, WithElementConstraints(cs...))
	}
	if tags.checkKey != "" {
		if p.kind != KindObject {
			return fail(fmt.Errorf("%w: key constraints on %s", ErrConstraintFamily, p.kind))
		}
		cs, err := f.constraints.Parse(tags.checkKey, constraint.KindString)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, WithKeyConstraints(cs...))
	}

	n, err := p.build(name, opts)
	if err != nil {
		var de *DefinitionError
		if errors.As(err, &de) && de.Type == nil {
			de.Type = owner
		}
		return nil, err
	}
	return n, nil
}

func (f *Factory) elementConstraints(owner reflect.Type, name string, kind Kind, t reflect.Type, tag string) ([]constraint.Constraint, error) {
	if kind != KindArray && kind != KindObject {
		return nil, fmt.Errorf("%w: element constraints on %s", ErrConstraintFamily, kind)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ck := constraint.KindAny
	if et := t.Elem(); !(et.Kind() == reflect.Interface && et.NumMethod() == 0) {
		ip, err := f.planFor(owner, name, et)
		if err != nil {
			return nil, err
		}
		k, ok := constraintKind(ip.kind)
		if !ok {
			return nil, fmt.Errorf("%w: element constraints on %s elements", ErrConstraintFamily, ip.kind)
		}
		ck = k
	}
	return f.constraints.Parse(tag, ck)
}
