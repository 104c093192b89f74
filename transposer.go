package transpose

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/reoring/transpose/hydrate"
	"github.com/reoring/transpose/internal/engine"
	js "github.com/reoring/transpose/jsonschema"
	"github.com/reoring/transpose/naming"
	"github.com/reoring/transpose/result"
	"github.com/reoring/transpose/schema"
)

// Transposer owns the schema cache, the interface resolver and the engine.
// It is safe for concurrent use once interfaces are registered.
type Transposer struct {
	opts     Options
	factory  *schema.Factory
	engine   *engine.Engine
	hydrator hydrate.Hydrator
	log      *zap.Logger
}

// New returns a Transposer configured by opts.
func New(opts ...Option) *Transposer {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Hydrator == nil {
		o.Hydrator = hydrate.NewReflect(o.Logger.Named("hydrate"))
	}
	fopts := []schema.FactoryOption{schema.WithLogger(o.Logger.Named("schema"))}
	if o.Naming != nil {
		fopts = append(fopts, schema.WithNaming(o.Naming))
	}
	if o.Include != 0 {
		fopts = append(fopts, schema.WithInclude(o.Include))
	}
	if o.Constraints != nil {
		fopts = append(fopts, schema.WithConstraintFactory(o.Constraints))
	}
	return &Transposer{
		opts:     o,
		factory:  schema.NewFactory(fopts...),
		engine:   engine.New(engine.WithMaxDepth(o.MaxDepth), engine.WithLogger(o.Logger.Named("engine"))),
		hydrator: o.Hydrator,
		log:      o.Logger,
	}
}

// Derive returns the cached schema of t, a struct or pointer to struct.
func (tp *Transposer) Derive(t reflect.Type) (*schema.Collection, error) { return tp.factory.Derive(t) }

// DeriveOf returns the cached schema of T.
func DeriveOf[T any](tp *Transposer) (*schema.Collection, error) {
	return tp.Derive(reflect.TypeOf((*T)(nil)).Elem())
}

// JSONSchemaOf exports the schema of T as JSON Schema.
func JSONSchemaOf[T any](tp *Transposer) (*js.Schema, error) {
	c, err := DeriveOf[T](tp)
	if err != nil {
		return nil, err
	}
	return c.JSONSchema()
}

// Validate walks input against c. input must be object shaped; anything
// else is an InputError wrapping ErrNotObject.
func (tp *Transposer) Validate(c *schema.Collection, input any) (result.Result, error) {
	m, err := canonical(input)
	if err != nil {
		return result.Result{}, err
	}
	return tp.engine.Validate(c, m)
}

// Resolver returns the interface resolver.
func (tp *Transposer) Resolver() *schema.Resolver { return tp.factory.Resolver() }

// RegisterType makes concrete types resolvable by name from resolver callbacks.
func (tp *Transposer) RegisterType(types ...reflect.Type) error {
	return tp.factory.Resolver().RegisterType(types...)
}

// RegisterInterface maps interface I to the concrete struct type C.
func RegisterInterface[I, C any](tp *Transposer) error {
	return tp.Resolver().Register(reflect.TypeOf((*I)(nil)).Elem(), reflect.TypeOf((*C)(nil)).Elem())
}

// RegisterInterfaceFunc maps interface I to a callback picking the concrete
// type per input fragment.
func RegisterInterfaceFunc[I any](tp *Transposer, fn schema.ResolveFunc) error {
	return tp.Resolver().Register(reflect.TypeOf((*I)(nil)).Elem(), fn)
}

// SetNaming switches the wire naming strategy and drops every cached schema.
func (tp *Transposer) SetNaming(s naming.Strategy) { tp.factory.SetNaming(s) }

// MaxDepth returns the effective nesting limit.
func (tp *Transposer) MaxDepth() int { return tp.engine.MaxDepth() }

func (tp *Transposer) loadOptions() LoadOptions {
	warn := func(is Issue) {
		tp.log.Warn("input issue", zap.String("code", is.Code), zap.String("path", is.Path), zap.String("message", is.Message))
	}
	// the decoder counts the top-level object, the engine does not
	return LoadOptions{
		OnDuplicateKey: tp.opts.Strictness.OnDuplicateKey,
		MaxDepth:       tp.engine.MaxDepth() + 1,
		MaxBytes:       tp.opts.MaxBytes,
		OnIssue:        warn,
	}
}
