// Package engine walks an input value tree against a schema collection and
// produces a result.Result: data errors plus the hydration stages that
// rebuild the validated value.
package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/reoring/transpose/constraint"
	"github.com/reoring/transpose/i18n"
	"github.com/reoring/transpose/location"
	"github.com/reoring/transpose/result"
	"github.com/reoring/transpose/schema"
)

// DefaultMaxDepth bounds nesting when no limit is configured.
const DefaultMaxDepth = 1024

// ErrTooMuchRecursion is matched by every RecursionError.
var ErrTooMuchRecursion = errors.New("too much recursion")

// RecursionError aborts a walk whose nesting exceeds the configured limit.
type RecursionError struct {
	Limit int
	Path  string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("too much recursion: %s exceeds the maximum depth of %d", e.Path, e.Limit)
}

func (e *RecursionError) Unwrap() error { return ErrTooMuchRecursion }

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the nesting limit. Values below 1 select DefaultMaxDepth.
func WithMaxDepth(n int) Option { return func(e *Engine) { e.maxDepth = n } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// Engine validates input trees. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	maxDepth int
	log      *zap.Logger
}

// New returns an engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxDepth < 1 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	return e
}

// MaxDepth returns the configured nesting limit.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// Validate walks input against c. Data errors are collected into the
// result; the returned error is reserved for fatal conditions: recursion
// beyond the limit, failed interface resolution, and nested types whose
// schema cannot be derived.
func (e *Engine) Validate(c *schema.Collection, input map[string]any) (result.Result, error) {
	r, err := e.object(c, input, location.Root(), result.Target{}, 0)
	if err != nil {
		return result.Result{}, err
	}
	if !r.Valid() {
		e.log.Debug("input rejected", zap.Stringer("type", c.Type()), zap.Int("errors", len(r.Errors())))
	}
	return r, nil
}

func (e *Engine) guard(p location.Path, depth int) error {
	if depth > e.maxDepth {
		return &RecursionError{Limit: e.maxDepth, Path: p.String()}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func msg(code string, p location.Path, extra ...string) string {
	data := map[string]string{"path": p.String()}
	for i := 0; i+1 < len(extra); i += 2 {
		data[extra[i]] = extra[i+1]
	}
	return i18n.T(code, data)
}

// object walks one struct frame. Its container stage is added last so it
// runs before the stages of its properties.
func (e *Engine) object(c *schema.Collection, in map[string]any, p location.Path, t result.Target, depth int) (result.Result, error) {
	var r result.Result
	if err := e.guard(p, depth); err != nil {
		return r, err
	}

	claimed := make(map[string]location.Path, c.Len())
	for _, key := range sortedKeys(in) {
		kp, err := p.WithObjectKey(key)
		if err != nil {
			r = r.WithErrors(msg(i18n.CodeEmptyKey, p))
			continue
		}
		n, ok := c.Lookup(key)
		if !ok {
			r = r.WithErrors(msg(i18n.CodeNotPermitted, kp))
			continue
		}
		if prev, dup := claimed[n.Name()]; dup {
			r = r.WithErrors(msg(i18n.CodeConflict, kp, "other", prev.String()))
			continue
		}
		claimed[n.Name()] = kp

		sub, err := e.property(n, in[key], kp, t.Key(n.Name()), depth)
		if err != nil {
			return result.Result{}, err
		}
		r = r.Merge(sub)
	}

	for _, n := range c.Nodes() {
		if _, present := claimed[n.Name()]; present {
			continue
		}
		if d, ok := n.Default(); ok {
			r = r.WithStage(result.DefaultStage(t.Key(n.Name()), d))
			continue
		}
		if n.Nullable() {
			continue
		}
		np, err := p.WithObjectKey(n.WireName())
		if err != nil {
			np = p
		}
		r = r.WithErrors(msg(i18n.CodeRequired, np))
	}

	return r.WithStage(result.ContainerStage(t)), nil
}

// property validates one present value against its node.
func (e *Engine) property(n schema.Node, v any, p location.Path, t result.Target, depth int) (result.Result, error) {
	r := n.Check(p, v)
	if !r.Valid() {
		return r, nil
	}
	if v == nil {
		return r.WithStage(result.ValueStage(t, nil)), nil
	}

	switch node := n.(type) {
	case *schema.Nested:
		c, err := node.Collection()
		if err != nil {
			return r, err
		}
		return e.object(c, v.(map[string]any), p, t, depth+1)
	case *schema.Interface:
		frag := v.(map[string]any)
		typ, c, err := node.Resolve(frag)
		if err != nil {
			return r, err
		}
		sub, err := e.object(c, frag, p, t, depth+1)
		if err != nil {
			return r, err
		}
		return sub.WithStage(result.ResolveStage(t, typ)), nil
	case schema.Container:
		if node.Kind() == schema.KindArray {
			return e.array(node, v.([]any), p, t, depth+1)
		}
		return e.dict(node, v.(map[string]any), p, t, depth+1)
	}
	return r.WithStage(result.ValueStage(t, n.Normalize(v))), nil
}

// element validates one array element or map value. Element constraints run
// after the item node accepted the value.
func (e *Engine) element(cn schema.Container, v any, p location.Path, t result.Target, depth int) (result.Result, error) {
	var r result.Result
	if item := cn.Item(); item != nil {
		sub, err := e.property(item, v, p, t, depth)
		if err != nil || !sub.Valid() {
			return sub, err
		}
		r = sub
	} else {
		r = r.WithStage(result.ValueStage(t, v))
	}
	if v == nil {
		return r, nil
	}
	if c := constraint.First(cn.ElementConstraints(), v); c != nil {
		return result.Result{}.WithErrors(c.Explain(p, v)), nil
	}
	return r, nil
}

func (e *Engine) array(cn schema.Container, in []any, p location.Path, t result.Target, depth int) (result.Result, error) {
	var r result.Result
	if err := e.guard(p, depth); err != nil {
		return r, err
	}
	for i, v := range in {
		sub, err := e.element(cn, v, p.WithArrayKey(i), t.Index(i), depth)
		if err != nil {
			return result.Result{}, err
		}
		r = r.Merge(sub)
	}
	return r.WithStage(result.ArrayStage(t, len(in))), nil
}

func (e *Engine) dict(cn schema.Container, in map[string]any, p location.Path, t result.Target, depth int) (result.Result, error) {
	var r result.Result
	if err := e.guard(p, depth); err != nil {
		return r, err
	}
	for _, key := range sortedKeys(in) {
		kp, err := p.WithObjectKey(key)
		if err != nil {
			r = r.WithErrors(msg(i18n.CodeEmptyKey, p))
			continue
		}
		if c := constraint.First(cn.KeyConstraints(), key); c != nil {
			r = r.WithErrors(c.Explain(kp, key))
			continue
		}
		sub, err := e.element(cn, in[key], kp, t.Key(key), depth)
		if err != nil {
			return result.Result{}, err
		}
		r = r.Merge(sub)
	}
	return r.WithStage(result.ContainerStage(t)), nil
}
