// Package result holds the outcome of one validation pass: the collected data
// errors and the ordered hydration stages that rebuild the validated value.
package result

import (
	"reflect"
)

// StageKind discriminates hydration stages.
type StageKind uint8

const (
	StageContainer StageKind = iota // create an empty object or array
	StageValue                      // store a normalised value
	StageDefault                    // store a declared default
	StageResolve                    // record the concrete type picked for an interface
	StageGroup                      // run a merged result's stages
)

func (k StageKind) String() string {
	switch k {
	case StageContainer:
		return "container"
	case StageValue:
		return "value"
	case StageDefault:
		return "default"
	case StageResolve:
		return "resolve"
	case StageGroup:
		return "group"
	}
	return "unknown"
}

// Container is the shape created by a StageContainer.
type Container uint8

const (
	Object Container = iota
	Array
)

// Stage is a hydration step descriptor.
type Stage struct {
	Kind      StageKind
	Target    Target
	Container Container
	Len       int // array length for Array containers
	Value     any
	Type      reflect.Type
	Group     []Stage
}

// ContainerStage creates an object at t.
func ContainerStage(t Target) Stage { return Stage{Kind: StageContainer, Target: t, Container: Object} }

// ArrayStage creates an array of n elements at t.
func ArrayStage(t Target, n int) Stage {
	return Stage{Kind: StageContainer, Target: t, Container: Array, Len: n}
}

// ValueStage stores v at t.
func ValueStage(t Target, v any) Stage { return Stage{Kind: StageValue, Target: t, Value: v} }

// DefaultStage stores the default v at t.
func DefaultStage(t Target, v any) Stage { return Stage{Kind: StageDefault, Target: t, Value: v} }

// ResolveStage records that the interface at t hydrates into typ.
func ResolveStage(t Target, typ reflect.Type) Stage {
	return Stage{Kind: StageResolve, Target: t, Type: typ}
}

// Result is an immutable accumulation of errors and stages. The zero value is
// a valid, empty result.
type Result struct {
	errors []string
	stages []Stage
}

// WithErrors returns a copy of r with errs appended.
func (r Result) WithErrors(errs ...string) Result {
	if len(errs) == 0 {
		return r
	}
	out := make([]string, 0, len(r.errors)+len(errs))
	out = append(out, r.errors...)
	return Result{errors: append(out, errs...), stages: r.stages}
}

// WithStage returns a copy of r with s appended.
func (r Result) WithStage(s Stage) Result {
	out := make([]Stage, 0, len(r.stages)+1)
	out = append(out, r.stages...)
	return Result{errors: r.errors, stages: append(out, s)}
}

// Merge concatenates the errors of r and o, and appends one group stage that
// runs o's stages.
func (r Result) Merge(o Result) Result {
	merged := r.WithErrors(o.errors...)
	return merged.WithStage(Stage{Kind: StageGroup, Group: o.stages})
}

// Valid reports whether no errors were collected.
func (r Result) Valid() bool { return len(r.errors) == 0 }

// Errors returns a copy of the collected error messages.
func (r Result) Errors() []string { return append([]string(nil), r.errors...) }

// Stages returns a copy of the top-level stages in insertion order.
func (r Result) Stages() []Stage { return append([]Stage(nil), r.stages...) }

// Run executes the stages into d, last added first. Group stages run their
// members the same way.
func (r Result) Run(d *Draft) error { return run(r.stages, d) }

func run(stages []Stage, d *Draft) error {
	for i := len(stages) - 1; i >= 0; i-- {
		s := stages[i]
		if s.Kind == StageGroup {
			if err := run(s.Group, d); err != nil {
				return err
			}
			continue
		}
		if err := d.apply(s); err != nil {
			return err
		}
	}
	return nil
}
