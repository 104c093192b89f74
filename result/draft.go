package result

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tiendc/go-deepcopy"
)

// ErrNoContainer is returned when a stage addresses a slot whose parent was
// never created. It indicates stages executed out of order.
var ErrNoContainer = errors.New("result: parent container missing")

// Draft is the plain value tree built by running stages, plus the concrete
// types chosen for interface slots, keyed by Target.String().
type Draft struct {
	Tree  any
	Types map[string]reflect.Type
}

// NewDraft returns an empty draft.
func NewDraft() *Draft { return &Draft{Types: map[string]reflect.Type{}} }

// Object returns the root tree as an object, or nil.
func (d *Draft) Object() map[string]any {
	m, _ := d.Tree.(map[string]any)
	return m
}

func (d *Draft) apply(s Stage) error {
	switch s.Kind {
	case StageContainer:
		if s.Container == Array {
			return d.set(s.Target, make([]any, s.Len))
		}
		return d.set(s.Target, map[string]any{})
	case StageValue:
		return d.set(s.Target, s.Value)
	case StageDefault:
		v, err := clone(s.Value)
		if err != nil {
			return fmt.Errorf("result: copy default at %q: %w", s.Target.String(), err)
		}
		return d.set(s.Target, v)
	case StageResolve:
		if d.Types == nil {
			d.Types = map[string]reflect.Type{}
		}
		d.Types[s.Target.String()] = s.Type
		return nil
	}
	return fmt.Errorf("result: unexpected stage %s", s.Kind)
}

// clone copies container defaults so drafts never share them.
func clone(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any:
		var out any
		if err := deepcopy.Copy(&out, v); err != nil {
			return nil, err
		}
		return out, nil
	}
	return v, nil
}

func (d *Draft) set(t Target, v any) error {
	if t.IsRoot() {
		d.Tree = v
		return nil
	}
	cur := d.Tree
	last := len(t.segs) - 1
	for i, seg := range t.segs {
		if i == last {
			return place(cur, seg, v, t)
		}
		next, ok := step(cur, seg)
		if !ok {
			return fmt.Errorf("%w at %q", ErrNoContainer, t.String())
		}
		cur = next
	}
	return nil
}

func step(cur any, seg Segment) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		if seg.IsIndex {
			return nil, false
		}
		v, ok := c[seg.Key]
		return v, ok
	case []any:
		if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(c) {
			return nil, false
		}
		return c[seg.Index], true
	}
	return nil, false
}

func place(cur any, seg Segment, v any, t Target) error {
	switch c := cur.(type) {
	case map[string]any:
		if !seg.IsIndex {
			c[seg.Key] = v
			return nil
		}
	case []any:
		if seg.IsIndex && seg.Index >= 0 && seg.Index < len(c) {
			c[seg.Index] = v
			return nil
		}
	}
	return fmt.Errorf("%w at %q", ErrNoContainer, t.String())
}
