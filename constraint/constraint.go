// Package constraint provides the named predicates attached to schema nodes and
// the factory that builds and shares them.
package constraint

import (
	"errors"
	"fmt"

	"github.com/reoring/transpose/location"
)

// Kind is the value family a constraint applies to.
type Kind uint8

const (
	KindAny Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "any"
}

// Constraint is an immutable predicate over a single value. Instances are
// shared between schemas and must be safe for concurrent use.
type Constraint interface {
	// Name is the registered name, e.g. "gt".
	Name() string
	// Accepts reports the value family the constraint is meaningful for.
	Accepts() Kind
	Matches(v any) bool
	// Explain renders the mismatch message for v at p.
	Explain(p location.Path, v any) string
}

var (
	ErrUnknownConstraint = errors.New("unknown constraint")
	ErrNotConstraint     = errors.New("constructor did not return a constraint")
	ErrKindMismatch      = errors.New("constraint does not apply to this value kind")
	ErrBadArguments      = errors.New("invalid constraint arguments")
)

// Error is a definition-time failure to build a constraint.
type Error struct {
	Name string
	Args []string
	Err  error
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("constraint %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("constraint %q %q: %v", e.Name, e.Args, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// First returns the first constraint in cs that rejects v, or nil.
func First(cs []Constraint, v any) Constraint {
	for _, c := range cs {
		if !c.Matches(v) {
			return c
		}
	}
	return nil
}
