package schema

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrInvalidName         = errors.New("invalid property name")
	ErrIncompatibleDefault = errors.New("default is incompatible with the declared type")
	ErrUnsupportedType     = errors.New("unsupported field type")
	ErrDuplicateProperty   = errors.New("duplicate property")
	ErrSealed              = errors.New("collection is sealed")
	ErrConstraintFamily    = errors.New("constraints are not supported for this property kind")
	ErrNotStruct           = errors.New("schema can only be derived from struct types")
)

// DefinitionError reports a defect in a type declaration found while building
// a schema. It is never collected as a data error.
type DefinitionError struct {
	Type  reflect.Type
	Field string
	Err   error
}

func (e *DefinitionError) Error() string {
	switch {
	case e.Type != nil && e.Field != "":
		return fmt.Sprintf("schema: %s.%s: %v", e.Type, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("schema: %s: %v", e.Field, e.Err)
	case e.Type != nil:
		return fmt.Sprintf("schema: %s: %v", e.Type, e.Err)
	}
	return "schema: " + e.Err.Error()
}

func (e *DefinitionError) Unwrap() error { return e.Err }

var (
	ErrNotInterface   = errors.New("type is not an interface")
	ErrUnregistered   = errors.New("interface has no registered resolution")
	ErrNotImplemented = errors.New("type does not implement the interface")
	ErrBadResolution  = errors.New("resolver returned an unusable type")
	ErrUnknownType    = errors.New("unknown type name")
)

// ResolveError reports a failure to map an interface to a concrete type.
type ResolveError struct {
	Interface reflect.Type
	Concrete  any
	Err       error
}

func (e *ResolveError) Error() string {
	if e.Concrete != nil {
		return fmt.Sprintf("resolve %v -> %v: %v", e.Interface, e.Concrete, e.Err)
	}
	return fmt.Sprintf("resolve %v: %v", e.Interface, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
