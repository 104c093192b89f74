package schema

import (
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/transpose/codec"
	"github.com/reoring/transpose/constraint"
	js "github.com/reoring/transpose/jsonschema"
)

// JSONSchema exports the collection as a closed JSON Schema object. Nested
// struct types are emitted once under $defs and referenced by name.
func (c *Collection) JSONSchema() (*js.Schema, error) {
	e := &exporter{defs: map[string]*js.Schema{}, names: map[reflect.Type]string{}}
	root, err := e.object(c)
	if err != nil {
		return nil, err
	}
	root.SchemaURI = js.Draft
	if c.typ != nil && c.typ.Name() != "" {
		root.Title = c.typ.Name()
	}
	if len(e.defs) > 0 {
		root.Defs = e.defs
	}
	return root, nil
}

type exporter struct {
	defs  map[string]*js.Schema
	names map[reflect.Type]string
}

func (e *exporter) object(c *Collection) (*js.Schema, error) {
	s := &js.Schema{Type: "object", Properties: map[string]*js.Schema{}, AdditionalProperties: false}
	for _, n := range c.nodes {
		ps, err := e.node(n)
		if err != nil {
			return nil, err
		}
		s.Properties[n.WireName()] = ps
		if _, hasDefault := n.Default(); !n.Nullable() && !hasDefault {
			s.Required = append(s.Required, n.WireName())
		}
	}
	return s, nil
}

func (e *exporter) node(n Node) (*js.Schema, error) {
	s := &js.Schema{}
	switch n.Kind() {
	case KindBool:
		s.Type = "boolean"
	case KindInt:
		s.Type = "integer"
	case KindFloat:
		s.Type = "number"
	case KindString:
		s.Type = "string"
	case KindDateTime:
		s.Type, s.Format = "string", "date-time"
	case KindUUID:
		s.Type, s.Format = "string", "uuid"
	case KindMixed:
		return s, nil
	case KindArray, KindObject:
		cn := n.(Container)
		item := &js.Schema{}
		if cn.Item() != nil {
			var err error
			if item, err = e.node(cn.Item()); err != nil {
				return nil, err
			}
		}
		constraint.Describe(item, cn.ElementConstraints())
		if n.Kind() == KindArray {
			s.Type, s.Items = "array", item
		} else {
			s.Type, s.AdditionalProperties = "object", item
			if ks := cn.KeyConstraints(); len(ks) > 0 {
				s.PropertyNames = &js.Schema{Type: "string"}
				constraint.Describe(s.PropertyNames, ks)
			}
		}
	case KindNested:
		nn := n.(*Nested)
		ref, err := e.ref(nn.Target(), nn.Collection)
		if err != nil {
			return nil, err
		}
		return e.nullableRef(n, ref), nil
	case KindInterface:
		in := n.(*Interface)
		if t, ok := in.resolver.Fixed(in.iface); ok {
			ref, err := e.ref(t, func() (*Collection, error) { return in.derive(t) })
			if err != nil {
				return nil, err
			}
			return e.nullableRef(n, ref), nil
		}
		s.Type = "object"
		s.Description = "resolved from " + in.iface.String() + " at runtime"
	}
	constraint.Describe(s, n.Constraints())
	if d, ok := n.Default(); ok {
		s.Default = exportValue(d)
	}
	if n.Nullable() {
		s.Nullable()
	}
	return s, nil
}

func (e *exporter) nullableRef(n Node, ref *js.Schema) *js.Schema {
	if !n.Nullable() {
		return ref
	}
	return &js.Schema{OneOf: []*js.Schema{ref, {Type: "null"}}}
}

// ref registers t under $defs on first sight and returns a reference to it.
func (e *exporter) ref(t reflect.Type, load func() (*Collection, error)) (*js.Schema, error) {
	if name, ok := e.names[t]; ok {
		return &js.Schema{Ref: "#/$defs/" + name}, nil
	}
	stem := t.Name()
	if stem == "" {
		stem = "Anonymous"
	}
	name := stem
	for i := 2; e.defs[name] != nil; i++ {
		name = stem + strconv.Itoa(i)
	}
	e.names[t] = name
	e.defs[name] = &js.Schema{} // placeholder for self references
	c, err := load()
	if err != nil {
		return nil, err
	}
	def, err := e.object(c)
	if err != nil {
		return nil, err
	}
	e.defs[name] = def
	return &js.Schema{Ref: "#/$defs/" + name}, nil
}

func exportValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return codec.FormatDateTime(t)
	case uuid.UUID:
		return t.String()
	}
	return v
}
