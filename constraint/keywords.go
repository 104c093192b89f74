package constraint

import (
	"github.com/reoring/transpose/jsonschema"
)

// Describer is implemented by constraints that can be expressed as JSON
// Schema keywords. Constraints without a keyword equivalent are skipped on export.
type Describer interface {
	Describe(s *jsonschema.Schema)
}

// Describe applies every describable constraint in cs to s.
func Describe(s *jsonschema.Schema, cs []Constraint) {
	for _, c := range cs {
		if d, ok := c.(Describer); ok {
			d.Describe(s)
		}
	}
}

func (c *compare) Describe(s *jsonschema.Schema) {
	switch c.op {
	case opGT:
		s.ExclusiveMinimum = c.bound
	case opGTE:
		s.Minimum = c.bound
	case opLT:
		s.ExclusiveMaximum = c.bound
	case opLTE:
		s.Maximum = c.bound
	case opNE:
		s.Not = &jsonschema.Schema{Enum: []any{c.bound}}
	}
}

func (c *numberIn) Describe(s *jsonschema.Schema) { s.Enum = append([]any(nil), c.values...) }

func (c *stringIn) Describe(s *jsonschema.Schema) {
	s.Enum = make([]any, len(c.values))
	for i, v := range c.values {
		s.Enum[i] = v
	}
}

func (c *pattern) Describe(s *jsonschema.Schema) { s.Pattern = c.re.String() }

func (*email) Describe(s *jsonschema.Schema) { s.Format = "email" }

func (*uuidString) Describe(s *jsonschema.Schema) { s.Format = "uuid" }

func (c *length) Describe(s *jsonschema.Schema) {
	n := c.bound
	if c.op == lenMin {
		s.MinLength = &n
	} else {
		s.MaxLength = &n
	}
}
