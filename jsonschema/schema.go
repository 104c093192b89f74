package jsonschema

// Schema is a minimal JSON Schema (2020-12) representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Core
	SchemaURI   string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Type        any    `json:"type,omitempty"` // string or []string when nullable
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Description string `json:"description,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	PropertyNames        *Schema            `json:"propertyNames,omitempty"`
	Defs                 map[string]*Schema `json:"$defs,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Number
	Minimum          any `json:"minimum,omitempty"`
	Maximum          any `json:"maximum,omitempty"`
	ExclusiveMinimum any `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum any `json:"exclusiveMaximum,omitempty"`

	// String
	Pattern   string `json:"pattern,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`

	// Composition
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`
}

// Draft is the dialect URI written to root documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Nullable widens s.Type to also accept null.
func (s *Schema) Nullable() {
	switch t := s.Type.(type) {
	case string:
		if t != "" && t != "null" {
			s.Type = []string{t, "null"}
		}
	case []string:
		for _, x := range t {
			if x == "null" {
				return
			}
		}
		s.Type = append(append([]string(nil), t...), "null")
	}
}
