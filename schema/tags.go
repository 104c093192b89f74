package schema

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/transpose/internal/value"
)

// Struct tags read by the factory.
const (
	TagSchema    = "schema"    // name=<wire>, nullable, or "-"
	TagDefault   = "default"   // default literal
	TagCheck     = "check"     // scalar constraints
	TagCheckElem = "checkElem" // element / map value constraints
	TagCheckKey  = "checkKey"  // map key constraints
)

type fieldTags struct {
	skip       bool
	wire       string
	nullable   bool
	def        string
	hasDefault bool
	check      string
	checkElem  string
	checkKey   string
}

// readTags resolves a field's tags. Wire name priority:
// schema:"name=..." > json tag name > naming strategy.
func readTags(sf reflect.StructField) fieldTags {
	var ft fieldTags
	if st, ok := sf.Tag.Lookup(TagSchema); ok {
		for _, p := range strings.Split(st, ",") {
			p = strings.TrimSpace(p)
			switch {
			case p == "-":
				ft.skip = true
			case p == "nullable":
				ft.nullable = true
			case strings.HasPrefix(p, "name="):
				ft.wire = strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" && ft.wire == "" {
		name, _, _ := strings.Cut(jt, ",")
		if name == "-" && jt == "-" {
			ft.skip = true
		}
		if name != "-" {
			ft.wire = name
		}
	}
	ft.def, ft.hasDefault = sf.Tag.Lookup(TagDefault)
	ft.check = sf.Tag.Get(TagCheck)
	ft.checkElem = sf.Tag.Get(TagCheckElem)
	ft.checkKey = sf.Tag.Get(TagCheckKey)
	return ft
}

// parseDefault reads a default literal for a node of kind. "null" yields nil,
// except on a non-nullable string where it is the literal text. Arrays,
// objects and mixed values are JSON.
func parseDefault(kind Kind, raw string, nullable bool) (any, error) {
	if raw == "null" && (nullable || kind != KindString) {
		return nil, nil
	}
	switch kind {
	case KindBool:
		return strconv.ParseBool(raw)
	case KindInt:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case KindFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case KindString, KindDateTime, KindUUID:
		return raw, nil
	case KindArray, KindObject, KindMixed:
		return decodeJSON(raw)
	}
	return nil, fmt.Errorf("%w: defaults are not supported for %s properties", ErrIncompatibleDefault, kind)
}

func decodeJSON(raw string) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return value.CanonicalTree(v)
}
