package constraint

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Parse builds the constraints declared in a struct tag value such as
// `gt=1,lt=3` or `in=a|b|c`. Items are comma separated; a regex item consumes
// the rest of the tag so patterns may contain commas. The "in" alias resolves
// to numberIn or stringIn depending on kind.
func (f *Factory) Parse(tag string, kind Kind) ([]Constraint, error) {
	var out []Constraint
	rest := tag
	for rest != "" {
		var item string
		if trimmed := strings.TrimLeft(rest, " "); strings.HasPrefix(trimmed, "regex=") {
			item, rest = trimmed, ""
		} else {
			item, rest, _ = strings.Cut(rest, ",")
			item = strings.TrimSpace(item)
		}
		if item == "" {
			continue
		}
		name, arg, hasArg := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		var args []string
		if hasArg {
			switch name {
			case "in", "numberIn", "stringIn":
				args = lo.Map(strings.Split(arg, "|"), func(s string, _ int) string { return strings.TrimSpace(s) })
			default:
				args = []string{arg}
			}
		}
		if name == "in" {
			name = resolveIn(kind, args)
		}
		c, err := f.Get(name, args...)
		if err != nil {
			return nil, err
		}
		if kind != KindAny && c.Accepts() != KindAny && c.Accepts() != kind {
			return nil, &Error{Name: name, Args: args, Err: fmt.Errorf("%w: %s constraint on %s value", ErrKindMismatch, c.Accepts(), kind)}
		}
		out = append(out, c)
	}
	return out, nil
}

func resolveIn(kind Kind, args []string) string {
	switch kind {
	case KindNumber:
		return "numberIn"
	case KindString:
		return "stringIn"
	}
	allNumbers := len(args) > 0 && lo.EveryBy(args, func(s string) bool {
		_, err := parseNumber(s)
		return err == nil
	})
	if allNumbers {
		return "numberIn"
	}
	return "stringIn"
}
