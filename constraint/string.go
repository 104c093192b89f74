package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/reoring/transpose/i18n"
	"github.com/reoring/transpose/internal/value"
	"github.com/reoring/transpose/location"
)

func explain(code string, p location.Path, v any, extra map[string]string) string {
	data := map[string]string{"path": p.String(), "given": value.Render(v)}
	for k, s := range extra {
		data[k] = s
	}
	return i18n.T(code, data)
}

type stringIn struct{ values []string }

// StringIn matches strings equal to one of values.
func StringIn(values ...string) Constraint { return &stringIn{values: append([]string(nil), values...)} }

func (stringIn) Name() string  { return "stringIn" }
func (stringIn) Accepts() Kind { return KindString }

func (c stringIn) Matches(v any) bool {
	s, ok := v.(string)
	return ok && lo.Contains(c.values, s)
}

func (c stringIn) Explain(p location.Path, v any) string {
	quoted := lo.Map(c.values, func(s string, _ int) string { return strconv.Quote(s) })
	return explain(i18n.CodeInList, p, v, map[string]string{"values": "[" + strings.Join(quoted, ", ") + "]"})
}

type pattern struct{ re *regexp.Regexp }

// Regex compiles expr into a constraint. An invalid expression is a definition error.
func Regex(expr string) (Constraint, error) {
	c, err := compilePattern(expr)
	if err != nil {
		return nil, &Error{Name: "regex", Args: []string{expr}, Err: err}
	}
	return c, nil
}

func compilePattern(expr string) (Constraint, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return &pattern{re: re}, nil
}

func (pattern) Name() string  { return "regex" }
func (pattern) Accepts() Kind { return KindString }

func (c pattern) Matches(v any) bool {
	s, ok := v.(string)
	return ok && c.re.MatchString(s)
}

func (c pattern) Explain(p location.Path, v any) string {
	return explain(i18n.CodePattern, p, v, map[string]string{"pattern": c.re.String()})
}

// validate is safe for concurrent use and caches its own tag parsing.
var validate = validator.New()

type email struct{}

// Email matches syntactically valid e-mail addresses.
func Email() Constraint { return &email{} }

func (email) Name() string  { return "email" }
func (email) Accepts() Kind { return KindString }

func (email) Matches(v any) bool {
	s, ok := v.(string)
	return ok && validate.Var(s, "required,email") == nil
}

func (email) Explain(p location.Path, v any) string { return explain(i18n.CodeEmail, p, v, nil) }

type uuidString struct{}

// UUID matches the canonical 8-4-4-4-12 hexadecimal form.
func UUID() Constraint { return &uuidString{} }

func (uuidString) Name() string  { return "uuid" }
func (uuidString) Accepts() Kind { return KindString }

func (uuidString) Matches(v any) bool {
	s, ok := v.(string)
	return ok && IsCanonicalUUID(s)
}

func (uuidString) Explain(p location.Path, v any) string { return explain(i18n.CodeUUID, p, v, nil) }

// IsCanonicalUUID reports whether s is a hyphenated 36 character UUID.
func IsCanonicalUUID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}

type lengthOp uint8

const (
	lenMin lengthOp = iota
	lenMax
)

type length struct {
	op    lengthOp
	bound int
}

// MinLength matches strings with at least n characters.
func MinLength(n int) Constraint { return &length{op: lenMin, bound: n} }

// MaxLength matches strings with at most n characters.
func MaxLength(n int) Constraint { return &length{op: lenMax, bound: n} }

func (c length) Name() string {
	if c.op == lenMin {
		return "minLen"
	}
	return "maxLen"
}

func (length) Accepts() Kind { return KindString }

func (c length) Matches(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	n := utf8.RuneCountInString(s)
	if c.op == lenMin {
		return n >= c.bound
	}
	return n <= c.bound
}

func (c length) Explain(p location.Path, v any) string {
	code := i18n.CodeMinLength
	if c.op == lenMax {
		code = i18n.CodeMaxLength
	}
	return explain(code, p, v, map[string]string{"bound": strconv.Itoa(c.bound)})
}

type notEmpty struct{}

// NotEmpty matches strings containing a non-space character.
func NotEmpty() Constraint { return &notEmpty{} }

func (notEmpty) Name() string  { return "notEmpty" }
func (notEmpty) Accepts() Kind { return KindString }

func (notEmpty) Matches(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}

func (notEmpty) Explain(p location.Path, v any) string { return explain(i18n.CodeNotEmpty, p, v, nil) }

type affix struct {
	suffix bool
	text   string
}

// Prefix matches strings starting with text.
func Prefix(text string) Constraint { return &affix{text: text} }

// Suffix matches strings ending with text.
func Suffix(text string) Constraint { return &affix{suffix: true, text: text} }

func (c affix) Name() string {
	if c.suffix {
		return "suffix"
	}
	return "prefix"
}

func (affix) Accepts() Kind { return KindString }

func (c affix) Matches(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	if c.suffix {
		return strings.HasSuffix(s, c.text)
	}
	return strings.HasPrefix(s, c.text)
}

func (c affix) Explain(p location.Path, v any) string {
	code := i18n.CodePrefix
	if c.suffix {
		code = i18n.CodeSuffix
	}
	return explain(code, p, v, map[string]string{"bound": strconv.Quote(c.text)})
}

func noArgs(build func() Constraint) Ctor {
	return func(args ...string) (Constraint, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: expected no arguments", ErrBadArguments)
		}
		return build(), nil
	}
}

func oneString(build func(string) Constraint) Ctor {
	return func(args ...string) (Constraint, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: expected 1 argument, got %d", ErrBadArguments, len(args))
		}
		return build(args[0]), nil
	}
}

func lengthCtor(build func(int) Constraint) Ctor {
	return func(args ...string) (Constraint, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: expected 1 length, got %d", ErrBadArguments, len(args))
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q is not a length", ErrBadArguments, args[0])
		}
		return build(n), nil
	}
}

func regexCtor(args ...string) (Constraint, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected 1 pattern, got %d", ErrBadArguments, len(args))
	}
	return compilePattern(args[0])
}

func stringInCtor(args ...string) (Constraint, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: expected at least one value", ErrBadArguments)
	}
	return StringIn(args...), nil
}
