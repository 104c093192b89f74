// Package naming translates Go field names into wire names and produces the
// comparable form used for case and separator insensitive lookups.
package naming

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Strategy maps declared field names to wire names.
type Strategy interface {
	// Format renders the wire name for a Go field name.
	Format(name string) string
	// Normalize returns the comparable key for a wire or field name.
	Normalize(name string) string
}

type strategy struct {
	format func(words []string) string
}

func (s strategy) Format(name string) string { return s.format(Words(name)) }
func (strategy) Normalize(name string) string { return Normalize(name) }

var (
	// Identity keeps field names unchanged.
	Identity Strategy = identity{}
	// Camel renders lowerCamelCase ("userID" -> "userId").
	Camel Strategy = strategy{format: func(w []string) string {
		if len(w) == 0 {
			return ""
		}
		return strings.ToLower(w[0]) + strings.Join(lo.Map(w[1:], title), "")
	}}
	// Pascal renders UpperCamelCase.
	Pascal Strategy = strategy{format: func(w []string) string { return strings.Join(lo.Map(w, title), "") }}
	// Snake renders snake_case.
	Snake Strategy = strategy{format: func(w []string) string { return strings.ToLower(strings.Join(w, "_")) }}
	// Kebab renders kebab-case.
	Kebab Strategy = strategy{format: func(w []string) string { return strings.ToLower(strings.Join(w, "-")) }}
)

type identity struct{}

func (identity) Format(name string) string    { return name }
func (identity) Normalize(name string) string { return Normalize(name) }

// Normalize lowercases name and drops whitespace and separators, so that
// "first_name", "First Name" and "firstName" compare equal.
func Normalize(name string) string {
	b := strings.Builder{}
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) || isSeparator(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isSeparator(r rune) bool { return r == '_' || r == '-' || r == '.' }

// Words splits an identifier on separators and case boundaries. Acronyms stay
// together: "HTTPServerID" -> ["HTTP", "Server", "ID"].
func Words(name string) []string {
	var words []string
	rs := []rune(name)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(rs[start:end]))
		}
		start = -1
	}
	for i, r := range rs {
		if unicode.IsSpace(r) || isSeparator(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := rs[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return words
}

func title(w string, _ int) string {
	rs := []rune(strings.ToLower(w))
	if len(rs) == 0 {
		return ""
	}
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
