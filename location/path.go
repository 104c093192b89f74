package location

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ErrEmptyKey is returned when an object key is empty after trimming.
var ErrEmptyKey = errors.New("location: object key must not be empty")

const rootMarker = "$"

var identifierKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type segmentKind uint8

const (
	segmentRoot segmentKind = iota
	segmentKey
	segmentIndex
)

// Path is an immutable, append-only pointer into a JSON-shaped document.
// The zero value is the root path.
type Path struct {
	parent *Path
	kind   segmentKind
	key    string
	index  int
	depth  int
}

// Root returns the root path, rendered as "$".
func Root() Path { return Path{} }

// WithObjectKey returns a new path with an object key appended.
func (p Path) WithObjectKey(key string) (Path, error) {
	if strings.TrimFunc(key, isStructural) == "" {
		return Path{}, ErrEmptyKey
	}
	parent := p
	return Path{parent: &parent, kind: segmentKey, key: key, depth: p.depth + 1}, nil
}

// WithArrayKey returns a new path with an array index appended.
func (p Path) WithArrayKey(index int) Path {
	parent := p
	return Path{parent: &parent, kind: segmentIndex, index: index, depth: p.depth + 1}
}

// Depth is the number of segments below the root.
func (p Path) Depth() int { return p.depth }

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool { return p.depth == 0 }

// String renders the path: `$.a[2]["b c"]`.
func (p Path) String() string {
	segs := p.segments()
	b := &strings.Builder{}
	b.WriteString(rootMarker)
	for _, s := range segs {
		switch s.kind {
		case segmentKey:
			if identifierKey.MatchString(s.key) {
				b.WriteByte('.')
				b.WriteString(s.key)
			} else {
				b.WriteByte('[')
				b.WriteString(strconv.Quote(s.key))
				b.WriteByte(']')
			}
		case segmentIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func (p Path) segments() []Path {
	segs := make([]Path, p.depth)
	cur := p
	for i := p.depth - 1; i >= 0; i-- {
		segs[i] = cur
		cur = *cur.parent
	}
	return segs
}

func isStructural(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', '[', ']', '"', '\'':
		return true
	}
	return false
}
