package result

import (
	"strconv"
	"strings"
)

// Segment is one step of a Target: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Target addresses a slot in a Draft tree. Struct frames are keyed by Go
// field name, maps by their data keys. Targets are immutable.
type Target struct{ segs []Segment }

// Key returns a target one object key deeper.
func (t Target) Key(k string) Target { return t.with(Segment{Key: k}) }

// Index returns a target one array index deeper.
func (t Target) Index(i int) Target { return t.with(Segment{Index: i, IsIndex: true}) }

func (t Target) with(s Segment) Target {
	segs := make([]Segment, len(t.segs), len(t.segs)+1)
	copy(segs, t.segs)
	return Target{segs: append(segs, s)}
}

// IsRoot reports whether t addresses the document root.
func (t Target) IsRoot() bool { return len(t.segs) == 0 }

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// String renders the target as a JSON Pointer ("" for the root).
func (t Target) String() string {
	b := &strings.Builder{}
	for _, s := range t.segs {
		b.WriteByte('/')
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
		} else {
			b.WriteString(escaper.Replace(s.Key))
		}
	}
	return b.String()
}
