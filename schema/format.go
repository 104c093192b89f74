package schema

import (
	"time"

	"github.com/google/uuid"

	"github.com/reoring/transpose/codec"
	"github.com/reoring/transpose/i18n"
	"github.com/reoring/transpose/internal/value"
	"github.com/reoring/transpose/location"
	"github.com/reoring/transpose/result"
)

// DateTime is a time.Time property fed by ISO-8601 strings.
type DateTime struct{ base }

// NewDateTime builds a date-time node. A string default is parsed eagerly.
func NewDateTime(name string, opts ...Option) (*DateTime, error) {
	b, err := newBase(KindDateTime, name, func(v any) bool {
		_, ok := toTime(v)
		return ok
	}, opts)
	if err != nil {
		return nil, err
	}
	if b.def != nil {
		b.def, _ = toTime(b.def)
	}
	if err := b.forbidChecks(); err != nil {
		return nil, err
	}
	return &DateTime{b}, nil
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		tm, err := codec.ParseDateTime(t)
		return tm, err == nil
	}
	return time.Time{}, false
}

func (n *DateTime) Check(p location.Path, v any) result.Result {
	return formatCheck(n, p, v, i18n.CodeDateTime, func(v any) bool {
		_, ok := toTime(v)
		return ok
	})
}

// Normalize returns a time.Time.
func (n *DateTime) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	if t, ok := toTime(v); ok {
		return t
	}
	return n.fallback(time.Time{})
}

// UUID is a uuid.UUID property fed by canonical UUID strings.
type UUID struct{ base }

// NewUUID builds a UUID node. A string default is parsed eagerly.
func NewUUID(name string, opts ...Option) (*UUID, error) {
	b, err := newBase(KindUUID, name, func(v any) bool {
		_, ok := toUUID(v)
		return ok
	}, opts)
	if err != nil {
		return nil, err
	}
	if b.def != nil {
		b.def, _ = toUUID(b.def)
	}
	if err := b.forbidChecks(); err != nil {
		return nil, err
	}
	return &UUID{b}, nil
}

func toUUID(v any) (uuid.UUID, bool) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, true
	case string:
		u, err := codec.ParseUUID(t)
		return u, err == nil
	}
	return uuid.Nil, false
}

func (n *UUID) Check(p location.Path, v any) result.Result {
	return formatCheck(n, p, v, i18n.CodeUUID, func(v any) bool {
		_, ok := toUUID(v)
		return ok
	})
}

// Normalize returns a uuid.UUID.
func (n *UUID) Normalize(v any) any {
	if v == nil && n.nullable {
		return nil
	}
	if u, ok := toUUID(v); ok {
		return u
	}
	return n.fallback(uuid.Nil)
}

// formatCheck distinguishes a string in the wrong format from a value of the
// wrong type.
func formatCheck(n Node, p location.Path, v any, code string, parses func(any) bool) result.Result {
	var r result.Result
	if _, isStr := v.(string); isStr && !parses(v) {
		return r.WithErrors(i18n.T(code, map[string]string{"path": p.String(), "given": value.Render(v)}))
	}
	return check(n, parses, p, v)
}
