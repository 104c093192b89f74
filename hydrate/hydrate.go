// Package hydrate builds Go values from validated drafts.
package hydrate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reoring/transpose/internal/value"
	"github.com/reoring/transpose/result"
)

// Hydrator turns a validated draft into a value of type t.
type Hydrator interface {
	Hydrate(t reflect.Type, d *result.Draft) (any, error)
}

var (
	ErrMismatch       = errors.New("value does not fit the field type")
	ErrOverflow       = errors.New("number overflows the field type")
	ErrNoConcreteType = errors.New("no concrete type recorded for interface field")
	ErrUnknownField   = errors.New("no such field")
)

// Error locates a hydration failure by draft target.
type Error struct {
	Target string
	Type   reflect.Type
	Err    error
}

func (e *Error) Error() string {
	target := e.Target
	if target == "" {
		target = "/"
	}
	return fmt.Sprintf("hydrate %s (%v): %v", target, e.Type, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Reflect is the reflection based Hydrator. Unexported fields are written
// when the draft carries them.
type Reflect struct {
	log *zap.Logger
}

// NewReflect returns a Reflect hydrator. A nil logger disables logging.
func NewReflect(log *zap.Logger) *Reflect {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reflect{log: log}
}

func (h *Reflect) Hydrate(t reflect.Type, d *result.Draft) (any, error) {
	out := reflect.New(t).Elem()
	if err := h.assign(out, d.Tree, "", d.Types); err != nil {
		h.log.Debug("hydration failed", zap.Stringer("type", t), zap.Error(err))
		return nil, err
	}
	return out.Interface(), nil
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

func join(target, key string) string { return target + "/" + escaper.Replace(key) }

func fail(target string, t reflect.Type, err error) error {
	return &Error{Target: target, Type: t, Err: err}
}

// writable returns a settable view of v, reaching through unexported fields.
func writable(v reflect.Value) reflect.Value {
	if v.CanSet() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

func (h *Reflect) assign(dst reflect.Value, v any, target string, types map[string]reflect.Type) error {
	dst = writable(dst)
	t := dst.Type()
	if v == nil {
		dst.SetZero()
		return nil
	}
	if t.Kind() == reflect.Pointer {
		p := reflect.New(t.Elem())
		if err := h.assign(p.Elem(), v, target, types); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	switch t {
	case timeType, uuidType:
		rv := reflect.ValueOf(v)
		if rv.Type() != t {
			return fail(target, t, ErrMismatch)
		}
		dst.Set(rv)
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return fail(target, t, ErrMismatch)
		}
		return h.fill(dst, m, target, types)
	case reflect.Interface:
		return h.iface(dst, v, target, types)
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return fail(target, t, ErrMismatch)
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, _, isInt, ok := value.Number(v)
		if !ok || !isInt {
			return fail(target, t, ErrMismatch)
		}
		if dst.OverflowInt(i) {
			return fail(target, t, fmt.Errorf("%w: %d", ErrOverflow, i))
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, _, isInt, ok := value.Number(v)
		if !ok || !isInt {
			return fail(target, t, ErrMismatch)
		}
		if i < 0 || dst.OverflowUint(uint64(i)) {
			return fail(target, t, fmt.Errorf("%w: %d", ErrOverflow, i))
		}
		dst.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		_, f, _, ok := value.Number(v)
		if !ok {
			return fail(target, t, ErrMismatch)
		}
		if dst.OverflowFloat(f) {
			return fail(target, t, fmt.Errorf("%w: %g", ErrOverflow, f))
		}
		dst.SetFloat(f)
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return fail(target, t, ErrMismatch)
		}
		dst.SetString(s)
	case reflect.Slice, reflect.Array:
		a, ok := v.([]any)
		if !ok {
			return fail(target, t, ErrMismatch)
		}
		out := dst
		if t.Kind() == reflect.Slice {
			out = reflect.MakeSlice(t, len(a), len(a))
		} else if len(a) > t.Len() {
			return fail(target, t, fmt.Errorf("%w: %d elements for %d slots", ErrOverflow, len(a), t.Len()))
		}
		for i, e := range a {
			if err := h.assign(out.Index(i), e, target+"/"+strconv.Itoa(i), types); err != nil {
				return err
			}
		}
		if t.Kind() == reflect.Slice {
			dst.Set(out)
		}
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok {
			return fail(target, t, ErrMismatch)
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for k, e := range m {
			ev := reflect.New(t.Elem()).Elem()
			if err := h.assign(ev, e, join(target, k), types); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		dst.Set(out)
	default:
		return fail(target, t, ErrMismatch)
	}
	return nil
}

// fill writes an object into a struct. Keys are Go field names, promoted
// fields included; nil embedded pointers on the way are allocated.
func (h *Reflect) fill(dst reflect.Value, m map[string]any, target string, types map[string]reflect.Type) error {
	t := dst.Type()
	for name, v := range m {
		sf, ok := t.FieldByName(name)
		if !ok {
			return fail(join(target, name), t, fmt.Errorf("%w: %s", ErrUnknownField, name))
		}
		f := dst
		for i, idx := range sf.Index {
			if i > 0 && f.Kind() == reflect.Pointer {
				if f.IsNil() {
					f = writable(f)
					f.Set(reflect.New(f.Type().Elem()))
				}
				f = f.Elem()
			}
			f = f.Field(idx)
		}
		if err := h.assign(f, v, join(target, name), types); err != nil {
			return err
		}
	}
	return nil
}

// iface fills an interface field. The empty interface takes the plain value;
// other interfaces take the concrete type recorded for the target, as a value
// when it implements the interface and as a pointer otherwise.
func (h *Reflect) iface(dst reflect.Value, v any, target string, types map[string]reflect.Type) error {
	t := dst.Type()
	if t.NumMethod() == 0 {
		dst.Set(reflect.ValueOf(v))
		return nil
	}
	concrete, ok := types[target]
	if !ok {
		return fail(target, t, ErrNoConcreteType)
	}
	p := reflect.New(concrete)
	if err := h.assign(p.Elem(), v, target, types); err != nil {
		return err
	}
	switch {
	case concrete.Implements(t):
		dst.Set(p.Elem())
	case p.Type().Implements(t):
		dst.Set(p)
	default:
		return fail(target, t, fmt.Errorf("%w: %v does not implement it", ErrMismatch, concrete))
	}
	return nil
}
