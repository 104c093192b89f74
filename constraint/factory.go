package constraint

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	gojson "github.com/goccy/go-json"
)

// Ctor builds a constraint from its textual constructor arguments.
type Ctor func(args ...string) (Constraint, error)

type cached struct {
	key string
	c   Constraint
}

// Factory creates constraints by name and shares one instance per distinct
// (name, arguments) pair. It is safe for concurrent use.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Ctor
	cache map[uint64][]cached
}

// NewFactory returns a factory with the built-in constraints registered.
func NewFactory() *Factory {
	f := &Factory{ctors: map[string]Ctor{}, cache: map[uint64][]cached{}}
	for name, ctor := range builtins() {
		f.ctors[name] = ctor
	}
	return f
}

func builtins() map[string]Ctor {
	return map[string]Ctor{
		"gt":       numberCtor(GreaterThan),
		"gte":      numberCtor(GreaterOrEqual),
		"lt":       numberCtor(LessThan),
		"lte":      numberCtor(LessOrEqual),
		"ne":       numberCtor(NotEqual),
		"numberIn": numberInCtor,
		"stringIn": stringInCtor,
		"regex":    regexCtor,
		"email":    noArgs(Email),
		"uuid":     noArgs(UUID),
		"notEmpty": noArgs(NotEmpty),
		"minLen":   lengthCtor(MinLength),
		"maxLen":   lengthCtor(MaxLength),
		"prefix":   oneString(Prefix),
		"suffix":   oneString(Suffix),
	}
}

var defaultFactory = NewFactory()

// Default returns the process-wide factory.
func Default() *Factory { return defaultFactory }

// Register adds or replaces a named constructor. Cached instances built by a
// replaced constructor are dropped.
func (f *Factory) Register(name string, ctor Ctor) error {
	if strings.TrimSpace(name) == "" || ctor == nil {
		return &Error{Name: name, Err: fmt.Errorf("%w: name and constructor are required", ErrBadArguments)}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ctors[name]; ok {
		for h, bucket := range f.cache {
			kept := bucket[:0]
			for _, e := range bucket {
				if !strings.HasPrefix(e.key, name+"\x00") {
					kept = append(kept, e)
				}
			}
			f.cache[h] = kept
		}
	}
	f.ctors[name] = ctor
	return nil
}

// Get returns the shared constraint for name and args, constructing it on
// first use.
func (f *Factory) Get(name string, args ...string) (Constraint, error) {
	key, err := cacheKey(name, args)
	if err != nil {
		return nil, &Error{Name: name, Args: args, Err: err}
	}
	h := xxhash.Sum64String(key)

	f.mu.RLock()
	c, ok := lookup(f.cache[h], key)
	f.mu.RUnlock()
	if ok {
		return c, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := lookup(f.cache[h], key); ok {
		return c, nil
	}
	ctor, ok := f.ctors[name]
	if !ok {
		return nil, &Error{Name: name, Args: args, Err: ErrUnknownConstraint}
	}
	c, err = ctor(args...)
	if err != nil {
		return nil, &Error{Name: name, Args: args, Err: err}
	}
	if c == nil {
		return nil, &Error{Name: name, Args: args, Err: ErrNotConstraint}
	}
	f.cache[h] = append(f.cache[h], cached{key: key, c: c})
	return c, nil
}

func lookup(bucket []cached, key string) (Constraint, bool) {
	for _, e := range bucket {
		if e.key == key {
			return e.c, true
		}
	}
	return nil, false
}

// cacheKey is the name followed by the JSON encoding of args, so that
// ("a,b") and ("a", "b") never collide.
func cacheKey(name string, args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	b, err := gojson.Marshal(args)
	if err != nil {
		return "", err
	}
	return name + "\x00" + string(b), nil
}
