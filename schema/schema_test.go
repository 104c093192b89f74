package schema_test

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/transpose/constraint"
	"github.com/reoring/transpose/naming"
	"github.com/reoring/transpose/schema"
)

type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type inner struct {
	Label string
}

type customer struct {
	Timestamps
	ID       uuid.UUID
	FullName string `check:"minLen=2"`
	Status   string `schema:"name=state" default:"active" check:"in=active|closed"`
	Score    float64
	Tags     []string          `checkElem:"notEmpty"`
	Labels   map[string]string `checkKey:"regex=^[a-z]+$"`
	Inner    *inner
	Extra    any
	Ignored  string `schema:"-"`
	secret   string
}

func TestFactory_Derive(t *testing.T) {
	f := schema.NewFactory()
	c, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)

	assert.Equal(t, []string{"CreatedAt", "UpdatedAt", "ID", "FullName", "state", "Score", "Tags", "Labels", "Inner", "Extra"}, c.WireNames())

	n, ok := c.Lookup("created_at")
	require.True(t, ok)
	assert.Equal(t, schema.KindDateTime, n.Kind())

	n, ok = c.Lookup("UpdatedAt")
	require.True(t, ok)
	assert.True(t, n.Nullable())

	n, ok = c.Lookup("STATE")
	require.True(t, ok)
	assert.Equal(t, "Status", n.Name())
	d, ok := n.Default()
	require.True(t, ok)
	assert.Equal(t, "active", d)

	n, _ = c.Lookup("Inner")
	assert.Equal(t, schema.KindNested, n.Kind())
	n, _ = c.Lookup("Extra")
	assert.Equal(t, schema.KindMixed, n.Kind())
	n, _ = c.Lookup("Tags")
	assert.Len(t, n.(schema.Container).ElementConstraints(), 1)

	_, ok = c.Lookup("Ignored")
	assert.False(t, ok)
	_, ok = c.Lookup("secret")
	assert.False(t, ok)
}

func TestFactory_IncludeUnexported(t *testing.T) {
	f := schema.NewFactory(schema.WithInclude(schema.IncludeAll))
	c, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)
	_, ok := c.Lookup("secret")
	assert.True(t, ok)
}

func TestFactory_Caching(t *testing.T) {
	f := schema.NewFactory()
	c1, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)
	c2, err := f.Derive(reflect.TypeOf((**customer)(nil)).Elem())
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	f.SetNaming(naming.Snake)
	c3, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)
	assert.NotSame(t, c1, c3)
	assert.Contains(t, c3.WireNames(), "full_name")
	assert.Contains(t, c3.WireNames(), "state")
}

func TestFactory_Invalidate(t *testing.T) {
	f := schema.NewFactory()
	c1, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)
	f.Invalidate()
	c2, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)
	assert.NotSame(t, c1, c2)
	assert.Equal(t, c1.WireNames(), c2.WireNames())

	c3, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)
	assert.Same(t, c2, c3)
}

type nullDefaults struct {
	Nick  *string `default:"null"`
	Motto string  `default:"null"`
	Rank  *int    `default:"null"`
}

func TestFactory_NullDefault(t *testing.T) {
	c, err := schema.NewFactory().Derive(reflect.TypeOf((*nullDefaults)(nil)).Elem())
	require.NoError(t, err)

	for name, want := range map[string]any{"Nick": nil, "Motto": "null", "Rank": nil} {
		n, ok := c.Lookup(name)
		require.True(t, ok, name)
		d, ok := n.Default()
		require.True(t, ok, name)
		assert.Equal(t, want, d, name)
	}
}

func TestFactory_ConcurrentDerive(t *testing.T) {
	f := schema.NewFactory()
	var wg sync.WaitGroup
	out := make([]*schema.Collection, 16)
	for i := range out {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
			assert.NoError(t, err)
			out[i] = c
		}()
	}
	wg.Wait()
	for _, c := range out[1:] {
		assert.Same(t, out[0], c)
	}
}

type badDefault struct {
	Age int `default:"abc"`
}

type badRegex struct {
	Code string `check:"regex=["`
}

type duplicateWire struct {
	First  string `json:"name"`
	Second string `json:"Name"`
}

type tinyDefault struct {
	Level int8 `default:"300"`
}

type wrongFamily struct {
	Flag bool `check:"gt=1"`
}

type unsupported struct {
	C chan int
}

func TestFactory_DefinitionErrors(t *testing.T) {
	f := schema.NewFactory()
	cases := []struct {
		typ  reflect.Type
		want error
	}{
		{reflect.TypeOf((*badDefault)(nil)).Elem(), schema.ErrIncompatibleDefault},
		{reflect.TypeOf((*tinyDefault)(nil)).Elem(), schema.ErrIncompatibleDefault},
		{reflect.TypeOf((*badRegex)(nil)).Elem(), constraint.ErrBadArguments},
		{reflect.TypeOf((*duplicateWire)(nil)).Elem(), schema.ErrDuplicateProperty},
		{reflect.TypeOf((*wrongFamily)(nil)).Elem(), schema.ErrConstraintFamily},
		{reflect.TypeOf((*unsupported)(nil)).Elem(), schema.ErrUnsupportedType},
		{reflect.TypeOf((*int)(nil)).Elem(), schema.ErrNotStruct},
	}
	for _, tc := range cases {
		_, err := f.Derive(tc.typ)
		assert.ErrorIs(t, err, tc.want, tc.typ.String())
	}

	var de *schema.DefinitionError
	_, err := f.Derive(reflect.TypeOf((*badDefault)(nil)).Elem())
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Age", de.Field)
}

func TestNodes_InvalidName(t *testing.T) {
	_, err := schema.NewString("1st")
	assert.ErrorIs(t, err, schema.ErrInvalidName)
	_, err = schema.NewInt("count", schema.WithDefault("x"))
	assert.ErrorIs(t, err, schema.ErrIncompatibleDefault)
	_, err = schema.NewInt("count", schema.WithDefault(nil))
	assert.ErrorIs(t, err, schema.ErrIncompatibleDefault)
	_, err = schema.NewInt("count", schema.WithDefault(nil), schema.WithNullable(true))
	assert.NoError(t, err)
}

func TestCollection_Sealed(t *testing.T) {
	a, err := schema.NewString("a")
	require.NoError(t, err)
	c, err := schema.NewCollection(nil, a)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Add(a), schema.ErrSealed)
	assert.ErrorIs(t, c.Remove("a"), schema.ErrSealed)
	assert.Equal(t, 1, c.Len())
}

type Animal interface{ Sound() string }

type Dog struct{ Name string }

func (Dog) Sound() string { return "woof" }

type Rock struct{}

func TestResolver(t *testing.T) {
	r := schema.NewResolver(nil)
	animal := reflect.TypeOf((*Animal)(nil)).Elem()

	assert.ErrorIs(t, r.Register(reflect.TypeOf((*Dog)(nil)).Elem(), reflect.TypeOf((*Dog)(nil)).Elem()), schema.ErrNotInterface)
	assert.ErrorIs(t, r.Register(animal, reflect.TypeOf((*Rock)(nil)).Elem()), schema.ErrNotImplemented)
	assert.ErrorIs(t, r.Register(animal, 42), schema.ErrBadResolution)

	_, err := r.Resolve(animal, nil)
	assert.ErrorIs(t, err, schema.ErrUnregistered)

	require.NoError(t, r.RegisterType(reflect.TypeOf((*Dog)(nil)).Elem()))
	require.NoError(t, r.Register(animal, func(frag map[string]any) any {
		frag["mutated"] = true
		return frag["kind"]
	}))

	frag := map[string]any{"kind": "Dog"}
	got, err := r.Resolve(animal, frag)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf((*Dog)(nil)).Elem(), got)
	assert.NotContains(t, frag, "mutated")

	_, err = r.Resolve(animal, map[string]any{"kind": "Cat"})
	assert.ErrorIs(t, err, schema.ErrUnknownType)
	_, err = r.Resolve(animal, map[string]any{})
	assert.ErrorIs(t, err, schema.ErrBadResolution)

	_, fixed := r.Fixed(animal)
	assert.False(t, fixed)
}

type zoo struct {
	Star   Animal
	Backup Animal `schema:"nullable"`
}

type node struct {
	Value int
	Next  *node
}

func TestCollection_JSONSchema(t *testing.T) {
	f := schema.NewFactory()
	c, err := f.Derive(reflect.TypeOf((*customer)(nil)).Elem())
	require.NoError(t, err)
	s, err := c.JSONSchema()
	require.NoError(t, err)

	assert.Equal(t, "customer", s.Title)
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"CreatedAt", "ID", "FullName", "Score", "Tags", "Labels"}, s.Required)
	assert.Equal(t, "date-time", s.Properties["CreatedAt"].Format)
	assert.Equal(t, []string{"string", "null"}, s.Properties["UpdatedAt"].Type)
	assert.Equal(t, "active", s.Properties["state"].Default)
	assert.Equal(t, []any{"active", "closed"}, s.Properties["state"].Enum)
	require.NotNil(t, s.Properties["FullName"].MinLength)
	assert.Equal(t, 2, *s.Properties["FullName"].MinLength)
	assert.Equal(t, "^[a-z]+$", s.Properties["Labels"].PropertyNames.Pattern)
	assert.Equal(t, "array", s.Properties["Tags"].Type)
	require.Len(t, s.Properties["Inner"].OneOf, 2)
	assert.Equal(t, "#/$defs/inner", s.Properties["Inner"].OneOf[0].Ref)
	assert.Contains(t, s.Defs, "inner")

	lc, err := f.Derive(reflect.TypeOf((*node)(nil)).Elem())
	require.NoError(t, err)
	ls, err := lc.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/node", ls.Properties["Next"].OneOf[0].Ref)
	assert.Equal(t, "integer", ls.Defs["node"].Properties["Value"].Type)

	require.NoError(t, f.Resolver().Register(reflect.TypeOf((*Animal)(nil)).Elem(), reflect.TypeOf((*Dog)(nil)).Elem()))
	zc, err := f.Derive(reflect.TypeOf((*zoo)(nil)).Elem())
	require.NoError(t, err)
	zs, err := zc.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/Dog", zs.Properties["Star"].Ref)
	assert.Len(t, zs.Properties["Backup"].OneOf, 2)
}
