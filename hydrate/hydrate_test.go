package hydrate_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/transpose/hydrate"
	"github.com/reoring/transpose/result"
)

type Base struct {
	ID int64
}

type audit struct {
	By string
}

type Shape interface{ Area() float64 }

type square struct{ Side float64 }

func (s square) Area() float64 { return s.Side * s.Side }

type circle struct{ R float64 }

func (c *circle) Area() float64 { return math.Pi * c.R * c.R }

type document struct {
	*Base
	audit
	Title   string
	Small   int8
	Count   uint16
	Ratio   float32
	Note    *string
	Tags    []string
	Pair    [2]int
	Attrs   map[string]float64
	At      time.Time
	Ref     uuid.UUID
	Extra   any
	Shape   Shape
	Shapes  []Shape
	private bool
}

func TestReflect_Hydrate(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ref := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	d := result.NewDraft()
	d.Tree = map[string]any{
		"ID":      int64(7),
		"By":      "ops",
		"Title":   "t",
		"Small":   int64(-3),
		"Count":   int64(9),
		"Ratio":   0.5,
		"Note":    "n",
		"Tags":    []any{"a", "b"},
		"Pair":    []any{int64(1), int64(2)},
		"Attrs":   map[string]any{"x": 1.5},
		"At":      at,
		"Ref":     ref,
		"Extra":   map[string]any{"k": int64(1)},
		"Shape":   map[string]any{"Side": 2.0},
		"Shapes":  []any{map[string]any{"R": 1.0}},
		"private": true,
	}
	d.Types["/Shape"] = reflect.TypeOf((*square)(nil)).Elem()
	d.Types["/Shapes/0"] = reflect.TypeOf((*circle)(nil)).Elem()

	v, err := hydrate.NewReflect(nil).Hydrate(reflect.TypeOf((*document)(nil)).Elem(), d)
	require.NoError(t, err)
	doc := v.(document)

	require.NotNil(t, doc.Base)
	assert.Equal(t, int64(7), doc.ID)
	assert.Equal(t, "ops", doc.By)
	assert.Equal(t, "t", doc.Title)
	assert.Equal(t, int8(-3), doc.Small)
	assert.Equal(t, uint16(9), doc.Count)
	assert.Equal(t, float32(0.5), doc.Ratio)
	require.NotNil(t, doc.Note)
	assert.Equal(t, "n", *doc.Note)
	assert.Equal(t, []string{"a", "b"}, doc.Tags)
	assert.Equal(t, [2]int{1, 2}, doc.Pair)
	assert.Equal(t, map[string]float64{"x": 1.5}, doc.Attrs)
	assert.Equal(t, at, doc.At)
	assert.Equal(t, ref, doc.Ref)
	assert.Equal(t, map[string]any{"k": int64(1)}, doc.Extra)
	assert.Equal(t, square{Side: 2}, doc.Shape)
	require.Len(t, doc.Shapes, 1)
	assert.Equal(t, &circle{R: 1}, doc.Shapes[0])
	assert.True(t, doc.private)
}

func TestReflect_NullClearsPointers(t *testing.T) {
	d := result.NewDraft()
	d.Tree = map[string]any{"Note": nil, "Title": "x"}
	v, err := hydrate.NewReflect(nil).Hydrate(reflect.TypeOf((*document)(nil)).Elem(), d)
	require.NoError(t, err)
	assert.Nil(t, v.(document).Note)
}

func TestReflect_Overflow(t *testing.T) {
	d := result.NewDraft()
	d.Tree = map[string]any{"Small": int64(300)}
	_, err := hydrate.NewReflect(nil).Hydrate(reflect.TypeOf((*document)(nil)).Elem(), d)
	require.ErrorIs(t, err, hydrate.ErrOverflow)
	var he *hydrate.Error
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "/Small", he.Target)

	d.Tree = map[string]any{"Count": int64(-1)}
	_, err = hydrate.NewReflect(nil).Hydrate(reflect.TypeOf((*document)(nil)).Elem(), d)
	assert.ErrorIs(t, err, hydrate.ErrOverflow)
}

func TestReflect_MissingConcreteType(t *testing.T) {
	d := result.NewDraft()
	d.Tree = map[string]any{"Shape": map[string]any{"Side": 1.0}}
	_, err := hydrate.NewReflect(nil).Hydrate(reflect.TypeOf((*document)(nil)).Elem(), d)
	assert.ErrorIs(t, err, hydrate.ErrNoConcreteType)
}

func TestReflect_Mismatch(t *testing.T) {
	d := result.NewDraft()
	d.Tree = map[string]any{"Title": int64(1)}
	_, err := hydrate.NewReflect(nil).Hydrate(reflect.TypeOf((*document)(nil)).Elem(), d)
	assert.ErrorIs(t, err, hydrate.ErrMismatch)
}
