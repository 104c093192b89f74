package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	assert.Equal(t, int64(3), Canonical(3))
	assert.Equal(t, int64(3), Canonical(uint8(3)))
	assert.Equal(t, float64(math.MaxUint64), Canonical(uint64(math.MaxUint64)))
	assert.Equal(t, 1.5, Canonical(float32(1.5)))
	assert.Equal(t, int64(10), Canonical(json.Number("10")))
	assert.Equal(t, 10.0, Canonical(json.Number("10.0")))
	assert.Equal(t, 1e3, Canonical(json.Number("1e3")))
	assert.Equal(t, 1e20, Canonical(json.Number("100000000000000000000")))
}

func TestCanonicalTree(t *testing.T) {
	in := map[string]any{
		"a": []any{1, json.Number("2.5")},
		"b": map[any]any{"c": uint16(4)},
	}
	got, err := CanonicalTree(in)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": []any{int64(1), 2.5},
		"b": map[string]any{"c": int64(4)},
	}, got)
	assert.Equal(t, 1, in["a"].([]any)[0])

	_, err = CanonicalTree(map[any]any{1: "x"})
	assert.Error(t, err)
}

func TestCompareAndSame(t *testing.T) {
	c, ok := Compare(1, 1.5)
	assert.True(t, ok)
	assert.Equal(t, -1, c)
	c, ok = Compare(int64(math.MaxInt64), int64(math.MaxInt64-1))
	assert.True(t, ok)
	assert.Equal(t, 1, c)
	_, ok = Compare("1", 1)
	assert.False(t, ok)

	assert.True(t, Same(1, int64(1)))
	assert.False(t, Same(1, 1.0))
	assert.True(t, Same(nil, nil))
	assert.False(t, Same([]any{}, []any{}))
}

func TestTypeNameAndRender(t *testing.T) {
	assert.Equal(t, "null", TypeName(nil))
	assert.Equal(t, "int", TypeName(uint32(1)))
	assert.Equal(t, "array", TypeName([]any{}))
	assert.Equal(t, "UUID", TypeName(uuid.Nil))

	assert.Equal(t, `"x"`, Render("x"))
	assert.Equal(t, "2.0", Render(2.0))
	assert.Equal(t, "2.5", Render(2.5))
	assert.Equal(t, "-1", Render(-1))
	assert.Equal(t, "object", Render(map[string]any{}))
	assert.Equal(t, `"`+uuid.Nil.String()+`"`, Render(uuid.Nil))
}
