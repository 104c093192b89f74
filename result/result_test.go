package result_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/transpose/result"
)

func TestResult_Immutable(t *testing.T) {
	var base result.Result
	withErr := base.WithErrors("a")
	withStage := base.WithStage(result.ContainerStage(result.Target{}))

	assert.True(t, base.Valid())
	assert.Empty(t, base.Stages())
	assert.False(t, withErr.Valid())
	assert.Equal(t, []string{"a"}, withErr.Errors())
	assert.Len(t, withStage.Stages(), 1)

	// appending to one branch never leaks into a sibling sharing the backing array
	b1 := withErr.WithErrors("b")
	b2 := withErr.WithErrors("c")
	assert.Equal(t, []string{"a", "b"}, b1.Errors())
	assert.Equal(t, []string{"a", "c"}, b2.Errors())
}

func TestResult_MergeOrder(t *testing.T) {
	left := result.Result{}.WithErrors("l1")
	right := result.Result{}.WithErrors("r1", "r2").WithStage(result.ValueStage(result.Target{}.Key("x"), 1))

	m := left.Merge(right)
	assert.Equal(t, []string{"l1", "r1", "r2"}, m.Errors())
	require.Len(t, m.Stages(), 1)
	g := m.Stages()[0]
	assert.Equal(t, result.StageGroup, g.Kind)
	require.Len(t, g.Group, 1)
	assert.Equal(t, result.StageValue, g.Group[0].Kind)
}

func TestResult_RunParentsFirst(t *testing.T) {
	root := result.Target{}
	items := root.Key("items")

	child := result.Result{}.
		WithStage(result.ValueStage(items.Index(0), "a")).
		WithStage(result.ValueStage(items.Index(1), "b")).
		WithStage(result.ArrayStage(items, 2))
	name := result.Result{}.WithStage(result.ValueStage(root.Key("name"), "n"))

	r := result.Result{}.Merge(child).Merge(name).WithStage(result.ContainerStage(root))

	d := result.NewDraft()
	require.NoError(t, r.Run(d))
	assert.Equal(t, map[string]any{"items": []any{"a", "b"}, "name": "n"}, d.Tree)
}

func TestResult_RunOutOfOrderFails(t *testing.T) {
	r := result.Result{}.
		WithStage(result.ValueStage(result.Target{}.Key("a").Key("b"), 1)).
		WithStage(result.ContainerStage(result.Target{}))
	err := r.Run(result.NewDraft())
	assert.ErrorIs(t, err, result.ErrNoContainer)
}

func TestResult_DefaultsAreCopied(t *testing.T) {
	def := []any{"x"}
	r := result.Result{}.
		WithStage(result.DefaultStage(result.Target{}.Key("tags"), def)).
		WithStage(result.ContainerStage(result.Target{}))

	d := result.NewDraft()
	require.NoError(t, r.Run(d))
	got := d.Object()["tags"].([]any)
	got[0] = "changed"
	assert.Equal(t, "x", def[0])
}

func TestResult_ResolveStage(t *testing.T) {
	typ := reflect.TypeOf(struct{ ID int }{})
	target := result.Target{}.Key("pet")
	r := result.Result{}.WithStage(result.ResolveStage(target, typ))

	d := result.NewDraft()
	require.NoError(t, r.Run(d))
	assert.Equal(t, typ, d.Types["/pet"])
}

func TestTarget_String(t *testing.T) {
	tg := result.Target{}.Key("a/b").Index(3).Key("c~d")
	assert.Equal(t, "/a~1b/3/c~0d", tg.String())
	assert.Equal(t, "", result.Target{}.String())
}
