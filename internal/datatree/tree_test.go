package datatree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_GetSetDelete(t *testing.T) {
	tree := New([]byte(`{"system":{"attributes":{"hp":{"value":12}}}}`))

	v, ok := tree.Get("system.attributes.hp.value")
	require.True(t, ok)
	assert.Equal(t, float64(12), v)

	_, ok = tree.Get("system.attributes.speed")
	assert.False(t, ok)

	require.NoError(t, tree.Set("system.attributes.speed.value", 25))
	assert.Equal(t, float64(25), tree.Float("system.attributes.speed.value"))

	require.NoError(t, tree.Delete("system.attributes.hp"))
	assert.False(t, tree.Exists("system.attributes.hp"))

	// Deleting again is harmless
	require.NoError(t, tree.Delete("system.attributes.hp"))
}

func TestTree_NullIsPresent(t *testing.T) {
	tree := New([]byte(`{"a":null}`))

	v, ok := tree.Get("a")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestTree_CloneIsIndependent(t *testing.T) {
	tree := New([]byte(`{"level":1}`))
	clone := tree.Clone()

	require.NoError(t, clone.Set("level", 5))
	assert.Equal(t, float64(1), tree.Float("level"))
	assert.Equal(t, float64(5), clone.Float("level"))
}

func TestTree_EscapedKeys(t *testing.T) {
	tree := New(nil)
	path := Join("flags", "pf2e", EscapeKey("weird.key"))

	require.NoError(t, tree.Set(path, true))
	assert.JSONEq(t, `{"flags":{"pf2e":{"weird.key":true}}}`, string(tree.Bytes()))
}

func TestTree_JSON(t *testing.T) {
	var holder struct {
		Data *Tree `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"x":[1,2]}}`), &holder))
	assert.Equal(t, float64(2), holder.Data.Float("x.1"))

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"x":[1,2]}}`, string(out))
}

func TestLookup(t *testing.T) {
	tree := New([]byte(`{"level":3}`))
	root := map[string]any{
		"actor": tree,
		"list":  []any{"a", map[string]any{"b": 2.0}},
	}

	v, ok := Lookup(root, "actor.level")
	require.True(t, ok)
	assert.Equal(t, float64(3), v)

	v, ok = Lookup(root, "list.1.b")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = Lookup(root, "list.7")
	assert.False(t, ok)

	_, ok = Lookup(root, "missing.path")
	assert.False(t, ok)
}
