package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedKeys(t *testing.T) {
	r := Record{"zebra": 1, "apple": 2, "Banana": 3}
	assert.Equal(t, []string{"Banana", "apple", "zebra"}, r.SortedKeys())
}

func TestClone_IsDeep(t *testing.T) {
	orig := Record{
		"task": map[string]any{"title": "A"},
		"tags": []any{"x"},
	}
	c := orig.Clone()
	c["task"].(map[string]any)["title"] = "B"
	c["tags"].([]any)[0] = "y"

	assert.Equal(t, "A", orig["task"].(map[string]any)["title"])
	assert.Equal(t, "x", orig["tags"].([]any)[0])
}

func TestClone_Nil(t *testing.T) {
	var r Record
	assert.Nil(t, r.Clone())
}

func TestLookup(t *testing.T) {
	r := Record{
		"id":   int64(3),
		"meta": map[string]any{"owner": "sam"},
	}

	v, ok := r.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)

	v, ok = r.Lookup("meta.owner")
	require.True(t, ok)
	assert.Equal(t, "sam", v)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	_, ok = r.Lookup("id.nested")
	assert.False(t, ok)

	_, ok = r.Lookup("")
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	r := Record{}
	require.NoError(t, r.Set("id", int64(1)))
	require.NoError(t, r.Set("meta.id", "x"))

	assert.Equal(t, int64(1), r["id"])
	v, ok := r.Lookup("meta.id")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestSet_ThroughScalarFails(t *testing.T) {
	r := Record{"id": int64(1)}
	err := r.Set("id.sub", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an object")
}

func TestSet_EmptyPath(t *testing.T) {
	assert.Error(t, Record{}.Set("", 1))
}
