package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaotoio/kaoto/pkg/util"
)

func TestPathTreeCollectPrefix(t *testing.T) {
	tree := util.NewPathTree[int]()
	tree.Insert([]string{"1", "branches", "0", "steps", "0"}, 1)
	tree.Insert([]string{"1", "branches", "0", "steps", "1"}, 2)
	tree.Insert([]string{"1", "branches", "1", "steps", "0"}, 3)
	tree.Insert([]string{"2", "branches", "0", "steps", "0"}, 4)

	vals := tree.Collect([]string{"1", "branches", "0"})
	assert.ElementsMatch(t, []int{1, 2}, vals)

	vals = tree.Collect([]string{"1"})
	assert.ElementsMatch(t, []int{1, 2, 3}, vals)

	vals = tree.Collect([]string{"3"})
	assert.Nil(t, vals)

	assert.Equal(t, 4, tree.Len())
	assert.Len(t, tree.Collect(nil), 4)
}

func TestPathTreeExactOverwrite(t *testing.T) {
	tree := util.NewPathTree[string]()
	tree.Insert([]string{"x"}, "one")
	tree.Insert([]string{"x"}, "two")

	v, ok := tree.Get([]string{"x"})
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	assert.Equal(t, 1, tree.Len())

	tree.Insert([]string{"x", "y"}, "z")
	_, ok = tree.Get([]string{"x", "q"})
	assert.False(t, ok)

	vals := tree.Collect([]string{"x"})
	assert.ElementsMatch(t, []string{"two", "z"}, vals)
}

func TestPathTreeIntermediateHasNoValue(t *testing.T) {
	tree := util.NewPathTree[int]()
	tree.Insert([]string{"a", "b"}, 1)

	_, ok := tree.Get([]string{"a"})
	assert.False(t, ok)

	vals := tree.Collect([]string{"a"})
	assert.Equal(t, []int{1}, vals)
}
