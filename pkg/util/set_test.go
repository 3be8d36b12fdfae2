package util_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaotoio/kaoto/pkg/util"
)

func TestSetOf(t *testing.T) {
	s := util.SetOf("a", "b", "a", "c", "b")
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("a"))
	assert.True(t, s.Contains("c"))
	assert.False(t, s.Contains("d"))
}

func TestSetFrom(t *testing.T) {
	type item struct{ id string }
	s := util.SetFrom([]item{{"x"}, {"y"}, {"x"}}, func(i item) string {
		return i.id
	})
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("y"))
}

func TestSetAdd(t *testing.T) {
	s := util.Set[int]{}
	assert.True(t, s.Add(1))
	assert.True(t, s.Add(2))
	assert.False(t, s.Add(1))
	assert.Equal(t, 2, s.Len())
}

func TestSetFirstFree(t *testing.T) {
	name := func(n int) string { return "route-" + strconv.Itoa(n) }

	assert.Equal(t, "route-1", util.Set[string]{}.FirstFree(name))
	assert.Equal(t, "route-2",
		util.SetOf("route-1", "route-3").FirstFree(name),
	)
	assert.Equal(t, "route-4",
		util.SetOf("route-1", "route-2", "route-3").FirstFree(name),
	)
}
