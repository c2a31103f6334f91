package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterKeepsOrderAndNeverNil(t *testing.T) {
	got := Filter([]int{5, 1, 4, 2}, func(n int) bool { return n > 1 })
	assert.Equal(t, []int{5, 4, 2}, got)

	empty := Filter([]int{1}, func(int) bool { return false })
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestIsSubset(t *testing.T) {
	assert.True(t, IsSubset([]int64{}, []int64{1}))
	assert.True(t, IsSubset[int64](nil, nil))
	assert.True(t, IsSubset([]int64{1, 3}, []int64{3, 2, 1}))
	assert.False(t, IsSubset([]int64{1, 4}, []int64{3, 2, 1}))
}

func TestUniqAndFind(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, Uniq([]string{"b", "a", "b"}))

	v, ok := Find([]string{"x", "yy"}, func(s string) bool { return len(s) == 2 })
	assert.True(t, ok)
	assert.Equal(t, "yy", v)
	_, ok = Find([]string{}, func(string) bool { return true })
	assert.False(t, ok)
}

func TestStringHelpers(t *testing.T) {
	assert.True(t, ContainsFold("Anna Karenina", "KAREN"))
	assert.False(t, ContainsFold("anna", "bob"))
	assert.True(t, EqualFoldAny("Go", "rust", "GO"))
	assert.EqualError(t, NewError("bad %d", 1), "[ERROR] bad 1")
}
