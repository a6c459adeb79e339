package walkroute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubsets(t *testing.T) {
	assert.Nil(t, Subsets(0))
	assert.Equal(t, [][]int{{0}, {1}, {0, 1}, {2}, {0, 2}, {1, 2}, {0, 1, 2}}, Subsets(3))
	assert.Len(t, Subsets(10), 1023)
}

func TestOrderingsComplete(t *testing.T) {
	assert.Nil(t, Orderings(0, 24))
	assert.Equal(t, [][]int{{0}}, Orderings(1, 24))
	assert.Equal(t, [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}, Orderings(3, 24))
	assert.Len(t, Orderings(4, 24), 24)
}

func TestOrderingsCapped(t *testing.T) {
	orderings := Orderings(5, 24)
	require.Len(t, orderings, 24)

	seen := map[string]bool{}
	leads := map[int]bool{}
	for _, ordering := range orderings {
		require.Len(t, ordering, 5)
		key := orderingKey(ordering)
		assert.False(t, seen[key])
		seen[key] = true
		leads[ordering[0]] = true
	}
	// Cyclic shifts make every signal lead at least once
	assert.Len(t, leads, 5)
	assert.Equal(t, []int{4, 0, 1, 2, 3}, orderings[23])

	tight := Orderings(6, 3)
	require.Len(t, tight, 3)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, tight[0])
	assert.Equal(t, []int{1, 2, 3, 4, 5, 0}, tight[1])
}
