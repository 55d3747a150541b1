package motionplan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodePoolClaimAndFull(t *testing.T) {
	pool := newNodePool(2)
	assert.False(t, pool.full())

	idx1, ok := pool.claim()
	require.True(t, ok)
	assert.Equal(t, 0, idx1)

	idx2, ok := pool.claim()
	require.True(t, ok)
	assert.Equal(t, 1, idx2)

	assert.True(t, pool.full())
	_, ok = pool.claim()
	assert.False(t, ok, "claim on a full pool must report failure, not panic")
}

func TestNodePoolResetReusesSlots(t *testing.T) {
	pool := newNodePool(1)
	idx, ok := pool.claim()
	require.True(t, ok)
	pool.at(idx).costFromStart = 42

	pool.reset()
	assert.Equal(t, 0, pool.size())
	assert.Equal(t, float64(0), pool.at(0).costFromStart)
	assert.Equal(t, noParent, pool.at(0).parent)

	_, ok = pool.claim()
	assert.True(t, ok, "reset must make slots claimable again")
}

func TestPathToRootOrdering(t *testing.T) {
	pool := newNodePool(3)
	root, _ := pool.claim()
	pool.at(root).parent = noParent

	child, _ := pool.claim()
	pool.at(child).parent = root

	grandchild, _ := pool.claim()
	pool.at(grandchild).parent = child

	path := pool.pathToRoot(grandchild)
	assert.Equal(t, []int{root, child, grandchild}, path)
}

func TestReachableFromRootDetectsCycle(t *testing.T) {
	pool := newNodePool(2)
	a, _ := pool.claim()
	b, _ := pool.claim()
	pool.at(a).parent = b
	pool.at(b).parent = a // artificial cycle

	assert.False(t, pool.reachableFromRoot(a, 10))
}

func TestIsCostValid(t *testing.T) {
	assert.True(t, isCostValid(0))
	assert.True(t, isCostValid(123.4))
	assert.False(t, isCostValid(math.NaN()))
	assert.False(t, isCostValid(math.Inf(1)))
}
