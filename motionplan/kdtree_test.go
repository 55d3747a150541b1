package motionplan

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKDTreeNearestSinglePoint(t *testing.T) {
	tree := newKDTree()
	require.NoError(t, tree.insert(r3.Vector{X: 1, Y: 2, Z: 3}, 7))

	idx, ok := tree.nearest(r3.Vector{X: 1, Y: 2, Z: 3})
	require.True(t, ok)
	assert.Equal(t, 7, idx)
}

func TestKDTreeNearestEmpty(t *testing.T) {
	tree := newKDTree()
	_, ok := tree.nearest(r3.Vector{})
	assert.False(t, ok)
}

func TestKDTreeNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tree := newKDTree()

	type pt struct {
		pos     r3.Vector
		payload int
	}
	var pts []pt
	for i := 0; i < 200; i++ {
		p := r3.Vector{X: rng.Float64() * 10, Y: rng.Float64() * 10, Z: rng.Float64() * 10}
		require.NoError(t, tree.insert(p, i))
		pts = append(pts, pt{p, i})
	}

	for q := 0; q < 20; q++ {
		query := r3.Vector{X: rng.Float64() * 10, Y: rng.Float64() * 10, Z: rng.Float64() * 10}

		bestIdx := -1
		bestDist := -1.0
		for _, p := range pts {
			d := p.pos.Sub(query).Norm2()
			if bestIdx == -1 || d < bestDist {
				bestDist = d
				bestIdx = p.payload
			}
		}

		gotIdx, ok := tree.nearest(query)
		require.True(t, ok)
		assert.Equal(t, bestIdx, gotIdx)
	}
}

func TestKDTreeRadiusQuery(t *testing.T) {
	tree := newKDTree()
	require.NoError(t, tree.insert(r3.Vector{X: 0, Y: 0, Z: 0}, 0))
	require.NoError(t, tree.insert(r3.Vector{X: 1, Y: 0, Z: 0}, 1))
	require.NoError(t, tree.insert(r3.Vector{X: 5, Y: 0, Z: 0}, 2))

	got := tree.radiusQuery(r3.Vector{}, 2)
	sort.Ints(got)
	assert.Equal(t, []int{0, 1}, got)
}

func TestKDTreeResetClearsState(t *testing.T) {
	tree := newKDTree()
	require.NoError(t, tree.insert(r3.Vector{X: 1}, 0))
	tree.reset()
	assert.Equal(t, 0, tree.len())
	_, ok := tree.nearest(r3.Vector{X: 1})
	assert.False(t, ok)
}
