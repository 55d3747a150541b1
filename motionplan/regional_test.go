package motionplan

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionalHeapOrdersAscendingByHeu(t *testing.T) {
	feas := newFeasibilityChecker(dynamicLimits{vel: 100, acc: 100, jerk: 100})
	bridge := newRegionalBridge(nil, nil, nil, feas)

	candidates := []regionalCandidate{
		{heu: 5},
		{heu: 1},
		{heu: 3},
	}
	ranked := bridge.rankCandidates(candidates)
	require.Len(t, ranked, 3)
	assert.Equal(t, 1.0, ranked[0].heu)
	assert.Equal(t, 3.0, ranked[1].heu)
	assert.Equal(t, 5.0, ranked[2].heu)
}

func TestRegionalHeapBoundsCandidateCount(t *testing.T) {
	feas := newFeasibilityChecker(dynamicLimits{vel: 100, acc: 100, jerk: 100})
	bridge := newRegionalBridge(nil, nil, nil, feas)
	bridge.maxCandidates = 2

	candidates := []regionalCandidate{{heu: 3}, {heu: 1}, {heu: 2}, {heu: 4}}
	ranked := bridge.rankCandidates(candidates)
	assert.Len(t, ranked, 2)
	assert.Equal(t, 1.0, ranked[0].heu)
	assert.Equal(t, 2.0, ranked[1].heu)
}

func TestTryBridgeRepairsCollidingConnector(t *testing.T) {
	solver := newBVPSolver(1.0)
	feas := newFeasibilityChecker(dynamicLimits{vel: 100, acc: 100, jerk: 100})
	blocker := boxChecker{min: r3.Vector{X: 4, Y: -1, Z: -1}, max: r3.Vector{X: 6, Y: 1, Z: 1}}

	piece, _, ok := solver.solve(StatePVA{}, StatePVA{P: r3.Vector{X: 10}})
	require.True(t, ok)

	collision, colliding := detectCollisionInterval(&piece, blocker)
	require.True(t, colliding)

	bridge := newRegionalBridge(straightLineSearcher{}, passthroughOptimizer{}, clearChecker{}, feas)
	forward := &TreeNode{state: StatePVA{}}
	backward := &TreeNode{state: StatePVA{P: r3.Vector{X: 10}}}

	replacement, ok := bridge.tryBridge(context.Background(), forward, backward, piece, collision)
	require.True(t, ok)
	assert.InDelta(t, piece.Tau, replacement.Tau, 1e-9)
}

func TestTryBridgeFailsWhenOptimizerFails(t *testing.T) {
	feas := newFeasibilityChecker(dynamicLimits{vel: 100, acc: 100, jerk: 100})
	bridge := newRegionalBridge(straightLineSearcher{}, failingOptimizer{}, clearChecker{}, feas)

	forward := &TreeNode{}
	backward := &TreeNode{}
	_, ok := bridge.tryBridge(context.Background(), forward, backward, Piece{Tau: 1}, CollisionResult{Collides: true, TFirst: 0.1, TLast: 0.2})
	assert.False(t, ok)
}

func TestDetectCollisionIntervalIgnoresEndpointCollisions(t *testing.T) {
	blocker := boxChecker{min: r3.Vector{X: -1, Y: -1, Z: -1}, max: r3.Vector{X: 1, Y: 1, Z: 1}}
	solver := newBVPSolver(1.0)
	// Starts inside the block, so the "collision" touches t=0 and must not
	// be treated as a regional-bridge candidate.
	piece, _, ok := solver.solve(StatePVA{}, StatePVA{P: r3.Vector{X: 10}})
	require.True(t, ok)

	_, colliding := detectCollisionInterval(&piece, blocker)
	assert.False(t, colliding)
}
