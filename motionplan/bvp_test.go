package motionplan

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBVPSolveMatchesBoundaryStates(t *testing.T) {
	solver := newBVPSolver(1.0)
	x0 := StatePVA{P: r3.Vector{X: 0, Y: 0, Z: 0}, V: r3.Vector{X: 0, Y: 0, Z: 0}, A: r3.Vector{}}
	x1 := StatePVA{P: r3.Vector{X: 5, Y: -2, Z: 1}, V: r3.Vector{X: 1, Y: 0, Z: 0}, A: r3.Vector{}}

	piece, cost, ok := solver.solve(x0, x1)
	require.True(t, ok)
	assert.Greater(t, cost, 0.0)
	assert.Greater(t, piece.Tau, 0.0)

	start := piece.StartState()
	assert.InDelta(t, x0.P.X, start.P.X, 1e-6)
	assert.InDelta(t, x0.V.X, start.V.X, 1e-6)

	end := piece.EndState()
	assert.InDelta(t, x1.P.X, end.P.X, 1e-4)
	assert.InDelta(t, x1.P.Y, end.P.Y, 1e-4)
	assert.InDelta(t, x1.P.Z, end.P.Z, 1e-4)
	assert.InDelta(t, x1.V.X, end.V.X, 1e-4)
}

func TestBVPSolveMatchesBoundaryStatesFromMovingSource(t *testing.T) {
	solver := newBVPSolver(1.0)
	x0 := StatePVA{
		P: r3.Vector{X: 0, Y: 0, Z: 0},
		V: r3.Vector{X: 2, Y: -1, Z: 0.5},
		A: r3.Vector{X: -0.3, Y: 0.4, Z: 0},
	}
	x1 := StatePVA{P: r3.Vector{X: 5, Y: -2, Z: 1}, V: r3.Vector{X: 1, Y: 0, Z: 0}, A: r3.Vector{}}

	piece, cost, ok := solver.solve(x0, x1)
	require.True(t, ok)
	assert.Greater(t, cost, 0.0)
	assert.Greater(t, piece.Tau, 0.0)

	start := piece.StartState()
	assert.InDelta(t, x0.P.X, start.P.X, 1e-6)
	assert.InDelta(t, x0.V.X, start.V.X, 1e-6)
	assert.InDelta(t, x0.A.X, start.A.X, 1e-6)

	end := piece.EndState()
	assert.InDelta(t, x1.P.X, end.P.X, 1e-3)
	assert.InDelta(t, x1.P.Y, end.P.Y, 1e-3)
	assert.InDelta(t, x1.P.Z, end.P.Z, 1e-3)
	assert.InDelta(t, x1.V.X, end.V.X, 1e-3)
	assert.InDelta(t, x1.V.Y, end.V.Y, 1e-3)
	assert.InDelta(t, x1.V.Z, end.V.Z, 1e-3)
	assert.InDelta(t, x1.A.X, end.A.X, 1e-3)
	assert.InDelta(t, x1.A.Y, end.A.Y, 1e-3)
	assert.InDelta(t, x1.A.Z, end.A.Z, 1e-3)
}

func TestBVPSolveSameStateIsTrivial(t *testing.T) {
	solver := newBVPSolver(1.0)
	x := StatePVA{P: r3.Vector{X: 1, Y: 1, Z: 1}}

	piece, cost, ok := solver.solve(x, x)
	require.True(t, ok)
	assert.Equal(t, 0.0, cost)
	assert.Equal(t, minDuration, piece.Tau)
}

func TestBVPCostIncreasesWithDistance(t *testing.T) {
	solver := newBVPSolver(1.0)
	x0 := StatePVA{}
	near := StatePVA{P: r3.Vector{X: 1}}
	far := StatePVA{P: r3.Vector{X: 10}}

	_, costNear, ok := solver.solve(x0, near)
	require.True(t, ok)
	_, costFar, ok := solver.solve(x0, far)
	require.True(t, ok)

	assert.Greater(t, costFar, costNear)
}

func TestBVPReachableRadiusMonotoneInBudget(t *testing.T) {
	solver := newBVPSolver(2.0)
	r1 := solver.reachableRadius(1.0)
	r2 := solver.reachableRadius(10.0)
	assert.Greater(t, r2, r1)
	assert.Equal(t, 0.0, solver.reachableRadius(0))
	assert.Equal(t, 0.0, solver.reachableRadius(-5))
}

func TestRealPositiveRootsFiltersNonPositiveAndComplex(t *testing.T) {
	// (x-2)(x+1) = x^2 - x - 2, ascending coeffs: [-2, -1, 1]
	coefs := [7]float64{-2, -1, 1, 0, 0, 0, 0}
	roots := realPositiveRoots(coefs)
	require.Len(t, roots, 1)
	assert.InDelta(t, 2.0, roots[0], 1e-9)
}

func TestRealPositiveRootsAllNegativeDegenerate(t *testing.T) {
	// x + 1 = 0 has root -1, no positive roots.
	coefs := [7]float64{1, 1, 0, 0, 0, 0, 0}
	roots := realPositiveRoots(coefs)
	assert.Empty(t, roots)
}
