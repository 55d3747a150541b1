package motionplan

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPieceEvalMatchesEndpoints(t *testing.T) {
	piece := Piece{
		Tau: 2.0,
		Coefs: [3][pieceDegree + 1]float64{
			{0, 1, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0},
			{1, 0, 0, 0, 0, 0},
		},
	}
	start := piece.StartState()
	assert.Equal(t, r3.Vector{X: 0, Y: 0, Z: 1}, start.P)
	assert.Equal(t, r3.Vector{X: 1, Y: 0, Z: 0}, start.V)

	end := piece.EndState()
	assert.InDelta(t, 2.0, end.P.X, 1e-9)
}

func TestPieceJerkConstantForCubicAxis(t *testing.T) {
	var piece Piece
	piece.Tau = 1.0
	piece.Coefs[0] = [pieceDegree + 1]float64{0, 0, 0, 1.0 / 6.0, 0, 0} // jerk = 1 everywhere
	j0 := piece.Jerk(0)
	j1 := piece.Jerk(1)
	assert.InDelta(t, 1.0, j0.X, 1e-9)
	assert.InDelta(t, 1.0, j1.X, 1e-9)
}

func TestTrajectoryEvalAcrossPieces(t *testing.T) {
	p1 := Piece{Tau: 1.0, Coefs: [3][pieceDegree + 1]float64{{0, 1, 0, 0, 0, 0}, {}, {}}}
	p2 := Piece{Tau: 1.0, Coefs: [3][pieceDegree + 1]float64{{1, 1, 0, 0, 0, 0}, {}, {}}}
	traj := Trajectory{p1, p2}

	require.InDelta(t, 2.0, traj.Duration(), 1e-9)

	mid := traj.Eval(0.5)
	assert.InDelta(t, 0.5, mid.P.X, 1e-9)

	afterSplit := traj.Eval(1.5)
	assert.InDelta(t, 1.5, afterSplit.P.X, 1e-9)

	end := traj.Eval(10) // clamped past the end
	assert.InDelta(t, 2.0, end.P.X, 1e-9)
}

func TestTrajectoryEvalEmpty(t *testing.T) {
	var traj Trajectory
	assert.Equal(t, StatePVA{}, traj.Eval(1.0))
	assert.Equal(t, StatePVA{}, traj.StartState())
	assert.Equal(t, StatePVA{}, traj.EndState())
}
