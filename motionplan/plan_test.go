package motionplan

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReversePieceTracesBackward(t *testing.T) {
	solver := newBVPSolver(1.0)
	piece, _, ok := solver.solve(
		StatePVA{},
		StatePVA{P: vec(3, -1, 2), V: vec(1, 0, -1)},
	)
	require.True(t, ok)

	rev := reversePiece(piece)
	require.InDelta(t, piece.Tau, rev.Tau, 1e-9)

	const steps = 10
	for i := 0; i <= steps; i++ {
		t0 := float64(i) / steps * piece.Tau
		original := piece.Eval(piece.Tau - t0)
		reversed := rev.Eval(t0)

		assert.InDelta(t, original.P.X, reversed.P.X, 1e-6)
		assert.InDelta(t, original.P.Y, reversed.P.Y, 1e-6)
		assert.InDelta(t, original.P.Z, reversed.P.Z, 1e-6)
		assert.InDelta(t, -original.V.X, reversed.V.X, 1e-5)
		assert.InDelta(t, original.A.X, reversed.A.X, 1e-5)
	}
}

func TestStitchPathAssemblesRootToNode(t *testing.T) {
	pool := newNodePool(3)
	solver := newBVPSolver(1.0)

	rootIdx, _ := pool.claim()
	pool.at(rootIdx).state = StatePVA{}
	pool.at(rootIdx).parent = noParent

	childIdx, _ := pool.claim()
	piece, cost, ok := solver.solve(pool.at(rootIdx).state, StatePVA{P: vec(1, 0, 0)})
	require.True(t, ok)
	pool.at(childIdx).state = StatePVA{P: vec(1, 0, 0)}
	pool.at(childIdx).parent = rootIdx
	pool.at(childIdx).pieceFromParent = piece
	pool.at(childIdx).costFromStart = cost

	pieces := stitchPath(pool, childIdx)
	require.Len(t, pieces, 1)
	assert.InDelta(t, piece.Tau, pieces[0].Tau, 1e-12)
}

func vec(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}
