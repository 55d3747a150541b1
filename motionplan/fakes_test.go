package motionplan

import (
	"context"

	"github.com/golang/geo/r3"
)

// clearChecker is a PositionChecker that never reports a collision, for
// tests exercising tree growth and bridging in an open world.
type clearChecker struct{}

func (clearChecker) CheckState(r3.Vector) bool { return false }
func (clearChecker) CheckPiece(*Piece) CollisionResult {
	return CollisionResult{}
}

// boxChecker blocks a single axis-aligned box; everything else is clear.
// Used to force the regional-bridge fallback path in tests.
type boxChecker struct {
	min, max r3.Vector
}

func (b boxChecker) CheckState(p r3.Vector) bool {
	return p.X >= b.min.X && p.X <= b.max.X &&
		p.Y >= b.min.Y && p.Y <= b.max.Y &&
		p.Z >= b.min.Z && p.Z <= b.max.Z
}

func (b boxChecker) CheckPiece(piece *Piece) CollisionResult {
	const steps = 32
	dt := piece.Tau / steps
	firstHit := -1.0
	lastHit := -1.0
	var pFirst, pLast r3.Vector

	for i := 0; i <= steps; i++ {
		t := float64(i) * dt
		p := piece.Eval(t).P
		if b.CheckState(p) {
			if firstHit < 0 {
				firstHit = t
				pFirst = p
			}
			lastHit = t
			pLast = p
		}
	}
	if firstHit < 0 {
		return CollisionResult{}
	}
	return CollisionResult{Collides: true, TFirst: firstHit, TLast: lastHit, PFirst: pFirst, PLast: pLast}
}

// straightLineSearcher is a GridPathSearcher stub that always returns the
// two endpoints as the "corridor", used where the regional bridge path only
// needs to be exercised, not genuinely routed around an obstacle.
type straightLineSearcher struct{}

func (straightLineSearcher) Search(_ context.Context, from, to r3.Vector) ([]r3.Vector, bool) {
	return []r3.Vector{from, to}, true
}

// passthroughOptimizer returns the original piece unchanged, simulating a
// collaborator that "succeeds" without actually reshaping anything.
type passthroughOptimizer struct{}

func (passthroughOptimizer) Optimize(_ context.Context, original *Piece, _ []r3.Vector, _ float64) (Piece, bool) {
	return *original, true
}

// failingOptimizer always reports collaborator failure.
type failingOptimizer struct{}

func (failingOptimizer) Optimize(context.Context, *Piece, []r3.Vector, float64) (Piece, bool) {
	return Piece{}, false
}
