package motionplan

import (
	"context"

	"github.com/golang/geo/r3"
)

// CollisionResult is returned by PositionChecker.CheckPiece. A zero value
// (Collides=false) means the piece is entirely clear.
type CollisionResult struct {
	Collides bool
	// TFirst, TLast bound the [first entry, last exit] collision interval
	// along the piece, in the piece's local time [0, Tau].
	TFirst, TLast float64
	// PFirst, PLast are the world-space positions at TFirst and TLast.
	PFirst, PLast r3.Vector
}

// PositionChecker is the external occupancy/collision collaborator. The core
// never mutates the environment it wraps and calls it synchronously; §5
// requires that it not be mutated concurrently by the caller during plan().
type PositionChecker interface {
	// CheckPiece reports whether piece collides with the environment anywhere
	// in [0, piece.Tau].
	CheckPiece(piece *Piece) CollisionResult
	// CheckState reports whether a single position is occupied.
	CheckState(p r3.Vector) bool
}

// GridPathSearcher supplies obstacle-free corridor waypoints between two
// points for the regional bridge (§4.6). Deterministic for a fixed
// environment, per §6.
type GridPathSearcher interface {
	// Search returns an ordered sequence of free-cell waypoints from pFrom to
	// pTo, or ok=false if no corridor could be found.
	Search(ctx context.Context, pFrom, pTo r3.Vector) (waypoints []r3.Vector, ok bool)
}

// PolynomialOptimizer is the low-level local trajectory reshaper invoked by
// the regional bridge. Its internals are out of this core's scope (§1); only
// the contract is specified here. Implementations must preserve tau exactly
// and must produce a Piece whose boundary states match original at t=0 and
// t=tau.
type PolynomialOptimizer interface {
	// Optimize attempts to reshape original through corridor, holding the
	// total duration tau fixed. Returns ok=false if it cannot find a
	// replacement (collaborator failure, per §7 — the candidate is discarded
	// and planning continues).
	Optimize(ctx context.Context, original *Piece, corridor []r3.Vector, tau float64) (replacement Piece, ok bool)
}

// Visualizer is an optional diagnostic sink; nothing it returns affects
// planning.
type Visualizer interface {
	VisualizeNode(state StatePVA, tree treeID)
	VisualizeEdge(piece *Piece, tree treeID)
	VisualizeTrajectory(traj Trajectory)
}

// noopVisualizer implements Visualizer with no-ops; used when the caller
// does not provide one.
type noopVisualizer struct{}

func (noopVisualizer) VisualizeNode(StatePVA, treeID) {}
func (noopVisualizer) VisualizeEdge(*Piece, treeID)   {}
func (noopVisualizer) VisualizeTrajectory(Trajectory) {}
