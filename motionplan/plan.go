package motionplan

// Plan is the stitched output of a successful Plan call: a single
// Trajectory formed by concatenating the forward tree's root-to-bridge path
// with the reversed backward tree's root-to-bridge path, plus the bookkeeping
// needed to report status and cost.
type Plan struct {
	Status     PlanStatus
	Trajectory Trajectory
	Cost       float64

	// SampleCount and TreeNodeCount mirror the original's getSampleNum/
	// getTreeNodeNum accessors.
	SampleCount   int
	TreeNodeCount int

	// FirstTrajTime and FinalTrajTime are elapsed-seconds timestamps, per the
	// original's getFirstTrajTimeUsage/getFinalTrajTimeUsage.
	FirstTrajTime float64
	FinalTrajTime float64

	Convergence []ConvergencePoint
}

// stitchPath walks a node pool from a bridge node back to its root, then
// assembles the pieces (each piece's start state is its parent's state) in
// root-to-bridge order.
func stitchPath(pool *nodePool, bridgeIdx int) []Piece {
	chain := pool.pathToRoot(bridgeIdx)
	pieces := make([]Piece, 0, len(chain))
	for _, idx := range chain[1:] {
		n := pool.at(idx)
		pieces = append(pieces, n.pieceFromParent)
	}
	return pieces
}

// reversePiece returns a Piece that traces the same curve backward in time:
// evaluating reversePiece(p) at t equals evaluating p at (p.Tau - t).
func reversePiece(p Piece) Piece {
	var out Piece
	out.Tau = p.Tau
	tau := p.Tau
	for axis := 0; axis < 3; axis++ {
		c := p.Coefs[axis]
		// Evaluate p's position/velocity/acceleration/jerk/snap/crackle at tau
		// via repeated synthetic division (Horner shifted by tau), then negate
		// odd-order derivatives to account for the time reversal dt -> -dt.
		terms := hornerShift(c, tau)
		out.Coefs[axis] = [pieceDegree + 1]float64{
			terms[0], -terms[1], terms[2], -terms[3], terms[4], -terms[5],
		}
	}
	return out
}

// hornerShift returns the Taylor coefficients of polynomial c re-expanded
// around t=tau: term[k] is the value of the k-th derivative of c at tau,
// divided by k!. Computed by repeated synthetic division, the standard
// technique for polynomial shifts.
func hornerShift(c [pieceDegree + 1]float64, tau float64) [pieceDegree + 1]float64 {
	work := c
	var terms [pieceDegree + 1]float64
	for k := 0; k <= pieceDegree; k++ {
		// Horner's method evaluates work(tau) into terms[k]; then deflate.
		var b [pieceDegree + 1]float64
		b[pieceDegree-k] = work[pieceDegree-k]
		for i := pieceDegree - k - 1; i >= 0; i-- {
			b[i] = work[i] + b[i+1]*tau
		}
		terms[k] = b[0]
		for i := 0; i < pieceDegree-k; i++ {
			work[i] = b[i+1]
		}
	}
	return terms
}
