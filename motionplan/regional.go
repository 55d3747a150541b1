package motionplan

import (
	"container/heap"
	"context"
)

// regionalCandidate is one prospective bridge found by scanning a colliding
// edge's corridor, grounded on the original's regionalCandidate struct. heu
// is the forward parent's costFromStart + J(edge) + the backward parent's
// costFromStart: the total path cost were this candidate accepted.
type regionalCandidate struct {
	forwardParent  int
	backwardParent int
	piece          Piece
	heu            float64
}

// regionalHeap is a min-heap on heu (smallest cost first). Unlike the
// original's std::priority_queue, which is a max-heap by default and so
// needed its operator< reversed (heu > other.heu) to behave as a min-heap,
// Go's container/heap has no such default: returning true when this item's
// heu is smaller already yields a min-heap directly. Reversing the
// comparison here, as in the C++ source, would silently invert the heap.
type regionalHeap []regionalCandidate

func (h regionalHeap) Len() int            { return len(h) }
func (h regionalHeap) Less(i, j int) bool  { return h[i].heu < h[j].heu }
func (h regionalHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *regionalHeap) Push(x interface{}) { *h = append(*h, x.(regionalCandidate)) }
func (h *regionalHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// regionalBridge implements the §4.6 fallback: when a direct BVP connector
// between the two trees collides, query a grid corridor around the collision
// interval and ask the external PolynomialOptimizer to reshape the edge
// around it, holding the duration fixed.
type regionalBridge struct {
	grid          GridPathSearcher
	optimize      PolynomialOptimizer
	pos           PositionChecker
	feas          *feasibilityChecker
	maxCandidates int
}

func newRegionalBridge(grid GridPathSearcher, optimize PolynomialOptimizer, pos PositionChecker, feas *feasibilityChecker) *regionalBridge {
	return &regionalBridge{
		grid:          grid,
		optimize:      optimize,
		pos:           pos,
		feas:          feas,
		maxCandidates: defaultRegionalCandidates,
	}
}

// tryBridge attempts to repair a colliding direct connector between
// forwardParent (in the forward tree) and backwardParent (in the backward
// tree). It returns a feasible, collision-free replacement piece and ok=true
// if the collaborators could produce one; otherwise ok=false, a collaborator-
// failure per §7, handled silently by the caller.
func (b *regionalBridge) tryBridge(ctx context.Context, forwardParent, backwardParent *TreeNode, original Piece, collision CollisionResult) (Piece, bool) {
	if b.grid == nil || b.optimize == nil {
		return Piece{}, false
	}
	corridor, ok := b.grid.Search(ctx, collision.PFirst, collision.PLast)
	if !ok || len(corridor) == 0 {
		return Piece{}, false
	}
	replacement, ok := b.optimize.Optimize(ctx, &original, corridor, original.Tau)
	if !ok {
		return Piece{}, false
	}
	if !b.feas.feasible(&replacement) {
		return Piece{}, false
	}
	if b.pos != nil && b.pos.CheckPiece(&replacement).Collides {
		return Piece{}, false
	}
	return replacement, true
}

// rankCandidates orders a batch of regional candidates by ascending heu via
// the min-heap and returns at most maxCandidates of them, bounding the
// per-iteration work per §4.6.
func (b *regionalBridge) rankCandidates(candidates []regionalCandidate) []regionalCandidate {
	h := make(regionalHeap, 0, len(candidates))
	heap.Init(&h)
	for _, c := range candidates {
		heap.Push(&h, c)
	}

	n := b.maxCandidates
	if n > h.Len() {
		n = h.Len()
	}
	out := make([]regionalCandidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, heap.Pop(&h).(regionalCandidate))
	}
	return out
}

// detectCollisionInterval is a thin wrapper documenting the contract used by
// the planner loop: a piece is a regional-bridge candidate only if
// CheckPiece reports a bounded collision interval strictly inside (0, tau),
// not touching either endpoint (an endpoint collision means the state
// itself, not just the edge, is blocked, which is a different failure mode
// handled earlier in §4.4).
func detectCollisionInterval(piece *Piece, checker PositionChecker) (CollisionResult, bool) {
	res := checker.CheckPiece(piece)
	if !res.Collides {
		return res, false
	}
	if res.TFirst <= 0 || res.TLast >= piece.Tau {
		return res, false
	}
	return res, true
}
