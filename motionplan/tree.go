package motionplan

import (
	"github.com/golang/geo/r3"
)

// rrtTree couples a node pool with its spatial index, and implements the
// extend/rewire step of §4.4: RRT*-style nearest-of-neighborhood selection
// plus optional rewiring, grounded on the teacher's rrtStarConnect.go extend
// loop but adapted from joint-space neighbor metrics to the BVP cost metric.
type rrtTree struct {
	id    treeID
	pool  *nodePool
	index *kdTree
	bvp   *bvpSolver
	feas  *feasibilityChecker
	pos   PositionChecker
}

func newRRTTree(id treeID, capacity int, bvp *bvpSolver, feas *feasibilityChecker, pos PositionChecker) *rrtTree {
	return &rrtTree{
		id:    id,
		pool:  newNodePool(capacity),
		index: newKDTree(),
		bvp:   bvp,
		feas:  feas,
		pos:   pos,
	}
}

func (t *rrtTree) reset() {
	t.pool.reset()
	t.index.reset()
}

// addRoot seeds the tree with its single root node (start for the forward
// tree, goal for the backward tree), at zero cost.
func (t *rrtTree) addRoot(state StatePVA) (int, bool) {
	idx, ok := t.pool.claim()
	if !ok {
		return 0, false
	}
	n := t.pool.at(idx)
	*n = TreeNode{
		state:           state,
		parent:          noParent,
		costFromStart:   0,
		tauFromStart:    0,
		tree:            t.id,
		inTree:          true,
	}
	t.index.insert(state.P, idx)
	return idx, true
}

// candidateEdge is a prospective connection from an existing tree node to a
// new sample, carrying everything needed to compare candidates by cost and,
// if accepted, install the new node.
type candidateEdge struct {
	parentIdx int
	piece     Piece
	cost      float64
}

// extend implements one forward-extend step from §4.4: find the existing
// node within radius r whose BVP connector to sample is cheapest and
// dynamically feasible and collision-free, and add sample as a new child of
// it. Returns the new node's pool index, or ok=false if no feasible parent
// exists (edge-level failure, silent, per §7) or the pool is full (soft
// stop, per §7).
func (t *rrtTree) extend(sample StatePVA, radius float64) (int, bool) {
	if t.pool.full() {
		return 0, false
	}
	neighborIdxs := t.index.radiusQuery(sample.P, radius)
	if len(neighborIdxs) == 0 {
		nearestIdx, ok := t.index.nearest(sample.P)
		if !ok {
			return 0, false
		}
		neighborIdxs = []int{nearestIdx}
	}

	best, ok := t.bestCandidate(neighborIdxs, sample, forwardDirection(t.id))
	if !ok {
		return 0, false
	}

	newIdx, ok := t.pool.claim()
	if !ok {
		return 0, false
	}
	parent := t.pool.at(best.parentIdx)
	n := t.pool.at(newIdx)
	*n = TreeNode{
		state:           sample,
		parent:          best.parentIdx,
		pieceFromParent: best.piece,
		costFromParent:  best.cost,
		tauFromParent:   best.piece.Tau,
		costFromStart:   parent.costFromStart + best.cost,
		tauFromStart:    parent.tauFromStart + best.piece.Tau,
		tree:            t.id,
		inTree:          true,
	}
	t.index.insert(sample.P, newIdx)
	return newIdx, true
}

// forwardDirection reports whether a BVP connector for this tree should be
// solved parent->sample (the forward tree, where edges point away from
// start) or sample->parent (the backward tree, where edges point toward
// goal but are stored as parent->child for pool bookkeeping).
func forwardDirection(id treeID) bool {
	return id == treeForward
}

// bestCandidate scans neighbor pool indices and returns the minimum-cost
// feasible, collision-free connector, per the RRT* parent-selection rule.
func (t *rrtTree) bestCandidate(neighborIdxs []int, sample StatePVA, forward bool) (candidateEdge, bool) {
	var best candidateEdge
	found := false

	for _, idx := range neighborIdxs {
		neighbor := t.pool.at(idx)
		var piece Piece
		var edgeCost float64
		var ok bool
		if forward {
			piece, edgeCost, ok = t.bvp.solve(neighbor.state, sample)
		} else {
			piece, edgeCost, ok = t.bvp.solve(sample, neighbor.state)
		}
		if !ok {
			continue
		}
		if !t.feas.feasible(&piece) {
			continue
		}
		if t.pos != nil && t.pos.CheckPiece(&piece).Collides {
			continue
		}
		total := neighbor.costFromStart + edgeCost
		bestTotal := t.pool.at(best.parentIdx).costFromStart + best.cost
		if !found || total < bestTotal {
			best = candidateEdge{parentIdx: idx, piece: piece, cost: edgeCost}
			found = true
		}
	}
	return best, found
}

// rewire implements the rewiring half of §4.4: for the just-inserted node
// newIdx, check whether any neighbor within radius would achieve lower cost
// by routing through newIdx instead of its current parent, and if so,
// reparent it and propagate the cost delta to its entire subtree. Disabled
// unless cfg.Rewire is set.
func (t *rrtTree) rewire(newIdx int, radius float64) {
	newNode := t.pool.at(newIdx)
	neighborIdxs := t.index.radiusQuery(newNode.state.P, radius)

	for _, idx := range neighborIdxs {
		if idx == newIdx {
			continue
		}
		neighbor := t.pool.at(idx)
		if neighbor.parent == newIdx {
			continue
		}
		// never rewire the root; it has no parent to replace.
		if neighbor.parent == noParent {
			continue
		}
		// never introduce a cycle: newIdx cannot already be reachable through
		// neighbor's own subtree.
		if t.isAncestor(newIdx, idx) {
			continue
		}

		var piece Piece
		var edgeCost float64
		var ok bool
		if forwardDirection(t.id) {
			piece, edgeCost, ok = t.bvp.solve(newNode.state, neighbor.state)
		} else {
			piece, edgeCost, ok = t.bvp.solve(neighbor.state, newNode.state)
		}
		if !ok || !t.feas.feasible(&piece) {
			continue
		}
		if t.pos != nil && t.pos.CheckPiece(&piece).Collides {
			continue
		}

		candidateCost := newNode.costFromStart + edgeCost
		if candidateCost >= neighbor.costFromStart-sameStateEpsilon {
			continue
		}

		costDelta := candidateCost - neighbor.costFromStart
		newTauFromStart := newNode.tauFromStart + piece.Tau
		tauDelta := newTauFromStart - neighbor.tauFromStart
		neighbor.parent = newIdx
		neighbor.pieceFromParent = piece
		neighbor.costFromParent = edgeCost
		neighbor.tauFromParent = piece.Tau
		neighbor.costFromStart = candidateCost
		neighbor.tauFromStart = newTauFromStart
		t.propagateDeltas(idx, costDelta, tauDelta)
	}
}

// isAncestor reports whether candidate lies on node's path to the root,
// which would make node's adoption as candidate's new parent a cycle.
func (t *rrtTree) isAncestor(node, candidate int) bool {
	cur := node
	for cur != noParent {
		if cur == candidate {
			return true
		}
		cur = t.pool.at(cur).parent
	}
	return false
}

// propagateDeltas walks every descendant of parentIdx and applies costDelta
// to its costFromStart and tauDelta to its tauFromStart, preserving the §8
// invariant that both fields always equal the sum of edge costs/durations
// root-to-node after a rewire touches an ancestor.
func (t *rrtTree) propagateDeltas(parentIdx int, costDelta, tauDelta float64) {
	children := t.childrenOf(parentIdx)
	for _, c := range children {
		child := t.pool.at(c)
		child.costFromStart += costDelta
		child.tauFromStart += tauDelta
		t.propagateDeltas(c, costDelta, tauDelta)
	}
}

// childrenOf is a linear scan over the live pool; acceptable because rewiring
// is only invoked per-extension, not per-query, and the pool size is bounded
// by TreeNodeNums.
func (t *rrtTree) childrenOf(parentIdx int) []int {
	var out []int
	for i := 0; i < t.pool.size(); i++ {
		n := t.pool.at(i)
		if n.inTree && n.parent == parentIdx {
			out = append(out, i)
		}
	}
	return out
}

// nearestTo is a thin wrapper for cross-tree bridging (§4.6): the position
// nearest to p currently in this tree.
func (t *rrtTree) nearestTo(p r3.Vector) (int, bool) {
	return t.index.nearest(p)
}

// nodesWithin returns every node in this tree whose position lies within
// radius of p, for building a bridge candidate set in §4.6 instead of
// considering only the single nearest opposite-tree node.
func (t *rrtTree) nodesWithin(p r3.Vector, radius float64) []int {
	return t.index.radiusQuery(p, radius)
}
