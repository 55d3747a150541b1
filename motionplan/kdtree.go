package motionplan

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// errIndexAllocFailed is the sentinel for a failed index-node allocation.
// insert never returns it: allocating a kdNode cannot fail short of a
// runtime panic, so insert always returns nil.
var errIndexAllocFailed = errors.New("kd-index: node allocation failed")

// kdNode is one node of the axis-splitting binary tree. Unlike a red-black or
// AVL tree, it never rebalances on insert: growth from random sampling keeps
// the tree roughly balanced in expectation, which is the trade the original
// from-scratch kd-tree (kdtree.c) makes, and which this mirrors.
type kdNode struct {
	pos         r3.Vector
	payload     int // node-pool index; the index owns no tree data of its own
	left, right *kdNode
	min, max    r3.Vector // the hyperrectangle enclosing this node's subtree
}

// kdTree is a 3-dimensional spatial index over StatePVA positions. It
// supports insert, nearest-neighbor, and radius queries; it is not safe for
// concurrent use, matching the single-threaded planner contract in §5.
type kdTree struct {
	root *kdNode
	size int
}

func newKDTree() *kdTree {
	return &kdTree{}
}

func (t *kdTree) reset() {
	t.root = nil
	t.size = 0
}

func (t *kdTree) len() int {
	return t.size
}

// insert adds pos with an opaque payload (a node-pool index) to the index.
func (t *kdTree) insert(pos r3.Vector, payload int) error {
	n := &kdNode{pos: pos, payload: payload, min: pos, max: pos}
	if t.root == nil {
		t.root = n
		t.size++
		return nil
	}
	cur := t.root
	depth := 0
	for {
		hyperrectExtend(cur, pos)
		axis := depth % 3
		if axisOf(pos, axis) < axisOf(cur.pos, axis) {
			if cur.left == nil {
				cur.left = n
				break
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = n
				break
			}
			cur = cur.right
		}
		depth++
	}
	t.size++
	return nil
}

func hyperrectExtend(n *kdNode, pos r3.Vector) {
	n.min.X = minf(n.min.X, pos.X)
	n.min.Y = minf(n.min.Y, pos.Y)
	n.min.Z = minf(n.min.Z, pos.Z)
	n.max.X = maxf(n.max.X, pos.X)
	n.max.Y = maxf(n.max.Y, pos.Y)
	n.max.Z = maxf(n.max.Z, pos.Z)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// hyperrectDistSq returns the squared distance from pos to the nearest point
// of n's bounding hyperrectangle; zero if pos is inside it. Used to prune
// subtrees that cannot possibly contain a closer point than the current best.
func hyperrectDistSq(n *kdNode, pos r3.Vector) float64 {
	var d float64
	for axis := 0; axis < 3; axis++ {
		v := axisOf(pos, axis)
		lo := axisOf(n.min, axis)
		hi := axisOf(n.max, axis)
		switch {
		case v < lo:
			d += (lo - v) * (lo - v)
		case v > hi:
			d += (v - hi) * (v - hi)
		}
	}
	return d
}

// nearest returns the payload of the single nearest neighbor to pos via
// best-first hyperrectangle pruning, or false if the index is empty.
func (t *kdTree) nearest(pos r3.Vector) (int, bool) {
	if t.root == nil {
		return 0, false
	}
	bestDistSq := math.Inf(1)
	var bestPayload int
	found := false

	var visit func(n *kdNode, depth int)
	visit = func(n *kdNode, depth int) {
		if n == nil || hyperrectDistSq(n, pos) > bestDistSq {
			return
		}
		d := pos.Sub(n.pos).Norm2()
		if d < bestDistSq {
			bestDistSq = d
			bestPayload = n.payload
			found = true
		}
		axis := depth % 3
		near, far := n.left, n.right
		if axisOf(pos, axis) >= axisOf(n.pos, axis) {
			near, far = far, near
		}
		visit(near, depth+1)
		visit(far, depth+1)
	}
	visit(t.root, 0)
	return bestPayload, found
}

// radiusQuery returns the payloads of all points within Euclidean distance r
// of pos, in unspecified order. Subtrees whose bounding hyperrectangle lies
// entirely outside the radius are pruned without descending into them.
func (t *kdTree) radiusQuery(pos r3.Vector, r float64) []int {
	results := make([]int, 0)
	rSq := r * r

	var visit func(n *kdNode)
	visit = func(n *kdNode) {
		if n == nil || hyperrectDistSq(n, pos) > rSq {
			return
		}
		if pos.Sub(n.pos).Norm2() <= rSq {
			results = append(results, n.payload)
		}
		visit(n.left)
		visit(n.right)
	}
	visit(t.root)
	return results
}
