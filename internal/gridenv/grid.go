// Package gridenv is a reference environment: a dense voxel occupancy grid
// implementing motionplan.PositionChecker directly and
// motionplan.GridPathSearcher via 6-connected A*, grounded on the teacher's
// octree/pointcloud occupancy vocabulary but backed by a flat array instead
// of a sparse octree, since the corridor queries this serves are local and
// small.
package gridenv

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"go.viam.com/utils"

	"github.com/skybound-robotics/kinoplan/logging"
	"github.com/skybound-robotics/kinoplan/motionplan"
)

// Grid is a fixed-resolution dense voxel occupancy map over an axis-aligned
// box. Cell (i,j,k) is occupied iff occupied[flatten(i,j,k)] is true.
type Grid struct {
	origin     r3.Vector
	resolution float64
	dims       [3]int
	occupied   []bool

	mu     sync.Mutex
	logger logging.Logger
}

// NewGrid allocates a clear (all-free) grid covering [origin, origin +
// dims*resolution) on each axis.
func NewGrid(origin r3.Vector, resolution float64, dims [3]int, logger logging.Logger) *Grid {
	if logger == nil {
		logger = logging.New("gridenv")
	}
	return &Grid{
		origin:     origin,
		resolution: resolution,
		dims:       dims,
		occupied:   make([]bool, dims[0]*dims[1]*dims[2]),
		logger:     logger,
	}
}

// SetOccupied marks the cell containing p as occupied. Points outside the
// grid bounds are ignored.
func (g *Grid) SetOccupied(p r3.Vector) {
	idx, ok := g.cellIndex(p)
	if !ok {
		return
	}
	g.mu.Lock()
	g.occupied[idx] = true
	g.mu.Unlock()
}

// SetBoxOccupied marks as occupied every in-bounds cell from the one
// containing lo through the one containing hi on each axis (every cell the
// box overlaps), the coarse-grained equivalent of inserting an obstacle's
// bounding box into the teacher's octree.
func (g *Grid) SetBoxOccupied(lo, hi r3.Vector) {
	loCell, _ := g.cellCoords(lo)
	hiCell, _ := g.cellCoords(hi)
	for i := maxInt(0, loCell[0]); i <= minInt(g.dims[0]-1, hiCell[0]); i++ {
		for j := maxInt(0, loCell[1]); j <= minInt(g.dims[1]-1, hiCell[1]); j++ {
			for k := maxInt(0, loCell[2]); k <= minInt(g.dims[2]-1, hiCell[2]); k++ {
				g.mu.Lock()
				g.occupied[g.flatten(i, j, k)] = true
				g.mu.Unlock()
			}
		}
	}
}

func (g *Grid) cellCoords(p r3.Vector) ([3]int, bool) {
	rel := p.Sub(g.origin)
	i := int(math.Floor(rel.X / g.resolution))
	j := int(math.Floor(rel.Y / g.resolution))
	k := int(math.Floor(rel.Z / g.resolution))
	inBounds := i >= 0 && i < g.dims[0] && j >= 0 && j < g.dims[1] && k >= 0 && k < g.dims[2]
	return [3]int{i, j, k}, inBounds
}

func (g *Grid) cellIndex(p r3.Vector) (int, bool) {
	c, ok := g.cellCoords(p)
	if !ok {
		return 0, false
	}
	return g.flatten(c[0], c[1], c[2]), true
}

func (g *Grid) flatten(i, j, k int) int {
	return (i*g.dims[1]+j)*g.dims[2] + k
}

func (g *Grid) cellCenter(i, j, k int) r3.Vector {
	return r3.Vector{
		X: g.origin.X + (float64(i)+0.5)*g.resolution,
		Y: g.origin.Y + (float64(j)+0.5)*g.resolution,
		Z: g.origin.Z + (float64(k)+0.5)*g.resolution,
	}
}

// CheckState implements motionplan.PositionChecker.
func (g *Grid) CheckState(p r3.Vector) bool {
	idx, ok := g.cellIndex(p)
	if !ok {
		// Out-of-bounds positions are treated as occupied: the planner must
		// never route a trajectory outside the mapped volume.
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.occupied[idx]
}

// CheckPiece implements motionplan.PositionChecker by sampling the piece at
// a fixed temporal resolution, matching the original's coarse-sampling
// strategy for collision checking along an edge.
func (g *Grid) CheckPiece(piece *motionplan.Piece) motionplan.CollisionResult {
	const coarseSteps = 64
	dt := piece.Tau / coarseSteps

	firstHit := -1.0
	lastHit := -1.0
	var pFirst, pLast r3.Vector

	for i := 0; i <= coarseSteps; i++ {
		t := float64(i) * dt
		p := piece.Eval(t).P
		if g.CheckState(p) {
			if firstHit < 0 {
				firstHit = t
				pFirst = p
			}
			lastHit = t
			pLast = p
		}
	}

	if firstHit < 0 {
		return motionplan.CollisionResult{}
	}
	return motionplan.CollisionResult{
		Collides: true,
		TFirst:   firstHit,
		TLast:    lastHit,
		PFirst:   pFirst,
		PLast:    pLast,
	}
}

// astarNode is one open-set entry for the 6-connected grid search.
type astarNode struct {
	cell     [3]int
	gScore   float64
	fScore   float64
	cameFrom [3]int
	hasFrom  bool
}

type astarHeap []*astarNode

func (h astarHeap) Len() int            { return len(h) }
func (h astarHeap) Less(i, j int) bool  { return h[i].fScore < h[j].fScore }
func (h astarHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *astarHeap) Push(x interface{}) { *h = append(*h, x.(*astarNode)) }
func (h *astarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Search implements motionplan.GridPathSearcher via 6-connected A* over free
// cells, run on a background goroutine guarded by utils.PanicCapturingGo so
// a panic inside the search cannot take down the caller, matching the
// teacher's background-worker idiom. The search respects ctx cancellation as
// a soft deadline.
func (g *Grid) Search(ctx context.Context, pFrom, pTo r3.Vector) ([]r3.Vector, bool) {
	fromCell, ok1 := g.cellCoords(pFrom)
	toCell, ok2 := g.cellCoords(pTo)
	if !ok1 || !ok2 {
		return nil, false
	}

	type result struct {
		waypoints []r3.Vector
		ok        bool
	}
	resultCh := make(chan result, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	utils.PanicCapturingGo(func() {
		defer wg.Done()
		waypoints, ok := g.astar(ctx, fromCell, toCell)
		select {
		case resultCh <- result{waypoints, ok}:
		default:
		}
	})

	select {
	case <-ctx.Done():
		wg.Wait()
		g.logger.Debugf("corridor search cancelled: from=%v to=%v", pFrom, pTo)
		return nil, false
	case r := <-resultCh:
		if !r.ok {
			g.logger.Debugf("corridor search found no path: from=%v to=%v", pFrom, pTo)
		}
		return r.waypoints, r.ok
	}
}

func (g *Grid) astar(ctx context.Context, from, to [3]int) ([]r3.Vector, bool) {
	open := &astarHeap{}
	heap.Init(open)
	start := &astarNode{cell: from, gScore: 0, fScore: cellDist(from, to)}
	heap.Push(open, start)

	best := make(map[[3]int]*astarNode)
	best[from] = start
	closed := make(map[[3]int]bool)

	for open.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}

		cur := heap.Pop(open).(*astarNode)
		if closed[cur.cell] {
			continue
		}
		closed[cur.cell] = true

		if cur.cell == to {
			return g.reconstructPath(best, cur), true
		}

		for _, off := range neighborOffsets {
			next := [3]int{cur.cell[0] + off[0], cur.cell[1] + off[1], cur.cell[2] + off[2]}
			if !g.inBounds(next) || g.isOccupiedCell(next) {
				continue
			}
			tentativeG := cur.gScore + g.resolution
			existing, seen := best[next]
			if seen && tentativeG >= existing.gScore {
				continue
			}
			node := &astarNode{
				cell:     next,
				gScore:   tentativeG,
				fScore:   tentativeG + cellDist(next, to),
				cameFrom: cur.cell,
				hasFrom:  true,
			}
			best[next] = node
			heap.Push(open, node)
		}
	}
	return nil, false
}

func (g *Grid) reconstructPath(best map[[3]int]*astarNode, end *astarNode) []r3.Vector {
	var cells [][3]int
	cur := end
	for {
		cells = append(cells, cur.cell)
		if !cur.hasFrom {
			break
		}
		cur = best[cur.cameFrom]
	}
	waypoints := make([]r3.Vector, len(cells))
	for i, c := range cells {
		waypoints[len(cells)-1-i] = g.cellCenter(c[0], c[1], c[2])
	}
	return waypoints
}

func (g *Grid) inBounds(c [3]int) bool {
	return c[0] >= 0 && c[0] < g.dims[0] && c[1] >= 0 && c[1] < g.dims[1] && c[2] >= 0 && c[2] < g.dims[2]
}

func (g *Grid) isOccupiedCell(c [3]int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.occupied[g.flatten(c[0], c[1], c[2])]
}

func cellDist(a, b [3]int) float64 {
	dx := float64(a[0] - b[0])
	dy := float64(a[1] - b[1])
	dz := float64(a[2] - b[2])
	return absf(dx) + absf(dy) + absf(dz)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// String describes the grid's extent, useful in diagnostic logs.
func (g *Grid) String() string {
	return fmt.Sprintf("gridenv.Grid{dims=%v res=%.3f origin=%v}", g.dims, g.resolution, g.origin)
}
