package motionplan

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"github.com/skybound-robotics/kinoplan/logging"
)

// plannerState is the coarse state machine of §4.5.
type plannerState int

const (
	stateIdle plannerState = iota
	statePlanning
)

// Planner is the bidirectional, rewiring, kinodynamic sampling-based
// planner of §4. It owns two rrtTrees (forward from start, backward from
// goal), a BVP solver, a sampler, and the optional regional-bridge and
// convergence-tracking machinery, matching the original BIKRRT class's
// responsibilities but restructured around pool indices instead of shared
// pointers (see DESIGN.md).
type Planner struct {
	cfg *PlannerConfig
	log logging.Logger

	pos  PositionChecker
	grid GridPathSearcher
	opt  PolynomialOptimizer
	viz  Visualizer

	bvp  *bvpSolver
	feas *feasibilityChecker

	forward  *rrtTree
	backward *rrtTree

	state plannerState

	convergence *convergenceRecorder
	sampler     *stateSampler

	sampleCount int

	bestCost     float64
	bestForward  int
	bestBackward int
	bestBridge   Piece
	haveSolution bool

	firstTrajTime float64
	finalTrajTime float64
	startTime     time.Time

	startPos r3.Vector
	goalPos  r3.Vector
}

// NewPlanner constructs a Planner with the given configuration and external
// collaborators. pos is required; grid and opt are required only if
// cfg.UseRegionalOpt is set; viz may be nil, in which case a no-op is used.
func NewPlanner(cfg *PlannerConfig, pos PositionChecker, grid GridPathSearcher, opt PolynomialOptimizer, viz Visualizer, logger logging.Logger) (*Planner, error) {
	if cfg == nil {
		cfg = DefaultPlannerConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if viz == nil {
		viz = noopVisualizer{}
	}
	if logger == nil {
		logger = logging.New("kinoplan")
	}

	// The two trees split cfg.TreeNodeNums pool slots between them, so both
	// together never hold more than that many nodes.
	if cfg.TreeNodeNums < 2 {
		return nil, wrapConfigErr("tree_node_nums must be >= 2 to hold both tree roots")
	}
	forwardCap := cfg.TreeNodeNums - cfg.TreeNodeNums/2
	backwardCap := cfg.TreeNodeNums / 2

	limits := dynamicLimits{vel: cfg.VelLimit, acc: cfg.AccLimit, jerk: cfg.JerkLimit}
	feas := newFeasibilityChecker(limits)
	bvp := newBVPSolver(cfg.Rho)

	p := &Planner{
		cfg:         cfg,
		log:         logger,
		pos:         pos,
		grid:        grid,
		opt:         opt,
		viz:         viz,
		bvp:         bvp,
		feas:        feas,
		forward:     newRRTTree(treeForward, forwardCap, bvp, feas, pos),
		backward:    newRRTTree(treeBackward, backwardCap, bvp, feas, pos),
		convergence: newConvergenceRecorder(cfg.TestConvergency),
		state:       stateIdle,
	}
	return p, nil
}

// reset returns the planner to its freshly-constructed condition, reusable
// across repeated Plan calls without reallocating the node pools, per §4.2.
func (p *Planner) reset() {
	p.forward.reset()
	p.backward.reset()
	p.convergence.reset()
	p.sampleCount = 0
	p.bestCost = 0
	p.bestForward = noParent
	p.bestBackward = noParent
	p.bestBridge = Piece{}
	p.haveSolution = false
	p.firstTrajTime = 0
	p.finalTrajTime = 0
	p.state = stateIdle
}

// Plan runs the bidirectional search from start to goal for up to budget,
// implementing the main loop of §4.5: it alternates extending the forward
// and backward trees, rewires when enabled, attempts a direct bridge after
// every successful extension, and falls back to the regional bridge when a
// direct bridge collides and UseRegionalOpt is set.
func (p *Planner) Plan(ctx context.Context, start, goal StatePVA, budget time.Duration) (*Plan, error) {
	p.reset()

	if p.pos != nil {
		if p.pos.CheckState(start.P) {
			return nil, ErrStartBlocked
		}
		if p.pos.CheckState(goal.P) {
			return nil, ErrGoalBlocked
		}
	}

	p.startPos = start.P
	p.goalPos = goal.P
	p.startTime = time.Now()
	p.state = statePlanning
	p.log.Debugf("planning started: budget=%s rewire=%v regional=%v", budget, p.cfg.Rewire, p.cfg.UseRegionalOpt)

	if _, ok := p.forward.addRoot(start); !ok {
		return p.result(), nil
	}
	if _, ok := p.backward.addRoot(goal); !ok {
		return p.result(), nil
	}

	p.sampler = newStateSampler(p.cfg.RandomSeed, p.cfg, goal)

	regional := newRegionalBridge(p.grid, p.opt, p.pos, p.feas)

	deadline := p.startTime.Add(budget)
	swapTurn := true // alternate: true extends forward, false extends backward

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return p.result(), nil
		default:
		}

		sample := p.sampler.sample()
		p.sampleCount++

		var growTree, otherTree *rrtTree
		if swapTurn {
			growTree, otherTree = p.forward, p.backward
		} else {
			growTree, otherTree = p.backward, p.forward
		}
		swapTurn = !swapTurn

		radius := p.neighborhoodRadius()
		newIdx, ok := growTree.extend(sample, radius)
		if !ok {
			// Either no feasible parent existed for this sample (edge-level
			// failure, silent per §7) or the pool is full (soft stop): either
			// way the other tree may still progress, so keep sampling.
			continue
		}
		p.viz.VisualizeNode(growTree.pool.at(newIdx).state, growTree.id)
		p.viz.VisualizeEdge(&growTree.pool.at(newIdx).pieceFromParent, growTree.id)

		if p.cfg.Rewire {
			growTree.rewire(newIdx, radius)
		}

		p.attemptBridge(ctx, growTree, otherTree, newIdx, regional)

		if p.haveSolution {
			p.sampler.shrinkInformed(p.bestCost)
			if p.cfg.StopAfterFirstTrajFound {
				p.log.Debugf("stopping after first trajectory: cost=%.4f samples=%d", p.bestCost, p.sampleCount)
				break
			}
		}
	}

	result := p.result()
	p.log.Debugf("planning finished: status=%s samples=%d nodes=%d", result.Status, result.SampleCount, result.TreeNodeCount)
	return result, nil
}

// bridgeCandidate is a prospective start-to-goal splice through one
// particular pair of opposite-tree nodes, carrying everything needed to
// accept it as the new best solution without re-solving anything later.
type bridgeCandidate struct {
	forwardIdx, backwardIdx int
	piece                   Piece
	total                   float64
}

// attemptBridge checks whether the node just added to growTree can connect to
// otherTree within the current best radius, per §4.6. Rather than considering
// only the single nearest opposite-tree node, it gathers every opposite-tree
// node within twice the neighborhood radius: direct, collision-free
// connectors are compared on cost
// directly, while connectors whose direct BVP piece collides are ranked by
// the regional bridge's ascending-heuristic heap and a bounded number of them
// are sent through the regional repair (grid corridor + polynomial
// reshaping), so one blocked candidate doesn't stop the others in the
// neighborhood from being tried.
func (p *Planner) attemptBridge(ctx context.Context, growTree, otherTree *rrtTree, newIdx int, regional *regionalBridge) {
	newNode := growTree.pool.at(newIdx)
	radius := p.neighborhoodRadius()

	neighborIdxs := otherTree.nodesWithin(newNode.state.P, radius*2)
	if len(neighborIdxs) == 0 {
		nearestIdx, ok := otherTree.nearestTo(newNode.state.P)
		if !ok {
			return
		}
		neighborIdxs = []int{nearestIdx}
	}

	var best *bridgeCandidate
	var colliding []regionalCandidate

	for _, neighborIdx := range neighborIdxs {
		other := otherTree.pool.at(neighborIdx)
		if newNode.state.P.Sub(other.state.P).Norm() > radius*2 {
			continue
		}

		var forwardNode, backwardNode *TreeNode
		var forwardIdx, backwardIdx int
		if growTree.id == treeForward {
			forwardNode, forwardIdx = newNode, newIdx
			backwardNode, backwardIdx = other, neighborIdx
		} else {
			forwardNode, forwardIdx = other, neighborIdx
			backwardNode, backwardIdx = newNode, newIdx
		}

		piece, cost, ok := p.bvp.solve(forwardNode.state, backwardNode.state)
		if !ok || !p.feas.feasible(&piece) {
			continue
		}
		total := forwardNode.costFromStart + cost + backwardNode.costFromStart

		if _, isColliding := detectCollisionInterval(&piece, p.pos); isColliding {
			if !p.cfg.UseRegionalOpt {
				continue
			}
			colliding = append(colliding, regionalCandidate{
				forwardParent:  forwardIdx,
				backwardParent: backwardIdx,
				piece:          piece,
				heu:            total,
			})
			continue
		}
		if p.pos != nil && p.pos.CheckPiece(&piece).Collides {
			continue
		}

		if best == nil || total < best.total {
			best = &bridgeCandidate{forwardIdx: forwardIdx, backwardIdx: backwardIdx, piece: piece, total: total}
		}
	}

	if len(colliding) > 0 {
	rankedLoop:
		for _, cand := range regional.rankCandidates(colliding) {
			select {
			case <-ctx.Done():
				break rankedLoop
			default:
			}
			if best != nil && cand.heu >= best.total {
				// Ranked ascending by heu: once a clean candidate already beats
				// this (and every remaining) colliding candidate's pre-repair
				// cost, no repair attempt here can still win.
				break
			}
			fNode := p.forward.pool.at(cand.forwardParent)
			bNode := p.backward.pool.at(cand.backwardParent)
			collision, _ := detectCollisionInterval(&cand.piece, p.pos)
			replacement, ok := regional.tryBridge(ctx, fNode, bNode, cand.piece, collision)
			if !ok {
				continue
			}
			repairedCost := p.bvp.costOfPiece(replacement)
			total := fNode.costFromStart + repairedCost + bNode.costFromStart
			if best == nil || total < best.total {
				best = &bridgeCandidate{forwardIdx: cand.forwardParent, backwardIdx: cand.backwardParent, piece: replacement, total: total}
			}
		}
	}

	if best == nil {
		return
	}
	if p.haveSolution && best.total >= p.bestCost-sameStateEpsilon {
		return
	}

	if !p.haveSolution {
		// First solution: switch the sampler into informed mode so later
		// samples concentrate in the ellipsoid that could still improve on it.
		p.sampler.enableInformed(p.startPos, p.goalPos, best.total)
	}
	p.haveSolution = true
	p.bestCost = best.total
	p.bestForward = best.forwardIdx
	p.bestBackward = best.backwardIdx
	p.bestBridge = best.piece

	elapsed := time.Since(p.startTime).Seconds()
	if p.firstTrajTime == 0 {
		p.firstTrajTime = elapsed
	}
	p.finalTrajTime = elapsed
	p.convergence.record(elapsed, best.total)
	p.log.Debugf("new best solution: cost=%.4f elapsed=%.3fs samples=%d", best.total, elapsed, p.sampleCount)
}

// neighborhoodRadius returns the current query radius for both extend and
// rewire, derived from the BVP's reachable-radius inverse at the configured
// cost budget (§4.4, resolving Open Question 2 per DESIGN.md).
func (p *Planner) neighborhoodRadius() float64 {
	return p.bvp.reachableRadius(p.cfg.RadiusCostBetweenTwoStates)
}

// result assembles the current best solution (if any) into a Plan, per the
// state machine's SOLVED/SOLVED_CLOSE_GOAL/FAILURE outcomes of §4.5.
func (p *Planner) result() *Plan {
	plan := &Plan{
		SampleCount:   p.sampleCount,
		TreeNodeCount: p.forward.pool.size() + p.backward.pool.size(),
		FirstTrajTime: p.firstTrajTime,
		FinalTrajTime: p.finalTrajTime,
		Convergence:   p.convergence.series(),
	}

	if !p.haveSolution {
		if p.cfg.AllowCloseGoal {
			if traj, cost, ok := p.closeGoalTrajectory(); ok {
				plan.Status = SuccessCloseGoal
				plan.Trajectory = traj
				plan.Cost = cost
				return plan
			}
		}
		plan.Status = Failure
		return plan
	}

	plan.Status = Success
	plan.Cost = p.bestCost
	plan.Trajectory = p.stitchSolution(p.bestForward, p.bestBackward)
	return plan
}

// closeGoalTrajectory implements the approximate-goal fallback of §4.4: the
// forward-tree node nearest the goal position, if within
// cfg.CloseGoalTolerance, is accepted as a terminal even without a bridge.
func (p *Planner) closeGoalTrajectory() (Trajectory, float64, bool) {
	goalIdx, ok := p.forward.nearestTo(p.backward.pool.at(0).state.P)
	if !ok {
		return nil, 0, false
	}
	goalNode := p.forward.pool.at(goalIdx)
	root := p.backward.pool.at(0)
	if goalNode.state.P.Sub(root.state.P).Norm() > p.cfg.CloseGoalTolerance {
		return nil, 0, false
	}
	pieces := stitchPath(p.forward.pool, goalIdx)
	return Trajectory(pieces), goalNode.costFromStart, true
}

// stitchSolution assembles the full start-to-goal trajectory from the
// forward tree's root-to-bridge path and the backward tree's root-to-bridge
// path reversed, per §4.6.
func (p *Planner) stitchSolution(forwardIdx, backwardIdx int) Trajectory {
	forwardPieces := stitchPath(p.forward.pool, forwardIdx)

	backwardChain := p.backward.pool.pathToRoot(backwardIdx)
	backwardPieces := make([]Piece, 0, len(backwardChain))
	for _, idx := range backwardChain[1:] {
		n := p.backward.pool.at(idx)
		backwardPieces = append(backwardPieces, n.pieceFromParent)
	}
	// backwardPieces is root(goal)-to-bridge order. Each backward-tree piece
	// already runs forward in time from its node to the node's parent (see
	// forwardDirection), so reversing the slice alone gives bridge-to-goal
	// order.
	reversed := make([]Piece, len(backwardPieces))
	for i, piece := range backwardPieces {
		reversed[len(backwardPieces)-1-i] = piece
	}

	// bestBridge is the exact piece attemptBridge accepted for this solution —
	// a direct BVP connector, or a regional repair if the direct connector
	// collided — and must be reused as-is rather than re-solved: a fresh
	// bvp.solve here would silently re-emit the direct connector even when
	// the winning bridge was a regional repair, defeating it for the returned
	// trajectory.
	out := make(Trajectory, 0, len(forwardPieces)+1+len(reversed))
	out = append(out, forwardPieces...)
	out = append(out, p.bestBridge)
	out = append(out, reversed...)
	p.viz.VisualizeTrajectory(out)
	return out
}
