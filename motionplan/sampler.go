package motionplan

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

// stateSampler draws candidate StatePVA samples for tree extension, per §4.3.
// It is seeded explicitly and never reaches for a package-global RNG, so a
// fixed seed reproduces an identical sample sequence (§8).
type stateSampler struct {
	rng *rand.Rand

	worldMin, worldMax r3.Vector
	vMagSample         float64
	goalBias           float64

	goal StatePVA

	// informed-sampling state, populated once a feasible solution exists.
	informedEnabled bool
	cMin            float64 // |goal.P - start.P|, the ellipsoid focal distance
	cMax            float64 // current best solution cost; shrinks monotonically
	center          r3.Vector
	rotation        [3]r3.Vector // columns: rotation taking unit-sphere to world frame
}

func newStateSampler(seed int64, cfg *PlannerConfig, goal StatePVA) *stateSampler {
	return &stateSampler{
		rng:        rand.New(rand.NewSource(seed)),
		worldMin:   r3.Vector{X: cfg.WorldMin[0], Y: cfg.WorldMin[1], Z: cfg.WorldMin[2]},
		worldMax:   r3.Vector{X: cfg.WorldMax[0], Y: cfg.WorldMax[1], Z: cfg.WorldMax[2]},
		vMagSample: cfg.VMagSample,
		goalBias:   cfg.GoalBiasProbability,
		goal:       goal,
	}
}

// enableInformed switches the sampler into prolate-spheroid informed mode
// once a start and goal and a first solution cost are known, per §4.3's
// reference to informed sampling once a solution exists.
func (s *stateSampler) enableInformed(start, goal r3.Vector, solutionCost float64) {
	diff := goal.Sub(start)
	cMin := diff.Norm()
	if cMin < sameStateEpsilon {
		s.informedEnabled = false
		return
	}
	s.cMin = cMin
	s.cMax = solutionCost
	s.center = start.Add(goal).Mul(0.5)
	s.rotation = rotationFromXAxis(diff.Normalize())
	s.informedEnabled = true
}

// shrinkInformed narrows the ellipsoid as better solutions are found; callers
// must never grow cMax, which would violate the monotone-non-increasing best
// cost invariant of §8.
func (s *stateSampler) shrinkInformed(newCost float64) {
	if !s.informedEnabled || newCost < s.cMax {
		s.cMax = newCost
	}
}

// sample draws one candidate state. With probability goalBias it returns the
// goal state exactly; otherwise it draws a position (uniformly, or from the
// informed ellipsoid if enabled) with a uniformly sampled velocity magnitude
// and direction, and zero acceleration (acceleration is only ever set by the
// BVP connector itself, never sampled independently, per §4.3).
func (s *stateSampler) sample() StatePVA {
	if s.goalBias > 0 && s.rng.Float64() < s.goalBias {
		return s.goal
	}

	var pos r3.Vector
	if s.informedEnabled && s.cMax < math.Inf(1) {
		pos = s.sampleInformedPosition()
	} else {
		pos = s.sampleUniformPosition()
	}

	vel := s.sampleVelocity()
	return StatePVA{P: pos, V: vel, A: r3.Vector{}}
}

func (s *stateSampler) sampleUniformPosition() r3.Vector {
	return r3.Vector{
		X: s.worldMin.X + s.rng.Float64()*(s.worldMax.X-s.worldMin.X),
		Y: s.worldMin.Y + s.rng.Float64()*(s.worldMax.Y-s.worldMin.Y),
		Z: s.worldMin.Z + s.rng.Float64()*(s.worldMax.Z-s.worldMin.Z),
	}
}

// sampleInformedPosition draws uniformly from within the prolate spheroid
// with foci start/goal and major axis cMax, by sampling a unit ball and
// applying the ellipsoid's semi-axis scaling and rotation.
func (s *stateSampler) sampleInformedPosition() r3.Vector {
	if s.cMax <= s.cMin {
		return s.center
	}
	r1 := s.cMax / 2
	rRest := math.Sqrt(math.Max(s.cMax*s.cMax-s.cMin*s.cMin, 0)) / 2

	ball := s.sampleUnitBall()
	scaled := r3.Vector{X: ball.X * r1, Y: ball.Y * rRest, Z: ball.Z * rRest}

	rotated := r3.Vector{
		X: s.rotation[0].X*scaled.X + s.rotation[1].X*scaled.Y + s.rotation[2].X*scaled.Z,
		Y: s.rotation[0].Y*scaled.X + s.rotation[1].Y*scaled.Y + s.rotation[2].Y*scaled.Z,
		Z: s.rotation[0].Z*scaled.X + s.rotation[1].Z*scaled.Y + s.rotation[2].Z*scaled.Z,
	}
	pos := s.center.Add(rotated)
	return clampToWorld(pos, s.worldMin, s.worldMax)
}

func (s *stateSampler) sampleUnitBall() r3.Vector {
	for {
		p := r3.Vector{
			X: 2*s.rng.Float64() - 1,
			Y: 2*s.rng.Float64() - 1,
			Z: 2*s.rng.Float64() - 1,
		}
		if p.Norm2() <= 1 {
			return p
		}
	}
}

func (s *stateSampler) sampleVelocity() r3.Vector {
	dir := s.sampleUnitBall()
	n := dir.Norm()
	if n < sameStateEpsilon {
		return r3.Vector{}
	}
	mag := s.rng.Float64() * s.vMagSample
	return dir.Mul(mag / n)
}

func clampToWorld(p, lo, hi r3.Vector) r3.Vector {
	return r3.Vector{
		X: clampf(p.X, lo.X, hi.X),
		Y: clampf(p.Y, lo.Y, hi.Y),
		Z: clampf(p.Z, lo.Z, hi.Z),
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rotationFromXAxis builds an orthonormal basis whose first column is unit,
// by Gram-Schmidt against a non-parallel reference axis, returned as three
// column vectors.
func rotationFromXAxis(unit r3.Vector) [3]r3.Vector {
	ref := r3.Vector{X: 0, Y: 0, Z: 1}
	if math.Abs(unit.Dot(ref)) > 0.99 {
		ref = r3.Vector{X: 0, Y: 1, Z: 0}
	}
	col1 := unit.Cross(ref).Normalize()
	col2 := unit.Cross(col1).Normalize()
	return [3]r3.Vector{unit, col1, col2}
}
