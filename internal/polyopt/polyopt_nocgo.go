//go:build no_cgo

package polyopt

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/skybound-robotics/kinoplan/logging"
	"github.com/skybound-robotics/kinoplan/motionplan"
)

// Optimizer mimics the cgo-backed type's shape but always refuses to solve,
// matching the teacher's ik/solver_nocgo.go stand-in for a cgo-only solver.
type Optimizer struct{}

// New returns a PolynomialOptimizer that always reports failure; callers
// running a no_cgo build must either disable UseRegionalOpt or supply their
// own PolynomialOptimizer.
func New(logger logging.Logger) *Optimizer {
	return &Optimizer{}
}

// Optimize always returns ok=false on this build.
func (o *Optimizer) Optimize(ctx context.Context, original *motionplan.Piece, corridor []r3.Vector, tau float64) (motionplan.Piece, bool) {
	return motionplan.Piece{}, false
}
