package motionplan

import "math"

// dynamicLimits bundles the per-axis bounds from §4.7. All three are
// magnitude bounds applied independently to each axis, matching the original
// planner's per-axis (not per-vector-norm) feasibility check.
type dynamicLimits struct {
	vel, acc, jerk float64
}

// feasibilityChecker validates a Piece against velocity/acceleration/jerk
// bounds via boundExtremaOf: endpoint checks plus fine-step discretization.
// Per axis, jerk is quadratic, acceleration cubic and velocity quartic in t,
// so all three take the discretized path; no closed-form extrema analysis is
// done.
type feasibilityChecker struct {
	limits dynamicLimits
}

func newFeasibilityChecker(limits dynamicLimits) *feasibilityChecker {
	return &feasibilityChecker{limits: limits}
}

// feasible reports whether piece never exceeds any of the three bounds on any
// axis, anywhere within [0, piece.Tau].
func (f *feasibilityChecker) feasible(piece *Piece) bool {
	for axis := 0; axis < 3; axis++ {
		c := piece.Coefs[axis]
		if !f.axisFeasible(c, piece.Tau) {
			return false
		}
	}
	return true
}

func (f *feasibilityChecker) axisFeasible(c [pieceDegree + 1]float64, tau float64) bool {
	if !boundExtremaOf(jerkCoeffs(c), tau, f.limits.jerk) {
		return false
	}
	if !boundExtremaOf(accCoeffs(c), tau, f.limits.acc) {
		return false
	}
	if !boundExtremaOf(velCoeffs(c), tau, f.limits.vel) {
		return false
	}
	return true
}

// velCoeffs, accCoeffs, jerkCoeffs differentiate the quintic position
// polynomial p(t) = c0 + c1 t + c2 t^2 + c3 t^3 + c4 t^4 + c5 t^5.
func velCoeffs(c [pieceDegree + 1]float64) []float64 {
	return []float64{c[1], 2 * c[2], 3 * c[3], 4 * c[4], 5 * c[5]}
}

func accCoeffs(c [pieceDegree + 1]float64) []float64 {
	return []float64{2 * c[2], 6 * c[3], 12 * c[4], 20 * c[5]}
}

func jerkCoeffs(c [pieceDegree + 1]float64) []float64 {
	return []float64{6 * c[3], 24 * c[4], 60 * c[5]}
}

// boundExtremaOf samples a polynomial (ascending coefficients) at its
// endpoints and reports whether |value| never exceeds limit anywhere in
// [0, tau]. Degree <= 1 polynomials are monotone, so endpoint checking alone
// suffices; higher degrees are also checked at 63 evenly spaced interior
// points, per §4.7.
func boundExtremaOf(coeffs []float64, tau, limit float64) bool {
	if limit <= 0 {
		return evalPoly(coeffs, 0) == 0 && evalPoly(coeffs, tau) == 0
	}
	if math.Abs(evalPoly(coeffs, 0)) > limit || math.Abs(evalPoly(coeffs, tau)) > limit {
		return false
	}
	if len(coeffs) <= 2 {
		// Linear (or constant): monotone, endpoints checked above suffice.
		return true
	}

	const steps = 64
	dt := tau / steps
	for i := 1; i < steps; i++ {
		t := float64(i) * dt
		if math.Abs(evalPoly(coeffs, t)) > limit {
			return false
		}
	}
	return true
}

func evalPoly(coeffs []float64, t float64) float64 {
	var v, tp float64
	tp = 1
	for _, c := range coeffs {
		v += c * tp
		tp *= t
	}
	return v
}
