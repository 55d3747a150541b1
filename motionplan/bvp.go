package motionplan

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// bvpSolver computes the closed-form, minimum control-effort-plus-time
// connector between two StatePVA endpoints of the double integrator, where
// jerk is the control input. The optimal jerk for fixed duration T is
// quadratic in t (the Pontryagin minimum-energy
// steering function of a third-order integrator chain), obtained by solving
// the 3x3 controllability-Gramian system in closed form; integrating it three
// times yields the quintic position polynomial stored in a Piece.
//
// The Gramian system is driven not by the raw endpoint differences but by
// the deltas the jerk control must still supply after the source state's own
// velocity and acceleration have drifted freely for the connector's duration:
// with x0 carrying nonzero V/A, the state at time T under zero jerk is
// already p0+v0*T+a0*T^2/2, v0+a0*T, a0, so the boundary-value problem the
// controllability Gramian solves is against x1 minus that drift, not against
// x1 minus x0.
type bvpSolver struct {
	rho float64 // time-weight in J(T) = rho*T + effort(T); must be > 0
}

func newBVPSolver(rho float64) *bvpSolver {
	return &bvpSolver{rho: rho}
}

// sameStateEpsilon bounds the position/velocity/acceleration deltas below
// which two states are treated as identical, producing a trivial zero-
// duration-adjacent connector instead of attempting to root a degenerate
// (all-zero) cost polynomial.
const sameStateEpsilon = 1e-9

// minDuration is the smallest Piece duration the solver will ever report;
// guards against returning tau=0, which violates the Piece invariant tau>0.
const minDuration = 1e-6

// solve returns the optimal connecting Piece from x0 to x1, its duration and
// cost, or ok=false if no positive-duration solution exists (BVP no-solution,
// per §7 — treated by callers as "edge infeasible", never propagated further).
func (b *bvpSolver) solve(x0, x1 StatePVA) (piece Piece, cost float64, ok bool) {
	rawDP := x1.P.Sub(x0.P)
	rawDV := x1.V.Sub(x0.V)
	da := x1.A.Sub(x0.A)

	if rawDP.Norm2() < sameStateEpsilon && rawDV.Norm2() < sameStateEpsilon && da.Norm2() < sameStateEpsilon {
		return b.trivialPiece(x0, x1), 0, true
	}

	tau, ok := b.optimalDuration(rawDP, x0.V, x0.A, rawDV, da)
	if !ok {
		return Piece{}, 0, false
	}
	dp, dv := driftAdjusted(x0.V, x0.A, rawDP, rawDV, tau)
	cost = b.costAt(tau, dp, dv, da)
	piece = b.buildPiece(x0, tau, dp, dv, da)
	return piece, cost, true
}

// driftAdjusted returns the position/velocity deltas the jerk control must
// still account for at duration tau, after subtracting the drift x0's own
// velocity v0 and acceleration a0 would contribute under zero jerk:
// p(tau) = p0 + v0*tau + a0*tau^2/2, v(tau) = v0 + a0*tau. Acceleration has
// no analogous drift term (jerk is the only thing that moves it), so da is
// unaffected and computed directly as x1.A - x0.A by the caller.
func driftAdjusted(v0, a0, rawDP, rawDV r3.Vector, tau float64) (dp, dv r3.Vector) {
	dp = rawDP.Sub(v0.Mul(tau)).Sub(a0.Mul(0.5 * tau * tau))
	dv = rawDV.Sub(a0.Mul(tau))
	return dp, dv
}

func (b *bvpSolver) trivialPiece(x0, x1 StatePVA) Piece {
	var p Piece
	p.Tau = minDuration
	for axis := 0; axis < 3; axis++ {
		p0 := axisOf(x0.P, axis)
		p1 := axisOf(x1.P, axis)
		v0 := axisOf(x0.V, axis)
		a0 := axisOf(x0.A, axis)
		// Linear blend over the minimum duration; both endpoints are
		// effectively coincident so any dynamically-feasible connector works.
		T := p.Tau
		p.Coefs[axis] = [pieceDegree + 1]float64{
			p0, v0, a0 / 2, (p1 - p0 - v0*T - a0*T*T/2) / (T * T * T), 0, 0,
		}
	}
	return p
}

// polyCoeffs returns the degree-6 coefficients (ascending order, c[0]..c[6])
// of dJ/dT * T^6, whose smallest positive real root is the optimal duration.
//
// rawDP, rawDV are the raw endpoint differences x1.P-x0.P, x1.V-x0.V and da
// is x1.A-x0.A; v0, a0 are x0's own velocity and acceleration. J(T) is built
// from the drift-adjusted deltas dp(T) = rawDP - v0*T - a0*T^2/2 and dv(T) =
// rawDV - a0*T, which are themselves polynomials in T, so dJ/dT picks up
// extra terms beyond the rest-state case (v0=a0=0). Substituting them into
// J(T) = rho*T + [720|dp|^2 - 720(dp.dv)T + (192|dv|^2 + 120(dp.da))T^2 -
// 72(dv.da)T^3 + 9|da|^2 T^4] / T^5 and collecting powers of T gives
// J(T) = sum_k q[k]*T^(k-5) with the q[k] below, so dJ/dT * T^6 =
// sum_k (k-5)*q[k]*T^k. Substituting v0=a0=0 collapses this back to the classic
// -3600|dp|^2, 2880(dp.dv), -576|dv|^2-360(dp.da), 144(dv.da), -9|da|^2
// coefficients.
func (b *bvpSolver) polyCoeffs(rawDP, v0, a0, rawDV, da r3.Vector) [7]float64 {
	dpp := rawDP.Dot(rawDP)
	dpv0 := rawDP.Dot(v0)
	dpdv := rawDP.Dot(rawDV)
	dpda := rawDP.Dot(da)
	v0v0 := v0.Dot(v0)
	v0dv := v0.Dot(rawDV)
	dvdv := rawDV.Dot(rawDV)
	a0dv := a0.Dot(rawDV)
	v0da := v0.Dot(da)
	dvda := rawDV.Dot(da)
	a0a0 := a0.Dot(a0)
	a0da := a0.Dot(da)
	daDa := da.Dot(da)

	var q [7]float64
	q[0] = 720 * dpp
	q[1] = -1440*dpv0 - 720*dpdv
	q[2] = 720*v0v0 + 720*v0dv + 192*dvdv + 120*dpda
	q[3] = -24*a0dv - 120*v0da - 72*dvda
	q[4] = 12*a0a0 + 12*a0da + 9*daDa
	q[5] = 0
	q[6] = b.rho

	var c [7]float64
	for k := 0; k <= 6; k++ {
		c[k] = float64(k-5) * q[k]
	}
	return c
}

// costAt evaluates J(T) directly from the closed-form cost expression, using
// the drift-adjusted deltas at T=tau.
func (b *bvpSolver) costAt(tau float64, dp, dv, da r3.Vector) float64 {
	dpp := dp.Dot(dp)
	dpv := dp.Dot(dv)
	dvv := dv.Dot(dv)
	dpa := dp.Dot(da)
	dva := dv.Dot(da)
	daa := da.Dot(da)

	t1 := tau
	t2 := t1 * t1
	t3 := t2 * t1
	t4 := t3 * t1
	t5 := t4 * t1

	return b.rho*tau +
		720*dpp/t5 -
		720*dpv/t4 +
		(192*dvv+120*dpa)/t3 -
		72*dva/t2 +
		9*daa/t1
}

// optimalDuration returns the smallest positive real root of the degree-6
// dJ/dT polynomial, found via the eigenvalues of its companion matrix.
func (b *bvpSolver) optimalDuration(rawDP, v0, a0, rawDV, da r3.Vector) (float64, bool) {
	coefs := b.polyCoeffs(rawDP, v0, a0, rawDV, da)
	roots := realPositiveRoots(coefs)
	if len(roots) == 0 {
		return 0, false
	}
	best := roots[0]
	for _, r := range roots[1:] {
		if r < best {
			best = r
		}
	}
	if best < minDuration {
		best = minDuration
	}
	return best, true
}

// realPositiveRoots returns the positive real roots of the polynomial with
// ascending coefficients c[0]..c[6] (ignoring any trailing zero high-order
// coefficients, which lower the effective degree), via companion-matrix
// eigendecomposition. Complex roots with a negligible imaginary part are
// treated as real.
func realPositiveRoots(c [7]float64) []float64 {
	degree := len(c) - 1
	for degree > 0 && c[degree] == 0 {
		degree--
	}
	if degree == 0 {
		return nil
	}

	companion := mat.NewDense(degree, degree, nil)
	lead := c[degree]
	for i := 0; i < degree; i++ {
		companion.Set(i, degree-1, -c[i]/lead)
		if i > 0 {
			companion.Set(i, i-1, 1)
		}
	}

	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenRight) {
		return nil
	}
	values := eig.Values(nil)

	const imagTol = 1e-6
	roots := make([]float64, 0, degree)
	for _, v := range values {
		if math.Abs(imag(v)) > imagTol {
			continue
		}
		if re := real(v); re > 0 {
			roots = append(roots, re)
		}
	}
	return roots
}

// buildPiece integrates the optimal quadratic jerk j(t) = k0*(tau-t)^2/2 +
// k1*(tau-t) + k2 three times per axis to produce the quintic position
// polynomial, using the closed-form Gramian-inverse coefficients k0, k1, k2
// below. dp, dv are the drift-adjusted deltas at T=tau (see
// driftAdjusted); da is x1.A-x0.A directly.
func (b *bvpSolver) buildPiece(x0 StatePVA, tau float64, dp, dv, da r3.Vector) Piece {
	var piece Piece
	piece.Tau = tau
	t2 := tau * tau
	t3 := t2 * tau
	t4 := t3 * tau
	t5 := t4 * tau

	for axis := 0; axis < 3; axis++ {
		dpA := axisOf(dp, axis)
		dvA := axisOf(dv, axis)
		daA := axisOf(da, axis)

		k0 := 720*dpA/t5 - 360*dvA/t4 + 60*daA/t3
		k1 := -360*dpA/t4 + 192*dvA/t3 - 36*daA/t2
		k2 := 60*dpA/t3 - 36*dvA/t2 + 9*daA/tau

		p0 := axisOf(x0.P, axis)
		v0 := axisOf(x0.V, axis)
		a0 := axisOf(x0.A, axis)

		// j(t) = k0*(tau-t)^2/2 + k1*(tau-t) + k2, expanded in forward time t:
		// j(t) = A*t^2 + B*t + C with
		A := k0 / 2
		B := -k0*tau - k1
		C := k0*t2/2 + k1*tau + k2

		// Integrate j(t) = A t^2 + B t + C three times, matching a0,v0,p0 at
		// t=0: a(t)=a0+Ct+(B/2)t^2+(A/3)t^3, v(t)=v0+a0 t+(C/2)t^2+(B/6)t^3+
		// (A/12)t^4, p(t)=p0+v0 t+(a0/2)t^2+(C/6)t^3+(B/24)t^4+(A/60)t^5.
		piece.Coefs[axis] = [pieceDegree + 1]float64{
			p0, v0, a0 / 2, C / 6, B / 24, A / 60,
		}
	}
	return piece
}

// costOfPiece evaluates J = rho*tau + integral_0^tau |jerk(t)|^2 dt directly
// from an arbitrary piece's coefficients, rather than from the boundary
// deltas that produced it. Used for pieces that did not come straight out of
// solve — in particular a regional-bridge repair, whose reshaped interior
// coefficients no longer match the closed-form optimum solve would compute
// for the same boundary states.
func (b *bvpSolver) costOfPiece(p Piece) float64 {
	tau := p.Tau
	t2 := tau * tau
	t3 := t2 * tau
	t4 := t3 * tau
	t5 := t4 * tau

	cost := b.rho * tau
	for axis := 0; axis < 3; axis++ {
		c := p.Coefs[axis]
		A := 6 * c[3]
		B := 24 * c[4]
		C := 60 * c[5]
		// integral_0^tau (A + B t + C t^2)^2 dt
		cost += A*A*tau + A*B*t2 + (2*A*C+B*B)*t3/3 + B*C*t4/2 + C*C*t5/5
	}
	return cost
}

// reachableRadius answers the inverse-cost question from §4.4: given a cost
// budget, what is the largest position-distance |Δp| a zero-Δv,Δa connector
// from a state at rest could cover while staying within budget? At the BVP's
// own optimal duration, dJ/dT=0 gives |Δp|^2 = rho*tau^6/3600 and J =
// 1.2*rho*tau, so tau = J/(1.2*rho) and |Δp| = sqrt(rho*tau^6/3600). Forward
// and backward radii both reduce to this same closed form because the
// rest-state BVP cost is symmetric under endpoint reversal (see DESIGN.md,
// Open Question 2). Used only as a neighborhood-radius heuristic, not as a
// substitute for solve's drift-aware duration search.
func (b *bvpSolver) reachableRadius(costBudget float64) float64 {
	if costBudget <= 0 || b.rho <= 0 {
		return 0
	}
	tau := costBudget / (1.2 * b.rho)
	distSq := b.rho * math.Pow(tau, 6) / 3600
	if distSq <= 0 {
		return 0
	}
	return math.Sqrt(distSq)
}
