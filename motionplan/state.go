// Package motionplan implements a bidirectional, rewiring, sampling-based
// kinodynamic motion planner for a point-mass vehicle bounded by velocity,
// acceleration and jerk limits, operating over a 3D occupancy environment.
package motionplan

import (
	"github.com/golang/geo/r3"
)

// StatePVA is a vehicle state: position, velocity and acceleration, each a 3-vector.
// Only the position participates in spatial indexing; velocity and acceleration
// participate in BVP cost and radius computation.
type StatePVA struct {
	P r3.Vector
	V r3.Vector
	A r3.Vector
}

// pieceDegree is the polynomial degree (per axis) of a Piece's position component.
// The minimum-control-effort double-integrator BVP drives jerk quadratically in
// time, so position is quintic, velocity quartic, acceleration cubic.
const pieceDegree = 5

// Piece is a single polynomial trajectory segment of fixed duration Tau, with
// six coefficients per axis ordered from the constant term (c[0]) to the t^5
// term (c[5]): p(t) = c[0] + c[1]*t + c[2]*t^2 + ... + c[5]*t^5.
type Piece struct {
	Tau   float64
	Coefs [3][pieceDegree + 1]float64
}

// Eval returns the state at t within [0, Tau].
func (p *Piece) Eval(t float64) StatePVA {
	var s StatePVA
	for axis := 0; axis < 3; axis++ {
		pos, vel, acc, _ := evalAxis(p.Coefs[axis], t)
		setAxis(&s.P, axis, pos)
		setAxis(&s.V, axis, vel)
		setAxis(&s.A, axis, acc)
	}
	return s
}

// Jerk returns the per-axis jerk (third derivative of position) at t.
func (p *Piece) Jerk(t float64) r3.Vector {
	var j r3.Vector
	for axis := 0; axis < 3; axis++ {
		_, _, _, jerk := evalAxis(p.Coefs[axis], t)
		setAxis(&j, axis, jerk)
	}
	return j
}

// StartState returns the state at t=0, reading coefficients directly rather than
// evaluating polynomials.
func (p *Piece) StartState() StatePVA {
	var s StatePVA
	for axis := 0; axis < 3; axis++ {
		c := p.Coefs[axis]
		setAxis(&s.P, axis, c[0])
		setAxis(&s.V, axis, c[1])
		setAxis(&s.A, axis, 2*c[2])
	}
	return s
}

// EndState returns the state at t=Tau.
func (p *Piece) EndState() StatePVA {
	return p.Eval(p.Tau)
}

// evalAxis evaluates a single-axis quintic and its first three derivatives at t.
func evalAxis(c [pieceDegree + 1]float64, t float64) (pos, vel, acc, jerk float64) {
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	t5 := t4 * t
	pos = c[0] + c[1]*t + c[2]*t2 + c[3]*t3 + c[4]*t4 + c[5]*t5
	vel = c[1] + 2*c[2]*t + 3*c[3]*t2 + 4*c[4]*t3 + 5*c[5]*t4
	acc = 2*c[2] + 6*c[3]*t + 12*c[4]*t2 + 20*c[5]*t3
	jerk = 6*c[3] + 24*c[4]*t + 60*c[5]*t2
	return
}

func axisOf(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setAxis(v *r3.Vector, axis int, val float64) {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
}

// Trajectory is an ordered, C²-continuous sequence of Pieces.
type Trajectory []Piece

// Duration returns the total duration of the trajectory.
func (t Trajectory) Duration() float64 {
	var total float64
	for _, p := range t {
		total += p.Tau
	}
	return total
}

// Eval returns the state at global time t, clamped to the trajectory's span.
func (t Trajectory) Eval(globalT float64) StatePVA {
	if len(t) == 0 {
		return StatePVA{}
	}
	if globalT <= 0 {
		return t[0].StartState()
	}
	elapsed := 0.0
	for _, p := range t {
		if globalT <= elapsed+p.Tau {
			return p.Eval(globalT - elapsed)
		}
		elapsed += p.Tau
	}
	return t[len(t)-1].EndState()
}

// StartState returns the state at the beginning of the trajectory.
func (t Trajectory) StartState() StatePVA {
	if len(t) == 0 {
		return StatePVA{}
	}
	return t[0].StartState()
}

// EndState returns the state at the end of the trajectory.
func (t Trajectory) EndState() StatePVA {
	if len(t) == 0 {
		return StatePVA{}
	}
	return t[len(t)-1].EndState()
}
