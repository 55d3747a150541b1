// Package polyopt provides the default motionplan.PolynomialOptimizer,
// reshaping a colliding Piece through a corridor while holding its duration
// fixed. The real implementation requires cgo (it drives nlopt); a no_cgo
// build tag variant exists so this module still builds without a C
// toolchain available, mirroring the teacher's ik/solver_nocgo.go split.
package polyopt
