package motionplan

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerDeterministicForFixedSeed(t *testing.T) {
	cfg := DefaultPlannerConfig()
	goal := StatePVA{P: r3.Vector{X: 5, Y: 5, Z: 5}}

	s1 := newStateSampler(42, cfg, goal)
	s2 := newStateSampler(42, cfg, goal)

	for i := 0; i < 50; i++ {
		a := s1.sample()
		b := s2.sample()
		assert.Equal(t, a, b, "same seed must produce the same sample sequence")
	}
}

func TestSamplerDifferentSeedsDiverge(t *testing.T) {
	cfg := DefaultPlannerConfig()
	goal := StatePVA{P: r3.Vector{X: 5, Y: 5, Z: 5}}

	s1 := newStateSampler(1, cfg, goal)
	s2 := newStateSampler(2, cfg, goal)

	diverged := false
	for i := 0; i < 20; i++ {
		if s1.sample() != s2.sample() {
			diverged = true
			break
		}
	}
	assert.True(t, diverged)
}

func TestSamplerRespectsWorldBounds(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.WorldMin = [3]float64{-1, -1, -1}
	cfg.WorldMax = [3]float64{1, 1, 1}
	cfg.GoalBiasProbability = 0

	s := newStateSampler(7, cfg, StatePVA{})
	for i := 0; i < 200; i++ {
		sample := s.sample()
		require.LessOrEqual(t, sample.P.X, 1.0)
		require.GreaterOrEqual(t, sample.P.X, -1.0)
		require.LessOrEqual(t, sample.V.Norm(), cfg.VMagSample+1e-9)
	}
}

func TestSamplerGoalBiasAlwaysReturnsGoal(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.GoalBiasProbability = 1.0
	goal := StatePVA{P: r3.Vector{X: 3, Y: 2, Z: 1}}

	s := newStateSampler(1, cfg, goal)
	for i := 0; i < 10; i++ {
		assert.Equal(t, goal, s.sample())
	}
}

func TestSamplerInformedShrinkNeverGrows(t *testing.T) {
	cfg := DefaultPlannerConfig()
	s := newStateSampler(1, cfg, StatePVA{P: r3.Vector{X: 10}})
	s.enableInformed(r3.Vector{}, r3.Vector{X: 10}, 20)
	assert.Equal(t, 20.0, s.cMax)

	s.shrinkInformed(15)
	assert.Equal(t, 15.0, s.cMax)

	s.shrinkInformed(30) // worse cost must not grow the ellipsoid
	assert.Equal(t, 15.0, s.cMax)
}
