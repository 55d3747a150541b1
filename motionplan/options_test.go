package motionplan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPlannerConfigValidates(t *testing.T) {
	cfg := DefaultPlannerConfig()
	assert.NoError(t, cfg.validate())
}

func TestPlannerConfigRejectsNonPositiveRho(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.Rho = 0
	err := cfg.validate()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestPlannerConfigRejectsBadDynamicLimits(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.VelLimit = -1
	assert.Error(t, cfg.validate())
}

func TestPlannerConfigRejectsZeroTreeNodeNums(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.TreeNodeNums = 0
	assert.Error(t, cfg.validate())
}

func TestPlannerConfigRejectsBadWorldBounds(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.WorldMin[0] = cfg.WorldMax[0]
	assert.Error(t, cfg.validate())
}

func TestPlannerConfigRejectsOutOfRangeGoalBias(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.GoalBiasProbability = 1.5
	assert.Error(t, cfg.validate())
}
