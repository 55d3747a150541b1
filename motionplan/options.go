package motionplan

import "math"

// default values for planner configuration, mirroring the teacher's
// plannerOptions.go defaulting style.
const (
	defaultRho                 = 1.0
	defaultVMagSample          = 3.0
	defaultVelLimit            = 3.0
	defaultAccLimit            = 4.0
	defaultJerkLimit           = 8.0
	defaultRadiusCostBetween   = 15.0
	defaultTreeNodeNums        = 10000
	defaultGoalBiasProbability = 0.05
	defaultCloseGoalTolerance  = 0.5
	defaultCollisionResolution = 0.05 // fine-step fallback, in seconds
	defaultRegionalCandidates  = 5    // bounded per-iteration regional work
)

// PlannerConfig is the set of options recognized by Init, per §6. It is
// typically unmarshaled from JSON, matching the teacher's
// rrtStarConnectOptions pattern.
type PlannerConfig struct {
	// Rho is the time-weight in J(T) = rho*T + control effort. Must be > 0.
	Rho float64 `json:"rho"`

	// VMagSample bounds the velocity magnitude of uniformly-sampled states.
	VMagSample float64 `json:"v_mag_sample"`

	// VelLimit, AccLimit, JerkLimit bound per-axis dynamic feasibility.
	VelLimit  float64 `json:"vel_limit"`
	AccLimit  float64 `json:"acc_limit"`
	JerkLimit float64 `json:"jerk_limit"`

	// RadiusCostBetweenTwoStates caps the neighborhood radius in cost units.
	RadiusCostBetweenTwoStates float64 `json:"radius_cost_between_two_states_"`

	// AllowCloseGoal enables the approximate-goal fallback (§4.4).
	AllowCloseGoal bool `json:"allow_close_goal"`

	// StopAfterFirstTrajFound enables early-exit on the first bridge found.
	StopAfterFirstTrajFound bool `json:"stop_after_first_traj_found"`

	// Rewire enables rewiring (§4.4).
	Rewire bool `json:"rewire"`

	// UseRegionalOpt enables the regional bridge (§4.6).
	UseRegionalOpt bool `json:"use_regional_opt"`

	// TreeNodeNums is the node pool capacity, shared across both trees.
	TreeNodeNums int `json:"tree_node_nums"`

	// TestConvergency records every strictly-improving solution (§8 scenario 6).
	TestConvergency bool `json:"test_convergency"`

	// CloseGoalTolerance is the position-only tolerance used by the
	// close-goal fallback; see DESIGN.md, Open Question 1.
	CloseGoalTolerance float64 `json:"close_goal_tolerance"`

	// GoalBiasProbability is the fixed probability the sampler emits the
	// goal state exactly (§4.3).
	GoalBiasProbability float64 `json:"goal_bias_probability"`

	// WorldMin, WorldMax bound the AABB uniform position samples are drawn
	// from.
	WorldMin [3]float64 `json:"world_min,omitempty"`
	WorldMax [3]float64 `json:"world_max,omitempty"`

	// RandomSeed seeds the sampler's RNG for deterministic sample sequences.
	// Zero means "use an arbitrary but still deterministic seed".
	RandomSeed int64 `json:"random_seed"`
}

// DefaultPlannerConfig returns a PlannerConfig with reasonable defaults, all
// of which can be overridden before calling Init.
func DefaultPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		Rho:                        defaultRho,
		VMagSample:                 defaultVMagSample,
		VelLimit:                   defaultVelLimit,
		AccLimit:                   defaultAccLimit,
		JerkLimit:                  defaultJerkLimit,
		RadiusCostBetweenTwoStates: defaultRadiusCostBetween,
		AllowCloseGoal:             false,
		StopAfterFirstTrajFound:    false,
		Rewire:                     true,
		UseRegionalOpt:             true,
		TreeNodeNums:               defaultTreeNodeNums,
		TestConvergency:            false,
		CloseGoalTolerance:         defaultCloseGoalTolerance,
		GoalBiasProbability:        defaultGoalBiasProbability,
		WorldMin:                   [3]float64{-50, -50, -50},
		WorldMax:                   [3]float64{50, 50, 50},
	}
}

// validate implements the Configuration-error kind from §7.
func (c *PlannerConfig) validate() error {
	switch {
	case c.Rho <= 0:
		return wrapConfigErr("rho must be > 0")
	case c.VelLimit <= 0 || c.AccLimit <= 0 || c.JerkLimit <= 0:
		return wrapConfigErr("vel_limit, acc_limit and jerk_limit must all be > 0")
	case c.TreeNodeNums <= 0:
		return wrapConfigErr("tree_node_nums must be > 0")
	case c.GoalBiasProbability < 0 || c.GoalBiasProbability > 1:
		return wrapConfigErr("goal_bias_probability must be within [0, 1]")
	case c.CloseGoalTolerance < 0:
		return wrapConfigErr("close_goal_tolerance must be >= 0")
	case math.IsNaN(c.Rho):
		return wrapConfigErr("rho must not be NaN")
	}
	for i := 0; i < 3; i++ {
		if c.WorldMin[i] >= c.WorldMax[i] {
			return wrapConfigErr("world_min must be strictly less than world_max on every axis")
		}
	}
	return nil
}

func wrapConfigErr(msg string) error {
	return &configError{msg: msg}
}

type configError struct {
	msg string
}

func (e *configError) Error() string {
	return "motionplan: invalid planner configuration: " + e.msg
}

func (e *configError) Unwrap() error {
	return ErrInvalidConfig
}
