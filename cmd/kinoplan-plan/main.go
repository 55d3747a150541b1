// Command kinoplan-plan runs a single plan request loaded from a JSON file
// against a reference grid environment, for manual testing of the planner
// core, mirroring the teacher's cmd-plan tool but for the point-mass
// kinodynamic domain instead of joint-space arm planning.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/geo/r3"

	"github.com/skybound-robotics/kinoplan/internal/gridenv"
	"github.com/skybound-robotics/kinoplan/internal/polyopt"
	"github.com/skybound-robotics/kinoplan/logging"
	"github.com/skybound-robotics/kinoplan/motionplan"
)

// planRequest is the on-disk request format: a PlannerConfig plus the
// start/goal states and a list of box obstacles to seed the reference grid.
type planRequest struct {
	Config *motionplan.PlannerConfig `json:"config"`

	Start stateJSON `json:"start"`
	Goal  stateJSON `json:"goal"`

	GridOrigin     vectorJSON `json:"grid_origin"`
	GridResolution float64    `json:"grid_resolution"`
	GridDims       [3]int     `json:"grid_dims"`
	Obstacles      []boxJSON  `json:"obstacles"`

	BudgetSeconds float64 `json:"budget_seconds"`
}

type vectorJSON struct {
	X, Y, Z float64
}

func (v vectorJSON) toR3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

type stateJSON struct {
	P, V, A vectorJSON
}

func (s stateJSON) toState() motionplan.StatePVA {
	return motionplan.StatePVA{P: s.P.toR3(), V: s.V.toR3(), A: s.A.toR3()}
}

type boxJSON struct {
	Min, Max vectorJSON
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func realMain() error {
	verbose := flag.Bool("v", false, "verbose")
	seed := flag.Int64("seed", -1, "override the request's random seed")
	flag.Parse()

	if len(flag.Args()) == 0 {
		return fmt.Errorf("need a json plan request file")
	}

	logger := logging.New("kinoplan-plan")
	if *verbose {
		logger = logging.NewDebug("kinoplan-plan")
	}

	logger.Infof("reading plan request from %s", flag.Arg(0))
	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		return err
	}

	var req planRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return err
	}
	if req.Config == nil {
		req.Config = motionplan.DefaultPlannerConfig()
	}
	if *seed >= 0 {
		req.Config.RandomSeed = *seed
	}

	grid := gridenv.NewGrid(req.GridOrigin.toR3(), req.GridResolution, req.GridDims, logger.Sublogger("grid"))
	for _, box := range req.Obstacles {
		grid.SetBoxOccupied(box.Min.toR3(), box.Max.toR3())
	}

	var optimizer motionplan.PolynomialOptimizer
	if req.Config.UseRegionalOpt {
		optimizer = polyopt.New(logger.Sublogger("polyopt"))
	}

	planner, err := motionplan.NewPlanner(req.Config, grid, grid, optimizer, nil, logger)
	if err != nil {
		return err
	}

	budget := time.Duration(req.BudgetSeconds * float64(time.Second))
	if budget <= 0 {
		budget = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), budget+time.Second)
	defer cancel()

	start := time.Now()
	plan, err := planner.Plan(ctx, req.Start.toState(), req.Goal.toState(), budget)
	if err != nil {
		return err
	}

	logger.Infof("status=%s cost=%.4f samples=%d nodes=%d elapsed=%s",
		plan.Status, plan.Cost, plan.SampleCount, plan.TreeNodeCount, time.Since(start))
	for _, cp := range plan.Convergence {
		logger.Infof("convergence: t=%.3fs cost=%.4f", cp.ElapsedSeconds, cp.Cost)
	}
	return nil
}
