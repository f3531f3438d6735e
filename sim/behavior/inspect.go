package behavior

import "github.com/prodline/prodline-sim/sim"

// InspectPhase is the quality gate and the cycle's output step. A defective
// output is caught with DetectionProb and flagged for reject routing; the
// item is then put on the routed destination, with the machine BLOCKED while
// the destination is at capacity.
type InspectPhase struct{}

func (InspectPhase) Name() string { return "inspect" }

func (InspectPhase) Enabled(cfg *sim.MachineConfig) bool { return true }

func (InspectPhase) Run(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	out := ctx.Output
	if out == nil {
		// Transform always runs before inspect; a missing output is a defect.
		panic("inspect: no transformed output in cycle context")
	}

	if cfg.Quality.DetectionProb > 0 && out.IsDefective {
		if ctx.RNG.Float64() < cfg.Quality.DetectionProb {
			ctx.Rejected = true
		}
	}

	ctx.Log(sim.StateBlocked)
	dest := ctx.Conn.Route(out, ctx.Rejected)
	if err := dest.Put(p, out); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
