package behavior

import (
	"math"

	"github.com/prodline/prodline-sim/sim"
)

// BreakdownPhase models availability loss. The per-cycle failure probability
// follows a Poisson process over the cycle time:
//
//	P(fail) = 1 - e^(-cycle_time / mtbf)
//
// On failure the machine goes DOWN and waits an exponentially distributed
// repair time with mean MTTR.
type BreakdownPhase struct{}

func (BreakdownPhase) Name() string { return "breakdown" }

// Enabled only when MTBF is configured.
func (BreakdownPhase) Enabled(cfg *sim.MachineConfig) bool {
	return cfg.Reliability.MTBFMin > 0
}

func (BreakdownPhase) Run(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	mtbfSec := cfg.Reliability.MTBFMin * 60
	pFail := 1.0 - math.Exp(-cfg.CycleTimeSec()/mtbfSec)

	if ctx.RNG.Float64() >= pFail {
		return Result{}, nil
	}

	ctx.Log(sim.StateDown)
	repair := ctx.RNG.ExpFloat64() * cfg.Reliability.MTTRMin * 60
	if err := p.Timeout(repair); err != nil {
		return Result{}, err
	}
	return Result{Duration: repair}, nil
}
