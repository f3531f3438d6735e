package behavior

import "github.com/prodline/prodline-sim/sim"

// MicrostopPhase models performance loss: a Bernoulli per-cycle jam check
// with a fixed clearance time.
type MicrostopPhase struct{}

func (MicrostopPhase) Name() string { return "microstop" }

// Enabled only when jams are possible.
func (MicrostopPhase) Enabled(cfg *sim.MachineConfig) bool {
	return cfg.Performance.JamProb > 0
}

func (MicrostopPhase) Run(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	if ctx.RNG.Float64() >= cfg.Performance.JamProb {
		return Result{}, nil
	}

	ctx.Log(sim.StateJammed)
	if err := p.Timeout(cfg.Performance.JamTimeSec); err != nil {
		return Result{}, err
	}
	return Result{Duration: cfg.Performance.JamTimeSec}, nil
}
