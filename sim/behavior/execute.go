package behavior

import "github.com/prodline/prodline-sim/sim"

// ExecutePhase is the value-add step: the machine runs for its cycle time.
type ExecutePhase struct{}

func (ExecutePhase) Name() string { return "execute" }

func (ExecutePhase) Enabled(cfg *sim.MachineConfig) bool { return true }

func (ExecutePhase) Run(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	ctx.Log(sim.StateExecute)
	cycle := cfg.CycleTimeSec()
	if err := p.Timeout(cycle); err != nil {
		return Result{}, err
	}
	return Result{Duration: cycle}, nil
}
