package behavior

import "github.com/prodline/prodline-sim/sim"

// CollectPhase gathers BatchIn items from the primary upstream buffer. This
// phase models starvation: the process stays suspended while upstream is
// empty.
type CollectPhase struct{}

func (CollectPhase) Name() string { return "collect" }

func (CollectPhase) Enabled(cfg *sim.MachineConfig) bool { return true }

func (CollectPhase) Run(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	collected := make([]*sim.Item, 0, cfg.BatchIn)
	for i := 0; i < cfg.BatchIn; i++ {
		item, err := ctx.Upstream.Get(p)
		if err != nil {
			return Result{}, err
		}
		collected = append(collected, item)
	}
	ctx.Inputs = collected
	return Result{Outputs: collected}, nil
}
