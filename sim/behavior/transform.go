package behavior

import "github.com/prodline/prodline-sim/sim"

// TransformPhase converts the collected inputs into the output item. Defects
// are inherited from any defective input or freshly created with
// DefectRate. Pass-through stations (output type None) forward the first
// input unchanged and create nothing.
type TransformPhase struct{}

func (TransformPhase) Name() string { return "transform" }

func (TransformPhase) Enabled(cfg *sim.MachineConfig) bool { return true }

func (TransformPhase) Run(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	// The defect draw happens before the pass-through check so the RNG
	// stream stays aligned across station kinds.
	newDefect := ctx.RNG.Float64() < cfg.Quality.DefectRate

	inherited := false
	for _, in := range ctx.Inputs {
		if in.IsDefective {
			inherited = true
			break
		}
	}

	if cfg.OutputType == sim.MaterialNone {
		// Pass-through station (e.g. pure inspection): forward unchanged.
		ctx.Output = ctx.Inputs[0]
		return Result{Outputs: []*sim.Item{ctx.Inputs[0]}}, nil
	}

	lineage := make([]string, len(ctx.Inputs))
	for i, in := range ctx.Inputs {
		lineage[i] = in.ID
	}

	telemetry := map[string]any{}
	if ctx.Telemetry != nil && ctx.Telemetry.HasConfigFor(string(cfg.OutputType)) {
		telemetry = ctx.Telemetry.Generate(string(cfg.OutputType), ctx.Inputs)
	}

	out := sim.NewItem(cfg.OutputType, ctx.Now(), ctx.Machine, newDefect || inherited, lineage, telemetry)
	ctx.Output = out
	ctx.NewDefect = newDefect
	return Result{Outputs: []*sim.Item{out}, NewDefect: newDefect}, nil
}
