package behavior

import "github.com/prodline/prodline-sim/sim"

// Orchestrator runs the phase pipeline in fixed order, threading each
// phase's outputs into the next phase's inputs and stopping early when a
// phase aborts the cycle. Disabled phases are skipped entirely: no duration,
// no state change, no random draws.
type Orchestrator struct {
	phases []Phase
}

// NewOrchestrator builds an orchestrator over an explicit phase list. Most
// callers want DefaultPipeline.
func NewOrchestrator(phases ...Phase) *Orchestrator {
	return &Orchestrator{phases: phases}
}

// DefaultPipeline is the standard six-phase cycle:
// Collect → Breakdown → Microstop → Execute → Transform → Inspect.
func DefaultPipeline() *Orchestrator {
	return NewOrchestrator(
		CollectPhase{},
		BreakdownPhase{},
		MicrostopPhase{},
		ExecutePhase{},
		TransformPhase{},
		InspectPhase{},
	)
}

// Phases returns the configured phase order.
func (o *Orchestrator) Phases() []Phase { return o.phases }

// RunCycle executes one full cycle. The returned Result combines all phase
// results: the final outputs, whether a new defect was created, the summed
// phase durations, and whether the cycle aborted early.
func (o *Orchestrator) RunCycle(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	var combined Result

	for _, phase := range o.phases {
		if !phase.Enabled(cfg) {
			continue
		}

		res, err := phase.Run(p, cfg, ctx)
		if err != nil {
			return combined, err
		}

		if len(res.Outputs) > 0 {
			combined.Outputs = res.Outputs
			ctx.Inputs = res.Outputs
		}
		if res.NewDefect {
			combined.NewDefect = true
		}
		combined.Duration += res.Duration
		if res.Abort {
			combined.Abort = true
			break
		}
	}

	return combined, nil
}
