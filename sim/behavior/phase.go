// Package behavior implements the six-phase equipment cycle and the
// Equipment process that drives it.
//
// Each phase implements a specific part of the cycle:
//   - collect: wait for and gather inputs from upstream (starvation)
//   - breakdown: Poisson failure check and exponential repair (availability loss)
//   - microstop: Bernoulli jam check with fixed clearance time (performance loss)
//   - execute: the value-add processing time
//   - transform: convert inputs into an output item with lineage and telemetry
//   - inspect: quality inspection and routing, blocking on the destination
//
// Phases suspend through the process they are handed; the orchestrator runs
// them in fixed order and threads each phase's outputs into the next.
package behavior

import (
	"math/rand"

	"github.com/prodline/prodline-sim/sim"
)

// Phase is one step of the equipment cycle.
type Phase interface {
	Name() string
	// Enabled decides from config alone whether the phase runs this cycle.
	// A disabled phase contributes no duration, no state change and no
	// random draws.
	Enabled(cfg *sim.MachineConfig) bool
	Run(p *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error)
}

// Context is the shared per-cycle state phases communicate through.
type Context struct {
	Machine   string
	Upstream  *sim.Buffer
	Conn      *Connections
	Telemetry sim.TelemetryGenerator
	RNG       *rand.Rand
	Log       func(state string)
	Now       func() float64

	// Accumulated during the cycle.
	Inputs    []*sim.Item
	Output    *sim.Item
	NewDefect bool
	Rejected  bool
}

// Result is what a phase reports back to the orchestrator.
type Result struct {
	Outputs   []*sim.Item
	NewDefect bool
	Abort     bool // true stops the cycle early
	Duration  float64
}
