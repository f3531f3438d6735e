package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prodline/prodline-sim/sim"
)

// probePhase is a scripted phase for orchestrator tests.
type probePhase struct {
	name    string
	enabled bool
	result  Result
	ran     *[]string
}

func (p probePhase) Name() string                          { return p.name }
func (p probePhase) Enabled(cfg *sim.MachineConfig) bool   { return p.enabled }
func (p probePhase) Run(proc *sim.Process, cfg *sim.MachineConfig, ctx *Context) (Result, error) {
	*p.ran = append(*p.ran, p.name)
	return p.result, nil
}

func TestOrchestrator_SkipsDisabledPhases(t *testing.T) {
	var ran []string
	orch := NewOrchestrator(
		probePhase{name: "first", enabled: true, ran: &ran},
		probePhase{name: "skipped", enabled: false, ran: &ran},
		probePhase{name: "last", enabled: true, ran: &ran},
	)

	_, err := orch.RunCycle(nil, tubeConfig("m"), newCtx(tubeConfig("m"), 1))
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "last"}, ran)
}

func TestOrchestrator_AbortStopsPipeline(t *testing.T) {
	var ran []string
	orch := NewOrchestrator(
		probePhase{name: "first", enabled: true, ran: &ran},
		probePhase{name: "aborter", enabled: true, result: Result{Abort: true}, ran: &ran},
		probePhase{name: "unreached", enabled: true, ran: &ran},
	)

	res, err := orch.RunCycle(nil, tubeConfig("m"), newCtx(tubeConfig("m"), 1))
	assert.NoError(t, err)
	assert.True(t, res.Abort)
	assert.Equal(t, []string{"first", "aborter"}, ran)
}

func TestOrchestrator_CombinesDurationsAndOutputs(t *testing.T) {
	var ran []string
	items := []*sim.Item{{ID: "a"}}
	orch := NewOrchestrator(
		probePhase{name: "produce", enabled: true, result: Result{Outputs: items, Duration: 1.5}, ran: &ran},
		probePhase{name: "delay", enabled: true, result: Result{Duration: 2.5, NewDefect: true}, ran: &ran},
	)

	ctx := newCtx(tubeConfig("m"), 1)
	res, err := orch.RunCycle(nil, tubeConfig("m"), ctx)
	assert.NoError(t, err)

	// Outputs thread into the context for the next phase; durations sum
	assert.Equal(t, items, res.Outputs)
	assert.Equal(t, items, ctx.Inputs)
	assert.Equal(t, 4.0, res.Duration)
	assert.True(t, res.NewDefect)
}

func TestDefaultPipeline_PhaseOrder(t *testing.T) {
	var names []string
	for _, p := range DefaultPipeline().Phases() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"collect", "breakdown", "microstop", "execute", "transform", "inspect"}, names)
}
