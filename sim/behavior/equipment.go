package behavior

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/prodline/prodline-sim/sim"
)

// StateEvent is one entry in the optional full debug log.
type StateEvent struct {
	Timestamp float64
	Machine   string
	State     string
	PrevState string
	Duration  float64
}

// Equipment owns one station's configuration, wiring and cycle loop. It runs
// as a single process, looping cycles forever: each cycle goes through the
// orchestrator's phase pipeline, updates production and quality counters,
// then returns to STARVED to wait for the next batch.
type Equipment struct {
	Cfg *sim.MachineConfig

	env       *sim.Env
	orch      *Orchestrator
	conn      *Connections
	telemetry sim.TelemetryGenerator
	rng       *rand.Rand
	observer  sim.StateObserver

	state      string
	stateStart float64

	// Production counters, sampled externally.
	ItemsProduced  int
	ProducedByType map[sim.MaterialType]int

	// Quality counters.
	DefectsCreated  int
	DefectsDetected int
	DefectsEscaped  int

	// Time tracking by state, for cost and OEE.
	TimeInState map[string]float64

	// Full per-transition log, populated only when debugEvents is set so
	// long runs stay bounded in memory.
	debugEvents bool
	EventLog    []StateEvent
}

// EquipmentParams carries everything NewEquipment needs; built by the layout
// package.
type EquipmentParams struct {
	Env          *sim.Env
	Config       *sim.MachineConfig
	Orchestrator *Orchestrator
	Connections  *Connections
	Telemetry    sim.TelemetryGenerator
	RNG          *rand.Rand
	Observer     sim.StateObserver
	DebugEvents  bool
}

// NewEquipment creates the equipment and starts its process immediately.
func NewEquipment(params EquipmentParams) (*Equipment, error) {
	e := &Equipment{
		Cfg:            params.Config,
		env:            params.Env,
		orch:           params.Orchestrator,
		conn:           params.Connections,
		telemetry:      params.Telemetry,
		rng:            params.RNG,
		observer:       params.Observer,
		state:          sim.StateIdle,
		ProducedByType: make(map[sim.MaterialType]int),
		TimeInState:    make(map[string]float64),
		debugEvents:    params.DebugEvents,
	}
	for _, s := range sim.TrackedStates {
		e.TimeInState[s] = 0
	}
	if _, err := params.Env.StartProcess(params.Config.Name, e.run); err != nil {
		return nil, err
	}
	return e, nil
}

// State returns the current machine state.
func (e *Equipment) State() string { return e.state }

// Connections returns the station's wiring.
func (e *Equipment) Connections() *Connections { return e.conn }

// log records a state transition: it accumulates the elapsed time in the
// outgoing state, notifies the observer, and optionally appends to the debug
// log. A no-op when the state is unchanged.
func (e *Equipment) log(newState string) {
	if e.state == newState {
		return
	}
	now := e.env.Now()
	elapsed := now - e.stateStart
	if _, tracked := e.TimeInState[e.state]; tracked {
		e.TimeInState[e.state] += elapsed
	}

	prev := e.state
	e.state = newState
	e.stateStart = now

	logrus.Debugf("[t=%010.3f] %s: %s -> %s (%.3fs in %s)", now, e.Cfg.Name, prev, newState, elapsed, prev)

	if e.observer != nil {
		e.observer.OnStateChange(e.Cfg.Name, newState, now, prev, elapsed)
	}
	if e.debugEvents {
		e.EventLog = append(e.EventLog, StateEvent{
			Timestamp: now,
			Machine:   e.Cfg.Name,
			State:     newState,
			PrevState: prev,
			Duration:  elapsed,
		})
	}
}

// run is the equipment process: cycles forever until the environment halts.
func (e *Equipment) run(p *sim.Process) {
	e.log(sim.StateStarved)

	for {
		ctx := &Context{
			Machine:   e.Cfg.Name,
			Upstream:  e.conn.Primary,
			Conn:      e.conn,
			Telemetry: e.telemetry,
			RNG:       e.rng,
			Log:       e.log,
			Now:       e.env.Now,
		}

		if _, err := e.orch.RunCycle(p, e.Cfg, ctx); err != nil {
			// ErrHalted: the run is over, unwind cleanly.
			return
		}

		e.recordCycle(ctx)
		e.log(sim.StateStarved)
	}
}

// recordCycle updates production and quality counters from a finished cycle.
func (e *Equipment) recordCycle(ctx *Context) {
	out := ctx.Output
	if out == nil {
		return
	}

	e.ItemsProduced++
	if out.Type != sim.MaterialNone {
		e.ProducedByType[out.Type]++
	}
	if ctx.NewDefect {
		e.DefectsCreated++
	}
	if e.Cfg.Quality.DetectionProb > 0 && out.IsDefective {
		if ctx.Rejected {
			e.DefectsDetected++
		} else {
			e.DefectsEscaped++
		}
	}
}

// TotalTimeSec is the machine's total tracked time across all states.
func (e *Equipment) TotalTimeSec() float64 {
	var total float64
	for _, t := range e.TimeInState {
		total += t
	}
	return total
}

// ConversionCost derives the machine's conversion cost from tracked time and
// the configured hourly rate.
func (e *Equipment) ConversionCost() float64 {
	return e.TotalTimeSec() / 3600.0 * e.Cfg.CostRates.TotalPerHour
}
