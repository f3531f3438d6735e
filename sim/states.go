package sim

// Machine states emitted by equipment processes. STARVED, EXECUTE, BLOCKED,
// DOWN and JAMMED are tracked for time-in-state accumulation; IDLE only
// exists before the first transition.
const (
	StateIdle    = "IDLE"
	StateStarved = "STARVED"
	StateExecute = "EXECUTE"
	StateBlocked = "BLOCKED"
	StateDown    = "DOWN"
	StateJammed  = "JAMMED"
)

// TrackedStates lists the states accumulated into time-in-state counters and
// bucket statistics.
var TrackedStates = []string{StateExecute, StateStarved, StateBlocked, StateDown, StateJammed}

// InterestingStates are the loss states that trigger context capture in the
// event aggregator.
var InterestingStates = map[string]bool{StateDown: true, StateJammed: true}

// StateObserver consumes every equipment state transition. prevState is empty
// for the very first transition of a machine; duration is the time spent in
// prevState.
type StateObserver interface {
	OnStateChange(machine, newState string, simTime float64, prevState string, duration float64)
}
