package sim

import (
	"errors"
	"fmt"
)

// ErrHalted is returned from blocking calls (Timeout, Buffer.Get, Buffer.Put)
// when the environment has been halted. A process receiving it must unwind
// and return so its goroutine exits cleanly.
var ErrHalted = errors.New("simulation halted")

// ConfigurationError reports an invalid machine or topology configuration
// detected at layout-build or scenario-load time. It is never retried or
// silently defaulted: a miscomputed trace invalidates every downstream
// metric.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// Configf builds a ConfigurationError from a format string.
func Configf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// CycleDetectedError is raised by topological ordering when the graph is not
// a DAG. Visited reports how many nodes were successfully ordered before the
// cycle was detected.
type CycleDetectedError struct {
	Visited int
	Total   int
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("topology graph contains a cycle: visited %d of %d nodes", e.Visited, e.Total)
}

// SchedulingError indicates a programming defect in how the event queue was
// used: a negative delay, or scheduling against a halted environment.
type SchedulingError struct {
	Msg string
}

func (e *SchedulingError) Error() string {
	return "scheduling error: " + e.Msg
}
