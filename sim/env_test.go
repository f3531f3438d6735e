package sim

import (
	"errors"
	"testing"
)

func TestEnv_SameInstantEventsResumeInSubmissionOrder(t *testing.T) {
	// GIVEN two processes started in order, each ticking once per second
	env := NewEnv()
	var trace []string

	tick := func(name string) func(p *Process) {
		return func(p *Process) {
			trace = append(trace, name+"@0")
			if err := p.Timeout(1); err != nil {
				return
			}
			trace = append(trace, name+"@1")
		}
	}
	if _, err := env.StartProcess("A", tick("A")); err != nil {
		t.Fatalf("StartProcess(A): %v", err)
	}
	if _, err := env.StartProcess("B", tick("B")); err != nil {
		t.Fatalf("StartProcess(B): %v", err)
	}

	// WHEN the simulation runs
	env.RunUntil(10)
	env.Halt()

	// THEN events at equal times fire in submission order
	want := []string{"A@0", "B@0", "A@1", "B@1"}
	if len(trace) != len(want) {
		t.Fatalf("trace length: got %d, want %d (%v)", len(trace), len(want), trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d]: got %s, want %s", i, trace[i], want[i])
		}
	}
}

func TestEnv_NegativeDelayIsSchedulingError(t *testing.T) {
	env := NewEnv()
	var got error
	_, err := env.StartProcess("neg", func(p *Process) {
		got = p.Timeout(-1)
	})
	if err != nil {
		t.Fatalf("StartProcess: %v", err)
	}

	env.RunUntil(1)
	env.Halt()

	var schedErr *SchedulingError
	if !errors.As(got, &schedErr) {
		t.Errorf("Timeout(-1): got %v, want SchedulingError", got)
	}
}

func TestEnv_RunUntilStopsAtHorizon(t *testing.T) {
	// GIVEN a process ticking once per simulated second
	env := NewEnv()
	ticks := 0
	if _, err := env.StartProcess("ticker", func(p *Process) {
		for {
			if err := p.Timeout(1); err != nil {
				return
			}
			ticks++
		}
	}); err != nil {
		t.Fatalf("StartProcess: %v", err)
	}

	// WHEN running until a horizon between ticks
	env.RunUntil(3.5)
	env.Halt()

	// THEN only events at or before the horizon fired, and the clock ends
	// exactly at the horizon
	if ticks != 3 {
		t.Errorf("ticks: got %d, want 3", ticks)
	}
	if env.Now() != 3.5 {
		t.Errorf("Now(): got %v, want 3.5", env.Now())
	}
}

func TestEnv_ClockIsMonotonic(t *testing.T) {
	env := NewEnv()
	var times []float64
	if _, err := env.StartProcess("probe", func(p *Process) {
		for i := 0; i < 5; i++ {
			if err := p.Timeout(0.5); err != nil {
				return
			}
			times = append(times, env.Now())
		}
	}); err != nil {
		t.Fatalf("StartProcess: %v", err)
	}

	env.RunUntil(10)
	env.Halt()

	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			t.Errorf("clock went backwards: %v after %v", times[i], times[i-1])
		}
	}
}

func TestEnv_HaltReleasesSuspendedProcesses(t *testing.T) {
	// GIVEN a process suspended on an empty buffer
	env := NewEnv()
	buf := NewBuffer(env, "empty", 0)
	var got error
	done := false
	if _, err := env.StartProcess("blocked", func(p *Process) {
		_, got = buf.Get(p)
		done = true
	}); err != nil {
		t.Fatalf("StartProcess: %v", err)
	}

	env.RunUntil(1)

	// WHEN the environment halts
	env.Halt()

	// THEN the blocked call returned ErrHalted and the process unwound
	if !done {
		t.Fatal("process did not unwind after Halt")
	}
	if !errors.Is(got, ErrHalted) {
		t.Errorf("Get after Halt: got %v, want ErrHalted", got)
	}
}

func TestEnv_ScheduleAfterHaltFails(t *testing.T) {
	env := NewEnv()
	env.RunUntil(1)
	env.Halt()

	if _, err := env.StartProcess("late", func(p *Process) {}); err == nil {
		t.Error("StartProcess on halted env: got nil error, want SchedulingError")
	}
}
