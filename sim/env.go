package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// event is a pending wakeup for a suspended process. The ordering key is
// (time, seq): seq is a monotonically increasing creation-order counter, so
// events scheduled for the same instant fire in submission order regardless
// of heap internals.
type event struct {
	time  float64
	seq   int64
	proc  *Process
	value any // delivered to the process on resume (buffer handoffs)
}

// eventQueue implements heap.Interface ordered by (time, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventQueue []*event

func (eq eventQueue) Len() int { return len(eq) }
func (eq eventQueue) Less(i, j int) bool {
	if eq[i].time != eq[j].time {
		return eq[i].time < eq[j].time
	}
	return eq[i].seq < eq[j].seq
}
func (eq eventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *eventQueue) Push(x any) {
	*eq = append(*eq, x.(*event))
}

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// resumeMsg is the value handed to a suspended process when its event fires.
// halted signals a clean shutdown instead of a delivery.
type resumeMsg struct {
	value  any
	halted bool
}

// Process is a suspendable unit of execution backed by one goroutine.
// Exactly one process (or the scheduler) runs at a time: the scheduler hands
// control over an unbuffered resume channel and waits on the environment's
// parked channel until the process suspends again or returns. A process
// yields only at Timeout, Buffer.Get and Buffer.Put.
type Process struct {
	name     string
	env      *Env
	resume   chan resumeMsg
	finished bool // written by the process goroutine before parking for the last time
}

// Name returns the process name (the station name for equipment processes).
func (p *Process) Name() string { return p.name }

// Env returns the environment this process runs in.
func (p *Process) Env() *Env { return p.env }

// suspend parks the process until the scheduler delivers its next event.
func (p *Process) suspend() (any, error) {
	p.env.parked <- struct{}{}
	msg := <-p.resume
	if msg.halted {
		return nil, ErrHalted
	}
	return msg.value, nil
}

// Timeout suspends the process for delay simulated seconds.
func (p *Process) Timeout(delay float64) error {
	if err := p.env.schedule(delay, p, nil); err != nil {
		return err
	}
	_, err := p.suspend()
	return err
}

// Env holds the simulation clock and the pending-event min-heap, and drives
// all processes on one logical thread.
type Env struct {
	now    float64
	seq    int64
	events eventQueue
	parked chan struct{}
	procs  []*Process
	halted bool
}

// NewEnv creates an environment with the clock at zero.
func NewEnv() *Env {
	return &Env{
		events: make(eventQueue, 0),
		parked: make(chan struct{}),
	}
}

// Now returns the current simulated time in seconds.
func (e *Env) Now() float64 { return e.now }

// StartProcess launches fn as a new process. The process receives its first
// dispatch through the event queue at the current instant, so processes
// started in sequence also begin running in sequence.
func (e *Env) StartProcess(name string, fn func(p *Process)) (*Process, error) {
	if e.halted {
		return nil, &SchedulingError{Msg: "start process on halted environment"}
	}
	p := &Process{name: name, env: e, resume: make(chan resumeMsg)}
	e.procs = append(e.procs, p)
	go func() {
		msg := <-p.resume
		if !msg.halted {
			fn(p)
		}
		p.finished = true
		e.parked <- struct{}{}
	}()
	if err := e.schedule(0, p, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// schedule inserts a future wakeup for p at now+delay carrying value.
func (e *Env) schedule(delay float64, p *Process, value any) error {
	if delay < 0 {
		return &SchedulingError{Msg: "negative delay"}
	}
	if e.halted {
		return &SchedulingError{Msg: "schedule on halted environment"}
	}
	e.seq++
	heap.Push(&e.events, &event{time: e.now + delay, seq: e.seq, proc: p, value: value})
	return nil
}

// RunUntil pops and dispatches events in (time, seq) order until the queue is
// empty or the next event lies beyond horizon, then advances the clock to the
// horizon. Each dispatch resumes one process and blocks until that process
// parks again, so state is only ever touched by one goroutine at a time.
func (e *Env) RunUntil(horizon float64) {
	for len(e.events) > 0 {
		if e.events[0].time > horizon {
			break
		}
		ev := heap.Pop(&e.events).(*event)
		if ev.proc.finished {
			continue
		}
		e.now = ev.time
		logrus.Debugf("[t=%010.3f] resuming %s", e.now, ev.proc.name)
		ev.proc.resume <- resumeMsg{value: ev.value}
		<-e.parked
	}
	if e.now < horizon {
		e.now = horizon
	}
	logrus.Debugf("[t=%010.3f] run finished, %d events pending", e.now, len(e.events))
}

// Halt releases every suspended process: their blocking calls return
// ErrHalted and the goroutines exit. Further scheduling fails with a
// SchedulingError. Halt is idempotent.
func (e *Env) Halt() {
	if e.halted {
		return
	}
	e.halted = true
	for _, p := range e.procs {
		if p.finished {
			continue
		}
		p.resume <- resumeMsg{halted: true}
		<-e.parked
	}
}
