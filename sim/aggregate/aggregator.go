// Package aggregate converts the firehose of equipment state changes into
// two compact outputs: bucketed time-in-state summaries (for OEE) and a
// context-windowed detail log around interesting DOWN/JAMMED events (for
// process mining). The detail side is lossy by design: events are held in a
// fixed-size circular buffer and anything evicted before capture is
// permanently lost, which bounds memory on long runs.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/prodline/prodline-sim/sim"
)

// DefaultBucketSizeSec is the default summary bucket width.
const DefaultBucketSizeSec = 300.0

// DefaultContextWindow is the number of events captured before and after
// each interesting event.
const DefaultContextWindow = 5

// BucketStats aggregates one machine's statistics for a single time bucket.
// Buckets are created lazily, mutated additively, never deleted.
type BucketStats struct {
	BucketIndex int
	BucketStart time.Time
	Machine     string

	// State durations in seconds.
	ExecuteSec float64
	StarvedSec float64
	BlockedSec float64
	DownSec    float64
	JammedSec  float64

	// Event counts.
	TransitionCount int
	DownCount       int
	JammedCount     int
}

// addDuration adds duration to the matching state counter. Untracked states
// (IDLE) are ignored.
func (b *BucketStats) addDuration(state string, duration float64) {
	switch state {
	case sim.StateExecute:
		b.ExecuteSec += duration
	case sim.StateStarved:
		b.StarvedSec += duration
	case sim.StateBlocked:
		b.BlockedSec += duration
	case sim.StateDown:
		b.DownSec += duration
	case sim.StateJammed:
		b.JammedSec += duration
	}
}

// TotalSec is the total tracked time in this bucket.
func (b *BucketStats) TotalSec() float64 {
	return b.ExecuteSec + b.StarvedSec + b.BlockedSec + b.DownSec + b.JammedSec
}

// AvailabilityPct is execute / (execute + down + jammed) as a percentage,
// nil when no availability-relevant time was tracked.
func (b *BucketStats) AvailabilityPct() *float64 {
	total := b.ExecuteSec + b.DownSec + b.JammedSec
	if total == 0 {
		return nil
	}
	pct := b.ExecuteSec / total * 100.0
	return &pct
}

// BufferedEvent is one event in the circular buffer used for context capture.
type BufferedEvent struct {
	Index     int // global event index, for ordering
	SimTime   float64
	Machine   string
	State     string
	PrevState string
	Duration  float64
}

// SummaryRow is one state_summary output row.
type SummaryRow struct {
	BucketStartTS   time.Time
	BucketIndex     int
	MachineName     string
	ExecuteSec      float64
	StarvedSec      float64
	BlockedSec      float64
	DownSec         float64
	JammedSec       float64
	TransitionCount int
	DownCount       int
	JammedCount     int
	AvailabilityPct *float64 // nil = undefined
}

// DetailRow is one events_detail output row.
type DetailRow struct {
	TS            time.Time
	SimTimeSec    float64
	MachineName   string
	State         string
	PrevState     string
	DurationSec   float64
	IsInteresting bool
}

type bucketKey struct {
	bucket  int
	machine string
}

type lastState struct {
	state string
	since float64
}

// Aggregator consumes every state transition and maintains the bucket table,
// the circular event buffer and the interesting-event index. It implements
// sim.StateObserver. Read methods (Summary, Detail) may be called at any
// point, including mid-run; they never mutate.
type Aggregator struct {
	BucketSizeSec float64
	SimStart      time.Time

	window  int
	ringCap int // 20x the context window

	buckets     map[bucketKey]*BucketStats
	ring        []BufferedEvent
	interesting []int
	eventIndex  int
	last        map[string]lastState
}

// New creates an aggregator. bucketSizeSec <= 0 and window <= 0 fall back to
// the defaults.
func New(bucketSizeSec float64, window int, simStart time.Time) *Aggregator {
	if bucketSizeSec <= 0 {
		bucketSizeSec = DefaultBucketSizeSec
	}
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &Aggregator{
		BucketSizeSec: bucketSizeSec,
		SimStart:      simStart,
		window:        window,
		ringCap:       window * 20,
		buckets:       make(map[bucketKey]*BucketStats),
		last:          make(map[string]lastState),
	}
}

func (a *Aggregator) bucketIndex(simTime float64) int {
	return int(math.Floor(simTime / a.BucketSizeSec))
}

func (a *Aggregator) bucket(index int, machine string) *BucketStats {
	key := bucketKey{bucket: index, machine: machine}
	b, ok := a.buckets[key]
	if !ok {
		b = &BucketStats{
			BucketIndex: index,
			BucketStart: a.SimStart.Add(time.Duration(float64(index) * a.BucketSizeSec * float64(time.Second))),
			Machine:     machine,
		}
		a.buckets[key] = b
	}
	return b
}

// OnStateChange records one transition. The prev-state duration, if any, is
// apportioned across bucket boundaries; the event is buffered for context
// capture; DOWN/JAMMED entries are marked interesting.
func (a *Aggregator) OnStateChange(machine, newState string, simTime float64, prevState string, duration float64) {
	if prevState != "" && duration > 0 {
		a.accumulate(machine, prevState, simTime-duration, simTime)
	}

	a.ring = append(a.ring, BufferedEvent{
		Index:     a.eventIndex,
		SimTime:   simTime,
		Machine:   machine,
		State:     newState,
		PrevState: prevState,
		Duration:  duration,
	})
	if len(a.ring) > a.ringCap {
		a.ring = a.ring[len(a.ring)-a.ringCap:]
	}

	if sim.InterestingStates[newState] {
		a.interesting = append(a.interesting, a.eventIndex)
	}

	b := a.bucket(a.bucketIndex(simTime), machine)
	b.TransitionCount++
	switch newState {
	case sim.StateDown:
		b.DownCount++
	case sim.StateJammed:
		b.JammedCount++
	}

	a.last[machine] = lastState{state: newState, since: simTime}
	a.eventIndex++
}

// accumulate splits [start, end) in state across every bucket boundary it
// crosses, proportionally.
func (a *Aggregator) accumulate(machine, state string, start, end float64) {
	if end <= start {
		return
	}

	startBucket := a.bucketIndex(start)
	endBucket := a.bucketIndex(end)

	if startBucket == endBucket {
		a.bucket(startBucket, machine).addDuration(state, end-start)
		return
	}

	current := start
	for idx := startBucket; idx <= endBucket; idx++ {
		boundary := float64(idx+1) * a.BucketSizeSec
		segmentEnd := math.Min(boundary, end)
		if segment := segmentEnd - current; segment > 0 {
			a.bucket(idx, machine).addDuration(state, segment)
		}
		current = segmentEnd
	}
}

// Finalize closes each machine's open state by accumulating its remaining
// duration up to totalTime. Call once when the run reaches its horizon.
func (a *Aggregator) Finalize(totalTime float64) {
	machines := make([]string, 0, len(a.last))
	for m := range a.last {
		machines = append(machines, m)
	}
	sort.Strings(machines)

	for _, m := range machines {
		ls := a.last[m]
		if ls.since < totalTime {
			a.accumulate(m, ls.state, ls.since, totalTime)
		}
	}
}

// Summary returns all bucket rows sorted by (machine, bucket index).
func (a *Aggregator) Summary() []SummaryRow {
	rows := make([]SummaryRow, 0, len(a.buckets))
	for _, b := range a.buckets {
		rows = append(rows, SummaryRow{
			BucketStartTS:   b.BucketStart,
			BucketIndex:     b.BucketIndex,
			MachineName:     b.Machine,
			ExecuteSec:      b.ExecuteSec,
			StarvedSec:      b.StarvedSec,
			BlockedSec:      b.BlockedSec,
			DownSec:         b.DownSec,
			JammedSec:       b.JammedSec,
			TransitionCount: b.TransitionCount,
			DownCount:       b.DownCount,
			JammedCount:     b.JammedCount,
			AvailabilityPct: b.AvailabilityPct(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MachineName != rows[j].MachineName {
			return rows[i].MachineName < rows[j].MachineName
		}
		return rows[i].BucketIndex < rows[j].BucketIndex
	})
	return rows
}

// Detail returns every interesting event still present in the circular
// buffer plus up to the context window of events on either side, in buffer
// order, deduplicated and sorted by simulation time. Interesting events
// evicted from the buffer before capture are gone for good.
func (a *Aggregator) Detail() []DetailRow {
	if len(a.interesting) == 0 || len(a.ring) == 0 {
		return nil
	}

	posOf := make(map[int]int, len(a.ring))
	for pos, ev := range a.ring {
		posOf[ev.Index] = pos
	}
	interestingSet := make(map[int]bool, len(a.interesting))
	for _, idx := range a.interesting {
		interestingSet[idx] = true
	}

	include := make(map[int]bool)
	for _, idx := range a.interesting {
		pos, ok := posOf[idx]
		if !ok {
			continue // evicted before capture
		}
		for off := -a.window; off <= a.window; off++ {
			if ctxPos := pos + off; ctxPos >= 0 && ctxPos < len(a.ring) {
				include[a.ring[ctxPos].Index] = true
			}
		}
	}

	rows := make([]DetailRow, 0, len(include))
	for _, ev := range a.ring {
		if !include[ev.Index] {
			continue
		}
		rows = append(rows, DetailRow{
			TS:            a.SimStart.Add(time.Duration(ev.SimTime * float64(time.Second))),
			SimTimeSec:    ev.SimTime,
			MachineName:   ev.Machine,
			State:         ev.State,
			PrevState:     ev.PrevState,
			DurationSec:   ev.Duration,
			IsInteresting: interestingSet[ev.Index],
		})
	}
	// Buffer order is already index order; sort by time with index order
	// preserved for ties.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SimTimeSec < rows[j].SimTimeSec
	})
	return rows
}
