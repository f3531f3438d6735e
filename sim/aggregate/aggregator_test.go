package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prodline/prodline-sim/sim"
)

var t0 = time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)

func TestAggregator_SplitsDurationAcrossBucketBoundary(t *testing.T) {
	// GIVEN 100s buckets and a 100s EXECUTE interval spanning [50, 150)
	agg := New(100, 5, t0)

	// WHEN the machine leaves EXECUTE at t=150 after 100s
	agg.OnStateChange("Filler", sim.StateDown, 150, sim.StateExecute, 100)
	agg.Finalize(150)

	// THEN the duration splits 50/50 between bucket 0 and bucket 1
	rows := agg.Summary()
	byBucket := map[int]SummaryRow{}
	for _, r := range rows {
		byBucket[r.BucketIndex] = r
	}
	assert.Equal(t, 50.0, byBucket[0].ExecuteSec)
	assert.Equal(t, 50.0, byBucket[1].ExecuteSec)

	// The DOWN transition itself lands in the bucket of its timestamp
	assert.Equal(t, 1, byBucket[1].DownCount)
	assert.Equal(t, 1, byBucket[1].TransitionCount)
}

func TestAggregator_SplitsLongDurationAcrossManyBuckets(t *testing.T) {
	// GIVEN a 250s STARVED interval over 100s buckets, [0, 250)
	agg := New(100, 5, t0)

	agg.OnStateChange("Packer", sim.StateExecute, 250, sim.StateStarved, 250)

	byBucket := map[int]SummaryRow{}
	for _, r := range agg.Summary() {
		byBucket[r.BucketIndex] = r
	}
	assert.Equal(t, 100.0, byBucket[0].StarvedSec)
	assert.Equal(t, 100.0, byBucket[1].StarvedSec)
	assert.Equal(t, 50.0, byBucket[2].StarvedSec)
}

func TestBucketStats_AvailabilityPct(t *testing.T) {
	// 80s execute, 15s down, 5s jammed: availability 80%
	b := &BucketStats{ExecuteSec: 80, DownSec: 15, JammedSec: 5, StarvedSec: 200}
	pct := b.AvailabilityPct()
	if assert.NotNil(t, pct) {
		assert.InDelta(t, 80.0, *pct, 1e-9)
	}

	// Only starved/blocked time: availability is undefined, not zero
	idle := &BucketStats{StarvedSec: 300}
	assert.Nil(t, idle.AvailabilityPct())
}

func TestAggregator_FinalizeClosesOpenStates(t *testing.T) {
	// GIVEN a machine that entered EXECUTE at t=50 and never left
	agg := New(100, 5, t0)
	agg.OnStateChange("Filler", sim.StateExecute, 50, sim.StateStarved, 50)

	// WHEN the run ends at t=250
	agg.Finalize(250)

	// THEN the open EXECUTE interval [50, 250) is apportioned per bucket
	byBucket := map[int]SummaryRow{}
	for _, r := range agg.Summary() {
		byBucket[r.BucketIndex] = r
	}
	assert.Equal(t, 50.0, byBucket[0].StarvedSec)
	assert.Equal(t, 50.0, byBucket[0].ExecuteSec)
	assert.Equal(t, 100.0, byBucket[1].ExecuteSec)
	assert.Equal(t, 50.0, byBucket[2].ExecuteSec)
}

func TestAggregator_SummaryIsSorted(t *testing.T) {
	agg := New(100, 5, t0)
	agg.OnStateChange("Packer", sim.StateExecute, 150, sim.StateStarved, 150)
	agg.OnStateChange("Filler", sim.StateExecute, 150, sim.StateStarved, 150)

	rows := agg.Summary()
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.MachineName > cur.MachineName {
			t.Errorf("rows out of machine order: %s before %s", prev.MachineName, cur.MachineName)
		}
		if prev.MachineName == cur.MachineName && prev.BucketIndex > cur.BucketIndex {
			t.Errorf("rows out of bucket order for %s: %d before %d", cur.MachineName, prev.BucketIndex, cur.BucketIndex)
		}
	}
}

// emit pushes n boring transitions at 1s intervals starting at start.
func emit(agg *Aggregator, machine string, start float64, n int) float64 {
	states := []string{sim.StateExecute, sim.StateBlocked, sim.StateStarved}
	for i := 0; i < n; i++ {
		agg.OnStateChange(machine, states[i%len(states)], start, "", 0)
		start++
	}
	return start
}

func TestAggregator_DetailCapturesContextWindow(t *testing.T) {
	// GIVEN 7 events before and 7 after a single DOWN event, window 5
	agg := New(300, 5, t0)
	next := emit(agg, "Filler", 0, 7)
	agg.OnStateChange("Filler", sim.StateDown, next, sim.StateExecute, 1)
	emit(agg, "Filler", next+1, 7)

	rows := agg.Detail()

	// THEN the capture is 5 before + the event + 5 after
	assert.Len(t, rows, 11)
	interesting := 0
	for _, r := range rows {
		if r.IsInteresting {
			interesting++
			assert.Equal(t, sim.StateDown, r.State)
		}
	}
	assert.Equal(t, 1, interesting)
}

func TestAggregator_DetailShortHistoryClampsWindow(t *testing.T) {
	// GIVEN only 2 events before the DOWN and 3 after
	agg := New(300, 5, t0)
	next := emit(agg, "Filler", 0, 2)
	agg.OnStateChange("Filler", sim.StateDown, next, sim.StateExecute, 1)
	emit(agg, "Filler", next+1, 3)

	rows := agg.Detail()
	assert.Len(t, rows, 6) // min(5,2) + 1 + min(5,3)
}

func TestAggregator_DetailDeduplicatesOverlappingWindows(t *testing.T) {
	// GIVEN two DOWN events 2 apart, whose windows overlap
	agg := New(300, 5, t0)
	next := emit(agg, "Filler", 0, 6)
	agg.OnStateChange("Filler", sim.StateDown, next, sim.StateExecute, 1)
	next = emit(agg, "Filler", next+1, 2)
	agg.OnStateChange("Filler", sim.StateJammed, next, sim.StateExecute, 1)
	emit(agg, "Filler", next+1, 6)

	rows := agg.Detail()

	// Overlapping context appears once: positions 1..14 of the 16 events
	assert.Len(t, rows, 14)
	seen := map[float64]bool{}
	for _, r := range rows {
		if seen[r.SimTimeSec] {
			t.Errorf("duplicate detail row at t=%v", r.SimTimeSec)
		}
		seen[r.SimTimeSec] = true
	}
}

func TestAggregator_DetailRowsAreTimeOrdered(t *testing.T) {
	agg := New(300, 5, t0)
	next := emit(agg, "Filler", 0, 7)
	agg.OnStateChange("Filler", sim.StateDown, next, sim.StateExecute, 1)
	emit(agg, "Filler", next+1, 7)

	rows := agg.Detail()
	for i := 1; i < len(rows); i++ {
		if rows[i].SimTimeSec < rows[i-1].SimTimeSec {
			t.Errorf("detail rows out of time order at %d", i)
		}
	}
}

func TestAggregator_EvictedInterestingEventIsLost(t *testing.T) {
	// GIVEN a ring of 20x window = 40 events and a DOWN followed by far more
	// than 40 boring events
	agg := New(300, 2, t0)
	agg.OnStateChange("Filler", sim.StateDown, 0, "", 0)
	start := 1.0
	for i := 0; i < 100; i++ {
		agg.OnStateChange("Filler", sim.StateExecute, start, "", 0)
		start++
	}

	// THEN the DOWN event fell off the ring and nothing is captured
	assert.Empty(t, agg.Detail())
}

func TestAggregator_NoInterestingEventsNoDetail(t *testing.T) {
	agg := New(300, 5, t0)
	emit(agg, "Filler", 0, 20)
	assert.Nil(t, agg.Detail())
}

func TestAggregator_DetailSurvivesPartialEviction(t *testing.T) {
	// GIVEN a DOWN event deep enough in the ring that its leading context is
	// partially evicted
	agg := New(300, 2, t0) // ring capacity 40
	next := emit(agg, "Filler", 0, 38)
	agg.OnStateChange("Filler", sim.StateDown, next, sim.StateExecute, 1)
	next = emit(agg, "Filler", next+1, 10) // pushes the ring past capacity

	rows := agg.Detail()

	// The DOWN itself is still in the ring with its 2+2 window intact
	if assert.NotEmpty(t, rows) {
		found := false
		for _, r := range rows {
			if r.IsInteresting {
				found = true
			}
		}
		assert.True(t, found, "interesting event missing from %v", describe(rows))
	}
	assert.Len(t, rows, 5)
}

func describe(rows []DetailRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("t=%.0f %s", r.SimTimeSec, r.State)
	}
	return out
}
