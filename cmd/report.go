// Prints the end-of-run report: per-machine production and quality counters,
// the bucketed state summary and (optionally) the detail rows.

package cmd

import (
	"fmt"

	"github.com/prodline/prodline-sim/sim"
	"github.com/prodline/prodline-sim/sim/aggregate"
	"github.com/prodline/prodline-sim/sim/layout"
)

// PrintReport displays aggregated results at the end of the simulation.
func PrintReport(result *layout.Result, agg *aggregate.Aggregator, horizon float64, detail bool) {
	fmt.Println("=== Production Report ===")
	for _, name := range result.MachineOrder {
		m := result.Machines[name]
		fmt.Printf("%-16s produced=%-7d defects(created=%d detected=%d escaped=%d) cost=%.2f\n",
			name, m.ItemsProduced, m.DefectsCreated, m.DefectsDetected, m.DefectsEscaped, m.ConversionCost())
		for _, state := range sim.TrackedStates {
			if t := m.TimeInState[state]; t > 0 {
				fmt.Printf("  %-10s %10.1fs\n", state, t)
			}
		}
	}
	fmt.Printf("Sink items   : %d\n", result.Sink.Len())
	fmt.Printf("Reject items : %d\n", result.Reject.Len())

	fmt.Println("=== State Summary ===")
	fmt.Println("machine          bucket    execute    starved    blocked       down     jammed  transitions  avail%")
	for _, row := range agg.Summary() {
		avail := "   -"
		if row.AvailabilityPct != nil {
			avail = fmt.Sprintf("%.1f", *row.AvailabilityPct)
		}
		fmt.Printf("%-16s %6d %10.1f %10.1f %10.1f %10.1f %10.1f %12d  %s\n",
			row.MachineName, row.BucketIndex,
			row.ExecuteSec, row.StarvedSec, row.BlockedSec, row.DownSec, row.JammedSec,
			row.TransitionCount, avail)
	}

	if detail {
		fmt.Println("=== Event Detail ===")
		for _, row := range agg.Detail() {
			marker := " "
			if row.IsInteresting {
				marker = "*"
			}
			fmt.Printf("%s t=%9.2f %-16s %-8s <- %-8s (%.2fs)\n",
				marker, row.SimTimeSec, row.MachineName, row.State, row.PrevState, row.DurationSec)
		}
	}
}
