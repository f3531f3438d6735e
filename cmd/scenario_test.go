package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prodline/prodline-sim/sim"
	"github.com/prodline/prodline-sim/sim/topology"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const toothpasteLine = `
name: toothpaste-line
source:
  initial_inventory: 5000
  material_type: None
  parent_machine: Raw
stations:
  - name: Filler
    units_per_hour: 10000
    output_type: Tube
    reliability:
      mtbf_min: 120
    performance:
      jam_prob: 0.01
  - name: Packer
    units_per_hour: 12000
    batch_in: 12
    output_type: Case
telemetry:
  Tube:
    fill_weight_g:
      kind: gaussian
      mean: 100
      stddev: 2
`

func TestLoadScenario_ParsesAndAppliesDefaults(t *testing.T) {
	path := writeScenario(t, toothpasteLine)

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	assert.Equal(t, "toothpaste-line", sc.Name)
	assert.Equal(t, 5000, sc.Source.InitialInventory)
	if assert.Len(t, sc.Stations, 2) {
		filler := sc.Stations[0]
		assert.Equal(t, "Filler", filler.Name)
		assert.Equal(t, sim.MaterialTube, filler.OutputType)
		// Defaults filled in: batch 1, buffer 50, MTTR for a breaking
		// machine, jam clearance time for a jamming machine
		assert.Equal(t, 1, filler.BatchIn)
		assert.Equal(t, 50, filler.BufferCapacity)
		assert.Equal(t, 60.0, filler.Reliability.MTTRMin)
		assert.Equal(t, 10.0, filler.Performance.JamTimeSec)

		assert.Equal(t, 12, sc.Stations[1].BatchIn)
	}
	assert.Contains(t, sc.Telemetry, "Tube")
}

func TestLoadScenario_BuildsLinearGraphWhenEdgesOmitted(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, toothpasteLine))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	g, err := sc.BuildGraph()
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	assert.True(t, g.Valid(), "problems: %v", g.Validate())
	edges := g.Edges()
	if assert.Len(t, edges, 3) {
		assert.Equal(t, topology.SourceNode, edges[0].Source)
		assert.Equal(t, "Filler", edges[1].Source)
		assert.Equal(t, "Packer", edges[1].Target)
		assert.Equal(t, topology.SinkNode, edges[2].Target)
	}
}

func TestLoadScenario_ExplicitEdges(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, `
name: routed-line
stations:
  - name: Filler
    units_per_hour: 10000
    output_type: Tube
    quality:
      defect_rate: 0.02
      detection_prob: 0.9
edges:
  - source: _source
    target: Filler
  - source: Filler
    target: _sink
    condition: not product.is_defective
  - source: Filler
    target: _reject
    condition: product.is_defective
`))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	g, err := sc.BuildGraph()
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	assert.True(t, g.Valid(), "problems: %v", g.Validate())
	assert.True(t, g.HasConditionalRouting())
	assert.Len(t, g.Downstream("Filler"), 2)
}

func TestLoadScenario_RejectsOutOfRangeValues(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, `
name: bad-line
stations:
  - name: Filler
    units_per_hour: 10000
    performance:
      jam_prob: 2.0
`))
	assert.Error(t, err)
}

func TestLoadScenario_RejectsEmptyStationList(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: empty-line\nstations: []\n"))
	assert.Error(t, err)
}

func TestLoadScenario_MissingFileFails(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
