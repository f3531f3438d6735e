package cmd

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/prodline/prodline-sim/sim"
	"github.com/prodline/prodline-sim/sim/layout"
	"github.com/prodline/prodline-sim/sim/topology"
)

// EdgeConfig is one topology edge in the scenario file.
type EdgeConfig struct {
	Source    string `yaml:"source" validate:"required"`
	Target    string `yaml:"target" validate:"required"`
	Capacity  int    `yaml:"capacity" validate:"gte=0"` // 0 = target's buffer capacity
	Condition string `yaml:"condition"`
}

// Scenario is the resolved scenario file: the station list, optional
// explicit edges (omitted = linear chain in list order), the source
// pre-fill and optional telemetry configs keyed by material type.
type Scenario struct {
	Name      string                               `yaml:"name"`
	Source    *layout.SourceConfig                 `yaml:"source"`
	Stations  []*sim.MachineConfig                 `yaml:"stations" validate:"required,min=1,dive"`
	Edges     []EdgeConfig                         `yaml:"edges" validate:"dive"`
	Telemetry map[string]sim.MaterialTelemetry     `yaml:"telemetry"`
}

// LoadScenario reads and parses a YAML scenario file, applies defaults and
// validates field ranges.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	for _, st := range sc.Stations {
		st.ApplyDefaults()
	}
	if sc.Source == nil {
		sc.Source = layout.DefaultSourceConfig()
	} else {
		if sc.Source.MaterialType == "" {
			sc.Source.MaterialType = string(sim.MaterialNone)
		}
		if sc.Source.ParentMachine == "" {
			sc.Source.ParentMachine = "Raw"
		}
	}

	if err := validator.New().Struct(&sc); err != nil {
		return nil, fmt.Errorf("validating scenario: %w", err)
	}
	return &sc, nil
}

// BuildGraph resolves the scenario's topology: explicit edges when present,
// otherwise a linear chain in station order.
func (sc *Scenario) BuildGraph() (*topology.Graph, error) {
	nodes := make([]*topology.StationNode, len(sc.Stations))
	for i, st := range sc.Stations {
		nodes[i] = &topology.StationNode{
			Name:       st.Name,
			BatchIn:    st.BatchIn,
			OutputType: st.OutputType,
		}
	}

	if len(sc.Edges) == 0 {
		return topology.FromLinear(nodes)
	}

	g := topology.NewGraph()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range sc.Edges {
		err := g.AddEdge(&topology.BufferEdge{
			Source:           e.Source,
			Target:           e.Target,
			CapacityOverride: e.Capacity,
			Condition:        e.Condition,
		})
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MachineConfigs returns the station configs keyed by name.
func (sc *Scenario) MachineConfigs() map[string]*sim.MachineConfig {
	configs := make(map[string]*sim.MachineConfig, len(sc.Stations))
	for _, st := range sc.Stations {
		configs[st.Name] = st
	}
	return configs
}
