// Package layout turns a validated topology graph plus per-station machine
// configs into concrete simulation objects: one buffer per edge, the
// pre-populated source store, sink and reject stores, and one running
// Equipment process per ordinary node, wired per the graph.
package layout

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/prodline/prodline-sim/sim"
	"github.com/prodline/prodline-sim/sim/behavior"
	"github.com/prodline/prodline-sim/sim/topology"
)

// SourceConfig controls the raw-material pre-fill of the source store.
type SourceConfig struct {
	InitialInventory int    `yaml:"initial_inventory" validate:"gte=0"`
	MaterialType     string `yaml:"material_type"`
	ParentMachine    string `yaml:"parent_machine"`
}

// DefaultSourceConfig is used when a scenario does not configure the source.
func DefaultSourceConfig() *SourceConfig {
	return &SourceConfig{
		InitialInventory: 100000,
		MaterialType:     string(sim.MaterialNone),
		ParentMachine:    "Raw",
	}
}

// Result is the fully wired layout.
type Result struct {
	Machines     map[string]*behavior.Equipment
	MachineOrder []string // topological order, for deterministic iteration
	Buffers      map[string]*sim.Buffer
	Connections  map[string]*behavior.Connections

	Source *sim.Buffer
	Sink   *sim.Buffer
	Reject *sim.Buffer
}

// Builder constructs a layout. All fields except Telemetry, Observer and
// DebugEvents are required.
type Builder struct {
	Env     *sim.Env
	Graph   *topology.Graph
	Configs map[string]*sim.MachineConfig
	Source  *SourceConfig

	Orchestrator *behavior.Orchestrator  // nil = DefaultPipeline
	Telemetry    sim.TelemetryGenerator  // nil = no telemetry
	Observer     sim.StateObserver       // nil = no aggregation
	RNG          *rand.Rand              // the run's behavior stream, shared by all stations
	DebugEvents  bool
}

// Build validates the graph and instantiates every buffer and equipment
// process. All problems surface as ConfigurationErrors; nothing is silently
// defaulted.
func (b *Builder) Build() (*Result, error) {
	if problems := b.Graph.Validate(); len(problems) > 0 {
		return nil, sim.Configf("invalid topology: %s", problems[0])
	}

	orch := b.Orchestrator
	if orch == nil {
		orch = behavior.DefaultPipeline()
	}

	source, err := b.buildSource()
	if err != nil {
		return nil, err
	}
	sink := sim.NewBuffer(b.Env, topology.SinkNode, 0)
	reject := sim.NewBuffer(b.Env, topology.RejectNode, 0)

	special := map[string]*sim.Buffer{
		topology.SourceNode: source,
		topology.SinkNode:   sink,
		topology.RejectNode: reject,
	}

	// One buffer per station-to-station edge; edges touching a special node
	// use that node's dedicated store instead.
	buffers := make(map[string]*sim.Buffer)
	for _, edge := range b.Graph.Edges() {
		if special[edge.Source] != nil || special[edge.Target] != nil {
			continue
		}
		capacity := edge.CapacityOverride
		if capacity == 0 {
			targetCfg, ok := b.Configs[edge.Target]
			if !ok {
				return nil, sim.Configf("no machine config for node: %s", edge.Target)
			}
			capacity = targetCfg.BufferCapacity
		}
		buffers[edge.BufferName()] = sim.NewBuffer(b.Env, edge.BufferName(), capacity)
	}

	bufferFor := func(edge *topology.BufferEdge) *sim.Buffer {
		if s := special[edge.Source]; s != nil {
			return s
		}
		if s := special[edge.Target]; s != nil {
			return s
		}
		return buffers[edge.BufferName()]
	}

	// Wire each ordinary node's connections from its edges, in edge order.
	connections := make(map[string]*behavior.Connections)
	for _, node := range b.Graph.Nodes() {
		conn := &behavior.Connections{Upstream: make(map[string]*sim.Buffer)}

		for _, edge := range b.Graph.Upstream(node.Name) {
			buf := bufferFor(edge)
			conn.Upstream[edge.Source] = buf
			if conn.Primary == nil {
				conn.Primary = buf
			}
		}
		if conn.Primary == nil {
			conn.Primary = source
		}

		for _, edge := range b.Graph.Downstream(node.Name) {
			buf := bufferFor(edge)
			conn.Routes = append(conn.Routes, behavior.RoutingRule{
				Target: edge.Target,
				When:   edge.Predicate(),
				Buffer: buf,
			})
			if !edge.Conditional() && conn.Default == nil {
				conn.Default = buf
			}
			if edge.Target == topology.RejectNode {
				conn.Reject = buf
			}
		}
		// No unconditional edge: items that match no condition still stay on
		// the line, falling back to the first outgoing route. Only a node
		// with no outgoing edges at all drains to the sink.
		if conn.Default == nil {
			if len(conn.Routes) > 0 {
				conn.Default = conn.Routes[0].Buffer
			} else {
				conn.Default = sink
			}
		}
		// Stations with detection but no explicit reject edge still drop
		// caught defectives into the shared reject store.
		if conn.Reject == nil {
			cfg := b.Configs[node.Name]
			if cfg != nil && cfg.Quality.DetectionProb > 0 {
				conn.Reject = reject
			}
		}

		connections[node.Name] = conn
	}

	// Create equipment in topological order so process start order (and
	// with it the whole trace) is deterministic.
	order, err := b.Graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	machines := make(map[string]*behavior.Equipment)
	var machineOrder []string
	for _, node := range order {
		if node.IsSpecial() {
			continue
		}
		cfg, ok := b.Configs[node.Name]
		if !ok {
			return nil, sim.Configf("no machine config for node: %s", node.Name)
		}

		eq, err := behavior.NewEquipment(behavior.EquipmentParams{
			Env:          b.Env,
			Config:       cfg,
			Orchestrator: orch,
			Connections:  connections[node.Name],
			Telemetry:    b.Telemetry,
			RNG:          b.RNG,
			Observer:     b.Observer,
			DebugEvents:  b.DebugEvents,
		})
		if err != nil {
			return nil, err
		}
		machines[node.Name] = eq
		machineOrder = append(machineOrder, node.Name)
	}

	logrus.Infof("layout built: %d machines, %d buffers, source inventory %d",
		len(machines), len(buffers), source.Len())

	return &Result{
		Machines:     machines,
		MachineOrder: machineOrder,
		Buffers:      buffers,
		Connections:  connections,
		Source:       source,
		Sink:         sink,
		Reject:       reject,
	}, nil
}

// buildSource creates the unbounded source store pre-filled with raw items.
func (b *Builder) buildSource() (*sim.Buffer, error) {
	src := b.Source
	if src == nil {
		src = DefaultSourceConfig()
	}

	store := sim.NewBuffer(b.Env, topology.SourceNode, 0)
	for i := 0; i < src.InitialInventory; i++ {
		item := sim.NewItem(sim.MaterialType(src.MaterialType), 0, src.ParentMachine, false, nil, nil)
		if err := store.Seed(item); err != nil {
			return nil, err
		}
	}
	return store, nil
}
