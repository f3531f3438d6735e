// Package topology models the production line as a DAG of station nodes
// connected by buffer edges, with conditional routing, cycle detection and
// topological ordering. Special nodes _source, _sink and _reject are created
// automatically on first reference.
package topology

import (
	"fmt"
	"strings"

	"github.com/prodline/prodline-sim/sim"
)

// Reserved special node names.
const (
	SourceNode = "_source"
	SinkNode   = "_sink"
	RejectNode = "_reject"
)

var specialNodes = map[string]bool{SourceNode: true, SinkNode: true, RejectNode: true}

// StationNode is a station or routing node in the topology graph.
type StationNode struct {
	Name         string
	BatchIn      int // input items per cycle, >= 1
	OutputType   sim.MaterialType
	EquipmentRef string // machine config name (defaults to Name)
	BehaviorRef  string // behavior config name, reserved
}

// IsSpecial reports whether this is one of _source, _sink, _reject.
func (n *StationNode) IsSpecial() bool {
	return strings.HasPrefix(n.Name, "_")
}

// BufferEdge is a connection (buffer) between two nodes.
type BufferEdge struct {
	Source           string
	Target           string
	CapacityOverride int    // 0 = use the target station's buffer capacity
	Condition        string // routing condition, "" = unconditional

	pred *Predicate // parsed form of Condition
}

// BufferName derives the buffer name for this edge.
func (e *BufferEdge) BufferName() string {
	return fmt.Sprintf("Buf_%s_to_%s", e.Source, e.Target)
}

// Predicate returns the parsed routing condition, nil when unconditional.
func (e *BufferEdge) Predicate() *Predicate { return e.pred }

// Conditional reports whether the edge carries a routing condition.
func (e *BufferEdge) Conditional() bool { return e.pred != nil }

// Graph is the DAG of stations and buffer edges. Nodes and edges keep
// insertion order so traversal, topological ordering and layout building are
// deterministic.
type Graph struct {
	nodes     map[string]*StationNode
	nodeOrder []string
	edges     []*BufferEdge
	outgoing  map[string][]*BufferEdge
	incoming  map[string][]*BufferEdge
}

// NewGraph creates an empty topology graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*StationNode),
		outgoing: make(map[string][]*BufferEdge),
		incoming: make(map[string][]*BufferEdge),
	}
}

// AddNode adds a station node. Duplicate names are a configuration error.
func (g *Graph) AddNode(node *StationNode) error {
	if node.Name == "" {
		return sim.Configf("node name cannot be empty")
	}
	if node.BatchIn < 0 {
		return sim.Configf("batch_in must be >= 1 for node %s, got %d", node.Name, node.BatchIn)
	}
	if node.BatchIn == 0 {
		// Zero is the unset sentinel; explicit sizes are validated above.
		node.BatchIn = 1
	}
	if node.OutputType == "" {
		node.OutputType = sim.MaterialNone
	}
	if node.EquipmentRef == "" && !node.IsSpecial() {
		node.EquipmentRef = node.Name
	}
	if _, exists := g.nodes[node.Name]; exists {
		return sim.Configf("node already exists: %s", node.Name)
	}
	g.nodes[node.Name] = node
	g.nodeOrder = append(g.nodeOrder, node.Name)
	return nil
}

// AddEdge adds a buffer edge. Special endpoints are auto-created on first
// reference; an unknown ordinary endpoint or a self-loop is a configuration
// error.
func (g *Graph) AddEdge(edge *BufferEdge) error {
	if edge.Source == "" || edge.Target == "" {
		return sim.Configf("edge endpoints cannot be empty")
	}
	if edge.Source == edge.Target {
		return sim.Configf("self-loop not allowed: %s", edge.Source)
	}
	for _, name := range []string{edge.Source, edge.Target} {
		if _, ok := g.nodes[name]; ok {
			continue
		}
		if !specialNodes[name] {
			return sim.Configf("node not found: %s", name)
		}
		if err := g.AddNode(&StationNode{Name: name, OutputType: sim.MaterialNone}); err != nil {
			return err
		}
	}

	pred, err := ParseCondition(edge.Condition)
	if err != nil {
		return err
	}
	edge.pred = pred

	g.edges = append(g.edges, edge)
	g.outgoing[edge.Source] = append(g.outgoing[edge.Source], edge)
	g.incoming[edge.Target] = append(g.incoming[edge.Target], edge)
	return nil
}

// Node returns the node with the given name, nil if absent.
func (g *Graph) Node(name string) *StationNode { return g.nodes[name] }

// Nodes returns the ordinary (non-special) nodes in insertion order.
func (g *Graph) Nodes() []*StationNode {
	out := make([]*StationNode, 0, len(g.nodeOrder))
	for _, name := range g.nodeOrder {
		if n := g.nodes[name]; !n.IsSpecial() {
			out = append(out, n)
		}
	}
	return out
}

// AllNodes returns every node, special ones included, in insertion order.
func (g *Graph) AllNodes() []*StationNode {
	out := make([]*StationNode, 0, len(g.nodeOrder))
	for _, name := range g.nodeOrder {
		out = append(out, g.nodes[name])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*BufferEdge { return g.edges }

// Downstream returns the outgoing edges of a station, in insertion order.
func (g *Graph) Downstream(station string) []*BufferEdge { return g.outgoing[station] }

// Upstream returns the incoming edges of a station, in insertion order.
func (g *Graph) Upstream(station string) []*BufferEdge { return g.incoming[station] }

// HasConditionalRouting reports whether any edge carries a condition.
func (g *Graph) HasConditionalRouting() bool {
	for _, e := range g.edges {
		if e.Conditional() {
			return true
		}
	}
	return false
}

// TopologicalOrder returns all nodes in dependency order (Kahn's algorithm):
// sources first, sinks last, ties broken by insertion order. Returns a
// CycleDetectedError reporting the count of nodes ordered before the cycle
// was found.
func (g *Graph) TopologicalOrder() ([]*StationNode, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, name := range g.nodeOrder {
		inDegree[name] = 0
	}
	for _, e := range g.edges {
		inDegree[e.Target]++
	}

	queue := make([]string, 0, len(g.nodes))
	for _, name := range g.nodeOrder {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]*StationNode, 0, len(g.nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, g.nodes[name])

		for _, e := range g.outgoing[name] {
			inDegree[e.Target]--
			if inDegree[e.Target] == 0 {
				queue = append(queue, e.Target)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, &sim.CycleDetectedError{Visited: len(order), Total: len(g.nodes)}
	}
	return order, nil
}

// Validate checks the structural invariants and returns every problem found:
// an edge from _source, an edge to _sink, no orphan ordinary nodes, no
// cycles, and per-node outgoing edges uniformly conditioned or uniformly
// unconditioned.
func (g *Graph) Validate() []string {
	var problems []string

	if len(g.outgoing[SourceNode]) == 0 {
		problems = append(problems, "no edges from _source - line has no input")
	}
	if len(g.incoming[SinkNode]) == 0 {
		problems = append(problems, "no edges to _sink - line has no output")
	}

	for _, name := range g.nodeOrder {
		node := g.nodes[name]
		if node.IsSpecial() {
			continue
		}
		if len(g.incoming[name]) == 0 && len(g.outgoing[name]) == 0 {
			problems = append(problems, "orphan node with no connections: "+name)
		}
	}

	if _, err := g.TopologicalOrder(); err != nil {
		problems = append(problems, err.Error())
	}

	for _, name := range g.nodeOrder {
		outgoing := g.outgoing[name]
		conditional := 0
		for _, e := range outgoing {
			if e.Conditional() {
				conditional++
			}
		}
		if conditional > 0 && conditional != len(outgoing) {
			problems = append(problems,
				fmt.Sprintf("node %s has mixed conditional/unconditional outgoing edges; all or none must have conditions", name))
		}
	}

	return problems
}

// Valid reports whether Validate found no problems.
func (g *Graph) Valid() bool { return len(g.Validate()) == 0 }

// FromLinear builds a graph from an ordered station list: _source feeds the
// first station, each station feeds the next, the last feeds _sink. Kept for
// scenarios that predate explicit edge lists.
func FromLinear(stations []*StationNode) (*Graph, error) {
	g := NewGraph()
	for _, s := range stations {
		if err := g.AddNode(s); err != nil {
			return nil, err
		}
	}
	prev := SourceNode
	for _, s := range stations {
		if err := g.AddEdge(&BufferEdge{Source: prev, Target: s.Name}); err != nil {
			return nil, err
		}
		prev = s.Name
	}
	if err := g.AddEdge(&BufferEdge{Source: prev, Target: SinkNode}); err != nil {
		return nil, err
	}
	return g, nil
}
