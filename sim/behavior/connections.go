package behavior

import (
	"github.com/prodline/prodline-sim/sim"
	"github.com/prodline/prodline-sim/sim/topology"
)

// RoutingRule binds one outgoing edge to its buffer. When is nil for
// unconditional edges.
type RoutingRule struct {
	Target string
	When   *topology.Predicate
	Buffer *sim.Buffer
}

// Matches reports whether an item should take this route.
func (r *RoutingRule) Matches(item *sim.Item) bool {
	return r.When == nil || r.When.Matches(item)
}

// Connections is the full wiring of a single station: every upstream buffer
// keyed by source node, the ordered downstream routing table, and the
// shortcut buffers the phases use directly.
//
// Collect reads only Primary (the station's first incoming edge). The full
// Upstream map is kept so a multi-source merge policy can be added without
// re-wiring layouts; no merge policy is defined today.
type Connections struct {
	Upstream map[string]*sim.Buffer
	Primary  *sim.Buffer // first incoming edge's buffer

	Routes  []RoutingRule
	Default *sim.Buffer // first unconditional route
	Reject  *sim.Buffer // route targeting _reject, if any
}

// Route picks the destination buffer for an output item. With conditional
// routing the first matching rule wins, else the first unconditional route,
// else the first route outright. Without conditional routing, a detection
// verdict sends the item to the reject buffer when one is wired, otherwise
// to the default downstream.
func (c *Connections) Route(item *sim.Item, rejected bool) *sim.Buffer {
	if c.graphRouted() {
		for i := range c.Routes {
			if c.Routes[i].Matches(item) {
				return c.Routes[i].Buffer
			}
		}
		if c.Default != nil {
			return c.Default
		}
		return c.Routes[0].Buffer
	}
	if rejected && c.Reject != nil {
		return c.Reject
	}
	return c.Default
}

// graphRouted reports whether this node routes per item through its routing
// table (more than one outgoing route).
func (c *Connections) graphRouted() bool {
	return len(c.Routes) > 1
}
