package topology

import (
	"strings"

	"github.com/prodline/prodline-sim/sim"
)

// Predicate is the closed routing-condition variant evaluated against an
// item at Inspect time: Always, a named boolean field, or the negation of
// another predicate. Keeping the set closed avoids a general expression
// evaluator on the hot path.
type Predicate struct {
	kind  predKind
	field string
	inner *Predicate
}

type predKind int

const (
	predAlways predKind = iota
	predField
	predNot
)

// Always matches every item.
func Always() *Predicate { return &Predicate{kind: predAlways} }

// Field matches when the named boolean item field is true.
// Known fields: is_defective.
func Field(name string) *Predicate { return &Predicate{kind: predField, field: name} }

// Not negates a predicate.
func Not(inner *Predicate) *Predicate { return &Predicate{kind: predNot, inner: inner} }

// Matches evaluates the predicate against an item.
func (p *Predicate) Matches(item *sim.Item) bool {
	switch p.kind {
	case predField:
		return itemField(item, p.field)
	case predNot:
		return !p.inner.Matches(item)
	default:
		return true
	}
}

func itemField(item *sim.Item, name string) bool {
	switch name {
	case "is_defective":
		return item.IsDefective
	default:
		// Unknown fields are rejected at parse time; reaching here is a defect.
		panic("unknown routing field: " + name)
	}
}

// ParseCondition converts the textual edge-condition forms ("attr",
// "not attr", with an optional "product." prefix) into a Predicate. An empty
// condition yields nil, meaning unconditional. Unknown fields are a
// configuration error so a typo fails at build time, not as a silent
// routing miss.
func ParseCondition(cond string) (*Predicate, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return nil, nil
	}

	negate := false
	if strings.HasPrefix(cond, "not ") {
		negate = true
		cond = strings.TrimSpace(strings.TrimPrefix(cond, "not "))
	}
	cond = strings.TrimPrefix(cond, "product.")

	if cond != "is_defective" {
		return nil, sim.Configf("unknown routing condition field: %q", cond)
	}

	p := Field(cond)
	if negate {
		p = Not(p)
	}
	return p, nil
}
