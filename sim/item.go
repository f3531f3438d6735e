package sim

import "github.com/google/uuid"

// MaterialType identifies a level in the production hierarchy.
type MaterialType string

const (
	MaterialTube   MaterialType = "Tube"
	MaterialCase   MaterialType = "Case"
	MaterialPallet MaterialType = "Pallet"
	MaterialNone   MaterialType = "None"
)

// Item is a physical product flowing through the line. Items are created
// once by the Transform phase (or the source pre-fill) and are immutable
// afterwards; each is consumed by exactly one downstream Collect.
type Item struct {
	ID            string
	Type          MaterialType
	CreatedAt     float64 // simulation time of creation (seconds)
	ParentMachine string
	IsDefective   bool
	Lineage       []string       // IDs of the input items consumed to make this one
	Telemetry     map[string]any // flat telemetry map, keyed by field name
}

// NewItem creates an item with a fresh short ID.
func NewItem(t MaterialType, createdAt float64, parent string, defective bool, lineage []string, telemetry map[string]any) *Item {
	return &Item{
		ID:            uuid.NewString()[:8],
		Type:          t,
		CreatedAt:     createdAt,
		ParentMachine: parent,
		IsDefective:   defective,
		Lineage:       lineage,
		Telemetry:     telemetry,
	}
}
