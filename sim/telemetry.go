package sim

import (
	"math/rand"
	"sort"
)

// TelemetryGenerator produces per-material telemetry maps at Transform time.
// Transform calls Generate only when HasConfigFor reports a config for the
// output material type; otherwise the item carries an empty map.
type TelemetryGenerator interface {
	HasConfigFor(materialType string) bool
	Generate(materialType string, inputs []*Item) map[string]any
}

// FieldSpec configures one telemetry field.
//
// Kinds:
//   - gaussian: normal draw with Mean/StdDev
//   - fixed: the constant Value
//   - count_inputs: number of input items consumed this cycle
type FieldSpec struct {
	Kind   string  `yaml:"kind" validate:"required,oneof=gaussian fixed count_inputs"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
	Value  float64 `yaml:"value"`
}

// MaterialTelemetry maps field name to its generator spec.
type MaterialTelemetry map[string]FieldSpec

// ConfigTelemetry is the config-driven TelemetryGenerator. Fields are
// generated in sorted name order so the RNG stream is stable.
type ConfigTelemetry struct {
	rng       *rand.Rand
	materials map[string]MaterialTelemetry
}

// NewConfigTelemetry builds a generator over per-material field specs.
// materials is keyed by material type name ("Tube", "Case", "Pallet").
func NewConfigTelemetry(rng *rand.Rand, materials map[string]MaterialTelemetry) *ConfigTelemetry {
	return &ConfigTelemetry{rng: rng, materials: materials}
}

// HasConfigFor reports whether a telemetry config exists for the material.
func (g *ConfigTelemetry) HasConfigFor(materialType string) bool {
	specs, ok := g.materials[materialType]
	return ok && len(specs) > 0
}

// Generate produces the telemetry map for one output item.
func (g *ConfigTelemetry) Generate(materialType string, inputs []*Item) map[string]any {
	specs := g.materials[materialType]
	out := make(map[string]any, len(specs))

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := specs[name]
		switch spec.Kind {
		case "gaussian":
			out[name] = spec.Mean + g.rng.NormFloat64()*spec.StdDev
		case "fixed":
			out[name] = spec.Value
		case "count_inputs":
			out[name] = len(inputs)
		}
	}
	return out
}
