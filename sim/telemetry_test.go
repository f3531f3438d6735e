package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigTelemetry_HasConfigFor(t *testing.T) {
	gen := NewConfigTelemetry(rand.New(rand.NewSource(1)), map[string]MaterialTelemetry{
		"Tube": {"fill_weight_g": {Kind: "gaussian", Mean: 100, StdDev: 2}},
		"Case": {},
	})

	assert.True(t, gen.HasConfigFor("Tube"))
	assert.False(t, gen.HasConfigFor("Case")) // empty config counts as none
	assert.False(t, gen.HasConfigFor("Pallet"))
}

func TestConfigTelemetry_FieldKinds(t *testing.T) {
	// GIVEN one field of each kind
	gen := NewConfigTelemetry(rand.New(rand.NewSource(1)), map[string]MaterialTelemetry{
		"Case": {
			"seal_temp_c": {Kind: "gaussian", Mean: 180, StdDev: 5},
			"line_speed":  {Kind: "fixed", Value: 1.5},
			"tube_count":  {Kind: "count_inputs"},
		},
	})
	inputs := []*Item{testItem("a"), testItem("b"), testItem("c")}

	// WHEN generating
	out := gen.Generate("Case", inputs)

	// THEN every field is present with the right semantics
	assert.Len(t, out, 3)
	assert.Equal(t, 1.5, out["line_speed"])
	assert.Equal(t, 3, out["tube_count"])
	temp, ok := out["seal_temp_c"].(float64)
	if !ok {
		t.Fatalf("seal_temp_c: got %T, want float64", out["seal_temp_c"])
	}
	// 5-sigma band around the mean
	assert.InDelta(t, 180, temp, 25)
}

func TestConfigTelemetry_SameSeedSameValues(t *testing.T) {
	// GIVEN two generators over the same specs and seed
	specs := map[string]MaterialTelemetry{
		"Tube": {
			"fill_weight_g": {Kind: "gaussian", Mean: 100, StdDev: 2},
			"viscosity":     {Kind: "gaussian", Mean: 30, StdDev: 1},
		},
	}
	gen1 := NewConfigTelemetry(rand.New(rand.NewSource(42)), specs)
	gen2 := NewConfigTelemetry(rand.New(rand.NewSource(42)), specs)

	// WHEN generating repeatedly
	// THEN the value streams match draw for draw (fields are consumed in
	// sorted name order, so the RNG stream alignment is stable)
	for i := 0; i < 20; i++ {
		assert.Equal(t, gen1.Generate("Tube", nil), gen2.Generate("Tube", nil))
	}
}
