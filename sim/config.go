package sim

// ReliabilityParams groups availability-loss parameters. MTBFMin == 0
// disables the breakdown phase entirely.
type ReliabilityParams struct {
	MTBFMin float64 `yaml:"mtbf_min" validate:"gte=0"` // mean time between failures (minutes)
	MTTRMin float64 `yaml:"mttr_min" validate:"gte=0"` // mean time to repair (minutes)
}

// PerformanceParams groups performance-loss (microstop/jam) parameters.
type PerformanceParams struct {
	JamProb    float64 `yaml:"jam_prob" validate:"gte=0,lte=1"` // probability per cycle
	JamTimeSec float64 `yaml:"jam_time_sec" validate:"gte=0"`   // fixed jam clearance time
}

// QualityParams groups quality-loss (defect/inspection) parameters.
type QualityParams struct {
	DefectRate    float64 `yaml:"defect_rate" validate:"gte=0,lte=1"`
	DetectionProb float64 `yaml:"detection_prob" validate:"gte=0,lte=1"`
}

// CostRates groups conversion-cost rates for a station.
type CostRates struct {
	TotalPerHour float64 `yaml:"total_per_hour" validate:"gte=0"`
}

// MachineConfig is the complete per-station configuration.
type MachineConfig struct {
	Name           string       `yaml:"name" validate:"required"`
	UnitsPerHour   int          `yaml:"units_per_hour" validate:"gt=0"`
	BatchIn        int          `yaml:"batch_in" validate:"gte=1"`
	OutputType     MaterialType `yaml:"output_type"`
	BufferCapacity int          `yaml:"buffer_capacity" validate:"gte=0"` // inbound buffer size (default 50)

	Reliability ReliabilityParams `yaml:"reliability"`
	Performance PerformanceParams `yaml:"performance"`
	Quality     QualityParams     `yaml:"quality"`
	CostRates   CostRates         `yaml:"cost_rates"`
}

// CycleTimeSec is the seconds per cycle, derived from units per hour.
func (c *MachineConfig) CycleTimeSec() float64 {
	return 3600.0 / float64(c.UnitsPerHour)
}

// ApplyDefaults fills zero-valued optional fields with the documented
// defaults. Called by scenario loading before validation.
func (c *MachineConfig) ApplyDefaults() {
	if c.BatchIn == 0 {
		c.BatchIn = 1
	}
	if c.OutputType == "" {
		c.OutputType = MaterialNone
	}
	if c.BufferCapacity == 0 {
		c.BufferCapacity = 50
	}
	if c.Reliability.MTBFMin > 0 && c.Reliability.MTTRMin == 0 {
		c.Reliability.MTTRMin = 60.0
	}
	if c.Performance.JamProb > 0 && c.Performance.JamTimeSec == 0 {
		c.Performance.JamTimeSec = 10.0
	}
}
