// Package config loads and validates simulation parameters.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ResourceFieldConfig controls the discrete resource grid.
type ResourceFieldConfig struct {
	CellSize    float64 `yaml:"cell_size"`
	Cap         float32 `yaml:"cap"`
	InitialSeed bool    `yaml:"initial_seed"`
}

// DerivedConfig holds values computed once from the rest of Config, following
// the teacher's config/config.go DerivedConfig pattern of precomputing
// frequently-read type-narrowed fields rather than recomputing them per step.
type DerivedConfig struct {
	DT32 float32
}

// Config is the flat parameter record spec.md §6 describes, grouped into
// nested sections the way the teacher's config/config.go groups its own
// flat parameter list by concern.
type Config struct {
	WorldSize         float64 `yaml:"world_size"`
	NumOrganisms      int     `yaml:"num_organisms"`
	AgentsPerOrganism int     `yaml:"agents_per_organism"`
	Seed              uint64  `yaml:"seed"`
	DT                float64 `yaml:"dt"`

	SensingRadius float64 `yaml:"sensing_radius"`
	MaxSpeed      float64 `yaml:"max_speed"`
	NeighborNorm  float64 `yaml:"neighbor_norm"`

	HomeostasisDecayRate float32 `yaml:"homeostasis_decay_rate"`

	MetabolismMode                 string  `yaml:"metabolism_mode"`
	MetabolismEfficiencyMultiplier float32 `yaml:"metabolism_efficiency_multiplier"`
	MetabolicViabilityFloor        float32 `yaml:"metabolic_viability_floor"`

	DeathEnergyThreshold      float32 `yaml:"death_energy_threshold"`
	DeathBoundaryThreshold    float32 `yaml:"death_boundary_threshold"`
	BoundaryCollapseThreshold float32 `yaml:"boundary_collapse_threshold"`

	BoundaryDecayBaseRate           float32 `yaml:"boundary_decay_base_rate"`
	BoundaryDecayEnergyScale        float32 `yaml:"boundary_decay_energy_scale"`
	BoundaryWastePressureScale      float32 `yaml:"boundary_waste_pressure_scale"`
	BoundaryRepairRate              float32 `yaml:"boundary_repair_rate"`
	BoundaryRepairWastePenaltyScale float32 `yaml:"boundary_repair_waste_penalty_scale"`

	GrowthMaturationSteps             uint64  `yaml:"growth_maturation_steps"`
	GrowthImmatureMetabolicEfficiency float32 `yaml:"growth_immature_metabolic_efficiency"`

	CrowdingNeighborThreshold float32 `yaml:"crowding_neighbor_threshold"`
	CrowdingBoundaryDecay     float32 `yaml:"crowding_boundary_decay"`

	ReproductionMinEnergy      float32 `yaml:"reproduction_min_energy"`
	ReproductionMinBoundary    float32 `yaml:"reproduction_min_boundary"`
	ReproductionEnergyCost     float32 `yaml:"reproduction_energy_cost"`
	ReproductionSpawnRadius    float64 `yaml:"reproduction_spawn_radius"`
	ReproductionChildMinAgents int     `yaml:"reproduction_child_min_agents"`

	MutationPointRate  float32 `yaml:"mutation_point_rate"`
	MutationPointScale float32 `yaml:"mutation_point_scale"`
	MutationResetRate  float32 `yaml:"mutation_reset_rate"`
	MutationScaleRate  float32 `yaml:"mutation_scale_rate"`
	MutationScaleMin   float32 `yaml:"mutation_scale_min"`
	MutationScaleMax   float32 `yaml:"mutation_scale_max"`
	MutationValueLimit float32 `yaml:"mutation_value_limit"`

	MaxOrganismAgeSteps     uint64 `yaml:"max_organism_age_steps"`
	CompactionIntervalSteps uint64 `yaml:"compaction_interval_steps"`

	ResourceRegenerationRate     float32 `yaml:"resource_regeneration_rate"`
	EnvironmentShiftStep         uint64  `yaml:"environment_shift_step"`
	EnvironmentShiftResourceRate float32 `yaml:"environment_shift_resource_rate"`
	EnvironmentCyclePeriod       uint64  `yaml:"environment_cycle_period"`
	EnvironmentCycleLowRate      float32 `yaml:"environment_cycle_low_rate"`

	EnableResponse            bool `yaml:"enable_response"`
	EnableHomeostasis         bool `yaml:"enable_homeostasis"`
	EnableBoundaryMaintenance bool `yaml:"enable_boundary_maintenance"`
	EnableMetabolism          bool `yaml:"enable_metabolism"`
	EnableGrowth              bool `yaml:"enable_growth"`
	EnableReproduction        bool `yaml:"enable_reproduction"`
	EnableEvolution           bool `yaml:"enable_evolution"`
	EnableShamProcess         bool `yaml:"enable_sham_process"`

	ResourceField ResourceFieldConfig `yaml:"resource_field"`

	// LogInterval, when > 0, makes the world log a one-line population
	// summary every N steps. Purely additive instrumentation (see
	// SPEC_FULL.md's Supplemental Features), not part of the core pipeline.
	LogInterval int `yaml:"log_interval"`

	Derived DerivedConfig `yaml:"-"`
}

var cfg *Config

// Load parses the embedded defaults and, if path is non-empty, merges a
// user-supplied YAML file over them, following the teacher's config.Load
// merge-over-embedded-defaults pattern.
func Load(path string) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, c); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	computeDerived(c)
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func computeDerived(c *Config) {
	c.Derived.DT32 = float32(c.DT)
}

// MustInit loads the config and panics on error, for callers (the CLI, ad
// hoc tooling) that have no better recourse — following the teacher's
// config.MustInit panic-on-misuse package-global pattern. The simulation
// core itself never calls this; it always takes an explicit *Config.
func MustInit(path string) *Config {
	c, err := Load(path)
	if err != nil {
		panic(err)
	}
	cfg = c
	return cfg
}

// Cfg returns the package-global config initialized by MustInit. It panics
// if MustInit has not been called, matching the teacher's init-once-then-
// panic-on-misuse accessor.
func Cfg() *Config {
	if cfg == nil {
		panic("config: Cfg() called before MustInit()")
	}
	return cfg
}
