package config

import "fmt"

// MaxWorldSize is the largest toroidal square side the core will accept,
// matching the Rust original's MAX_WORLD_SIZE constant.
const MaxWorldSize = 2048.0

// Validate rejects inconsistent configuration, following spec.md §6:
// "Configuration validation rejects inconsistent values (negative rates,
// probabilities > 1, zero dt, etc.)."
func Validate(c *Config) error {
	switch {
	case c.WorldSize <= 0 || c.WorldSize > MaxWorldSize:
		return fmt.Errorf("config: world_size must be in (0, %v], got %v", MaxWorldSize, c.WorldSize)
	case c.NumOrganisms <= 0:
		return fmt.Errorf("config: num_organisms must be positive, got %d", c.NumOrganisms)
	case c.AgentsPerOrganism <= 0:
		return fmt.Errorf("config: agents_per_organism must be positive, got %d", c.AgentsPerOrganism)
	case c.DT <= 0:
		return fmt.Errorf("config: dt must be positive, got %v", c.DT)
	case c.SensingRadius < 0:
		return fmt.Errorf("config: sensing_radius must be non-negative, got %v", c.SensingRadius)
	case c.MaxSpeed < 0:
		return fmt.Errorf("config: max_speed must be non-negative, got %v", c.MaxSpeed)
	case c.NeighborNorm == 0:
		return fmt.Errorf("config: neighbor_norm must be non-zero")
	case c.MetabolismMode != "Toy" && c.MetabolismMode != "Counter" && c.MetabolismMode != "Graph":
		return fmt.Errorf("config: metabolism_mode must be one of Toy, Counter, Graph, got %q", c.MetabolismMode)
	case c.MutationPointRate < 0 || c.MutationResetRate < 0 || c.MutationScaleRate < 0:
		return fmt.Errorf("config: mutation rates must be non-negative")
	case c.MutationPointRate+c.MutationResetRate+c.MutationScaleRate > 1:
		return fmt.Errorf("config: mutation_point_rate + mutation_reset_rate + mutation_scale_rate must be <= 1")
	case c.MutationScaleMin > c.MutationScaleMax:
		return fmt.Errorf("config: mutation_scale_min must be <= mutation_scale_max")
	case c.ReproductionChildMinAgents < 0:
		return fmt.Errorf("config: reproduction_child_min_agents must be non-negative")
	case c.ResourceField.CellSize <= 0:
		return fmt.Errorf("config: resource_field.cell_size must be positive")
	case c.GrowthMaturationSteps == 0:
		return fmt.Errorf("config: growth_maturation_steps must be positive")
	}
	return nil
}
