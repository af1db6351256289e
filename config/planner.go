package config

import (
	"fmt"

	"github.com/kilianp07/pumpplan/auth"
	"github.com/kilianp07/pumpplan/core/plan"
)

// PlannerConfig holds the optimizer settings and the reference data location.
type PlannerConfig struct {
	BaselinePumps int    `json:"baseline_pumps"`
	MinPumps      int    `json:"min_pumps"`
	FullLeapYear  bool   `json:"full_leap_year"`
	ReferencePath string `json:"reference_path"`

	// ReferenceURL, when set, replaces ReferencePath with an HTTP download.
	ReferenceURL  string    `json:"reference_url"`
	ReferenceAuth auth.Conf `json:"reference_auth"`
}

// SetDefaults applies sane defaults.
func (c *PlannerConfig) SetDefaults() {
	if c.BaselinePumps == 0 {
		c.BaselinePumps = 1
	}
	if c.ReferencePath == "" && c.ReferenceURL == "" {
		c.ReferencePath = "reference.yaml"
	}
}

// Validate checks mandatory fields.
func (c PlannerConfig) Validate() error {
	if c.ReferencePath == "" && c.ReferenceURL == "" {
		return fmt.Errorf("reference_path or reference_url is required")
	}
	return c.Plan().Validate()
}

// Plan returns the settings consumed by the planner.
func (c PlannerConfig) Plan() plan.Config {
	return plan.Config{BaselinePumps: c.BaselinePumps, MinPumps: c.MinPumps, FullLeapYear: c.FullLeapYear}
}
