package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/cargo-install/internal/models"
)

// LoadPlan loads and parses a plan.yaml file listing several crates.
func LoadPlan(path string) (models.Plan, error) {
	var plan models.Plan

	data, err := os.ReadFile(path)
	if err != nil {
		return plan, fmt.Errorf("reading plan: %w", err)
	}

	if err := yaml.Unmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("parsing plan: %w", err)
	}

	if len(plan.Crates) == 0 {
		return plan, fmt.Errorf("plan %s: no crates", path)
	}

	// Validate crate entries
	seen := make(map[string]int)
	for i, c := range plan.Crates {
		if c.Crate == "" {
			return plan, fmt.Errorf("crates[%d]: must specify 'crate'", i)
		}
		if prev, ok := seen[c.Crate]; ok {
			return plan, fmt.Errorf("crates[%d]: crate %q already listed at crates[%d]", i, c.Crate, prev)
		}
		seen[c.Crate] = i

		if c.Git == "" && (c.Branch != "" || c.Tag != "" || c.Rev != "") {
			return plan, fmt.Errorf("crates[%d]: 'branch', 'tag' and 'rev' require 'git'", i)
		}
		if c.Git != "" && c.Version != "" {
			return plan, fmt.Errorf("crates[%d]: cannot specify both 'version' and 'git'", i)
		}
	}

	return plan, nil
}
