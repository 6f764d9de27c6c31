// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Report is the YAML run record written next to the output when
// requested. It captures enough to re-run or triage a conversion without
// the terminal scrollback.
type Report struct {
	Input    string    `yaml:"input"`
	Output   string    `yaml:"output"`
	Mode     string    `yaml:"mode"`
	Model    string    `yaml:"model"`
	Started  time.Time `yaml:"started"`
	Duration string    `yaml:"duration"`
	Summary  Summary   `yaml:"summary"`
}

// WriteReport marshals the report to path as YAML.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run report %s: %w", path, err)
	}
	return nil
}
