package config

import "fmt"

// OutputConfig defines where run results are written.
type OutputConfig struct {
	Dir string `json:"dir"`
	// CSV also writes the assignments of the best solution as CSV.
	CSV bool `json:"csv"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
}

// Validate checks mandatory fields.
func (c OutputConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	return nil
}

// ReportConfig defines the HTML report written after each run.
type ReportConfig struct {
	Enabled bool   `json:"enabled"`
	Title   string `json:"title"`
}

// SetDefaults applies sane defaults.
func (c *ReportConfig) SetDefaults() {
	if c.Title == "" {
		c.Title = "Disassembly schedule"
	}
}
