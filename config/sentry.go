package config

import "fmt"

// SentryConfig enables error reporting of failed runs. Reporting is off when
// DSN is empty.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
	SampleRate       float64 `json:"sample_rate"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	// Tags are attached to every report, e.g. the hangar or the fleet.
	Tags map[string]string `json:"tags"`
}

// SetDefaults reports every error when no sample rate is set.
func (c *SentryConfig) SetDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
}

// Validate checks the sample rates.
func (c SentryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate %v not in [0,1]", c.SampleRate)
	}
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate %v not in [0,1]", c.TracesSampleRate)
	}
	return nil
}
