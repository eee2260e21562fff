// Package config loads the tunable knobs for the qrtone CLIs from a
// YAML file, to be further overridden by command-line flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FihlaTV/qrtone/internal/frame"
)

// Config holds every user-tunable wire-format and runtime parameter.
// Zero value is not meaningful; use Default() or Load().
type Config struct {
	SampleRate float64    `yaml:"sample_rate"`
	ECCLevel   frame.Level `yaml:"ecc_level"`
	CRC        bool       `yaml:"crc"`
	TriggerSNR float64    `yaml:"trigger_snr"`

	InputDevice  string `yaml:"input_device"`
	OutputDevice string `yaml:"output_device"`

	LeadingSilence  float64 `yaml:"leading_silence"`
	TrailingSilence float64 `yaml:"trailing_silence"`
	PowerPeak       float64 `yaml:"power_peak"`
}

// Default returns the built-in wire-format defaults: 44.1 kHz, ECC
// level Q, CRC-16 enabled, 15 dB trigger SNR.
func Default() *Config {
	return &Config{
		SampleRate: 44100,
		ECCLevel:   frame.LevelQuality,
		CRC:        true,
		TriggerSNR: 15,
		PowerPeak:  1.0,
	}
}

// Load reads a YAML config file at path, starting from Default and
// overwriting only the fields present in the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
