// Package config loads the VM's runtime tunables from an optional YAML
// file passed via the CLI's "-config" flag. No environment variables are
// consulted (spec.md §6).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Limits holds the VM's runtime-tunable bounds. The defaults equal the
// fixed numbers spec.md §3/§4/§7 names.
type Limits struct {
	StackSize      int `yaml:"stack_size"`
	FrameStackSize int `yaml:"frame_stack_size"`
}

// Default returns the limits implied directly by spec.md.
func Default() Limits {
	return Limits{
		StackSize:      256,
		FrameStackSize: 256,
	}
}

// Load reads a YAML file of Limits, starting from Default() so a partial
// file only overrides the fields it sets.
func Load(path string) (Limits, error) {
	lim := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return lim, err
	}
	if err := yaml.Unmarshal(data, &lim); err != nil {
		return lim, err
	}
	return lim, nil
}
