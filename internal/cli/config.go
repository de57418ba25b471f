package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source describes a single .ics input in a config file.
type Source struct {
	// Path is the .ics file to scan.
	Path string `yaml:"path"`
	// Name is an optional human-friendly label printed with each occurrence.
	Name string `yaml:"name"`
}

// Config is the optional YAML configuration of the icalscan command. Flags
// given on the command line win over config values.
type Config struct {
	// Timezone is the IANA zone occurrences are printed in (e.g.
	// "Europe/Berlin"). Empty keeps each occurrence's own zone.
	Timezone string `yaml:"timezone"`

	// From and To bound the scan window. Dates ("2006-01-02") are read as
	// UTC midnight; RFC 3339 timestamps are taken as-is.
	From string `yaml:"from"`
	To   string `yaml:"to"`

	// Kinds lists the component kinds to expand: events, tasks, journals,
	// freebusy. Empty means events.
	Kinds []string `yaml:"kinds"`

	// Sources lists the .ics inputs.
	Sources []Source `yaml:"sources"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
