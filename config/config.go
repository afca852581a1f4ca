// Package config provides configuration loading, presets and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed presets.yaml
var presetsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Population PopulationConfig `yaml:"population" json:"population"`
	Food       FoodConfig       `yaml:"food" json:"food"`
	Energy     EnergyConfig     `yaml:"energy" json:"energy"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" json:"telemetry"`
	Oracle     OracleConfig     `yaml:"oracle" json:"oracle"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" json:"-"`
}

// SimulationConfig holds run length and randomness settings.
type SimulationConfig struct {
	Rounds int   `yaml:"rounds" json:"rounds"`
	Seed   int64 `yaml:"seed" json:"seed"` // 0 = time-based
}

// PopulationConfig holds the initial cohort.
type PopulationConfig struct {
	StartingDoves  int `yaml:"starting_doves" json:"starting_doves"`
	StartingHawks  int `yaml:"starting_hawks" json:"starting_hawks"`
	StartingEnergy int `yaml:"starting_energy" json:"starting_energy"`
}

// FoodConfig holds the per-round food draw and pairing cap.
type FoodConfig struct {
	MinPerRound   int `yaml:"min_per_round" json:"min_per_round"`
	MaxPerRound   int `yaml:"max_per_round" json:"max_per_round"`
	MaxAppearance int `yaml:"max_appearance" json:"max_appearance"` // Pairing stops once processed pairs exceed this
}

// EnergyConfig holds the energy economy thresholds and costs.
type EnergyConfig struct {
	RequiredForReproduction int `yaml:"required_for_reproduction" json:"required_for_reproduction"` // Breed when energy > this
	LossPerRound            int `yaml:"loss_per_round" json:"loss_per_round"`                       // Upkeep paid by every agent
	FightCost               int `yaml:"fight_cost" json:"fight_cost"`                               // Paid by each hawk in a hawk-hawk contest
	RequiredForLiving       int `yaml:"required_for_living" json:"required_for_living"`             // Culled when energy < this
}

// TelemetryConfig holds statistics output settings.
type TelemetryConfig struct {
	LogStats   bool `yaml:"log_stats" json:"log_stats"`
	PerfWindow int  `yaml:"perf_window" json:"perf_window"`
}

// OracleConfig holds the equilibrium comparison settings.
type OracleConfig struct {
	TailFraction float64 `yaml:"tail_fraction" json:"tail_fraction"`
	Tolerance    float64 `yaml:"tolerance" json:"tolerance"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MidFood            int // (min + max) / 2, floor
	StartingPopulation int // doves + hawks
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	return LoadWithPreset("", path)
}

// LoadWithPreset layers embedded defaults, then the named preset (if any),
// then the user file at path (if any).
func LoadWithPreset(preset, path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// Parse decodes YAML bytes over the embedded defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.ComputeDerived()
	return cfg, nil
}

// ComputeDerived recalculates values derived from the loaded config.
// Call again after mutating fields directly.
func (c *Config) ComputeDerived() {
	c.Derived.MidFood = (c.Food.MinPerRound + c.Food.MaxPerRound) / 2
	c.Derived.StartingPopulation = c.Population.StartingDoves + c.Population.StartingHawks
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Preset is a named overlay on the defaults.
type Preset struct {
	Name        string    `yaml:"-" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Config      yaml.Node `yaml:"config" json:"-"`
}

func loadPresets() (map[string]*Preset, error) {
	presets := make(map[string]*Preset)
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		return nil, fmt.Errorf("parsing embedded presets: %w", err)
	}
	for name, p := range presets {
		p.Name = name
	}
	return presets, nil
}

// Presets returns all embedded presets sorted by name.
func Presets() ([]Preset, error) {
	presets, err := loadPresets()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Preset, 0, len(names))
	for _, name := range names {
		out = append(out, *presets[name])
	}
	return out, nil
}

// ApplyPreset overlays the named preset onto c.
func (c *Config) ApplyPreset(name string) error {
	presets, err := loadPresets()
	if err != nil {
		return err
	}
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	if p.Config.Kind == 0 {
		return nil
	}
	if err := p.Config.Decode(c); err != nil {
		return fmt.Errorf("applying preset %q: %w", name, err)
	}
	c.ComputeDerived()
	return nil
}
