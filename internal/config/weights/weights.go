package weights

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/telemetry"
)

// DefaultComponents is the standard indicator set consumed by the scorer
var DefaultComponents = []string{
	"orderflow",
	"orderbook",
	"volume",
	"price_structure",
	"technical",
	"sentiment",
}

// WeightsConfig represents the component weight configuration
type WeightsConfig struct {
	Components          map[string]float64 `yaml:"components"`
	MinActiveComponents int                `yaml:"min_active_components"`
}

// Table is an immutable, normalized component weight mapping.
// Weights sum to 1.0 after construction; lookups of unknown names return 0,
// which excludes the component from the weighted aggregate.
type Table struct {
	weights  map[string]float64
	names    []string
	fallback bool
}

// NewTable builds a normalized table from raw non-negative weights.
// A raw sum <= 0 (empty, all-zero, or invalid entries) activates the uniform
// fallback over the declared component set and is surfaced as a warning.
func NewTable(raw map[string]float64) *Table {
	declared := make([]string, 0, len(raw))
	sum := 0.0
	for name, w := range raw {
		declared = append(declared, name)
		if w > 0 && !math.IsNaN(w) && !math.IsInf(w, 0) {
			sum += w
		}
	}
	if len(declared) == 0 {
		declared = append(declared, DefaultComponents...)
	}
	sort.Strings(declared)

	table := &Table{
		weights: make(map[string]float64, len(declared)),
		names:   declared,
	}

	if sum <= 0 {
		uniform := 1.0 / float64(len(declared))
		for _, name := range declared {
			table.weights[name] = uniform
		}
		table.fallback = true
		telemetry.RecordFallbackWeights()
		log.Warn().
			Int("components", len(declared)).
			Msg("Weight sum is zero or invalid, falling back to uniform weighting")
		return table
	}

	for _, name := range declared {
		w := raw[name]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		table.weights[name] = w / sum
	}
	return table
}

// NewUniformTable builds an equal-weight table over the given names
func NewUniformTable(names []string) *Table {
	raw := make(map[string]float64, len(names))
	for _, name := range names {
		raw[name] = 1.0
	}
	return NewTable(raw)
}

// Weight returns the normalized weight for a component, 0 if not declared
func (t *Table) Weight(name string) float64 {
	return t.weights[name]
}

// Components returns the declared component names in sorted order
func (t *Table) Components() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// UniformFallback reports whether the uniform fallback was activated
func (t *Table) UniformFallback() bool {
	return t.fallback
}

// Sum returns the normalized weight sum, 1.0 within floating tolerance
func (t *Table) Sum() float64 {
	sum := 0.0
	for _, w := range t.weights {
		sum += w
	}
	return sum
}

// LoadFromFile loads the weight configuration from a YAML file
func LoadFromFile(configPath string) (*WeightsConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config WeightsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// LoadDefault returns the built-in weight configuration
func LoadDefault() *WeightsConfig {
	return &WeightsConfig{
		Components: map[string]float64{
			"orderflow":       0.25,
			"orderbook":       0.20,
			"volume":          0.15,
			"price_structure": 0.15,
			"technical":       0.15,
			"sentiment":       0.10,
		},
		MinActiveComponents: 3,
	}
}

// validateConfig rejects configurations that would poison every evaluation.
// An all-zero weight map is allowed here; NewTable handles it with the
// uniform fallback and a warning rather than a hard error.
func validateConfig(config *WeightsConfig) error {
	if len(config.Components) == 0 {
		return fmt.Errorf("no components declared")
	}

	for name, w := range config.Components {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("component %s has non-finite weight", name)
		}
		if w < 0 {
			return fmt.Errorf("component %s has negative weight: %.4f", name, w)
		}
	}

	if config.MinActiveComponents < 0 {
		return fmt.Errorf("min_active_components must be >= 0, got %d", config.MinActiveComponents)
	}
	if config.MinActiveComponents == 0 {
		config.MinActiveComponents = 3
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join("config", "weights.yaml")
}
