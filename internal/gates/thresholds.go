package gates

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// QualityThresholds holds the signal-quality filter thresholds
type QualityThresholds struct {
	MinConfidence   float64 `yaml:"min_confidence"`   // Below this the signal is suppressed
	MaxDisagreement float64 `yaml:"max_disagreement"` // Above this the signal is suppressed
}

// ThresholdConfig is the on-disk filter configuration
type ThresholdConfig struct {
	Quality QualityThresholds `yaml:"quality"`
}

// NewThresholdsWithDefaults returns the built-in thresholds (testing/fallback)
func NewThresholdsWithDefaults() QualityThresholds {
	return QualityThresholds{
		MinConfidence:   0.3,
		MaxDisagreement: 0.3,
	}
}

// LoadThresholds loads filter thresholds from a YAML file
func LoadThresholds(configPath string) (QualityThresholds, error) {
	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return QualityThresholds{}, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config ThresholdConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return QualityThresholds{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := validateThresholds(config.Quality); err != nil {
		return QualityThresholds{}, fmt.Errorf("invalid threshold configuration: %w", err)
	}

	return config.Quality, nil
}

// validateThresholds ensures thresholds are in sane ranges
func validateThresholds(t QualityThresholds) error {
	if t.MinConfidence < 0 || t.MinConfidence > 1 {
		return fmt.Errorf("min_confidence %.3f outside [0, 1]", t.MinConfidence)
	}
	if t.MaxDisagreement < 0 {
		return fmt.Errorf("max_disagreement %.3f must be >= 0", t.MaxDisagreement)
	}
	return nil
}

// Describe returns a human-readable summary of the thresholds
func (t QualityThresholds) Describe() string {
	return fmt.Sprintf("Quality filter | Confidence: >=%.2f | Disagreement: <=%.2f",
		t.MinConfidence, t.MaxDisagreement)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join("config", "filter.yaml")
}
