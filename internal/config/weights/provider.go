package weights

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Provider hands out the active weight table to concurrent evaluations.
// Reload swaps the whole table atomically; readers never observe a
// partially updated mapping.
type Provider struct {
	current   atomic.Pointer[Table]
	minActive atomic.Int32
}

// NewProvider builds a provider from a validated configuration
func NewProvider(config *WeightsConfig) *Provider {
	p := &Provider{}
	p.current.Store(NewTable(config.Components))
	p.minActive.Store(int32(config.MinActiveComponents))
	return p
}

// NewProviderFromFile loads the configuration and builds a provider
func NewProviderFromFile(configPath string) (*Provider, error) {
	config, err := LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load weight config: %w", err)
	}
	return NewProvider(config), nil
}

// Table returns the active weight table, safe for concurrent reads
func (p *Provider) Table() *Table {
	return p.current.Load()
}

// MinActiveComponents returns the warning threshold for sparse input sets
func (p *Provider) MinActiveComponents() int {
	return int(p.minActive.Load())
}

// Reload replaces the active table from a new configuration
func (p *Provider) Reload(config *WeightsConfig) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("reload rejected: %w", err)
	}

	table := NewTable(config.Components)
	p.current.Store(table)
	p.minActive.Store(int32(config.MinActiveComponents))

	log.Info().
		Int("components", len(table.Components())).
		Bool("uniform_fallback", table.UniformFallback()).
		Msg("Weight table reloaded")
	return nil
}
