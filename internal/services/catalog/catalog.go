package catalog

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"IndexPulse/internal/domain/models"
	"IndexPulse/internal/services/classify"
	"IndexPulse/pkg/logger"
)

var validate = validator.New()

// Store holds the live driver catalog. The settings layer may replace it at
// any time between ticks; the scorer reads the current state on every
// evaluation via Snapshot().
//
// Driver names are resolved against the predicate registry when the catalog
// is installed: unresolved names are quarantined (kept out of the active
// catalog and reported) instead of failing closed silently on every tick.
type Store struct {
	mu          sync.RWMutex
	cat         models.DriverCatalog
	quarantined []string

	reg classify.Registry
	log *logger.Logger
}

// NewStore creates a catalog store validating against the given registry.
func NewStore(reg classify.Registry, log *logger.Logger) *Store {
	return &Store{reg: reg, log: log}
}

// LoadFile reads a catalog YAML file and installs it.
func (s *Store) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read drivers file: %w", err)
	}
	var cat models.DriverCatalog
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return fmt.Errorf("parse drivers file: %w", err)
	}
	return s.Replace(cat)
}

// Replace validates and installs a new catalog. Drivers with invalid weights
// are rejected outright; drivers whose names have no predicate are
// quarantined but the rest of the catalog still takes effect.
func (s *Store) Replace(cat models.DriverCatalog) error {
	for _, d := range cat.All() {
		if err := validate.Struct(d); err != nil {
			return fmt.Errorf("driver %q: %w", d.Name, err)
		}
	}

	var quarantined []string
	filtered := models.DriverCatalog{
		TrendBullish:    s.resolve(cat.TrendBullish, &quarantined),
		TrendBearish:    s.resolve(cat.TrendBearish, &quarantined),
		RangeBullish:    s.resolve(cat.RangeBullish, &quarantined),
		RangeBearish:    s.resolve(cat.RangeBearish, &quarantined),
		VolatileBullish: s.resolve(cat.VolatileBullish, &quarantined),
		VolatileBearish: s.resolve(cat.VolatileBearish, &quarantined),
	}

	s.mu.Lock()
	s.cat = filtered
	s.quarantined = quarantined
	s.mu.Unlock()

	if s.log != nil {
		s.log.Info("driver catalog installed",
			logger.Int("drivers", len(filtered.All())),
			logger.Int("quarantined", len(quarantined)))
		for _, name := range quarantined {
			s.log.Warn("driver has no predicate, quarantined", logger.String("driver", name))
		}
	}
	return nil
}

func (s *Store) resolve(drivers []models.Driver, quarantined *[]string) []models.Driver {
	out := make([]models.Driver, 0, len(drivers))
	for _, d := range drivers {
		if _, ok := s.reg[d.Name]; !ok {
			*quarantined = append(*quarantined, d.Name)
			continue
		}
		out = append(out, d)
	}
	return out
}

// Snapshot returns a copy of the active catalog for one evaluation.
func (s *Store) Snapshot() models.DriverCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.DriverCatalog{
		TrendBullish:    append([]models.Driver(nil), s.cat.TrendBullish...),
		TrendBearish:    append([]models.Driver(nil), s.cat.TrendBearish...),
		RangeBullish:    append([]models.Driver(nil), s.cat.RangeBullish...),
		RangeBearish:    append([]models.Driver(nil), s.cat.RangeBearish...),
		VolatileBullish: append([]models.Driver(nil), s.cat.VolatileBullish...),
		VolatileBearish: append([]models.Driver(nil), s.cat.VolatileBearish...),
	}
}

// Quarantined returns driver names that resolved to no predicate at the last
// install.
func (s *Store) Quarantined() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.quarantined...)
}

// Default returns the stock catalog used when no drivers file is configured.
func Default() models.DriverCatalog {
	return models.DriverCatalog{
		TrendBullish: []models.Driver{
			{Name: "vwap_hold_above", Weight: 3, Enabled: true},
			{Name: "ema_bull_cross", Weight: 4, Enabled: true},
			{Name: "long_buildup", Weight: 3, Enabled: true},
			{Name: "acceptance_above_value", Weight: 2, Enabled: true},
			{Name: "bullish_pattern_volume", Weight: 3, Enabled: true},
			{Name: "ib_extension_up", Weight: 2, Enabled: true},
			{Name: "institutional_accumulation", Weight: 3, Enabled: true},
		},
		TrendBearish: []models.Driver{
			{Name: "vwap_hold_below", Weight: -3, Enabled: true},
			{Name: "ema_bear_cross", Weight: -4, Enabled: true},
			{Name: "short_buildup", Weight: -3, Enabled: true},
			{Name: "acceptance_below_value", Weight: -2, Enabled: true},
			{Name: "bearish_pattern_volume", Weight: -3, Enabled: true},
			{Name: "ib_extension_down", Weight: -2, Enabled: true},
			{Name: "institutional_distribution", Weight: -3, Enabled: true},
		},
		RangeBullish: []models.Driver{
			{Name: "support_hold", Weight: 3, Enabled: true},
			{Name: "lower_band_fade", Weight: 2, Enabled: true},
			{Name: "short_covering", Weight: 2, Enabled: true},
			{Name: "day_low_reversal", Weight: 3, Enabled: true},
			{Name: "bullish_skew_divergence", Weight: 2, Enabled: true},
		},
		RangeBearish: []models.Driver{
			{Name: "resistance_hold", Weight: -3, Enabled: true},
			{Name: "upper_band_fade", Weight: -2, Enabled: true},
			{Name: "long_unwinding", Weight: -2, Enabled: true},
			{Name: "day_high_reversal", Weight: -3, Enabled: true},
			{Name: "bearish_skew_divergence", Weight: -2, Enabled: true},
		},
		VolatileBullish: []models.Driver{
			{Name: "gamma_squeeze_up", Weight: 3, Enabled: true},
			{Name: "vol_expansion_burst_up", Weight: 2, Enabled: true},
			{Name: "vol_breakout_up", Weight: 2, Enabled: true},
		},
		VolatileBearish: []models.Driver{
			{Name: "gamma_squeeze_down", Weight: -3, Enabled: true},
			{Name: "vol_expansion_burst_down", Weight: -2, Enabled: true},
			{Name: "vol_breakdown_down", Weight: -2, Enabled: true},
		},
	}
}
