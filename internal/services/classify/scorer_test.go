package classify

import (
	"testing"

	"IndexPulse/internal/domain/models"
)

func trendCatalog() models.DriverCatalog {
	return models.DriverCatalog{
		TrendBullish: []models.Driver{
			{Name: "vwap_hold_above", Weight: 3, Enabled: true},
			{Name: "ema_bull_cross", Weight: 4, Enabled: true},
		},
		TrendBearish: []models.Driver{
			{Name: "short_buildup", Weight: -3, Enabled: true},
		},
		RangeBullish: []models.Driver{
			{Name: "support_hold", Weight: 3, Enabled: true},
		},
		RangeBearish: []models.Driver{
			{Name: "resistance_hold", Weight: -3, Enabled: true},
		},
		VolatileBullish: []models.Driver{
			{Name: "gamma_squeeze_up", Weight: 3, Enabled: true},
		},
		VolatileBearish: []models.Driver{
			{Name: "gamma_squeeze_down", Weight: -3, Enabled: true},
		},
	}
}

func TestScoreTrendPlaybookSelection(t *testing.T) {
	reg := NewRegistry()
	cat := trendCatalog()
	// support_hold also true; the balancing playbook must not run under a trend
	// thesis.
	s := models.Snapshot{
		Gamma:       models.PositiveGamma,
		PriceVsVWAP: models.AboveVWAP,
		EMACross:    models.BullishCross,
		Level:       models.AtSupport,
	}
	res := Score(&s, models.BullishTrend, cat, reg)
	if res.Raw != 7 {
		t.Fatalf("raw = %d, want 7", res.Raw)
	}
	if len(res.BullishDrivers) != 2 {
		t.Fatalf("bullish drivers = %v, want 2 entries", res.BullishDrivers)
	}
	if res.BullishDrivers[0] != "vwap_hold_above (+3)" {
		t.Fatalf("driver label = %q", res.BullishDrivers[0])
	}
}

func TestScoreBalancingUsesRangePlaybooks(t *testing.T) {
	reg := NewRegistry()
	cat := trendCatalog()
	s := models.Snapshot{
		Gamma:       models.PositiveGamma,
		PriceVsVWAP: models.AboveVWAP, // trend driver must not fire
		Level:       models.AtSupport,
	}
	res := Score(&s, models.ThesisBalancing, cat, reg)
	if res.Raw != 3 {
		t.Fatalf("raw = %d, want 3", res.Raw)
	}
	if len(res.BullishDrivers) != 1 || res.BullishDrivers[0] != "support_hold (+3)" {
		t.Fatalf("bullish drivers = %v", res.BullishDrivers)
	}
}

func TestScoreHighVolUnionsVolatilePlaybooks(t *testing.T) {
	reg := NewRegistry()
	cat := trendCatalog()
	s := models.Snapshot{
		Gamma:       models.NegativeGamma,
		PriceVsVWAP: models.AboveVWAP,
		Regime:      models.RegimeHighVol,
	}
	res := Score(&s, models.BullishTrend, cat, reg)
	// vwap_hold_above (+3) plus gamma_squeeze_up (+3)
	if res.Raw != 6 {
		t.Fatalf("raw = %d, want 6", res.Raw)
	}

	s.Regime = models.RegimeNormal
	res = Score(&s, models.BullishTrend, cat, reg)
	if res.Raw != 3 {
		t.Fatalf("raw without high vol = %d, want 3", res.Raw)
	}
}

func TestScoreDisabledDriverExcluded(t *testing.T) {
	reg := NewRegistry()
	cat := trendCatalog()
	cat.TrendBullish[1].Enabled = false // ema_bull_cross
	s := models.Snapshot{
		Gamma:       models.PositiveGamma,
		PriceVsVWAP: models.AboveVWAP,
		EMACross:    models.BullishCross,
	}
	res := Score(&s, models.BullishTrend, cat, reg)
	if res.Raw != 3 {
		t.Fatalf("raw = %d, want 3 with ema driver disabled", res.Raw)
	}
}

func TestScoreChoppyOnConflictingConviction(t *testing.T) {
	reg := NewRegistry()
	cat := models.DriverCatalog{
		TrendBullish: []models.Driver{
			{Name: "vwap_hold_above", Weight: 3, Enabled: true},
			{Name: "long_buildup", Weight: 3, Enabled: true},
		},
		TrendBearish: []models.Driver{
			{Name: "ema_bear_cross", Weight: -4, Enabled: true},
			{Name: "institutional_distribution", Weight: -3, Enabled: true},
		},
	}
	s := models.Snapshot{
		Gamma:       models.PositiveGamma,
		PriceVsVWAP: models.AboveVWAP,
		OIBuildup:   models.LongBuildup,
		EMACross:    models.BearishCross,
		Intent:      models.Distribution,
	}
	res := Score(&s, models.BullishTrend, cat, reg)
	if !res.Choppy {
		t.Fatalf("expected choppy with +6 bullish and -7 bearish")
	}
}

func TestScoreBalancedGammaIsChoppy(t *testing.T) {
	reg := NewRegistry()
	s := models.Snapshot{Gamma: models.BalancedGamma}
	res := Score(&s, models.BullishTrend, trendCatalog(), reg)
	if !res.Choppy {
		t.Fatalf("balanced gamma should read as choppy")
	}
}

func TestScoreCatalogChangeTakesEffectNextEvaluation(t *testing.T) {
	reg := NewRegistry()
	cat := trendCatalog()
	s := models.Snapshot{
		Gamma:       models.PositiveGamma,
		PriceVsVWAP: models.AboveVWAP,
	}
	before := Score(&s, models.BullishTrend, cat, reg)
	if before.Raw != 3 {
		t.Fatalf("raw = %d, want 3", before.Raw)
	}
	cat.TrendBullish[0].Weight = 5
	after := Score(&s, models.BullishTrend, cat, reg)
	if after.Raw != 5 {
		t.Fatalf("raw after weight change = %d, want 5", after.Raw)
	}
}
