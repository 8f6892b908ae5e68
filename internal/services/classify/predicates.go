package classify

import (
	"sort"
	"strings"

	"IndexPulse/internal/domain/models"
)

// Predicate reports whether a driver's condition holds for the snapshot under
// the given thesis. Predicates never error: an absent or unexpected reading
// simply fails to match.
type Predicate func(s *models.Snapshot, th models.Thesis) bool

// Registry maps driver names to predicates. Built once at startup; the
// catalog is validated against it at load time so misconfigured names surface
// as quarantine warnings instead of silently dead drivers.
type Registry map[string]Predicate

// Active reports whether the named driver condition currently holds.
// Unknown names evaluate false (fail-closed).
func (r Registry) Active(name string, s *models.Snapshot, th models.Thesis) bool {
	p, ok := r[name]
	if !ok {
		return false
	}
	return p(s, th)
}

// Names returns the sorted set of registered driver names.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for n := range r {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func strongTrend(th models.Thesis) bool {
	return th == models.BullishTrend || th == models.BearishTrend
}

func patternIs(s *models.Snapshot, fragment string) bool {
	return strings.Contains(s.CandlePattern, fragment)
}

// NewRegistry builds the default predicate table. One entry per supported
// driver name; the catalog decides which of these are in play and how much
// they weigh.
func NewRegistry() Registry {
	return Registry{
		// trend bullish
		"vwap_hold_above": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.PriceVsVWAP == models.AboveVWAP
		},
		"ema_bull_cross": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.EMACross == models.BullishCross
		},
		"long_buildup": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.OIBuildup == models.LongBuildup
		},
		"acceptance_above_value": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Profile == models.AcceptanceAbove
		},
		"bullish_pattern_volume": func(s *models.Snapshot, _ models.Thesis) bool {
			return patternIs(s, "Bullish") && s.VolumeBurst
		},
		"ib_extension_up": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.IBExt == models.IBExtensionUp
		},
		"institutional_accumulation": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Intent == models.Accumulation
		},

		// trend bearish
		"vwap_hold_below": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.PriceVsVWAP == models.BelowVWAP
		},
		"ema_bear_cross": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.EMACross == models.BearishCross
		},
		"short_buildup": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.OIBuildup == models.ShortBuildup
		},
		"acceptance_below_value": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Profile == models.AcceptanceBelow
		},
		"bearish_pattern_volume": func(s *models.Snapshot, _ models.Thesis) bool {
			return patternIs(s, "Bearish") && s.VolumeBurst
		},
		"ib_extension_down": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.IBExt == models.IBExtensionDown
		},
		"institutional_distribution": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Intent == models.Distribution
		},

		// range bullish
		"support_hold": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Level == models.AtSupport
		},
		"lower_band_fade": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.VWAPBand == models.AtLowerBand
		},
		"short_covering": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.OIBuildup == models.ShortCovering
		},
		"day_low_reversal": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.DayRange == models.NearDayLow && patternIs(s, "Reversal")
		},
		// skew divergence only matters outside a strong trend, where a
		// repositioning in options skew front-runs the rotation
		"bullish_skew_divergence": func(s *models.Snapshot, th models.Thesis) bool {
			return s.Skew == models.BullishSkewDiv && !strongTrend(th)
		},

		// range bearish
		"resistance_hold": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Level == models.AtResistance
		},
		"upper_band_fade": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.VWAPBand == models.AtUpperBand
		},
		"long_unwinding": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.OIBuildup == models.LongUnwinding
		},
		"day_high_reversal": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.DayRange == models.NearDayHigh && patternIs(s, "Reversal")
		},
		"bearish_skew_divergence": func(s *models.Snapshot, th models.Thesis) bool {
			return s.Skew == models.BearishSkewDiv && !strongTrend(th)
		},

		// volatile bullish
		"gamma_squeeze_up": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Gamma == models.NegativeGamma && s.PriceVsVWAP == models.AboveVWAP
		},
		"vol_expansion_burst_up": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Vol == models.HighVol && s.VolumeBurst && patternIs(s, "Bullish")
		},
		"vol_breakout_up": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Vol == models.HighVol && s.IBExt == models.IBExtensionUp
		},

		// volatile bearish
		"gamma_squeeze_down": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Gamma == models.NegativeGamma && s.PriceVsVWAP == models.BelowVWAP
		},
		"vol_expansion_burst_down": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Vol == models.HighVol && s.VolumeBurst && patternIs(s, "Bearish")
		},
		"vol_breakdown_down": func(s *models.Snapshot, _ models.Thesis) bool {
			return s.Vol == models.HighVol && s.IBExt == models.IBExtensionDown
		},
	}
}
