package classify

import (
	"fmt"

	"IndexPulse/internal/domain/models"
)

// choppyConviction is the per-side sum at which simultaneous bullish and
// bearish conviction becomes irreconcilable.
const choppyConviction = 5

// ScoreResult is the raw confluence outcome before session and trend
// adjustments.
type ScoreResult struct {
	BullishDrivers []string
	BearishDrivers []string
	Raw            int
	Choppy         bool
}

// Score selects the playbooks applicable to the thesis, evaluates every
// enabled driver independently, and accumulates signed bullish/bearish sums.
//
// Playbook selection: the four directional/rotational theses run the trending
// playbooks; Balancing runs the range playbooks. A high-volatility regime
// unions in the volatile playbooks on top of either; volatility is additive
// context, not a replacement regime.
func Score(s *models.Snapshot, th models.Thesis, cat models.DriverCatalog, reg Registry) ScoreResult {
	var selected []models.Driver
	switch th {
	case models.BullishTrend, models.BullishRotation, models.BearishTrend, models.BearishRotation:
		selected = append(selected, cat.TrendBullish...)
		selected = append(selected, cat.TrendBearish...)
	case models.ThesisBalancing:
		selected = append(selected, cat.RangeBullish...)
		selected = append(selected, cat.RangeBearish...)
	}
	if s.Regime == models.RegimeHighVol {
		selected = append(selected, cat.VolatileBullish...)
		selected = append(selected, cat.VolatileBearish...)
	}

	var res ScoreResult
	bullSum, bearSum := 0, 0
	for _, d := range selected {
		if !d.Enabled || d.Weight == 0 {
			continue
		}
		if !reg.Active(d.Name, s, th) {
			continue
		}
		label := fmt.Sprintf("%s (%+d)", d.Name, d.Weight)
		if d.Weight > 0 {
			bullSum += d.Weight
			res.BullishDrivers = append(res.BullishDrivers, label)
		} else {
			bearSum += d.Weight
			res.BearishDrivers = append(res.BearishDrivers, label)
		}
	}

	res.Raw = bullSum + bearSum
	// strong conviction on both sides at once, or balanced OI-weighted gamma,
	// both read as indecision
	res.Choppy = (bullSum >= choppyConviction && -bearSum >= choppyConviction) ||
		s.Gamma == models.BalancedGamma
	return res
}
