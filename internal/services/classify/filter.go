package classify

import (
	"math"

	"IndexPulse/internal/domain/models"
)

const trendBonus = 2

// Adjust post-processes the raw confluence score: session dampening first,
// then the trend filter veto/bonus against the prevailing structure.
func Adjust(raw int, s *models.Snapshot) int {
	score := raw

	// Opening phase halves conviction; signals printed in the first rotation
	// are unreliable until the initial balance forms. Rounds half away from
	// zero (7 -> 4, -7 -> -4).
	if s.Phase == models.PhaseOpening {
		score = int(math.Round(float64(score) / 2))
	}

	atSupport := s.Level == models.AtSupport ||
		s.DayRange == models.NearDayLow ||
		s.VWAPBand == models.AtLowerBand
	atResistance := s.Level == models.AtResistance ||
		s.DayRange == models.NearDayHigh ||
		s.VWAPBand == models.AtUpperBand

	// Veto before bonus: a vetoed score is exactly zero and zero never earns
	// a bonus.
	switch s.Structure {
	case models.TrendingUp:
		if score < 0 {
			return 0 // no counter-trend shorts
		}
		if score > 0 && atSupport {
			score += trendBonus
		}
	case models.TrendingDown:
		if score > 0 {
			return 0
		}
		if score < 0 && atResistance {
			score -= trendBonus
		}
	}
	return score
}
