package classify

import (
	"IndexPulse/internal/domain/models"
)

// DeriveThesis classifies market state from structure and dominant player.
// Pure function of the snapshot; never returns Choppy, that label is applied
// only downstream when the scorer detects conflicting conviction.
func DeriveThesis(s *models.Snapshot) (models.Thesis, models.DominantPlayer) {
	dominant := deriveDominantPlayer(s)

	switch s.Structure {
	case models.TrendingUp:
		if dominant == models.Sellers {
			// sellers leaning against an up-trend reads as a corrective rotation
			return models.BullishRotation, dominant
		}
		return models.BullishTrend, dominant
	case models.TrendingDown:
		if dominant == models.Buyers {
			return models.BearishRotation, dominant
		}
		return models.BearishTrend, dominant
	default:
		return models.ThesisBalancing, dominant
	}
}

// deriveDominantPlayer counts bullish vs bearish evidence over three
// independent indicator pairs. Ties resolve to Balance.
func deriveDominantPlayer(s *models.Snapshot) models.DominantPlayer {
	buyers, sellers := 0, 0

	switch s.PriceVsVWAP {
	case models.AboveVWAP:
		buyers++
	case models.BelowVWAP:
		sellers++
	}

	switch s.EMACross {
	case models.BullishCross:
		buyers++
	case models.BearishCross:
		sellers++
	}

	switch s.OIBuildup {
	case models.LongBuildup, models.ShortCovering:
		buyers++
	case models.ShortBuildup, models.LongUnwinding:
		sellers++
	}

	switch {
	case buyers > sellers:
		return models.Buyers
	case sellers > buyers:
		return models.Sellers
	default:
		return models.Balance
	}
}
