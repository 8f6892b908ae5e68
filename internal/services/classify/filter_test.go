package classify

import (
	"testing"

	"IndexPulse/internal/domain/models"
)

func TestAdjustOpeningPhaseHalvesScore(t *testing.T) {
	cases := []struct {
		raw  int
		want int
	}{
		{8, 4},
		{7, 4},   // 3.5 rounds away from zero
		{-7, -4}, // symmetric
		{1, 1},   // 0.5 rounds away from zero
		{-1, -1},
		{0, 0},
	}
	for _, tc := range cases {
		s := models.Snapshot{Phase: models.PhaseOpening, Structure: models.Balancing}
		if got := Adjust(tc.raw, &s); got != tc.want {
			t.Fatalf("Adjust(%d) opening = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestAdjustCounterTrendVeto(t *testing.T) {
	s := models.Snapshot{Structure: models.TrendingUp, Phase: models.PhaseMidday}
	if got := Adjust(-5, &s); got != 0 {
		t.Fatalf("counter-trend short = %d, want 0", got)
	}
	s.Structure = models.TrendingDown
	if got := Adjust(5, &s); got != 0 {
		t.Fatalf("counter-trend long = %d, want 0", got)
	}
}

func TestAdjustTrendBonusAtLocation(t *testing.T) {
	cases := []struct {
		name string
		snap models.Snapshot
		raw  int
		want int
	}{
		{
			name: "with-trend long at support",
			snap: models.Snapshot{Structure: models.TrendingUp, Level: models.AtSupport},
			raw:  4, want: 6,
		},
		{
			name: "with-trend long near day low",
			snap: models.Snapshot{Structure: models.TrendingUp, DayRange: models.NearDayLow},
			raw:  4, want: 6,
		},
		{
			name: "with-trend long at lower band",
			snap: models.Snapshot{Structure: models.TrendingUp, VWAPBand: models.AtLowerBand},
			raw:  4, want: 6,
		},
		{
			name: "with-trend long away from support",
			snap: models.Snapshot{Structure: models.TrendingUp},
			raw:  4, want: 4,
		},
		{
			name: "with-trend short at resistance",
			snap: models.Snapshot{Structure: models.TrendingDown, Level: models.AtResistance},
			raw:  -4, want: -6,
		},
		{
			name: "balancing gets neither",
			snap: models.Snapshot{Structure: models.Balancing, Level: models.AtSupport},
			raw:  4, want: 4,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Adjust(tc.raw, &tc.snap); got != tc.want {
				t.Fatalf("Adjust(%d) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestAdjustDampenerRunsBeforeTrendFilter(t *testing.T) {
	// Opening halves 7 to 4, then support bonus lifts it to 6. The order
	// matters: bonus after halving, not before.
	s := models.Snapshot{
		Phase:     models.PhaseOpening,
		Structure: models.TrendingUp,
		Level:     models.AtSupport,
	}
	if got := Adjust(7, &s); got != 6 {
		t.Fatalf("Adjust(7) = %d, want 6", got)
	}
}

func TestAdjustZeroNeverEarnsBonus(t *testing.T) {
	s := models.Snapshot{Structure: models.TrendingUp, Level: models.AtSupport}
	if got := Adjust(0, &s); got != 0 {
		t.Fatalf("Adjust(0) = %d, want 0", got)
	}
}
