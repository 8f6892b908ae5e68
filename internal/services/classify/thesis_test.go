package classify

import (
	"testing"

	"IndexPulse/internal/domain/models"
)

func TestDeriveThesisMatrix(t *testing.T) {
	cases := []struct {
		name         string
		snap         models.Snapshot
		wantThesis   models.Thesis
		wantDominant models.DominantPlayer
	}{
		{
			name: "trending up with buyers",
			snap: models.Snapshot{
				Structure:   models.TrendingUp,
				PriceVsVWAP: models.AboveVWAP,
				EMACross:    models.BullishCross,
				OIBuildup:   models.LongBuildup,
			},
			wantThesis:   models.BullishTrend,
			wantDominant: models.Buyers,
		},
		{
			name: "trending up with sellers is a rotation",
			snap: models.Snapshot{
				Structure:   models.TrendingUp,
				PriceVsVWAP: models.BelowVWAP,
				EMACross:    models.BearishCross,
				OIBuildup:   models.LongUnwinding,
			},
			wantThesis:   models.BullishRotation,
			wantDominant: models.Sellers,
		},
		{
			name: "trending up balanced stays trend",
			snap: models.Snapshot{
				Structure:   models.TrendingUp,
				PriceVsVWAP: models.AboveVWAP,
				EMACross:    models.BearishCross,
			},
			wantThesis:   models.BullishTrend,
			wantDominant: models.Balance,
		},
		{
			name: "trending down with sellers",
			snap: models.Snapshot{
				Structure:   models.TrendingDown,
				PriceVsVWAP: models.BelowVWAP,
				EMACross:    models.BearishCross,
				OIBuildup:   models.ShortBuildup,
			},
			wantThesis:   models.BearishTrend,
			wantDominant: models.Sellers,
		},
		{
			name: "trending down with buyers is a rotation",
			snap: models.Snapshot{
				Structure:   models.TrendingDown,
				PriceVsVWAP: models.AboveVWAP,
				EMACross:    models.BullishCross,
				OIBuildup:   models.ShortCovering,
			},
			wantThesis:   models.BearishRotation,
			wantDominant: models.Buyers,
		},
		{
			name: "balancing structure",
			snap: models.Snapshot{
				Structure:   models.Balancing,
				PriceVsVWAP: models.AboveVWAP,
				EMACross:    models.BullishCross,
			},
			wantThesis:   models.ThesisBalancing,
			wantDominant: models.Buyers,
		},
		{
			name:         "empty snapshot falls to balancing",
			snap:         models.Snapshot{},
			wantThesis:   models.ThesisBalancing,
			wantDominant: models.Balance,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th, dom := DeriveThesis(&tc.snap)
			if th != tc.wantThesis {
				t.Fatalf("thesis = %s, want %s", th, tc.wantThesis)
			}
			if dom != tc.wantDominant {
				t.Fatalf("dominant = %s, want %s", dom, tc.wantDominant)
			}
		})
	}
}

func TestDeriveThesisNeverChoppy(t *testing.T) {
	// Choppy is a scorer outcome, not a structure-derived state.
	snaps := []models.Snapshot{
		{Structure: models.TrendingUp},
		{Structure: models.TrendingDown},
		{Structure: models.Balancing},
		{},
	}
	for _, s := range snaps {
		th, _ := DeriveThesis(&s)
		if th == models.ThesisChoppy {
			t.Fatalf("DeriveThesis returned Choppy for structure %q", s.Structure)
		}
	}
}

func TestDominantPlayerShortCoveringCountsBuyers(t *testing.T) {
	s := models.Snapshot{
		Structure: models.Balancing,
		OIBuildup: models.ShortCovering,
	}
	_, dom := DeriveThesis(&s)
	if dom != models.Buyers {
		t.Fatalf("dominant = %s, want Buyers", dom)
	}
}
