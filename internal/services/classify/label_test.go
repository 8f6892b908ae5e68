package classify

import (
	"strings"
	"testing"

	"IndexPulse/internal/domain/models"
)

func TestLabelThresholds(t *testing.T) {
	cases := []struct {
		conviction int
		wantPB     string
		wantSig    models.PrimarySignal
	}{
		{9, models.PlaybookStrongBullish, models.SignalBullish},
		{7, models.PlaybookStrongBullish, models.SignalBullish},
		{6, models.PlaybookModerateBull, models.SignalBullish},
		{3, models.PlaybookModerateBull, models.SignalBullish},
		{2, models.PlaybookNeutralObserve, models.SignalNeutral},
		{0, models.PlaybookNeutralObserve, models.SignalNeutral},
		{-2, models.PlaybookNeutralObserve, models.SignalNeutral},
		{-3, models.PlaybookModerateBear, models.SignalBearish},
		{-6, models.PlaybookModerateBear, models.SignalBearish},
		{-7, models.PlaybookStrongBearish, models.SignalBearish},
		{-11, models.PlaybookStrongBearish, models.SignalBearish},
	}
	for _, tc := range cases {
		pb, sig := Label(tc.conviction, false)
		if pb != tc.wantPB || sig != tc.wantSig {
			t.Fatalf("Label(%d) = (%q, %s), want (%q, %s)", tc.conviction, pb, sig, tc.wantPB, tc.wantSig)
		}
	}
}

func TestLabelChoppyOverridesConviction(t *testing.T) {
	for _, conviction := range []int{9, 0, -9} {
		pb, sig := Label(conviction, true)
		if pb != models.PlaybookChoppy {
			t.Fatalf("Label(%d, choppy) playbook = %q", conviction, pb)
		}
		if sig != models.SignalNeutral {
			t.Fatalf("Label(%d, choppy) signal = %s, want Neutral", conviction, sig)
		}
	}
}

func TestNarrativeCarriesDrivers(t *testing.T) {
	c := models.Classification{
		Thesis:         models.BullishTrend,
		Conviction:     8,
		Playbook:       models.PlaybookStrongBullish,
		BullishDrivers: []string{"vwap_hold_above (+3)", "ema_bull_cross (+4)"},
		BearishDrivers: []string{"short_buildup (-3)"},
	}
	n := Narrative(&c)
	for _, want := range []string{
		"Bullish_Trend", "conviction +8", models.PlaybookStrongBullish,
		"vwap_hold_above (+3)", "short_buildup (-3)",
	} {
		if !strings.Contains(n, want) {
			t.Fatalf("narrative %q missing %q", n, want)
		}
	}
}

func TestNarrativeOmitsEmptySides(t *testing.T) {
	c := models.Classification{
		Thesis:     models.ThesisBalancing,
		Conviction: 0,
		Playbook:   models.PlaybookNeutralObserve,
	}
	n := Narrative(&c)
	if strings.Contains(n, "bullish:") || strings.Contains(n, "bearish:") {
		t.Fatalf("narrative %q should omit empty driver lists", n)
	}
}
