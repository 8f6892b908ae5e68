package classify

import (
	"fmt"
	"strings"

	"IndexPulse/internal/domain/models"
)

// Conviction cut points shared by playbook labeling and primary-signal
// classification. They must stay identical for both.
const (
	strongConviction   = 7
	moderateConviction = 3
)

// Label maps final conviction to a playbook label and primary signal.
// First match wins; choppy overrides everything.
func Label(conviction int, choppy bool) (string, models.PrimarySignal) {
	if choppy {
		return models.PlaybookChoppy, models.SignalNeutral
	}
	switch {
	case conviction >= strongConviction:
		return models.PlaybookStrongBullish, models.SignalBullish
	case conviction >= moderateConviction:
		return models.PlaybookModerateBull, models.SignalBullish
	case conviction <= -strongConviction:
		return models.PlaybookStrongBearish, models.SignalBearish
	case conviction <= -moderateConviction:
		return models.PlaybookModerateBear, models.SignalBearish
	default:
		return models.PlaybookNeutralObserve, models.SignalNeutral
	}
}

// Narrative renders the compact human-readable summary carried on the
// classification and used by notification payloads.
func Narrative(c *models.Classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | conviction %+d | %s", c.Thesis, c.Conviction, c.Playbook)
	if len(c.BullishDrivers) > 0 {
		fmt.Fprintf(&b, " | bullish: %s", strings.Join(c.BullishDrivers, ", "))
	}
	if len(c.BearishDrivers) > 0 {
		fmt.Fprintf(&b, " | bearish: %s", strings.Join(c.BearishDrivers, ", "))
	}
	return b.String()
}
