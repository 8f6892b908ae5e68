package models

import "time"

// Thesis is the enumerated market-state classification.
type Thesis string

const (
	BullishTrend    Thesis = "Bullish_Trend"
	BullishRotation Thesis = "Bullish_Rotation"
	BearishTrend    Thesis = "Bearish_Trend"
	BearishRotation Thesis = "Bearish_Rotation"
	ThesisBalancing Thesis = "Balancing"
	ThesisChoppy    Thesis = "Choppy"
)

// DominantPlayer is which side the evidence currently favors.
type DominantPlayer string

const (
	Buyers  DominantPlayer = "Buyers"
	Sellers DominantPlayer = "Sellers"
	Balance DominantPlayer = "Balance"
)

// PrimarySignal is the directional recommendation.
type PrimarySignal string

const (
	SignalBullish PrimarySignal = "Bullish"
	SignalBearish PrimarySignal = "Bearish"
	SignalNeutral PrimarySignal = "Neutral"

	// SignalInitializing is the sentinel before the first classification of an
	// instrument. A transition away from it is never emitted.
	SignalInitializing PrimarySignal = "Initializing"
)

// Playbook labels for the conviction buckets.
const (
	PlaybookChoppy         = "Choppy / Conflicting Signals"
	PlaybookStrongBullish  = "Strong Bullish Conviction"
	PlaybookModerateBull   = "Moderate Bullish Conviction"
	PlaybookStrongBearish  = "Strong Bearish Conviction"
	PlaybookModerateBear   = "Moderate Bearish Conviction"
	PlaybookNeutralObserve = "Neutral / Observe"
)

// Classification is the immutable per-tick output of the engine for one
// snapshot. The snapshot itself is never mutated.
type Classification struct {
	Instrument     string         `json:"instrument"`
	Timestamp      time.Time      `json:"timestamp"`
	Thesis         Thesis         `json:"thesis"`
	Dominant       DominantPlayer `json:"dominant_player"`
	BullishDrivers []string       `json:"bullish_drivers"`
	BearishDrivers []string       `json:"bearish_drivers"`
	Conviction     int            `json:"conviction"`
	Choppy         bool           `json:"choppy"`
	Playbook       string         `json:"playbook"`
	Signal         PrimarySignal  `json:"signal"`
	Narrative      string         `json:"narrative"`
}

// Emission is a signal transition handed to the persistence and notification
// sinks. PrevSignal lets the notifier phrase the transition.
type Emission struct {
	Classification Classification `json:"classification"`
	PrevSignal     PrimarySignal  `json:"prev_signal"`
}
