package models

import "time"

// InstrumentGroup classifies an instrument. Only INDEX instruments are
// classified; everything else passes through untouched.
type InstrumentGroup string

const (
	GroupIndex InstrumentGroup = "INDEX"
)

// PriceVsVWAP is the position of price relative to the session VWAP.
type PriceVsVWAP string

const (
	AboveVWAP PriceVsVWAP = "above_vwap"
	BelowVWAP PriceVsVWAP = "below_vwap"
	AtVWAP    PriceVsVWAP = "at_vwap"
)

// EMACross is the state of the fast moving-average pair.
type EMACross string

const (
	BullishCross EMACross = "bullish_cross"
	BearishCross EMACross = "bearish_cross"
	NoCross      EMACross = "no_cross"
)

// OIBuildup is the open-interest buildup direction.
type OIBuildup string

const (
	LongBuildup   OIBuildup = "long_buildup"
	ShortBuildup  OIBuildup = "short_buildup"
	ShortCovering OIBuildup = "short_covering"
	LongUnwinding OIBuildup = "long_unwinding"
	NoBuildup     OIBuildup = "no_buildup"
)

// GammaBucket is the OI-weighted gamma exposure bucket.
type GammaBucket string

const (
	PositiveGamma GammaBucket = "positive_gamma"
	NegativeGamma GammaBucket = "negative_gamma"
	BalancedGamma GammaBucket = "balanced_gamma"
)

// VolState is the volatility-state bucket.
type VolState string

const (
	HighVol   VolState = "high_vol"
	LowVol    VolState = "low_vol"
	NormalVol VolState = "normal_vol"
)

// ProfileState is the market-profile acceptance state.
type ProfileState string

const (
	AcceptanceAbove ProfileState = "acceptance_above"
	AcceptanceBelow ProfileState = "acceptance_below"
	RejectionAbove  ProfileState = "rejection_above"
	RejectionBelow  ProfileState = "rejection_below"
	InsideValue     ProfileState = "inside_value"
)

// DayRangePos is the position of price within the day's range.
type DayRangePos string

const (
	NearDayLow  DayRangePos = "near_day_low"
	NearDayHigh DayRangePos = "near_day_high"
	MidRange    DayRangePos = "mid_range"
)

// VWAPBand is the position of price relative to the VWAP standard-deviation bands.
type VWAPBand string

const (
	AtLowerBand VWAPBand = "at_lower_band"
	AtUpperBand VWAPBand = "at_upper_band"
	InsideBands VWAPBand = "inside_bands"
)

// LevelProximity is the proximity of price to an operator-defined level.
type LevelProximity string

const (
	AtSupport    LevelProximity = "at_support"
	AtResistance LevelProximity = "at_resistance"
	NoLevel      LevelProximity = "no_level"
)

// SkewSignal is the options skew divergence signal.
type SkewSignal string

const (
	BullishSkewDiv SkewSignal = "bullish_skew_div"
	BearishSkewDiv SkewSignal = "bearish_skew_div"
	NoSkewSignal   SkewSignal = "no_skew_signal"
)

// IBExtension is the initial-balance extension state.
type IBExtension string

const (
	IBExtensionUp   IBExtension = "ib_extension_up"
	IBExtensionDown IBExtension = "ib_extension_down"
	InsideIB        IBExtension = "inside_ib"
)

// Intent is the inferred institutional-intent label.
type Intent string

const (
	Accumulation Intent = "accumulation"
	Distribution Intent = "distribution"
	NoIntent     Intent = "no_intent"
)

// MarketStructure is the prevailing structure label.
type MarketStructure string

const (
	TrendingUp   MarketStructure = "trending_up"
	TrendingDown MarketStructure = "trending_down"
	Balancing    MarketStructure = "balancing"
)

// MarketRegime is the prevailing regime label.
type MarketRegime string

const (
	RegimeHighVol MarketRegime = "high_volatility"
	RegimeNormal  MarketRegime = "normal"
)

// MarketPhase is the session phase.
type MarketPhase string

const (
	PhaseOpening MarketPhase = "opening"
	PhaseMidday  MarketPhase = "midday"
	PhaseClosing MarketPhase = "closing"
)

// Snapshot is one instrument's derived indicator state at one timestamp,
// produced per tick by the upstream indicator pipeline. Fields the registry
// does not recognize simply never match a predicate, so a zero or garbled
// reading degrades to "condition not met" rather than an error.
type Snapshot struct {
	Instrument string          `json:"instrument"`
	Group      InstrumentGroup `json:"group"`
	Timestamp  time.Time       `json:"timestamp"`

	PriceVsVWAP   PriceVsVWAP    `json:"price_vs_vwap"`
	EMACross      EMACross       `json:"ema_cross"`
	OIBuildup     OIBuildup      `json:"oi_buildup"`
	Gamma         GammaBucket    `json:"gamma"`
	Vol           VolState       `json:"vol_state"`
	Profile       ProfileState   `json:"profile_state"`
	DayRange      DayRangePos    `json:"day_range_pos"`
	VWAPBand      VWAPBand       `json:"vwap_band"`
	Level         LevelProximity `json:"level_proximity"`
	Skew          SkewSignal     `json:"skew_signal"`
	IBExt         IBExtension    `json:"ib_extension"`
	Intent        Intent         `json:"intent"`
	CandlePattern string         `json:"candle_pattern"`
	VolumeBurst   bool           `json:"volume_burst"`

	Structure MarketStructure `json:"structure"`
	Regime    MarketRegime    `json:"regime"`
	Phase     MarketPhase     `json:"phase"`
}
