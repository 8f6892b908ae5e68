package models

// Driver is a named, weighted, enable-able rule. The sign of Weight decides
// bullish vs bearish contribution; a zero weight is invalid configuration.
type Driver struct {
	Name    string `yaml:"name" json:"name" validate:"required"`
	Weight  int    `yaml:"weight" json:"weight" validate:"required,ne=0"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

// DriverCatalog groups drivers into the six regime playbooks. The catalog is
// configuration: owned by the settings layer, read fresh on every evaluation.
type DriverCatalog struct {
	TrendBullish    []Driver `yaml:"trend_bullish" json:"trend_bullish" validate:"dive"`
	TrendBearish    []Driver `yaml:"trend_bearish" json:"trend_bearish" validate:"dive"`
	RangeBullish    []Driver `yaml:"range_bullish" json:"range_bullish" validate:"dive"`
	RangeBearish    []Driver `yaml:"range_bearish" json:"range_bearish" validate:"dive"`
	VolatileBullish []Driver `yaml:"volatile_bullish" json:"volatile_bullish" validate:"dive"`
	VolatileBearish []Driver `yaml:"volatile_bearish" json:"volatile_bearish" validate:"dive"`
}

// All returns every driver in the catalog, playbook order preserved.
func (c DriverCatalog) All() []Driver {
	out := make([]Driver, 0,
		len(c.TrendBullish)+len(c.TrendBearish)+
			len(c.RangeBullish)+len(c.RangeBearish)+
			len(c.VolatileBullish)+len(c.VolatileBearish))
	out = append(out, c.TrendBullish...)
	out = append(out, c.TrendBearish...)
	out = append(out, c.RangeBullish...)
	out = append(out, c.RangeBearish...)
	out = append(out, c.VolatileBullish...)
	out = append(out, c.VolatileBearish...)
	return out
}
