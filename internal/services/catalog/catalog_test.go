package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"IndexPulse/internal/domain/models"
	"IndexPulse/internal/services/classify"
)

func TestDefaultResolvesFully(t *testing.T) {
	s := NewStore(classify.NewRegistry(), nil)
	if err := s.Replace(Default()); err != nil {
		t.Fatalf("install default catalog: %v", err)
	}
	if q := s.Quarantined(); len(q) != 0 {
		t.Fatalf("default catalog quarantined drivers: %v", q)
	}
	if got, want := len(s.Snapshot().All()), len(Default().All()); got != want {
		t.Fatalf("installed %d drivers, want %d", got, want)
	}
}

func TestReplaceQuarantinesUnknownNames(t *testing.T) {
	s := NewStore(classify.NewRegistry(), nil)
	cat := models.DriverCatalog{
		TrendBullish: []models.Driver{
			{Name: "vwap_hold_above", Weight: 3, Enabled: true},
			{Name: "no_such_predicate", Weight: 2, Enabled: true},
		},
	}
	if err := s.Replace(cat); err != nil {
		t.Fatalf("replace: %v", err)
	}
	q := s.Quarantined()
	if len(q) != 1 || q[0] != "no_such_predicate" {
		t.Fatalf("quarantined = %v", q)
	}
	// the resolvable driver still takes effect
	snap := s.Snapshot()
	if len(snap.TrendBullish) != 1 || snap.TrendBullish[0].Name != "vwap_hold_above" {
		t.Fatalf("active trend bullish = %v", snap.TrendBullish)
	}
}

func TestReplaceRejectsZeroWeight(t *testing.T) {
	s := NewStore(classify.NewRegistry(), nil)
	cat := models.DriverCatalog{
		TrendBullish: []models.Driver{
			{Name: "vwap_hold_above", Weight: 0, Enabled: true},
		},
	}
	if err := s.Replace(cat); err == nil {
		t.Fatalf("zero-weight driver accepted")
	}
}

func TestReplaceRejectsMissingName(t *testing.T) {
	s := NewStore(classify.NewRegistry(), nil)
	cat := models.DriverCatalog{
		RangeBullish: []models.Driver{{Weight: 2, Enabled: true}},
	}
	if err := s.Replace(cat); err == nil {
		t.Fatalf("nameless driver accepted")
	}
}

func TestSnapshotIsIsolatedCopy(t *testing.T) {
	s := NewStore(classify.NewRegistry(), nil)
	if err := s.Replace(Default()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	snap := s.Snapshot()
	snap.TrendBullish[0].Weight = 99

	again := s.Snapshot()
	if again.TrendBullish[0].Weight == 99 {
		t.Fatalf("mutating a snapshot leaked into the store")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.yaml")
	yml := `trend_bullish:
  - name: vwap_hold_above
    weight: 5
    enabled: true
trend_bearish:
  - name: ema_bear_cross
    weight: -4
    enabled: true
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	s := NewStore(classify.NewRegistry(), nil)
	if err := s.LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.TrendBullish) != 1 || snap.TrendBullish[0].Weight != 5 {
		t.Fatalf("trend bullish = %v", snap.TrendBullish)
	}
	if len(snap.TrendBearish) != 1 || snap.TrendBearish[0].Name != "ema_bear_cross" {
		t.Fatalf("trend bearish = %v", snap.TrendBearish)
	}
}

func TestLoadFileMissingPath(t *testing.T) {
	s := NewStore(classify.NewRegistry(), nil)
	if err := s.LoadFile("/nonexistent/drivers.yaml"); err == nil {
		t.Fatalf("missing file accepted")
	}
}
