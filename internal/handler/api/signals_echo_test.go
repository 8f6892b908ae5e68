package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/internal/services/catalog"
	"IndexPulse/internal/services/classify"
	"IndexPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fakeLatest struct {
	m map[string]*models.Classification
}

func (f *fakeLatest) SetLatest(c *models.Classification) { f.m[c.Instrument] = c }

func (f *fakeLatest) Latest(instrument string) (*models.Classification, bool) {
	c, ok := f.m[instrument]
	return c, ok
}

type fakeSignalStore struct {
	healthErr error
	rows      []*models.Classification
}

func (f *fakeSignalStore) Init(context.Context) error                      { return nil }
func (f *fakeSignalStore) Insert(context.Context, *models.Classification) error { return nil }
func (f *fakeSignalStore) Health(context.Context) error                    { return f.healthErr }
func (f *fakeSignalStore) Close() error                                    { return nil }

func (f *fakeSignalStore) Query(context.Context, string, time.Time, time.Time, int) ([]*models.Classification, error) {
	return f.rows, nil
}

func newTestHandler(t *testing.T, store *fakeSignalStore, ingestUp func() bool) (*SignalsEchoHandler, *catalog.Store) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cat := catalog.NewStore(classify.NewRegistry(), nil)
	if err := cat.Replace(catalog.Default()); err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	latest := &fakeLatest{m: map[string]*models.Classification{}}
	return NewSignalsEchoHandler(log, latest, store, cat, ingestUp), cat
}

func doRequest(h *SignalsEchoHandler, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	var req = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bodyStatus(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Status
}

func TestReplaceDriversRejectsZeroWeight(t *testing.T) {
	h, cat := newTestHandler(t, &fakeSignalStore{}, nil)
	before := len(cat.Snapshot().All())

	body := `{"trend_bullish":[{"name":"vwap_hold_above","weight":0,"enabled":true}]}`
	rec := doRequest(h, echo.PUT, "/api/drivers", body)

	if got := bodyStatus(t, rec); got != 400 {
		t.Fatalf("status = %d, want 400", got)
	}
	if after := len(cat.Snapshot().All()); after != before {
		t.Fatalf("catalog changed by rejected request: %d -> %d drivers", before, after)
	}
}

func TestReplaceDriversInstallsValidCatalog(t *testing.T) {
	h, cat := newTestHandler(t, &fakeSignalStore{}, nil)

	body := `{"trend_bullish":[{"name":"ema_bull_cross","weight":5,"enabled":true}]}`
	rec := doRequest(h, echo.PUT, "/api/drivers", body)

	if got := bodyStatus(t, rec); got != 200 {
		t.Fatalf("status = %d, want 200: %s", got, rec.Body.String())
	}
	snap := cat.Snapshot()
	if len(snap.TrendBullish) != 1 || snap.TrendBullish[0].Weight != 5 {
		t.Fatalf("catalog not replaced: %+v", snap.TrendBullish)
	}
}

func TestReplaceDriversReportsQuarantined(t *testing.T) {
	h, _ := newTestHandler(t, &fakeSignalStore{}, nil)

	body := `{"trend_bullish":[{"name":"no_such_predicate","weight":3,"enabled":true}]}`
	rec := doRequest(h, echo.PUT, "/api/drivers", body)

	if got := bodyStatus(t, rec); got != 200 {
		t.Fatalf("status = %d, want 200", got)
	}
	if !strings.Contains(rec.Body.String(), "no_such_predicate") {
		t.Fatalf("quarantined driver missing from response: %s", rec.Body.String())
	}
}

func TestHealthReportsIngestDown(t *testing.T) {
	h, _ := newTestHandler(t, &fakeSignalStore{}, func() bool { return false })

	rec := doRequest(h, echo.GET, "/healthz", "")
	if got := bodyStatus(t, rec); got != 500 {
		t.Fatalf("status = %d, want 500", got)
	}
	if !strings.Contains(rec.Body.String(), "ingest disconnected") {
		t.Fatalf("missing ingest error: %s", rec.Body.String())
	}
}

func TestHealthOK(t *testing.T) {
	h, _ := newTestHandler(t, &fakeSignalStore{}, func() bool { return true })

	rec := doRequest(h, echo.GET, "/healthz", "")
	if got := bodyStatus(t, rec); got != 200 {
		t.Fatalf("status = %d, want 200: %s", got, rec.Body.String())
	}
}

func TestLatestNotFound(t *testing.T) {
	h, _ := newTestHandler(t, &fakeSignalStore{}, nil)

	rec := doRequest(h, echo.GET, "/api/signals/NIFTY", "")
	if got := bodyStatus(t, rec); got != 404 {
		t.Fatalf("status = %d, want 404", got)
	}
}
