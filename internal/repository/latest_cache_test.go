package repository

import (
	"context"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/pkg/cache"
)

// fakeStore stands in for the Redis-backed tier so fallback reads can be
// exercised without a server.
type fakeStore struct {
	cache.Service
	m map[string]models.Classification
}

func newFakeStore() *fakeStore {
	return &fakeStore{m: map[string]models.Classification{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if cl, ok := value.(models.Classification); ok {
		f.m[key] = cl
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string, dest interface{}) error {
	cl, ok := f.m[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	*dest.(*models.Classification) = cl
	return nil
}

func TestLatestCacheRoundTrip(t *testing.T) {
	c := NewLatestCache(cache.NewLayeredCache(nil), time.Minute)

	if _, ok := c.Latest("NIFTY"); ok {
		t.Fatalf("empty cache returned a value")
	}

	c.SetLatest(&models.Classification{Instrument: "NIFTY", Signal: models.SignalBullish, Conviction: 8})

	got, ok := c.Latest("NIFTY")
	if !ok {
		t.Fatalf("cache miss after set")
	}
	if got.Signal != models.SignalBullish || got.Conviction != 8 {
		t.Fatalf("got %+v", got)
	}
}

func TestLatestCacheOverwrites(t *testing.T) {
	c := NewLatestCache(cache.NewLayeredCache(nil), time.Minute)
	c.SetLatest(&models.Classification{Instrument: "NIFTY", Signal: models.SignalBullish})
	c.SetLatest(&models.Classification{Instrument: "NIFTY", Signal: models.SignalBearish})

	got, ok := c.Latest("NIFTY")
	if !ok {
		t.Fatalf("cache miss after set")
	}
	if got.Signal != models.SignalBearish {
		t.Fatalf("signal = %s, want Bearish", got.Signal)
	}
}

func TestLatestCacheServesFromBackingStore(t *testing.T) {
	store := newFakeStore()
	store.m["latest:BANKNIFTY"] = models.Classification{
		Instrument: "BANKNIFTY",
		Signal:     models.SignalBullish,
	}
	c := NewLatestCache(store, time.Minute)

	got, ok := c.Latest("BANKNIFTY")
	if !ok {
		t.Fatalf("value in backing store not served")
	}
	if got.Signal != models.SignalBullish {
		t.Fatalf("signal = %s", got.Signal)
	}
}

func TestLatestCacheIgnoresNil(t *testing.T) {
	c := NewLatestCache(cache.NewLayeredCache(nil), time.Minute)
	c.SetLatest(nil)
	if _, ok := c.Latest(""); ok {
		t.Fatalf("nil set produced an entry")
	}
}
