package usecase

import (
	"sync"
	"time"

	"IndexPulse/internal/domain/models"
)

// EmissionGate tracks the last primary signal and last emitted transition per
// instrument, and decides whether a newly classified signal should reach the
// external sinks. Classification state is always committed; only emission is
// suppressed.
type EmissionGate struct {
	mu             sync.Mutex
	lastSignal     map[string]models.PrimarySignal
	lastTransition map[string]time.Time
	cooldown       time.Duration
	now            func() time.Time
}

// NewEmissionGate creates a gate with the given per-instrument cooldown.
func NewEmissionGate(cooldown time.Duration) *EmissionGate {
	return &EmissionGate{
		lastSignal:     make(map[string]models.PrimarySignal),
		lastTransition: make(map[string]time.Time),
		cooldown:       cooldown,
		now:            time.Now,
	}
}

// Observe commits the new primary signal for the instrument and reports the
// previous signal plus whether this transition should be emitted.
//
// No emission when the signal is unchanged, when the previous value is the
// Initializing sentinel, or when a prior transition was emitted within the
// cooldown window. The transition time is recorded only on emission.
func (g *EmissionGate) Observe(instrument string, sig models.PrimarySignal) (models.PrimarySignal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev, seen := g.lastSignal[instrument]
	if !seen {
		prev = models.SignalInitializing
	}
	g.lastSignal[instrument] = sig

	if sig == prev || prev == models.SignalInitializing {
		return prev, false
	}

	now := g.now()
	if last, ok := g.lastTransition[instrument]; ok && now.Sub(last) < g.cooldown {
		return prev, false
	}
	g.lastTransition[instrument] = now
	return prev, true
}

// Last returns the committed primary signal for an instrument, or the
// Initializing sentinel.
func (g *EmissionGate) Last(instrument string) models.PrimarySignal {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sig, ok := g.lastSignal[instrument]; ok {
		return sig
	}
	return models.SignalInitializing
}
