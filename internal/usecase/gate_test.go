package usecase

import (
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
)

func newTestGate(cooldown time.Duration) (*EmissionGate, *time.Time) {
	g := NewEmissionGate(cooldown)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	return g, &now
}

func TestGateFirstObservationNeverEmits(t *testing.T) {
	g, _ := newTestGate(60 * time.Second)
	prev, emit := g.Observe("NIFTY", models.SignalBullish)
	if prev != models.SignalInitializing {
		t.Fatalf("prev = %s, want Initializing", prev)
	}
	if emit {
		t.Fatalf("transition away from Initializing must not emit")
	}
}

func TestGateUnchangedSignalNoEmit(t *testing.T) {
	g, now := newTestGate(60 * time.Second)
	g.Observe("NIFTY", models.SignalBullish)
	*now = now.Add(5 * time.Minute)
	if _, emit := g.Observe("NIFTY", models.SignalBullish); emit {
		t.Fatalf("unchanged signal emitted")
	}
}

func TestGateEmitsOnTransition(t *testing.T) {
	g, _ := newTestGate(60 * time.Second)
	g.Observe("NIFTY", models.SignalBullish)
	prev, emit := g.Observe("NIFTY", models.SignalBearish)
	if !emit {
		t.Fatalf("transition did not emit")
	}
	if prev != models.SignalBullish {
		t.Fatalf("prev = %s, want Bullish", prev)
	}
}

func TestGateCooldownSuppressesRapidFlips(t *testing.T) {
	g, now := newTestGate(60 * time.Second)
	g.Observe("NIFTY", models.SignalBullish)

	if _, emit := g.Observe("NIFTY", models.SignalBearish); !emit {
		t.Fatalf("first transition did not emit")
	}

	*now = now.Add(30 * time.Second)
	if _, emit := g.Observe("NIFTY", models.SignalBullish); emit {
		t.Fatalf("flip inside cooldown emitted")
	}
	// state still committed even though suppressed
	if g.Last("NIFTY") != models.SignalBullish {
		t.Fatalf("suppressed transition did not commit state")
	}

	*now = now.Add(31 * time.Second)
	if _, emit := g.Observe("NIFTY", models.SignalBearish); !emit {
		t.Fatalf("transition after cooldown did not emit")
	}
}

func TestGateCooldownStartsOnEmissionOnly(t *testing.T) {
	g, now := newTestGate(60 * time.Second)
	g.Observe("NIFTY", models.SignalBullish)
	if _, emit := g.Observe("NIFTY", models.SignalBearish); !emit {
		t.Fatalf("first transition did not emit")
	}

	// a suppressed flip must not restart the cooldown window
	*now = now.Add(50 * time.Second)
	if _, emit := g.Observe("NIFTY", models.SignalBullish); emit {
		t.Fatalf("flip at 50s emitted")
	}
	*now = now.Add(15 * time.Second) // 65s after the emission
	if _, emit := g.Observe("NIFTY", models.SignalBearish); !emit {
		t.Fatalf("flip 65s after last emission did not emit")
	}
}

func TestGatePerInstrumentIsolation(t *testing.T) {
	g, _ := newTestGate(60 * time.Second)
	g.Observe("NIFTY", models.SignalBullish)
	g.Observe("BANKNIFTY", models.SignalBearish)

	if _, emit := g.Observe("NIFTY", models.SignalBearish); !emit {
		t.Fatalf("NIFTY transition did not emit")
	}
	// BANKNIFTY's cooldown is untouched by NIFTY's emission
	if _, emit := g.Observe("BANKNIFTY", models.SignalBullish); !emit {
		t.Fatalf("BANKNIFTY transition did not emit")
	}
}

func TestGateLastDefaultsToInitializing(t *testing.T) {
	g, _ := newTestGate(time.Minute)
	if got := g.Last("UNSEEN"); got != models.SignalInitializing {
		t.Fatalf("Last = %s, want Initializing", got)
	}
}
