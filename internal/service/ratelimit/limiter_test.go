package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesBurstCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("NIFTY", 3, 1) {
			t.Fatalf("allow %d rejected within capacity", i)
		}
	}
	if l.Allow("NIFTY", 3, 1) {
		t.Fatalf("allow beyond capacity accepted")
	}
}

func TestAllowRefillsOverTime(t *testing.T) {
	l := New()
	if !l.Allow("NIFTY", 1, 100) {
		t.Fatalf("first allow rejected")
	}
	if l.Allow("NIFTY", 1, 100) {
		t.Fatalf("empty bucket allowed")
	}
	time.Sleep(20 * time.Millisecond) // 100/s refills ~2 tokens, capped at 1
	if !l.Allow("NIFTY", 1, 100) {
		t.Fatalf("bucket did not refill")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("NIFTY", 1, 1) {
		t.Fatalf("first key rejected")
	}
	if l.Allow("NIFTY", 1, 1) {
		t.Fatalf("drained key allowed")
	}
	if !l.Allow("BANKNIFTY", 1, 1) {
		t.Fatalf("fresh key rejected")
	}
}
