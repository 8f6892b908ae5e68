package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	mid "IndexPulse/internal/middleware"
)

// scriptedStream fails its first Read session (one error, then both channels
// close, the way the websocket client behaves when its read loop dies) and
// serves snapshots from the second session onward.
type scriptedStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	snap       *models.Snapshot
}

func (s *scriptedStream) Connect(context.Context) error   { return nil }
func (s *scriptedStream) Subscribe(context.Context) error { return nil }
func (s *scriptedStream) Close() error                    { return nil }
func (s *scriptedStream) IsConnected() bool               { return true }

func (s *scriptedStream) Reconnect(context.Context) error {
	s.mu.Lock()
	s.reconnects++
	s.mu.Unlock()
	return nil
}

func (s *scriptedStream) reconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

func (s *scriptedStream) Read(context.Context) (<-chan *models.Snapshot, <-chan error) {
	s.mu.Lock()
	s.reads++
	session := s.reads
	s.mu.Unlock()

	snaps := make(chan *models.Snapshot, 1)
	errs := make(chan error, 1)
	if session == 1 {
		errs <- errors.New("read failed")
		close(snaps)
		close(errs)
		return snaps, errs
	}
	snaps <- s.snap
	return snaps, errs
}

type streamProc struct {
	processed chan *models.Snapshot
}

func (p *streamProc) Process(_ context.Context, s *models.Snapshot) *models.Classification {
	p.processed <- s
	return nil
}

func TestCollectorReacquiresStreamAfterReadError(t *testing.T) {
	st := &scriptedStream{snap: &models.Snapshot{Instrument: "NIFTY", Group: models.GroupIndex}}
	proc := &streamProc{processed: make(chan *models.Snapshot, 1)}
	m := newFakeMetrics()
	col := NewSnapshotCollector(st, m, mid.NewSnapshotPipeline(proc, m))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := col.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case s := <-proc.processed:
		if s.Instrument != "NIFTY" {
			t.Fatalf("instrument = %q", s.Instrument)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("snapshot from the reconnected stream never reached the pipeline")
	}
	if got := st.reconnectCount(); got != 1 {
		t.Fatalf("reconnects = %d, want 1", got)
	}
}

func TestCollectorStopsReconnectingOnShutdown(t *testing.T) {
	st := &scriptedStream{snap: &models.Snapshot{Instrument: "NIFTY", Group: models.GroupIndex}}
	proc := &streamProc{processed: make(chan *models.Snapshot, 4)}
	m := newFakeMetrics()
	col := NewSnapshotCollector(st, m, mid.NewSnapshotPipeline(proc, m))

	ctx, cancel := context.WithCancel(context.Background())
	if err := col.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-proc.processed
	cancel()

	// the consume loop exits instead of spinning on dead channels
	time.Sleep(50 * time.Millisecond)
	before := st.reconnectCount()
	time.Sleep(50 * time.Millisecond)
	if after := st.reconnectCount(); after != before {
		t.Fatalf("reconnects kept growing after cancel: %d -> %d", before, after)
	}
}
