package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"IndexPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// snapshotServer upgrades the connection, waits for the subscribe message,
// then pushes one snapshot frame and holds the connection open.
func snapshotServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		frame := map[string]interface{}{
			"type": "snapshot",
			"data": []map[string]interface{}{
				{"instrument": "NIFTY", "group": "INDEX", "structure": "TrendingUp"},
			},
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
		// hold until the client closes
		_, _, _ = conn.ReadMessage()
	}))
}

func TestClientReadDeliversSnapshots(t *testing.T) {
	srv := snapshotServer(t)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	c := New(url, "", []string{"NIFTY"}, time.Millisecond, time.Minute, testLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !c.IsConnected() {
		t.Fatalf("IsConnected false after connect")
	}
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	snaps, _ := c.Read(ctx)
	select {
	case s := <-snaps:
		if s.Instrument != "NIFTY" {
			t.Fatalf("instrument = %q", s.Instrument)
		}
		if s.Timestamp.IsZero() {
			t.Fatalf("timestamp not defaulted")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no snapshot delivered")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.IsConnected() {
		t.Fatalf("IsConnected true after close")
	}
}

func TestClientReadSessionEndsOnClose(t *testing.T) {
	srv := snapshotServer(t)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	c := New(url, "", []string{"NIFTY"}, time.Millisecond, time.Minute, testLogger(t))
	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	snaps, errs := c.Read(ctx)
	<-snaps
	_ = c.Close()

	// the read loop reports the dead connection and closes both channels
	select {
	case <-errs:
	case <-time.After(2 * time.Second):
		t.Fatalf("error channel never signalled after close")
	}
	select {
	case _, ok := <-snaps:
		if ok {
			t.Fatalf("snapshot after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("snapshot channel never closed")
	}
}

func TestClientSubscribeRequiresConnection(t *testing.T) {
	c := New("ws://localhost:1", "", []string{"NIFTY"}, time.Millisecond, time.Minute, testLogger(t))
	if err := c.Subscribe(context.Background()); err == nil {
		t.Fatalf("subscribe without connection accepted")
	}
}
