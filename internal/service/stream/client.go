package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a SnapshotStream over the indicator pipeline's WebSocket
// feed.
type Client struct {
	url            string
	token          string
	instruments    []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new indicator-pipeline SnapshotStream.
func New(url, token string, instruments []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.SnapshotStream {
	return &Client{
		url:            url,
		token:          token,
		instruments:    instruments,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// current returns the active connection, nil when disconnected.
func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := c.url
	if c.token != "" {
		u = fmt.Sprintf("%s?token=%s", c.url, c.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("stream connected", logger.String("url", c.url))
	return nil
}

// Subscribe subscribes to the configured instruments.
func (c *Client) Subscribe(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		return fmt.Errorf("stream not connected")
	}
	for _, ins := range c.instruments {
		msg := map[string]string{"type": "subscribe", "instrument": ins}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ins, err)
		}
		c.log.Info("stream subscribed", logger.String("instrument", ins))
	}
	return nil
}

type frame struct {
	Type string            `json:"type"`
	Data []models.Snapshot `json:"data"`
}

// Read streams snapshots and errors. Both channels close when the read loop
// dies; callers reconnect and call Read again for a fresh session.
func (c *Client) Read(ctx context.Context) (<-chan *models.Snapshot, <-chan error) {
	snaps := make(chan *models.Snapshot, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if conn := c.current(); conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(snaps)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := c.current()
				if conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var f frame
				if err := json.Unmarshal(b, &f); err != nil {
					// ignore non-snapshot frames
					continue
				}
				if f.Type != "snapshot" {
					continue
				}
				for i := range f.Data {
					s := f.Data[i]
					if s.Timestamp.IsZero() {
						s.Timestamp = time.Now()
					}
					select {
					case snaps <- &s:
					default:
						// drop on backpressure; the next tick replaces it
					}
				}
			}
		}
	}()

	return snaps, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
