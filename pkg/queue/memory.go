package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Memory is a bounded in-process queue with a worker pool. When the buffer is
// full PublishMessage drops the newest message and returns ErrQueueFull.
// Consumers of this queue are best-effort sinks whose outcome never feeds
// back into the publishing path.
type Memory struct {
	cfg      QueueConfig
	jobs     map[string]Job
	msgCh    chan Message
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	started  bool
	mu       sync.Mutex
}

// NewMemory creates an in-process queue.
func NewMemory(cfg QueueConfig) *Memory {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.DrainWait <= 0 {
		cfg.DrainWait = 5 * time.Second
	}
	return &Memory{
		cfg:    cfg,
		jobs:   make(map[string]Job),
		msgCh:  make(chan Message, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}
}

// RegisterJob registers a handler for a message type.
func (m *Memory) RegisterJob(j Job) {
	if _, ok := m.jobs[j.Type()]; ok {
		log.Printf("warn: job already registered for type %s", j.Type())
		return
	}
	m.jobs[j.Type()] = j
}

// Start launches the worker pool.
func (m *Memory) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}
}

func (m *Memory) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			// drain what is already buffered, then exit
			for {
				select {
				case msg := <-m.msgCh:
					m.handle(ctx, msg)
				default:
					return
				}
			}
		case msg := <-m.msgCh:
			m.handle(ctx, msg)
		}
	}
}

func (m *Memory) handle(ctx context.Context, msg Message) {
	job, ok := m.jobs[msg.Type]
	if !ok {
		log.Printf("queue: no job for type %s", msg.Type)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic in queue job %s: %v", job.Name(), r)
		}
	}()
	if err := job.Handle(ctx, msg.Payload); err != nil {
		log.Printf("queue job %s error: %v", job.Name(), err)
	}
}

// PublishMessage enqueues non-blocking; a full buffer drops the newest.
func (m *Memory) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	msg := Message{Type: msgType, Payload: payload, Timestamp: time.Now()}
	select {
	case m.msgCh <- msg:
		return nil
	default:
		return fmt.Errorf("publish %s: %w", msgType, ErrQueueFull)
	}
}

// Depth returns the number of buffered messages.
func (m *Memory) Depth() int { return len(m.msgCh) }

// Stop signals workers and waits for the buffer to drain, bounded by
// DrainWait and the context.
func (m *Memory) Stop(ctx context.Context) error {
	var stopErr error
	m.stopOnce.Do(func() {
		close(m.stopCh)

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(m.cfg.DrainWait):
			stopErr = fmt.Errorf("queue drain timed out after %s", m.cfg.DrainWait)
		case <-ctx.Done():
			stopErr = ctx.Err()
		}
	})
	return stopErr
}

var _ QueueService = (*Memory)(nil)
