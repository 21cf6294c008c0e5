package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/popbal/internal/logging"
	"github.com/arloliu/popbal/types"
)

// Common errors for heartbeat operations.
var (
	ErrNotStarted     = errors.New("publisher not started")
	ErrAlreadyStarted = errors.New("publisher already started")
	ErrNoSnapshot     = errors.New("snapshot function not set")
)

// SnapshotFunc produces the value written on every tick.
type SnapshotFunc func() ([]byte, error)

// Publisher writes a snapshot to one KV key at a fixed interval.
type Publisher struct {
	kv       jetstream.KeyValue
	key      string
	interval time.Duration
	snapshot SnapshotFunc
	logger   types.Logger

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	ticker  *time.Ticker
	writes  int
}

// New creates a new heartbeat publisher.
//
// Parameters:
//   - kv: JetStream KV bucket to write to
//   - key: Key receiving the snapshots
//   - interval: Time between writes
//   - snapshot: Value producer, called once per write
//
// Returns:
//   - *Publisher: New publisher instance
func New(kv jetstream.KeyValue, key string, interval time.Duration, snapshot SnapshotFunc) *Publisher {
	return &Publisher{
		kv:       kv,
		key:      key,
		interval: interval,
		snapshot: snapshot,
		logger:   logging.NewNop(),
	}
}

// SetLogger sets the logger used for failed background writes.
func (p *Publisher) SetLogger(logger types.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if logger != nil {
		p.logger = logger
	}
}

// Start writes the first snapshot immediately, then one per interval until Stop.
//
// Parameters:
//   - ctx: Context for the initial write
//
// Returns:
//   - error: ErrAlreadyStarted, ErrNoSnapshot, or the initial write error
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	if p.snapshot == nil {
		return ErrNoSnapshot
	}

	if err := p.publish(ctx); err != nil {
		return fmt.Errorf("failed to publish initial snapshot: %w", err)
	}

	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.ticker = time.NewTicker(p.interval)

	go p.publishLoop(p.ticker, p.stopCh, p.doneCh)

	return nil
}

// Stop ends the background writes and publishes a final snapshot.
//
// Blocks until the publisher goroutine exits. A Publisher may be started
// again after Stop.
//
// Returns:
//   - error: ErrNotStarted if not running, or the final write error
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}

	p.ticker.Stop()
	close(p.stopCh)
	p.started = false
	doneCh := p.doneCh
	p.mu.Unlock()

	<-doneCh

	// The run is over; use a fresh context for the last write.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.publish(ctx); err != nil {
		return fmt.Errorf("stopped but failed to publish final snapshot: %w", err)
	}

	return nil
}

func (p *Publisher) publishLoop(ticker *time.Ticker, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.mu.Lock()
			err := p.publish(ctx)
			logger := p.logger
			p.mu.Unlock()
			cancel()

			if err != nil {
				logger.Warn("heartbeat write failed", "key", p.key, "error", err)
			}
		}
	}
}

// publish writes one snapshot; the caller holds p.mu.
func (p *Publisher) publish(ctx context.Context) error {
	value, err := p.snapshot()
	if err != nil {
		return fmt.Errorf("failed to build snapshot for %s: %w", p.key, err)
	}

	if _, err := p.kv.Put(ctx, p.key, value); err != nil {
		return fmt.Errorf("failed to publish snapshot to %s: %w", p.key, err)
	}
	p.writes++

	return nil
}

// Key returns the KV key the publisher writes to.
func (p *Publisher) Key() string {
	return p.key
}

// Writes returns the number of successful writes so far.
func (p *Publisher) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.writes
}

// IsStarted returns whether the publisher is currently running.
func (p *Publisher) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started
}
