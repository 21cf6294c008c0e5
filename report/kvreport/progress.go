package kvreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/popbal"
	"github.com/arloliu/popbal/internal/heartbeat"
)

const defaultProgressInterval = time.Second

// ProgressSource reports the state of a run. *popbal.Synthesizer implements it.
type ProgressSource interface {
	Progress() popbal.Progress
}

// ProgressKey returns the key progress snapshots are written to.
//
// It lies outside the report key space, so List and Watch never see it.
func (p *Publisher) ProgressKey() string {
	return "progress." + p.prefix
}

// StartProgress writes src's progress to ProgressKey every interval until
// the returned stop function is called. Stop writes one final snapshot.
//
// Parameters:
//   - ctx: Context for the initial write
//   - src: Run to report on (e.g., a *popbal.Synthesizer)
//   - interval: Time between writes (1s if ≤ 0)
//
// Returns:
//   - func() error: Stops the writes
//   - error: Initial write failure
//
// Example:
//
//	stop, err := pub.StartProgress(ctx, synth, time.Second)
//	if err != nil { /* handle */ }
//	result, err := synth.Run(ctx)
//	_ = stop()
func (p *Publisher) StartProgress(ctx context.Context, src ProgressSource, interval time.Duration) (func() error, error) {
	if interval <= 0 {
		interval = defaultProgressInterval
	}

	hb := heartbeat.New(p.kv, p.ProgressKey(), interval, func() ([]byte, error) {
		return json.Marshal(src.Progress())
	})
	hb.SetLogger(p.logger)

	if err := hb.Start(ctx); err != nil {
		return nil, err
	}

	return hb.Stop, nil
}

// Progress reads the latest progress snapshot.
//
// Returns:
//   - popbal.Progress: Last written snapshot
//   - error: ErrReportNotFound if no progress has been written
func (p *Publisher) Progress(ctx context.Context) (popbal.Progress, error) {
	key := p.ProgressKey()
	entry, err := p.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return popbal.Progress{}, fmt.Errorf("%w: %s", ErrReportNotFound, key)
		}

		return popbal.Progress{}, fmt.Errorf("failed to read progress %s: %w", key, err)
	}

	var prog popbal.Progress
	if err := json.Unmarshal(entry.Value(), &prog); err != nil {
		return popbal.Progress{}, fmt.Errorf("failed to unmarshal progress %s: %w", key, err)
	}

	return prog, nil
}
