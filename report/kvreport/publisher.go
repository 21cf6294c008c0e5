package kvreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/popbal"
	"github.com/arloliu/popbal/internal/kvutil"
	"github.com/arloliu/popbal/internal/logging"
	"github.com/arloliu/popbal/types"
)

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the publisher's logger.
func WithLogger(logger types.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Publisher writes neighborhood reports to a JetStream KV bucket.
//
// Publisher is safe for concurrent use; the orchestrator calls its hook from
// several neighborhood tasks at once.
type Publisher struct {
	kv        jetstream.KeyValue
	prefix    string
	keyPrefix string // cached "prefix."
	logger    types.Logger
}

// NewPublisher creates or opens the report bucket and returns a publisher for it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - cfg: Bucket configuration (zero fields take defaults)
//   - opts: Optional configuration (WithLogger)
//
// Returns:
//   - *Publisher: Publisher bound to the bucket
//   - error: Invalid configuration or bucket creation failure
func NewPublisher(ctx context.Context, js jetstream.JetStream, cfg Config, opts ...Option) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kv, err := kvutil.EnsureBucket(ctx, js, cfg.keyValueConfig(), cfg.CreateRetries)
	if err != nil {
		return nil, fmt.Errorf("report bucket %s: %w", cfg.Bucket, err)
	}

	return New(kv, cfg.Prefix, opts...), nil
}

// New creates a publisher over an existing bucket.
//
// Parameters:
//   - kv: JetStream KV bucket for report storage
//   - prefix: Key prefix for report keys (e.g., "neighborhood")
//   - opts: Optional configuration (WithLogger)
//
// Returns:
//   - *Publisher: New publisher instance
func New(kv jetstream.KeyValue, prefix string, opts ...Option) *Publisher {
	p := &Publisher{
		kv:        kv,
		prefix:    prefix,
		keyPrefix: prefix + ".",
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Key returns the KV key of a neighborhood's report.
func (p *Publisher) Key(neighborhood int) string {
	return p.keyPrefix + strconv.Itoa(neighborhood)
}

// Publish stores a report under its neighborhood key, replacing any previous revision.
//
// Returns:
//   - error: ErrStoreUnavailable (wrapped) on connectivity failures, other KV errors otherwise
func (p *Publisher) Publish(ctx context.Context, rep popbal.NeighborhoodReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report for neighborhood %d: %w", rep.Neighborhood, err)
	}

	key := p.Key(rep.Neighborhood)
	if _, err := p.kv.Put(ctx, key, data); err != nil {
		if isUnavailable(err) {
			p.logger.Warn("report store unreachable", "key", key, "error", err)
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		return fmt.Errorf("failed to publish report %s: %w", key, err)
	}

	p.logger.Debug("report published", "key", key, "converged", rep.Converged)

	return nil
}

// Get reads the latest report of a neighborhood.
//
// Returns:
//   - popbal.NeighborhoodReport: Stored report
//   - error: ErrReportNotFound if no report is stored for the neighborhood
func (p *Publisher) Get(ctx context.Context, neighborhood int) (popbal.NeighborhoodReport, error) {
	key := p.Key(neighborhood)
	entry, err := p.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return popbal.NeighborhoodReport{}, fmt.Errorf("%w: %s", ErrReportNotFound, key)
		}

		return popbal.NeighborhoodReport{}, fmt.Errorf("failed to read report %s: %w", key, err)
	}

	return decode(entry)
}

// List reads every stored report, ordered by neighborhood id.
//
// Entries that cannot be read or decoded are skipped and logged.
func (p *Publisher) List(ctx context.Context) ([]popbal.NeighborhoodReport, error) {
	keys, err := p.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list report keys: %w", err)
	}

	ids := make([]int, 0, len(keys))
	for _, key := range keys {
		id, ok := p.parseKey(key)
		if !ok {
			p.logger.Debug("skipping non-report key", "key", key, "prefix", p.prefix)
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	reports := make([]popbal.NeighborhoodReport, 0, len(ids))
	for _, id := range ids {
		rep, err := p.Get(ctx, id)
		if err != nil {
			p.logger.Debug("failed to read report", "neighborhood", id, "error", err)
			continue
		}
		reports = append(reports, rep)
	}

	return reports, nil
}

// Watch streams stored and subsequently published reports until ctx is done.
//
// The returned channel is closed when ctx is cancelled.
func (p *Publisher) Watch(ctx context.Context) (<-chan popbal.NeighborhoodReport, error) {
	watcher, err := p.kv.Watch(ctx, p.keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to watch reports: %w", err)
	}

	out := make(chan popbal.NeighborhoodReport)
	go func() {
		defer close(out)
		defer func() { _ = watcher.Stop() }()

		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-watcher.Updates():
				if !ok {
					return
				}
				// nil marks the end of the initial values
				if entry == nil || entry.Operation() != jetstream.KeyValuePut {
					continue
				}
				rep, err := decode(entry)
				if err != nil {
					p.logger.Warn("skipping malformed report", "key", entry.Key(), "error", err)
					continue
				}
				select {
				case out <- rep:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (p *Publisher) parseKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, p.keyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)

	return id, err == nil
}

func decode(entry jetstream.KeyValueEntry) (popbal.NeighborhoodReport, error) {
	var rep popbal.NeighborhoodReport
	if err := json.Unmarshal(entry.Value(), &rep); err != nil {
		return popbal.NeighborhoodReport{}, fmt.Errorf("failed to unmarshal report %s: %w", entry.Key(), err)
	}

	return rep, nil
}

// Hook adapts a publisher to the OnNeighborhoodBalanced callback.
//
// Example:
//
//	inputs.Hooks = &popbal.Hooks[Row]{OnNeighborhoodBalanced: kvreport.Hook[Row](pub)}
func Hook[R any](p *Publisher) func(context.Context, *popbal.NeighborhoodResult[R]) error {
	return func(ctx context.Context, r *popbal.NeighborhoodResult[R]) error {
		return p.Publish(ctx, popbal.NewNeighborhoodReport(r))
	}
}
