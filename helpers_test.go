package popbal

import (
	"context"
	"fmt"
	"sync"

	"github.com/arloliu/popbal/balance"
	"github.com/arloliu/popbal/geography"
	"github.com/arloliu/popbal/source"
	popbaltest "github.com/arloliu/popbal/testing"
)

type Attrs = popbaltest.Attrs

// scenario is two tracts over disjoint pairs of blocks:
// tract 1 covers blocks 10 and 11, tract 2 covers blocks 20 and 21.
type scenario struct {
	base    *source.Geography
	tracts  *source.Mapping
	targets *source.Targets[Attrs]
	pools   *source.Pools[Attrs]
	totals  *source.Totals
}

func newScenario() *scenario {
	blocks := []int{10, 11, 20, 21}
	pools := make(map[int]*balance.Group[Attrs], len(blocks))
	totals := make(map[int]int, len(blocks))
	for _, b := range blocks {
		pools[b] = popbaltest.NewBinaryPopulation(50, 15)
		totals[b] = 50
	}

	return &scenario{
		base:   source.NewGeography("block", blocks),
		tracts: source.NewMapping("tract", map[int][]int{1: {10, 11}, 2: {20, 21}}),
		targets: source.NewTargets(map[string]map[int]Attrs{
			"tract": {
				1: {"sex.a": 30, "sex.b": 70, "age.a": 10, "age.b": 10},
				2: {"sex.a": 60, "sex.b": 40, "age.a": 10, "age.b": 10},
			},
		}),
		pools:  source.NewPools(pools),
		totals: source.NewTotals(totals),
	}
}

func (s *scenario) inputs(classifiers ...balance.Classifier[Attrs]) Inputs[Attrs] {
	if len(classifiers) == 0 {
		classifiers = []balance.Classifier[Attrs]{popbaltest.BinaryClassifier("sex")}
	}

	return Inputs[Attrs]{
		Base:     s.base,
		Controls: []ControlSet[Attrs]{{Mapping: s.tracts, Classifiers: classifiers}},
		Targets:  s.targets,
		Elements: s.pools,
		Totals:   s.totals,
	}
}

// panickyPools panics for neighborhoods containing a given base element.
type panickyPools struct {
	inner   ElementSource[Attrs]
	element int
}

func (p panickyPools) Pools(ctx context.Context, nb geography.Neighborhood) (map[int]*balance.Group[Attrs], error) {
	if nb.Contains(p.element) {
		panic(fmt.Sprintf("pool for element %d is corrupt", p.element))
	}

	return p.inner.Pools(ctx, nb)
}

// captureLogger records messages by level.
type captureLogger struct {
	mu   sync.Mutex
	msgs map[string][]string
}

var _ Logger = (*captureLogger)(nil)

func newCaptureLogger() *captureLogger {
	return &captureLogger{msgs: make(map[string][]string)}
}

func (l *captureLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs[level] = append(l.msgs[level], msg)
}

func (l *captureLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.msgs[level]...)
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.record("error", msg) }
func (l *captureLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }

// recordingMetrics counts metric calls.
type recordingMetrics struct {
	mu            sync.Mutex
	attempts      int
	converged     int
	outcomes      map[string]int
	neighborhoods int
	maxActive     int
}

var _ MetricsCollector = (*recordingMetrics)(nil)

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: make(map[string]int)}
}

func (m *recordingMetrics) RecordBalanceAttempt(converged bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if converged {
		m.converged++
	}
}

func (m *recordingMetrics) RecordIterations(int)        {}
func (m *recordingMetrics) RecordRelativeError(float64) {}

func (m *recordingMetrics) RecordNeighborhoodDuration(_ float64, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *recordingMetrics) RecordNeighborhoodCount(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neighborhoods = count
}

func (m *recordingMetrics) RecordActiveWorkers(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxActive = max(m.maxActive, count)
}

func counts(g *balance.Group[Attrs]) []int {
	handles := g.Handles()
	out := make([]int, len(handles))
	for i, h := range handles {
		out[i] = h.Count()
	}

	return out
}

func values(g *balance.Group[Attrs]) []float64 {
	handles := g.Handles()
	out := make([]float64, len(handles))
	for i, h := range handles {
		out[i] = h.Value()
	}

	return out
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}

	return n
}

// panickyMetrics panics on every call.
type panickyMetrics struct{}

var _ MetricsCollector = panickyMetrics{}

func (panickyMetrics) RecordBalanceAttempt(bool)                  { panic("collector bug") }
func (panickyMetrics) RecordIterations(int)                       { panic("collector bug") }
func (panickyMetrics) RecordRelativeError(float64)                { panic("collector bug") }
func (panickyMetrics) RecordNeighborhoodDuration(float64, string) { panic("collector bug") }
func (panickyMetrics) RecordNeighborhoodCount(int)                { panic("collector bug") }
func (panickyMetrics) RecordActiveWorkers(int)                    { panic("collector bug") }

// parityClassifier splits elements by the parity of their id into "even" and
// "odd". Targets are taken from the keys "parity.even" and "parity.odd".
func parityClassifier() *balance.FuncClassifier[Attrs] {
	return balance.NewClassifier("parity", []string{"even", "odd"},
		func(e *balance.Element[Attrs]) map[string]float64 {
			if e.ID()%2 == 0 {
				return map[string]float64{"even": 1}
			}

			return map[string]float64{"odd": 1}
		},
		func(row Attrs) map[string]float64 {
			return map[string]float64{"even": row["parity.even"], "odd": row["parity.odd"]}
		},
	)
}
