package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/popbal/types"
)

func TestNewPrometheus_Defaults(t *testing.T) {
	p := NewPrometheus(nil, "")

	require.Equal(t, prometheus.DefaultRegisterer, p.reg)
	require.Equal(t, "popbal", p.namespace)
}

func TestPrometheusCollector_RegistersLazily(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)

	p.RecordNeighborhoodCount(3)

	families, err = reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordBalanceAttempt(true)
	p.RecordBalanceAttempt(false)
	p.RecordBalanceAttempt(false)
	p.RecordIterations(17)
	p.RecordRelativeError(0.01)
	p.RecordNeighborhoodDuration(0.2, types.OutcomeBestEffort)
	p.RecordNeighborhoodCount(5)
	p.RecordActiveWorkers(2)

	require.InDelta(t, 1.0, testutil.ToFloat64(p.attempts.WithLabelValues("true")), 1e-9)
	require.InDelta(t, 2.0, testutil.ToFloat64(p.attempts.WithLabelValues("false")), 1e-9)
	require.InDelta(t, 5.0, testutil.ToFloat64(p.neighborhoods), 1e-9)
	require.InDelta(t, 2.0, testutil.ToFloat64(p.activeWorkers), 1e-9)
	require.Equal(t, 1, testutil.CollectAndCount(p.iterations))
	require.Equal(t, 1, testutil.CollectAndCount(p.taskDuration))
}

func TestPrometheusCollector_ConcurrentUse(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				p.RecordBalanceAttempt(true)
			}
		}()
	}
	for range 8 {
		<-done
	}

	require.InDelta(t, 800.0, testutil.ToFloat64(p.attempts.WithLabelValues("true")), 1e-9)
}
