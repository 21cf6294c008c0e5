package balance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/popbal/types"
)

func TestComputeConvergenceMeasure(t *testing.T) {
	require.InDelta(t, 0.1, ComputeConvergenceMeasure(100, 110), 1e-12)
	require.InDelta(t, 0.1, ComputeConvergenceMeasure(100, 90), 1e-12)
	require.Equal(t, 0.0, ComputeConvergenceMeasure(0, 0))
	require.InDelta(t, 0.5/ZeroTargetEpsilon, ComputeConvergenceMeasure(0, 0.5), 1)
}

func TestNewConvergenceInfo(t *testing.T) {
	targets := map[string]map[string]float64{
		"sex": {"m": 40, "f": 60},
		"age": {"young": 0, "old": 100},
	}

	t.Run("registers sorted dimensions and categories", func(t *testing.T) {
		info, err := NewConvergenceInfo("tract-1", targets, criteria(0.01, 10, "sex", "age"))
		require.NoError(t, err)

		require.Equal(t, "tract-1", info.Association())
		require.Equal(t, []string{"age", "sex"}, info.Dimensions())
		require.Equal(t, []string{"f", "m"}, info.Categories("sex"))
		require.Nil(t, info.Categories("income"))

		s, ok := info.Current("sex", "m")
		require.True(t, ok)
		require.Equal(t, Snapshot{Target: 40, Value: 0, Measure: 1}, s)

		c, ok := info.Criteria("age")
		require.True(t, ok)
		require.Equal(t, Criteria{Criterion: 0.01, MaxIterations: 10}, c)
	})

	t.Run("rejects dimension mismatch", func(t *testing.T) {
		_, err := NewConvergenceInfo("x", targets, criteria(0.01, 10, "sex"))
		require.ErrorIs(t, err, types.ErrDimensionMismatch)

		_, err = NewConvergenceInfo("x", targets, criteria(0.01, 10, "sex", "income"))
		require.ErrorIs(t, err, types.ErrDimensionMismatch)
	})
}

func TestConvergenceInfo_Updates(t *testing.T) {
	targets := map[string]map[string]float64{
		"sex": {"m": 40, "f": 60},
		"age": {"young": 0, "old": 100},
	}
	info, err := NewConvergenceInfo("tract-1", targets, criteria(0.01, 3, "sex", "age"))
	require.NoError(t, err)

	t.Run("not converged before any update", func(t *testing.T) {
		require.False(t, info.IsConverged())
		require.False(t, info.IsDimensionConverged("age"))
		require.False(t, info.MeetsStoppingCriteria())
	})

	t.Run("measure follows value over target", func(t *testing.T) {
		info.UpdateDimension("sex", map[string]float64{"m": 44, "f": 57, "other": 5})
		s, _ := info.Current("sex", "m")
		require.InDelta(t, math.Abs(44.0/40-1), s.Measure, 1e-12)
		s, _ = info.Current("sex", "f")
		require.InDelta(t, math.Abs(57.0/60-1), s.Measure, 1e-12)
		_, ok := info.Current("sex", "other")
		require.False(t, ok)
		require.Equal(t, 1, info.Iterations("sex"))
		require.False(t, info.IsDimensionConverged("sex"))
	})

	t.Run("zero target zero value converges regardless of criterion", func(t *testing.T) {
		strict, err := NewConvergenceInfo("t", map[string]map[string]float64{"age": {"young": 0}}, criteria(0, 5, "age"))
		require.NoError(t, err)
		strict.UpdateDimension("age", map[string]float64{"young": 0})
		require.True(t, strict.IsConverged())
	})

	t.Run("previous keeps the prior snapshot", func(t *testing.T) {
		info.UpdateDimension("sex", map[string]float64{"m": 40, "f": 60})
		prev, _ := info.Previous("sex", "m")
		cur, _ := info.Current("sex", "m")
		require.Equal(t, 44.0, prev.Value)
		require.Equal(t, 40.0, cur.Value)
		require.True(t, info.IsDimensionConverged("sex"))
		require.Equal(t, 2, info.Iterations("sex"))
	})

	t.Run("record does not count", func(t *testing.T) {
		info.RecordDimension("sex", map[string]float64{"m": 40, "f": 60})
		require.Equal(t, 2, info.Iterations("sex"))
	})

	t.Run("missing categories record zero", func(t *testing.T) {
		info.UpdateDimension("age", map[string]float64{"old": 100})
		s, _ := info.Current("age", "young")
		require.Equal(t, 0.0, s.Value)
		require.True(t, info.IsDimensionConverged("age"))
		require.True(t, info.IsConverged())
	})

	t.Run("stopping criteria by iteration budget", func(t *testing.T) {
		info.UpdateDimension("age", map[string]float64{"old": 50, "young": 1})
		require.False(t, info.IsDimensionConverged("age"))
		require.False(t, info.MeetsDimensionStoppingCriteria("age"))

		info.UpdateDimension("age", map[string]float64{"old": 50, "young": 1})
		require.Equal(t, 3, info.Iterations("age"))
		require.True(t, info.MeetsDimensionStoppingCriteria("age"))
		require.True(t, info.MeetsStoppingCriteria())
		require.False(t, info.IsConverged())
		require.Equal(t, 3, info.MaxIterations())
	})

	t.Run("unknown dimensions are ignored", func(t *testing.T) {
		info.UpdateDimension("income", map[string]float64{"low": 1})
		require.Equal(t, 0, info.Iterations("income"))
		require.False(t, info.MeetsDimensionStoppingCriteria("income"))
	})
}

func TestConvergenceInfo_WeightedRelativeError(t *testing.T) {
	info, err := NewConvergenceInfo("t", map[string]map[string]float64{
		"sex": {"m": 40, "f": 60},
		"age": {"old": 50},
	}, criteria(0.01, 5, "sex", "age"))
	require.NoError(t, err)

	info.UpdateDimension("sex", map[string]float64{"m": 50, "f": 60})
	info.UpdateDimension("age", map[string]float64{"old": 25})

	// sex: |0.25 × 50| / 100 = 0.125; age: |0.5 × 25| / 50 = 0.25
	require.InDelta(t, 0.375, info.WeightedRelativeError(), 1e-12)

	zero, err := NewConvergenceInfo("z", map[string]map[string]float64{"age": {"young": 0}}, criteria(0.01, 5, "age"))
	require.NoError(t, err)
	zero.UpdateDimension("age", map[string]float64{"young": 0})
	require.Equal(t, 0.0, zero.WeightedRelativeError())
}

func TestMergeConvergenceInfo(t *testing.T) {
	a, err := NewConvergenceInfo("tract-1", map[string]map[string]float64{"sex": {"m": 10}}, criteria(0.01, 5, "sex"))
	require.NoError(t, err)
	b, err := NewConvergenceInfo("tract-2", map[string]map[string]float64{"sex": {"m": 20}}, criteria(0.01, 5, "sex"))
	require.NoError(t, err)

	merged := MergeConvergenceInfo("neighborhood-0", a, b)
	require.Equal(t, "neighborhood-0", merged.Association())
	require.Equal(t, []string{"tract-1/sex", "tract-2/sex"}, merged.Dimensions())

	a.UpdateDimension("sex", map[string]float64{"m": 10})
	require.True(t, a.IsConverged())
	require.False(t, merged.IsConverged(), "converged iff every child is")

	b.UpdateDimension("sex", map[string]float64{"m": 20})
	require.True(t, merged.IsConverged())
	s, _ := merged.Current("tract-2/sex", "m")
	require.Equal(t, 20.0, s.Value, "merged view is live")
	require.Equal(t, 1, merged.Iterations("tract-1/sex"))

	t.Run("keys keep the bare dimension name", func(t *testing.T) {
		require.Equal(t, "sex", merged.DimensionName("tract-1/sex"))
		require.Equal(t, "sex", a.DimensionName("sex"))
		require.Empty(t, merged.DimensionName("sex"))

		slashed, err := NewConvergenceInfo("tract-3", map[string]map[string]float64{"age/sex": {"m": 1}}, criteria(0.01, 5, "age/sex"))
		require.NoError(t, err)
		nested := MergeConvergenceInfo("neighborhood-1", slashed)
		require.Equal(t, []string{"tract-3/age/sex"}, nested.Dimensions())
		require.Equal(t, "age/sex", nested.DimensionName("tract-3/age/sex"))
	})
}
