package balance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompositeBalancer(t *testing.T) {
	sex := []Classifier[attrs]{flagClassifier("sex", "x")}

	t.Run("converges when every child converges", func(t *testing.T) {
		left, err := NewBalancer("tract-1", population(100, 40), sex, attrs{"sex.a": 30, "sex.b": 70},
			criteria(0.0001, 100, "sex"))
		require.NoError(t, err)
		right, err := NewBalancer("tract-2", population(100, 60), sex, attrs{"sex.a": 55, "sex.b": 45},
			criteria(0.0001, 100, "sex"))
		require.NoError(t, err)

		c := NewCompositeBalancer("neighborhood-0", left, right)
		require.Equal(t, []string{"tract-1/sex", "tract-2/sex"}, c.ConvergenceInfo().Dimensions())
		require.Len(t, c.Children(), 2)
		require.False(t, c.ConvergenceInfo().IsConverged())

		c.Balance()

		require.True(t, left.ConvergenceInfo().IsConverged())
		require.True(t, right.ConvergenceInfo().IsConverged())
		require.True(t, c.ConvergenceInfo().IsConverged())
	})

	t.Run("stopped children are not swept again", func(t *testing.T) {
		done, err := NewBalancer("tract-1", population(10, 5), sex, attrs{"sex.a": 5, "sex.b": 5},
			criteria(0.01, 50, "sex"))
		require.NoError(t, err)
		stuck, err := NewBalancer("tract-2", population(10, 0), sex, attrs{"sex.a": 5, "sex.b": 5},
			criteria(0.01, 4, "sex"))
		require.NoError(t, err)

		c := NewCompositeBalancer("neighborhood-0", done, stuck)
		c.Balance()

		require.Equal(t, 1, done.ConvergenceInfo().Iterations("sex"))
		require.Equal(t, 4, stuck.ConvergenceInfo().Iterations("sex"))
		require.True(t, c.ConvergenceInfo().MeetsStoppingCriteria())
		require.False(t, c.ConvergenceInfo().IsConverged())
	})

	t.Run("overlapping children sharing elements", func(t *testing.T) {
		// left holds 80 a and 40 b, right 20 a and 120 b; the 60 shared
		// elements are 20 a and 40 b. Scaling every weight by 1.5 meets both.
		pool := population(200, 80)
		elements := pool.Elements()
		left := NewGroup(elements[:120]...)
		right := NewGroup(elements[60:]...)

		lb, err := NewBalancer("tract-1", left, sex, attrs{"sex.a": 120, "sex.b": 60},
			criteria(0.001, 500, "sex"))
		require.NoError(t, err)
		rb, err := NewBalancer("tract-2", right, sex, attrs{"sex.a": 30, "sex.b": 180},
			criteria(0.001, 500, "sex"))
		require.NoError(t, err)

		c := NewCompositeBalancer("neighborhood-0", lb, rb)
		c.Balance()

		info := c.ConvergenceInfo()
		require.True(t, info.IsConverged())
		for _, dim := range info.Dimensions() {
			require.LessOrEqual(t, info.Iterations(dim), 500)
		}

		weighted := func(g *Group[attrs]) (a, b float64) {
			for _, e := range g.Elements() {
				if e.Data()["person"]["x"] == 1 {
					a += e.Weight()
				} else {
					b += e.Weight()
				}
			}

			return a, b
		}
		la, lbSum := weighted(left)
		require.InDelta(t, 120, la, 120*0.001)
		require.InDelta(t, 60, lbSum, 60*0.001)
		ra, rbSum := weighted(right)
		require.InDelta(t, 30, ra, 30*0.001)
		require.InDelta(t, 180, rbSum, 180*0.001)
	})

	t.Run("update controls refreshes without counting", func(t *testing.T) {
		b, err := NewBalancer("tract-1", population(10, 5), sex, attrs{"sex.a": 5, "sex.b": 5},
			criteria(0.01, 10, "sex"))
		require.NoError(t, err)
		c := NewCompositeBalancer("n", b)

		c.UpdateWeights()
		c.UpdateControlsAndTargets()
		require.Equal(t, 1, c.ConvergenceInfo().Iterations("tract-1/sex"))
	})
}
