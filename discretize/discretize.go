package discretize

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/arloliu/popbal/balance"
	"github.com/arloliu/popbal/types"
)

// Discretizer assigns integer counts to weight handles.
//
// Implementations must leave the sum of the handles' counts equal to target
// and must only use the supplied rng for randomness.
type Discretizer interface {
	// Discretize sets the count of every handle.
	//
	// Parameters:
	//   - handles: Distinct weight handles of one base element
	//   - target: Integer total the counts must sum to
	//   - rng: Random source owned by the caller's goroutine
	//
	// Returns:
	//   - error: ErrNegativeTotal or ErrNoHandles when target cannot be realized
	Discretize(handles []*balance.Weight, target int, rng *rand.Rand) error
}

// Stochastic is an unbiased probabilistic integerizer.
//
// Each handle's expected count is its share of the total weight times target.
// Every handle first receives the floor of its expected count; the remaining
// units go to distinct handles drawn with probability proportional to their
// fractional parts. The expected count of every handle is therefore preserved
// and the counts sum to target exactly.
//
// When every weight is zero the expected counts are uniform.
type Stochastic struct{}

var _ Discretizer = (*Stochastic)(nil)

// NewStochastic creates a stochastic discretizer.
func NewStochastic() *Stochastic {
	return &Stochastic{}
}

// Discretize implements Discretizer.
func (s *Stochastic) Discretize(handles []*balance.Weight, target int, rng *rand.Rand) error {
	if target < 0 {
		return fmt.Errorf("discretize target %d: %w", target, types.ErrNegativeTotal)
	}
	if len(handles) == 0 {
		if target == 0 {
			return nil
		}

		return fmt.Errorf("discretize target %d: %w", target, types.ErrNoHandles)
	}

	expected := expectedCounts(handles, target)

	counts := make([]int, len(handles))
	fractions := make([]float64, len(handles))
	assigned := 0
	for i, x := range expected {
		f := math.Floor(x)
		counts[i] = int(f)
		fractions[i] = x - f
		assigned += counts[i]
	}

	remainder := target - assigned
	// Rounding error can push the floors past target; take the excess back
	// from the handles with the smallest fractional parts.
	for remainder < 0 {
		i := smallestPositive(counts, fractions)
		counts[i]--
		fractions[i] = 1
		remainder++
	}

	for range remainder {
		i := drawProportional(fractions, rng)
		counts[i]++
		fractions[i] = -1
	}

	for i, h := range handles {
		h.SetCount(counts[i])
	}

	return nil
}

func expectedCounts(handles []*balance.Weight, target int) []float64 {
	total := 0.0
	for _, h := range handles {
		if v := h.Value(); v > 0 {
			total += v
		}
	}

	out := make([]float64, len(handles))
	for i, h := range handles {
		switch {
		case total <= 0:
			out[i] = float64(target) / float64(len(handles))
		case h.Value() > 0:
			out[i] = h.Value() / total * float64(target)
		}
	}

	return out
}

// drawProportional picks an index with probability proportional to its
// non-negative weight. Negative weights mark indices already taken. When all
// remaining weights are zero, an untaken index is chosen uniformly; when every
// index is taken, any index is chosen uniformly.
func drawProportional(weights []float64, rng *rand.Rand) int {
	sum := 0.0
	open := 0
	for _, w := range weights {
		if w >= 0 {
			sum += w
			open++
		}
	}

	if sum > 0 {
		r := rng.Float64() * sum
		last := -1
		for i, w := range weights {
			if w <= 0 {
				continue
			}
			last = i
			if r < w {
				return i
			}
			r -= w
		}

		return last
	}

	if open == 0 {
		return rng.IntN(len(weights))
	}

	k := rng.IntN(open)
	for i, w := range weights {
		if w < 0 {
			continue
		}
		if k == 0 {
			return i
		}
		k--
	}

	return 0
}

func smallestPositive(counts []int, fractions []float64) int {
	best := -1
	for i, c := range counts {
		if c <= 0 {
			continue
		}
		if best < 0 || fractions[i] < fractions[best] {
			best = i
		}
	}

	return best
}
