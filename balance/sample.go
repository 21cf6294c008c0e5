package balance

import "math/rand/v2"

// BuildRepresentativeSample draws up to targetSize distinct elements from source
// so that every category of every classifier is represented when possible.
//
// Elements are bucketed per (dimension, category) by positive participation.
// A bucket is filled from the elements passing every filter; when none of
// those participate in the category, it falls back to the elements failing
// the filters. The draw then proceeds in rounds: each round visits every
// non-empty bucket of every dimension, removes one random element from that
// bucket only, and adds it to the result if not already present. An element
// drawn for one bucket stays in its other buckets and may be drawn again for
// them. Drawing stops once the result holds targetSize elements or every
// bucket is empty.
//
// If source holds fewer qualifying distinct elements than targetSize, the
// result is simply smaller. Elements that participate in no category are
// never drawn.
//
// Parameters:
//   - source: Candidate pool (not modified)
//   - classifiers: Dimensions whose categories must be covered
//   - filters: Preferences; an element passes when every filter accepts it
//   - targetSize: Maximum number of elements to return
//   - rng: Random source owned by the caller's goroutine
//
// Returns:
//   - *Group[R]: Sample in draw order; elements are shared with source, not copied
func BuildRepresentativeSample[R any](
	source *Group[R],
	classifiers []Classifier[R],
	filters []Filter[R],
	targetSize int,
	rng *rand.Rand,
) *Group[R] {
	if source == nil || targetSize <= 0 {
		return NewGroup[R]()
	}

	candidates := source.distinct()
	passing := make([]bool, len(candidates))
	for i, e := range candidates {
		passing[i] = passesAll(e, filters)
	}

	buckets := make([][]int, 0)
	for _, c := range classifiers {
		categories := c.Categories()
		preferred := make([][]int, len(categories))
		fallback := make([][]int, len(categories))
		index := make(map[string]int, len(categories))
		for i, cat := range categories {
			index[cat] = i
		}

		for i, e := range candidates {
			for cat, p := range c.Participation(e) {
				ci, ok := index[cat]
				if !ok || p <= 0 {
					continue
				}
				if passing[i] {
					preferred[ci] = append(preferred[ci], i)
				} else {
					fallback[ci] = append(fallback[ci], i)
				}
			}
		}

		for ci := range categories {
			if len(preferred[ci]) > 0 {
				buckets = append(buckets, preferred[ci])
			} else {
				buckets = append(buckets, fallback[ci])
			}
		}
	}

	chosen := make(map[int]struct{}, targetSize)
	order := make([]*Element[R], 0, targetSize)

	for len(order) < targetSize {
		drew := false
		for b := range buckets {
			if len(order) >= targetSize {
				break
			}
			bucket := buckets[b]
			if len(bucket) == 0 {
				continue
			}

			k := rng.IntN(len(bucket))
			idx := bucket[k]
			bucket[k] = bucket[len(bucket)-1]
			buckets[b] = bucket[:len(bucket)-1]
			drew = true

			if _, ok := chosen[idx]; ok {
				continue
			}
			chosen[idx] = struct{}{}
			order = append(order, candidates[idx])
		}

		if !drew {
			break
		}
	}

	return &Group[R]{elements: order}
}

func passesAll[R any](e *Element[R], filters []Filter[R]) bool {
	for _, f := range filters {
		if f != nil && !f(e) {
			return false
		}
	}

	return true
}
