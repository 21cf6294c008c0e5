package testing

import (
	"github.com/arloliu/popbal/balance"
)

// Attrs is the attribute row type used by the fixtures.
type Attrs = map[string]float64

// NewBinaryPopulation builds n elements of weight 1 whose "person" row carries
// an "a" flag: the first countA elements have a=1, the rest a=0.
//
// Parameters:
//   - n: Number of elements
//   - countA: Number of elements in category "a"
//
// Returns:
//   - *balance.Group[Attrs]: Group of freshly weighted elements
func NewBinaryPopulation(n, countA int) *balance.Group[Attrs] {
	elements := make([]*balance.Element[Attrs], 0, n)
	for i := range n {
		flag := 0.0
		if i < countA {
			flag = 1
		}
		elements = append(elements, balance.NewElement(i, 1, map[string]Attrs{
			"person": {"a": flag},
		}))
	}

	return balance.NewGroup(elements...)
}

// BinaryClassifier returns a two-category classifier ("a", "b") reading the
// "a" flag of an element's "person" row. Targets are taken from the keys
// "<name>.a" and "<name>.b" of the target row.
func BinaryClassifier(name string) *balance.FuncClassifier[Attrs] {
	return balance.NewClassifier(name, []string{"a", "b"},
		func(e *balance.Element[Attrs]) map[string]float64 {
			if e.Data()["person"]["a"] == 1 {
				return map[string]float64{"a": 1}
			}

			return map[string]float64{"b": 1}
		},
		func(row Attrs) map[string]float64 {
			return map[string]float64{"a": row[name+".a"], "b": row[name+".b"]}
		},
	)
}
