package balance

type attrs = map[string]float64

// flagClassifier classifies elements by the "person" row's flag value:
// flag 1 is category "a", anything else "b". Targets come from row keys
// "<name>.a" and "<name>.b".
func flagClassifier(name, flag string) *FuncClassifier[attrs] {
	return NewClassifier(name, []string{"a", "b"},
		func(e *Element[attrs]) map[string]float64 {
			if e.Data()["person"][flag] == 1 {
				return map[string]float64{"a": 1}
			}

			return map[string]float64{"b": 1}
		},
		func(row attrs) map[string]float64 {
			return map[string]float64{"a": row[name+".a"], "b": row[name+".b"]}
		},
	)
}

// population builds n elements of weight 1; the first countA have flag x=1.
func population(n, countA int) *Group[attrs] {
	out := make([]*Element[attrs], 0, n)
	for i := range n {
		x := 0.0
		if i < countA {
			x = 1
		}
		out = append(out, NewElement(i, 1, map[string]attrs{"person": {"x": x, "y": float64(i % 2)}}))
	}

	return NewGroup(out...)
}

func criteria(criterion float64, maxIterations int, names ...string) map[string]Criteria {
	out := make(map[string]Criteria, len(names))
	for _, n := range names {
		out[n] = Criteria{Criterion: criterion, MaxIterations: maxIterations}
	}

	return out
}
