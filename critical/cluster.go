package critical

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Group is a set of rows whose best coordinates lie within the clustering
// tolerance of the representative, the member with the lowest value.
type Group struct {
	Representative Record
	Members        []int
	Multiplicity   int
}

// Cluster merges rows closer than tol (max norm, domain coordinates). The
// table itself is left untouched.
func Cluster(t Table, tol float64) (groups []Group) {
	var (
		order = make([]int, len(t))
		reps  [][]float64
	)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		_, va := t[order[a]].Best()
		_, vb := t[order[b]].Best()
		if math.IsNaN(vb) {
			return !math.IsNaN(va)
		}
		return va < vb
	})
	for _, i := range order {
		x, _ := t[i].Best()
		found := false
		for g := range groups {
			if floats.Distance(x, reps[g], math.Inf(1)) <= tol {
				groups[g].Members = append(groups[g].Members, i)
				groups[g].Multiplicity++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, Group{
				Representative: t[i].clone(),
				Members:        []int{i},
				Multiplicity:   1,
			})
			reps = append(reps, x)
		}
	}
	for g := range groups {
		sort.Ints(groups[g].Members)
	}
	return
}
