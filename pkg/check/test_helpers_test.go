package check

import (
	"github.com/limaJavier/fjsp/pkg/model"
	"github.com/samber/lo"
)

// newParams builds an instance without lags, setups or holding limits
func newParams(processing [][]int64, capacity []int64) *model.Params {
	operations, machines := len(processing), len(capacity)

	unbounded := func(rows, columns int) [][]model.Bound {
		return lo.Times(rows, func(_ int) []model.Bound { return make([]model.Bound, columns) })
	}

	params := &model.Params{
		P: lo.Map(processing, func(row []int64, _ int) []model.Bound {
			return lo.Map(row, func(value int64, _ int) model.Bound {
				if value < 0 {
					return model.Unbounded
				}
				return model.Finite(value)
			})
		}),
		W:        lo.Times(operations, func(_ int) []int64 { return make([]int64, machines) }),
		H:        unbounded(operations, machines),
		LMin:     unbounded(operations, operations),
		LMax:     unbounded(operations, operations),
		A:        lo.Times(operations, func(_ int) [][]model.Bound { return unbounded(operations, machines) }),
		Capacity: capacity,
		Delta:    make([]int64, machines),
	}
	return params
}

// schedule places each operation on a machine at a start time, completing it after its processing time
func schedule(params *model.Params, machines []int, starts []float64) *model.Solution {
	solution := &model.Solution{
		Status: model.Optimal,
		Y:      lo.Times(params.NumOperations(), func(_ int) []float64 { return make([]float64, params.NumMachines()) }),
		S:      append([]float64{}, starts...),
		C:      make([]float64, params.NumOperations()),
	}
	for i, m := range machines {
		solution.Y[i][m] = 1
		solution.C[i] = starts[i] + float64(params.P[i][m].Value)
	}
	solution.CMax = lo.Max(solution.C)
	return solution
}

// withSequencing adds var_x and var_z consistent with the start order on unit-capacity machines
func withSequencing(params *model.Params, solution *model.Solution) *model.Solution {
	cube := func() [][][]float64 {
		return lo.Times(params.NumOperations(), func(_ int) [][]float64 {
			return lo.Times(params.NumOperations(), func(_ int) []float64 { return make([]float64, params.NumMachines()) })
		})
	}
	solution.X, solution.Z = cube(), cube()

	for m := range params.NumMachines() {
		if params.Capacity[m] != 1 {
			continue
		}
		operations := lo.Filter(lo.Range(params.NumOperations()), func(i int, _ int) bool { return solution.Y[i][m] == 1 })
		operations = sortedByStart(solution, operations)
		for a, i := range operations {
			for b, j := range operations {
				if a < b {
					solution.Z[i][j][m] = 1
				}
				if b == a+1 {
					solution.X[i][j][m] = 1
				}
			}
		}
	}
	return solution
}

func sortedByStart(solution *model.Solution, operations []int) []int {
	sorted := append([]int{}, operations...)
	for a := 1; a < len(sorted); a++ {
		for b := a; b > 0 && solution.S[sorted[b]] < solution.S[sorted[b-1]]; b-- {
			sorted[b], sorted[b-1] = sorted[b-1], sorted[b]
		}
	}
	return sorted
}

// exampleParams is three operations on a single unit-capacity machine with processing times 2, 3 and 1
func exampleParams() *model.Params {
	return newParams([][]int64{{2}, {3}, {1}}, []int64{1})
}

// twoMachineParams has operations 0 and 2 restricted to machine 0 and operation 1 eligible on both
func twoMachineParams() *model.Params {
	return newParams([][]int64{{2, -1}, {3, 4}, {1, -1}}, []int64{1, 1})
}
