package model

import "github.com/samber/lo"

// BigM computes a constant that dominates every start/completion difference of a
// non-idling schedule. Each operation contributes its longest processing time, its
// longest holding time, the widest finite lag it imposes, its longest outgoing
// setup and the longest machine delay; one unit is added on top so that strict
// separations still fit
func BigM(params *Params) int64 {
	maxDelta := lo.Max(params.Delta)

	var bigM int64 = 1
	for i := range params.NumOperations() {
		processing := maxFinite(params.P[i])
		holding := maxFinite(params.H[i])

		lag := int64(0)
		for j := range params.NumOperations() {
			lag = max(lag, params.LMax[i][j].Or(0), -params.LMin[i][j].Or(0), params.LMin[i][j].Or(0))
		}

		setup := int64(0)
		for j := range params.NumOperations() {
			setup = max(setup, maxFinite(params.A[i][j]))
		}

		bigM += processing + holding + lag + setup + maxDelta
	}
	return bigM
}

// Horizon is the CP time horizon: every finite processing time, holding time and
// maximum lag summed, plus each operation's longest outgoing setup and the longest
// machine delay, plus one
func Horizon(params *Params) int64 {
	sum := func(matrix [][]Bound) int64 {
		return lo.SumBy(matrix, func(row []Bound) int64 {
			return lo.SumBy(row, func(bound Bound) int64 { return max(bound.Or(0), 0) })
		})
	}
	setups := lo.SumBy(params.A, func(matrix [][]Bound) int64 {
		return lo.Max(lo.Map(matrix, func(row []Bound, _ int) int64 { return maxFinite(row) }))
	})
	delays := int64(params.NumOperations()) * lo.Max(params.Delta)
	return sum(params.P) + sum(params.H) + sum(params.LMax) + setups + delays + 1
}

func maxFinite(row []Bound) int64 {
	return lo.Max(lo.Map(row, func(bound Bound, _ int) int64 { return max(bound.Or(0), 0) }))
}
