package check

import (
	"fmt"
	"math"

	"github.com/limaJavier/fjsp/pkg/model"
)

// CheckCP verifies a solution of the CP formulation. Sequencing is checked as exact interval
// non-overlap, no time value may exceed horizon (0 computes model.Horizon) and, when the
// solution exposes time-indexed occupancy, capacity is checked per timestep
func CheckCP(params *model.Params, solution *model.Solution, horizon int64, opts ...Option) (*Report, error) {
	state, err := newCheckState(params, solution, opts)
	if err != nil {
		return nil, err
	}
	if horizon == 0 {
		horizon = model.Horizon(params)
	}
	state.horizon = float64(horizon)

	capacity := capacityViolations
	if solution.U != nil {
		capacity = occupancyViolations
	}

	report := &Report{
		Formulation: "CP",
		Violations: runFamilies(state, []func(state checkState) []Violation{
			assignmentViolations,
			completionViolations,
			lagViolations,
			cpSequencingViolations,
			holdingViolations,
			capacity,
			makespanViolations,
			horizonViolations,
		}),
	}
	return report, report.Err()
}

// Intervals on a unit-capacity machine do not overlap; consecutive ones are separated by delay and setup
func cpSequencingViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance

	for m, operations := range state.perMachine {
		if state.params.Capacity[m] != 1 {
			continue
		}
		delta := float64(state.params.Delta[m])

		for a, i := range operations {
			for b := a + 1; b < len(operations); b++ {
				j := operations[b]
				required := state.solution.C[i] + delta
				if b == a+1 {
					required += float64(state.params.Setup(i, j, m))
				}
				if shortfall := required - state.solution.S[j]; shortfall > tolerance {
					violations = append(violations, state.violation(Sequencing, m, shortfall, fmt.Sprintf("operation %d starts %.6g before %d is released", j, shortfall, i), i, j))
				}
			}
		}
	}
	return violations
}

// Time-indexed occupancy respects capacity and agrees with the assigned intervals
func occupancyViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance
	solution := state.solution

	steps := 0
	if len(solution.U) > 0 && len(solution.U[0]) > 0 {
		steps = len(solution.U[0][0])
	}

	for m := range state.params.NumMachines() {
		for t := range steps {
			instant := float64(t)
			occupying := make([]int, 0)
			for i := range state.params.NumOperations() {
				occupied := set(solution.U[i][m][t])
				if occupied {
					occupying = append(occupying, i)
				}

				expected := state.machines[i] == m && solution.S[i] <= instant+tolerance && instant < solution.C[i]-tolerance
				if occupied != expected {
					violations = append(violations, state.violation(Capacity, m, 1, fmt.Sprintf("var_u = %.6g at timestep %d disagrees with the schedule", solution.U[i][m][t], t), i))
				}
			}
			if int64(len(occupying)) > state.params.Capacity[m] {
				violations = append(violations, state.violation(Capacity, m, float64(int64(len(occupying))-state.params.Capacity[m]), fmt.Sprintf("%d operations at timestep %d, capacity %d", len(occupying), t, state.params.Capacity[m]), occupying...))
			}
		}
	}
	return violations
}

// No start, completion or makespan exceeds the horizon
func horizonViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	limit := state.horizon + state.options.tolerance

	for i := range state.params.NumOperations() {
		latest := math.Max(state.solution.S[i], state.solution.C[i])
		if latest > limit {
			violations = append(violations, state.violation(Horizon, state.machines[i], latest-state.horizon, fmt.Sprintf("time %.6g beyond horizon %.6g", latest, state.horizon), i))
		}
	}
	if state.solution.CMax > limit {
		violations = append(violations, state.violation(Horizon, -1, state.solution.CMax-state.horizon, fmt.Sprintf("makespan %.6g beyond horizon %.6g", state.solution.CMax, state.horizon)))
	}
	return violations
}
