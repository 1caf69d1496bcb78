package check

import (
	"fmt"

	"github.com/limaJavier/fjsp/pkg/model"
)

// CheckMILP verifies a solution of the MILP formulation, including every big-M linearized
// disjunction with the given bigM. Shape mismatches return a *model.DataError; otherwise the
// report lists every violation found and the error, if any, is the report's Err()
func CheckMILP(params *model.Params, solution *model.Solution, bigM int64, opts ...Option) (*Report, error) {
	state, err := newCheckState(params, solution, opts)
	if err != nil {
		return nil, err
	}
	state.bigM = float64(bigM)

	report := &Report{
		Formulation: "MILP",
		Violations: runFamilies(state, []func(state checkState) []Violation{
			assignmentViolations,
			completionViolations,
			lagViolations,
			milpSequencingViolations,
			holdingViolations,
			capacityViolations,
			makespanViolations,
		}),
	}
	return report, report.Err()
}

// positions returns the index of every operation within its machine's start-time order
func (state checkState) positions() []int {
	positions := make([]int, state.params.NumOperations())
	for _, operations := range state.perMachine {
		for position, i := range operations {
			positions[i] = position
		}
	}
	return positions
}

// milpSequencingViolations evaluates, for each ordered pair on a unit-capacity machine,
//
//	s_j >= c_i + delta_m                - M (1 - z_ijm)
//	s_j >= c_i + delta_m + setup_ijm    - M (1 - x_ijm)
//
// A failure with the binary set is an overlap; a failure with the binary unset means
// the big-M is too small for this schedule
func milpSequencingViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance
	solution := state.solution
	positions := state.positions()

	precedes := func(i, j, m int) bool {
		if solution.Z != nil {
			return set(solution.Z[i][j][m])
		}
		return positions[i] < positions[j]
	}
	immediate := func(i, j, m int) bool {
		if solution.X != nil {
			return set(solution.X[i][j][m])
		}
		return positions[j] == positions[i]+1
	}

	for m, operations := range state.perMachine {
		if state.params.Capacity[m] != 1 {
			continue
		}
		delta := float64(state.params.Delta[m])

		for a, i := range operations {
			for _, j := range operations[a+1:] {
				if solution.Z != nil && set(solution.Z[i][j][m]) == set(solution.Z[j][i][m]) {
					violations = append(violations, state.violation(Sequencing, m, 1, fmt.Sprintf("var_z = (%.6g, %.6g) does not order the pair", solution.Z[i][j][m], solution.Z[j][i][m]), i, j))
				}
			}

			for _, j := range operations {
				if i == j {
					continue
				}
				z, x := precedes(i, j, m), immediate(i, j, m)
				required := solution.C[i] + delta
				requiredWithSetup := required + float64(state.params.Setup(i, j, m))

				active, inactive := 0.0, 0.0
				if z {
					active = max(active, required-solution.S[j])
				} else {
					inactive = max(inactive, required-state.bigM-solution.S[j])
				}
				if x {
					active = max(active, requiredWithSetup-solution.S[j])
				} else {
					inactive = max(inactive, requiredWithSetup-state.bigM-solution.S[j])
				}

				if active > tolerance {
					violations = append(violations, state.violation(Sequencing, m, active, fmt.Sprintf("operation %d starts %.6g before %d is released", j, active, i), i, j))
				}
				if inactive > tolerance {
					violations = append(violations, state.violation(Sequencing, m, inactive, fmt.Sprintf("big-M %.6g is insufficient by %.6g", state.bigM, inactive), i, j))
				}
			}
		}
	}

	if solution.X != nil {
		violations = append(violations, immediateSuccessionViolations(state, positions)...)
	}
	return violations
}

// immediateSuccessionViolations checks var_x against the machine sequences implied by the schedule
func immediateSuccessionViolations(state checkState, positions []int) []Violation {
	violations := make([]Violation, 0)
	solution := state.solution

	for i := range state.params.NumOperations() {
		for j := range state.params.NumOperations() {
			for m := range state.params.NumMachines() {
				if !set(solution.X[i][j][m]) {
					continue
				}

				if i == j || state.machines[i] != m || state.machines[j] != m {
					violations = append(violations, state.violation(Sequencing, m, 1, "immediate succession between operations not sharing the machine", i, j))
					continue
				}
				if i < j && set(solution.X[j][i][m]) {
					violations = append(violations, state.violation(Sequencing, m, 1, "both var_x directions are set", i, j))
				}
				if solution.Z != nil && !set(solution.Z[i][j][m]) {
					violations = append(violations, state.violation(Sequencing, m, 1, "var_x is set without var_z", i, j))
				}
				if state.options.strictSetups && !state.params.A[i][j][m].Finite {
					violations = append(violations, state.violation(Sequencing, m, 1, "no setup is defined for this succession", i, j))
				}
				if state.params.Capacity[m] == 1 && positions[j] != positions[i]+1 {
					violations = append(violations, state.violation(Sequencing, m, 1, "var_x is set for operations that are not consecutive", i, j))
				}
			}
		}
	}

	// Every consecutive pair on a unit-capacity machine must be marked as an immediate succession
	for m, operations := range state.perMachine {
		if state.params.Capacity[m] != 1 {
			continue
		}
		for a := 1; a < len(operations); a++ {
			i, j := operations[a-1], operations[a]
			if !set(solution.X[i][j][m]) {
				violations = append(violations, state.violation(Sequencing, m, 1, "consecutive operations without var_x", i, j))
			}
		}
	}
	return violations
}
