package check

import (
	"fmt"
	"math"
	"slices"

	"github.com/limaJavier/fjsp/pkg/model"
	"github.com/samber/lo"
)

type checkState struct {
	params   *model.Params
	solution *model.Solution
	options  options

	machines   []int   // Assigned machine of each operation (-1 if none)
	perMachine [][]int // Operations assigned to each machine, ordered by start time
	bigM       float64
	horizon    float64
}

func newCheckState(params *model.Params, solution *model.Solution, opts []Option) (checkState, error) {
	if err := params.Validate(); err != nil {
		return checkState{}, err
	}
	if err := solution.Validate(params.NumOperations(), params.NumMachines()); err != nil {
		return checkState{}, err
	}

	state := checkState{
		params:     params,
		solution:   solution,
		options:    gatherOptions(opts),
		machines:   make([]int, params.NumOperations()),
		perMachine: make([][]int, params.NumMachines()),
	}
	for i := range params.NumOperations() {
		m := solution.Machine(i)
		state.machines[i] = m
		if m >= 0 {
			state.perMachine[m] = append(state.perMachine[m], i)
		}
	}
	for m := range state.perMachine {
		slices.SortStableFunc(state.perMachine[m], func(a, b int) int {
			if solution.S[a] < solution.S[b] {
				return -1
			} else if solution.S[a] > solution.S[b] {
				return 1
			}
			return a - b
		})
	}
	return state, nil
}

func (state checkState) violation(family Family, machine int, margin float64, detail string, operations ...int) Violation {
	return Violation{
		Family:     family,
		Operations: operations,
		Machine:    machine,
		Margin:     margin,
		Numeric:    margin <= state.options.roundingBand,
		Detail:     detail,
	}
}

func set(value float64) bool {
	return value > 0.5
}

// runFamilies evaluates every family on its own goroutine and returns the collected
// violations ordered by family, then by discovery order within the family
func runFamilies(state checkState, families []func(state checkState) []Violation) []Violation {
	violationsChannel := make(chan []Violation)

	for _, family := range families {
		go func(family func(state checkState) []Violation) {
			violationsChannel <- family(state)
		}(family)
	}

	violations := make([]Violation, 0)
	for range families {
		violations = append(violations, <-violationsChannel...)
	}

	slices.SortStableFunc(violations, func(a, b Violation) int {
		return slices.Index(Families, a.Family) - slices.Index(Families, b.Family)
	})
	return violations
}

// Each operation sits on exactly one eligible machine
func assignmentViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance

	for i, row := range state.solution.Y {
		if sum := lo.Sum(row); math.Abs(sum-1) > tolerance {
			violations = append(violations, state.violation(Assignment, -1, math.Abs(sum-1), fmt.Sprintf("assigned to %.6g machines", sum), i))
		}
		for m, value := range row {
			if math.Min(math.Abs(value), math.Abs(value-1)) > tolerance {
				violations = append(violations, state.violation(Assignment, m, math.Min(math.Abs(value), math.Abs(value-1)), fmt.Sprintf("var_y = %.6g is not binary", value), i))
			}
			if set(value) && !state.params.Eligible(i, m) {
				violations = append(violations, state.violation(Assignment, m, math.Inf(1), "assigned to an ineligible machine", i))
			}
		}
	}
	return violations
}

// c_i = s_i + sum_m y_im * p_im and s_i >= 0
func completionViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance

	for i := range state.params.NumOperations() {
		start, completion := state.solution.S[i], state.solution.C[i]
		if start < -tolerance {
			violations = append(violations, state.violation(Completion, -1, -start, fmt.Sprintf("negative start time %.6g", start), i))
		}

		expected := start
		for m, value := range state.solution.Y[i] {
			if state.params.Eligible(i, m) {
				expected += value * float64(state.params.P[i][m].Value)
			}
		}
		if difference := math.Abs(completion - expected); difference > tolerance {
			violations = append(violations, state.violation(Completion, state.machines[i], difference, fmt.Sprintf("completion %.6g differs from start plus processing %.6g", completion, expected), i))
		}
	}
	return violations
}

func (state checkState) lagDifference(i, j int) float64 {
	if state.options.lagConvention == StartToStart {
		return state.solution.S[j] - state.solution.S[i]
	}
	return state.solution.S[j] - state.solution.C[i]
}

// lmin_ij <= d_ij <= lmax_ij for every finite bound
func lagViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance

	for i := range state.params.NumOperations() {
		for j := range state.params.NumOperations() {
			minimum, maximum := state.params.LMin[i][j], state.params.LMax[i][j]
			if !minimum.Finite && !maximum.Finite {
				continue
			}
			difference := state.lagDifference(i, j)
			if minimum.Finite && difference < float64(minimum.Value)-tolerance {
				violations = append(violations, state.violation(Lag, -1, float64(minimum.Value)-difference, fmt.Sprintf("lag %.6g below minimum %d", difference, minimum.Value), i, j))
			}
			if maximum.Finite && difference > float64(maximum.Value)+tolerance {
				violations = append(violations, state.violation(Lag, -1, difference-float64(maximum.Value), fmt.Sprintf("lag %.6g above maximum %d", difference, maximum.Value), i, j))
			}
		}
	}
	return violations
}

// The output of an operation waits at most h + delta on its machine before the first successor starts
func holdingViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance

	for i := range state.params.NumOperations() {
		m := state.machines[i]
		if m < 0 || !state.params.H[i][m].Finite {
			continue
		}
		successors := state.params.Successors(i)
		if len(successors) == 0 {
			continue
		}

		next := lo.MinBy(successors, func(a, b int) bool { return state.solution.S[a] < state.solution.S[b] })
		wait := state.solution.S[next] - state.solution.C[i]
		limit := float64(state.params.H[i][m].Value + state.params.Delta[m])
		if wait > limit+tolerance {
			violations = append(violations, state.violation(Holding, m, wait-limit, fmt.Sprintf("held %.6g, limit %.6g", wait, limit), i, next))
		}
	}
	return violations
}

// At every start event, the operations covering it on a machine do not exceed its capacity
func capacityViolations(state checkState) []Violation {
	violations := make([]Violation, 0)
	tolerance := state.options.tolerance

	for m, operations := range state.perMachine {
		reported := make(map[string]bool)
		for _, event := range operations {
			instant := state.solution.S[event]
			covering := lo.Filter(operations, func(k int, _ int) bool {
				return state.solution.S[k] <= instant+tolerance && instant < state.solution.C[k]-tolerance
			})

			key := fmt.Sprint(covering)
			if int64(len(covering)) <= state.params.Capacity[m] || reported[key] {
				continue
			}
			reported[key] = true
			violations = append(violations, state.violation(Capacity, m, float64(int64(len(covering))-state.params.Capacity[m]), fmt.Sprintf("%d operations at time %.6g, capacity %d", len(covering), instant, state.params.Capacity[m]), covering...))
		}
	}
	return violations
}

// c_max >= c_i for every operation
func makespanViolations(state checkState) []Violation {
	if state.params.NumOperations() == 0 {
		return nil
	}
	latest := lo.Max(state.solution.C)
	if state.solution.CMax < latest-state.options.tolerance {
		last := lo.IndexOf(state.solution.C, latest)
		return []Violation{state.violation(Makespan, -1, latest-state.solution.CMax, fmt.Sprintf("makespan %.6g below completion %.6g", state.solution.CMax, latest), last)}
	}
	return nil
}
