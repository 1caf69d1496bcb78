package model

import "fmt"

type Status int

const (
	Unknown Status = iota
	Optimal
	Feasible
	Infeasible
)

var statusNames = map[Status]string{
	Unknown:    "unknown",
	Optimal:    "optimal",
	Feasible:   "feasible",
	Infeasible: "infeasible",
}

func (status Status) String() string {
	return statusNames[status]
}

func ParseStatus(name string) Status {
	for status, statusName := range statusNames {
		if statusName == name {
			return status
		}
	}
	return Unknown
}

// Solution holds the fixed-shape result tensors of a solved model. Values are the solver's
// floating-point output and are never rounded
type Solution struct {
	Status Status

	Y    [][]float64   // Y[i][m] = 1 if operation i is assigned to machine m
	S    []float64     // Start time of operation i
	C    []float64     // Completion time of operation i
	CMax float64       // Makespan
	X    [][][]float64 // X[i][j][m] = 1 if i immediately precedes j on m (MILP only, may be nil)
	Z    [][][]float64 // Z[i][j][m] = 1 if i precedes j on m (MILP only, may be nil)
	U    [][][]float64 // U[i][m][t] = 1 if operation i occupies machine m at timestep t (may be nil)

	NumConstraints int
	BigM           int64 // Big-M used by the formulation, 0 when unknown
}

// Checkable reports ErrInfeasibleResult unless the solver proved optimality
func (solution *Solution) Checkable() error {
	if solution == nil {
		return ErrInfeasibleResult
	}
	if solution.Status != Optimal {
		return fmt.Errorf("%w: status %v", ErrInfeasibleResult, solution.Status)
	}
	return nil
}

// Validate checks the solution's shapes against the instance dimensions
func (solution *Solution) Validate(operations, machines int) error {
	if len(solution.Y) != operations {
		return dataError("var_y", fmt.Sprintf("expected %d operations, got %d", operations, len(solution.Y)))
	}
	for i, row := range solution.Y {
		if len(row) != machines {
			return dataError("var_y", fmt.Sprintf("expected %d machines, got %d", machines, len(row)), i)
		}
	}
	if len(solution.S) != operations {
		return dataError("var_s", fmt.Sprintf("expected %d operations, got %d", operations, len(solution.S)))
	}
	if len(solution.C) != operations {
		return dataError("var_c", fmt.Sprintf("expected %d operations, got %d", operations, len(solution.C)))
	}
	for _, tensor := range []struct {
		name   string
		values [][][]float64
	}{{"var_x", solution.X}, {"var_z", solution.Z}} {
		if tensor.values == nil {
			continue
		}
		if err := validateCube(tensor.name, tensor.values, operations, operations, machines); err != nil {
			return err
		}
	}
	if solution.U != nil {
		if len(solution.U) != operations {
			return dataError("var_u", fmt.Sprintf("expected %d operations, got %d", operations, len(solution.U)))
		}
		steps := -1
		for i, matrix := range solution.U {
			if len(matrix) != machines {
				return dataError("var_u", fmt.Sprintf("expected %d machines, got %d", machines, len(matrix)), i)
			}
			for m, row := range matrix {
				if steps == -1 {
					steps = len(row)
				} else if len(row) != steps {
					return dataError("var_u", fmt.Sprintf("expected %d timesteps, got %d", steps, len(row)), i, m)
				}
			}
		}
	}
	return nil
}

func validateCube(name string, cube [][][]float64, first, second, third int) error {
	if len(cube) != first {
		return dataError(name, fmt.Sprintf("expected %d rows, got %d", first, len(cube)))
	}
	for i, matrix := range cube {
		if len(matrix) != second {
			return dataError(name, fmt.Sprintf("expected %d columns, got %d", second, len(matrix)), i)
		}
		for j, row := range matrix {
			if len(row) != third {
				return dataError(name, fmt.Sprintf("expected %d machines, got %d", third, len(row)), i, j)
			}
		}
	}
	return nil
}

// Machine returns the machine operation i is assigned to, or -1 when no Y entry is set
func (solution *Solution) Machine(i int) int {
	best, machine := 0.5, -1
	for m, value := range solution.Y[i] {
		if value > best {
			best, machine = value, m
		}
	}
	return machine
}
