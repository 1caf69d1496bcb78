package model

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// DefaultHoldingTimes maps machine categories to their maximum holding time.
// 0: Cutting; 1: Pressing; 2: Forging; 3: Furnace
func DefaultHoldingTimes() map[int]Bound {
	return map[int]Bound{
		0: Finite(0),
		1: Finite(0),
		2: Finite(0),
		3: Finite(20),
	}
}

type NormalizeOptions struct {
	HoldingTimes       map[int]Bound // Defaults to DefaultHoldingTimes when nil
	LoadingDelay       int64         // Applied to every machine
	SelectedOperations int           // Keep only the first n operations (0 keeps all)
	SelectedMachines   int           // Keep only the first n machines (0 keeps all)
}

// Normalize converts a raw instance into canonical parameters. It never mutates raw and
// returns either complete parameters or a *DataError
func Normalize(raw RawInstance, options NormalizeOptions) (*Params, error) {
	operations, machines := len(raw.Operations), len(raw.Machines)
	holdingTimes := options.HoldingTimes
	if holdingTimes == nil {
		holdingTimes = DefaultHoldingTimes()
	}

	//** Validate ids
	for i := range operations {
		if _, ok := raw.Operations[strconv.Itoa(i)]; !ok {
			return nil, dataError("operations", fmt.Sprintf("ids must be 0..%d, operation %d is missing", operations-1, i), i)
		}
	}
	for m := range machines {
		if _, ok := raw.Machines[strconv.Itoa(m)]; !ok {
			return nil, dataError("machines", fmt.Sprintf("ids must be 0..%d, machine %d is missing", machines-1, m), m)
		}
	}

	//** Initialize parameters with their "absent" values
	params := &Params{
		P:        filledMatrix(operations, machines, Unbounded),
		W:        filledMatrix(operations, machines, int64(0)),
		H:        filledMatrix(operations, machines, Unbounded),
		LMin:     filledMatrix(operations, operations, Unbounded),
		LMax:     filledMatrix(operations, operations, Unbounded),
		Capacity: make([]int64, machines),
		Delta:    make([]int64, machines),
	}
	setups := newMachineMajorSetups(machines, operations)

	//** Machines
	for m := range machines {
		machine := raw.Machines[strconv.Itoa(m)]
		if machine.Capacity < 0 {
			return nil, dataError("para_mach_capacity", fmt.Sprintf("negative capacity %d", machine.Capacity), m)
		}
		params.Capacity[m] = machine.Capacity
		params.Delta[m] = options.LoadingDelay

		for _, block := range machine.Setups {
			for _, setup := range block {
				if setup.Pred < 0 || setup.Pred >= operations || setup.Succ < 0 || setup.Succ >= operations {
					return nil, dataError("para_a", fmt.Sprintf("setup pair (%d, %d) references an unknown operation", setup.Pred, setup.Succ), m)
				}
				setups[m][setup.Pred][setup.Succ] = setup.Time
			}
		}

		// Holding time depends on the machine's category and is shared by every operation
		holding, ok := holdingTimes[machine.Category]
		if !ok {
			return nil, dataError("para_h", fmt.Sprintf("category %d has no holding-time mapping", machine.Category), m)
		}
		for i := range operations {
			params.H[i][m] = holding
		}
	}

	//** Operations
	for i := range operations {
		operation := raw.Operations[strconv.Itoa(i)]

		for _, lag := range operation.Lag {
			if lag.Target < 0 || lag.Target >= operations {
				return nil, dataError("para_lmin", fmt.Sprintf("lag target %d is not an operation", lag.Target), i)
			}
			if lag.Min.Finite && lag.Max.Finite && lag.Min.Value > lag.Max.Value {
				return nil, dataError("para_lmin", fmt.Sprintf("empty lag window [%d, %d]", lag.Min.Value, lag.Max.Value), i, lag.Target)
			}
			params.LMin[i][lag.Target] = lag.Min
			params.LMax[i][lag.Target] = lag.Max
		}

		for _, option := range operation.PW {
			if option.Machine < 0 || option.Machine >= machines {
				return nil, dataError("para_p", fmt.Sprintf("machine %d does not exist", option.Machine), i)
			}
			if option.Time.Finite && option.Time.Value < 0 {
				return nil, dataError("para_p", fmt.Sprintf("negative processing time %d", option.Time.Value), i, option.Machine)
			}
			params.P[i][option.Machine] = option.Time
			params.W[i][option.Machine] = option.Weight
		}
	}

	params.A = setups.OperationMajor()

	return params.Truncate(options.SelectedOperations, options.SelectedMachines)
}

// Truncate keeps the first operations and machines of every tensor (0 keeps all). The result shares no memory with params
func (params *Params) Truncate(operations, machines int) (*Params, error) {
	if operations == 0 {
		operations = params.NumOperations()
	}
	if machines == 0 {
		machines = params.NumMachines()
	}
	if operations < 0 || operations > params.NumOperations() {
		return nil, dataError("n_opt_selected", fmt.Sprintf("cannot select %d of %d operations", operations, params.NumOperations()))
	}
	if machines < 0 || machines > params.NumMachines() {
		return nil, dataError("n_mach_selected", fmt.Sprintf("cannot select %d of %d machines", machines, params.NumMachines()))
	}

	truncated := &Params{
		P:    sliceMatrix(params.P, operations, machines),
		W:    sliceMatrix(params.W, operations, machines),
		H:    sliceMatrix(params.H, operations, machines),
		LMin: sliceMatrix(params.LMin, operations, operations),
		LMax: sliceMatrix(params.LMax, operations, operations),
		A: lo.Map(params.A[:operations], func(matrix [][]Bound, _ int) [][]Bound {
			return sliceMatrix(matrix, operations, machines)
		}),
		Capacity: append([]int64{}, params.Capacity[:machines]...),
		Delta:    append([]int64{}, params.Delta[:machines]...),
	}

	if err := truncated.Validate(); err != nil {
		return nil, err
	}
	return truncated, nil
}

func filledMatrix[T any](rows, columns int, value T) [][]T {
	matrix := make([][]T, rows)
	for i := range matrix {
		matrix[i] = make([]T, columns)
		for j := range matrix[i] {
			matrix[i][j] = value
		}
	}
	return matrix
}

func sliceMatrix[T any](matrix [][]T, rows, columns int) [][]T {
	return lo.Map(matrix[:rows], func(row []T, _ int) []T {
		return append([]T{}, row[:columns]...)
	})
}
