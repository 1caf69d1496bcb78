package model

import (
	"fmt"

	"github.com/samber/lo"
)

// SetupTensor holds sequence-dependent setup times in operation-major layout: setup[i][j][m] is
// the setup needed on machine m when operation i immediately precedes operation j
type SetupTensor [][][]Bound

// MachineMajorSetups is the layout setup data arrives in: setup[m][i][j]. It only exists at the
// raw-data boundary and must be converted with OperationMajor before reaching any formulation
type MachineMajorSetups [][][]Bound

func newMachineMajorSetups(machines, operations int) MachineMajorSetups {
	setups := make(MachineMajorSetups, machines)
	for m := range setups {
		setups[m] = make([][]Bound, operations)
		for i := range setups[m] {
			setups[m][i] = make([]Bound, operations)
		}
	}
	return setups
}

// OperationMajor permutes (m,i,j) into (i,j,m)
func (setups MachineMajorSetups) OperationMajor() SetupTensor {
	machines := len(setups)
	operations := 0
	if machines > 0 {
		operations = len(setups[0])
	}

	tensor := make(SetupTensor, operations)
	for i := range operations {
		tensor[i] = make([][]Bound, operations)
		for j := range operations {
			tensor[i][j] = make([]Bound, machines)
			for m := range machines {
				tensor[i][j][m] = setups[m][i][j]
			}
		}
	}
	return tensor
}

// Params is the canonical parameter set shared by every formulation and checker
type Params struct {
	P        [][]Bound // Processing time of operation i on machine m (unbounded means ineligible)
	W        [][]int64 // Weight of operation i on machine m
	H        [][]Bound // Maximum holding time of operation i on machine m
	LMin     [][]Bound // Minimum lag from operation i to operation j
	LMax     [][]Bound // Maximum lag from operation i to operation j
	A        SetupTensor
	Capacity []int64 // Concurrent operations allowed on machine m
	Delta    []int64 // Loading/unloading delay of machine m
}

func (params *Params) NumOperations() int {
	return len(params.P)
}

func (params *Params) NumMachines() int {
	return len(params.Capacity)
}

// Eligible checks whether operation i can run on machine m
func (params *Params) Eligible(i, m int) bool {
	return params.P[i][m].Finite
}

// Successors returns the operations j for which operation i carries a finite lag bound
func (params *Params) Successors(i int) []int {
	successors := make([]int, 0)
	for j := range params.NumOperations() {
		if j != i && (params.LMin[i][j].Finite || params.LMax[i][j].Finite) {
			successors = append(successors, j)
		}
	}
	return successors
}

// Setup returns the setup time between i and j on m, where an absent setup counts as none
func (params *Params) Setup(i, j, m int) int64 {
	return max(params.A[i][j][m].Or(0), 0)
}

// Validate checks that every tensor agrees with the operation and machine counts
func (params *Params) Validate() error {
	operations, machines := params.NumOperations(), params.NumMachines()

	checkMatrix := func(field string, rows, columns int, lengths []int) error {
		if len(lengths) != rows {
			return dataError(field, fmt.Sprintf("expected %d rows, got %d", rows, len(lengths)))
		}
		for i, length := range lengths {
			if length != columns {
				return dataError(field, fmt.Sprintf("expected %d columns, got %d", columns, length), i)
			}
		}
		return nil
	}
	boundLengths := func(matrix [][]Bound) []int {
		return lo.Map(matrix, func(row []Bound, _ int) int { return len(row) })
	}

	if err := checkMatrix("para_p", operations, machines, boundLengths(params.P)); err != nil {
		return err
	}
	if err := checkMatrix("para_w", operations, machines, lo.Map(params.W, func(row []int64, _ int) int { return len(row) })); err != nil {
		return err
	}
	if err := checkMatrix("para_h", operations, machines, boundLengths(params.H)); err != nil {
		return err
	}
	if err := checkMatrix("para_lmin", operations, operations, boundLengths(params.LMin)); err != nil {
		return err
	}
	if err := checkMatrix("para_lmax", operations, operations, boundLengths(params.LMax)); err != nil {
		return err
	}
	if len(params.Delta) != machines {
		return dataError("para_delta", fmt.Sprintf("expected %d machines, got %d", machines, len(params.Delta)))
	}
	if len(params.A) != operations {
		return dataError("para_a", fmt.Sprintf("expected %d operations, got %d", operations, len(params.A)))
	}
	for i := range params.A {
		if err := checkMatrix("para_a", operations, machines, boundLengths(params.A[i])); err != nil {
			err.(*DataError).Index = append([]int{i}, err.(*DataError).Index...)
			return err
		}
	}
	return nil
}

// Tensors is the dense, sentinel-valued form handed to solver-facing model builders
type Tensors struct {
	LMin     [][]int64   `json:"para_lmin" mapstructure:"para_lmin"`
	LMax     [][]int64   `json:"para_lmax" mapstructure:"para_lmax"`
	P        [][]int64   `json:"para_p" mapstructure:"para_p"`
	H        [][]int64   `json:"para_h" mapstructure:"para_h"`
	W        [][]int64   `json:"para_w" mapstructure:"para_w"`
	Delta    []int64     `json:"para_delta" mapstructure:"para_delta"`
	A        [][][]int64 `json:"para_a" mapstructure:"para_a"` // (i,j,m)
	Capacity []int64     `json:"para_mach_capacity" mapstructure:"para_mach_capacity"`
}

func boundsToSentinels(matrix [][]Bound, sign, infinity int64) [][]int64 {
	return lo.Map(matrix, func(row []Bound, _ int) []int64 {
		return lo.Map(row, func(bound Bound, _ int) int64 { return bound.Sentinel(sign, infinity) })
	})
}

func sentinelsToBounds(matrix [][]int64, infinity int64) [][]Bound {
	return lo.Map(matrix, func(row []int64, _ int) []Bound {
		return lo.Map(row, func(value int64, _ int) Bound { return fromSentinel(value, infinity) })
	})
}

// Tensors converts the parameters into their solver-boundary form, replacing every unbounded
// entry with infinity carrying the sign of its tensor
func (params *Params) Tensors(infinity int64) Tensors {
	return Tensors{
		LMin: boundsToSentinels(params.LMin, -1, infinity),
		LMax: boundsToSentinels(params.LMax, 1, infinity),
		P:    boundsToSentinels(params.P, 1, infinity),
		H:    boundsToSentinels(params.H, 1, infinity),
		W:    lo.Map(params.W, func(row []int64, _ int) []int64 { return append([]int64{}, row...) }),
		A: lo.Map(params.A, func(matrix [][]Bound, _ int) [][]int64 {
			return boundsToSentinels(matrix, -1, infinity)
		}),
		Delta:    append([]int64{}, params.Delta...),
		Capacity: append([]int64{}, params.Capacity...),
	}
}

// FromTensors rebuilds canonical parameters from sentinel-valued tensors; any entry whose
// magnitude reaches infinity is read back as unbounded
func FromTensors(tensors Tensors, infinity int64) (*Params, error) {
	params := &Params{
		P:    sentinelsToBounds(tensors.P, infinity),
		W:    lo.Map(tensors.W, func(row []int64, _ int) []int64 { return append([]int64{}, row...) }),
		H:    sentinelsToBounds(tensors.H, infinity),
		LMin: sentinelsToBounds(tensors.LMin, infinity),
		LMax: sentinelsToBounds(tensors.LMax, infinity),
		A: lo.Map(tensors.A, func(matrix [][]int64, _ int) [][]Bound {
			return sentinelsToBounds(matrix, infinity)
		}),
		Capacity: append([]int64{}, tensors.Capacity...),
		Delta:    append([]int64{}, tensors.Delta...),
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}
