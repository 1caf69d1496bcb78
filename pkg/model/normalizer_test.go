package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instanceFile = "testdata/instance.json"

var inf = Unbounded

func f(value int64) Bound {
	return Finite(value)
}

func loadInstance(t *testing.T) RawInstance {
	t.Helper()
	raw, err := InstanceFromJson(instanceFile)
	require.NoError(t, err)
	return raw
}

func normalizedInstance(t *testing.T) *Params {
	t.Helper()
	params, err := Normalize(loadInstance(t), NormalizeOptions{LoadingDelay: 1})
	require.NoError(t, err)
	return params
}

func TestNormalize(t *testing.T) {
	params := normalizedInstance(t)

	assert.Equal(t, 3, params.NumOperations())
	assert.Equal(t, 2, params.NumMachines())

	expectedP := [][]Bound{{f(2), f(3)}, {inf, f(4)}, {f(1), inf}}
	if diff := cmp.Diff(expectedP, params.P); diff != "" {
		t.Errorf("processing times mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, [][]int64{{0, 0}, {0, 1}, {0, 0}}, params.W)

	expectedH := [][]Bound{{f(0), f(20)}, {f(0), f(20)}, {f(0), f(20)}}
	if diff := cmp.Diff(expectedH, params.H); diff != "" {
		t.Errorf("holding times mismatch (-want +got):\n%s", diff)
	}

	expectedLMin := [][]Bound{{inf, f(0), inf}, {inf, inf, f(1)}, {inf, inf, inf}}
	expectedLMax := [][]Bound{{inf, f(10), inf}, {inf, inf, inf}, {inf, inf, inf}}
	if diff := cmp.Diff(expectedLMin, params.LMin); diff != "" {
		t.Errorf("minimum lags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(expectedLMax, params.LMax); diff != "" {
		t.Errorf("maximum lags mismatch (-want +got):\n%s", diff)
	}

	// Setups arrive machine-major and must be read operation-major
	assert.Equal(t, f(3), params.A[0][2][0])
	assert.Equal(t, f(2), params.A[1][0][1])
	assert.Equal(t, inf, params.A[2][0][0])
	assert.Equal(t, inf, params.A[0][2][1])

	assert.Equal(t, []int64{1, 2}, params.Capacity)
	assert.Equal(t, []int64{1, 1}, params.Delta)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	raw, pristine := loadInstance(t), loadInstance(t)

	_, err := Normalize(raw, NormalizeOptions{LoadingDelay: 1, SelectedOperations: 2})
	require.NoError(t, err)
	if diff := cmp.Diff(pristine, raw); diff != "" {
		t.Errorf("raw instance was mutated (-want +got):\n%s", diff)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := loadInstance(t)

	for _, options := range []NormalizeOptions{
		{LoadingDelay: 1},
		{LoadingDelay: 1, SelectedOperations: 2, SelectedMachines: 1},
	} {
		first, err := Normalize(raw, options)
		require.NoError(t, err)
		second, err := Normalize(raw, options)
		require.NoError(t, err)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("normalizing twice with %+v differs (-first +second):\n%s", options, diff)
		}
	}
}

func TestDefaultHoldingTimesAreNotShared(t *testing.T) {
	defaults := DefaultHoldingTimes()
	defaults[3] = f(99)
	delete(defaults, 0)

	assert.Equal(t, f(20), DefaultHoldingTimes()[3])
	params, err := Normalize(loadInstance(t), NormalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Bound{f(0), f(20)}, params.H[0])
}

func TestNormalizeHoldingTimes(t *testing.T) {
	raw := loadInstance(t)

	params, err := Normalize(raw, NormalizeOptions{HoldingTimes: map[int]Bound{0: f(5), 3: inf}})
	require.NoError(t, err)
	assert.Equal(t, []Bound{f(5), inf}, params.H[1])
	assert.Equal(t, []int64{0, 0}, params.Delta)

	_, err = Normalize(raw, NormalizeOptions{HoldingTimes: map[int]Bound{0: f(5)}})
	require.Error(t, err)
	assert.True(t, IsDataError(err))
	assert.Equal(t, "para_h", err.(*DataError).Field)
	assert.Equal(t, []int{1}, err.(*DataError).Index)
}

func TestNormalizeSelection(t *testing.T) {
	raw := loadInstance(t)

	params, err := Normalize(raw, NormalizeOptions{LoadingDelay: 1, SelectedOperations: 2, SelectedMachines: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, params.NumOperations())
	assert.Equal(t, 1, params.NumMachines())
	assert.Equal(t, [][]Bound{{f(2)}, {inf}}, params.P)
	assert.Equal(t, [][]Bound{{inf, f(0)}, {inf, inf}}, params.LMin)
	assert.Len(t, params.A, 2)
	assert.Len(t, params.A[0], 2)
	assert.Len(t, params.A[0][0], 1)
	assert.NoError(t, params.Validate())

	_, err = Normalize(raw, NormalizeOptions{SelectedOperations: 4})
	assert.True(t, IsDataError(err))
	_, err = Normalize(raw, NormalizeOptions{SelectedMachines: -1})
	assert.True(t, IsDataError(err))
}

func TestTruncateCopies(t *testing.T) {
	params := normalizedInstance(t)

	truncated, err := params.Truncate(0, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(params, truncated); diff != "" {
		t.Errorf("truncating nothing changed the parameters (-want +got):\n%s", diff)
	}

	truncated.P[0][0] = f(100)
	truncated.A[0][2][0] = f(100)
	truncated.Capacity[0] = 100
	assert.Equal(t, f(2), params.P[0][0])
	assert.Equal(t, f(3), params.A[0][2][0])
	assert.Equal(t, int64(1), params.Capacity[0])
}

func TestNormalizeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(raw *RawInstance)
		field  string
	}{
		{
			name: "operation ids are not contiguous",
			mutate: func(raw *RawInstance) {
				raw.Operations["5"] = raw.Operations["2"]
				delete(raw.Operations, "2")
			},
			field: "operations",
		},
		{
			name: "machine ids are not contiguous",
			mutate: func(raw *RawInstance) {
				raw.Machines["a"] = raw.Machines["1"]
				delete(raw.Machines, "1")
			},
			field: "machines",
		},
		{
			name: "unknown machine",
			mutate: func(raw *RawInstance) {
				raw.Operations["2"] = RawOperation{PW: []ProcessingOption{{Machine: 2, Time: f(1)}}}
			},
			field: "para_p",
		},
		{
			name: "negative machine",
			mutate: func(raw *RawInstance) {
				raw.Operations["2"] = RawOperation{PW: []ProcessingOption{{Machine: -1, Time: f(1)}}}
			},
			field: "para_p",
		},
		{
			name: "negative processing time",
			mutate: func(raw *RawInstance) {
				raw.Operations["2"] = RawOperation{PW: []ProcessingOption{{Machine: 0, Time: f(-1)}}}
			},
			field: "para_p",
		},
		{
			name: "unknown lag target",
			mutate: func(raw *RawInstance) {
				raw.Operations["2"] = RawOperation{Lag: []LagRelation{{Target: 3, Min: f(0), Max: inf}}}
			},
			field: "para_lmin",
		},
		{
			name: "negative lag target",
			mutate: func(raw *RawInstance) {
				raw.Operations["2"] = RawOperation{Lag: []LagRelation{{Target: -1, Min: f(0), Max: inf}}}
			},
			field: "para_lmin",
		},
		{
			name: "empty lag window",
			mutate: func(raw *RawInstance) {
				raw.Operations["2"] = RawOperation{Lag: []LagRelation{{Target: 0, Min: f(5), Max: f(4)}}}
			},
			field: "para_lmin",
		},
		{
			name: "negative capacity",
			mutate: func(raw *RawInstance) {
				raw.Machines["0"] = RawMachine{Capacity: -1}
			},
			field: "para_mach_capacity",
		},
		{
			name: "setup references an unknown operation",
			mutate: func(raw *RawInstance) {
				raw.Machines["0"] = RawMachine{Capacity: 1, Setups: [][]SetupRelation{{{Pred: 0, Succ: 7, Time: f(1)}}}}
			},
			field: "para_a",
		},
		{
			name: "negative setup predecessor",
			mutate: func(raw *RawInstance) {
				raw.Machines["0"] = RawMachine{Capacity: 1, Setups: [][]SetupRelation{{{Pred: -1, Succ: 0, Time: f(1)}}}}
			},
			field: "para_a",
		},
		{
			name: "negative setup successor",
			mutate: func(raw *RawInstance) {
				raw.Machines["0"] = RawMachine{Capacity: 1, Setups: [][]SetupRelation{{{Pred: 0, Succ: -2, Time: f(1)}}}}
			},
			field: "para_a",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			raw := loadInstance(t)
			testCase.mutate(&raw)

			params, err := Normalize(raw, NormalizeOptions{})
			assert.Nil(t, params)
			require.Error(t, err)

			var dataErr *DataError
			require.ErrorAs(t, err, &dataErr)
			assert.Equal(t, testCase.field, dataErr.Field)
		})
	}
}

func TestEmptyInstance(t *testing.T) {
	params, err := Normalize(RawInstance{}, NormalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, params.NumOperations())
	assert.Equal(t, int64(1), BigM(params))
}
