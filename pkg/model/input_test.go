package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceFromJson(t *testing.T) {
	raw := loadInstance(t)

	require.Len(t, raw.Operations, 3)
	require.Len(t, raw.Machines, 2)

	assert.Equal(t, []ProcessingOption{{Machine: 0, Time: f(2)}, {Machine: 1, Time: f(3)}}, raw.Operations["0"].PW)
	assert.Equal(t, []LagRelation{{Target: 1, Min: f(0), Max: f(10)}}, raw.Operations["0"].Lag)
	assert.Equal(t, []LagRelation{{Target: 2, Min: f(1), Max: inf}}, raw.Operations["1"].Lag)
	assert.Empty(t, raw.Operations["2"].Lag)

	assert.Equal(t, RawMachine{
		Capacity: 2,
		Category: 3,
		Setups:   [][]SetupRelation{{{Pred: 1, Succ: 0, Time: f(2)}}},
	}, raw.Machines["1"])

	_, err := InstanceFromJson("testdata/missing.json")
	assert.Error(t, err)
}

func TestInstanceFromBytesErrors(t *testing.T) {
	testCases := []struct {
		name     string
		instance string
	}{
		{"malformed json", `{"operations": `},
		{"short processing tuple", `{"operations": {"0": {"pw": [[0, 2]]}}}`},
		{"fractional processing time", `{"operations": {"0": {"pw": [[0, 2.5, 0]]}}}`},
		{"unbounded weight", `{"operations": {"0": {"pw": [[0, 2, "inf"]]}}}`},
		{"negative machine", `{"operations": {"0": {"pw": [[-1, 2, 0]]}}}`},
		{"positive infinite minimum lag", `{"operations": {"0": {"lag": [[1, "inf", 3]]}}}`},
		{"negative infinite maximum lag", `{"operations": {"0": {"lag": [[1, 0, "-inf"]]}}}`},
		{"text time", `{"operations": {"0": {"lag": [[1, "soon", 3]]}}}`},
		{"long setup tuple", `{"machines": {"0": {"c": 1, "setup_data": [[[0, 1, 2, 3]]]}}}`},
		{"infinite setup operation", `{"machines": {"0": {"c": 1, "setup_data": [[[0, "inf", 2]]]}}}`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := InstanceFromBytes([]byte(testCase.instance))
			assert.Error(t, err)
		})
	}
}

func TestInstanceFromBytesUnboundedValues(t *testing.T) {
	raw, err := InstanceFromBytes([]byte(`{
		"operations": {"0": {"pw": [[0, null, 0]], "lag": [[0, "-inf", null]]}},
		"machines": {"0": {"c": 1, "t": 2, "setup_data": [[[0, 0, "-inf"]]]}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, inf, raw.Operations["0"].PW[0].Time)
	assert.Equal(t, LagRelation{Target: 0, Min: inf, Max: inf}, raw.Operations["0"].Lag[0])
	assert.Equal(t, inf, raw.Machines["0"].Setups[0][0].Time)
}

func TestToBound(t *testing.T) {
	testCases := []struct {
		value    any
		sign     int
		expected Bound
		valid    bool
	}{
		{nil, 1, inf, true},
		{"INF", 1, inf, true},
		{"+inf", -1, inf, false},
		{" -inf ", -1, inf, true},
		{"-infinity", 1, inf, false},
		{math.Inf(1), 1, inf, true},
		{float64(-3), -1, f(-3), true},
		{1.25, 1, inf, false},
		{7, 1, f(7), true},
		{int64(8), 1, f(8), true},
		{true, 1, inf, false},
	}

	for _, testCase := range testCases {
		bound, err := toBound(testCase.value, testCase.sign)
		if testCase.valid {
			assert.NoError(t, err, "%v", testCase.value)
			assert.Equal(t, testCase.expected, bound, "%v", testCase.value)
		} else {
			assert.Error(t, err, "%v", testCase.value)
		}
	}
}
