package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type RawOperationRecord struct {
	PW  [][]any `mapstructure:"pw"`  // (machine, processing time, weight)
	Lag [][]any `mapstructure:"lag"` // (target operation, minimum lag, maximum lag)
}

type RawMachineRecord struct {
	C         int64     `mapstructure:"c"` // Capacity
	T         int       `mapstructure:"t"` // Category
	SetupData [][][]any `mapstructure:"setup_data"`
}

// RawInput mirrors the structured instance: records keyed by operation and machine id strings
type RawInput struct {
	Operations map[string]RawOperationRecord `mapstructure:"operations"`
	Machines   map[string]RawMachineRecord   `mapstructure:"machines"`
}

type ProcessingOption struct {
	Machine int
	Time    Bound
	Weight  int64
}

type LagRelation struct {
	Target int
	Min    Bound
	Max    Bound
}

type SetupRelation struct {
	Pred int
	Succ int
	Time Bound
}

type RawOperation struct {
	PW  []ProcessingOption
	Lag []LagRelation
}

type RawMachine struct {
	Capacity int64
	Category int
	Setups   [][]SetupRelation
}

// RawInstance is a typed, not yet normalized, problem instance
type RawInstance struct {
	Operations map[string]RawOperation
	Machines   map[string]RawMachine
}

func InstanceFromJson(file string) (RawInstance, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return RawInstance{}, err
	}
	return InstanceFromBytes(bytes)
}

func InstanceFromBytes(bytes []byte) (RawInstance, error) {
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return RawInstance{}, err
	}

	var rawInput RawInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return RawInstance{}, fmt.Errorf("cannot decode instance: %w", err)
	}
	return ProcessRawInput(rawInput)
}

func ProcessRawInput(rawInput RawInput) (RawInstance, error) {
	instance := RawInstance{
		Operations: make(map[string]RawOperation, len(rawInput.Operations)),
		Machines:   make(map[string]RawMachine, len(rawInput.Machines)),
	}

	for id, record := range rawInput.Operations {
		operation := RawOperation{
			PW:  make([]ProcessingOption, 0, len(record.PW)),
			Lag: make([]LagRelation, 0, len(record.Lag)),
		}

		for _, tuple := range record.PW {
			if len(tuple) != 3 {
				return RawInstance{}, dataError("pw of operation "+id, fmt.Sprintf("expected (machine, time, weight), got %v", tuple))
			}
			machine, err := toIndex(tuple[0])
			if err != nil {
				return RawInstance{}, dataError("pw of operation "+id, err.Error())
			}
			time, err := toBound(tuple[1], 1)
			if err != nil {
				return RawInstance{}, dataError("pw of operation "+id, err.Error())
			}
			weight, err := toBound(tuple[2], 1)
			if err != nil || !weight.Finite {
				return RawInstance{}, dataError("pw of operation "+id, fmt.Sprintf("weight must be a finite integer: %v", tuple[2]))
			}
			operation.PW = append(operation.PW, ProcessingOption{Machine: machine, Time: time, Weight: weight.Value})
		}

		for _, tuple := range record.Lag {
			if len(tuple) != 3 {
				return RawInstance{}, dataError("lag of operation "+id, fmt.Sprintf("expected (target, min, max), got %v", tuple))
			}
			target, err := toIndex(tuple[0])
			if err != nil {
				return RawInstance{}, dataError("lag of operation "+id, err.Error())
			}
			minimum, err := toBound(tuple[1], -1)
			if err != nil {
				return RawInstance{}, dataError("lag of operation "+id, err.Error())
			}
			maximum, err := toBound(tuple[2], 1)
			if err != nil {
				return RawInstance{}, dataError("lag of operation "+id, err.Error())
			}
			operation.Lag = append(operation.Lag, LagRelation{Target: target, Min: minimum, Max: maximum})
		}

		instance.Operations[id] = operation
	}

	for id, record := range rawInput.Machines {
		machine := RawMachine{
			Capacity: record.C,
			Category: record.T,
			Setups:   make([][]SetupRelation, 0, len(record.SetupData)),
		}

		for _, block := range record.SetupData {
			setups := make([]SetupRelation, 0, len(block))
			for _, tuple := range block {
				if len(tuple) != 3 {
					return RawInstance{}, dataError("setup_data of machine "+id, fmt.Sprintf("expected (pred, succ, time), got %v", tuple))
				}
				pred, predErr := toIndex(tuple[0])
				succ, succErr := toIndex(tuple[1])
				time, timeErr := toBound(tuple[2], -1)
				if err, found := lo.Find([]error{predErr, succErr, timeErr}, func(err error) bool { return err != nil }); found {
					return RawInstance{}, dataError("setup_data of machine "+id, err.Error())
				}
				setups = append(setups, SetupRelation{Pred: pred, Succ: succ, Time: time})
			}
			machine.Setups = append(machine.Setups, setups)
		}

		instance.Machines[id] = machine
	}

	return instance, nil
}

// toBound reads an integral quantity; null and the strings "inf"/"-inf" mean unconstrained.
// sign is the direction an unconstrained value is expected to have
func toBound(value any, sign int) (Bound, error) {
	switch v := value.(type) {
	case nil:
		return Unbounded, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "inf", "+inf", "infinity":
			if sign < 0 {
				return Unbounded, fmt.Errorf("expected -inf, got %q", v)
			}
			return Unbounded, nil
		case "-inf", "-infinity":
			if sign > 0 {
				return Unbounded, fmt.Errorf("expected +inf, got %q", v)
			}
			return Unbounded, nil
		}
		return Unbounded, fmt.Errorf("not a number: %q", v)
	case float64:
		if math.IsInf(v, 0) {
			return Unbounded, nil
		}
		if v != math.Trunc(v) || math.IsNaN(v) {
			return Unbounded, fmt.Errorf("not an integral time: %v", v)
		}
		return Finite(int64(v)), nil
	case int:
		return Finite(int64(v)), nil
	case int64:
		return Finite(v), nil
	}
	return Unbounded, fmt.Errorf("unsupported value %v (%T)", value, value)
}

func toIndex(value any) (int, error) {
	bound, err := toBound(value, 1)
	if err != nil {
		return 0, err
	}
	if !bound.Finite || bound.Value < 0 {
		return 0, fmt.Errorf("not a valid index: %v", value)
	}
	return int(bound.Value), nil
}
