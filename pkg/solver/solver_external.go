package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	log "github.com/golang/glog"
	"github.com/limaJavier/fjsp/pkg/model"
)

// Exit-code of 10 stands for an optimal solution and exit-code 20 stands for an infeasible model
const (
	exitOptimal    = 10
	exitInfeasible = 20
)

type externalSolver struct {
	name string
	path string
}

// NewExternalSolver runs the executable at path, feeding the request as JSON on its standard
// input and reading the solution JSON from its standard output
func NewExternalSolver(name, path string) Solver {
	return &externalSolver{name: name, path: path}
}

// NewConfiguredSolver looks the solver up in the configuration
func NewConfiguredSolver(config Config, name string) (Solver, error) {
	path, err := config.ExecutablePath(name)
	if err != nil {
		return nil, err
	}
	return NewExternalSolver(name, path), nil
}

type requestJson struct {
	ID          string        `json:"request_id"`
	Formulation Formulation   `json:"formulation"`
	Operations  []string      `json:"operations"`
	Machines    []string      `json:"machines"`
	Tensors     model.Tensors `json:"parameters"`
	Config      ModelConfig   `json:"config"`
	TimeLimit   float64       `json:"time_limit_seconds,omitempty"`
}

func (solver *externalSolver) Solve(ctx context.Context, request Request) (*model.Solution, error) {
	if request.Config.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, request.Config.TimeLimit)
		defer cancel()
	}

	input, err := json.Marshal(requestJson{
		ID:          request.ID,
		Formulation: request.Formulation,
		Operations:  request.Operations,
		Machines:    request.Machines,
		Tensors:     request.Tensors,
		Config:      request.Config,
		TimeLimit:   request.Config.TimeLimit.Seconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot encode request for %v: %w", solver.name, err)
	}

	cmd := exec.CommandContext(ctx, solver.path, string(request.Formulation))
	cmd.Stdin = bytes.NewReader(input) // Feed the request into the solver's standard input

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.V(1).Infof("[%v] running %v (%v) with %d operations and %d machines", request.ID, solver.name, request.Formulation, len(request.Operations), len(request.Machines))

	err = cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("an error occurred during %v execution: %w", solver.name, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%v did not finish: %w", solver.name, ctxErr)
	}

	switch code := cmd.ProcessState.ExitCode(); code {
	case exitInfeasible:
		log.Warningf("[%v] %v reported an infeasible model", request.ID, solver.name)
		return &model.Solution{Status: model.Infeasible}, nil
	case exitOptimal, 0:
		solution, err := ParseSolution(stdOut.Bytes(), len(request.Operations), len(request.Machines))
		if err != nil {
			return nil, fmt.Errorf("%v: %w", solver.name, err)
		}
		if code == exitOptimal {
			solution.Status = model.Optimal
		}
		return solution, nil
	default:
		return nil, fmt.Errorf("an error occurred during %v execution (exit code %d): %v", solver.name, code, stderr.String())
	}
}
