package solver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/fjsp/pkg/model"
)

type Formulation string

const (
	MILP Formulation = "milp"
	CP   Formulation = "cp"
)

// ModelConfig is handed unchanged to the external model builder
type ModelConfig struct {
	Precedence  [][2]int      `json:"precedence,omitempty"`
	ModelString string        `json:"model_string,omitempty"`
	Infinity    int64         `json:"infinity"`
	Workers     int           `json:"num_workers"`
	Verbose     bool          `json:"verbose"`
	BigM        *int64        `json:"big_m,omitempty"` // Computed by the model builder when nil
	TimeLimit   time.Duration `json:"-"`
}

// Request is everything an external model builder needs to build and solve one model
type Request struct {
	ID          string // Short identifier correlating logs of one solve
	Formulation Formulation
	Operations  []string
	Machines    []string
	Tensors     model.Tensors
	Config      ModelConfig
}

// Solver solves a request; an infeasible model is not an error and is reported through the
// solution's status
type Solver interface {
	Solve(ctx context.Context, request Request) (*model.Solution, error)
}

// NewRequest converts parameters to their sentinel form and names operations and machines by index
func NewRequest(formulation Formulation, params *model.Params, config ModelConfig) Request {
	if config.Infinity == 0 {
		config.Infinity = model.DefaultInfinity
	}
	return Request{
		ID:          uuid.New().String()[:8],
		Formulation: formulation,
		Operations:  indexNames(params.NumOperations()),
		Machines:    indexNames(params.NumMachines()),
		Tensors:     params.Tensors(config.Infinity),
		Config:      config,
	}
}
