package solver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/limaJavier/fjsp/pkg/model"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ConfigPath = "../../config.json"

// Config maps solver names to the executables implementing them
type Config map[string]string

// LoadConfig reads a JSON or YAML (by extension) solver configuration
func LoadConfig(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read solver config: %w", err)
	}

	var input map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &input)
	default:
		err = json.Unmarshal(bytes, &input)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse solver config %v: %w", path, err)
	}

	var config Config
	if err := mapstructure.Decode(input, &config); err != nil {
		return nil, fmt.Errorf("cannot decode solver config %v: %w", path, err)
	}
	return config, nil
}

func (config Config) ExecutablePath(solver string) (string, error) {
	path, ok := config[solver]
	if !ok {
		return "", fmt.Errorf("solver %q is not present in config (known: %v)", solver, lo.Keys(config))
	}
	return path, nil
}

type rawSolution struct {
	Status         string        `mapstructure:"status"`
	Y              [][]float64   `mapstructure:"var_y"`
	S              []float64     `mapstructure:"var_s"`
	C              []float64     `mapstructure:"var_c"`
	CMax           float64       `mapstructure:"var_c_max"`
	X              [][][]float64 `mapstructure:"var_x"`
	Z              [][][]float64 `mapstructure:"var_z"`
	U              [][][]float64 `mapstructure:"var_u"`
	NumConstraints int           `mapstructure:"num_constraints"`
	BigM           float64       `mapstructure:"big_m"`
}

// ParseSolution extracts the fixed-shape result tensors from a solver's JSON output. The
// status defaults to optimal when the output does not state it
func ParseSolution(output []byte, operations, machines int) (*model.Solution, error) {
	var outputJson map[string]any
	if err := json.Unmarshal(output, &outputJson); err != nil {
		return nil, fmt.Errorf("invalid solver output: %w", err)
	}

	var raw rawSolution
	if err := mapstructure.Decode(outputJson, &raw); err != nil {
		return nil, fmt.Errorf("cannot decode solver output: %w", err)
	}

	status := model.Optimal
	if raw.Status != "" {
		status = model.ParseStatus(strings.ToLower(raw.Status))
	}

	solution := &model.Solution{
		Status:         status,
		Y:              raw.Y,
		S:              raw.S,
		C:              raw.C,
		CMax:           raw.CMax,
		X:              raw.X,
		Z:              raw.Z,
		U:              raw.U,
		NumConstraints: raw.NumConstraints,
		BigM:           int64(raw.BigM),
	}
	if status == model.Infeasible {
		return solution, nil
	}
	if err := solution.Validate(operations, machines); err != nil {
		return nil, err
	}
	return solution, nil
}

func SolutionFromJson(file string, operations, machines int) (*model.Solution, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParseSolution(bytes, operations, machines)
}

func indexNames(count int) []string {
	return lo.Times(count, func(index int) string { return strconv.Itoa(index) })
}
