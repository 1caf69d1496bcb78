package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/limaJavier/fjsp/pkg/check"
	"github.com/limaJavier/fjsp/pkg/model"
	"github.com/limaJavier/fjsp/pkg/solver"
	"github.com/samber/lo"
)

type ResultType int

const (
	solved ResultType = iota
	violated
	noSolution
	failed
)

var resultTypes = map[ResultType]string{
	solved:     "solved",
	violated:   "violated",
	noSolution: "no-solution",
	failed:     "failed",
}

type BenchmarkResult struct {
	Method         solver.Formulation
	Operations     int
	Machines       int
	Duration       time.Duration
	NumConstraints int
	Makespan       float64
	Result         ResultType
}

func main() {
	filePathPtr := flag.String("file", "", "Path to the instance file")
	configPtr := flag.String("config", solver.ConfigPath, "Path to the solver config")
	milpSolverPtr := flag.String("milp-solver", "milp", "Solver used for the MILP formulation")
	cpSolverPtr := flag.String("cp-solver", "cp", "Solver used for the CP formulation")
	sizesPtr := flag.String("sizes", "10,20,30,40", "Comma-separated numbers of operations to select")
	delayPtr := flag.Int64("delay", 1, "Loading/unloading delay of every machine")
	workersPtr := flag.Int("workers", 4, "Worker count passed to the solvers")
	timeoutPtr := flag.Duration("timeout", 10*time.Minute, "Time limit of each solve")
	outPtr := flag.String("out", "benchmark_results.csv", "Path of the CSV file")
	flag.Parse()
	defer log.Flush()

	sizes, err := parseSizes(*sizesPtr)
	if err != nil {
		log.Fatal(err)
	} else if *filePathPtr == "" {
		log.Fatal("an instance file must be specified")
	}

	raw, err := model.InstanceFromJson(*filePathPtr)
	if err != nil {
		log.Fatalf("cannot parse instance file: %v", err)
	}
	config, err := solver.LoadConfig(*configPtr)
	if err != nil {
		log.Fatal(err)
	}
	solvers := map[solver.Formulation]solver.Solver{}
	for formulation, name := range map[solver.Formulation]string{solver.MILP: *milpSolverPtr, solver.CP: *cpSolverPtr} {
		if solvers[formulation], err = solver.NewConfiguredSolver(config, name); err != nil {
			log.Fatal(err)
		}
	}

	results := make([]BenchmarkResult, 0, len(sizes)*len(solvers))
	for _, size := range sizes {
		params, err := model.Normalize(raw, model.NormalizeOptions{LoadingDelay: *delayPtr, SelectedOperations: size})
		if err != nil {
			log.Fatalf("cannot select %d operations: %v", size, err)
		}

		for _, formulation := range []solver.Formulation{solver.CP, solver.MILP} {
			fmt.Printf("Benchmarking %v with %d operations\n", strings.ToUpper(string(formulation)), size)
			config := solver.ModelConfig{Infinity: model.DefaultInfinity, Workers: *workersPtr, TimeLimit: *timeoutPtr}
			results = append(results, measure(solvers[formulation], formulation, params, config))
		}
	}

	if err := toCsv(*outPtr, results); err != nil {
		log.Fatal(err)
	}
}

func measure(engine solver.Solver, formulation solver.Formulation, params *model.Params, config solver.ModelConfig) BenchmarkResult {
	result := BenchmarkResult{
		Method:     formulation,
		Operations: params.NumOperations(),
		Machines:   params.NumMachines(),
	}

	started := time.Now()
	solution, err := engine.Solve(context.Background(), solver.NewRequest(formulation, params, config))
	result.Duration = time.Since(started)
	if err != nil {
		log.Errorf("%v with %d operations failed: %v", formulation, result.Operations, err)
		result.Result = failed
		return result
	}
	if solution.Checkable() != nil {
		result.Result = noSolution
		return result
	}
	result.NumConstraints = solution.NumConstraints
	result.Makespan = solution.CMax

	var report *check.Report
	if formulation == solver.MILP {
		report, err = check.CheckMILP(params, solution, lo.Ternary(solution.BigM > 0, solution.BigM, model.BigM(params)))
	} else {
		report, err = check.CheckCP(params, solution, 0)
	}
	if report == nil {
		log.Errorf("cannot check %v solution: %v", formulation, err)
		result.Result = failed
	} else if !report.Passed() {
		log.Warning(report)
		result.Result = violated
	}
	return result
}

func parseSizes(sizes string) ([]int, error) {
	fields := lo.Filter(strings.Split(sizes, ","), func(field string, _ int) bool { return strings.TrimSpace(field) != "" })
	parsed := make([]int, 0, len(fields))
	for _, field := range fields {
		size, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid number of operations %q", field)
		}
		parsed = append(parsed, size)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no sizes were given")
	}
	return parsed, nil
}

func toRecord(result BenchmarkResult) []string {
	return []string{
		string(result.Method),
		fmt.Sprintf("%d", result.Operations),
		fmt.Sprintf("%d", result.Machines),
		fmt.Sprintf("%.3f", result.Duration.Seconds()),
		fmt.Sprintf("%d", result.NumConstraints),
		strconv.FormatFloat(result.Makespan, 'f', -1, 64),
		resultTypes[result.Result],
	}
}

func toCsv(path string, results []BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"method", "n_opt", "n_mach", "running_time_seconds", "num_constraints", "makespan", "result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}
	return nil
}
