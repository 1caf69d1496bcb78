package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/limaJavier/fjsp/pkg/check"
	"github.com/limaJavier/fjsp/pkg/model"
	"github.com/limaJavier/fjsp/pkg/solver"
	"github.com/samber/lo"
)

const (
	exitPassed     = 10
	exitViolated   = 15
	exitNoSolution = 20
)

var (
	validFormulations = []string{string(solver.MILP), string(solver.CP)}
	lagConventions    = map[string]check.LagConvention{
		"end-to-start":   check.EndToStart,
		"start-to-start": check.StartToStart,
	}
)

func main() {
	// Define arguments
	filePathPtr := flag.String("file", "", "Path to the instance file")
	formulationPtr := flag.String("formulation", "milp", `Formulation to solve and check. Allowed values are "milp" and "cp", where "milp" is the default`)
	solverPtr := flag.String("solver", "", "Name of the solver in the config file; required unless -solution is given")
	configPtr := flag.String("config", "", "Path to the solver config (JSON or YAML); defaults to config.json next to the executable")
	solutionPtr := flag.String("solution", "", "Check a stored solution instead of invoking a solver")
	operationsPtr := flag.Int("ops", 0, "Number of operations to keep (0 keeps all)")
	machinesPtr := flag.Int("machs", 0, "Number of machines to keep (0 keeps all)")
	infinityPtr := flag.Int64("infinity", model.DefaultInfinity, "Finite value standing for infinity at the solver boundary")
	bigMPtr := flag.Int64("bigm", 0, "Big-M passed to the MILP model and its checker (0 computes it)")
	horizonPtr := flag.Int64("horizon", 0, "CP horizon used by the checker (0 computes it)")
	tolerancePtr := flag.Float64("tolerance", check.DefaultTolerance, "Numeric tolerance of the checker")
	workersPtr := flag.Int("workers", 4, "Worker count passed to the solver")
	delayPtr := flag.Int64("delay", 1, "Loading/unloading delay of every machine")
	lagPtr := flag.String("lag", "end-to-start", `Time difference bounded by lags: "end-to-start" or "start-to-start"`)
	strictPtr := flag.Bool("strict-setups", false, "Flag immediate successions without a defined setup")
	timeoutPtr := flag.Duration("timeout", 0, "Time limit of the solver (0 for none)")
	verbosePtr := flag.Bool("verbose", false, "Ask the solver for verbose output")
	flag.Parse()
	defer log.Flush()

	formulation := strings.ToLower(*formulationPtr)
	lagConvention, validLag := lagConventions[strings.ToLower(*lagPtr)]

	// Validate arguments
	if !slices.Contains(validFormulations, formulation) {
		log.Fatalf("%v is not a valid formulation", formulation)
	} else if *filePathPtr == "" {
		log.Fatal("an instance file must be specified")
	} else if *solutionPtr == "" && *solverPtr == "" {
		log.Fatal("either a solver or a stored solution must be specified")
	} else if !validLag {
		log.Fatalf("%v is not a valid lag convention", *lagPtr)
	}

	//** Load and normalize data
	log.Info("load and setup data")
	raw, err := model.InstanceFromJson(*filePathPtr)
	if err != nil {
		log.Fatalf("cannot parse instance file: %v", err)
	}
	params, err := model.Normalize(raw, model.NormalizeOptions{
		LoadingDelay:       *delayPtr,
		SelectedOperations: *operationsPtr,
		SelectedMachines:   *machinesPtr,
	})
	if err != nil {
		log.Fatalf("cannot normalize instance: %v", err)
	}
	log.Infof("instance has %d operations and %d machines", params.NumOperations(), params.NumMachines())

	//** Obtain a solution
	var solution *model.Solution
	if *solutionPtr != "" {
		solution, err = solver.SolutionFromJson(*solutionPtr, params.NumOperations(), params.NumMachines())
		if err != nil {
			log.Fatalf("cannot read solution: %v", err)
		}
	} else {
		config, err := solver.LoadConfig(configPath(*configPtr))
		if err != nil {
			log.Fatal(err)
		}
		engine, err := solver.NewConfiguredSolver(config, *solverPtr)
		if err != nil {
			log.Fatal(err)
		}

		modelConfig := solver.ModelConfig{
			Infinity:  *infinityPtr,
			Workers:   *workersPtr,
			Verbose:   *verbosePtr,
			TimeLimit: *timeoutPtr,
		}
		if *bigMPtr > 0 {
			modelConfig.BigM = bigMPtr
		}

		log.Infof("solve the %v problem with %v", strings.ToUpper(formulation), *solverPtr)
		started := time.Now()
		solution, err = engine.Solve(context.Background(), solver.NewRequest(solver.Formulation(formulation), params, modelConfig))
		if err != nil {
			log.Fatalf("an error occurred while solving: %v", err)
		}
		log.Infof("solved in %v (%d constraints)", time.Since(started), solution.NumConstraints)
	}

	if err := solution.Checkable(); err != nil {
		fmt.Println("no optimal solution found")
		log.Warning(err)
		log.Flush()
		os.Exit(exitNoSolution)
	}

	//** Check constraints
	log.Info("check if the constraints are met")
	opts := []check.Option{check.WithTolerance(*tolerancePtr), check.WithLagConvention(lagConvention)}
	if *strictPtr {
		opts = append(opts, check.WithStrictSetups())
	}

	var report *check.Report
	if formulation == string(solver.MILP) {
		bigM := lo.Ternary(*bigMPtr > 0, *bigMPtr, solution.BigM)
		if bigM == 0 {
			bigM = model.BigM(params)
		}
		report, err = check.CheckMILP(params, solution, bigM, opts...)
	} else {
		report, err = check.CheckCP(params, solution, *horizonPtr, opts...)
	}

	if errors.Is(err, check.ErrConstraintViolation) {
		fmt.Print(report)
		if errors.Is(err, check.ErrNumericTolerance) {
			log.Warning("every violation is within the rounding band; the solver tolerance may be too loose")
		}
		log.Flush()
		os.Exit(exitViolated)
	} else if err != nil {
		log.Fatalf("cannot check solution: %v", err)
	}

	fmt.Printf("makespan: %v\n", solution.CMax)
	fmt.Println("the solutions met the constraints")
	log.Flush()
	os.Exit(exitPassed)
}

func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("cannot determine executable path: %v", err)
	}
	execPath = path.Dir(execPath)

	// Verify config.json exists
	files, err := os.ReadDir(execPath)
	if err != nil {
		log.Fatalf("cannot read executable's directory: %v", err)
	}
	fileNames := lo.Map(files, func(file os.DirEntry, _ int) string { return file.Name() })

	if !slices.Contains(fileNames, "config.json") {
		log.Warningf("config.json was not found next to the executable, falling back to %v", solver.ConfigPath)
		return solver.ConfigPath
	}
	return execPath + "/config.json"
}
