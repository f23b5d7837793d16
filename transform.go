package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/NVIDIA/cuopt-benchmark/mps"
)

func transformCmd(args []string) {
	flags := flag.NewFlagSet("transform", flag.ExitOnError)
	var output, tolerances string
	var timeLimit, iterationLimit int
	var noVarNames bool
	flags.StringVar(&output, "o", "", "output file name, defaults to the input with a .json suffix")
	flags.StringVar(&output, "output", "", "same as -o")
	flags.StringVar(&tolerances, "tol", "", "JSON document or file with solver tolerances")
	flags.StringVar(&tolerances, "tolerances", "", "same as -tol")
	flags.IntVar(&timeLimit, "tl", 0, "solver time limit in milliseconds, 0 means none")
	flags.IntVar(&timeLimit, "time-limit", 0, "same as -tl")
	flags.IntVar(&iterationLimit, "il", 0, "solver iteration limit, 0 means none")
	flags.IntVar(&iterationLimit, "iteration-limit", 0, "same as -il")
	flags.BoolVar(&noVarNames, "nv", false, "leave variable names out of the JSON output")
	flags.BoolVar(&noVarNames, "no-var-names", false, "same as -nv")
	flags.Parse(args)

	input := flags.Arg(0)
	if input == "" {
		fmt.Fprintln(os.Stderr, "usage: cuopt-benchmark transform [flags] file.mps")
		os.Exit(2)
	}
	model, err := mps.ParseFile(input)
	if err != nil {
		Logger.Fatalf("failed to parse %v: %v", input, err)
	}
	problem := model.Problem()
	if noVarNames {
		problem.VariableNames = nil
	}
	if tolerances != "" {
		raw, err := resolveTolerances(tolerances)
		if err != nil {
			Logger.Fatalf("%v", err)
		}
		problem.SolverConfig.Tolerances = raw
	}
	problem.SolverConfig.TimeLimit = timeLimit
	problem.SolverConfig.IterationLimit = iterationLimit

	out := outputPath(input, output)
	data, err := json.Marshal(problem)
	if err != nil {
		Logger.Fatalf("failed to encode %v: %v", out, err)
	}
	fmt.Printf("Writing %v\n", out)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		Logger.Fatalf("failed to write %v: %v", out, err)
	}
	Logger.Infof("converted %v: %v variables, %v constraints",
		input, len(problem.VariableTypes), len(problem.ConstraintBounds.LowerBounds))
}

// resolveTolerances accepts either an inline JSON document or the path of a
// JSON file and returns the raw document for embedding in solver_config.
func resolveTolerances(arg string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "{") {
		if !json.Valid([]byte(trimmed)) {
			return nil, fmt.Errorf("tolerances are not valid JSON: %v", arg)
		}
		return json.RawMessage(trimmed), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read tolerances file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, fmt.Errorf("tolerances file %v is not valid JSON", arg)
	}
	return json.RawMessage(data), nil
}

func outputPath(input, output string) string {
	if output != "" {
		return output
	}
	if strings.HasSuffix(input, ".mps") {
		return strings.TrimSuffix(input, ".mps") + ".json"
	}
	return input + ".json"
}
