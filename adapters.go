package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSolverKeys selects the whole registry, in canonical order.
const DefaultSolverKeys = "C,python,cvxpy,pulp,ampl,julia,gams"

// Adapter describes one solver front-end: how to invoke it, which program
// file must exist before a run, and how to scrape its stdout. The problem
// file path is inserted between Command and TrailArgs.
type Adapter struct {
	Key        string   // selection key accepted by -solvers
	Name       string   // column prefix in the results table
	Command    []string // invocation prefix
	TrailArgs  []string // arguments appended after the problem file
	FileCheck  string   // program file required in the program directory
	Parser     OutputParser
	PrepareEnv func(environ []string) []string // nil means inherit the environment as-is
}

// Argv builds the full command line for one problem file.
func (a Adapter) Argv(problemFile string) []string {
	argv := make([]string, 0, len(a.Command)+1+len(a.TrailArgs))
	argv = append(argv, a.Command...)
	argv = append(argv, problemFile)
	argv = append(argv, a.TrailArgs...)
	return argv
}

// DefaultAdapters returns the registry of every known front-end. Parsers are
// bound here, once; nothing resolves them by name at run time.
func DefaultAdapters() []Adapter {
	return []Adapter{
		{
			Key:       "C",
			Name:      "cuopt_json_to_c_api",
			Command:   []string{"./cuopt_json_to_c_api"},
			FileCheck: "cuopt_json_to_c_api",
			Parser:    parserObjectiveValue,
		},
		{
			Key:       "python",
			Name:      "cuopt_json_to_python",
			Command:   []string{"python", "cuopt_json_to_python_api.py"},
			FileCheck: "cuopt_json_to_python_api.py",
			Parser:    parserObjectiveValue,
		},
		{
			Key:       "cvxpy",
			Name:      "cuopt_json_to_cvxpy",
			Command:   []string{"python", "cuopt_json_to_cvxpy.py", "--solver_verbose"},
			FileCheck: "cuopt_json_to_cvxpy.py",
			Parser:    parserOptimalValue,
		},
		{
			Key:       "pulp",
			Name:      "cuopt_json_to_pulp",
			Command:   []string{"python", "cuopt_json_to_pulp.py", "--quiet"},
			FileCheck: "cuopt_json_to_pulp.py",
			Parser:    parserObjective,
		},
		{
			Key:       "ampl",
			Name:      "cuopt_json_to_ampl",
			Command:   []string{"python", "cuopt_json_to_ampl.py", "--quiet"},
			FileCheck: "cuopt_json_to_ampl.py",
			Parser:    parserObjectiveBareTime,
		},
		{
			Key:        "julia",
			Name:       "cuopt_json_to_julia",
			Command:    []string{"./cuopt_json_to_julia.jl"},
			TrailArgs:  []string{"--quiet"},
			FileCheck:  "cuopt_json_to_julia.jl",
			Parser:     parserObjectiveBareTime,
			PrepareEnv: prepareCondaEnv,
		},
		{
			Key:       "gams",
			Name:      "cuopt_json_to_gams",
			Command:   []string{"python", "cuopt_json_to_gams.py"},
			FileCheck: "cuopt_json_to_gams.py",
			Parser:    parserGams,
		},
	}
}

// SelectAdapters resolves a comma-separated key list against the registry,
// preserving the requested order. Every invalid key is reported, not just the
// first one.
func SelectAdapters(keys string) ([]Adapter, error) {
	registry := DefaultAdapters()
	byKey := make(map[string]Adapter, len(registry))
	valid := make([]string, 0, len(registry))
	for _, adapter := range registry {
		byKey[adapter.Key] = adapter
		valid = append(valid, adapter.Key)
	}
	var selected []Adapter
	var invalid []string
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		adapter, ok := byKey[key]
		if !ok {
			invalid = append(invalid, key)
			continue
		}
		selected = append(selected, adapter)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid solver key(s) %v, valid options: %v",
			strings.Join(invalid, ", "), strings.Join(valid, ", "))
	}
	return selected, nil
}

// CheckAdapterFiles verifies that every selected adapter program exists before
// any subprocess is launched, reporting all missing programs at once.
func CheckAdapterFiles(dir string, adapters []Adapter) error {
	var missing []string
	for _, adapter := range adapters {
		if _, err := os.Stat(filepath.Join(dir, adapter.FileCheck)); err != nil {
			missing = append(missing, adapter.FileCheck)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	for _, name := range missing {
		Logger.Errorf("required adapter program not found: %v", name)
	}
	return fmt.Errorf("missing %v adapter program(s)", len(missing))
}

const condaEnvName = "cuopt_dev"

// prepareCondaEnv points the subprocess at the cuopt_dev conda environment.
// The Julia front-end loads libcuopt through the dynamic linker, so the
// environment's lib directory has to be on LD_LIBRARY_PATH. When the current
// CONDA_PREFIX is a different environment, a sibling cuopt_dev installation
// is used instead if one exists.
func prepareCondaEnv(environ []string) []string {
	vars := environMap(environ)
	prefix := vars["CONDA_PREFIX"]
	if prefix != "" && !strings.HasSuffix(prefix, condaEnvName) {
		candidate := filepath.Join(filepath.Dir(prefix), condaEnvName)
		if _, err := os.Stat(candidate); err == nil {
			prefix = candidate
			vars["CONDA_PREFIX"] = prefix
			bin := filepath.Join(candidate, "bin")
			if _, err := os.Stat(bin); err == nil {
				vars["PATH"] = bin + ":" + vars["PATH"]
			}
		}
	}
	if prefix != "" {
		vars["LD_LIBRARY_PATH"] = prefix + "/lib:" + vars["LD_LIBRARY_PATH"]
	}
	return environList(vars)
}

func environMap(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))
	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok {
			vars[key] = value
		}
	}
	return vars
}

func environList(vars map[string]string) []string {
	environ := make([]string, 0, len(vars))
	for key, value := range vars {
		environ = append(environ, key+"="+value)
	}
	sort.Strings(environ)
	return environ
}
