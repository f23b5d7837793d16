package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Runner drives every selected adapter over every problem instance and
// persists one results row per instance as soon as it completes.
type Runner struct {
	Config   Config
	Adapters []Adapter
	Bench    *Benchmark
}

func NewRunner(config Config, adapters []Adapter) *Runner {
	return &Runner{
		Config:   config,
		Adapters: adapters,
		Bench:    &Benchmark{Timeout: config.Timeout, Dir: config.ProgramDir},
	}
}

func (r *Runner) Run(dir string, filterFile string) error {
	Logger.Infof("start benchmark")
	info := HostStat()
	Logger.Infof("host stat: %+v", info)

	problems, err := FindProblems(dir)
	if err != nil {
		return err
	}
	if filterFile != "" {
		allow, err := ReadFilterList(filterFile)
		if err != nil {
			return err
		}
		problems = FilterProblems(problems, allow)
		if len(problems) == 0 {
			return fmt.Errorf("no JSON problem files match the filter %v", filterFile)
		}
		Logger.Infof("filter %v kept %v problem file(s)", filterFile, len(problems))
	}
	if err := CheckAdapterFiles(r.Bench.Dir, r.Adapters); err != nil {
		return err
	}

	names := make([]string, 0, len(r.Adapters))
	for _, adapter := range r.Adapters {
		names = append(names, adapter.Name)
	}
	Logger.Infof("benchmarking %v problem file(s) with %v", len(problems), strings.Join(names, ", "))
	for _, problem := range problems {
		Logger.Debugf("queued %v", filepath.Base(problem))
	}

	table, err := CreateResultsTable(r.Config.ResultsFile, r.Adapters)
	if err != nil {
		return err
	}
	defer table.Close()

	upload := r.setupUpload(info, dir, names)
	defer upload.Close()

	start := time.Now()
	rows := make([]InstanceResult, 0, len(problems))
	for i, problem := range problems {
		Logger.Infof("[%v/%v] benchmarking %v", i+1, len(problems), filepath.Base(problem))
		row := r.BenchmarkFile(problem)
		rows = append(rows, row)
		if err := table.Append(row); err != nil {
			return err
		}
		upload.Upload(row)
	}
	Logger.Infof("benchmark finished in %.2f seconds", time.Since(start).Seconds())

	PrintRunSummary(os.Stdout, rows, r.Adapters)

	resultsPath, err := filepath.Abs(r.Config.ResultsFile)
	if err != nil {
		resultsPath = r.Config.ResultsFile
	}
	Logger.Infof("results saved to %v", resultsPath)
	return nil
}

// BenchmarkFile runs every selected adapter on one problem file. Individual
// adapter failures are recorded in the row, never fatal, so one broken
// front-end cannot sink a whole batch.
func (r *Runner) BenchmarkFile(problem string) InstanceResult {
	row := InstanceResult{
		Filename: filepath.Base(problem),
		Results:  make(map[string]AdapterResult, len(r.Adapters)),
	}
	for _, adapter := range r.Adapters {
		Logger.Infof("running %v", adapter.Name)
		var environ []string
		if adapter.PrepareEnv != nil {
			environ = adapter.PrepareEnv(os.Environ())
		}
		invocation := r.Bench.RunCmd(adapter.Argv(problem), environ)

		result := AdapterResult{TotalTime: invocation.TotalTime}
		if invocation.Succeeded() {
			objective, solverTime := adapter.Parser.Parse(invocation.Stdout)
			if objective != nil {
				rounded := roundTo(*objective, 6)
				objective = &rounded
			}
			result.Objective = objective
			result.SolverTime = solverTime
			Logger.Infof("%v: objective=%v solver_time=%v total_time=%.3fs",
				adapter.Name, logOptFloat(objective), logOptFloat(solverTime), invocation.TotalTime)
		} else {
			Logger.Warnf("%v failed (exit code %v): %v",
				adapter.Name, invocation.ExitCode, strings.TrimSpace(invocation.FailureReason()))
		}
		row.Results[adapter.Name] = result
	}
	return row
}

func logOptFloat(value *float64) string {
	if value == nil {
		return "none"
	}
	return formatFloat(*value)
}

// resultsUpload wraps the optional remote mirror. The zero value is the
// disabled state and swallows every call.
type resultsUpload struct {
	storage  *Storage
	db       *sql.DB
	adapters []Adapter
}

func (r *Runner) setupUpload(info SysInfo, dir string, names []string) *resultsUpload {
	if !r.Config.DB.Enabled() {
		return &resultsUpload{}
	}
	storage := NewStorage(r.Config.DB)
	name := r.Config.DB.Name
	if name == "" {
		name = fmt.Sprintf("cuopt-bench-%v", time.Now().Unix())
		if err := storage.CreateDatabase(name); err != nil {
			Logger.Warnf("results upload disabled, failed to create database %v: %v", name, err)
			return &resultsUpload{}
		}
	}
	db, err := storage.ConnectDb(name)
	if err != nil {
		Logger.Warnf("results upload disabled, failed to connect to database %v: %v", name, err)
		return &resultsUpload{}
	}
	meta := info.Parameters()
	meta["solvers"] = strings.Join(names, ",")
	meta["directory"] = dir
	if err := storage.InitResultsDb(db, meta); err != nil {
		db.Close()
		Logger.Warnf("results upload disabled, failed to initialize database %v: %v", name, err)
		return &resultsUpload{}
	}
	if r.Config.DB.Name != "" {
		// parameters are seeded once, so a reused database keeps the run
		// description of its first run
		parameters, err := storage.Parameters(db)
		if err != nil {
			Logger.Warnf("failed to read run description from database %v: %v", name, err)
		} else {
			Logger.Infof("database %v stores run description %v", name, parameters)
		}
	}
	Logger.Infof("uploading results to %v", storage.DbLink(name))
	return &resultsUpload{storage: storage, db: db, adapters: r.Adapters}
}

func (u *resultsUpload) Upload(row InstanceResult) {
	if u.db == nil {
		return
	}
	if err := u.storage.UploadRow(u.db, row, u.adapters); err != nil {
		Logger.Warnf("failed to upload results row for %v: %v", row.Filename, err)
	}
}

func (u *resultsUpload) Close() {
	if u.db != nil {
		u.db.Close()
	}
}

// PrintRunSummary writes the end-of-run fixed-width table, one column per
// adapter showing objective, solver time and total time.
func PrintRunSummary(w io.Writer, rows []InstanceResult, adapters []Adapter) {
	fmt.Fprintf(w, "\nSummary Table:\n")
	separator := strings.Repeat("-", 20+25*len(adapters))
	fmt.Fprintln(w, separator)
	header := fmt.Sprintf("%-20v", "File")
	subheader := strings.Repeat(" ", 20)
	for _, adapter := range adapters {
		header += fmt.Sprintf("%-25v", adapter.Name)
		subheader += fmt.Sprintf("%-25v", "Obj / SolverT / TotalT")
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, subheader)
	fmt.Fprintln(w, separator)
	for _, row := range rows {
		line := fmt.Sprintf("%-20v", truncate(row.Filename, 19))
		for _, adapter := range adapters {
			line += fmt.Sprintf("%-25v", truncate(summaryCell(row.Results[adapter.Name]), 24))
		}
		fmt.Fprintln(w, line)
	}
}

func summaryCell(result AdapterResult) string {
	if result.Objective == nil {
		return "FAILED"
	}
	if result.SolverTime == nil {
		return fmt.Sprintf("%.2f/--/%.3f", *result.Objective, result.TotalTime)
	}
	return fmt.Sprintf("%.2f/%.3f/%.3f", *result.Objective, *result.SolverTime, result.TotalTime)
}
