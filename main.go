package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: cuopt-benchmark <command> [flags] [arguments]

commands:
  run [flags] [directory]      benchmark the selected cuOpt front-ends over a directory of JSON problems
  analyze [flags] [csv-file]   compare front-ends from a benchmark results table
  transform [flags] file.mps   convert an MPS model to cuOpt JSON input

run 'cuopt-benchmark <command> -h' to see command flags
`)
	os.Exit(2)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		Logger.Warnf("failed to load .env file: %v", err)
	}
	// The logger initializes before the .env file is read, so LOG_LEVEL from
	// the file is applied here.
	if level, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if parsed, err := zap.ParseAtomicLevel(level); err == nil {
			AtomicLevel.SetLevel(parsed.Level())
		}
	}

	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "analyze":
		analyzeCmd(os.Args[2:])
	case "transform":
		transformCmd(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
	}
}

func runCmd(args []string) {
	flags := flag.NewFlagSet("run", flag.ExitOnError)
	solvers := flags.String("solvers", DefaultSolverKeys, "comma-separated adapter keys to benchmark")
	var filterFile string
	flags.StringVar(&filterFile, "f", "", "text file listing the problem files to include, one per line")
	flags.StringVar(&filterFile, "filter-file", "", "same as -f")
	flags.Parse(args)

	config, err := LoadConfig()
	if err != nil {
		Logger.Fatalf("failed to load config: %v", err)
	}
	adapters, err := SelectAdapters(*solvers)
	if err != nil {
		Logger.Fatalf("%v", err)
	}
	dir := flags.Arg(0)
	if dir == "" {
		dir = "."
	}
	if err := NewRunner(config, adapters).Run(dir, filterFile); err != nil {
		Logger.Fatalf("benchmark failed: %v", err)
	}
}

func analyzeCmd(args []string) {
	flags := flag.NewFlagSet("analyze", flag.ExitOnError)
	metricFlag := flags.String("time-metric", string(MetricTotal), "primary comparison metric: total or solver")
	showFailed := flags.Bool("show-failed", false, "list the problems where every adapter failed")
	flags.Parse(args)

	metric := TimeMetric(*metricFlag)
	if !metric.Valid() {
		Logger.Fatalf("invalid time metric %q: want %q or %q", *metricFlag, MetricTotal, MetricSolver)
	}
	config, err := LoadConfig()
	if err != nil {
		Logger.Fatalf("failed to load config: %v", err)
	}
	path := flags.Arg(0)
	if path == "" {
		path = config.ResultsFile
	}
	if _, err := os.Stat(path); err != nil {
		Logger.Fatalf("results file %v not found, run the benchmark first", path)
	}
	headers, rows, err := LoadResults(path)
	if err != nil {
		Logger.Fatalf("%v", err)
	}
	adapters := DiscoverAdapters(headers)
	if len(adapters) == 0 {
		Logger.Errorf("no adapter columns found in %v, want {name}%v, {name}%v and {name}%v column triples",
			path, objectiveSuffix, solverTimeSuffix, totalTimeSuffix)
		if columns := TimeColumns(headers); len(columns) > 0 {
			Logger.Errorf("available time columns: %v", strings.Join(columns, ", "))
		}
		os.Exit(1)
	}
	if len(rows) == 0 {
		Logger.Fatalf("no data found in %v", path)
	}

	fmt.Printf("Discovered %v solvers: %v\n", len(adapters), displayList(adapters))
	fmt.Printf("Primary Analysis Metric: %v\n", metric.Label())
	fmt.Println("Note: Solver time deviations >1% and >1ms will be flagged regardless of primary metric.")

	analyses := Analyze(rows, adapters, metric)
	PrintDetailedAnalysis(os.Stdout, analyses, adapters, *showFailed)
	PrintSummaryTable(os.Stdout, analyses)
	PrintOverallStats(os.Stdout, analyses, adapters)
	fmt.Printf("\nAnalyzed %v problems from %v\n", len(analyses), path)
}
