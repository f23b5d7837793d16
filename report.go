package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

var displayNames = map[string]string{
	"cuopt_json_to_c_api":  "C API",
	"cuopt_json_to_python": "Python API",
	"cuopt_json_to_cvxpy":  "CVXPY",
	"cuopt_json_to_pulp":   "PuLP",
	"cuopt_json_to_ampl":   "AMPL",
	"cuopt_json_to_julia":  "Julia",
}

// DisplayName renders an adapter column prefix for humans. Unknown names get
// title-cased with the cuOpt brand spelling fixed up.
func DisplayName(name string) string {
	if display, ok := displayNames[name]; ok {
		return display
	}
	words := strings.Split(name, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	display := strings.Join(words, " ")
	if after, ok := strings.CutPrefix(display, "Cuopt "); ok {
		display = "cuOpt " + after
	}
	return display
}

func displayList(names []string) string {
	displays := make([]string, 0, len(names))
	for _, name := range names {
		displays = append(displays, DisplayName(name))
	}
	return strings.Join(displays, ", ")
}

// PrintDetailedAnalysis writes the long-form report: run counters, fastest
// counts, consistency warnings and a per-problem breakdown. Rows where every
// adapter failed are listed only when showAll is set.
func PrintDetailedAnalysis(w io.Writer, analyses []RowAnalysis, adapters []string, showAll bool) {
	if len(analyses) == 0 {
		return
	}
	metric := analyses[0].Metric
	label := metric.Label()

	fmt.Fprintln(w, "DETAILED BENCHMARK ANALYSIS")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	overhead := "included"
	if metric == MetricSolver {
		overhead = "excluded"
	}
	fmt.Fprintf(w, "Primary Metric: %v (overhead %v)\n", label, overhead)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	successful := 0
	for _, analysis := range analyses {
		if analysis.Status == StatusSuccess {
			successful++
		}
	}
	fmt.Fprintf(w, "Total problems analyzed: %v\n", len(analyses))
	fmt.Fprintf(w, "Successfully solved: %v\n", successful)
	fmt.Fprintf(w, "Failed problems: %v\n", len(analyses)-successful)
	if successful == 0 {
		fmt.Fprintln(w, "No successful results to analyze!")
		return
	}

	fastestCounts := make(map[string]int)
	fastestSolverCounts := make(map[string]int)
	var fastestOrder, fastestSolverOrder []string
	inconsistent := 0
	deviationProblems := 0
	for _, analysis := range analyses {
		if analysis.Status != StatusSuccess {
			continue
		}
		if fastestCounts[analysis.Fastest] == 0 {
			fastestOrder = append(fastestOrder, analysis.Fastest)
		}
		fastestCounts[analysis.Fastest]++
		if fastestSolverCounts[analysis.FastestSolver] == 0 {
			fastestSolverOrder = append(fastestSolverOrder, analysis.FastestSolver)
		}
		fastestSolverCounts[analysis.FastestSolver]++
		if !analysis.ObjectiveConsistent {
			inconsistent++
		}
		if len(analysis.Deviations) > 0 {
			deviationProblems++
		}
	}

	fmt.Fprintf(w, "\nFASTEST SOLVER SUMMARY (%v):\n", strings.ToLower(label))
	fmt.Fprintln(w, strings.Repeat("-", 40))
	printFastestCounts(w, fastestOrder, fastestCounts, successful)

	fmt.Fprintf(w, "\nFASTEST SOLVER BY PURE SOLVER TIME:\n")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	printFastestCounts(w, fastestSolverOrder, fastestSolverCounts, successful)

	if deviationProblems > 0 {
		fmt.Fprintf(w, "\nWARNING: %v problems had interfaces with >1%% solver time deviation!\n", deviationProblems)
		fmt.Fprintln(w, "   This suggests potential interface inefficiencies beyond just overhead.")
	} else {
		fmt.Fprintf(w, "\nAll interfaces had consistent solver times (within 1 millisecond or 1%% of best)\n")
	}
	if inconsistent > 0 {
		fmt.Fprintf(w, "\nWARNING: %v problems had inconsistent objective values!\n", inconsistent)
	} else {
		fmt.Fprintf(w, "\nAll problems had consistent objective values across solvers\n")
	}

	fmt.Fprintf(w, "\nPROBLEM-BY-PROBLEM ANALYSIS:\n")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, analysis := range analyses {
		if analysis.Status != StatusSuccess && !showAll {
			continue
		}
		fmt.Fprintf(w, "\n%v\n", analysis.Filename)
		if analysis.Status == StatusAllFailed {
			fmt.Fprintln(w, "   All solvers failed")
			continue
		}
		if len(analysis.Failed) > 0 {
			fmt.Fprintf(w, "   Failed solvers: %v\n", displayList(analysis.Failed))
		}
		if !analysis.ObjectiveConsistent {
			fmt.Fprintln(w, "   Objective values differ:")
			for _, name := range analysis.Successful {
				fmt.Fprintf(w, "      %-15v: %v\n", DisplayName(name), formatFloat(*analysis.Samples[name].Objective))
			}
		}
		fmt.Fprintf(w, "   Fastest %v: %v (%.6fs)\n", strings.ToLower(label), DisplayName(analysis.Fastest), analysis.FastestTime)
		fmt.Fprintf(w, "   Fastest solver time: %v (%.6fs)\n", DisplayName(analysis.FastestSolver), analysis.FastestSolverTime)
		if len(analysis.Deviations) > 0 {
			fmt.Fprintln(w, "   Solver time deviations >1%:")
			for _, name := range sortedKeys(analysis.Deviations) {
				fmt.Fprintf(w, "      %-15v: +%6.1f%% (%.6fs)\n",
					DisplayName(name), analysis.Deviations[name], *analysis.Samples[name].SolverTime)
			}
		}
		if len(analysis.Successful) > 1 {
			fmt.Fprintf(w, "   %v differences:\n", label)
			for _, name := range sortedStrings(analysis.Successful) {
				sample := analysis.Samples[name]
				mainTime := metric.pick(sample)
				overheadTime := *sample.TotalTime - *sample.SolverTime
				overheadPct := 0.0
				if *sample.SolverTime > 0 {
					overheadPct = overheadTime / *sample.SolverTime * 100
				}
				if pct := analysis.TimeDiffs[name]; pct == 0 {
					fmt.Fprintf(w, "      %-15v: 0.0%% (%.6fs, overhead: %.6fs/%.1f%%)\n",
						DisplayName(name), mainTime, overheadTime, overheadPct)
				} else {
					fmt.Fprintf(w, "      %-15v: +%6.1f%% (%.6fs, overhead: %.6fs/%.1f%%)\n",
						DisplayName(name), pct, mainTime, overheadTime, overheadPct)
				}
			}
		}
	}
}

// printFastestCounts lists win counts in descending order; adapters with the
// same count keep their first-win order so reruns print identically.
func printFastestCounts(w io.Writer, order []string, counts map[string]int, successful int) {
	sorted := slices.Clone(order)
	slices.SortStableFunc(sorted, func(x, y string) int { return counts[y] - counts[x] })
	for _, name := range sorted {
		count := counts[name]
		percentage := float64(count) / float64(successful) * 100
		fmt.Fprintf(w, "%-15v: %3d problems (%5.1f%%)\n", DisplayName(name), count, percentage)
	}
}

// PrintSummaryTable writes the one-line-per-problem table over the rows where
// at least one adapter succeeded.
func PrintSummaryTable(w io.Writer, analyses []RowAnalysis) {
	successful := successfulOnly(analyses)
	if len(successful) == 0 {
		return
	}
	label := successful[0].Metric.Label()
	fmt.Fprintf(w, "\nSUMMARY TABLE (%v)\n", label)
	fmt.Fprintln(w, strings.Repeat("=", 120))
	fmt.Fprintf(w, "%-20v %-12v %-7v %-11v %-60v\n", "Problem", "Fastest", "Obj OK", "SolverT Dev", label+" Differences")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, analysis := range successful {
		objOK := "ok"
		if !analysis.ObjectiveConsistent {
			objOK = "DIFF"
		}
		deviation := "ok"
		if len(analysis.Deviations) > 0 {
			deviation = "FLAG"
		}
		diffs := make([]string, 0, len(analysis.Successful))
		for _, name := range sortedStrings(analysis.Successful) {
			if pct := analysis.TimeDiffs[name]; pct == 0 {
				diffs = append(diffs, fmt.Sprintf("%v: 0.0%%", DisplayName(name)))
			} else {
				diffs = append(diffs, fmt.Sprintf("%v: +%.1f%%", DisplayName(name), pct))
			}
		}
		fmt.Fprintf(w, "%-20v %-12v %-7v %-11v %-60v\n",
			truncate(analysis.Filename, 19),
			truncate(DisplayName(analysis.Fastest), 11),
			objOK,
			deviation,
			truncate(strings.Join(diffs, ", "), 59))
	}
}

// PrintOverallStats aggregates per-adapter speedups relative to the fastest
// adapter of each problem, plus the interface overhead on top of pure solver
// time.
func PrintOverallStats(w io.Writer, analyses []RowAnalysis, adapters []string) {
	successful := successfulOnly(analyses)
	if len(successful) == 0 {
		return
	}
	metric := successful[0].Metric
	label := metric.Label()

	speedups := make(map[string][]float64)
	solverSpeedups := make(map[string][]float64)
	overheads := make(map[string][]float64)
	for _, analysis := range successful {
		for _, name := range analysis.Successful {
			sample := analysis.Samples[name]
			speedups[name] = append(speedups[name],
				metric.pick(sample)/math.Max(analysis.FastestTime, minDenominator))
			solverSpeedups[name] = append(solverSpeedups[name],
				*sample.SolverTime/math.Max(analysis.FastestSolverTime, minDenominator))
			overheadTime := *sample.TotalTime - *sample.SolverTime
			overheadPct := 0.0
			if *sample.SolverTime > 0 {
				overheadPct = overheadTime / *sample.SolverTime * 100
			}
			overheads[name] = append(overheads[name], overheadPct)
		}
	}

	fmt.Fprintf(w, "\nOVERALL PERFORMANCE STATISTICS\n")
	fmt.Fprintln(w, strings.Repeat("=", 70))

	fmt.Fprintf(w, "%v Performance:\n", label)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, name := range adapters {
		if values := speedups[name]; len(values) > 0 {
			fmt.Fprintf(w, "%-15v: Avg %.2fx, Median %.2fx relative to fastest\n", DisplayName(name), mean(values), median(values))
		}
	}

	fmt.Fprintf(w, "\nSolver Time Performance:\n")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, name := range adapters {
		if values := solverSpeedups[name]; len(values) > 0 {
			fmt.Fprintf(w, "%-15v: Avg %.2fx, Median %.2fx relative to fastest\n", DisplayName(name), mean(values), median(values))
		}
	}

	fmt.Fprintf(w, "\nOverhead Analysis:\n")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, name := range adapters {
		if values := overheads[name]; len(values) > 0 {
			fmt.Fprintf(w, "%-15v: Avg %.1f%%, Median %.1f%% overhead\n", DisplayName(name), mean(values), median(values))
		}
	}
}

func successfulOnly(analyses []RowAnalysis) []RowAnalysis {
	successful := make([]RowAnalysis, 0, len(analyses))
	for _, analysis := range analyses {
		if analysis.Status == StatusSuccess {
			successful = append(successful, analysis)
		}
	}
	return successful
}

func mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// median uses the midpoint convention: the average of the two central values
// when the count is even.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sortedStrings(names []string) []string {
	sorted := slices.Clone(names)
	sort.Strings(sorted)
	return sorted
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
