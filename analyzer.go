package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// TimeMetric selects which measured time drives the primary comparison.
type TimeMetric string

const (
	MetricTotal  TimeMetric = "total"
	MetricSolver TimeMetric = "solver"
)

func (m TimeMetric) Valid() bool { return m == MetricTotal || m == MetricSolver }

func (m TimeMetric) Label() string {
	if m == MetricSolver {
		return "Solver Time"
	}
	return "Total Time"
}

// pick reads the metric's time from a sample. The sample must be complete.
func (m TimeMetric) pick(sample AdapterSample) float64 {
	if m == MetricSolver {
		return *sample.SolverTime
	}
	return *sample.TotalTime
}

const (
	// Objective agreement tolerance, math.isclose style.
	objectiveRelTol = 1e-6
	objectiveAbsTol = 1e-9

	// A solver time is flagged as a deviation only when it is both more than
	// 1% and more than 1ms above the fastest solver time, so sub-millisecond
	// jitter never raises flags.
	deviationPctThreshold = 1.0
	deviationAbsThreshold = 0.001

	// Guards the percentage math when the fastest time is zero.
	minDenominator = 1e-9
)

type RowStatus string

const (
	StatusSuccess   RowStatus = "SUCCESS"
	StatusAllFailed RowStatus = "ALL_FAILED"
)

// AdapterSample is one adapter's parsed measurements on one results row. A
// field that was empty or unparseable is nil; an unparseable field poisons
// the whole sample.
type AdapterSample struct {
	Objective  *float64
	SolverTime *float64
	TotalTime  *float64
}

func (s AdapterSample) Complete() bool {
	return s.Objective != nil && s.SolverTime != nil && s.TotalTime != nil
}

// RowAnalysis is the full cross-adapter comparison for one problem instance.
type RowAnalysis struct {
	Filename string
	Metric   TimeMetric
	Samples  map[string]AdapterSample

	Successful []string // discovery order
	Failed     []string // discovery order
	Status     RowStatus

	ObjectiveConsistent bool

	Fastest     string // by the primary metric
	FastestTime float64
	TimeDiffs   map[string]float64 // percent above FastestTime, 0 for the winner

	FastestSolver     string // by pure solver time, always computed
	FastestSolverTime float64
	SolverTimeDiffs   map[string]float64
	Deviations        map[string]float64 // flagged solver time excesses, percent
}

// AnalyzeRow compares every adapter's measurements on one results row. It is
// a pure function of its inputs: analyzing the same row twice gives the same
// analysis.
func AnalyzeRow(row map[string]string, adapters []string, metric TimeMetric) RowAnalysis {
	analysis := RowAnalysis{
		Filename: row["filename"],
		Metric:   metric,
		Samples:  make(map[string]AdapterSample, len(adapters)),
	}
	for _, name := range adapters {
		sample := parseSample(row, name)
		analysis.Samples[name] = sample
		if sample.Complete() {
			analysis.Successful = append(analysis.Successful, name)
		} else {
			analysis.Failed = append(analysis.Failed, name)
		}
	}
	if len(analysis.Successful) == 0 {
		analysis.Status = StatusAllFailed
		return analysis
	}

	analysis.ObjectiveConsistent = analysis.objectivesAgree()

	analysis.Fastest, analysis.FastestTime = analysis.fastestBy(metric.pick)
	analysis.TimeDiffs = analysis.diffsAgainst(metric.pick, analysis.FastestTime)

	solverTime := func(s AdapterSample) float64 { return *s.SolverTime }
	analysis.FastestSolver, analysis.FastestSolverTime = analysis.fastestBy(solverTime)
	analysis.SolverTimeDiffs = analysis.diffsAgainst(solverTime, analysis.FastestSolverTime)

	analysis.Deviations = make(map[string]float64)
	for _, name := range analysis.Successful {
		pct := analysis.SolverTimeDiffs[name]
		abs := *analysis.Samples[name].SolverTime - analysis.FastestSolverTime
		if pct > deviationPctThreshold && abs > deviationAbsThreshold {
			analysis.Deviations[name] = pct
		}
	}
	analysis.Status = StatusSuccess
	return analysis
}

func parseSample(row map[string]string, name string) AdapterSample {
	bad := false
	sample := AdapterSample{
		Objective:  parseField(row[name+objectiveSuffix], &bad),
		SolverTime: parseField(row[name+solverTimeSuffix], &bad),
		TotalTime:  parseField(row[name+totalTimeSuffix], &bad),
	}
	if bad {
		return AdapterSample{}
	}
	return sample
}

func parseField(value string, bad *bool) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*bad = true
		return nil
	}
	return &parsed
}

// objectivesAgree reports whether all successful adapters found the same
// objective: either every value rounds to the same 6 decimals, or every value
// is within tolerance of the first adapter's value.
func (a *RowAnalysis) objectivesAgree() bool {
	rounded := make(map[float64]struct{}, len(a.Successful))
	for _, name := range a.Successful {
		rounded[roundTo(*a.Samples[name].Objective, 6)] = struct{}{}
	}
	if len(rounded) == 1 {
		return true
	}
	reference := *a.Samples[a.Successful[0]].Objective
	for _, name := range a.Successful {
		if !isClose(*a.Samples[name].Objective, reference, objectiveRelTol, objectiveAbsTol) {
			return false
		}
	}
	return true
}

// fastestBy returns the first adapter holding the minimal value, in
// discovery order, so exact ties always resolve the same way.
func (a *RowAnalysis) fastestBy(value func(AdapterSample) float64) (string, float64) {
	fastest := a.Successful[0]
	best := value(a.Samples[fastest])
	for _, name := range a.Successful[1:] {
		if v := value(a.Samples[name]); v < best {
			fastest, best = name, v
		}
	}
	return fastest, best
}

func (a *RowAnalysis) diffsAgainst(value func(AdapterSample) float64, fastest float64) map[string]float64 {
	diffs := make(map[string]float64, len(a.Successful))
	for _, name := range a.Successful {
		if v := value(a.Samples[name]); v == fastest {
			diffs[name] = 0
		} else {
			diffs[name] = pctDiff(v, fastest)
		}
	}
	return diffs
}

func pctDiff(value, reference float64) float64 {
	return (value - reference) / math.Max(reference, minDenominator) * 100
}

func isClose(a, b, relTol, absTol float64) bool {
	return math.Abs(a-b) <= math.Max(relTol*math.Max(math.Abs(a), math.Abs(b)), absTol)
}

// DiscoverAdapters extracts adapter names from the results header. A name
// counts only when all three of its columns are present. The sorted result
// is the discovery order every downstream tie-break uses.
func DiscoverAdapters(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, header := range headers {
		present[header] = true
	}
	var names []string
	for _, header := range headers {
		name, ok := strings.CutSuffix(header, objectiveSuffix)
		if !ok {
			continue
		}
		if present[name+solverTimeSuffix] && present[name+totalTimeSuffix] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return slices.Compact(names)
}

// TimeColumns lists the headers that look time-related, used to explain a
// failed adapter discovery.
func TimeColumns(headers []string) []string {
	var columns []string
	for _, header := range headers {
		if strings.Contains(header, "_time") {
			columns = append(columns, header)
		}
	}
	return columns
}

// LoadResults reads the results CSV into a header slice plus one loosely
// typed map per data row. Short records simply leave columns unset, matching
// how partially written rows from an interrupted run look.
func LoadResults(path string) ([]string, []map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read results file %v: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("results file %v is empty", path)
	}
	headers := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// Analyze runs the row comparison over the whole table, preserving row order.
func Analyze(rows []map[string]string, adapters []string, metric TimeMetric) []RowAnalysis {
	analyses := make([]RowAnalysis, 0, len(rows))
	for _, row := range rows {
		analyses = append(analyses, AnalyzeRow(row, adapters, metric))
	}
	return analyses
}
