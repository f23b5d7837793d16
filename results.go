package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// Column suffixes of the results table. The analyzer rediscovers adapters
// from these, so the writer and the reader must agree on them exactly.
const (
	objectiveSuffix  = "_objective"
	solverTimeSuffix = "_solver_time"
	totalTimeSuffix  = "_total_time"
)

// AdapterResult is one adapter's measurement on one problem instance.
// Objective and SolverTime are nil when the invocation failed or the output
// could not be scraped; TotalTime is always measured.
type AdapterResult struct {
	Objective  *float64
	SolverTime *float64
	TotalTime  float64
}

// InstanceResult is one results row: a problem file plus the measurement of
// every adapter that ran on it, keyed by adapter name.
type InstanceResult struct {
	Filename string
	Results  map[string]AdapterResult
}

// ResultsTable is the durable CSV store the analyzer consumes. The file is
// truncated on creation so the header always matches the current adapter
// selection, and every appended row is flushed straight to disk so the table
// tracks progress while a long batch is still running.
type ResultsTable struct {
	file     *os.File
	writer   *csv.Writer
	adapters []Adapter
}

func CreateResultsTable(path string, adapters []Adapter) (*ResultsTable, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create results table %v: %w", path, err)
	}
	header := make([]string, 0, 1+3*len(adapters))
	header = append(header, "filename")
	for _, adapter := range adapters {
		header = append(header,
			adapter.Name+objectiveSuffix,
			adapter.Name+solverTimeSuffix,
			adapter.Name+totalTimeSuffix)
	}
	table := &ResultsTable{file: file, writer: csv.NewWriter(file), adapters: adapters}
	if err := table.writeRecord(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write results header: %w", err)
	}
	return table, nil
}

// Append persists one instance row. Adapters missing from the row serialize
// as empty fields, as do nil measurements.
func (t *ResultsTable) Append(row InstanceResult) error {
	record := make([]string, 0, 1+3*len(t.adapters))
	record = append(record, row.Filename)
	for _, adapter := range t.adapters {
		result, ok := row.Results[adapter.Name]
		if !ok {
			record = append(record, "", "", "")
			continue
		}
		record = append(record,
			formatOptFloat(result.Objective),
			formatOptFloat(result.SolverTime),
			formatFloat(result.TotalTime))
	}
	if err := t.writeRecord(record); err != nil {
		return fmt.Errorf("failed to append results row for %v: %w", row.Filename, err)
	}
	return nil
}

func (t *ResultsTable) writeRecord(record []string) error {
	if err := t.writer.Write(record); err != nil {
		return err
	}
	t.writer.Flush()
	if err := t.writer.Error(); err != nil {
		return err
	}
	return t.file.Sync()
}

func (t *ResultsTable) Close() error {
	return t.file.Close()
}

// formatFloat renders plain decimal text with the shortest digit string that
// round-trips, never scientific notation.
func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatOptFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return formatFloat(*value)
}

// roundTo rounds value to the given number of decimal places. Objectives are
// stored rounded to 6 places so text round-trips compare cleanly.
func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
