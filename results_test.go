package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultsTableHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	adapters, err := SelectAdapters("C,gams")
	require.Nil(t, err)

	table, err := CreateResultsTable(path, adapters)
	require.Nil(t, err)
	require.Nil(t, table.Close())

	data, err := os.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, "filename,"+
		"cuopt_json_to_c_api_objective,cuopt_json_to_c_api_solver_time,cuopt_json_to_c_api_total_time,"+
		"cuopt_json_to_gams_objective,cuopt_json_to_gams_solver_time,cuopt_json_to_gams_total_time\n",
		string(data))
}

func TestResultsTableAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	adapters, err := SelectAdapters("C,python")
	require.Nil(t, err)

	table, err := CreateResultsTable(path, adapters)
	require.Nil(t, err)

	objective := 12.5
	solverTime := 0.25
	row := InstanceResult{
		Filename: "lp1.json",
		Results: map[string]AdapterResult{
			"cuopt_json_to_c_api":  {Objective: &objective, SolverTime: &solverTime, TotalTime: 1.5},
			"cuopt_json_to_python": {TotalTime: 2.25},
		},
	}
	require.Nil(t, table.Append(row))

	// every append is flushed, so the row is readable before Close
	headers, rows, err := LoadResults(path)
	require.Nil(t, err)
	require.Equal(t, 7, len(headers))
	require.Equal(t, 1, len(rows))
	require.Equal(t, "lp1.json", rows[0]["filename"])
	require.Equal(t, "12.5", rows[0]["cuopt_json_to_c_api_objective"])
	require.Equal(t, "0.25", rows[0]["cuopt_json_to_c_api_solver_time"])
	require.Equal(t, "1.5", rows[0]["cuopt_json_to_c_api_total_time"])
	require.Equal(t, "", rows[0]["cuopt_json_to_python_objective"])
	require.Equal(t, "", rows[0]["cuopt_json_to_python_solver_time"])
	require.Equal(t, "2.25", rows[0]["cuopt_json_to_python_total_time"])
	require.Nil(t, table.Close())
}

func TestResultsTableMissingAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	adapters, err := SelectAdapters("C")
	require.Nil(t, err)

	table, err := CreateResultsTable(path, adapters)
	require.Nil(t, err)
	require.Nil(t, table.Append(InstanceResult{Filename: "lp1.json", Results: map[string]AdapterResult{}}))
	require.Nil(t, table.Close())

	_, rows, err := LoadResults(path)
	require.Nil(t, err)
	require.Equal(t, "", rows[0]["cuopt_json_to_c_api_objective"])
	require.Equal(t, "", rows[0]["cuopt_json_to_c_api_solver_time"])
	require.Equal(t, "", rows[0]["cuopt_json_to_c_api_total_time"])
}

func TestResultsTableTruncatesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.Nil(t, os.WriteFile(path, []byte("stale header\nstale row\n"), 0o644))

	adapters, err := SelectAdapters("C")
	require.Nil(t, err)
	table, err := CreateResultsTable(path, adapters)
	require.Nil(t, err)
	require.Nil(t, table.Close())

	data, err := os.ReadFile(path)
	require.Nil(t, err)
	require.NotContains(t, string(data), "stale")
}

func TestFormatFloat(t *testing.T) {
	require.Equal(t, "12.5", formatFloat(12.5))
	require.Equal(t, "-464.753143", formatFloat(-464.753143))
	require.Equal(t, "0.000001", formatFloat(0.000001))
	require.Equal(t, "", formatOptFloat(nil))
	value := 2.0
	require.Equal(t, "2", formatOptFloat(&value))
}

func TestRoundTo(t *testing.T) {
	require.Equal(t, 1.234567, roundTo(1.23456749, 6))
	require.Equal(t, 3.1416, roundTo(3.14159265, 4))
	require.Equal(t, -464.753143, roundTo(-464.7531428571, 6))
}
