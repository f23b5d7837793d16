package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransformCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "model.mps")
	mpsText := `NAME          SAMPLE
ROWS
 N  obj
 G  c1
COLUMNS
    x         obj          1.0   c1           1.0
    y         obj          2.0   c1           1.0
RHS
    rhs       c1           1.0
ENDATA
`
	require.Nil(t, os.WriteFile(input, []byte(mpsText), 0o644))

	transformCmd([]string{"-tol", `{"optimality": 1e-8}`, "-tl", "5000", input})

	data, err := os.ReadFile(filepath.Join(dir, "model.json"))
	require.Nil(t, err)
	require.JSONEq(t, `{
		"csr_constraint_matrix": {"offsets": [0, 2], "indices": [0, 1], "values": [1, 1]},
		"constraint_bounds": {"upper_bounds": ["inf"], "lower_bounds": [1]},
		"objective_data": {"coefficients": [1, 2], "offset": 0},
		"variable_bounds": {"upper_bounds": ["inf", "inf"], "lower_bounds": [0, 0]},
		"variable_types": ["C", "C"],
		"variable_names": ["x", "y"],
		"maximize": false,
		"solver_config": {"tolerances": {"optimality": 1e-8}, "time_limit": 5000}
	}`, string(data))
}

func TestTransformCmdDropsVariableNames(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tiny.mps")
	require.Nil(t, os.WriteFile(input, []byte("NAME\nROWS\n N  obj\nCOLUMNS\n    x  obj  1.0\nENDATA\n"), 0o644))
	output := filepath.Join(dir, "out.json")

	transformCmd([]string{"-o", output, "-nv", input})

	data, err := os.ReadFile(output)
	require.Nil(t, err)
	require.NotContains(t, string(data), "variable_names")
	require.Contains(t, string(data), `"solver_config":{}`)
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, "model.json", outputPath("model.mps", ""))
	require.Equal(t, "data.lp.json", outputPath("data.lp", ""))
	require.Equal(t, "custom.json", outputPath("model.mps", "custom.json"))
}

func TestResolveTolerances(t *testing.T) {
	raw, err := resolveTolerances(`{"absolute_primal": 1e-6}`)
	require.Nil(t, err)
	require.Equal(t, json.RawMessage(`{"absolute_primal": 1e-6}`), raw)

	_, err = resolveTolerances(`{broken`)
	require.ErrorContains(t, err, "not valid JSON")

	path := filepath.Join(t.TempDir(), "tolerances.json")
	require.Nil(t, os.WriteFile(path, []byte(`{"relative_gap": 1e-4}`+"\n"), 0o644))
	raw, err = resolveTolerances(path)
	require.Nil(t, err)
	require.Equal(t, json.RawMessage(`{"relative_gap": 1e-4}`), raw)

	_, err = resolveTolerances(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "failed to read tolerances file")
}
