package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectAdaptersDefault(t *testing.T) {
	adapters, err := SelectAdapters(DefaultSolverKeys)
	require.Nil(t, err)
	require.Equal(t, 7, len(adapters))
	require.Equal(t, "cuopt_json_to_c_api", adapters[0].Name)
	require.Equal(t, "cuopt_json_to_gams", adapters[6].Name)
}

func TestSelectAdaptersKeepsRequestedOrder(t *testing.T) {
	adapters, err := SelectAdapters("gams, C")
	require.Nil(t, err)
	require.Equal(t, 2, len(adapters))
	require.Equal(t, "cuopt_json_to_gams", adapters[0].Name)
	require.Equal(t, "cuopt_json_to_c_api", adapters[1].Name)
}

func TestSelectAdaptersReportsEveryInvalidKey(t *testing.T) {
	_, err := SelectAdapters("C,x1,python,x2")
	require.ErrorContains(t, err, "x1, x2")
	require.ErrorContains(t, err, "C, python, cvxpy, pulp, ampl, julia, gams")
}

func TestAdapterArgv(t *testing.T) {
	adapters, err := SelectAdapters("julia")
	require.Nil(t, err)
	argv := adapters[0].Argv("problems/lp1.json")
	require.Equal(t, []string{"./cuopt_json_to_julia.jl", "problems/lp1.json", "--quiet"}, argv)

	adapters, err = SelectAdapters("cvxpy")
	require.Nil(t, err)
	argv = adapters[0].Argv("lp1.json")
	require.Equal(t, []string{"python", "cuopt_json_to_cvxpy.py", "--solver_verbose", "lp1.json"}, argv)
}

func TestCheckAdapterFiles(t *testing.T) {
	dir := t.TempDir()
	adapters, err := SelectAdapters("C,python")
	require.Nil(t, err)

	err = CheckAdapterFiles(dir, adapters)
	require.ErrorContains(t, err, "missing 2 adapter program(s)")

	require.Nil(t, os.WriteFile(filepath.Join(dir, "cuopt_json_to_c_api"), []byte("#!/bin/sh\n"), 0o755))
	err = CheckAdapterFiles(dir, adapters)
	require.ErrorContains(t, err, "missing 1 adapter program(s)")

	require.Nil(t, os.WriteFile(filepath.Join(dir, "cuopt_json_to_python_api.py"), nil, 0o644))
	require.Nil(t, CheckAdapterFiles(dir, adapters))
}

func TestPrepareCondaEnvRelocates(t *testing.T) {
	root := t.TempDir()
	other := filepath.Join(root, "base")
	target := filepath.Join(root, "cuopt_dev")
	require.Nil(t, os.MkdirAll(filepath.Join(target, "bin"), 0o755))
	require.Nil(t, os.MkdirAll(other, 0o755))

	environ := prepareCondaEnv([]string{
		"CONDA_PREFIX=" + other,
		"PATH=/usr/bin",
		"LD_LIBRARY_PATH=/usr/lib",
	})
	vars := environMap(environ)
	require.Equal(t, target, vars["CONDA_PREFIX"])
	require.Equal(t, filepath.Join(target, "bin")+":/usr/bin", vars["PATH"])
	require.Equal(t, target+"/lib:/usr/lib", vars["LD_LIBRARY_PATH"])
}

func TestPrepareCondaEnvAlreadyActive(t *testing.T) {
	root := t.TempDir()
	prefix := filepath.Join(root, "cuopt_dev")
	require.Nil(t, os.MkdirAll(prefix, 0o755))

	environ := prepareCondaEnv([]string{"CONDA_PREFIX=" + prefix, "PATH=/usr/bin"})
	vars := environMap(environ)
	require.Equal(t, prefix, vars["CONDA_PREFIX"])
	require.Equal(t, "/usr/bin", vars["PATH"])
	require.Equal(t, prefix+"/lib:", vars["LD_LIBRARY_PATH"])
}

func TestPrepareCondaEnvMissingSibling(t *testing.T) {
	root := t.TempDir()
	other := filepath.Join(root, "base")
	require.Nil(t, os.MkdirAll(other, 0o755))

	environ := prepareCondaEnv([]string{"CONDA_PREFIX=" + other, "PATH=/usr/bin"})
	vars := environMap(environ)
	require.Equal(t, other, vars["CONDA_PREFIX"])
	require.Equal(t, "/usr/bin", vars["PATH"])
	require.Equal(t, other+"/lib:", vars["LD_LIBRARY_PATH"])
}

func TestPrepareCondaEnvWithoutConda(t *testing.T) {
	environ := prepareCondaEnv([]string{"PATH=/usr/bin"})
	require.Equal(t, []string{"PATH=/usr/bin"}, environ)
}
