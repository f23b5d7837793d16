package main

import (
	"database/sql"
	"database/sql/driver"
	"io"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeDB is a database/sql driver that serves canned rows for queries and
// records executed statements, so the upload layer runs against it instead
// of a live libsql database.
type fakeDB struct {
	columns []string
	rows    [][]driver.Value
	execs   []fakeExec
}

type fakeExec struct {
	query string
	args  []driver.Value
}

var (
	fakeParametersDB = &fakeDB{}
	fakeUploadDB     = &fakeDB{}
)

func init() {
	sql.Register("fake-parameters", fakeParametersDB)
	sql.Register("fake-upload", fakeUploadDB)
}

func (d *fakeDB) Open(name string) (driver.Conn, error) { return &fakeConn{db: d}, nil }

type fakeConn struct{ db *fakeDB }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{db: c.db, query: query}, nil
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return fakeTx{}, nil }

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

type fakeStmt struct {
	db    *fakeDB
	query string
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.db.execs = append(s.db.execs, fakeExec{query: s.query, args: slices.Clone(args)})
	return driver.RowsAffected(1), nil
}

func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return &fakeRows{db: s.db}, nil
}

type fakeRows struct {
	db   *fakeDB
	next int
}

func (r *fakeRows) Columns() []string { return r.db.columns }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.next >= len(r.db.rows) {
		return io.EOF
	}
	copy(dest, r.db.rows[r.next])
	r.next++
	return nil
}

func TestParametersReadback(t *testing.T) {
	fakeParametersDB.columns = []string{"name", "value"}
	fakeParametersDB.rows = [][]driver.Value{
		{"hostname", "bench-host"},
		{"solvers", "cuopt_json_to_c_api,cuopt_json_to_python"},
		{"time", "2026-08-01 09:30:00"},
	}
	db, err := sql.Open("fake-parameters", "")
	require.Nil(t, err)
	defer db.Close()

	storage := &Storage{}
	parameters, err := storage.Parameters(db)
	require.Nil(t, err)
	require.Equal(t, map[string]string{
		"hostname": "bench-host",
		"solvers":  "cuopt_json_to_c_api,cuopt_json_to_python",
		"time":     "2026-08-01 09:30:00",
	}, parameters)
}

func TestUploadRowSkipsMissingAdapters(t *testing.T) {
	fakeUploadDB.execs = nil
	db, err := sql.Open("fake-upload", "")
	require.Nil(t, err)
	defer db.Close()

	objective := 42.5
	solverTime := 0.25
	row := InstanceResult{
		Filename: "afiro.json",
		Results: map[string]AdapterResult{
			"cuopt_json_to_c_api": {Objective: &objective, SolverTime: &solverTime, TotalTime: 1.5},
			"cuopt_json_to_ampl":  {TotalTime: 600},
		},
	}
	adapters := []Adapter{
		{Name: "cuopt_json_to_c_api"},
		{Name: "cuopt_json_to_python"},
		{Name: "cuopt_json_to_ampl"},
	}

	storage := &Storage{}
	require.Nil(t, storage.UploadRow(db, row, adapters))

	require.Equal(t, 2, len(fakeUploadDB.execs))
	require.Equal(t, "INSERT OR REPLACE INTO measurements VALUES (?, ?, ?, ?, ?)", fakeUploadDB.execs[0].query)
	require.Equal(t, []driver.Value{"afiro.json", "cuopt_json_to_c_api", 42.5, 0.25, 1.5}, fakeUploadDB.execs[0].args)
	require.Equal(t, []driver.Value{"afiro.json", "cuopt_json_to_ampl", nil, nil, 600.0}, fakeUploadDB.execs[1].args)
}
