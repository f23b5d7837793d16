package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Storage mirrors benchmark rows into a remote libsql database so long runs
// can be watched from elsewhere. The CSV table stays the source of truth;
// everything here is best-effort and the runner treats failures as warnings.
type Storage struct {
	OrgName   string
	GroupName string
	ApiToken  string
	AuthToken string
}

func NewStorage(config DBConfig) *Storage {
	return &Storage{
		OrgName:   config.OrgName,
		GroupName: config.GroupName,
		ApiToken:  config.ApiToken,
		AuthToken: config.AuthToken,
	}
}

func (s *Storage) CreateDatabase(name string) error {
	url := fmt.Sprintf("https://api.turso.tech/v1/organizations/%v/databases", s.OrgName)
	req, err := http.NewRequest("POST", url, bytes.NewReader([]byte(fmt.Sprintf(`{"name":"%v","group":"%v"}`, name, s.GroupName))))
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+s.ApiToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status code %v: %v", resp.StatusCode, string(body))
	}
	Logger.Infof("created database %v", name)
	return nil
}

func (s *Storage) ConnectDb(name string) (*sql.DB, error) {
	url := fmt.Sprintf("libsql://%v-%v.turso.io?authToken=%v", name, s.OrgName, s.AuthToken)
	return sql.Open("libsql", url)
}

func (s *Storage) DbLink(name string) string {
	return fmt.Sprintf("%v-%v.turso.io", name, s.OrgName)
}

// InitResultsDb creates the schema and seeds the parameters table with the
// run description. Parameters are written once; reruns against the same
// database keep the original values.
func (s *Storage) InitResultsDb(db *sql.DB, meta map[string]any) error {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS parameters (name TEXT PRIMARY KEY, value)")
	if err != nil {
		return err
	}
	parameters := make([]any, 0)
	parameters = append(parameters, "time", time.Now().Format("2006-01-02 15:04:05"))
	for key, value := range meta {
		parameters = append(parameters, key, fmt.Sprintf("%v", value))
	}
	placeholders := strings.Join(slices.Repeat([]string{"(?, ?)"}, len(parameters)/2), ", ")
	_, err = db.Exec(
		fmt.Sprintf("INSERT INTO parameters VALUES %v ON CONFLICT DO NOTHING", placeholders),
		parameters...,
	)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS measurements (
		filename TEXT,
		adapter TEXT,
		objective REAL,
		solver_time REAL,
		total_time REAL,
		PRIMARY KEY (filename, adapter)
	)`)
	if err != nil {
		return err
	}
	Logger.Infof("initialized results database with meta %v", meta)
	return nil
}

// Parameters reads back the run description of an existing results database.
func (s *Storage) Parameters(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query("SELECT name, value FROM parameters")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		results[name] = value
	}
	return results, rows.Err()
}

// UploadRow mirrors one results row, one measurement per adapter. Replacing
// on conflict keeps explicitly named databases reusable across runs.
func (s *Storage) UploadRow(db *sql.DB, row InstanceResult, adapters []Adapter) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, adapter := range adapters {
		result, ok := row.Results[adapter.Name]
		if !ok {
			continue
		}
		_, err = tx.Exec(
			"INSERT OR REPLACE INTO measurements VALUES (?, ?, ?, ?, ?)",
			row.Filename,
			adapter.Name,
			nullableFloat(result.Objective),
			nullableFloat(result.SolverTime),
			result.TotalTime,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}
