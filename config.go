package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func StringEnv(name string, fallback string) string {
	if value, ok := os.LookupEnv(name); ok {
		return value
	}
	return fallback
}

func IntEnv(name string, fallback int) int {
	value, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		Logger.Warnf("failed to parse int env %v=%v, fallback to %v: %v", name, value, fallback, err)
		return fallback
	}
	return parsed
}

// Config carries every process-level setting. It is resolved once at startup;
// nothing reads the environment after that.
type Config struct {
	ResultsFile string        // path of the CSV results table
	Timeout     time.Duration // wall clock budget for a single adapter invocation
	ProgramDir  string        // directory the adapter programs are launched from
	DB          DBConfig
}

// DBConfig holds the optional remote results database settings. The upload is
// active only when both an organization and an auth token are configured.
type DBConfig struct {
	OrgName   string
	GroupName string
	Name      string
	ApiToken  string
	AuthToken string
}

func (c DBConfig) Enabled() bool { return c.OrgName != "" && c.AuthToken != "" }

func LoadConfig() (Config, error) {
	programDir, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	timeout := IntEnv("CUOPT_BENCH_TIMEOUT", 600)
	if timeout <= 0 {
		return Config{}, fmt.Errorf("invalid CUOPT_BENCH_TIMEOUT value %v: must be positive", timeout)
	}
	return Config{
		ResultsFile: StringEnv("CUOPT_BENCH_RESULTS", "cuopt_benchmark_results.csv"),
		Timeout:     time.Duration(timeout) * time.Second,
		ProgramDir:  programDir,
		DB: DBConfig{
			OrgName:   StringEnv("CUOPT_DB_ORG", ""),
			GroupName: StringEnv("CUOPT_DB_GROUP", "cuopt-benchmark"),
			Name:      StringEnv("CUOPT_DB_NAME", ""),
			ApiToken:  StringEnv("CUOPT_DB_API_TOKEN", ""),
			AuthToken: StringEnv("CUOPT_DB_AUTH_TOKEN", ""),
		},
	}, nil
}
