package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindProblems returns the JSON problem files directly inside dir, sorted by
// path so every run visits instances in the same order.
func FindProblems(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("problems directory %v not found", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%v is not a directory", dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list problems in %v: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSON problem files found in %v", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadFilterList reads a plain text file with one problem file name per line.
// Blank lines and surrounding whitespace are ignored.
func ReadFilterList(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}
	allow := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			allow[line] = true
		}
	}
	return allow, nil
}

// FilterProblems keeps the paths whose base name is listed in allow,
// preserving order.
func FilterProblems(paths []string, allow map[string]bool) []string {
	filtered := make([]string, 0, len(paths))
	for _, path := range paths {
		if allow[filepath.Base(path)] {
			filtered = append(filtered, path)
		}
	}
	return filtered
}
