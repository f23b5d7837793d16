package main

import (
	"regexp"
	"strconv"
)

// All extractors share one numeric pattern, scientific notation included.
const numberPattern = `[-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?`

var (
	reObjectiveValue        = regexp.MustCompile(`Objective value:\s*(` + numberPattern + `)`)
	reOptimalValue          = regexp.MustCompile(`Optimal value:\s*(` + numberPattern + `)`)
	reObjective             = regexp.MustCompile(`Objective:\s*(` + numberPattern + `)`)
	reOptimalObjectiveValue = regexp.MustCompile(`Optimal objective value:\s*(` + numberPattern + `)`)

	// The canonical solver status line, e.g.
	// "Status: Optimal   Objective: -4.64e+02  Iterations: 15  Time: 0.019s".
	reStatusLineTime = regexp.MustCompile(`Status:\s+\w+.*?Time:\s*(` + numberPattern + `)s`)
	reBareTime       = regexp.MustCompile(`Time:\s*(` + numberPattern + `)`)
)

// OutputParser extracts the objective value and the solver-reported time from
// an adapter's stdout. Patterns are tried in order and the first hit wins; a
// miss yields nil rather than an error so a failed scrape is recorded as a
// missing measurement, not a crash.
type OutputParser struct {
	objective []*regexp.Regexp
	time      []*regexp.Regexp
}

func (p OutputParser) Parse(stdout string) (objective, solverTime *float64) {
	return firstMatch(p.objective, stdout), firstMatch(p.time, stdout)
}

func firstMatch(patterns []*regexp.Regexp, s string) *float64 {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(s)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		return &value
	}
	return nil
}

// Parsers per front-end family. The C and Python API programs print an
// explicit "Objective value:" line next to the solver status line. The
// modeling-layer front-ends only echo what their framework reports: CVXPY
// prints "Optimal value:", PuLP "Objective:". AMPL, Julia and GAMS sometimes
// time the run themselves and print a standalone unitless "Time:" line, so
// their parsers fall back to it when no status line is present.
var (
	parserObjectiveValue = OutputParser{
		objective: []*regexp.Regexp{reObjectiveValue},
		time:      []*regexp.Regexp{reStatusLineTime},
	}
	parserOptimalValue = OutputParser{
		objective: []*regexp.Regexp{reOptimalValue},
		time:      []*regexp.Regexp{reStatusLineTime},
	}
	parserObjective = OutputParser{
		objective: []*regexp.Regexp{reObjective},
		time:      []*regexp.Regexp{reStatusLineTime},
	}
	parserObjectiveBareTime = OutputParser{
		objective: []*regexp.Regexp{reObjective},
		time:      []*regexp.Regexp{reStatusLineTime, reBareTime},
	}
	parserGams = OutputParser{
		objective: []*regexp.Regexp{reOptimalObjectiveValue, reObjective},
		time:      []*regexp.Regexp{reStatusLineTime, reBareTime},
	}
)
