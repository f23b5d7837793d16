// Package mps parses linear and mixed integer programs in MPS format and
// converts them to the cuOpt JSON problem representation.
//
// Both fixed and free form files are accepted: lines are tokenized on
// whitespace and section headers are recognized by keyword. Only the first
// RHS, RANGES and BOUNDS set of a file is honored; additional N rows beyond
// the objective are treated as free rows and skipped.
package mps

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// RowType classifies a ROWS entry.
type RowType byte

const (
	RowLE RowType = 'L'
	RowGE RowType = 'G'
	RowEQ RowType = 'E'
)

// Row is one constraint with its resolved bounds. Bounds start at the MPS
// defaults for the row type, with an implicit right hand side of zero, and
// are then tightened by the RHS and RANGES sections.
type Row struct {
	Name  string
	Type  RowType
	Lower float64
	Upper float64
}

// Column is one variable. Bounds default to [0, +Inf); Objective is the
// variable's coefficient in the objective row.
type Column struct {
	Name      string
	Integer   bool
	Lower     float64
	Upper     float64
	Objective float64
}

// Model is a parsed MPS problem.
type Model struct {
	Name     string
	Maximize bool
	Offset   float64 // objective constant term
	Rows     []Row   // constraints, in file order
	Columns  []Column

	coefs []coefficient
}

type coefficient struct {
	row, col int
	value    float64
}

// Row indices in the name table that do not refer to a constraint.
const (
	objectiveRow = -1
	freeRow      = -2
)

type parser struct {
	model   *Model
	rows    map[string]int
	columns map[string]int

	objective  string
	integer    bool
	rhsSeen    bool
	rhsSet     string
	rangesSeen bool
	rangesSet  string
	boundsSeen bool
	boundsSet  string
	line       int
}

var sectionKeywords = map[string]bool{
	"NAME":     true,
	"OBJSENSE": true,
	"ROWS":     true,
	"COLUMNS":  true,
	"RHS":      true,
	"RANGES":   true,
	"BOUNDS":   true,
	"SOS":      true,
	"ENDATA":   true,
}

// ParseFile reads an MPS model from path.
func ParseFile(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads an MPS model from r.
func Parse(r io.Reader) (*Model, error) {
	p := &parser{
		model:   &Model{},
		rows:    make(map[string]int),
		columns: make(map[string]int),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	section := ""
	for scanner.Scan() {
		p.line++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(strings.TrimLeft(line, " \t"), "*") {
			continue
		}
		fields := strings.Fields(line)
		indented := line[0] == ' ' || line[0] == '\t'
		keyword := strings.ToUpper(fields[0])

		var err error
		if !indented && sectionKeywords[keyword] {
			if keyword == "ENDATA" {
				return p.finish()
			}
			section = keyword
			err = p.startSection(keyword, fields)
		} else {
			err = p.parseData(section, fields)
		}
		if err != nil {
			return nil, fmt.Errorf("mps: line %v: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mps: %w", err)
	}
	return p.finish()
}

func (p *parser) startSection(keyword string, fields []string) error {
	switch keyword {
	case "NAME":
		if len(fields) > 1 {
			p.model.Name = fields[1]
		}
	case "OBJSENSE":
		if len(fields) > 1 {
			return p.setObjSense(fields[1])
		}
	case "SOS":
		return fmt.Errorf("section %v is not supported", keyword)
	}
	return nil
}

func (p *parser) parseData(section string, fields []string) error {
	switch section {
	case "OBJSENSE":
		return p.setObjSense(fields[0])
	case "ROWS":
		return p.parseRow(fields)
	case "COLUMNS":
		return p.parseColumn(fields)
	case "RHS":
		return p.parseRHS(fields)
	case "RANGES":
		return p.parseRanges(fields)
	case "BOUNDS":
		return p.parseBounds(fields)
	case "":
		return fmt.Errorf("data line before any section")
	}
	return fmt.Errorf("unexpected data line in section %v", section)
}

func (p *parser) setObjSense(value string) error {
	switch strings.ToUpper(value) {
	case "MAX", "MAXIMIZE":
		p.model.Maximize = true
	case "MIN", "MINIMIZE":
		p.model.Maximize = false
	default:
		return fmt.Errorf("unknown objective sense %q", value)
	}
	return nil
}

func (p *parser) parseRow(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("ROWS entry needs a type and a name")
	}
	name := fields[1]
	if _, ok := p.rows[name]; ok {
		return fmt.Errorf("duplicate row %v", name)
	}
	switch strings.ToUpper(fields[0]) {
	case "N":
		if p.objective == "" {
			p.objective = name
			p.rows[name] = objectiveRow
		} else {
			p.rows[name] = freeRow
		}
	case "G":
		p.rows[name] = len(p.model.Rows)
		p.model.Rows = append(p.model.Rows, Row{Name: name, Type: RowGE, Upper: math.Inf(1)})
	case "L":
		p.rows[name] = len(p.model.Rows)
		p.model.Rows = append(p.model.Rows, Row{Name: name, Type: RowLE, Lower: math.Inf(-1)})
	case "E":
		p.rows[name] = len(p.model.Rows)
		p.model.Rows = append(p.model.Rows, Row{Name: name, Type: RowEQ})
	default:
		return fmt.Errorf("unknown row type %q for row %v", fields[0], name)
	}
	return nil
}

func (p *parser) parseColumn(fields []string) error {
	if slices.Contains(fields, "'MARKER'") {
		switch {
		case slices.Contains(fields, "'INTORG'"):
			p.integer = true
		case slices.Contains(fields, "'INTEND'"):
			p.integer = false
		}
		return nil
	}
	if len(fields) < 3 {
		return fmt.Errorf("COLUMNS entry needs a column, a row and a value")
	}
	name := fields[0]
	index, ok := p.columns[name]
	if !ok {
		index = len(p.model.Columns)
		p.columns[name] = index
		p.model.Columns = append(p.model.Columns, Column{
			Name:    name,
			Integer: p.integer,
			Upper:   math.Inf(1),
		})
	}
	return p.eachPair(fields[1:], func(row string, value float64) error {
		target, ok := p.rows[row]
		if !ok {
			return fmt.Errorf("unknown row %v", row)
		}
		switch target {
		case objectiveRow:
			p.model.Columns[index].Objective += value
		case freeRow:
		default:
			p.model.coefs = append(p.model.coefs, coefficient{row: target, col: index, value: value})
		}
		return nil
	})
}

func (p *parser) parseRHS(fields []string) error {
	set, rest := splitSetName(fields)
	if !p.rhsSeen {
		p.rhsSeen = true
		p.rhsSet = set
	}
	if set != p.rhsSet {
		return nil
	}
	return p.eachPair(rest, func(row string, value float64) error {
		target, ok := p.rows[row]
		if !ok {
			return fmt.Errorf("unknown row %v", row)
		}
		switch target {
		case objectiveRow:
			// An RHS on the objective row carries the negated constant term.
			p.model.Offset = -value
		case freeRow:
		default:
			r := &p.model.Rows[target]
			switch r.Type {
			case RowGE:
				r.Lower = value
			case RowLE:
				r.Upper = value
			case RowEQ:
				r.Lower, r.Upper = value, value
			}
		}
		return nil
	})
}

func (p *parser) parseRanges(fields []string) error {
	set, rest := splitSetName(fields)
	if !p.rangesSeen {
		p.rangesSeen = true
		p.rangesSet = set
	}
	if set != p.rangesSet {
		return nil
	}
	return p.eachPair(rest, func(row string, value float64) error {
		target, ok := p.rows[row]
		if !ok {
			return fmt.Errorf("unknown row %v", row)
		}
		if target == objectiveRow || target == freeRow {
			return fmt.Errorf("range on non-constraint row %v", row)
		}
		r := &p.model.Rows[target]
		span := math.Abs(value)
		switch r.Type {
		case RowGE:
			r.Upper = r.Lower + span
		case RowLE:
			r.Lower = r.Upper - span
		case RowEQ:
			// The sign of the range decides which side of the equality opens.
			if value >= 0 {
				r.Upper = r.Lower + span
			} else {
				r.Lower = r.Upper - span
			}
		}
		return nil
	})
}

func (p *parser) parseBounds(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("BOUNDS entry needs a type, a set and a column")
	}
	boundType := strings.ToUpper(fields[0])
	set, column := fields[1], fields[2]
	if !p.boundsSeen {
		p.boundsSeen = true
		p.boundsSet = set
	}
	if set != p.boundsSet {
		return nil
	}
	index, ok := p.columns[column]
	if !ok {
		return fmt.Errorf("unknown column %v", column)
	}

	var value float64
	switch boundType {
	case "LO", "UP", "FX", "LI", "UI":
		if len(fields) < 4 {
			return fmt.Errorf("bound type %v needs a value", boundType)
		}
		parsed, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return fmt.Errorf("bad bound value %q: %w", fields[3], err)
		}
		value = parsed
	}

	col := &p.model.Columns[index]
	switch boundType {
	case "LO":
		col.Lower = value
	case "UP":
		col.Upper = value
	case "FX":
		col.Lower, col.Upper = value, value
	case "FR":
		col.Lower, col.Upper = math.Inf(-1), math.Inf(1)
	case "MI":
		col.Lower = math.Inf(-1)
	case "PL":
		col.Upper = math.Inf(1)
	case "BV":
		col.Integer = true
		col.Lower, col.Upper = 0, 1
	case "LI":
		col.Integer = true
		col.Lower = value
	case "UI":
		col.Integer = true
		col.Upper = value
	default:
		return fmt.Errorf("unsupported bound type %q", fields[0])
	}
	return nil
}

// eachPair walks (name, value) pairs, two fields at a time; MPS data lines
// may carry one or two pairs.
func (p *parser) eachPair(fields []string, apply func(name string, value float64) error) error {
	if len(fields)%2 != 0 {
		return fmt.Errorf("unpaired name and value fields")
	}
	for i := 0; i+1 < len(fields); i += 2 {
		value, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return fmt.Errorf("bad numeric value %q: %w", fields[i+1], err)
		}
		if err := apply(fields[i], value); err != nil {
			return err
		}
	}
	return nil
}

// splitSetName splits an optional leading set name off a (name, value) pair
// list. Files that omit set names have an even field count.
func splitSetName(fields []string) (string, []string) {
	if len(fields)%2 == 1 {
		return fields[0], fields[1:]
	}
	return "", fields
}

func (p *parser) finish() (*Model, error) {
	if p.objective == "" {
		return nil, fmt.Errorf("mps: no objective (N) row")
	}
	if len(p.model.Columns) == 0 {
		return nil, fmt.Errorf("mps: no columns")
	}
	return p.model, nil
}
