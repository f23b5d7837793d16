package mps

import (
	"encoding/json"
	"math"
	"sort"
)

// Bound marshals +Inf and -Inf as the "inf" and "ninf" strings the cuOpt
// front-ends expect; finite values marshal as plain numbers.
type Bound float64

func (b Bound) MarshalJSON() ([]byte, error) {
	switch {
	case math.IsInf(float64(b), 1):
		return []byte(`"inf"`), nil
	case math.IsInf(float64(b), -1):
		return []byte(`"ninf"`), nil
	}
	return json.Marshal(float64(b))
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"inf"`:
		*b = Bound(math.Inf(1))
		return nil
	case `"ninf"`:
		*b = Bound(math.Inf(-1))
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*b = Bound(value)
	return nil
}

// CSRMatrix is a compressed sparse row matrix with one row per constraint.
type CSRMatrix struct {
	Offsets []int     `json:"offsets"`
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// BoundsPair mirrors the paired bound objects of the cuOpt JSON format.
type BoundsPair struct {
	UpperBounds []Bound `json:"upper_bounds"`
	LowerBounds []Bound `json:"lower_bounds"`
}

type ObjectiveData struct {
	Coefficients []float64 `json:"coefficients"`
	Offset       float64   `json:"offset"`
}

// SolverConfig carries optional solver settings. Tolerances is embedded as
// raw JSON so callers can pass arbitrary tolerance objects through.
type SolverConfig struct {
	Tolerances     json.RawMessage `json:"tolerances,omitempty"`
	TimeLimit      int             `json:"time_limit,omitempty"`
	IterationLimit int             `json:"iteration_limit,omitempty"`
}

// Problem is the cuOpt JSON representation of a model, shaped the way the
// solver front-ends read it. SolverConfig is always emitted, empty or not.
type Problem struct {
	CSRConstraintMatrix CSRMatrix     `json:"csr_constraint_matrix"`
	ConstraintBounds    BoundsPair    `json:"constraint_bounds"`
	ObjectiveData       ObjectiveData `json:"objective_data"`
	VariableBounds      BoundsPair    `json:"variable_bounds"`
	VariableTypes       []string      `json:"variable_types"`
	VariableNames       []string      `json:"variable_names,omitempty"`
	Maximize            bool          `json:"maximize"`
	SolverConfig        SolverConfig  `json:"solver_config"`
}

// Problem converts the model to its cuOpt JSON representation. Duplicate
// matrix entries are summed and each constraint row is emitted with its
// column indices ascending.
func (m *Model) Problem() *Problem {
	problem := &Problem{
		Maximize: m.Maximize,
		ObjectiveData: ObjectiveData{
			Coefficients: make([]float64, len(m.Columns)),
			Offset:       m.Offset,
		},
		VariableTypes: make([]string, len(m.Columns)),
		VariableNames: make([]string, len(m.Columns)),
		VariableBounds: BoundsPair{
			UpperBounds: make([]Bound, len(m.Columns)),
			LowerBounds: make([]Bound, len(m.Columns)),
		},
		ConstraintBounds: BoundsPair{
			UpperBounds: make([]Bound, len(m.Rows)),
			LowerBounds: make([]Bound, len(m.Rows)),
		},
	}
	for i, column := range m.Columns {
		problem.ObjectiveData.Coefficients[i] = column.Objective
		problem.VariableNames[i] = column.Name
		problem.VariableTypes[i] = "C"
		if column.Integer {
			problem.VariableTypes[i] = "I"
		}
		problem.VariableBounds.LowerBounds[i] = Bound(column.Lower)
		problem.VariableBounds.UpperBounds[i] = Bound(column.Upper)
	}
	for i, row := range m.Rows {
		problem.ConstraintBounds.LowerBounds[i] = Bound(row.Lower)
		problem.ConstraintBounds.UpperBounds[i] = Bound(row.Upper)
	}

	rowCells := make([]map[int]float64, len(m.Rows))
	for _, c := range m.coefs {
		if rowCells[c.row] == nil {
			rowCells[c.row] = make(map[int]float64)
		}
		rowCells[c.row][c.col] += c.value
	}
	offsets := make([]int, 0, len(m.Rows)+1)
	indices := make([]int, 0, len(m.coefs))
	values := make([]float64, 0, len(m.coefs))
	offsets = append(offsets, 0)
	for _, cells := range rowCells {
		columns := make([]int, 0, len(cells))
		for col := range cells {
			columns = append(columns, col)
		}
		sort.Ints(columns)
		for _, col := range columns {
			indices = append(indices, col)
			values = append(values, cells[col])
		}
		offsets = append(offsets, len(indices))
	}
	problem.CSRConstraintMatrix = CSRMatrix{Offsets: offsets, Indices: indices, Values: values}
	return problem
}
