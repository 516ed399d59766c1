// Package rank computes importance scores for the nodes of a gain graph.
package rank

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Entry is one variable and its score
type Entry struct {
	Variable string  `json:"variable"`
	Score    float64 `json:"score"`
}

// List is a ranking ordered by score, highest first
type List []Entry

// Dict maps variables to scores. It remembers the order the variables were
// given in; that order breaks ties when the dict is sorted into a List.
// A Dict is not modified after construction.
type Dict struct {
	order  []string
	scores map[string]float64
}

// NewDict pairs variables with scores, position by position
func NewDict(variables []string, scores []float64) (Dict, error) {
	if len(variables) != len(scores) {
		return Dict{}, fmt.Errorf("%w: %d variables, %d scores", ErrShapeMismatch, len(variables), len(scores))
	}

	d := Dict{
		order:  make([]string, len(variables)),
		scores: make(map[string]float64, len(variables)),
	}
	copy(d.order, variables)
	for i, v := range variables {
		if _, dup := d.scores[v]; dup {
			return Dict{}, fmt.Errorf("%w: duplicate variable %q", ErrShapeMismatch, v)
		}
		d.scores[v] = scores[i]
	}
	return d, nil
}

// Len returns the number of variables
func (d Dict) Len() int {
	return len(d.order)
}

// Score returns the score of a variable
func (d Dict) Score(variable string) (float64, bool) {
	s, ok := d.scores[variable]
	return s, ok
}

// Variables returns the variables in their original order
func (d Dict) Variables() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Values returns the scores in variable order
func (d Dict) Values() []float64 {
	out := make([]float64, len(d.order))
	for i, v := range d.order {
		out[i] = d.scores[v]
	}
	return out
}

// Map returns a copy of the scores keyed by variable
func (d Dict) Map() map[string]float64 {
	out := make(map[string]float64, len(d.scores))
	for k, v := range d.scores {
		out[k] = v
	}
	return out
}

// Sum returns the total of all scores
func (d Dict) Sum() float64 {
	return floats.Sum(d.Values())
}

// Normalized returns a copy of the dict scaled to sum to one
func (d Dict) Normalized() (Dict, error) {
	values := d.Values()
	if err := normalizeSum(values); err != nil {
		return Dict{}, err
	}
	return NewDict(d.order, values)
}

// List sorts the dict by score, highest first. Equal scores keep variable order.
func (d Dict) List() List {
	list := make(List, len(d.order))
	for i, v := range d.order {
		list[i] = Entry{Variable: v, Score: d.scores[v]}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
	return list
}

// Variables returns the variables of the list in rank order
func (l List) Variables() []string {
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.Variable
	}
	return out
}
