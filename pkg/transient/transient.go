// Package transient tracks how importance scores move between time boxes.
package transient

import (
	"errors"
	"fmt"

	"github.com/ritzau/looprank/pkg/rank"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoBoxes         = errors.New("no ranking boxes")
	ErrMissingVariable = errors.New("variable missing")
)

// Diffs holds, per variable, the change in score from each box to the next.
// Entry k is box k+1 minus box k.
type Diffs map[string][]float64

// Base holds the score of every variable in the first box
type Base map[string]float64

// CalcImportanceDiffs computes the successive score differences of every
// variable across an ordered sequence of per-box rankings
func CalcImportanceDiffs(rankings []rank.Dict, variables []string) (Diffs, Base, error) {
	if len(rankings) == 0 {
		return nil, nil, ErrNoBoxes
	}

	diffs := make(Diffs, len(variables))
	base := make(Base, len(variables))
	for _, v := range variables {
		scores := make([]float64, len(rankings))
		for k, r := range rankings {
			s, ok := r.Score(v)
			if !ok {
				return nil, nil, fmt.Errorf("%w: %q in box %d", ErrMissingVariable, v, k)
			}
			scores[k] = s
		}

		base[v] = scores[0]
		diff := make([]float64, len(scores)-1)
		for k := 1; k < len(scores); k++ {
			diff[k-1] = scores[k] - scores[k-1]
		}
		diffs[v] = diff
	}

	return diffs, base, nil
}

// Series is a box-by-variable table of scores ready for plotting. Row k is
// box k, column j is Variables[j].
type Series struct {
	Variables []string
	Relative  *mat.Dense // Row 0 is zero, row k holds the change into box k
	Absolute  *mat.Dense // Row k holds the score in box k
}

// Reconstruct rebuilds the relative and absolute score series from the
// differences and base values. The absolute score in box k is the base value
// plus the sum of the first k differences.
func Reconstruct(variables []string, diffs Diffs, base Base) (*Series, error) {
	if len(variables) == 0 {
		return nil, fmt.Errorf("%w: no variables", ErrMissingVariable)
	}

	first, ok := diffs[variables[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no differences", ErrMissingVariable, variables[0])
	}
	boxes := len(first) + 1

	relative := mat.NewDense(boxes, len(variables), nil)
	absolute := mat.NewDense(boxes, len(variables), nil)

	column := make([]float64, boxes)
	for j, v := range variables {
		diff, ok := diffs[v]
		if !ok || len(diff) != boxes-1 {
			return nil, fmt.Errorf("%w: %q has %d differences, want %d", ErrMissingVariable, v, len(diff), boxes-1)
		}
		b, ok := base[v]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no base value", ErrMissingVariable, v)
		}

		column[0] = 0
		copy(column[1:], diff)
		relative.SetCol(j, column)

		floats.CumSum(column, column)
		floats.AddConst(b, column)
		absolute.SetCol(j, column)
	}

	return &Series{
		Variables: append([]string(nil), variables...),
		Relative:  relative,
		Absolute:  absolute,
	}, nil
}

// At returns the absolute score of a variable in box k
func (s *Series) At(variable string, box int) (float64, bool) {
	for j, v := range s.Variables {
		if v == variable {
			r, _ := s.Absolute.Dims()
			if box < 0 || box >= r {
				return 0, false
			}
			return s.Absolute.At(box, j), true
		}
	}
	return 0, false
}
