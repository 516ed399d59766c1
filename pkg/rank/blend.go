package rank

import (
	"fmt"
	"math"
)

// DefaultAlpha weighs forward and backward rankings equally
const DefaultAlpha = 0.5

// CalcBlendedRank mixes a forward and a backward ranking over variables:
//
//	blended[v] = |(1-alpha)*forward[v] + alpha*backward[v]|
//
// and scales the result to sum to one. Both rankings may hold extra (dummy)
// variables; only the listed variables take part.
func CalcBlendedRank(forward, backward Dict, variables []string, alpha float64) (Dict, List, error) {
	if err := checkUnit("alpha", alpha); err != nil {
		return Dict{}, nil, err
	}

	scores := make([]float64, len(variables))
	for i, v := range variables {
		f, ok := forward.Score(v)
		if !ok {
			return Dict{}, nil, fmt.Errorf("%w: %q not in forward ranking", ErrMissingVariable, v)
		}
		b, ok := backward.Score(v)
		if !ok {
			return Dict{}, nil, fmt.Errorf("%w: %q not in backward ranking", ErrMissingVariable, v)
		}
		scores[i] = math.Abs((1-alpha)*f + alpha*b)
	}

	if err := normalizeSum(scores); err != nil {
		return Dict{}, nil, err
	}
	dict, err := NewDict(variables, scores)
	if err != nil {
		return Dict{}, nil, err
	}
	return dict, dict.List(), nil
}

// NormaliseRankingList restricts a ranking to the given variables, typically
// the ones that existed before dummy nodes were added, and rescales it to sum
// to one
func NormaliseRankingList(d Dict, variables []string) (Dict, List, error) {
	scores := make([]float64, len(variables))
	for i, v := range variables {
		s, ok := d.Score(v)
		if !ok {
			return Dict{}, nil, fmt.Errorf("%w: %q", ErrMissingVariable, v)
		}
		scores[i] = s
	}

	if err := normalizeSum(scores); err != nil {
		return Dict{}, nil, err
	}
	dict, err := NewDict(variables, scores)
	if err != nil {
		return Dict{}, nil, err
	}
	return dict, dict.List(), nil
}
