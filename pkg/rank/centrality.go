package rank

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Katz parameters used by CalcSimpleRank
const (
	KatzAlpha   = 0.99
	KatzBeta    = 1.0
	KatzMaxIter = 20000
)

const (
	eigenvectorMaxIter = 100
	centralityTol      = 1e-6
)

// EigenvectorCentrality scores variables by power iteration on a weight
// matrix in which w[row, col] is the weight of the edge col -> row, that is
// x[row] collects w[row, col]*x[col]. The iteration runs on (W + I) so it
// also settles on periodic graphs. Scores are scaled to sum to one.
func EigenvectorCentrality(w mat.Matrix, variables []string) (Dict, error) {
	n := len(variables)
	if err := checkSquare(w, n); err != nil {
		return Dict{}, err
	}

	start := make([]float64, n)
	for i := range start {
		start[i] = 1 / float64(n)
	}
	x := mat.NewVecDense(n, start)
	next := mat.NewVecDense(n, nil)

	for i := 0; i < eigenvectorMaxIter; i++ {
		next.MulVec(w, x)
		next.AddVec(next, x)

		norm := floats.Norm(next.RawVector().Data, 2)
		if norm == 0 {
			norm = 1
		}
		next.ScaleVec(1/norm, next)

		if l1Distance(next, x) < float64(n)*centralityTol {
			scores := make([]float64, n)
			copy(scores, next.RawVector().Data)
			if err := normalizeSum(scores); err != nil {
				return Dict{}, err
			}
			return NewDict(variables, scores)
		}
		x, next = next, x
	}

	return Dict{}, fmt.Errorf("%w: eigenvector centrality after %d iterations", ErrNoConvergence, eigenvectorMaxIter)
}

// KatzCentrality scores variables by iterating x = alpha*G*x + beta, where
// g[row, col] is the weight of the edge col -> row. Only variables touched by
// a nonzero entry of g take part, in the order they are first met scanning
// column by column. Scores are scaled to sum to one.
func KatzCentrality(g mat.Matrix, variables []string, alpha, beta float64, maxIter int) (Dict, error) {
	n := len(variables)
	if err := checkSquare(g, n); err != nil {
		return Dict{}, err
	}

	index := participants(g, n)
	k := len(index)
	if k == 0 {
		return NewDict(nil, nil)
	}

	sub := mat.NewDense(k, k, nil)
	for i, row := range index {
		for j, col := range index {
			sub.Set(i, j, g.At(row, col))
		}
	}

	constant := make([]float64, k)
	for i := range constant {
		constant[i] = beta
	}
	b := mat.NewVecDense(k, constant)
	x := mat.NewVecDense(k, nil)
	next := mat.NewVecDense(k, nil)

	for i := 0; i < maxIter; i++ {
		next.MulVec(sub, x)
		next.AddScaledVec(b, alpha, next)

		if l1Distance(next, x) < float64(k)*centralityTol {
			scores := make([]float64, k)
			copy(scores, next.RawVector().Data)
			// The L2 scaling of the classic formulation cancels out here
			if err := normalizeSum(scores); err != nil {
				return Dict{}, err
			}
			names := make([]string, k)
			for i, idx := range index {
				names[i] = variables[idx]
			}
			return NewDict(names, scores)
		}
		x, next = next, x
	}

	return Dict{}, fmt.Errorf("%w: Katz centrality after %d iterations", ErrNoConvergence, maxIter)
}

// participants lists the indices touched by a nonzero entry, in first-seen
// order scanning columns left to right and rows top to bottom. For an entry
// [row, col] the row index is seen before the column index.
func participants(g mat.Matrix, n int) []int {
	seen := make([]bool, n)
	var index []int
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			index = append(index, i)
		}
	}
	for col := 0; col < n; col++ {
		for row := 0; row < n; row++ {
			if g.At(row, col) != 0 {
				add(row)
				add(col)
			}
		}
	}
	return index
}

func l1Distance(a, b *mat.VecDense) float64 {
	return floats.Distance(a.RawVector().Data, b.RawVector().Data, 1)
}
