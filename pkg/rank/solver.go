package rank

import (
	"fmt"
	"math/cmplx"

	"github.com/ritzau/looprank/pkg/logging"
	"gonum.org/v1/gonum/mat"
)

// Result holds the damped-eigenvector ranking of a gain matrix together with
// the two centrality scores computed from the same matrices
type Result struct {
	Dict Dict
	List List

	// Eigenvalue is the eigenvalue whose eigenvector produced Dict
	Eigenvalue complex128

	// EigenvectorCentrality is computed on the damped weight matrix
	EigenvectorCentrality Dict

	// KatzCentrality is computed on the normalized gain matrix and only
	// covers variables that carry at least one nonzero gain
	KatzCentrality Dict
}

// CalcSimpleRank ranks the variables of a gain matrix. Entry [row, col] of
// gains is the gain of the edge variables[col] -> variables[row].
//
// The transposed gain matrix is column-normalized and mixed with a uniform
// reset matrix using the damping factor m:
//
//	W = m*G + (1-m)*(1/n)
//
// After normalizing the columns of W again, the eigenvector of the eigenvalue
// with the largest real part is taken, made absolute and scaled to sum to one.
// Columns without any gain stay zero rather than being spread uniformly, which
// pulls the score of such variables down.
func CalcSimpleRank(gains mat.Matrix, variables []string, m float64) (*Result, error) {
	n := len(variables)
	if err := checkSquare(gains, n); err != nil {
		return nil, err
	}
	if err := checkUnit("damping factor", m); err != nil {
		return nil, err
	}

	var gain mat.Dense
	gain.CloneFrom(gains.T())
	if !isFinite(gain.RawMatrix().Data) {
		return nil, fmt.Errorf("%w: gain matrix holds NaN or Inf", ErrOutOfRange)
	}
	normalizeColumns(&gain)

	reset := make([]float64, n*n)
	for i := range reset {
		reset[i] = 1 / float64(n)
	}

	var weights, teleport mat.Dense
	weights.Scale(m, &gain)
	teleport.Scale(1-m, mat.NewDense(n, n, reset))
	weights.Add(&weights, &teleport)
	normalizeColumns(&weights)

	scores, value, err := dominantEigenvector(&weights)
	if err != nil {
		return nil, err
	}
	dict, err := NewDict(variables, scores)
	if err != nil {
		return nil, err
	}

	eig, err := EigenvectorCentrality(&weights, variables)
	if err != nil {
		return nil, err
	}
	katz, err := KatzCentrality(&gain, variables, KatzAlpha, KatzBeta, KatzMaxIter)
	if err != nil {
		return nil, err
	}

	logging.Debug("ranked gain matrix", "nodes", n, "damping", m, "eigenvalue", real(value))

	return &Result{
		Dict:                  dict,
		List:                  dict.List(),
		Eigenvalue:            value,
		EigenvectorCentrality: eig,
		KatzCentrality:        katz,
	}, nil
}

// dominantEigenvector returns the absolute, sum-normalized right eigenvector
// belonging to the eigenvalue picked by largerEigenvalue
func dominantEigenvector(w *mat.Dense) ([]float64, complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(w, mat.EigenRight); !ok {
		return nil, 0, ErrEigenFailed
	}

	values := eig.Values(nil)
	best := 0
	for i := 1; i < len(values); i++ {
		if largerEigenvalue(values[i], values[best]) {
			best = i
		}
	}

	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	scores := make([]float64, len(values))
	for i := range scores {
		scores[i] = cmplx.Abs(vectors.At(i, best))
	}
	if err := normalizeSum(scores); err != nil {
		return nil, 0, ErrEigenFailed
	}
	return scores, values[best], nil
}

// largerEigenvalue orders eigenvalues by real part, then by imaginary part.
// Exact ties are not larger, so the lowest index wins.
func largerEigenvalue(a, b complex128) bool {
	if real(a) != real(b) {
		return real(a) > real(b)
	}
	return imag(a) > imag(b)
}
